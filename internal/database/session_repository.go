package database

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/eazybus/booking-backend/internal/models"
)

// SessionRepository handles reservation session database operations
type SessionRepository struct {
	db *sqlx.DB
}

// NewSessionRepository creates a new SessionRepository
func NewSessionRepository(db *sqlx.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

const sessionColumns = `
	id, user_id, service_no, journey_date, origin, destination, bus_name,
	dep_time, arr_time, boarding_point, drop_point, seats, fare,
	pax_name, pax_age, pax_phone, pax_gender, created_at, updated_at`

// Upsert stages a session for the user, overwriting any previous one. The
// user_id unique constraint keeps at most one live session per user.
func (r *SessionRepository) Upsert(s *models.ReservationSession) error {
	if s.ID == "" {
		s.ID = uuid.New().String()
	}
	s.CreatedAt = time.Now()
	s.UpdatedAt = s.CreatedAt

	query := `
		INSERT INTO reservation_sessions (` + sessionColumns + `
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13,
			$14, $15, $16, $17, $18, $19
		)
		ON CONFLICT (user_id) DO UPDATE SET
			service_no = EXCLUDED.service_no,
			journey_date = EXCLUDED.journey_date,
			origin = EXCLUDED.origin,
			destination = EXCLUDED.destination,
			bus_name = EXCLUDED.bus_name,
			dep_time = EXCLUDED.dep_time,
			arr_time = EXCLUDED.arr_time,
			boarding_point = EXCLUDED.boarding_point,
			drop_point = EXCLUDED.drop_point,
			seats = EXCLUDED.seats,
			fare = EXCLUDED.fare,
			pax_name = EXCLUDED.pax_name,
			pax_age = EXCLUDED.pax_age,
			pax_phone = EXCLUDED.pax_phone,
			pax_gender = EXCLUDED.pax_gender,
			updated_at = NOW()`

	_, err := r.db.Exec(query,
		s.ID, s.UserID, s.ServiceNo, s.JourneyDate, s.Origin, s.Destination,
		s.BusName, s.DepTime, s.ArrTime, s.BoardingPt, s.DropPt, s.Seats,
		s.Fare, s.PaxName, s.PaxAge, s.PaxPhone, s.PaxGender,
		s.CreatedAt, s.UpdatedAt,
	)
	return err
}

// GetByUser retrieves the user's live session, if any
func (r *SessionRepository) GetByUser(userID string) (*models.ReservationSession, error) {
	var s models.ReservationSession
	query := `SELECT ` + sessionColumns + ` FROM reservation_sessions WHERE user_id = $1`

	err := r.db.Get(&s, query, userID)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// UpdatePassenger attaches passenger details to the user's live session
func (r *SessionRepository) UpdatePassenger(userID, name, age, phone, gender string) (bool, error) {
	query := `
		UPDATE reservation_sessions
		SET pax_name = $2, pax_age = $3, pax_phone = $4, pax_gender = $5, updated_at = NOW()
		WHERE user_id = $1`

	result, err := r.db.Exec(query, userID, name, age, phone, gender)
	if err != nil {
		return false, err
	}
	rows, _ := result.RowsAffected()
	return rows > 0, nil
}

// Delete consumes the user's session
func (r *SessionRepository) Delete(userID string) error {
	_, err := r.db.Exec(`DELETE FROM reservation_sessions WHERE user_id = $1`, userID)
	return err
}

// CountOverlapping counts live sessions, other users' included, that stage any
// of the given seats on the same service and date. The checkout guard treats a
// count above one (the caller's own session) as a seat fight and forces
// re-selection.
func (r *SessionRepository) CountOverlapping(serviceNo, journeyDate string, seats []string) (int, error) {
	var count int
	query := `
		SELECT COUNT(*)
		FROM reservation_sessions
		WHERE service_no = $1 AND journey_date = $2 AND seats && $3`

	err := r.db.Get(&count, query, serviceNo, journeyDate, pq.Array(seats))
	if err != nil {
		return 0, err
	}
	return count, nil
}
