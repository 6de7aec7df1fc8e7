package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/eazybus/booking-backend/internal/models"
)

// ServiceRepository handles service catalog and seat inventory operations
type ServiceRepository struct {
	db *sqlx.DB
}

// NewServiceRepository creates a new ServiceRepository
func NewServiceRepository(db *sqlx.DB) *ServiceRepository {
	return &ServiceRepository{db: db}
}

// ============================================================================
// CATALOG OPERATIONS
// ============================================================================

// AnyServiceForDate reports whether at least one service row exists for the
// date. The nightly rollout uses this as its day-level idempotency guard.
func (r *ServiceRepository) AnyServiceForDate(date string) (bool, error) {
	var count int
	err := r.db.Get(&count, `SELECT COUNT(*) FROM services WHERE service_date = $1`, date)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// CreateService inserts a service and its full seat inventory in one
// transaction. A service never exists with a partial seat set.
func (r *ServiceRepository) CreateService(svc *models.Service) error {
	svc.ID = uuid.New().String()
	svc.CreatedAt = time.Now()

	tx, err := r.db.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	query := `
		INSERT INTO services (
			id, service_no, service_date, origin, destination, category,
			bus_name, dep_time, arr_time, journey_duration,
			boarding_point, drop_point, fare, active, created_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15
		)`

	_, err = tx.Exec(query,
		svc.ID, svc.ServiceNo, svc.ServiceDate, svc.Origin, svc.Destination,
		svc.Category, svc.BusName, svc.DepTime, svc.ArrTime, svc.Duration,
		svc.BoardingPt, svc.DropPt, svc.Fare, svc.Active, svc.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert service: %w", err)
	}

	for _, seat := range svc.Seats {
		_, err = tx.Exec(
			`INSERT INTO service_seats (service_id, seat_no, seat_status) VALUES ($1, $2, $3)`,
			svc.ID, seat.SeatNo, seat.Status,
		)
		if err != nil {
			return fmt.Errorf("failed to insert seat %s: %w", seat.SeatNo, err)
		}
	}

	return tx.Commit()
}

// GetByServiceNoAndDate retrieves one service with its seat inventory
func (r *ServiceRepository) GetByServiceNoAndDate(serviceNo, date string) (*models.Service, error) {
	var svc models.Service
	query := `
		SELECT id, service_no, service_date, origin, destination, category,
		       bus_name, dep_time, arr_time, journey_duration,
		       boarding_point, drop_point, fare, active, created_at
		FROM services
		WHERE service_no = $1 AND service_date = $2`

	err := r.db.Get(&svc, query, serviceNo, date)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	seats, err := r.getSeats(svc.ID)
	if err != nil {
		return nil, err
	}
	svc.Seats = seats
	return &svc, nil
}

// Search retrieves active services for a corridor and date whose departure is
// not earlier than the cutoff clock time (HH:MM). Services already departed,
// or departing inside the booking lead window, never surface.
func (r *ServiceRepository) Search(origin, destination, date, cutoff string) ([]models.Service, error) {
	var services []models.Service
	query := `
		SELECT id, service_no, service_date, origin, destination, category,
		       bus_name, dep_time, arr_time, journey_duration,
		       boarding_point, drop_point, fare, active, created_at
		FROM services
		WHERE origin = $1 AND destination = $2 AND service_date = $3
		  AND active = TRUE AND dep_time >= $4
		ORDER BY dep_time`

	err := r.db.Select(&services, query, origin, destination, date, cutoff)
	if err != nil {
		return nil, err
	}

	for i := range services {
		seats, err := r.getSeats(services[i].ID)
		if err != nil {
			return nil, err
		}
		services[i].Seats = seats
	}
	return services, nil
}

// DeactivateDeparted flips active off for services on the date whose
// departure time has passed the cutoff. Returns the number of rows touched.
func (r *ServiceRepository) DeactivateDeparted(date, cutoff string) (int, error) {
	result, err := r.db.Exec(
		`UPDATE services SET active = FALSE WHERE service_date = $1 AND active = TRUE AND dep_time < $2`,
		date, cutoff,
	)
	if err != nil {
		return 0, err
	}
	rows, _ := result.RowsAffected()
	return int(rows), nil
}

// DeleteByDate removes all services and their seats for one date. Seat rows
// go first to keep the FK satisfied without relying on cascade rules.
func (r *ServiceRepository) DeleteByDate(date string) (int, error) {
	tx, err := r.db.Beginx()
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	_, err = tx.Exec(
		`DELETE FROM service_seats WHERE service_id IN (SELECT id FROM services WHERE service_date = $1)`,
		date,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to delete seats: %w", err)
	}

	result, err := tx.Exec(`DELETE FROM services WHERE service_date = $1`, date)
	if err != nil {
		return 0, fmt.Errorf("failed to delete services: %w", err)
	}
	rows, _ := result.RowsAffected()

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return int(rows), nil
}

// ============================================================================
// SEAT INVENTORY OPERATIONS
// ============================================================================

func (r *ServiceRepository) getSeats(serviceID string) ([]models.Seat, error) {
	var seats []models.Seat
	query := `SELECT seat_no, seat_status FROM service_seats WHERE service_id = $1 ORDER BY seat_no`
	err := r.db.Select(&seats, query, serviceID)
	return seats, err
}

// GetSeatStatuses returns the current status of the named seats on a service
func (r *ServiceRepository) GetSeatStatuses(serviceID string, seatNos []string) ([]models.Seat, error) {
	if len(seatNos) == 0 {
		return []models.Seat{}, nil
	}

	query, args, err := sqlx.In(
		`SELECT seat_no, seat_status FROM service_seats WHERE service_id = ? AND seat_no IN (?)`,
		serviceID, seatNos,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to build seat status query: %w", err)
	}
	query = r.db.Rebind(query)

	var seats []models.Seat
	err = r.db.Select(&seats, query, args...)
	return seats, err
}

// UpdateSeatStatuses flips every named seat from one status to the other in a
// single transaction. A seat that is not in the expected prior status aborts
// and rolls back the whole batch, so a batch either fully holds or fully
// releases.
func (r *ServiceRepository) UpdateSeatStatuses(serviceID string, seatNos []string, from, to models.SeatStatus) error {
	if len(seatNos) == 0 {
		return nil
	}

	tx, err := r.db.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, seatNo := range seatNos {
		result, err := tx.Exec(
			`UPDATE service_seats SET seat_status = $1 WHERE service_id = $2 AND seat_no = $3 AND seat_status = $4`,
			to, serviceID, seatNo, from,
		)
		if err != nil {
			return fmt.Errorf("failed to update seat %s: %w", seatNo, err)
		}
		rows, _ := result.RowsAffected()
		if rows == 0 {
			return fmt.Errorf("seat %s is not %s: %w", seatNo, from, ErrSeatConflict)
		}
	}

	return tx.Commit()
}
