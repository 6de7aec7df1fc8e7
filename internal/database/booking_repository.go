package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/eazybus/booking-backend/internal/models"
)

// BookingRepository handles booking ledger database operations
type BookingRepository struct {
	db *sqlx.DB
}

// NewBookingRepository creates a new BookingRepository
func NewBookingRepository(db *sqlx.DB) *BookingRepository {
	return &BookingRepository{db: db}
}

const bookingColumns = `
	id, user_id, booking_id, order_ref, payment_ref, payment_method,
	booking_status, booking_date, service_no, journey_date, bus_name,
	origin, destination, dep_time, arr_time, boarding_point, drop_point,
	seats, fare, pax_name, pax_age, pax_phone, pax_gender,
	created_at, updated_at`

// Create inserts a new booking row
func (r *BookingRepository) Create(b *models.Booking) error {
	b.ID = uuid.New().String()
	b.CreatedAt = time.Now()
	b.UpdatedAt = b.CreatedAt

	query := `
		INSERT INTO bookings (` + bookingColumns + `
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13,
			$14, $15, $16, $17, $18, $19, $20, $21, $22, $23, $24, $25
		)`

	_, err := r.db.Exec(query,
		b.ID, b.UserID, b.BookingID, b.OrderRef, b.PaymentRef, b.PaymentMethod,
		b.Status, b.BookingDate, b.ServiceNo, b.JourneyDate, b.BusName,
		b.Origin, b.Destination, b.DepTime, b.ArrTime, b.BoardingPt, b.DropPt,
		b.Seats, b.Fare, b.PaxName, b.PaxAge, b.PaxPhone, b.PaxGender,
		b.CreatedAt, b.UpdatedAt,
	)
	return err
}

// GetByBookingID retrieves a booking by its caller-visible reference
func (r *BookingRepository) GetByBookingID(bookingID string) (*models.Booking, error) {
	var b models.Booking
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE booking_id = $1`

	err := r.db.Get(&b, query, bookingID)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// GetByOrderRef retrieves a booking by its external order reference
func (r *BookingRepository) GetByOrderRef(orderRef string) (*models.Booking, error) {
	var b models.Booking
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE order_ref = $1`

	err := r.db.Get(&b, query, orderRef)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// ListByUser retrieves a user's bookings, newest first
func (r *BookingRepository) ListByUser(userID string) ([]models.Booking, error) {
	var bookings []models.Booking
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE user_id = $1 ORDER BY created_at DESC`

	err := r.db.Select(&bookings, query, userID)
	return bookings, err
}

// ListByStatusOlderThan retrieves bookings in a status created before the
// cutoff. The reconciliation sweeps page through these.
func (r *BookingRepository) ListByStatusOlderThan(status models.BookingStatus, cutoff time.Time) ([]models.Booking, error) {
	var bookings []models.Booking
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE booking_status = $1 AND created_at < $2`

	err := r.db.Select(&bookings, query, status, cutoff)
	return bookings, err
}

// ListPendingCardPayments retrieves initiated card bookings still waiting for
// a captured payment reference.
func (r *BookingRepository) ListPendingCardPayments() ([]models.Booking, error) {
	var bookings []models.Booking
	query := `
		SELECT ` + bookingColumns + `
		FROM bookings
		WHERE booking_status = $1 AND payment_method = $2 AND payment_ref = $3`

	err := r.db.Select(&bookings, query,
		models.BookingStatusInitiated, models.PaymentMethodCard, models.PendingPaymentRef)
	return bookings, err
}

// MarkPaid promotes an initiated booking to paid and records the captured
// payment reference. Keyed on the current status so replayed webhooks and the
// poller cannot double-apply.
func (r *BookingRepository) MarkPaid(id, paymentRef string) (bool, error) {
	query := `
		UPDATE bookings
		SET booking_status = $1, payment_ref = $2, updated_at = NOW()
		WHERE id = $3 AND booking_status = $4`

	result, err := r.db.Exec(query, models.BookingStatusPaid, paymentRef, id, models.BookingStatusInitiated)
	if err != nil {
		return false, err
	}
	rows, _ := result.RowsAffected()
	return rows > 0, nil
}

// MarkCompleted moves a paid booking to completed
func (r *BookingRepository) MarkCompleted(id string) (bool, error) {
	query := `
		UPDATE bookings
		SET booking_status = $1, updated_at = NOW()
		WHERE id = $2 AND booking_status = $3`

	result, err := r.db.Exec(query, models.BookingStatusCompleted, id, models.BookingStatusPaid)
	if err != nil {
		return false, err
	}
	rows, _ := result.RowsAffected()
	return rows > 0, nil
}

// MarkCancelled moves a paid booking to cancelled. Returns false when the
// booking was not in paid status, which makes cancellation idempotent.
func (r *BookingRepository) MarkCancelled(id string) (bool, error) {
	query := `
		UPDATE bookings
		SET booking_status = $1, updated_at = NOW()
		WHERE id = $2 AND booking_status = $3`

	result, err := r.db.Exec(query, models.BookingStatusCancelled, id, models.BookingStatusPaid)
	if err != nil {
		return false, err
	}
	rows, _ := result.RowsAffected()
	return rows > 0, nil
}

// DeleteInitiated hard-removes an initiated booking row. Only the stale-hold
// sweep uses this; every other transition keeps the row as audit evidence.
// Keyed on the status: a booking the webhook or poller promoted to paid after
// the sweep listed it is left alone, and the caller must not touch its seats.
func (r *BookingRepository) DeleteInitiated(id string) (bool, error) {
	result, err := r.db.Exec(
		`DELETE FROM bookings WHERE id = $1 AND booking_status = $2`,
		id, models.BookingStatusInitiated,
	)
	if err != nil {
		return false, fmt.Errorf("failed to delete booking: %w", err)
	}
	rows, _ := result.RowsAffected()
	return rows > 0, nil
}
