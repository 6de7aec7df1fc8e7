package database

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eazybus/booking-backend/internal/models"
)

func TestMarkPaid(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewBookingRepository(db)

	t.Run("Promotes Initiated Booking", func(t *testing.T) {
		mock.ExpectExec(`UPDATE bookings`).
			WithArgs(models.BookingStatusPaid, "pay_123", "row-1", models.BookingStatusInitiated).
			WillReturnResult(sqlmock.NewResult(0, 1))

		ok, err := repo.MarkPaid("row-1", "pay_123")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Replay Is A No-Op", func(t *testing.T) {
		mock.ExpectExec(`UPDATE bookings`).
			WithArgs(models.BookingStatusPaid, "pay_123", "row-1", models.BookingStatusInitiated).
			WillReturnResult(sqlmock.NewResult(0, 0))

		ok, err := repo.MarkPaid("row-1", "pay_123")
		require.NoError(t, err)
		assert.False(t, ok)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestMarkCancelled(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewBookingRepository(db)

	t.Run("Cancels Paid Booking", func(t *testing.T) {
		mock.ExpectExec(`UPDATE bookings`).
			WithArgs(models.BookingStatusCancelled, "row-1", models.BookingStatusPaid).
			WillReturnResult(sqlmock.NewResult(0, 1))

		ok, err := repo.MarkCancelled("row-1")
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("Second Cancel Reports False", func(t *testing.T) {
		mock.ExpectExec(`UPDATE bookings`).
			WithArgs(models.BookingStatusCancelled, "row-1", models.BookingStatusPaid).
			WillReturnResult(sqlmock.NewResult(0, 0))

		ok, err := repo.MarkCancelled("row-1")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteInitiated(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewBookingRepository(db)

	t.Run("Removes Initiated Hold", func(t *testing.T) {
		mock.ExpectExec(`DELETE FROM bookings`).
			WithArgs("row-1", models.BookingStatusInitiated).
			WillReturnResult(sqlmock.NewResult(0, 1))

		deleted, err := repo.DeleteInitiated("row-1")
		require.NoError(t, err)
		assert.True(t, deleted)
	})

	t.Run("Paid Booking Is Left Alone", func(t *testing.T) {
		mock.ExpectExec(`DELETE FROM bookings`).
			WithArgs("row-1", models.BookingStatusInitiated).
			WillReturnResult(sqlmock.NewResult(0, 0))

		deleted, err := repo.DeleteInitiated("row-1")
		require.NoError(t, err)
		assert.False(t, deleted)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetByOrderRefNotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewBookingRepository(db)

	mock.ExpectQuery(`SELECT (.+) FROM bookings WHERE order_ref`).
		WithArgs("order_missing").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	b, err := repo.GetByOrderRef("order_missing")
	require.NoError(t, err)
	assert.Nil(t, b)
	assert.NoError(t, mock.ExpectationsWereMet())
}
