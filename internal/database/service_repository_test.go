package database

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eazybus/booking-backend/internal/models"
)

func newMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { mockDB.Close() })
	return sqlx.NewDb(mockDB, "sqlmock"), mock
}

func TestAnyServiceForDate(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewServiceRepository(db)

	t.Run("Services Exist", func(t *testing.T) {
		mock.ExpectQuery(`SELECT COUNT\(\*\) FROM services WHERE service_date`).
			WithArgs("05-01-2026").
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(12))

		exists, err := repo.AnyServiceForDate("05-01-2026")
		require.NoError(t, err)
		assert.True(t, exists)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Empty Day", func(t *testing.T) {
		mock.ExpectQuery(`SELECT COUNT\(\*\) FROM services WHERE service_date`).
			WithArgs("06-01-2026").
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

		exists, err := repo.AnyServiceForDate("06-01-2026")
		require.NoError(t, err)
		assert.False(t, exists)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestUpdateSeatStatuses(t *testing.T) {
	serviceID := "svc-1"

	t.Run("Batch Commits When All Seats Flip", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewServiceRepository(db)

		mock.ExpectBegin()
		mock.ExpectExec(`UPDATE service_seats SET seat_status`).
			WithArgs(models.SeatStatusDisabled, serviceID, "2A", models.SeatStatusEnabled).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(`UPDATE service_seats SET seat_status`).
			WithArgs(models.SeatStatusDisabled, serviceID, "2B", models.SeatStatusEnabled).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		err := repo.UpdateSeatStatuses(serviceID, []string{"2A", "2B"},
			models.SeatStatusEnabled, models.SeatStatusDisabled)
		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Batch Rolls Back On Seat Conflict", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewServiceRepository(db)

		mock.ExpectBegin()
		mock.ExpectExec(`UPDATE service_seats SET seat_status`).
			WithArgs(models.SeatStatusDisabled, serviceID, "2A", models.SeatStatusEnabled).
			WillReturnResult(sqlmock.NewResult(0, 1))
		// 2B was grabbed by another checkout: zero rows match the precondition
		mock.ExpectExec(`UPDATE service_seats SET seat_status`).
			WithArgs(models.SeatStatusDisabled, serviceID, "2B", models.SeatStatusEnabled).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectRollback()

		err := repo.UpdateSeatStatuses(serviceID, []string{"2A", "2B"},
			models.SeatStatusEnabled, models.SeatStatusDisabled)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrSeatConflict)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Empty Batch Is A No-Op", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewServiceRepository(db)

		err := repo.UpdateSeatStatuses(serviceID, nil,
			models.SeatStatusEnabled, models.SeatStatusDisabled)
		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestDeactivateDeparted(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewServiceRepository(db)

	mock.ExpectExec(`UPDATE services SET active = FALSE`).
		WithArgs("05-01-2026", "14:30").
		WillReturnResult(sqlmock.NewResult(0, 3))

	n, err := repo.DeactivateDeparted("05-01-2026", "14:30")
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteByDate(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewServiceRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM service_seats WHERE service_id IN`).
		WithArgs("04-01-2026").
		WillReturnResult(sqlmock.NewResult(0, 36))
	mock.ExpectExec(`DELETE FROM services WHERE service_date`).
		WithArgs("04-01-2026").
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectCommit()

	n, err := repo.DeleteByDate("04-01-2026")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.NoError(t, mock.ExpectationsWereMet())
}
