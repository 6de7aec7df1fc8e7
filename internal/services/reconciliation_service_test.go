package services

import (
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eazybus/booking-backend/internal/config"
	"github.com/eazybus/booking-backend/internal/database"
	"github.com/eazybus/booking-backend/internal/models"
	"github.com/eazybus/booking-backend/internal/utils"
	"github.com/eazybus/booking-backend/pkg/mailer"
	"github.com/eazybus/booking-backend/pkg/ticket"
)

func newMockRecon(t *testing.T) (*ReconciliationService, sqlmock.Sqlmock) {
	t.Helper()
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { mockDB.Close() })
	db := sqlx.NewDb(mockDB, "sqlmock")

	logger := testLogger()
	clock, err := utils.NewClock("UTC")
	require.NoError(t, err)

	bookingRepo := database.NewBookingRepository(db)
	walletRepo := database.NewWalletRepository(db)
	giftRepo := database.NewGiftCardRepository(db)
	serviceRepo := database.NewServiceRepository(db)
	sessionRepo := database.NewSessionRepository(db)

	mail := mailer.New(&config.MailConfig{Mode: "dev"}, logger)
	seatLock := NewSeatLockService(serviceRepo, logger)
	gateway := NewCardGatewayService(&config.GatewayConfig{WebhookSecret: "whsec_test"}, logger)
	funding := NewFundingService(&config.FundingConfig{}, logger)
	walletSvc := NewWalletService(walletRepo, funding, mail, logger)
	giftSvc := NewGiftCardService(giftRepo, walletRepo, walletSvc, funding, mail, logger)
	catalog := NewCatalogService(database.NewRouteRepository(db), serviceRepo, clock, 20*time.Minute, logger)
	bookingSvc := NewBookingService(bookingRepo, sessionRepo, serviceRepo, seatLock,
		gateway, walletSvc, walletRepo, mail, ticket.NewRenderer(), clock, logger)

	return NewReconciliationService(
		bookingRepo, walletRepo, giftRepo, serviceRepo,
		catalog, bookingSvc, seatLock, gateway, funding, giftSvc,
		clock, 10*time.Minute, 45*time.Hour, logger,
	), mock
}

func TestSweepCompletions(t *testing.T) {
	recon, mock := newMockRecon(t)

	mock.ExpectQuery(`SELECT (.+) FROM bookings WHERE booking_status`).
		WithArgs(models.BookingStatusPaid, sqlmock.AnyArg()).
		WillReturnRows(addBookingRow(sqlmock.NewRows(bookingTestColumns),
			"row-1", "user@test.in", "EZB1234567", "order_1", models.BookingStatusPaid))

	mock.ExpectExec(`UPDATE bookings`).
		WithArgs(models.BookingStatusCompleted, "row-1", models.BookingStatusPaid).
		WillReturnResult(sqlmock.NewResult(0, 1))

	recon.SweepCompletions()
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSweepStaleHolds(t *testing.T) {
	serviceColumns := []string{
		"id", "service_no", "service_date", "origin", "destination", "category",
		"bus_name", "dep_time", "arr_time", "journey_duration",
		"boarding_point", "drop_point", "fare", "active", "created_at",
	}

	t.Run("Deletes The Hold Then Releases Seats", func(t *testing.T) {
		recon, mock := newMockRecon(t)
		now := time.Now()

		mock.ExpectQuery(`SELECT (.+) FROM bookings WHERE booking_status`).
			WithArgs(models.BookingStatusInitiated, sqlmock.AnyArg()).
			WillReturnRows(addBookingRow(sqlmock.NewRows(bookingTestColumns),
				"row-1", "user@test.in", "EZB1234567", "order_1", models.BookingStatusInitiated))

		mock.ExpectExec(`DELETE FROM bookings`).
			WithArgs("row-1", models.BookingStatusInitiated).
			WillReturnResult(sqlmock.NewResult(0, 1))

		mock.ExpectQuery(`SELECT (.+) FROM services`).
			WithArgs("EZB-101", "06-01-2026").
			WillReturnRows(sqlmock.NewRows(serviceColumns).AddRow(
				"svc-1", "EZB-101", "06-01-2026", "Mumbai", "Pune", "sleeper",
				"Night Rider", "22:00", "04:30", "6h 30m", "Dadar", "Shivajinagar",
				1200, true, now,
			))
		mock.ExpectQuery(`SELECT seat_no, seat_status FROM service_seats`).
			WithArgs("svc-1").
			WillReturnRows(sqlmock.NewRows([]string{"seat_no", "seat_status"}).
				AddRow("2A", "disabled").AddRow("2B", "disabled"))

		mock.ExpectBegin()
		mock.ExpectExec(`UPDATE service_seats SET seat_status`).
			WithArgs(models.SeatStatusEnabled, "svc-1", "2A", models.SeatStatusDisabled).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(`UPDATE service_seats SET seat_status`).
			WithArgs(models.SeatStatusEnabled, "svc-1", "2B", models.SeatStatusDisabled).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		recon.SweepStaleHolds()
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Booking Paid Mid-Sweep Keeps Its Seats", func(t *testing.T) {
		recon, mock := newMockRecon(t)

		// listed as initiated, but a payment lands before the delete: the
		// status-keyed delete misses and the sold seats stay disabled
		mock.ExpectQuery(`SELECT (.+) FROM bookings WHERE booking_status`).
			WithArgs(models.BookingStatusInitiated, sqlmock.AnyArg()).
			WillReturnRows(addBookingRow(sqlmock.NewRows(bookingTestColumns),
				"row-1", "user@test.in", "EZB1234567", "order_1", models.BookingStatusInitiated))

		mock.ExpectExec(`DELETE FROM bookings`).
			WithArgs("row-1", models.BookingStatusInitiated).
			WillReturnResult(sqlmock.NewResult(0, 0))

		recon.SweepStaleHolds()
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Purged Service Still Drops The Hold", func(t *testing.T) {
		recon, mock := newMockRecon(t)

		mock.ExpectQuery(`SELECT (.+) FROM bookings WHERE booking_status`).
			WithArgs(models.BookingStatusInitiated, sqlmock.AnyArg()).
			WillReturnRows(addBookingRow(sqlmock.NewRows(bookingTestColumns),
				"row-1", "user@test.in", "EZB1234567", "order_1", models.BookingStatusInitiated))

		mock.ExpectExec(`DELETE FROM bookings`).
			WithArgs("row-1", models.BookingStatusInitiated).
			WillReturnResult(sqlmock.NewResult(0, 1))

		mock.ExpectQuery(`SELECT (.+) FROM services`).
			WithArgs("EZB-101", "06-01-2026").
			WillReturnRows(sqlmock.NewRows(serviceColumns))

		recon.SweepStaleHolds()
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
