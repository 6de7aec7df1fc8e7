package services

import (
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eazybus/booking-backend/internal/database"
	"github.com/eazybus/booking-backend/internal/models"
	"github.com/eazybus/booking-backend/internal/utils"
)

func newMockCatalog(t *testing.T) (*CatalogService, sqlmock.Sqlmock) {
	t.Helper()
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { mockDB.Close() })
	db := sqlx.NewDb(mockDB, "sqlmock")

	clock, err := utils.NewClock("UTC")
	require.NoError(t, err)

	return NewCatalogService(
		database.NewRouteRepository(db),
		database.NewServiceRepository(db),
		clock,
		20*time.Minute,
		testLogger(),
	), mock
}

func TestEnsureServiceDay(t *testing.T) {
	routeColumns := []string{
		"id", "service_no", "origin", "destination", "category", "bus_name",
		"dep_time", "arr_time", "journey_duration", "boarding_point", "drop_point",
		"fare", "created_at",
	}

	t.Run("Day Already Materialized Is A No-Op", func(t *testing.T) {
		svc, mock := newMockCatalog(t)

		mock.ExpectQuery(`SELECT COUNT\(\*\) FROM services WHERE service_date`).
			WithArgs("05-01-2026").
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(4))

		created, err := svc.EnsureServiceDay("05-01-2026")
		require.NoError(t, err)
		assert.Zero(t, created)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Empty Day Materializes Every Route", func(t *testing.T) {
		svc, mock := newMockCatalog(t)
		now := time.Now()

		mock.ExpectQuery(`SELECT COUNT\(\*\) FROM services WHERE service_date`).
			WithArgs("05-01-2026").
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

		mock.ExpectQuery(`SELECT (.+) FROM route_templates`).
			WillReturnRows(sqlmock.NewRows(routeColumns).AddRow(
				"route-1", "EZB-101", "Mumbai", "Pune", "sleeper", "Night Rider",
				"22:00", "04:30", "6h 30m", "Dadar", "Shivajinagar", 1200, now,
			))

		mock.ExpectBegin()
		mock.ExpectExec(`INSERT INTO services`).
			WillReturnResult(sqlmock.NewResult(0, 1))
		for range models.SeatLayout(models.BusCategorySleeper) {
			mock.ExpectExec(`INSERT INTO service_seats`).
				WillReturnResult(sqlmock.NewResult(0, 1))
		}
		mock.ExpectCommit()

		created, err := svc.EnsureServiceDay("05-01-2026")
		require.NoError(t, err)
		assert.Equal(t, 1, created)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestCreateRouteComputesDuration(t *testing.T) {
	svc, mock := newMockCatalog(t)

	mock.ExpectQuery(`SELECT (.+) FROM route_templates WHERE service_no`).
		WithArgs("EZB-202").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	mock.ExpectExec(`INSERT INTO route_templates`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	route, err := svc.CreateRoute(&models.CreateRouteRequest{
		ServiceNo:   "EZB-202",
		Origin:      "Bengaluru",
		Destination: "Chennai",
		Category:    models.BusCategorySeater,
		BusName:     "Coast Liner",
		DepTime:     "21:15",
		ArrTime:     "05:45",
		BoardingPt:  "Majestic",
		DropPt:      "Koyambedu",
		Fare:        900,
	})
	require.NoError(t, err)
	assert.Equal(t, "8h 30m", route.Duration)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSearchRejectsMalformedDate(t *testing.T) {
	svc, _ := newMockCatalog(t)

	_, err := svc.Search("Mumbai", "Pune", "2026-01-05")
	assert.Error(t, err)
}
