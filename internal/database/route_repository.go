package database

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/eazybus/booking-backend/internal/models"
)

// RouteRepository handles route template database operations
type RouteRepository struct {
	db *sqlx.DB
}

// NewRouteRepository creates a new RouteRepository
func NewRouteRepository(db *sqlx.DB) *RouteRepository {
	return &RouteRepository{db: db}
}

// Create inserts a new route template
func (r *RouteRepository) Create(route *models.RouteTemplate) error {
	route.ID = uuid.New().String()
	route.CreatedAt = time.Now()

	query := `
		INSERT INTO route_templates (
			id, service_no, origin, destination, category, bus_name,
			dep_time, arr_time, journey_duration, boarding_point, drop_point,
			fare, created_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13
		)`

	_, err := r.db.Exec(query,
		route.ID, route.ServiceNo, route.Origin, route.Destination, route.Category,
		route.BusName, route.DepTime, route.ArrTime, route.Duration,
		route.BoardingPt, route.DropPt, route.Fare, route.CreatedAt,
	)
	return err
}

// GetByServiceNo retrieves a route template by its service number
func (r *RouteRepository) GetByServiceNo(serviceNo string) (*models.RouteTemplate, error) {
	var route models.RouteTemplate
	query := `
		SELECT id, service_no, origin, destination, category, bus_name,
		       dep_time, arr_time, journey_duration, boarding_point, drop_point,
		       fare, created_at
		FROM route_templates
		WHERE service_no = $1`

	err := r.db.Get(&route, query, serviceNo)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &route, nil
}

// List retrieves all route templates ordered by service number
func (r *RouteRepository) List() ([]models.RouteTemplate, error) {
	var routes []models.RouteTemplate
	query := `
		SELECT id, service_no, origin, destination, category, bus_name,
		       dep_time, arr_time, journey_duration, boarding_point, drop_point,
		       fare, created_at
		FROM route_templates
		ORDER BY service_no`

	err := r.db.Select(&routes, query)
	return routes, err
}

// Delete removes a route template. Existing services for the route are left
// alone; the retention sweep purges them on schedule.
func (r *RouteRepository) Delete(serviceNo string) (bool, error) {
	result, err := r.db.Exec(`DELETE FROM route_templates WHERE service_no = $1`, serviceNo)
	if err != nil {
		return false, err
	}
	rows, _ := result.RowsAffected()
	return rows > 0, nil
}
