package models

import (
	"time"
)

// RouteTemplate represents a recurring bus route. Each night the scheduler
// materializes one Service per template per calendar date.
type RouteTemplate struct {
	ID          string      `json:"id" db:"id"`
	ServiceNo   string      `json:"service_no" db:"service_no"`
	Origin      string      `json:"origin" db:"origin"`
	Destination string      `json:"destination" db:"destination"`
	Category    BusCategory `json:"category" db:"category"`
	BusName     string      `json:"bus_name" db:"bus_name"`
	DepTime     string      `json:"dep_time" db:"dep_time"` // HH:MM
	ArrTime     string      `json:"arr_time" db:"arr_time"` // HH:MM
	Duration    string      `json:"journey_duration" db:"journey_duration"`
	BoardingPt  string      `json:"boarding_point" db:"boarding_point"`
	DropPt      string      `json:"drop_point" db:"drop_point"`
	Fare        int64       `json:"fare" db:"fare"`
	CreatedAt   time.Time   `json:"created_at" db:"created_at"`
}

// CreateRouteRequest is the admin add-route payload. Journey duration is
// computed from the departure and arrival times, not supplied.
type CreateRouteRequest struct {
	ServiceNo   string      `json:"service_no" binding:"required"`
	Origin      string      `json:"origin" binding:"required"`
	Destination string      `json:"destination" binding:"required"`
	Category    BusCategory `json:"category" binding:"required,oneof=sleeper seater"`
	BusName     string      `json:"bus_name" binding:"required"`
	DepTime     string      `json:"dep_time" binding:"required"`
	ArrTime     string      `json:"arr_time" binding:"required"`
	BoardingPt  string      `json:"boarding_point" binding:"required"`
	DropPt      string      `json:"drop_point" binding:"required"`
	Fare        int64       `json:"fare" binding:"required,min=1"`
}
