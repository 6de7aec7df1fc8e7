package models

import (
	"time"
)

// ReservationSession stages one user's in-progress checkout: the service and
// seats they picked plus the passenger details collected before payment.
// At most one session exists per user; a new search overwrites the old one.
type ReservationSession struct {
	ID          string      `json:"id" db:"id"`
	UserID      string      `json:"user_id" db:"user_id"`
	ServiceNo   string      `json:"service_no" db:"service_no"`
	JourneyDate string      `json:"journey_date" db:"journey_date"` // dd-mm-yyyy
	Origin      string      `json:"origin" db:"origin"`
	Destination string      `json:"destination" db:"destination"`
	BusName     string      `json:"bus_name" db:"bus_name"`
	DepTime     string      `json:"dep_time" db:"dep_time"`
	ArrTime     string      `json:"arr_time" db:"arr_time"`
	BoardingPt  string      `json:"boarding_point" db:"boarding_point"`
	DropPt      string      `json:"drop_point" db:"drop_point"`
	Seats       StringArray `json:"seats" db:"seats"`
	Fare        int64       `json:"fare" db:"fare"` // staged total for the selected seats

	PaxName   string `json:"pax_name" db:"pax_name"`
	PaxAge    string `json:"pax_age" db:"pax_age"`
	PaxPhone  string `json:"pax_phone" db:"pax_phone"`
	PaxGender string `json:"pax_gender" db:"pax_gender"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// SelectSeatsRequest stages a seat selection against a searched service.
type SelectSeatsRequest struct {
	ServiceNo   string   `json:"service_no" binding:"required"`
	JourneyDate string   `json:"journey_date" binding:"required"`
	Seats       []string `json:"seats" binding:"required,min=1"`
}

// PassengerRequest attaches passenger details to the staged session.
type PassengerRequest struct {
	Name   string `json:"name" binding:"required"`
	Age    string `json:"age" binding:"required"`
	Phone  string `json:"phone" binding:"required"`
	Gender string `json:"gender" binding:"required"`
}
