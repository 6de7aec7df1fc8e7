package models

import (
	"time"
)

// BusCategory represents the coach type of a route and its daily services
type BusCategory string

const (
	BusCategorySleeper BusCategory = "sleeper"
	BusCategorySeater  BusCategory = "seater"
)

// SeatStatus represents the purchasability of a single seat
// Matches PostgreSQL ENUM: seat_status
type SeatStatus string

const (
	SeatStatusEnabled  SeatStatus = "enabled"  // purchasable
	SeatStatusDisabled SeatStatus = "disabled" // structurally blocked, held, or sold
)

// Service represents one bookable trip instance: a route template materialized
// for a single calendar date, carrying its own seat inventory.
type Service struct {
	ID          string      `json:"id" db:"id"`
	ServiceNo   string      `json:"service_no" db:"service_no"`
	ServiceDate string      `json:"service_date" db:"service_date"` // dd-mm-yyyy
	Origin      string      `json:"origin" db:"origin"`
	Destination string      `json:"destination" db:"destination"`
	Category    BusCategory `json:"category" db:"category"`
	BusName     string      `json:"bus_name" db:"bus_name"`
	DepTime     string      `json:"dep_time" db:"dep_time"` // HH:MM
	ArrTime     string      `json:"arr_time" db:"arr_time"` // HH:MM
	Duration    string      `json:"journey_duration" db:"journey_duration"`
	BoardingPt  string      `json:"boarding_point" db:"boarding_point"`
	DropPt      string      `json:"drop_point" db:"drop_point"`
	Fare        int64       `json:"fare" db:"fare"` // per seat, whole rupees
	Active      bool        `json:"active" db:"active"`
	Seats       []Seat      `json:"seats" db:"-"`
	CreatedAt   time.Time   `json:"created_at" db:"created_at"`
}

// Seat is one entry of a Service's fixed seat inventory. The seat set never
// changes size or numbering after the service is materialized; only
// seat_status transitions.
type Seat struct {
	SeatNo string     `json:"seat_no" db:"seat_no"`
	Status SeatStatus `json:"seat_status" db:"seat_status"`
}

type seatSeed struct {
	SeatNo string
	Status SeatStatus
}

// Seat layouts are static per category. The disabled entries are the
// structurally blocked seats (driver cabin, stairwell) and are identical for
// every service of that category.
var sleeperSeatSeed = []seatSeed{
	{"1A", SeatStatusDisabled}, {"1B", SeatStatusDisabled}, {"1C", SeatStatusDisabled},
	{"2A", SeatStatusEnabled}, {"2B", SeatStatusEnabled}, {"2C", SeatStatusEnabled},
	{"3A", SeatStatusEnabled}, {"3B", SeatStatusEnabled}, {"3C", SeatStatusEnabled},
	{"4A", SeatStatusEnabled}, {"4B", SeatStatusEnabled}, {"4C", SeatStatusEnabled},
	{"5A", SeatStatusEnabled}, {"5B", SeatStatusEnabled}, {"5C", SeatStatusEnabled},
	{"6A", SeatStatusDisabled}, {"6B", SeatStatusEnabled}, {"6C", SeatStatusEnabled},
}

var seaterSeatSeed = []seatSeed{
	{"1A", SeatStatusDisabled}, {"1B", SeatStatusDisabled}, {"1C", SeatStatusDisabled}, {"1D", SeatStatusDisabled},
	{"2A", SeatStatusEnabled}, {"2B", SeatStatusEnabled}, {"2C", SeatStatusEnabled}, {"2D", SeatStatusEnabled},
	{"3A", SeatStatusEnabled}, {"3B", SeatStatusEnabled}, {"3C", SeatStatusEnabled}, {"3D", SeatStatusEnabled},
	{"4A", SeatStatusDisabled}, {"4B", SeatStatusDisabled}, {"4C", SeatStatusEnabled}, {"4D", SeatStatusEnabled},
	{"5A", SeatStatusEnabled}, {"5B", SeatStatusEnabled}, {"5C", SeatStatusEnabled}, {"5D", SeatStatusEnabled},
	{"6A", SeatStatusDisabled}, {"6B", SeatStatusEnabled}, {"6C", SeatStatusEnabled}, {"6D", SeatStatusDisabled},
	{"7A", SeatStatusEnabled}, {"7B", SeatStatusEnabled}, {"7C", SeatStatusEnabled}, {"7D", SeatStatusEnabled},
	{"8A", SeatStatusEnabled}, {"8B", SeatStatusEnabled}, {"8C", SeatStatusEnabled}, {"8D", SeatStatusEnabled},
	{"9A", SeatStatusEnabled}, {"9B", SeatStatusEnabled}, {"9C", SeatStatusEnabled}, {"9D", SeatStatusEnabled},
}

// SeatLayout returns the seed seat inventory for a bus category. Unknown
// categories fall back to the seater layout, matching how route templates are
// validated on creation.
func SeatLayout(category BusCategory) []Seat {
	seed := seaterSeatSeed
	if category == BusCategorySleeper {
		seed = sleeperSeatSeed
	}
	seats := make([]Seat, len(seed))
	for i, s := range seed {
		seats[i] = Seat{SeatNo: s.SeatNo, Status: s.Status}
	}
	return seats
}

// SeatCount returns the fixed inventory size for a category: 18 for sleeper
// coaches, 36 for seater coaches.
func SeatCount(category BusCategory) int {
	if category == BusCategorySleeper {
		return 18
	}
	return 36
}

// DisabledSeatNumbers returns the seat numbers currently not purchasable,
// in layout order. Used to annotate the seat-selection view.
func (s *Service) DisabledSeatNumbers() []string {
	blocked := make([]string, 0, len(s.Seats))
	for _, seat := range s.Seats {
		if seat.Status == SeatStatusDisabled {
			blocked = append(blocked, seat.SeatNo)
		}
	}
	return blocked
}

// HasSeat reports whether seatNo exists in the service's layout.
func (s *Service) HasSeat(seatNo string) bool {
	for _, seat := range s.Seats {
		if seat.SeatNo == seatNo {
			return true
		}
	}
	return false
}
