package models

import (
	"time"
)

// BookingStatus represents the lifecycle state of a purchase attempt
// Matches PostgreSQL ENUM: booking_status
type BookingStatus string

const (
	// BookingStatusInitiated marks a checkout whose seats are held but whose
	// payment has not been captured. Initiated bookings that outlive the hold
	// grace period are hard-deleted by the stale-hold sweep.
	BookingStatusInitiated BookingStatus = "initiated"
	BookingStatusPaid      BookingStatus = "paid"
	BookingStatusCompleted BookingStatus = "completed"
	BookingStatusCancelled BookingStatus = "cancelled"
)

// PaymentMethod identifies the settlement path a booking was paid through
type PaymentMethod string

const (
	PaymentMethodCard   PaymentMethod = "card"
	PaymentMethodWallet PaymentMethod = "eazy-wallet"
)

// PendingPaymentRef is stored as the payment reference of a card booking
// until the gateway reports a captured payment.
const PendingPaymentRef = "NA"

// Booking is the durable record of one purchase attempt. Journey fields are
// copied from the Service at checkout, never referenced live: the booking must
// remain valid evidence after the service row is purged.
type Booking struct {
	ID            string        `json:"id" db:"id"`
	UserID        string        `json:"user_id" db:"user_id"`
	BookingID     string        `json:"booking_id" db:"booking_id"`   // caller-visible, EZB#######
	OrderRef      string        `json:"order_ref" db:"order_ref"`     // gateway order id or synthetic wallet ref, globally unique
	PaymentRef    string        `json:"payment_ref" db:"payment_ref"` // captured payment id, "NA" until known
	PaymentMethod PaymentMethod `json:"payment_method" db:"payment_method"`
	Status        BookingStatus `json:"booking_status" db:"booking_status"`
	BookingDate   string        `json:"booking_date" db:"booking_date"` // dd-mm-yyyy

	ServiceNo   string      `json:"service_no" db:"service_no"`
	JourneyDate string      `json:"journey_date" db:"journey_date"` // dd-mm-yyyy, denormalized
	BusName     string      `json:"bus_name" db:"bus_name"`
	Origin      string      `json:"origin" db:"origin"`
	Destination string      `json:"destination" db:"destination"`
	DepTime     string      `json:"dep_time" db:"dep_time"`
	ArrTime     string      `json:"arr_time" db:"arr_time"`
	BoardingPt  string      `json:"boarding_point" db:"boarding_point"`
	DropPt      string      `json:"drop_point" db:"drop_point"`
	Seats       StringArray `json:"seats" db:"seats"`
	Fare        int64       `json:"fare" db:"fare"` // total for all seats

	PaxName   string `json:"pax_name" db:"pax_name"`
	PaxAge    string `json:"pax_age" db:"pax_age"`
	PaxPhone  string `json:"pax_phone" db:"pax_phone"`
	PaxGender string `json:"pax_gender" db:"pax_gender"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// HoldExpired reports whether an initiated booking has outlived the hold
// grace period and should have its seats reclaimed.
func (b *Booking) HoldExpired(now time.Time, grace time.Duration) bool {
	return b.Status == BookingStatusInitiated && now.Sub(b.CreatedAt) > grace
}

// CompletionDue reports whether a paid booking is old enough for the
// post-journey bookkeeping transition to completed.
func (b *Booking) CompletionDue(now time.Time, buffer time.Duration) bool {
	return b.Status == BookingStatusPaid && now.Sub(b.CreatedAt) > buffer
}

// Cancellable reports whether the booking can still be user-cancelled.
// The service-still-active check happens against storage at cancel time.
func (b *Booking) Cancellable() bool {
	return b.Status == BookingStatusPaid
}

// RefundAmount is half the paid fare, rounded down.
func (b *Booking) RefundAmount() int64 {
	return b.Fare / 2
}

// PaymentPending reports whether a card booking is still waiting for the
// gateway to confirm a captured payment against its order.
func (b *Booking) PaymentPending() bool {
	return b.Status == BookingStatusInitiated && b.PaymentRef == PendingPaymentRef
}
