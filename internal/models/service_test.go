package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeatLayoutSleeper(t *testing.T) {
	seats := SeatLayout(BusCategorySleeper)
	require.Len(t, seats, 18)
	assert.Equal(t, 18, SeatCount(BusCategorySleeper))

	blocked := map[string]bool{}
	for _, s := range seats {
		if s.Status == SeatStatusDisabled {
			blocked[s.SeatNo] = true
		}
	}
	assert.Equal(t, map[string]bool{"1A": true, "1B": true, "1C": true, "6A": true}, blocked)
	assert.Equal(t, "1A", seats[0].SeatNo)
	assert.Equal(t, "6C", seats[len(seats)-1].SeatNo)
}

func TestSeatLayoutSeater(t *testing.T) {
	seats := SeatLayout(BusCategorySeater)
	require.Len(t, seats, 36)
	assert.Equal(t, 36, SeatCount(BusCategorySeater))

	blocked := map[string]bool{}
	for _, s := range seats {
		if s.Status == SeatStatusDisabled {
			blocked[s.SeatNo] = true
		}
	}
	assert.Equal(t, map[string]bool{
		"1A": true, "1B": true, "1C": true, "1D": true,
		"4A": true, "4B": true, "6A": true, "6D": true,
	}, blocked)
}

func TestSeatLayoutReturnsCopies(t *testing.T) {
	first := SeatLayout(BusCategorySleeper)
	first[3].Status = SeatStatusDisabled

	second := SeatLayout(BusCategorySleeper)
	assert.Equal(t, SeatStatusEnabled, second[3].Status)
}

func TestServiceSeatHelpers(t *testing.T) {
	svc := &Service{Seats: SeatLayout(BusCategorySleeper)}

	assert.True(t, svc.HasSeat("2B"))
	assert.False(t, svc.HasSeat("9D"))
	assert.Equal(t, []string{"1A", "1B", "1C", "6A"}, svc.DisabledSeatNumbers())
}

func TestBookingHoldExpired(t *testing.T) {
	now := time.Now()
	grace := 10 * time.Minute

	tests := []struct {
		name    string
		booking Booking
		want    bool
	}{
		{
			name:    "initiated past grace",
			booking: Booking{Status: BookingStatusInitiated, CreatedAt: now.Add(-11 * time.Minute)},
			want:    true,
		},
		{
			name:    "initiated within grace",
			booking: Booking{Status: BookingStatusInitiated, CreatedAt: now.Add(-9 * time.Minute)},
			want:    false,
		},
		{
			name:    "paid past grace",
			booking: Booking{Status: BookingStatusPaid, CreatedAt: now.Add(-11 * time.Minute)},
			want:    false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.booking.HoldExpired(now, grace))
		})
	}
}

func TestBookingCompletionDue(t *testing.T) {
	now := time.Now()
	buffer := 45 * time.Hour

	due := Booking{Status: BookingStatusPaid, CreatedAt: now.Add(-46 * time.Hour)}
	fresh := Booking{Status: BookingStatusPaid, CreatedAt: now.Add(-1 * time.Hour)}
	cancelled := Booking{Status: BookingStatusCancelled, CreatedAt: now.Add(-46 * time.Hour)}

	assert.True(t, due.CompletionDue(now, buffer))
	assert.False(t, fresh.CompletionDue(now, buffer))
	assert.False(t, cancelled.CompletionDue(now, buffer))
}

func TestBookingRefundAmount(t *testing.T) {
	assert.Equal(t, int64(750), (&Booking{Fare: 1500}).RefundAmount())
	// odd fares round down
	assert.Equal(t, int64(750), (&Booking{Fare: 1501}).RefundAmount())
}

func TestBookingCancellable(t *testing.T) {
	assert.True(t, (&Booking{Status: BookingStatusPaid}).Cancellable())
	assert.False(t, (&Booking{Status: BookingStatusInitiated}).Cancellable())
	assert.False(t, (&Booking{Status: BookingStatusCancelled}).Cancellable())
}

func TestStringArrayContains(t *testing.T) {
	held := StringArray{"2A", "2B"}

	assert.True(t, held.Contains("2A"))
	assert.False(t, held.Contains("5C"))
	assert.False(t, StringArray(nil).Contains("2A"))
}

func TestGiftCardRedeemable(t *testing.T) {
	assert.True(t, (&GiftCard{Status: GiftCardOpen, PaymentStatus: GiftCardPaymentCompleted}).Redeemable())
	assert.False(t, (&GiftCard{Status: GiftCardOpen, PaymentStatus: GiftCardPaymentInitiated}).Redeemable())
	assert.False(t, (&GiftCard{Status: GiftCardRedeemed, PaymentStatus: GiftCardPaymentCompleted}).Redeemable())
}
