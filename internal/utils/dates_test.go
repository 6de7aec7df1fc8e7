package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClockDefaultsToKolkata(t *testing.T) {
	c, err := NewClock("")
	require.NoError(t, err)
	assert.Equal(t, "Asia/Kolkata", c.loc.String())
}

func TestNewClockRejectsUnknownZone(t *testing.T) {
	_, err := NewClock("Mars/Olympus")
	assert.Error(t, err)
}

func TestClockDateStrings(t *testing.T) {
	c, err := NewClock("UTC")
	require.NoError(t, err)

	today, err := c.ParseDate(c.Today())
	require.NoError(t, err)
	tomorrow, err := c.ParseDate(c.Tomorrow())
	require.NoError(t, err)
	yesterday, err := c.ParseDate(c.Yesterday())
	require.NoError(t, err)

	assert.Equal(t, 24*time.Hour, tomorrow.Sub(today))
	assert.Equal(t, 24*time.Hour, today.Sub(yesterday))
}

func TestParseDateFormat(t *testing.T) {
	c, err := NewClock("UTC")
	require.NoError(t, err)

	d, err := c.ParseDate("05-01-2026")
	require.NoError(t, err)
	assert.Equal(t, time.January, d.Month())
	assert.Equal(t, 5, d.Day())

	_, err = c.ParseDate("2026-01-05")
	assert.Error(t, err)
}

func TestTimeBefore(t *testing.T) {
	assert.True(t, TimeBefore("09:30", "10:00"))
	assert.True(t, TimeBefore("09:30", "09:31"))
	assert.False(t, TimeBefore("22:00", "06:00"))
	assert.False(t, TimeBefore("10:00", "10:00"))
}

func TestJourneyDuration(t *testing.T) {
	tests := []struct {
		name string
		dep  string
		arr  string
		want string
	}{
		{"same day", "08:00", "14:30", "6h 30m"},
		{"overnight", "21:15", "05:45", "8h 30m"},
		{"arrival equals departure treated as full day", "10:00", "10:00", "24h 0m"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := JourneyDuration(tt.dep, tt.arr)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := JourneyDuration("25:00", "10:00")
	assert.Error(t, err)
}

func TestIDShapes(t *testing.T) {
	id, err := NewBookingID()
	require.NoError(t, err)
	assert.Len(t, id, 10)
	assert.Equal(t, "EZB", id[:3])

	ref, err := NewWalletSettlementRef()
	require.NoError(t, err)
	assert.Len(t, ref, 34)
	assert.Equal(t, "ewtr_0", ref[:6])

	code, err := NewGiftCardCode()
	require.NoError(t, err)
	assert.Len(t, code, 12)
	assert.NotContains(t, code, "O")
	assert.NotContains(t, code, "0")

	pin, err := NewGiftCardPIN()
	require.NoError(t, err)
	assert.Len(t, pin, 6)
	for _, r := range pin {
		assert.True(t, r >= '0' && r <= '9')
	}
}
