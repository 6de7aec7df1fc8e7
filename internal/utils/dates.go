package utils

import (
	"fmt"
	"time"
)

// DateLayout is the wire format for calendar dates throughout the system.
const DateLayout = "02-01-2006" // dd-mm-yyyy

// TimeLayout is the wire format for clock times.
const TimeLayout = "15:04" // HH:MM, 24h

// Clock resolves "now" in the operating timezone. All date and time strings
// in the catalog are relative to this zone, not the host zone.
type Clock struct {
	loc *time.Location
}

// NewClock loads the named timezone. An empty name falls back to
// Asia/Kolkata, the zone the fleet operates in.
func NewClock(tz string) (*Clock, error) {
	if tz == "" {
		tz = "Asia/Kolkata"
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("failed to load timezone %q: %w", tz, err)
	}
	return &Clock{loc: loc}, nil
}

// Now returns the current instant in the operating zone.
func (c *Clock) Now() time.Time {
	return time.Now().In(c.loc)
}

// Today returns the current date as dd-mm-yyyy.
func (c *Clock) Today() string {
	return c.Now().Format(DateLayout)
}

// Tomorrow returns tomorrow's date as dd-mm-yyyy.
func (c *Clock) Tomorrow() string {
	return c.Now().AddDate(0, 0, 1).Format(DateLayout)
}

// Yesterday returns yesterday's date as dd-mm-yyyy.
func (c *Clock) Yesterday() string {
	return c.Now().AddDate(0, 0, -1).Format(DateLayout)
}

// CutoffTime returns the current clock time plus the booking lead window as
// HH:MM. Services departing before this cutoff are no longer bookable today.
func (c *Clock) CutoffTime(lead time.Duration) string {
	return c.Now().Add(lead).Format(TimeLayout)
}

// ParseDate parses a dd-mm-yyyy string in the operating zone.
func (c *Clock) ParseDate(s string) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout, s, c.loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return t, nil
}

// TimeBefore reports whether clock time a is strictly earlier than b.
// HH:MM zero-padded strings compare correctly as strings.
func TimeBefore(a, b string) bool {
	return a < b
}

// JourneyDuration formats the span from a departure to an arrival time as
// "Xh Ym". An arrival at or before the departure is taken as next-day.
func JourneyDuration(dep, arr string) (string, error) {
	d, err := time.Parse(TimeLayout, dep)
	if err != nil {
		return "", fmt.Errorf("invalid departure time %q: %w", dep, err)
	}
	a, err := time.Parse(TimeLayout, arr)
	if err != nil {
		return "", fmt.Errorf("invalid arrival time %q: %w", arr, err)
	}
	span := a.Sub(d)
	if span <= 0 {
		span += 24 * time.Hour
	}
	h := int(span.Hours())
	m := int(span.Minutes()) % 60
	return fmt.Sprintf("%dh %dm", h, m), nil
}
