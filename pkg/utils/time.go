package utils

import (
	"fmt"
	"time"
)

// ISO8601Layout renders milliseconds and keeps the zone offset
const ISO8601Layout = "2006-01-02T15:04:05.000Z07:00"

// Clock is the time source for system-generated timestamps
type Clock interface {
	Now() time.Time
}

// ZonedClock reports the current time in a fixed location
type ZonedClock struct {
	loc *time.Location
}

// NewZonedClock loads the IANA timezone name
func NewZonedClock(timezone string) (*ZonedClock, error) {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", timezone, err)
	}
	return &ZonedClock{loc: loc}, nil
}

// Now returns the current time in the clock's location
func (c *ZonedClock) Now() time.Time {
	return time.Now().In(c.loc)
}

// FixedClock always returns T
type FixedClock struct {
	T time.Time
}

func (c FixedClock) Now() time.Time { return c.T }

// NowISO8601 formats the clock's current time
func NowISO8601(c Clock) string {
	return FormatISO8601(c.Now())
}

// FormatISO8601 formats t with its own offset
func FormatISO8601(t time.Time) string {
	return t.Format(ISO8601Layout)
}
