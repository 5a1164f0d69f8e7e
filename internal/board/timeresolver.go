package board

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// DefaultTimezone is the civil zone all board times are computed in
const DefaultTimezone = "Europe/Berlin"

// ErrNoTimestamp indicates that neither a real-time nor a scheduled value exists
var ErrNoTimestamp = errors.New("no departure timestamp")

// ParseError indicates a timestamp that is present but malformed
type ParseError struct {
	Field string
	Value string
	Err   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("invalid %s timestamp %q: %v", e.Field, e.Value, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Clock supplies the current instant
type Clock interface {
	Now() time.Time
}

// ClockFunc adapts a function to Clock
type ClockFunc func() time.Time

// Now calls f
func (f ClockFunc) Now() time.Time {
	return f()
}

// SystemClock reads the wall clock
var SystemClock Clock = ClockFunc(time.Now)

// FixedClock always returns t
func FixedClock(t time.Time) Clock {
	return ClockFunc(func() time.Time { return t })
}

// TimeResolver resolves effective departure instants and remaining minutes
// against a clock in a fixed civil timezone.
type TimeResolver struct {
	loc   *time.Location
	clock Clock
}

// NewTimeResolver creates a resolver; a nil clock means the system clock
func NewTimeResolver(loc *time.Location, clock Clock) *TimeResolver {
	if clock == nil {
		clock = SystemClock
	}
	return &TimeResolver{loc: loc, clock: clock}
}

// LoadTimeResolver creates a resolver for a named IANA zone
func LoadTimeResolver(tz string, clock Clock) (*TimeResolver, error) {
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("failed to load timezone: %w", err)
	}
	return NewTimeResolver(loc, clock), nil
}

// Location returns the resolver's timezone
func (r *TimeResolver) Location() *time.Location {
	return r.loc
}

// Now returns the current instant in the resolver's timezone
func (r *TimeResolver) Now() time.Time {
	return r.clock.Now().In(r.loc)
}

// ResolveEffectiveInstant picks the real-time value, falling back to the
// scheduled value only when no real-time value exists. A malformed
// real-time value is reported as a ParseError and is not replaced by the
// schedule. fallback reports whether the scheduled value was used.
func (r *TimeResolver) ResolveEffectiveInstant(realTimeWhen, scheduledWhen *string) (instant time.Time, fallback bool, err error) {
	field, value := "real-time", realTimeWhen
	if value == nil {
		field, value, fallback = "scheduled", scheduledWhen, true
	}
	if value == nil {
		return time.Time{}, fallback, ErrNoTimestamp
	}

	t, err := time.Parse(time.RFC3339, *value)
	if err != nil {
		return time.Time{}, fallback, &ParseError{Field: field, Value: *value, Err: err}
	}
	return t, fallback, nil
}

// MinutesUntil returns the whole minutes from now until effective, rounded
// down and clamped at zero.
func MinutesUntil(effective, now time.Time) int {
	minutes := math.Floor(effective.Sub(now).Seconds() / 60)
	if minutes < 0 {
		return 0
	}
	return int(minutes)
}
