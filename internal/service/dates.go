package service

import (
	"math"
	"time"
)

const daysPerYear = 365.25

// Clock returns the current time
type Clock func() time.Time

// SystemClock reads the wall clock in UTC
func SystemClock() time.Time {
	return time.Now().UTC()
}

// FixedClock returns a Clock frozen at t
func FixedClock(t time.Time) Clock {
	return func() time.Time { return t }
}

// DateCalculator holds the date arithmetic shared by all rule procedures.
// Every method is total: a zero date yields 0 instead of an error.
type DateCalculator struct {
	now Clock
}

// NewDateCalculator creates a DateCalculator reading "now" from clock
func NewDateCalculator(clock Clock) DateCalculator {
	if clock == nil {
		clock = SystemClock
	}
	return DateCalculator{now: clock}
}

// Now returns the calculator's notion of the current time
func (d DateCalculator) Now() time.Time {
	if d.now == nil {
		return SystemClock()
	}
	return d.now()
}

// WholeYearsSince returns completed years between date and now
func (d DateCalculator) WholeYearsSince(date time.Time) int {
	if date.IsZero() {
		return 0
	}
	return WholeYearsBetween(date, d.Now())
}

// FractionalYearsSince returns the magnitude of the elapsed time in years of 365.25 days
func (d DateCalculator) FractionalYearsSince(date time.Time) float64 {
	if date.IsZero() {
		return 0
	}
	elapsed := d.Now().Sub(date)
	return math.Abs(elapsed.Hours()) / 24 / daysPerYear
}

// MonthsSince returns elapsed calendar months, clamped at 0
func (d DateCalculator) MonthsSince(date time.Time) int {
	if date.IsZero() {
		return 0
	}
	now := d.Now()
	months := (now.Year()-date.Year())*12 - int(date.Month()) + int(now.Month())
	if months <= 0 {
		return 0
	}
	return months
}

// WholeYearsBetween returns completed years from start to end,
// decrementing when end falls before the anniversary.
func WholeYearsBetween(start, end time.Time) int {
	if start.IsZero() || end.IsZero() {
		return 0
	}
	years := end.Year() - start.Year()
	m := int(end.Month()) - int(start.Month())
	if m < 0 || (m == 0 && end.Day() < start.Day()) {
		years--
	}
	return years
}
