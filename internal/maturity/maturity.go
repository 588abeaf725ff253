// Package maturity derives the time horizon used by the pricing model.
package maturity

import (
	"fmt"
	"math"
	"time"
)

// daysPerYear is the flat day-count convention used for both legs.
const daysPerYear = 365.0

// InvalidDatesError reports expiration or vesting-end dates before the
// valuation date. This is a caller error; the inputs are never clamped.
type InvalidDatesError struct {
	Field string
	Date  time.Time
}

func (e *InvalidDatesError) Error() string {
	return fmt.Sprintf("%s %s precedes the valuation date", e.Field, e.Date.Format("2006-01-02"))
}

// Years returns the integer years to maturity: the average of the
// valuation-to-expiration and valuation-to-vesting-end horizons, each
// expressed as days/365, rounded to the nearest integer.
//
// Ties round half away from zero (math.Round). Both horizons are
// non-negative, so this is round-half-up.
func Years(valuation, expiration, vestingEnd time.Time) (int, error) {
	if expiration.Before(valuation) {
		return 0, &InvalidDatesError{Field: "expiration date", Date: expiration}
	}
	if vestingEnd.Before(valuation) {
		return 0, &InvalidDatesError{Field: "vesting end date", Date: vestingEnd}
	}

	toExpiration := daysBetween(valuation, expiration) / daysPerYear
	toVestingEnd := daysBetween(valuation, vestingEnd) / daysPerYear

	return int(math.Round((toExpiration + toVestingEnd) / 2)), nil
}

// daysBetween counts whole calendar days from a to b, ignoring any
// time-of-day component.
func daysBetween(a, b time.Time) float64 {
	a = time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	b = time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	return math.Round(b.Sub(a).Hours() / 24)
}
