// Package pricing implements the European Black-Scholes model.
package pricing

import (
	"fmt"
	"math"
)

// DomainError reports a parameter outside the model's domain. The
// Black-Scholes formula is undefined for non-positive maturity or
// volatility.
type DomainError struct {
	Param string
	Value float64
}

func (e *DomainError) Error() string {
	return fmt.Sprintf("black-scholes: %s must be positive, got %g", e.Param, e.Value)
}

// BlackScholes calculates the price of a European call option.
//
// Parameters:
//   - spot: price of the underlying asset
//   - strike: strike price of the option
//   - maturityYears: time to expiry in years
//   - rate: risk-free interest rate (annual, as a decimal)
//   - sigma: volatility of the underlying asset (annual, as a decimal)
//
// The result carries full float precision; rounding is a reporting
// concern. Fails with *DomainError when maturityYears or sigma is not
// positive.
func BlackScholes(spot, strike, maturityYears, rate, sigma float64) (float64, error) {
	if maturityYears <= 0 {
		return 0, &DomainError{Param: "maturity", Value: maturityYears}
	}
	if sigma <= 0 {
		return 0, &DomainError{Param: "volatility", Value: sigma}
	}

	sqrtT := math.Sqrt(maturityYears)
	d1 := (math.Log(spot/strike) + (rate+0.5*sigma*sigma)*maturityYears) / (sigma * sqrtT)
	d2 := d1 - sigma*sqrtT

	return spot*normCDF(d1) - strike*math.Exp(-rate*maturityYears)*normCDF(d2), nil
}

// normCDF computes the cumulative distribution function of the standard
// normal distribution using the error function.
func normCDF(x float64) float64 {
	return 0.5 * (1.0 + math.Erf(x/math.Sqrt2))
}
