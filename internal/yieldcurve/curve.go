// Package yieldcurve builds a continuous treasury yield curve from a
// sparse set of known-maturity yields via linear interpolation.
package yieldcurve

import (
	"fmt"
	"math"
	"sort"
)

// Point is a known (maturity, yield) observation, typically one reference
// instrument's fetched level.
type Point struct {
	MaturityYears int
	YieldPct      float64
}

// Yield is a possibly absent yield level. Curve entries are always valid;
// Valid is false in audit rows whose reference instrument could not be
// fetched.
type Yield struct {
	Value float64
	Valid bool
}

// CurvePoint pairs an integer maturity with its (possibly absent) yield,
// for reporting.
type CurvePoint struct {
	MaturityYears int
	Yield         Yield
}

// Label renders the conventional "<N>-year" maturity label.
func (p CurvePoint) Label() string {
	return fmt.Sprintf("%d-year", p.MaturityYears)
}

// Curve maps every integer maturity in [1, max known maturity] to a yield
// in percent. It is fully populated in one pass by Build; entries are
// absent only when the curve was built from zero known points.
type Curve struct {
	yields []Yield // index i holds maturity i+1
}

// MaturityNotFoundError reports a lookup outside the curve's populated
// range. Available lists the maturities the curve does cover.
type MaturityNotFoundError struct {
	Requested int
	Available []int
}

func (e *MaturityNotFoundError) Error() string {
	if len(e.Available) == 0 {
		return fmt.Sprintf("maturity %d-year not found: curve has no known points", e.Requested)
	}
	return fmt.Sprintf("maturity %d-year not found, available maturities: %d-year through %d-year",
		e.Requested, e.Available[0], e.Available[len(e.Available)-1])
}

// Build constructs the curve from the known points. For every integer
// maturity between 1 and the largest known maturity, the yield is either
// the known value carried through as given, or the piecewise-linear
// interpolation between the two bracketing known points, rounded to 2
// decimals. Zero known points produce a curve whose entries are all
// absent.
func Build(known []Point) Curve {
	if len(known) == 0 {
		return Curve{}
	}

	pts := make([]Point, len(known))
	copy(pts, known)
	sort.Slice(pts, func(i, j int) bool { return pts[i].MaturityYears < pts[j].MaturityYears })

	max := pts[len(pts)-1].MaturityYears
	yields := make([]Yield, max)

	for m := 1; m <= max; m++ {
		yields[m-1] = Yield{Value: valueAt(pts, m), Valid: true}
	}
	return Curve{yields: yields}
}

// valueAt evaluates the piecewise-linear curve at integer maturity m.
// m never exceeds the largest known maturity; values below the smallest
// known maturity clamp to it rather than extrapolate.
func valueAt(pts []Point, m int) float64 {
	if m <= pts[0].MaturityYears {
		return pts[0].YieldPct
	}
	for i := 0; i < len(pts)-1; i++ {
		lo, hi := pts[i], pts[i+1]
		if m == lo.MaturityYears {
			return lo.YieldPct
		}
		if m < hi.MaturityYears {
			frac := float64(m-lo.MaturityYears) / float64(hi.MaturityYears-lo.MaturityYears)
			v := lo.YieldPct + frac*(hi.YieldPct-lo.YieldPct)
			return math.Round(v*100) / 100
		}
	}
	return pts[len(pts)-1].YieldPct
}

// Lookup returns the yield in percent for the requested integer maturity.
// It fails with *MaturityNotFoundError when the maturity exceeds the
// curve's range or the curve has no known points.
func (c Curve) Lookup(maturityYears int) (float64, error) {
	if maturityYears < 1 || maturityYears > len(c.yields) {
		return 0, &MaturityNotFoundError{Requested: maturityYears, Available: c.Maturities()}
	}
	// Build populates every entry in range, so the yield is always valid here.
	return c.yields[maturityYears-1].Value, nil
}

// MaxMaturity returns the largest populated maturity, or 0 for an empty
// curve.
func (c Curve) MaxMaturity() int { return len(c.yields) }

// Maturities lists every populated integer maturity in ascending order.
func (c Curve) Maturities() []int {
	var out []int
	for i := range c.yields {
		out = append(out, i+1)
	}
	return out
}

// Points returns the full curve in ascending maturity order for
// reporting.
func (c Curve) Points() []CurvePoint {
	out := make([]CurvePoint, len(c.yields))
	for i, y := range c.yields {
		out[i] = CurvePoint{MaturityYears: i + 1, Yield: y}
	}
	return out
}
