// Package valuation composes the analytics pipeline into one
// deterministic run: derived maturity, comparable-company volatility,
// the interpolated yield curve, and the Black-Scholes value.
package valuation

import (
	"context"
	"time"

	"github.com/ahmetybesiroglu/SBC-option-valuation/internal/logger"
	"github.com/ahmetybesiroglu/SBC-option-valuation/internal/marketdata"
	"github.com/ahmetybesiroglu/SBC-option-valuation/internal/maturity"
	"github.com/ahmetybesiroglu/SBC-option-valuation/internal/pricing"
	"github.com/ahmetybesiroglu/SBC-option-valuation/internal/volatility"
	"github.com/ahmetybesiroglu/SBC-option-valuation/internal/yieldcurve"
)

// Inputs are the externally supplied option grant parameters.
type Inputs struct {
	Spot           float64
	Strike         float64
	GrantDate      time.Time
	ValuationDate  time.Time
	ExpirationDate time.Time
	VestingEndDate time.Time
	Tickers        []string
	Frequency      volatility.Frequency
}

// InstrumentYield is one row of the per-instrument fetch audit. A failed
// fetch keeps its row with Err set and an absent Yield.
type InstrumentYield struct {
	Instrument yieldcurve.Instrument
	Yield      yieldcurve.Yield
	Err        error
}

// Result is the pipeline's sole output artifact, rebuilt each run.
type Result struct {
	Inputs Inputs

	YearsToMaturity   int
	RiskFreeRate      float64 // fraction, e.g. 0.0164
	AverageVolatility float64 // fraction, e.g. 0.2779
	OptionValue       float64

	// Lookback window the comparable volatilities were computed over.
	PeriodStart time.Time
	PeriodEnd   time.Time

	// Intermediate tables for reporting and audit.
	Volatilities     []volatility.TickerEstimate
	InstrumentYields []InstrumentYield
	Curve            yieldcurve.Curve
}

// Orchestrator sequences the pipeline. It is the only component that
// downgrades per-ticker and per-instrument fetch failures into partial
// results; every other failure propagates to the caller unmodified.
type Orchestrator struct {
	provider    marketdata.Provider
	instruments []yieldcurve.Instrument
}

// New creates an Orchestrator using the standard treasury reference
// instruments.
func New(provider marketdata.Provider) *Orchestrator {
	return &Orchestrator{provider: provider, instruments: yieldcurve.Treasuries}
}

// NewWithInstruments creates an Orchestrator with a custom reference
// instrument set.
func NewWithInstruments(provider marketdata.Provider, instruments []yieldcurve.Instrument) *Orchestrator {
	return &Orchestrator{provider: provider, instruments: instruments}
}

// Run executes the pipeline once. Steps are strictly sequential; no step
// is retried.
func (o *Orchestrator) Run(ctx context.Context, in Inputs) (*Result, error) {
	years, err := maturity.Years(in.ValuationDate, in.ExpirationDate, in.VestingEndDate)
	if err != nil {
		return nil, err
	}
	logger.Infof("years to maturity: %d", years)

	// Historical window: one years-to-maturity span ending at the
	// valuation date.
	start := in.ValuationDate.AddDate(-years, 0, 0)
	end := in.ValuationDate
	logger.Infof("fetching historical data from %s to %s",
		start.Format("2006-01-02"), end.Format("2006-01-02"))

	agg := volatility.NewAggregator(o.provider)
	estimates, avgVol, err := agg.Aggregate(ctx, in.Tickers, start, end, in.Frequency)
	if err != nil {
		return nil, err
	}
	logger.Infof("average volatility: %.4f", avgVol)

	instrumentYields, known := o.fetchYields(ctx, in.ValuationDate)
	curve := yieldcurve.Build(known)

	ratePct, err := curve.Lookup(years)
	if err != nil {
		return nil, err
	}
	rate := ratePct / 100
	logger.Infof("risk-free rate for %d-year: %.4f", years, rate)

	value, err := pricing.BlackScholes(in.Spot, in.Strike, float64(years), rate, avgVol)
	if err != nil {
		return nil, err
	}
	logger.Infof("option valuation: %.4f", value)

	return &Result{
		Inputs:            in,
		YearsToMaturity:   years,
		RiskFreeRate:      rate,
		AverageVolatility: avgVol,
		OptionValue:       value,
		PeriodStart:       start,
		PeriodEnd:         end,
		Volatilities:      estimates,
		InstrumentYields:  instrumentYields,
		Curve:             curve,
	}, nil
}

// fetchYields fetches each reference instrument's yield as of the
// valuation date. Individual failures are recorded as absent rows; they
// never abort the run.
func (o *Orchestrator) fetchYields(ctx context.Context, asOf time.Time) ([]InstrumentYield, []yieldcurve.Point) {
	rows := make([]InstrumentYield, 0, len(o.instruments))
	var known []yieldcurve.Point

	for _, inst := range o.instruments {
		logger.Infof("fetching treasury yield for %s...", inst.Label)
		level, err := o.provider.GetYield(ctx, inst.Symbol, asOf)
		if err != nil {
			logger.Errorf("fetching yield for %s (%s) on %s: %v",
				inst.Label, inst.Symbol, asOf.Format("2006-01-02"), err)
			rows = append(rows, InstrumentYield{Instrument: inst, Err: err})
			continue
		}
		rows = append(rows, InstrumentYield{
			Instrument: inst,
			Yield:      yieldcurve.Yield{Value: level, Valid: true},
		})
		known = append(known, yieldcurve.Point{MaturityYears: inst.MaturityYears, YieldPct: level})
	}
	return rows, known
}
