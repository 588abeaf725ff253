package volatility

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/montanaflynn/stats"

	"github.com/ahmetybesiroglu/SBC-option-valuation/internal/logger"
	"github.com/ahmetybesiroglu/SBC-option-valuation/internal/marketdata"
)

// TickerEstimate is one row of the per-ticker volatility table. A failed ticker
// keeps its row with Err set and AnnualizedPct zero.
type TickerEstimate struct {
	Ticker        string
	PeriodStart   time.Time
	PeriodEnd     time.Time
	AnnualizedPct float64
	Err           error
}

// OK reports whether the estimate was computed successfully.
func (e TickerEstimate) OK() bool { return e.Err == nil }

// InsufficientDataError reports that no ticker in the basket produced a
// usable volatility estimate.
type InsufficientDataError struct {
	Tickers []string
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("no volatility computable: all tickers failed (%s)", strings.Join(e.Tickers, ", "))
}

// Aggregator runs the estimator over a basket of comparable tickers.
type Aggregator struct {
	provider marketdata.Provider
}

// NewAggregator creates an Aggregator backed by the given provider.
func NewAggregator(provider marketdata.Provider) *Aggregator {
	return &Aggregator{provider: provider}
}

// Aggregate fetches each ticker's price series over [start, end], estimates
// its annualized volatility, and averages the successes.
//
// Per-ticker failures are recorded in the returned table and excluded from
// the average; they never abort the run. The average is returned as a
// fraction (percent / 100). When every ticker fails the error is an
// *InsufficientDataError.
//
// Tickers are fetched concurrently; each goroutine writes only its own
// slot of the result slice, so the output order always matches the input
// ticker order regardless of completion order.
func (a *Aggregator) Aggregate(ctx context.Context, tickers []string, start, end time.Time, freq Frequency) ([]TickerEstimate, float64, error) {
	if _, err := freq.periodsPerYear(); err != nil {
		return nil, 0, err
	}

	estimates := make([]TickerEstimate, len(tickers))

	var wg sync.WaitGroup
	for i, ticker := range tickers {
		wg.Add(1)
		go func(i int, ticker string) {
			defer wg.Done()
			estimates[i] = a.estimateOne(ctx, ticker, start, end, freq)
		}(i, ticker)
	}
	wg.Wait()

	var successes []float64
	for _, est := range estimates {
		if est.OK() {
			successes = append(successes, est.AnnualizedPct)
		} else {
			logger.Errorf("volatility for %s from %s to %s: %v",
				est.Ticker, start.Format("2006-01-02"), end.Format("2006-01-02"), est.Err)
		}
	}

	if len(successes) == 0 {
		return estimates, 0, &InsufficientDataError{Tickers: tickers}
	}

	mean, err := stats.Mean(successes)
	if err != nil {
		return estimates, 0, &InsufficientDataError{Tickers: tickers}
	}
	return estimates, mean / 100, nil
}

func (a *Aggregator) estimateOne(ctx context.Context, ticker string, start, end time.Time, freq Frequency) TickerEstimate {
	est := TickerEstimate{Ticker: ticker, PeriodStart: start, PeriodEnd: end}

	bars, err := a.provider.GetDailyBars(ctx, ticker, start, end)
	if err != nil {
		est.Err = err
		return est
	}

	vol, err := Estimate(bars, freq)
	if err != nil {
		est.Err = err
		return est
	}

	logger.Infof("volatility for %s: %.2f", ticker, vol)
	est.AnnualizedPct = vol
	return est
}
