// Package marketdata provides market data provider implementations.
//
// A Provider supplies the two series the valuation pipeline consumes:
// adjusted daily closes for a ticker, and treasury yield levels for the
// reference instruments. Three implementations exist:
//
//   - yahoo:     live data from the Yahoo Finance chart API
//   - localFile: CSV files on disk (useful for tests and repeatable runs)
//   - synthetic: deterministic generated data for offline runs
package marketdata

import (
	"context"
	"fmt"
	"sort"
	"time"
)

// Bar is one daily observation of a price series.
type Bar struct {
	Date     time.Time
	AdjClose float64
}

// Provider supplies market data.
type Provider interface {
	// GetDailyBars returns adjusted daily closes for symbol in [from, to],
	// sorted by date ascending with no duplicate dates. It fails with
	// *NoDataError when the range yields no observations.
	GetDailyBars(ctx context.Context, symbol string, from, to time.Time) ([]Bar, error)

	// GetYield returns the yield level (in percent) for a treasury
	// instrument symbol as of the given date. It prefers the close on the
	// exact date and falls back to the most recent close in the week
	// before it. Fails with *NoDataError when nothing trades around the
	// date.
	GetYield(ctx context.Context, symbol string, around time.Time) (float64, error)
}

// NoDataError reports that a fetch returned no observations for the
// requested symbol and range.
type NoDataError struct {
	Symbol string
	Start  time.Time
	End    time.Time
}

func (e *NoDataError) Error() string {
	return fmt.Sprintf("no data found for %s from %s to %s",
		e.Symbol, e.Start.Format("2006-01-02"), e.End.Format("2006-01-02"))
}

// normalizeBars sorts bars by date ascending and drops duplicate dates,
// keeping the last observation for each date. Providers call this before
// returning so every series honors the ordering contract.
func normalizeBars(bars []Bar) []Bar {
	if len(bars) == 0 {
		return bars
	}
	sort.SliceStable(bars, func(i, j int) bool { return bars[i].Date.Before(bars[j].Date) })
	out := bars[:0]
	for _, b := range bars {
		if len(out) > 0 && sameDay(out[len(out)-1].Date, b.Date) {
			out[len(out)-1] = b
			continue
		}
		out = append(out, b)
	}
	return out
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
