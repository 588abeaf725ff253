// Package volatility turns historical price series into annualized
// volatility figures: a per-ticker estimator and an aggregator that
// averages a basket of comparable tickers.
package volatility

import (
	"fmt"
	"math"
	"time"

	"github.com/montanaflynn/stats"

	"github.com/ahmetybesiroglu/SBC-option-valuation/internal/marketdata"
)

// Frequency selects the sampling cadence for return computation.
type Frequency string

const (
	Daily   Frequency = "daily"
	Weekly  Frequency = "weekly"
	Monthly Frequency = "monthly"
)

// DataError reports an input series that volatility cannot be computed
// from, or an unsupported frequency.
type DataError struct {
	Reason string
}

func (e *DataError) Error() string {
	return "data error: " + e.Reason
}

// periodsPerYear returns the annualization base for the frequency.
func (f Frequency) periodsPerYear() (float64, error) {
	switch f {
	case Daily:
		return 252, nil
	case Weekly:
		return 52, nil
	case Monthly:
		return 12, nil
	}
	return 0, &DataError{Reason: fmt.Sprintf("invalid frequency %q, use daily, weekly or monthly", f)}
}

// Valid reports whether f is one of the recognized frequencies.
func (f Frequency) Valid() bool {
	_, err := f.periodsPerYear()
	return err == nil
}

// Estimate computes the annualized historical volatility of a price
// series, expressed in percent and rounded to 2 decimal places.
//
// The series is resampled to the requested cadence (daily: as-is; weekly:
// last observation per Friday-anchored week; monthly: last observation per
// calendar month), log returns are taken over consecutive resampled
// closes, and their Bessel-corrected sample standard deviation is scaled
// by the square root of the periods per year.
func Estimate(bars []marketdata.Bar, freq Frequency) (float64, error) {
	factor, err := freq.periodsPerYear()
	if err != nil {
		return 0, err
	}
	if len(bars) == 0 {
		return 0, &DataError{Reason: "empty price series"}
	}

	sampled := resample(bars, freq)
	if len(sampled) < 2 {
		return 0, &DataError{Reason: fmt.Sprintf("need at least 2 %s observations, have %d", freq, len(sampled))}
	}

	returns := make([]float64, 0, len(sampled)-1)
	for i := 1; i < len(sampled); i++ {
		returns = append(returns, math.Log(sampled[i]/sampled[i-1]))
	}

	sd, err := stats.StandardDeviationSample(returns)
	if err != nil {
		return 0, &DataError{Reason: "computing standard deviation: " + err.Error()}
	}

	vol := sd * math.Sqrt(factor) * 100
	return math.Round(vol*100) / 100, nil
}

// resample reduces the series to the last observation of each bucket,
// preserving chronological order.
func resample(bars []marketdata.Bar, freq Frequency) []float64 {
	if freq == Daily {
		out := make([]float64, len(bars))
		for i, b := range bars {
			out[i] = b.AdjClose
		}
		return out
	}

	var (
		out     []float64
		lastKey int64 = math.MinInt64
	)
	for _, b := range bars {
		key := bucketKey(b.Date, freq)
		if key == lastKey {
			out[len(out)-1] = b.AdjClose
			continue
		}
		out = append(out, b.AdjClose)
		lastKey = key
	}
	return out
}

// bucketKey maps a date to its resampling bucket: the Friday ending its
// week, or its calendar month.
func bucketKey(d time.Time, freq Frequency) int64 {
	switch freq {
	case Weekly:
		// Friday-anchored: a week runs Saturday through Friday.
		daysToFriday := (int(time.Friday) - int(d.Weekday()) + 7) % 7
		friday := d.AddDate(0, 0, daysToFriday)
		return friday.Unix() / 86400
	case Monthly:
		return int64(d.Year())*12 + int64(d.Month())
	}
	return d.Unix() / 86400
}
