// Package report renders a valuation result to files. It consumes a
// *valuation.Result and has no influence on the numbers it prints;
// rounding here is presentation only.
package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/ahmetybesiroglu/SBC-option-valuation/internal/valuation"
)

// WriteJSON writes the full result as indented JSON.
func WriteJSON(res *valuation.Result, outdir string) error {
	b, err := json.MarshalIndent(Payload(res), "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(outdir, "valuation.json"), b, 0644)
}

// Payload flattens the result into a serializable document; errors become
// strings so failed rows survive the round trip.
func Payload(res *valuation.Result) map[string]any {
	vols := make([]map[string]any, 0, len(res.Volatilities))
	for _, est := range res.Volatilities {
		row := map[string]any{
			"ticker":       est.Ticker,
			"period_start": est.PeriodStart.Format("2006-01-02"),
			"period_end":   est.PeriodEnd.Format("2006-01-02"),
		}
		if est.OK() {
			row["annualized_volatility_percent"] = est.AnnualizedPct
		} else {
			row["error"] = est.Err.Error()
		}
		vols = append(vols, row)
	}

	curve := make([]map[string]any, 0, res.Curve.MaxMaturity())
	for _, p := range res.Curve.Points() {
		row := map[string]any{"maturity": p.Label()}
		if p.Yield.Valid {
			row["yield_percent"] = p.Yield.Value
		}
		curve = append(curve, row)
	}

	return map[string]any{
		"grant_date":         res.Inputs.GrantDate.Format("2006-01-02"),
		"valuation_date":     res.Inputs.ValuationDate.Format("2006-01-02"),
		"expiration_date":    res.Inputs.ExpirationDate.Format("2006-01-02"),
		"vesting_end_date":   res.Inputs.VestingEndDate.Format("2006-01-02"),
		"stock_price":        res.Inputs.Spot,
		"strike_price":       res.Inputs.Strike,
		"years_to_maturity":  res.YearsToMaturity,
		"risk_free_rate":     round4(res.RiskFreeRate),
		"average_volatility": round4(res.AverageVolatility),
		"option_valuation":   round2(res.OptionValue),
		"volatilities":       vols,
		"yield_curve":        curve,
	}
}

// WriteCSV writes the volatility table (with its appended Average row)
// and the interpolated yield curve as two CSV files.
func WriteCSV(res *valuation.Result, outdir string) error {
	if err := writeVolatilityCSV(res, filepath.Join(outdir, "volatility.csv")); err != nil {
		return err
	}
	return writeCurveCSV(res, filepath.Join(outdir, "yield_curve.csv"))
}

func writeVolatilityCSV(res *valuation.Result, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	if err := w.Write([]string{"ticker", periodHeader(res), "error"}); err != nil {
		return err
	}
	for _, est := range res.Volatilities {
		row := []string{est.Ticker, "", ""}
		if est.OK() {
			row[1] = fmt.Sprintf("%.2f", est.AnnualizedPct)
		} else {
			row[2] = est.Err.Error()
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	return w.Write([]string{"Average", fmt.Sprintf("%.2f", averageVolatilityPct(res)), ""})
}

func writeCurveCSV(res *valuation.Result, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	if err := w.Write([]string{"maturity", res.Inputs.ValuationDate.Format("2006-01-02")}); err != nil {
		return err
	}
	for _, p := range res.Curve.Points() {
		value := ""
		if p.Yield.Valid {
			value = fmt.Sprintf("%.2f", p.Yield.Value)
		}
		if err := w.Write([]string{p.Label(), value}); err != nil {
			return err
		}
	}
	return nil
}

// periodHeader renders the "<start> to <end>" column header.
func periodHeader(res *valuation.Result) string {
	return fmt.Sprintf("%s to %s",
		res.PeriodStart.Format("2006-01-02"), res.PeriodEnd.Format("2006-01-02"))
}

// averageVolatilityPct recovers the percent-scale average for display.
func averageVolatilityPct(res *valuation.Result) float64 {
	return round2(res.AverageVolatility * 100)
}

// shortDate renders dates without zero padding, e.g. 1/1/2020.
func shortDate(t time.Time) string {
	return fmt.Sprintf("%d/%d/%d", int(t.Month()), t.Day(), t.Year())
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }

func round4(v float64) float64 { return math.Round(v*10000) / 10000 }
