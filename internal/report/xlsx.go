package report

import (
	"fmt"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"github.com/ahmetybesiroglu/SBC-option-valuation/internal/valuation"
)

const (
	sheetSummary    = "Black Scholes"
	sheetVolatility = "Volatility"
	sheetCurve      = "Risk Free Rate"
)

// WriteXLSX writes the three-sheet workbook: the input/result summary,
// the per-ticker volatility table with its Average row, and the full
// interpolated yield curve.
func WriteXLSX(res *valuation.Result, outdir string) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetSummary); err != nil {
		return err
	}
	if _, err := f.NewSheet(sheetVolatility); err != nil {
		return err
	}
	if _, err := f.NewSheet(sheetCurve); err != nil {
		return err
	}

	if err := writeSummarySheet(f, res); err != nil {
		return err
	}
	if err := writeVolatilitySheet(f, res); err != nil {
		return err
	}
	if err := writeCurveSheet(f, res); err != nil {
		return err
	}

	return f.SaveAs(filepath.Join(outdir, "option_valuation_results.xlsx"))
}

func writeSummarySheet(f *excelize.File, res *valuation.Result) error {
	rows := []struct {
		label string
		value any
	}{
		{"Grant date", shortDate(res.Inputs.GrantDate)},
		{"Valuation date", shortDate(res.Inputs.ValuationDate)},
		{"Expiration date", shortDate(res.Inputs.ExpirationDate)},
		{"Vesting end date", shortDate(res.Inputs.VestingEndDate)},
		{"Stock price", res.Inputs.Spot},
		{"Strike/Exercise price", res.Inputs.Strike},
		{"Years to maturity (YTM)", res.YearsToMaturity},
		{"Risk free rate", round4(res.RiskFreeRate)},
		{"Volatility", round4(res.AverageVolatility)},
		{"Option Valuation", round2(res.OptionValue)},
	}

	if err := setRow(f, sheetSummary, 1, "", "Value"); err != nil {
		return err
	}
	for i, r := range rows {
		if err := setRow(f, sheetSummary, i+2, r.label, r.value); err != nil {
			return err
		}
	}
	return nil
}

func writeVolatilitySheet(f *excelize.File, res *valuation.Result) error {
	if err := setRow(f, sheetVolatility, 1, "Ticker", periodHeader(res), "Error"); err != nil {
		return err
	}
	row := 2
	for _, est := range res.Volatilities {
		var vol, errText any
		if est.OK() {
			vol = est.AnnualizedPct
		} else {
			errText = est.Err.Error()
		}
		if err := setRow(f, sheetVolatility, row, est.Ticker, vol, errText); err != nil {
			return err
		}
		row++
	}
	return setRow(f, sheetVolatility, row, "Average", averageVolatilityPct(res), nil)
}

func writeCurveSheet(f *excelize.File, res *valuation.Result) error {
	if err := setRow(f, sheetCurve, 1, "Maturity", res.Inputs.ValuationDate.Format("2006-01-02")); err != nil {
		return err
	}
	row := 2
	for _, p := range res.Curve.Points() {
		var value any
		if p.Yield.Valid {
			value = p.Yield.Value
		}
		if err := setRow(f, sheetCurve, row, p.Label(), value); err != nil {
			return err
		}
		row++
	}
	return nil
}

// setRow writes values left to right starting at column A of the given row.
func setRow(f *excelize.File, sheet string, row int, values ...any) error {
	for i, v := range values {
		if v == nil {
			continue
		}
		cell, err := excelize.CoordinatesToCellName(i+1, row)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, v); err != nil {
			return fmt.Errorf("set %s!%s: %w", sheet, cell, err)
		}
	}
	return nil
}
