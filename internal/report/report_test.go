package report

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/ahmetybesiroglu/SBC-option-valuation/internal/valuation"
	"github.com/ahmetybesiroglu/SBC-option-valuation/internal/volatility"
	"github.com/ahmetybesiroglu/SBC-option-valuation/internal/yieldcurve"
)

func sampleResult() *valuation.Result {
	date := func(y int, m time.Month, d int) time.Time {
		return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	}
	start, end := date(2016, 1, 1), date(2020, 1, 1)

	return &valuation.Result{
		Inputs: valuation.Inputs{
			Spot:           50,
			Strike:         45,
			GrantDate:      date(2020, 1, 1),
			ValuationDate:  date(2020, 1, 1),
			ExpirationDate: date(2025, 1, 1),
			VestingEndDate: date(2023, 1, 1),
			Tickers:        []string{"AAA", "BBB"},
			Frequency:      volatility.Daily,
		},
		YearsToMaturity:   4,
		RiskFreeRate:      0.0164,
		AverageVolatility: 0.2538,
		OptionValue:       13.665078298020,
		PeriodStart:       start,
		PeriodEnd:         end,
		Volatilities: []volatility.TickerEstimate{
			{Ticker: "AAA", PeriodStart: start, PeriodEnd: end, AnnualizedPct: 25.38},
			{Ticker: "BBB", PeriodStart: start, PeriodEnd: end, Err: errors.New("no data for BBB")},
		},
		Curve: yieldcurve.Build([]yieldcurve.Point{
			{MaturityYears: 1, YieldPct: 1.55},
			{MaturityYears: 5, YieldPct: 1.67},
		}),
	}
}

func TestPayload(t *testing.T) {
	p := Payload(sampleResult())

	require.Equal(t, "2020-01-01", p["valuation_date"])
	require.Equal(t, 4, p["years_to_maturity"])
	require.Equal(t, 0.0164, p["risk_free_rate"])
	require.Equal(t, 0.2538, p["average_volatility"])
	require.Equal(t, 13.67, p["option_valuation"])

	vols := p["volatilities"].([]map[string]any)
	require.Len(t, vols, 2)
	require.Equal(t, 25.38, vols[0]["annualized_volatility_percent"])
	require.NotContains(t, vols[0], "error")
	require.Equal(t, "no data for BBB", vols[1]["error"])
	require.NotContains(t, vols[1], "annualized_volatility_percent")

	curve := p["yield_curve"].([]map[string]any)
	require.Len(t, curve, 5)
	require.Equal(t, "1-year", curve[0]["maturity"])
	require.Equal(t, 1.55, curve[0]["yield_percent"])
	require.Equal(t, 1.58, curve[1]["yield_percent"])
}

func TestWriteJSON(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, WriteJSON(sampleResult(), dir))

	b, err := os.ReadFile(filepath.Join(dir, "valuation.json"))
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(b, &doc))
	require.Equal(t, "2025-01-01", doc["expiration_date"])
	require.Equal(t, 13.67, doc["option_valuation"])
}

func TestWriteCSV(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, WriteCSV(sampleResult(), dir))

	vols := readCSV(t, filepath.Join(dir, "volatility.csv"))
	require.Equal(t, []string{"ticker", "2016-01-01 to 2020-01-01", "error"}, vols[0])
	require.Equal(t, []string{"AAA", "25.38", ""}, vols[1])
	require.Equal(t, []string{"BBB", "", "no data for BBB"}, vols[2])
	require.Equal(t, []string{"Average", "25.38", ""}, vols[3])

	curve := readCSV(t, filepath.Join(dir, "yield_curve.csv"))
	require.Equal(t, []string{"maturity", "2020-01-01"}, curve[0])
	require.Len(t, curve, 6)
	require.Equal(t, []string{"1-year", "1.55"}, curve[1])
	require.Equal(t, []string{"2-year", "1.58"}, curve[2])
	require.Equal(t, []string{"5-year", "1.67"}, curve[5])
}

func TestWriteXLSX(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, WriteXLSX(sampleResult(), dir))

	f, err := excelize.OpenFile(filepath.Join(dir, "option_valuation_results.xlsx"))
	require.NoError(t, err)
	defer f.Close()

	require.ElementsMatch(t, []string{"Black Scholes", "Volatility", "Risk Free Rate"}, f.GetSheetList())

	value, err := f.GetCellValue("Black Scholes", "B11")
	require.NoError(t, err)
	require.Equal(t, "13.67", value)

	label, err := f.GetCellValue("Black Scholes", "A2")
	require.NoError(t, err)
	require.Equal(t, "Grant date", label)

	avg, err := f.GetCellValue("Volatility", "A4")
	require.NoError(t, err)
	require.Equal(t, "Average", avg)
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return rows
}
