package marketdata

import (
	"context"
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// localFileProvider implements Provider from CSV files on disk.
//
// Layout:
//
//	<dir>/<SYMBOL>.csv   rows of "date,adj_close" (header optional)
//	<dir>/yields.csv     rows of "symbol,date,yield"
//
// Index symbols such as ^IRX are stored with '^' replaced by '_' in the
// file name so the files stay shell-friendly.
type localFileProvider struct {
	dir string
}

// NewLocalFileProvider convenience constructor.
func NewLocalFileProvider(dir string) Provider {
	return &localFileProvider{dir: dir}
}

func (p *localFileProvider) GetDailyBars(ctx context.Context, symbol string, from, to time.Time) ([]Bar, error) {
	records, err := p.readCSV(symbolFileName(symbol))
	if err != nil {
		return nil, err
	}

	var bars []Bar
	for _, row := range records {
		if len(row) < 2 {
			continue
		}
		date, err := time.Parse("2006-01-02", strings.TrimSpace(row[0]))
		if err != nil {
			continue // header or malformed row
		}
		close, err := strconv.ParseFloat(strings.TrimSpace(row[1]), 64)
		if err != nil {
			continue
		}
		if date.Before(from) || date.After(to) {
			continue
		}
		bars = append(bars, Bar{Date: date, AdjClose: close})
	}

	if len(bars) == 0 {
		return nil, &NoDataError{Symbol: symbol, Start: from, End: to}
	}
	return normalizeBars(bars), nil
}

func (p *localFileProvider) GetYield(ctx context.Context, symbol string, around time.Time) (float64, error) {
	records, err := p.readCSV("yields.csv")
	if err != nil {
		return 0, err
	}

	from := around.AddDate(0, 0, -7)
	var (
		best      time.Time
		bestLevel float64
		found     bool
	)
	for _, row := range records {
		if len(row) < 3 {
			continue
		}
		if !strings.EqualFold(strings.TrimSpace(row[0]), symbol) {
			continue
		}
		date, err := time.Parse("2006-01-02", strings.TrimSpace(row[1]))
		if err != nil {
			continue
		}
		level, err := strconv.ParseFloat(strings.TrimSpace(row[2]), 64)
		if err != nil {
			continue
		}
		if date.Before(from) || date.After(around) {
			continue
		}
		// Keep the latest observation at or before the target date.
		if !found || date.After(best) {
			best, bestLevel, found = date, level, true
		}
	}

	if !found {
		return 0, &NoDataError{Symbol: symbol, Start: from, End: around}
	}
	return math.Round(bestLevel*100) / 100, nil
}

func (p *localFileProvider) readCSV(name string) ([][]string, error) {
	f, err := os.Open(filepath.Join(p.dir, name))
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", name, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	return records, nil
}

func symbolFileName(symbol string) string {
	return strings.ReplaceAll(strings.ToUpper(symbol), "^", "_") + ".csv"
}
