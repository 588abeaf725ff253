package marketdata

import (
	"context"
	"fmt"
	"math"
	"time"

	"resty.dev/v3"

	"github.com/ahmetybesiroglu/SBC-option-valuation/internal/logger"
	"github.com/ahmetybesiroglu/SBC-option-valuation/internal/ratelimit"
)

const defaultYahooBaseURL = "https://query1.finance.yahoo.com"

const (
	defaultRetryCount       = 3
	defaultRetryWaitTime    = 1 * time.Second
	defaultRetryMaxWaitTime = 10 * time.Second
)

// yahooProvider implements Provider using the Yahoo Finance chart API.
type yahooProvider struct {
	client *resty.Client
}

// chartResponse models the subset of the Yahoo chart payload we consume.
type chartResponse struct {
	Chart struct {
		Result []struct {
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Close []float64 `json:"close"`
				} `json:"quote"`
				AdjClose []struct {
					AdjClose []float64 `json:"adjclose"`
				} `json:"adjclose"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// NewYahooProvider constructs a Yahoo-backed data provider. baseURL may be
// empty, in which case the public endpoint is used; tests point it at an
// httptest server.
func NewYahooProvider(baseURL string) Provider {
	if baseURL == "" {
		baseURL = defaultYahooBaseURL
	}
	client := resty.New().
		SetBaseURL(baseURL).
		SetHeader("Accept", "application/json").
		SetHeader("User-Agent", "sbc-option-valuation/1.0").
		SetRetryCount(defaultRetryCount).
		SetRetryWaitTime(defaultRetryWaitTime).
		SetRetryMaxWaitTime(defaultRetryMaxWaitTime).
		AddRetryConditions(retryCondition).
		AddRetryHooks(retryHook)

	return &yahooProvider{client: client}
}

// retryCondition retries network failures, rate limits and server errors.
func retryCondition(r *resty.Response, err error) bool {
	if err != nil {
		return true
	}
	switch {
	case r.StatusCode() >= 500:
		return true
	case r.StatusCode() == 429:
		return true
	case r.StatusCode() == 408:
		return true
	}
	return false
}

func retryHook(r *resty.Response, err error) {
	if err != nil {
		logger.Debugf("retrying request %s after error: %v", r.Request.URL, err)
		return
	}
	logger.Debugf("retrying request %s after status %d", r.Request.URL, r.StatusCode())
}

func (p *yahooProvider) GetDailyBars(ctx context.Context, symbol string, from, to time.Time) ([]Bar, error) {
	bars, err := p.fetchChart(ctx, symbol, from, to)
	if err != nil {
		return nil, err
	}
	if len(bars) == 0 {
		return nil, &NoDataError{Symbol: symbol, Start: from, End: to}
	}
	return bars, nil
}

// GetYield fetches the instrument chart for the week leading up to the
// target date and returns the close on that date, or the most recent close
// before it, rounded to 2 decimals.
func (p *yahooProvider) GetYield(ctx context.Context, symbol string, around time.Time) (float64, error) {
	from := around.AddDate(0, 0, -7)
	to := around.AddDate(0, 0, 1)

	bars, err := p.fetchChart(ctx, symbol, from, to)
	if err != nil {
		return 0, err
	}
	if len(bars) == 0 {
		return 0, &NoDataError{Symbol: symbol, Start: from, End: to}
	}

	level := bars[len(bars)-1].AdjClose
	for _, b := range bars {
		if sameDay(b.Date, around) {
			level = b.AdjClose
			break
		}
	}
	return math.Round(level*100) / 100, nil
}

func (p *yahooProvider) fetchChart(ctx context.Context, symbol string, from, to time.Time) ([]Bar, error) {
	if err := ratelimit.GetLimiter().Wait(ctx, ratelimit.APIYahoo); err != nil {
		return nil, err
	}

	logger.Debugf("fetching chart: %s from=%s to=%s",
		symbol, from.Format("2006-01-02"), to.Format("2006-01-02"))

	var result chartResponse
	resp, err := p.client.R().
		SetContext(ctx).
		SetPathParam("symbol", symbol).
		SetQueryParams(map[string]string{
			"period1":  fmt.Sprintf("%d", from.Unix()),
			"period2":  fmt.Sprintf("%d", to.Unix()),
			"interval": "1d",
			"events":   "div,split",
		}).
		SetResult(&result).
		Get("/v8/finance/chart/{symbol}")

	if err != nil {
		return nil, fmt.Errorf("fetch chart for %s: %w", symbol, err)
	}
	if !resp.IsSuccess() {
		return nil, fmt.Errorf("yahoo chart API returned status %d for %s", resp.StatusCode(), symbol)
	}
	if result.Chart.Error != nil {
		return nil, fmt.Errorf("yahoo chart API error for %s: %s (%s)",
			symbol, result.Chart.Error.Description, result.Chart.Error.Code)
	}
	if len(result.Chart.Result) == 0 {
		return nil, &NoDataError{Symbol: symbol, Start: from, End: to}
	}

	series := result.Chart.Result[0]

	// Prefer adjusted closes; index symbols often ship only raw closes.
	var closes []float64
	if len(series.Indicators.AdjClose) > 0 && len(series.Indicators.AdjClose[0].AdjClose) > 0 {
		closes = series.Indicators.AdjClose[0].AdjClose
	} else if len(series.Indicators.Quote) > 0 {
		closes = series.Indicators.Quote[0].Close
	}

	n := len(series.Timestamp)
	if len(closes) < n {
		n = len(closes)
	}

	bars := make([]Bar, 0, n)
	for i := 0; i < n; i++ {
		if closes[i] == 0 {
			continue // missing observation in the Yahoo payload
		}
		bars = append(bars, Bar{
			Date:     time.Unix(series.Timestamp[i], 0).UTC(),
			AdjClose: closes[i],
		})
	}

	logger.Tracef("chart %s: %d bars", symbol, len(bars))
	return normalizeBars(bars), nil
}
