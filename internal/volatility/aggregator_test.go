package volatility

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ahmetybesiroglu/SBC-option-valuation/internal/marketdata"
)

// fakeProvider serves canned bars per ticker and fails for the rest.
type fakeProvider struct {
	bars map[string][]marketdata.Bar
}

func (p *fakeProvider) GetDailyBars(ctx context.Context, symbol string, from, to time.Time) ([]marketdata.Bar, error) {
	if bars, ok := p.bars[symbol]; ok {
		return bars, nil
	}
	return nil, &marketdata.NoDataError{Symbol: symbol, Start: from, End: to}
}

func (p *fakeProvider) GetYield(ctx context.Context, symbol string, around time.Time) (float64, error) {
	return 0, &marketdata.NoDataError{Symbol: symbol, Start: around, End: around}
}

var (
	aggStart = time.Date(2019, 1, 2, 0, 0, 0, 0, time.UTC)
	aggEnd   = time.Date(2020, 1, 2, 0, 0, 0, 0, time.UTC)
)

func TestAggregateSkipsFailedTicker(t *testing.T) {
	prov := &fakeProvider{bars: map[string][]marketdata.Bar{
		// Annualized daily volatility of this series is 25.38.
		"AAA": barsOn(aggStart, 100, 101, 103, 102, 105, 107, 106, 109, 111, 110),
	}}

	estimates, avg, err := NewAggregator(prov).Aggregate(
		context.Background(), []string{"AAA", "BBB"}, aggStart, aggEnd, Daily)
	require.NoError(t, err)

	require.Len(t, estimates, 2)
	require.Equal(t, "AAA", estimates[0].Ticker)
	require.True(t, estimates[0].OK())
	require.Equal(t, 25.38, estimates[0].AnnualizedPct)

	// The failed ticker keeps its row and is excluded from the average.
	require.Equal(t, "BBB", estimates[1].Ticker)
	require.False(t, estimates[1].OK())
	var noData *marketdata.NoDataError
	require.ErrorAs(t, estimates[1].Err, &noData)

	require.InDelta(t, 0.2538, avg, 1e-9)
}

func TestAggregateAveragesSuccesses(t *testing.T) {
	prov := &fakeProvider{bars: map[string][]marketdata.Bar{
		"AAA": barsOn(aggStart, 100, 101, 103, 102, 105, 107, 106, 109, 111, 110), // 25.38
		"BBB": barsOn(aggStart, 200, 198, 203, 201, 207, 204, 208, 212, 209, 214), // 30.19
	}}

	estimates, avg, err := NewAggregator(prov).Aggregate(
		context.Background(), []string{"AAA", "BBB"}, aggStart, aggEnd, Daily)
	require.NoError(t, err)
	require.Equal(t, 25.38, estimates[0].AnnualizedPct)
	require.Equal(t, 30.19, estimates[1].AnnualizedPct)
	require.InDelta(t, 0.27785, avg, 1e-9)
}

func TestAggregateAllFailed(t *testing.T) {
	prov := &fakeProvider{}

	estimates, _, err := NewAggregator(prov).Aggregate(
		context.Background(), []string{"AAA", "BBB"}, aggStart, aggEnd, Daily)

	var insufficient *InsufficientDataError
	require.ErrorAs(t, err, &insufficient)
	require.Equal(t, []string{"AAA", "BBB"}, insufficient.Tickers)

	// The table survives for auditability even when the run fails.
	require.Len(t, estimates, 2)
	require.False(t, estimates[0].OK())
	require.False(t, estimates[1].OK())
}

func TestAggregateInvalidFrequency(t *testing.T) {
	prov := &fakeProvider{}
	_, _, err := NewAggregator(prov).Aggregate(
		context.Background(), []string{"AAA"}, aggStart, aggEnd, Frequency("biweekly"))
	var dataErr *DataError
	require.ErrorAs(t, err, &dataErr)
}

func TestAggregateOrderIsDeterministic(t *testing.T) {
	series := barsOn(aggStart, 100, 101, 103, 102, 105)
	prov := &fakeProvider{bars: map[string][]marketdata.Bar{
		"AAA": series, "BBB": series, "CCC": series, "DDD": series, "EEE": series,
	}}

	tickers := []string{"EEE", "AAA", "DDD", "BBB", "CCC"}
	estimates, _, err := NewAggregator(prov).Aggregate(
		context.Background(), tickers, aggStart, aggEnd, Daily)
	require.NoError(t, err)

	for i, est := range estimates {
		require.Equal(t, tickers[i], est.Ticker)
	}
}

func TestAggregateCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	prov := &ctxProvider{}
	estimates, _, err := NewAggregator(prov).Aggregate(
		ctx, []string{"AAA", "BBB"}, aggStart, aggEnd, Daily)

	// Cancellation surfaces as per-ticker failures without corrupting
	// the table; with zero successes the run reports insufficient data.
	var insufficient *InsufficientDataError
	require.ErrorAs(t, err, &insufficient)
	require.Len(t, estimates, 2)
	for _, est := range estimates {
		require.ErrorIs(t, est.Err, context.Canceled)
	}
}

// ctxProvider fails as soon as its context is canceled.
type ctxProvider struct{}

func (p *ctxProvider) GetDailyBars(ctx context.Context, symbol string, from, to time.Time) ([]marketdata.Bar, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return nil, &marketdata.NoDataError{Symbol: symbol, Start: from, End: to}
}

func (p *ctxProvider) GetYield(ctx context.Context, symbol string, around time.Time) (float64, error) {
	return 0, ctx.Err()
}
