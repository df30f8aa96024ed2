package marketdata

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"AllocDesk/internal/domain/models"
	"AllocDesk/internal/service/ratelimit"
	"AllocDesk/pkg/cache"
	applogger "AllocDesk/pkg/logger"
)

type fakePrices struct {
	histCalls int
	spotCalls int
	series    map[string]models.PriceSeries
	spotRate  float64
	histErr   error
	spotErr   error
}

func (f *fakePrices) History(_ context.Context, symbol string, _ int) (models.PriceSeries, error) {
	f.histCalls++
	if f.histErr != nil {
		return models.PriceSeries{Symbol: symbol}, f.histErr
	}
	return f.series[symbol], nil
}

func (f *fakePrices) Spot(_ context.Context, _ string) (float64, error) {
	f.spotCalls++
	return f.spotRate, f.spotErr
}

type fakeMacro struct {
	calls int
	ind   models.MacroIndicator
	err   error
}

func (f *fakeMacro) Series(_ context.Context, id string) (models.MacroIndicator, error) {
	f.calls++
	if f.err != nil {
		return models.MacroIndicator{SeriesID: id}, f.err
	}
	return f.ind, nil
}

type nopMetrics struct{}

func (nopMetrics) RecordMessageSent(string, string)  {}
func (nopMetrics) RecordError(string)                {}
func (nopMetrics) RecordLastPrice(string, float64)   {}
func (nopMetrics) RecordLatency(string, float64)     {}

func series(symbol string, prices ...float64) models.PriceSeries {
	base := time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)
	s := models.PriceSeries{Symbol: symbol}
	for i, p := range prices {
		s.Points = append(s.Points, models.PricePoint{Time: base.AddDate(0, 0, i), Price: p})
	}
	return s
}

func newService(t *testing.T, prices *fakePrices, macro *fakeMacro) *Service {
	t.Helper()
	log, err := applogger.New(&applogger.Config{Level: "error", Format: "console", Output: "stderr"})
	require.NoError(t, err)
	mem := cache.NewMemoryCache(cache.WithMemoryMaxSize(128))
	t.Cleanup(func() { _ = mem.Close() })
	return New(prices, macro, mem, ratelimit.New(), nopMetrics{}, log, Options{
		RangeDays:   730,
		FXPair:      "KRW=X",
		FXFallback:  1350.0,
		MacroSeries: "UNRATE",
	})
}

func TestHistoryIsCached(t *testing.T) {
	prices := &fakePrices{series: map[string]models.PriceSeries{
		"IVV": series("IVV", 100, 101, 102),
	}}
	svc := newService(t, prices, &fakeMacro{})

	first := svc.History(context.Background(), "IVV")
	second := svc.History(context.Background(), "IVV")
	assert.Equal(t, 1, prices.histCalls)
	assert.Equal(t, 3, first.Len())
	assert.Equal(t, first.Points, second.Points)
}

func TestHistoryDegradesToEmptyOnError(t *testing.T) {
	prices := &fakePrices{histErr: errors.New("boom")}
	svc := newService(t, prices, &fakeMacro{})

	s := svc.History(context.Background(), "IVV")
	assert.True(t, s.Empty())
	assert.Equal(t, "IVV", s.Symbol)

	health := svc.Health(context.Background())
	assert.Equal(t, "boom", health["prices"])
}

func TestTableOmitsEmptySeries(t *testing.T) {
	prices := &fakePrices{series: map[string]models.PriceSeries{
		"IVV": series("IVV", 100, 101),
	}}
	svc := newService(t, prices, &fakeMacro{})

	table := svc.Table(context.Background(), []string{"IVV", "MISSING"})
	assert.Len(t, table, 1)
	_, ok := table["MISSING"]
	assert.False(t, ok)
}

func TestExchangeRateLiveAndCached(t *testing.T) {
	prices := &fakePrices{spotRate: 1349.5}
	svc := newService(t, prices, &fakeMacro{})

	rate, source := svc.ExchangeRate(context.Background())
	assert.Equal(t, models.RateLive, source)
	assert.True(t, rate.Equal(decimal.NewFromFloat(1349.5)))

	_, source = svc.ExchangeRate(context.Background())
	assert.Equal(t, models.RateLive, source)
	assert.Equal(t, 1, prices.spotCalls)
}

func TestExchangeRateFallbackOnlyOnFailure(t *testing.T) {
	prices := &fakePrices{spotErr: errors.New("down")}
	svc := newService(t, prices, &fakeMacro{})

	rate, source := svc.ExchangeRate(context.Background())
	assert.Equal(t, models.RateFallback, source)
	assert.True(t, rate.Equal(decimal.NewFromFloat(1350.0)))
}

func TestMacroCachedAndDegraded(t *testing.T) {
	macro := &fakeMacro{ind: models.MacroIndicator{
		SeriesID: "UNRATE", Latest: 4.2, TrailingMean: 3.9, Available: true,
	}}
	svc := newService(t, &fakePrices{}, macro)

	first := svc.Macro(context.Background())
	second := svc.Macro(context.Background())
	assert.Equal(t, 1, macro.calls)
	assert.True(t, first.Available)
	assert.Equal(t, first.Latest, second.Latest)

	failing := &fakeMacro{err: errors.New("fred down")}
	svc2 := newService(t, &fakePrices{}, failing)
	ind := svc2.Macro(context.Background())
	assert.False(t, ind.Available)
}

func TestQuotesKeepOrderAndFlagMissing(t *testing.T) {
	prices := &fakePrices{series: map[string]models.PriceSeries{
		"IVV": series("IVV", 480.17),
	}}
	svc := newService(t, prices, &fakeMacro{})

	quotes := svc.Quotes(context.Background(), []string{"IVV", "GONE"}, map[string]string{
		"IVV": "S&P 500 core", "GONE": "delisted",
	})
	require.Len(t, quotes, 2)
	assert.True(t, quotes[0].Available)
	assert.Equal(t, 480.17, quotes[0].Price)
	assert.False(t, quotes[1].Available)
	assert.Equal(t, "delisted", quotes[1].Description)
}
