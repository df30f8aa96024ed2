package web

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"AllocDesk/internal/domain/models"
	"AllocDesk/internal/repository"
	"AllocDesk/internal/service/marketdata"
	"AllocDesk/internal/service/ratelimit"
	"AllocDesk/internal/services/rules"
	"AllocDesk/internal/usecase"
	"AllocDesk/pkg/cache"
	applogger "AllocDesk/pkg/logger"
)

type stubPrices struct{ series map[string]models.PriceSeries }

func (s *stubPrices) History(_ context.Context, symbol string, _ int) (models.PriceSeries, error) {
	return s.series[symbol], nil
}

func (s *stubPrices) Spot(_ context.Context, _ string) (float64, error) { return 1000, nil }

type stubMacro struct{}

func (stubMacro) Series(_ context.Context, id string) (models.MacroIndicator, error) {
	return models.MacroIndicator{
		SeriesID: id, Latest: 4.2, TrailingMean: 3.9, Available: true,
		Observations: []models.MacroObservation{{Month: "2025-07", Value: 4.2, Mean: 3.9}},
	}, nil
}

type nopMetrics struct{}

func (nopMetrics) RecordMessageSent(string, string) {}
func (nopMetrics) RecordError(string)               {}
func (nopMetrics) RecordLastPrice(string, float64)  {}
func (nopMetrics) RecordLatency(string, float64)    {}

func stubSeries(symbol string, prices ...float64) models.PriceSeries {
	base := time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)
	s := models.PriceSeries{Symbol: symbol}
	for i, p := range prices {
		s.Points = append(s.Points, models.PricePoint{Time: base.AddDate(0, 0, i), Price: p})
	}
	return s
}

func TestIndexRenders(t *testing.T) {
	log, err := applogger.New(&applogger.Config{Level: "error", Format: "console", Output: "stderr"})
	require.NoError(t, err)

	prices := &stubPrices{series: map[string]models.PriceSeries{
		"VOO":  stubSeries("VOO", 100, 110),
		"SHY":  stubSeries("SHY", 100, 101),
		"VTV":  stubSeries("VTV", 100, 102),
		"VGSH": stubSeries("VGSH", 100, 100),
		"QQQM": stubSeries("QQQM", 100, 108),
		"IVV":  stubSeries("IVV", 100, 112),
		"VEA":  stubSeries("VEA", 100, 104),
		"SGOV": stubSeries("SGOV", 100, 100.5),
		"BND":  stubSeries("BND", 100, 99),
	}}
	mem := cache.NewMemoryCache(cache.WithMemoryMaxSize(256))
	t.Cleanup(func() { _ = mem.Close() })
	market := marketdata.New(prices, stubMacro{}, mem, ratelimit.New(), nopMetrics{}, log, marketdata.Options{
		RangeDays: 730, FXPair: "KRW=X", FXFallback: 1350, MacroSeries: "UNRATE",
	})

	legs := []rules.MomentumLeg{{Lookback: 1, Weight: 1}}
	planner := usecase.NewPlanner(market, usecase.PlannerConfig{
		VAA: rules.VAAConfig{Attack: []string{"VOO"}, Defense: []string{"SHY"}, Legs: legs},
		LAA: rules.LAAConfig{
			Fixed: []string{"VTV"}, Defensive: "VGSH", Growth: "QQQM",
			Reference: "IVV", MAWindow: 2,
		},
		DM: rules.DMConfig{
			Domestic: "IVV", International: "VEA", Cash: "SGOV", Fallback: "BND", Lookback: 1,
		},
		Drawdown:     rules.DefaultDrawdownConfig(),
		Reference:    "IVV",
		DefaultTotal: decimal.NewFromInt(30_000_000),
	}, log)

	store, err := repository.NewCSVHistory(filepath.Join(t.TempDir(), "history.csv"))
	require.NoError(t, err)
	history := usecase.NewHistory(store, nil, nil, nopMetrics{}, log)

	h, err := NewDashboardHandler(log, planner, history, market, map[string]string{"IVV": "S&P 500 core"})
	require.NoError(t, err)

	e := echo.New()
	h.RegisterRoutes(e)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	html := rec.Body.String()
	assert.True(t, strings.Contains(html, "Allocation Dashboard"))
	assert.True(t, strings.Contains(html, "VOO"), "summary should show the VAA pick")
	assert.True(t, strings.Contains(html, "UNRATE"))
	assert.True(t, strings.Contains(html, "no rebalances recorded yet"))
}
