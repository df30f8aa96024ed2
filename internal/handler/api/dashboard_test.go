package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
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
	return models.MacroIndicator{SeriesID: id, Latest: 4.2, TrailingMean: 3.9, Available: true}, nil
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

func newEcho(t *testing.T) *echo.Echo {
	t.Helper()
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

	h := NewDashboardHandler(log, planner, history, market, map[string]string{"IVV": "S&P 500 core"})
	e := echo.New()
	h.RegisterRoutes(e)
	return e
}

func do(e *echo.Echo, method, target string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func body(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestPlanEndpoint(t *testing.T) {
	e := newEcho(t)
	rec := do(e, http.MethodGet, "/api/plan?total=30000000")
	require.Equal(t, http.StatusOK, rec.Code)

	out := body(t, rec)
	assert.EqualValues(t, http.StatusOK, out["status"])
	data := out["data"].(map[string]interface{})
	assert.Equal(t, "live", data["rate_source"])
	vaa := data["vaa"].(map[string]interface{})
	pick := vaa["pick"].(map[string]interface{})
	assert.Equal(t, "VOO", pick["symbol"])
}

func TestPlanValidatesTotal(t *testing.T) {
	e := newEcho(t)
	rec := do(e, http.MethodGet, "/api/plan?total=-5")
	out := body(t, rec)
	assert.EqualValues(t, http.StatusBadRequest, out["status"])
}

func TestAlertsEndpoint(t *testing.T) {
	e := newEcho(t)
	rec := do(e, http.MethodGet, "/api/alerts")
	require.Equal(t, http.StatusOK, rec.Code)

	data := body(t, rec)["data"].(map[string]interface{})
	assert.Equal(t, false, data["vaa_crisis"])
	dd := data["drawdown"].(map[string]interface{})
	assert.Equal(t, true, dd["available"])
}

func TestQuotesEndpoint(t *testing.T) {
	e := newEcho(t)
	rec := do(e, http.MethodGet, "/api/quotes")
	require.Equal(t, http.StatusOK, rec.Code)

	data := body(t, rec)["data"].(map[string]interface{})
	rows := data["rows"].([]interface{})
	assert.NotEmpty(t, rows)
}

func TestMacroEndpoint(t *testing.T) {
	e := newEcho(t)
	rec := do(e, http.MethodGet, "/api/macro")
	data := body(t, rec)["data"].(map[string]interface{})
	assert.Equal(t, "UNRATE", data["series_id"])
	assert.Equal(t, true, data["available"])
}

func TestHistoryRecordAndList(t *testing.T) {
	e := newEcho(t)

	rec := do(e, http.MethodPost, "/api/history?total=30000000")
	require.Equal(t, http.StatusOK, rec.Code)
	out := body(t, rec)
	assert.EqualValues(t, http.StatusCreated, out["status"])

	rec = do(e, http.MethodGet, "/api/history")
	data := body(t, rec)["data"].(map[string]interface{})
	rows := data["rows"].([]interface{})
	require.Len(t, rows, 1)
	first := rows[0].(map[string]interface{})
	assert.Equal(t, "VOO", first["vaa_pick"])
}

func TestHistoryLimit(t *testing.T) {
	e := newEcho(t)

	do(e, http.MethodPost, "/api/history")
	do(e, http.MethodPost, "/api/history")
	do(e, http.MethodPost, "/api/history")

	rec := do(e, http.MethodGet, "/api/history?limit=2")
	data := body(t, rec)["data"].(map[string]interface{})
	rows := data["rows"].([]interface{})
	assert.Len(t, rows, 2)

	rec = do(e, http.MethodGet, "/api/history?since=2099-01-01T00:00:00Z")
	data = body(t, rec)["data"].(map[string]interface{})
	rows = data["rows"].([]interface{})
	assert.Empty(t, rows)
}

func TestHealthEndpoint(t *testing.T) {
	e := newEcho(t)
	rec := do(e, http.MethodGet, "/healthz")
	require.Equal(t, http.StatusOK, rec.Code)
	data := body(t, rec)["data"].(map[string]interface{})
	assert.Equal(t, "ok", data["history_mirror"])
}
