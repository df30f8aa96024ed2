package series

import (
	"math"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"AllocDesk/internal/domain/models"
)

func mkSeries(symbol string, prices ...float64) models.PriceSeries {
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	pts := make([]models.PricePoint, 0, len(prices))
	for i, p := range prices {
		pts = append(pts, models.PricePoint{Time: base.AddDate(0, 0, i), Price: p})
	}
	return models.PriceSeries{Symbol: symbol, Points: pts}
}

func TestCleanDropsInvalidObservations(t *testing.T) {
	table := models.PriceTable{
		"IVV": mkSeries("IVV", 100, 0, -5, math.NaN(), 101, 102),
	}
	s := Clean(table, "IVV")
	require.Equal(t, 3, s.Len())
	assert.Equal(t, 100.0, s.Points[0].Price)
	assert.Equal(t, 102.0, s.Points[2].Price)
}

func TestCleanAbsentSymbol(t *testing.T) {
	s := Clean(models.PriceTable{}, "VEA")
	assert.True(t, s.Empty())
	assert.Equal(t, "VEA", s.Symbol)

	s = Clean(nil, "VEA")
	assert.True(t, s.Empty())
}

func TestHasLookback(t *testing.T) {
	s := mkSeries("X", 1, 2, 3)
	assert.True(t, HasLookback(s, 2))
	assert.False(t, HasLookback(s, 3))
}

func TestTrailingReturn(t *testing.T) {
	s := mkSeries("X", 100, 105, 110)
	r, ok := TrailingReturn(s, 2)
	require.True(t, ok)
	assert.InDelta(t, 0.10, r, 1e-12)

	_, ok = TrailingReturn(s, 3)
	assert.False(t, ok, "length must strictly exceed the lookback")
}

func TestSMA(t *testing.T) {
	s := mkSeries("X", 1, 2, 3, 4)
	ma, ok := SMA(s, 2)
	require.True(t, ok)
	assert.Equal(t, 3.5, ma)

	_, ok = SMA(s, 5)
	assert.False(t, ok)
}

func TestRunningMax(t *testing.T) {
	s := mkSeries("X", 3, 9, 4)
	max, ok := RunningMax(s)
	require.True(t, ok)
	assert.Equal(t, 9.0, max)
}

func TestSharesBudgetInvariant(t *testing.T) {
	budget := decimal.NewFromInt(10_000_000)
	rate := decimal.NewFromFloat(1350.0)
	for _, price := range []float64{0.37, 1, 123.45, 480.17, 99999} {
		shares, spent := Shares(budget, price, rate)
		assert.GreaterOrEqual(t, shares, int64(0))
		assert.True(t, spent.LessThanOrEqual(budget), "price %v overspends: %s", price, spent)
		want := decimal.NewFromInt(shares).Mul(decimal.NewFromFloat(price)).Mul(rate)
		assert.True(t, spent.Equal(want), "spent must equal shares*price*rate exactly")
	}
}

func TestSharesUndefinedPrice(t *testing.T) {
	budget := decimal.NewFromInt(1_000_000)
	rate := decimal.NewFromInt(1350)
	for _, price := range []float64{0, -10, math.NaN(), math.Inf(1)} {
		shares, spent := Shares(budget, price, rate)
		assert.Zero(t, shares)
		assert.True(t, spent.IsZero())
	}
}

func TestSharesBudgetTooSmall(t *testing.T) {
	shares, spent := Shares(decimal.NewFromInt(100), 500, decimal.NewFromInt(1350))
	assert.Zero(t, shares)
	assert.True(t, spent.IsZero())
}
