package rules

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"AllocDesk/internal/domain/models"
)

func mkSeries(symbol string, prices ...float64) models.PriceSeries {
	base := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	pts := make([]models.PricePoint, 0, len(prices))
	for i, p := range prices {
		pts = append(pts, models.PricePoint{Time: base.AddDate(0, 0, i), Price: p})
	}
	return models.PriceSeries{Symbol: symbol, Points: pts}
}

// one-day lookback legs let tiny synthetic series produce exact scores:
// score = last/prev - 1.
func oneDayLegs() []MomentumLeg {
	return []MomentumLeg{{Lookback: 1, Weight: 1}}
}

func TestVAACrisisWhenAnyAttackScoreNonPositive(t *testing.T) {
	cfg := VAAConfig{
		Attack:  []string{"AA", "AB", "AC", "AD"},
		Defense: []string{"DA", "DB", "DC"},
		Legs:    oneDayLegs(),
	}
	// attack scores: +1.0, -0.2, +0.5, +0.3
	table := models.PriceTable{
		"AA": mkSeries("AA", 100, 200),
		"AB": mkSeries("AB", 100, 80),
		"AC": mkSeries("AC", 100, 150),
		"AD": mkSeries("AD", 100, 130),
		"DA": mkSeries("DA", 100, 104),
		"DB": mkSeries("DB", 100, 110),
		"DC": mkSeries("DC", 100, 102),
	}
	d := EvaluateVAA(cfg, table, decimal.NewFromInt(1_000_000), decimal.NewFromInt(1000))
	assert.True(t, d.Crisis)
	assert.Equal(t, models.RegimeDefense, d.Regime)
	// best defense score is DB at +0.10
	assert.Equal(t, "DB", d.Pick.Symbol)
	assert.EqualValues(t, 9, d.Pick.Shares) // floor(1000/110)
}

func TestVAAAttackRegimeWhenAllScoresPositive(t *testing.T) {
	cfg := VAAConfig{
		Attack:  []string{"AA", "AB"},
		Defense: []string{"DA"},
		Legs:    oneDayLegs(),
	}
	table := models.PriceTable{
		"AA": mkSeries("AA", 100, 120),
		"AB": mkSeries("AB", 100, 140),
		"DA": mkSeries("DA", 100, 101),
	}
	d := EvaluateVAA(cfg, table, decimal.NewFromInt(1_000_000), decimal.NewFromInt(1000))
	assert.False(t, d.Crisis)
	assert.Equal(t, models.RegimeAttack, d.Regime)
	assert.Equal(t, "AB", d.Pick.Symbol)
}

func TestVAAUndefinedAttackScoreDoesNotTriggerCrisis(t *testing.T) {
	cfg := VAAConfig{
		Attack:  []string{"AA", "AB"},
		Defense: []string{"DA"},
		Legs:    oneDayLegs(),
	}
	// AB has a single point: undefined score, not a negative one
	table := models.PriceTable{
		"AA": mkSeries("AA", 100, 120),
		"AB": mkSeries("AB", 100),
		"DA": mkSeries("DA", 100, 101),
	}
	d := EvaluateVAA(cfg, table, decimal.NewFromInt(1_000_000), decimal.NewFromInt(1000))
	assert.False(t, d.Crisis)
	assert.Equal(t, "AA", d.Pick.Symbol)
}

func TestVAANoCandidateMakesNoPick(t *testing.T) {
	cfg := VAAConfig{
		Attack:  []string{"AA"},
		Defense: []string{"DA"},
		Legs:    oneDayLegs(),
	}
	// attack in crisis, defense series too short for a score
	table := models.PriceTable{
		"AA": mkSeries("AA", 100, 90),
		"DA": mkSeries("DA", 100),
	}
	d := EvaluateVAA(cfg, table, decimal.NewFromInt(1_000_000), decimal.NewFromInt(1000))
	assert.True(t, d.Crisis)
	assert.Empty(t, d.Pick.Symbol)
	assert.Zero(t, d.Pick.Shares)
	assert.True(t, d.Pick.Spent.IsZero())
}

func TestVAATieBreaksLexicographically(t *testing.T) {
	cfg := VAAConfig{
		Attack:  []string{"ZZ", "AA"},
		Defense: []string{"DA"},
		Legs:    oneDayLegs(),
	}
	table := models.PriceTable{
		"ZZ": mkSeries("ZZ", 100, 110),
		"AA": mkSeries("AA", 100, 110),
		"DA": mkSeries("DA", 100, 101),
	}
	d := EvaluateVAA(cfg, table, decimal.NewFromInt(1_000_000), decimal.NewFromInt(1000))
	assert.Equal(t, "AA", d.Pick.Symbol)
}

func TestMomentumScoreUndefinedAtExactLookbackLength(t *testing.T) {
	legs := DefaultMomentumLegs()
	prices := make([]float64, 251)
	for i := range prices {
		prices[i] = 100 + float64(i)*0.1
	}
	s := mkSeries("X", prices...)
	_, ok := momentumScore(s, legs)
	assert.False(t, ok, "251 points cannot serve a 251-period lookback")

	s = mkSeries("X", append(prices, 130)...)
	score, ok := momentumScore(s, legs)
	require.True(t, ok)
	assert.Greater(t, score, 0.0)
}
