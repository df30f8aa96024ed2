package rules

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"AllocDesk/internal/domain/models"
)

func dmCfg() DMConfig {
	return DMConfig{
		Domestic:      "IVV",
		International: "VEA",
		Cash:          "SGOV",
		Fallback:      "BND",
		Lookback:      1,
	}
}

func TestDMPicksDomesticWinner(t *testing.T) {
	table := models.PriceTable{
		"IVV":  mkSeries("IVV", 100, 115), // +15%
		"VEA":  mkSeries("VEA", 100, 108), // +8%
		"SGOV": mkSeries("SGOV", 100, 102),
		"BND":  mkSeries("BND", 100, 100),
	}
	d := EvaluateDM(dmCfg(), table, decimal.NewFromInt(1_000_000), decimal.NewFromInt(1000))
	assert.Equal(t, models.RegimeEquity, d.Regime)
	assert.Equal(t, "IVV", d.Pick.Symbol)
	assert.EqualValues(t, 8, d.Pick.Shares) // floor(1000/115)
}

func TestDMPicksInternationalWhenDomesticUndefined(t *testing.T) {
	table := models.PriceTable{
		"IVV":  mkSeries("IVV", 100), // too short
		"VEA":  mkSeries("VEA", 100, 108),
		"SGOV": mkSeries("SGOV", 100, 102),
		"BND":  mkSeries("BND", 100, 100),
	}
	d := EvaluateDM(dmCfg(), table, decimal.NewFromInt(1_000_000), decimal.NewFromInt(1000))
	assert.Equal(t, models.RegimeEquity, d.Regime)
	assert.Equal(t, "VEA", d.Pick.Symbol)
}

func TestDMFallsBackWhenCashBeatsEquity(t *testing.T) {
	table := models.PriceTable{
		"IVV":  mkSeries("IVV", 100, 101),
		"VEA":  mkSeries("VEA", 100, 100.5),
		"SGOV": mkSeries("SGOV", 100, 105),
		"BND":  mkSeries("BND", 100, 100),
	}
	d := EvaluateDM(dmCfg(), table, decimal.NewFromInt(1_000_000), decimal.NewFromInt(1000))
	assert.Equal(t, models.RegimeBond, d.Regime)
	assert.Equal(t, "BND", d.Pick.Symbol)
}

func TestDMFallbackWhenBothEquityReturnsUndefined(t *testing.T) {
	// both equity returns undefined: fall back regardless of the cash return
	table := models.PriceTable{
		"IVV":  mkSeries("IVV", 100),
		"VEA":  {},
		"SGOV": mkSeries("SGOV", 100, 90), // deeply negative cash return
		"BND":  mkSeries("BND", 100, 100),
	}
	d := EvaluateDM(dmCfg(), table, decimal.NewFromInt(1_000_000), decimal.NewFromInt(1000))
	assert.Equal(t, models.RegimeBond, d.Regime)
	assert.Equal(t, "BND", d.Pick.Symbol)
	assert.EqualValues(t, 10, d.Pick.Shares)
}

func TestDMFallbackWhenCashUndefined(t *testing.T) {
	table := models.PriceTable{
		"IVV": mkSeries("IVV", 100, 120),
		"VEA": mkSeries("VEA", 100, 110),
		"BND": mkSeries("BND", 100, 100),
	}
	d := EvaluateDM(dmCfg(), table, decimal.NewFromInt(1_000_000), decimal.NewFromInt(1000))
	assert.Equal(t, models.RegimeBond, d.Regime)
	assert.Equal(t, "BND", d.Pick.Symbol)
}

func TestDMFallbackUnpricedStillReported(t *testing.T) {
	d := EvaluateDM(dmCfg(), models.PriceTable{}, decimal.NewFromInt(1_000_000), decimal.NewFromInt(1000))
	assert.Equal(t, "BND", d.Pick.Symbol)
	assert.Zero(t, d.Pick.Shares)
	assert.True(t, d.Pick.Spent.IsZero())
}
