package rules

import (
	"github.com/shopspring/decimal"

	"AllocDesk/internal/domain/models"
	"AllocDesk/internal/services/series"
)

// EvaluateLAA runs the regime-switch rule: three fixed holdings plus one
// dynamic slot, each funded independently at 25% of the rule budget.
//
// The dynamic slot turns defensive only when the macro indicator is above
// its trailing mean AND the reference index trades below its moving
// average. When the macro series is unavailable or the MA is undefined the
// test cannot pass and the slot stays on the growth instrument.
//
// Total is the sum of the four legs' actual spends; per-leg flooring means
// it is usually below the budget, and it is the authoritative figure.
func EvaluateLAA(cfg LAAConfig, table models.PriceTable, macro models.MacroIndicator, budget decimal.Decimal, rate decimal.Decimal) models.LAADecision {
	ref := series.Clean(table, cfg.Reference)
	refPrice, refOK := series.Last(ref)
	ma, maOK := series.SMA(ref, cfg.MAWindow)

	defensive := macro.Available &&
		macro.Latest > macro.TrailingMean &&
		refOK && maOK && refPrice < ma

	regime := models.RegimeNormal
	dynamic := cfg.Growth
	if defensive {
		regime = models.RegimeDefensive
		dynamic = cfg.Defensive
	}

	legBudget := budget.Div(decimal.NewFromInt(4))
	holdings := make([]models.Position, 0, len(cfg.Fixed)+1)
	total := decimal.Zero
	for _, sym := range append(append([]string{}, cfg.Fixed...), dynamic) {
		pos := models.Position{Symbol: sym, Spent: decimal.Zero}
		if price, ok := series.Last(series.Clean(table, sym)); ok {
			pos.Shares, pos.Spent = series.Shares(legBudget, price, rate)
		}
		holdings = append(holdings, pos)
		total = total.Add(pos.Spent)
	}

	return models.LAADecision{Regime: regime, Dynamic: dynamic, Holdings: holdings, Total: total}
}
