package rules

import (
	"github.com/shopspring/decimal"

	"AllocDesk/internal/domain/models"
	"AllocDesk/internal/services/series"
)

// EvaluateDM runs the dual-momentum rule: compare the 12-month returns of
// the domestic and international equity proxies, then require the winner to
// beat the cash proxy before committing to equity; otherwise fall back to
// the bond instrument.
func EvaluateDM(cfg DMConfig, table models.PriceTable, budget decimal.Decimal, rate decimal.Decimal) models.DMDecision {
	ret := func(sym string) models.SymbolScore {
		r, ok := series.TrailingReturn(series.Clean(table, sym), cfg.Lookback)
		return models.SymbolScore{Symbol: sym, Score: r, Defined: ok}
	}
	dom := ret(cfg.Domestic)
	intl := ret(cfg.International)
	cash := ret(cfg.Cash)

	pick := cfg.Fallback
	regime := models.RegimeBond
	if dom.Defined || intl.Defined {
		better := intl
		if dom.Defined && (!intl.Defined || dom.Score > intl.Score) {
			better = dom
		}
		// an undefined cash return can never be exceeded, so the rule
		// stays on the bond fallback when the cash proxy is missing
		if better.Defined && cash.Defined && better.Score > cash.Score {
			pick = better.Symbol
			regime = models.RegimeEquity
		}
	}

	d := models.DMDecision{
		Regime:              regime,
		DomesticReturn:      dom,
		InternationalReturn: intl,
		CashReturn:          cash,
		Pick:                models.Position{Symbol: pick, Spent: decimal.Zero},
	}
	if price, ok := series.Last(series.Clean(table, pick)); ok {
		d.Pick.Shares, d.Pick.Spent = series.Shares(budget, price, rate)
	}
	return d
}
