package rules

import (
	"github.com/shopspring/decimal"

	"AllocDesk/internal/domain/models"
	"AllocDesk/internal/services/series"
)

// momentumScore blends trailing returns over the configured lookback legs.
// Undefined when any leg's lookback exceeds the available history.
func momentumScore(s models.PriceSeries, legs []MomentumLeg) (float64, bool) {
	score := 0.0
	for _, leg := range legs {
		r, ok := series.TrailingReturn(s, leg.Lookback)
		if !ok {
			return 0, false
		}
		score += leg.Weight * r
	}
	return score, true
}

// EvaluateVAA runs the momentum-crisis rule: score every attack and defense
// symbol, flag a crisis when any attack symbol with a defined score is at or
// below zero, and buy the best-scoring candidate from the active set with
// the full rule budget.
//
// Ties on the maximum score break to the lexicographically smaller symbol,
// so the pick is independent of configuration order.
func EvaluateVAA(cfg VAAConfig, table models.PriceTable, budget decimal.Decimal, rate decimal.Decimal) models.VAADecision {
	scores := make([]models.SymbolScore, 0, len(cfg.Attack)+len(cfg.Defense))
	defined := make(map[string]float64)
	for _, sym := range append(append([]string{}, cfg.Attack...), cfg.Defense...) {
		s := series.Clean(table, sym)
		score, ok := momentumScore(s, cfg.Legs)
		scores = append(scores, models.SymbolScore{Symbol: sym, Score: score, Defined: ok})
		if ok {
			defined[sym] = score
		}
	}

	crisis := false
	for _, sym := range cfg.Attack {
		if score, ok := defined[sym]; ok && score <= 0 {
			crisis = true
			break
		}
	}

	regime := models.RegimeAttack
	candidates := cfg.Attack
	if crisis {
		regime = models.RegimeDefense
		candidates = cfg.Defense
	}

	best := ""
	bestScore := 0.0
	for _, sym := range candidates {
		score, ok := defined[sym]
		if !ok {
			continue
		}
		if best == "" || score > bestScore || (score == bestScore && sym < best) {
			best, bestScore = sym, score
		}
	}

	d := models.VAADecision{Crisis: crisis, Regime: regime, Scores: scores}
	if best == "" {
		return d
	}
	price, ok := series.Last(series.Clean(table, best))
	if !ok {
		d.Pick = models.Position{Symbol: best, Spent: decimal.Zero}
		return d
	}
	shares, spent := series.Shares(budget, price, rate)
	d.Pick = models.Position{Symbol: best, Shares: shares, Spent: spent}
	return d
}
