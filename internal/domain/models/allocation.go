package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Regime labels produced by the rules.
const (
	RegimeAttack    = "attack"
	RegimeDefense   = "defense"
	RegimeNormal    = "normal"
	RegimeDefensive = "defensive"
	RegimeEquity    = "equity"
	RegimeBond      = "bond"
)

// Position is a sized holding: how many whole shares of an instrument and
// the exact domestic-currency amount they cost. Spent is always
// shares * price * rate and never exceeds the budget the position was
// sized against.
type Position struct {
	Symbol string          `json:"symbol"`
	Shares int64           `json:"shares"`
	Spent  decimal.Decimal `json:"spent"`
}

// SymbolScore is a per-symbol momentum score. Defined is false when the
// series was too short for every lookback leg.
type SymbolScore struct {
	Symbol  string  `json:"symbol"`
	Score   float64 `json:"score"`
	Defined bool    `json:"defined"`
}

// VAADecision is the momentum-crisis rule output. Pick.Symbol is empty when
// no candidate had a defined score.
type VAADecision struct {
	Crisis bool          `json:"crisis"`
	Regime string        `json:"regime"` // attack | defense
	Scores []SymbolScore `json:"scores"`
	Pick   Position      `json:"pick"`
}

// LAADecision is the regime-switch rule output. Holdings always has one row
// per configured leg (three fixed plus the dynamic slot); Total is the sum
// of the rows' actual spends, not the budget.
type LAADecision struct {
	Regime   string          `json:"regime"` // normal | defensive
	Dynamic  string          `json:"dynamic"`
	Holdings []Position      `json:"holdings"`
	Total    decimal.Decimal `json:"total"`
}

// DMDecision is the dual-momentum rule output.
type DMDecision struct {
	Regime              string      `json:"regime"` // equity | bond
	DomesticReturn      SymbolScore `json:"domestic_return"`
	InternationalReturn SymbolScore `json:"international_return"`
	CashReturn          SymbolScore `json:"cash_return"`
	Pick                Position    `json:"pick"`
}

// DrawdownStatus is the advisory staging signal computed from the reference
// equity series. It moves no money.
type DrawdownStatus struct {
	Available     bool    `json:"available"`
	Current       float64 `json:"current"`
	AllTimeHigh   float64 `json:"all_time_high"`
	DrawdownPct   float64 `json:"drawdown_pct"`
	StageLabel    string  `json:"stage_label"`
	ConversionPct int     `json:"conversion_pct"`
	MA50          float64 `json:"ma50"`
	MA50Defined   bool    `json:"ma50_defined"`
	TrendLabel    string  `json:"trend_label"`
}

// Trend labels for DrawdownStatus.
const (
	TrendBroken    = "trend broken"
	TrendProfitMax = "profit-max zone"
	TrendIntact    = "trend intact"
)

// Drawdown stage labels.
const (
	StageNoise = "noise"
	StageFinal = "final"
)

// BriefingRow is one explanatory row of the per-rule briefing table.
type BriefingRow struct {
	Rule      string `json:"rule"`
	Rationale string `json:"rationale"`
	Impact    string `json:"impact"`
	Market    string `json:"market"`
}

// RebalancePlan is the full evaluation the dashboard renders: one decision
// per rule, the advisory drawdown signal, and presentation rows. Total is
// the arithmetic sum of the three rules' actual spends.
type RebalancePlan struct {
	GeneratedAt     time.Time       `json:"generated_at"`
	TotalAssets     decimal.Decimal `json:"total_assets"`
	RuleBudget      decimal.Decimal `json:"rule_budget"`
	ExchangeRate    decimal.Decimal `json:"exchange_rate"`
	RateSource      string          `json:"rate_source"` // live | fallback | override
	PricesAvailable bool            `json:"prices_available"`
	MacroAvailable  bool            `json:"macro_available"`
	VAA             VAADecision     `json:"vaa"`
	LAA             LAADecision     `json:"laa"`
	DM              DMDecision      `json:"dm"`
	Drawdown        DrawdownStatus  `json:"drawdown"`
	Briefing        []BriefingRow   `json:"briefing"`
	Total           decimal.Decimal `json:"total"`
}

// Exchange-rate source labels.
const (
	RateLive     = "live"
	RateFallback = "fallback"
	RateOverride = "override"
)

// RebalanceRecord is one immutable row of the append-only history log.
// DrawdownPct is the formatted percentage at record time, empty when the
// drawdown could not be computed.
type RebalanceRecord struct {
	Timestamp   time.Time `json:"timestamp"`
	VAAPick     string    `json:"vaa_pick"`
	LAARegime   string    `json:"laa_regime"`
	LAADynamic  string    `json:"laa_dynamic"`
	DMPick      string    `json:"dm_pick"`
	DrawdownPct string    `json:"drawdown_pct"`
}
