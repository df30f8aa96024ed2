package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"AllocDesk/internal/domain/models"
	imetrics "AllocDesk/internal/service/metrics"
	"AllocDesk/internal/service/marketdata"
	"AllocDesk/internal/services/rules"
	"AllocDesk/internal/services/series"
	applogger "AllocDesk/pkg/logger"
)

// PlannerConfig carries the rule parameter sets and the reference symbol
// the drawdown indicator watches.
type PlannerConfig struct {
	VAA          rules.VAAConfig
	LAA          rules.LAAConfig
	DM           rules.DMConfig
	Drawdown     rules.DrawdownConfig
	Reference    string
	DefaultTotal decimal.Decimal
}

// PlanParams are the per-request knobs. A zero RateOverride means "use the
// provider rate"; a zero Total means "use the configured default".
type PlanParams struct {
	Total        decimal.Decimal
	RateOverride decimal.Decimal
}

// Planner evaluates the three allocation rules plus the drawdown indicator
// against freshly fetched market data.
type Planner struct {
	market *marketdata.Service
	cfg    PlannerConfig
	log    *applogger.Logger
}

// NewPlanner creates the planner and registers its metrics.
func NewPlanner(market *marketdata.Service, cfg PlannerConfig, log *applogger.Logger) *Planner {
	imetrics.Register()
	return &Planner{market: market, cfg: cfg, log: log}
}

// Symbols returns every instrument any rule can touch, deduplicated in
// first-mention order.
func (p *Planner) Symbols() []string {
	seen := make(map[string]bool)
	var out []string
	add := func(syms ...string) {
		for _, s := range syms {
			if s != "" && !seen[s] {
				seen[s] = true
				out = append(out, s)
			}
		}
	}
	add(p.cfg.VAA.Attack...)
	add(p.cfg.VAA.Defense...)
	add(p.cfg.LAA.Fixed...)
	add(p.cfg.LAA.Defensive, p.cfg.LAA.Growth, p.cfg.LAA.Reference)
	add(p.cfg.DM.Domestic, p.cfg.DM.International, p.cfg.DM.Cash, p.cfg.DM.Fallback)
	add(p.cfg.Reference)
	return out
}

// PlanRebalance produces the full plan: per-rule decisions, the advisory
// drawdown signal, briefing rows, and the summed spend. Missing market data
// degrades individual decisions, never the call.
func (p *Planner) PlanRebalance(ctx context.Context, params PlanParams) models.RebalancePlan {
	total := params.Total
	if total.Sign() <= 0 {
		total = p.cfg.DefaultTotal
	}
	budget := total.Div(decimal.NewFromInt(3))

	table := p.market.Table(ctx, p.Symbols())
	macro := p.market.Macro(ctx)

	rate, source := params.RateOverride, models.RateOverride
	if params.RateOverride.Sign() <= 0 {
		rate, source = p.market.ExchangeRate(ctx)
	}

	plan := models.RebalancePlan{
		GeneratedAt:     time.Now().UTC(),
		TotalAssets:     total,
		RuleBudget:      budget,
		ExchangeRate:    rate,
		RateSource:      source,
		PricesAvailable: len(table) > 0,
		MacroAvailable:  macro.Available,
	}

	plan.VAA = p.timed("vaa", func() interface{} {
		return rules.EvaluateVAA(p.cfg.VAA, table, budget, rate)
	}).(models.VAADecision)
	plan.LAA = p.timed("laa", func() interface{} {
		return rules.EvaluateLAA(p.cfg.LAA, table, macro, budget, rate)
	}).(models.LAADecision)
	plan.DM = p.timed("dm", func() interface{} {
		return rules.EvaluateDM(p.cfg.DM, table, budget, rate)
	}).(models.DMDecision)
	plan.Drawdown = p.timed("drawdown", func() interface{} {
		return rules.EvaluateDrawdown(p.cfg.Drawdown, series.Clean(table, p.cfg.Reference))
	}).(models.DrawdownStatus)

	plan.Total = plan.VAA.Pick.Spent.Add(plan.LAA.Total).Add(plan.DM.Pick.Spent)
	plan.Briefing = briefingRows(plan)

	p.log.Info("plan evaluated",
		applogger.String("vaa_pick", plan.VAA.Pick.Symbol),
		applogger.String("laa_regime", plan.LAA.Regime),
		applogger.String("dm_pick", plan.DM.Pick.Symbol),
		applogger.String("rate_source", plan.RateSource),
	)
	return plan
}

func (p *Planner) timed(rule string, fn func() interface{}) interface{} {
	start := time.Now()
	out := fn()
	imetrics.EvalLatency.WithLabelValues(rule).Observe(time.Since(start).Seconds())
	return out
}

// briefingRows builds the explanatory table the dashboard renders.
func briefingRows(plan models.RebalancePlan) []models.BriefingRow {
	vaa := models.BriefingRow{Rule: "VAA", Market: plan.VAA.Regime}
	if plan.VAA.Crisis {
		vaa.Rationale = "a canary asset has non-positive momentum; rotate into the defensive sleeve"
	} else {
		vaa.Rationale = "every canary asset shows positive momentum; stay in the attack sleeve"
	}
	vaa.Impact = impactText(plan.VAA.Pick)

	laa := models.BriefingRow{Rule: "LAA", Market: plan.LAA.Regime}
	if plan.LAA.Regime == models.RegimeDefensive {
		laa.Rationale = "unemployment sits above its 12-month mean while the reference index trades below its 200-day average"
	} else {
		laa.Rationale = "the macro and trend tests are not both met; the growth asset keeps the dynamic slot"
	}
	laa.Impact = fmt.Sprintf("dynamic slot holds %s; four equal legs total %s", plan.LAA.Dynamic, plan.LAA.Total.StringFixed(0))

	dm := models.BriefingRow{Rule: "DM", Market: plan.DM.Regime}
	if plan.DM.Regime == models.RegimeEquity {
		dm.Rationale = fmt.Sprintf("12-month relative momentum favors %s over cash", plan.DM.Pick.Symbol)
	} else {
		dm.Rationale = "equity momentum does not beat the cash return; hold the bond fallback"
	}
	dm.Impact = impactText(plan.DM.Pick)

	return []models.BriefingRow{vaa, laa, dm}
}

func impactText(pos models.Position) string {
	if pos.Symbol == "" {
		return "no tradable pick"
	}
	if pos.Shares == 0 {
		return fmt.Sprintf("hold %s (budget buys no whole share)", pos.Symbol)
	}
	return fmt.Sprintf("buy %d shares of %s for %s", pos.Shares, pos.Symbol, pos.Spent.StringFixed(0))
}
