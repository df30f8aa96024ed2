package usecase

import (
	"context"
	"fmt"
	"time"

	"AllocDesk/internal/domain/models"
	drepo "AllocDesk/internal/domain/repository"
	imetrics "AllocDesk/internal/service/metrics"
	applogger "AllocDesk/pkg/logger"
)

// History records rebalance decisions. The CSV store is authoritative;
// the ClickHouse mirror and Kafka publisher are optional best-effort sinks
// whose failures are logged and counted, never surfaced to the caller.
type History struct {
	store   drepo.HistoryStore
	mirror  drepo.HistoryMirror
	pub     drepo.DecisionPublisher
	metrics drepo.Metrics
	log     *applogger.Logger
}

// NewHistory creates the usecase. mirror and pub may be nil when disabled.
func NewHistory(
	store drepo.HistoryStore,
	mirror drepo.HistoryMirror,
	pub drepo.DecisionPublisher,
	metrics drepo.Metrics,
	log *applogger.Logger,
) *History {
	imetrics.Register()
	return &History{store: store, mirror: mirror, pub: pub, metrics: metrics, log: log}
}

// Record appends the plan's decision snapshot to the log and fans it out to
// the configured secondary sinks.
func (h *History) Record(ctx context.Context, plan models.RebalancePlan) (models.RebalanceRecord, error) {
	rec := RecordFromPlan(plan)

	if err := h.store.Append(ctx, rec); err != nil {
		imetrics.HistoryAppends.WithLabelValues("csv", "error").Inc()
		h.metrics.RecordError("history_append")
		return rec, fmt.Errorf("append history: %w", err)
	}
	imetrics.HistoryAppends.WithLabelValues("csv", "ok").Inc()
	h.metrics.RecordMessageSent("csv", rec.VAAPick)

	if h.mirror != nil {
		if err := h.mirror.Insert(ctx, rec); err != nil {
			imetrics.HistoryAppends.WithLabelValues("clickhouse", "error").Inc()
			h.metrics.RecordError("history_mirror")
			h.log.Warn("history mirror failed", applogger.Error(err))
		} else {
			imetrics.HistoryAppends.WithLabelValues("clickhouse", "ok").Inc()
			h.metrics.RecordMessageSent("clickhouse", rec.VAAPick)
		}
	}

	if h.pub != nil {
		if err := h.pub.Publish(ctx, rec); err != nil {
			imetrics.HistoryAppends.WithLabelValues("kafka", "error").Inc()
			h.metrics.RecordError("history_publish")
			h.log.Warn("history publish failed", applogger.Error(err))
		} else {
			imetrics.HistoryAppends.WithLabelValues("kafka", "ok").Inc()
			h.metrics.RecordMessageSent("kafka", rec.VAAPick)
		}
	}

	return rec, nil
}

// List returns every recorded rebalance in insertion order.
func (h *History) List(ctx context.Context) ([]models.RebalanceRecord, error) {
	return h.store.List(ctx)
}

// Health pings the optional mirror; nil when healthy or absent.
func (h *History) Health(ctx context.Context) error {
	if h.mirror == nil {
		return nil
	}
	return h.mirror.Health(ctx)
}

// Close releases every sink.
func (h *History) Close() {
	if err := h.store.Close(); err != nil {
		h.log.Warn("history store close", applogger.Error(err))
	}
	if h.mirror != nil {
		if err := h.mirror.Close(); err != nil {
			h.log.Warn("history mirror close", applogger.Error(err))
		}
	}
	if h.pub != nil {
		if err := h.pub.Close(); err != nil {
			h.log.Warn("history publisher close", applogger.Error(err))
		}
	}
}

// RecordFromPlan snapshots the decision fields of a plan. The drawdown
// percentage is formatted at record time and empty when unavailable.
func RecordFromPlan(plan models.RebalancePlan) models.RebalanceRecord {
	dd := ""
	if plan.Drawdown.Available {
		dd = fmt.Sprintf("%.2f%%", plan.Drawdown.DrawdownPct)
	}
	ts := plan.GeneratedAt
	if ts.IsZero() {
		ts = time.Now().UTC()
	}
	return models.RebalanceRecord{
		Timestamp:   ts,
		VAAPick:     plan.VAA.Pick.Symbol,
		LAARegime:   plan.LAA.Regime,
		LAADynamic:  plan.LAA.Dynamic,
		DMPick:      plan.DM.Pick.Symbol,
		DrawdownPct: dd,
	}
}
