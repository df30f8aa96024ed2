package repository

import (
	"context"

	"AllocDesk/internal/domain/models"
)

// PriceProvider serves daily adjusted-close history and FX spot rates.
type PriceProvider interface {
	History(ctx context.Context, symbol string, rangeDays int) (models.PriceSeries, error)
	Spot(ctx context.Context, pair string) (float64, error)
}

// MacroProvider serves a monthly macroeconomic series.
type MacroProvider interface {
	Series(ctx context.Context, id string) (models.MacroIndicator, error)
}

// HistoryStore is the append-only rebalance log. List returns records in
// insertion order.
type HistoryStore interface {
	Append(ctx context.Context, rec models.RebalanceRecord) error
	List(ctx context.Context) ([]models.RebalanceRecord, error)
	Close() error
}

// HistoryMirror is an optional secondary sink for rebalance records.
type HistoryMirror interface {
	Insert(ctx context.Context, rec models.RebalanceRecord) error
	Health(ctx context.Context) error
	Close() error
}

// DecisionPublisher pushes rebalance records to an event bus.
type DecisionPublisher interface {
	Publish(ctx context.Context, rec models.RebalanceRecord) error
	Close() error
}

// Metrics records operational counters and gauges.
type Metrics interface {
	RecordMessageSent(sink, symbol string)
	RecordError(kind string)
	RecordLastPrice(symbol string, price float64)
	RecordLatency(op string, seconds float64)
}
