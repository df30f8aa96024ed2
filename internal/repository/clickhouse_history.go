package repository

import (
	"context"
	"database/sql"
	"fmt"

	"AllocDesk/internal/domain/models"
)

// ClickHouseHistory mirrors rebalance records into a ClickHouse table for
// long-term analysis. It is a best-effort secondary sink; the CSV log stays
// authoritative.
type ClickHouseHistory struct {
	db    *sql.DB
	table string
}

// NewClickHouseHistory creates the mirror over an existing connection pool.
func NewClickHouseHistory(db *sql.DB, table string) *ClickHouseHistory {
	return &ClickHouseHistory{db: db, table: table}
}

// Insert writes one record.
func (m *ClickHouseHistory) Insert(ctx context.Context, rec models.RebalanceRecord) error {
	query := fmt.Sprintf(
		"INSERT INTO %s (ts, vaa_pick, laa_regime, laa_dynamic, dm_pick, drawdown_pct) VALUES (?, ?, ?, ?, ?, ?)",
		m.table,
	)
	if _, err := m.db.ExecContext(ctx, query,
		rec.Timestamp.UTC(),
		rec.VAAPick,
		rec.LAARegime,
		rec.LAADynamic,
		rec.DMPick,
		rec.DrawdownPct,
	); err != nil {
		return fmt.Errorf("clickhouse insert: %w", err)
	}
	return nil
}

// Health pings the backing pool.
func (m *ClickHouseHistory) Health(ctx context.Context) error {
	return m.db.PingContext(ctx)
}

// Close satisfies HistoryMirror; the pool is owned by the client wrapper.
func (m *ClickHouseHistory) Close() error { return nil }
