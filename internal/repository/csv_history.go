package repository

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"AllocDesk/internal/domain/models"
)

var csvHeader = []string{"timestamp", "vaa_pick", "laa_regime", "laa_dynamic", "dm_pick", "drawdown_pct"}

// CSVHistory is the authoritative append-only rebalance log. Records are
// appended with the header written once; List returns them in file order.
type CSVHistory struct {
	path string
	mu   sync.Mutex
}

// NewCSVHistory creates the store, creating parent directories as needed.
func NewCSVHistory(path string) (*CSVHistory, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("history dir: %w", err)
		}
	}
	return &CSVHistory{path: path}, nil
}

// Append writes one record to the end of the log.
func (s *CSVHistory) Append(_ context.Context, rec models.RebalanceRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	info, err := os.Stat(s.path)
	fresh := err != nil || info.Size() == 0

	f, err := os.OpenFile(s.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("history open: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if fresh {
		if err := w.Write(csvHeader); err != nil {
			return fmt.Errorf("history header: %w", err)
		}
	}
	if err := w.Write([]string{
		rec.Timestamp.UTC().Format(time.RFC3339),
		rec.VAAPick,
		rec.LAARegime,
		rec.LAADynamic,
		rec.DMPick,
		rec.DrawdownPct,
	}); err != nil {
		return fmt.Errorf("history write: %w", err)
	}
	w.Flush()
	return w.Error()
}

// List reads all records in insertion order. A missing file is an empty log.
func (s *CSVHistory) List(_ context.Context) ([]models.RebalanceRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.Open(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("history open: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	var out []models.RebalanceRecord
	header := true
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("history read: %w", err)
		}
		if header {
			header = false
			continue
		}
		if len(row) < 6 {
			continue
		}
		ts, err := time.Parse(time.RFC3339, row[0])
		if err != nil {
			continue
		}
		out = append(out, models.RebalanceRecord{
			Timestamp:   ts,
			VAAPick:     row[1],
			LAARegime:   row[2],
			LAADynamic:  row[3],
			DMPick:      row[4],
			DrawdownPct: row[5],
		})
	}
	return out, nil
}

// Close satisfies HistoryStore; the file is opened per call.
func (s *CSVHistory) Close() error { return nil }
