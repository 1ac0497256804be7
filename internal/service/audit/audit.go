// Package audit keeps the bounded, most-recent-first history of item mutations.
package audit

import (
	"encoding/csv"
	"fmt"
	"io"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/stocktake/internal/domain/models"
	"github.com/mamadbah2/stocktake/internal/repository/localstore"
)

// DefaultCapacity is how many entries are retained.
const DefaultCapacity = 100

const timeLayout = "2006-01-02 15:04:05"

// CSVHeader is the first row of the history export.
var CSVHeader = []string{"Time", "Item", "Action"}

// Log is the audit history. It persists independently of the inventory and
// never blocks the mutation it records.
type Log struct {
	mu      sync.RWMutex
	entries *ring[models.LogEntry]
	repo    localstore.Store
	logger  *zap.Logger
}

// NewLog loads any retained history from repo. Unreadable history is discarded
// rather than failing startup.
func NewLog(repo localstore.Store, capacity int, logger *zap.Logger) *Log {
	if logger == nil {
		logger = zap.NewNop()
	}
	if capacity <= 0 {
		capacity = DefaultCapacity
	}

	l := &Log{
		entries: newRing[models.LogEntry](capacity),
		repo:    repo,
		logger:  logger,
	}

	var stored []models.LogEntry
	if _, err := repo.Load(localstore.KeyHistory, &stored); err != nil {
		logger.Warn("history unreadable, starting empty", zap.Error(err))
		stored = nil
	}
	if len(stored) > capacity {
		stored = stored[:capacity]
	}
	for i := len(stored) - 1; i >= 0; i-- {
		l.entries.push(stored[i])
	}

	return l
}

// Append records entry as the newest one and evicts the oldest beyond capacity.
// The entry is retained in memory even when persisting fails; the failure is
// returned as a PersistenceWarning.
func (l *Log) Append(entry models.LogEntry) error {
	l.mu.Lock()
	l.entries.push(entry)
	snapshot := l.entries.newestFirst()
	l.mu.Unlock()

	if err := l.repo.Save(localstore.KeyHistory, snapshot); err != nil {
		l.logger.Warn("history not persisted", zap.Int64("item_id", entry.ID), zap.Error(err))
		return &models.PersistenceWarning{Record: localstore.KeyHistory, Err: err}
	}
	return nil
}

// List returns the retained history, most recent first.
func (l *Log) List() []models.LogEntry {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.entries.newestFirst()
}

// Len returns the number of retained entries.
func (l *Log) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.entries.len()
}

// Rows renders the history as (time, item name, action) rows in loc.
func (l *Log) Rows(loc *time.Location) [][]string {
	if loc == nil {
		loc = time.Local
	}
	entries := l.List()
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, []string{
			e.Timestamp.In(loc).Format(timeLayout),
			e.Name,
			string(e.Action),
		})
	}
	return rows
}

// WriteCSV writes the header and every history row to w.
func (l *Log) WriteCSV(w io.Writer, loc *time.Location) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(CSVHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	if err := cw.WriteAll(l.Rows(loc)); err != nil {
		return fmt.Errorf("write csv rows: %w", err)
	}
	return nil
}
