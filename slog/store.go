package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/shopscrape"
)

// Ensure LoggingStore implements shopscrape.Store.
var _ shopscrape.Store = (*LoggingStore)(nil)

// LoggingStore wraps a Store with logging.
type LoggingStore struct {
	next   shopscrape.Store
	name   string
	logger *slog.Logger
}

// NewLoggingStore creates a new LoggingStore. name identifies the store in
// log lines (e.g., "json", "sqlite").
func NewLoggingStore(next shopscrape.Store, name string, logger *slog.Logger) *LoggingStore {
	return &LoggingStore{next: next, name: name, logger: logger}
}

// Upsert delegates to the wrapped store and logs the resulting counts.
func (s *LoggingStore) Upsert(ctx context.Context, entries []*shopscrape.Entry) (stats *shopscrape.UpsertStats, err error) {
	defer func(begin time.Time) {
		attrs := []any{"store", s.name, "entries", len(entries), "duration", time.Since(begin)}
		if stats != nil {
			attrs = append(attrs, "new", stats.New, "updated", stats.Updated, "total", stats.Total)
		}
		if err != nil {
			s.logger.Error("upsert", append(attrs, "err", err)...)
			return
		}
		s.logger.Info("upsert", attrs...)
	}(time.Now())
	return s.next.Upsert(ctx, entries)
}
