package shopscrape

import "context"

// UpsertStats reports how an upsert changed a store.
type UpsertStats struct {
	New     int
	Updated int
	Total   int
}

// Store persists entries keyed by canonical product URL.
// A store holds at most one entry per canonical URL.
type Store interface {
	// Upsert inserts or replaces each entry, overwriting Metadata.ScrapedAt
	// with the write time. Implementations apply the whole batch atomically.
	Upsert(ctx context.Context, entries []*Entry) (*UpsertStats, error)
}

// EntryFilter represents a filter for FindEntries.
type EntryFilter struct {
	// Query matches entries whose search query equals it, when non-nil.
	Query *string

	Offset int
	Limit  int
}

// EntryFinder reads persisted entries.
type EntryFinder interface {
	// FindEntries returns entries ordered by canonical URL.
	FindEntries(ctx context.Context, filter EntryFilter) ([]*Entry, error)
}

// RunWriter writes the entries of one session to a per-run output.
type RunWriter interface {
	// WriteRun writes entries and returns where they were written.
	WriteRun(ctx context.Context, source, query string, entries []*Entry) (string, error)
}
