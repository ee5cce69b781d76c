package mock

import (
	"context"

	"github.com/fwojciec/shopscrape"
)

var _ shopscrape.Store = (*Store)(nil)

// Store is a mock implementation of shopscrape.Store.
type Store struct {
	UpsertFn func(ctx context.Context, entries []*shopscrape.Entry) (*shopscrape.UpsertStats, error)
}

func (s *Store) Upsert(ctx context.Context, entries []*shopscrape.Entry) (*shopscrape.UpsertStats, error) {
	return s.UpsertFn(ctx, entries)
}

var _ shopscrape.EntryFinder = (*EntryFinder)(nil)

// EntryFinder is a mock implementation of shopscrape.EntryFinder.
type EntryFinder struct {
	FindEntriesFn func(ctx context.Context, filter shopscrape.EntryFilter) ([]*shopscrape.Entry, error)
}

func (f *EntryFinder) FindEntries(ctx context.Context, filter shopscrape.EntryFilter) ([]*shopscrape.Entry, error) {
	return f.FindEntriesFn(ctx, filter)
}

var _ shopscrape.RunWriter = (*RunWriter)(nil)

// RunWriter is a mock implementation of shopscrape.RunWriter.
type RunWriter struct {
	WriteRunFn func(ctx context.Context, source, query string, entries []*shopscrape.Entry) (string, error)
}

func (w *RunWriter) WriteRun(ctx context.Context, source, query string, entries []*shopscrape.Entry) (string, error) {
	return w.WriteRunFn(ctx, source, query, entries)
}
