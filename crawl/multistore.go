package crawl

import (
	"context"

	"github.com/fwojciec/shopscrape"
	"golang.org/x/sync/errgroup"
)

var _ shopscrape.Store = (*MultiStore)(nil)

// MultiStore upserts every batch into several stores concurrently.
// The first store is the primary; its stats are reported.
type MultiStore struct {
	Stores []shopscrape.Store
}

// Upsert writes entries to all stores and fails if any store fails.
func (m *MultiStore) Upsert(ctx context.Context, entries []*shopscrape.Entry) (*shopscrape.UpsertStats, error) {
	if len(m.Stores) == 0 {
		return nil, shopscrape.Errorf(shopscrape.EINVALID, "multistore: no stores configured")
	}

	stats := make([]*shopscrape.UpsertStats, len(m.Stores))
	g, gctx := errgroup.WithContext(ctx)
	for i, store := range m.Stores {
		g.Go(func() error {
			st, err := store.Upsert(gctx, entries)
			if err != nil {
				return err
			}
			stats[i] = st
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return stats[0], nil
}
