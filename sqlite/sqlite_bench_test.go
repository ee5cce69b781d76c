package sqlite_test

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/fwojciec/shopscrape"
	"github.com/fwojciec/shopscrape/sqlite"
	"github.com/stretchr/testify/require"
)

// BenchmarkUpsert compares session-end upserts between WAL and rollback journal modes.
func BenchmarkUpsert(b *testing.B) {
	const productsPerRun = 100

	b.Run("rollback_journal", func(b *testing.B) {
		benchmarkUpsert(b, false, productsPerRun)
	})

	b.Run("wal_mode", func(b *testing.B) {
		benchmarkUpsert(b, true, productsPerRun)
	})
}

func benchmarkUpsert(b *testing.B, useWAL bool, n int) {
	b.Helper()

	dbPath := filepath.Join(b.TempDir(), "bench.db")
	db := sqlite.NewDB(dbPath)
	require.NoError(b, db.Open())

	ctx := context.Background()
	if !useWAL {
		_, err := db.ExecContext(ctx, "PRAGMA journal_mode = DELETE")
		require.NoError(b, err)
	}

	defer func() {
		db.Close()
		os.Remove(dbPath + "-wal")
		os.Remove(dbPath + "-shm")
	}()

	svc := sqlite.NewProductStore(db)
	entries := make([]*shopscrape.Entry, n)
	for i := range entries {
		title := fmt.Sprintf("Product %d with a reasonably long listing title", i)
		price := float64(i) * 9.99
		entries[i] = &shopscrape.Entry{
			Metadata: shopscrape.Metadata{Source: "bench", SearchQuery: "phone", PageNumber: 1 + i/40},
			Product: &shopscrape.ProductRecord{
				Title: &title,
				Price: &price,
				Link:  fmt.Sprintf("https://shop.test/p/%d", i),
			},
		}
	}

	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		if _, err := svc.Upsert(ctx, entries); err != nil {
			b.Fatal(err)
		}
	}
}
