package fs_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fwojciec/shopscrape"
	"github.com/fwojciec/shopscrape/fs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Story: JSON Product Store
// Entries are keyed by canonical URL and the file is rewritten atomically.

var (
	firstWrite  = time.Date(2026, 1, 10, 8, 0, 0, 0, time.UTC)
	secondWrite = time.Date(2026, 1, 11, 8, 0, 0, 0, time.UTC)
)

func ptr[T any](v T) *T { return &v }

func entry(link string, price float64) *shopscrape.Entry {
	return &shopscrape.Entry{
		Metadata: shopscrape.Metadata{Source: "noon", SearchQuery: "phone", PageNumber: 1},
		Product: &shopscrape.ProductRecord{
			Title: ptr("Samsung Galaxy A15"),
			Price: ptr(price),
			Link:  link,
		},
	}
}

func newStore(t *testing.T, now time.Time) *fs.Store {
	t.Helper()
	s := fs.NewStore(filepath.Join(t.TempDir(), "products.json"))
	s.Now = func() time.Time { return now }
	return s
}

func TestStore_UpsertReplacesByCanonicalURL(t *testing.T) {
	t.Parallel()

	// Given a store holding product A
	s := newStore(t, firstWrite)
	stats, err := s.Upsert(context.Background(), []*shopscrape.Entry{entry("https://noon.test/p/A", 100)})
	require.NoError(t, err)
	assert.Equal(t, &shopscrape.UpsertStats{New: 1, Updated: 0, Total: 1}, stats)

	// When A is upserted again with a changed price and a tracking query
	s.Now = func() time.Time { return secondWrite }
	stats, err = s.Upsert(context.Background(), []*shopscrape.Entry{entry("https://noon.test/p/A?o=123", 90)})

	// Then the store still holds one entry
	require.NoError(t, err)
	assert.Equal(t, &shopscrape.UpsertStats{New: 0, Updated: 1, Total: 1}, stats)

	// And it carries the newer price and write time
	stored := s.Load()
	require.Len(t, stored, 1)
	got := stored["https://noon.test/p/A"]
	require.NotNil(t, got)
	assert.InDelta(t, 90.0, *got.Product.Price, 1e-9)
	assert.Equal(t, "https://noon.test/p/A", got.Product.Link)
	assert.True(t, got.Metadata.ScrapedAt.Equal(secondWrite))
}

func TestStore_UpsertDoesNotModifyCallerEntries(t *testing.T) {
	t.Parallel()

	s := newStore(t, firstWrite)
	e := entry("https://noon.test/p/A?o=1", 100)

	_, err := s.Upsert(context.Background(), []*shopscrape.Entry{e})

	require.NoError(t, err)
	assert.True(t, e.Metadata.ScrapedAt.IsZero())
	assert.Equal(t, "https://noon.test/p/A?o=1", e.Product.Link)
}

func TestStore_UpsertCountsNewAndUpdated(t *testing.T) {
	t.Parallel()

	s := newStore(t, firstWrite)
	_, err := s.Upsert(context.Background(), []*shopscrape.Entry{
		entry("https://noon.test/p/A", 1),
		entry("https://noon.test/p/B", 2),
	})
	require.NoError(t, err)

	stats, err := s.Upsert(context.Background(), []*shopscrape.Entry{
		entry("https://noon.test/p/B", 3),
		entry("https://noon.test/p/C", 4),
	})

	require.NoError(t, err)
	assert.Equal(t, &shopscrape.UpsertStats{New: 1, Updated: 1, Total: 3}, stats)
}

func TestStore_UpsertRejectsEntriesWithoutLink(t *testing.T) {
	t.Parallel()

	s := newStore(t, firstWrite)

	_, err := s.Upsert(context.Background(), []*shopscrape.Entry{entry("", 1)})

	assert.Equal(t, shopscrape.EINVALID, shopscrape.ErrorCode(err))
	_, statErr := os.Stat(s.Path())
	assert.True(t, os.IsNotExist(statErr), "nothing should be written")
}

func TestStore_WritesAtomically(t *testing.T) {
	t.Parallel()

	// Given a store that has written once
	s := newStore(t, firstWrite)
	_, err := s.Upsert(context.Background(), []*shopscrape.Entry{entry("https://noon.test/p/A", 1)})
	require.NoError(t, err)

	// Then no temp file is left behind
	_, err = os.Stat(s.Path() + ".tmp")
	assert.True(t, os.IsNotExist(err))

	// And the file is a JSON object keyed by canonical URL
	data, err := os.ReadFile(s.Path())
	require.NoError(t, err)
	var raw map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Contains(t, raw, "https://noon.test/p/A")
}

func TestStore_LoadToleratesCorruption(t *testing.T) {
	t.Parallel()

	// Given a corrupt store file
	path := filepath.Join(t.TempDir(), "products.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"https://noon.test/p/A": {`), 0644))

	var logs bytes.Buffer
	s := fs.NewStore(path)
	s.Logger = slog.New(slog.NewTextHandler(&logs, nil))
	s.Now = func() time.Time { return firstWrite }

	// When it is loaded
	stored := s.Load()

	// Then it is treated as empty and a warning is logged
	assert.Empty(t, stored)
	assert.Contains(t, logs.String(), "level=WARN")

	// And the next upsert starts from scratch
	stats, err := s.Upsert(context.Background(), []*shopscrape.Entry{entry("https://noon.test/p/B", 2)})
	require.NoError(t, err)
	assert.Equal(t, &shopscrape.UpsertStats{New: 1, Total: 1}, stats)
}

func TestStore_LoadMissingFile(t *testing.T) {
	t.Parallel()

	s := fs.NewStore(filepath.Join(t.TempDir(), "missing.json"))

	assert.Empty(t, s.Load())
}

func TestStore_FindEntries(t *testing.T) {
	t.Parallel()

	s := newStore(t, firstWrite)
	laptop := entry("https://noon.test/p/C", 3)
	laptop.Metadata.SearchQuery = "laptop"
	_, err := s.Upsert(context.Background(), []*shopscrape.Entry{
		entry("https://noon.test/p/B", 2),
		laptop,
		entry("https://noon.test/p/A", 1),
	})
	require.NoError(t, err)

	t.Run("orders entries by canonical URL", func(t *testing.T) {
		t.Parallel()

		got, err := s.FindEntries(context.Background(), shopscrape.EntryFilter{})

		require.NoError(t, err)
		require.Len(t, got, 3)
		assert.Equal(t, "https://noon.test/p/A", got[0].Product.Link)
		assert.Equal(t, "https://noon.test/p/C", got[2].Product.Link)
	})

	t.Run("filters by search query", func(t *testing.T) {
		t.Parallel()

		got, err := s.FindEntries(context.Background(), shopscrape.EntryFilter{Query: ptr("laptop")})

		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "https://noon.test/p/C", got[0].Product.Link)
	})

	t.Run("applies offset and limit", func(t *testing.T) {
		t.Parallel()

		got, err := s.FindEntries(context.Background(), shopscrape.EntryFilter{Offset: 1, Limit: 1})

		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "https://noon.test/p/B", got[0].Product.Link)
	})

	t.Run("returns nothing past the end", func(t *testing.T) {
		t.Parallel()

		got, err := s.FindEntries(context.Background(), shopscrape.EntryFilter{Offset: 10})

		require.NoError(t, err)
		assert.Empty(t, got)
	})
}
