package fs

import (
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"slices"
	"sync"
	"time"

	"github.com/fwojciec/shopscrape"
)

// Ensure Store implements the storage interfaces at compile time.
var (
	_ shopscrape.Store       = (*Store)(nil)
	_ shopscrape.EntryFinder = (*Store)(nil)
)

// Store keeps entries in a single JSON object keyed by canonical product
// URL. Every upsert rewrites the whole file.
type Store struct {
	path string
	mu   sync.Mutex

	// Logger receives load warnings. Nil discards them.
	Logger *slog.Logger

	// Now returns the write time. Nil means time.Now.
	Now func() time.Time
}

// NewStore returns a store backed by the file at path. The file is created
// on the first upsert.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Path returns the backing file path.
func (s *Store) Path() string { return s.path }

// Load reads the stored mapping. A missing or unreadable file yields an
// empty mapping; corruption is logged rather than returned.
func (s *Store) Load() map[string]*shopscrape.Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

func (s *Store) load() map[string]*shopscrape.Entry {
	entries := make(map[string]*shopscrape.Entry)
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return entries
	} else if err != nil {
		s.logger().Warn("store unreadable, starting empty", "path", s.path, "error", err)
		return entries
	}

	if err := json.Unmarshal(data, &entries); err != nil {
		s.logger().Warn("store corrupt, starting empty", "path", s.path, "error", err)
		return make(map[string]*shopscrape.Entry)
	}
	for k, e := range entries {
		if e == nil || e.Product == nil {
			s.logger().Warn("dropping malformed entry", "path", s.path, "key", k)
			delete(entries, k)
		}
	}
	return entries
}

// Upsert loads the file, replaces or inserts each entry under its canonical
// URL with ScrapedAt set to now, and rewrites the file atomically. Entries
// are copied; the caller's values are not modified.
func (s *Store) Upsert(ctx context.Context, entries []*shopscrape.Entry) (*shopscrape.UpsertStats, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	for _, e := range entries {
		if err := e.Validate(); err != nil {
			return nil, err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	stored := s.load()
	now := s.now()
	stats := &shopscrape.UpsertStats{}
	for _, e := range entries {
		key := shopscrape.CanonicalURL(e.Product.Link)
		if _, ok := stored[key]; ok {
			stats.Updated++
		} else {
			stats.New++
		}

		product := *e.Product
		product.Link = key
		meta := e.Metadata
		meta.ScrapedAt = now
		stored[key] = &shopscrape.Entry{Metadata: meta, Product: &product}
	}
	stats.Total = len(stored)

	if err := writeJSON(s.path, stored); err != nil {
		return nil, err
	}
	return stats, nil
}

// FindEntries returns stored entries ordered by canonical URL.
func (s *Store) FindEntries(ctx context.Context, filter shopscrape.EntryFilter) ([]*shopscrape.Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	stored := s.Load()

	keys := make([]string, 0, len(stored))
	for k, e := range stored {
		if filter.Query != nil && e.Metadata.SearchQuery != *filter.Query {
			continue
		}
		keys = append(keys, k)
	}
	slices.Sort(keys)

	if filter.Offset > 0 {
		keys = keys[min(filter.Offset, len(keys)):]
	}
	if filter.Limit > 0 && filter.Limit < len(keys) {
		keys = keys[:filter.Limit]
	}

	out := make([]*shopscrape.Entry, 0, len(keys))
	for _, k := range keys {
		out = append(out, stored[k])
	}
	return out, nil
}

func (s *Store) now() time.Time {
	if s.Now == nil {
		return time.Now().UTC()
	}
	return s.Now()
}

func (s *Store) logger() *slog.Logger {
	if s.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return s.Logger
}
