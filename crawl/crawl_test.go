package crawl_test

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/fwojciec/shopscrape"
	"github.com/fwojciec/shopscrape/bloom"
	"github.com/fwojciec/shopscrape/crawl"
	"github.com/fwojciec/shopscrape/fs"
	"github.com/fwojciec/shopscrape/goquery"
	"github.com/fwojciec/shopscrape/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var scrapedAt = time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

func newScraper(site *fakeSite, store shopscrape.Store) *crawl.Scraper {
	profile := testProfile()
	return &crawl.Scraper{
		Page:        site.page(),
		Inspector:   goquery.NewInspector(profile),
		Collector:   goquery.NewCardCollector(profile),
		Extractor:   goquery.NewDetailExtractor(profile, nil),
		Seen:        bloom.NewSet(1000, 0.01),
		Store:       store,
		RetryDelays: []time.Duration{0, 0},
		Now:         func() time.Time { return scrapedAt },
	}
}

func searchConfig() shopscrape.SearchConfig {
	return shopscrape.SearchConfig{Query: "phone", MaxPages: 5, Profile: testProfile()}
}

func addProducts(site *fakeSite, ids ...int) {
	for _, id := range ids {
		site.pages[fmt.Sprintf("%s/p/%d", shopBase, id)] = productPage(fmt.Sprintf("Galaxy Phone %d", id), float64(100*id))
	}
}

// capture is a store that records the upserted batch.
func capture(entries *[]*shopscrape.Entry) *mock.Store {
	return &mock.Store{
		UpsertFn: func(_ context.Context, es []*shopscrape.Entry) (*shopscrape.UpsertStats, error) {
			*entries = es
			return &shopscrape.UpsertStats{New: len(es), Total: len(es)}, nil
		},
	}
}

func TestScraper_Scrape(t *testing.T) {
	t.Parallel()

	t.Run("collects unique products across listing pages", func(t *testing.T) {
		t.Parallel()

		site := newFakeSite()
		site.pages[searchURL(1)] = listing("/search?q=phone&page=2", "/p/1", "/p/2", "", "/p/3")
		site.pages[searchURL(2)] = listing("disabled", "/p/1?ref=promo", "/p/4", "/p/5")
		site.next[searchURL(1)] = searchURL(2)
		addProducts(site, 1, 2, 3, 4, 5)

		var stored []*shopscrape.Entry
		s := newScraper(site, capture(&stored))
		s.Runs = &mock.RunWriter{
			WriteRunFn: func(_ context.Context, source, query string, entries []*shopscrape.Entry) (string, error) {
				assert.Equal(t, "testshop", source)
				assert.Equal(t, "phone", query)
				return "out/testshop_phone.json", nil
			},
		}

		result, err := s.Scrape(context.Background(), searchConfig())

		require.NoError(t, err)
		assert.Equal(t, shopscrape.StateDone, result.State)
		assert.Equal(t, shopscrape.StopNextDisabled, result.StopReason)
		assert.Equal(t, 2, result.Pages)
		assert.Equal(t, 5, result.Visited)
		assert.Equal(t, 1, result.Duplicates)
		assert.Equal(t, 0, result.Failed)
		assert.Len(t, result.Entries, 5)
		assert.Equal(t, result.Entries, stored)
		assert.Equal(t, &shopscrape.UpsertStats{New: 5, Total: 5}, result.Stats)
		assert.Equal(t, "out/testshop_phone.json", result.OutputPath)
		assert.Zero(t, site.visits(shopBase+"/p/1?ref=promo"))

		byLink := make(map[string]*shopscrape.Entry)
		for _, e := range stored {
			byLink[e.Product.Link] = e
		}
		fourth := byLink[shopBase+"/p/4"]
		require.NotNil(t, fourth)
		assert.Equal(t, "Galaxy Phone 4", *fourth.Product.Title)
		assert.InDelta(t, 400.0, *fourth.Product.Price, 1e-9)
		assert.InDelta(t, 0.9, *fourth.Product.SellerScore, 1e-9)
		assert.Equal(t, shopscrape.Metadata{
			Source:      "testshop",
			ScrapedAt:   scrapedAt,
			SearchQuery: "phone",
			PageNumber:  2,
		}, fourth.Metadata)
		assert.Equal(t, 1, byLink[shopBase+"/p/1"].Metadata.PageNumber)
	})

	t.Run("returns no entries when no search URL loads", func(t *testing.T) {
		t.Parallel()

		site := newFakeSite()
		s := newScraper(site, &mock.Store{
			UpsertFn: func(context.Context, []*shopscrape.Entry) (*shopscrape.UpsertStats, error) {
				t.Error("store must not be called")
				return nil, nil
			},
		})

		result, err := s.Scrape(context.Background(), searchConfig())

		assert.Equal(t, shopscrape.ENOTFOUND, shopscrape.ErrorCode(err))
		require.NotNil(t, result)
		assert.Equal(t, shopscrape.StateFailed, result.State)
		assert.Equal(t, shopscrape.StopSearchFailed, result.StopReason)
		assert.Empty(t, result.Entries)
	})

	t.Run("counts rejected and failed products and keeps going", func(t *testing.T) {
		t.Parallel()

		site := newFakeSite()
		site.pages[searchURL(1)] = listing("", "/p/1", "/p/2", "/p/3")
		site.pages[shopBase+"/p/1"] = productPage("Silicone Phone Case", 50)
		addProducts(site, 2)
		site.failNav[shopBase+"/p/2"] = 1

		var retried []string
		var stored []*shopscrape.Entry
		s := newScraper(site, capture(&stored))
		s.Accept = func(r *shopscrape.ProductRecord) bool {
			return !strings.Contains(*r.Title, "Case")
		}
		s.Observer = &mock.Observer{RetriedFn: func(op string) { retried = append(retried, op) }}

		result, err := s.Scrape(context.Background(), searchConfig())

		require.NoError(t, err)
		assert.Equal(t, 3, result.Visited)
		assert.Equal(t, 1, result.Rejected)
		assert.Equal(t, 1, result.Failed)
		require.Len(t, stored, 1)
		assert.Equal(t, shopBase+"/p/2", stored[0].Product.Link)
		assert.Equal(t, []string{"detail", "detail", "detail"}, retried)
		assert.Equal(t, 3, site.visits(shopBase+"/p/3"))
	})

	t.Run("uses the listing name when the page has no title", func(t *testing.T) {
		t.Parallel()

		site := newFakeSite()
		site.pages[searchURL(1)] = listing("", "/p/1", "/p/2", "/p/3")
		for i := 1; i <= 3; i++ {
			site.pages[fmt.Sprintf("%s/p/%d", shopBase, i)] = `<html><body><p>Nothing here</p></body></html>`
		}

		var sources []string
		var stored []*shopscrape.Entry
		s := newScraper(site, capture(&stored))
		s.Observer = &mock.Observer{
			ProductExtractedFn: func(ext *shopscrape.Extraction) {
				sources = append(sources, ext.Sources[shopscrape.FieldTitle])
			},
		}

		_, err := s.Scrape(context.Background(), searchConfig())

		require.NoError(t, err)
		require.Len(t, stored, 3)
		assert.Equal(t, "Product 0", *stored[0].Product.Title)
		assert.Nil(t, stored[0].Product.DetailsText)
		assert.Equal(t, []string{"listing", "listing", "listing"}, sources)
	})

	t.Run("persists collected records when cancelled mid-session", func(t *testing.T) {
		t.Parallel()

		site := newFakeSite()
		site.pages[searchURL(1)] = listing("/search?q=phone&page=2", "/p/1", "/p/2", "/p/3")
		site.pages[searchURL(2)] = listing("disabled", "/p/4", "/p/5", "/p/6")
		site.next[searchURL(1)] = searchURL(2)
		addProducts(site, 1, 2, 3, 4, 5, 6)

		dir := t.TempDir()
		store := fs.NewStore(filepath.Join(dir, "products.json"))
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		extracted := 0
		s := newScraper(site, store)
		s.Runs = fs.NewRunWriter(filepath.Join(dir, "runs"))
		s.Observer = &mock.Observer{
			ProductExtractedFn: func(*shopscrape.Extraction) {
				if extracted++; extracted == 2 {
					cancel()
				}
			},
		}

		result, err := s.Scrape(ctx, searchConfig())

		require.NoError(t, err)
		assert.Equal(t, shopscrape.StopContextExpired, result.StopReason)
		assert.Len(t, result.Entries, 2)
		assert.Equal(t, &shopscrape.UpsertStats{New: 2, Total: 2}, result.Stats)
		assert.Zero(t, site.visits(shopBase+"/p/3"))

		stored := store.Load()
		assert.Len(t, stored, 2)
		assert.Contains(t, stored, shopBase+"/p/1")
		assert.Contains(t, stored, shopBase+"/p/2")

		require.NotEmpty(t, result.OutputPath)
		_, err = os.Stat(result.OutputPath)
		assert.NoError(t, err)
	})

	t.Run("logs a session summary with the seen set size", func(t *testing.T) {
		t.Parallel()

		site := newFakeSite()
		site.pages[searchURL(1)] = listing("", "/p/1", "/p/2", "/p/3")
		addProducts(site, 1, 2, 3)

		var buf bytes.Buffer
		var stored []*shopscrape.Entry
		s := newScraper(site, capture(&stored))
		s.Logger = slog.New(slog.NewTextHandler(&buf, nil))

		_, err := s.Scrape(context.Background(), searchConfig())

		require.NoError(t, err)
		logs := buf.String()
		assert.Contains(t, logs, `msg="session finished"`)
		assert.Contains(t, logs, "visited=3")
		assert.Contains(t, logs, "seen=3")
		assert.Regexp(t, `seen_estimated=\d+`, logs)
		assert.Contains(t, logs, "reason=next_absent")
	})

	t.Run("waits on the rate limiter per product host", func(t *testing.T) {
		t.Parallel()

		site := newFakeSite()
		site.pages[searchURL(1)] = listing("", "/p/1", "/p/2", "/p/3")
		addProducts(site, 1, 2, 3)

		var hosts []string
		var stored []*shopscrape.Entry
		s := newScraper(site, capture(&stored))
		s.RateLimiter = &mock.DomainLimiter{
			WaitFn: func(_ context.Context, domain string) error {
				hosts = append(hosts, domain)
				return nil
			},
		}

		_, err := s.Scrape(context.Background(), searchConfig())

		require.NoError(t, err)
		assert.Equal(t, []string{"shop.test", "shop.test", "shop.test"}, hosts)
	})

	t.Run("skips writing when nothing was kept", func(t *testing.T) {
		t.Parallel()

		site := newFakeSite()
		site.pages[searchURL(1)] = listing("", "/p/1", "/p/2", "/p/3")
		addProducts(site, 1, 2, 3)

		s := newScraper(site, &mock.Store{
			UpsertFn: func(context.Context, []*shopscrape.Entry) (*shopscrape.UpsertStats, error) {
				t.Error("store must not be called")
				return nil, nil
			},
		})
		s.Accept = shopscrape.KeywordFilter("laptop")

		result, err := s.Scrape(context.Background(), searchConfig())

		require.NoError(t, err)
		assert.Equal(t, 3, result.Rejected)
		assert.Nil(t, result.Stats)
	})

	t.Run("rejects an invalid search config", func(t *testing.T) {
		t.Parallel()

		cfg := searchConfig()
		cfg.Query = "  "

		_, err := newScraper(newFakeSite(), &mock.Store{}).Scrape(context.Background(), cfg)

		assert.Equal(t, shopscrape.EINVALID, shopscrape.ErrorCode(err))
	})

	t.Run("requires its collaborators", func(t *testing.T) {
		t.Parallel()

		_, err := (&crawl.Scraper{}).Scrape(context.Background(), searchConfig())

		assert.Equal(t, shopscrape.EINVALID, shopscrape.ErrorCode(err))
	})
}

func TestMultiStore_Upsert(t *testing.T) {
	t.Parallel()

	t.Run("writes to every store and reports the primary's stats", func(t *testing.T) {
		t.Parallel()

		var secondary []*shopscrape.Entry
		m := &crawl.MultiStore{Stores: []shopscrape.Store{
			&mock.Store{UpsertFn: func(context.Context, []*shopscrape.Entry) (*shopscrape.UpsertStats, error) {
				return &shopscrape.UpsertStats{New: 1, Total: 7}, nil
			}},
			capture(&secondary),
		}}
		entries := []*shopscrape.Entry{{Product: &shopscrape.ProductRecord{Link: shopBase + "/p/1"}}}

		stats, err := m.Upsert(context.Background(), entries)

		require.NoError(t, err)
		assert.Equal(t, &shopscrape.UpsertStats{New: 1, Total: 7}, stats)
		assert.Equal(t, entries, secondary)
	})

	t.Run("fails when any store fails", func(t *testing.T) {
		t.Parallel()

		var ignored []*shopscrape.Entry
		m := &crawl.MultiStore{Stores: []shopscrape.Store{
			capture(&ignored),
			&mock.Store{UpsertFn: func(context.Context, []*shopscrape.Entry) (*shopscrape.UpsertStats, error) {
				return nil, shopscrape.Errorf(shopscrape.EINTERNAL, "disk full")
			}},
		}}

		_, err := m.Upsert(context.Background(), nil)

		assert.Equal(t, shopscrape.EINTERNAL, shopscrape.ErrorCode(err))
	})

	t.Run("requires a store", func(t *testing.T) {
		t.Parallel()

		_, err := (&crawl.MultiStore{}).Upsert(context.Background(), nil)

		assert.Equal(t, shopscrape.EINVALID, shopscrape.ErrorCode(err))
	})
}
