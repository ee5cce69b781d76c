package crawl_test

import (
	"testing"

	"github.com/fwojciec/shopscrape"
	"github.com/fwojciec/shopscrape/crawl"
	"github.com/stretchr/testify/assert"
)

func TestFormatStats(t *testing.T) {
	t.Parallel()

	t.Run("renders counts", func(t *testing.T) {
		t.Parallel()
		got := crawl.FormatStats(&shopscrape.UpsertStats{New: 3, Updated: 2, Total: 41})
		assert.Equal(t, "New: 3 | Updated: 2 | Total: 41", got)
	})

	t.Run("renders zeros for nil stats", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, "New: 0 | Updated: 0 | Total: 0", crawl.FormatStats(nil))
	})
}

func TestFormatResult(t *testing.T) {
	t.Parallel()

	t.Run("includes stop reason and non-zero counters", func(t *testing.T) {
		t.Parallel()

		r := &shopscrape.ScrapeResult{
			State:      shopscrape.StateDone,
			StopReason: shopscrape.StopNextDisabled,
			Pages:      2,
			Visited:    5,
			Duplicates: 1,
			Entries:    make([]*shopscrape.Entry, 4),
			Failed:     1,
		}

		assert.Equal(t, "done after 2 page(s) (next_disabled): 4 kept, 5 visited, 1 duplicate, 1 failed", crawl.FormatResult(r))
	})

	t.Run("omits zero counters", func(t *testing.T) {
		t.Parallel()

		r := &shopscrape.ScrapeResult{State: shopscrape.StateFailed, StopReason: shopscrape.StopSearchFailed}

		assert.Equal(t, "failed after 0 page(s) (search_failed): 0 kept, 0 visited", crawl.FormatResult(r))
	})
}
