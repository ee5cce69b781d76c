package shopscrape

import "context"

// State is a pagination state.
type State int

const (
	StateInit State = iota
	StateSearchLoaded
	StateScrapingPage
	StatePaginating
	StateDone
	StateFailed
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateInit:
		return "init"
	case StateSearchLoaded:
		return "search_loaded"
	case StateScrapingPage:
		return "scraping_page"
	case StatePaginating:
		return "paginating"
	case StateDone:
		return "done"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// StopReason explains why pagination ended.
type StopReason string

const (
	StopNone           StopReason = ""
	StopPageCap        StopReason = "page_cap"
	StopNextAbsent     StopReason = "next_absent"
	StopNextDisabled   StopReason = "next_disabled"
	StopClickFailed    StopReason = "click_failed"
	StopURLUnchanged   StopReason = "url_unchanged"
	StopFewLinks       StopReason = "few_links"
	StopNotFound       StopReason = "not_found"
	StopNoProducts     StopReason = "no_products"
	StopListingLost    StopReason = "listing_lost"
	StopSearchFailed   StopReason = "search_failed"
	StopContextExpired StopReason = "context_expired"
)

// ScrapeResult summarizes one session.
type ScrapeResult struct {
	State      State
	StopReason StopReason
	Pages      int
	Visited    int
	Duplicates int
	Rejected   int
	Failed     int
	Entries    []*Entry

	// Stats is nil when no store was configured or nothing was written.
	Stats *UpsertStats

	// OutputPath is the per-run output file, if one was written.
	OutputPath string
}

// Scraper runs a bounded single-query scraping session.
type Scraper interface {
	// Scrape runs the session. The only error for a well-formed config is
	// ENOTFOUND when no search URL variant loads; the result is still
	// returned with State set to StateFailed.
	Scrape(ctx context.Context, cfg SearchConfig) (*ScrapeResult, error)
}

// Observer receives session events for metrics.
type Observer interface {
	PageScraped(page int)
	ProductExtracted(ext *Extraction)
	DuplicateSkipped()
	Retried(op string)
	Stopped(reason StopReason)
}

// NopObserver ignores all events.
type NopObserver struct{}

func (NopObserver) PageScraped(int) {}
func (NopObserver) ProductExtracted(*Extraction) {}
func (NopObserver) DuplicateSkipped() {}
func (NopObserver) Retried(string) {}
func (NopObserver) Stopped(StopReason) {}
