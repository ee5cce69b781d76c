package mock

import (
	"context"

	"github.com/fwojciec/shopscrape"
)

var _ shopscrape.Scraper = (*Scraper)(nil)

// Scraper is a mock implementation of shopscrape.Scraper.
type Scraper struct {
	ScrapeFn func(ctx context.Context, cfg shopscrape.SearchConfig) (*shopscrape.ScrapeResult, error)
}

func (s *Scraper) Scrape(ctx context.Context, cfg shopscrape.SearchConfig) (*shopscrape.ScrapeResult, error) {
	return s.ScrapeFn(ctx, cfg)
}

var _ shopscrape.Observer = (*Observer)(nil)

// Observer is a mock implementation of shopscrape.Observer.
// Nil functions are ignored so tests only set the events they check.
type Observer struct {
	PageScrapedFn      func(page int)
	ProductExtractedFn func(ext *shopscrape.Extraction)
	DuplicateSkippedFn func()
	RetriedFn          func(op string)
	StoppedFn          func(reason shopscrape.StopReason)
}

func (o *Observer) PageScraped(page int) {
	if o.PageScrapedFn != nil {
		o.PageScrapedFn(page)
	}
}

func (o *Observer) ProductExtracted(ext *shopscrape.Extraction) {
	if o.ProductExtractedFn != nil {
		o.ProductExtractedFn(ext)
	}
}

func (o *Observer) DuplicateSkipped() {
	if o.DuplicateSkippedFn != nil {
		o.DuplicateSkippedFn()
	}
}

func (o *Observer) Retried(op string) {
	if o.RetriedFn != nil {
		o.RetriedFn(op)
	}
}

func (o *Observer) Stopped(reason shopscrape.StopReason) {
	if o.StoppedFn != nil {
		o.StoppedFn(reason)
	}
}
