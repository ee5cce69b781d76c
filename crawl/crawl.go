// Package crawl runs bounded product scraping sessions. It coordinates
// listing pagination, detail page visits, extraction and storage over a
// single page owned by the session.
package crawl

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/fwojciec/shopscrape"
	"github.com/google/uuid"
)

var _ shopscrape.Scraper = (*Scraper)(nil)

// Scraper runs one search session at a time over Page.
type Scraper struct {
	Page        shopscrape.Page
	Inspector   shopscrape.ListingInspector
	Collector   shopscrape.CardCollector
	Extractor   shopscrape.DetailExtractor
	Seen        shopscrape.URLSet
	Store       shopscrape.Store
	Runs        shopscrape.RunWriter
	RateLimiter shopscrape.DomainLimiter

	// Accept filters records before they are kept. Nil keeps everything.
	Accept shopscrape.AcceptFunc

	Delays      Delays
	Timeouts    Timeouts
	RetryDelays []time.Duration
	Logger      *slog.Logger
	Observer    shopscrape.Observer

	// Now returns the current time. Nil means time.Now.
	Now func() time.Time
}

// Scrape runs a session for cfg. Records are accumulated in memory and
// written once at session end, also when ctx is cancelled while
// paginating. When no search URL variant loads, the
// result has State StateFailed, no entries and an ENOTFOUND error.
func (s *Scraper) Scrape(ctx context.Context, cfg shopscrape.SearchConfig) (*shopscrape.ScrapeResult, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := s.validate(); err != nil {
		return nil, err
	}

	logger := s.logger().With("run", uuid.NewString(), "source", cfg.Profile.Name, "query", cfg.Query)
	p := &Paginator{
		Page:      s.Page,
		Inspector: s.Inspector,
		Collector: s.Collector,
		Profile:   cfg.Profile,
		MaxPages:  cfg.MaxPages,
		Delays:    s.Delays,
		Timeouts:  s.Timeouts,
		Logger:    logger,
		Observer:  s.observer(),
	}

	result := &shopscrape.ScrapeResult{}
	if err := p.Open(ctx, cfg.SearchURLs()); err != nil {
		result.State, result.StopReason = p.State(), p.StopReason()
		return result, err
	}

	for p.Next(ctx) {
		result.Pages = p.PageNumber()
		candidates := s.Collector.Collect(p.HTML(), p.URL())
		logger.Info("candidates found", "page", p.PageNumber(), "count", len(candidates))

		for _, c := range candidates {
			if ctx.Err() != nil {
				break
			}
			link := shopscrape.CanonicalURL(c.URL)
			if link == "" {
				continue
			}
			if !s.Seen.Add(link) {
				result.Duplicates++
				s.observer().DuplicateSkipped()
				logger.Debug("duplicate skipped", "url", link)
				continue
			}

			entry, err := s.visit(ctx, logger, c, cfg.Query, p.PageNumber(), cfg.Profile.Name)
			result.Visited++
			if err != nil {
				result.Failed++
				logger.Warn("product skipped", "url", link, "error", err)
				continue
			}
			if entry == nil {
				result.Rejected++
				continue
			}
			result.Entries = append(result.Entries, entry)
		}
	}

	result.State, result.StopReason = p.State(), p.StopReason()
	s.logSummary(logger, result)
	if err := p.Err(); err != nil {
		return result, err
	}

	if len(result.Entries) == 0 {
		logger.Info("no records to write")
		return result, nil
	}

	// A cancelled session still keeps what it collected.
	persist := context.WithoutCancel(ctx)
	stats, err := s.Store.Upsert(persist, result.Entries)
	if err != nil {
		return result, fmt.Errorf("upsert: %w", err)
	}
	result.Stats = stats

	if s.Runs != nil {
		path, err := s.Runs.WriteRun(persist, cfg.Profile.Name, cfg.Query, result.Entries)
		if err != nil {
			return result, fmt.Errorf("write run: %w", err)
		}
		result.OutputPath = path
	}
	return result, nil
}

// visit loads a detail page and extracts its record. It returns a nil
// entry without error when the accept filter rejects the record.
func (s *Scraper) visit(ctx context.Context, logger *slog.Logger, c shopscrape.Candidate, query string, page int, source string) (*shopscrape.Entry, error) {
	if err := s.Delays.Product.Sleep(ctx); err != nil {
		return nil, err
	}
	if s.RateLimiter != nil {
		if u, err := url.Parse(c.URL); err == nil && u.Host != "" {
			if err := s.RateLimiter.Wait(ctx, u.Host); err != nil {
				return nil, err
			}
		}
	}

	html, err := Retry(ctx, len(s.RetryDelays), Fixed(s.RetryDelays...),
		func(ctx context.Context) (string, error) { return s.load(ctx, c.URL) },
		func(retry int, err error) {
			s.observer().Retried("detail")
			logger.Warn("detail load failed, retrying", "url", c.URL, "retry", retry, "error", err)
		})
	if err != nil {
		return nil, err
	}

	ext, err := s.Extractor.Extract(html, c.URL)
	if err != nil {
		return nil, fmt.Errorf("extract: %w", err)
	}

	if ext.Record == nil {
		ext.Record = &shopscrape.ProductRecord{}
	}
	if ext.Sources == nil {
		ext.Sources = make(map[shopscrape.Field]string)
	}

	rec := shopscrape.NormalizeRecord(ext.Record)
	if rec.Title == nil {
		// The listing card name is a usable title when the page has none.
		if rec.Title = shopscrape.NormalizeText(c.Name); rec.Title != nil {
			ext.Sources[shopscrape.FieldTitle] = "listing"
		}
	}
	rec.Link = shopscrape.CanonicalURL(c.URL)
	ext.Record = rec
	s.observer().ProductExtracted(ext)

	if issues := rec.Diagnose(); len(issues) > 0 {
		logger.Warn("record incomplete", "url", rec.Link, "issues", issues)
	}

	if s.Accept != nil && !s.Accept(rec) {
		logger.Debug("record rejected by filter", "url", rec.Link)
		return nil, nil
	}

	return &shopscrape.Entry{
		Metadata: shopscrape.Metadata{
			Source:      source,
			ScrapedAt:   s.now(),
			SearchQuery: query,
			PageNumber:  page,
		},
		Product: rec,
	}, nil
}

// load navigates to a detail page and returns its HTML. Error statuses
// are failures.
func (s *Scraper) load(ctx context.Context, rawURL string) (string, error) {
	var html string
	err := withTimeout(ctx, s.Timeouts.Detail, func(ctx context.Context) error {
		resp, err := s.Page.Navigate(ctx, rawURL)
		if err != nil {
			return err
		}
		if resp.Status >= 400 {
			return fmt.Errorf("HTTP %d", resp.Status)
		}
		if err := s.Page.WaitIdle(ctx); err != nil {
			s.logger().Debug("detail page did not settle", "url", rawURL, "error", err)
		}
		html, err = s.Page.HTML(ctx)
		return err
	})
	return html, err
}

// estimator is implemented by seen sets backed by a probabilistic filter.
type estimator interface {
	EstimatedCount() uint
}

func (s *Scraper) logSummary(logger *slog.Logger, result *shopscrape.ScrapeResult) {
	attrs := []any{
		"pages", result.Pages,
		"visited", result.Visited,
		"duplicates", result.Duplicates,
		"rejected", result.Rejected,
		"failed", result.Failed,
		"seen", s.Seen.Len(),
	}
	if e, ok := s.Seen.(estimator); ok {
		attrs = append(attrs, "seen_estimated", e.EstimatedCount())
	}
	attrs = append(attrs, "reason", string(result.StopReason))
	logger.Info("session finished", attrs...)
}

func (s *Scraper) validate() error {
	switch {
	case s.Page == nil:
		return shopscrape.Errorf(shopscrape.EINVALID, "scraper: page required")
	case s.Inspector == nil:
		return shopscrape.Errorf(shopscrape.EINVALID, "scraper: listing inspector required")
	case s.Collector == nil:
		return shopscrape.Errorf(shopscrape.EINVALID, "scraper: card collector required")
	case s.Extractor == nil:
		return shopscrape.Errorf(shopscrape.EINVALID, "scraper: detail extractor required")
	case s.Seen == nil:
		return shopscrape.Errorf(shopscrape.EINVALID, "scraper: seen set required")
	case s.Store == nil:
		return shopscrape.Errorf(shopscrape.EINVALID, "scraper: store required")
	}
	return nil
}

func (s *Scraper) now() time.Time {
	if s.Now == nil {
		return time.Now()
	}
	return s.Now()
}

func (s *Scraper) logger() *slog.Logger {
	if s.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return s.Logger
}

func (s *Scraper) observer() shopscrape.Observer {
	if s.Observer == nil {
		return shopscrape.NopObserver{}
	}
	return s.Observer
}
