package crawl

import (
	"context"
	"log/slog"
	"strings"

	"github.com/fwojciec/shopscrape"
)

// productRetries is the number of product-visibility retries per listing.
const productRetries = 2

// scrollNudge is the scroll distance used to trigger lazy-loaded cards.
const scrollNudge = 1200

// Paginator drives a search listing through its states. It is used like a
// scanner:
//
//	if err := p.Open(ctx, urls); err != nil { ... }
//	for p.Next(ctx) {
//		process(p.HTML(), p.URL(), p.PageNumber())
//	}
//	// p.State(), p.StopReason(), p.Err()
//
// The page may be navigated elsewhere between calls to Next; the listing is
// restored before the next-page control is used.
type Paginator struct {
	Page      shopscrape.Page
	Inspector shopscrape.ListingInspector
	Collector shopscrape.CardCollector
	Profile   *shopscrape.SiteProfile
	MaxPages  int
	Delays    Delays
	Timeouts  Timeouts
	Logger    *slog.Logger
	Observer  shopscrape.Observer

	state  shopscrape.State
	reason shopscrape.StopReason
	err    error
	page   int
	url    string
	html   string
}

// Open loads the first search URL variant that is not a not-found page and
// dismisses popups. When every variant fails the paginator is Failed and
// an ENOTFOUND error is returned.
func (p *Paginator) Open(ctx context.Context, urls []string) error {
	p.state = shopscrape.StateInit
	for _, u := range urls {
		resp, err := p.navigate(ctx, u)
		if err != nil {
			p.logger().Warn("search url failed", "url", u, "error", err)
			continue
		}
		html, err := p.snapshot(ctx)
		if err != nil {
			p.logger().Warn("search snapshot failed", "url", u, "error", err)
			continue
		}
		final := resp.URL
		if final == "" {
			final = u
		}
		if p.Inspector.NotFound(resp.Status, final, html) {
			p.logger().Warn("search url not found", "url", final, "status", resp.Status)
			continue
		}

		p.url, p.html = final, html
		p.dismissPopups(ctx)
		p.state = shopscrape.StateSearchLoaded
		p.logger().Info("search loaded", "url", final)
		return nil
	}
	return p.fail(shopscrape.StopSearchFailed, shopscrape.Errorf(shopscrape.ENOTFOUND, "no search URL variant loaded"))
}

// Next advances to the next listing page that shows products. It returns
// false once pagination is Done or Failed.
func (p *Paginator) Next(ctx context.Context) bool {
	switch p.state {
	case shopscrape.StateSearchLoaded:
		if !p.awaitProducts(ctx) {
			p.fail(shopscrape.StopNoProducts, shopscrape.Errorf(shopscrape.ENOTFOUND, "no products visible on %s", p.url))
			return false
		}
		p.page = 1
		p.enter()
		return true

	case shopscrape.StateScrapingPage:
		p.state = shopscrape.StatePaginating
		if !p.advance(ctx) {
			return false
		}
		p.enter()
		return true
	}
	return false
}

// HTML returns the snapshot of the current listing page.
func (p *Paginator) HTML() string { return p.html }

// URL returns the URL of the current listing page.
func (p *Paginator) URL() string { return p.url }

// PageNumber returns the 1-based number of the current listing page.
func (p *Paginator) PageNumber() int { return p.page }

// State returns the current state.
func (p *Paginator) State() shopscrape.State { return p.state }

// StopReason returns why pagination ended, or StopNone.
func (p *Paginator) StopReason() shopscrape.StopReason { return p.reason }

// Err returns the bootstrap failure, if any. Ending pagination on a later
// page is not an error.
func (p *Paginator) Err() error { return p.err }

func (p *Paginator) enter() {
	p.state = shopscrape.StateScrapingPage
	p.observer().PageScraped(p.page)
	p.logger().Info("scraping page", "page", p.page, "url", p.url)
}

// advance moves from the current listing to the next one. It returns false
// after recording why pagination is done.
func (p *Paginator) advance(ctx context.Context) bool {
	if ctx.Err() != nil {
		return p.done(shopscrape.StopContextExpired)
	}
	if p.MaxPages > 0 && p.page >= p.MaxPages {
		return p.done(shopscrape.StopPageCap)
	}
	if err := p.restoreListing(ctx); err != nil {
		p.logger().Warn("listing restore failed", "url", p.url, "error", err)
		return p.done(shopscrape.StopListingLost)
	}

	next := p.Inspector.NextPage(p.html)
	switch next.State {
	case shopscrape.NextAbsent:
		return p.done(shopscrape.StopNextAbsent)
	case shopscrape.NextDisabled:
		return p.done(shopscrape.StopNextDisabled)
	}

	before := p.url
	err := withTimeout(ctx, p.Timeouts.Action, func(ctx context.Context) error {
		return p.Page.Click(ctx, next.Selector)
	})
	if err != nil {
		p.logger().Warn("next click failed", "selector", next.Selector, "error", err)
		return p.done(shopscrape.StopClickFailed)
	}

	if err := withTimeout(ctx, p.Timeouts.Idle, p.Page.WaitIdle); err != nil {
		p.logger().Debug("network did not settle", "error", err)
	}

	loc, err := p.location(ctx)
	if err != nil || loc == before {
		return p.done(shopscrape.StopURLUnchanged)
	}

	// The grid usually renders after the URL changes.
	if err := p.waitProducts(ctx); err != nil {
		p.logger().Debug("grid not visible after click", "url", loc, "error", err)
	}

	html, n := p.countLinks(ctx, loc)
	if n < p.Profile.LinkThreshold() {
		p.logger().Debug("few product links, rechecking", "url", loc, "links", n)
		if err := sleep(ctx, p.Delays.Recheck); err != nil {
			return p.done(shopscrape.StopContextExpired)
		}
		html, n = p.countLinks(ctx, loc)
		if n < p.Profile.LinkThreshold() {
			return p.done(shopscrape.StopFewLinks)
		}
	}

	if p.Inspector.NotFound(0, loc, html) {
		return p.done(shopscrape.StopNotFound)
	}

	p.url, p.html = loc, html
	p.page++
	if !p.awaitProducts(ctx) {
		return p.done(shopscrape.StopNoProducts)
	}
	return true
}

// awaitProducts waits for a product signal, retrying with a randomized
// backoff and a scroll nudge. On success the snapshot is refreshed.
func (p *Paginator) awaitProducts(ctx context.Context) bool {
	_, err := Retry(ctx, productRetries, p.Delays.Retry.Backoff(),
		func(ctx context.Context) (struct{}, error) {
			return struct{}{}, p.waitProducts(ctx)
		},
		func(retry int, err error) {
			p.observer().Retried("product_wait")
			p.logger().Warn("products not visible, retrying", "url", p.url, "retry", retry, "error", err)
			if err := withTimeout(ctx, p.Timeouts.Action, func(ctx context.Context) error {
				return p.Page.Scroll(ctx, scrollNudge)
			}); err != nil {
				p.logger().Debug("scroll nudge failed", "error", err)
			}
		})
	if err != nil {
		return false
	}

	// Lazy-loaded grids fill in after a scroll.
	_ = withTimeout(ctx, p.Timeouts.Action, func(ctx context.Context) error {
		return p.Page.Scroll(ctx, scrollNudge)
	})
	if html, err := p.snapshot(ctx); err == nil {
		p.html = html
	}
	return true
}

func (p *Paginator) waitProducts(ctx context.Context) error {
	selector := strings.Join(p.Profile.ProductSignals, ", ")
	return withTimeout(ctx, p.Timeouts.ProductWait, func(ctx context.Context) error {
		return p.Page.WaitVisible(ctx, selector)
	})
}

func (p *Paginator) countLinks(ctx context.Context, loc string) (string, int) {
	html, err := p.snapshot(ctx)
	if err != nil {
		return "", 0
	}
	return html, p.Collector.CountLinks(html, loc)
}

// restoreListing navigates back to the current listing when the page was
// used elsewhere since the snapshot was taken.
func (p *Paginator) restoreListing(ctx context.Context) error {
	loc, err := p.location(ctx)
	if err == nil && loc == p.url {
		return nil
	}
	if _, err := p.navigate(ctx, p.url); err != nil {
		return err
	}
	if err := p.waitProducts(ctx); err != nil {
		p.logger().Debug("restored listing not visible", "url", p.url, "error", err)
	}
	html, err := p.snapshot(ctx)
	if err != nil {
		return err
	}
	p.html = html
	return nil
}

// dismissPopups clicks each visible popup close control. Failures are ignored.
func (p *Paginator) dismissPopups(ctx context.Context) {
	for _, selector := range p.Profile.PopupCloseSelectors {
		err := withTimeout(ctx, p.Timeouts.Action, func(ctx context.Context) error {
			if err := p.Page.WaitVisible(ctx, selector); err != nil {
				return err
			}
			return p.Page.Click(ctx, selector)
		})
		if err != nil {
			p.logger().Debug("no popup to dismiss", "selector", selector)
			continue
		}
		p.logger().Debug("popup dismissed", "selector", selector)
	}
}

func (p *Paginator) navigate(ctx context.Context, url string) (*shopscrape.Response, error) {
	var resp *shopscrape.Response
	err := withTimeout(ctx, p.Timeouts.Navigate, func(ctx context.Context) error {
		var err error
		resp, err = p.Page.Navigate(ctx, url)
		return err
	})
	return resp, err
}

func (p *Paginator) snapshot(ctx context.Context) (string, error) {
	var html string
	err := withTimeout(ctx, p.Timeouts.Action, func(ctx context.Context) error {
		var err error
		html, err = p.Page.HTML(ctx)
		return err
	})
	return html, err
}

func (p *Paginator) location(ctx context.Context) (string, error) {
	var loc string
	err := withTimeout(ctx, p.Timeouts.Action, func(ctx context.Context) error {
		var err error
		loc, err = p.Page.Location(ctx)
		return err
	})
	return loc, err
}

func (p *Paginator) done(reason shopscrape.StopReason) bool {
	p.state = shopscrape.StateDone
	p.reason = reason
	p.observer().Stopped(reason)
	p.logger().Info("pagination done", "page", p.page, "reason", string(reason))
	return false
}

func (p *Paginator) fail(reason shopscrape.StopReason, err error) error {
	p.state = shopscrape.StateFailed
	p.reason = reason
	p.err = err
	p.observer().Stopped(reason)
	p.logger().Error("pagination failed", "reason", string(reason), "error", err)
	return err
}

func (p *Paginator) logger() *slog.Logger {
	if p.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return p.Logger
}

func (p *Paginator) observer() shopscrape.Observer {
	if p.Observer == nil {
		return shopscrape.NopObserver{}
	}
	return p.Observer
}
