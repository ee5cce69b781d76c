// Package slog provides logging decorators for shopscrape services.
package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/shopscrape"
)

// Ensure LoggingPage implements shopscrape.Page.
var _ shopscrape.Page = (*LoggingPage)(nil)

// LoggingPage wraps a Page with logging. Navigations are logged at info
// level; the remaining calls at debug level.
type LoggingPage struct {
	next   shopscrape.Page
	logger *slog.Logger
}

// NewLoggingPage creates a new LoggingPage.
func NewLoggingPage(next shopscrape.Page, logger *slog.Logger) *LoggingPage {
	return &LoggingPage{next: next, logger: logger}
}

// Navigate delegates to the wrapped page and logs the response status.
func (p *LoggingPage) Navigate(ctx context.Context, url string) (resp *shopscrape.Response, err error) {
	defer func(begin time.Time) {
		status := 0
		if resp != nil {
			status = resp.Status
		}
		p.logger.Info("navigate",
			"url", url,
			"status", status,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return p.next.Navigate(ctx, url)
}

func (p *LoggingPage) WaitVisible(ctx context.Context, selector string) (err error) {
	defer func(begin time.Time) {
		p.logger.Debug("wait visible", "selector", selector, "duration", time.Since(begin), "err", err)
	}(time.Now())
	return p.next.WaitVisible(ctx, selector)
}

func (p *LoggingPage) WaitIdle(ctx context.Context) (err error) {
	defer func(begin time.Time) {
		p.logger.Debug("wait idle", "duration", time.Since(begin), "err", err)
	}(time.Now())
	return p.next.WaitIdle(ctx)
}

func (p *LoggingPage) Click(ctx context.Context, selector string) (err error) {
	defer func(begin time.Time) {
		p.logger.Debug("click", "selector", selector, "duration", time.Since(begin), "err", err)
	}(time.Now())
	return p.next.Click(ctx, selector)
}

func (p *LoggingPage) Scroll(ctx context.Context, dy float64) (err error) {
	defer func(begin time.Time) {
		p.logger.Debug("scroll", "dy", dy, "duration", time.Since(begin), "err", err)
	}(time.Now())
	return p.next.Scroll(ctx, dy)
}

// Location is not logged.
func (p *LoggingPage) Location(ctx context.Context) (string, error) {
	return p.next.Location(ctx)
}

// HTML delegates to the wrapped page and logs the snapshot size.
func (p *LoggingPage) HTML(ctx context.Context) (html string, err error) {
	defer func(begin time.Time) {
		p.logger.Debug("snapshot", "bytes", len(html), "duration", time.Since(begin), "err", err)
	}(time.Now())
	return p.next.HTML(ctx)
}

func (p *LoggingPage) Close() error {
	err := p.next.Close()
	p.logger.Debug("page closed", "err", err)
	return err
}
