package mock

import (
	"context"

	"github.com/fwojciec/shopscrape"
)

var _ shopscrape.Page = (*Page)(nil)

// Page is a mock implementation of shopscrape.Page.
type Page struct {
	NavigateFn    func(ctx context.Context, url string) (*shopscrape.Response, error)
	WaitVisibleFn func(ctx context.Context, selector string) error
	WaitIdleFn    func(ctx context.Context) error
	ClickFn       func(ctx context.Context, selector string) error
	ScrollFn      func(ctx context.Context, dy float64) error
	LocationFn    func(ctx context.Context) (string, error)
	HTMLFn        func(ctx context.Context) (string, error)
	CloseFn       func() error
}

func (p *Page) Navigate(ctx context.Context, url string) (*shopscrape.Response, error) {
	return p.NavigateFn(ctx, url)
}

func (p *Page) WaitVisible(ctx context.Context, selector string) error {
	return p.WaitVisibleFn(ctx, selector)
}

func (p *Page) WaitIdle(ctx context.Context) error {
	return p.WaitIdleFn(ctx)
}

func (p *Page) Click(ctx context.Context, selector string) error {
	return p.ClickFn(ctx, selector)
}

func (p *Page) Scroll(ctx context.Context, dy float64) error {
	return p.ScrollFn(ctx, dy)
}

func (p *Page) Location(ctx context.Context) (string, error) {
	return p.LocationFn(ctx)
}

func (p *Page) HTML(ctx context.Context) (string, error) {
	return p.HTMLFn(ctx)
}

func (p *Page) Close() error {
	return p.CloseFn()
}
