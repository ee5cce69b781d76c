package rod

import (
	"context"
	"time"

	"github.com/fwojciec/shopscrape"
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
)

// Ensure Page implements shopscrape.Page at compile time.
var _ shopscrape.Page = (*Page)(nil)

var pageTarget = proto.TargetCreateTarget{URL: "about:blank"}

// domStableWindow is how long the DOM must stay unchanged to count as idle.
const domStableWindow = 500 * time.Millisecond

// Page is a single Chrome tab.
type Page struct {
	page    *rod.Page
	browser *Browser
}

// NewPage launches a browser and opens one tab on it. Closing the page
// closes the browser.
func NewPage(opts Options) (*Page, error) {
	b, err := Launch(opts)
	if err != nil {
		return nil, err
	}
	p, err := b.NewPage()
	if err != nil {
		b.Close()
		return nil, err
	}
	p.browser = b
	return p, nil
}

// Navigate loads url and waits for the load event. The status is taken
// from the main document response; it is 0 when no response was seen.
func (p *Page) Navigate(ctx context.Context, url string) (*shopscrape.Response, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ectx, cancel := context.WithCancel(ctx)
	defer cancel()

	var resp shopscrape.Response
	wait := p.page.Context(ectx).EachEvent(func(e *proto.NetworkResponseReceived) bool {
		if e.Type != proto.NetworkResourceTypeDocument {
			return false
		}
		resp = shopscrape.Response{Status: e.Response.Status, URL: e.Response.URL}
		return true
	})
	done := make(chan struct{})
	go func() {
		defer close(done)
		wait()
	}()

	page := p.page.Context(ctx)
	if err := page.Navigate(url); err != nil {
		return nil, err
	}
	if err := page.WaitLoad(); err != nil {
		return nil, err
	}

	cancel()
	<-done

	if info, err := page.Info(); err == nil {
		resp.URL = info.URL
	}
	return &resp, nil
}

func (p *Page) WaitVisible(ctx context.Context, selector string) error {
	el, err := p.page.Context(ctx).Element(selector)
	if err != nil {
		return err
	}
	return el.WaitVisible()
}

// WaitIdle waits for the load event and for the DOM to stop changing.
func (p *Page) WaitIdle(ctx context.Context) error {
	page := p.page.Context(ctx)
	if err := page.WaitLoad(); err != nil {
		return err
	}
	return page.WaitDOMStable(domStableWindow, 0)
}

func (p *Page) Click(ctx context.Context, selector string) error {
	el, err := p.page.Context(ctx).Element(selector)
	if err != nil {
		return err
	}
	if err := el.ScrollIntoView(); err != nil {
		return err
	}
	return el.Click(proto.InputMouseButtonLeft, 1)
}

func (p *Page) Scroll(ctx context.Context, dy float64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return p.page.Mouse.Scroll(0, dy, 4)
}

func (p *Page) Location(ctx context.Context) (string, error) {
	info, err := p.page.Context(ctx).Info()
	if err != nil {
		return "", err
	}
	return info.URL, nil
}

func (p *Page) HTML(ctx context.Context) (string, error) {
	return p.page.Context(ctx).HTML()
}

// Close closes the tab, and the browser when the page owns it.
func (p *Page) Close() error {
	err := p.page.Close()
	if p.browser != nil {
		if cerr := p.browser.Close(); err == nil {
			err = cerr
		}
	}
	return err
}
