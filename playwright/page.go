// Package playwright drives a Chromium tab through Playwright.
package playwright

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fwojciec/shopscrape"
	"github.com/playwright-community/playwright-go"
)

// Ensure Page implements shopscrape.Page at compile time.
var _ shopscrape.Page = (*Page)(nil)

// Options configures the browser behind a Page.
type Options struct {
	Headless  bool
	UserAgent string

	// Locale sets the Accept-Language and navigator.language of the context.
	Locale string
}

// Page is a single tab in its own browser context. It owns the Playwright
// driver and the browser it runs on.
type Page struct {
	pw      *playwright.Playwright
	browser playwright.Browser
	context playwright.BrowserContext
	page    playwright.Page
}

// NewPage starts the Playwright driver, launches Chromium and opens one tab
// in a fresh context.
func NewPage(opts Options) (*Page, error) {
	pw, err := playwright.Run()
	if err != nil {
		return nil, fmt.Errorf("start playwright: %w", err)
	}

	browser, err := pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(opts.Headless),
		Args: []string{
			"--disable-blink-features=AutomationControlled",
			"--disable-dev-shm-usage",
			"--disable-notifications",
			"--mute-audio",
		},
	})
	if err != nil {
		pw.Stop()
		return nil, fmt.Errorf("launch browser: %w", err)
	}

	contextOpts := playwright.BrowserNewContextOptions{
		AcceptDownloads: playwright.Bool(false),
		Viewport:        &playwright.Size{Width: 1920, Height: 1080},
	}
	if opts.UserAgent != "" {
		contextOpts.UserAgent = playwright.String(opts.UserAgent)
	}
	if opts.Locale != "" {
		contextOpts.Locale = playwright.String(opts.Locale)
	}
	bctx, err := browser.NewContext(contextOpts)
	if err != nil {
		browser.Close()
		pw.Stop()
		return nil, fmt.Errorf("create browser context: %w", err)
	}

	page, err := bctx.NewPage()
	if err != nil {
		bctx.Close()
		browser.Close()
		pw.Stop()
		return nil, fmt.Errorf("create page: %w", err)
	}

	return &Page{pw: pw, browser: browser, context: bctx, page: page}, nil
}

// Navigate loads url and waits for the load event. Navigations that
// produce no response, such as same-document ones, report status 0.
func (p *Page) Navigate(ctx context.Context, url string) (*shopscrape.Response, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	resp, err := p.page.Goto(url, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateLoad,
		Timeout:   timeout(ctx),
	})
	if err != nil {
		return nil, translate(err)
	}
	if resp == nil {
		return &shopscrape.Response{URL: p.page.URL()}, nil
	}
	return &shopscrape.Response{Status: resp.Status(), URL: p.page.URL()}, nil
}

func (p *Page) WaitVisible(ctx context.Context, selector string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return translate(p.page.Locator(selector).First().WaitFor(playwright.LocatorWaitForOptions{
		State:   playwright.WaitForSelectorStateVisible,
		Timeout: timeout(ctx),
	}))
}

// WaitIdle waits until there are no network connections for 500ms.
func (p *Page) WaitIdle(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return translate(p.page.WaitForLoadState(playwright.PageWaitForLoadStateOptions{
		State:   playwright.LoadStateNetworkidle,
		Timeout: timeout(ctx),
	}))
}

func (p *Page) Click(ctx context.Context, selector string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return translate(p.page.Locator(selector).First().Click(playwright.LocatorClickOptions{
		Timeout: timeout(ctx),
	}))
}

func (p *Page) Scroll(ctx context.Context, dy float64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return p.page.Mouse().Wheel(0, dy)
}

func (p *Page) Location(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return p.page.URL(), nil
}

func (p *Page) HTML(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return p.page.Content()
}

// Close closes the tab, its context and browser, and stops the driver.
func (p *Page) Close() error {
	var errs []error
	if err := p.context.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close context: %w", err))
	}
	if err := p.browser.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close browser: %w", err))
	}
	if err := p.pw.Stop(); err != nil {
		errs = append(errs, fmt.Errorf("stop playwright: %w", err))
	}
	return errors.Join(errs...)
}

// timeout converts the context deadline to a Playwright timeout in
// milliseconds. Without a deadline it returns nil and Playwright's default
// applies.
func timeout(ctx context.Context) *float64 {
	deadline, ok := ctx.Deadline()
	if !ok {
		return nil
	}
	ms := float64(time.Until(deadline).Milliseconds())
	if ms < 1 {
		ms = 1
	}
	return playwright.Float(ms)
}

// translate maps Playwright timeouts onto context.DeadlineExceeded so
// callers can treat both drivers alike.
func translate(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, playwright.ErrTimeout) {
		return fmt.Errorf("%w: %w", context.DeadlineExceeded, err)
	}
	return err
}
