// Package http provides a shopscrape.Page for shops that render their
// listings on the server. It does not execute JavaScript; clicks follow
// links and the snapshot is the fetched document.
package http

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/shopscrape"
	"golang.org/x/net/html/charset"
)

// DefaultTimeout bounds a single request when the context has no deadline.
const DefaultTimeout = 30 * time.Second

// DefaultUserAgent is sent unless WithUserAgent overrides it.
const DefaultUserAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36"

// maxBody caps how much of a response is read.
const maxBody = 10 << 20

// Ensure Page implements shopscrape.Page at compile time.
var _ shopscrape.Page = (*Page)(nil)

// Page is a browserless tab. It is not safe for concurrent use.
type Page struct {
	client    *http.Client
	timeout   time.Duration
	userAgent string

	url  string
	html string
}

// Option configures a Page.
type Option func(*Page)

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(p *Page) {
		p.timeout = d
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(p *Page) {
		p.userAgent = ua
	}
}

// WithClient replaces the HTTP client.
func WithClient(c *http.Client) Option {
	return func(p *Page) {
		p.client = c
	}
}

// NewPage returns a Page on about:blank.
func NewPage(opts ...Option) *Page {
	p := &Page{
		timeout:   DefaultTimeout,
		userAgent: DefaultUserAgent,
		url:       "about:blank",
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.client == nil {
		p.client = &http.Client{Timeout: p.timeout}
	}
	return p
}

// Navigate fetches rawURL and makes it the current document. Error
// statuses are returned in the response, not as errors.
func (p *Page) Navigate(ctx context.Context, rawURL string) (*shopscrape.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", p.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml;q=0.9,*/*;q=0.8")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return nil, err
	}
	html, err := decode(body, resp.Header.Get("Content-Type"))
	if err != nil {
		return nil, err
	}

	p.url = resp.Request.URL.String()
	p.html = html
	return &shopscrape.Response{Status: resp.StatusCode, URL: p.url}, nil
}

// WaitVisible reports whether the current document has a visible element
// matching selector. A static document never changes, so it does not wait.
func (p *Page) WaitVisible(ctx context.Context, selector string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	doc, err := p.document()
	if err != nil {
		return err
	}
	if doc.Find(selector).FilterFunction(visible).Length() == 0 {
		return shopscrape.Errorf(shopscrape.ENOTFOUND, "no visible element matches %q", selector)
	}
	return nil
}

// WaitIdle returns at once; a fetched document has no pending requests.
func (p *Page) WaitIdle(ctx context.Context) error {
	return ctx.Err()
}

// Click follows the href of the first element matching selector. Elements
// without a link are accepted and change nothing.
func (p *Page) Click(ctx context.Context, selector string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	doc, err := p.document()
	if err != nil {
		return err
	}
	sel := doc.Find(selector).First()
	if sel.Length() == 0 {
		return shopscrape.Errorf(shopscrape.ENOTFOUND, "no element matches %q", selector)
	}
	href, ok := sel.Attr("href")
	if !ok {
		href, ok = sel.Find("a[href]").First().Attr("href")
	}
	href = strings.TrimSpace(href)
	if !ok || href == "" || strings.HasPrefix(href, "#") || strings.HasPrefix(href, "javascript:") {
		return nil
	}

	base, err := url.Parse(p.url)
	if err != nil {
		return err
	}
	ref, err := url.Parse(href)
	if err != nil {
		return fmt.Errorf("click %q: %w", selector, err)
	}
	_, err = p.Navigate(ctx, base.ResolveReference(ref).String())
	return err
}

// Scroll is a no-op.
func (p *Page) Scroll(ctx context.Context, dy float64) error {
	return ctx.Err()
}

func (p *Page) Location(ctx context.Context) (string, error) {
	return p.url, ctx.Err()
}

func (p *Page) HTML(ctx context.Context) (string, error) {
	return p.html, ctx.Err()
}

func (p *Page) Close() error {
	p.client.CloseIdleConnections()
	return nil
}

func (p *Page) document() (*goquery.Document, error) {
	return goquery.NewDocumentFromReader(strings.NewReader(p.html))
}

// decode converts body to UTF-8 using the declared or sniffed charset.
func decode(body []byte, contentType string) (string, error) {
	r, err := charset.NewReader(bytes.NewReader(body), contentType)
	if err != nil {
		return "", err
	}
	out, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// visible rejects elements hidden by themselves or an ancestor.
func visible(_ int, s *goquery.Selection) bool {
	for n := s; n.Length() > 0; n = n.Parent() {
		if _, hidden := n.Attr("hidden"); hidden {
			return false
		}
		style, _ := n.Attr("style")
		style = strings.ReplaceAll(strings.ToLower(style), " ", "")
		if strings.Contains(style, "display:none") || strings.Contains(style, "visibility:hidden") {
			return false
		}
	}
	return true
}
