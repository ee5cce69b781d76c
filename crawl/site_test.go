package crawl_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	gq "github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/shopscrape"
	"github.com/fwojciec/shopscrape/mock"
)

const notFoundHTML = `<html><head><title>404 Not Found</title></head><body></body></html>`

// fakeSite is an in-memory shop driven through a mock.Page.
type fakeSite struct {
	mu        sync.Mutex
	pages     map[string]string
	next      map[string]string
	current   string
	navigated []string
	clicks    []string
	failNav   map[string]int
}

func newFakeSite() *fakeSite {
	return &fakeSite{
		pages:   make(map[string]string),
		next:    make(map[string]string),
		failNav: make(map[string]int),
	}
}

func (s *fakeSite) html() string {
	if h, ok := s.pages[s.current]; ok {
		return h
	}
	return notFoundHTML
}

func (s *fakeSite) visits(url string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, u := range s.navigated {
		if u == url {
			n++
		}
	}
	return n
}

func (s *fakeSite) page() *mock.Page {
	return &mock.Page{
		NavigateFn: func(_ context.Context, url string) (*shopscrape.Response, error) {
			s.mu.Lock()
			defer s.mu.Unlock()
			s.navigated = append(s.navigated, url)
			if s.failNav[url] > 0 {
				s.failNav[url]--
				return nil, errors.New("net::ERR_TIMED_OUT")
			}
			s.current = url
			if _, ok := s.pages[url]; !ok {
				return &shopscrape.Response{Status: 404, URL: url}, nil
			}
			return &shopscrape.Response{Status: 200, URL: url}, nil
		},
		WaitVisibleFn: func(_ context.Context, selector string) error {
			s.mu.Lock()
			defer s.mu.Unlock()
			doc, err := gq.NewDocumentFromReader(strings.NewReader(s.html()))
			if err != nil {
				return err
			}
			if doc.Find(selector).Length() == 0 {
				return fmt.Errorf("waiting for %q: %w", selector, context.DeadlineExceeded)
			}
			return nil
		},
		WaitIdleFn: func(context.Context) error { return nil },
		ClickFn: func(_ context.Context, selector string) error {
			s.mu.Lock()
			defer s.mu.Unlock()
			s.clicks = append(s.clicks, selector)
			if selector != nextSelector {
				return nil
			}
			if to, ok := s.next[s.current]; ok {
				s.current = to
			}
			return nil
		},
		ScrollFn: func(context.Context, float64) error { return nil },
		LocationFn: func(context.Context) (string, error) {
			s.mu.Lock()
			defer s.mu.Unlock()
			return s.current, nil
		},
		HTMLFn: func(context.Context) (string, error) {
			s.mu.Lock()
			defer s.mu.Unlock()
			return s.html(), nil
		},
		CloseFn: func() error { return nil },
	}
}

const (
	shopBase     = "https://shop.test"
	nextSelector = "a.next"
)

func searchURL(page int) string {
	return fmt.Sprintf("%s/search?q=phone&page=%d", shopBase, page)
}

func testProfile() *shopscrape.SiteProfile {
	return &shopscrape.SiteProfile{
		Name:               "testshop",
		SearchURLs:         []string{shopBase + "/search?q={query}&page={page}"},
		ProductSignals:     []string{"div.card"},
		CardSelectors:      []string{"div.card"},
		CardLinkSelector:   "a",
		ProductLinkPattern: "/p/",
		NextSelectors:      []string{nextSelector},
	}
}

// listing renders a search page. next is the href of an enabled next
// control, "disabled" for a disabled one, or "" for none. Each product is
// a link path; an empty path renders a card without a link.
func listing(next string, products ...string) string {
	var b strings.Builder
	b.WriteString(`<html><head><title>Search results</title></head><body><div class="grid">`)
	for i, p := range products {
		if p == "" {
			fmt.Fprintf(&b, `<div class="card"><span>Sponsored %d</span></div>`, i)
			continue
		}
		fmt.Fprintf(&b, `<div class="card"><a href="%s"><h2>Product %d</h2></a></div>`, p, i)
	}
	b.WriteString(`</div>`)
	switch next {
	case "":
	case "disabled":
		b.WriteString(`<a class="next" aria-disabled="true">Next</a>`)
	default:
		fmt.Fprintf(&b, `<a class="next" href="%s">Next</a>`, next)
	}
	b.WriteString(`</body></html>`)
	return b.String()
}

// productPage renders a detail page carrying structured data.
func productPage(name string, price float64) string {
	return fmt.Sprintf(`<html><head><title>%[1]s</title>
<script type="application/ld+json">{"@type":"Product","name":"%[1]s","offers":{"price":"%.2[2]f"},"aggregateRating":{"ratingValue":"4.5"},"category":"Mobile Phones"}</script>
</head><body>
<h1>%[1]s</h1>
<div class="product-description">
<p>%[1]s ships with a bright display, a long lasting battery and fast charging support.</p>
<p>Dual SIM with expandable storage.</p>
</div>
</body></html>`, name, price)
}
