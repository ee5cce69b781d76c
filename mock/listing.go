package mock

import "github.com/fwojciec/shopscrape"

var _ shopscrape.CardCollector = (*CardCollector)(nil)

// CardCollector is a mock implementation of shopscrape.CardCollector.
type CardCollector struct {
	CollectFn    func(html, baseURL string) []shopscrape.Candidate
	CountLinksFn func(html, baseURL string) int
}

func (c *CardCollector) Collect(html, baseURL string) []shopscrape.Candidate {
	return c.CollectFn(html, baseURL)
}

func (c *CardCollector) CountLinks(html, baseURL string) int {
	return c.CountLinksFn(html, baseURL)
}

var _ shopscrape.ListingInspector = (*ListingInspector)(nil)

// ListingInspector is a mock implementation of shopscrape.ListingInspector.
type ListingInspector struct {
	NotFoundFn func(status int, pageURL, html string) bool
	NextPageFn func(html string) shopscrape.NextControl
}

func (i *ListingInspector) NotFound(status int, pageURL, html string) bool {
	return i.NotFoundFn(status, pageURL, html)
}

func (i *ListingInspector) NextPage(html string) shopscrape.NextControl {
	return i.NextPageFn(html)
}
