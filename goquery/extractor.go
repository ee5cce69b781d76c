package goquery

import (
	"net/url"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/shopscrape"
)

// Ensure DetailExtractor implements shopscrape.DetailExtractor at compile time.
var _ shopscrape.DetailExtractor = (*DetailExtractor)(nil)

// strategy is one link of the extraction chain. Each field query is
// optional; a nil query or a nil result passes the field to the next link.
type strategy struct {
	name     string
	title    func(*detailPage) *string
	price    func(*detailPage) *float64
	rating   func(*detailPage) *float64
	category func(*detailPage) *string
	details  func(*detailPage) *string
}

// detailPage is the per-page state shared by the strategies.
type detailPage struct {
	doc     *goquery.Document
	html    string
	url     *url.URL
	profile *shopscrape.SiteProfile
	meta    shopscrape.MetadataExtractor

	// title is the resolved title, used to drop a repeated leading line
	// from details text.
	title string

	productNode map[string]any
	productDone bool

	metadata     *shopscrape.PageMetadata
	metadataDone bool
}

// DetailExtractor resolves each product field through the chain
// structured data, DOM heuristics, specifications table, generic scan.
type DetailExtractor struct {
	profile    *shopscrape.SiteProfile
	meta       shopscrape.MetadataExtractor
	strategies []strategy
}

// NewDetailExtractor creates a DetailExtractor. The profile contributes
// site selectors to the DOM strategy and may be nil. meta feeds the
// generic strategy's title and category and may be nil.
func NewDetailExtractor(profile *shopscrape.SiteProfile, meta shopscrape.MetadataExtractor) *DetailExtractor {
	if profile == nil {
		profile = &shopscrape.SiteProfile{}
	}
	return &DetailExtractor{
		profile: profile,
		meta:    meta,
		strategies: []strategy{
			structuredStrategy,
			domStrategy,
			specTableStrategy,
			genericStrategy,
		},
	}
}

// Extract resolves every field independently. The first strategy yielding
// a value for a field wins and later strategies are not queried for it.
func (e *DetailExtractor) Extract(html, pageURL string) (*shopscrape.Extraction, error) {
	u, err := url.Parse(pageURL)
	if err != nil {
		return nil, shopscrape.Errorf(shopscrape.EINVALID, "invalid page URL: %v", err)
	}
	doc, err := parseDocument(html)
	if err != nil {
		return nil, shopscrape.Errorf(shopscrape.EINVALID, "failed to parse HTML: %v", err)
	}

	p := &detailPage{doc: doc, html: html, url: u, profile: e.profile, meta: e.meta}
	rec := &shopscrape.ProductRecord{Link: shopscrape.CanonicalURL(pageURL)}
	sources := make(map[shopscrape.Field]string)

	note := func(f shopscrape.Field, name string) {
		if name != "" {
			sources[f] = name
		}
	}

	var name string
	rec.Title, name = resolve(p, e.strategies, func(s strategy) func(*detailPage) *string { return s.title })
	note(shopscrape.FieldTitle, name)
	if rec.Title != nil {
		p.title = *rec.Title
	}

	rec.Price, name = resolve(p, e.strategies, func(s strategy) func(*detailPage) *float64 { return s.price })
	note(shopscrape.FieldPrice, name)

	rec.SellerScore, name = resolve(p, e.strategies, func(s strategy) func(*detailPage) *float64 { return s.rating })
	note(shopscrape.FieldRating, name)

	rec.Category, name = resolve(p, e.strategies, func(s strategy) func(*detailPage) *string { return s.category })
	note(shopscrape.FieldCategory, name)

	rec.DetailsText, name = resolve(p, e.strategies, func(s strategy) func(*detailPage) *string { return s.details })
	note(shopscrape.FieldDetails, name)

	return &shopscrape.Extraction{Record: rec, Sources: sources}, nil
}

// resolve returns the first non-nil value of the chain and the name of the
// strategy that produced it.
func resolve[T any](p *detailPage, chain []strategy, query func(strategy) func(*detailPage) *T) (*T, string) {
	for _, s := range chain {
		fn := query(s)
		if fn == nil {
			continue
		}
		if v := fn(p); v != nil {
			return v, s.name
		}
	}
	return nil, ""
}

// acceptDetails cleans raw details text and returns it when it passes
// AcceptDetails.
func (p *detailPage) acceptDetails(raw string) *string {
	if raw == "" {
		return nil
	}
	text := CleanText(raw, p.title)
	if !AcceptDetails(text) {
		return nil
	}
	return &text
}

// pageMetadata returns document metadata from the MetadataExtractor, or nil.
func (p *detailPage) pageMetadata() *shopscrape.PageMetadata {
	if p.metadataDone {
		return p.metadata
	}
	p.metadataDone = true
	if p.meta == nil {
		return nil
	}
	m, err := p.meta.ExtractMetadata(p.html)
	if err != nil {
		return nil
	}
	p.metadata = m
	return m
}
