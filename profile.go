package shopscrape

import (
	"net/url"
	"strconv"
	"strings"
)

// DefaultMinProductLinks is the number of product links a page must show
// after a next-page click for pagination to continue.
const DefaultMinProductLinks = 3

// SiteProfile holds the site-specific selectors a session uses.
// Profiles are configuration data; the pipeline never hardcodes a site.
type SiteProfile struct {
	// Name labels the source in persisted metadata (e.g., "noon").
	Name string `yaml:"name"`

	// SearchURLs are ordered search URL templates (regional mirrors first to
	// last). "{query}" and "{page}" are substituted.
	SearchURLs []string `yaml:"search_urls"`

	// ProductSignals are selectors whose visibility shows products have rendered.
	ProductSignals []string `yaml:"product_signals"`

	// CardSelectors locate listing cards, most specific first.
	CardSelectors []string `yaml:"card_selectors"`

	// CardLinkSelector locates the product anchor inside a card.
	CardLinkSelector string `yaml:"card_link_selector"`

	// ProductLinkPattern is a substring every product href contains.
	ProductLinkPattern string `yaml:"product_link_pattern"`

	NextSelectors       []string `yaml:"next_selectors"`
	PopupCloseSelectors []string `yaml:"popup_close_selectors"`

	TitleSelectors      []string `yaml:"title_selectors"`
	PriceSelectors      []string `yaml:"price_selectors"`
	RatingSelectors     []string `yaml:"rating_selectors"`
	BreadcrumbSelectors []string `yaml:"breadcrumb_selectors"`
	DetailSelectors     []string `yaml:"detail_selectors"`

	// NotFoundPhrases are body phrases that mark a not-found page.
	NotFoundPhrases []string `yaml:"not_found_phrases"`

	// MinProductLinks overrides DefaultMinProductLinks when positive.
	MinProductLinks int `yaml:"min_product_links"`
}

// Validate returns an error if the profile cannot drive a session.
func (p *SiteProfile) Validate() error {
	if p.Name == "" {
		return Errorf(EINVALID, "profile name required")
	}
	if len(p.SearchURLs) == 0 {
		return Errorf(EINVALID, "profile %q: at least one search URL required", p.Name)
	}
	for _, tmpl := range p.SearchURLs {
		if !strings.Contains(tmpl, "{query}") {
			return Errorf(EINVALID, "profile %q: search URL %q lacks {query}", p.Name, tmpl)
		}
		if _, err := url.Parse(strings.NewReplacer("{query}", "q", "{page}", "1").Replace(tmpl)); err != nil {
			return Errorf(EINVALID, "profile %q: invalid search URL %q", p.Name, tmpl)
		}
	}
	if len(p.ProductSignals) == 0 {
		return Errorf(EINVALID, "profile %q: at least one product signal required", p.Name)
	}
	return nil
}

// SearchURL expands a search URL template.
func (p *SiteProfile) SearchURL(tmpl, query string, page int) string {
	return strings.NewReplacer(
		"{query}", url.QueryEscape(query),
		"{page}", strconv.Itoa(page),
	).Replace(tmpl)
}

// LinkThreshold returns the effective minimum product-link count.
func (p *SiteProfile) LinkThreshold() int {
	if p.MinProductLinks > 0 {
		return p.MinProductLinks
	}
	return DefaultMinProductLinks
}

// FindProfile returns the profile with the given name.
// Returns ENOTFOUND if no profile matches.
func FindProfile(profiles []*SiteProfile, name string) (*SiteProfile, error) {
	for _, p := range profiles {
		if strings.EqualFold(p.Name, name) {
			return p, nil
		}
	}
	return nil, Errorf(ENOTFOUND, "profile %q not found", name)
}
