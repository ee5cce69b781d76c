package goquery

import (
	"net/http"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/shopscrape"
)

// Ensure Inspector implements shopscrape.ListingInspector at compile time.
var _ shopscrape.ListingInspector = (*Inspector)(nil)

// fallbackNextSelectors are tried after a profile's own next-page selectors.
var fallbackNextSelectors = []string{
	"a[rel='next']",
	"a[aria-label='Next Page']",
	"a[aria-label='Next page']",
	"li.next a",
	".pagination-next",
	"button[aria-label='Next']",
}

// notFoundPathMarkers appear in the path of error pages that answer 200.
var notFoundPathMarkers = []string{"/404", "not-found", "notfound", "page-not-found", "/error"}

// notFoundTitle matches the title of error and block pages. A status code
// only counts at the start of the title or next to "not found", so queries
// such as "peugeot 404" stay valid.
var notFoundTitle = regexp.MustCompile(`(?i)^\s*(?:error\s*)?(?:404|410)\b|\b404\s*[-:|]?\s*(?:page\s+)?not\s+found\b|^\s*(?:page\s+)?not\s+found\b|\bpage\s+not\s+found\b|^\s*access\s+denied\b|\brobot\s+check\b`)

// defaultNotFoundPhrases are body phrases that end a listing on any site.
var defaultNotFoundPhrases = []string{
	"page not found",
	"no results found",
	"no products found",
	"we couldn't find",
	"there are no results",
}

// Inspector answers not-found and next-page questions about listing pages.
type Inspector struct {
	nextSelectors []string
	phrases       []string
}

// NewInspector creates an Inspector using the profile's next-page selectors
// and not-found phrases.
func NewInspector(p *shopscrape.SiteProfile) *Inspector {
	next := make([]string, 0, len(p.NextSelectors)+len(fallbackNextSelectors))
	next = append(next, p.NextSelectors...)
	next = append(next, fallbackNextSelectors...)

	phrases := make([]string, 0, len(p.NotFoundPhrases)+len(defaultNotFoundPhrases))
	for _, ph := range p.NotFoundPhrases {
		if ph = strings.ToLower(strings.TrimSpace(ph)); ph != "" {
			phrases = append(phrases, ph)
		}
	}
	phrases = append(phrases, defaultNotFoundPhrases...)

	return &Inspector{nextSelectors: next, phrases: phrases}
}

// NotFound reports whether a page is a not-found or blocked page.
// Checks run cheapest first: status, URL path, title, then body text.
func (i *Inspector) NotFound(status int, pageURL, html string) bool {
	if status == http.StatusNotFound || status == http.StatusGone {
		return true
	}

	if u, err := url.Parse(pageURL); err == nil {
		path := strings.ToLower(u.Path)
		for _, m := range notFoundPathMarkers {
			if strings.Contains(path, m) {
				return true
			}
		}
	}

	doc, err := parseDocument(html)
	if err != nil {
		return false
	}

	if notFoundTitle.MatchString(shortText(doc.Find("title").First())) {
		return true
	}

	body := strings.ToLower(blockText(doc.Find("body")))
	for _, ph := range i.phrases {
		if strings.Contains(body, ph) {
			return true
		}
	}
	return false
}

// NextPage locates the next-page control. The first selector with a match
// decides; a matched but disabled control reports NextDisabled.
func (i *Inspector) NextPage(html string) shopscrape.NextControl {
	doc, err := parseDocument(html)
	if err != nil {
		return shopscrape.NextControl{State: shopscrape.NextAbsent}
	}

	for _, selector := range i.nextSelectors {
		sel := doc.Find(selector).First()
		if sel.Length() == 0 {
			continue
		}
		if disabled(sel) {
			return shopscrape.NextControl{State: shopscrape.NextDisabled, Selector: selector}
		}
		return shopscrape.NextControl{State: shopscrape.NextEnabled, Selector: selector}
	}
	return shopscrape.NextControl{State: shopscrape.NextAbsent}
}

// disabled checks the control and its list-item wrapper for disabled markers.
func disabled(sel *goquery.Selection) bool {
	if hasDisabledMarker(sel) {
		return true
	}
	if li := sel.ParentsFiltered("li").First(); li.Length() > 0 && hasDisabledMarker(li) {
		return true
	}
	if goquery.NodeName(sel) == "a" {
		if _, ok := sel.Attr("href"); !ok {
			return true
		}
	}
	return false
}

func hasDisabledMarker(sel *goquery.Selection) bool {
	if _, ok := sel.Attr("disabled"); ok {
		return true
	}
	if v, ok := sel.Attr("aria-disabled"); ok && strings.EqualFold(strings.TrimSpace(v), "true") {
		return true
	}
	for _, c := range strings.Fields(strings.ToLower(sel.AttrOr("class", ""))) {
		if strings.Contains(c, "disabled") {
			return true
		}
	}
	return false
}
