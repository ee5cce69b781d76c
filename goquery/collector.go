package goquery

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/shopscrape"
)

// Ensure CardCollector implements shopscrape.CardCollector at compile time.
var _ shopscrape.CardCollector = (*CardCollector)(nil)

// fallbackCardSelectors are structural card selectors tried after a
// profile's own selectors.
var fallbackCardSelectors = []string{
	"[data-qa*='product']",
	"[data-testid*='product']",
	"[data-component-type='s-search-result']",
	"article[class*='product'], article.prd",
	"li[class*='product'], div[class*='product-card'], div[class*='productCard']",
}

// CardCollector locates product cards on a search listing using an ordered
// list of container selectors. The first selector with at least one match
// is adopted.
type CardCollector struct {
	selectors   []string
	linkSel     string
	linkPattern string
}

// NewCardCollector creates a CardCollector for the profile's card selectors.
func NewCardCollector(p *shopscrape.SiteProfile) *CardCollector {
	selectors := make([]string, 0, len(p.CardSelectors)+len(fallbackCardSelectors))
	selectors = append(selectors, p.CardSelectors...)
	selectors = append(selectors, fallbackCardSelectors...)
	return &CardCollector{
		selectors:   selectors,
		linkSel:     p.CardLinkSelector,
		linkPattern: p.ProductLinkPattern,
	}
}

// Collect returns candidates in document order, de-duplicated by URL.
// Containers without a resolvable link are discarded. When no container
// selector matches, anchors matching the product link pattern are used.
func (c *CardCollector) Collect(html, baseURL string) []shopscrape.Candidate {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil
	}
	doc, err := parseDocument(html)
	if err != nil {
		return nil
	}

	seen := make(map[string]bool)
	var candidates []shopscrape.Candidate
	add := func(href, name string) {
		resolved := resolveURL(base, href)
		if resolved == "" || seen[resolved] {
			return
		}
		seen[resolved] = true
		candidates = append(candidates, shopscrape.Candidate{URL: resolved, Name: name})
	}

	if cards := c.findCards(doc); cards != nil {
		cards.Each(func(_ int, card *goquery.Selection) {
			anchor := c.cardAnchor(card)
			if anchor == nil {
				return
			}
			href, _ := anchor.Attr("href")
			name := firstLine(card)
			if name == "" {
				name = shortText(anchor)
			}
			add(href, name)
		})
		return candidates
	}

	c.patternAnchors(doc).Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		add(href, shortText(a))
	})
	return candidates
}

// CountLinks returns the number of distinct product links on the page.
func (c *CardCollector) CountLinks(html, baseURL string) int {
	base, err := url.Parse(baseURL)
	if err != nil {
		return 0
	}
	doc, err := parseDocument(html)
	if err != nil {
		return 0
	}

	seen := make(map[string]bool)
	count := func(sel *goquery.Selection) {
		sel.Each(func(_ int, a *goquery.Selection) {
			href, _ := a.Attr("href")
			if resolved := resolveURL(base, href); resolved != "" {
				seen[shopscrape.CanonicalURL(resolved)] = true
			}
		})
	}

	if c.linkPattern != "" {
		count(c.patternAnchors(doc))
	} else if cards := c.findCards(doc); cards != nil {
		cards.Each(func(_ int, card *goquery.Selection) {
			if a := c.cardAnchor(card); a != nil {
				count(a)
			}
		})
	}
	return len(seen)
}

// findCards returns the matches of the first selector with any match.
func (c *CardCollector) findCards(doc *goquery.Document) *goquery.Selection {
	for _, selector := range c.selectors {
		if sel := doc.Find(selector); sel.Length() > 0 {
			return sel
		}
	}
	return nil
}

// cardAnchor returns the product anchor of a card, or nil.
func (c *CardCollector) cardAnchor(card *goquery.Selection) *goquery.Selection {
	if goquery.NodeName(card) == "a" {
		if _, ok := card.Attr("href"); ok {
			return card
		}
	}
	if c.linkSel != "" {
		if a := card.Find(c.linkSel).First(); a.Length() > 0 {
			return a
		}
	}
	if a := card.Find("a[href]").First(); a.Length() > 0 {
		return a
	}
	// cards are sometimes wrapped by their anchor
	if a := card.ParentsFiltered("a[href]").First(); a.Length() > 0 {
		return a
	}
	return nil
}

// patternAnchors returns anchors whose href contains the product link pattern.
func (c *CardCollector) patternAnchors(doc *goquery.Document) *goquery.Selection {
	anchors := doc.Find("a[href]")
	if c.linkPattern == "" {
		return anchors.Slice(0, 0)
	}
	return anchors.FilterFunction(func(_ int, a *goquery.Selection) bool {
		href, _ := a.Attr("href")
		return strings.Contains(href, c.linkPattern)
	})
}
