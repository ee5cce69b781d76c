package goquery

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/shopscrape"
)

// maxHeadingLength bounds the text of an element treated as a heading.
const maxHeadingLength = 80

// maxSectionLines caps the lines collected for one section.
const maxSectionLines = 60

// Generic selectors tried after a profile's own field selectors.
var (
	genericTitleSelectors      = []string{"h1", "[itemprop='name']", "[data-qa*='title']"}
	genericPriceSelectors      = []string{"[itemprop='price']", "[data-qa*='price']", "[class*='price']"}
	genericRatingSelectors     = []string{"[itemprop='ratingValue']", "[class*='rating']"}
	genericBreadcrumbSelectors = []string{
		"nav[aria-label*='readcrumb']",
		"[itemtype*='BreadcrumbList']",
		"[class*='breadcrumb']",
		"[class*='Breadcrumb']",
	}
)

// section is a named block of the assembled details text.
type section struct {
	name   string
	labels []string
}

// sections are emitted in this order.
var sections = []section{
	{name: "Overview", labels: []string{"product overview", "overview"}},
	{name: "Highlights", labels: []string{"highlights", "key features"}},
	{name: "Specifications", labels: []string{"specifications", "specification", "specs"}},
}

// headingElements are the element kinds inspected for section labels.
const headingElements = "h1, h2, h3, h4, h5, h6, strong, b, dt, button, summary, div, span, p"

// domStrategy reads fields from visible page structure.
var domStrategy = strategy{
	name: "dom",
	title: func(p *detailPage) *string {
		for _, selector := range concat(p.profile.TitleSelectors, genericTitleSelectors) {
			if s := firstVisibleText(p.doc, selector); s != "" {
				return &s
			}
		}
		return nil
	},
	price: func(p *detailPage) *float64 {
		for _, selector := range concat(p.profile.PriceSelectors, genericPriceSelectors) {
			if v := firstParsed(p.doc, selector, shopscrape.ParsePrice); v != nil {
				return v
			}
		}
		return nil
	},
	rating: func(p *detailPage) *float64 {
		for _, selector := range concat(p.profile.RatingSelectors, genericRatingSelectors) {
			if v := firstParsed(p.doc, selector, shopscrape.ParseRating); v != nil {
				return v
			}
		}
		return nil
	},
	category: func(p *detailPage) *string {
		for _, selector := range concat(p.profile.BreadcrumbSelectors, genericBreadcrumbSelectors) {
			if s := breadcrumbCategory(p.doc.Find(selector)); s != "" {
				return &s
			}
		}
		return nil
	},
	details: func(p *detailPage) *string {
		for _, selector := range p.profile.DetailSelectors {
			sel := p.doc.Find(selector).FilterFunction(func(_ int, s *goquery.Selection) bool { return visible(s) })
			if sel.Length() == 0 {
				continue
			}
			if text := p.acceptDetails(blockText(sel.First())); text != nil {
				return text
			}
		}
		return p.acceptDetails(sectionBlob(p.doc))
	},
}

// sectionBlob assembles the Overview, Highlights and Specifications
// sections found under matching headings. Returns "" when none has content.
func sectionBlob(doc *goquery.Document) string {
	var b strings.Builder
	for _, sec := range sections {
		var lines []string
		for _, heading := range findHeadings(doc, sec.labels) {
			if lines = walkSection(heading); len(lines) > 0 {
				break
			}
		}
		if len(lines) == 0 {
			continue
		}
		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(sec.name + ":\n")
		b.WriteString(strings.Join(lines, "\n"))
		b.WriteByte('\n')
	}
	return b.String()
}

// findHeadings returns the visible heading-like elements whose own short
// text equals one of labels, ignoring case and a trailing colon.
func findHeadings(doc *goquery.Document, labels []string) []*goquery.Selection {
	var found []*goquery.Selection
	doc.Find(headingElements).Each(func(_ int, s *goquery.Selection) {
		if matchesLabel(s, labels) && visible(s) {
			found = append(found, s)
		}
	})
	return found
}

func matchesLabel(s *goquery.Selection, labels []string) bool {
	text := shortText(s)
	if text == "" || len([]rune(text)) > maxHeadingLength {
		return false
	}
	text = strings.ToLower(strings.TrimRight(text, " :"))
	for _, l := range labels {
		if text == l {
			return true
		}
	}
	return false
}

// isStopHeading reports whether s starts another section.
func isStopHeading(s *goquery.Selection) bool {
	switch goquery.NodeName(s) {
	case "h1", "h2", "h3", "h4", "h5", "h6":
		return true
	}
	for _, sec := range sections {
		if matchesLabel(s, sec.labels) {
			return true
		}
	}
	return false
}

// walkSection collects list-item and paragraph text from the siblings that
// follow heading, stopping at the next heading. A heading without following
// siblings is replaced by its closest ancestor that has some.
func walkSection(heading *goquery.Selection) []string {
	start := heading
	for depth := 0; start.Next().Length() == 0 && depth < 3; depth++ {
		parent := start.Parent()
		if parent.Length() == 0 {
			break
		}
		start = parent
	}

	var lines []string
	add := func(text string) bool {
		if text = cleanField(text); text != "" {
			lines = append(lines, text)
		}
		return len(lines) < maxSectionLines
	}

	start.NextAll().EachWithBreak(func(_ int, sib *goquery.Selection) bool {
		if isStopHeading(sib) {
			return false
		}
		if !visible(sib) {
			return true
		}
		switch goquery.NodeName(sib) {
		case "li", "p":
			return add(shortText(sib))
		}
		more := true
		sib.Find("li, p, tr").EachWithBreak(func(_ int, item *goquery.Selection) bool {
			if !visible(item) {
				return true
			}
			if goquery.NodeName(item) == "tr" {
				more = add(rowText(item))
			} else {
				more = add(shortText(item))
			}
			return more
		})
		return more
	})
	return lines
}

// rowText renders a table row as "key: value".
func rowText(tr *goquery.Selection) string {
	cells := tr.Find("th, td")
	if cells.Length() < 2 {
		return shortText(tr)
	}
	key := strings.TrimRight(shortText(cells.Eq(0)), " :")
	value := shortText(cells.Eq(1))
	if key == "" || value == "" {
		return ""
	}
	return key + ": " + value
}

// breadcrumbCategory picks the category from breadcrumb containers: an
// active-marked crumb first, otherwise the last crumb that is neither
// "home" nor a separator.
func breadcrumbCategory(containers *goquery.Selection) string {
	var crumbs []*goquery.Selection
	containers.Each(func(_ int, c *goquery.Selection) {
		items := c.Find("li")
		if items.Length() == 0 {
			items = c.Find("a, span")
		}
		if items.Length() == 0 {
			items = c
		}
		items.Each(func(_ int, item *goquery.Selection) {
			crumbs = append(crumbs, item)
		})
	})

	for _, c := range crumbs {
		if isActiveCrumb(c) {
			if s := crumbText(c); s != "" {
				return s
			}
		}
	}
	for i := len(crumbs) - 1; i >= 0; i-- {
		if s := crumbText(crumbs[i]); s != "" {
			return s
		}
	}
	return ""
}

func isActiveCrumb(s *goquery.Selection) bool {
	if _, ok := s.Attr("aria-current"); ok {
		return true
	}
	for _, c := range strings.Fields(strings.ToLower(s.AttrOr("class", ""))) {
		if c == "active" || c == "current" || strings.HasSuffix(c, "-active") {
			return true
		}
	}
	return false
}

// crumbText returns the cleaned crumb text, or "" for home and separators.
func crumbText(s *goquery.Selection) string {
	text := cleanField(shortText(s))
	if text == "" || strings.EqualFold(text, "home") {
		return ""
	}
	if strings.Trim(text, " >/|\u203a\u00bb\u00b7-") == "" {
		return ""
	}
	return text
}

// firstVisibleText returns the cleaned text of the first visible match.
func firstVisibleText(doc *goquery.Document, selector string) string {
	var text string
	doc.Find(selector).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if !visible(s) {
			return true
		}
		text = cleanField(shortText(s))
		return text == ""
	})
	return text
}

// firstParsed applies parse to the content attribute or text of each match
// and returns the first non-nil result.
func firstParsed(doc *goquery.Document, selector string, parse func(string) *float64) *float64 {
	var v *float64
	doc.Find(selector).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		raw := s.AttrOr("content", "")
		if raw == "" {
			if !visible(s) {
				return true
			}
			raw = shortText(s)
		}
		v = parse(raw)
		return v == nil
	})
	return v
}

func concat(a, b []string) []string {
	out := make([]string, 0, len(a)+len(b))
	out = append(out, a...)
	return append(out, b...)
}
