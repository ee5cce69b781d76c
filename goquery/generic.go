package goquery

import (
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/shopscrape"
)

// maxGenericText caps the text taken from one generic candidate.
const maxGenericText = 15000

// maxGenericCandidates bounds how many generic candidates are cleaned.
const maxGenericCandidates = 5

// genericNames are loose class or id fragments of description containers.
var genericNames = []string{"overview", "description", "details"}

// genericStrategy is the last resort: page metadata for title and category,
// and the longest description-like container for details.
var genericStrategy = strategy{
	name: "generic",
	title: func(p *detailPage) *string {
		if m := p.pageMetadata(); m != nil {
			if s := cleanField(m.Title); s != "" {
				return &s
			}
		}
		for _, selector := range []string{"meta[property='og:title']", "meta[name='twitter:title']"} {
			if s := cleanField(p.doc.Find(selector).AttrOr("content", "")); s != "" {
				return &s
			}
		}
		if s := cleanField(shortText(p.doc.Find("title").First())); s != "" {
			return &s
		}
		return nil
	},
	price: func(p *detailPage) *float64 {
		for _, selector := range []string{"meta[property='product:price:amount']", "meta[property='og:price:amount']"} {
			if v := shopscrape.ParsePrice(p.doc.Find(selector).AttrOr("content", "")); v != nil {
				return v
			}
		}
		return nil
	},
	category: func(p *detailPage) *string {
		m := p.pageMetadata()
		if m == nil {
			return nil
		}
		for i := len(m.Categories) - 1; i >= 0; i-- {
			if s := cleanField(m.Categories[i]); s != "" && !strings.EqualFold(s, "home") {
				return &s
			}
		}
		return nil
	},
	details: func(p *detailPage) *string {
		for _, text := range genericCandidates(p.doc) {
			if accepted := p.acceptDetails(text); accepted != nil {
				return accepted
			}
		}
		return nil
	},
}

// genericCandidates returns the visible text of description-like containers,
// longest first, each capped at maxGenericText characters.
func genericCandidates(doc *goquery.Document) []string {
	var texts []string
	seen := make(map[string]bool)
	doc.Find("[class], [id]").Each(func(_ int, s *goquery.Selection) {
		if !namesDescription(s) || !visible(s) {
			return
		}
		text := blockText(s)
		if text == "" || seen[text] {
			return
		}
		seen[text] = true
		texts = append(texts, truncateRunes(text, maxGenericText))
	})

	sort.SliceStable(texts, func(i, j int) bool {
		return utf8.RuneCountInString(texts[i]) > utf8.RuneCountInString(texts[j])
	})
	if len(texts) > maxGenericCandidates {
		texts = texts[:maxGenericCandidates]
	}
	return texts
}

func namesDescription(s *goquery.Selection) bool {
	attrs := strings.ToLower(s.AttrOr("class", "") + " " + s.AttrOr("id", ""))
	for _, name := range genericNames {
		if strings.Contains(attrs, name) {
			return true
		}
	}
	return false
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
