package goquery

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// maxSpecRows bounds the key/value pairs read from one specification block.
const maxSpecRows = 60

// specLabels name a specification heading.
var specLabels = []string{"specifications", "specification", "technical specifications", "specs", "technical details"}

// specTableStrategy reads "key: value" pairs near a specifications heading.
var specTableStrategy = strategy{
	name: "spec_table",
	details: func(p *detailPage) *string {
		for _, heading := range findHeadings(p.doc, specLabels) {
			rows := specRows(heading)
			if len(rows) == 0 {
				continue
			}
			if text := p.acceptDetails("Specifications:\n" + strings.Join(rows, "\n")); text != nil {
				return text
			}
		}
		return nil
	},
}

// specRows scans the heading's enclosing blocks, nearest first, and returns
// the pairs of the first block that has any.
func specRows(heading *goquery.Selection) []string {
	scope := heading
	for depth := 0; depth < 3; depth++ {
		scope = scope.Parent()
		if scope.Length() == 0 || goquery.NodeName(scope) == "body" {
			return nil
		}
		if rows := pairs(scope); len(rows) > 0 {
			return rows
		}
	}
	return nil
}

// pairs collects table rows, definition-list pairs and "key: value" list
// items in document order, up to maxSpecRows.
func pairs(scope *goquery.Selection) []string {
	var rows []string
	seen := make(map[string]bool)
	add := func(row string) bool {
		row = cleanField(row)
		if row != "" && !seen[row] {
			seen[row] = true
			rows = append(rows, row)
		}
		return len(rows) < maxSpecRows
	}

	scope.Find("tr, dt, li").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if !visible(s) {
			return true
		}
		switch goquery.NodeName(s) {
		case "tr":
			if s.Find("th, td").Length() < 2 {
				return true
			}
			return add(rowText(s))
		case "dt":
			dd := s.NextFiltered("dd")
			key, value := shortText(s), shortText(dd)
			if key == "" || value == "" {
				return true
			}
			return add(strings.TrimRight(key, " :") + ": " + value)
		default:
			text := shortText(s)
			if !strings.Contains(text, ":") {
				return true
			}
			return add(text)
		}
	})
	return rows
}
