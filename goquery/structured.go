package goquery

import (
	"encoding/json"
	"sort"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/shopscrape"
)

// payloadWrappers are stripped from embedded JSON payloads before decoding.
var payloadWrappers = strings.NewReplacer("<!--", "", "-->", "", "<![CDATA[", "", "]]>", "")

// structuredStrategy reads schema.org Product nodes from JSON-LD payloads.
var structuredStrategy = strategy{
	name: "structured",
	title: func(p *detailPage) *string {
		return textValue(p.product()["name"])
	},
	price: func(p *detailPage) *float64 {
		for _, offer := range offerNodes(p.product()["offers"]) {
			for _, key := range []string{"price", "lowPrice"} {
				if s := scalarText(offer[key]); s != "" {
					if v := shopscrape.ParsePrice(s); v != nil {
						return v
					}
				}
			}
		}
		return nil
	},
	rating: func(p *detailPage) *float64 {
		agg, ok := p.product()["aggregateRating"].(map[string]any)
		if !ok {
			return nil
		}
		value, err := strconv.ParseFloat(scalarText(agg["ratingValue"]), 64)
		if err != nil {
			return nil
		}
		best := shopscrape.RatingScale
		if b, err := strconv.ParseFloat(scalarText(agg["bestRating"]), 64); err == nil && b > 0 {
			best = b
		}
		return shopscrape.NormalizeRating(value / best)
	},
	category: func(p *detailPage) *string {
		switch c := p.product()["category"].(type) {
		case []any:
			for i := len(c) - 1; i >= 0; i-- {
				if v := textValue(c[i]); v != nil {
					return v
				}
			}
		default:
			return textValue(c)
		}
		return nil
	},
}

// product returns the first JSON-LD node typed as a product, or nil.
// The lookup runs once per page.
func (p *detailPage) product() map[string]any {
	if p.productDone {
		return p.productNode
	}
	p.productDone = true
	p.doc.Find("script[type*='ld+json']").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		for _, v := range decodeConcatenated(s.Text()) {
			if node := findProduct(v); node != nil {
				p.productNode = node
				return false
			}
		}
		return true
	})
	return p.productNode
}

// decodeConcatenated decodes every JSON value in raw. Payloads may hold
// several objects separated by semicolons or wrapped in comment markers.
// Malformed segments are skipped up to the next object or array start.
func decodeConcatenated(raw string) []any {
	s := payloadWrappers.Replace(raw)
	var values []any
	for {
		s = strings.TrimLeft(s, " \t\r\n;,")
		if s == "" {
			return values
		}
		dec := json.NewDecoder(strings.NewReader(s))
		dec.UseNumber()
		var v any
		if err := dec.Decode(&v); err != nil {
			next := strings.IndexAny(s[1:], "{[")
			if next < 0 {
				return values
			}
			s = s[next+1:]
			continue
		}
		values = append(values, v)
		s = s[dec.InputOffset():]
	}
}

// findProduct walks v depth-first and returns the first node whose @type
// names a product. @graph is searched before other keys.
func findProduct(v any) map[string]any {
	switch t := v.(type) {
	case map[string]any:
		if isProductType(t["@type"]) {
			return t
		}
		if node := findProduct(t["@graph"]); node != nil {
			return node
		}
		keys := make([]string, 0, len(t))
		for k := range t {
			if k != "@graph" {
				keys = append(keys, k)
			}
		}
		sort.Strings(keys)
		for _, k := range keys {
			if node := findProduct(t[k]); node != nil {
				return node
			}
		}
	case []any:
		for _, item := range t {
			if node := findProduct(item); node != nil {
				return node
			}
		}
	}
	return nil
}

func isProductType(v any) bool {
	switch t := v.(type) {
	case string:
		return strings.Contains(strings.ToLower(t), "product")
	case []any:
		for _, item := range t {
			if isProductType(item) {
				return true
			}
		}
	}
	return false
}

// offerNodes flattens an offers value that may be an object, a list or an
// AggregateOffer.
func offerNodes(v any) []map[string]any {
	switch t := v.(type) {
	case map[string]any:
		nodes := []map[string]any{t}
		if nested, ok := t["offers"]; ok {
			nodes = append(nodes, offerNodes(nested)...)
		}
		return nodes
	case []any:
		var nodes []map[string]any
		for _, item := range t {
			nodes = append(nodes, offerNodes(item)...)
		}
		return nodes
	}
	return nil
}

// scalarText renders a JSON scalar as text. Objects and lists yield "".
func scalarText(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case json.Number:
		return t.String()
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	}
	return ""
}

// textValue returns a cleaned single-line text value, reading "name" from
// objects such as {"@type":"Thing","name":"Phones"}.
func textValue(v any) *string {
	if m, ok := v.(map[string]any); ok {
		v = m["name"]
	}
	if s := cleanField(scalarText(v)); s != "" {
		return &s
	}
	return nil
}
