package goquery

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/fwojciec/shopscrape"
	"golang.org/x/net/html"
)

var (
	blockCloseTag = regexp.MustCompile(`(?i)<br\s*/?>|</(?:p|div|li|ul|ol|h[1-6]|tr|table|dd|dt|dl|section|article|header|footer)\s*>`)
	anyTag        = regexp.MustCompile(`<[^>]*>`)
	separatorRun  = regexp.MustCompile(`(?:[-_=*\x{2022}\x{00B7}|~]\s*){3,}`)
	punctRun      = regexp.MustCompile(`([,;:!?])(?:\s*[,;:!?])+`)
	dotRun        = regexp.MustCompile(`\.{4,}`)
)

// invisibleMarks removes bidirectional, zero-width and soft-hyphen marks.
var invisibleMarks = strings.NewReplacer(
	"\u200b", "", "\u200c", "", "\u200d", "", "\u200e", "", "\u200f", "",
	"\u202a", "", "\u202b", "", "\u202c", "", "\u202d", "", "\u202e", "",
	"\u2066", "", "\u2067", "", "\u2068", "", "\u2069", "",
	"\ufeff", "", "\u00ad", "",
)

// boilerplate matches lines that are storefront chrome rather than
// product description. Patterns anchor on storefront phrases so that
// descriptive lines ("Delivers 30 hours", "IP67 rating") survive.
var boilerplate = []*regexp.Regexp{
	// delivery
	regexp.MustCompile(`(?i)\bfree (?:delivery|shipping|returns?)\b|\b(?:estimated )?deliver(?:y|ed) (?:by|on|date|tomorrow|today)\b|\bget it (?:by|tomorrow|today)\b|\bshipping (?:fees?|costs?|charges?)\b|\bships from\b|\b(?:noon|jumia) express\b|\bexpress delivery\b`),
	// payment
	regexp.MustCompile(`(?i)\bcash on delivery\b|\b(?:secure|online) payments?\b|\bpayment (?:options?|methods?|plans?)\b|\b\d+\s*(?:monthly\s+)?instal?lments?\b|\binstal?lment plans?\b|\bpay (?:later|in \d|with)\b|\b(?:tabby|tamara|valu|sympl)\b`),
	// cashback
	regexp.MustCompile(`(?i)\bcash ?back\b`),
	// seller
	regexp.MustCompile(`(?i)\bsold by\b|\bfulfilled by\b|\bseller (?:rating|score|info(?:rmation)?)\b|\b(?:other|more|view) sellers?\b`),
	// review and rating counts
	regexp.MustCompile(`(?i)\b\d[\d,.]*\s*(?:ratings?|reviews?)\b|\bcustomer reviews\b|\b(?:write|read|see) (?:all |a )?reviews?\b|^\s*(?:ratings?|reviews?)(?:\s*(?:&|and)\s*reviews?)?\s*$|\bout of 5 stars\b`),
	// pricing tokens
	regexp.MustCompile(`(?i)^\s*(?:egp|aed|sar|usd|kwd|qar|omr|bhd|\$|\x{20AC}|\x{00A3})\s*[\d,.]+\s*$|\b(?:egp|aed|sar)\s*[\d,.]+|\d+\s*% off\b|\bwas\s+(?:egp|aed|sar)\b`),
	// breadcrumb markers
	regexp.MustCompile(`(?i)^\s*home\s*(?:[>/\x{203A}\x{00BB}|]|$)|[\x{203A}\x{00BB}]`),
	regexp.MustCompile(`(?i)\bfrequently bought together\b`),
	// promotions
	regexp.MustCompile(`(?i)\b(?:add to cart|buy now|best ?seller|limited (?:time )?offer|special offer|hot deals?|deal of the day|coupons?|vouchers?|promo code)\b`),
}

// forbidden rejects a whole details candidate when present after cleaning.
var forbidden = regexp.MustCompile(`(?i)add to cart|we use cookies|enable javascript|sign in to|page not found|access denied|captcha|something went wrong`)

// CleanText strips markup, control characters and invisible marks from raw,
// converts block-closing tags to line breaks, drops boilerplate lines and a
// leading line that repeats title, and collapses whitespace and punctuation
// noise. The result has one non-empty line per block.
func CleanText(raw, title string) string {
	s := blockCloseTag.ReplaceAllString(raw, "\n")
	s = anyTag.ReplaceAllString(s, " ")
	s = html.UnescapeString(s)
	s = invisibleMarks.Replace(s)
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.Map(func(r rune) rune {
		if r == '\n' || r == '\t' {
			return r
		}
		if unicode.IsControl(r) || r == utf8.RuneError {
			return -1
		}
		return r
	}, s)

	var lines []string
	for _, line := range strings.Split(s, "\n") {
		line = separatorRun.ReplaceAllString(line, " ")
		line = punctRun.ReplaceAllString(line, "$1")
		line = dotRun.ReplaceAllString(line, "...")
		line = strings.Join(strings.Fields(line), " ")
		if line == "" || isBoilerplate(line) {
			continue
		}
		lines = append(lines, line)
	}

	if len(lines) > 0 && title != "" && sameText(lines[0], title) {
		lines = lines[1:]
	}
	return strings.Join(lines, "\n")
}

func isBoilerplate(line string) bool {
	for _, re := range boilerplate {
		if re.MatchString(line) {
			return true
		}
	}
	return false
}

func sameText(a, b string) bool {
	norm := func(s string) string {
		return strings.ToLower(strings.Join(strings.Fields(strings.TrimRight(s, " :")), " "))
	}
	return norm(a) == norm(b)
}

// AcceptDetails reports whether cleaned text is usable as details_text: it
// must be longer than shopscrape.MinDetailsLength characters, contain a
// letter and contain no forbidden pattern.
func AcceptDetails(text string) bool {
	if utf8.RuneCountInString(text) <= shopscrape.MinDetailsLength {
		return false
	}
	if strings.IndexFunc(text, unicode.IsLetter) < 0 {
		return false
	}
	return !forbidden.MatchString(text)
}

// cleanField cleans a single-line field value. Returns "" when nothing
// usable remains.
func cleanField(raw string) string {
	s := anyTag.ReplaceAllString(raw, " ")
	s = html.UnescapeString(s)
	s = invisibleMarks.Replace(s)
	s = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return ' '
		}
		return r
	}, s)
	return strings.Join(strings.Fields(s), " ")
}
