package shopscrape

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// CanonicalURL strips the query string and fragment from a product URL and
// trims surrounding whitespace. The result is the dedup and storage key.
func CanonicalURL(raw string) string {
	s := strings.TrimSpace(raw)
	if i := strings.IndexAny(s, "?#"); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSpace(s)
}

// NormalizeText collapses whitespace runs to single spaces and trims.
// Returns nil for empty results.
func NormalizeText(s string) *string {
	s = strings.Join(strings.Fields(s), " ")
	if s == "" {
		return nil
	}
	return &s
}

// NormalizePrice strips every character that is not a digit or decimal point
// and parses the remainder. Returns nil when nothing parseable remains.
func NormalizePrice(s string) *float64 {
	var b strings.Builder
	for _, r := range s {
		if (r >= '0' && r <= '9') || r == '.' {
			b.WriteRune(r)
		}
	}
	v, err := strconv.ParseFloat(b.String(), 64)
	if err != nil {
		return nil
	}
	return finite(round(v, 2))
}

// priceToken groups thousands with a comma or a no-break space only; a
// plain space separates tokens ("EGP 99 100 sold" is 99).
var priceToken = regexp.MustCompile(`\d{1,3}(?:[,\x{00A0}\x{202F}]\d{3})+(?:\.\d+)?|\d+(?:\.\d+)?`)

// ParsePrice extracts the first numeric token from a currency-agnostic price
// string ("EGP 12,345.50", "99 AED") and rounds it to two decimals.
// Returns nil when no token is present.
func ParsePrice(s string) *float64 {
	tok := priceToken.FindString(s)
	if tok == "" {
		return nil
	}
	tok = strings.NewReplacer(",", "", "\u00a0", "", "\u202f", "").Replace(tok)
	v, err := strconv.ParseFloat(tok, 64)
	if err != nil {
		return nil
	}
	return finite(round(v, 2))
}

var (
	percentToken = regexp.MustCompile(`(\d{1,3}(?:\.\d+)?)\s*%`)
	numberToken  = regexp.MustCompile(`\d+(?:[.,]\d+)*`)
)

// RatingScale is the upper bound of a raw rating value.
// Raw ratings are divided by it to reach the canonical 0..1 scale.
const RatingScale = 5.0

// ParseRating extracts a rating from text and returns it on the canonical
// 0..1 scale. The first number in [0,5] is divided by 5; a percentage such
// as "58%" is divided by 100. Returns nil when no bounded token is present.
func ParseRating(s string) *float64 {
	if m := percentToken.FindStringSubmatch(s); m != nil {
		v, err := strconv.ParseFloat(m[1], 64)
		if err == nil && v <= 100 {
			return NormalizeRating(v / 100)
		}
	}
	for _, tok := range numberToken.FindAllString(s, -1) {
		if strings.Contains(tok, ",") {
			continue // thousands-separated counts such as "1,234 ratings"
		}
		v, err := strconv.ParseFloat(tok, 64)
		if err != nil {
			continue
		}
		if v >= 0 && v <= RatingScale {
			return NormalizeRating(v / RatingScale)
		}
	}
	return nil
}

// NormalizeRating validates a canonical rating. Values within float noise of
// the bounds are clamped; anything else outside [0,1] yields nil.
func NormalizeRating(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	const eps = 1e-9
	if v < -eps || v > 1+eps {
		return nil
	}
	v = math.Max(0, math.Min(1, v))
	return finite(round(v, 3))
}

// NormalizeRecord returns a normalized copy of r. Applying it to its own
// output returns an identical record.
func NormalizeRecord(r *ProductRecord) *ProductRecord {
	if r == nil {
		return nil
	}
	out := &ProductRecord{Link: CanonicalURL(r.Link)}
	if r.Title != nil {
		out.Title = NormalizeText(*r.Title)
	}
	if r.DetailsText != nil {
		out.DetailsText = NormalizeText(*r.DetailsText)
	}
	if r.Category != nil {
		out.Category = NormalizeText(*r.Category)
	}
	if r.Price != nil {
		out.Price = finite(round(*r.Price, 2))
	}
	if r.SellerScore != nil {
		out.SellerScore = NormalizeRating(*r.SellerScore)
	}
	return out
}

func round(v float64, places int) float64 {
	p := math.Pow10(places)
	return math.Round(v*p) / p
}

func finite(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}
