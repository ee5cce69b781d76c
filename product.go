package shopscrape

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// Field names a resolvable ProductRecord field.
type Field string

// Fields resolved independently by a DetailExtractor.
const (
	FieldTitle    Field = "title"
	FieldPrice    Field = "price"
	FieldRating   Field = "rating"
	FieldCategory Field = "category"
	FieldDetails  Field = "details_text"
)

// Fields lists every resolvable field in extraction order.
var Fields = []Field{FieldTitle, FieldPrice, FieldRating, FieldCategory, FieldDetails}

// ProductRecord is the structured result of one detail page.
// Nil pointers serialize as JSON null.
type ProductRecord struct {
	Title       *string  `json:"title"`
	Price       *float64 `json:"price"`
	DetailsText *string  `json:"details_text"`
	SellerScore *float64 `json:"seller_score"` // 0..1
	Category    *string  `json:"category"`
	Link        string   `json:"link"` // canonical URL
}

// Diagnose returns soft validation warnings for the record.
// Warnings never cause a record to be dropped.
func (r *ProductRecord) Diagnose() []string {
	var issues []string
	if r.Title == nil || len([]rune(*r.Title)) <= 10 {
		issues = append(issues, "title missing or too short")
	}
	if r.Price == nil || math.IsNaN(*r.Price) || math.IsInf(*r.Price, 0) {
		issues = append(issues, "price not numeric")
	}
	if r.DetailsText == nil || len([]rune(*r.DetailsText)) <= MinDetailsLength {
		issues = append(issues, fmt.Sprintf("details_text missing or <= %d chars", MinDetailsLength))
	}
	if r.SellerScore == nil || math.IsNaN(*r.SellerScore) {
		issues = append(issues, "rating not numeric")
	}
	if r.Category == nil || strings.EqualFold(strings.TrimSpace(*r.Category), "home") {
		issues = append(issues, "category missing")
	}
	return issues
}

// MinDetailsLength is the length details_text must exceed to be accepted.
const MinDetailsLength = 80

// Metadata describes where and when a record was scraped.
type Metadata struct {
	Source      string    `json:"source"`
	ScrapedAt   time.Time `json:"scraped_at"`
	SearchQuery string    `json:"search_query"`
	PageNumber  int       `json:"page_number"`
}

// Entry is a persisted record with its metadata.
type Entry struct {
	Metadata Metadata       `json:"metadata"`
	Product  *ProductRecord `json:"product"`
}

// Validate returns an error if the entry cannot be persisted.
func (e *Entry) Validate() error {
	if e.Product == nil {
		return Errorf(EINVALID, "entry product required")
	}
	if CanonicalURL(e.Product.Link) == "" {
		return Errorf(EINVALID, "entry product link required")
	}
	return nil
}

// Candidate is a product link found on a search listing.
type Candidate struct {
	URL  string
	Name string
}

// Extraction is the outcome of running a DetailExtractor on one page.
type Extraction struct {
	Record *ProductRecord

	// Sources maps each resolved field to the name of the strategy that produced it.
	// Unresolved fields are absent.
	Sources map[Field]string
}

// DetailExtractor builds a ProductRecord from a rendered detail page.
type DetailExtractor interface {
	// Extract resolves every field independently through an ordered strategy chain.
	// Missing fields are nil; structural mismatches are never errors.
	Extract(html, pageURL string) (*Extraction, error)
}

// PageMetadata holds document-level metadata (title, categories) of a page.
type PageMetadata struct {
	Title       string
	Description string
	Categories  []string
}

// MetadataExtractor reads document-level metadata from HTML.
type MetadataExtractor interface {
	ExtractMetadata(html string) (*PageMetadata, error)
}

// AcceptFunc decides whether a record is kept for a session.
// A nil AcceptFunc accepts everything.
type AcceptFunc func(*ProductRecord) bool

// KeywordFilter returns an AcceptFunc that keeps records whose title or
// category mentions any keyword, case-insensitively. No keywords accepts all.
func KeywordFilter(keywords ...string) AcceptFunc {
	var kws []string
	for _, k := range keywords {
		if k = strings.ToLower(strings.TrimSpace(k)); k != "" {
			kws = append(kws, k)
		}
	}
	return func(r *ProductRecord) bool {
		if len(kws) == 0 {
			return true
		}
		var hay strings.Builder
		if r.Title != nil {
			hay.WriteString(strings.ToLower(*r.Title))
		}
		hay.WriteByte(' ')
		if r.Category != nil {
			hay.WriteString(strings.ToLower(*r.Category))
		}
		for _, k := range kws {
			if strings.Contains(hay.String(), k) {
				return true
			}
		}
		return false
	}
}
