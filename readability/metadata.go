// Package readability reads page metadata with go-readability.
package readability

import (
	"net/url"
	"strings"

	"github.com/fwojciec/shopscrape"
	"github.com/go-shiori/go-readability"
)

// Ensure MetadataExtractor implements shopscrape.MetadataExtractor at compile time.
var _ shopscrape.MetadataExtractor = (*MetadataExtractor)(nil)

// MetadataExtractor reads the article title and excerpt of a page. It
// yields no categories.
type MetadataExtractor struct {
	pageURL *url.URL
}

// NewMetadataExtractor creates a new MetadataExtractor.
func NewMetadataExtractor() *MetadataExtractor {
	return &MetadataExtractor{}
}

// ExtractMetadata processes raw HTML and returns its metadata.
func (e *MetadataExtractor) ExtractMetadata(rawHTML string) (*shopscrape.PageMetadata, error) {
	if strings.TrimSpace(rawHTML) == "" {
		return nil, shopscrape.Errorf(shopscrape.EINVALID, "empty HTML input")
	}

	article, err := readability.FromReader(strings.NewReader(rawHTML), e.pageURL)
	if err != nil {
		return nil, err
	}

	return &shopscrape.PageMetadata{
		Title:       strings.TrimSpace(article.Title),
		Description: strings.TrimSpace(article.Excerpt),
	}, nil
}
