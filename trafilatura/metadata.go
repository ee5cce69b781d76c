// Package trafilatura reads page metadata with go-trafilatura.
package trafilatura

import (
	"strings"

	"github.com/fwojciec/shopscrape"
	"github.com/markusmobius/go-trafilatura"
)

// Ensure MetadataExtractor implements shopscrape.MetadataExtractor at compile time.
var _ shopscrape.MetadataExtractor = (*MetadataExtractor)(nil)

// MetadataExtractor reads title, description and categories from the
// page's meta tags and embedded metadata.
type MetadataExtractor struct{}

// NewMetadataExtractor creates a new MetadataExtractor.
func NewMetadataExtractor() *MetadataExtractor {
	return &MetadataExtractor{}
}

// ExtractMetadata processes raw HTML and returns its metadata.
func (e *MetadataExtractor) ExtractMetadata(rawHTML string) (*shopscrape.PageMetadata, error) {
	if strings.TrimSpace(rawHTML) == "" {
		return nil, shopscrape.Errorf(shopscrape.EINVALID, "empty HTML input")
	}

	opts := trafilatura.Options{
		EnableFallback:  false,
		ExcludeComments: true,
		ExcludeTables:   true,
	}

	result, err := trafilatura.Extract(strings.NewReader(rawHTML), opts)
	if err != nil {
		return nil, err
	}

	meta := result.Metadata
	var categories []string
	for _, c := range meta.Categories {
		if c = strings.TrimSpace(c); c != "" {
			categories = append(categories, c)
		}
	}
	return &shopscrape.PageMetadata{
		Title:       strings.TrimSpace(meta.Title),
		Description: strings.TrimSpace(meta.Description),
		Categories:  categories,
	}, nil
}
