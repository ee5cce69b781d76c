package mock

import "github.com/fwojciec/shopscrape"

var _ shopscrape.DetailExtractor = (*DetailExtractor)(nil)

// DetailExtractor is a mock implementation of shopscrape.DetailExtractor.
type DetailExtractor struct {
	ExtractFn func(html, pageURL string) (*shopscrape.Extraction, error)
}

func (e *DetailExtractor) Extract(html, pageURL string) (*shopscrape.Extraction, error) {
	return e.ExtractFn(html, pageURL)
}

var _ shopscrape.MetadataExtractor = (*MetadataExtractor)(nil)

// MetadataExtractor is a mock implementation of shopscrape.MetadataExtractor.
type MetadataExtractor struct {
	ExtractMetadataFn func(html string) (*shopscrape.PageMetadata, error)
}

func (e *MetadataExtractor) ExtractMetadata(html string) (*shopscrape.PageMetadata, error) {
	return e.ExtractMetadataFn(html)
}
