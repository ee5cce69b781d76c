package slog

import (
	"log/slog"
	"strings"
	"time"

	"github.com/fwojciec/shopscrape"
)

// Ensure LoggingExtractor implements shopscrape.DetailExtractor.
var _ shopscrape.DetailExtractor = (*LoggingExtractor)(nil)

// LoggingExtractor wraps a DetailExtractor and logs which strategy supplied
// each field.
type LoggingExtractor struct {
	next   shopscrape.DetailExtractor
	logger *slog.Logger
}

// NewLoggingExtractor creates a new LoggingExtractor.
func NewLoggingExtractor(next shopscrape.DetailExtractor, logger *slog.Logger) *LoggingExtractor {
	return &LoggingExtractor{next: next, logger: logger}
}

// Extract delegates to the wrapped extractor. Fields no strategy filled are
// listed as missing.
func (e *LoggingExtractor) Extract(html, pageURL string) (ext *shopscrape.Extraction, err error) {
	defer func(begin time.Time) {
		attrs := []any{"url", pageURL, "duration", time.Since(begin)}
		if err != nil {
			e.logger.Warn("extract", append(attrs, "err", err)...)
			return
		}
		var sources map[shopscrape.Field]string
		if ext != nil {
			sources = ext.Sources
		}
		var missing []string
		for _, f := range shopscrape.Fields {
			if src, ok := sources[f]; ok {
				attrs = append(attrs, string(f), src)
			} else {
				missing = append(missing, string(f))
			}
		}
		if len(missing) > 0 {
			attrs = append(attrs, "missing", strings.Join(missing, ","))
		}
		e.logger.Debug("extract", attrs...)
	}(time.Now())
	return e.next.Extract(html, pageURL)
}
