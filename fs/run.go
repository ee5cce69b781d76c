package fs

import (
	"context"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/fwojciec/shopscrape"
)

// Ensure RunWriter implements shopscrape.RunWriter at compile time.
var _ shopscrape.RunWriter = (*RunWriter)(nil)

var slugUnsafe = regexp.MustCompile(`[^a-z0-9]+`)

// RunFileName returns the per-run output file name for a source and query.
// Example: ("noon", "Wireless Earbuds!") -> noon_wireless_earbuds.json
func RunFileName(source, query string) string {
	slug := func(s string) string {
		return strings.Trim(slugUnsafe.ReplaceAllString(strings.ToLower(s), "_"), "_")
	}
	name := slug(source)
	if q := slug(query); q != "" {
		if name != "" {
			name += "_"
		}
		name += q
	}
	if name == "" {
		name = "run"
	}
	return name + ".json"
}

// RunWriter writes each session's entries to a JSON array in a directory.
type RunWriter struct {
	dir string
}

// NewRunWriter returns a RunWriter that writes into dir.
func NewRunWriter(dir string) *RunWriter {
	return &RunWriter{dir: dir}
}

// WriteRun writes entries atomically, replacing any previous run for the
// same source and query, and returns the file path.
func (w *RunWriter) WriteRun(ctx context.Context, source, query string, entries []*shopscrape.Entry) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if entries == nil {
		entries = []*shopscrape.Entry{}
	}
	path := filepath.Join(w.dir, RunFileName(source, query))
	if err := writeJSON(path, entries); err != nil {
		return "", err
	}
	return path, nil
}
