package crawl

import (
	"fmt"
	"strings"

	"github.com/fwojciec/shopscrape"
)

// FormatStats renders upsert stats as "New: n | Updated: n | Total: n".
func FormatStats(stats *shopscrape.UpsertStats) string {
	if stats == nil {
		stats = &shopscrape.UpsertStats{}
	}
	return fmt.Sprintf("New: %d | Updated: %d | Total: %d", stats.New, stats.Updated, stats.Total)
}

// FormatResult renders a one-line session summary.
func FormatResult(r *shopscrape.ScrapeResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s after %d page(s)", r.State, r.Pages)
	if r.StopReason != shopscrape.StopNone {
		fmt.Fprintf(&b, " (%s)", r.StopReason)
	}
	fmt.Fprintf(&b, ": %d kept, %d visited", len(r.Entries), r.Visited)
	if r.Duplicates > 0 {
		fmt.Fprintf(&b, ", %d duplicate", r.Duplicates)
	}
	if r.Rejected > 0 {
		fmt.Fprintf(&b, ", %d rejected", r.Rejected)
	}
	if r.Failed > 0 {
		fmt.Fprintf(&b, ", %d failed", r.Failed)
	}
	return b.String()
}
