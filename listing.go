package shopscrape

// CardCollector finds product cards on a search listing.
type CardCollector interface {
	// Collect returns candidate product links in document order.
	// An empty result signals that the page has no more products.
	Collect(html, baseURL string) []Candidate

	// CountLinks returns the number of distinct product links on the page.
	CountLinks(html, baseURL string) int
}

// NextState describes the next-page control of a listing.
type NextState int

const (
	NextAbsent NextState = iota
	NextDisabled
	NextEnabled
)

// String returns a human readable label.
func (s NextState) String() string {
	switch s {
	case NextDisabled:
		return "disabled"
	case NextEnabled:
		return "enabled"
	default:
		return "absent"
	}
}

// NextControl is the located next-page control.
type NextControl struct {
	State NextState

	// Selector matches the control when State is not NextAbsent.
	Selector string
}

// ListingInspector answers structural questions about a listing page.
type ListingInspector interface {
	// NotFound reports whether the page is a not-found or blocked page, using
	// the HTTP status, URL path, document title and body phrases.
	NotFound(status int, pageURL, html string) bool

	// NextPage locates the next-page control.
	NextPage(html string) NextControl
}
