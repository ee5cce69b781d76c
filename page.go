package shopscrape

import "context"

// Response describes the outcome of a navigation.
type Response struct {
	// Status is the HTTP status of the main document, or 0 if unknown.
	Status int

	// URL is the final URL after redirects.
	URL string
}

// Page is a single browser tab exclusively owned by a scraping session.
// Every method blocks until done or until ctx expires; callers bound each
// call with a timeout.
//
// DOM queries are issued against the HTML snapshot rather than through
// in-page scripts.
type Page interface {
	// Navigate loads url and waits for the document to load.
	Navigate(ctx context.Context, url string) (*Response, error)

	// WaitVisible blocks until an element matching selector is visible.
	WaitVisible(ctx context.Context, selector string) error

	// WaitIdle blocks until network activity settles.
	WaitIdle(ctx context.Context) error

	// Click clicks the first element matching selector.
	Click(ctx context.Context, selector string) error

	// Scroll scrolls the viewport vertically by dy pixels.
	Scroll(ctx context.Context, dy float64) error

	// Location returns the current page URL.
	Location(ctx context.Context) (string, error)

	// HTML returns a snapshot of the rendered document.
	HTML(ctx context.Context) (string, error)

	// Close releases the page and any browser it owns.
	Close() error
}
