package shopscrape

import "strings"

// SearchConfig is the immutable configuration of one scraping session.
type SearchConfig struct {
	Query     string
	MaxPages  int
	Headless  bool
	Incognito bool
	Profile   *SiteProfile
}

// Validate returns an error if the configuration contains invalid fields.
func (c SearchConfig) Validate() error {
	if strings.TrimSpace(c.Query) == "" {
		return Errorf(EINVALID, "search query required")
	}
	if c.MaxPages < 1 {
		return Errorf(EINVALID, "max pages must be at least 1")
	}
	if c.Profile == nil {
		return Errorf(EINVALID, "site profile required")
	}
	return c.Profile.Validate()
}

// SearchURLs returns the first-page URL of every search URL variant in
// priority order.
func (c SearchConfig) SearchURLs() []string {
	urls := make([]string, 0, len(c.Profile.SearchURLs))
	for _, tmpl := range c.Profile.SearchURLs {
		urls = append(urls, c.Profile.SearchURL(tmpl, strings.TrimSpace(c.Query), 1))
	}
	return urls
}
