package main

import (
	"fmt"

	"github.com/fwojciec/shopscrape"
	"github.com/fwojciec/shopscrape/crawl"
)

// Run executes the scrape command.
func (c *ScrapeCmd) Run(deps *Dependencies) error {
	profile, err := shopscrape.FindProfile(deps.Profiles, c.Site)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", shopscrape.ErrorMessage(err))
		return err
	}

	cfg := shopscrape.SearchConfig{Query: c.Query, MaxPages: c.MaxPages, Profile: profile}
	result, err := deps.Scraper.Scrape(deps.Ctx, cfg)
	c.writeMetrics(deps)
	if result != nil {
		fmt.Fprintln(deps.Stdout, crawl.FormatResult(result))
	}
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", shopscrape.ErrorMessage(err))
		return err
	}

	if result.Stats != nil {
		fmt.Fprintln(deps.Stdout, crawl.FormatStats(result.Stats))
	}
	if result.OutputPath != "" {
		fmt.Fprintf(deps.Stdout, "Wrote %d product(s) to %s\n", len(result.Entries), result.OutputPath)
	}
	return nil
}

func (c *ScrapeCmd) writeMetrics(deps *Dependencies) {
	if c.MetricsFile == "" || deps.Metrics == nil {
		return
	}
	if err := deps.Metrics.WriteTextfile(c.MetricsFile); err != nil {
		fmt.Fprintf(deps.Stderr, "warning: metrics not written: %v\n", err)
	}
}
