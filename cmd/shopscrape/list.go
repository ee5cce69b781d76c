package main

import (
	"fmt"
	"strconv"

	"github.com/fwojciec/shopscrape"
)

// Run executes the list command.
func (c *ListCmd) Run(deps *Dependencies) error {
	filter := shopscrape.EntryFilter{Offset: c.Offset, Limit: c.Limit}
	if c.Query != "" {
		filter.Query = &c.Query
	}

	entries, err := deps.Entries.FindEntries(deps.Ctx, filter)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", shopscrape.ErrorMessage(err))
		return err
	}

	if len(entries) == 0 {
		fmt.Fprintln(deps.Stdout, "No products found. Use 'shopscrape scrape' to collect some.")
		return nil
	}

	for _, e := range entries {
		fmt.Fprintf(deps.Stdout, "%s  %s  %s  %s\n", e.Product.Link, orDash(e.Product.Title), price(e.Product.Price), e.Metadata.SearchQuery)
	}
	return nil
}

func orDash(s *string) string {
	if s == nil {
		return "-"
	}
	return *s
}

func price(p *float64) string {
	if p == nil {
		return "-"
	}
	return strconv.FormatFloat(*p, 'f', 2, 64)
}
