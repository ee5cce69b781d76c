package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"github.com/fwojciec/shopscrape"
)

// extractTimeout bounds loading the product page.
const extractTimeout = 60 * time.Second

// extractOutput is the JSON printed by the extract command.
type extractOutput struct {
	Product *shopscrape.ProductRecord   `json:"product"`
	Sources map[shopscrape.Field]string `json:"sources"`
	Issues  []string                    `json:"issues,omitempty"`
}

// Run executes the extract command.
func (c *ExtractCmd) Run(deps *Dependencies) error {
	u, err := url.Parse(c.URL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		err := shopscrape.Errorf(shopscrape.EINVALID, "invalid product URL %q", c.URL)
		fmt.Fprintf(deps.Stderr, "error: %s\n", shopscrape.ErrorMessage(err))
		return err
	}

	ctx, cancel := context.WithTimeout(deps.Ctx, extractTimeout)
	defer cancel()

	resp, err := deps.Page.Navigate(ctx, c.URL)
	if err != nil {
		return fmt.Errorf("load %s: %w", c.URL, err)
	}
	if resp.Status >= 400 {
		return fmt.Errorf("load %s: HTTP %d", c.URL, resp.Status)
	}
	if err := deps.Page.WaitIdle(ctx); err != nil && deps.Logger != nil {
		deps.Logger.Debug("page did not settle", "url", c.URL, "error", err)
	}
	html, err := deps.Page.HTML(ctx)
	if err != nil {
		return fmt.Errorf("read %s: %w", c.URL, err)
	}

	ext, err := deps.Extractor.Extract(html, c.URL)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", shopscrape.ErrorMessage(err))
		return err
	}

	out := extractOutput{Product: &shopscrape.ProductRecord{}, Sources: ext.Sources}
	if ext.Record != nil {
		out.Product = shopscrape.NormalizeRecord(ext.Record)
	}
	out.Product.Link = shopscrape.CanonicalURL(c.URL)
	out.Issues = out.Product.Diagnose()

	enc := json.NewEncoder(deps.Stdout)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(out)
}
