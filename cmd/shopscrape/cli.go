package main

import (
	"context"
	"io"
	"log/slog"

	"github.com/fwojciec/shopscrape"
	"github.com/fwojciec/shopscrape/prometheus"
)

// Dependencies holds all services and configuration for command execution.
type Dependencies struct {
	Ctx       context.Context
	Stdout    io.Writer
	Stderr    io.Writer
	Logger    *slog.Logger
	Profiles  []*shopscrape.SiteProfile
	Page      shopscrape.Page
	Scraper   shopscrape.Scraper
	Extractor shopscrape.DetailExtractor
	Entries   shopscrape.EntryFinder
	Metrics   *prometheus.Metrics
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	Verbose     bool   `short:"v" env:"SHOPSCRAPE_VERBOSE" help:"Log at debug level"`
	ProfileFile string `name:"profiles" env:"SHOPSCRAPE_PROFILES" type:"path" help:"YAML file of site profiles (default: built-in)"`

	Scrape   ScrapeCmd   `cmd:"" help:"Search a shop and store the products found"`
	Extract  ExtractCmd  `cmd:"" help:"Extract one product page and print its record"`
	Profiles ProfilesCmd `cmd:"" help:"List site profiles"`
	List     ListCmd     `cmd:"" help:"List stored products"`
}

// BrowserFlags select and configure the page driver.
type BrowserFlags struct {
	Browser  string `enum:"rod,playwright,http" default:"rod" env:"SHOPSCRAPE_BROWSER" help:"Page driver: rod, playwright or http (no JavaScript)"`
	Headful  bool   `env:"SHOPSCRAPE_HEADFUL" help:"Show the browser window"`
	Metadata string `enum:"trafilatura,readability,none" default:"trafilatura" env:"SHOPSCRAPE_METADATA" help:"Generic metadata extractor used as the last resort for title and category"`
}

// ScrapeCmd is the "scrape" subcommand.
type ScrapeCmd struct {
	BrowserFlags `embed:""`

	Site        string   `arg:"" help:"Site profile name"`
	Query       string   `arg:"" help:"Search query"`
	MaxPages    int      `short:"p" default:"5" env:"SHOPSCRAPE_MAX_PAGES" help:"Maximum listing pages to visit"`
	Keyword     []string `short:"k" name:"keyword" help:"Keep only products whose title or category mentions a keyword (repeatable)"`
	Store       string   `default:"products.json" env:"SHOPSCRAPE_STORE" type:"path" help:"JSON store file"`
	SQLite      string   `name:"sqlite" env:"SHOPSCRAPE_SQLITE" type:"path" help:"Also mirror products into this SQLite database"`
	OutputDir   string   `default:"output" env:"SHOPSCRAPE_OUTPUT_DIR" type:"path" help:"Directory for per-run output files"`
	Rate        float64  `default:"1" env:"SHOPSCRAPE_RATE" help:"Product page visits per second per host (0 disables)"`
	MetricsFile string   `env:"SHOPSCRAPE_METRICS_FILE" type:"path" help:"Write Prometheus metrics to this textfile on exit"`
}

// ExtractCmd is the "extract" subcommand.
type ExtractCmd struct {
	BrowserFlags `embed:""`

	Site string `arg:"" help:"Site profile name"`
	URL  string `arg:"" help:"Product page URL"`
}

// ProfilesCmd is the "profiles" subcommand.
type ProfilesCmd struct{}

// ListCmd is the "list" subcommand.
type ListCmd struct {
	Store  string `default:"products.json" env:"SHOPSCRAPE_STORE" type:"path" help:"JSON store file"`
	SQLite string `name:"sqlite" env:"SHOPSCRAPE_SQLITE" type:"path" help:"Read from this SQLite database instead of the JSON store"`
	Query  string `short:"q" help:"Only products found by this search query"`
	Limit  int    `short:"n" default:"0" help:"Maximum products to list (0 for all)"`
	Offset int    `help:"Products to skip"`
}
