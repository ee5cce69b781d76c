package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/fwojciec/shopscrape"
	"github.com/fwojciec/shopscrape/bloom"
	"github.com/fwojciec/shopscrape/crawl"
	"github.com/fwojciec/shopscrape/fs"
	"github.com/fwojciec/shopscrape/goquery"
	shophttp "github.com/fwojciec/shopscrape/http"
	"github.com/fwojciec/shopscrape/playwright"
	"github.com/fwojciec/shopscrape/prometheus"
	"github.com/fwojciec/shopscrape/readability"
	"github.com/fwojciec/shopscrape/rod"
	shopslog "github.com/fwojciec/shopscrape/slog"
	"github.com/fwojciec/shopscrape/sqlite"
	"github.com/fwojciec/shopscrape/trafilatura"
	"github.com/fwojciec/shopscrape/yaml"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := NewMain()

	if err := m.Run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

// Main represents the program.
type Main struct {
	// SQLite mirror, opened when --sqlite is set.
	DB *sqlite.DB

	// Page is the browser tab of the run, opened by scrape and extract.
	Page shopscrape.Page
}

// NewMain returns a new instance of Main.
func NewMain() *Main {
	return &Main{}
}

// Close releases the page and the database.
func (m *Main) Close() error {
	var err error
	if m.Page != nil {
		err = m.Page.Close()
	}
	if m.DB != nil {
		if cerr := m.DB.Close(); err == nil {
			err = cerr
		}
	}
	return err
}

// Run executes the CLI with the given arguments.
func (m *Main) Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	deps := &Dependencies{
		Ctx:    ctx,
		Stdout: stdout,
		Stderr: stderr,
	}

	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("shopscrape"),
		kong.Description("Scrape product listings from e-commerce search results"),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}),
		kong.Bind(deps),
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	if len(args) == 0 {
		_, _ = parser.Parse([]string{"--help"})
		return fmt.Errorf("no command specified. Run 'shopscrape --help' to see available commands")
	}

	cmd := args[0]
	if cmd == "help" || cmd == "--help" || cmd == "-h" {
		_, _ = parser.Parse([]string{"--help"})
		return nil
	}

	kongCtx, err := parser.Parse(args)
	if err != nil {
		return err
	}
	defer m.Close()

	deps.Logger = newLogger(stderr, cli.Verbose)

	deps.Profiles, err = loadProfiles(cli.ProfileFile)
	if err != nil {
		return fmt.Errorf("failed to load site profiles: %w", err)
	}

	switch kongCtx.Command() {
	case "scrape <site> <query>":
		if err := m.wireScrape(deps, &cli.Scrape); err != nil {
			return err
		}
	case "extract <site> <url>":
		if err := m.wireExtract(deps, &cli.Extract); err != nil {
			return err
		}
	case "list":
		if err := m.wireList(deps, &cli.List); err != nil {
			return err
		}
	}

	return kongCtx.Run(deps)
}

// wireScrape builds the scraper for one session: a logged page, the
// profile's listing and detail components, the JSON store and optional
// SQLite mirror, metrics and a per-host rate limit.
func (m *Main) wireScrape(deps *Dependencies, c *ScrapeCmd) error {
	profile, err := shopscrape.FindProfile(deps.Profiles, c.Site)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "Hint: run 'shopscrape profiles' to see available sites\n")
		return err
	}

	page, err := m.openPage(deps, c.BrowserFlags)
	if err != nil {
		return err
	}

	jsonStore := fs.NewStore(c.Store)
	jsonStore.Logger = deps.Logger
	var store shopscrape.Store = shopslog.NewLoggingStore(jsonStore, "json", deps.Logger)
	if c.SQLite != "" {
		if err := m.openDB(c.SQLite); err != nil {
			return err
		}
		store = &crawl.MultiStore{Stores: []shopscrape.Store{
			store,
			shopslog.NewLoggingStore(sqlite.NewProductStore(m.DB), "sqlite", deps.Logger),
		}}
	}

	deps.Metrics = prometheus.NewMetrics()
	s := &crawl.Scraper{
		Page:        page,
		Inspector:   goquery.NewInspector(profile),
		Collector:   goquery.NewCardCollector(profile),
		Extractor:   shopslog.NewLoggingExtractor(goquery.NewDetailExtractor(profile, metadataExtractor(c.Metadata)), deps.Logger),
		Seen:        bloom.NewSet(uint(max(c.MaxPages, 1))*seenPerPage, 0.001),
		Store:       store,
		Runs:        fs.NewRunWriter(c.OutputDir),
		Accept:      shopscrape.KeywordFilter(c.Keyword...),
		Delays:      crawl.DefaultDelays(),
		Timeouts:    crawl.DefaultTimeouts(),
		RetryDelays: crawl.DefaultRetryDelays(),
		Logger:      deps.Logger,
		Observer:    deps.Metrics,
	}
	if c.Rate > 0 {
		s.RateLimiter = crawl.NewDomainLimiter(c.Rate, 1)
	}
	deps.Scraper = s
	return nil
}

func (m *Main) wireExtract(deps *Dependencies, c *ExtractCmd) error {
	profile, err := shopscrape.FindProfile(deps.Profiles, c.Site)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "Hint: run 'shopscrape profiles' to see available sites\n")
		return err
	}
	if _, err := m.openPage(deps, c.BrowserFlags); err != nil {
		return err
	}
	deps.Extractor = shopslog.NewLoggingExtractor(goquery.NewDetailExtractor(profile, metadataExtractor(c.Metadata)), deps.Logger)
	return nil
}

func (m *Main) wireList(deps *Dependencies, c *ListCmd) error {
	if c.SQLite != "" {
		if err := m.openDB(c.SQLite); err != nil {
			return err
		}
		deps.Entries = sqlite.NewProductStore(m.DB)
		return nil
	}
	store := fs.NewStore(c.Store)
	store.Logger = deps.Logger
	deps.Entries = store
	return nil
}

func (m *Main) openPage(deps *Dependencies, f BrowserFlags) (shopscrape.Page, error) {
	page, err := newPage(f.Browser, !f.Headful)
	if err != nil {
		if f.Browser != "http" {
			fmt.Fprintf(deps.Stderr, "Hint: %s needs Chrome or Chromium; try --browser=http for server-rendered shops\n", f.Browser)
		}
		return nil, fmt.Errorf("failed to start browser: %w", err)
	}
	m.Page = page
	deps.Page = shopslog.NewLoggingPage(page, deps.Logger)
	return deps.Page, nil
}

func (m *Main) openDB(path string) error {
	m.DB = sqlite.NewDB(path)
	if err := m.DB.Open(); err != nil {
		m.DB = nil
		return fmt.Errorf("failed to open database at %q: %w", path, err)
	}
	return nil
}

// seenPerPage sizes the seen set per listing page.
const seenPerPage = 200

func newPage(browser string, headless bool) (shopscrape.Page, error) {
	switch browser {
	case "http":
		return shophttp.NewPage(), nil
	case "playwright":
		p, err := playwright.NewPage(playwright.Options{Headless: headless})
		if err != nil {
			return nil, err
		}
		return p, nil
	default:
		p, err := rod.NewPage(rod.Options{Headless: headless, Incognito: true})
		if err != nil {
			return nil, err
		}
		return p, nil
	}
}

func metadataExtractor(name string) shopscrape.MetadataExtractor {
	switch name {
	case "none":
		return nil
	case "readability":
		return readability.NewMetadataExtractor()
	default:
		return trafilatura.NewMetadataExtractor()
	}
}

func loadProfiles(path string) ([]*shopscrape.SiteProfile, error) {
	if path == "" {
		return yaml.Builtin()
	}
	return yaml.Load(path)
}

func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}
