// Package prometheus exposes scraping session events as Prometheus metrics.
package prometheus

import (
	"github.com/fwojciec/shopscrape"
	"github.com/prometheus/client_golang/prometheus"
)

// Ensure Metrics implements shopscrape.Observer at compile time.
var _ shopscrape.Observer = (*Metrics)(nil)

// Metrics bundles the session collectors on a dedicated registry.
type Metrics struct {
	Registry        *prometheus.Registry
	PagesTotal      prometheus.Counter
	ProductsTotal   prometheus.Counter
	DuplicatesTotal prometheus.Counter
	FieldSources    *prometheus.CounterVec
	RetriesTotal    *prometheus.CounterVec
	StopsTotal      *prometheus.CounterVec
}

// NewMetrics constructs and registers all metrics on a dedicated registry.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	pages := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "shopscrape_pages_total",
		Help: "Listing pages scraped.",
	})
	products := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "shopscrape_products_total",
		Help: "Detail pages extracted.",
	})
	duplicates := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "shopscrape_duplicates_total",
		Help: "Candidates skipped because their canonical URL was already seen.",
	})
	sources := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "shopscrape_field_source_total",
		Help: "Extracted fields by the strategy that supplied them.",
	}, []string{"field", "strategy"})
	retries := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "shopscrape_retries_total",
		Help: "Retry attempts by operation.",
	}, []string{"op"})
	stops := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "shopscrape_stops_total",
		Help: "Sessions ended by stop reason.",
	}, []string{"reason"})

	registry.MustRegister(pages, products, duplicates, sources, retries, stops)

	return &Metrics{
		Registry:        registry,
		PagesTotal:      pages,
		ProductsTotal:   products,
		DuplicatesTotal: duplicates,
		FieldSources:    sources,
		RetriesTotal:    retries,
		StopsTotal:      stops,
	}
}

func (m *Metrics) PageScraped(int) {
	m.PagesTotal.Inc()
}

// ProductExtracted counts the product and each field by its source.
// Fields no strategy filled are counted under "none".
func (m *Metrics) ProductExtracted(ext *shopscrape.Extraction) {
	m.ProductsTotal.Inc()
	for _, f := range shopscrape.Fields {
		src, ok := ext.Sources[f]
		if !ok {
			src = "none"
		}
		m.FieldSources.WithLabelValues(string(f), src).Inc()
	}
}

func (m *Metrics) DuplicateSkipped() {
	m.DuplicatesTotal.Inc()
}

func (m *Metrics) Retried(op string) {
	m.RetriesTotal.WithLabelValues(op).Inc()
}

func (m *Metrics) Stopped(reason shopscrape.StopReason) {
	m.StopsTotal.WithLabelValues(string(reason)).Inc()
}

// WriteTextfile writes the current values in the text exposition format,
// for pickup by a node exporter textfile collector.
func (m *Metrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.Registry)
}
