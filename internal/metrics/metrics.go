// Package metrics exposes Prometheus counters for costing and catalog imports.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "backoffice"

// Costing sources.
const (
	SourceAPI       = "api"
	SourcePreview   = "preview"
	SourcePanel     = "panel"
	SourceDashboard = "dashboard"
	SourceEdit      = "edit"
)

var (
	registry = prometheus.NewRegistry()

	costingSheets = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "costing_sheets_total",
		Help:      "Costing sheets computed, by request source.",
	}, []string{"source"})

	costingDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "costing_duration_seconds",
		Help:      "Time spent loading and pricing a product.",
		Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 12),
	}, []string{"source"})

	importedRows = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "catalog_import_rows_total",
		Help:      "Price sheet rows processed, by outcome.",
	}, []string{"outcome"})
)

func init() {
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		costingSheets,
		costingDuration,
		importedRows,
	)
}

// ObserveCosting records one computed sheet and how long it took since started.
func ObserveCosting(source string, started time.Time) {
	costingSheets.WithLabelValues(source).Inc()
	costingDuration.WithLabelValues(source).Observe(time.Since(started).Seconds())
}

// RecordImport counts the outcome of one price sheet import.
func RecordImport(created, updated, skipped int) {
	importedRows.WithLabelValues("created").Add(float64(created))
	importedRows.WithLabelValues("updated").Add(float64(updated))
	importedRows.WithLabelValues("skipped").Add(float64(skipped))
}

// Handler serves the registry in the Prometheus exposition format.
func Handler() http.Handler {
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
}
