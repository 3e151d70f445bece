// Package metrics exposes Prometheus instrumentation for catalog syncs.
// Registration is optional: a nil *Metrics is valid everywhere and records
// nothing, so library users who do not scrape pay nothing.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the catalog's Prometheus collectors, labeled by product.
type Metrics struct {
	FilesScanned      *prometheus.CounterVec
	FilesAccepted     *prometheus.CounterVec
	FilesSkipped      *prometheus.CounterVec
	FilesCorrupt      *prometheus.CounterVec
	FilesUnrecognized *prometheus.CounterVec
	DatasetsCreated   *prometheus.CounterVec
	DatasetsUpdated   *prometheus.CounterVec
	SyncDuration      *prometheus.HistogramVec
	SyncRunning       *prometheus.GaugeVec
}

// New creates the collectors and registers them with the given registerer.
// Pass prometheus.DefaultRegisterer for the usual global registry.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		FilesScanned: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "icecat",
			Name:      "files_scanned_total",
			Help:      "Files visited during sync walks.",
		}, []string{"product"}),
		FilesAccepted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "icecat",
			Name:      "files_accepted_total",
			Help:      "Files parsed and attached to a dataset.",
		}, []string{"product"}),
		FilesSkipped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "icecat",
			Name:      "files_skipped_total",
			Help:      "Known files skipped as unchanged.",
		}, []string{"product"}),
		FilesCorrupt: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "icecat",
			Name:      "files_corrupt_total",
			Help:      "Files recorded as corrupt after a parse failure.",
		}, []string{"product"}),
		FilesUnrecognized: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "icecat",
			Name:      "files_unrecognized_total",
			Help:      "Files matching no filename pattern of their product.",
		}, []string{"product"}),
		DatasetsCreated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "icecat",
			Name:      "datasets_created_total",
			Help:      "Dataset records created during sync.",
		}, []string{"product"}),
		DatasetsUpdated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "icecat",
			Name:      "datasets_updated_total",
			Help:      "Dataset records merged into during sync.",
		}, []string{"product"}),
		SyncDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "icecat",
			Name:      "sync_duration_seconds",
			Help:      "Wall time of full sync runs.",
			Buckets:   prometheus.ExponentialBuckets(0.01, 4, 8),
		}, []string{"product"}),
		SyncRunning: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "icecat",
			Name:      "sync_running",
			Help:      "Whether a sync is currently in progress.",
		}, []string{"product"}),
	}
	reg.MustRegister(
		m.FilesScanned, m.FilesAccepted, m.FilesSkipped, m.FilesCorrupt,
		m.FilesUnrecognized, m.DatasetsCreated, m.DatasetsUpdated,
		m.SyncDuration, m.SyncRunning,
	)
	return m
}

// NewForTesting creates collectors on a private registry, so parallel tests
// never collide on the global one.
func NewForTesting() *Metrics {
	return New(prometheus.NewRegistry())
}

// ObserveSync records one finished sync run for a product. Safe on a nil
// receiver.
func (m *Metrics) ObserveSync(product string, d time.Duration) {
	if m == nil {
		return
	}
	m.SyncDuration.WithLabelValues(product).Observe(d.Seconds())
}

// SetRunning flips the in-progress gauge for a product. Safe on a nil
// receiver.
func (m *Metrics) SetRunning(product string, running bool) {
	if m == nil {
		return
	}
	v := 0.0
	if running {
		v = 1
	}
	m.SyncRunning.WithLabelValues(product).Set(v)
}

// Add increments a per-product counter by n. Safe on a nil receiver and a
// nil counter.
func (m *Metrics) Add(c *prometheus.CounterVec, product string, n int) {
	if m == nil || c == nil || n == 0 {
		return
	}
	c.WithLabelValues(product).Add(float64(n))
}
