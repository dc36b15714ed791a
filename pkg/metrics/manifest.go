package metrics

import (
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	OutcomeIncluded = "included"
	OutcomeDropped  = "dropped"

	BuildOK    = "ok"
	BuildError = "error"

	CacheHit   = "hit"
	CacheMiss  = "miss"
	CacheError = "error"
)

// ManifestMetrics records manifest builds. A nil receiver is a no-op.
type ManifestMetrics struct {
	duration *prometheus.HistogramVec
	orders   *prometheus.CounterVec
	cache    *prometheus.CounterVec
}

// NewManifestMetrics registers the manifest metrics on the provided registerer.
func NewManifestMetrics(reg prometheus.Registerer) *ManifestMetrics {
	if reg == nil {
		return &ManifestMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "manifest_build_duration_seconds",
		Help:    "Duration of manifest builds in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"outcome"})
	orders := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "manifest_bookings_total",
		Help: "Bookings seen by manifest builds, by platform and whether they were included.",
	}, []string{"platform", "outcome"})
	cache := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "manifest_cache_requests_total",
		Help: "Manifest cache lookups by result.",
	}, []string{"result"})
	reg.MustRegister(duration, orders, cache)
	return &ManifestMetrics{duration: duration, orders: orders, cache: cache}
}

// ObserveBuild records one build duration.
func (m *ManifestMetrics) ObserveBuild(outcome string, d time.Duration) {
	if m == nil || m.duration == nil {
		return
	}
	m.duration.WithLabelValues(normalizeLabel(outcome)).Observe(d.Seconds())
}

// IncBookings counts one booking for the given platform and outcome.
func (m *ManifestMetrics) IncBookings(platform, outcome string) {
	if m == nil || m.orders == nil {
		return
	}
	m.orders.WithLabelValues(normalizeLabel(strings.ToLower(strings.TrimSpace(platform))), normalizeLabel(outcome)).Inc()
}

// IncCache counts one cache lookup.
func (m *ManifestMetrics) IncCache(result string) {
	if m == nil || m.cache == nil {
		return
	}
	m.cache.WithLabelValues(normalizeLabel(result)).Inc()
}

func normalizeLabel(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}
