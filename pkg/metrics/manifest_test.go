package metrics

import (
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestManifestMetricsExportsCountersAndHistogram(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewManifestMetrics(reg)
	m.ObserveBuild(BuildOK, 250*time.Millisecond)
	m.IncBookings(" Viator ", OutcomeIncluded)
	m.IncBookings("viator", OutcomeIncluded)
	m.IncBookings("", OutcomeDropped)
	m.IncCache(CacheHit)

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}

	if got, err := fetchCounterValue(mfs, "manifest_bookings_total", map[string]string{"platform": "viator", "outcome": OutcomeIncluded}); err != nil {
		t.Fatalf("fetch included: %v", err)
	} else if got != 2 {
		t.Fatalf("expected included=2, got %f", got)
	}

	if got, err := fetchCounterValue(mfs, "manifest_bookings_total", map[string]string{"platform": "unknown", "outcome": OutcomeDropped}); err != nil {
		t.Fatalf("fetch dropped: %v", err)
	} else if got != 1 {
		t.Fatalf("expected dropped=1, got %f", got)
	}

	if got, err := fetchCounterValue(mfs, "manifest_cache_requests_total", map[string]string{"result": CacheHit}); err != nil {
		t.Fatalf("fetch cache: %v", err)
	} else if got != 1 {
		t.Fatalf("expected hit=1, got %f", got)
	}

	if got, err := fetchHistogramSum(mfs, "manifest_build_duration_seconds", map[string]string{"outcome": BuildOK}); err != nil {
		t.Fatalf("fetch duration: %v", err)
	} else if got <= 0 {
		t.Fatalf("expected duration sum > 0, got %f", got)
	}
}

func TestManifestMetricsNilSafe(t *testing.T) {
	var m *ManifestMetrics
	m.ObserveBuild(BuildError, time.Second)
	m.IncBookings("airbnb", OutcomeDropped)
	m.IncCache(CacheMiss)

	NewManifestMetrics(nil).IncCache(CacheError)
}

func fetchCounterValue(mfs []*dto.MetricFamily, name string, labels map[string]string) (float64, error) {
	mf := findMetricFamily(mfs, name)
	if mf == nil {
		return 0, fmt.Errorf("metric %q not found", name)
	}
	for _, metric := range mf.GetMetric() {
		if matchesLabels(metric.GetLabel(), labels) {
			return metric.GetCounter().GetValue(), nil
		}
	}
	return 0, fmt.Errorf("metric %q missing labels %v", name, labels)
}

func fetchHistogramSum(mfs []*dto.MetricFamily, name string, labels map[string]string) (float64, error) {
	mf := findMetricFamily(mfs, name)
	if mf == nil {
		return 0, fmt.Errorf("metric %q not found", name)
	}
	for _, metric := range mf.GetMetric() {
		if matchesLabels(metric.GetLabel(), labels) {
			return metric.GetHistogram().GetSampleSum(), nil
		}
	}
	return 0, fmt.Errorf("histogram %q missing labels %v", name, labels)
}

func findMetricFamily(mfs []*dto.MetricFamily, name string) *dto.MetricFamily {
	for _, mf := range mfs {
		if mf.GetName() == name {
			return mf
		}
	}
	return nil
}

func matchesLabels(pairs []*dto.LabelPair, want map[string]string) bool {
	matched := 0
	for _, pair := range pairs {
		if v, ok := want[pair.GetName()]; ok && v == pair.GetValue() {
			matched++
		}
	}
	return matched == len(want)
}
