package cache

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func counterValue(cv *prometheus.CounterVec, group string) float64 {
	var m dto.Metric
	if err := cv.WithLabelValues(group).Write(&m); err != nil {
		return 0
	}
	return m.GetCounter().GetValue()
}

func histogramCount(hv *prometheus.HistogramVec, group, operation string) uint64 {
	observer, err := hv.GetMetricWithLabelValues(group, operation)
	if err != nil {
		return 0
	}
	var m dto.Metric
	if err := observer.(prometheus.Metric).Write(&m); err != nil {
		return 0
	}
	return m.GetHistogram().GetSampleCount()
}

// withIsolatedOccupancy routes occupancy collectors to a fresh registry for the test.
func withIsolatedOccupancy(t *testing.T) *prometheus.Registry {
	t.Helper()
	reg := prometheus.NewRegistry()
	occupancy.Lock()
	previous := occupancy.registerer
	occupancy.registerer = reg
	occupancy.Unlock()
	t.Cleanup(func() {
		occupancy.Lock()
		occupancy.registerer = previous
		occupancy.Unlock()
	})
	return reg
}

// gaugeFor reads a gauge of the given family for a cache group, or -1 when absent.
func gaugeFor(t *testing.T, reg *prometheus.Registry, family, group string) float64 {
	t.Helper()
	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather: %v", err)
	}
	for _, mf := range families {
		if mf.GetName() != family {
			continue
		}
		for _, m := range mf.GetMetric() {
			for _, label := range m.GetLabel() {
				if label.GetName() == "cache" && label.GetValue() == group {
					return m.GetGauge().GetValue()
				}
			}
		}
	}
	return -1
}

func TestInstrumentedCache_HitsAndMisses(t *testing.T) {
	c, err := New("memory", ProviderConfig{Size: 10, TTL: time.Hour, Group: "test-lookups"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer c.Close()

	hits, misses := counterValue(HitsTotal, "test-lookups"), counterValue(MissesTotal, "test-lookups")

	c.Set("tt0903747:1:2:0", []byte(`{"trackIndex":2}`))
	_, _ = c.Get("tt0903747:1:2:0")
	_, _ = c.Get("tt0903747:1:2:1")
	_, _ = c.Get("tt0903747:1:2:2")

	if got := counterValue(HitsTotal, "test-lookups") - hits; got != 1 {
		t.Errorf("Expected 1 hit, got %.0f", got)
	}
	if got := counterValue(MissesTotal, "test-lookups") - misses; got != 2 {
		t.Errorf("Expected 2 misses, got %.0f", got)
	}
}

func TestInstrumentedCache_OperationDuration(t *testing.T) {
	c, err := New("memory", ProviderConfig{Size: 10, TTL: time.Hour, Group: "test-latency"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer c.Close()

	c.Set("k", []byte("v"))
	_, _ = c.Get("k")
	_, _ = c.Get("k")
	c.Delete("k")

	for op, want := range map[string]uint64{"set": 1, "get": 2, "delete": 1} {
		if got := histogramCount(OperationDuration, "test-latency", op); got != want {
			t.Errorf("Expected %d %s observations, got %d", want, op, got)
		}
	}
}

func TestInstrumentedCache_EvictionsKeepCallerCallback(t *testing.T) {
	var evicted []string
	c, err := New("memory", ProviderConfig{
		Size:    2,
		TTL:     time.Hour,
		Group:   "test-evict",
		OnEvict: func(key string, _ []byte) { evicted = append(evicted, key) },
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer c.Close()

	before := counterValue(EvictionsTotal, "test-evict")
	c.Set("a", []byte("1"))
	c.Set("b", []byte("2"))
	c.Set("c", []byte("3"))

	if got := counterValue(EvictionsTotal, "test-evict") - before; got != 1 {
		t.Errorf("Expected 1 eviction, got %.0f", got)
	}
	if len(evicted) != 1 || evicted[0] != "a" {
		t.Errorf("Expected caller OnEvict for a, got %v", evicted)
	}
}

func TestInstrumentedCache_Occupancy(t *testing.T) {
	reg := withIsolatedOccupancy(t)

	c, err := New("memory", ProviderConfig{Size: 25, TTL: time.Hour, Group: "test-occupancy"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if v := gaugeFor(t, reg, "subtirrent_cache_entries", "test-occupancy"); v != 0 {
		t.Fatalf("Expected 0 entries, got %.0f", v)
	}
	if v := gaugeFor(t, reg, "subtirrent_cache_capacity", "test-occupancy"); v != 25 {
		t.Fatalf("Expected capacity 25, got %.0f", v)
	}

	c.Set("x", []byte("1"))
	c.Set("y", []byte("2"))
	if v := gaugeFor(t, reg, "subtirrent_cache_entries", "test-occupancy"); v != 2 {
		t.Errorf("Expected 2 entries at scrape time, got %.0f", v)
	}

	_ = c.Close()
	if v := gaugeFor(t, reg, "subtirrent_cache_entries", "test-occupancy"); v != -1 {
		t.Errorf("Expected the collector to be gone after Close, got %.0f", v)
	}
}

func TestInstrumentedCache_RecreatingGroupReplacesCollector(t *testing.T) {
	reg := withIsolatedOccupancy(t)

	first, err := New("memory", ProviderConfig{Size: 5, TTL: time.Hour, Group: "test-recreate"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	first.Set("stale", []byte("1"))

	second, err := New("memory", ProviderConfig{Size: 7, TTL: time.Hour, Group: "test-recreate"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer second.Close()

	if v := gaugeFor(t, reg, "subtirrent_cache_entries", "test-recreate"); v != 0 {
		t.Errorf("Expected the new instance to be reported, got %.0f entries", v)
	}
	if v := gaugeFor(t, reg, "subtirrent_cache_capacity", "test-recreate"); v != 7 {
		t.Errorf("Expected capacity 7, got %.0f", v)
	}
}
