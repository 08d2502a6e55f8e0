package cache

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Cache metrics are labelled with cache=<ProviderConfig.Group>, e.g. "subtitles",
// "locator" or "search".
var (
	HitsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "subtirrent",
			Subsystem: "cache",
			Name:      "hits_total",
			Help:      "Cache lookups that found a live entry.",
		},
		[]string{"cache"},
	)

	MissesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "subtirrent",
			Subsystem: "cache",
			Name:      "misses_total",
			Help:      "Cache lookups that found nothing or an expired entry.",
		},
		[]string{"cache"},
	)

	EvictionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "subtirrent",
			Subsystem: "cache",
			Name:      "evictions_total",
			Help:      "Entries removed by capacity pressure or explicit deletion.",
		},
		[]string{"cache"},
	)

	// OperationDuration is mostly interesting for the redis provider, where every
	// operation is a network round trip.
	OperationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "subtirrent",
			Subsystem: "cache",
			Name:      "operation_duration_seconds",
			Help:      "Latency of cache operations.",
			Buckets:   []float64{.0001, .0005, .001, .005, .01, .05, .1, .5, 1, 2},
		},
		[]string{"cache", "operation"},
	)
)

func init() {
	prometheus.MustRegister(HitsTotal, MissesTotal, EvictionsTotal, OperationDuration)
}

// occupancyCollector reports a group's live entry count and configured capacity at scrape
// time. Reading Len lazily keeps the gauge right for backends that expire entries on
// their own.
type occupancyCollector struct {
	entries  *prometheus.Desc
	capacity *prometheus.Desc
	size     func() int
	max      int
}

func newOccupancyCollector(group string, size func() int, max int) *occupancyCollector {
	labels := prometheus.Labels{"cache": group}
	return &occupancyCollector{
		entries:  prometheus.NewDesc("subtirrent_cache_entries", "Live entries in the cache.", nil, labels),
		capacity: prometheus.NewDesc("subtirrent_cache_capacity", "Maximum entries the cache holds.", nil, labels),
		size:     size,
		max:      max,
	}
}

func (c *occupancyCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.entries
	ch <- c.capacity
}

func (c *occupancyCollector) Collect(ch chan<- prometheus.Metric) {
	ch <- prometheus.MustNewConstMetric(c.entries, prometheus.GaugeValue, float64(c.size()))
	ch <- prometheus.MustNewConstMetric(c.capacity, prometheus.GaugeValue, float64(c.max))
}

// occupancy tracks one collector per group. Re-creating a group (tests, config reloads)
// replaces the previous collector instead of failing registration.
var occupancy = struct {
	sync.Mutex
	registerer prometheus.Registerer
	byGroup    map[string]*occupancyCollector
}{
	registerer: prometheus.DefaultRegisterer,
	byGroup:    make(map[string]*occupancyCollector),
}

func trackOccupancy(group string, size func() int, max int) {
	collector := newOccupancyCollector(group, size, max)

	occupancy.Lock()
	defer occupancy.Unlock()
	if previous, ok := occupancy.byGroup[group]; ok {
		occupancy.registerer.Unregister(previous)
	}
	occupancy.byGroup[group] = collector
	_ = occupancy.registerer.Register(collector)
}

func untrackOccupancy(group string) {
	occupancy.Lock()
	defer occupancy.Unlock()
	if collector, ok := occupancy.byGroup[group]; ok {
		occupancy.registerer.Unregister(collector)
		delete(occupancy.byGroup, group)
	}
}
