package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Pipeline metrics. Outcome labels are "success" or an apperrors.Kind value.
var (
	ResolutionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "subtirrent",
			Name:      "resolutions_total",
			Help:      "Total number of subtitle resolutions by outcome.",
		},
		[]string{"outcome"},
	)

	ResolvedTracksTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "subtirrent",
			Name:      "resolved_tracks_total",
			Help:      "Total number of subtitle tracks returned by resolutions.",
		},
	)

	ExtractionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "subtirrent",
			Name:      "extractions_total",
			Help:      "Total number of subtitle extractions by outcome and format.",
		},
		[]string{"outcome", "format"},
	)

	ProbeDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "subtirrent",
			Name:      "probe_duration_seconds",
			Help:      "Time spent probing remote media for streams.",
			Buckets:   []float64{0.25, 0.5, 1, 2, 5, 10, 20, 40, 60},
		},
	)

	ActiveConversions = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "subtirrent",
			Name:      "active_conversions",
			Help:      "Number of conversion processes currently streaming.",
		},
	)
)

func init() {
	prometheus.MustRegister(
		ResolutionsTotal,
		ResolvedTracksTotal,
		ExtractionsTotal,
		ProbeDuration,
		ActiveConversions,
	)
}
