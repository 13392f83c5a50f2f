package combination

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// CombinationsGenerated counts combinations produced by Generate.
	CombinationsGenerated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "variant_combinations_generated_total",
			Help: "Total number of product combinations generated",
		},
	)

	// GenerationDuration observes how long one Generate call takes.
	GenerationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "variant_combination_generation_duration_seconds",
			Help:    "Duration of combination generation in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	// StrictRejections counts Generate calls rejected in strict mode.
	StrictRejections = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "variant_combination_strict_rejections_total",
			Help: "Total number of generations rejected by strict validation",
		},
	)
)
