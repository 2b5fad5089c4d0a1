package engine

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Coverage metrics
	CoverageComputations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wifiplan_coverage_computations_total",
			Help: "Total number of coverage grid computations",
		},
		[]string{"band", "access_point"},
	)

	CoverageDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "wifiplan_coverage_duration_seconds",
			Help:    "Time taken to compute a coverage grid",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		},
	)

	CoveragePercent = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "wifiplan_coverage_percent",
			Help: "Usable coverage of the most recent computation",
		},
	)

	// Placement search metrics
	CandidatesEvaluated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wifiplan_search_candidates_evaluated_total",
			Help: "Total number of access point positions scored",
		},
		[]string{"algorithm"},
	)

	SearchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wifiplan_searches_total",
			Help: "Total number of placement searches by outcome",
		},
		[]string{"algorithm", "outcome"},
	)

	SearchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "wifiplan_search_duration_seconds",
			Help:    "Duration of placement searches",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30, 60},
		},
		[]string{"algorithm"},
	)
)

// Search outcomes.
const (
	outcomeFound     = "found"
	outcomeEmpty     = "empty"
	outcomeAbandoned = "abandoned"
)
