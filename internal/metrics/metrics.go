package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RecommendationRequests counts recommendation requests by outcome:
	// ok, cache_hit, not_found, no_candidates, bad_request, error.
	RecommendationRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dispatch_recommendation_requests_total",
		Help: "Dispatch recommendation requests by outcome.",
	}, []string{"outcome"})

	RecommendationDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "dispatch_recommendation_duration_seconds",
		Help:    "Time spent computing a dispatch recommendation.",
		Buckets: prometheus.DefBuckets,
	})

	// DegradedFactorLookups counts auxiliary lookups that failed and were
	// absorbed into a neutral factor default.
	DegradedFactorLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dispatch_degraded_factor_lookups_total",
		Help: "Factor data lookups that fell back to the neutral default.",
	}, []string{"factor"})

	RecommendedAssignments = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dispatch_recommended_assignments_total",
		Help: "Recommended assignments by assignee type.",
	}, []string{"type"})

	CMMSSyncRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dispatch_cmms_sync_total",
		Help: "External CMMS sync attempts by integration and outcome.",
	}, []string{"integration", "outcome"})
)
