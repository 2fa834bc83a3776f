// Package metrics provides the centralized Prometheus registry for the prediction engine.
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "puck_predictor"

// Global registry instance
var (
	registry *prometheus.Registry
	once     sync.Once
)

// Counter metrics
var (
	CandidatesScoredTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "candidates_scored_total",
		Help:      "Total number of candidates scored",
	})
	TierAssignmentsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "tier_assignments_total",
		Help:      "Total number of tier assignments by tier",
	}, []string{"tier"})
	BasketsComposedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "baskets_composed_total",
		Help:      "Total number of baskets composed by coverage status",
	}, []string{"status"})
	SystemBuildsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "system_builds_total",
		Help:      "Total number of system bet builds by result",
	}, []string{"result"})
	NarrativeRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "narrative_requests_total",
		Help:      "Total number of narrative requests by outcome",
	}, []string{"outcome"})
	DataGapsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "data_gaps_total",
		Help:      "Total number of degraded slate records by warning code",
	}, []string{"code"})
	CircuitBreakerTripsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "circuit_breaker_trips_total",
		Help:      "Total number of circuit breaker trips",
	})
)

// Gauge metrics
var (
	NarrativeCacheHitRatio = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "narrative_cache_hit_ratio",
		Help:      "Narrative cache hit ratio",
	})
)

// Histogram metrics
var (
	ScoringDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "scoring_duration_seconds",
		Help:      "Duration of the scoring and tiering pass in seconds",
		Buckets:   prometheus.DefBuckets,
	})
	RecommendationDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "recommendation_duration_seconds",
		Help:      "Duration of recommendation runs in seconds",
		Buckets:   []float64{0.1, 0.5, 1, 5, 10, 30, 60, 120},
	})
)

// InitRegistry initializes the global Prometheus registry.
func InitRegistry() *prometheus.Registry {
	once.Do(func() {
		registry = prometheus.NewRegistry()

		registry.MustRegister(CandidatesScoredTotal)
		registry.MustRegister(TierAssignmentsTotal)
		registry.MustRegister(BasketsComposedTotal)
		registry.MustRegister(SystemBuildsTotal)
		registry.MustRegister(NarrativeRequestsTotal)
		registry.MustRegister(DataGapsTotal)
		registry.MustRegister(CircuitBreakerTripsTotal)

		registry.MustRegister(NarrativeCacheHitRatio)

		registry.MustRegister(ScoringDuration)
		registry.MustRegister(RecommendationDuration)

		// Register learning metrics
		registry.MustRegister(LearningRunsTotal)
		registry.MustRegister(LearningMetricsCount)
		registry.MustRegister(LearningSnapshotVersion)
		registry.MustRegister(LearningBetsUsed)
		registry.MustRegister(LearningDuration)
	})
	return registry
}

// GetRegistry returns the global Prometheus registry.
func GetRegistry() *prometheus.Registry {
	if registry == nil {
		return InitRegistry()
	}
	return registry
}

// Handler returns the Prometheus HTTP handler.
func Handler() http.Handler {
	return promhttp.HandlerFor(GetRegistry(), promhttp.HandlerOpts{})
}

// RecordScoringPass records a scoring pass over count candidates.
func RecordScoringPass(count int, durationSeconds float64) {
	CandidatesScoredTotal.Add(float64(count))
	ScoringDuration.Observe(durationSeconds)
}

// RecordTierAssignment records one candidate landing in a tier.
func RecordTierAssignment(tier string) {
	if tier == "" {
		tier = "none"
	}
	TierAssignmentsTotal.WithLabelValues(tier).Inc()
}

// RecordBasketComposed records a composed basket by coverage status.
func RecordBasketComposed(status string) {
	BasketsComposedTotal.WithLabelValues(status).Inc()
}

// RecordSystemBuild records a system build, "built" or "rejected".
func RecordSystemBuild(result string) {
	SystemBuildsTotal.WithLabelValues(result).Inc()
}

// RecordNarrativeRequest records a narrative outcome: generated, cached, fallback or error.
func RecordNarrativeRequest(outcome string) {
	NarrativeRequestsTotal.WithLabelValues(outcome).Inc()
}

// RecordDataGap records a degraded slate record.
func RecordDataGap(code string) {
	DataGapsTotal.WithLabelValues(code).Inc()
}

// RecordCircuitBreakerTrip records a circuit breaker trip event.
func RecordCircuitBreakerTrip() {
	CircuitBreakerTripsTotal.Inc()
}

// UpdateNarrativeCacheHitRatio updates the narrative cache hit ratio gauge.
func UpdateNarrativeCacheHitRatio(ratio float64) {
	NarrativeCacheHitRatio.Set(ratio)
}

// RecordRecommendationRun records the duration of a recommendation run.
func RecordRecommendationRun(durationSeconds float64) {
	RecommendationDuration.Observe(durationSeconds)
}
