package metrics

import "github.com/prometheus/client_golang/prometheus"

// Learning run metrics
var (
	LearningRunsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "learning_runs_total",
		Help:      "Total number of learning runs by status",
	}, []string{"status"})

	LearningMetricsCount = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "learning_metrics",
		Help:      "Number of metrics in the published learning table",
	})

	LearningSnapshotVersion = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "learning_snapshot_version",
		Help:      "Version of the published learning snapshot",
	})

	LearningBetsUsed = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "learning_bets_used",
		Help:      "Settled bets used by the last learning run",
	})

	LearningDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "learning_duration_seconds",
		Help:      "Duration of learning runs in seconds",
		Buckets:   []float64{0.05, 0.1, 0.5, 1, 5, 10, 30, 60},
	})
)

// RecordLearningRun records a completed learning run.
func RecordLearningRun(metricCount, betsUsed int, version uint64, durationSeconds float64) {
	LearningRunsTotal.WithLabelValues("success").Inc()
	LearningMetricsCount.Set(float64(metricCount))
	LearningBetsUsed.Set(float64(betsUsed))
	LearningSnapshotVersion.Set(float64(version))
	LearningDuration.Observe(durationSeconds)
}

// RecordLearningRunStatus records a run that ended without publishing,
// such as "failed" or "skipped".
func RecordLearningRunStatus(status string) {
	LearningRunsTotal.WithLabelValues(status).Inc()
}
