package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsRegistry(t *testing.T) {
	InitRegistry()
	registry := GetRegistry()

	assert.NotNil(t, registry)
	assert.IsType(t, &prometheus.Registry{}, registry)
	assert.Same(t, registry, InitRegistry())
}

func TestRecordTierAssignment(t *testing.T) {
	InitRegistry()

	before := testutil.ToFloat64(TierAssignmentsTotal.WithLabelValues("SAFE"))
	RecordTierAssignment("SAFE")
	assert.Equal(t, before+1, testutil.ToFloat64(TierAssignmentsTotal.WithLabelValues("SAFE")))

	beforeNone := testutil.ToFloat64(TierAssignmentsTotal.WithLabelValues("none"))
	RecordTierAssignment("")
	assert.Equal(t, beforeNone+1, testutil.ToFloat64(TierAssignmentsTotal.WithLabelValues("none")))
}

func TestRecordScoringPass(t *testing.T) {
	InitRegistry()

	before := testutil.ToFloat64(CandidatesScoredTotal)
	RecordScoringPass(12, 0.02)
	assert.Equal(t, before+12, testutil.ToFloat64(CandidatesScoredTotal))
}

func TestRecordLearningRun(t *testing.T) {
	InitRegistry()

	tests := []struct {
		name    string
		metrics int
		bets    int
		version uint64
	}{
		{name: "first run", metrics: 14, bets: 40, version: 1},
		{name: "empty window", metrics: 0, bets: 0, version: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			RecordLearningRun(tt.metrics, tt.bets, tt.version, 0.3)
			assert.Equal(t, float64(tt.metrics), testutil.ToFloat64(LearningMetricsCount))
			assert.Equal(t, float64(tt.bets), testutil.ToFloat64(LearningBetsUsed))
			assert.Equal(t, float64(tt.version), testutil.ToFloat64(LearningSnapshotVersion))
		})
	}

	before := testutil.ToFloat64(LearningRunsTotal.WithLabelValues("skipped"))
	RecordLearningRunStatus("skipped")
	assert.Equal(t, before+1, testutil.ToFloat64(LearningRunsTotal.WithLabelValues("skipped")))
}

func TestRecordersDoNotPanic(t *testing.T) {
	InitRegistry()

	assert.NotPanics(t, func() {
		RecordBasketComposed("covered")
		RecordSystemBuild("built")
		RecordNarrativeRequest("fallback")
		RecordDataGap("unparsed_match")
		RecordCircuitBreakerTrip()
		UpdateNarrativeCacheHitRatio(0.5)
		RecordRecommendationRun(1.2)
	})
}

func TestHandler(t *testing.T) {
	InitRegistry()
	RecordBasketComposed("no_safe_anchor")

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "puck_predictor_baskets_composed_total"))
}
