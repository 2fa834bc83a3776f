package learning

import (
	"github.com/Pilou89/puck-predictor-pro-sub000/internal/config"
	"github.com/Pilou89/puck-predictor-pro-sub000/internal/models"
)

// Policy holds the learning constants shared by aggregation and lookup.
type Policy struct {
	MinSampleSize        int
	AdjustmentCap        int
	PenaltyRateThreshold float64
}

// PolicyFromConfig extracts the learning policy from the engine configuration.
func PolicyFromConfig(engine config.EngineConfig) Policy {
	return Policy{
		MinSampleSize:        engine.Learning.MinSampleSize,
		AdjustmentCap:        engine.Learning.AdjustmentCap,
		PenaltyRateThreshold: engine.Scoring.PenaltyRateThreshold,
	}
}

// DefaultPolicy returns the policy built from the default engine configuration.
func DefaultPolicy() Policy {
	return PolicyFromConfig(config.DefaultEngine())
}

// Adjustment derives the confidence adjustment of a metric.
// Metrics with fewer than minSample settled bets always get 0.
func Adjustment(m *models.LearningMetric, minSample, limit int) int {
	if m == nil || m.Total < minSample || m.Total == 0 {
		return 0
	}

	var adj int
	switch wr := m.WinRate(); {
	case wr >= 0.70:
		adj = 15
	case wr >= 0.60:
		adj = 10
	case wr >= 0.50:
		adj = 5
	case wr >= 0.40:
		adj = 0
	case wr >= 0.30:
		adj = -5
	default:
		adj = -10
	}

	roi := m.AverageROI()
	if roi > 20 {
		adj += 5
	}
	if roi > 50 {
		adj += 5
	}
	if roi < -20 {
		adj -= 5
	}
	if roi < -50 {
		adj -= 5
	}

	return clamp(adj, -limit, limit)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
