// Package logger provides decision engine logging.
package logger

import (
	"github.com/sirupsen/logrus"
)

// EngineLogger provides dedicated logging for scoring, tiering and basket composition.
type EngineLogger struct {
	*logrus.Entry
}

// NewEngineLogger creates a new engine logger.
func NewEngineLogger(baseLogger *logrus.Logger) *EngineLogger {
	return &EngineLogger{
		Entry: baseLogger.WithField("component", "engine"),
	}
}

// LogCandidateScored logs the outcome of scoring one candidate.
func (el *EngineLogger) LogCandidateScored(subject, market, matchRef string, odds float64, confidence int, tier string, tags []string) {
	el.WithFields(logrus.Fields{
		"subject":    subject,
		"market":     market,
		"match_ref":  matchRef,
		"odds":       odds,
		"confidence": confidence,
		"tier":       tier,
		"tags":       tags,
	}).Debug("Candidate scored")
}

// LogDataGap logs an upstream data gap that degraded a factor.
func (el *EngineLogger) LogDataGap(subject, matchRef, reason string) {
	el.WithFields(logrus.Fields{
		"subject":   subject,
		"match_ref": matchRef,
		"reason":    reason,
	}).Warn("Data gap, factor defaulted to no advantage")
}

// LogBasketComposed logs a composed basket.
func (el *EngineLogger) LogBasketComposed(slots int, totalStake, totalPotentialGain, stakeAtRisk string, covered bool, status string) {
	el.WithFields(logrus.Fields{
		"slots":                slots,
		"total_stake":          totalStake,
		"total_potential_gain": totalPotentialGain,
		"stake_at_risk":        stakeAtRisk,
		"is_covered":           covered,
		"status":               status,
	}).Info("Basket composed")
}

// LogSystemBuilt logs a system combination.
func (el *EngineLogger) LogSystemBuilt(n, k int, combinations int64, totalStake, minGain, maxGain string) {
	el.WithFields(logrus.Fields{
		"selections":          n,
		"required_k":          k,
		"combination_count":   combinations,
		"total_stake":         totalStake,
		"min_guaranteed_gain": minGain,
		"max_gain":            maxGain,
	}).Info("System combination built")
}

// LogSystemRejected logs a refused system request.
func (el *EngineLogger) LogSystemRejected(n, k int, reason string) {
	el.WithFields(logrus.Fields{
		"selections": n,
		"required_k": k,
		"reason":     reason,
	}).Warn("System combination rejected")
}
