// Package logger provides audit logging.
package logger

import (
	"time"

	"github.com/sirupsen/logrus"
)

// AuditLogger provides dedicated audit trail logging.
type AuditLogger struct {
	*logrus.Entry
}

// NewAuditLogger creates a new audit logger.
func NewAuditLogger(baseLogger *logrus.Logger) *AuditLogger {
	return &AuditLogger{
		Entry: baseLogger.WithField("component", "audit"),
	}
}

// LogRecommendationIssued logs a recommendation handed to the caller.
func (al *AuditLogger) LogRecommendationIssued(runID string, candidates int, tiers []string, covered bool, hasSystem bool, narrativeSource string, timestamp time.Time) {
	al.WithFields(logrus.Fields{
		"run_id":           runID,
		"candidates":       candidates,
		"tiers":            tiers,
		"is_covered":       covered,
		"has_system":       hasSystem,
		"narrative_source": narrativeSource,
		"timestamp":        timestamp.Unix(),
	}).Info("Recommendation issued")
}

// LogBasketIssued logs the picks and money figures of an issued basket.
func (al *AuditLogger) LogBasketIssued(runID string, picks []string, totalStake, potentialGain, stakeAtRisk string, status string) {
	al.WithFields(logrus.Fields{
		"run_id":         runID,
		"picks":          picks,
		"total_stake":    totalStake,
		"potential_gain": potentialGain,
		"stake_at_risk":  stakeAtRisk,
		"status":         status,
	}).Info("Basket issued")
}

// LogLearningTablePublished logs a new learning snapshot becoming visible to scoring.
func (al *AuditLogger) LogLearningTablePublished(runID string, version uint64, metrics int, timestamp time.Time) {
	al.WithFields(logrus.Fields{
		"run_id":    runID,
		"version":   version,
		"metrics":   metrics,
		"timestamp": timestamp.Unix(),
	}).Info("Learning table published")
}
