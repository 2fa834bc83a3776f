// Package logger provides learning loop logging.
package logger

import (
	"github.com/sirupsen/logrus"
)

// LearningLogger provides dedicated logging for the learning aggregator.
type LearningLogger struct {
	*logrus.Entry
}

// NewLearningLogger creates a new learning logger.
func NewLearningLogger(baseLogger *logrus.Logger) *LearningLogger {
	return &LearningLogger{
		Entry: baseLogger.WithField("component", "learning"),
	}
}

// LogRunCompleted logs a completed learning run.
func (ll *LearningLogger) LogRunCompleted(runID string, betsRead, betsUsed, metricsWritten int, snapshotVersion uint64, durationMs float64) {
	ll.WithFields(logrus.Fields{
		"run_id":           runID,
		"bets_read":        betsRead,
		"bets_used":        betsUsed,
		"metrics_written":  metricsWritten,
		"snapshot_version": snapshotVersion,
		"duration_ms":      durationMs,
	}).Info("Learning run completed")
}

// LogMetricAdjusted logs a dimension whose adjustment is non-zero.
func (ll *LearningLogger) LogMetricAdjusted(kind, key string, wins, total int, averageROI float64, adjustment int) {
	ll.WithFields(logrus.Fields{
		"dimension_kind": kind,
		"dimension_key":  key,
		"wins":           wins,
		"total":          total,
		"average_roi":    averageROI,
		"adjustment":     adjustment,
	}).Debug("Confidence adjustment derived")
}

// LogRunSkipped logs a learning run that did not start.
func (ll *LearningLogger) LogRunSkipped(runID, reason string) {
	ll.WithFields(logrus.Fields{
		"run_id": runID,
		"reason": reason,
	}).Warn("Learning run skipped")
}
