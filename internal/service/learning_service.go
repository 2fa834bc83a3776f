// Package service wires the engine components into the nightly runs.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/Pilou89/puck-predictor-pro-sub000/internal/learning"
	"github.com/Pilou89/puck-predictor-pro-sub000/internal/lock"
	"github.com/Pilou89/puck-predictor-pro-sub000/internal/logger"
	"github.com/Pilou89/puck-predictor-pro-sub000/internal/metrics"
	"github.com/Pilou89/puck-predictor-pro-sub000/internal/models"
	"github.com/Pilou89/puck-predictor-pro-sub000/internal/repository"
)

const learningLockKey = "learning-run"

// LearningRunResult summarizes one learning run.
type LearningRunResult struct {
	RunID           uuid.UUID     `json:"run_id"`
	Skipped         bool          `json:"skipped"`
	BetsRead        int           `json:"bets_read"`
	BetsUsed        int           `json:"bets_used"`
	MetricsWritten  int           `json:"metrics_written"`
	SnapshotVersion uint64        `json:"snapshot_version"`
	Duration        time.Duration `json:"duration"`
}

// LearningService recomputes the learning table from the settled-bet history
// and publishes it to scoring runs.
type LearningService struct {
	bets       repository.SettledBetRepository
	metrics    repository.LearningMetricRepository
	aggregator *learning.Aggregator
	snapshots  *learning.SnapshotStore
	locker     lock.Locker
	lockTTL    time.Duration
	window     time.Duration
	logger     *logrus.Logger
	learnLog   *logger.LearningLogger
	audit      *logger.AuditLogger
	now        func() time.Time
}

// LearningServiceConfig holds the run policy of the learning service.
type LearningServiceConfig struct {
	Window  time.Duration
	LockTTL time.Duration
}

// NewLearningService creates a new learning service. A nil locker runs
// without cross-process exclusion.
func NewLearningService(
	bets repository.SettledBetRepository,
	metricRepo repository.LearningMetricRepository,
	aggregator *learning.Aggregator,
	snapshots *learning.SnapshotStore,
	locker lock.Locker,
	cfg LearningServiceConfig,
	log *logrus.Logger,
) *LearningService {
	if cfg.Window <= 0 {
		cfg.Window = 30 * 24 * time.Hour
	}
	if cfg.LockTTL <= 0 {
		cfg.LockTTL = 10 * time.Minute
	}
	return &LearningService{
		bets:       bets,
		metrics:    metricRepo,
		aggregator: aggregator,
		snapshots:  snapshots,
		locker:     locker,
		lockTTL:    cfg.LockTTL,
		window:     cfg.Window,
		logger:     log,
		learnLog:   logger.NewLearningLogger(log),
		audit:      logger.NewAuditLogger(log),
		now:        time.Now,
	}
}

// Run executes one full learning pass. A run that finds the lock held by
// another process is skipped, not failed.
func (s *LearningService) Run(ctx context.Context) (*LearningRunResult, error) {
	start := s.now()
	result := &LearningRunResult{RunID: uuid.New()}

	if s.locker != nil {
		unlock, err := s.locker.Acquire(ctx, learningLockKey, s.lockTTL)
		if errors.Is(err, models.ErrLockHeld) {
			result.Skipped = true
			s.learnLog.LogRunSkipped(result.RunID.String(), "another learning run holds the lock")
			metrics.RecordLearningRunStatus("skipped")
			return result, nil
		}
		if err != nil {
			metrics.RecordLearningRunStatus("failed")
			return nil, fmt.Errorf("failed to acquire learning lock: %w", err)
		}
		defer unlock()
	}

	since := start.Add(-s.window)
	bets, err := s.bets.GetSettledSince(ctx, since)
	if err != nil {
		metrics.RecordLearningRunStatus("failed")
		return nil, fmt.Errorf("failed to load settled bets: %w", err)
	}

	table, stats := s.aggregator.Aggregate(bets)

	if err := s.metrics.UpsertAll(ctx, table, start.UTC()); err != nil {
		metrics.RecordLearningRunStatus("failed")
		return nil, fmt.Errorf("failed to store learning table: %w", err)
	}

	snapshot := s.snapshots.Publish(table)

	for _, m := range table {
		if m.ConfidenceAdjustment != 0 {
			s.learnLog.LogMetricAdjusted(string(m.DimensionKind), m.DimensionKey, m.Wins, m.Total, m.AverageROI(), m.ConfidenceAdjustment)
		}
	}

	result.BetsRead = stats.BetsRead
	result.BetsUsed = stats.BetsUsed
	result.MetricsWritten = len(table)
	result.SnapshotVersion = snapshot.Version()
	result.Duration = s.now().Sub(start)

	s.learnLog.LogRunCompleted(result.RunID.String(), result.BetsRead, result.BetsUsed, result.MetricsWritten,
		result.SnapshotVersion, float64(result.Duration.Milliseconds()))
	s.audit.LogLearningTablePublished(result.RunID.String(), result.SnapshotVersion, result.MetricsWritten, s.now().UTC())
	metrics.RecordLearningRun(result.MetricsWritten, result.BetsUsed, result.SnapshotVersion, result.Duration.Seconds())

	return result, nil
}

// Warm publishes the stored learning table so that a freshly started process
// scores with the last computed adjustments before its first run. Rows left
// over from dimensions the latest run no longer saw are kept in the store but
// not published.
func (s *LearningService) Warm(ctx context.Context) (*learning.Snapshot, error) {
	stored, err := s.metrics.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load learning table: %w", err)
	}
	table := latestRun(stored)

	snapshot := s.snapshots.Publish(table)
	s.logger.WithFields(logrus.Fields{
		"metrics":          len(table),
		"snapshot_version": snapshot.Version(),
	}).Info("Learning table loaded from store")

	return snapshot, nil
}

// latestRun keeps the rows written by the most recent run.
func latestRun(stored []*models.LearningMetric) []*models.LearningMetric {
	var latest time.Time
	for _, m := range stored {
		if m.UpdatedAt.After(latest) {
			latest = m.UpdatedAt
		}
	}
	out := make([]*models.LearningMetric, 0, len(stored))
	for _, m := range stored {
		if !m.UpdatedAt.Before(latest) {
			out = append(out, m)
		}
	}
	return out
}

// Snapshots returns the store the service publishes to.
func (s *LearningService) Snapshots() *learning.SnapshotStore {
	return s.snapshots
}
