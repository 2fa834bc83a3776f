package learning

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/Pilou89/puck-predictor-pro-sub000/internal/models"
)

// Snapshot is an immutable, versioned view of the learning table.
// A scoring run reads a single snapshot from start to finish.
type Snapshot struct {
	version     uint64
	publishedAt time.Time
	policy      Policy
	metrics     map[models.MetricKey]models.LearningMetric
}

// NewSnapshot copies metrics into a new snapshot.
func NewSnapshot(version uint64, metrics []*models.LearningMetric, policy Policy) *Snapshot {
	index := make(map[models.MetricKey]models.LearningMetric, len(metrics))
	for _, m := range metrics {
		if m == nil {
			continue
		}
		index[m.Key()] = *m
	}
	return &Snapshot{
		version:     version,
		publishedAt: time.Now().UTC(),
		policy:      policy,
		metrics:     index,
	}
}

// Version returns the snapshot version, 0 for the empty initial snapshot.
func (s *Snapshot) Version() uint64 {
	return s.version
}

// PublishedAt returns when the snapshot was built.
func (s *Snapshot) PublishedAt() time.Time {
	return s.publishedAt
}

// Len returns the number of metrics in the snapshot.
func (s *Snapshot) Len() int {
	return len(s.metrics)
}

// Metric returns a copy of one metric.
func (s *Snapshot) Metric(kind models.DimensionKind, key string) (models.LearningMetric, bool) {
	m, ok := s.metrics[models.MetricKey{Kind: kind, Key: key}]
	return m, ok
}

// Adjustment returns the stored adjustment of one dimension, 0 when absent.
func (s *Snapshot) Adjustment(kind models.DimensionKind, key string) int {
	m, ok := s.metrics[models.MetricKey{Kind: kind, Key: key}]
	if !ok || m.Total < s.policy.MinSampleSize {
		return 0
	}
	return m.ConfidenceAdjustment
}

// AdjustmentFor sums the market, subject, team and fired context adjustments
// that apply to c, clamped to the policy cap.
func (s *Snapshot) AdjustmentFor(c models.Candidate) int {
	if s == nil || len(s.metrics) == 0 {
		return 0
	}

	total := s.Adjustment(models.DimensionMarket, string(c.Market))

	if !c.Market.IsTeamMarket() {
		name := c.SubjectName
		if name == "" {
			name = c.Subject
		}
		total += s.Adjustment(models.DimensionPlayer, PlayerKey(name))
	}

	team := c.Team
	if team == "" && c.Market.IsTeamMarket() {
		team = c.Subject
	}
	if team != "" {
		total += s.Adjustment(models.DimensionTeam, team)
	}

	if c.Factors.OpponentBackToBack {
		total += s.Adjustment(models.DimensionContext, models.ContextBackToBack)
	}
	if c.Factors.OpponentPenaltyRate >= s.policy.PenaltyRateThreshold && s.policy.PenaltyRateThreshold > 0 {
		total += s.Adjustment(models.DimensionContext, models.ContextHighPenaltyRate)
	}
	if c.Factors.HasDuoPartner() {
		total += s.Adjustment(models.DimensionContext, models.ContextDuoActive)
	}

	return clamp(total, -s.policy.AdjustmentCap, s.policy.AdjustmentCap)
}

// SnapshotStore publishes snapshots to concurrent readers.
// There is a single writer, the learning run, and any number of readers.
type SnapshotStore struct {
	policy  Policy
	current atomic.Pointer[Snapshot]
	mu      sync.Mutex
}

// NewSnapshotStore creates a store holding an empty version 0 snapshot.
func NewSnapshotStore(policy Policy) *SnapshotStore {
	s := &SnapshotStore{policy: policy}
	s.current.Store(NewSnapshot(0, nil, policy))
	return s
}

// Current returns the latest published snapshot. It is never nil.
func (s *SnapshotStore) Current() *Snapshot {
	return s.current.Load()
}

// Publish replaces the current snapshot with one built from metrics.
func (s *SnapshotStore) Publish(metrics []*models.LearningMetric) *Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := NewSnapshot(s.current.Load().Version()+1, metrics, s.policy)
	s.current.Store(next)
	return next
}
