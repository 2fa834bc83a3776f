package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/Pilou89/puck-predictor-pro-sub000/internal/basket"
	"github.com/Pilou89/puck-predictor-pro-sub000/internal/config"
	"github.com/Pilou89/puck-predictor-pro-sub000/internal/datasource"
	"github.com/Pilou89/puck-predictor-pro-sub000/internal/learning"
	"github.com/Pilou89/puck-predictor-pro-sub000/internal/logger"
	"github.com/Pilou89/puck-predictor-pro-sub000/internal/metrics"
	"github.com/Pilou89/puck-predictor-pro-sub000/internal/models"
	"github.com/Pilou89/puck-predictor-pro-sub000/internal/narrative"
	"github.com/Pilou89/puck-predictor-pro-sub000/internal/scoring"
	"github.com/Pilou89/puck-predictor-pro-sub000/internal/signal"
	"github.com/Pilou89/puck-predictor-pro-sub000/internal/system"
	"github.com/Pilou89/puck-predictor-pro-sub000/internal/tier"
)

// SnapshotProvider hands out the learning snapshot a run scores against.
type SnapshotProvider interface {
	Current() *learning.Snapshot
}

// Recommendation is the output of one nightly recommendation run.
type Recommendation struct {
	RunID            uuid.UUID                 `json:"run_id"`
	GeneratedAt      time.Time                 `json:"generated_at"`
	Source           string                    `json:"source"`
	SnapshotVersion  uint64                    `json:"snapshot_version"`
	Candidates       []models.Candidate        `json:"candidates"`
	Basket           *models.Basket            `json:"basket"`
	System           *models.SystemCombination `json:"system,omitempty"`
	Narrative        *narrative.Narrative      `json:"narrative"`
	NarrativeWarning string                    `json:"narrative_warning,omitempty"`
	Warnings         []signal.Warning          `json:"warnings,omitempty"`
}

// Engine groups the pure decision components of a run.
type Engine struct {
	Normalizer *signal.Normalizer
	Scorer     *scoring.Scorer
	Classifier *tier.Classifier
	Composer   *basket.Composer
	Calculator *system.Calculator
}

// RecommendationService runs normalize, score, classify and compose over the
// nightly slate.
type RecommendationService struct {
	source    datasource.SlateSource
	snapshots SnapshotProvider
	engine    Engine
	systemCfg config.SystemConfig
	narrator  narrative.Generator
	logger    *logrus.Logger
	engineLog *logger.EngineLogger
	audit     *logger.AuditLogger
	now       func() time.Time
}

// NewRecommendationService creates a new recommendation service. A nil
// narrator always uses the fallback narrative.
func NewRecommendationService(
	source datasource.SlateSource,
	snapshots SnapshotProvider,
	engine Engine,
	systemCfg config.SystemConfig,
	narrator narrative.Generator,
	log *logrus.Logger,
) *RecommendationService {
	return &RecommendationService{
		source:    source,
		snapshots: snapshots,
		engine:    engine,
		systemCfg: systemCfg,
		narrator:  narrator,
		logger:    log,
		engineLog: logger.NewEngineLogger(log),
		audit:     logger.NewAuditLogger(log),
		now:       time.Now,
	}
}

// Run produces one recommendation. Only a slate that cannot be fetched at all
// fails the run; data gaps and narrative failures degrade it.
func (s *RecommendationService) Run(ctx context.Context) (*Recommendation, error) {
	start := s.now()
	rec := &Recommendation{
		RunID:       uuid.New(),
		GeneratedAt: start.UTC(),
		Source:      s.source.Name(),
	}

	var (
		slate    *datasource.Slate
		snapshot *learning.Snapshot
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		slate, err = s.source.FetchSlate(gctx)
		if err != nil {
			return fmt.Errorf("failed to fetch slate from %s: %w", s.source.Name(), err)
		}
		return nil
	})
	g.Go(func() error {
		snapshot = s.snapshots.Current()
		if snapshot == nil {
			snapshot = learning.NewSnapshot(0, nil, learning.DefaultPolicy())
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	rec.SnapshotVersion = snapshot.Version()

	candidates, warnings := s.engine.Normalizer.Normalize(slate)
	rec.Warnings = warnings
	for _, w := range warnings {
		s.engineLog.LogDataGap(w.Subject, w.MatchRef, w.Code+": "+w.Message)
		metrics.RecordDataGap(w.Code)
	}

	scoreStart := time.Now()
	scored := s.engine.Scorer.ScoreAll(candidates, snapshot)
	classified := s.engine.Classifier.ClassifyAll(scored)
	metrics.RecordScoringPass(len(classified), time.Since(scoreStart).Seconds())

	for _, c := range classified {
		s.engineLog.LogCandidateScored(c.Subject, string(c.Market), c.MatchRef, c.Odds, c.Confidence, string(c.Tier), c.ReasoningTags)
		metrics.RecordTierAssignment(string(c.Tier))
	}
	rec.Candidates = classified

	b := s.engine.Composer.Compose(classified)
	rec.Basket = b
	s.engineLog.LogBasketComposed(b.Size(), b.TotalStake.String(), b.TotalPotentialGain.String(),
		b.StakeAtRisk.String(), b.IsCovered, string(b.Status))
	metrics.RecordBasketComposed(string(b.Status))

	rec.System = s.proposeSystem(classified)

	picked := basketCandidates(b)
	n, err := narrative.Resolve(ctx, s.narrator, picked)
	if err != nil {
		rec.NarrativeWarning = err.Error()
		s.logger.WithError(err).WithField("run_id", rec.RunID).Warn("Narrative generator failed, using fallback")
	}
	rec.Narrative = n

	tiers := make([]string, 0, len(picked))
	for _, c := range picked {
		tiers = append(tiers, string(c.Tier))
	}
	s.audit.LogRecommendationIssued(rec.RunID.String(), len(classified), tiers, b.IsCovered,
		rec.System != nil, n.Source, s.now().UTC())
	s.audit.LogBasketIssued(rec.RunID.String(), basketPicks(b), b.TotalStake.String(),
		b.TotalPotentialGain.String(), b.StakeAtRisk.String(), string(b.Status))
	metrics.RecordRecommendationRun(s.now().Sub(start).Seconds())

	return rec, nil
}

// basketPicks describes each filled slot in composition order.
func basketPicks(b *models.Basket) []string {
	picks := make([]string, 0, b.Size())
	for _, t := range models.BasketTiers {
		if slot, ok := b.Slot(t); ok {
			picks = append(picks, fmt.Sprintf("%s %s @ %.2f", t, slot.Candidate.Label(), slot.Candidate.Odds))
		}
	}
	return picks
}

// proposeSystem builds a k = n-1 system from the best SAFE and FUN selections
// on distinct matches, or returns nil when too few qualify.
func (s *RecommendationService) proposeSystem(candidates []models.Candidate) *models.SystemCombination {
	pool := append(tier.Rank(candidates, models.TierSafe), tier.Rank(candidates, models.TierFun)...)

	matches := make(map[string]bool, len(pool))
	selections := make([]models.Candidate, 0, s.systemCfg.MaxSelections)
	for _, c := range pool {
		if len(selections) == s.systemCfg.MaxSelections {
			break
		}
		if matches[c.MatchRef] {
			continue
		}
		matches[c.MatchRef] = true
		selections = append(selections, c)
	}

	if len(selections) < s.systemCfg.MinSelections {
		s.logger.WithFields(logrus.Fields{
			"qualifying": len(selections),
			"required":   s.systemCfg.MinSelections,
		}).Info("Not enough selections on distinct matches for a system bet")
		metrics.RecordSystemBuild("skipped")
		return nil
	}

	sys, err := s.BuildSystem(selections, len(selections)-1, decimal.NewFromFloat(s.systemCfg.DefaultStakePerCombo))
	if err != nil {
		return nil
	}
	return sys
}

// BuildSystem builds a system combination and records the outcome.
func (s *RecommendationService) BuildSystem(selections []models.Candidate, k int, stakePerCombo decimal.Decimal) (*models.SystemCombination, error) {
	sys, err := s.engine.Calculator.Build(selections, k, stakePerCombo)
	if err != nil {
		s.engineLog.LogSystemRejected(len(selections), k, err.Error())
		metrics.RecordSystemBuild("rejected")
		return nil, err
	}

	s.engineLog.LogSystemBuilt(sys.Size(), sys.RequiredK, sys.CombinationCount,
		sys.TotalStake.String(), sys.MinGuaranteedGain.String(), sys.MaxGain.String())
	metrics.RecordSystemBuild("built")
	return sys, nil
}

// basketCandidates lists the basket selections in slot order.
func basketCandidates(b *models.Basket) []models.Candidate {
	out := make([]models.Candidate, 0, b.Size())
	for _, t := range models.BasketTiers {
		if slot, ok := b.Slot(t); ok {
			c := slot.Candidate
			c.Tier = t
			out = append(out, c)
		}
	}
	return out
}
