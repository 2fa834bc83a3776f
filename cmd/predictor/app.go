package main

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/Pilou89/puck-predictor-pro-sub000/internal/basket"
	"github.com/Pilou89/puck-predictor-pro-sub000/internal/config"
	"github.com/Pilou89/puck-predictor-pro-sub000/internal/datasource"
	"github.com/Pilou89/puck-predictor-pro-sub000/internal/league"
	"github.com/Pilou89/puck-predictor-pro-sub000/internal/learning"
	"github.com/Pilou89/puck-predictor-pro-sub000/internal/lock"
	"github.com/Pilou89/puck-predictor-pro-sub000/internal/narrative"
	"github.com/Pilou89/puck-predictor-pro-sub000/internal/repository"
	"github.com/Pilou89/puck-predictor-pro-sub000/internal/scoring"
	"github.com/Pilou89/puck-predictor-pro-sub000/internal/service"
	"github.com/Pilou89/puck-predictor-pro-sub000/internal/signal"
	"github.com/Pilou89/puck-predictor-pro-sub000/internal/system"
	"github.com/Pilou89/puck-predictor-pro-sub000/internal/tier"
)

// app holds the wired services of one process.
type app struct {
	repos          *repository.Repositories
	learning       *service.LearningService
	recommendation *service.RecommendationService
	closers        []func() error
	logger         *logrus.Logger
}

func newApp(ctx context.Context, cfg *config.Config, logger *logrus.Logger) (*app, error) {
	a := &app{logger: logger}

	repos, err := repository.Open(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}
	a.repos = repos
	a.closers = append(a.closers, repos.Close)

	locker, closeLocker, err := lock.New(ctx, cfg.Redis)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to create run lock: %w", err)
	}
	a.closers = append(a.closers, closeLocker)

	source, err := datasource.NewSlateSource(cfg.DataSource, logger)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to create slate source: %w", err)
	}

	var narrator narrative.Generator
	if cfg.Narrative.Enabled {
		gen := narrative.NewHTTPGenerator(cfg.Narrative, logger)
		a.closers = append(a.closers, gen.Close)
		narrator = gen
	}

	directory := league.NewNHLDirectory()
	policy := learning.PolicyFromConfig(cfg.Engine)
	snapshots := learning.NewSnapshotStore(policy)

	a.learning = service.NewLearningService(
		repos.SettledBets,
		repos.LearningMetrics,
		learning.NewAggregator(directory, signal.SuffixResolver{}, policy),
		snapshots,
		locker,
		service.LearningServiceConfig{
			Window:  cfg.Engine.Learning.LearningWindow(),
			LockTTL: cfg.Redis.LockTTL(),
		},
		logger,
	)

	a.recommendation = service.NewRecommendationService(
		source,
		snapshots,
		service.Engine{
			Normalizer: signal.NewNormalizer(directory, signal.SuffixResolver{}),
			Scorer:     scoring.NewScorer(cfg.Engine.Scoring),
			Classifier: tier.NewClassifier(cfg.Engine.Tiers),
			Composer:   basket.NewComposer(cfg.Engine.Stakes),
			Calculator: system.NewCalculator(cfg.Engine.System),
		},
		cfg.Engine.System,
		narrator,
		logger,
	)

	return a, nil
}

// Close releases resources in reverse order of acquisition.
func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.logger.WithError(err).Warn("Failed to release resource")
		}
	}
	a.closers = nil
}
