package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Pilou89/puck-predictor-pro-sub000/internal/basket"
	"github.com/Pilou89/puck-predictor-pro-sub000/internal/config"
	"github.com/Pilou89/puck-predictor-pro-sub000/internal/datasource"
	"github.com/Pilou89/puck-predictor-pro-sub000/internal/league"
	"github.com/Pilou89/puck-predictor-pro-sub000/internal/learning"
	"github.com/Pilou89/puck-predictor-pro-sub000/internal/logger"
	"github.com/Pilou89/puck-predictor-pro-sub000/internal/models"
	"github.com/Pilou89/puck-predictor-pro-sub000/internal/narrative"
	"github.com/Pilou89/puck-predictor-pro-sub000/internal/scoring"
	"github.com/Pilou89/puck-predictor-pro-sub000/internal/signal"
	"github.com/Pilou89/puck-predictor-pro-sub000/internal/system"
	"github.com/Pilou89/puck-predictor-pro-sub000/internal/tier"
)

var slateDate = time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)

func nightSlate() *datasource.Slate {
	team := func(id string) datasource.SubjectRecord {
		return datasource.SubjectRecord{SubjectID: id, Kind: datasource.SubjectTeam, DisplayName: id, Team: id}
	}
	offer := func(subject, match string, market models.MarketKind, odds float64) datasource.MarketOffer {
		return datasource.MarketOffer{SubjectID: subject, MatchName: match, MatchDate: slateDate, Market: market, Odds: odds}
	}

	const (
		edmCgy = "Edmonton Oilers vs Calgary Flames"
		bosNyr = "Boston Bruins vs New York Rangers"
		torMtl = "Toronto Maple Leafs vs Montreal Canadiens"
		vanSea = "Vancouver Canucks vs Seattle Kraken"
	)

	return &datasource.Slate{
		GeneratedAt: slateDate,
		Subjects: []datasource.SubjectRecord{
			team("EDM"), team("BOS"), team("TOR"), team("VAN"),
			{SubjectID: "p-97", Kind: datasource.SubjectPlayer, DisplayName: "Connor McDavid", Team: "EDM",
				RecentGoals: 3, PowerPlayGoals: 1, DuoPartner: "p-29"},
			{SubjectID: "p-29", Kind: datasource.SubjectPlayer, DisplayName: "Leon Draisaitl", Team: "EDM",
				DuoPartner: "p-97"},
		},
		Opponents: []datasource.OpponentContext{
			{Team: "CGY", BackToBack: true, PenaltyMinutesPerGame: 6},
		},
		Offers: []datasource.MarketOffer{
			offer("EDM", edmCgy, models.MarketHeadToHead, 1.65),
			offer("p-97", edmCgy, models.MarketGoalScorer, 2.10),
			offer("p-29", edmCgy, models.MarketGoalScorer, 2.60),
			offer("BOS", bosNyr, models.MarketHeadToHead, 1.55),
			offer("TOR", torMtl, models.MarketHeadToHead, 2.40),
			offer("VAN", vanSea, models.MarketHeadToHead, 5.00),
		},
	}
}

func newRecommendationFixture(source datasource.SlateSource, narrator narrative.Generator) *RecommendationService {
	engine := config.DefaultEngine()
	return NewRecommendationService(
		source,
		learning.NewSnapshotStore(learning.DefaultPolicy()),
		Engine{
			Normalizer: signal.NewNormalizer(league.NewNHLDirectory(), signal.SuffixResolver{}),
			Scorer:     scoring.NewScorer(engine.Scoring),
			Classifier: tier.NewClassifier(engine.Tiers),
			Composer:   basket.NewComposer(engine.Stakes),
			Calculator: system.NewCalculator(engine.System),
		},
		engine.System,
		narrator,
		testLogger(),
	)
}

func subjects(candidates []models.Candidate) []string {
	out := make([]string, 0, len(candidates))
	for _, c := range candidates {
		out = append(out, c.Subject)
	}
	return out
}

func TestRecommendationServiceRun(t *testing.T) {
	source := new(MockSlateSource)
	source.On("FetchSlate", mock.Anything).Return(nightSlate(), nil)

	svc := newRecommendationFixture(source, nil)
	rec, err := svc.Run(context.Background())
	require.NoError(t, err)

	assert.Len(t, rec.Candidates, 6)
	assert.Equal(t, "mock", rec.Source)
	assert.Equal(t, uint64(0), rec.SnapshotVersion)

	// opponents other than CGY carry no context
	assert.Len(t, rec.Warnings, 3)
	for _, w := range rec.Warnings {
		assert.Equal(t, signal.WarnMissingOpponent, w.Code)
	}

	safe, ok := rec.Basket.Slot(models.TierSafe)
	require.True(t, ok)
	assert.Equal(t, "p-97", safe.Candidate.Subject)
	assert.Equal(t, 95, safe.Candidate.Confidence)

	fun, ok := rec.Basket.Slot(models.TierFun)
	require.True(t, ok)
	assert.Equal(t, "p-29", fun.Candidate.Subject)

	sc, ok := rec.Basket.Slot(models.TierSuperCombo)
	require.True(t, ok)
	assert.Equal(t, "VAN", sc.Candidate.Subject)

	assert.Equal(t, models.CoverageCovered, rec.Basket.Status)
	assert.True(t, rec.Basket.IsCovered)

	require.NotNil(t, rec.System)
	assert.Equal(t, []string{"p-97", "BOS", "TOR"}, subjects(rec.System.Selections))
	assert.Equal(t, 2, rec.System.RequiredK)
	assert.Equal(t, int64(3), rec.System.CombinationCount)
	assert.True(t, rec.System.TotalStake.Equal(decimal.NewFromFloat(1.5)))

	require.NotNil(t, rec.Narrative)
	assert.Equal(t, narrative.SourceFallback, rec.Narrative.Source)
	assert.Len(t, rec.Narrative.Selections, rec.Basket.Size())
	assert.Empty(t, rec.NarrativeWarning)
}

func TestRecommendationServiceAuditsBasket(t *testing.T) {
	source := new(MockSlateSource)
	source.On("FetchSlate", mock.Anything).Return(nightSlate(), nil)

	auditLog, hook := logtest.NewNullLogger()
	svc := newRecommendationFixture(source, nil)
	svc.audit = logger.NewAuditLogger(auditLog)

	rec, err := svc.Run(context.Background())
	require.NoError(t, err)

	var composed map[string]interface{}
	for _, e := range hook.AllEntries() {
		if e.Message == "Basket issued" {
			composed = e.Data
		}
	}
	require.NotNil(t, composed)
	assert.Equal(t, rec.RunID.String(), composed["run_id"])
	assert.Equal(t, rec.Basket.TotalStake.String(), composed["total_stake"])
	assert.Equal(t, string(models.CoverageCovered), composed["status"])

	picks := composed["picks"].([]string)
	require.Len(t, picks, rec.Basket.Size())
	assert.Contains(t, picks[0], "SAFE")
	assert.Contains(t, picks[0], "@ 2.10")
}

func TestRecommendationServiceNarrative(t *testing.T) {
	tests := []struct {
		name        string
		result      *narrative.Narrative
		err         error
		wantSource  string
		wantWarning bool
	}{
		{
			name:       "generator answers",
			result:     &narrative.Narrative{Summary: "Oilers night.", Source: narrative.SourceGenerator},
			wantSource: narrative.SourceGenerator,
		},
		{
			name:        "generator fails",
			err:         models.ErrNarrativeUnavailable,
			wantSource:  narrative.SourceFallback,
			wantWarning: true,
		},
		{
			name:        "generator returns nothing",
			wantSource:  narrative.SourceFallback,
			wantWarning: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			source := new(MockSlateSource)
			source.On("FetchSlate", mock.Anything).Return(nightSlate(), nil)

			gen := new(MockGenerator)
			if tt.result != nil {
				gen.On("Generate", mock.Anything, mock.Anything).Return(tt.result, nil)
			} else {
				gen.On("Generate", mock.Anything, mock.Anything).Return(nil, tt.err)
			}

			rec, err := newRecommendationFixture(source, gen).Run(context.Background())
			require.NoError(t, err)
			assert.Equal(t, tt.wantSource, rec.Narrative.Source)
			assert.Equal(t, tt.wantWarning, rec.NarrativeWarning != "")

			picked := gen.Calls[0].Arguments.Get(1).([]models.Candidate)
			assert.Equal(t, models.TierSafe, picked[0].Tier)
			gen.AssertExpectations(t)
		})
	}
}

func TestRecommendationServiceSlateUnavailable(t *testing.T) {
	source := new(MockSlateSource)
	source.On("FetchSlate", mock.Anything).Return(nil, datasource.ErrNotFound)

	_, err := newRecommendationFixture(source, nil).Run(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, datasource.ErrNotFound))
}

func TestRecommendationServiceNoSystemOnThinSlate(t *testing.T) {
	slate := nightSlate()
	// keep the Oilers match only
	slate.Offers = slate.Offers[:3]

	source := new(MockSlateSource)
	source.On("FetchSlate", mock.Anything).Return(slate, nil)

	rec, err := newRecommendationFixture(source, nil).Run(context.Background())
	require.NoError(t, err)
	assert.Nil(t, rec.System)
	assert.Empty(t, rec.Warnings)
}

func TestRecommendationServiceUsesLearningSnapshot(t *testing.T) {
	source := new(MockSlateSource)
	source.On("FetchSlate", mock.Anything).Return(nightSlate(), nil)

	svc := newRecommendationFixture(source, nil)
	store := svc.snapshots.(*learning.SnapshotStore)
	store.Publish([]*models.LearningMetric{
		{DimensionKind: models.DimensionTeam, DimensionKey: "BOS", Wins: 1, Total: 5, CumulativeROIPercent: -400, ConfidenceAdjustment: -20},
	})

	rec, err := svc.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint64(1), rec.SnapshotVersion)

	for _, c := range rec.Candidates {
		if c.Subject == "BOS" {
			assert.Equal(t, -20, c.LearningAdjustment)
		}
	}
}

func TestBuildSystemRejects(t *testing.T) {
	svc := newRecommendationFixture(new(MockSlateSource), nil)

	_, err := svc.BuildSystem(system.SelectionsFromOdds([]float64{2.0, 2.1}), 3, decimal.NewFromFloat(0.5))
	assert.ErrorIs(t, err, models.ErrInvalidCombination)

	sys, err := svc.BuildSystem(system.SelectionsFromOdds([]float64{1.5, 1.7, 2.0, 2.4}), 2, decimal.NewFromFloat(0.5))
	require.NoError(t, err)
	assert.Equal(t, int64(6), sys.CombinationCount)
}
