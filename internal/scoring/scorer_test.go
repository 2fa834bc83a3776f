package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/Pilou89/puck-predictor-pro-sub000/internal/config"
	"github.com/Pilou89/puck-predictor-pro-sub000/internal/models"
)

type mockAdjustments struct {
	mock.Mock
}

func (m *mockAdjustments) AdjustmentFor(c models.Candidate) int {
	args := m.Called(c)
	return args.Int(0)
}

func newTestScorer() *Scorer {
	return NewScorer(config.DefaultEngine().Scoring)
}

func TestScoreScenarioB(t *testing.T) {
	s := newTestScorer()
	factors := models.RawFactors{
		OpponentBackToBack:  true,
		RecentGoals:         4,
		PowerPlayGoals:      2,
		OpponentPenaltyRate: 9,
	}

	player := s.Score(models.MarketGoalScorer, 2.40, factors, 0)
	assert.Equal(t, 95, player.Confidence)
	assert.Equal(t, []string{"opponent_back_to_back:+15", "hot_streak:+25", "power_play_synergy:+20"}, player.Tags)

	team := s.Score(models.MarketHeadToHead, 2.40, factors, 0)
	assert.Equal(t, 98, team.Confidence)
}

func TestScoreIndividualFactors(t *testing.T) {
	s := newTestScorer()

	tests := []struct {
		name    string
		market  models.MarketKind
		odds    float64
		factors models.RawFactors
		adjust  int
		want    int
		tags    []string
	}{
		{"nothing fired", models.MarketGoalScorer, 3.0, models.RawFactors{}, 0, 50, nil},
		{"points base", models.MarketPoints, 1.9, models.RawFactors{}, 0, 55, nil},
		{"mid form", models.MarketGoalScorer, 3.0, models.RawFactors{RecentGoals: 2}, 0, 65, []string{"recent_form:+15"}},
		{"single power play", models.MarketGoalScorer, 3.0, models.RawFactors{PowerPlayGoals: 1, OpponentPenaltyRate: 12}, 0, 60, []string{"power_play_threat:+10"}},
		{"power play without discipline edge", models.MarketGoalScorer, 3.0, models.RawFactors{PowerPlayGoals: 3, OpponentPenaltyRate: 7.9}, 0, 60, []string{"power_play_threat:+10"}},
		{"duo", models.MarketDuo, 3.0, models.RawFactors{DuoPartner: "p-29"}, 0, 60, []string{"duo_partnership:+10"}},
		{"price band", models.MarketHeadToHead, 1.65, models.RawFactors{}, 0, 53, []string{"price_band:+3"}},
		{"price band at ceiling", models.MarketHeadToHead, 1.80, models.RawFactors{}, 0, 50, nil},
		{"price band ignored for players", models.MarketGoalScorer, 1.50, models.RawFactors{}, 0, 50, nil},
		{"learning penalty", models.MarketGoalScorer, 3.0, models.RawFactors{}, -20, 30, []string{"learning_adjustment:-20"}},
		{"learning boost", models.MarketHeadToHead, 2.2, models.RawFactors{RecentGoals: 5}, 15, 90, []string{"hot_streak:+25", "learning_adjustment:+15"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := s.Score(tt.market, tt.odds, tt.factors, tt.adjust)
			assert.Equal(t, tt.want, res.Confidence)
			assert.Equal(t, tt.tags, res.Tags)
		})
	}
}

func TestScoreNeverBelowZero(t *testing.T) {
	cfg := config.DefaultEngine().Scoring
	cfg.BaseScore = 5
	s := NewScorer(cfg)

	res := s.Score(models.MarketGoalScorer, 3.0, models.RawFactors{}, -20)
	assert.Equal(t, 0, res.Confidence)
}

func TestScoreBoundedAndMonotonic(t *testing.T) {
	s := newTestScorer()
	markets := []models.MarketKind{models.MarketHeadToHead, models.MarketGoalScorer, models.MarketPoints, models.MarketDuo}

	for _, market := range markets {
		ceiling := s.Ceiling(market)
		for _, b2b := range []bool{false, true} {
			for _, duo := range []string{"", "p-1"} {
				for _, adjust := range []int{-20, 0, 20} {
					prevGoals := -1
					for goals := 0; goals <= 6; goals++ {
						prevPP := -1
						for pp := 0; pp <= 3; pp++ {
							prevRate := -1
							for _, rate := range []float64{0, 4, 8, 12} {
								f := models.RawFactors{OpponentBackToBack: b2b, RecentGoals: goals, PowerPlayGoals: pp, OpponentPenaltyRate: rate, DuoPartner: duo}
								got := s.Score(market, 1.6, f, adjust).Confidence

								assert.GreaterOrEqual(t, got, 0)
								assert.LessOrEqual(t, got, ceiling)
								assert.GreaterOrEqual(t, got, prevRate, "penalty rate must not lower confidence")
								prevRate = got
							}
							f := models.RawFactors{OpponentBackToBack: b2b, RecentGoals: goals, PowerPlayGoals: pp, DuoPartner: duo}
							got := s.Score(market, 1.6, f, adjust).Confidence
							assert.GreaterOrEqual(t, got, prevPP, "power-play goals must not lower confidence")
							prevPP = got
						}
						got := s.Score(market, 1.6, models.RawFactors{OpponentBackToBack: b2b, RecentGoals: goals, DuoPartner: duo}, adjust).Confidence
						assert.GreaterOrEqual(t, got, prevGoals, "recent goals must not lower confidence")
						prevGoals = got
					}

					without := s.Score(market, 1.6, models.RawFactors{DuoPartner: duo}, adjust).Confidence
					with := s.Score(market, 1.6, models.RawFactors{OpponentBackToBack: true, DuoPartner: duo}, adjust).Confidence
					assert.GreaterOrEqual(t, with, without)
				}
			}
		}
	}
}

func TestScoreCandidateUsesAdjustmentSource(t *testing.T) {
	s := newTestScorer()
	c := models.Candidate{
		Subject:  "EDM",
		MatchRef: "EDM vs CGY",
		Market:   models.MarketHeadToHead,
		Odds:     1.70,
		Factors:  models.RawFactors{OpponentBackToBack: true},
	}

	adjustments := &mockAdjustments{}
	adjustments.On("AdjustmentFor", c).Return(-5)

	scored := s.ScoreCandidate(c, adjustments)

	adjustments.AssertExpectations(t)
	assert.Equal(t, 50+15+2-5, scored.Confidence)
	assert.Equal(t, -5, scored.LearningAdjustment)
	assert.Equal(t, []string{"opponent_back_to_back:+15", "price_band:+2", "learning_adjustment:-5"}, scored.ReasoningTags)
	assert.Zero(t, c.Confidence, "input candidate must not be modified")
}

func TestScoreAllWithoutAdjustments(t *testing.T) {
	s := newTestScorer()
	candidates := []models.Candidate{
		{Subject: "a", Market: models.MarketGoalScorer, Odds: 2.5, Factors: models.RawFactors{RecentGoals: 4}},
		{Subject: "b", Market: models.MarketPoints, Odds: 1.9},
	}

	scored := s.ScoreAll(candidates, nil)

	assert.Equal(t, 75, scored[0].Confidence)
	assert.Equal(t, 55, scored[1].Confidence)
	assert.Zero(t, scored[0].LearningAdjustment)
}
