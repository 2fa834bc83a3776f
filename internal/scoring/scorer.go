// Package scoring computes the bounded confidence of a candidate.
package scoring

import (
	"fmt"
	"math"

	"github.com/Pilou89/puck-predictor-pro-sub000/internal/config"
	"github.com/Pilou89/puck-predictor-pro-sub000/internal/models"
)

// Reasoning tags, emitted in evaluation order.
const (
	TagOpponentBackToBack = "opponent_back_to_back"
	TagHotStreak          = "hot_streak"
	TagRecentForm         = "recent_form"
	TagPowerPlaySynergy   = "power_play_synergy"
	TagPowerPlayThreat    = "power_play_threat"
	TagDuoPartnership     = "duo_partnership"
	TagPriceBand          = "price_band"
	TagLearning           = "learning_adjustment"
)

// AdjustmentSource supplies the learned correction for a candidate.
type AdjustmentSource interface {
	AdjustmentFor(c models.Candidate) int
}

// Result is the output of a scoring pass.
type Result struct {
	Confidence int
	Tags       []string
}

// Scorer applies the weighted heuristic configured in ScoringConfig.
// It holds no mutable state and is safe for concurrent use.
type Scorer struct {
	cfg config.ScoringConfig
}

// NewScorer creates a scorer with the given weights.
func NewScorer(cfg config.ScoringConfig) *Scorer {
	return &Scorer{cfg: cfg}
}

// Ceiling returns the highest confidence a market may reach.
func (s *Scorer) Ceiling(market models.MarketKind) int {
	if market.IsTeamMarket() {
		return s.cfg.SimpleMarketCeiling
	}
	return s.cfg.PlayerPropCeiling
}

// Base returns the starting score for a market.
func (s *Scorer) Base(market models.MarketKind) int {
	if market == models.MarketPoints {
		return s.cfg.SimplifiedPlayerBase
	}
	return s.cfg.BaseScore
}

// Score returns a confidence in [0, Ceiling(market)].
// Absent factors contribute nothing; it never fails.
func (s *Scorer) Score(market models.MarketKind, odds float64, f models.RawFactors, learningAdjustment int) Result {
	score := s.Base(market)
	var tags []string

	add := func(tag string, points int) {
		if points == 0 {
			return
		}
		score += points
		tags = append(tags, fmt.Sprintf("%s:%+d", tag, points))
	}

	if f.OpponentBackToBack {
		add(TagOpponentBackToBack, s.cfg.BackToBackBonus)
	}

	switch {
	case f.RecentGoals >= s.cfg.HighGoalThreshold:
		add(TagHotStreak, s.cfg.HighGoalBonus)
	case f.RecentGoals >= s.cfg.MidGoalThreshold:
		add(TagRecentForm, s.cfg.MidGoalBonus)
	}

	switch {
	case f.PowerPlayGoals >= s.cfg.PowerPlaySynergyGoals && f.OpponentPenaltyRate >= s.cfg.PenaltyRateThreshold:
		add(TagPowerPlaySynergy, s.cfg.PowerPlaySynergyBonus)
	case f.PowerPlayGoals >= 1:
		add(TagPowerPlayThreat, s.cfg.PowerPlaySingleBonus)
	}

	if f.HasDuoPartner() {
		add(TagDuoPartnership, s.cfg.DuoBonus)
	}

	if market.IsTeamMarket() && odds <= s.cfg.PriceBandCeiling {
		add(TagPriceBand, int(math.Round((s.cfg.PriceBandCeiling-odds)*s.cfg.PriceBandMultiplier)))
	}

	add(TagLearning, learningAdjustment)

	return Result{
		Confidence: clamp(score, 0, s.Ceiling(market)),
		Tags:       tags,
	}
}

// ScoreCandidate returns a copy of c carrying its confidence, tags and the
// adjustment read from adjustments. A nil source means no learned correction.
func (s *Scorer) ScoreCandidate(c models.Candidate, adjustments AdjustmentSource) models.Candidate {
	adjustment := 0
	if adjustments != nil {
		adjustment = adjustments.AdjustmentFor(c)
	}

	res := s.Score(c.Market, c.Odds, c.Factors, adjustment)

	scored := c
	scored.Confidence = res.Confidence
	scored.ReasoningTags = res.Tags
	scored.LearningAdjustment = adjustment
	return scored
}

// ScoreAll scores every candidate against the same adjustment source.
func (s *Scorer) ScoreAll(candidates []models.Candidate, adjustments AdjustmentSource) []models.Candidate {
	scored := make([]models.Candidate, len(candidates))
	for i, c := range candidates {
		scored[i] = s.ScoreCandidate(c, adjustments)
	}
	return scored
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
