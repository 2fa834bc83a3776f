// Package tier buckets scored candidates into basket risk tiers.
package tier

import (
	"sort"

	"github.com/Pilou89/puck-predictor-pro-sub000/internal/config"
	"github.com/Pilou89/puck-predictor-pro-sub000/internal/models"
)

// Classifier assigns tiers from odds bands (team markets) or confidence
// bands (player markets).
type Classifier struct {
	cfg config.TierConfig
}

// NewClassifier creates a classifier with the given bands.
func NewClassifier(cfg config.TierConfig) *Classifier {
	return &Classifier{cfg: cfg}
}

// Classify returns the primary tier. Team prices shorter than the SAFE band
// are not proposable and get models.TierNone.
func (c *Classifier) Classify(odds float64, confidence int, market models.MarketKind) models.Tier {
	if market.IsTeamMarket() {
		switch {
		case odds >= c.cfg.SuperComboMinOdds:
			return models.TierSuperCombo
		case odds > c.cfg.SafeMaxOdds:
			return models.TierFun
		case odds >= c.cfg.SafeMinOdds:
			return models.TierSafe
		default:
			return models.TierNone
		}
	}

	switch {
	case odds >= c.cfg.PlayerSuperComboOdds:
		return models.TierSuperCombo
	case confidence >= c.cfg.PlayerSafeConfidence:
		return models.TierSafe
	case confidence >= c.cfg.PlayerFunConfidence:
		return models.TierFun
	default:
		return models.TierSuperCombo
	}
}

// ClassifyCandidate returns a copy of cand with its tier set.
func (c *Classifier) ClassifyCandidate(cand models.Candidate) models.Candidate {
	cand.Tier = c.Classify(cand.Odds, cand.Confidence, cand.Market)
	return cand
}

// ClassifyAll classifies every candidate, keeping the input order.
func (c *Classifier) ClassifyAll(candidates []models.Candidate) []models.Candidate {
	out := make([]models.Candidate, len(candidates))
	for i, cand := range candidates {
		out[i] = c.ClassifyCandidate(cand)
	}
	return out
}

// DuoEligible reports whether cand may fill the DUO slot, whatever its primary tier.
func DuoEligible(cand models.Candidate) bool {
	return cand.IsDuoEligible()
}

// Rank returns the candidates of one tier, best first. For models.TierDuo the
// pool is every duo-eligible candidate with a primary tier.
//
// Order: confidence desc, then odds desc (asc for SAFE), then subject and
// match reference so equal inputs always rank the same way.
func Rank(candidates []models.Candidate, tier models.Tier) []models.Candidate {
	ranked := make([]models.Candidate, 0, len(candidates))
	for _, cand := range candidates {
		if inTier(cand, tier) {
			ranked = append(ranked, cand)
		}
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		if a.Confidence != b.Confidence {
			return a.Confidence > b.Confidence
		}
		if a.Odds != b.Odds {
			if tier == models.TierSafe {
				return a.Odds < b.Odds
			}
			return a.Odds > b.Odds
		}
		if a.Subject != b.Subject {
			return a.Subject < b.Subject
		}
		if a.MatchRef != b.MatchRef {
			return a.MatchRef < b.MatchRef
		}
		return a.Market < b.Market
	})
	return ranked
}

func inTier(cand models.Candidate, tier models.Tier) bool {
	if tier == models.TierDuo {
		return cand.Tier != models.TierNone && DuoEligible(cand)
	}
	return tier != models.TierNone && cand.Tier == tier
}
