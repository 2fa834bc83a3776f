package tier

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Pilou89/puck-predictor-pro-sub000/internal/config"
	"github.com/Pilou89/puck-predictor-pro-sub000/internal/models"
)

func newTestClassifier() *Classifier {
	return NewClassifier(config.DefaultEngine().Tiers)
}

func TestClassifyTeamMarket(t *testing.T) {
	c := newTestClassifier()

	tests := []struct {
		name       string
		odds       float64
		confidence int
		want       models.Tier
	}{
		{"safe band", 1.65, 90, models.TierSafe},
		{"safe lower bound", 1.40, 50, models.TierSafe},
		{"safe upper bound", 1.80, 50, models.TierSafe},
		{"just above safe", 1.81, 90, models.TierFun},
		{"fun band", 2.50, 10, models.TierFun},
		{"just below super combo", 4.49, 10, models.TierFun},
		{"super combo bound", 4.50, 99, models.TierSuperCombo},
		{"super combo ignores confidence", 4.60, 98, models.TierSuperCombo},
		{"too short", 1.25, 98, models.TierNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, c.Classify(tt.odds, tt.confidence, models.MarketHeadToHead))
		})
	}
}

func TestClassifyPlayerMarket(t *testing.T) {
	c := newTestClassifier()

	tests := []struct {
		name       string
		odds       float64
		confidence int
		market     models.MarketKind
		want       models.Tier
	}{
		{"high confidence", 2.10, 85, models.MarketGoalScorer, models.TierSafe},
		{"fun band lower bound", 2.10, 70, models.MarketGoalScorer, models.TierFun},
		{"fun band upper", 1.50, 84, models.MarketPoints, models.TierFun},
		{"low confidence", 1.50, 69, models.MarketPoints, models.TierSuperCombo},
		{"long odds override", 4.00, 95, models.MarketGoalScorer, models.TierSuperCombo},
		{"duo market uses player bands", 3.00, 90, models.MarketDuo, models.TierSafe},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, c.Classify(tt.odds, tt.confidence, tt.market))
		})
	}
}

func TestClassifyIsTotalOverOdds(t *testing.T) {
	c := newTestClassifier()
	valid := map[models.Tier]bool{models.TierSafe: true, models.TierFun: true, models.TierSuperCombo: true}

	for cents := 101; cents < 1200; cents++ {
		odds := float64(cents) / 100
		for _, conf := range []int{0, 50, 70, 85, 98} {
			assert.True(t, valid[c.Classify(odds, conf, models.MarketGoalScorer)], "player odds %.2f", odds)
			tier := c.Classify(odds, conf, models.MarketHeadToHead)
			if cents < 140 {
				assert.Equal(t, models.TierNone, tier, "team odds %.2f", odds)
			} else {
				assert.True(t, valid[tier], "team odds %.2f", odds)
			}
		}
	}
}

func TestClassifyCandidateReturnsCopy(t *testing.T) {
	c := newTestClassifier()
	in := models.Candidate{Subject: "EDM", Market: models.MarketHeadToHead, Odds: 1.65, Confidence: 90}

	out := c.ClassifyCandidate(in)

	assert.Equal(t, models.TierSafe, out.Tier)
	assert.Equal(t, models.TierNone, in.Tier)

	all := c.ClassifyAll([]models.Candidate{in, {Subject: "p-1", Market: models.MarketGoalScorer, Odds: 4.6, Confidence: 90}})
	require.Len(t, all, 2)
	assert.Equal(t, models.TierSafe, all[0].Tier)
	assert.Equal(t, models.TierSuperCombo, all[1].Tier)
}

func TestRank(t *testing.T) {
	pool := []models.Candidate{
		{Subject: "a", MatchRef: "m1", Tier: models.TierSafe, Confidence: 80, Odds: 1.70},
		{Subject: "b", MatchRef: "m2", Tier: models.TierSafe, Confidence: 90, Odds: 1.75},
		{Subject: "c", MatchRef: "m3", Tier: models.TierSafe, Confidence: 90, Odds: 1.50},
		{Subject: "d", MatchRef: "m4", Tier: models.TierFun, Confidence: 75, Odds: 2.10},
		{Subject: "e", MatchRef: "m5", Tier: models.TierFun, Confidence: 75, Odds: 2.60},
		{Subject: "f", MatchRef: "m6", Tier: models.TierFun, Confidence: 75, Odds: 2.60},
		{Subject: "g", MatchRef: "m7", Tier: models.TierNone, Confidence: 99, Odds: 1.20},
	}

	subjects := func(cs []models.Candidate) []string {
		out := make([]string, len(cs))
		for i, c := range cs {
			out[i] = c.Subject
		}
		return out
	}

	// equal confidence: shortest price wins for SAFE
	assert.Equal(t, []string{"c", "b", "a"}, subjects(Rank(pool, models.TierSafe)))
	// equal confidence: longest price wins otherwise, then subject
	assert.Equal(t, []string{"e", "f", "d"}, subjects(Rank(pool, models.TierFun)))
	assert.Empty(t, Rank(pool, models.TierSuperCombo))
	assert.Empty(t, Rank(pool, models.TierNone))
}

func TestRankDuo(t *testing.T) {
	pool := []models.Candidate{
		{Subject: "p-1", Tier: models.TierFun, Confidence: 72, Odds: 2.2, Factors: models.RawFactors{DuoPartner: "p-2"}},
		{Subject: "p-2", Tier: models.TierSafe, Confidence: 88, Odds: 1.9, Factors: models.RawFactors{DuoPartner: "p-1"}},
		{Subject: "p-3", Tier: models.TierSafe, Confidence: 95, Odds: 1.6},
		{Subject: "p-4", Tier: models.TierNone, Confidence: 99, Odds: 1.2, Factors: models.RawFactors{DuoPartner: "p-5"}},
	}

	ranked := Rank(pool, models.TierDuo)
	require.Len(t, ranked, 2)
	assert.Equal(t, "p-2", ranked[0].Subject)
	assert.Equal(t, "p-1", ranked[1].Subject)

	assert.True(t, DuoEligible(pool[0]))
	assert.False(t, DuoEligible(pool[2]))
}

func TestRankDoesNotReorderInput(t *testing.T) {
	pool := []models.Candidate{
		{Subject: "a", Tier: models.TierFun, Confidence: 70, Odds: 2.0},
		{Subject: "b", Tier: models.TierFun, Confidence: 80, Odds: 2.0},
	}
	_ = Rank(pool, models.TierFun)
	assert.Equal(t, "a", pool[0].Subject)
}
