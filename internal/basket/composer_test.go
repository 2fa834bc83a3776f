package basket

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Pilou89/puck-predictor-pro-sub000/internal/config"
	"github.com/Pilou89/puck-predictor-pro-sub000/internal/models"
)

func newTestComposer() *Composer {
	return NewComposer(config.DefaultEngine().Stakes)
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func cand(subject string, t models.Tier, odds float64, confidence int) models.Candidate {
	return models.Candidate{
		Subject:    subject,
		MatchRef:   "EDM vs CGY",
		Market:     models.MarketGoalScorer,
		Odds:       odds,
		Confidence: confidence,
		Tier:       t,
	}
}

func withDuo(c models.Candidate, partner string) models.Candidate {
	c.Factors.DuoPartner = partner
	return c
}

func TestComposeScenarioE(t *testing.T) {
	pool := []models.Candidate{
		cand("safe", models.TierSafe, 1.80, 88),
		cand("fun", models.TierFun, 2.40, 75),
		withDuo(cand("duo", models.TierFun, 3.00, 70), "partner"),
	}

	b := newTestComposer().Compose(pool)

	require.Equal(t, 3, b.Size())
	safe, ok := b.Slot(models.TierSafe)
	require.True(t, ok)
	assert.True(t, dec("1.6").Equal(safe.NetGain))
	assert.True(t, dec("3.6").Equal(safe.PotentialGain))

	duo, ok := b.Slot(models.TierDuo)
	require.True(t, ok)
	assert.Equal(t, "duo", duo.Candidate.Subject)

	_, ok = b.Slot(models.TierSuperCombo)
	assert.False(t, ok)

	assert.True(t, dec("2").Equal(b.StakeAtRisk))
	assert.True(t, dec("4").Equal(b.TotalStake))
	assert.False(t, b.IsCovered)
	assert.Equal(t, models.CoverageNotCovered, b.Status)
}

func TestComposeCovered(t *testing.T) {
	pool := []models.Candidate{
		cand("safe", models.TierSafe, 2.60, 90),
		cand("fun", models.TierFun, 2.40, 75),
		cand("sc", models.TierSuperCombo, 5.00, 40),
	}

	b := newTestComposer().Compose(pool)

	// net 3.2 against 1.0 + 0.5
	assert.True(t, b.IsCovered)
	assert.Equal(t, models.CoverageCovered, b.Status)
	assert.True(t, dec("1.5").Equal(b.StakeAtRisk))
	assert.True(t, dec("3.5").Equal(b.TotalStake))
	// 5.2 + 2.4 + 2.5
	assert.True(t, dec("10.1").Equal(b.TotalPotentialGain))
}

func TestComposeCoverageBoundary(t *testing.T) {
	// net gain exactly equal to the stakes at risk counts as covered
	pool := []models.Candidate{
		cand("safe", models.TierSafe, 1.75, 90),
		cand("sc", models.TierSuperCombo, 5.00, 40),
		cand("fun", models.TierFun, 2.00, 72),
	}
	b := newTestComposer().Compose(pool)
	assert.True(t, b.IsCovered)
}

func TestComposeNoSafeAnchor(t *testing.T) {
	pool := []models.Candidate{
		cand("fun", models.TierFun, 2.40, 75),
		cand("none", models.TierNone, 1.20, 98),
	}

	b := newTestComposer().Compose(pool)

	assert.False(t, b.IsCovered)
	assert.Equal(t, models.CoverageNoSafeAnchor, b.Status)
	assert.Equal(t, 1, b.Size())
	assert.True(t, dec("1").Equal(b.TotalStake))
}

func TestComposeEmptyPool(t *testing.T) {
	b := newTestComposer().Compose(nil)

	assert.Zero(t, b.Size())
	assert.True(t, b.TotalStake.IsZero())
	assert.True(t, b.TotalPotentialGain.IsZero())
	assert.Equal(t, models.CoverageNoSafeAnchor, b.Status)
}

func TestComposeAbsentTierIsNotAZeroSlot(t *testing.T) {
	pool := []models.Candidate{cand("safe", models.TierSafe, 1.50, 90)}
	b := newTestComposer().Compose(pool)

	for _, tr := range []models.Tier{models.TierFun, models.TierSuperCombo, models.TierDuo} {
		_, ok := b.Slots[tr]
		assert.False(t, ok, "tier %s", tr)
	}
	// net 1.0 against nothing at risk
	assert.True(t, b.IsCovered)
	assert.True(t, b.StakeAtRisk.IsZero())
}

func TestComposeDuoSkipsPlacedCandidate(t *testing.T) {
	pool := []models.Candidate{
		withDuo(cand("draisaitl", models.TierSafe, 1.70, 92), "mcdavid"),
		withDuo(cand("mcdavid", models.TierFun, 2.10, 80), "draisaitl"),
		withDuo(cand("hyman", models.TierFun, 2.30, 71), "mcdavid"),
	}

	b := newTestComposer().Compose(pool)

	duo, ok := b.Slot(models.TierDuo)
	require.True(t, ok)
	assert.Equal(t, "hyman", duo.Candidate.Subject)
	assert.Equal(t, models.TierDuo, duo.Tier)
	assert.True(t, dec("1").Equal(duo.Stake))
}

func TestComposeDuoAbsentWhenAllPlaced(t *testing.T) {
	pool := []models.Candidate{
		withDuo(cand("draisaitl", models.TierSafe, 1.70, 92), "mcdavid"),
		cand("fun", models.TierFun, 2.10, 80),
	}

	b := newTestComposer().Compose(pool)
	_, ok := b.Slot(models.TierDuo)
	assert.False(t, ok)
}

func TestComposeIsIdempotent(t *testing.T) {
	pool := []models.Candidate{
		cand("safe-a", models.TierSafe, 1.55, 90),
		cand("safe-b", models.TierSafe, 1.65, 90),
		cand("fun", models.TierFun, 2.40, 75),
		cand("sc", models.TierSuperCombo, 6.00, 30),
		withDuo(cand("duo", models.TierFun, 2.2, 71), "x"),
	}
	c := newTestComposer()

	first := c.Compose(pool)
	second := c.Compose(pool)

	assert.Equal(t, first.IsCovered, second.IsCovered)
	assert.Equal(t, first.TotalStake.String(), second.TotalStake.String())
	assert.Equal(t, first.TotalPotentialGain.String(), second.TotalPotentialGain.String())
	assert.Equal(t, "safe-a", first.Slots[models.TierSafe].Candidate.Subject)
}

func TestFromSlotsScenarioE(t *testing.T) {
	c := newTestComposer()
	b := FromSlots(map[models.Tier]*models.BasketSlot{
		models.TierSafe: c.slot(models.TierSafe, cand("safe", models.TierSafe, 1.80, 90)),
		models.TierDuo:  c.slot(models.TierDuo, cand("duo", models.TierFun, 2.50, 75)),
		models.TierFun:  c.slot(models.TierFun, cand("fun", models.TierFun, 2.10, 72)),
	})

	assert.False(t, b.IsCovered)
	assert.Equal(t, models.CoverageNotCovered, b.Status)
	assert.True(t, dec("2").Equal(b.StakeAtRisk))
}
