// Package basket composes the nightly recommendation set.
package basket

import (
	"github.com/shopspring/decimal"

	"github.com/Pilou89/puck-predictor-pro-sub000/internal/config"
	"github.com/Pilou89/puck-predictor-pro-sub000/internal/models"
	"github.com/Pilou89/puck-predictor-pro-sub000/internal/tier"
)

// Composer picks one candidate per tier and checks coverage.
type Composer struct {
	stakes map[models.Tier]decimal.Decimal
}

// NewComposer creates a composer with the fixed stake of each tier.
func NewComposer(cfg config.StakeConfig) *Composer {
	return &Composer{
		stakes: map[models.Tier]decimal.Decimal{
			models.TierSafe:       decimal.NewFromFloat(cfg.Safe),
			models.TierDuo:        decimal.NewFromFloat(cfg.Duo),
			models.TierFun:        decimal.NewFromFloat(cfg.Fun),
			models.TierSuperCombo: decimal.NewFromFloat(cfg.SuperCombo),
		},
	}
}

// Stake returns the configured stake of a tier.
func (c *Composer) Stake(t models.Tier) decimal.Decimal {
	return c.stakes[t]
}

// Compose builds a basket from classified candidates. SAFE, FUN and
// SUPER_COMBO take the top ranked candidate of their tier; DUO then takes
// the best duo-eligible candidate not already placed.
func (c *Composer) Compose(candidates []models.Candidate) *models.Basket {
	slots := make(map[models.Tier]*models.BasketSlot, len(models.BasketTiers))
	used := make(map[string]bool, len(models.BasketTiers))

	for _, t := range []models.Tier{models.TierSafe, models.TierFun, models.TierSuperCombo} {
		ranked := tier.Rank(candidates, t)
		if len(ranked) == 0 {
			continue
		}
		slots[t] = c.slot(t, ranked[0])
		used[identity(ranked[0])] = true
	}

	for _, cand := range tier.Rank(candidates, models.TierDuo) {
		if used[identity(cand)] {
			continue
		}
		slots[models.TierDuo] = c.slot(models.TierDuo, cand)
		break
	}

	return FromSlots(slots)
}

func (c *Composer) slot(t models.Tier, cand models.Candidate) *models.BasketSlot {
	stake := c.stakes[t]
	potential := stake.Mul(decimal.NewFromFloat(cand.Odds))
	return &models.BasketSlot{
		Tier:          t,
		Candidate:     cand,
		Stake:         stake,
		PotentialGain: potential,
		NetGain:       potential.Sub(stake),
	}
}

// FromSlots derives totals and coverage from populated slots. Absent tiers
// contribute nothing to any sum.
func FromSlots(slots map[models.Tier]*models.BasketSlot) *models.Basket {
	b := &models.Basket{
		Slots:              make(map[models.Tier]*models.BasketSlot, len(slots)),
		TotalStake:         decimal.Zero,
		TotalPotentialGain: decimal.Zero,
		StakeAtRisk:        decimal.Zero,
	}

	// fixed order keeps the decimal sums identical between runs
	for _, t := range models.BasketTiers {
		s, ok := slots[t]
		if !ok || s == nil {
			continue
		}
		b.Slots[t] = s
		b.TotalStake = b.TotalStake.Add(s.Stake)
		b.TotalPotentialGain = b.TotalPotentialGain.Add(s.PotentialGain)
		if t != models.TierSafe {
			b.StakeAtRisk = b.StakeAtRisk.Add(s.Stake)
		}
	}

	safe, ok := b.Slots[models.TierSafe]
	switch {
	case !ok:
		b.IsCovered = false
		b.Status = models.CoverageNoSafeAnchor
	case safe.NetGain.GreaterThanOrEqual(b.StakeAtRisk):
		b.IsCovered = true
		b.Status = models.CoverageCovered
	default:
		b.IsCovered = false
		b.Status = models.CoverageNotCovered
	}

	return b
}

func identity(c models.Candidate) string {
	return c.Subject + "|" + string(c.Market) + "|" + c.MatchRef
}
