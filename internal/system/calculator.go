// Package system computes k-of-n system bet payouts.
package system

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/Pilou89/puck-predictor-pro-sub000/internal/config"
	"github.com/Pilou89/puck-predictor-pro-sub000/internal/models"
)

// minSystemSize is the smallest selection count that forms a system.
const minSystemSize = 2

// Calculator builds system combinations. Gains are recomputed from the
// selection odds on every call.
type Calculator struct {
	maxSelections int
}

// NewCalculator creates a calculator bounded by the configured maximum size.
func NewCalculator(cfg config.SystemConfig) *Calculator {
	return &Calculator{maxSelections: cfg.MaxSelections}
}

// Build returns the k-of-n system over selections with stakePerCombo on
// every combination. Structurally invalid requests are rejected with an
// error wrapping models.ErrInvalidCombination; nothing is clamped.
func (c *Calculator) Build(selections []models.Candidate, k int, stakePerCombo decimal.Decimal) (*models.SystemCombination, error) {
	n := len(selections)
	if err := c.validate(selections, k, stakePerCombo); err != nil {
		return nil, err
	}

	odds := make([]decimal.Decimal, n)
	for i, s := range selections {
		odds[i] = decimal.NewFromFloat(s.Odds)
	}

	count := Binomial(n, k)
	maxGain := decimal.Zero
	for _, combo := range Combinations(n, k) {
		maxGain = maxGain.Add(product(odds, combo))
	}
	maxGain = maxGain.Mul(stakePerCombo)

	kept := make([]models.Candidate, n)
	copy(kept, selections)

	return &models.SystemCombination{
		Selections:        kept,
		RequiredK:         k,
		CombinationCount:  count,
		StakePerCombo:     stakePerCombo,
		TotalStake:        stakePerCombo.Mul(decimal.NewFromInt(count)),
		MinGuaranteedGain: minGuaranteed(odds, k).Mul(stakePerCombo),
		MaxGain:           maxGain,
	}, nil
}

// Restake rebuilds sys with a new stake per combination from the current
// selection odds.
func (c *Calculator) Restake(sys *models.SystemCombination, stakePerCombo decimal.Decimal) (*models.SystemCombination, error) {
	if sys == nil {
		return nil, fmt.Errorf("%w: nil system", models.ErrInvalidCombination)
	}
	return c.Build(sys.Selections, sys.RequiredK, stakePerCombo)
}

func (c *Calculator) validate(selections []models.Candidate, k int, stake decimal.Decimal) error {
	n := len(selections)
	switch {
	case n < minSystemSize:
		return fmt.Errorf("%w: need at least %d selections, got %d", models.ErrInvalidCombination, minSystemSize, n)
	case c.maxSelections > 0 && n > c.maxSelections:
		return fmt.Errorf("%w: at most %d selections, got %d", models.ErrInvalidCombination, c.maxSelections, n)
	case k < 1 || k >= n:
		return fmt.Errorf("%w: required k=%d outside 1..%d", models.ErrInvalidCombination, k, n-1)
	case !stake.IsPositive():
		return fmt.Errorf("%w: stake per combination must be positive, got %s", models.ErrInvalidCombination, stake)
	}
	for _, s := range selections {
		if s.Odds < models.MinOdds {
			return fmt.Errorf("%w: %s has odds %.2f: %v", models.ErrInvalidCombination, s.Label(), s.Odds, models.ErrInvalidOdds)
		}
	}
	return nil
}

func product(odds []decimal.Decimal, combo []int) decimal.Decimal {
	p := decimal.NewFromInt(1)
	for _, i := range combo {
		p = p.Mul(odds[i])
	}
	return p
}

// minGuaranteed is the product of the k shortest prices. With every price
// at least 1 no other k-subset pays less.
func minGuaranteed(odds []decimal.Decimal, k int) decimal.Decimal {
	sorted := make([]decimal.Decimal, len(odds))
	copy(sorted, odds)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].LessThan(sorted[j]) })

	p := decimal.NewFromInt(1)
	for _, o := range sorted[:k] {
		p = p.Mul(o)
	}
	return p
}

// SelectionsFromOdds wraps bare prices as anonymous selections.
func SelectionsFromOdds(odds []float64) []models.Candidate {
	out := make([]models.Candidate, len(odds))
	for i, o := range odds {
		out[i] = models.Candidate{
			Subject:  fmt.Sprintf("selection-%d", i+1),
			MatchRef: fmt.Sprintf("leg-%d", i+1),
			Odds:     o,
		}
	}
	return out
}
