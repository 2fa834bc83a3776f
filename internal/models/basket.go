package models

import "github.com/shopspring/decimal"

// CoverageStatus describes how a basket relates to the coverage rule
type CoverageStatus string

const (
	CoverageCovered      CoverageStatus = "covered"
	CoverageNotCovered   CoverageStatus = "not_covered"
	CoverageNoSafeAnchor CoverageStatus = "no_safe_anchor"
)

// BasketSlot represents the selection chosen for one tier
type BasketSlot struct {
	Tier          Tier            `json:"tier"`
	Candidate     Candidate       `json:"candidate"`
	Stake         decimal.Decimal `json:"stake"`
	PotentialGain decimal.Decimal `json:"potential_gain"`
	NetGain       decimal.Decimal `json:"net_gain"`
}

// SystemCombination represents a k-of-n system bet.
// Gains are always derived from the current odds and stake.
type SystemCombination struct {
	Selections        []Candidate     `json:"selections"`
	RequiredK         int             `json:"required_k"`
	CombinationCount  int64           `json:"combination_count"`
	StakePerCombo     decimal.Decimal `json:"stake_per_combo"`
	TotalStake        decimal.Decimal `json:"total_stake"`
	MinGuaranteedGain decimal.Decimal `json:"min_guaranteed_gain"`
	MaxGain           decimal.Decimal `json:"max_gain"`
}

// Size returns the number of selections in the system
func (s *SystemCombination) Size() int {
	return len(s.Selections)
}

// Basket represents one recommendation set.
// A tier without an eligible candidate has no entry in Slots.
type Basket struct {
	Slots              map[Tier]*BasketSlot `json:"slots"`
	TotalStake         decimal.Decimal      `json:"total_stake"`
	TotalPotentialGain decimal.Decimal      `json:"total_potential_gain"`
	StakeAtRisk        decimal.Decimal      `json:"stake_at_risk"`
	IsCovered          bool                 `json:"is_covered"`
	Status             CoverageStatus       `json:"status"`
}

// Slot returns the slot for a tier and whether it is present
func (b *Basket) Slot(tier Tier) (*BasketSlot, bool) {
	slot, ok := b.Slots[tier]
	return slot, ok
}

// Size returns the number of populated tiers
func (b *Basket) Size() int {
	return len(b.Slots)
}
