package models

import (
	"time"

	"github.com/google/uuid"
)

// BetOutcome represents the settlement state of a historical bet
type BetOutcome string

const (
	OutcomeWon     BetOutcome = "won"
	OutcomeLost    BetOutcome = "lost"
	OutcomeVoid    BetOutcome = "void"
	OutcomePending BetOutcome = "pending"
)

// SettledBet represents a historical bet record owned by the bet store
type SettledBet struct {
	ID            uuid.UUID  `db:"id" json:"id"`
	Stake         float64    `db:"stake" json:"stake" validate:"required,gt=0"`
	ActualGain    float64    `db:"actual_gain" json:"actual_gain"`
	Outcome       BetOutcome `db:"outcome" json:"outcome" validate:"required,oneof=won lost void pending"`
	SelectionText string     `db:"selection_text" json:"selection_text"`
	MatchName     string     `db:"match_name" json:"match_name"`
	BetType       string     `db:"bet_type" json:"bet_type"`
	Notes         string     `db:"notes" json:"notes"`
	SettledAt     time.Time  `db:"settled_at" json:"settled_at"`
}

// IsSettled checks if the bet carries a win or a loss.
// Pending and void bets say nothing about the selection quality.
func (b *SettledBet) IsSettled() bool {
	return b.Outcome == OutcomeWon || b.Outcome == OutcomeLost
}

// IsWin checks if the bet was won
func (b *SettledBet) IsWin() bool {
	return b.Outcome == OutcomeWon
}

// GetROI returns the return on investment percentage.
// A won bet returns its net gain, a lost bet returns minus the stake.
func (b *SettledBet) GetROI() float64 {
	if b.Stake == 0 {
		return 0
	}
	pl := -b.Stake
	if b.IsWin() {
		pl = b.ActualGain
	}
	return (pl / b.Stake) * 100
}
