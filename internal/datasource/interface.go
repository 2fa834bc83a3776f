package datasource

import (
	"context"
	"errors"
	"time"

	"github.com/Pilou89/puck-predictor-pro-sub000/internal/models"
)

// SlateSource defines the interface for fetching the nightly candidate slate
type SlateSource interface {
	// FetchSlate retrieves the latest normalized slate
	FetchSlate(ctx context.Context) (*Slate, error)

	// Name returns the name of the source
	Name() string
}

// SubjectKind distinguishes team subjects from player subjects
type SubjectKind string

const (
	SubjectTeam   SubjectKind = "team"
	SubjectPlayer SubjectKind = "player"
)

// SubjectRecord represents recent performance for one team or player
type SubjectRecord struct {
	SubjectID       string         `json:"subject_id"`
	Kind            SubjectKind    `json:"kind"`
	DisplayName     string         `json:"display_name"`
	Team            string         `json:"team"`                        // Team abbreviation, the subject itself for teams
	RecentGoals     int            `json:"recent_goals"`                // Goals over the recent form window
	PowerPlayGoals  int            `json:"power_play_goals"`            // Power-play goals over the same window
	DuoPartner      string         `json:"duo_partner,omitempty"`       // Subject ID of a tagged scoring partner
	GoalsVsOpponent map[string]int `json:"goals_vs_opponent,omitempty"` // Historical goals keyed by opponent abbreviation
}

// OpponentContext represents schedule and discipline metadata for one team
type OpponentContext struct {
	Team                  string     `json:"team"`
	BackToBack            bool       `json:"back_to_back"`
	LastGameAt            *time.Time `json:"last_game_at,omitempty"`
	PenaltyMinutesPerGame float64    `json:"penalty_minutes_per_game"`
}

// MarketOffer represents a current price for a subject on a match
type MarketOffer struct {
	SubjectID string            `json:"subject_id"`
	MatchName string            `json:"match_name"`
	MatchDate time.Time         `json:"match_date"`
	Market    models.MarketKind `json:"market"`
	Odds      float64           `json:"odds"`
}

// Slate is one night of normalized upstream data
type Slate struct {
	GeneratedAt time.Time         `json:"generated_at"`
	Subjects    []SubjectRecord   `json:"subjects"`
	Opponents   []OpponentContext `json:"opponents"`
	Offers      []MarketOffer     `json:"offers"`
}

// SourceError represents errors from slate source operations
type SourceError struct {
	Source  string // Source name
	Code    string // Error code (e.g., "invalid_data")
	Message string // Error message
	Err     error  // Underlying error
}

func (e SourceError) Error() string {
	if e.Err != nil {
		return e.Source + ": " + e.Code + ": " + e.Message + " (" + e.Err.Error() + ")"
	}
	return e.Source + ": " + e.Code + ": " + e.Message
}

func (e SourceError) Unwrap() error {
	return e.Err
}

// Common error codes
const (
	ErrCodeNotFound     = "not_found"
	ErrCodeInvalidData  = "invalid_data"
	ErrCodeNetworkError = "network_error"
	ErrCodeServerError  = "server_error"
)

var (
	ErrNotFound     = errors.New("slate not found")
	ErrInvalidData  = errors.New("invalid slate format")
	ErrNetworkError = errors.New("network error")
	ErrServerError  = errors.New("server error")
)

// NewSourceError creates a new source error
func NewSourceError(source, code, message string, err error) SourceError {
	return SourceError{
		Source:  source,
		Code:    code,
		Message: message,
		Err:     err,
	}
}
