package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Pilou89/puck-predictor-pro-sub000/internal/database"
	"github.com/Pilou89/puck-predictor-pro-sub000/internal/models"
)

// PostgresSettledBetRepository implements SettledBetRepository for PostgreSQL
type PostgresSettledBetRepository struct {
	db *database.DB
}

// NewPostgresSettledBetRepository creates a new settled bet repository
func NewPostgresSettledBetRepository(db *database.DB) SettledBetRepository {
	return &PostgresSettledBetRepository{db: db}
}

// Create inserts a settled bet, assigning an ID when missing
func (r *PostgresSettledBetRepository) Create(ctx context.Context, bet *models.SettledBet) error {
	if bet.ID == uuid.Nil {
		bet.ID = uuid.New()
	}

	query := `
		INSERT INTO settled_bets (id, stake, actual_gain, outcome, selection_text, match_name, bet_type, notes, settled_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.db.GetPool().Exec(ctx, query,
		bet.ID, bet.Stake, bet.ActualGain, string(bet.Outcome), bet.SelectionText, bet.MatchName,
		bet.BetType, bet.Notes, bet.SettledAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to create settled bet: %w", err)
	}

	return nil
}

// GetSettledSince retrieves non-pending bets settled at or after since
func (r *PostgresSettledBetRepository) GetSettledSince(ctx context.Context, since time.Time) ([]models.SettledBet, error) {
	query := `
		SELECT id, stake, actual_gain, outcome, selection_text, match_name, bet_type, notes, settled_at
		FROM settled_bets
		WHERE settled_at >= $1 AND outcome <> 'pending'
		ORDER BY settled_at, id
	`

	rows, err := r.db.GetPool().Query(ctx, query, since.UTC())
	if err != nil {
		return nil, fmt.Errorf("failed to query settled bets: %w", err)
	}
	defer rows.Close()

	var bets []models.SettledBet
	for rows.Next() {
		var bet models.SettledBet
		var outcome string
		err := rows.Scan(
			&bet.ID, &bet.Stake, &bet.ActualGain, &outcome, &bet.SelectionText, &bet.MatchName,
			&bet.BetType, &bet.Notes, &bet.SettledAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan settled bet: %w", err)
		}
		bet.Outcome = models.BetOutcome(outcome)
		bets = append(bets, bet)
	}

	return bets, rows.Err()
}
