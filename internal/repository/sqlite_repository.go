package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Pilou89/puck-predictor-pro-sub000/internal/database"
	"github.com/Pilou89/puck-predictor-pro-sub000/internal/models"
)

// SQLiteSettledBetRepository implements SettledBetRepository for SQLite
type SQLiteSettledBetRepository struct {
	db *database.SQLiteDB
}

// NewSQLiteSettledBetRepository creates a new settled bet repository
func NewSQLiteSettledBetRepository(db *database.SQLiteDB) SettledBetRepository {
	return &SQLiteSettledBetRepository{db: db}
}

// Create inserts a settled bet, assigning an ID when missing
func (r *SQLiteSettledBetRepository) Create(ctx context.Context, bet *models.SettledBet) error {
	if bet.ID == uuid.Nil {
		bet.ID = uuid.New()
	}

	_, err := r.db.Conn().ExecContext(ctx, `
		INSERT INTO settled_bets (id, stake, actual_gain, outcome, selection_text, match_name, bet_type, notes, settled_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, bet.ID.String(), bet.Stake, bet.ActualGain, string(bet.Outcome), bet.SelectionText, bet.MatchName,
		bet.BetType, bet.Notes, bet.SettledAt.UTC())
	if err != nil {
		return fmt.Errorf("failed to create settled bet: %w", err)
	}
	return nil
}

// GetSettledSince retrieves non-pending bets settled at or after since
func (r *SQLiteSettledBetRepository) GetSettledSince(ctx context.Context, since time.Time) ([]models.SettledBet, error) {
	rows, err := r.db.Conn().QueryContext(ctx, `
		SELECT id, stake, actual_gain, outcome, selection_text, match_name, bet_type, notes, settled_at
		FROM settled_bets
		WHERE settled_at >= ? AND outcome <> 'pending'
		ORDER BY settled_at, id
	`, since.UTC())
	if err != nil {
		return nil, fmt.Errorf("failed to query settled bets: %w", err)
	}
	defer rows.Close()

	var bets []models.SettledBet
	for rows.Next() {
		var bet models.SettledBet
		var id, outcome string
		err := rows.Scan(&id, &bet.Stake, &bet.ActualGain, &outcome, &bet.SelectionText, &bet.MatchName,
			&bet.BetType, &bet.Notes, &bet.SettledAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan settled bet: %w", err)
		}
		if bet.ID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("failed to parse settled bet id %q: %w", id, err)
		}
		bet.Outcome = models.BetOutcome(outcome)
		bets = append(bets, bet)
	}

	return bets, rows.Err()
}

// SQLiteLearningMetricRepository implements LearningMetricRepository for SQLite
type SQLiteLearningMetricRepository struct {
	db *database.SQLiteDB
}

// NewSQLiteLearningMetricRepository creates a new learning metric repository
func NewSQLiteLearningMetricRepository(db *database.SQLiteDB) LearningMetricRepository {
	return &SQLiteLearningMetricRepository{db: db}
}

// UpsertAll writes the batch keyed by dimension in one transaction.
// Rows absent from the batch keep their last written values.
func (r *SQLiteLearningMetricRepository) UpsertAll(ctx context.Context, metrics []*models.LearningMetric, asOf time.Time) error {
	return r.db.WithTransaction(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO learning_metrics (dimension_kind, dimension_key, wins, total, cumulative_roi_percent,
			                              confidence_adjustment, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT (dimension_kind, dimension_key) DO UPDATE SET
				wins = excluded.wins,
				total = excluded.total,
				cumulative_roi_percent = excluded.cumulative_roi_percent,
				confidence_adjustment = excluded.confidence_adjustment,
				updated_at = excluded.updated_at
		`)
		if err != nil {
			return fmt.Errorf("failed to prepare upsert: %w", err)
		}
		defer stmt.Close()

		for _, m := range metrics {
			_, err := stmt.ExecContext(ctx, string(m.DimensionKind), m.DimensionKey, m.Wins, m.Total,
				m.CumulativeROIPercent, m.ConfidenceAdjustment, asOf.UTC())
			if err != nil {
				return fmt.Errorf("failed to upsert learning metric %s: %w", m.Key(), err)
			}
		}
		return nil
	})
}

// GetAll retrieves every metric ordered by kind then key
func (r *SQLiteLearningMetricRepository) GetAll(ctx context.Context) ([]*models.LearningMetric, error) {
	rows, err := r.db.Conn().QueryContext(ctx, `
		SELECT dimension_kind, dimension_key, wins, total, cumulative_roi_percent, confidence_adjustment, updated_at
		FROM learning_metrics
		ORDER BY dimension_kind, dimension_key
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query learning metrics: %w", err)
	}
	defer rows.Close()

	var metrics []*models.LearningMetric
	for rows.Next() {
		m, err := scanMetric(rows)
		if err != nil {
			return nil, err
		}
		metrics = append(metrics, m)
	}

	return metrics, rows.Err()
}

// GetByKey retrieves one metric
func (r *SQLiteLearningMetricRepository) GetByKey(ctx context.Context, kind models.DimensionKind, key string) (*models.LearningMetric, error) {
	row := r.db.Conn().QueryRowContext(ctx, `
		SELECT dimension_kind, dimension_key, wins, total, cumulative_roi_percent, confidence_adjustment, updated_at
		FROM learning_metrics
		WHERE dimension_kind = ? AND dimension_key = ?
	`, string(kind), key)

	m, err := scanMetric(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return m, nil
}
