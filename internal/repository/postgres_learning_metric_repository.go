package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/Pilou89/puck-predictor-pro-sub000/internal/database"
	"github.com/Pilou89/puck-predictor-pro-sub000/internal/models"
)

const upsertMetricQuery = `
	INSERT INTO learning_metrics (dimension_kind, dimension_key, wins, total, cumulative_roi_percent,
	                              confidence_adjustment, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7)
	ON CONFLICT (dimension_kind, dimension_key) DO UPDATE SET
		wins = EXCLUDED.wins,
		total = EXCLUDED.total,
		cumulative_roi_percent = EXCLUDED.cumulative_roi_percent,
		confidence_adjustment = EXCLUDED.confidence_adjustment,
		updated_at = EXCLUDED.updated_at
`

// PostgresLearningMetricRepository implements LearningMetricRepository for PostgreSQL
type PostgresLearningMetricRepository struct {
	db *database.DB
}

// NewPostgresLearningMetricRepository creates a new learning metric repository
func NewPostgresLearningMetricRepository(db *database.DB) LearningMetricRepository {
	return &PostgresLearningMetricRepository{db: db}
}

// UpsertAll writes the batch keyed by dimension in one transaction.
// Rows absent from the batch keep their last written values.
func (r *PostgresLearningMetricRepository) UpsertAll(ctx context.Context, metrics []*models.LearningMetric, asOf time.Time) error {
	return r.db.WithTransaction(ctx, func(tx pgx.Tx) error {
		batch := &pgx.Batch{}
		for _, m := range metrics {
			batch.Queue(upsertMetricQuery,
				string(m.DimensionKind), m.DimensionKey, m.Wins, m.Total, m.CumulativeROIPercent,
				m.ConfidenceAdjustment, asOf.UTC(),
			)
		}

		results := tx.SendBatch(ctx, batch)
		for range metrics {
			if _, err := results.Exec(); err != nil {
				results.Close()
				return fmt.Errorf("failed to upsert learning metric: %w", err)
			}
		}
		if err := results.Close(); err != nil {
			return fmt.Errorf("failed to upsert learning metrics: %w", err)
		}
		return nil
	})
}

// GetAll retrieves every metric ordered by kind then key
func (r *PostgresLearningMetricRepository) GetAll(ctx context.Context) ([]*models.LearningMetric, error) {
	query := `
		SELECT dimension_kind, dimension_key, wins, total, cumulative_roi_percent, confidence_adjustment, updated_at
		FROM learning_metrics
		ORDER BY dimension_kind, dimension_key
	`

	rows, err := r.db.GetPool().Query(ctx, query)
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
func (r *PostgresLearningMetricRepository) GetByKey(ctx context.Context, kind models.DimensionKind, key string) (*models.LearningMetric, error) {
	query := `
		SELECT dimension_kind, dimension_key, wins, total, cumulative_roi_percent, confidence_adjustment, updated_at
		FROM learning_metrics
		WHERE dimension_kind = $1 AND dimension_key = $2
	`

	m, err := scanMetric(r.db.GetPool().QueryRow(ctx, query, string(kind), key))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return m, nil
}

// rowScanner is satisfied by pgx.Row, pgx.Rows, *sql.Row and *sql.Rows
type rowScanner interface {
	Scan(dest ...any) error
}

func scanMetric(row rowScanner) (*models.LearningMetric, error) {
	m := &models.LearningMetric{}
	var kind string
	err := row.Scan(&kind, &m.DimensionKey, &m.Wins, &m.Total, &m.CumulativeROIPercent, &m.ConfidenceAdjustment, &m.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to scan learning metric: %w", err)
	}
	m.DimensionKind = models.DimensionKind(kind)
	return m, nil
}
