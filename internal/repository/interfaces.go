package repository

import (
	"context"
	"time"

	"github.com/Pilou89/puck-predictor-pro-sub000/internal/models"
)

// SettledBetRepository defines read access to the bet history
type SettledBetRepository interface {
	Create(ctx context.Context, bet *models.SettledBet) error
	// GetSettledSince returns non-pending bets settled at or after since, oldest first
	GetSettledSince(ctx context.Context, since time.Time) ([]models.SettledBet, error)
}

// LearningMetricRepository defines the interface for the learning table
type LearningMetricRepository interface {
	// UpsertAll upserts metrics keyed by dimension, stamping them with asOf. Rows are never deleted.
	UpsertAll(ctx context.Context, metrics []*models.LearningMetric, asOf time.Time) error
	GetAll(ctx context.Context) ([]*models.LearningMetric, error)
	GetByKey(ctx context.Context, kind models.DimensionKind, key string) (*models.LearningMetric, error)
}
