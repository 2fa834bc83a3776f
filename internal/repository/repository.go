// Package repository provides access to settled bets and the learning table.
package repository

import (
	"context"
	"fmt"

	"github.com/Pilou89/puck-predictor-pro-sub000/internal/config"
	"github.com/Pilou89/puck-predictor-pro-sub000/internal/database"
)

// Repositories holds all repository implementations
type Repositories struct {
	SettledBets     SettledBetRepository
	LearningMetrics LearningMetricRepository
	Store           database.Store
}

// NewRepositories creates the PostgreSQL repository implementations
func NewRepositories(db *database.DB) (*Repositories, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is required")
	}

	return &Repositories{
		SettledBets:     NewPostgresSettledBetRepository(db),
		LearningMetrics: NewPostgresLearningMetricRepository(db),
		Store:           db,
	}, nil
}

// NewSQLiteRepositories creates the SQLite repository implementations
func NewSQLiteRepositories(db *database.SQLiteDB) (*Repositories, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is required")
	}

	return &Repositories{
		SettledBets:     NewSQLiteSettledBetRepository(db),
		LearningMetrics: NewSQLiteLearningMetricRepository(db),
		Store:           db,
	}, nil
}

// Open connects to the configured store and returns its repositories
func Open(ctx context.Context, cfg *config.Config) (*Repositories, error) {
	switch cfg.Database.Driver {
	case "postgres":
		db, err := database.Initialize(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize database: %w", err)
		}
		return NewRepositories(db)
	case "sqlite":
		db, err := database.OpenSQLite(ctx, cfg.Database.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize database: %w", err)
		}
		return NewSQLiteRepositories(db)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Database.Driver)
	}
}

// Close closes the underlying store
func (r *Repositories) Close() error {
	if r.Store == nil {
		return nil
	}
	return r.Store.Close()
}
