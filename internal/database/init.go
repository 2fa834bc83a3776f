package database

import (
	"context"
	"fmt"
	"io"

	"github.com/Pilou89/puck-predictor-pro-sub000/internal/config"
)

// Store is the connection handle shared by repositories and health checks.
type Store interface {
	Ping(ctx context.Context) error
	io.Closer
}

// Initialize creates a connection pool and ensures the engine tables exist
func Initialize(ctx context.Context, cfg *config.Config) (*DB, error) {
	db, err := NewDB(ctx, &cfg.Database)
	if err != nil {
		return nil, err
	}

	if _, err := db.pool.Exec(ctx, postgresSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return db, nil
}

var (
	_ Store = (*DB)(nil)
	_ Store = (*SQLiteDB)(nil)
)
