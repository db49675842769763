// Package db provides PostgreSQL storage for the job description and the
// latest ranking.
package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/jonathan/resume-ranker/internal/ingestion"
	"github.com/jonathan/resume-ranker/internal/store"
)

// schema is applied by EnsureSchema. Both tables hold a single live row:
// job_descriptions keyed by slot, ranking_runs replaced on every save.
const schema = `
CREATE TABLE IF NOT EXISTS job_descriptions (
	slot        SMALLINT PRIMARY KEY DEFAULT 1 CHECK (slot = 1),
	content     TEXT NOT NULL,
	content_hash TEXT NOT NULL,
	updated_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS ranking_runs (
	id          UUID PRIMARY KEY,
	created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	result_count INTEGER NOT NULL,
	results     JSONB NOT NULL
);
`

// DB wraps a PostgreSQL connection pool
type DB struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
	now    func() time.Time
}

var _ store.Store = (*DB)(nil)

// Connect establishes a connection pool to the database
func Connect(ctx context.Context, databaseURL string, logger *zap.Logger) (*DB, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{pool: pool, logger: logger, now: time.Now}, nil
}

// EnsureSchema creates the tables if they do not exist.
func (db *DB) EnsureSchema(ctx context.Context) error {
	if _, err := db.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}

// Close closes the connection pool
func (db *DB) Close() error {
	if db.pool != nil {
		db.pool.Close()
	}
	return nil
}

// SaveJobDescription replaces the stored job description.
func (db *DB) SaveJobDescription(ctx context.Context, text string) error {
	_, err := db.pool.Exec(ctx,
		`INSERT INTO job_descriptions (slot, content, content_hash, updated_at)
		 VALUES (1, $1, $2, NOW())
		 ON CONFLICT (slot) DO UPDATE SET content = $1, content_hash = $2, updated_at = NOW()`,
		text, ingestion.ContentHash(text),
	)
	if err != nil {
		return fmt.Errorf("failed to save job description: %w", err)
	}
	return nil
}

// LoadJobDescription returns the stored job description.
func (db *DB) LoadJobDescription(ctx context.Context) (string, error) {
	var text string
	err := db.pool.QueryRow(ctx, `SELECT content FROM job_descriptions WHERE slot = 1`).Scan(&text)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", store.ErrNoJobDescription
	}
	if err != nil {
		return "", fmt.Errorf("failed to load job description: %w", err)
	}
	return text, nil
}
