package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/jonathan/resume-ranker/internal/store"
	"github.com/jonathan/resume-ranker/internal/types"
)

// SaveRanking sorts the results and replaces the stored ranking inside one
// transaction, so readers see either the old or the new ranking.
func (db *DB) SaveRanking(ctx context.Context, ranking *store.Ranking) error {
	store.Prepare(ranking, db.now())

	payload, err := json.Marshal(ranking.Results)
	if err != nil {
		return fmt.Errorf("failed to marshal ranking: %w", err)
	}

	tx, err := db.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `DELETE FROM ranking_runs`); err != nil {
		return fmt.Errorf("failed to clear previous ranking: %w", err)
	}
	_, err = tx.Exec(ctx,
		`INSERT INTO ranking_runs (id, created_at, result_count, results) VALUES ($1, $2, $3, $4)`,
		ranking.RunID, ranking.CreatedAt, len(ranking.Results), payload,
	)
	if err != nil {
		return fmt.Errorf("failed to insert ranking: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit ranking: %w", err)
	}

	db.logger.Info("saved ranking",
		zap.Stringer("run_id", ranking.RunID),
		zap.Int("results", len(ranking.Results)))
	return nil
}

// LoadRanking returns the stored ranking or the placeholder ranking.
func (db *DB) LoadRanking(ctx context.Context) (*store.Ranking, error) {
	var (
		ranking store.Ranking
		payload []byte
	)
	err := db.pool.QueryRow(ctx,
		`SELECT id, created_at, results FROM ranking_runs ORDER BY created_at DESC LIMIT 1`,
	).Scan(&ranking.RunID, &ranking.CreatedAt, &payload)
	if errors.Is(err, pgx.ErrNoRows) {
		return store.PlaceholderRanking(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load ranking: %w", err)
	}

	var results []types.ResumeResult
	if err := json.Unmarshal(payload, &results); err != nil {
		return nil, fmt.Errorf("failed to parse stored ranking: %w", err)
	}
	ranking.Results = results
	ranking.CreatedAt = ranking.CreatedAt.UTC()
	return &ranking, nil
}
