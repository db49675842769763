package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jonathan/resume-ranker/internal/schemas"
	"github.com/jonathan/resume-ranker/internal/types"
	schemafiles "github.com/jonathan/resume-ranker/schemas"
)

// File names used by FileStore inside its directory.
const (
	JobDescriptionFile = "job_description.txt"
	RankedResultsFile  = "ranked_results.json"
	RunFile            = "ranking_run.json"
)

// FileStore keeps the job description and ranking as files in one
// directory. Concurrent writers are not coordinated; the last write wins.
type FileStore struct {
	dir    string
	logger *zap.Logger
	now    func() time.Time
}

// NewFileStore creates dir if needed and returns a store rooted there.
func NewFileStore(dir string, logger *zap.Logger) (*FileStore, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	return &FileStore{dir: dir, logger: logger, now: time.Now}, nil
}

// Dir returns the directory the store writes to.
func (s *FileStore) Dir() string {
	return s.dir
}

// SaveJobDescription overwrites the stored job description.
func (s *FileStore) SaveJobDescription(_ context.Context, text string) error {
	if err := s.writeFile(JobDescriptionFile, []byte(text)); err != nil {
		return fmt.Errorf("failed to save job description: %w", err)
	}
	s.logger.Debug("saved job description", zap.Int("chars", len(text)))
	return nil
}

// LoadJobDescription reads the stored job description. An empty saved
// description is returned as "", not ErrNoJobDescription.
func (s *FileStore) LoadJobDescription(_ context.Context) (string, error) {
	data, err := os.ReadFile(s.path(JobDescriptionFile))
	if errors.Is(err, os.ErrNotExist) {
		return "", ErrNoJobDescription
	}
	if err != nil {
		return "", fmt.Errorf("failed to read job description: %w", err)
	}
	return string(data), nil
}

// runRecord is the run metadata stored next to the results array, which
// keeps the array format dashboards already read.
type runRecord struct {
	RunID     uuid.UUID `json:"run_id"`
	CreatedAt time.Time `json:"created_at"`
}

// SaveRanking sorts and writes the ranking as an indented JSON array.
func (s *FileStore) SaveRanking(_ context.Context, ranking *Ranking) error {
	Prepare(ranking, s.now())

	data, err := json.MarshalIndent(ranking.Results, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal ranking: %w", err)
	}
	if err := s.writeFile(RankedResultsFile, data); err != nil {
		return fmt.Errorf("failed to save ranking: %w", err)
	}

	meta, err := json.MarshalIndent(runRecord{RunID: ranking.RunID, CreatedAt: ranking.CreatedAt}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal run: %w", err)
	}
	if err := s.writeFile(RunFile, meta); err != nil {
		return fmt.Errorf("failed to save run: %w", err)
	}

	s.logger.Info("saved ranking",
		zap.Stringer("run_id", ranking.RunID),
		zap.Int("results", len(ranking.Results)))
	return nil
}

// LoadRanking reads the stored ranking after validating it against the
// ranking schema.
func (s *FileStore) LoadRanking(_ context.Context) (*Ranking, error) {
	data, err := os.ReadFile(s.path(RankedResultsFile))
	if errors.Is(err, os.ErrNotExist) {
		return PlaceholderRanking(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read ranking: %w", err)
	}

	if err := schemas.ValidateEmbedded(schemafiles.RankedResults, data); err != nil {
		return nil, fmt.Errorf("stored ranking is invalid: %w", err)
	}

	var results []types.ResumeResult
	if err := json.Unmarshal(data, &results); err != nil {
		return nil, fmt.Errorf("failed to parse ranking: %w", err)
	}
	ranking := &Ranking{Results: results}
	if meta, err := os.ReadFile(s.path(RunFile)); err == nil {
		var run runRecord
		if err := json.Unmarshal(meta, &run); err != nil {
			s.logger.Warn("ignoring unreadable run metadata", zap.Error(err))
		} else {
			ranking.RunID, ranking.CreatedAt = run.RunID, run.CreatedAt
		}
	}
	return ranking, nil
}

// Close is a no-op.
func (s *FileStore) Close() error {
	return nil
}

func (s *FileStore) path(name string) string {
	return filepath.Join(s.dir, name)
}

// writeFile replaces name atomically so readers never see a partial file.
func (s *FileStore) writeFile(name string, data []byte) error {
	tmp, err := os.CreateTemp(s.dir, name+".*.tmp")
	if err != nil {
		return err
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmp.Name(), 0644); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), s.path(name))
}
