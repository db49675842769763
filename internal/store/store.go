// Package store persists the current job description and the latest
// ranking. Only one of each is kept; every save replaces the previous one.
package store

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/resume-ranker/internal/types"
)

// ErrNoJobDescription is returned when resumes are ranked before a job
// description has been uploaded.
var ErrNoJobDescription = errors.New("job description not uploaded yet")

// Ranking is one scored batch of resumes.
type Ranking struct {
	RunID     uuid.UUID            `json:"run_id"`
	CreatedAt time.Time            `json:"created_at"`
	Results   []types.ResumeResult `json:"results"`
}

// Store is the persistence contract shared by the file and PostgreSQL
// backends.
type Store interface {
	SaveJobDescription(ctx context.Context, text string) error
	// LoadJobDescription returns ErrNoJobDescription when nothing was saved.
	LoadJobDescription(ctx context.Context) (string, error)
	// SaveRanking orders ranking.Results by final score, highest first, and
	// replaces the stored ranking.
	SaveRanking(ctx context.Context, ranking *Ranking) error
	// LoadRanking returns the stored ranking, or a ranking holding only the
	// placeholder result when nothing was saved.
	LoadRanking(ctx context.Context) (*Ranking, error)
	Close() error
}

// SortResults orders results by final score, highest first. Equal scores
// keep their relative order.
func SortResults(results []types.ResumeResult) {
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].FinalScore > results[j].FinalScore
	})
}

// PlaceholderRanking is what LoadRanking returns before the first save.
func PlaceholderRanking() *Ranking {
	return &Ranking{Results: []types.ResumeResult{types.PlaceholderResult()}}
}

// Prepare assigns a run ID and creation time when missing and sorts the
// results. Backends call it at the start of SaveRanking.
func Prepare(ranking *Ranking, now time.Time) {
	if ranking.RunID == uuid.Nil {
		ranking.RunID = uuid.New()
	}
	if ranking.CreatedAt.IsZero() {
		ranking.CreatedAt = now.UTC()
	}
	if ranking.Results == nil {
		ranking.Results = []types.ResumeResult{}
	}
	SortResults(ranking.Results)
}
