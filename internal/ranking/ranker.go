// Package ranking scores a batch of resumes against a job description.
package ranking

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/jonathan/resume-ranker/internal/scoring"
	"github.com/jonathan/resume-ranker/internal/store"
	"github.com/jonathan/resume-ranker/internal/types"
)

// DefaultConcurrency is how many resumes are scored at once.
const DefaultConcurrency = 4

// TextExtractor turns an uploaded document into text, returning "" when it
// cannot be read.
type TextExtractor interface {
	Text(doc types.Document) string
}

// SimilarityScorer compares two texts on a 0-100 scale.
type SimilarityScorer interface {
	Score(ctx context.Context, a, b string) float64
}

// MatchPredictor estimates the probability that a resume fits the role.
type MatchPredictor interface {
	MatchProbability(ctx context.Context, text string) (float64, error)
}

// ProgressEvent reports one scored resume.
type ProgressEvent struct {
	Index     int                `json:"index"`
	Completed int                `json:"completed"`
	Total     int                `json:"total"`
	Result    types.ResumeResult `json:"result"`
}

// ProgressCallback receives ProgressEvents. Calls are serialized.
type ProgressCallback func(event ProgressEvent)

// Ranker scores resumes. It is safe for concurrent use.
type Ranker struct {
	extractor   TextExtractor
	similarity  SimilarityScorer
	predictor   MatchPredictor
	fallback    float64
	concurrency int
	logger      *zap.Logger
	now         func() time.Time
}

// Option configures a Ranker.
type Option func(*Ranker)

// WithPredictor sets the match classifier. Without one every resume gets
// the fallback probability.
func WithPredictor(p MatchPredictor) Option {
	return func(r *Ranker) { r.predictor = p }
}

// WithFallbackProbability overrides scoring.DefaultFallbackProbability.
func WithFallbackProbability(p float64) Option {
	return func(r *Ranker) { r.fallback = p }
}

// WithConcurrency bounds how many resumes are scored at once.
func WithConcurrency(n int) Option {
	return func(r *Ranker) {
		if n > 0 {
			r.concurrency = n
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(r *Ranker) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// New creates a Ranker.
func New(extractor TextExtractor, similarity SimilarityScorer, opts ...Option) *Ranker {
	r := &Ranker{
		extractor:   extractor,
		similarity:  similarity,
		fallback:    scoring.DefaultFallbackProbability,
		concurrency: DefaultConcurrency,
		logger:      zap.NewNop(),
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// HasPredictor reports whether a match classifier is configured.
func (r *Ranker) HasPredictor() bool {
	return r.predictor != nil
}

// Probability returns the classifier's match probability for text, or the
// fallback when no classifier is configured or the call fails.
func (r *Ranker) Probability(ctx context.Context, text string) float64 {
	if r.predictor == nil {
		return r.fallback
	}
	p, err := r.predictor.MatchProbability(ctx, text)
	if err != nil {
		r.logger.Warn("match classifier failed, using fallback probability",
			zap.Error(err),
			zap.Float64("fallback", r.fallback))
		return r.fallback
	}
	return p
}

// SubScores measures resumeText against the job description and the fixed
// reference phrases.
func (r *Ranker) SubScores(ctx context.Context, jobDescription, resumeText string) scoring.SubScores {
	return scoring.SubScores{
		Skill:        r.similarity.Score(ctx, jobDescription, resumeText),
		Experience:   r.similarity.Score(ctx, resumeText, scoring.ExperienceReference),
		SoftSkills:   r.similarity.Score(ctx, resumeText, scoring.SoftSkillsReference),
		Adaptability: r.similarity.Score(ctx, resumeText, scoring.AdaptabilityReference),
	}
}

// ScoreText produces the result for one resume whose text is already known.
func (r *Ranker) ScoreText(ctx context.Context, jobDescription, filename, resumeText string) types.ResumeResult {
	sub := r.SubScores(ctx, jobDescription, resumeText)
	return scoring.Result(filename, sub, r.Probability(ctx, resumeText))
}

// Rank scores every document and returns a new ranking whose results are in
// input order. Sorting is left to the store. Per-document failures degrade
// to fallback scores; only context cancellation aborts the batch.
func (r *Ranker) Rank(ctx context.Context, jobDescription string, docs []types.Document, onProgress ProgressCallback) (*store.Ranking, error) {
	ranking := &store.Ranking{
		RunID:     uuid.New(),
		CreatedAt: r.now().UTC(),
		Results:   make([]types.ResumeResult, len(docs)),
	}
	logger := r.logger.With(zap.Stringer("run_id", ranking.RunID))
	logger.Info("ranking resumes", zap.Int("count", len(docs)), zap.Int("concurrency", r.concurrency))

	var (
		mu        sync.Mutex
		completed int
	)

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(r.concurrency)

	for i, doc := range docs {
		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				return err
			}

			text := r.extractor.Text(doc)
			result := r.ScoreText(gCtx, jobDescription, doc.Filename, text)
			ranking.Results[i] = result

			logger.Debug("scored resume",
				zap.String("filename", doc.Filename),
				zap.Int("chars", len(text)),
				zap.Float64("final_score", result.FinalScore),
				zap.String("label", string(result.Label)))

			if onProgress != nil {
				mu.Lock()
				completed++
				onProgress(ProgressEvent{Index: i, Completed: completed, Total: len(docs), Result: result})
				mu.Unlock()
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("ranking aborted: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("ranking aborted: %w", err)
	}
	return ranking, nil
}
