// Package similarity scores how close two texts are on a 0-100 scale.
package similarity

import (
	"context"
	"fmt"
	"math"
	"strings"

	"go.uber.org/zap"
)

// DefaultFallbackScore is returned when the embedder fails, and by the
// token-overlap path when either text has no tokens.
const DefaultFallbackScore = 50.0

// Embedder turns text into a vector.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// BatchEmbedder embeds several texts in one request. Embedders that also
// implement it get both sides of a comparison in a single call.
type BatchEmbedder interface {
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

// Scorer compares texts. With an Embedder it uses cosine similarity of the
// two embeddings; without one it falls back to token Jaccard overlap.
type Scorer struct {
	embedder Embedder
	fallback float64
	logger   *zap.Logger
}

// Option configures a Scorer.
type Option func(*Scorer)

// WithFallback overrides the score returned when embedding fails.
func WithFallback(score float64) Option {
	return func(s *Scorer) { s.fallback = score }
}

// WithLogger attaches a logger for embedding failures.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Scorer) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewScorer builds a Scorer. embedder may be nil.
func NewScorer(embedder Embedder, opts ...Option) *Scorer {
	s := &Scorer{
		embedder: embedder,
		fallback: DefaultFallbackScore,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// UsesEmbeddings reports whether an embedder is configured.
func (s *Scorer) UsesEmbeddings() bool {
	return s.embedder != nil
}

// Score returns the similarity of a and b rounded to two decimals. Embedding
// errors are logged and replaced by the fallback score; they never reach the
// caller. Negative cosine values are passed through.
func (s *Scorer) Score(ctx context.Context, a, b string) float64 {
	if s.embedder == nil {
		return Jaccard(a, b)
	}

	score, err := s.embeddingScore(ctx, a, b)
	if err != nil {
		s.logger.Warn("embedding similarity failed, using fallback",
			zap.Error(err),
			zap.Float64("fallback", s.fallback),
		)
		return s.fallback
	}
	return score
}

func (s *Scorer) embeddingScore(ctx context.Context, a, b string) (float64, error) {
	va, vb, err := s.embedPair(ctx, a, b)
	if err != nil {
		return 0, err
	}
	cos, err := Cosine(va, vb)
	if err != nil {
		return 0, err
	}
	return Round(cos*100, 2), nil
}

func (s *Scorer) embedPair(ctx context.Context, a, b string) ([]float32, []float32, error) {
	if batch, ok := s.embedder.(BatchEmbedder); ok {
		vectors, err := batch.EmbedBatch(ctx, []string{a, b})
		if err != nil {
			return nil, nil, err
		}
		if len(vectors) != 2 {
			return nil, nil, fmt.Errorf("expected 2 embeddings, got %d", len(vectors))
		}
		return vectors[0], vectors[1], nil
	}

	va, err := s.embedder.Embed(ctx, a)
	if err != nil {
		return nil, nil, err
	}
	vb, err := s.embedder.Embed(ctx, b)
	if err != nil {
		return nil, nil, err
	}
	return va, vb, nil
}

// Cosine returns the cosine similarity of two equal-length vectors.
func Cosine(a, b []float32) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("vector length mismatch: %d vs %d", len(a), len(b))
	}

	var dot, normA, normB float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		normA += x * x
		normB += y * y
	}
	if normA == 0 || normB == 0 {
		return 0, fmt.Errorf("zero-length vector")
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB)), nil
}

// Jaccard scores the overlap of the lowercased whitespace-separated tokens
// of a and b, times 100, rounded to two decimals. Either side being empty
// yields DefaultFallbackScore.
func Jaccard(a, b string) float64 {
	setA := tokenSet(a)
	setB := tokenSet(b)
	if len(setA) == 0 || len(setB) == 0 {
		return DefaultFallbackScore
	}

	intersection := 0
	for tok := range setA {
		if setB[tok] {
			intersection++
		}
	}
	union := len(setA) + len(setB) - intersection
	return Round(float64(intersection)/float64(union)*100, 2)
}

func tokenSet(s string) map[string]bool {
	set := make(map[string]bool)
	for _, tok := range strings.Fields(strings.ToLower(s)) {
		set[tok] = true
	}
	return set
}

// Round rounds v to the given number of decimal places, halves away from zero.
func Round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
