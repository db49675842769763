package similarity

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubEmbedder struct {
	vectors map[string][]float32
	err     error
	calls   int
}

func (s *stubEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	v, ok := s.vectors[text]
	if !ok {
		return nil, errors.New("unknown text")
	}
	return v, nil
}

// stubBatchEmbedder answers both sides of a comparison in one call.
type stubBatchEmbedder struct {
	stubEmbedder
	batches int
	short   bool
}

func (s *stubBatchEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	s.batches++
	if s.short {
		return [][]float32{{1, 0}}, nil
	}
	out := make([][]float32, 0, len(texts))
	for _, text := range texts {
		v, err := s.stubEmbedder.Embed(ctx, text)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func TestJaccard(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want float64
	}{
		{"identical", "go python sql", "go python sql", 100.0},
		{"case insensitive", "Go Python", "go PYTHON", 100.0},
		{"disjoint", "go python", "java rust", 0.0},
		{"partial", "go python sql", "go java", 25.0},
		{"one empty", "", "go python", 50.0},
		{"whitespace only", "   \n\t", "go", 50.0},
		{"both empty", "", "", 50.0},
		{"repeated tokens count once", "go go go", "go", 100.0},
		{"thirds round", "a b c", "a", 33.33},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Jaccard(tt.a, tt.b), 1e-9)
		})
	}
}

func TestCosine(t *testing.T) {
	cos, err := Cosine([]float32{1, 0}, []float32{1, 0})
	require.NoError(t, err)
	assert.InDelta(t, 1.0, cos, 1e-9)

	cos, err = Cosine([]float32{1, 0}, []float32{0, 1})
	require.NoError(t, err)
	assert.InDelta(t, 0.0, cos, 1e-9)

	cos, err = Cosine([]float32{1, 0}, []float32{-1, 0})
	require.NoError(t, err)
	assert.InDelta(t, -1.0, cos, 1e-9)

	_, err = Cosine([]float32{1, 0}, []float32{1})
	assert.Error(t, err)

	_, err = Cosine([]float32{0, 0}, []float32{1, 0})
	assert.Error(t, err)
}

func TestScorer_WithoutEmbedderUsesJaccard(t *testing.T) {
	s := NewScorer(nil)
	assert.False(t, s.UsesEmbeddings())
	assert.InDelta(t, 100.0, s.Score(context.Background(), "a b", "b a"), 1e-9)
	assert.InDelta(t, 50.0, s.Score(context.Background(), "", "b a"), 1e-9)
}

func TestScorer_EmbeddingScore(t *testing.T) {
	emb := &stubEmbedder{vectors: map[string][]float32{
		"resume": {3, 4},
		"job":    {4, 3},
		"other":  {-3, -4},
	}}
	s := NewScorer(emb)

	assert.True(t, s.UsesEmbeddings())
	// cos = 24/25
	assert.InDelta(t, 96.0, s.Score(context.Background(), "resume", "job"), 1e-9)
	assert.InDelta(t, -100.0, s.Score(context.Background(), "resume", "other"), 1e-9)
	assert.Equal(t, 4, emb.calls)
}

func TestScorer_EmbeddingFailureReturnsFallback(t *testing.T) {
	emb := &stubEmbedder{err: errors.New("quota exceeded")}

	assert.InDelta(t, 50.0, NewScorer(emb).Score(context.Background(), "a", "b"), 1e-9)
	assert.InDelta(t, 42.0, NewScorer(emb, WithFallback(42)).Score(context.Background(), "a", "b"), 1e-9)
}

func TestScorer_DimensionMismatchReturnsFallback(t *testing.T) {
	emb := &stubEmbedder{vectors: map[string][]float32{
		"a": {1, 2, 3},
		"b": {1, 2},
	}}
	assert.InDelta(t, 50.0, NewScorer(emb, WithLogger(nil)).Score(context.Background(), "a", "b"), 1e-9)
}

func TestScorer_BatchEmbedder(t *testing.T) {
	emb := &stubBatchEmbedder{stubEmbedder: stubEmbedder{vectors: map[string][]float32{
		"resume": {3, 4},
		"job":    {4, 3},
	}}}
	s := NewScorer(emb)

	assert.InDelta(t, 96.0, s.Score(context.Background(), "resume", "job"), 1e-9)
	assert.Equal(t, 1, emb.batches)

	emb.short = true
	assert.InDelta(t, 50.0, s.Score(context.Background(), "resume", "job"), 1e-9)
}

func TestRound(t *testing.T) {
	assert.InDelta(t, 12.35, Round(12.345001, 2), 1e-9)
	assert.InDelta(t, 0.6723, Round(0.67234, 4), 1e-9)
	assert.InDelta(t, -3.14, Round(-3.14159, 2), 1e-9)
}
