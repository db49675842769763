package classifier

import (
	"context"
	"errors"
	"fmt"
)

// ErrUnavailable is returned by callers when a model was not configured.
var ErrUnavailable = errors.New("classifier not configured")

// Sequence lengths the hosted models were trained with.
const (
	MatchMaxLen    = 100
	CategoryMaxLen = 200
)

// MatchClassifier predicts the probability that a resume fits the role.
type MatchClassifier struct {
	tokenizer *Tokenizer
	predictor Predictor
	model     string
}

// NewMatchClassifier wires a tokenizer to a hosted binary model.
func NewMatchClassifier(tokenizer *Tokenizer, predictor Predictor, model string) *MatchClassifier {
	return &MatchClassifier{tokenizer: tokenizer, predictor: predictor, model: model}
}

// MatchProbability returns the model's output for text. Sequences are
// padded at the end and truncated at the start to MatchMaxLen.
func (c *MatchClassifier) MatchProbability(ctx context.Context, text string) (float64, error) {
	seq, err := Pad(c.tokenizer.Sequence(text), MatchMaxLen, Post, Pre)
	if err != nil {
		return 0, err
	}

	preds, err := c.predictor.Predict(ctx, c.model, [][]int{seq})
	if err != nil {
		return 0, err
	}
	if len(preds) == 0 || len(preds[0]) == 0 {
		return 0, fmt.Errorf("model %s returned no probability", c.model)
	}
	return preds[0][0], nil
}

// LabelClassifier predicts one of several classes, e.g. domain or
// experience level.
type LabelClassifier struct {
	tokenizer *Tokenizer
	encoder   *LabelEncoder
	predictor Predictor
	model     string
}

// NewLabelClassifier wires a tokenizer and label encoder to a hosted
// multi-class model.
func NewLabelClassifier(tokenizer *Tokenizer, encoder *LabelEncoder, predictor Predictor, model string) *LabelClassifier {
	return &LabelClassifier{tokenizer: tokenizer, encoder: encoder, predictor: predictor, model: model}
}

// Predict returns the most probable label and its probability. Sequences
// are padded and truncated at the start to CategoryMaxLen.
func (c *LabelClassifier) Predict(ctx context.Context, text string) (string, float64, error) {
	seq, err := Pad(c.tokenizer.Sequence(text), CategoryMaxLen, Pre, Pre)
	if err != nil {
		return "", 0, err
	}

	preds, err := c.predictor.Predict(ctx, c.model, [][]int{seq})
	if err != nil {
		return "", 0, err
	}
	if len(preds) == 0 || len(preds[0]) == 0 {
		return "", 0, fmt.Errorf("model %s returned no probabilities", c.model)
	}

	best := argmax(preds[0])
	label, err := c.encoder.Decode(best)
	if err != nil {
		return "", 0, fmt.Errorf("model %s: %w", c.model, err)
	}
	return label, preds[0][best], nil
}

// argmax returns the first index of the largest value.
func argmax(values []float64) int {
	best := 0
	for i, v := range values {
		if v > values[best] {
			best = i
		}
	}
	return best
}
