package classifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// DefaultTimeout bounds a single prediction request.
const DefaultTimeout = 10 * time.Second

// Predictor runs a hosted model over padded sequences.
type Predictor interface {
	Predict(ctx context.Context, model string, instances [][]int) ([][]float64, error)
}

// PredictError describes a failed prediction call.
type PredictError struct {
	Model      string
	StatusCode int
	Message    string
	Cause      error
}

func (e *PredictError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("predict error for model %s: %s: %v", e.Model, e.Message, e.Cause)
	}
	return fmt.Sprintf("predict error for model %s: %s", e.Model, e.Message)
}

func (e *PredictError) Unwrap() error {
	return e.Cause
}

// ModelServer talks to the TensorFlow Serving REST API.
type ModelServer struct {
	baseURL    string
	httpClient *http.Client
}

// NewModelServer creates a client for the server at baseURL
// (e.g. http://localhost:8501).
func NewModelServer(baseURL string, timeout time.Duration) *ModelServer {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &ModelServer{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

type predictRequest struct {
	Instances [][]int `json:"instances"`
}

type predictResponse struct {
	Predictions [][]float64 `json:"predictions"`
	Error       string      `json:"error"`
}

// Predict posts instances to /v1/models/{model}:predict.
func (m *ModelServer) Predict(ctx context.Context, model string, instances [][]int) ([][]float64, error) {
	body, err := json.Marshal(predictRequest{Instances: instances})
	if err != nil {
		return nil, &PredictError{Model: model, Message: "failed to encode request", Cause: err}
	}

	endpoint := fmt.Sprintf("%s/v1/models/%s:predict", m.baseURL, model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, &PredictError{Model: model, Message: "failed to create request", Cause: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return nil, &PredictError{Model: model, Message: "HTTP request failed", Cause: err}
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &PredictError{Model: model, StatusCode: resp.StatusCode, Message: "failed to read response body", Cause: err}
	}

	var parsed predictResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, &PredictError{Model: model, StatusCode: resp.StatusCode, Message: "failed to decode response", Cause: err}
	}

	if resp.StatusCode != http.StatusOK {
		msg := fmt.Sprintf("HTTP status %d", resp.StatusCode)
		if parsed.Error != "" {
			msg += ": " + parsed.Error
		}
		return nil, &PredictError{Model: model, StatusCode: resp.StatusCode, Message: msg}
	}

	if len(parsed.Predictions) != len(instances) {
		return nil, &PredictError{
			Model:      model,
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("expected %d predictions, got %d", len(instances), len(parsed.Predictions)),
		}
	}
	return parsed.Predictions, nil
}
