package llm

import (
	"context"
	"fmt"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// Client is an abstraction over embedding providers
type Client interface {
	// Embed returns the embedding vector for text
	Embed(ctx context.Context, text string) ([]float32, error)
	// EmbedBatch embeds several texts in one request, preserving order
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
	// Close releases any resources held by the client
	Close() error
}

// NewClient creates a new embedding client based on configuration
func NewClient(ctx context.Context, config *Config, apiKey string) (Client, error) {
	if config == nil {
		config = DefaultConfig()
	}

	switch config.Provider {
	case ProviderGemini:
		return NewGeminiClient(ctx, config, apiKey, TaskSimilarity)
	default:
		return nil, fmt.Errorf("unsupported embedding provider %q", config.Provider)
	}
}

// GeminiClient implements Client for Google Gemini embeddings
type GeminiClient struct {
	client *genai.Client
	model  *genai.EmbeddingModel
	config *Config
}

// NewGeminiClient creates a new Gemini client bound to the model for task
func NewGeminiClient(ctx context.Context, config *Config, apiKey string, task Task) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("API key is required")
	}
	if config == nil {
		config = DefaultGeminiConfig()
	}

	modelName := config.GetModel(task)
	if modelName == "" {
		return nil, fmt.Errorf("no model configured for task %s", task)
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	model := client.EmbeddingModel(modelName)
	switch task {
	case TaskClassification:
		model.TaskType = genai.TaskTypeClassification
	default:
		model.TaskType = genai.TaskTypeSemanticSimilarity
	}

	return &GeminiClient{
		client: client,
		model:  model,
		config: config,
	}, nil
}

// Embed returns the embedding vector for text
func (c *GeminiClient) Embed(ctx context.Context, text string) ([]float32, error) {
	res, err := c.model.EmbedContent(ctx, genai.Text(TruncateText(text, c.config.MaxInputChars)))
	if err != nil {
		return nil, fmt.Errorf("failed to embed content: %w", err)
	}
	if res == nil || res.Embedding == nil || len(res.Embedding.Values) == 0 {
		return nil, fmt.Errorf("empty embedding in response")
	}
	return res.Embedding.Values, nil
}

// EmbedBatch embeds several texts in one request, preserving order
func (c *GeminiClient) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	batch := c.model.NewBatch()
	for _, text := range texts {
		batch.AddContent(genai.Text(TruncateText(text, c.config.MaxInputChars)))
	}

	res, err := c.model.BatchEmbedContents(ctx, batch)
	if err != nil {
		return nil, fmt.Errorf("failed to batch embed content: %w", err)
	}
	if len(res.Embeddings) != len(texts) {
		return nil, fmt.Errorf("expected %d embeddings, got %d", len(texts), len(res.Embeddings))
	}

	vectors := make([][]float32, len(res.Embeddings))
	for i, e := range res.Embeddings {
		vectors[i] = e.Values
	}
	return vectors, nil
}

// Close releases resources held by the client
func (c *GeminiClient) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}
