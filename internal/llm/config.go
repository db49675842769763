// Package llm provides embedding model configuration and provider clients.
// Models are selected per task so similarity and classification can use
// differently tuned embeddings.
package llm

// Task identifies what an embedding is used for.
type Task string

const (
	// TaskSimilarity is for comparing two documents symmetrically.
	TaskSimilarity Task = "similarity"
	// TaskClassification is for embeddings consumed by a downstream classifier.
	TaskClassification Task = "classification"
)

// Provider represents an embedding provider
type Provider string

// Provider constants define supported embedding providers
const (
	// ProviderGemini is the Google Gemini provider
	ProviderGemini Provider = "gemini"
)

// DefaultMaxInputChars bounds the text sent per embedding request.
const DefaultMaxInputChars = 8000

// Config holds the model configuration for the application
type Config struct {
	Provider      Provider
	Models        map[Task]string
	MaxInputChars int
}

// DefaultConfig returns the default configuration (currently Gemini)
func DefaultConfig() *Config {
	return DefaultGeminiConfig()
}

// DefaultGeminiConfig returns the default Gemini configuration
func DefaultGeminiConfig() *Config {
	return &Config{
		Provider: ProviderGemini,
		Models: map[Task]string{
			TaskSimilarity:     "text-embedding-004",
			TaskClassification: "text-embedding-004",
		},
		MaxInputChars: DefaultMaxInputChars,
	}
}

// GetModel returns the model name for a given task
func (c *Config) GetModel(task Task) string {
	if model, ok := c.Models[task]; ok {
		return model
	}
	if model, ok := c.Models[TaskSimilarity]; ok {
		return model
	}
	return ""
}

// WithModel returns a new Config with a specific model for a task
func (c *Config) WithModel(task Task, model string) *Config {
	newConfig := &Config{
		Provider:      c.Provider,
		Models:        make(map[Task]string),
		MaxInputChars: c.MaxInputChars,
	}
	for k, v := range c.Models {
		newConfig.Models[k] = v
	}
	newConfig.Models[task] = model
	return newConfig
}
