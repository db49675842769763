// Package config loads the service configuration from defaults, an optional
// config file, environment variables and command-line flags.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment variable the service reads. The
// unprefixed names in envAliases are accepted too.
const EnvPrefix = "RANKER"

// Config is the complete service configuration.
type Config struct {
	Port        int    `mapstructure:"port" validate:"min=1,max=65535"`
	DataDir     string `mapstructure:"data-dir" validate:"required"`
	DatabaseURL string `mapstructure:"database-url"`

	Log        LogConfig        `mapstructure:"log"`
	Embedding  EmbeddingConfig  `mapstructure:"embedding"`
	Classifier ClassifierConfig `mapstructure:"classifier"`
	Ranking    RankingConfig    `mapstructure:"ranking"`
	Fetch      FetchConfig      `mapstructure:"fetch"`
	RateLimit  RateLimitConfig  `mapstructure:"rate-limit"`
	Auth       JWTConfig        `mapstructure:"auth"`
}

// LogConfig selects the log encoder and level.
type LogConfig struct {
	JSON  bool `mapstructure:"json"`
	Debug bool `mapstructure:"debug"`
}

// EmbeddingConfig configures the embedding provider used for similarity.
// Without an API key the service scores with token overlap.
type EmbeddingConfig struct {
	APIKey        string `mapstructure:"api-key"`
	Model         string `mapstructure:"model" validate:"required"`
	MaxInputChars int    `mapstructure:"max-input-chars"`
}

// ClassifierConfig points at the model server and the preprocessing
// artifacts each served model expects. A model whose name is empty is
// treated as not deployed.
type ClassifierConfig struct {
	ServerURL string        `mapstructure:"server-url" validate:"omitempty,url"`
	Timeout   time.Duration `mapstructure:"timeout"`

	MatchModel     string `mapstructure:"match-model"`
	MatchTokenizer string `mapstructure:"match-tokenizer"`

	DomainModel     string `mapstructure:"domain-model"`
	DomainTokenizer string `mapstructure:"domain-tokenizer"`
	DomainEncoder   string `mapstructure:"domain-encoder"`

	ExperienceModel     string `mapstructure:"experience-model"`
	ExperienceTokenizer string `mapstructure:"experience-tokenizer"`
	ExperienceEncoder   string `mapstructure:"experience-encoder"`
}

// RankingConfig tunes batch scoring.
type RankingConfig struct {
	Concurrency         int     `mapstructure:"concurrency" validate:"min=1,max=64"`
	FallbackSimilarity  float64 `mapstructure:"fallback-similarity" validate:"gte=0,lte=100"`
	FallbackProbability float64 `mapstructure:"fallback-probability" validate:"gte=0,lte=1"`
}

// FetchConfig controls job description downloads.
type FetchConfig struct {
	Timeout       time.Duration `mapstructure:"timeout"`
	RenderTimeout time.Duration `mapstructure:"render-timeout"`
	UseBrowser    bool          `mapstructure:"use-browser"`
}

// RateLimitConfig sets the per-client request budget for routes without
// their own limit. Whitelisted addresses are never limited; blacklisted ones
// are always refused.
type RateLimitConfig struct {
	Enabled   bool          `mapstructure:"enabled"`
	Limit     int           `mapstructure:"limit" validate:"min=1"`
	Window    time.Duration `mapstructure:"window"`
	Whitelist []string      `mapstructure:"whitelist"`
	Blacklist []string      `mapstructure:"blacklist"`
}

// Defaults are applied before any file, environment or flag value.
var Defaults = map[string]any{
	"port":                            8000,
	"data-dir":                        "data",
	"database-url":                    "",
	"log.json":                        false,
	"log.debug":                       false,
	"embedding.api-key":               "",
	"embedding.model":                 "text-embedding-004",
	"embedding.max-input-chars":       8000,
	"classifier.server-url":           "",
	"classifier.timeout":              "10s",
	"classifier.match-model":          "resume_match",
	"classifier.match-tokenizer":      "",
	"classifier.domain-model":         "",
	"classifier.domain-tokenizer":     "",
	"classifier.domain-encoder":       "",
	"classifier.experience-model":     "",
	"classifier.experience-tokenizer": "",
	"classifier.experience-encoder":   "",
	"ranking.concurrency":             4,
	"ranking.fallback-similarity":     50.0,
	"ranking.fallback-probability":    0.55,
	"fetch.timeout":                   "30s",
	"fetch.render-timeout":            "30s",
	"fetch.use-browser":               false,
	"rate-limit.enabled":              true,
	"rate-limit.limit":                1000,
	"rate-limit.window":               "1m",
	"rate-limit.whitelist":            []string{},
	"rate-limit.blacklist":            []string{},
	"auth.secret":                     "",
	"auth.expiration-hours":           24,
}

// envAliases are the unprefixed variable names the deployment already uses.
var envAliases = map[string][]string{
	"database-url":          {"DATABASE_URL"},
	"embedding.api-key":     {"GEMINI_API_KEY"},
	"auth.secret":           {"JWT_SECRET"},
	"auth.expiration-hours": {"JWT_EXPIRATION_HOURS"},
	"rate-limit.enabled":    {"RATE_LIMIT_ENABLED"},
	"rate-limit.limit":      {"RATE_LIMIT_DEFAULT_LIMIT"},
	"rate-limit.window":     {"RATE_LIMIT_DEFAULT_WINDOW"},
	"rate-limit.whitelist":  {"RATE_LIMIT_WHITELIST"},
	"rate-limit.blacklist":  {"RATE_LIMIT_BLACKLIST"},
}

// NewViper returns a viper instance with defaults and environment bindings
// registered. Callers may bind flags onto it before calling Load.
func NewViper() (*viper.Viper, error) {
	v := viper.New()
	for key, value := range Defaults {
		v.SetDefault(key, value)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()

	for key, aliases := range envAliases {
		names := append([]string{envName(key)}, aliases...)
		if err := v.BindEnv(append([]string{key}, names...)...); err != nil {
			return nil, fmt.Errorf("binding environment for %s: %w", key, err)
		}
	}
	return v, nil
}

func envName(key string) string {
	return EnvPrefix + "_" + strings.ToUpper(strings.NewReplacer("-", "_", ".", "_").Replace(key))
}

// Load reads the optional config file at path into v and decodes the result.
func Load(v *viper.Viper, path string) (*Config, error) {
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks field ranges and the auth settings.
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return fmt.Errorf("config error: %s failed %q", verrs[0].Namespace(), verrs[0].Tag())
		}
		return fmt.Errorf("config error: %w", err)
	}
	if c.Auth.Enabled() {
		if err := c.Auth.normalize(); err != nil {
			return fmt.Errorf("config error: %w", err)
		}
	}
	return nil
}

// UsePostgres reports whether rankings are persisted in PostgreSQL rather
// than under DataDir.
func (c *Config) UsePostgres() bool {
	return c.DatabaseURL != ""
}
