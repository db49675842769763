// Package app builds the long-lived collaborators shared by the HTTP server
// and the command-line tools from a loaded configuration.
package app

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/jonathan/resume-ranker/internal/classifier"
	"github.com/jonathan/resume-ranker/internal/config"
	"github.com/jonathan/resume-ranker/internal/db"
	"github.com/jonathan/resume-ranker/internal/experience"
	"github.com/jonathan/resume-ranker/internal/ingestion"
	"github.com/jonathan/resume-ranker/internal/llm"
	"github.com/jonathan/resume-ranker/internal/logging"
	"github.com/jonathan/resume-ranker/internal/ranking"
	"github.com/jonathan/resume-ranker/internal/similarity"
	"github.com/jonathan/resume-ranker/internal/store"
)

// App holds the collaborators. Optional classifiers are nil when not
// configured or when their artifacts failed to load.
type App struct {
	Config     *config.Config
	Logger     *zap.Logger
	Store      store.Store
	Similarity *similarity.Scorer
	Estimator  *experience.Estimator
	Extractor  *ingestion.Extractor
	Ranker     *ranking.Ranker

	Match      *classifier.MatchClassifier
	Domain     *classifier.LabelClassifier
	Experience *classifier.LabelClassifier

	closers []func() error
}

// New connects the store and loads every configured collaborator. Only a
// store failure is fatal; embedding and classifier problems are logged and
// the corresponding fallback is used instead.
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	logger = logging.OrNop(logger)
	a := &App{
		Config:    cfg,
		Logger:    logger,
		Estimator: experience.NewEstimator(),
		Extractor: ingestion.NewExtractor(logger.Named("extract")),
	}

	st, err := openStore(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	a.Store = st
	a.closers = append(a.closers, st.Close)

	var embedder similarity.Embedder
	if cfg.Embedding.APIKey != "" {
		client, err := llm.NewClient(ctx, embeddingConfig(cfg.Embedding), cfg.Embedding.APIKey)
		if err != nil {
			logger.Warn("embedding client unavailable, using token overlap", zap.Error(err))
		} else {
			embedder = client
			a.closers = append(a.closers, client.Close)
		}
	}
	a.Similarity = similarity.NewScorer(embedder,
		similarity.WithFallback(cfg.Ranking.FallbackSimilarity),
		similarity.WithLogger(logger.Named("similarity")))

	a.loadClassifiers(cfg.Classifier)

	opts := []ranking.Option{
		ranking.WithFallbackProbability(cfg.Ranking.FallbackProbability),
		ranking.WithConcurrency(cfg.Ranking.Concurrency),
		ranking.WithLogger(logger.Named("ranking")),
	}
	if a.Match != nil {
		opts = append(opts, ranking.WithPredictor(a.Match))
	}
	a.Ranker = ranking.New(a.Extractor, a.Similarity, opts...)

	logger.Info("collaborators loaded",
		zap.Bool("embeddings", a.Similarity.UsesEmbeddings()),
		zap.Bool("match_classifier", a.Match != nil),
		zap.Bool("domain_classifier", a.Domain != nil),
		zap.Bool("experience_classifier", a.Experience != nil),
		zap.Bool("postgres", cfg.UsePostgres()))
	return a, nil
}

func openStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (store.Store, error) {
	if !cfg.UsePostgres() {
		st, err := store.NewFileStore(cfg.DataDir, logger.Named("store"))
		if err != nil {
			return nil, fmt.Errorf("failed to open file store: %w", err)
		}
		return st, nil
	}

	database, err := db.Connect(ctx, cfg.DatabaseURL, logger.Named("db"))
	if err != nil {
		return nil, err
	}
	if err := database.EnsureSchema(ctx); err != nil {
		database.Close()
		return nil, err
	}
	return database, nil
}

func embeddingConfig(cfg config.EmbeddingConfig) *llm.Config {
	c := llm.DefaultGeminiConfig().WithModel(llm.TaskSimilarity, cfg.Model)
	if cfg.MaxInputChars > 0 {
		c.MaxInputChars = cfg.MaxInputChars
	}
	return c
}

func (a *App) loadClassifiers(cfg config.ClassifierConfig) {
	if cfg.ServerURL == "" {
		a.Logger.Info("no model server configured, classifiers disabled")
		return
	}
	server := classifier.NewModelServer(cfg.ServerURL, cfg.Timeout)
	logger := a.Logger.Named("classifier")

	if cfg.MatchModel != "" && cfg.MatchTokenizer != "" {
		tok, err := classifier.LoadTokenizer(cfg.MatchTokenizer)
		if err != nil {
			logger.Warn("match classifier disabled", zap.Error(err))
		} else {
			a.Match = classifier.NewMatchClassifier(tok, server, cfg.MatchModel)
		}
	}

	a.Domain = loadLabelClassifier(logger, server, "domain", cfg.DomainModel, cfg.DomainTokenizer, cfg.DomainEncoder)
	a.Experience = loadLabelClassifier(logger, server, "experience", cfg.ExperienceModel, cfg.ExperienceTokenizer, cfg.ExperienceEncoder)
}

func loadLabelClassifier(logger *zap.Logger, server classifier.Predictor, name, model, tokenizerPath, encoderPath string) *classifier.LabelClassifier {
	if model == "" || tokenizerPath == "" || encoderPath == "" {
		return nil
	}
	tok, err := classifier.LoadTokenizer(tokenizerPath)
	if err != nil {
		logger.Warn("classifier disabled", zap.String("classifier", name), zap.Error(err))
		return nil
	}
	enc, err := classifier.LoadLabelEncoder(encoderPath)
	if err != nil {
		logger.Warn("classifier disabled", zap.String("classifier", name), zap.Error(err))
		return nil
	}
	return classifier.NewLabelClassifier(tok, enc, server, model)
}

// Close releases the store and any provider clients.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
