package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/jonathan/resume-ranker/internal/experience"
	"github.com/jonathan/resume-ranker/internal/ingestion"
	"github.com/jonathan/resume-ranker/internal/logging"
	"github.com/jonathan/resume-ranker/internal/ranking"
	"github.com/jonathan/resume-ranker/internal/server/middleware"
	"github.com/jonathan/resume-ranker/internal/server/ratelimit"
	"github.com/jonathan/resume-ranker/internal/store"
)

// DefaultMaxUploadBytes bounds a multipart upload.
const DefaultMaxUploadBytes = 32 << 20

// LabelPredictor is an auxiliary classifier such as domain or experience
// level.
type LabelPredictor interface {
	Predict(ctx context.Context, text string) (label string, confidence float64, err error)
}

// Deps are the collaborators the handlers use. Store, Ranker and Similarity
// are required; Domain, Experience and Tokens may be nil.
type Deps struct {
	Store      store.Store
	Ranker     *ranking.Ranker
	Similarity ranking.SimilarityScorer
	Estimator  *experience.Estimator
	Domain     LabelPredictor
	Experience LabelPredictor
	Tokens     middleware.TokenValidator
	Logger     *zap.Logger
}

// Config holds server configuration
type Config struct {
	Port           int
	MaxUploadBytes int64
	RateLimit      *ratelimit.Config
	URL            ingestion.URLOptions
}

// Server represents the HTTP server
type Server struct {
	deps        Deps
	config      Config
	logger      *zap.Logger
	extractor   *ingestion.Extractor
	rateLimiter *ratelimit.Limiter
	handler     http.Handler
	httpServer  *http.Server
}

// New creates a new server instance
func New(cfg Config, deps Deps) (*Server, error) {
	if deps.Store == nil || deps.Ranker == nil || deps.Similarity == nil {
		return nil, errors.New("server requires a store, a ranker and a similarity scorer")
	}
	if deps.Estimator == nil {
		deps.Estimator = experience.NewEstimator()
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = DefaultMaxUploadBytes
	}

	s := &Server{
		deps:        deps,
		config:      cfg,
		logger:      logging.OrNop(deps.Logger),
		rateLimiter: ratelimit.NewLimiter(cfg.RateLimit),
	}
	s.extractor = ingestion.NewExtractor(s.logger.Named("ingestion"))
	s.config.URL.Logger = s.logger.Named("fetch")

	requireToken := middleware.RequireToken(deps.Tokens)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleStatus)
	mux.HandleFunc("GET /health", s.handleHealth)

	mux.Handle("POST /upload-jd", requireToken(http.HandlerFunc(s.handleUploadJobDescription)))
	mux.Handle("POST /upload-resumes", requireToken(http.HandlerFunc(s.handleUploadResumes)))
	mux.Handle("POST /upload-resumes/stream", requireToken(http.HandlerFunc(s.handleUploadResumesStream)))
	mux.HandleFunc("GET /ranked-results", s.handleRankedResults)
	mux.HandleFunc("GET /ranked-results/export", s.handleExportResults)

	mux.HandleFunc("POST /calculate-score", s.handleCalculateScore)
	mux.HandleFunc("POST /match-skills", s.handleMatchSkills)
	mux.HandleFunc("POST /analyze-experience", s.handleAnalyzeExperience)
	mux.HandleFunc("POST /evaluate-soft-skills", s.handleEvaluateSoftSkills)
	mux.HandleFunc("POST /check-adaptability", s.handleCheckAdaptability)
	mux.HandleFunc("POST /estimate-experience", s.handleEstimateExperience)
	mux.HandleFunc("POST /predict-domain", s.handlePredictDomain)
	mux.HandleFunc("POST /predict-experience", s.handlePredictExperience)

	s.handler = s.withRateLimit(s.withLogging(s.withCORS(mux)))
	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 300 * time.Second, // Long timeout for large ranking batches
		IdleTimeout:  60 * time.Second,
	}
	return s, nil
}

// Handler returns the fully wrapped router.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Start serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server starting", zap.String("addr", s.httpServer.Addr))
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		s.rateLimiter.Stop()
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	err := s.httpServer.Shutdown(shutdownCtx)
	s.rateLimiter.Stop()
	if err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	s.logger.Info("server stopped")
	return nil
}

// withCORS adds CORS headers
func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// withRateLimit rejects clients that exceeded their budget.
func (s *Server) withRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		allowed, info := s.rateLimiter.Allow(s.extractClientID(r), r.URL.Path, r.Method)
		s.setRateLimitHeaders(w, info)
		if !allowed {
			s.rateLimitResponse(w, r, info)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// statusRecorder captures the response status for access logs.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// Flush lets SSE responses stream through the recorder.
func (r *statusRecorder) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// withLogging adds request logging
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.logger.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.String("remote", r.RemoteAddr),
			zap.Int("status", rec.status),
			zap.Duration("duration", time.Since(start)))
	})
}

// handleStatus reports which optional collaborators are loaded.
func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	embeddings := false
	if u, ok := s.deps.Similarity.(interface{ UsesEmbeddings() bool }); ok {
		embeddings = u.UsesEmbeddings()
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{
		"status": "API is running",
		"models_loaded": map[string]bool{
			"embeddings":            embeddings,
			"match_classifier":      s.deps.Ranker.HasPredictor(),
			"domain_classifier":     s.deps.Domain != nil,
			"experience_classifier": s.deps.Experience != nil,
		},
		"auth_required": s.deps.Tokens != nil,
	})
}

// handleHealth returns server health status
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

// jsonResponse writes a JSON response
func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Warn("failed to encode JSON response", zap.Error(err))
	}
}

// errorResponse writes an error JSON response
func (s *Server) errorResponse(w http.ResponseWriter, status int, message string) {
	s.jsonResponse(w, status, map[string]string{"error": message})
}

// errorFrom maps err to a status. Internal errors are logged and the
// message is prefixed with what the handler was doing.
func (s *Server) errorFrom(w http.ResponseWriter, r *http.Request, prefix string, err error) {
	status := HTTPStatus(err)
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", zap.String("path", r.URL.Path), zap.Error(err))
	}
	message := err.Error()
	if prefix != "" && status >= http.StatusInternalServerError {
		message = prefix + ": " + message
	}
	s.errorResponse(w, status, message)
}

// decodeJSON reads a JSON body into v and runs its Validate method.
func decodeJSON[T interface{ Validate() error }](r *http.Request, v T) error {
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(v); err != nil {
		return &ErrValidation{Message: fmt.Sprintf("invalid JSON body: %v", err)}
	}
	if err := v.Validate(); err != nil {
		return validationError(err)
	}
	return nil
}

// extractClientID extracts the client identifier from the request.
// This uses the IP address from RemoteAddr.
func (s *Server) extractClientID(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// setRateLimitHeaders sets standard rate limit headers on the response.
func (s *Server) setRateLimitHeaders(w http.ResponseWriter, info ratelimit.Info) {
	if info.Limit > 0 {
		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(info.Limit))
		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(info.Remaining))
		w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(info.ResetTime.Unix(), 10))
	}
}

// rateLimitResponse writes a 429 Too Many Requests response with rate limit information.
func (s *Server) rateLimitResponse(w http.ResponseWriter, r *http.Request, info ratelimit.Info) {
	response := map[string]any{
		"error":     "rate_limit_exceeded",
		"message":   "Rate limit exceeded. Please try again later.",
		"limit":     info.Limit,
		"remaining": info.Remaining,
	}
	if !info.ResetTime.IsZero() {
		response["reset_at"] = info.ResetTime.Format(time.RFC3339)
	}
	if info.RetryAfter > 0 {
		seconds := int(info.RetryAfter.Seconds() + 0.5)
		response["retry_after"] = seconds
		w.Header().Set("Retry-After", strconv.Itoa(seconds))
	}

	s.logger.Warn("rate limit exceeded",
		zap.String("client", s.extractClientID(r)),
		zap.String("path", r.URL.Path),
		zap.Int("limit", info.Limit))

	s.jsonResponse(w, http.StatusTooManyRequests, response)
}
