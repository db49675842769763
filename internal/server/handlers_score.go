package server

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/jonathan/resume-ranker/internal/classifier"
	"github.com/jonathan/resume-ranker/internal/experience"
	"github.com/jonathan/resume-ranker/internal/scoring"
	"github.com/jonathan/resume-ranker/internal/similarity"
	"github.com/jonathan/resume-ranker/internal/store"
	"github.com/jonathan/resume-ranker/internal/types"
)

// handleCalculateScore aggregates client-supplied sub-scores and applies the
// verdict rule with the match classifier's probability for resume_text.
func (s *Server) handleCalculateScore(w http.ResponseWriter, r *http.Request) {
	var req types.CalculateScoreRequest
	if err := decodeJSON(r, &req); err != nil {
		s.errorFrom(w, r, "", err)
		return
	}

	final := scoring.FinalScore(scoring.SubScores{
		Skill:        req.SkillScore,
		Experience:   req.ExpScore,
		SoftSkills:   req.SoftSkillScore,
		Adaptability: req.AdaptabilityScore,
	})
	probability := s.deps.Ranker.Probability(r.Context(), req.ResumeText)
	label := scoring.Verdict(final, probability)

	s.jsonResponse(w, http.StatusOK, types.CalculateScoreResponse{
		FinalScore:       final,
		MatchProbability: similarity.Round(probability, 4),
		PredictedClass:   label.PredictedClass(),
		Label:            label,
	})
}

// handleMatchSkills compares a resume with the stored job description.
func (s *Server) handleMatchSkills(w http.ResponseWriter, r *http.Request) {
	var req types.ResumeTextRequest
	if err := decodeJSON(r, &req); err != nil {
		s.errorFrom(w, r, "", err)
		return
	}

	jobDescription, err := s.deps.Store.LoadJobDescription(r.Context())
	if errors.Is(err, store.ErrNoJobDescription) {
		s.errorResponse(w, http.StatusBadRequest, msgJobDescriptionMissing)
		return
	}
	if err != nil {
		s.errorFrom(w, r, "Error matching skills", err)
		return
	}

	s.jsonResponse(w, http.StatusOK, types.SkillScoreResponse{
		Filename:   req.Filename,
		SkillScore: s.deps.Similarity.Score(r.Context(), jobDescription, req.Text),
	})
}

// keywordHandler decodes a resume and writes the response built by respond.
func (s *Server) keywordHandler(respond func(req types.ResumeTextRequest) any) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req types.ResumeTextRequest
		if err := decodeJSON(r, &req); err != nil {
			s.errorFrom(w, r, "", err)
			return
		}
		s.jsonResponse(w, http.StatusOK, respond(req))
	}
}

func (s *Server) handleAnalyzeExperience(w http.ResponseWriter, r *http.Request) {
	s.keywordHandler(func(req types.ResumeTextRequest) any {
		return types.ExperienceScoreResponse{Filename: req.Filename, ExperienceScore: scoring.ExperienceKeywordScore(req.Text)}
	})(w, r)
}

func (s *Server) handleEvaluateSoftSkills(w http.ResponseWriter, r *http.Request) {
	s.keywordHandler(func(req types.ResumeTextRequest) any {
		return types.SoftSkillScoreResponse{Filename: req.Filename, SoftSkillScore: scoring.SoftSkillKeywordScore(req.Text)}
	})(w, r)
}

func (s *Server) handleCheckAdaptability(w http.ResponseWriter, r *http.Request) {
	s.keywordHandler(func(req types.ResumeTextRequest) any {
		return types.AdaptabilityScoreResponse{Filename: req.Filename, AdaptabilityScore: scoring.AdaptabilityKeywordScore(req.Text)}
	})(w, r)
}

// handleEstimateExperience sums the date ranges in text. reference_date,
// when given, stands in for "Present".
func (s *Server) handleEstimateExperience(w http.ResponseWriter, r *http.Request) {
	var req types.EstimateExperienceRequest
	if err := decodeJSON(r, &req); err != nil {
		s.errorFrom(w, r, "", err)
		return
	}

	var est experience.Estimate
	if req.ReferenceDate == "" {
		est = s.deps.Estimator.Estimate(req.Text)
	} else {
		ref, err := time.Parse(time.DateOnly, req.ReferenceDate)
		if err != nil {
			s.errorFrom(w, r, "", &ErrValidation{Field: "reference_date", Message: "must be YYYY-MM-DD"})
			return
		}
		est = s.deps.Estimator.EstimateAt(req.Text, ref)
	}

	s.jsonResponse(w, http.StatusOK, types.EstimateExperienceResponse{
		Months: est.Months,
		Years:  similarity.Round(est.Years, 2),
		Level:  string(est.Level),
	})
}

// predictHandler serves an auxiliary classifier, answering 503 when it is
// not configured. respond shapes the decoded label and rounded confidence.
func (s *Server) predictHandler(name string, predictor LabelPredictor, respond func(label string, confidence float64) any) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if predictor == nil {
			s.errorFrom(w, r, "", fmt.Errorf("%s %w", name, classifier.ErrUnavailable))
			return
		}

		var req types.PredictRequest
		if err := decodeJSON(r, &req); err != nil {
			s.errorFrom(w, r, "", err)
			return
		}

		label, confidence, err := predictor.Predict(r.Context(), req.ResumeText)
		if err != nil {
			s.errorFrom(w, r, fmt.Sprintf("Error predicting %s", name), err)
			return
		}
		s.jsonResponse(w, http.StatusOK, respond(label, similarity.Round(confidence, 4)))
	}
}

func (s *Server) handlePredictDomain(w http.ResponseWriter, r *http.Request) {
	s.predictHandler("domain", s.deps.Domain, func(label string, confidence float64) any {
		return types.DomainPredictionResponse{PredictedDomain: label, Confidence: confidence}
	})(w, r)
}

func (s *Server) handlePredictExperience(w http.ResponseWriter, r *http.Request) {
	s.predictHandler("experience", s.deps.Experience, func(label string, confidence float64) any {
		return types.ExperiencePredictionResponse{PredictedExperienceLevel: label, Confidence: confidence}
	})(w, r)
}
