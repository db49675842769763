package types

import (
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// CalculateScoreRequest carries precomputed sub-scores to be aggregated.
type CalculateScoreRequest struct {
	SkillScore        float64 `json:"skill_score" validate:"gte=0,lte=100"`
	ExpScore          float64 `json:"exp_score" validate:"gte=0,lte=100"`
	SoftSkillScore    float64 `json:"soft_skill_score" validate:"gte=0,lte=100"`
	AdaptabilityScore float64 `json:"adaptability_score" validate:"gte=0,lte=100"`
	ResumeText        string  `json:"resume_text"`
}

// CalculateScoreResponse is the aggregated verdict.
type CalculateScoreResponse struct {
	FinalScore       float64 `json:"final_score"`
	MatchProbability float64 `json:"match_probability"`
	PredictedClass   int     `json:"predicted_class"`
	Label            Label   `json:"label"`
}

// ResumeTextRequest is a single resume's extracted text.
type ResumeTextRequest struct {
	Filename string `json:"filename"`
	Text     string `json:"text" validate:"required"`
}

// SkillScoreResponse is the skill similarity for one resume.
type SkillScoreResponse struct {
	Filename   string  `json:"filename"`
	SkillScore float64 `json:"skill_score"`
}

// ExperienceScoreResponse is the experience keyword score for one resume.
type ExperienceScoreResponse struct {
	Filename        string  `json:"filename"`
	ExperienceScore float64 `json:"experience_score"`
}

// SoftSkillScoreResponse is the soft-skill keyword score for one resume.
type SoftSkillScoreResponse struct {
	Filename       string  `json:"filename"`
	SoftSkillScore float64 `json:"soft_skill_score"`
}

// AdaptabilityScoreResponse is the adaptability keyword score for one resume.
type AdaptabilityScoreResponse struct {
	Filename          string  `json:"filename"`
	AdaptabilityScore float64 `json:"adaptability_score"`
}

// EstimateExperienceRequest asks for an experience estimate. ReferenceDate
// (YYYY-MM-DD) replaces the current date when resolving "Present".
type EstimateExperienceRequest struct {
	Text          string `json:"text" validate:"required"`
	ReferenceDate string `json:"reference_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
}

// EstimateExperienceResponse is the estimate in months, years and level.
type EstimateExperienceResponse struct {
	Months int     `json:"months"`
	Years  float64 `json:"years"`
	Level  string  `json:"level"`
}

// PredictRequest carries resume text for an auxiliary classifier.
type PredictRequest struct {
	ResumeText string `json:"resume_text" validate:"required"`
}

// DomainPredictionResponse is the predicted domain and its probability.
type DomainPredictionResponse struct {
	PredictedDomain string  `json:"predicted_domain"`
	Confidence      float64 `json:"confidence"`
}

// ExperiencePredictionResponse is the predicted experience level and its
// probability.
type ExperiencePredictionResponse struct {
	PredictedExperienceLevel string  `json:"predicted_experience_level"`
	Confidence               float64 `json:"confidence"`
}

// UploadResumesResponse is returned after a batch is ranked and stored.
type UploadResumesResponse struct {
	Message string         `json:"message"`
	RunID   uuid.UUID      `json:"run_id"`
	Results []ResumeResult `json:"results"`
}

// JobDescriptionResponse acknowledges a stored job description.
type JobDescriptionResponse struct {
	Message    string `json:"message"`
	Filename   string `json:"filename,omitempty"`
	SourceURL  string `json:"source_url,omitempty"`
	Characters int    `json:"characters"`
}

// Validate validates the CalculateScoreRequest using the validator.
func (r *CalculateScoreRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}

// Validate validates the ResumeTextRequest using the validator.
func (r *ResumeTextRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}

// Validate validates the EstimateExperienceRequest using the validator.
func (r *EstimateExperienceRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}

// Validate validates the PredictRequest using the validator.
func (r *PredictRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}
