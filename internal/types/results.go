// Package types provides type definitions for structured data used throughout the resume-ranker system.
//
//nolint:revive // types is a standard Go package name pattern
package types

// Label is the verdict attached to a ranked resume.
type Label string

const (
	// LabelMatched marks a resume accepted by the threshold rule.
	LabelMatched Label = "Matched"
	// LabelNotMatched marks a resume rejected by the threshold rule.
	LabelNotMatched Label = "Not Matched"
)

// PredictedClass returns the binary class that goes with the label.
func (l Label) PredictedClass() int {
	if l == LabelMatched {
		return 1
	}
	return 0
}

// ResumeResult is the scored outcome for one resume. Field names on the wire
// are kept stable for existing dashboard clients.
type ResumeResult struct {
	Filename          string  `json:"resume_filename"`
	SkillMatch        float64 `json:"skill_match"`
	ExperienceScore   float64 `json:"experience_score"`
	SoftSkillsScore   float64 `json:"soft_skills_score"`
	AdaptabilityScore float64 `json:"adaptability_score"`
	FinalScore        float64 `json:"final_ats_score"`
	PredictedClass    int     `json:"bilstm_predicted_class"`
	Probability       float64 `json:"bilstm_prediction_probability"`
	Label             Label   `json:"bilstm_label"`
}

// PlaceholderResult is returned by stores that have never been written to,
// so dashboards always have one row to render.
func PlaceholderResult() ResumeResult {
	return ResumeResult{
		Filename:          "Civil_Engineer_Resume_Dummy.pdf",
		SkillMatch:        65.32,
		ExperienceScore:   58.75,
		SoftSkillsScore:   42.18,
		AdaptabilityScore: 39.45,
		FinalScore:        55.21,
		PredictedClass:    1,
		Probability:       0.6723,
		Label:             LabelMatched,
	}
}

// Document is an uploaded file awaiting text extraction.
type Document struct {
	Filename string
	Data     []byte
}

// LabeledResume is one record of a prepared training dataset.
type LabeledResume struct {
	Text            string  `json:"text"`
	Domain          string  `json:"domain"`
	ExperienceYears float64 `json:"experience_years"`
	ExperienceLevel string  `json:"experience_level"`
}
