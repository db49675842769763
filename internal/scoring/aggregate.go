// Package scoring combines per-dimension resume scores into a final score and
// match verdict, and provides the keyword heuristics used by the standalone
// scoring endpoints.
package scoring

import (
	"github.com/jonathan/resume-ranker/internal/similarity"
	"github.com/jonathan/resume-ranker/internal/types"
)

// Weights for the final score. They sum to 1.
const (
	skillWeight        = 0.4
	experienceWeight   = 0.3
	softSkillsWeight   = 0.2
	adaptabilityWeight = 0.1
)

const (
	// MatchThreshold is the classifier probability below which a low-scoring
	// resume is rejected.
	MatchThreshold = 0.5108
	// LowScoreCutoff is the final score below which the classifier verdict
	// is consulted.
	LowScoreCutoff = 35.0
	// DefaultFallbackProbability stands in when no classifier is available.
	DefaultFallbackProbability = 0.55
)

// Reference phrases the experience, soft skill and adaptability dimensions
// are measured against. Skill match uses the job description itself.
const (
	ExperienceReference   = "Experience in AI and ML"
	SoftSkillsReference   = "Strong communication and collaboration"
	AdaptabilityReference = "Adaptable to cross-industry roles"
)

// SubScores are the four 0-100 dimension scores of one resume.
type SubScores struct {
	Skill        float64
	Experience   float64
	SoftSkills   float64
	Adaptability float64
}

// FinalScore is the weighted sum of the sub-scores, rounded to two decimals.
func FinalScore(s SubScores) float64 {
	total := skillWeight*s.Skill +
		experienceWeight*s.Experience +
		softSkillsWeight*s.SoftSkills +
		adaptabilityWeight*s.Adaptability
	return similarity.Round(total, 2)
}

// Verdict applies the threshold rule: a resume is rejected only when its
// final score is below LowScoreCutoff and the probability is below
// MatchThreshold.
func Verdict(finalScore, probability float64) types.Label {
	if finalScore < LowScoreCutoff && probability < MatchThreshold {
		return types.LabelNotMatched
	}
	return types.LabelMatched
}

// Result assembles the immutable record for one resume.
func Result(filename string, s SubScores, probability float64) types.ResumeResult {
	final := FinalScore(s)
	label := Verdict(final, probability)
	return types.ResumeResult{
		Filename:          filename,
		SkillMatch:        s.Skill,
		ExperienceScore:   s.Experience,
		SoftSkillsScore:   s.SoftSkills,
		AdaptabilityScore: s.Adaptability,
		FinalScore:        final,
		PredictedClass:    label.PredictedClass(),
		Probability:       similarity.Round(probability, 4),
		Label:             label,
	}
}
