package scoring

import "strings"

// Keyword lists for the heuristic scorers.
var (
	ExperienceKeywords = []string{
		"years of experience", "worked at", "senior", "junior", "intern",
	}
	SoftSkillKeywords = []string{
		"communication", "teamwork", "leadership", "problem-solving", "adaptability", "collaboration",
	}
	AdaptabilityKeywords = []string{
		"fast learner", "adapt", "new skills", "multitasking", "cross-functional",
	}
)

const (
	pointsPerHit    = 10
	maxKeywordScore = 100
)

// KeywordScore counts case-insensitive substring occurrences of each keyword
// in text, so "adapt" also hits "adaptable". Each hit is worth ten points,
// capped at 100.
func KeywordScore(text string, keywords []string) float64 {
	lower := strings.ToLower(text)
	hits := 0
	for _, kw := range keywords {
		hits += strings.Count(lower, strings.ToLower(kw))
	}
	return float64(min(hits*pointsPerHit, maxKeywordScore))
}

// ExperienceKeywordScore scores experience-related phrasing.
func ExperienceKeywordScore(text string) float64 {
	return KeywordScore(text, ExperienceKeywords)
}

// SoftSkillKeywordScore scores soft skill vocabulary.
func SoftSkillKeywordScore(text string) float64 {
	return KeywordScore(text, SoftSkillKeywords)
}

// AdaptabilityKeywordScore scores adaptability vocabulary.
func AdaptabilityKeywordScore(text string) float64 {
	return KeywordScore(text, AdaptabilityKeywords)
}
