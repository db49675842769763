// Package experience estimates years of professional experience from free
// text by summing the date ranges it mentions, and buckets the result into
// coarse seniority levels.
package experience

import "time"

// Level is a coarse seniority bucket.
type Level string

const (
	// LevelEntry is under two years.
	LevelEntry Level = "Entry"
	// LevelMid is two to five years inclusive.
	LevelMid Level = "Mid"
	// LevelSenior is over five years.
	LevelSenior Level = "Senior"
)

// LevelFor buckets a number of years.
func LevelFor(years float64) Level {
	switch {
	case years < 2:
		return LevelEntry
	case years <= 5:
		return LevelMid
	default:
		return LevelSenior
	}
}

// Estimate is the outcome of scanning a text for date ranges.
type Estimate struct {
	Months int         `json:"months"`
	Years  float64     `json:"years"`
	Level  Level       `json:"level"`
	Ranges []DateRange `json:"ranges,omitempty"`
}

// Estimator scans text for employment date ranges. Now supplies the
// reference time used for "Present"; nil means time.Now.
type Estimator struct {
	Now func() time.Time
}

// NewEstimator returns an Estimator using the wall clock.
func NewEstimator() *Estimator {
	return &Estimator{Now: time.Now}
}

func (e *Estimator) now() time.Time {
	if e == nil || e.Now == nil {
		return time.Now()
	}
	return e.Now()
}

// Estimate scans text using the estimator's clock.
func (e *Estimator) Estimate(text string) Estimate {
	return e.EstimateAt(text, e.now())
}

// EstimateAt scans text, resolving "Present" to ref. Overlapping ranges are
// not merged. Text without any parsable range yields zero years.
func (e *Estimator) EstimateAt(text string, ref time.Time) Estimate {
	ranges := findRanges(text, ref)

	total := 0
	for _, r := range ranges {
		total += r.Months()
	}

	years := float64(total) / 12
	return Estimate{
		Months: total,
		Years:  years,
		Level:  LevelFor(years),
		Ranges: ranges,
	}
}

// EstimateYears returns only the year count.
func (e *Estimator) EstimateYears(text string) float64 {
	return e.Estimate(text).Years
}

// EstimateYears scans text against the current time.
func EstimateYears(text string) float64 {
	return NewEstimator().EstimateYears(text)
}
