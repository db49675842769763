// Package dataset turns raw {text, domain} records into the labeled dataset
// and preprocessing artifacts the domain and experience classifiers are
// trained and served with.
package dataset

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/jonathan/resume-ranker/internal/classifier"
	"github.com/jonathan/resume-ranker/internal/experience"
	"github.com/jonathan/resume-ranker/internal/logging"
	"github.com/jonathan/resume-ranker/internal/schemas"
	"github.com/jonathan/resume-ranker/internal/types"
	schemafiles "github.com/jonathan/resume-ranker/schemas"
)

// Output file names written by Prepare.
const (
	LabeledFile           = "labeled_dataset.json"
	TokenizerFile         = "tokenizer.json"
	DomainEncoderFile     = "domain_encoder.json"
	ExperienceEncoderFile = "experience_encoder.json"
)

// Record is one raw training example.
type Record struct {
	Text   string `json:"text"`
	Domain string `json:"domain"`
}

// Parse decodes and validates a dataset document.
func Parse(data []byte) ([]Record, error) {
	if err := schemas.ValidateEmbedded(schemafiles.ResumeDataset, data); err != nil {
		return nil, fmt.Errorf("invalid dataset: %w", err)
	}
	var records []Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("failed to decode dataset: %w", err)
	}
	return records, nil
}

// Load reads and parses the dataset at path.
func Load(path string) ([]Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read dataset %s: %w", path, err)
	}
	return Parse(data)
}

// Label estimates experience for every record against ref.
func Label(records []Record, estimator *experience.Estimator, ref time.Time) []types.LabeledResume {
	labeled := make([]types.LabeledResume, len(records))
	for i, r := range records {
		est := estimator.EstimateAt(r.Text, ref)
		labeled[i] = types.LabeledResume{
			Text:            r.Text,
			Domain:          r.Domain,
			ExperienceYears: est.Years,
			ExperienceLevel: string(est.Level),
		}
	}
	return labeled
}

// Options configures Prepare.
type Options struct {
	OutDir    string
	NumWords  int
	OOVToken  string
	Reference time.Time
	Logger    *zap.Logger
}

// Summary describes what Prepare wrote.
type Summary struct {
	Records      int            `json:"records"`
	Vocabulary   int            `json:"vocabulary"`
	Domains      []string       `json:"domains"`
	Levels       []string       `json:"levels"`
	LevelCounts  map[string]int `json:"level_counts"`
	DomainCounts map[string]int `json:"domain_counts"`
	Files        []string       `json:"files"`
}

// Prepare labels records, fits the tokenizer and both label encoders, and
// writes all four artifacts into opts.OutDir.
func Prepare(records []Record, opts Options) (*Summary, error) {
	if len(records) == 0 {
		return nil, fmt.Errorf("dataset is empty")
	}
	logger := logging.OrNop(opts.Logger)
	if opts.NumWords == 0 {
		opts.NumWords = classifier.DefaultNumWords
	}
	if opts.OOVToken == "" {
		opts.OOVToken = classifier.DefaultOOVToken
	}
	if opts.Reference.IsZero() {
		opts.Reference = time.Now()
	}
	if err := os.MkdirAll(opts.OutDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	labeled := Label(records, experience.NewEstimator(), opts.Reference)

	texts := make([]string, len(labeled))
	domains := make([]string, len(labeled))
	levels := make([]string, len(labeled))
	summary := &Summary{
		Records:      len(labeled),
		LevelCounts:  make(map[string]int),
		DomainCounts: make(map[string]int),
	}
	for i, r := range labeled {
		texts[i] = r.Text
		domains[i] = r.Domain
		levels[i] = r.ExperienceLevel
		summary.DomainCounts[r.Domain]++
		summary.LevelCounts[r.ExperienceLevel]++
	}

	tokenizer := classifier.FitTokenizer(texts, opts.NumWords, opts.OOVToken)
	domainEncoder := classifier.FitLabelEncoder(domains)
	levelEncoder := classifier.FitLabelEncoder(levels)
	summary.Vocabulary = len(tokenizer.WordIndex)
	summary.Domains = domainEncoder.Classes
	summary.Levels = levelEncoder.Classes

	labeledPath := filepath.Join(opts.OutDir, LabeledFile)
	if err := writeLabeled(labeledPath, labeled); err != nil {
		return nil, err
	}

	artifacts := []struct {
		name string
		save func(string) error
	}{
		{TokenizerFile, tokenizer.Save},
		{DomainEncoderFile, domainEncoder.Save},
		{ExperienceEncoderFile, levelEncoder.Save},
	}
	summary.Files = []string{labeledPath}
	for _, a := range artifacts {
		path := filepath.Join(opts.OutDir, a.name)
		if err := a.save(path); err != nil {
			return nil, err
		}
		summary.Files = append(summary.Files, path)
	}
	sort.Strings(summary.Files)

	logger.Info("dataset prepared",
		zap.Int("records", summary.Records),
		zap.Int("vocabulary", summary.Vocabulary),
		zap.Strings("domains", summary.Domains),
		zap.Any("levels", summary.LevelCounts),
		zap.String("out_dir", opts.OutDir),
	)
	return summary, nil
}

func writeLabeled(path string, labeled []types.LabeledResume) error {
	data, err := json.MarshalIndent(labeled, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal labeled dataset: %w", err)
	}
	if err := schemas.ValidateEmbedded(schemafiles.LabeledDataset, data); err != nil {
		return fmt.Errorf("labeled dataset failed validation: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
