// Package schemas holds the JSON Schema documents for persisted artifacts.
package schemas

import "embed"

// Schema file names.
const (
	RankedResults  = "ranked_results.schema.json"
	ResumeDataset  = "resume_dataset.schema.json"
	LabeledDataset = "labeled_dataset.schema.json"
)

// FS contains every *.schema.json file in this directory.
//
//go:embed *.schema.json
var FS embed.FS
