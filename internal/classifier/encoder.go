package classifier

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
)

// LabelEncoder maps class labels to contiguous integers in sorted order.
type LabelEncoder struct {
	Classes []string
}

// FitLabelEncoder collects the sorted unique labels.
func FitLabelEncoder(labels []string) *LabelEncoder {
	seen := make(map[string]bool, len(labels))
	classes := make([]string, 0)
	for _, l := range labels {
		if !seen[l] {
			seen[l] = true
			classes = append(classes, l)
		}
	}
	sort.Strings(classes)
	return &LabelEncoder{Classes: classes}
}

// Encode returns the integer for label.
func (e *LabelEncoder) Encode(label string) (int, error) {
	i := sort.SearchStrings(e.Classes, label)
	if i < len(e.Classes) && e.Classes[i] == label {
		return i, nil
	}
	return 0, fmt.Errorf("unknown label %q", label)
}

// Decode returns the label for index i.
func (e *LabelEncoder) Decode(i int) (string, error) {
	if i < 0 || i >= len(e.Classes) {
		return "", fmt.Errorf("class index %d out of range [0,%d)", i, len(e.Classes))
	}
	return e.Classes[i], nil
}

// MarshalJSON writes the classes as a plain list.
func (e *LabelEncoder) MarshalJSON() ([]byte, error) {
	return json.Marshal(e.Classes)
}

// UnmarshalJSON accepts a plain list or an object with a "classes" list.
func (e *LabelEncoder) UnmarshalJSON(data []byte) error {
	var classes []string
	if err := json.Unmarshal(data, &classes); err == nil {
		e.Classes = classes
	} else {
		var wrapped struct {
			Classes []string `json:"classes"`
		}
		if err := json.Unmarshal(data, &wrapped); err != nil {
			return fmt.Errorf("failed to parse label encoder: %w", err)
		}
		e.Classes = wrapped.Classes
	}
	if !sort.StringsAreSorted(e.Classes) {
		return fmt.Errorf("label encoder classes must be sorted")
	}
	return nil
}

// LoadLabelEncoder reads an encoder from a JSON file.
func LoadLabelEncoder(path string) (*LabelEncoder, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read label encoder %s: %w", path, err)
	}
	var enc LabelEncoder
	if err := json.Unmarshal(data, &enc); err != nil {
		return nil, err
	}
	if len(enc.Classes) == 0 {
		return nil, fmt.Errorf("label encoder %s has no classes", path)
	}
	return &enc, nil
}

// Save writes the encoder as a JSON list.
func (e *LabelEncoder) Save(path string) error {
	data, err := json.MarshalIndent(e.Classes, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal label encoder: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write label encoder %s: %w", path, err)
	}
	return nil
}
