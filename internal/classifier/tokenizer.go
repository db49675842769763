// Package classifier turns resume text into model input sequences and queries
// trained sequence classifiers hosted on a TensorFlow Serving endpoint.
//
// Tokenization follows the Keras text Tokenizer so word indexes produced at
// training time can be reused unchanged.
package classifier

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
)

// DefaultFilters are the characters replaced by spaces before splitting.
const DefaultFilters = "!\"#$%&()*+,-./:;<=>?@[\\]^_`{|}~\t\n"

// DefaultOOVToken is the out-of-vocabulary token used when fitting.
const DefaultOOVToken = "<OOV>"

// DefaultNumWords caps the vocabulary used when fitting.
const DefaultNumWords = 10000

// Tokenizer maps words to integer indexes.
type Tokenizer struct {
	WordIndex map[string]int `json:"word_index"`
	NumWords  int            `json:"num_words,omitempty"`
	OOVToken  string         `json:"oov_token,omitempty"`
	Filters   string         `json:"filters"`
	Lower     bool           `json:"lower"`
}

// kerasTokenizer is the layout written by tokenizer.to_json(). Several
// config fields are themselves JSON documents encoded as strings.
type kerasTokenizer struct {
	ClassName string `json:"class_name"`
	Config    struct {
		NumWords  *int    `json:"num_words"`
		Filters   string  `json:"filters"`
		Lower     bool    `json:"lower"`
		OOVToken  *string `json:"oov_token"`
		WordIndex string  `json:"word_index"`
	} `json:"config"`
}

// ParseTokenizer decodes either the Keras to_json() layout or the flat
// layout produced by Save.
func ParseTokenizer(data []byte) (*Tokenizer, error) {
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, fmt.Errorf("failed to parse tokenizer JSON: %w", err)
	}

	if _, ok := probe["config"]; ok {
		return parseKerasTokenizer(data)
	}

	var tok Tokenizer
	if err := json.Unmarshal(data, &tok); err != nil {
		return nil, fmt.Errorf("failed to parse tokenizer JSON: %w", err)
	}
	if len(tok.WordIndex) == 0 {
		return nil, fmt.Errorf("tokenizer has an empty word index")
	}
	return &tok, nil
}

func parseKerasTokenizer(data []byte) (*Tokenizer, error) {
	var kt kerasTokenizer
	if err := json.Unmarshal(data, &kt); err != nil {
		return nil, fmt.Errorf("failed to parse keras tokenizer: %w", err)
	}

	tok := &Tokenizer{
		Filters: kt.Config.Filters,
		Lower:   kt.Config.Lower,
	}
	if kt.Config.NumWords != nil {
		tok.NumWords = *kt.Config.NumWords
	}
	if kt.Config.OOVToken != nil {
		tok.OOVToken = *kt.Config.OOVToken
	}
	if err := json.Unmarshal([]byte(kt.Config.WordIndex), &tok.WordIndex); err != nil {
		return nil, fmt.Errorf("failed to parse keras word_index: %w", err)
	}
	if len(tok.WordIndex) == 0 {
		return nil, fmt.Errorf("tokenizer has an empty word index")
	}
	return tok, nil
}

// LoadTokenizer reads a tokenizer from a JSON file.
func LoadTokenizer(path string) (*Tokenizer, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read tokenizer %s: %w", path, err)
	}
	return ParseTokenizer(data)
}

// Save writes the tokenizer in the flat layout.
func (t *Tokenizer) Save(path string) error {
	data, err := json.MarshalIndent(t, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal tokenizer: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write tokenizer %s: %w", path, err)
	}
	return nil
}

// Words splits text the way the tokenizer sees it.
func (t *Tokenizer) Words(text string) []string {
	if t.Lower {
		text = strings.ToLower(text)
	}
	if t.Filters != "" {
		text = strings.Map(func(r rune) rune {
			if strings.ContainsRune(t.Filters, r) {
				return ' '
			}
			return r
		}, text)
	}
	var words []string
	for _, w := range strings.Split(text, " ") {
		if w != "" {
			words = append(words, w)
		}
	}
	return words
}

// Sequence converts text to word indexes. Unknown words, and words outside
// the NumWords cutoff, become the OOV index when an OOV token is configured
// and are dropped otherwise.
func (t *Tokenizer) Sequence(text string) []int {
	oovIndex, hasOOV := 0, false
	if t.OOVToken != "" {
		oovIndex, hasOOV = t.WordIndex[t.OOVToken]
	}

	words := t.Words(text)
	seq := make([]int, 0, len(words))
	for _, w := range words {
		idx, ok := t.WordIndex[w]
		switch {
		case ok && (t.NumWords <= 0 || idx < t.NumWords):
			seq = append(seq, idx)
		case hasOOV:
			seq = append(seq, oovIndex)
		}
	}
	return seq
}

// FitTokenizer builds a word index from texts. Words are ordered by
// descending frequency, ties by first appearance, starting at 1. When
// oovToken is set it takes index 1.
func FitTokenizer(texts []string, numWords int, oovToken string) *Tokenizer {
	tok := &Tokenizer{
		NumWords: numWords,
		OOVToken: oovToken,
		Filters:  DefaultFilters,
		Lower:    true,
	}

	counts := make(map[string]int)
	var order []string
	for _, text := range texts {
		for _, w := range tok.Words(text) {
			if _, seen := counts[w]; !seen {
				order = append(order, w)
			}
			counts[w]++
		}
	}

	sort.SliceStable(order, func(i, j int) bool {
		return counts[order[i]] > counts[order[j]]
	})

	vocab := order
	if oovToken != "" {
		vocab = append([]string{oovToken}, order...)
	}

	tok.WordIndex = make(map[string]int, len(vocab))
	for i, w := range vocab {
		if _, exists := tok.WordIndex[w]; !exists {
			tok.WordIndex[w] = i + 1
		}
	}
	return tok
}
