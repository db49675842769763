package ingestion

import (
	"bytes"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"
	"go.uber.org/zap"

	"github.com/jonathan/resume-ranker/internal/fetch"
	"github.com/jonathan/resume-ranker/internal/types"
)

// ErrUnsupportedFileType is returned for documents whose extension has no extractor.
var ErrUnsupportedFileType = errors.New("unsupported file type")

// ErrEmptyDocument is returned when a document yields no text.
var ErrEmptyDocument = errors.New("document contains no extractable text")

var extractors = map[string]func([]byte) (string, error){
	".pdf":  extractPDF,
	".txt":  extractPlain,
	".text": extractPlain,
	".md":   extractPlain,
	".html": extractHTML,
	".htm":  extractHTML,
}

// SupportedExtensions lists the file extensions ExtractText understands.
func SupportedExtensions() []string {
	return []string{".htm", ".html", ".md", ".pdf", ".text", ".txt"}
}

// Supported reports whether filename has an extension ExtractText understands.
func Supported(filename string) bool {
	_, ok := extractors[strings.ToLower(filepath.Ext(filename))]
	return ok
}

// ExtractText returns the cleaned plain text of a document, choosing the
// extractor by file extension.
func ExtractText(filename string, data []byte) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	extract, ok := extractors[ext]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFileType, ext)
	}

	raw, err := extract(data)
	if err != nil {
		return "", fmt.Errorf("failed to extract %s: %w", filename, err)
	}

	text := CleanText(raw)
	if text == "" {
		return "", fmt.Errorf("%s: %w", filename, ErrEmptyDocument)
	}
	return text, nil
}

// Extractor turns uploaded documents into text, degrading to an empty
// string when a document cannot be read.
type Extractor struct {
	logger *zap.Logger
}

// NewExtractor creates an Extractor. A nil logger discards failures.
func NewExtractor(logger *zap.Logger) *Extractor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Extractor{logger: logger}
}

// Text returns the document text, or "" if extraction fails.
func (e *Extractor) Text(doc types.Document) string {
	text, err := ExtractText(doc.Filename, doc.Data)
	if err != nil {
		e.logger.Warn("text extraction failed",
			zap.String("filename", doc.Filename),
			zap.Int("bytes", len(doc.Data)),
			zap.Error(err))
		return ""
	}
	return text
}

// extractPDF concatenates the plain text of every page. Pages that fail to
// decode are skipped.
func extractPDF(data []byte) (text string, err error) {
	// the pdf reader panics on some malformed cross-reference tables
	defer func() {
		if r := recover(); r != nil {
			text, err = "", fmt.Errorf("malformed PDF: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to open PDF: %w", err)
	}

	var sb strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		pageText, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		sb.WriteString(pageText)
		sb.WriteString("\n")
	}
	return sb.String(), nil
}

func extractPlain(data []byte) (string, error) {
	if !utf8.Valid(data) {
		return strings.ToValidUTF8(string(data), " "), nil
	}
	return string(data), nil
}

func extractHTML(data []byte) (string, error) {
	return fetch.ExtractMainText(string(data), fetch.JobPostingSelectors(), fetch.PlatformNoiseSelectors(fetch.PlatformUnknown)...)
}
