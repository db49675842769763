// Package ingestion turns uploaded documents and job posting URLs into plain
// text ready for scoring.
package ingestion

import (
	"regexp"
	"strings"
)

var (
	spaceRun     = regexp.MustCompile(`\s+`)
	blankLineRun = regexp.MustCompile(`\n\n\n+`)
)

// bulletMarks are list markers PDF and word-processor exports produce; they
// are rewritten to "- ".
var bulletMarks = []string{"• ", "· ", "▪ ", "‣ ", "◦ "}

// CleanText normalizes line endings, collapses whitespace inside lines,
// rewrites bullet markers and keeps at most one blank line between blocks.
func CleanText(content string) string {
	if content == "" {
		return ""
	}

	content = strings.ReplaceAll(content, "\r\n", "\n")
	content = strings.ReplaceAll(content, "\r", "\n")
	content = strings.ReplaceAll(content, "\u00a0", " ")
	content = strings.ReplaceAll(content, "\f", "\n")

	lines := strings.Split(content, "\n")
	for i, line := range lines {
		lines[i] = cleanLine(line)
	}

	result := blankLineRun.ReplaceAllString(strings.Join(lines, "\n"), "\n\n")
	return strings.TrimSpace(result)
}

// cleanLine trims a line and collapses its internal whitespace. Headings
// and bullets lose their indentation; other lines keep it.
func cleanLine(line string) string {
	line = strings.TrimRight(line, " \t")
	trimmed := strings.TrimLeft(line, " \t")
	if trimmed == "" {
		return ""
	}

	if strings.HasPrefix(trimmed, "#") {
		return trimmed
	}

	for _, mark := range bulletMarks {
		if strings.HasPrefix(trimmed, mark) {
			trimmed = "- " + strings.TrimPrefix(trimmed, mark)
			break
		}
	}
	if isBulletLine(trimmed) {
		return trimmed[:2] + spaceRun.ReplaceAllString(strings.TrimSpace(trimmed[2:]), " ")
	}

	indent := len(line) - len(trimmed)
	return strings.Repeat(" ", indent) + spaceRun.ReplaceAllString(trimmed, " ")
}

func isBulletLine(line string) bool {
	return strings.HasPrefix(line, "- ") || strings.HasPrefix(line, "* ")
}
