// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/jonathan/resume-ranker/internal/experience"
	"github.com/jonathan/resume-ranker/internal/store"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
	// maxPreviewLines bounds the job description preview
	maxPreviewLines = 4
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stderr; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(content, "\n") {
		if r := []rune(line); len(r) > boxWidth-4 {
			line = string(r[:boxWidth-7]) + "..."
		}
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, line)
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// PrintJobDescription outputs where the job description came from and its
// first lines.
func (p *Printer) PrintJobDescription(source, text string) {
	if text == "" {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Source:   %s\n", source))
	sb.WriteString(fmt.Sprintf("Length:   %d chars\n", len([]rune(text))))
	sb.WriteString("\n")

	lines := strings.Split(text, "\n")
	for _, line := range lines[:min(len(lines), maxPreviewLines)] {
		sb.WriteString(line + "\n")
	}
	if len(lines) > maxPreviewLines {
		sb.WriteString(fmt.Sprintf("... and %d more lines\n", len(lines)-maxPreviewLines))
	}

	p.printBox("JOB DESCRIPTION", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintRanking outputs the top resumes with their final score, match
// probability and verdict.
func (p *Printer) PrintRanking(ranking *store.Ranking) {
	if ranking == nil || len(ranking.Results) == 0 {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Run:      %s\n", ranking.RunID))
	sb.WriteString(fmt.Sprintf("Resumes:  %d\n", len(ranking.Results)))
	sb.WriteString("\n")

	count := min(len(ranking.Results), maxItemsToShow)
	for i, r := range ranking.Results[:count] {
		sb.WriteString(fmt.Sprintf("%d. %s\n", i+1, r.Filename))
		sb.WriteString(fmt.Sprintf("   score %.2f  p=%.4f  %s\n", r.FinalScore, r.Probability, r.Label))
	}
	if len(ranking.Results) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("... and %d more\n", len(ranking.Results)-maxItemsToShow))
	}

	p.printBox("RANKED RESUMES", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintEstimate outputs the date ranges an experience estimate counted.
func (p *Printer) PrintEstimate(est experience.Estimate) {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Total:    %d months (%.2f years)\n", est.Months, est.Years))
	sb.WriteString(fmt.Sprintf("Level:    %s\n", est.Level))

	if len(est.Ranges) > 0 {
		sb.WriteString("\nRanges:\n")
		for _, r := range est.Ranges {
			sb.WriteString(fmt.Sprintf("  • %s (%d months)\n", r.Raw, r.Months()))
		}
	}

	p.printBox("EXPERIENCE ESTIMATE", strings.TrimSuffix(sb.String(), "\n"))
}
