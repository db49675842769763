// Package export renders rankings as Excel workbooks.
package export

import (
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"github.com/jonathan/resume-ranker/internal/store"
)

// Sheet names in the generated workbook.
const (
	RankingSheet = "Ranking"
	SummarySheet = "Summary"
)

// ContentType is the MIME type of the generated workbook.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

var rankingHeaders = []string{
	"Rank",
	"Resume",
	"Skill Match",
	"Experience",
	"Soft Skills",
	"Adaptability",
	"Final Score",
	"Match Probability",
	"Predicted Class",
	"Label",
}

// Filename returns a download name for a ranking created at t.
func Filename(t time.Time) string {
	if t.IsZero() {
		return "ranked_results.xlsx"
	}
	return fmt.Sprintf("ranked_results_%s.xlsx", t.UTC().Format("20060102_150405"))
}

// WriteRanking writes ranking as an xlsx workbook to w. Results are written
// in their stored order.
func WriteRanking(w io.Writer, ranking *store.Ranking, generated time.Time) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", RankingSheet); err != nil {
		return fmt.Errorf("failed to rename sheet: %w", err)
	}
	if _, err := f.NewSheet(SummarySheet); err != nil {
		return fmt.Errorf("failed to create summary sheet: %w", err)
	}

	if err := writeRankingSheet(f, ranking); err != nil {
		return fmt.Errorf("failed to create ranking sheet: %w", err)
	}
	if err := writeSummarySheet(f, ranking, generated); err != nil {
		return fmt.Errorf("failed to create summary sheet: %w", err)
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func writeRankingSheet(f *excelize.File, ranking *store.Ranking) error {
	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return err
	}
	rejectedStyle, err := f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Color: []string{"F8CBAD"}, Pattern: 1},
	})
	if err != nil {
		return err
	}

	for i, h := range rankingHeaders {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(RankingSheet, cell, h); err != nil {
			return err
		}
	}
	lastCol, err := excelize.ColumnNumberToName(len(rankingHeaders))
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(RankingSheet, "A1", lastCol+"1", headerStyle); err != nil {
		return err
	}
	if err := f.SetColWidth(RankingSheet, "B", "B", 40); err != nil {
		return err
	}
	if err := f.SetColWidth(RankingSheet, "C", lastCol, 16); err != nil {
		return err
	}

	for i, r := range ranking.Results {
		row := i + 2
		values := []any{
			i + 1,
			r.Filename,
			r.SkillMatch,
			r.ExperienceScore,
			r.SoftSkillsScore,
			r.AdaptabilityScore,
			r.FinalScore,
			r.Probability,
			r.PredictedClass,
			string(r.Label),
		}
		start, err := excelize.CoordinatesToCellName(1, row)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(RankingSheet, start, &values); err != nil {
			return err
		}
		if r.PredictedClass == 0 {
			if err := f.SetCellStyle(RankingSheet, start, fmt.Sprintf("%s%d", lastCol, row), rejectedStyle); err != nil {
				return err
			}
		}
	}

	return f.SetPanes(RankingSheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
}

func writeSummarySheet(f *excelize.File, ranking *store.Ranking, generated time.Time) error {
	matched := 0
	total := 0.0
	for _, r := range ranking.Results {
		if r.PredictedClass == 1 {
			matched++
		}
		total += r.FinalScore
	}
	average := 0.0
	if n := len(ranking.Results); n > 0 {
		average = total / float64(n)
	}

	runID := ""
	if ranking.RunID != uuid.Nil {
		runID = ranking.RunID.String()
	}

	rows := [][]any{
		{"Run ID", runID},
		{"Generated", generated.UTC().Format(time.RFC3339)},
		{"Resumes", len(ranking.Results)},
		{"Matched", matched},
		{"Not Matched", len(ranking.Results) - matched},
		{"Average Final Score", average},
	}
	for i, row := range rows {
		if err := f.SetSheetRow(SummarySheet, fmt.Sprintf("A%d", i+1), &row); err != nil {
			return err
		}
	}
	return f.SetColWidth(SummarySheet, "A", "A", 24)
}
