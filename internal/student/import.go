package student

import (
	"context"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"mathmate/internal/apperr"
)

type SkippedRow struct {
	Row    int    `json:"row"`
	Reason string `json:"reason"`
}

type ImportResult struct {
	Imported int          `json:"imported"`
	Skipped  []SkippedRow `json:"skipped"`
}

// ImportGrades reads the first sheet of an xlsx workbook. The first row is a
// header; column A holds the student name and column B the score. Every
// valid row is stored in one transaction, tagged with quizID and classID.
func (s *Service) ImportGrades(ctx context.Context, workbook io.Reader, quizID, classID *int64) (ImportResult, error) {
	grades, skipped, err := parseGradeSheet(workbook)
	if err != nil {
		return ImportResult{}, err
	}
	if len(grades) == 0 {
		return ImportResult{}, apperr.Validation("spreadsheet has no valid grade rows")
	}

	for idx := range grades {
		grades[idx].QuizID = quizID
		grades[idx].ClassID = classID
	}
	if err := s.repo.AddGrades(ctx, grades); err != nil {
		return ImportResult{}, err
	}

	return ImportResult{Imported: len(grades), Skipped: skipped}, nil
}

func parseGradeSheet(workbook io.Reader) ([]Grade, []SkippedRow, error) {
	f, err := excelize.OpenReader(workbook)
	if err != nil {
		return nil, nil, apperr.Validation("file is not a readable xlsx workbook")
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil, apperr.Validation("workbook has no sheets")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, nil, fmt.Errorf("read sheet %s: %w", sheets[0], err)
	}

	grades := make([]Grade, 0, len(rows))
	skipped := make([]SkippedRow, 0)
	for idx, row := range rows {
		if idx == 0 {
			continue
		}
		rowNumber := idx + 1

		if len(row) == 0 {
			continue
		}
		name := strings.TrimSpace(row[0])
		if name == "" {
			skipped = append(skipped, SkippedRow{Row: rowNumber, Reason: "name is empty"})
			continue
		}
		if len(row) < 2 || strings.TrimSpace(row[1]) == "" {
			skipped = append(skipped, SkippedRow{Row: rowNumber, Reason: "score is empty"})
			continue
		}
		score, err := strconv.ParseFloat(strings.TrimSpace(row[1]), 64)
		if err != nil {
			skipped = append(skipped, SkippedRow{Row: rowNumber, Reason: fmt.Sprintf("score %q is not a number", row[1])})
			continue
		}
		if math.IsNaN(score) || math.IsInf(score, 0) {
			skipped = append(skipped, SkippedRow{Row: rowNumber, Reason: "score is not a finite number"})
			continue
		}

		grades = append(grades, Grade{Name: name, Score: score})
	}

	return grades, skipped, nil
}
