package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/xuri/excelize/v2"
)

const (
	sheetOverview = "Overview"
	sheetDates    = "Attempts by date"
	sheetRanges   = "Score ranges"
	sheetSubjects = "Subjects"
	sheetQuizzes  = "Quizzes"
	sheetRecent   = "Recent attempts"
)

type exportService struct {
	dashboard DashboardService
	logger    *slog.Logger
}

func NewExportService(dashboard DashboardService, logger *slog.Logger) ExportService {
	return &exportService{
		dashboard: dashboard,
		logger:    logger,
	}
}

func (s *exportService) WriteAdminReport(ctx context.Context, w io.Writer) error {
	report, err := s.dashboard.GetAdminReport(ctx)
	if err != nil {
		return err
	}

	f, err := buildReportWorkbook(report)
	if err != nil {
		return fmt.Errorf("failed to build workbook: %w", err)
	}
	defer func() {
		if err := f.Close(); err != nil {
			s.logger.Warn("Failed to close workbook", "error", err)
		}
	}()

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

// buildReportWorkbook lays the admin report out as one sheet per section
func buildReportWorkbook(report *AdminReport) (*excelize.File, error) {
	f := excelize.NewFile()

	// The default sheet becomes the overview
	if err := f.SetSheetName("Sheet1", sheetOverview); err != nil {
		return nil, err
	}

	o := report.Overview
	overview := [][]interface{}{
		{"Metric", "Value"},
		{"Total users", o.TotalUsers},
		{"Total subjects", o.TotalSubjects},
		{"Total quizzes", o.TotalQuizzes},
		{"Total questions", o.TotalQuestions},
		{"Total attempts", o.TotalAttempts},
		{"Average score %", o.AverageScorePercent},
	}
	if err := writeRows(f, sheetOverview, overview); err != nil {
		return nil, err
	}

	dates := [][]interface{}{{"Date", "Attempts"}}
	for _, d := range report.AttemptsByDate {
		dates = append(dates, []interface{}{d.Date, d.Count})
	}

	ranges := [][]interface{}{{"Range", "Attempts"}}
	for _, r := range report.ScoreRanges {
		ranges = append(ranges, []interface{}{r.Label, r.Count})
	}

	subjects := [][]interface{}{{"Subject", "Max score", "Attempts"}}
	for _, st := range report.SubjectPerformance {
		subjects = append(subjects, []interface{}{st.SubjectName, st.MaxScore, st.AttemptCount})
	}

	quizzes := [][]interface{}{{"Quiz", "Attempts", "Average score", "Completion %"}}
	for _, q := range report.QuizPerformance {
		quizzes = append(quizzes, []interface{}{q.QuizName, q.AttemptCount, q.AverageScore, q.CompletionRate})
	}

	recent := [][]interface{}{{"User", "Quiz", "Score", "Submitted at"}}
	for _, a := range report.RecentAttempts {
		recent = append(recent, []interface{}{a.UserName, a.QuizName, a.Score, a.Timestamp.UTC().Format("2006-01-02 15:04:05")})
	}

	sheets := []struct {
		name string
		rows [][]interface{}
	}{
		{sheetDates, dates},
		{sheetRanges, ranges},
		{sheetSubjects, subjects},
		{sheetQuizzes, quizzes},
		{sheetRecent, recent},
	}
	for _, sheet := range sheets {
		if _, err := f.NewSheet(sheet.name); err != nil {
			return nil, err
		}
		if err := writeRows(f, sheet.name, sheet.rows); err != nil {
			return nil, err
		}
	}

	f.SetActiveSheet(0)
	return f, nil
}

func writeRows(f *excelize.File, sheet string, rows [][]interface{}) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		values := row
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return fmt.Errorf("sheet %q row %d: %w", sheet, i+1, err)
		}
	}
	return f.SetColWidth(sheet, "A", "A", 24)
}
