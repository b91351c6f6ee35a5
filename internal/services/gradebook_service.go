package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/SAP-F-2025/classroom-service/internal/models"
	"github.com/SAP-F-2025/classroom-service/internal/repositories"
	"github.com/SAP-F-2025/classroom-service/internal/scoring"
	"github.com/xuri/excelize/v2"
)

const (
	gradebookSheet = "Gradebook"
	summarySheet   = "Summary"
	xlsxMIME       = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

type gradebookService struct {
	repo   repositories.Repository
	logger *slog.Logger
}

func NewGradebookService(repo repositories.Repository, logger *slog.Logger) GradebookService {
	return &gradebookService{repo: repo, logger: logger}
}

func (s *gradebookService) Export(ctx context.Context, quizID uint, user *models.User) (*GradebookFile, error) {
	quiz, err := getQuiz(ctx, s.repo, quizID)
	if err != nil {
		return nil, err
	}
	if quiz.OwnerID != user.ID {
		return nil, NewPermissionError(user.ID, quizID, "quiz", "export gradebook of", "not quiz owner")
	}

	submissions, err := s.repo.Submission().ListByQuiz(ctx, quizID, repositories.SubmissionFilters{Limit: -1})
	if err != nil {
		return nil, fmt.Errorf("failed to list submissions: %w", err)
	}
	roster, err := s.repo.Course().CountMembers(ctx, quiz.CourseID)
	if err != nil {
		return nil, fmt.Errorf("failed to count course members: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(gradebookSheet)
	if err != nil {
		return nil, fmt.Errorf("failed to create Excel sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("failed to drop default sheet: %w", err)
	}

	if err := writeRow(f, gradebookSheet, 1, gradebookHeader(len(quiz.Questions))); err != nil {
		return nil, err
	}
	values := make([]models.Submission, 0, len(submissions))
	for i, sub := range submissions {
		if err := writeRow(f, gradebookSheet, i+2, gradebookRow(sub, len(quiz.Questions))); err != nil {
			return nil, err
		}
		values = append(values, *sub)
	}

	stats := scoring.Summarize(values, roster)
	if _, err := f.NewSheet(summarySheet); err != nil {
		return nil, fmt.Errorf("failed to create Excel sheet: %w", err)
	}
	summary := [][]any{
		{"Quiz", quiz.Title},
		{"Total points", scoring.TotalPoints(quiz.Questions)},
		{"Roster size", stats.RosterSize},
		{"Submitted", stats.SubmittedCount},
		{"Graded", stats.GradedCount},
		{"Pending grading", stats.PendingCount},
		{"Average score", stats.AverageScore},
		{"Max score", stats.MaxScore},
		{"Pass rate", stats.PassRate},
	}
	for i, row := range summary {
		if err := writeRow(f, summarySheet, i+1, row); err != nil {
			return nil, err
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write Excel file: %w", err)
	}

	s.logger.Info("Gradebook exported", "quiz_id", quizID, "rows", len(submissions))
	return &GradebookFile{
		FileName:    fmt.Sprintf("quiz-%d-gradebook.xlsx", quizID),
		ContentType: xlsxMIME,
		Data:        buf.Bytes(),
	}, nil
}

func gradebookHeader(questions int) []any {
	header := []any{"Student ID", "Student Name", "Status"}
	for i := 1; i <= questions; i++ {
		header = append(header, fmt.Sprintf("Q%d", i))
	}
	return append(header, "Earned", "Total", "Percentage", "Submitted At", "Graded At")
}

func gradebookRow(sub *models.Submission, questions int) []any {
	row := []any{sub.StudentID, sub.StudentName, string(sub.Status)}

	scores := sub.ItemScores.Data()
	for i := 0; i < questions; i++ {
		if v, ok := scores[i]; ok {
			row = append(row, v)
		} else {
			row = append(row, "")
		}
	}

	percentage := 0.0
	if sub.Total > 0 {
		percentage = sub.Earned / sub.Total * 100
	}
	return append(row, sub.Earned, sub.Total, percentage, formatTime(sub.SubmittedAt), formatTime(sub.GradedAt))
}

func writeRow(f *excelize.File, sheet string, row int, values []any) error {
	for col, value := range values {
		cell, err := excelize.CoordinatesToCellName(col+1, row)
		if err != nil {
			return fmt.Errorf("failed to address cell: %w", err)
		}
		if err := f.SetCellValue(sheet, cell, value); err != nil {
			return fmt.Errorf("failed to write cell %s: %w", cell, err)
		}
	}
	return nil
}

func formatTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
