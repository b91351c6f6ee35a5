package services

import (
	"bytes"
	"context"
	"testing"

	"github.com/SAP-F-2025/classroom-service/internal/models"
	"github.com/SAP-F-2025/classroom-service/internal/repositories"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestGradebookService_Export(t *testing.T) {
	ctx := context.Background()
	repo := newMockRepository()
	graded := pendingSubmission()
	graded.Status = models.SubmissionSubmitted
	graded.Earned = 6

	repo.quizzes.On("GetByID", ctx, uint(10)).Return(sampleQuiz(), nil)
	repo.submissions.On("ListByQuiz", ctx, uint(10), repositories.SubmissionFilters{Limit: -1}).Return([]*models.Submission{graded}, nil)
	repo.courses.On("CountMembers", ctx, uint(5)).Return(3, nil)

	file, err := NewGradebookService(repo, testLogger()).Export(ctx, 10, teacher)
	require.NoError(t, err)
	assert.Equal(t, "quiz-10-gradebook.xlsx", file.FileName)

	book, err := excelize.OpenReader(bytes.NewReader(file.Data))
	require.NoError(t, err)
	defer book.Close()

	assert.Equal(t, []string{"Gradebook", "Summary"}, book.GetSheetList())

	rows, err := book.GetRows("Gradebook")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"Student ID", "Student Name", "Status", "Q1", "Q2", "Q3", "Earned", "Total", "Percentage", "Submitted At", "Graded At"}, rows[0])
	assert.Equal(t, student.ID, rows[1][0])
	assert.Equal(t, "submitted", rows[1][2])
	assert.Equal(t, "2", rows[1][3])
	assert.Equal(t, "6", rows[1][6])
	assert.Equal(t, "75", rows[1][8])

	rosterCell, err := book.GetCellValue("Summary", "B3")
	require.NoError(t, err)
	assert.Equal(t, "3", rosterCell)
}

func TestGradebookService_Export_OwnerOnly(t *testing.T) {
	ctx := context.Background()
	repo := newMockRepository()
	repo.quizzes.On("GetByID", ctx, uint(10)).Return(sampleQuiz(), nil)

	_, err := NewGradebookService(repo, testLogger()).Export(ctx, 10, student)
	assert.True(t, IsUnauthorized(err))
}
