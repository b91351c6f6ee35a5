package postgres

import (
	"context"

	"github.com/SAP-F-2025/classroom-service/internal/models"
	"github.com/SAP-F-2025/classroom-service/internal/repositories"
	"gorm.io/gorm"
)

type SubmissionPostgreSQL struct {
	db *gorm.DB
}

func NewSubmissionPostgreSQL(db *gorm.DB) repositories.SubmissionRepository {
	return &SubmissionPostgreSQL{db: db}
}

func (s SubmissionPostgreSQL) Create(ctx context.Context, submission *models.Submission) error {
	if submission.Version == 0 {
		submission.Version = 1
	}
	return translate(s.db.WithContext(ctx).Create(submission).Error)
}

func (s SubmissionPostgreSQL) GetByID(ctx context.Context, id uint) (*models.Submission, error) {
	var submission models.Submission
	if err := s.db.WithContext(ctx).First(&submission, id).Error; err != nil {
		return nil, translate(err)
	}
	return &submission, nil
}

func (s SubmissionPostgreSQL) GetByQuizAndStudent(ctx context.Context, quizID uint, studentID string) (*models.Submission, error) {
	var submission models.Submission
	if err := s.db.WithContext(ctx).
		Where("quiz_id = ? AND student_id = ?", quizID, studentID).
		First(&submission).Error; err != nil {
		return nil, translate(err)
	}
	return &submission, nil
}

func (s SubmissionPostgreSQL) ListByQuiz(ctx context.Context, quizID uint, filters repositories.SubmissionFilters) ([]*models.Submission, error) {
	var submissions []*models.Submission

	query := s.db.WithContext(ctx).Model(&models.Submission{}).Where("quiz_id = ?", quizID)
	if filters.Status != nil {
		query = query.Where("status = ?", *filters.Status)
	}
	query = applyPagination(query.Order("id ASC"), filters.Limit, filters.Offset)

	if err := query.Find(&submissions).Error; err != nil {
		return nil, translate(err)
	}
	return submissions, nil
}

func (s SubmissionPostgreSQL) Update(ctx context.Context, submission *models.Submission, expectedVersion int) error {
	result := s.db.WithContext(ctx).
		Model(&models.Submission{}).
		Where("id = ? AND version = ?", submission.ID, expectedVersion).
		Updates(map[string]any{
			"answers":      submission.Answers,
			"item_scores":  submission.ItemScores,
			"earned":       submission.Earned,
			"total":        submission.Total,
			"status":       submission.Status,
			"submitted_at": submission.SubmittedAt,
			"graded_at":    submission.GradedAt,
			"graded_by":    submission.GradedBy,
			"version":      gorm.Expr("version + 1"),
		})
	if result.Error != nil {
		return translate(result.Error)
	}
	if result.RowsAffected == 0 {
		return repositories.ErrVersionConflict
	}

	submission.Version = expectedVersion + 1
	return nil
}
