package repositories

import (
	"context"
	"time"

	"github.com/SAP-F-2025/classroom-service/internal/models"
)

// Repository groups the per-collection repositories.
type Repository interface {
	Quiz() QuizRepository
	Submission() SubmissionRepository
	Course() CourseRepository
	Notification() NotificationRepository
}

type QuizRepository interface {
	Create(ctx context.Context, quiz *models.Quiz) error
	GetByID(ctx context.Context, id uint) (*models.Quiz, error)
	Update(ctx context.Context, quiz *models.Quiz) error
	ListByCourse(ctx context.Context, courseID uint) ([]*models.Quiz, error)
}

type SubmissionRepository interface {
	// Create fails with ErrDuplicate when the student already has a
	// submission for the quiz.
	Create(ctx context.Context, submission *models.Submission) error
	GetByID(ctx context.Context, id uint) (*models.Submission, error)
	GetByQuizAndStudent(ctx context.Context, quizID uint, studentID string) (*models.Submission, error)
	ListByQuiz(ctx context.Context, quizID uint, filters SubmissionFilters) ([]*models.Submission, error)

	// Update saves the submission only if its stored version still equals
	// expectedVersion, then bumps submission.Version. Zero matched rows
	// yield ErrVersionConflict.
	Update(ctx context.Context, submission *models.Submission, expectedVersion int) error
}

type CourseRepository interface {
	Create(ctx context.Context, course *models.Course) error
	GetByID(ctx context.Context, id uint) (*models.Course, error)
	UpdateSchedule(ctx context.Context, id uint, slots []models.ScheduleSlot) error
	ListByOwner(ctx context.Context, ownerID string) ([]*models.Course, error)
	ListJoinedBy(ctx context.Context, userID string) ([]*models.Course, error)

	AddMember(ctx context.Context, member *models.CourseMember) error
	IsMember(ctx context.Context, courseID uint, userID string) (bool, error)
	ListMemberIDs(ctx context.Context, courseID uint) ([]string, error)
	CountMembers(ctx context.Context, courseID uint) (int, error)
}

type NotificationRepository interface {
	Create(ctx context.Context, notification *models.Notification) error
	ListByUser(ctx context.Context, userID string, filters NotificationFilters) ([]*models.Notification, error)
	MarkRead(ctx context.Context, id uint, userID string, readAt time.Time) error
}

// ===== SHARED FILTER STRUCTS =====

// SubmissionFilters narrows a submission listing. Limit 0 uses the default
// page size; a negative Limit returns every row.
type SubmissionFilters struct {
	Status *models.SubmissionStatus `json:"status"`
	Limit  int                      `json:"limit"`
	Offset int                      `json:"offset"`
}

type NotificationFilters struct {
	UnreadOnly bool `json:"unread_only"`
	Limit      int  `json:"limit"`
	Offset     int  `json:"offset"`
}
