package services

import (
	"context"

	"github.com/SAP-F-2025/classroom-service/internal/changefeed"
	"github.com/SAP-F-2025/classroom-service/internal/models"
	"github.com/SAP-F-2025/classroom-service/internal/repositories"
)

type CourseService interface {
	Create(ctx context.Context, req *CreateCourseRequest, user *models.User) (*models.Course, error)
	GetByID(ctx context.Context, id uint, user *models.User) (*models.Course, error)
	ListMine(ctx context.Context, user *models.User) ([]*models.Course, error)
	UpdateSchedule(ctx context.Context, id uint, req *UpdateScheduleRequest, user *models.User) (*models.Course, error)
	Join(ctx context.Context, id uint, user *models.User) (*models.Course, error)

	// CheckSchedule is a dry run of the conflict check a save would make.
	CheckSchedule(ctx context.Context, req *CheckScheduleRequest, user *models.User) (*ScheduleCheckResponse, error)
}

type QuizService interface {
	Create(ctx context.Context, req *CreateQuizRequest, user *models.User) (*models.Quiz, error)
	Update(ctx context.Context, id uint, req *UpdateQuizRequest, user *models.User) (*models.Quiz, error)
	// GetByID returns the full quiz to its owner and a keyless view to
	// course members.
	GetByID(ctx context.Context, id uint, user *models.User) (*QuizResponse, error)
	ListByCourse(ctx context.Context, courseID uint, user *models.User) ([]*QuizResponse, error)
}

type SubmissionService interface {
	Start(ctx context.Context, quizID uint, user *models.User) (*models.Submission, error)
	Submit(ctx context.Context, id uint, req *SubmitAnswersRequest, user *models.User) (*models.Submission, error)
	GetByID(ctx context.Context, id uint, user *models.User) (*models.Submission, error)
	ListByQuiz(ctx context.Context, quizID uint, filters repositories.SubmissionFilters, user *models.User) ([]*models.Submission, error)
}

type GradingService interface {
	SaveGrades(ctx context.Context, submissionID uint, req *SaveGradesRequest, user *models.User) (*models.Submission, error)
	Stats(ctx context.Context, quizID uint, user *models.User) (*QuizStatsResponse, error)
}

type GradebookService interface {
	// Export renders every submission of the quiz as an xlsx workbook.
	Export(ctx context.Context, quizID uint, user *models.User) (*GradebookFile, error)
}

// ChangePublisher announces stored writes to live subscribers.
type ChangePublisher interface {
	Publish(ctx context.Context, collection string, op changefeed.Operation, id uint, owner string, doc any) error
}

type ChangeFeed interface {
	ChangePublisher
	Subscribe(ctx context.Context, collection string, filter changefeed.Filter) (<-chan changefeed.Change, error)
}

// Notifier delivers notifications. Delivery failures are logged and never
// returned to the caller.
type Notifier interface {
	Notify(ctx context.Context, req *NotifyRequest)
}

type NotificationService interface {
	Notifier
	List(ctx context.Context, user *models.User, filters repositories.NotificationFilters) ([]*models.Notification, error)
	MarkRead(ctx context.Context, id uint, user *models.User) error
	Stream(ctx context.Context, user *models.User) (<-chan changefeed.Change, error)
}
