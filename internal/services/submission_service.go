package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/SAP-F-2025/classroom-service/internal/cache"
	"github.com/SAP-F-2025/classroom-service/internal/changefeed"
	"github.com/SAP-F-2025/classroom-service/internal/events"
	"github.com/SAP-F-2025/classroom-service/internal/models"
	"github.com/SAP-F-2025/classroom-service/internal/repositories"
	"github.com/SAP-F-2025/classroom-service/internal/scoring"
	"gorm.io/datatypes"
)

// CollectionSubmissions is the change stream of submission writes, keyed
// by the quiz owner.
const CollectionSubmissions = "submissions"

type submissionService struct {
	repo     repositories.Repository
	cache    cache.CacheService
	changes  ChangePublisher
	notifier Notifier
	logger   *slog.Logger
	opLog    *ServiceLogger
}

func NewSubmissionService(repo repositories.Repository, cacheService cache.CacheService, changes ChangePublisher, notifier Notifier, logger *slog.Logger) SubmissionService {
	return &submissionService{
		repo:     repo,
		cache:    cacheService,
		changes:  changes,
		notifier: notifier,
		logger:   logger,
		opLog:    NewServiceLogger(logger, "submission"),
	}
}

// ===== CORE SUBMISSION OPERATIONS =====

// Start opens the student's single submission for a quiz. Calling it again
// returns the existing submission whatever its status.
func (s *submissionService) Start(ctx context.Context, quizID uint, user *models.User) (*models.Submission, error) {
	s.logger.Info("Starting quiz", "quiz_id", quizID, "student_id", user.ID)

	quiz, err := getQuiz(ctx, s.repo, quizID)
	if err != nil {
		return nil, err
	}

	member, err := s.repo.Course().IsMember(ctx, quiz.CourseID, user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to check membership: %w", err)
	}
	if !member {
		return nil, ErrQuizAccessDenied
	}
	if !quiz.IsReleased(now()) {
		return nil, ErrQuizNotReleased
	}

	existing, err := s.repo.Submission().GetByQuizAndStudent(ctx, quizID, user.ID)
	if err == nil {
		s.logger.Info("Resuming existing submission", "submission_id", existing.ID, "status", existing.Status)
		return existing, nil
	}
	if !repositories.IsNotFoundError(err) {
		return nil, fmt.Errorf("failed to get submission: %w", err)
	}

	submission := &models.Submission{
		QuizID:      quizID,
		StudentID:   user.ID,
		StudentName: user.FullName,
		Answers:     datatypes.NewJSONType(models.AnswerSet{}),
		ItemScores:  datatypes.NewJSONType(models.ItemScores{}),
		Total:       scoring.TotalPoints(quiz.Questions),
		Status:      models.SubmissionInProgress,
		StartedAt:   now(),
		Version:     1,
	}
	if err := s.repo.Submission().Create(ctx, submission); err != nil {
		if repositories.IsDuplicateError(err) {
			// Lost a race with a parallel start for the same student.
			winner, err := s.repo.Submission().GetByQuizAndStudent(ctx, quizID, user.ID)
			if err != nil {
				if repositories.IsNotFoundError(err) {
					return nil, ErrSubmissionNotFound
				}
				return nil, fmt.Errorf("failed to get submission: %w", err)
			}
			s.logger.Info("Resuming submission created concurrently", "submission_id", winner.ID)
			return winner, nil
		}
		return nil, fmt.Errorf("failed to create submission: %w", err)
	}

	s.publish(ctx, changefeed.OperationCreate, submission, quiz.OwnerID)
	return submission, nil
}

// Submit auto-grades the answers and closes the attempt. Submissions with
// manually graded text items wait in pending_grading for the teacher.
func (s *submissionService) Submit(ctx context.Context, id uint, req *SubmitAnswersRequest, user *models.User) (submission *models.Submission, err error) {
	op := s.opLog.WithOperation(ctx, "submit", user.ID)
	defer func() { op.LogResult(id, "submission", err) }()

	submission, err = getSubmission(ctx, s.repo, id)
	if err != nil {
		return nil, err
	}
	if submission.StudentID != user.ID {
		return nil, NewPermissionError(user.ID, id, "submission", "submit", "not submission owner")
	}
	if submission.Status != models.SubmissionInProgress {
		return nil, ErrSubmissionAlreadySubmitted
	}

	quiz, err := getQuiz(ctx, s.repo, submission.QuizID)
	if err != nil {
		return nil, err
	}

	answers := req.Answers
	if answers == nil {
		answers = models.AnswerSet{}
	}
	result, err := scoring.Score(quiz.Questions, answers)
	if err != nil {
		return nil, fmt.Errorf("failed to score submission: %w", err)
	}

	itemScores := make(models.ItemScores, len(result.Items))
	for _, item := range result.Items {
		itemScores[item.Index] = item.Earned
	}

	submittedAt := now()
	submission.Answers = datatypes.NewJSONType(answers)
	submission.ItemScores = datatypes.NewJSONType(itemScores)
	submission.Earned = result.EarnedPoints
	submission.Total = result.TotalPoints
	submission.SubmittedAt = &submittedAt
	submission.Status = models.SubmissionSubmitted
	if result.HasManualGrading {
		submission.Status = models.SubmissionPendingGrading
	}

	if err := s.repo.Submission().Update(ctx, submission, submission.Version); err != nil {
		if repositories.IsVersionConflict(err) {
			return nil, ErrSubmissionVersionConflict
		}
		return nil, fmt.Errorf("failed to save submission: %w", err)
	}
	dropQuizStats(ctx, s.cache, s.logger, quiz.ID)

	s.logger.Info("Submission received",
		"submission_id", id,
		"quiz_id", quiz.ID,
		"earned", result.EarnedPoints,
		"total", result.TotalPoints,
		"status", submission.Status)

	s.publish(ctx, changefeed.OperationUpdate, submission, quiz.OwnerID)
	s.notifyOwner(ctx, quiz, submission, result.HasManualGrading)
	return submission, nil
}

func (s *submissionService) GetByID(ctx context.Context, id uint, user *models.User) (*models.Submission, error) {
	submission, err := getSubmission(ctx, s.repo, id)
	if err != nil {
		return nil, err
	}
	if submission.StudentID == user.ID {
		return submission, nil
	}

	quiz, err := getQuiz(ctx, s.repo, submission.QuizID)
	if err != nil {
		return nil, err
	}
	if quiz.OwnerID != user.ID {
		return nil, ErrSubmissionAccessDenied
	}
	return submission, nil
}

func (s *submissionService) ListByQuiz(ctx context.Context, quizID uint, filters repositories.SubmissionFilters, user *models.User) ([]*models.Submission, error) {
	quiz, err := getQuiz(ctx, s.repo, quizID)
	if err != nil {
		return nil, err
	}
	if quiz.OwnerID != user.ID {
		return nil, NewPermissionError(user.ID, quizID, "quiz", "list submissions of", "not quiz owner")
	}

	submissions, err := s.repo.Submission().ListByQuiz(ctx, quizID, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list submissions: %w", err)
	}
	return submissions, nil
}

// ===== HELPERS =====

func (s *submissionService) publish(ctx context.Context, op changefeed.Operation, submission *models.Submission, owner string) {
	if s.changes == nil {
		return
	}
	if err := s.changes.Publish(ctx, CollectionSubmissions, op, submission.ID, owner, submission); err != nil {
		s.logger.Warn("Failed to publish submission change", "submission_id", submission.ID, "error", err)
	}
}

func (s *submissionService) notifyOwner(ctx context.Context, quiz *models.Quiz, submission *models.Submission, needsGrading bool) {
	kind := models.NotificationSubmissionReceived
	title := fmt.Sprintf("%s submitted %s", submission.StudentName, quiz.Title)
	if needsGrading {
		kind = models.NotificationGradingRequired
		title = fmt.Sprintf("%s needs grading for %s", submission.StudentName, quiz.Title)
	}

	s.notifier.Notify(ctx, &NotifyRequest{
		Recipients: []string{quiz.OwnerID},
		Title:      title,
		Kind:       kind,
		Detail:     fmt.Sprintf("Auto score %.2f / %.2f", submission.Earned, submission.Total),
		Metadata: map[string]any{
			"quiz_id":       quiz.ID,
			"submission_id": submission.ID,
			"student_id":    submission.StudentID,
		},
		Event: events.NewSubmissionReceivedEvent(events.SubmissionReceivedEvent{
			SubmissionID:    submission.ID,
			QuizID:          quiz.ID,
			QuizTitle:       quiz.Title,
			StudentID:       submission.StudentID,
			StudentName:     submission.StudentName,
			OwnerID:         quiz.OwnerID,
			SubmittedAt:     *submission.SubmittedAt,
			EarnedPoints:    submission.Earned,
			TotalPoints:     submission.Total,
			GradingRequired: needsGrading,
		}),
	})
}

func getQuiz(ctx context.Context, repo repositories.Repository, id uint) (*models.Quiz, error) {
	quiz, err := repo.Quiz().GetByID(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrQuizNotFound
		}
		return nil, fmt.Errorf("failed to get quiz: %w", err)
	}
	return quiz, nil
}

func getSubmission(ctx context.Context, repo repositories.Repository, id uint) (*models.Submission, error) {
	submission, err := repo.Submission().GetByID(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrSubmissionNotFound
		}
		return nil, fmt.Errorf("failed to get submission: %w", err)
	}
	return submission, nil
}
