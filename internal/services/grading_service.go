package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/SAP-F-2025/classroom-service/internal/cache"
	"github.com/SAP-F-2025/classroom-service/internal/changefeed"
	"github.com/SAP-F-2025/classroom-service/internal/events"
	"github.com/SAP-F-2025/classroom-service/internal/models"
	"github.com/SAP-F-2025/classroom-service/internal/repositories"
	"github.com/SAP-F-2025/classroom-service/internal/scoring"
	"github.com/SAP-F-2025/classroom-service/internal/validator"
	"gorm.io/datatypes"
)

const statsCacheTTL = time.Minute

type gradingService struct {
	repo      repositories.Repository
	cache     cache.CacheService
	changes   ChangePublisher
	notifier  Notifier
	logger    *slog.Logger
	opLog     *ServiceLogger
	validator *validator.Validator
}

func NewGradingService(repo repositories.Repository, cacheService cache.CacheService, changes ChangePublisher, notifier Notifier, logger *slog.Logger, validator *validator.Validator) GradingService {
	return &gradingService{
		repo:      repo,
		cache:     cacheService,
		changes:   changes,
		notifier:  notifier,
		logger:    logger,
		opLog:     NewServiceLogger(logger, "grading"),
		validator: validator,
	}
}

// SaveGrades applies the teacher's per-question overrides, recomputes the
// rest and finalizes the submission. req.Version must match the stored
// version, so two teachers grading at once cannot silently overwrite each
// other.
func (s *gradingService) SaveGrades(ctx context.Context, submissionID uint, req *SaveGradesRequest, user *models.User) (submission *models.Submission, err error) {
	op := s.opLog.WithOperation(ctx, "save_grades", user.ID)
	defer func() { op.LogResult(submissionID, "submission", err) }()

	if err := s.validator.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	submission, err = getSubmission(ctx, s.repo, submissionID)
	if err != nil {
		return nil, err
	}
	quiz, err := getQuiz(ctx, s.repo, submission.QuizID)
	if err != nil {
		return nil, err
	}
	if quiz.OwnerID != user.ID {
		return nil, ErrGradingPermissionDenied
	}
	if submission.Status == models.SubmissionInProgress {
		return nil, ErrSubmissionNotSubmitted
	}
	if submission.Version != req.Version {
		return nil, ErrSubmissionVersionConflict
	}

	result, err := scoring.ApplyManualOverrides(quiz.Questions, submission.Answers.Data(), req.Overrides)
	if err != nil {
		if errors.Is(err, scoring.ErrInvalidOverride) {
			return nil, fmt.Errorf("%w: %w", ErrGradingInvalidScore, err)
		}
		return nil, fmt.Errorf("failed to apply overrides: %w", err)
	}

	gradedAt := now()
	grader := user.ID
	submission.ItemScores = datatypes.NewJSONType(result.ScoreMap())
	submission.Earned = result.TotalScore
	submission.Total = result.MaxTotal
	submission.Status = models.SubmissionSubmitted
	submission.GradedAt = &gradedAt
	submission.GradedBy = &grader

	if err := s.repo.Submission().Update(ctx, submission, req.Version); err != nil {
		if repositories.IsVersionConflict(err) {
			return nil, ErrSubmissionVersionConflict
		}
		return nil, fmt.Errorf("failed to save grades: %w", err)
	}

	s.logger.Info("Grades saved",
		"submission_id", submissionID,
		"score", result.TotalScore,
		"max", result.MaxTotal,
		"overrides", len(req.Overrides),
		"version", submission.Version)

	s.dropStats(ctx, quiz.ID)
	if s.changes != nil {
		if err := s.changes.Publish(ctx, CollectionSubmissions, changefeed.OperationUpdate, submission.ID, quiz.OwnerID, submission); err != nil {
			s.logger.Warn("Failed to publish submission change", "submission_id", submission.ID, "error", err)
		}
	}
	s.notifyStudent(ctx, quiz, submission, user)
	return submission, nil
}

func (s *gradingService) Stats(ctx context.Context, quizID uint, user *models.User) (*QuizStatsResponse, error) {
	quiz, err := getQuiz(ctx, s.repo, quizID)
	if err != nil {
		return nil, err
	}
	if quiz.OwnerID != user.ID {
		return nil, NewPermissionError(user.ID, quizID, "quiz", "view statistics of", "not quiz owner")
	}

	key := cache.QuizStatsKey(quizID)
	if s.cache != nil {
		var cached QuizStatsResponse
		if err := s.cache.Get(ctx, key, &cached); err == nil {
			return &cached, nil
		}
	}

	submissions, err := s.repo.Submission().ListByQuiz(ctx, quizID, repositories.SubmissionFilters{Limit: -1})
	if err != nil {
		return nil, fmt.Errorf("failed to list submissions: %w", err)
	}
	roster, err := s.repo.Course().CountMembers(ctx, quiz.CourseID)
	if err != nil {
		return nil, fmt.Errorf("failed to count course members: %w", err)
	}

	values := make([]models.Submission, len(submissions))
	for i, sub := range submissions {
		values[i] = *sub
	}

	stats := &QuizStatsResponse{
		QuizID:      quiz.ID,
		QuizTitle:   quiz.Title,
		TotalPoints: scoring.TotalPoints(quiz.Questions),
		Stats:       scoring.Summarize(values, roster),
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, stats, statsCacheTTL); err != nil {
			s.logger.Warn("Stats cache write failed", "quiz_id", quizID, "error", err)
		}
	}
	return stats, nil
}

func (s *gradingService) dropStats(ctx context.Context, quizID uint) {
	dropQuizStats(ctx, s.cache, s.logger, quizID)
}

// dropQuizStats clears the cached statistics of a quiz after any write
// that changes its submissions. Cache failures are logged only.
func dropQuizStats(ctx context.Context, c cache.CacheService, logger *slog.Logger, quizID uint) {
	if c == nil {
		return
	}
	if err := c.Delete(ctx, cache.QuizStatsKey(quizID)); err != nil {
		logger.Warn("Stats cache invalidation failed", "quiz_id", quizID, "error", err)
	}
}

func (s *gradingService) notifyStudent(ctx context.Context, quiz *models.Quiz, submission *models.Submission, grader *models.User) {
	percentage := 0.0
	if submission.Total > 0 {
		percentage = submission.Earned / submission.Total * 100
	}
	passed := submission.Total > 0 && submission.Earned >= submission.Total*scoring.PassThreshold

	s.notifier.Notify(ctx, &NotifyRequest{
		Recipients: []string{submission.StudentID},
		Title:      fmt.Sprintf("Grade released for %s", quiz.Title),
		Kind:       models.NotificationGradeReleased,
		Detail:     fmt.Sprintf("Score %.2f / %.2f", submission.Earned, submission.Total),
		Metadata: map[string]any{
			"quiz_id":       quiz.ID,
			"submission_id": submission.ID,
		},
		Event: events.NewGradeReleasedEvent(events.GradeReleasedEvent{
			SubmissionID: submission.ID,
			QuizID:       quiz.ID,
			QuizTitle:    quiz.Title,
			StudentID:    submission.StudentID,
			GradedAt:     *submission.GradedAt,
			Score:        submission.Earned,
			MaxScore:     submission.Total,
			Percentage:   percentage,
			Passed:       passed,
			GraderID:     grader.ID,
		}),
	})
}
