package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/SAP-F-2025/classroom-service/internal/cache"
	"github.com/SAP-F-2025/classroom-service/internal/events"
	"github.com/SAP-F-2025/classroom-service/internal/models"
	"github.com/SAP-F-2025/classroom-service/internal/repositories"
	"github.com/SAP-F-2025/classroom-service/internal/scoring"
	"github.com/SAP-F-2025/classroom-service/internal/validator"
	"gorm.io/datatypes"
)

type quizService struct {
	repo      repositories.Repository
	cache     cache.CacheService
	cacheTTL  time.Duration
	notifier  Notifier
	logger    *slog.Logger
	validator *validator.Validator
}

// NewQuizService builds the quiz service. cache may be nil, in which case
// every read goes to the repository.
func NewQuizService(repo repositories.Repository, cacheService cache.CacheService, cacheTTL time.Duration, notifier Notifier, logger *slog.Logger, validator *validator.Validator) QuizService {
	return &quizService{
		repo:      repo,
		cache:     cacheService,
		cacheTTL:  cacheTTL,
		notifier:  notifier,
		logger:    logger,
		validator: validator,
	}
}

func (s *quizService) Create(ctx context.Context, req *CreateQuizRequest, user *models.User) (*models.Quiz, error) {
	s.logger.Info("Creating quiz", "course_id", req.CourseID, "owner_id", user.ID)

	course, err := s.repo.Course().GetByID(ctx, req.CourseID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrCourseNotFound
		}
		return nil, fmt.Errorf("failed to get course: %w", err)
	}
	if course.OwnerID != user.ID {
		return nil, NewPermissionError(user.ID, course.ID, "course", "add quiz to", "not course owner")
	}

	quiz := &models.Quiz{
		Title:            req.Title,
		CourseID:         req.CourseID,
		TimeLimitMinutes: req.TimeLimitMinutes,
		ReleaseAt:        req.ReleaseAt,
		Questions:        datatypes.NewJSONSlice(req.Questions),
		OwnerID:          user.ID,
	}
	if err := s.validator.Validate(quiz); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	if err := s.repo.Quiz().Create(ctx, quiz); err != nil {
		return nil, fmt.Errorf("failed to create quiz: %w", err)
	}
	quiz.TotalPoints = scoring.TotalPoints(quiz.Questions)
	s.invalidate(ctx, quiz)

	s.logger.Info("Quiz created", "quiz_id", quiz.ID, "questions", len(quiz.Questions))
	s.notifyPublished(ctx, quiz, course)
	return quiz, nil
}

// Update edits a quiz until the first student starts it; afterwards the
// question list is frozen because answers are stored by position.
func (s *quizService) Update(ctx context.Context, id uint, req *UpdateQuizRequest, user *models.User) (*models.Quiz, error) {
	quiz, err := s.getQuiz(ctx, id)
	if err != nil {
		return nil, err
	}
	if quiz.OwnerID != user.ID {
		return nil, NewPermissionError(user.ID, id, "quiz", "update", "not quiz owner")
	}
	if err := s.validator.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	started, err := s.repo.Submission().ListByQuiz(ctx, id, repositories.SubmissionFilters{Limit: 1})
	if err != nil {
		return nil, fmt.Errorf("failed to check submissions: %w", err)
	}
	if len(started) > 0 && req.Questions != nil {
		return nil, NewBusinessRuleError("questions_frozen", "questions cannot change once students have started the quiz",
			map[string]any{"quiz_id": id})
	}

	if req.Title != nil {
		quiz.Title = *req.Title
	}
	if req.TimeLimitMinutes != nil {
		quiz.TimeLimitMinutes = *req.TimeLimitMinutes
	}
	if req.ReleaseAt != nil {
		quiz.ReleaseAt = req.ReleaseAt
	}
	if req.Questions != nil {
		quiz.Questions = datatypes.NewJSONSlice(req.Questions)
	}
	if err := s.validator.Validate(quiz); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	if err := s.repo.Quiz().Update(ctx, quiz); err != nil {
		return nil, fmt.Errorf("failed to update quiz: %w", err)
	}
	quiz.TotalPoints = scoring.TotalPoints(quiz.Questions)
	s.invalidate(ctx, quiz)

	s.logger.Info("Quiz updated", "quiz_id", id)
	return quiz, nil
}

func (s *quizService) GetByID(ctx context.Context, id uint, user *models.User) (*QuizResponse, error) {
	quiz, err := s.getQuiz(ctx, id)
	if err != nil {
		return nil, err
	}
	if quiz.OwnerID == user.ID {
		return &QuizResponse{Quiz: quiz}, nil
	}

	member, err := s.repo.Course().IsMember(ctx, quiz.CourseID, user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to check membership: %w", err)
	}
	if !member {
		return nil, ErrQuizAccessDenied
	}
	if !quiz.IsReleased(time.Now()) {
		return nil, ErrQuizNotReleased
	}
	return StudentView(quiz), nil
}

func (s *quizService) ListByCourse(ctx context.Context, courseID uint, user *models.User) ([]*QuizResponse, error) {
	course, err := s.repo.Course().GetByID(ctx, courseID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrCourseNotFound
		}
		return nil, fmt.Errorf("failed to get course: %w", err)
	}

	owner := course.OwnerID == user.ID
	if !owner {
		member, err := s.repo.Course().IsMember(ctx, courseID, user.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to check membership: %w", err)
		}
		if !member {
			return nil, ErrCourseAccessDenied
		}
	}

	var quizzes []*models.Quiz
	key := cache.CourseQuizzesKey(courseID)
	if !s.fromCache(ctx, key, &quizzes) {
		quizzes, err = s.repo.Quiz().ListByCourse(ctx, courseID)
		if err != nil {
			return nil, fmt.Errorf("failed to list quizzes: %w", err)
		}
		s.toCache(ctx, key, quizzes)
	}

	at := time.Now()
	result := make([]*QuizResponse, 0, len(quizzes))
	for _, q := range quizzes {
		q.TotalPoints = scoring.TotalPoints(q.Questions)
		switch {
		case owner:
			result = append(result, &QuizResponse{Quiz: q})
		case q.IsReleased(at):
			result = append(result, StudentView(q))
		}
	}
	return result, nil
}

// StudentView strips answer keys from a quiz.
func StudentView(quiz *models.Quiz) *QuizResponse {
	view := *quiz
	view.Questions = nil
	view.TotalPoints = scoring.TotalPoints(quiz.Questions)

	items := make([]QuestionView, len(quiz.Questions))
	for i, q := range quiz.Questions {
		item := QuestionView{
			Index:         i,
			Type:          q.Type,
			Prompt:        q.Prompt,
			Points:        q.PointValue(),
			Options:       q.Options,
			OptionImages:  q.OptionImages,
			ManualGrading: q.ManualGrading,
		}
		for _, p := range q.Pairs {
			item.Lefts = append(item.Lefts, p.Left)
			item.Rights = append(item.Rights, p.Right)
		}
		sort.Strings(item.Rights)
		items[i] = item
	}
	return &QuizResponse{Quiz: &view, Items: items}
}

// ===== HELPERS =====

func (s *quizService) getQuiz(ctx context.Context, id uint) (*models.Quiz, error) {
	var quiz models.Quiz
	if s.fromCache(ctx, cache.QuizKey(id), &quiz) {
		quiz.TotalPoints = scoring.TotalPoints(quiz.Questions)
		return &quiz, nil
	}

	stored, err := s.repo.Quiz().GetByID(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrQuizNotFound
		}
		return nil, fmt.Errorf("failed to get quiz: %w", err)
	}
	stored.TotalPoints = scoring.TotalPoints(stored.Questions)
	s.toCache(ctx, cache.QuizKey(id), stored)
	return stored, nil
}

func (s *quizService) fromCache(ctx context.Context, key string, dest any) bool {
	if s.cache == nil {
		return false
	}
	err := s.cache.Get(ctx, key, dest)
	if err != nil && !errors.Is(err, cache.ErrCacheMiss) {
		s.logger.Warn("Quiz cache read failed", "key", key, "error", err)
	}
	return err == nil
}

func (s *quizService) toCache(ctx context.Context, key string, value any) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, key, value, s.cacheTTL); err != nil {
		s.logger.Warn("Quiz cache write failed", "key", key, "error", err)
	}
}

func (s *quizService) invalidate(ctx context.Context, quiz *models.Quiz) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DeletePattern(ctx, cache.QuizPattern(quiz.ID)); err != nil {
		s.logger.Warn("Quiz cache invalidation failed", "quiz_id", quiz.ID, "error", err)
	}
	if err := s.cache.Delete(ctx, cache.CourseQuizzesKey(quiz.CourseID)); err != nil {
		s.logger.Warn("Course quiz list invalidation failed", "course_id", quiz.CourseID, "error", err)
	}
}

func (s *quizService) notifyPublished(ctx context.Context, quiz *models.Quiz, course *models.Course) {
	members, err := s.repo.Course().ListMemberIDs(ctx, course.ID)
	if err != nil {
		s.logger.Error("Failed to load course members for quiz notification", "quiz_id", quiz.ID, "error", err)
		return
	}
	if len(members) == 0 {
		return
	}

	detail := fmt.Sprintf("New quiz in %s", course.Name)
	if quiz.ReleaseAt != nil && quiz.ReleaseAt.After(time.Now()) {
		detail = fmt.Sprintf("New quiz in %s, opens %s", course.Name, quiz.ReleaseAt.Format(time.RFC1123))
	}

	s.notifier.Notify(ctx, &NotifyRequest{
		Recipients: members,
		Title:      quiz.Title,
		Kind:       models.NotificationQuizPublished,
		Detail:     detail,
		Metadata:   map[string]any{"quiz_id": quiz.ID, "course_id": course.ID},
		Event: events.NewQuizPublishedEvent(events.QuizPublishedEvent{
			QuizID:     quiz.ID,
			QuizTitle:  quiz.Title,
			CourseID:   course.ID,
			ReleaseAt:  quiz.ReleaseAt,
			TimeLimit:  quiz.TimeLimitMinutes,
			StudentIDs: members,
			OwnerID:    quiz.OwnerID,
		}),
	})
}
