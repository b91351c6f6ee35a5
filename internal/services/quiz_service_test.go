package services

import (
	"context"
	"testing"
	"time"

	"github.com/SAP-F-2025/classroom-service/internal/cache"
	"github.com/SAP-F-2025/classroom-service/internal/models"
	"github.com/SAP-F-2025/classroom-service/internal/repositories"
	"github.com/SAP-F-2025/classroom-service/internal/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestQuizService_Create(t *testing.T) {
	ctx := context.Background()
	course := courseWith(5, "Physics", teacher.ID)

	t.Run("stores the quiz and notifies members", func(t *testing.T) {
		repo := newMockRepository()
		c := &MockCacheService{}
		notifier := &recordingNotifier{}
		repo.courses.On("GetByID", ctx, uint(5)).Return(course, nil)
		repo.quizzes.On("Create", ctx, mock.AnythingOfType("*models.Quiz")).Run(func(args mock.Arguments) {
			args.Get(1).(*models.Quiz).ID = 10
		}).Return(nil)
		repo.courses.On("ListMemberIDs", ctx, uint(5)).Return([]string{"s1", "s2"}, nil)
		c.On("DeletePattern", ctx, cache.QuizPattern(10)).Return(nil)
		c.On("Delete", ctx, cache.CourseQuizzesKey(5)).Return(nil)

		svc := NewQuizService(repo, c, time.Minute, notifier, testLogger(), validator.New())
		quiz, err := svc.Create(ctx, &CreateQuizRequest{
			Title:     "Week 1",
			CourseID:  5,
			Questions: sampleQuiz().Questions,
		}, teacher)

		require.NoError(t, err)
		assert.Equal(t, 8.0, quiz.TotalPoints)
		sent := notifier.sent()
		require.Len(t, sent, 1)
		assert.Equal(t, []string{"s1", "s2"}, sent[0].Recipients)
		assert.Equal(t, models.NotificationQuizPublished, sent[0].Kind)
		c.AssertExpectations(t)
	})

	t.Run("invalid questions are rejected", func(t *testing.T) {
		repo := newMockRepository()
		repo.courses.On("GetByID", ctx, uint(5)).Return(course, nil)

		svc := NewQuizService(repo, nil, time.Minute, &recordingNotifier{}, testLogger(), validator.New())
		_, err := svc.Create(ctx, &CreateQuizRequest{
			Title:    "Week 1",
			CourseID: 5,
			Questions: []models.Question{
				{Type: models.QuestionChoice, Prompt: "Pick", Options: []string{"a", "b"}, Correct: intPtr(0)},
			},
		}, teacher)

		assert.True(t, IsValidation(err))
		repo.quizzes.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("only the course owner adds quizzes", func(t *testing.T) {
		repo := newMockRepository()
		repo.courses.On("GetByID", ctx, uint(5)).Return(course, nil)

		svc := NewQuizService(repo, nil, time.Minute, &recordingNotifier{}, testLogger(), validator.New())
		_, err := svc.Create(ctx, &CreateQuizRequest{Title: "x", CourseID: 5}, student)
		assert.True(t, IsUnauthorized(err))
	})
}

func TestQuizService_GetByID(t *testing.T) {
	ctx := context.Background()

	t.Run("cache hit skips the repository", func(t *testing.T) {
		repo := newMockRepository()
		c := &MockCacheService{}
		c.On("Get", ctx, cache.QuizKey(10), mock.AnythingOfType("*models.Quiz")).Run(func(args mock.Arguments) {
			*args.Get(2).(*models.Quiz) = *sampleQuiz()
		}).Return(nil)

		svc := NewQuizService(repo, c, time.Minute, &recordingNotifier{}, testLogger(), validator.New())
		res, err := svc.GetByID(ctx, 10, teacher)

		require.NoError(t, err)
		assert.Len(t, res.Questions, 3)
		repo.quizzes.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
	})

	t.Run("students get a keyless view", func(t *testing.T) {
		repo := newMockRepository()
		c := &MockCacheService{}
		c.On("Get", ctx, cache.QuizKey(10), mock.Anything).Return(cache.ErrCacheMiss)
		c.On("Set", ctx, cache.QuizKey(10), mock.Anything, time.Minute).Return(nil)
		repo.quizzes.On("GetByID", ctx, uint(10)).Return(sampleQuiz(), nil)
		repo.courses.On("IsMember", ctx, uint(5), student.ID).Return(true, nil)

		svc := NewQuizService(repo, c, time.Minute, &recordingNotifier{}, testLogger(), validator.New())
		res, err := svc.GetByID(ctx, 10, student)

		require.NoError(t, err)
		assert.Nil(t, res.Questions)
		require.Len(t, res.Items, 3)
		assert.Equal(t, []string{"3", "4", "5", "6"}, res.Items[0].Options)
		assert.Equal(t, 8.0, res.TotalPoints)
	})

	t.Run("missing quiz", func(t *testing.T) {
		repo := newMockRepository()
		repo.quizzes.On("GetByID", ctx, uint(99)).Return(nil, repositories.ErrNotFound)

		svc := NewQuizService(repo, nil, time.Minute, &recordingNotifier{}, testLogger(), validator.New())
		_, err := svc.GetByID(ctx, 99, teacher)
		assert.ErrorIs(t, err, ErrQuizNotFound)
	})
}

func TestStudentView_SortsMatchingRights(t *testing.T) {
	quiz := &models.Quiz{Questions: []models.Question{{
		Type:   models.QuestionMatching,
		Prompt: "Capitals",
		Pairs: []models.MatchPair{
			{Left: "France", Right: "Paris"},
			{Left: "Japan", Right: "Tokyo"},
			{Left: "Italy", Right: "Rome"},
		},
	}}}

	view := StudentView(quiz)

	assert.Equal(t, []string{"France", "Japan", "Italy"}, view.Items[0].Lefts)
	assert.Equal(t, []string{"Paris", "Rome", "Tokyo"}, view.Items[0].Rights)
	assert.Equal(t, 1.0, view.Items[0].Points)
}
