package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"

	"github.com/SAP-F-2025/classroom-service/internal/auth"
	"github.com/SAP-F-2025/classroom-service/internal/changefeed"
	"github.com/SAP-F-2025/classroom-service/internal/metrics"
	"github.com/SAP-F-2025/classroom-service/internal/models"
	"github.com/SAP-F-2025/classroom-service/internal/repositories"
	"github.com/SAP-F-2025/classroom-service/internal/services"
	"github.com/SAP-F-2025/classroom-service/internal/utils"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/mock"
)

var (
	teacher = &models.User{ID: "teacher-1", FullName: "Ms. Lan", Role: models.RoleTeacher}
	student = &models.User{ID: "student-1", FullName: "Minh", Role: models.RoleStudent}
)

type MockCourseService struct{ mock.Mock }

func (m *MockCourseService) Create(ctx context.Context, req *services.CreateCourseRequest, user *models.User) (*models.Course, error) {
	args := m.Called(ctx, req, user)
	course, _ := args.Get(0).(*models.Course)
	return course, args.Error(1)
}

func (m *MockCourseService) GetByID(ctx context.Context, id uint, user *models.User) (*models.Course, error) {
	args := m.Called(ctx, id, user)
	course, _ := args.Get(0).(*models.Course)
	return course, args.Error(1)
}

func (m *MockCourseService) ListMine(ctx context.Context, user *models.User) ([]*models.Course, error) {
	args := m.Called(ctx, user)
	courses, _ := args.Get(0).([]*models.Course)
	return courses, args.Error(1)
}

func (m *MockCourseService) UpdateSchedule(ctx context.Context, id uint, req *services.UpdateScheduleRequest, user *models.User) (*models.Course, error) {
	args := m.Called(ctx, id, req, user)
	course, _ := args.Get(0).(*models.Course)
	return course, args.Error(1)
}

func (m *MockCourseService) Join(ctx context.Context, id uint, user *models.User) (*models.Course, error) {
	args := m.Called(ctx, id, user)
	course, _ := args.Get(0).(*models.Course)
	return course, args.Error(1)
}

func (m *MockCourseService) CheckSchedule(ctx context.Context, req *services.CheckScheduleRequest, user *models.User) (*services.ScheduleCheckResponse, error) {
	args := m.Called(ctx, req, user)
	resp, _ := args.Get(0).(*services.ScheduleCheckResponse)
	return resp, args.Error(1)
}

type MockQuizService struct{ mock.Mock }

func (m *MockQuizService) Create(ctx context.Context, req *services.CreateQuizRequest, user *models.User) (*models.Quiz, error) {
	args := m.Called(ctx, req, user)
	quiz, _ := args.Get(0).(*models.Quiz)
	return quiz, args.Error(1)
}

func (m *MockQuizService) Update(ctx context.Context, id uint, req *services.UpdateQuizRequest, user *models.User) (*models.Quiz, error) {
	args := m.Called(ctx, id, req, user)
	quiz, _ := args.Get(0).(*models.Quiz)
	return quiz, args.Error(1)
}

func (m *MockQuizService) GetByID(ctx context.Context, id uint, user *models.User) (*services.QuizResponse, error) {
	args := m.Called(ctx, id, user)
	resp, _ := args.Get(0).(*services.QuizResponse)
	return resp, args.Error(1)
}

func (m *MockQuizService) ListByCourse(ctx context.Context, courseID uint, user *models.User) ([]*services.QuizResponse, error) {
	args := m.Called(ctx, courseID, user)
	resp, _ := args.Get(0).([]*services.QuizResponse)
	return resp, args.Error(1)
}

type MockSubmissionService struct{ mock.Mock }

func (m *MockSubmissionService) Start(ctx context.Context, quizID uint, user *models.User) (*models.Submission, error) {
	args := m.Called(ctx, quizID, user)
	sub, _ := args.Get(0).(*models.Submission)
	return sub, args.Error(1)
}

func (m *MockSubmissionService) Submit(ctx context.Context, id uint, req *services.SubmitAnswersRequest, user *models.User) (*models.Submission, error) {
	args := m.Called(ctx, id, req, user)
	sub, _ := args.Get(0).(*models.Submission)
	return sub, args.Error(1)
}

func (m *MockSubmissionService) GetByID(ctx context.Context, id uint, user *models.User) (*models.Submission, error) {
	args := m.Called(ctx, id, user)
	sub, _ := args.Get(0).(*models.Submission)
	return sub, args.Error(1)
}

func (m *MockSubmissionService) ListByQuiz(ctx context.Context, quizID uint, filters repositories.SubmissionFilters, user *models.User) ([]*models.Submission, error) {
	args := m.Called(ctx, quizID, filters, user)
	subs, _ := args.Get(0).([]*models.Submission)
	return subs, args.Error(1)
}

type MockGradingService struct{ mock.Mock }

func (m *MockGradingService) SaveGrades(ctx context.Context, submissionID uint, req *services.SaveGradesRequest, user *models.User) (*models.Submission, error) {
	args := m.Called(ctx, submissionID, req, user)
	sub, _ := args.Get(0).(*models.Submission)
	return sub, args.Error(1)
}

func (m *MockGradingService) Stats(ctx context.Context, quizID uint, user *models.User) (*services.QuizStatsResponse, error) {
	args := m.Called(ctx, quizID, user)
	stats, _ := args.Get(0).(*services.QuizStatsResponse)
	return stats, args.Error(1)
}

type MockGradebookService struct{ mock.Mock }

func (m *MockGradebookService) Export(ctx context.Context, quizID uint, user *models.User) (*services.GradebookFile, error) {
	args := m.Called(ctx, quizID, user)
	file, _ := args.Get(0).(*services.GradebookFile)
	return file, args.Error(1)
}

type MockNotificationService struct{ mock.Mock }

func (m *MockNotificationService) Notify(ctx context.Context, req *services.NotifyRequest) {
	m.Called(ctx, req)
}

func (m *MockNotificationService) List(ctx context.Context, user *models.User, filters repositories.NotificationFilters) ([]*models.Notification, error) {
	args := m.Called(ctx, user, filters)
	list, _ := args.Get(0).([]*models.Notification)
	return list, args.Error(1)
}

func (m *MockNotificationService) MarkRead(ctx context.Context, id uint, user *models.User) error {
	return m.Called(ctx, id, user).Error(0)
}

func (m *MockNotificationService) Stream(ctx context.Context, user *models.User) (<-chan changefeed.Change, error) {
	args := m.Called(ctx, user)
	ch, _ := args.Get(0).(<-chan changefeed.Change)
	return ch, args.Error(1)
}

// testServer wires every handler behind a fake auth middleware that logs
// in the given user. A nil user leaves the request anonymous.
type testServer struct {
	router        *gin.Engine
	metrics       *metrics.Metrics
	courses       *MockCourseService
	quizzes       *MockQuizService
	submissions   *MockSubmissionService
	grading       *MockGradingService
	gradebook     *MockGradebookService
	notifications *MockNotificationService
}

func newTestServer(user *models.User) *testServer {
	gin.SetMode(gin.TestMode)
	ts := &testServer{
		router:        gin.New(),
		metrics:       metrics.New("classroom_test"),
		courses:       new(MockCourseService),
		quizzes:       new(MockQuizService),
		submissions:   new(MockSubmissionService),
		grading:       new(MockGradingService),
		gradebook:     new(MockGradebookService),
		notifications: new(MockNotificationService),
	}

	fakeAuth := func(c *gin.Context) {
		if user != nil {
			c.Set(auth.ContextUserKey, user)
			c.Set(auth.ContextUserIDKey, user.ID)
		}
		c.Next()
	}

	hm := NewHandlerManager(Services{
		Course:       ts.courses,
		Quiz:         ts.quizzes,
		Submission:   ts.submissions,
		Grading:      ts.grading,
		Gradebook:    ts.gradebook,
		Notification: ts.notifications,
	}, utils.NewNopLogger(), ts.metrics)
	hm.SetupRoutes(ts.router, fakeAuth)
	return ts
}

func (ts *testServer) do(method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	ts.router.ServeHTTP(w, req)
	return w
}

func decode[T any](w *httptest.ResponseRecorder) T {
	var v T
	_ = json.Unmarshal(w.Body.Bytes(), &v)
	return v
}
