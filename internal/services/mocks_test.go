package services

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/SAP-F-2025/classroom-service/internal/changefeed"
	"github.com/SAP-F-2025/classroom-service/internal/models"
	"github.com/SAP-F-2025/classroom-service/internal/repositories"
	"github.com/stretchr/testify/mock"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// MockRepository bundles the per-collection mocks.
type MockRepository struct {
	quizzes       *MockQuizRepository
	submissions   *MockSubmissionRepository
	courses       *MockCourseRepository
	notifications *MockNotificationRepository
}

func newMockRepository() *MockRepository {
	return &MockRepository{
		quizzes:       &MockQuizRepository{},
		submissions:   &MockSubmissionRepository{},
		courses:       &MockCourseRepository{},
		notifications: &MockNotificationRepository{},
	}
}

func (m *MockRepository) Quiz() repositories.QuizRepository                 { return m.quizzes }
func (m *MockRepository) Submission() repositories.SubmissionRepository     { return m.submissions }
func (m *MockRepository) Course() repositories.CourseRepository             { return m.courses }
func (m *MockRepository) Notification() repositories.NotificationRepository { return m.notifications }

// MockQuizRepository is a mock implementation of QuizRepository
type MockQuizRepository struct {
	mock.Mock
}

func (m *MockQuizRepository) Create(ctx context.Context, quiz *models.Quiz) error {
	args := m.Called(ctx, quiz)
	return args.Error(0)
}

func (m *MockQuizRepository) GetByID(ctx context.Context, id uint) (*models.Quiz, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Quiz), args.Error(1)
}

func (m *MockQuizRepository) Update(ctx context.Context, quiz *models.Quiz) error {
	args := m.Called(ctx, quiz)
	return args.Error(0)
}

func (m *MockQuizRepository) ListByCourse(ctx context.Context, courseID uint) ([]*models.Quiz, error) {
	args := m.Called(ctx, courseID)
	return args.Get(0).([]*models.Quiz), args.Error(1)
}

// MockSubmissionRepository is a mock implementation of SubmissionRepository
type MockSubmissionRepository struct {
	mock.Mock
}

func (m *MockSubmissionRepository) Create(ctx context.Context, submission *models.Submission) error {
	args := m.Called(ctx, submission)
	return args.Error(0)
}

func (m *MockSubmissionRepository) GetByID(ctx context.Context, id uint) (*models.Submission, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Submission), args.Error(1)
}

func (m *MockSubmissionRepository) GetByQuizAndStudent(ctx context.Context, quizID uint, studentID string) (*models.Submission, error) {
	args := m.Called(ctx, quizID, studentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Submission), args.Error(1)
}

func (m *MockSubmissionRepository) ListByQuiz(ctx context.Context, quizID uint, filters repositories.SubmissionFilters) ([]*models.Submission, error) {
	args := m.Called(ctx, quizID, filters)
	return args.Get(0).([]*models.Submission), args.Error(1)
}

func (m *MockSubmissionRepository) Update(ctx context.Context, submission *models.Submission, expectedVersion int) error {
	args := m.Called(ctx, submission, expectedVersion)
	if args.Error(0) == nil {
		submission.Version = expectedVersion + 1
	}
	return args.Error(0)
}

// MockCourseRepository is a mock implementation of CourseRepository
type MockCourseRepository struct {
	mock.Mock
}

func (m *MockCourseRepository) Create(ctx context.Context, course *models.Course) error {
	args := m.Called(ctx, course)
	return args.Error(0)
}

func (m *MockCourseRepository) GetByID(ctx context.Context, id uint) (*models.Course, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Course), args.Error(1)
}

func (m *MockCourseRepository) UpdateSchedule(ctx context.Context, id uint, slots []models.ScheduleSlot) error {
	args := m.Called(ctx, id, slots)
	return args.Error(0)
}

func (m *MockCourseRepository) ListByOwner(ctx context.Context, ownerID string) ([]*models.Course, error) {
	args := m.Called(ctx, ownerID)
	return args.Get(0).([]*models.Course), args.Error(1)
}

func (m *MockCourseRepository) ListJoinedBy(ctx context.Context, userID string) ([]*models.Course, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]*models.Course), args.Error(1)
}

func (m *MockCourseRepository) AddMember(ctx context.Context, member *models.CourseMember) error {
	args := m.Called(ctx, member)
	return args.Error(0)
}

func (m *MockCourseRepository) IsMember(ctx context.Context, courseID uint, userID string) (bool, error) {
	args := m.Called(ctx, courseID, userID)
	return args.Bool(0), args.Error(1)
}

func (m *MockCourseRepository) ListMemberIDs(ctx context.Context, courseID uint) ([]string, error) {
	args := m.Called(ctx, courseID)
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockCourseRepository) CountMembers(ctx context.Context, courseID uint) (int, error) {
	args := m.Called(ctx, courseID)
	return args.Int(0), args.Error(1)
}

// MockNotificationRepository is a mock implementation of NotificationRepository
type MockNotificationRepository struct {
	mock.Mock
}

func (m *MockNotificationRepository) Create(ctx context.Context, notification *models.Notification) error {
	args := m.Called(ctx, notification)
	return args.Error(0)
}

func (m *MockNotificationRepository) ListByUser(ctx context.Context, userID string, filters repositories.NotificationFilters) ([]*models.Notification, error) {
	args := m.Called(ctx, userID, filters)
	return args.Get(0).([]*models.Notification), args.Error(1)
}

func (m *MockNotificationRepository) MarkRead(ctx context.Context, id uint, userID string, readAt time.Time) error {
	args := m.Called(ctx, id, userID, readAt)
	return args.Error(0)
}

// recordingNotifier captures notify requests.
type recordingNotifier struct {
	mu       sync.Mutex
	requests []*NotifyRequest
}

func (r *recordingNotifier) Notify(ctx context.Context, req *NotifyRequest) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.requests = append(r.requests, req)
}

func (r *recordingNotifier) sent() []*NotifyRequest {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*NotifyRequest(nil), r.requests...)
}

type publishedChange struct {
	Collection string
	Operation  changefeed.Operation
	ID         uint
	Owner      string
}

// recordingChanges captures change-feed publications.
type recordingChanges struct {
	mu      sync.Mutex
	changes []publishedChange
}

func (r *recordingChanges) Publish(ctx context.Context, collection string, op changefeed.Operation, id uint, owner string, doc any) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.changes = append(r.changes, publishedChange{Collection: collection, Operation: op, ID: id, Owner: owner})
	return nil
}

var (
	teacher = &models.User{ID: "teacher-1", FullName: "Ms. Tran", Role: models.RoleTeacher}
	student = &models.User{ID: "student-1", FullName: "An Nguyen", Role: models.RoleStudent}
)

func intPtr(v int) *int    { return &v }
func boolPtr(v bool) *bool { return &v }
