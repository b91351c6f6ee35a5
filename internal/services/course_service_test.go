package services

import (
	"context"
	"errors"
	"testing"

	"github.com/SAP-F-2025/classroom-service/internal/models"
	"github.com/SAP-F-2025/classroom-service/internal/schedule"
	"github.com/SAP-F-2025/classroom-service/internal/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

func newCourseService(repo *MockRepository, notifier *recordingNotifier) CourseService {
	return NewCourseService(repo, notifier, testLogger(), validator.New())
}

func slot(day int, start, end, room string) models.ScheduleSlot {
	return models.ScheduleSlot{Day: day, StartTime: start, EndTime: end, Room: room}
}

func courseWith(id uint, name, owner string, slots ...models.ScheduleSlot) *models.Course {
	return &models.Course{ID: id, Name: name, OwnerID: owner, Schedule: datatypes.NewJSONSlice(slots)}
}

func TestCourseService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("stores a course without conflicts", func(t *testing.T) {
		repo := newMockRepository()
		repo.courses.On("ListByOwner", ctx, teacher.ID).Return([]*models.Course{
			courseWith(1, "Algebra", teacher.ID, slot(1, "08:00", "09:00", "101")),
		}, nil)
		repo.courses.On("Create", ctx, mock.AnythingOfType("*models.Course")).Run(func(args mock.Arguments) {
			args.Get(1).(*models.Course).ID = 2
		}).Return(nil)

		course, err := newCourseService(repo, &recordingNotifier{}).Create(ctx, &CreateCourseRequest{
			Name:     "Geometry",
			Schedule: []models.ScheduleSlot{slot(1, "09:00", "10:00", "101")},
		}, teacher)

		require.NoError(t, err)
		assert.Equal(t, uint(2), course.ID)
		assert.Equal(t, teacher.ID, course.OwnerID)
		repo.courses.AssertExpectations(t)
	})

	t.Run("rejects overlap with an owned course", func(t *testing.T) {
		repo := newMockRepository()
		repo.courses.On("ListByOwner", ctx, teacher.ID).Return([]*models.Course{
			courseWith(1, "Algebra", teacher.ID, slot(3, "13:00", "15:00", "Lab 2")),
		}, nil)

		_, err := newCourseService(repo, &recordingNotifier{}).Create(ctx, &CreateCourseRequest{
			Name:     "Geometry",
			Schedule: []models.ScheduleSlot{slot(3, "14:00", "16:00", "Lab 1")},
		}, teacher)

		var conflictErr *ScheduleConflictError
		require.True(t, errors.As(err, &conflictErr))
		assert.Equal(t, uint(1), conflictErr.Conflict.CourseID)
		assert.Equal(t, "Wednesday 13:00-15:00 (Lab 2)", conflictErr.Conflict.Description)
		assert.True(t, IsConflict(err))
		repo.courses.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("rejects overlap inside the same form", func(t *testing.T) {
		repo := newMockRepository()
		repo.courses.On("ListByOwner", ctx, teacher.ID).Return([]*models.Course{}, nil)

		_, err := newCourseService(repo, &recordingNotifier{}).Create(ctx, &CreateCourseRequest{
			Name: "Geometry",
			Schedule: []models.ScheduleSlot{
				slot(2, "08:00", "10:00", "A"),
				slot(2, "09:30", "11:00", "B"),
			},
		}, teacher)

		var conflictErr *ScheduleConflictError
		require.True(t, errors.As(err, &conflictErr))
		assert.True(t, conflictErr.Conflict.Pending)
		assert.Equal(t, schedule.PendingCourseName, conflictErr.Conflict.CourseName)
	})

	t.Run("rejects malformed times", func(t *testing.T) {
		repo := newMockRepository()

		_, err := newCourseService(repo, &recordingNotifier{}).Create(ctx, &CreateCourseRequest{
			Name:     "Geometry",
			Schedule: []models.ScheduleSlot{slot(2, "8am", "10:00", "A")},
		}, teacher)

		assert.True(t, IsValidation(err))
	})

	t.Run("students cannot create courses", func(t *testing.T) {
		_, err := newCourseService(newMockRepository(), &recordingNotifier{}).Create(ctx, &CreateCourseRequest{Name: "X"}, student)
		assert.True(t, IsUnauthorized(err))
	})
}

func TestCourseService_UpdateSchedule_IgnoresOwnSlots(t *testing.T) {
	ctx := context.Background()
	repo := newMockRepository()
	existing := courseWith(1, "Algebra", teacher.ID, slot(1, "08:00", "09:00", "101"))

	repo.courses.On("GetByID", ctx, uint(1)).Return(existing, nil)
	repo.courses.On("ListByOwner", ctx, teacher.ID).Return([]*models.Course{existing}, nil)
	newSlots := []models.ScheduleSlot{slot(1, "08:30", "09:30", "101")}
	repo.courses.On("UpdateSchedule", ctx, uint(1), newSlots).Return(nil)

	course, err := newCourseService(repo, &recordingNotifier{}).UpdateSchedule(ctx, 1, &UpdateScheduleRequest{Schedule: newSlots}, teacher)

	require.NoError(t, err)
	assert.Equal(t, "08:30", course.Schedule[0].StartTime)
	repo.courses.AssertExpectations(t)
}

func TestCourseService_Join(t *testing.T) {
	ctx := context.Background()
	target := courseWith(5, "Physics", teacher.ID, slot(1, "08:00", "09:00", "Lab"))

	t.Run("joins and notifies the owner", func(t *testing.T) {
		repo := newMockRepository()
		notifier := &recordingNotifier{}
		repo.courses.On("GetByID", ctx, uint(5)).Return(target, nil)
		repo.courses.On("IsMember", ctx, uint(5), student.ID).Return(false, nil)
		repo.courses.On("ListJoinedBy", ctx, student.ID).Return([]*models.Course{
			courseWith(2, "Chemistry", "teacher-2", slot(1, "09:00", "10:00", "C1")),
		}, nil)
		repo.courses.On("AddMember", ctx, mock.MatchedBy(func(m *models.CourseMember) bool {
			return m.CourseID == 5 && m.UserID == student.ID && m.Role == models.RoleStudent
		})).Return(nil)

		_, err := newCourseService(repo, notifier).Join(ctx, 5, student)

		require.NoError(t, err)
		sent := notifier.sent()
		require.Len(t, sent, 1)
		assert.Equal(t, []string{teacher.ID}, sent[0].Recipients)
		assert.Equal(t, models.NotificationCourseJoined, sent[0].Kind)
	})

	t.Run("rejects a clash with a joined course", func(t *testing.T) {
		repo := newMockRepository()
		repo.courses.On("GetByID", ctx, uint(5)).Return(target, nil)
		repo.courses.On("IsMember", ctx, uint(5), student.ID).Return(false, nil)
		repo.courses.On("ListJoinedBy", ctx, student.ID).Return([]*models.Course{
			courseWith(2, "Chemistry", "teacher-2", slot(1, "08:30", "10:00", "C1")),
		}, nil)

		_, err := newCourseService(repo, &recordingNotifier{}).Join(ctx, 5, student)

		var conflictErr *ScheduleConflictError
		require.True(t, errors.As(err, &conflictErr))
		assert.Equal(t, "Chemistry", conflictErr.Conflict.CourseName)
		repo.courses.AssertNotCalled(t, "AddMember", mock.Anything, mock.Anything)
	})

	t.Run("already a member", func(t *testing.T) {
		repo := newMockRepository()
		repo.courses.On("GetByID", ctx, uint(5)).Return(target, nil)
		repo.courses.On("IsMember", ctx, uint(5), student.ID).Return(true, nil)

		_, err := newCourseService(repo, &recordingNotifier{}).Join(ctx, 5, student)
		assert.ErrorIs(t, err, ErrAlreadyMember)
	})
}

func TestCourseService_CheckSchedule(t *testing.T) {
	ctx := context.Background()
	repo := newMockRepository()
	repo.courses.On("ListByOwner", ctx, teacher.ID).Return([]*models.Course{
		courseWith(1, "Algebra", teacher.ID, slot(1, "08:00", "09:00", "101")),
		courseWith(2, "Geometry", teacher.ID, slot(2, "08:00", "09:00", "102")),
	}, nil)
	svc := newCourseService(repo, &recordingNotifier{})

	t.Run("back to back slots do not conflict", func(t *testing.T) {
		res, err := svc.CheckSchedule(ctx, &CheckScheduleRequest{Slot: slot(1, "09:00", "10:00", "")}, teacher)
		require.NoError(t, err)
		assert.True(t, res.OK)
		assert.Nil(t, res.Conflict)
	})

	t.Run("overlap reports the course", func(t *testing.T) {
		res, err := svc.CheckSchedule(ctx, &CheckScheduleRequest{Slot: slot(2, "08:30", "09:30", "")}, teacher)
		require.NoError(t, err)
		assert.False(t, res.OK)
		assert.Equal(t, uint(2), res.Conflict.CourseID)
	})

	t.Run("excluded course is skipped", func(t *testing.T) {
		excluded := uint(2)
		res, err := svc.CheckSchedule(ctx, &CheckScheduleRequest{Slot: slot(2, "08:30", "09:30", ""), ExcludeCourseID: &excluded}, teacher)
		require.NoError(t, err)
		assert.True(t, res.OK)
	})

	t.Run("pending slots are checked after stored ones", func(t *testing.T) {
		res, err := svc.CheckSchedule(ctx, &CheckScheduleRequest{
			Slot:    slot(4, "10:00", "11:00", ""),
			Pending: []models.ScheduleSlot{slot(4, "10:30", "12:00", "Hall")},
		}, teacher)
		require.NoError(t, err)
		require.NotNil(t, res.Conflict)
		assert.True(t, res.Conflict.Pending)
	})
}
