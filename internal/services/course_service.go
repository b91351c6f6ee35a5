package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/SAP-F-2025/classroom-service/internal/events"
	"github.com/SAP-F-2025/classroom-service/internal/models"
	"github.com/SAP-F-2025/classroom-service/internal/repositories"
	"github.com/SAP-F-2025/classroom-service/internal/schedule"
	"github.com/SAP-F-2025/classroom-service/internal/validator"
	"gorm.io/datatypes"
)

type courseService struct {
	repo      repositories.Repository
	notifier  Notifier
	logger    *slog.Logger
	opLog     *ServiceLogger
	validator *validator.Validator
}

func NewCourseService(repo repositories.Repository, notifier Notifier, logger *slog.Logger, validator *validator.Validator) CourseService {
	return &courseService{
		repo:      repo,
		notifier:  notifier,
		logger:    logger,
		opLog:     NewServiceLogger(logger, "course"),
		validator: validator,
	}
}

// ===== CORE COURSE OPERATIONS =====

func (s *courseService) Create(ctx context.Context, req *CreateCourseRequest, user *models.User) (course *models.Course, err error) {
	op := s.opLog.WithOperation(ctx, "create_course", user.ID)
	defer func() { op.LogResult(courseID(course), "course", err) }()

	if !user.IsTeacher() {
		return nil, NewPermissionError(user.ID, 0, "course", "create", "only teachers can create courses")
	}

	course = &models.Course{
		Name:     req.Name,
		Section:  req.Section,
		OwnerID:  user.ID,
		Schedule: datatypes.NewJSONSlice(req.Schedule),
	}
	if err := s.validator.Validate(course); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	owned, err := s.ownedSchedules(ctx, user.ID, 0)
	if err != nil {
		return nil, err
	}
	if err := checkSession(req.Schedule, owned); err != nil {
		return nil, err
	}

	if err := s.repo.Course().Create(ctx, course); err != nil {
		return nil, fmt.Errorf("failed to create course: %w", err)
	}

	s.logger.Info("Course created", "course_id", course.ID, "owner_id", user.ID, "slots", len(req.Schedule))
	return course, nil
}

func (s *courseService) GetByID(ctx context.Context, id uint, user *models.User) (*models.Course, error) {
	course, err := s.getCourse(ctx, id)
	if err != nil {
		return nil, err
	}

	if course.OwnerID != user.ID {
		member, err := s.repo.Course().IsMember(ctx, id, user.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to check membership: %w", err)
		}
		if !member {
			return nil, ErrCourseAccessDenied
		}
		// Roster is visible to the owner only.
		course.Members = nil
	}

	return course, nil
}

func (s *courseService) ListMine(ctx context.Context, user *models.User) ([]*models.Course, error) {
	var (
		courses []*models.Course
		err     error
	)
	if user.IsTeacher() {
		courses, err = s.repo.Course().ListByOwner(ctx, user.ID)
	} else {
		courses, err = s.repo.Course().ListJoinedBy(ctx, user.ID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list courses: %w", err)
	}
	return courses, nil
}

func (s *courseService) UpdateSchedule(ctx context.Context, id uint, req *UpdateScheduleRequest, user *models.User) (course *models.Course, err error) {
	op := s.opLog.WithOperation(ctx, "update_schedule", user.ID)
	defer func() { op.LogResult(id, "course", err) }()

	course, err = s.getCourse(ctx, id)
	if err != nil {
		return nil, err
	}
	if course.OwnerID != user.ID {
		return nil, NewPermissionError(user.ID, id, "course", "update schedule", "not course owner")
	}

	if err := s.validator.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}
	if errs := s.validator.Business().ValidateSlots(req.Schedule); len(errs) > 0 {
		return nil, fmt.Errorf("validation failed: %w", errs)
	}

	owned, err := s.ownedSchedules(ctx, user.ID, id)
	if err != nil {
		return nil, err
	}
	if err := checkSession(req.Schedule, owned); err != nil {
		return nil, err
	}

	if err := s.repo.Course().UpdateSchedule(ctx, id, req.Schedule); err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrCourseNotFound
		}
		return nil, fmt.Errorf("failed to update schedule: %w", err)
	}

	course.Schedule = datatypes.NewJSONSlice(req.Schedule)
	return course, nil
}

// Join adds a student to the course after checking the course's slots
// against every course the student already attends.
func (s *courseService) Join(ctx context.Context, id uint, user *models.User) (course *models.Course, err error) {
	op := s.opLog.WithOperation(ctx, "join_course", user.ID)
	defer func() { op.LogResult(id, "course", err) }()

	course, err = s.getCourse(ctx, id)
	if err != nil {
		return nil, err
	}
	if course.OwnerID == user.ID {
		return nil, NewBusinessRuleError("owner_join", "course owner cannot join as a student", nil)
	}

	member, err := s.repo.Course().IsMember(ctx, id, user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to check membership: %w", err)
	}
	if member {
		return nil, ErrAlreadyMember
	}

	joined, err := s.repo.Course().ListJoinedBy(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list joined courses: %w", err)
	}
	existing := make([]schedule.CourseSlots, 0, len(joined))
	for _, c := range joined {
		existing = append(existing, schedule.FromCourse(c))
	}
	for _, slot := range course.Schedule {
		conflict, err := schedule.FindConflict(slot, existing, nil)
		if err != nil {
			return nil, fmt.Errorf("validation failed: %w", err)
		}
		if conflict != nil {
			return nil, &ScheduleConflictError{Conflict: conflict}
		}
	}

	err = s.repo.Course().AddMember(ctx, &models.CourseMember{
		CourseID: id,
		UserID:   user.ID,
		UserName: user.FullName,
		Role:     models.RoleStudent,
	})
	if err != nil {
		if repositories.IsDuplicateError(err) {
			return nil, ErrAlreadyMember
		}
		return nil, fmt.Errorf("failed to join course: %w", err)
	}

	s.notifier.Notify(ctx, &NotifyRequest{
		Recipients: []string{course.OwnerID},
		Title:      fmt.Sprintf("%s joined %s", displayName(user), course.Name),
		Kind:       models.NotificationCourseJoined,
		Metadata:   map[string]any{"course_id": course.ID, "student_id": user.ID},
		Event: events.NewCourseJoinedEvent(events.CourseJoinedEvent{
			CourseID:   course.ID,
			CourseName: course.Name,
			StudentID:  user.ID,
			OwnerID:    course.OwnerID,
		}),
	})

	course.Members = nil
	return course, nil
}

func (s *courseService) CheckSchedule(ctx context.Context, req *CheckScheduleRequest, user *models.User) (*ScheduleCheckResponse, error) {
	if err := s.validator.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	var courses []*models.Course
	var err error
	if user.IsTeacher() {
		courses, err = s.repo.Course().ListByOwner(ctx, user.ID)
	} else {
		courses, err = s.repo.Course().ListJoinedBy(ctx, user.ID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list courses: %w", err)
	}

	existing := make([]schedule.CourseSlots, 0, len(courses))
	for _, c := range courses {
		existing = append(existing, schedule.FromCourse(c))
	}
	if req.ExcludeCourseID != nil {
		existing = schedule.ExcludeCourse(existing, *req.ExcludeCourseID)
	}

	conflict, err := schedule.FindConflict(req.Slot, existing, req.Pending)
	if err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}
	return &ScheduleCheckResponse{OK: conflict == nil, Conflict: conflict}, nil
}

// ===== HELPERS =====

func (s *courseService) getCourse(ctx context.Context, id uint) (*models.Course, error) {
	course, err := s.repo.Course().GetByID(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrCourseNotFound
		}
		return nil, fmt.Errorf("failed to get course: %w", err)
	}
	return course, nil
}

// ownedSchedules loads the schedules of the teacher's courses, leaving out
// the course with id exclude.
func (s *courseService) ownedSchedules(ctx context.Context, ownerID string, exclude uint) ([]schedule.CourseSlots, error) {
	courses, err := s.repo.Course().ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list owned courses: %w", err)
	}
	result := make([]schedule.CourseSlots, 0, len(courses))
	for _, c := range courses {
		result = append(result, schedule.FromCourse(c))
	}
	if exclude != 0 {
		result = schedule.ExcludeCourse(result, exclude)
	}
	return result, nil
}

func checkSession(slots []models.ScheduleSlot, existing []schedule.CourseSlots) error {
	conflict, err := schedule.ValidateSession(slots, existing)
	if err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}
	if conflict != nil {
		return &ScheduleConflictError{Conflict: conflict}
	}
	return nil
}

func courseID(c *models.Course) uint {
	if c == nil {
		return 0
	}
	return c.ID
}

func displayName(u *models.User) string {
	if u.FullName != "" {
		return u.FullName
	}
	return u.ID
}

func now() time.Time {
	return time.Now().UTC()
}
