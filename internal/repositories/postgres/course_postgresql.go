package postgres

import (
	"context"

	"github.com/SAP-F-2025/classroom-service/internal/models"
	"github.com/SAP-F-2025/classroom-service/internal/repositories"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type CoursePostgreSQL struct {
	db *gorm.DB
}

func NewCoursePostgreSQL(db *gorm.DB) repositories.CourseRepository {
	return &CoursePostgreSQL{db: db}
}

func (c CoursePostgreSQL) Create(ctx context.Context, course *models.Course) error {
	return translate(c.db.WithContext(ctx).Create(course).Error)
}

func (c CoursePostgreSQL) GetByID(ctx context.Context, id uint) (*models.Course, error) {
	var course models.Course
	if err := c.db.WithContext(ctx).Preload("Members").First(&course, id).Error; err != nil {
		return nil, translate(err)
	}
	return &course, nil
}

func (c CoursePostgreSQL) UpdateSchedule(ctx context.Context, id uint, slots []models.ScheduleSlot) error {
	result := c.db.WithContext(ctx).
		Model(&models.Course{}).
		Where("id = ?", id).
		Update("schedule", datatypes.NewJSONSlice(slots))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return repositories.ErrNotFound
	}
	return nil
}

func (c CoursePostgreSQL) ListByOwner(ctx context.Context, ownerID string) ([]*models.Course, error) {
	var courses []*models.Course
	if err := c.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("id ASC").
		Find(&courses).Error; err != nil {
		return nil, err
	}
	return courses, nil
}

func (c CoursePostgreSQL) ListJoinedBy(ctx context.Context, userID string) ([]*models.Course, error) {
	var courses []*models.Course
	if err := c.db.WithContext(ctx).
		Joins("JOIN course_members cm ON cm.course_id = courses.id").
		Where("cm.user_id = ?", userID).
		Order("courses.id ASC").
		Find(&courses).Error; err != nil {
		return nil, err
	}
	return courses, nil
}

func (c CoursePostgreSQL) AddMember(ctx context.Context, member *models.CourseMember) error {
	return translate(c.db.WithContext(ctx).Create(member).Error)
}

func (c CoursePostgreSQL) IsMember(ctx context.Context, courseID uint, userID string) (bool, error) {
	var count int64
	if err := c.db.WithContext(ctx).
		Model(&models.CourseMember{}).
		Where("course_id = ? AND user_id = ?", courseID, userID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (c CoursePostgreSQL) ListMemberIDs(ctx context.Context, courseID uint) ([]string, error) {
	var ids []string
	if err := c.db.WithContext(ctx).
		Model(&models.CourseMember{}).
		Where("course_id = ? AND role = ?", courseID, models.RoleStudent).
		Pluck("user_id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

func (c CoursePostgreSQL) CountMembers(ctx context.Context, courseID uint) (int, error) {
	var count int64
	if err := c.db.WithContext(ctx).
		Model(&models.CourseMember{}).
		Where("course_id = ? AND role = ?", courseID, models.RoleStudent).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return int(count), nil
}
