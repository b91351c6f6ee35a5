package models

import (
	"time"

	"gorm.io/datatypes"
)

type NotificationKind string

const (
	NotificationQuizPublished      NotificationKind = "quiz_published"
	NotificationSubmissionReceived NotificationKind = "submission_received"
	NotificationGradingRequired    NotificationKind = "grading_required"
	NotificationGradeReleased      NotificationKind = "grade_released"
	NotificationCourseJoined       NotificationKind = "course_joined"
)

type Notification struct {
	ID       uint              `json:"id" gorm:"primaryKey"`
	UserID   string            `json:"user_id" gorm:"not null;index;size:255"`
	Title    string            `json:"title" gorm:"not null;size:255"`
	Kind     NotificationKind  `json:"kind" gorm:"not null;index"`
	Detail   string            `json:"detail" gorm:"type:text"`
	Metadata datatypes.JSONMap `json:"metadata" gorm:"type:jsonb"`

	ReadAt    *time.Time `json:"read_at"`
	CreatedAt time.Time  `json:"created_at"`
}

func (Notification) TableName() string {
	return "notifications"
}
