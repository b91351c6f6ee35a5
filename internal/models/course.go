package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ScheduleSlot is a recurring weekly time block of a course. Day follows
// time.Weekday numbering (0 = Sunday).
type ScheduleSlot struct {
	Day       int    `json:"day" validate:"weekday"`
	StartTime string `json:"start_time" validate:"required,clock"`
	EndTime   string `json:"end_time" validate:"required,clock"`
	Room      string `json:"room" validate:"max=100"`
	CourseID  uint   `json:"course_id,omitempty"`
}

type Course struct {
	ID       uint                              `json:"id" gorm:"primaryKey"`
	Name     string                            `json:"name" gorm:"not null;size:200" validate:"required,min=1,max=200"`
	Section  string                            `json:"section" gorm:"size:50" validate:"max=50"`
	OwnerID  string                            `json:"owner_id" gorm:"not null;index;size:255"`
	Schedule datatypes.JSONSlice[ScheduleSlot] `json:"schedule" gorm:"type:jsonb" validate:"dive"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	Members []CourseMember `json:"members,omitempty" gorm:"foreignKey:CourseID"`
}

func (Course) TableName() string {
	return "courses"
}

type CourseMember struct {
	CourseID  uint      `json:"course_id" gorm:"primaryKey"`
	UserID    string    `json:"user_id" gorm:"primaryKey;size:255"`
	UserName  string    `json:"user_name" gorm:"size:100"`
	Role      UserRole  `json:"role" gorm:"not null;default:student"`
	CreatedAt time.Time `json:"created_at"`
}

func (CourseMember) TableName() string {
	return "course_members"
}
