package postgres

import (
	"github.com/SAP-F-2025/classroom-service/internal/repositories"
	"gorm.io/gorm"
)

type repository struct {
	quiz         repositories.QuizRepository
	submission   repositories.SubmissionRepository
	course       repositories.CourseRepository
	notification repositories.NotificationRepository
}

// NewRepository wires every gorm-backed repository onto one connection.
// The connection must be opened with TranslateError enabled so unique
// violations surface as gorm.ErrDuplicatedKey.
func NewRepository(db *gorm.DB) repositories.Repository {
	return &repository{
		quiz:         NewQuizPostgreSQL(db),
		submission:   NewSubmissionPostgreSQL(db),
		course:       NewCoursePostgreSQL(db),
		notification: NewNotificationPostgreSQL(db),
	}
}

func (r *repository) Quiz() repositories.QuizRepository                 { return r.quiz }
func (r *repository) Submission() repositories.SubmissionRepository     { return r.submission }
func (r *repository) Course() repositories.CourseRepository             { return r.course }
func (r *repository) Notification() repositories.NotificationRepository { return r.notification }
