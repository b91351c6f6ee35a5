package services

import (
	"time"

	"github.com/SAP-F-2025/classroom-service/internal/events"
	"github.com/SAP-F-2025/classroom-service/internal/models"
	"github.com/SAP-F-2025/classroom-service/internal/schedule"
	"github.com/SAP-F-2025/classroom-service/internal/scoring"
)

// ===== COURSE =====

type CreateCourseRequest struct {
	Name     string                `json:"name" validate:"required,min=1,max=200"`
	Section  string                `json:"section" validate:"max=50"`
	Schedule []models.ScheduleSlot `json:"schedule" validate:"dive"`
}

type UpdateScheduleRequest struct {
	Schedule []models.ScheduleSlot `json:"schedule" validate:"dive"`
}

type CheckScheduleRequest struct {
	Slot    models.ScheduleSlot   `json:"slot"`
	Pending []models.ScheduleSlot `json:"pending" validate:"dive"`
	// ExcludeCourseID skips the course being edited.
	ExcludeCourseID *uint `json:"exclude_course_id,omitempty"`
}

type ScheduleCheckResponse struct {
	OK       bool               `json:"ok"`
	Conflict *schedule.Conflict `json:"conflict,omitempty"`
}

// ===== QUIZ =====

type CreateQuizRequest struct {
	Title            string            `json:"title" validate:"required,min=1,max=200"`
	CourseID         uint              `json:"course_id" validate:"required"`
	TimeLimitMinutes int               `json:"time_limit_minutes" validate:"min=0,max=600"`
	ReleaseAt        *time.Time        `json:"release_at"`
	Questions        []models.Question `json:"questions" validate:"required,min=1,dive"`
}

type UpdateQuizRequest struct {
	Title            *string           `json:"title" validate:"omitempty,min=1,max=200"`
	TimeLimitMinutes *int              `json:"time_limit_minutes" validate:"omitempty,min=0,max=600"`
	ReleaseAt        *time.Time        `json:"release_at"`
	Questions        []models.Question `json:"questions" validate:"omitempty,min=1,dive"`
}

// QuestionView is a question as students see it: answer keys removed and
// matching right-hand values offered in sorted order.
type QuestionView struct {
	Index         int                 `json:"index"`
	Type          models.QuestionType `json:"type"`
	Prompt        string              `json:"prompt"`
	Points        float64             `json:"points"`
	Options       []string            `json:"options,omitempty"`
	OptionImages  []string            `json:"option_images,omitempty"`
	Lefts         []string            `json:"lefts,omitempty"`
	Rights        []string            `json:"rights,omitempty"`
	ManualGrading bool                `json:"manual_grading,omitempty"`
}

type QuizResponse struct {
	*models.Quiz
	// Items replaces Questions for students.
	Items []QuestionView `json:"items,omitempty"`
}

// ===== SUBMISSION =====

type SubmitAnswersRequest struct {
	Answers models.AnswerSet `json:"answers"`
}

type SaveGradesRequest struct {
	Version   int               `json:"version" validate:"required,min=1"`
	Overrides models.ItemScores `json:"overrides"`
}

type QuizStatsResponse struct {
	QuizID      uint    `json:"quiz_id"`
	QuizTitle   string  `json:"quiz_title"`
	TotalPoints float64 `json:"total_points"`
	scoring.Stats
}

type GradebookFile struct {
	FileName    string
	ContentType string
	Data        []byte
}

// ===== NOTIFICATION =====

type NotifyRequest struct {
	Recipients []string
	Title      string
	Kind       models.NotificationKind
	Detail     string
	Metadata   map[string]any
	// Event is published once for the whole fan-out when set.
	Event *events.NotificationEvent
}
