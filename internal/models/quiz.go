package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type QuestionType string

const (
	QuestionChoice    QuestionType = "choice"
	QuestionTrueFalse QuestionType = "true_false"
	QuestionMatching  QuestionType = "matching"
	QuestionText      QuestionType = "text"
)

// QuestionTypes lists every supported question type.
var QuestionTypes = []QuestionType{
	QuestionChoice,
	QuestionTrueFalse,
	QuestionMatching,
	QuestionText,
}

// DefaultQuestionPoints is used when a question carries no positive point value.
const DefaultQuestionPoints = 1.0

// ChoiceOptionCount is the number of options a choice question offers.
const ChoiceOptionCount = 4

type MatchPair struct {
	Left  string `json:"left" validate:"required"`
	Right string `json:"right" validate:"required"`
}

// Question is the stored form of one quiz item. Only the fields belonging to
// Type are meaningful; the scoring package turns it into a typed item.
type Question struct {
	Type   QuestionType `json:"type" validate:"required,question_type"`
	Prompt string       `json:"prompt" validate:"required,max=2000"`
	Points float64      `json:"points,omitempty" validate:"gte=0,lte=100"`

	// choice
	Options      []string `json:"options,omitempty"`
	OptionImages []string `json:"option_images,omitempty"`
	Correct      *int     `json:"correct,omitempty"`

	// true_false
	CorrectAnswer *bool `json:"correct_answer,omitempty"`

	// matching
	Pairs []MatchPair `json:"pairs,omitempty" validate:"omitempty,dive"`

	// text
	Keywords      []string `json:"keywords,omitempty"`
	ManualGrading bool     `json:"manual_grading,omitempty"`
}

// PointValue returns the question's points, defaulting to 1.
func (q Question) PointValue() float64 {
	if q.Points <= 0 {
		return DefaultQuestionPoints
	}
	return q.Points
}

type Quiz struct {
	ID               uint                          `json:"id" gorm:"primaryKey"`
	Title            string                        `json:"title" gorm:"not null;size:200" validate:"required,min=1,max=200"`
	CourseID         uint                          `json:"course_id" gorm:"not null;index" validate:"required"`
	TimeLimitMinutes int                           `json:"time_limit_minutes" gorm:"default:0" validate:"min=0,max=600"`
	ReleaseAt        *time.Time                    `json:"release_at"`
	Questions        datatypes.JSONSlice[Question] `json:"questions" gorm:"type:jsonb" validate:"required,min=1,dive"`
	OwnerID          string                        `json:"owner_id" gorm:"not null;index;size:255"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	// Computed fields (not stored)
	TotalPoints float64 `json:"total_points" gorm:"-"`
}

func (Quiz) TableName() string {
	return "quizzes"
}

// IsReleased reports whether the quiz is open to students at now.
func (q *Quiz) IsReleased(now time.Time) bool {
	return q.ReleaseAt == nil || !now.Before(*q.ReleaseAt)
}
