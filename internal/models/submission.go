package models

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
)

type SubmissionStatus string

const (
	SubmissionInProgress     SubmissionStatus = "in_progress"
	SubmissionPendingGrading SubmissionStatus = "pending_grading"
	SubmissionSubmitted      SubmissionStatus = "submitted"
)

func (s SubmissionStatus) IsValid() bool {
	switch s {
	case SubmissionInProgress, SubmissionPendingGrading, SubmissionSubmitted:
		return true
	}
	return false
}

// AnswerSet maps a question index to the submitted value. The value's shape
// depends on the question type: an option index, a boolean, a pair-index to
// string object or a free string.
type AnswerSet map[int]json.RawMessage

// ItemScores holds per-question points keyed by question index.
type ItemScores map[int]float64

type Submission struct {
	ID          uint                           `json:"id" gorm:"primaryKey"`
	QuizID      uint                           `json:"quiz_id" gorm:"not null;uniqueIndex:idx_submission_quiz_student"`
	StudentID   string                         `json:"student_id" gorm:"not null;size:255;uniqueIndex:idx_submission_quiz_student"`
	StudentName string                         `json:"student_name" gorm:"size:100"`
	Answers     datatypes.JSONType[AnswerSet]  `json:"answers" gorm:"type:jsonb"`
	ItemScores  datatypes.JSONType[ItemScores] `json:"item_scores" gorm:"type:jsonb"`
	Earned      float64                        `json:"earned_points"`
	Total       float64                        `json:"total_points"`
	Status      SubmissionStatus               `json:"status" gorm:"not null;default:in_progress;index"`

	StartedAt   time.Time  `json:"started_at"`
	SubmittedAt *time.Time `json:"submitted_at"`
	GradedAt    *time.Time `json:"graded_at"`
	GradedBy    *string    `json:"graded_by" gorm:"size:255"`

	// Version guards grading saves against concurrent overwrites.
	Version int `json:"version" gorm:"not null;default:1"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	Quiz *Quiz `json:"quiz,omitempty" gorm:"foreignKey:QuizID"`
}

func (Submission) TableName() string {
	return "submissions"
}

// IsGraded reports whether the submission has a final score.
func (s *Submission) IsGraded() bool {
	return s.Status == SubmissionSubmitted
}
