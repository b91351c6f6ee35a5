package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	eventSource  = "classroom-service"
	eventVersion = "1.0"
)

// EventType represents different types of notification events
type EventType string

const (
	// Course events
	EventCourseJoined EventType = "course.joined"

	// Quiz events
	EventQuizPublished EventType = "quiz.published"

	// Submission events
	EventSubmissionReceived    EventType = "submission.received"
	EventManualGradingRequired EventType = "submission.grading_required"

	// Grading events
	EventGradeReleased EventType = "grade.released"
)

// NotificationEvent is the base event structure for all notification events
type NotificationEvent struct {
	ID        string         `json:"id"`
	Type      EventType      `json:"type"`
	Timestamp time.Time      `json:"timestamp"`
	Source    string         `json:"source"`
	Version   string         `json:"version"`
	Data      any            `json:"data"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

type CourseJoinedEvent struct {
	CourseID   uint   `json:"course_id"`
	CourseName string `json:"course_name"`
	StudentID  string `json:"student_id"`
	OwnerID    string `json:"owner_id"`
}

type QuizPublishedEvent struct {
	QuizID     uint       `json:"quiz_id"`
	QuizTitle  string     `json:"quiz_title"`
	CourseID   uint       `json:"course_id"`
	ReleaseAt  *time.Time `json:"release_at,omitempty"`
	TimeLimit  int        `json:"time_limit"` // minutes
	StudentIDs []string   `json:"student_ids"`
	OwnerID    string     `json:"owner_id"`
}

type SubmissionReceivedEvent struct {
	SubmissionID    uint      `json:"submission_id"`
	QuizID          uint      `json:"quiz_id"`
	QuizTitle       string    `json:"quiz_title"`
	StudentID       string    `json:"student_id"`
	StudentName     string    `json:"student_name"`
	OwnerID         string    `json:"owner_id"`
	SubmittedAt     time.Time `json:"submitted_at"`
	EarnedPoints    float64   `json:"earned_points"`
	TotalPoints     float64   `json:"total_points"`
	GradingRequired bool      `json:"grading_required"`
}

type GradeReleasedEvent struct {
	SubmissionID uint      `json:"submission_id"`
	QuizID       uint      `json:"quiz_id"`
	QuizTitle    string    `json:"quiz_title"`
	StudentID    string    `json:"student_id"`
	GradedAt     time.Time `json:"graded_at"`
	Score        float64   `json:"score"`
	MaxScore     float64   `json:"max_score"`
	Percentage   float64   `json:"percentage"`
	Passed       bool      `json:"passed"`
	GraderID     string    `json:"grader_id"`
}

// Event factory functions

func newEvent(eventType EventType, data any) *NotificationEvent {
	return &NotificationEvent{
		ID:        GenerateEventID(),
		Type:      eventType,
		Timestamp: time.Now(),
		Source:    eventSource,
		Version:   eventVersion,
		Data:      data,
	}
}

func NewCourseJoinedEvent(data CourseJoinedEvent) *NotificationEvent {
	return newEvent(EventCourseJoined, data)
}

func NewQuizPublishedEvent(data QuizPublishedEvent) *NotificationEvent {
	return newEvent(EventQuizPublished, data)
}

// NewSubmissionReceivedEvent picks the grading-required type when the
// submission still has items waiting for a teacher.
func NewSubmissionReceivedEvent(data SubmissionReceivedEvent) *NotificationEvent {
	if data.GradingRequired {
		return newEvent(EventManualGradingRequired, data)
	}
	return newEvent(EventSubmissionReceived, data)
}

func NewGradeReleasedEvent(data GradeReleasedEvent) *NotificationEvent {
	return newEvent(EventGradeReleased, data)
}

// GenerateEventID returns a random event identifier.
func GenerateEventID() string {
	return uuid.NewString()
}
