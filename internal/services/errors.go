package services

import (
	"errors"
	"fmt"

	apperrors "github.com/SAP-F-2025/classroom-service/internal/errors"
	"github.com/SAP-F-2025/classroom-service/internal/schedule"
	"github.com/SAP-F-2025/classroom-service/internal/scoring"
)

// ===== COMMON SERVICE ERRORS =====

var (
	// Generic errors
	ErrNotFound         = errors.New("resource not found")
	ErrUnauthorized     = errors.New("unauthorized access")
	ErrForbidden        = errors.New("forbidden - insufficient permissions")
	ErrValidationFailed = errors.New("validation failed")
	ErrConflict         = errors.New("resource conflict")

	// Course specific errors
	ErrCourseNotFound     = errors.New("course not found")
	ErrCourseAccessDenied = errors.New("access denied to course")
	ErrAlreadyMember      = errors.New("user already joined this course")

	// Quiz specific errors
	ErrQuizNotFound     = errors.New("quiz not found")
	ErrQuizAccessDenied = errors.New("access denied to quiz")
	ErrQuizNotReleased  = errors.New("quiz is not released yet")

	// Submission specific errors
	ErrSubmissionNotFound         = errors.New("submission not found")
	ErrSubmissionAccessDenied     = errors.New("access denied to submission")
	ErrSubmissionAlreadySubmitted = errors.New("submission already submitted")
	ErrSubmissionNotSubmitted     = errors.New("submission has not been submitted")
	ErrSubmissionVersionConflict  = errors.New("submission was modified by someone else")

	// Grading specific errors
	ErrGradingInvalidScore     = errors.New("invalid score value")
	ErrGradingPermissionDenied = errors.New("permission denied for grading")

	// Notification specific errors
	ErrNotificationNotFound = errors.New("notification not found")
)

// ===== CUSTOM ERROR TYPES =====

type ValidationError = apperrors.ValidationError
type ValidationErrors = apperrors.ValidationErrors

type BusinessRuleError struct {
	Rule    string         `json:"rule"`
	Message string         `json:"message"`
	Context map[string]any `json:"context,omitempty"`
}

func (bre *BusinessRuleError) Error() string {
	return fmt.Sprintf("business rule violation (%s): %s", bre.Rule, bre.Message)
}

type PermissionError struct {
	UserID     string `json:"user_id"`
	ResourceID uint   `json:"resource_id"`
	Resource   string `json:"resource"`
	Action     string `json:"action"`
	Reason     string `json:"reason"`
}

func (pe *PermissionError) Error() string {
	return fmt.Sprintf("permission denied: user %s cannot %s %s %d - %s",
		pe.UserID, pe.Action, pe.Resource, pe.ResourceID, pe.Reason)
}

// ScheduleConflictError reports the first slot that clashes with an
// existing or pending schedule entry.
type ScheduleConflictError struct {
	Conflict *schedule.Conflict
}

func (e *ScheduleConflictError) Error() string {
	return "schedule conflict: " + e.Conflict.String()
}

// ===== ERROR HELPERS =====

func NewValidationError(field, message string, value any) *ValidationError {
	return apperrors.NewValidationError(field, message, value)
}

func NewBusinessRuleError(rule, message string, context map[string]any) *BusinessRuleError {
	return &BusinessRuleError{
		Rule:    rule,
		Message: message,
		Context: context,
	}
}

func NewPermissionError(userID string, resourceID uint, resource, action, reason string) *PermissionError {
	return &PermissionError{
		UserID:     userID,
		ResourceID: resourceID,
		Resource:   resource,
		Action:     action,
		Reason:     reason,
	}
}

// IsNotFound checks if error represents a "not found" condition
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrCourseNotFound) ||
		errors.Is(err, ErrQuizNotFound) ||
		errors.Is(err, ErrSubmissionNotFound) ||
		errors.Is(err, ErrNotificationNotFound)
}

// IsUnauthorized checks if error represents an "unauthorized" condition
func IsUnauthorized(err error) bool {
	var pe *PermissionError
	return errors.Is(err, ErrUnauthorized) ||
		errors.Is(err, ErrForbidden) ||
		errors.Is(err, ErrCourseAccessDenied) ||
		errors.Is(err, ErrQuizAccessDenied) ||
		errors.Is(err, ErrSubmissionAccessDenied) ||
		errors.Is(err, ErrGradingPermissionDenied) ||
		errors.As(err, &pe)
}

// IsValidation checks if error represents a validation failure. Scoring
// and clock-format errors count as validation failures.
func IsValidation(err error) bool {
	if errors.Is(err, ErrValidationFailed) ||
		errors.Is(err, ErrGradingInvalidScore) ||
		errors.Is(err, scoring.ErrNoQuestions) ||
		errors.Is(err, scoring.ErrUnknownQuestionType) ||
		errors.Is(err, scoring.ErrInvalidOverride) ||
		errors.Is(err, schedule.ErrInvalidClock) ||
		errors.Is(err, schedule.ErrInvalidDay) {
		return true
	}
	var ve apperrors.ValidationErrors
	return errors.As(err, &ve)
}

// IsBusinessRule checks if error represents a business rule violation
func IsBusinessRule(err error) bool {
	var bre *BusinessRuleError
	return errors.As(err, &bre)
}

// IsConflict checks if error represents a resource conflict
func IsConflict(err error) bool {
	var sce *ScheduleConflictError
	return errors.Is(err, ErrConflict) ||
		errors.Is(err, ErrAlreadyMember) ||
		errors.Is(err, ErrSubmissionAlreadySubmitted) ||
		errors.Is(err, ErrSubmissionVersionConflict) ||
		errors.As(err, &sce)
}
