package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// ServiceLogger provides structured logging for service layer operations
type ServiceLogger struct {
	logger *slog.Logger
}

func NewServiceLogger(logger *slog.Logger, service string) *ServiceLogger {
	return &ServiceLogger{
		logger: logger.With("service", service),
	}
}

// ===== OPERATION LOGGING =====

func (l *ServiceLogger) LogOperation(ctx context.Context, operation, userID string, resourceID uint, resourceType string, duration time.Duration, err error) {
	level := slog.LevelInfo
	status := "success"

	if err != nil {
		level = slog.LevelError
		status = "error"

		// Adjust log level based on error type
		switch {
		case IsValidation(err) || IsBusinessRule(err):
			level = slog.LevelWarn
			status = "validation_error"
		case IsUnauthorized(err):
			level = slog.LevelWarn
			status = "unauthorized"
		case IsConflict(err):
			level = slog.LevelWarn
			status = "conflict"
		case IsNotFound(err):
			status = "not_found"
		}
	}

	attrs := []slog.Attr{
		slog.String("operation", operation),
		slog.String("user_id", userID),
		slog.Uint64("resource_id", uint64(resourceID)),
		slog.String("resource_type", resourceType),
		slog.String("status", status),
		slog.Duration("duration", duration),
	}

	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))

		var validationErr ValidationErrors
		var businessErr *BusinessRuleError
		var conflictErr *ScheduleConflictError
		switch {
		case errors.As(err, &validationErr):
			attrs = append(attrs, slog.Int("validation_errors_count", len(validationErr)))
		case errors.As(err, &businessErr):
			attrs = append(attrs, slog.String("business_rule", businessErr.Rule))
		case errors.As(err, &conflictErr):
			attrs = append(attrs, slog.String("conflict", conflictErr.Conflict.String()))
		}
	}

	l.logger.LogAttrs(ctx, level, fmt.Sprintf("%s operation %s", operation, status), attrs...)
}

// OperationLog times one service call and logs its outcome.
type OperationLog struct {
	logger    *ServiceLogger
	ctx       context.Context
	operation string
	userID    string
	startTime time.Time
}

func (l *ServiceLogger) WithOperation(ctx context.Context, operation, userID string) *OperationLog {
	return &OperationLog{
		logger:    l,
		ctx:       ctx,
		operation: operation,
		userID:    userID,
		startTime: time.Now(),
	}
}

func (o *OperationLog) LogResult(resourceID uint, resourceType string, err error) {
	o.logger.LogOperation(o.ctx, o.operation, o.userID, resourceID, resourceType, time.Since(o.startTime), err)
}

// ===== ERROR FORMATTING HELPERS =====

// FormatError renders an error as a loggable or serializable map.
func FormatError(err error) map[string]any {
	if err == nil {
		return nil
	}

	result := map[string]any{
		"message": err.Error(),
		"type":    "unknown",
	}

	var validationErrs ValidationErrors
	var businessErr *BusinessRuleError
	var permErr *PermissionError
	var conflictErr *ScheduleConflictError

	switch {
	case errors.As(err, &validationErrs):
		result["type"] = "validation"
		result["count"] = len(validationErrs)
		fields := make([]map[string]any, len(validationErrs))
		for i, ve := range validationErrs {
			fields[i] = map[string]any{
				"field":   ve.Field,
				"message": ve.Message,
				"value":   ve.Value,
			}
		}
		result["errors"] = fields
	case errors.As(err, &businessErr):
		result["type"] = "business_rule"
		result["rule"] = businessErr.Rule
		result["context"] = businessErr.Context
	case errors.As(err, &permErr):
		result["type"] = "permission"
		result["resource"] = permErr.Resource
		result["action"] = permErr.Action
		result["reason"] = permErr.Reason
	case errors.As(err, &conflictErr):
		result["type"] = "schedule_conflict"
		result["course_id"] = conflictErr.Conflict.CourseID
		result["course_name"] = conflictErr.Conflict.CourseName
		result["slot"] = conflictErr.Conflict.Description
	case IsNotFound(err):
		result["type"] = "not_found"
	case IsUnauthorized(err):
		result["type"] = "unauthorized"
	case IsConflict(err):
		result["type"] = "conflict"
	case IsValidation(err):
		result["type"] = "validation"
	}

	return result
}
