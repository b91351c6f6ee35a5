package validator

import (
	"fmt"
	"strings"

	apperrors "github.com/SAP-F-2025/classroom-service/internal/errors"
	"github.com/SAP-F-2025/classroom-service/internal/models"
	"github.com/SAP-F-2025/classroom-service/internal/schedule"
)

// QuestionValidator handles question-specific validation
type QuestionValidator struct{}

// NewQuestionValidator creates a new question validator
func NewQuestionValidator() *QuestionValidator {
	return &QuestionValidator{}
}

// ValidateQuestion validates the content of the question at index.
func (v *QuestionValidator) ValidateQuestion(index int, q *models.Question) ValidationErrors {
	field := func(name string) string {
		return fmt.Sprintf("questions[%d].%s", index, name)
	}

	var errs ValidationErrors
	add := func(name, message, rule string, value interface{}) {
		errs = append(errs, *apperrors.NewValidationErrorWithRule(field(name), message, rule, value))
	}

	if strings.TrimSpace(q.Prompt) == "" {
		add("prompt", "is required", "required", q.Prompt)
	}

	switch q.Type {
	case models.QuestionChoice:
		if len(q.Options) != models.ChoiceOptionCount {
			add("options", fmt.Sprintf("must contain exactly %d options", models.ChoiceOptionCount), "len", len(q.Options))
		}
		if len(q.OptionImages) > models.ChoiceOptionCount {
			add("option_images", fmt.Sprintf("must contain at most %d images", models.ChoiceOptionCount), "max", len(q.OptionImages))
		}
		if q.Correct == nil {
			add("correct", "is required", "required", nil)
		} else if *q.Correct < 0 || *q.Correct >= models.ChoiceOptionCount {
			add("correct", "must reference one of the options", "option_index", *q.Correct)
		}
	case models.QuestionTrueFalse:
		if q.CorrectAnswer == nil {
			add("correct_answer", "is required", "required", nil)
		}
	case models.QuestionMatching:
		if len(q.Pairs) == 0 {
			add("pairs", "must contain at least one pair", "min", 0)
		}
	case models.QuestionText:
		if !q.ManualGrading && len(nonBlank(q.Keywords)) == 0 {
			add("keywords", "are required unless manual_grading is set", "required_without", nil)
		}
	default:
		add("type", "must be a valid question type (choice, true_false, matching, text)", "question_type", q.Type)
	}

	return errs
}

func nonBlank(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			out = append(out, v)
		}
	}
	return out
}

func checkSlot(slot models.ScheduleSlot) error {
	_, err := schedule.WindowOf(slot)
	return err
}
