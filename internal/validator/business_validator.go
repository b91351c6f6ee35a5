package validator

import (
	"fmt"

	apperrors "github.com/SAP-F-2025/classroom-service/internal/errors"
	"github.com/SAP-F-2025/classroom-service/internal/models"
)

// BusinessRules is implemented by requests that carry rules struct tags
// cannot express.
type BusinessRules interface {
	BusinessRules() ValidationErrors
}

// BusinessValidator checks cross-field rules after struct tags pass.
type BusinessValidator struct {
	questions *QuestionValidator
}

func NewBusinessValidator(questions *QuestionValidator) *BusinessValidator {
	return &BusinessValidator{questions: questions}
}

func (b *BusinessValidator) Validate(s interface{}) ValidationErrors {
	var errs ValidationErrors

	switch v := s.(type) {
	case *models.Quiz:
		errs = append(errs, b.ValidateQuestions(v.Questions)...)
	case *models.Course:
		errs = append(errs, b.ValidateSlots(v.Schedule)...)
	}

	if rules, ok := s.(BusinessRules); ok {
		errs = append(errs, rules.BusinessRules()...)
	}
	return errs
}

// ValidateQuestions checks the type-specific content of every question.
func (b *BusinessValidator) ValidateQuestions(questions []models.Question) ValidationErrors {
	var errs ValidationErrors
	if len(questions) == 0 {
		errs = append(errs, *apperrors.NewValidationErrorWithRule("questions", "must contain at least one question", "min", nil))
		return errs
	}
	for i := range questions {
		errs = append(errs, b.questions.ValidateQuestion(i, &questions[i])...)
	}
	return errs
}

// ValidateSlots checks that every slot has a weekday and parseable times.
func (b *BusinessValidator) ValidateSlots(slots []models.ScheduleSlot) ValidationErrors {
	var errs ValidationErrors
	for i, slot := range slots {
		if err := checkSlot(slot); err != nil {
			errs = append(errs, *apperrors.NewValidationErrorWithRule(
				fmt.Sprintf("schedule[%d]", i), err.Error(), "schedule_slot", slot))
		}
	}
	return errs
}
