package scoring

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/SAP-F-2025/classroom-service/internal/models"
)

// Verdict is the automatic grading outcome of one item.
type Verdict int

const (
	Incorrect Verdict = iota
	Correct
	NeedsReview
)

func (v Verdict) String() string {
	switch v {
	case Correct:
		return "correct"
	case NeedsReview:
		return "needs_review"
	default:
		return "incorrect"
	}
}

// Item is a typed, gradable quiz question.
type Item interface {
	MaxPoints() float64
	Grade(answer json.RawMessage) Verdict
}

type ChoiceItem struct {
	Points  float64
	Correct int
}

type TrueFalseItem struct {
	Points        float64
	CorrectAnswer bool
}

type MatchingItem struct {
	Points float64
	Rights []string
}

type TextItem struct {
	Points        float64
	Keywords      []string
	ManualGrading bool
}

// ItemFor converts a stored question into its typed item.
func ItemFor(q models.Question) (Item, error) {
	points := q.PointValue()

	switch q.Type {
	case models.QuestionChoice:
		correct := -1
		if q.Correct != nil {
			correct = *q.Correct
		}
		return ChoiceItem{Points: points, Correct: correct}, nil
	case models.QuestionTrueFalse:
		return TrueFalseItem{Points: points, CorrectAnswer: q.CorrectAnswer != nil && *q.CorrectAnswer}, nil
	case models.QuestionMatching:
		rights := make([]string, len(q.Pairs))
		for i, p := range q.Pairs {
			rights[i] = p.Right
		}
		return MatchingItem{Points: points, Rights: rights}, nil
	case models.QuestionText:
		return TextItem{Points: points, Keywords: q.Keywords, ManualGrading: q.ManualGrading}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownQuestionType, q.Type)
	}
}

func (i ChoiceItem) MaxPoints() float64 { return i.Points }

func (i ChoiceItem) Grade(answer json.RawMessage) Verdict {
	// JSON numbers compare by value, so 2 and 2.0 select the same option.
	var selected float64
	if !decode(answer, &selected) {
		return Incorrect
	}
	return verdictOf(i.Correct >= 0 && selected == float64(i.Correct))
}

func (i TrueFalseItem) MaxPoints() float64 { return i.Points }

func (i TrueFalseItem) Grade(answer json.RawMessage) Verdict {
	var value bool
	if !decode(answer, &value) {
		return Incorrect
	}
	return verdictOf(value == i.CorrectAnswer)
}

func (i MatchingItem) MaxPoints() float64 { return i.Points }

// Grade requires every pair to match. A question without pairs is never
// correct.
func (i MatchingItem) Grade(answer json.RawMessage) Verdict {
	if len(i.Rights) == 0 {
		return Incorrect
	}
	var submitted map[int]string
	if !decode(answer, &submitted) {
		return Incorrect
	}
	for idx, right := range i.Rights {
		got, ok := submitted[idx]
		if !ok || got != right {
			return Incorrect
		}
	}
	return Correct
}

func (i TextItem) MaxPoints() float64 { return i.Points }

func (i TextItem) Grade(answer json.RawMessage) Verdict {
	if i.ManualGrading {
		return NeedsReview
	}
	var text string
	if !decode(answer, &text) {
		return Incorrect
	}
	text = strings.ToLower(text)
	for _, kw := range i.Keywords {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw != "" && strings.Contains(text, kw) {
			return Correct
		}
	}
	return Incorrect
}

func decode(raw json.RawMessage, dst any) bool {
	if len(raw) == 0 || string(raw) == "null" {
		return false
	}
	return json.Unmarshal(raw, dst) == nil
}

func verdictOf(ok bool) Verdict {
	if ok {
		return Correct
	}
	return Incorrect
}
