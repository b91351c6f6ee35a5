// Package scoring grades quiz answer sets, applies teacher overrides and
// summarizes a roster of submissions. Everything here is pure: callers fetch
// the quiz and submissions and persist the results.
package scoring

import (
	"errors"
	"fmt"
	"sort"

	"github.com/SAP-F-2025/classroom-service/internal/models"
)

var (
	ErrNoQuestions         = errors.New("quiz has no questions")
	ErrUnknownQuestionType = errors.New("unknown question type")
	ErrInvalidOverride     = errors.New("invalid score override")
)

// ItemResult is the graded outcome of one question.
type ItemResult struct {
	Index       int     `json:"index"`
	Correct     bool    `json:"correct"`
	NeedsReview bool    `json:"needs_review"`
	Earned      float64 `json:"earned"`
	Max         float64 `json:"max"`
}

type Result struct {
	EarnedPoints     float64      `json:"earned_points"`
	TotalPoints      float64      `json:"total_points"`
	Items            []ItemResult `json:"items"`
	HasManualGrading bool         `json:"has_manual_grading"`
}

// PerItemCorrect returns the correctness flags in question order.
func (r *Result) PerItemCorrect() []bool {
	out := make([]bool, len(r.Items))
	for i, item := range r.Items {
		out[i] = item.Correct
	}
	return out
}

// Score grades answers against questions in order. Missing or malformed
// answers count as incorrect; only an invalid quiz definition is an error.
func Score(questions []models.Question, answers models.AnswerSet) (*Result, error) {
	items, err := buildItems(questions)
	if err != nil {
		return nil, err
	}

	result := &Result{Items: make([]ItemResult, len(items))}
	for i, item := range items {
		points := item.MaxPoints()
		verdict := item.Grade(answers[i])

		ir := ItemResult{Index: i, Max: points}
		switch verdict {
		case Correct:
			ir.Correct = true
			ir.Earned = points
		case NeedsReview:
			ir.NeedsReview = true
			result.HasManualGrading = true
		}

		result.TotalPoints += points
		result.EarnedPoints += ir.Earned
		result.Items[i] = ir
	}

	return result, nil
}

type OverrideResult struct {
	TotalScore float64   `json:"total_score"`
	MaxTotal   float64   `json:"max_total"`
	ItemScores []float64 `json:"item_scores"`
}

// ScoreMap returns the item scores keyed by question index.
func (r *OverrideResult) ScoreMap() models.ItemScores {
	out := make(models.ItemScores, len(r.ItemScores))
	for i, s := range r.ItemScores {
		out[i] = s
	}
	return out
}

// ApplyManualOverrides recomputes a submission's score. An item with an
// override uses that value verbatim; every other item is graded
// automatically again. Overrides must lie within [0, points] of their item.
func ApplyManualOverrides(questions []models.Question, answers models.AnswerSet, overrides models.ItemScores) (*OverrideResult, error) {
	items, err := buildItems(questions)
	if err != nil {
		return nil, err
	}
	if err := checkOverrides(items, overrides); err != nil {
		return nil, err
	}

	result := &OverrideResult{ItemScores: make([]float64, len(items))}
	for i, item := range items {
		points := item.MaxPoints()
		score := 0.0
		if v, ok := overrides[i]; ok {
			score = v
		} else if item.Grade(answers[i]) == Correct {
			score = points
		}
		result.ItemScores[i] = score
		result.TotalScore += score
		result.MaxTotal += points
	}

	return result, nil
}

func checkOverrides(items []Item, overrides models.ItemScores) error {
	indexes := make([]int, 0, len(overrides))
	for idx := range overrides {
		indexes = append(indexes, idx)
	}
	sort.Ints(indexes)

	for _, idx := range indexes {
		if idx < 0 || idx >= len(items) {
			return fmt.Errorf("%w: question %d does not exist", ErrInvalidOverride, idx)
		}
		v, points := overrides[idx], items[idx].MaxPoints()
		if v < 0 || v > points {
			return fmt.Errorf("%w: question %d score %.2f outside [0, %.2f]", ErrInvalidOverride, idx, v, points)
		}
	}
	return nil
}

func buildItems(questions []models.Question) ([]Item, error) {
	if len(questions) == 0 {
		return nil, ErrNoQuestions
	}
	items := make([]Item, len(questions))
	for i, q := range questions {
		item, err := ItemFor(q)
		if err != nil {
			return nil, fmt.Errorf("question %d: %w", i, err)
		}
		items[i] = item
	}
	return items, nil
}

// TotalPoints sums the point values of questions.
func TotalPoints(questions []models.Question) float64 {
	total := 0.0
	for _, q := range questions {
		total += q.PointValue()
	}
	return total
}
