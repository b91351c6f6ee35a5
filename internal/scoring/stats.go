package scoring

import "github.com/SAP-F-2025/classroom-service/internal/models"

// PassThreshold is the fraction of total points needed to pass.
const PassThreshold = 0.5

type Stats struct {
	AverageScore   float64 `json:"average_score"`
	PassRate       float64 `json:"pass_rate"` // 0.0 - 1.0
	MaxScore       float64 `json:"max_score"`
	SubmittedCount int     `json:"submitted_count"`
	GradedCount    int     `json:"graded_count"`
	PendingCount   int     `json:"pending_count"`
	PassedCount    int     `json:"passed_count"`
	RosterSize     int     `json:"roster_size"`
}

// Summarize aggregates the submissions of one quiz. Submissions awaiting
// manual grading count as submitted but stay out of the average, pass rate
// and maximum. In-progress attempts are ignored.
func Summarize(submissions []models.Submission, rosterSize int) Stats {
	stats := Stats{RosterSize: rosterSize}

	sum := 0.0
	for _, s := range submissions {
		switch s.Status {
		case models.SubmissionPendingGrading:
			stats.SubmittedCount++
			stats.PendingCount++
		case models.SubmissionSubmitted:
			stats.SubmittedCount++
			stats.GradedCount++
			sum += s.Earned
			if stats.GradedCount == 1 || s.Earned > stats.MaxScore {
				stats.MaxScore = s.Earned
			}
			if s.Total > 0 && s.Earned >= s.Total*PassThreshold {
				stats.PassedCount++
			}
		}
	}

	if stats.GradedCount > 0 {
		stats.AverageScore = sum / float64(stats.GradedCount)
		stats.PassRate = float64(stats.PassedCount) / float64(stats.GradedCount)
	}
	return stats
}
