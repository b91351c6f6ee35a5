package cache

import "fmt"

func QuizKey(id uint) string {
	return fmt.Sprintf("quiz:%d", id)
}

func CourseQuizzesKey(courseID uint) string {
	return fmt.Sprintf("course:%d:quizzes", courseID)
}

func QuizStatsKey(quizID uint) string {
	return fmt.Sprintf("quiz:%d:stats", quizID)
}

// QuizPattern matches every cached entry derived from one quiz.
func QuizPattern(id uint) string {
	return fmt.Sprintf("quiz:%d*", id)
}
