package handlers

import (
	"net/http"

	"github.com/SAP-F-2025/classroom-service/internal/metrics"
	"github.com/SAP-F-2025/classroom-service/internal/services"
	"github.com/SAP-F-2025/classroom-service/internal/utils"
	"github.com/gin-gonic/gin"
)

// Services lists the service layer the HTTP surface is built on.
type Services struct {
	Course       services.CourseService
	Quiz         services.QuizService
	Submission   services.SubmissionService
	Grading      services.GradingService
	Gradebook    services.GradebookService
	Notification services.NotificationService
}

type HandlerManager struct {
	courseHandler       *CourseHandler
	quizHandler         *QuizHandler
	submissionHandler   *SubmissionHandler
	gradingHandler      *GradingHandler
	notificationHandler *NotificationHandler
	metrics             *metrics.Metrics
}

func NewHandlerManager(svc Services, logger utils.Logger, m *metrics.Metrics) *HandlerManager {
	return &HandlerManager{
		courseHandler:       NewCourseHandler(svc.Course, svc.Quiz, logger, m),
		quizHandler:         NewQuizHandler(svc.Quiz, logger, m),
		submissionHandler:   NewSubmissionHandler(svc.Submission, logger, m),
		gradingHandler:      NewGradingHandler(svc.Grading, svc.Gradebook, logger, m),
		notificationHandler: NewNotificationHandler(svc.Notification, logger, m),
		metrics:             m,
	}
}

// SetupRoutes sets up all API routes. authMiddleware guards everything
// under /api/v1.
func (hm *HandlerManager) SetupRoutes(router *gin.Engine, authMiddleware gin.HandlerFunc) {
	router.GET("/health", HealthCheck)
	if hm.metrics != nil {
		router.GET("/metrics", gin.WrapH(hm.metrics.Handler()))
	}

	v1 := router.Group("/api/v1")
	v1.Use(authMiddleware)
	{
		courses := v1.Group("/courses")
		{
			courses.POST("", hm.courseHandler.CreateCourse)
			courses.GET("", hm.courseHandler.ListMyCourses)
			courses.GET("/:id", hm.courseHandler.GetCourse)
			courses.PUT("/:id/schedule", hm.courseHandler.UpdateSchedule)
			courses.POST("/:id/join", hm.courseHandler.JoinCourse)
			courses.GET("/:id/quizzes", hm.courseHandler.ListCourseQuizzes)
		}

		v1.POST("/schedule/check", hm.courseHandler.CheckSchedule)

		quizzes := v1.Group("/quizzes")
		{
			quizzes.POST("", hm.quizHandler.CreateQuiz)
			quizzes.GET("/:id", hm.quizHandler.GetQuiz)
			quizzes.PUT("/:id", hm.quizHandler.UpdateQuiz)

			quizzes.POST("/:id/start", hm.submissionHandler.StartQuiz)
			quizzes.GET("/:id/submissions", hm.submissionHandler.ListQuizSubmissions)

			quizzes.GET("/:id/stats", hm.gradingHandler.GetQuizStats)
			quizzes.GET("/:id/gradebook", hm.gradingHandler.ExportGradebook)
		}

		submissions := v1.Group("/submissions")
		{
			submissions.GET("/:id", hm.submissionHandler.GetSubmission)
			submissions.POST("/:id/submit", hm.submissionHandler.SubmitAnswers)
			submissions.PUT("/:id/grades", hm.gradingHandler.SaveGrades)
		}

		notifications := v1.Group("/notifications")
		{
			notifications.GET("", hm.notificationHandler.ListNotifications)
			notifications.GET("/stream", hm.notificationHandler.StreamNotifications)
			notifications.POST("/:id/read", hm.notificationHandler.MarkRead)
		}
	}
}

func HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "classroom-service",
	})
}
