package handlers

import (
	"net/http"

	"github.com/SAP-F-2025/classroom-service/internal/metrics"
	"github.com/SAP-F-2025/classroom-service/internal/models"
	"github.com/SAP-F-2025/classroom-service/internal/repositories"
	"github.com/SAP-F-2025/classroom-service/internal/services"
	"github.com/SAP-F-2025/classroom-service/internal/utils"
	"github.com/gin-gonic/gin"
)

type SubmissionHandler struct {
	BaseHandler
	submissionService services.SubmissionService
}

func NewSubmissionHandler(submissionService services.SubmissionService, logger utils.Logger, m *metrics.Metrics) *SubmissionHandler {
	return &SubmissionHandler{
		BaseHandler:       NewBaseHandler(logger, m),
		submissionService: submissionService,
	}
}

// StartQuiz opens the caller's submission for a quiz
// @Summary Start quiz
// @Description Creates the in-progress submission, or returns the one the student already has.
// @Tags submissions
// @Produce json
// @Param id path uint true "Quiz ID"
// @Success 200 {object} models.Submission
// @Failure 403 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse
// @Router /quizzes/{id}/start [post]
func (h *SubmissionHandler) StartQuiz(c *gin.Context) {
	quizID := h.parseIDParam(c, "id")
	if quizID == 0 {
		return
	}
	user, ok := h.currentUser(c)
	if !ok {
		return
	}

	h.LogRequest(c, "Starting quiz", "quiz_id", quizID)

	submission, err := h.submissionService.Start(c.Request.Context(), quizID, user)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, submission)
}

// SubmitAnswers scores and submits an in-progress submission
// @Summary Submit answers
// @Tags submissions
// @Accept json
// @Produce json
// @Param id path uint true "Submission ID"
// @Param answers body services.SubmitAnswersRequest true "Answers keyed by question index"
// @Success 200 {object} models.Submission
// @Failure 409 {object} ErrorResponse
// @Router /submissions/{id}/submit [post]
func (h *SubmissionHandler) SubmitAnswers(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}
	user, ok := h.currentUser(c)
	if !ok {
		return
	}

	var req services.SubmitAnswersRequest
	if !h.bindJSON(c, &req) {
		return
	}

	h.LogRequest(c, "Submitting answers", "submission_id", id, "answers", len(req.Answers))

	submission, err := h.submissionService.Submit(c.Request.Context(), id, &req, user)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.metrics.RecordSubmission(string(submission.Status))
	c.JSON(http.StatusOK, submission)
}

// GetSubmission retrieves a submission
// @Summary Get submission
// @Tags submissions
// @Produce json
// @Param id path uint true "Submission ID"
// @Success 200 {object} models.Submission
// @Failure 404 {object} ErrorResponse
// @Router /submissions/{id} [get]
func (h *SubmissionHandler) GetSubmission(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}
	user, ok := h.currentUser(c)
	if !ok {
		return
	}

	submission, err := h.submissionService.GetByID(c.Request.Context(), id, user)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, submission)
}

// ListQuizSubmissions lists the submissions of a quiz for its owner
// @Summary List quiz submissions
// @Tags submissions
// @Produce json
// @Param id path uint true "Quiz ID"
// @Param status query string false "Filter by status"
// @Param limit query int false "Page size"
// @Param offset query int false "Offset"
// @Success 200 {array} models.Submission
// @Failure 400 {object} ErrorResponse
// @Router /quizzes/{id}/submissions [get]
func (h *SubmissionHandler) ListQuizSubmissions(c *gin.Context) {
	quizID := h.parseIDParam(c, "id")
	if quizID == 0 {
		return
	}
	user, ok := h.currentUser(c)
	if !ok {
		return
	}

	var filters repositories.SubmissionFilters
	filters.Limit, filters.Offset = pagination(c)
	if raw := c.Query("status"); raw != "" {
		status := models.SubmissionStatus(raw)
		if !status.IsValid() {
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Message: "Invalid status",
				Details: raw,
			})
			return
		}
		filters.Status = &status
	}

	submissions, err := h.submissionService.ListByQuiz(c.Request.Context(), quizID, filters, user)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, submissions)
}
