package handlers

import (
	"fmt"
	"net/http"

	"github.com/SAP-F-2025/classroom-service/internal/metrics"
	"github.com/SAP-F-2025/classroom-service/internal/services"
	"github.com/SAP-F-2025/classroom-service/internal/utils"
	"github.com/gin-gonic/gin"
)

type GradingHandler struct {
	BaseHandler
	gradingService   services.GradingService
	gradebookService services.GradebookService
}

func NewGradingHandler(
	gradingService services.GradingService,
	gradebookService services.GradebookService,
	logger utils.Logger,
	m *metrics.Metrics,
) *GradingHandler {
	return &GradingHandler{
		BaseHandler:      NewBaseHandler(logger, m),
		gradingService:   gradingService,
		gradebookService: gradebookService,
	}
}

// SaveGrades stores teacher overrides and finalizes the submission
// @Summary Save grades
// @Description Applies per-question overrides. The request must carry the version the grader loaded.
// @Tags grading
// @Accept json
// @Produce json
// @Param id path uint true "Submission ID"
// @Param grades body services.SaveGradesRequest true "Version and overrides keyed by question index"
// @Success 200 {object} models.Submission
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /submissions/{id}/grades [put]
func (h *GradingHandler) SaveGrades(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}
	user, ok := h.currentUser(c)
	if !ok {
		return
	}

	var req services.SaveGradesRequest
	if !h.bindJSON(c, &req) {
		return
	}

	h.LogRequest(c, "Saving grades", "submission_id", id, "version", req.Version, "overrides", len(req.Overrides))

	submission, err := h.gradingService.SaveGrades(c.Request.Context(), id, &req, user)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, submission)
}

// GetQuizStats returns roster statistics of a quiz
// @Summary Quiz statistics
// @Tags grading
// @Produce json
// @Param id path uint true "Quiz ID"
// @Success 200 {object} services.QuizStatsResponse
// @Failure 403 {object} ErrorResponse
// @Router /quizzes/{id}/stats [get]
func (h *GradingHandler) GetQuizStats(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}
	user, ok := h.currentUser(c)
	if !ok {
		return
	}

	stats, err := h.gradingService.Stats(c.Request.Context(), id, user)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}

// ExportGradebook downloads the quiz gradebook as a spreadsheet
// @Summary Export gradebook
// @Tags grading
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param id path uint true "Quiz ID"
// @Success 200 {file} file
// @Failure 403 {object} ErrorResponse
// @Router /quizzes/{id}/gradebook [get]
func (h *GradingHandler) ExportGradebook(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}
	user, ok := h.currentUser(c)
	if !ok {
		return
	}

	h.LogRequest(c, "Exporting gradebook", "quiz_id", id)

	file, err := h.gradebookService.Export(c.Request.Context(), id, user)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.FileName))
	c.Data(http.StatusOK, file.ContentType, file.Data)
}
