package handlers

import (
	"net/http"

	"github.com/SAP-F-2025/classroom-service/internal/metrics"
	"github.com/SAP-F-2025/classroom-service/internal/services"
	"github.com/SAP-F-2025/classroom-service/internal/utils"
	"github.com/gin-gonic/gin"
)

type CourseHandler struct {
	BaseHandler
	courseService services.CourseService
	quizService   services.QuizService
}

func NewCourseHandler(
	courseService services.CourseService,
	quizService services.QuizService,
	logger utils.Logger,
	m *metrics.Metrics,
) *CourseHandler {
	return &CourseHandler{
		BaseHandler:   NewBaseHandler(logger, m),
		courseService: courseService,
		quizService:   quizService,
	}
}

// CreateCourse creates a course with its weekly schedule
// @Summary Create course
// @Description Creates a course. The schedule is checked against the owner's other courses and against itself.
// @Tags courses
// @Accept json
// @Produce json
// @Param course body services.CreateCourseRequest true "Course data"
// @Success 201 {object} models.Course
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /courses [post]
func (h *CourseHandler) CreateCourse(c *gin.Context) {
	user, ok := h.currentUser(c)
	if !ok {
		return
	}

	var req services.CreateCourseRequest
	if !h.bindJSON(c, &req) {
		return
	}

	h.LogRequest(c, "Creating course", "name", req.Name, "slots", len(req.Schedule))

	course, err := h.courseService.Create(c.Request.Context(), &req, user)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, course)
}

// ListMyCourses lists courses the user owns or joined
// @Summary List my courses
// @Tags courses
// @Produce json
// @Success 200 {array} models.Course
// @Router /courses [get]
func (h *CourseHandler) ListMyCourses(c *gin.Context) {
	user, ok := h.currentUser(c)
	if !ok {
		return
	}

	courses, err := h.courseService.ListMine(c.Request.Context(), user)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, courses)
}

// GetCourse retrieves a course
// @Summary Get course
// @Tags courses
// @Produce json
// @Param id path uint true "Course ID"
// @Success 200 {object} models.Course
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /courses/{id} [get]
func (h *CourseHandler) GetCourse(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}
	user, ok := h.currentUser(c)
	if !ok {
		return
	}

	course, err := h.courseService.GetByID(c.Request.Context(), id, user)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, course)
}

// UpdateSchedule replaces the weekly schedule of a course
// @Summary Update course schedule
// @Tags courses
// @Accept json
// @Produce json
// @Param id path uint true "Course ID"
// @Param schedule body services.UpdateScheduleRequest true "Schedule"
// @Success 200 {object} models.Course
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /courses/{id}/schedule [put]
func (h *CourseHandler) UpdateSchedule(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}
	user, ok := h.currentUser(c)
	if !ok {
		return
	}

	var req services.UpdateScheduleRequest
	if !h.bindJSON(c, &req) {
		return
	}

	h.LogRequest(c, "Updating course schedule", "course_id", id, "slots", len(req.Schedule))

	course, err := h.courseService.UpdateSchedule(c.Request.Context(), id, &req, user)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, course)
}

// JoinCourse adds the calling student to a course
// @Summary Join course
// @Description Joins a course unless one of its slots overlaps a course the student already attends.
// @Tags courses
// @Produce json
// @Param id path uint true "Course ID"
// @Success 200 {object} models.Course
// @Failure 409 {object} ErrorResponse
// @Router /courses/{id}/join [post]
func (h *CourseHandler) JoinCourse(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}
	user, ok := h.currentUser(c)
	if !ok {
		return
	}

	h.LogRequest(c, "Joining course", "course_id", id)

	course, err := h.courseService.Join(c.Request.Context(), id, user)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, course)
}

// ListCourseQuizzes lists the quizzes of a course
// @Summary List course quizzes
// @Tags courses
// @Produce json
// @Param id path uint true "Course ID"
// @Success 200 {array} services.QuizResponse
// @Router /courses/{id}/quizzes [get]
func (h *CourseHandler) ListCourseQuizzes(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}
	user, ok := h.currentUser(c)
	if !ok {
		return
	}

	quizzes, err := h.quizService.ListByCourse(c.Request.Context(), id, user)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, quizzes)
}

// CheckSchedule reports whether a slot would conflict without saving it
// @Summary Check schedule slot
// @Tags courses
// @Accept json
// @Produce json
// @Param check body services.CheckScheduleRequest true "Slot and unsaved slots of the same form"
// @Success 200 {object} services.ScheduleCheckResponse
// @Failure 400 {object} ErrorResponse
// @Router /schedule/check [post]
func (h *CourseHandler) CheckSchedule(c *gin.Context) {
	user, ok := h.currentUser(c)
	if !ok {
		return
	}

	var req services.CheckScheduleRequest
	if !h.bindJSON(c, &req) {
		return
	}

	result, err := h.courseService.CheckSchedule(c.Request.Context(), &req, user)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}
