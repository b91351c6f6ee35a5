package handlers

import (
	"io"
	"net/http"
	"time"

	"github.com/SAP-F-2025/classroom-service/internal/metrics"
	"github.com/SAP-F-2025/classroom-service/internal/repositories"
	"github.com/SAP-F-2025/classroom-service/internal/services"
	"github.com/SAP-F-2025/classroom-service/internal/utils"
	"github.com/gin-gonic/gin"
)

const streamKeepAlive = 25 * time.Second

type NotificationHandler struct {
	BaseHandler
	notificationService services.NotificationService
}

func NewNotificationHandler(notificationService services.NotificationService, logger utils.Logger, m *metrics.Metrics) *NotificationHandler {
	return &NotificationHandler{
		BaseHandler:         NewBaseHandler(logger, m),
		notificationService: notificationService,
	}
}

// ListNotifications lists the caller's notifications, newest first
// @Summary List notifications
// @Tags notifications
// @Produce json
// @Param unread query bool false "Only unread"
// @Param limit query int false "Page size"
// @Param offset query int false "Offset"
// @Success 200 {array} models.Notification
// @Router /notifications [get]
func (h *NotificationHandler) ListNotifications(c *gin.Context) {
	user, ok := h.currentUser(c)
	if !ok {
		return
	}

	filters := repositories.NotificationFilters{UnreadOnly: c.Query("unread") == "true"}
	filters.Limit, filters.Offset = pagination(c)

	notifications, err := h.notificationService.List(c.Request.Context(), user, filters)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, notifications)
}

// MarkRead marks one notification as read
// @Summary Mark notification read
// @Tags notifications
// @Param id path uint true "Notification ID"
// @Success 204
// @Failure 404 {object} ErrorResponse
// @Router /notifications/{id}/read [post]
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}
	user, ok := h.currentUser(c)
	if !ok {
		return
	}

	if err := h.notificationService.MarkRead(c.Request.Context(), id, user); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// StreamNotifications pushes new notifications as server-sent events
// @Summary Stream notifications
// @Description Emits a "notification" event for every notification created for the caller after the stream opened.
// @Tags notifications
// @Produce text/event-stream
// @Router /notifications/stream [get]
func (h *NotificationHandler) StreamNotifications(c *gin.Context) {
	user, ok := h.currentUser(c)
	if !ok {
		return
	}

	changes, err := h.notificationService.Stream(c.Request.Context(), user)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.LogRequest(c, "Notification stream opened")

	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	ticker := time.NewTicker(streamKeepAlive)
	defer ticker.Stop()

	c.Stream(func(w io.Writer) bool {
		select {
		case change, open := <-changes:
			if !open {
				return false
			}
			c.SSEvent("notification", change.Document)
			return true
		case <-ticker.C:
			c.SSEvent("ping", time.Now().UTC().Format(time.RFC3339))
			return true
		}
	})

	h.LogRequest(c, "Notification stream closed")
}
