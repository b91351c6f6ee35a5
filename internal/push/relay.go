package push

import (
	"errors"
	"net/http"

	"github.com/SAP-F-2025/classroom-service/internal/metrics"
	"github.com/SAP-F-2025/classroom-service/internal/utils"
	"github.com/gin-gonic/gin"
)

type SaveTokenRequest struct {
	UserID string `json:"userId" binding:"required"`
	Token  string `json:"token" binding:"required"`
}

type SendNotificationRequest struct {
	UserID string `json:"userId" binding:"required"`
	Title  string `json:"title" binding:"required"`
	Body   string `json:"body"`
}

// Relay serves the two relay endpoints. Requests are unauthenticated and
// a failed delivery is reported, never retried.
type Relay struct {
	store   *TokenStore
	sender  Sender
	limiter *RateLimiter
	logger  utils.Logger
	metrics *metrics.Metrics
}

func NewRelay(store *TokenStore, sender Sender, limiter *RateLimiter, logger utils.Logger, m *metrics.Metrics) *Relay {
	return &Relay{
		store:   store,
		sender:  sender,
		limiter: limiter,
		logger:  logger,
		metrics: m,
	}
}

func (r *Relay) SetupRoutes(router *gin.Engine) {
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy", "service": "push-relay"})
	})
	if r.metrics != nil {
		router.GET("/metrics", gin.WrapH(r.metrics.Handler()))
	}

	router.POST("/save-token", r.SaveToken)
	send := router.Group("/send-notification")
	if r.limiter != nil {
		send.Use(r.limiter.Middleware())
	}
	send.POST("", r.SendNotification)
}

func (r *Relay) SaveToken(c *gin.Context) {
	var req SaveTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "userId and token are required"})
		return
	}

	r.store.Save(req.UserID, req.Token)
	r.logger.Info("Saved push token", "user_id", req.UserID, "tokens", r.store.Len())

	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (r *Relay) SendNotification(c *gin.Context) {
	var req SendNotificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "userId and title are required"})
		return
	}

	token, ok := r.store.Get(req.UserID)
	if !ok {
		r.metrics.RecordPush("no_token")
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "no token registered for user"})
		return
	}

	err := r.sender.Send(c.Request.Context(), token, Message{Title: req.Title, Body: req.Body})
	if err != nil {
		r.metrics.RecordPush("failed")
		code := "unknown"
		var providerErr *ProviderError
		if errors.As(err, &providerErr) {
			code = providerErr.Code
		}
		r.logger.LogError(err, "Push delivery failed", "user_id", req.UserID, "provider_code", code)
		c.JSON(http.StatusBadGateway, gin.H{"success": false, "error": "push delivery failed"})
		return
	}

	r.metrics.RecordPush("sent")
	r.logger.Info("Push notification sent", "user_id", req.UserID)
	c.JSON(http.StatusOK, gin.H{"success": true})
}
