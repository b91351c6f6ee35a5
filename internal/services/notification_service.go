package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/SAP-F-2025/classroom-service/internal/changefeed"
	"github.com/SAP-F-2025/classroom-service/internal/events"
	"github.com/SAP-F-2025/classroom-service/internal/models"
	"github.com/SAP-F-2025/classroom-service/internal/repositories"
	"gorm.io/datatypes"
)

// CollectionNotifications is the change stream of notification records,
// keyed by recipient.
const CollectionNotifications = "notifications"

type notificationService struct {
	repo           repositories.Repository
	feed           ChangeFeed
	eventPublisher events.EventPublisher
	logger         *slog.Logger
}

func NewNotificationService(repo repositories.Repository, feed ChangeFeed, eventPublisher events.EventPublisher, logger *slog.Logger) NotificationService {
	return &notificationService{
		repo:           repo,
		feed:           feed,
		eventPublisher: eventPublisher,
		logger:         logger,
	}
}

// Notify stores one record per recipient, pushes each onto the live feed
// and publishes the optional domain event once.
func (s *notificationService) Notify(ctx context.Context, req *NotifyRequest) {
	for _, recipient := range req.Recipients {
		notification := &models.Notification{
			UserID:   recipient,
			Title:    req.Title,
			Kind:     req.Kind,
			Detail:   req.Detail,
			Metadata: datatypes.JSONMap(req.Metadata),
		}
		if err := s.repo.Notification().Create(ctx, notification); err != nil {
			s.logger.Error("Failed to store notification",
				"user_id", recipient,
				"kind", req.Kind,
				"error", err)
			continue
		}

		if err := s.feed.Publish(ctx, CollectionNotifications, changefeed.OperationCreate, notification.ID, recipient, notification); err != nil {
			s.logger.Warn("Failed to publish notification change",
				"notification_id", notification.ID,
				"error", err)
		}
	}

	if req.Event == nil || s.eventPublisher == nil {
		return
	}
	if err := s.eventPublisher.PublishNotificationEvent(ctx, req.Event); err != nil {
		s.logger.Error("Failed to publish notification event",
			"event_id", req.Event.ID,
			"event_type", req.Event.Type,
			"error", err)
	}
}

func (s *notificationService) List(ctx context.Context, user *models.User, filters repositories.NotificationFilters) ([]*models.Notification, error) {
	notifications, err := s.repo.Notification().ListByUser(ctx, user.ID, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	return notifications, nil
}

func (s *notificationService) MarkRead(ctx context.Context, id uint, user *models.User) error {
	if err := s.repo.Notification().MarkRead(ctx, id, user.ID, now()); err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrNotificationNotFound
		}
		return fmt.Errorf("failed to mark notification read: %w", err)
	}
	return nil
}

// Stream follows the user's new notifications until ctx is done.
func (s *notificationService) Stream(ctx context.Context, user *models.User) (<-chan changefeed.Change, error) {
	s.logger.Info("Opening notification stream", "user_id", user.ID)
	return s.feed.Subscribe(ctx, CollectionNotifications, changefeed.ForOwner(user.ID))
}
