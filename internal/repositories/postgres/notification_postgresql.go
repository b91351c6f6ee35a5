package postgres

import (
	"context"
	"time"

	"github.com/SAP-F-2025/classroom-service/internal/models"
	"github.com/SAP-F-2025/classroom-service/internal/repositories"
	"gorm.io/gorm"
)

type NotificationPostgreSQL struct {
	db *gorm.DB
}

func NewNotificationPostgreSQL(db *gorm.DB) repositories.NotificationRepository {
	return &NotificationPostgreSQL{db: db}
}

func (n NotificationPostgreSQL) Create(ctx context.Context, notification *models.Notification) error {
	return n.db.WithContext(ctx).Create(notification).Error
}

func (n NotificationPostgreSQL) ListByUser(ctx context.Context, userID string, filters repositories.NotificationFilters) ([]*models.Notification, error) {
	var notifications []*models.Notification

	query := n.db.WithContext(ctx).Where("user_id = ?", userID)
	if filters.UnreadOnly {
		query = query.Where("read_at IS NULL")
	}
	query = applyPagination(query.Order("created_at DESC"), filters.Limit, filters.Offset)

	if err := query.Find(&notifications).Error; err != nil {
		return nil, err
	}
	return notifications, nil
}

func (n NotificationPostgreSQL) MarkRead(ctx context.Context, id uint, userID string, readAt time.Time) error {
	result := n.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("id = ? AND user_id = ?", id, userID).
		Update("read_at", readAt)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return repositories.ErrNotFound
	}
	return nil
}
