package repo

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/Skotchmaster/dealer_market/services/order/internal/models"
)

func (r *GormRepo) CreateNotification(ctx context.Context, n *models.Notification) (*models.Notification, error) {
	if err := r.DB.WithContext(ctx).Create(n).Error; err != nil {
		return nil, err
	}
	return n, nil
}

// GetVisibleNotification finds a notification addressed to userID or to
// everyone.
func (r *GormRepo) GetVisibleNotification(ctx context.Context, userID, id uuid.UUID) (*models.Notification, error) {
	var n models.Notification
	if err := r.DB.WithContext(ctx).
		Where("id = ?", id).
		Where("target_user_id = ? OR target_user_id IS NULL", userID).
		First(&n).Error; err != nil {
		return nil, err
	}
	return &n, nil
}

func (r *GormRepo) ListUnreadNotifications(ctx context.Context, userID uuid.UUID, limit int) ([]models.Notification, error) {
	var list []models.Notification
	if err := r.DB.WithContext(ctx).
		Where("is_read = ?", false).
		Where("target_user_id = ? OR target_user_id IS NULL", userID).
		Order("created_at DESC").
		Order("id ASC").
		Limit(limit).
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

// MarkNotificationRead only flips unread rows, so a repeated call keeps the
// first read timestamp.
func (r *GormRepo) MarkNotificationRead(ctx context.Context, id uuid.UUID, at time.Time) error {
	return r.DB.WithContext(ctx).Model(&models.Notification{}).
		Where("id = ? AND is_read = ?", id, false).
		Updates(map[string]any{"is_read": true, "read_at": at}).Error
}
