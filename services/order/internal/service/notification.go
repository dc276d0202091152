package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Skotchmaster/dealer_market/pkg/logging"
	"github.com/Skotchmaster/dealer_market/services/order/internal/models"
	"github.com/Skotchmaster/dealer_market/services/order/internal/repo"
)

const maxUnread = 100

type Notifier interface {
	Notify(ctx context.Context, n *models.Notification) (*models.Notification, error)
}

// Pusher hands a stored notification to whoever is connected right now.
type Pusher interface {
	Push(ctx context.Context, n *models.Notification) error
}

type NotificationService struct {
	Repo       *repo.GormRepo
	Pusher     Pusher
	Events     EventPublisher
	EventTopic string
	Now        func() time.Time
}

// Notify stores the notification and then pushes it. The stored record is
// the source of truth: offline recipients read it later, so push and event
// failures are only logged.
func (svc *NotificationService) Notify(ctx context.Context, n *models.Notification) (*models.Notification, error) {
	if n.Message == "" {
		return nil, fmt.Errorf("%w: message required", ErrValidation)
	}
	if n.Type == "" {
		return nil, fmt.Errorf("%w: type required", ErrValidation)
	}
	n.IsRead = false
	n.ReadAt = nil

	stored, err := svc.Repo.CreateNotification(ctx, n)
	if err != nil {
		return nil, err
	}

	l := logging.FromContext(ctx)
	if svc.Pusher != nil {
		if err := svc.Pusher.Push(ctx, stored); err != nil {
			l.Warn("push_notification_failed", "notification_id", stored.ID, "error", err)
		}
	}

	key := "broadcast"
	if stored.TargetUserID != nil {
		key = stored.TargetUserID.String()
	}
	publish(ctx, svc.Events, svc.EventTopic, key, NotificationEvent{
		Type:           EventNotificationCreated,
		NotificationID: stored.ID,
		Kind:           stored.Type,
		TargetUserID:   stored.TargetUserID,
		Message:        stored.Message,
		At:             stored.CreatedAt,
	})

	l.Info("notification_created", "notification_id", stored.ID, "type", stored.Type, "broadcast", stored.TargetUserID == nil)
	return stored, nil
}

func (svc *NotificationService) ListUnread(ctx context.Context, actor Actor, limit int) ([]models.Notification, error) {
	if limit <= 0 || limit > maxUnread {
		limit = maxUnread
	}
	return svc.Repo.ListUnreadNotifications(ctx, actor.ID, limit)
}

// MarkRead is idempotent: marking an already read notification succeeds and
// keeps the original read time. A broadcast has one read flag shared by every
// recipient, so only staff may clear it.
func (svc *NotificationService) MarkRead(ctx context.Context, actor Actor, id uuid.UUID) (*models.Notification, error) {
	n, err := svc.Repo.GetVisibleNotification(ctx, actor.ID, id)
	if err != nil {
		return nil, notFoundAs(err, ErrNotificationNotFound)
	}
	if n.TargetUserID == nil && !actor.Role.Staff() {
		return nil, ErrNotificationNotFound
	}
	if n.IsRead {
		return n, nil
	}

	now := time.Now().UTC()
	if svc.Now != nil {
		now = svc.Now().UTC()
	}
	if err := svc.Repo.MarkNotificationRead(ctx, id, now); err != nil {
		return nil, err
	}
	return svc.Repo.GetVisibleNotification(ctx, actor.ID, id)
}
