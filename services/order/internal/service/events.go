package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/Skotchmaster/dealer_market/pkg/logging"
	"github.com/Skotchmaster/dealer_market/services/order/internal/models"
)

const (
	EventOrderCreated        = "order_created"
	EventOrderStatusChanged  = "order_status_changed"
	EventOrderPaymentUpdated = "order_payment_updated"
	EventOrderAssigned       = "order_assigned"
	EventOrderUnassigned     = "order_unassigned"
	EventNotificationCreated = "notification_created"
)

type EventPublisher interface {
	PublishEvent(ctx context.Context, topic, key string, event any) error
}

// OrderIndexer keeps a searchable copy of orders outside the database.
type OrderIndexer interface {
	IndexOrder(ctx context.Context, order *models.Order) error
	SearchOrderIDs(ctx context.Context, query string, limit int) ([]uuid.UUID, error)
}

// Actor is the authenticated caller of an operation.
type Actor struct {
	ID   uuid.UUID
	Role models.Role
}

type OrderEvent struct {
	Type          string             `json:"type"`
	OrderID       uuid.UUID          `json:"order_id"`
	OrderNumber   string             `json:"order_number"`
	CustomerID    uuid.UUID          `json:"customer_id"`
	Status        models.OrderStatus `json:"status"`
	PaymentStatus bool               `json:"payment_status"`
	DealerID      *uuid.UUID         `json:"dealer_id,omitempty"`
	ActorID       uuid.UUID          `json:"actor_id"`
	At            time.Time          `json:"at"`
}

type NotificationEvent struct {
	Type           string                  `json:"type"`
	NotificationID uuid.UUID               `json:"notification_id"`
	Kind           models.NotificationType `json:"kind"`
	TargetUserID   *uuid.UUID              `json:"target_user_id,omitempty"`
	Message        string                  `json:"message"`
	At             time.Time               `json:"at"`
}

// publish never fails the caller; the database write already happened.
func publish(ctx context.Context, pub EventPublisher, topic, key string, event any) {
	if pub == nil || topic == "" {
		return
	}
	if err := pub.PublishEvent(ctx, topic, key, event); err != nil {
		logging.FromContext(ctx).Warn("publish_event_failed", "topic", topic, "key", key, "error", err)
	}
}
