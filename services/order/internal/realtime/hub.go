package realtime

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Skotchmaster/dealer_market/services/order/internal/models"
)

// Message is what a connected client receives for a notification.
type Message struct {
	ID           uuid.UUID               `json:"id"`
	Message      string                  `json:"message"`
	Type         models.NotificationType `json:"type"`
	TargetUserID *uuid.UUID              `json:"target_user_id,omitempty"`
	OrderID      *uuid.UUID              `json:"order_id,omitempty"`
	ProductID    *uuid.UUID              `json:"product_id,omitempty"`
	DealerID     *uuid.UUID              `json:"dealer_id,omitempty"`
	Payload      map[string]any          `json:"payload,omitempty"`
	CreatedAt    time.Time               `json:"created_at"`
}

func MessageFrom(n *models.Notification) Message {
	return Message{
		ID:           n.ID,
		Message:      n.Message,
		Type:         n.Type,
		TargetUserID: n.TargetUserID,
		OrderID:      n.OrderID,
		ProductID:    n.ProductID,
		DealerID:     n.DealerID,
		Payload:      n.Payload,
		CreatedAt:    n.CreatedAt,
	}
}

// Sink is one live connection. Send must not block; it reports false when
// the message was dropped.
type Sink interface {
	Send(m Message) bool
}

// Hub maps user ids to their live connections. A user may be connected
// from several tabs or devices at once.
type Hub struct {
	mu    sync.RWMutex
	sinks map[uuid.UUID]map[Sink]struct{}
}

func NewHub() *Hub {
	return &Hub{sinks: make(map[uuid.UUID]map[Sink]struct{})}
}

// Register adds s under userID and returns the func that removes it.
func (h *Hub) Register(userID uuid.UUID, s Sink) func() {
	h.mu.Lock()
	set, ok := h.sinks[userID]
	if !ok {
		set = make(map[Sink]struct{})
		h.sinks[userID] = set
	}
	set[s] = struct{}{}
	h.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			if set, ok := h.sinks[userID]; ok {
				delete(set, s)
				if len(set) == 0 {
					delete(h.sinks, userID)
				}
			}
		})
	}
}

// Deliver sends m to its target's connections, or to every connection when
// it has no target. It returns how many connections accepted it.
func (h *Hub) Deliver(m Message) int {
	h.mu.RLock()
	var targets []Sink
	if m.TargetUserID != nil {
		for s := range h.sinks[*m.TargetUserID] {
			targets = append(targets, s)
		}
	} else {
		for _, set := range h.sinks {
			for s := range set {
				targets = append(targets, s)
			}
		}
	}
	h.mu.RUnlock()

	delivered := 0
	for _, s := range targets {
		if s.Send(m) {
			delivered++
		}
	}
	return delivered
}

// Push delivers to connections on this instance only.
func (h *Hub) Push(_ context.Context, n *models.Notification) error {
	h.Deliver(MessageFrom(n))
	return nil
}

func (h *Hub) Connections(userID uuid.UUID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sinks[userID])
}
