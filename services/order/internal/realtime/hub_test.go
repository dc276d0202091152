package realtime

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/dealer_market/services/order/internal/models"
)

type recordingSink struct {
	mu   sync.Mutex
	got  []Message
	full bool
}

func (s *recordingSink) Send(m Message) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.full {
		return false
	}
	s.got = append(s.got, m)
	return true
}

func (s *recordingSink) messages() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Message(nil), s.got...)
}

func TestHub_TargetedDelivery(t *testing.T) {
	hub := NewHub()
	alice, bob := uuid.New(), uuid.New()

	phone, laptop, bobs := &recordingSink{}, &recordingSink{}, &recordingSink{}
	hub.Register(alice, phone)
	hub.Register(alice, laptop)
	hub.Register(bob, bobs)

	n := hub.Deliver(Message{ID: uuid.New(), Message: "for alice", TargetUserID: &alice})
	assert.Equal(t, 2, n)
	assert.Len(t, phone.messages(), 1)
	assert.Len(t, laptop.messages(), 1)
	assert.Empty(t, bobs.messages())
}

func TestHub_BroadcastReachesEveryone(t *testing.T) {
	hub := NewHub()
	sinks := []*recordingSink{{}, {}, {}}
	for _, s := range sinks {
		hub.Register(uuid.New(), s)
	}

	n := hub.Deliver(Message{ID: uuid.New(), Message: "new dealer"})
	assert.Equal(t, 3, n)
	for _, s := range sinks {
		require.Len(t, s.messages(), 1)
		assert.Equal(t, "new dealer", s.messages()[0].Message)
	}
}

func TestHub_OfflineTargetIsNotAnError(t *testing.T) {
	hub := NewHub()
	target := uuid.New()

	assert.Zero(t, hub.Deliver(Message{ID: uuid.New(), TargetUserID: &target}))
	require.NoError(t, hub.Push(context.Background(), &models.Notification{ID: uuid.New(), TargetUserID: &target}))
}

func TestHub_UnregisterAndDroppedSends(t *testing.T) {
	hub := NewHub()
	user := uuid.New()

	busy := &recordingSink{full: true}
	ok := &recordingSink{}
	unregisterBusy := hub.Register(user, busy)
	unregisterOK := hub.Register(user, ok)
	assert.Equal(t, 2, hub.Connections(user))

	assert.Equal(t, 1, hub.Deliver(Message{TargetUserID: &user}))

	unregisterBusy()
	unregisterBusy()
	assert.Equal(t, 1, hub.Connections(user))
	unregisterOK()
	assert.Zero(t, hub.Connections(user))
	assert.Zero(t, hub.Deliver(Message{}))
}

func TestMessageFrom(t *testing.T) {
	order, target := uuid.New(), uuid.New()
	n := &models.Notification{
		ID:           uuid.New(),
		Message:      "Order assigned",
		Type:         models.NotificationOrder,
		TargetUserID: &target,
		OrderID:      &order,
		Payload:      map[string]any{"order_number": "ORD-1"},
	}

	m := MessageFrom(n)
	assert.Equal(t, n.ID, m.ID)
	assert.Equal(t, models.NotificationOrder, m.Type)
	assert.Equal(t, &target, m.TargetUserID)
	assert.Equal(t, &order, m.OrderID)
	assert.Equal(t, "ORD-1", m.Payload["order_number"])
}
