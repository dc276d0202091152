package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/dealer_market/services/order/internal/models"
)

func TestNotify_PersistsBeforePushing(t *testing.T) {
	rp := newTestRepo(t)
	s := newSeeder(t, rp)
	push := &fakePusher{err: errBoom}
	pub := &fakePublisher{}
	svc := &NotificationService{Repo: rp, Pusher: push, Events: pub, EventTopic: "notification_events"}
	ctx := context.Background()

	dealer := s.dealer("Dealer", "560001")
	target := dealer.ID

	n, err := svc.Notify(ctx, &models.Notification{
		Message:      "hello",
		Type:         models.NotificationOrder,
		TargetUserID: &target,
		Payload:      map[string]any{"k": "v"},
	})
	require.NoError(t, err, "push failures are not surfaced")
	assert.NotEqual(t, uuid.Nil, n.ID)
	assert.Equal(t, 1, push.count())

	require.Len(t, pub.events, 1)
	assert.Equal(t, "notification_events", pub.events[0].Topic)
	assert.Equal(t, dealer.ID.String(), pub.events[0].Key)

	unread, err := svc.ListUnread(ctx, actorOf(dealer), 0)
	require.NoError(t, err)
	require.Len(t, unread, 1)
	assert.Equal(t, "hello", unread[0].Message)
	assert.Equal(t, "v", unread[0].Payload["k"])

	_, err = svc.Notify(ctx, &models.Notification{Type: models.NotificationOrder})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestListUnread_TargetedAndBroadcast(t *testing.T) {
	rp := newTestRepo(t)
	s := newSeeder(t, rp)
	svc := &NotificationService{Repo: rp}
	ctx := context.Background()

	me := s.dealer("Me", "560001")
	other := s.dealer("Other", "560001")
	mine, theirs := me.ID, other.ID

	_, err := svc.Notify(ctx, &models.Notification{Message: "for me", Type: models.NotificationOrder, TargetUserID: &mine})
	require.NoError(t, err)
	_, err = svc.Notify(ctx, &models.Notification{Message: "for them", Type: models.NotificationOrder, TargetUserID: &theirs})
	require.NoError(t, err)
	broadcast, err := svc.Notify(ctx, &models.Notification{Message: "for all", Type: models.NotificationDealer})
	require.NoError(t, err)

	unread, err := svc.ListUnread(ctx, actorOf(me), 10)
	require.NoError(t, err)
	messages := []string{}
	for _, n := range unread {
		messages = append(messages, n.Message)
	}
	assert.ElementsMatch(t, []string{"for me", "for all"}, messages)

	admin := s.account(models.RoleAdmin, "Admin", "", true)
	_, err = svc.MarkRead(ctx, actorOf(admin), broadcast.ID)
	require.NoError(t, err)

	unread, err = svc.ListUnread(ctx, actorOf(me), 10)
	require.NoError(t, err)
	require.Len(t, unread, 1)
	assert.Equal(t, "for me", unread[0].Message)
}

func TestMarkRead_BroadcastStaffOnly(t *testing.T) {
	rp := newTestRepo(t)
	s := newSeeder(t, rp)
	svc := &NotificationService{Repo: rp}
	ctx := context.Background()

	cust, _ := s.customer()
	dealer := s.dealer("Dealer", "560001")
	admin := s.account(models.RoleAdmin, "Admin", "", true)

	n, err := svc.Notify(ctx, &models.Notification{Message: "new dealer awaiting approval", Type: models.NotificationDealer})
	require.NoError(t, err)

	for _, acc := range []models.Account{cust, dealer} {
		_, err = svc.MarkRead(ctx, actorOf(acc), n.ID)
		require.ErrorIs(t, err, ErrNotificationNotFound, string(acc.Role))
	}

	unread, err := svc.ListUnread(ctx, actorOf(admin), 10)
	require.NoError(t, err)
	require.Len(t, unread, 1)

	read, err := svc.MarkRead(ctx, actorOf(admin), n.ID)
	require.NoError(t, err)
	assert.True(t, read.IsRead)

	unread, err = svc.ListUnread(ctx, actorOf(admin), 10)
	require.NoError(t, err)
	assert.Empty(t, unread)
}

func TestMarkRead_Idempotent(t *testing.T) {
	rp := newTestRepo(t)
	s := newSeeder(t, rp)
	clock := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	svc := &NotificationService{Repo: rp, Now: func() time.Time { return clock }}
	ctx := context.Background()

	me := s.dealer("Me", "560001")
	other := s.dealer("Other", "560001")
	target := me.ID

	n, err := svc.Notify(ctx, &models.Notification{Message: "assigned", Type: models.NotificationOrder, TargetUserID: &target})
	require.NoError(t, err)

	first, err := svc.MarkRead(ctx, actorOf(me), n.ID)
	require.NoError(t, err)
	assert.True(t, first.IsRead)
	require.NotNil(t, first.ReadAt)
	assert.True(t, first.ReadAt.Equal(clock))

	clock = clock.Add(time.Hour)
	second, err := svc.MarkRead(ctx, actorOf(me), n.ID)
	require.NoError(t, err)
	assert.True(t, second.IsRead)
	require.NotNil(t, second.ReadAt)
	assert.True(t, second.ReadAt.Equal(*first.ReadAt), "second call keeps the first read time")

	_, err = svc.MarkRead(ctx, actorOf(other), n.ID)
	assert.ErrorIs(t, err, ErrNotificationNotFound)
	_, err = svc.MarkRead(ctx, actorOf(me), uuid.New())
	assert.ErrorIs(t, err, ErrNotificationNotFound)
}
