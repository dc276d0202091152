package realtime

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-redis/redis/v8"

	"github.com/Skotchmaster/dealer_market/pkg/logging"
	"github.com/Skotchmaster/dealer_market/services/order/internal/models"
)

const DefaultChannel = "dealer_market:notifications"

// RedisRelay fans notifications out across service instances. Push publishes
// to a redis channel; Run delivers everything on that channel to the local
// hub, including messages this instance published itself.
type RedisRelay struct {
	rdb     *redis.Client
	channel string
	hub     *Hub
}

func NewRedisRelay(ctx context.Context, redisURL, channel string, hub *Hub) (*RedisRelay, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	rdb := redis.NewClient(opt)
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	if channel == "" {
		channel = DefaultChannel
	}
	return &RedisRelay{rdb: rdb, channel: channel, hub: hub}, nil
}

func (r *RedisRelay) Push(ctx context.Context, n *models.Notification) error {
	data, err := json.Marshal(MessageFrom(n))
	if err != nil {
		return fmt.Errorf("failed to marshal notification: %w", err)
	}
	return r.rdb.Publish(ctx, r.channel, data).Err()
}

// Run blocks until ctx is done or the subscription breaks.
func (r *RedisRelay) Run(ctx context.Context) error {
	sub := r.rdb.Subscribe(ctx, r.channel)
	defer sub.Close()

	if _, err := sub.Receive(ctx); err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", r.channel, err)
	}

	l := logging.FromContext(ctx)
	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			var m Message
			if err := json.Unmarshal([]byte(msg.Payload), &m); err != nil {
				l.Warn("relay_decode_failed", "channel", r.channel, "error", err)
				continue
			}
			n := r.hub.Deliver(m)
			l.Debug("relay_delivered", "notification_id", m.ID, "connections", n)
		}
	}
}

func (r *RedisRelay) Close() error {
	return r.rdb.Close()
}
