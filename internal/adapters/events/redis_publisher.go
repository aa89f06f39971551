// Package events publishes committed progression events.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/example/questline/internal/ports/secondary"
)

const (
	// Channel is the pub/sub channel every event is published on.
	Channel = "questline:events"

	// DefaultRetention bounds how long event bodies are kept.
	DefaultRetention = 30 * 24 * time.Hour
)

// EventKey is the key holding an event body.
func EventKey(eventID string) string { return "questline:event:" + eventID }

// TimelineKey is the sorted set of a user's event IDs, scored by unix time.
func TimelineKey(userID string) string { return "questline:timeline:user:" + userID }

// RedisPublisher stores events and fans them out over Redis pub/sub.
type RedisPublisher struct {
	client    *redis.Client
	retention time.Duration
}

// NewRedisPublisher creates a publisher on an existing client.
func NewRedisPublisher(client *redis.Client) *RedisPublisher {
	return &RedisPublisher{client: client, retention: DefaultRetention}
}

// Connect opens a client and verifies the server is reachable.
func Connect(ctx context.Context, addr string) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", addr, err)
	}
	return client, nil
}

// Publish writes the event body, indexes it on the user's timeline and
// announces it, in one round trip.
func (p *RedisPublisher) Publish(ctx context.Context, event secondary.ProgressEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to encode event: %w", err)
	}

	pipe := p.client.TxPipeline()
	pipe.Set(ctx, EventKey(event.ID), data, p.retention)
	pipe.ZAdd(ctx, TimelineKey(event.UserID), redis.Z{Score: float64(event.OccurredAt.Unix()), Member: event.ID})
	pipe.Publish(ctx, Channel, data)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to publish event %s: %w", event.ID, err)
	}
	return nil
}

// Timeline returns the user's most recent events, newest first.
func (p *RedisPublisher) Timeline(ctx context.Context, userID string, limit int64) ([]secondary.ProgressEvent, error) {
	ids, err := p.client.ZRevRange(ctx, TimelineKey(userID), 0, limit-1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read timeline: %w", err)
	}
	if len(ids) == 0 {
		return nil, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = EventKey(id)
	}
	bodies, err := p.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read events: %w", err)
	}

	events := make([]secondary.ProgressEvent, 0, len(bodies))
	for _, body := range bodies {
		s, ok := body.(string)
		if !ok {
			continue // expired
		}
		var ev secondary.ProgressEvent
		if err := json.Unmarshal([]byte(s), &ev); err != nil {
			return nil, fmt.Errorf("failed to decode event: %w", err)
		}
		events = append(events, ev)
	}
	return events, nil
}

var _ secondary.EventPublisher = (*RedisPublisher)(nil)
