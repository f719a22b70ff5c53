package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/jwebster45206/narrative-engine/pkg/engine"
	"github.com/redis/go-redis/v9"
)

var _ engine.EventQueue = (*RedisStorage)(nil)

func eventQueueKey(storyID, sessionID string) string {
	return "story-events:" + storyID + ":" + sessionID
}

// Enqueue appends story events to the session's queue.
func (r *RedisStorage) Enqueue(ctx context.Context, storyID, sessionID string, events ...string) error {
	if len(events) == 0 {
		return nil
	}
	key := eventQueueKey(storyID, sessionID)
	values := make([]any, len(events))
	for i, ev := range events {
		values[i] = ev
	}

	pipe := r.client.TxPipeline()
	pipe.RPush(ctx, key, values...)
	pipe.Expire(ctx, key, r.snapshotTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		r.logger.Error("Failed to enqueue story events", "key", key, "error", err)
		return fmt.Errorf("failed to enqueue story events: %w", err)
	}

	r.logger.Debug("Enqueued story events", "key", key, "count", len(events))
	return nil
}

// Dequeue removes and returns every queued event for the session.
func (r *RedisStorage) Dequeue(ctx context.Context, storyID, sessionID string) ([]string, error) {
	key := eventQueueKey(storyID, sessionID)

	pipe := r.client.TxPipeline()
	lrange := pipe.LRange(ctx, key, 0, -1)
	pipe.Del(ctx, key)
	if _, err := pipe.Exec(ctx); err != nil && !errors.Is(err, redis.Nil) {
		r.logger.Error("Failed to dequeue story events", "key", key, "error", err)
		return nil, fmt.Errorf("failed to dequeue story events: %w", err)
	}
	return lrange.Val(), nil
}

// Depth returns the number of queued events for the session.
func (r *RedisStorage) Depth(ctx context.Context, storyID, sessionID string) (int, error) {
	count, err := r.client.LLen(ctx, eventQueueKey(storyID, sessionID)).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to get queue depth: %w", err)
	}
	return int(count), nil
}
