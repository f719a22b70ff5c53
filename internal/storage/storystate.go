package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jwebster45206/narrative-engine/pkg/engine"
	"github.com/jwebster45206/narrative-engine/pkg/state"
	"github.com/redis/go-redis/v9"
)

var _ engine.Snapshotter = (*RedisStorage)(nil)

func storyStateKey(storyID, sessionID string) string {
	return "storystate:" + storyID + ":" + sessionID
}

// SaveStoryState writes a snapshot of st, refreshing its TTL.
func (r *RedisStorage) SaveStoryState(ctx context.Context, st *state.StoryState) error {
	data, err := json.Marshal(st)
	if err != nil {
		r.logger.Error("Failed to marshal story state", "story_id", st.StoryID, "session_id", st.SessionID, "error", err)
		return fmt.Errorf("failed to marshal story state: %w", err)
	}

	key := storyStateKey(st.StoryID, st.SessionID)
	if err := r.client.Set(ctx, key, data, r.snapshotTTL).Err(); err != nil {
		r.logger.Error("Failed to save story state", "key", key, "error", err)
		return fmt.Errorf("failed to save story state: %w", err)
	}
	return nil
}

// LoadStoryState reads a snapshot. It returns nil, nil when none exists.
func (r *RedisStorage) LoadStoryState(ctx context.Context, storyID, sessionID string) (*state.StoryState, error) {
	key := storyStateKey(storyID, sessionID)
	data, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			r.logger.Debug("Story state snapshot not found", "key", key)
			return nil, nil
		}
		r.logger.Error("Failed to load story state", "key", key, "error", err)
		return nil, fmt.Errorf("failed to load story state: %w", err)
	}

	var st state.StoryState
	if err := json.Unmarshal(data, &st); err != nil {
		r.logger.Error("Failed to unmarshal story state", "key", key, "error", err)
		return nil, fmt.Errorf("failed to unmarshal story state: %w", err)
	}
	return &st, nil
}

// DeleteStoryState removes a snapshot.
func (r *RedisStorage) DeleteStoryState(ctx context.Context, storyID, sessionID string) error {
	key := storyStateKey(storyID, sessionID)
	if err := r.client.Del(ctx, key).Err(); err != nil {
		r.logger.Error("Failed to delete story state", "key", key, "error", err)
		return fmt.Errorf("failed to delete story state: %w", err)
	}
	return nil
}
