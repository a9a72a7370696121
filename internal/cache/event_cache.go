// Package cache provides a Redis read-through cache for event listings. The
// catalog mutates at most a few times a day, so listing queries are served
// from cache between ingestion runs.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/familyscout/familyscout/internal/ingestion"
	"github.com/familyscout/familyscout/internal/models"
)

const versionKey = "events:version"

// EventCache wraps an EventRepository's ListAll with a versioned Redis cache.
// Invalidation bumps the version counter, orphaning all cached listings at
// once; the orphans expire with their TTL.
type EventCache struct {
	client *redis.Client
	repo   ingestion.EventRepository
	ttl    time.Duration
	logger *slog.Logger
}

// New creates an event cache over repo backed by the given Redis client.
func New(client *redis.Client, repo ingestion.EventRepository, ttl time.Duration, logger *slog.Logger) *EventCache {
	return &EventCache{client: client, repo: repo, ttl: ttl, logger: logger}
}

// ListAll serves the filter from cache when possible, falling back to the
// repository on a miss or any Redis failure. Cache trouble never fails a
// query.
func (c *EventCache) ListAll(ctx context.Context, filter models.EventFilter) ([]models.Event, error) {
	key, err := c.cacheKey(ctx, filter)
	if err == nil {
		cached, getErr := c.client.Get(ctx, key).Bytes()
		if getErr == nil {
			var events []models.Event
			if json.Unmarshal(cached, &events) == nil {
				return events, nil
			}
		} else if getErr != redis.Nil {
			c.logger.Warn("event cache read failed", "error", getErr)
		}
	}

	events, err := c.repo.ListAll(ctx, filter)
	if err != nil {
		return nil, err
	}

	if key, keyErr := c.cacheKey(ctx, filter); keyErr == nil {
		if data, marshalErr := json.Marshal(events); marshalErr == nil {
			if setErr := c.client.Set(ctx, key, data, c.ttl).Err(); setErr != nil {
				c.logger.Warn("event cache write failed", "error", setErr)
			}
		}
	}

	return events, nil
}

// Invalidate bumps the cache version, making every cached listing stale.
// The orchestrator calls this after a run that changed the catalog.
func (c *EventCache) Invalidate(ctx context.Context) error {
	if err := c.client.Incr(ctx, versionKey).Err(); err != nil {
		return fmt.Errorf("bump cache version: %w", err)
	}
	return nil
}

func (c *EventCache) cacheKey(ctx context.Context, filter models.EventFilter) (string, error) {
	version, err := c.client.Get(ctx, versionKey).Int64()
	if err != nil && err != redis.Nil {
		return "", err
	}

	data, err := json.Marshal(filter)
	if err != nil {
		return "", err
	}

	sum := sha256.Sum256(data)
	return fmt.Sprintf("events:v%d:%s", version, hex.EncodeToString(sum[:8])), nil
}
