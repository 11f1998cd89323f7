package subscription

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const listCacheTTL = time.Hour

// Cache keeps per-user subscription lists in Redis so the list screen does
// not hit Postgres on every pull-to-refresh. It also owns the reminder
// dedup keys the scheduler sets, since an edited subscription must become
// eligible for a fresh reminder.
type Cache struct {
	client *redis.Client
	logger *slog.Logger
}

// NewCache creates a cache wrapper. A nil client disables caching.
func NewCache(client *redis.Client, logger *slog.Logger) *Cache {
	return &Cache{client: client, logger: logger}
}

// GetList returns the cached subscription list for a user, or ok=false on
// a miss or any Redis failure.
func (c *Cache) GetList(ctx context.Context, userID string) ([]Subscription, bool) {
	if c == nil || c.client == nil {
		return nil, false
	}

	raw, err := c.client.Get(ctx, listKey(userID)).Result()
	if err != nil {
		if err != redis.Nil {
			c.logger.Warn("subscription cache lookup failed", "error", err)
		}
		return nil, false
	}

	var subs []Subscription
	if err := json.Unmarshal([]byte(raw), &subs); err != nil {
		c.logger.Warn("failed to decode cached subscriptions", "error", err)
		return nil, false
	}
	return subs, true
}

// SetList stores the subscription list for a user. Failures are logged and
// swallowed: the cache is an optimization, never a source of truth.
func (c *Cache) SetList(ctx context.Context, userID string, subs []Subscription) {
	if c == nil || c.client == nil {
		return
	}

	payload, err := json.Marshal(subs)
	if err != nil {
		c.logger.Warn("failed to encode subscriptions for caching", "error", err)
		return
	}
	if err := c.client.Set(ctx, listKey(userID), payload, listCacheTTL).Err(); err != nil {
		c.logger.Warn("failed to cache subscriptions", "error", err)
	}
}

// InvalidateList drops the cached list for a user after any mutation.
func (c *Cache) InvalidateList(ctx context.Context, userID string) {
	if c == nil || c.client == nil {
		return
	}
	if err := c.client.Del(ctx, listKey(userID)).Err(); err != nil {
		c.logger.Warn("failed to invalidate subscription cache", "error", err)
	}
}

// ClearReminderSent re-arms the reminder for a subscription after its
// schedule changed.
func (c *Cache) ClearReminderSent(ctx context.Context, subscriptionID string) {
	if c == nil || c.client == nil {
		return
	}
	if err := c.client.Del(ctx, ReminderSentKey(subscriptionID)).Err(); err != nil {
		c.logger.Warn("failed to clear reminder dedup key", "subscription_id", subscriptionID, "error", err)
	}
}

// ReminderSentKey is the dedup key the scheduler sets once a reminder for
// the subscription has been published.
func ReminderSentKey(subscriptionID string) string {
	return fmt.Sprintf("notification_sent:subscription:%s", subscriptionID)
}

func listKey(userID string) string {
	return fmt.Sprintf("subscriptions:user:%s", userID)
}
