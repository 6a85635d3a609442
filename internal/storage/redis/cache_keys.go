package redis

import (
	"context"
	"fmt"
	"time"
)

const (
	RateLimitWindowTTL = 1 * time.Minute
	SearchStateTTL     = 24 * time.Hour
)

func RateLimitKey(subject string) string {
	return fmt.Sprintf("ratelimit:%s", subject)
}

// SearchStateKey holds the encoded search a chat is browsing.
func SearchStateKey(chatID int64) string {
	return fmt.Sprintf("search:chat:%d", chatID)
}

func tempKey(userID int64, key string) string {
	return fmt.Sprintf("temp:user:%d:%s", userID, key)
}

// IncrementRateLimit counts one request of subject in the current window.
func (c *Cache) IncrementRateLimit(ctx context.Context, subject string) (int64, error) {
	return c.IncrementWithExpiry(ctx, RateLimitKey(subject), RateLimitWindowTTL)
}

func (c *Cache) SetSearchState(ctx context.Context, chatID int64, query string) error {
	return c.SetString(ctx, SearchStateKey(chatID), query, SearchStateTTL)
}

// GetSearchState returns ErrCacheMiss when the chat has no search yet.
func (c *Cache) GetSearchState(ctx context.Context, chatID int64) (string, error) {
	return c.GetString(ctx, SearchStateKey(chatID))
}

func (c *Cache) SetTempData(ctx context.Context, userID int64, key string, value interface{}, ttl time.Duration) error {
	return c.Set(ctx, tempKey(userID, key), value, ttl)
}

func (c *Cache) GetTempData(ctx context.Context, userID int64, key string, dest interface{}) error {
	return c.Get(ctx, tempKey(userID, key), dest)
}

func (c *Cache) DeleteTempData(ctx context.Context, userID int64, key string) error {
	return c.Delete(ctx, tempKey(userID, key))
}
