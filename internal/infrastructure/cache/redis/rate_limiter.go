// internal/infrastructure/cache/redis/rate_limiter.go
package redis

import (
	"context"
	"strconv"
	"time"
)

// DepositRateLimiter ограничивает число новых депозитов на пользователя
type DepositRateLimiter struct {
	cache  *Cache
	limit  int
	window time.Duration
}

// NewDepositRateLimiter создает ограничитель; limit <= 0 отключает проверку
func NewDepositRateLimiter(cache *Cache, limit int, window time.Duration) *DepositRateLimiter {
	return &DepositRateLimiter{cache: cache, limit: limit, window: window}
}

// Allow true если пользователь еще не исчерпал лимит
func (l *DepositRateLimiter) Allow(ctx context.Context, userID int64) (bool, error) {
	if l.limit <= 0 {
		return true, nil
	}
	allowed, _, err := l.cache.CheckRateLimit(ctx, "deposit:"+strconv.FormatInt(userID, 10), l.limit, l.window)
	return allowed, err
}
