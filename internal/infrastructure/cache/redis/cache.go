// internal/infrastructure/cache/redis/cache.go
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// ErrCacheMiss ключ отсутствует в кэше
var ErrCacheMiss = errors.New("cache miss")

type Cache struct {
	client *redis.Client
	prefix string
}

// NewCache создает кэш поверх существующего клиента
func NewCache(client *redis.Client, prefix string) *Cache {
	return &Cache{
		client: client,
		prefix: prefix,
	}
}

// Set устанавливает значение в Redis с TTL
func (c *Cache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.prefix+key, data, ttl).Err()
}

// Get получает значение из Redis
func (c *Cache) Get(ctx context.Context, key string, dest interface{}) error {
	data, err := c.client.Get(ctx, c.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return ErrCacheMiss
	}
	if err != nil {
		return err
	}
	return json.Unmarshal(data, dest)
}

// Delete удаляет ключ из Redis
func (c *Cache) Delete(ctx context.Context, key string) error {
	return c.client.Del(ctx, c.prefix+key).Err()
}

// DeleteMulti удаляет несколько ключей из Redis
func (c *Cache) DeleteMulti(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}

	fullKeys := make([]string, len(keys))
	for i, key := range keys {
		fullKeys[i] = c.prefix + key
	}

	return c.client.Del(ctx, fullKeys...).Err()
}

func userKey(telegramID int64) string {
	return fmt.Sprintf("user:telegram:%d", telegramID)
}

// SetUserByTelegramID устанавливает пользователя по Telegram ID
func (c *Cache) SetUserByTelegramID(ctx context.Context, user interface{}, telegramID int64, ttl time.Duration) error {
	return c.Set(ctx, userKey(telegramID), user, ttl)
}

// GetUserByTelegramID получает пользователя по Telegram ID
func (c *Cache) GetUserByTelegramID(ctx context.Context, telegramID int64, dest interface{}) error {
	return c.Get(ctx, userKey(telegramID), dest)
}

// DeleteUserByTelegramID сбрасывает кэш пользователя
func (c *Cache) DeleteUserByTelegramID(ctx context.Context, telegramID int64) error {
	return c.Delete(ctx, userKey(telegramID))
}

// CheckRateLimit фиксированное окно: не больше limit событий за window.
// Окно начинается с первого события.
func (c *Cache) CheckRateLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, int, error) {
	fullKey := c.prefix + "ratelimit:" + key

	count, err := c.client.Incr(ctx, fullKey).Result()
	if err != nil {
		return false, 0, err
	}
	if count == 1 {
		if err := c.client.Expire(ctx, fullKey, window).Err(); err != nil {
			return false, int(count), err
		}
	}

	return int(count) <= limit, int(count), nil
}
