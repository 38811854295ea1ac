// internal/infrastructure/cache/redis/session_store.go
package redis

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
)

// DialogStore хранит текущий шаг диалога чата (например, ожидание суммы)
type DialogStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewDialogStore создает хранилище шагов диалога
func NewDialogStore(client *redis.Client, prefix string, ttl time.Duration) *DialogStore {
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	return &DialogStore{
		client: client,
		prefix: prefix + "dialog:",
		ttl:    ttl,
	}
}

func (s *DialogStore) key(chatID int64) string {
	return s.prefix + strconv.FormatInt(chatID, 10)
}

// SetStep запоминает шаг диалога
func (s *DialogStore) SetStep(ctx context.Context, chatID int64, step string) error {
	return s.client.Set(ctx, s.key(chatID), step, s.ttl).Err()
}

// GetStep возвращает шаг диалога или пустую строку
func (s *DialogStore) GetStep(ctx context.Context, chatID int64) (string, error) {
	step, err := s.client.Get(ctx, s.key(chatID)).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	return step, err
}

// ClearStep сбрасывает шаг диалога
func (s *DialogStore) ClearStep(ctx context.Context, chatID int64) error {
	return s.client.Del(ctx, s.key(chatID)).Err()
}
