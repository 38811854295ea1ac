// internal/infrastructure/cache/redis/redis_service.go
package redis

import (
	"context"
	"fmt"
	"sync"
	"time"

	"storefront-bot/internal/infrastructure/config"
	"storefront-bot/pkg/logger"

	"github.com/go-redis/redis/v8"
)

// RedisService клиент Redis для кэша пользователей, шагов диалога и лимита депозитов.
// Бот работает и без Redis, поэтому ошибка Start не фатальна для приложения.
type RedisService struct {
	cfg  config.RedisConfig
	addr string
	log  *logger.Logger

	mu     sync.RWMutex
	client *redis.Client
}

// NewRedisService создает сервис Redis
func NewRedisService(cfg *config.Config) *RedisService {
	return &RedisService{
		cfg:  cfg.Redis,
		addr: cfg.GetRedisAddr(),
		log:  logger.GetLogger(),
	}
}

func (rs *RedisService) options() *redis.Options {
	return &redis.Options{
		Addr:         rs.addr,
		Password:     rs.cfg.Password,
		DB:           rs.cfg.DB,
		PoolSize:     rs.cfg.PoolSize,
		MinIdleConns: rs.cfg.MinIdleConns,
		MaxRetries:   rs.cfg.MaxRetries,
		DialTimeout:  rs.cfg.DialTimeout,
		ReadTimeout:  rs.cfg.ReadTimeout,
		WriteTimeout: rs.cfg.WriteTimeout,
	}
}

// Start подключается к Redis и проверяет его PING
func (rs *RedisService) Start() error {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	if rs.client != nil {
		return fmt.Errorf("Redis service already running")
	}

	client := redis.NewClient(rs.options())

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	started := time.Now()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return fmt.Errorf("failed to connect to Redis %s: %w", rs.addr, err)
	}

	rs.client = client
	rs.log.Info("✅ Redis %s (DB %d) подключен за %v, префикс ключей %q",
		rs.addr, rs.cfg.DB, time.Since(started).Round(time.Millisecond), rs.cfg.KeyPrefix)
	return nil
}

// Stop закрывает клиент
func (rs *RedisService) Stop() error {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	if rs.client == nil {
		return nil
	}

	err := rs.client.Close()
	rs.client = nil
	if err != nil {
		return fmt.Errorf("failed to close Redis client: %w", err)
	}
	rs.log.Info("✅ Redis отключен")
	return nil
}

// GetClient возвращает клиент; nil до Start
func (rs *RedisService) GetClient() *redis.Client {
	rs.mu.RLock()
	defer rs.mu.RUnlock()
	return rs.client
}

// Cache возвращает JSON-кэш с префиксом из конфигурации
func (rs *RedisService) Cache() *Cache {
	return NewCache(rs.GetClient(), rs.cfg.KeyPrefix)
}

// HealthCheck проверяет PING
func (rs *RedisService) HealthCheck(ctx context.Context) error {
	client := rs.GetClient()
	if client == nil {
		return fmt.Errorf("Redis is not connected")
	}

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("Redis ping failed: %w", err)
	}
	return nil
}
