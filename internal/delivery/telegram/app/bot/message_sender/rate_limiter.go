// internal/delivery/telegram/app/bot/message_sender/rate_limiter.go
package message_sender

import (
	"context"
	"sync"
	"time"
)

// RateLimiter ограничитель частоты отправки
type RateLimiter struct {
	interval time.Duration
	lastSend time.Time
	mu       sync.Mutex
}

// NewRateLimiter создает новый ограничитель
func NewRateLimiter(interval time.Duration) *RateLimiter {
	return &RateLimiter{
		interval: interval,
		lastSend: time.Now().Add(-interval), // Можно отправлять сразу
	}
}

// CanSend проверяет, можно ли отправлять сообщение прямо сейчас
func (rl *RateLimiter) CanSend() bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	if now.Sub(rl.lastSend) < rl.interval {
		return false
	}

	rl.lastSend = now
	return true
}

// Wait резервирует ближайший слот и ждет его
func (rl *RateLimiter) Wait(ctx context.Context) error {
	rl.mu.Lock()
	next := rl.lastSend.Add(rl.interval)
	now := time.Now()
	if next.Before(now) {
		next = now
	}
	rl.lastSend = next
	rl.mu.Unlock()

	delay := time.Until(next)
	if delay <= 0 {
		return nil
	}

	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
