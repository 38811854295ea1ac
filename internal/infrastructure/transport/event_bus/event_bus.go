// internal/infrastructure/transport/event_bus/event_bus.go
package events

import (
	"context"
	"fmt"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"

	"storefront-bot/internal/core/domain/payment"
	"storefront-bot/pkg/logger"
)

// EventSubscriber обработчик событий депозитов
type EventSubscriber interface {
	HandleEvent(ctx context.Context, event payment.Event) error
	GetName() string
}

// EventBus - асинхронная шина событий депозитов.
// Publish не блокирует цикл сверки: события обрабатывают воркеры.
type EventBus struct {
	mu          sync.RWMutex
	subscribers []EventSubscriber
	eventBuffer chan payment.Event
	config      EventBusConfig
	running     bool
	stopChan    chan struct{}
	wg          sync.WaitGroup

	published atomic.Int64
	dropped   atomic.Int64
	failed    atomic.Int64
}

// EventBusConfig - конфигурация EventBus
type EventBusConfig struct {
	BufferSize  int
	WorkerCount int
	MaxRetries  int
	RetryDelay  time.Duration
}

// DefaultConfig - конфигурация по умолчанию
var DefaultConfig = EventBusConfig{
	BufferSize:  256,
	WorkerCount: 2,
	MaxRetries:  3,
	RetryDelay:  200 * time.Millisecond,
}

// NewEventBus создает новую шину событий
func NewEventBus(config ...EventBusConfig) *EventBus {
	cfg := DefaultConfig
	if len(config) > 0 {
		cfg = config[0]
	}
	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = 1
	}

	return &EventBus{
		eventBuffer: make(chan payment.Event, cfg.BufferSize),
		config:      cfg,
		stopChan:    make(chan struct{}),
	}
}

// Start запускает обработчиков событий
func (b *EventBus) Start() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.running {
		return
	}
	b.running = true

	for i := 0; i < b.config.WorkerCount; i++ {
		b.wg.Add(1)
		go b.eventWorker()
	}

	logger.Info("🚀 EventBus запущен с %d обработчиками", b.config.WorkerCount)
}

// Stop дожидается обработки уже принятых событий и останавливает воркеры
func (b *EventBus) Stop() {
	b.mu.Lock()
	if !b.running {
		b.mu.Unlock()
		return
	}
	b.running = false
	close(b.stopChan)
	b.mu.Unlock()

	b.wg.Wait()
	logger.Info("🛑 EventBus остановлен (опубликовано %d, отброшено %d, ошибок %d)",
		b.published.Load(), b.dropped.Load(), b.failed.Load())
}

// Subscribe добавляет подписчика на все события депозитов
func (b *EventBus) Subscribe(subscriber EventSubscriber) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.subscribers = append(b.subscribers, subscriber)
	logger.Info("✅ %s подписался на события депозитов", subscriber.GetName())
}

// Publish ставит событие в очередь; при переполнении буфера событие отбрасывается
func (b *EventBus) Publish(_ context.Context, event payment.Event) error {
	b.mu.RLock()
	running := b.running
	b.mu.RUnlock()

	if !running {
		return fmt.Errorf("EventBus не запущен")
	}

	select {
	case b.eventBuffer <- event:
		b.published.Add(1)
		return nil
	default:
		b.dropped.Add(1)
		return fmt.Errorf("буфер событий переполнен, событие %s отброшено", event.ID)
	}
}

func (b *EventBus) eventWorker() {
	defer b.wg.Done()

	for {
		select {
		case event := <-b.eventBuffer:
			b.processEvent(event)
		case <-b.stopChan:
			// Дочищаем очередь
			for {
				select {
				case event := <-b.eventBuffer:
					b.processEvent(event)
				default:
					return
				}
			}
		}
	}
}

func (b *EventBus) processEvent(event payment.Event) {
	b.mu.RLock()
	subscribers := make([]EventSubscriber, len(b.subscribers))
	copy(subscribers, b.subscribers)
	b.mu.RUnlock()

	for _, subscriber := range subscribers {
		if err := b.handleEventWithRetry(event, subscriber); err != nil {
			b.failed.Add(1)
			logger.Warn("⚠️ %s не обработал событие %s (%s): %v",
				subscriber.GetName(), event.Type, event.PaymentID, err)
		}
	}
}

// handleEventWithRetry обрабатывает событие с повторными попытками
func (b *EventBus) handleEventWithRetry(event payment.Event, subscriber EventSubscriber) error {
	var err error
	for attempt := 0; attempt <= b.config.MaxRetries; attempt++ {
		if attempt > 0 {
			time.Sleep(b.config.RetryDelay * time.Duration(attempt))
		}
		err = b.safeExecute(event, subscriber)
		if err == nil {
			return nil
		}
	}
	return err
}

func (b *EventBus) safeExecute(event payment.Event, subscriber EventSubscriber) (err error) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("❌ Паника в подписчике %s: %v\n%s", subscriber.GetName(), r, debug.Stack())
			err = fmt.Errorf("паника в подписчике: %v", r)
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return subscriber.HandleEvent(ctx, event)
}

// IsRunning true если шина запущена
func (b *EventBus) IsRunning() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.running
}

// GetMetricsMap возвращает счетчики шины
func (b *EventBus) GetMetricsMap() map[string]interface{} {
	return map[string]interface{}{
		"published": b.published.Load(),
		"dropped":   b.dropped.Load(),
		"failed":    b.failed.Load(),
		"queued":    len(b.eventBuffer),
	}
}

var _ payment.EventPublisher = (*EventBus)(nil)
