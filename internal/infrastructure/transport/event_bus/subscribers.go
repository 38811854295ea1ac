// internal/infrastructure/transport/event_bus/subscribers.go
package events

import (
	"context"

	"storefront-bot/internal/core/domain/payment"
	"storefront-bot/pkg/logger"
)

// BaseSubscriber - подписчик на основе функции
type BaseSubscriber struct {
	name    string
	handler func(context.Context, payment.Event) error
}

// NewBaseSubscriber создает нового подписчика
func NewBaseSubscriber(name string, handler func(context.Context, payment.Event) error) *BaseSubscriber {
	return &BaseSubscriber{name: name, handler: handler}
}

// HandleEvent обрабатывает событие
func (s *BaseSubscriber) HandleEvent(ctx context.Context, event payment.Event) error {
	return s.handler(ctx, event)
}

// GetName возвращает имя подписчика
func (s *BaseSubscriber) GetName() string {
	return s.name
}

// NewConsoleLoggerSubscriber пишет события депозитов в лог
func NewConsoleLoggerSubscriber() *BaseSubscriber {
	return NewBaseSubscriber("console_logger", func(_ context.Context, event payment.Event) error {
		switch event.Type {
		case payment.EventDepositCreated:
			logger.Info("🆕 Депозит %s: пользователь %d, сумма %d", event.PaymentID, event.UserID, event.RequestedAmount)
		case payment.EventDepositCompleted:
			logger.Info("💰 Депозит %s зачислен пользователю %d", event.PaymentID, event.UserID)
		case payment.EventDepositFailed:
			logger.Info("❌ Депозит %s отклонен", event.PaymentID)
		case payment.EventDepositExpired:
			logger.Info("⏰ Депозит %s истек после %d проверок", event.PaymentID, event.ChecksDone)
		}
		return nil
	})
}
