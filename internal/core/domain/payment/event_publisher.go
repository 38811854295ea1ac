// internal/core/domain/payment/event_publisher.go
package payment

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// EventType тип события жизненного цикла депозита
type EventType string

const (
	EventDepositCreated   EventType = "created"
	EventDepositCompleted EventType = "completed"
	EventDepositFailed    EventType = "failed"
	EventDepositExpired   EventType = "expired"
)

// EventPublisher интерфейс для публикации событий платежей
type EventPublisher interface {
	Publish(ctx context.Context, event Event) error
}

// Event данные события платежа
type Event struct {
	ID              string    `json:"id"`
	Type            EventType `json:"type"`
	PaymentID       string    `json:"payment_id"`
	UserID          int64     `json:"user_id"`
	RequestedAmount int       `json:"requested_amount"`
	ActualAmount    *int      `json:"actual_amount,omitempty"`
	ChecksDone      int       `json:"checks_done"`
	Timestamp       time.Time `json:"timestamp"`
}

// NewEvent создает событие по состоянию сессии
func NewEvent(eventType EventType, session Session) Event {
	return Event{
		ID:              uuid.NewString(),
		Type:            eventType,
		PaymentID:       session.PaymentID,
		UserID:          session.UserID,
		RequestedAmount: session.RequestedAmount,
		ActualAmount:    session.ActualAmount,
		ChecksDone:      session.ChecksDone,
		Timestamp:       time.Now().UTC(),
	}
}

type nopPublisher struct{}

func (nopPublisher) Publish(context.Context, Event) error { return nil }
