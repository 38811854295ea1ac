// internal/delivery/telegram/app/bot/handlers/callbacks/check_payment/handler_test.go
package check_payment

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront-bot/internal/core/domain/payment"
	"storefront-bot/internal/delivery/telegram/app/bot/handlers"
)

type stubQuerier struct {
	snapshot payment.Snapshot
	asked    string
}

func (s *stubQuerier) QueryStatus(_ context.Context, paymentID string) payment.Snapshot {
	s.asked = paymentID
	return s.snapshot
}

func TestStatusText(t *testing.T) {
	tests := []struct {
		name     string
		snapshot payment.Snapshot
		want     string
	}{
		{name: "not found", snapshot: payment.Snapshot{}, want: "❌ Сессия платежа не найдена!"},
		{name: "completed", snapshot: payment.Snapshot{Found: true, Status: payment.StatusCompleted}, want: "✅ Платеж уже завершен и средства зачислены!"},
		{name: "crediting", snapshot: payment.Snapshot{Found: true, Status: payment.StatusCrediting}, want: "⏳ Оплата получена, зачисляем средства на баланс..."},
		{name: "failed", snapshot: payment.Snapshot{Found: true, Status: payment.StatusFailed}, want: "❌ Платеж не прошел. Попробуйте создать новый."},
		{name: "pending", snapshot: payment.Snapshot{Found: true, Status: payment.StatusPending, ChecksDone: 5, MaxChecks: 30}, want: "🔄 Платеж обрабатывается... (проверка 5/30)"},
		{name: "expired", snapshot: payment.Snapshot{Found: true, Status: payment.StatusExpired}, want: "⏰ Время оплаты истекло. Создайте новый платеж."},
		{name: "unknown", snapshot: payment.Snapshot{Found: true, Status: "weird"}, want: "⚡ Статус платежа неизвестен."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StatusText(tt.snapshot))
		})
	}
}

func TestCheckPaymentHandler_Execute(t *testing.T) {
	querier := &stubQuerier{snapshot: payment.Snapshot{Found: true, Status: payment.StatusCompleted}}
	handler := NewHandler(querier)

	result, err := handler.Execute(context.Background(), handlers.HandlerParams{
		Data: "check_payment_abc123",
		Step: "await_amount",
	})
	require.NoError(t, err)
	assert.Equal(t, "abc123", querier.asked)
	assert.Empty(t, result.Message)
	assert.Equal(t, "✅ Платеж уже завершен и средства зачислены!", result.Alert)
	assert.Equal(t, "await_amount", result.NextStep)

	_, err = handler.Execute(context.Background(), handlers.HandlerParams{Data: "check_payment_"})
	assert.Error(t, err)
}
