// internal/delivery/telegram/app/bot/notifier_test.go
package bot

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront-bot/internal/core/domain/payment"
	"storefront-bot/internal/delivery/telegram/app/bot/buttons"
)

type sentMessage struct {
	chatID   int64
	text     string
	keyboard interface{}
}

type recordingSender struct {
	messages []sentMessage
}

func (s *recordingSender) SendTextMessage(_ context.Context, chatID int64, text string, keyboard interface{}) error {
	s.messages = append(s.messages, sentMessage{chatID: chatID, text: text, keyboard: keyboard})
	return nil
}

func (s *recordingSender) EditMessageText(context.Context, int64, int64, string, interface{}) error {
	return nil
}

func (s *recordingSender) AnswerCallback(context.Context, string, string, bool) error {
	return nil
}

func TestPaymentNotifier(t *testing.T) {
	sender := &recordingSender{}
	builder := buttons.NewButtonBuilder("https://t.me/support")
	notifier := NewPaymentNotifier(sender, builder)
	ctx := context.Background()

	require.NoError(t, notifier.NotifyCompleted(ctx, payment.CreditResult{
		PaymentID: "abc123", UserID: 42, Amount: 500, NewBalance: 2000,
	}))
	require.NoError(t, notifier.NotifyFailed(ctx, payment.Session{PaymentID: "def456", UserID: 43}))
	require.NoError(t, notifier.NotifyExpired(ctx, payment.Session{PaymentID: "ghi789", UserID: 44}))

	require.Len(t, sender.messages, 3)

	completed := sender.messages[0]
	assert.Equal(t, int64(42), completed.chatID)
	assert.Contains(t, completed.text, "Зачислено: 500 руб.")
	assert.Contains(t, completed.text, "Новый баланс: 2000 руб.")
	assert.Contains(t, completed.text, "`abc123`")
	assert.Equal(t, builder.CompletedKeyboard(), completed.keyboard)

	failed := sender.messages[1]
	assert.Equal(t, int64(43), failed.chatID)
	assert.Contains(t, failed.text, "Платеж не прошел")
	assert.Contains(t, failed.text, "`def456`")

	expired := sender.messages[2]
	assert.Equal(t, int64(44), expired.chatID)
	assert.Contains(t, expired.text, "Время оплаты истекло")
	assert.Equal(t, builder.ExpiredKeyboard(), expired.keyboard)
}
