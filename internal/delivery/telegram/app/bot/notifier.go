// internal/delivery/telegram/app/bot/notifier.go
package bot

import (
	"context"
	"fmt"

	"storefront-bot/internal/core/domain/payment"
	"storefront-bot/internal/delivery/telegram/app/bot/buttons"
	"storefront-bot/internal/delivery/telegram/app/bot/message_sender"
)

// PaymentNotifier отправляет пользователю итог платежа.
// Пользователь пишет боту в личку, поэтому chat_id совпадает с user_id.
type PaymentNotifier struct {
	sender  message_sender.MessageSender
	buttons *buttons.ButtonBuilder
}

// NewPaymentNotifier создает уведомитель
func NewPaymentNotifier(sender message_sender.MessageSender, builder *buttons.ButtonBuilder) *PaymentNotifier {
	return &PaymentNotifier{sender: sender, buttons: builder}
}

// NotifyCompleted сообщает о зачислении
func (n *PaymentNotifier) NotifyCompleted(ctx context.Context, result payment.CreditResult) error {
	text := fmt.Sprintf(
		"✅ *Платеж подтвержден!*\n\n"+
			"💰 Зачислено: %d руб.\n"+
			"💳 Новый баланс: %d руб.\n"+
			"🔗 ID платежа: `%s`\n\n"+
			"Теперь вы можете совершать покупки! 🎉",
		result.Amount, result.NewBalance, result.PaymentID,
	)
	return n.sender.SendTextMessage(ctx, result.UserID, text, n.buttons.CompletedKeyboard())
}

// NotifyFailed сообщает об отклоненном платеже
func (n *PaymentNotifier) NotifyFailed(ctx context.Context, session payment.Session) error {
	text := fmt.Sprintf(
		"❌ *Платеж не прошел!*\n\n"+
			"🔗 ID платежа: `%s`\n\n"+
			"Попробуйте создать новый платеж или обратитесь в поддержку.",
		session.PaymentID,
	)
	return n.sender.SendTextMessage(ctx, session.UserID, text, n.buttons.FailedKeyboard())
}

// NotifyExpired сообщает об истечении времени оплаты
func (n *PaymentNotifier) NotifyExpired(ctx context.Context, session payment.Session) error {
	text := fmt.Sprintf(
		"⏰ *Время оплаты истекло!*\n\n"+
			"🔗 ID платежа: `%s`\n\n"+
			"Платеж не был оплачен вовремя.\n"+
			"Создайте новый платеж для пополнения баланса.",
		session.PaymentID,
	)
	return n.sender.SendTextMessage(ctx, session.UserID, text, n.buttons.ExpiredKeyboard())
}

var _ payment.Notifier = (*PaymentNotifier)(nil)
