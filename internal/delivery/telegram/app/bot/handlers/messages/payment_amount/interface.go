// internal/delivery/telegram/app/bot/handlers/messages/payment_amount/interface.go
package payment_amount

import (
	"context"

	"storefront-bot/internal/core/domain/payment"
	"storefront-bot/internal/delivery/telegram/app/bot/buttons"
)

// DepositStarter создание депозита
type DepositStarter interface {
	ParseAmount(text string) (int, error)
	StartDeposit(ctx context.Context, userID int64, amount int) (*payment.Deposit, error)
}

// ProgressSender промежуточное сообщение пока создается платеж
type ProgressSender interface {
	SendTextMessage(ctx context.Context, chatID int64, text string, keyboard interface{}) error
}

// Dependencies зависимости для создания обработчика
type Dependencies struct {
	Deposits DepositStarter
	Progress ProgressSender
	Buttons  *buttons.ButtonBuilder
}
