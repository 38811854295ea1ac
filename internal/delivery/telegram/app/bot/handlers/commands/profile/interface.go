// internal/delivery/telegram/app/bot/handlers/commands/profile/interface.go
package profile

import (
	"context"

	"storefront-bot/internal/delivery/telegram/app/bot/buttons"
)

// BalanceReader баланс пользователя
type BalanceReader interface {
	GetBalance(ctx context.Context, telegramID int64) (int64, error)
}

// PaymentsCounter количество ожидающих платежей пользователя
type PaymentsCounter interface {
	ActivePayments(userID int64) int
	Limits() (int, int)
}

// Dependencies зависимости для создания обработчика
type Dependencies struct {
	Balances BalanceReader
	Payments PaymentsCounter
	Buttons  *buttons.ButtonBuilder
}
