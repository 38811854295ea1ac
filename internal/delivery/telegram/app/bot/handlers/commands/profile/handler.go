// internal/delivery/telegram/app/bot/handlers/commands/profile/handler.go
package profile

import (
	"context"
	"fmt"
	"strings"

	"storefront-bot/internal/delivery/telegram/app/bot/constants"
	"storefront-bot/internal/delivery/telegram/app/bot/handlers"
	"storefront-bot/internal/delivery/telegram/app/bot/handlers/base"
)

// profileCommandHandler реализация обработчика команды /profile
type profileCommandHandler struct {
	*base.BaseHandler
	deps Dependencies
}

// NewHandler создает новый обработчик команды /profile.
// Тот же хэндлер регистрируется на callback "profile".
func NewHandler(deps Dependencies) handlers.Handler {
	return &profileCommandHandler{
		BaseHandler: &base.BaseHandler{
			Name:    "profile_command_handler",
			Command: constants.CommandProfile,
			Type:    handlers.TypeCommand,
		},
		deps: deps,
	}
}

// Execute выполняет обработку команды /profile
func (h *profileCommandHandler) Execute(ctx context.Context, params handlers.HandlerParams) (handlers.HandlerResult, error) {
	if params.User == nil {
		return handlers.HandlerResult{}, fmt.Errorf("пользователь не определен")
	}

	balance, err := h.deps.Balances.GetBalance(ctx, params.User.TelegramID)
	if err != nil {
		return handlers.HandlerResult{}, fmt.Errorf("ошибка получения баланса: %w", err)
	}

	active := h.deps.Payments.ActivePayments(params.User.TelegramID)
	minAmount, maxAmount := h.deps.Payments.Limits()

	return handlers.HandlerResult{
		Message:  formatProfile(params.User.DisplayName(), balance, active, minAmount, maxAmount),
		Keyboard: h.deps.Buttons.ProfileKeyboard(),
	}, nil
}

func formatProfile(name string, balance int64, active, minAmount, maxAmount int) string {
	var sb strings.Builder
	sb.WriteString("👤 *Ваш профиль*\n\n")
	sb.WriteString(fmt.Sprintf("🙋 *Имя:* %s\n", name))
	sb.WriteString(fmt.Sprintf("💳 *Баланс:* %d руб.\n", balance))
	if active > 0 {
		sb.WriteString(fmt.Sprintf("🔄 *Активные платежи:* %d\n", active))
	}
	sb.WriteString("\n💵 *Пополнение баланса:*\n")
	sb.WriteString(fmt.Sprintf("• Сумма: от %d до %d руб.\n", minAmount, maxAmount))
	sb.WriteString("• Автоматическое зачисление\n")
	sb.WriteString("• Время оплаты: 15 минут")
	return sb.String()
}
