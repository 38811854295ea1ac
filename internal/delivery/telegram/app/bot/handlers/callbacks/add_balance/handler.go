// internal/delivery/telegram/app/bot/handlers/callbacks/add_balance/handler.go
package add_balance

import (
	"context"
	"fmt"

	"storefront-bot/internal/delivery/telegram/app/bot/buttons"
	"storefront-bot/internal/delivery/telegram/app/bot/constants"
	"storefront-bot/internal/delivery/telegram/app/bot/handlers"
	"storefront-bot/internal/delivery/telegram/app/bot/handlers/base"
)

// LimitsProvider допустимый диапазон сумм пополнения
type LimitsProvider interface {
	Limits() (int, int)
}

type addBalanceHandler struct {
	*base.BaseHandler
	limits  LimitsProvider
	buttons *buttons.ButtonBuilder
}

// NewHandler создает обработчик кнопки пополнения баланса
func NewHandler(limits LimitsProvider, builder *buttons.ButtonBuilder) handlers.Handler {
	return &addBalanceHandler{
		BaseHandler: &base.BaseHandler{
			Name:    "add_balance_handler",
			Command: constants.CallbackAddBalance,
			Type:    handlers.TypeCallback,
		},
		limits:  limits,
		buttons: builder,
	}
}

// Execute просит ввести сумму и переводит диалог в ожидание суммы
func (h *addBalanceHandler) Execute(ctx context.Context, params handlers.HandlerParams) (handlers.HandlerResult, error) {
	minAmount, maxAmount := h.limits.Limits()
	return handlers.HandlerResult{
		Message:  fmt.Sprintf(constants.PaymentTexts.Prompt, minAmount, maxAmount),
		Keyboard: h.buttons.BackToProfileKeyboard(),
		NextStep: constants.StepAwaitAmount,
	}, nil
}
