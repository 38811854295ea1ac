// internal/delivery/telegram/app/bot/handlers/commands/cancel/handler.go
package cancel

import (
	"context"

	"storefront-bot/internal/delivery/telegram/app/bot/buttons"
	"storefront-bot/internal/delivery/telegram/app/bot/constants"
	"storefront-bot/internal/delivery/telegram/app/bot/handlers"
	"storefront-bot/internal/delivery/telegram/app/bot/handlers/base"
)

type cancelHandler struct {
	*base.BaseHandler
	buttons *buttons.ButtonBuilder
}

// NewHandler создает обработчик /cancel: сбрасывает диалог пополнения.
// Уже созданные платежи продолжают проверяться.
func NewHandler(builder *buttons.ButtonBuilder) handlers.Handler {
	return &cancelHandler{
		BaseHandler: &base.BaseHandler{
			Name:    "cancel_command_handler",
			Command: constants.CommandCancel,
			Type:    handlers.TypeCommand,
		},
		buttons: builder,
	}
}

// Execute возвращает пустой NextStep, бот очищает шаг диалога
func (h *cancelHandler) Execute(ctx context.Context, params handlers.HandlerParams) (handlers.HandlerResult, error) {
	return handlers.HandlerResult{
		Message:  constants.PaymentTexts.Cancelled,
		Keyboard: h.buttons.ProfileKeyboard(),
	}, nil
}
