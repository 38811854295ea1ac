// internal/delivery/telegram/app/bot/handlers/commands/help/handler.go
package help

import (
	"context"
	"fmt"

	"storefront-bot/internal/delivery/telegram/app/bot/buttons"
	"storefront-bot/internal/delivery/telegram/app/bot/constants"
	"storefront-bot/internal/delivery/telegram/app/bot/handlers"
	"storefront-bot/internal/delivery/telegram/app/bot/handlers/base"
)

type helpCommandHandler struct {
	*base.BaseHandler
	buttons *buttons.ButtonBuilder
}

// NewHandler создает обработчик /help
func NewHandler(builder *buttons.ButtonBuilder) handlers.Handler {
	return &helpCommandHandler{
		BaseHandler: &base.BaseHandler{
			Name:    "help_command_handler",
			Command: constants.CommandHelp,
			Type:    handlers.TypeCommand,
		},
		buttons: builder,
	}
}

func (h *helpCommandHandler) Execute(ctx context.Context, params handlers.HandlerParams) (handlers.HandlerResult, error) {
	message := fmt.Sprintf(
		"📋 *Помощь*\n\n"+
			"%s - %s\n"+
			"%s - %s\n"+
			"%s - %s\n\n"+
			"После оплаты баланс пополняется автоматически. "+
			"Статус платежа можно проверить кнопкой «%s».",
		constants.CommandStart, constants.CommandDescriptions.Start,
		constants.CommandProfile, constants.CommandDescriptions.Profile,
		constants.CommandCancel, constants.CommandDescriptions.Cancel,
		constants.ButtonTexts.CheckStatus,
	)

	return handlers.HandlerResult{
		Message:  message,
		Keyboard: h.buttons.MainMenuKeyboard(),
	}, nil
}
