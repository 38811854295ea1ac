// internal/delivery/telegram/app/bot/handlers/start/handler.go
package start

import (
	"context"
	"fmt"

	"storefront-bot/internal/delivery/telegram/app/bot/buttons"
	"storefront-bot/internal/delivery/telegram/app/bot/constants"
	"storefront-bot/internal/delivery/telegram/app/bot/handlers"
	"storefront-bot/internal/delivery/telegram/app/bot/handlers/base"
	"storefront-bot/pkg/logger"
)

// startHandlerImpl реализация хэндлера /start и главного меню
type startHandlerImpl struct {
	*base.BaseHandler
	buttons *buttons.ButtonBuilder
}

// NewHandler создает новый хэндлер команды /start
func NewHandler(builder *buttons.ButtonBuilder) handlers.Handler {
	return &startHandlerImpl{
		BaseHandler: &base.BaseHandler{
			Name:    "start_handler",
			Command: constants.CommandStart,
			Type:    handlers.TypeCommand,
		},
		buttons: builder,
	}
}

// Execute выполняет обработку команды /start
func (h *startHandlerImpl) Execute(ctx context.Context, params handlers.HandlerParams) (handlers.HandlerResult, error) {
	logger.Debug("Обработка /start: текст='%s', data='%s'", params.Text, params.Data)

	firstName := ""
	if params.User != nil {
		firstName = params.User.FirstName
	}

	message := fmt.Sprintf(
		"👋 Привет, %s!\n\n"+
			"Здесь можно пополнить баланс и следить за статусом платежей.\n\n"+
			"Выберите действие:",
		h.DisplayName(firstName),
	)

	return handlers.HandlerResult{
		Message:  message,
		Keyboard: h.buttons.MainMenuKeyboard(),
	}, nil
}
