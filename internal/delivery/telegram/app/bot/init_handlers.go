// internal/delivery/telegram/app/bot/init_handlers.go
package bot

import (
	"storefront-bot/internal/delivery/telegram/app/bot/buttons"
	"storefront-bot/internal/delivery/telegram/app/bot/constants"
	"storefront-bot/internal/delivery/telegram/app/bot/handlers/callbacks/add_balance"
	"storefront-bot/internal/delivery/telegram/app/bot/handlers/callbacks/check_payment"
	"storefront-bot/internal/delivery/telegram/app/bot/handlers/commands/cancel"
	"storefront-bot/internal/delivery/telegram/app/bot/handlers/commands/help"
	"storefront-bot/internal/delivery/telegram/app/bot/handlers/commands/profile"
	"storefront-bot/internal/delivery/telegram/app/bot/handlers/messages/payment_amount"
	"storefront-bot/internal/delivery/telegram/app/bot/handlers/router"
	"storefront-bot/internal/delivery/telegram/app/bot/handlers/start"
	"storefront-bot/internal/delivery/telegram/app/bot/message_sender"
	"storefront-bot/pkg/logger"
)

// RegisterHandlers создает роутер со всеми хэндлерами бота
func RegisterHandlers(deps Dependencies, sender message_sender.MessageSender, builder *buttons.ButtonBuilder) router.Router {
	r := router.NewRouter()

	startHandler := start.NewHandler(builder)
	r.RegisterHandler(startHandler)
	r.RegisterCallback(constants.CallbackMainMenu, startHandler)

	profileHandler := profile.NewHandler(profile.Dependencies{
		Balances: deps.Balances,
		Payments: deps.Deposits,
		Buttons:  builder,
	})
	r.RegisterHandler(profileHandler)
	r.RegisterCallback(constants.CallbackProfile, profileHandler)

	r.RegisterHandler(cancel.NewHandler(builder))
	r.RegisterHandler(help.NewHandler(builder))
	r.RegisterHandler(add_balance.NewHandler(deps.Deposits, builder))
	r.RegisterPrefix(constants.CallbackCheckPaymentPrefix, check_payment.NewHandler(deps.Deposits))
	r.RegisterHandler(payment_amount.NewHandler(payment_amount.Dependencies{
		Deposits: deps.Deposits,
		Progress: sender,
		Buttons:  builder,
	}))

	logger.Debug("Зарегистрировано %d маршрутов", len(r.GetCommands()))
	return r
}
