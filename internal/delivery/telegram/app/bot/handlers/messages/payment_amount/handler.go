// internal/delivery/telegram/app/bot/handlers/messages/payment_amount/handler.go
package payment_amount

import (
	"context"
	"errors"
	"fmt"

	"storefront-bot/internal/core/domain/payment"
	"storefront-bot/internal/delivery/telegram/app/bot/constants"
	"storefront-bot/internal/delivery/telegram/app/bot/handlers"
	"storefront-bot/internal/delivery/telegram/app/bot/handlers/base"
	"storefront-bot/pkg/logger"
)

type paymentAmountHandler struct {
	*base.BaseHandler
	deps Dependencies
}

// NewHandler создает обработчик ввода суммы пополнения
func NewHandler(deps Dependencies) handlers.Handler {
	return &paymentAmountHandler{
		BaseHandler: &base.BaseHandler{
			Name:    "payment_amount_handler",
			Command: constants.StepAwaitAmount,
			Type:    handlers.TypeMessage,
		},
		deps: deps,
	}
}

// Execute разбирает сумму и создает депозит.
// Некорректная сумма оставляет диалог в ожидании суммы, шлюз не вызывается.
func (h *paymentAmountHandler) Execute(ctx context.Context, params handlers.HandlerParams) (handlers.HandlerResult, error) {
	if params.User == nil {
		return handlers.HandlerResult{}, fmt.Errorf("пользователь не определен")
	}

	amount, err := h.deps.Deposits.ParseAmount(params.Text)
	if err != nil {
		return handlers.HandlerResult{
			Message:  amountErrorText(err),
			Keyboard: h.deps.Buttons.BackToProfileKeyboard(),
			NextStep: constants.StepAwaitAmount,
		}, nil
	}

	if h.deps.Progress != nil {
		if err := h.deps.Progress.SendTextMessage(ctx, params.ChatID, constants.PaymentTexts.Creating, nil); err != nil {
			logger.Debug("Не удалось отправить сообщение о создании платежа: %v", err)
		}
	}

	deposit, err := h.deps.Deposits.StartDeposit(ctx, params.User.TelegramID, amount)
	if err != nil {
		text := constants.PaymentTexts.CreateFailed
		if errors.Is(err, payment.ErrRateLimited) {
			text = constants.PaymentTexts.RateLimited
		}
		return handlers.HandlerResult{
			Message:  text,
			Keyboard: h.deps.Buttons.BackToProfileKeyboard(),
		}, nil
	}

	return handlers.HandlerResult{
		Message:  FormatDeposit(deposit),
		Keyboard: h.deps.Buttons.DepositKeyboard(deposit.RedeemURL, deposit.PaymentID),
	}, nil
}

// FormatDeposit сообщение о созданном платеже
func FormatDeposit(deposit *payment.Deposit) string {
	minutes := int(deposit.Timeout.Minutes())
	return fmt.Sprintf(
		"💵 *Платеж создан!*\n\n"+
			"💰 Сумма: %d руб.\n"+
			"🔗 ID платежа: `%s`\n\n"+
			"📱 *Инструкция по оплате:*\n"+
			"1. Откройте ссылку оплаты кнопкой ниже\n"+
			"2. Оплатите счет в течение %d минут\n"+
			"3. Баланс пополнится автоматически\n\n"+
			"⏰ Время на оплату: %d минут",
		deposit.Amount, deposit.PaymentID, minutes, minutes,
	)
}

func amountErrorText(err error) string {
	var amountErr *payment.AmountError
	switch {
	case errors.As(err, &amountErr) && amountErr.TooSmall():
		return fmt.Sprintf(constants.PaymentTexts.TooSmall, amountErr.Min)
	case errors.As(err, &amountErr):
		return fmt.Sprintf(constants.PaymentTexts.TooLarge, groupThousands(amountErr.Max))
	default:
		return constants.PaymentTexts.NotNumber
	}
}

// groupThousands 189000 -> 189,000
func groupThousands(n int) string {
	s := fmt.Sprintf("%d", n)
	if len(s) <= 3 {
		return s
	}
	out := make([]byte, 0, len(s)+len(s)/3)
	lead := len(s) % 3
	if lead > 0 {
		out = append(out, s[:lead]...)
	}
	for i := lead; i < len(s); i += 3 {
		if len(out) > 0 {
			out = append(out, ',')
		}
		out = append(out, s[i:i+3]...)
	}
	return string(out)
}
