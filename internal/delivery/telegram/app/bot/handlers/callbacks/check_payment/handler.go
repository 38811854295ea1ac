// internal/delivery/telegram/app/bot/handlers/callbacks/check_payment/handler.go
package check_payment

import (
	"context"
	"fmt"
	"strings"

	"storefront-bot/internal/core/domain/payment"
	"storefront-bot/internal/delivery/telegram/app/bot/constants"
	"storefront-bot/internal/delivery/telegram/app/bot/handlers"
	"storefront-bot/internal/delivery/telegram/app/bot/handlers/base"
)

// StatusQuerier снимок статуса платежа
type StatusQuerier interface {
	QueryStatus(ctx context.Context, paymentID string) payment.Snapshot
}

type checkPaymentHandler struct {
	*base.BaseHandler
	deposits StatusQuerier
}

// NewHandler создает обработчик check_payment_<id>
func NewHandler(deposits StatusQuerier) handlers.Handler {
	return &checkPaymentHandler{
		BaseHandler: &base.BaseHandler{
			Name:    "check_payment_handler",
			Command: constants.CallbackCheckPaymentPrefix,
			Type:    handlers.TypeCallback,
		},
		deposits: deposits,
	}
}

// Execute отвечает на callback всплывающим статусом, сообщение не отправляется
func (h *checkPaymentHandler) Execute(ctx context.Context, params handlers.HandlerParams) (handlers.HandlerResult, error) {
	paymentID := strings.TrimPrefix(params.Data, constants.CallbackCheckPaymentPrefix)
	if paymentID == "" {
		return handlers.HandlerResult{}, fmt.Errorf("неверный формат callback: %s", params.Data)
	}

	snapshot := h.deposits.QueryStatus(ctx, paymentID)
	return handlers.HandlerResult{
		Alert:    StatusText(snapshot),
		NextStep: params.Step,
	}, nil
}

// StatusText текст статуса для пользователя
func StatusText(snapshot payment.Snapshot) string {
	if !snapshot.Found {
		return constants.PaymentTexts.NotFound
	}

	switch snapshot.Status {
	case payment.StatusCompleted:
		return constants.PaymentTexts.AlreadyCredited
	case payment.StatusCrediting:
		return constants.PaymentTexts.Crediting
	case payment.StatusFailed:
		return constants.PaymentTexts.Failed
	case payment.StatusPending:
		return fmt.Sprintf(constants.PaymentTexts.Pending, snapshot.ChecksDone, snapshot.MaxChecks)
	case payment.StatusExpired:
		return constants.PaymentTexts.Expired
	default:
		return constants.PaymentTexts.Unknown
	}
}
