// internal/core/domain/payment/poller.go
package payment

import (
	"context"

	"storefront-bot/pkg/logger"
)

// StatusPoller проверяет статус платежа по странице чека
type StatusPoller struct {
	renderer PageRenderer
	receipts ReceiptURLBuilder
	logger   *logger.Logger
}

// NewStatusPoller создает поллер статуса
func NewStatusPoller(renderer PageRenderer, receipts ReceiptURLBuilder, log *logger.Logger) *StatusPoller {
	if log == nil {
		log = logger.GetLogger()
	}
	return &StatusPoller{
		renderer: renderer,
		receipts: receipts,
		logger:   log,
	}
}

// CheckStatus рендерит чек и классифицирует его.
// Любая ошибка рендеринга дает CheckError.
func (p *StatusPoller) CheckStatus(ctx context.Context, paymentID string) CheckStatus {
	markup, err := p.renderer.Render(ctx, p.receipts.ReceiptURL(paymentID))
	if err != nil {
		p.logger.Warn("⚠️ Не удалось получить чек %s: %v", paymentID, err)
		return CheckError
	}
	status := ClassifyStatus(markup)
	p.logger.Debug("🔍 Платеж %s: %s", paymentID, status)
	return status
}

// SettledAmount сумма, которую шлюз указал на странице чека
func (p *StatusPoller) SettledAmount(ctx context.Context, paymentID string) (int, bool) {
	markup, err := p.renderer.Render(ctx, p.receipts.ReceiptURL(paymentID))
	if err != nil {
		p.logger.Warn("⚠️ Не удалось получить сумму по чеку %s: %v", paymentID, err)
		return 0, false
	}
	return ExtractSettledAmount(markup)
}
