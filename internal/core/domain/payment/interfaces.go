// internal/core/domain/payment/interfaces.go
package payment

import (
	"context"
	"time"
)

// PaymentCreator создает платеж на шлюзе
type PaymentCreator interface {
	CreatePayment(ctx context.Context, amount int) (*GatewayPayment, error)
}

// RedeemLinkExtractor получает ссылку на оплату для страницы чека
type RedeemLinkExtractor interface {
	ExtractRedeemLink(ctx context.Context, receiptURL string) string
}

// StatusChecker проверяет статус и сумму по странице чека
type StatusChecker interface {
	CheckStatus(ctx context.Context, paymentID string) CheckStatus
	SettledAmount(ctx context.Context, paymentID string) (int, bool)
}

// BalanceCreditor атомарно зачисляет депозит на баланс.
// Повторный вызов для того же paymentID возвращает ErrAlreadyCredited.
type BalanceCreditor interface {
	CreditDeposit(ctx context.Context, paymentID string, userID int64, amount int) (int64, error)
}

// DepositLedger долговременный журнал депозитов
type DepositLedger interface {
	CreatePending(ctx context.Context, record DepositRecord) error
	UpdateChecks(ctx context.Context, paymentID string, checksDone int) error
	MarkConfirmed(ctx context.Context, paymentID string, actualAmount int) error
	MarkFailed(ctx context.Context, paymentID string) error
	MarkExpired(ctx context.Context, paymentID string) error
	Get(ctx context.Context, paymentID string) (*DepositRecord, error)
	ListPending(ctx context.Context) ([]DepositRecord, error)
}

// Notifier уведомляет пользователя об итогах платежа. Ошибки только логируются.
type Notifier interface {
	NotifyCompleted(ctx context.Context, result CreditResult) error
	NotifyFailed(ctx context.Context, session Session) error
	NotifyExpired(ctx context.Context, session Session) error
}

// RateLimiter ограничивает частоту создания депозитов
type RateLimiter interface {
	Allow(ctx context.Context, userID int64) (bool, error)
}

// Metrics метрики платежного ядра
type Metrics interface {
	DepositStarted()
	DepositRejected(reason string)
	CheckObserved(status CheckStatus)
	DepositFinished(status Status, amount int)
	SessionsActive(n int)
	CheckDuration(d time.Duration)
}

type nopMetrics struct{}

func (nopMetrics) DepositStarted()             {}
func (nopMetrics) DepositRejected(string)      {}
func (nopMetrics) CheckObserved(CheckStatus)   {}
func (nopMetrics) DepositFinished(Status, int) {}
func (nopMetrics) SessionsActive(int)          {}
func (nopMetrics) CheckDuration(time.Duration) {}

type nopNotifier struct{}

func (nopNotifier) NotifyCompleted(context.Context, CreditResult) error { return nil }
func (nopNotifier) NotifyFailed(context.Context, Session) error         { return nil }
func (nopNotifier) NotifyExpired(context.Context, Session) error        { return nil }
