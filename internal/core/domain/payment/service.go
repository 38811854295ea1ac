// internal/core/domain/payment/service.go
package payment

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"storefront-bot/pkg/logger"
)

// ServiceConfig ограничения депозитов
type ServiceConfig struct {
	MinAmount int
	MaxAmount int
	Timeout   time.Duration
	MaxChecks int
}

// DepositService точка входа фронтенда в платежное ядро
type DepositService struct {
	cfg        ServiceConfig
	gateway    PaymentCreator
	qr         RedeemLinkExtractor
	store      *SessionStore
	reconciler *Reconciler
	ledger     DepositLedger
	limiter    RateLimiter
	publisher  EventPublisher
	metrics    Metrics
	logger     *logger.Logger
	now        func() time.Time
}

// ServiceDependencies зависимости DepositService
type ServiceDependencies struct {
	Config     ServiceConfig
	Gateway    PaymentCreator
	QR         RedeemLinkExtractor
	Store      *SessionStore
	Reconciler *Reconciler
	Ledger     DepositLedger
	Limiter    RateLimiter
	Publisher  EventPublisher
	Metrics    Metrics
	Logger     *logger.Logger
}

// NewDepositService создает сервис депозитов
func NewDepositService(deps ServiceDependencies) (*DepositService, error) {
	if deps.Gateway == nil {
		return nil, fmt.Errorf("Gateway обязателен")
	}
	if deps.Store == nil {
		return nil, fmt.Errorf("SessionStore обязателен")
	}
	if deps.Reconciler == nil {
		return nil, fmt.Errorf("Reconciler обязателен")
	}
	if deps.Config.MinAmount <= 0 || deps.Config.MaxAmount < deps.Config.MinAmount {
		return nil, fmt.Errorf("некорректный диапазон сумм %d..%d", deps.Config.MinAmount, deps.Config.MaxAmount)
	}
	if deps.Publisher == nil {
		deps.Publisher = nopPublisher{}
	}
	if deps.Metrics == nil {
		deps.Metrics = nopMetrics{}
	}
	if deps.Logger == nil {
		deps.Logger = logger.GetLogger()
	}

	return &DepositService{
		cfg:        deps.Config,
		gateway:    deps.Gateway,
		qr:         deps.QR,
		store:      deps.Store,
		reconciler: deps.Reconciler,
		ledger:     deps.Ledger,
		limiter:    deps.Limiter,
		publisher:  deps.Publisher,
		metrics:    deps.Metrics,
		logger:     deps.Logger,
		now:        time.Now,
	}, nil
}

// ParseAmount разбирает введенную пользователем сумму и проверяет диапазон
func (s *DepositService) ParseAmount(text string) (int, error) {
	amount, err := strconv.Atoi(strings.TrimSpace(text))
	if err != nil {
		return 0, ErrAmountNotNumber
	}
	if err := s.ValidateAmount(amount); err != nil {
		return 0, err
	}
	return amount, nil
}

// ValidateAmount проверяет сумму на попадание в [MinAmount, MaxAmount]
func (s *DepositService) ValidateAmount(amount int) error {
	if amount < s.cfg.MinAmount || amount > s.cfg.MaxAmount {
		return &AmountError{Amount: amount, Min: s.cfg.MinAmount, Max: s.cfg.MaxAmount}
	}
	return nil
}

// Limits возвращает допустимый диапазон сумм
func (s *DepositService) Limits() (int, int) {
	return s.cfg.MinAmount, s.cfg.MaxAmount
}

// StartDeposit создает платеж на шлюзе и запускает его сверку
func (s *DepositService) StartDeposit(ctx context.Context, userID int64, amount int) (*Deposit, error) {
	if err := s.ValidateAmount(amount); err != nil {
		s.metrics.DepositRejected("invalid_amount")
		return nil, err
	}

	if s.limiter != nil {
		allowed, err := s.limiter.Allow(ctx, userID)
		if err != nil {
			s.logger.Warn("⚠️ Ошибка проверки лимита для пользователя %d: %v", userID, err)
		} else if !allowed {
			s.metrics.DepositRejected("rate_limited")
			return nil, ErrRateLimited
		}
	}

	s.logger.Info("💰 Пользователь %d создает депозит на %d", userID, amount)

	payment, err := s.gateway.CreatePayment(ctx, amount)
	if err != nil {
		reason := "gateway"
		if errors.Is(err, ErrMissingCredentials) {
			reason = "credentials"
		}
		s.metrics.DepositRejected(reason)
		s.logger.Error("❌ Не удалось создать платеж для пользователя %d: %v", userID, err)
		return nil, fmt.Errorf("не удалось создать платеж: %w", err)
	}

	redeemURL := payment.ReceiptURL
	if s.qr != nil {
		redeemURL = s.qr.ExtractRedeemLink(ctx, payment.ReceiptURL)
	}

	session := Session{
		PaymentID:       payment.PaymentID,
		UserID:          userID,
		RequestedAmount: amount,
		CreatedAt:       s.now(),
		ReceiptURL:      payment.ReceiptURL,
		RedeemURL:       redeemURL,
	}
	if err := s.store.Insert(session); err != nil {
		return nil, fmt.Errorf("платеж %s: %w", payment.PaymentID, err)
	}

	if s.ledger != nil {
		record := DepositRecord{
			PaymentID:       session.PaymentID,
			UserID:          userID,
			RequestedAmount: amount,
			Status:          StatusPending,
			ReceiptURL:      session.ReceiptURL,
			RedeemURL:       redeemURL,
			CreatedAt:       session.CreatedAt,
		}
		if err := s.ledger.CreatePending(ctx, record); err != nil {
			s.logger.Warn("⚠️ Не удалось сохранить депозит %s: %v", session.PaymentID, err)
		}
	}

	s.metrics.DepositStarted()
	s.metrics.SessionsActive(s.store.Len())
	s.publish(ctx, EventDepositCreated, session)
	s.reconciler.Track(session.PaymentID)

	return &Deposit{
		PaymentID:  session.PaymentID,
		UserID:     userID,
		Amount:     amount,
		ReceiptURL: session.ReceiptURL,
		RedeemURL:  redeemURL,
		CreatedAt:  session.CreatedAt,
		MaxChecks:  s.cfg.MaxChecks,
		Timeout:    s.cfg.Timeout,
	}, nil
}

// QueryStatus возвращает снимок статуса платежа.
// Если сессии в памяти нет, отвечает журнал депозитов.
func (s *DepositService) QueryStatus(ctx context.Context, paymentID string) Snapshot {
	if session, ok := s.store.Get(paymentID); ok {
		return Snapshot{
			PaymentID:    paymentID,
			Status:       visibleStatus(session.Status, session.ActualAmount),
			Found:        true,
			ChecksDone:   session.ChecksDone,
			MaxChecks:    s.cfg.MaxChecks,
			Amount:       session.RequestedAmount,
			ActualAmount: session.ActualAmount,
			CreatedAt:    session.CreatedAt,
		}
	}

	if s.ledger != nil {
		record, err := s.ledger.Get(ctx, paymentID)
		if err != nil && !errors.Is(err, ErrSessionNotFound) {
			s.logger.Warn("⚠️ Не удалось получить депозит %s: %v", paymentID, err)
		}
		if record != nil {
			return Snapshot{
				PaymentID:    paymentID,
				Status:       visibleStatus(record.Status, record.ActualAmount),
				Found:        true,
				ChecksDone:   record.ChecksDone,
				MaxChecks:    s.cfg.MaxChecks,
				Amount:       record.RequestedAmount,
				ActualAmount: record.ActualAmount,
				CreatedAt:    record.CreatedAt,
			}
		}
	}

	return Snapshot{PaymentID: paymentID, MaxChecks: s.cfg.MaxChecks}
}

// visibleStatus показывает подтвержденную, но не зачисленную оплату как crediting
func visibleStatus(status Status, actualAmount *int) Status {
	if status == StatusPending && actualAmount != nil {
		return StatusCrediting
	}
	return status
}

// ActivePayments количество ожидающих оплаты депозитов пользователя
func (s *DepositService) ActivePayments(userID int64) int {
	return s.store.ActiveCount(userID)
}

// Resume подхватывает pending-депозиты из журнала после перезапуска.
// Подтвержденные оплаты зачисляются сразу. Просроченные проверяются
// еще один раз и только потом помечаются expired.
func (s *DepositService) Resume(ctx context.Context) (int, error) {
	if s.ledger == nil {
		return 0, nil
	}

	records, err := s.ledger.ListPending(ctx)
	if err != nil {
		return 0, fmt.Errorf("ошибка получения незавершенных депозитов: %w", err)
	}

	resumed := 0
	for _, record := range records {
		session := Session{
			PaymentID:       record.PaymentID,
			UserID:          record.UserID,
			RequestedAmount: record.RequestedAmount,
			CreatedAt:       record.CreatedAt,
			ChecksDone:      record.ChecksDone,
			ActualAmount:    record.ActualAmount,
			ReceiptURL:      record.ReceiptURL,
			RedeemURL:       record.RedeemURL,
		}
		if err := s.store.Insert(session); err != nil {
			continue
		}

		switch {
		case session.Confirmed():
			s.logger.Info("💳 Депозит %s оплачен до перезапуска, зачисляем", record.PaymentID)
			if !s.reconciler.HandleCompleted(ctx, record.PaymentID) && s.reconciler.isOpen(record.PaymentID) {
				s.reconciler.Track(record.PaymentID)
				resumed++
			}
		case session.Age(s.now()) > s.cfg.Timeout:
			s.reconciler.ResolveOverdue(ctx, record.PaymentID)
		default:
			s.reconciler.Track(record.PaymentID)
			resumed++
		}
	}

	if resumed > 0 {
		s.logger.Info("🔁 Возобновлен опрос %d депозитов", resumed)
	}
	s.metrics.SessionsActive(s.store.Len())
	return resumed, nil
}

func (s *DepositService) publish(ctx context.Context, eventType EventType, session Session) {
	if err := s.publisher.Publish(ctx, NewEvent(eventType, session)); err != nil {
		s.logger.Warn("⚠️ Не удалось опубликовать событие %s для %s: %v", eventType, session.PaymentID, err)
	}
}
