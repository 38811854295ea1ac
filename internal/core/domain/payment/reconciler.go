// internal/core/domain/payment/reconciler.go
package payment

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"storefront-bot/pkg/logger"
)

// ReconcilerConfig параметры цикла сверки
type ReconcilerConfig struct {
	CheckInterval    time.Duration
	MaxChecks        int
	CreditAttempts   int
	CreditBackoff    time.Duration
	// Сумма из чека выше этого порога считается ошибкой разбора
	MaxSettledAmount int
}

// ReconcilerDependencies зависимости цикла сверки
type ReconcilerDependencies struct {
	Config    ReconcilerConfig
	Store     *SessionStore
	Checker   StatusChecker
	Creditor  BalanceCreditor
	Ledger    DepositLedger
	Notifier  Notifier
	Publisher EventPublisher
	Metrics   Metrics
	Logger    *logger.Logger
}

// Reconciler опрашивает шлюз по каждому платежу в отдельной горутине
// и зачисляет депозит не более одного раза.
type Reconciler struct {
	cfg       ReconcilerConfig
	store     *SessionStore
	checker   StatusChecker
	creditor  BalanceCreditor
	ledger    DepositLedger
	notifier  Notifier
	publisher EventPublisher
	metrics   Metrics
	logger    *logger.Logger

	wait func(ctx context.Context, d time.Duration) bool

	mu     sync.Mutex
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewReconciler создает цикл сверки
func NewReconciler(deps ReconcilerDependencies) (*Reconciler, error) {
	if deps.Store == nil {
		return nil, fmt.Errorf("SessionStore обязателен")
	}
	if deps.Checker == nil {
		return nil, fmt.Errorf("StatusChecker обязателен")
	}
	if deps.Creditor == nil {
		return nil, fmt.Errorf("BalanceCreditor обязателен")
	}
	if deps.Config.MaxChecks <= 0 {
		return nil, fmt.Errorf("MaxChecks должен быть положительным")
	}
	if deps.Config.CreditAttempts <= 0 {
		deps.Config.CreditAttempts = 1
	}
	if deps.Notifier == nil {
		deps.Notifier = nopNotifier{}
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

	ctx, cancel := context.WithCancel(context.Background())
	return &Reconciler{
		cfg:       deps.Config,
		store:     deps.Store,
		checker:   deps.Checker,
		creditor:  deps.Creditor,
		ledger:    deps.Ledger,
		notifier:  deps.Notifier,
		publisher: deps.Publisher,
		metrics:   deps.Metrics,
		logger:    deps.Logger,
		wait:      sleepContext,
		ctx:       ctx,
		cancel:    cancel,
	}, nil
}

// WithWait подменяет ожидание между проверками (для тестов)
func (r *Reconciler) WithWait(wait func(ctx context.Context, d time.Duration) bool) *Reconciler {
	r.wait = wait
	return r
}

// Track запускает опрос платежа. Горутина живет до терминального статуса или Stop.
func (r *Reconciler) Track(paymentID string) {
	r.mu.Lock()
	ctx := r.ctx
	r.mu.Unlock()

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		r.run(ctx, paymentID)
	}()
}

// Stop прерывает все циклы и ждет их завершения
func (r *Reconciler) Stop() {
	r.mu.Lock()
	r.cancel()
	r.mu.Unlock()
	r.wg.Wait()
}

// Wait ждет завершения всех запущенных циклов
func (r *Reconciler) Wait() {
	r.wg.Wait()
}

func (r *Reconciler) run(ctx context.Context, paymentID string) {
	r.logger.Info("🔄 Начат опрос платежа %s (каждые %v, до %d проверок)",
		paymentID, r.cfg.CheckInterval, r.cfg.MaxChecks)

	for {
		session, ok := r.store.Get(paymentID)
		if !ok || (session.Status != StatusPending && session.Status != StatusCrediting) {
			r.logger.Debug("Сессия %s уже закрыта, опрос остановлен", paymentID)
			return
		}

		// Оплата подтверждена, осталось довести зачисление. Бюджет проверок здесь не действует.
		if session.Status == StatusCrediting || session.Confirmed() {
			if !r.wait(ctx, r.cfg.CheckInterval) {
				r.logger.Info("🛑 Зачисление платежа %s прервано остановкой сервиса", paymentID)
				return
			}
			r.HandleCompleted(ctx, paymentID)
			continue
		}

		if session.ChecksDone >= r.cfg.MaxChecks {
			r.HandleExpired(ctx, paymentID)
			return
		}

		if !r.wait(ctx, r.cfg.CheckInterval) {
			r.logger.Info("🛑 Опрос платежа %s прерван остановкой сервиса", paymentID)
			return
		}

		status, _ := r.checkOnce(ctx, paymentID)

		switch status {
		case CheckCompleted:
			r.HandleCompleted(ctx, paymentID)
		case CheckFailed:
			r.HandleFailed(ctx, paymentID)
			return
		}
	}
}

// checkOnce выполняет одну проверку чека и сохраняет счетчик проверок
func (r *Reconciler) checkOnce(ctx context.Context, paymentID string) (CheckStatus, bool) {
	checks, ok := r.store.RecordCheck(paymentID)
	if !ok {
		return CheckError, false
	}

	started := time.Now()
	status := r.checker.CheckStatus(ctx, paymentID)
	r.metrics.CheckDuration(time.Since(started))
	r.metrics.CheckObserved(status)

	if r.ledger != nil {
		if err := r.ledger.UpdateChecks(ctx, paymentID, checks); err != nil {
			r.logger.Warn("⚠️ Не удалось сохранить число проверок %s: %v", paymentID, err)
		}
	}

	switch status {
	case CheckError:
		// Ошибка расходует попытку из общего бюджета
		r.logger.Warn("⚠️ Ошибка проверки платежа %s (%d/%d)", paymentID, checks, r.cfg.MaxChecks)
	case CheckPending:
		r.logger.Debug("⏳ Платеж %s в ожидании (%d/%d)", paymentID, checks, r.cfg.MaxChecks)
	}
	return status, true
}

// ResolveOverdue делает последнюю проверку просроченного платежа.
// Оплаченный платеж зачисляется, отклоненный закрывается как failed, остальные истекают.
func (r *Reconciler) ResolveOverdue(ctx context.Context, paymentID string) {
	status, ok := r.checkOnce(ctx, paymentID)
	if !ok {
		return
	}

	switch status {
	case CheckCompleted:
		if !r.HandleCompleted(ctx, paymentID) && r.isOpen(paymentID) {
			r.Track(paymentID)
		}
	case CheckFailed:
		r.HandleFailed(ctx, paymentID)
	default:
		r.HandleExpired(ctx, paymentID)
	}
}

// HandleCompleted зачисляет депозит. Повторные вызовы для того же id ничего не делают.
// Возвращает true, если зачисление выполнил именно этот вызов.
// Если кредитор недоступен, сессия остается подтвержденной и зачисление повторяется позже.
func (r *Reconciler) HandleCompleted(ctx context.Context, paymentID string) bool {
	session, ok := r.store.Get(paymentID)
	if !ok || session.Status != StatusPending {
		return false
	}
	wasConfirmed := session.Confirmed()

	amount := r.settledAmount(ctx, session)
	session, won := r.store.BeginCredit(paymentID, amount)
	if !won {
		r.logger.Debug("Платеж %s уже обрабатывается другим вызовом", paymentID)
		return false
	}
	amount = *session.ActualAmount

	if !wasConfirmed && r.ledger != nil {
		if err := r.ledger.MarkConfirmed(ctx, paymentID, amount); err != nil {
			r.logger.Warn("⚠️ Не удалось сохранить подтверждение платежа %s: %v", paymentID, err)
		}
	}

	newBalance, err := r.credit(ctx, session, amount)
	if errors.Is(err, ErrAlreadyCredited) {
		r.logger.Warn("⚠️ Платеж %s уже был зачислен ранее", paymentID)
		r.store.Complete(paymentID)
		r.closeSession(paymentID)
		return false
	}
	if err != nil {
		r.store.AbortCredit(paymentID)
		r.logger.Error("❌ Не удалось зачислить платеж %s пользователю %d, повторим позже: %v",
			paymentID, session.UserID, err)
		r.metrics.DepositRejected("credit_failed")
		return false
	}

	session, _ = r.store.Complete(paymentID)
	defer r.closeSession(paymentID)

	r.logger.Info("✅ Платеж %s зачислен: +%d пользователю %d (баланс %d)",
		paymentID, amount, session.UserID, newBalance)
	r.metrics.DepositFinished(StatusCompleted, amount)

	result := CreditResult{
		PaymentID:  paymentID,
		UserID:     session.UserID,
		Amount:     amount,
		NewBalance: newBalance,
	}
	if err := r.notifier.NotifyCompleted(ctx, result); err != nil {
		r.logger.Warn("⚠️ Не удалось уведомить пользователя %d о зачислении: %v", session.UserID, err)
	}
	r.publish(ctx, EventDepositCompleted, session)
	return true
}

// settledAmount сумма к зачислению: подтвержденная ранее, из чека или запрошенная
func (r *Reconciler) settledAmount(ctx context.Context, session Session) int {
	if session.Confirmed() {
		return *session.ActualAmount
	}

	amount, found := r.checker.SettledAmount(ctx, session.PaymentID)
	if !found || amount <= 0 {
		return session.RequestedAmount
	}
	if r.cfg.MaxSettledAmount > 0 && amount > r.cfg.MaxSettledAmount {
		r.logger.Warn("⚠️ Сумма %d в чеке %s выше допустимой, зачисляем запрошенную %d",
			amount, session.PaymentID, session.RequestedAmount)
		return session.RequestedAmount
	}
	return amount
}

// HandleFailed закрывает сессию, отклоненную шлюзом
func (r *Reconciler) HandleFailed(ctx context.Context, paymentID string) bool {
	session, won := r.store.Fail(paymentID)
	if !won {
		return false
	}
	defer r.closeSession(paymentID)

	r.logger.Warn("❌ Платеж %s отклонен шлюзом", paymentID)
	r.metrics.DepositFinished(StatusFailed, 0)

	if r.ledger != nil {
		if err := r.ledger.MarkFailed(ctx, paymentID); err != nil {
			r.logger.Warn("⚠️ Не удалось отметить платеж %s как failed: %v", paymentID, err)
		}
	}
	if err := r.notifier.NotifyFailed(ctx, session); err != nil {
		r.logger.Warn("⚠️ Не удалось уведомить пользователя %d об ошибке платежа: %v", session.UserID, err)
	}
	r.publish(ctx, EventDepositFailed, session)
	return true
}

// HandleExpired закрывает сессию по исчерпанию проверок
func (r *Reconciler) HandleExpired(ctx context.Context, paymentID string) bool {
	session, won := r.store.Expire(paymentID)
	if !won {
		return false
	}
	defer r.closeSession(paymentID)

	r.logger.Warn("⏰ Время ожидания платежа %s истекло после %d проверок", paymentID, session.ChecksDone)
	r.metrics.DepositFinished(StatusExpired, 0)

	if r.ledger != nil {
		if err := r.ledger.MarkExpired(ctx, paymentID); err != nil {
			r.logger.Warn("⚠️ Не удалось отметить платеж %s как expired: %v", paymentID, err)
		}
	}
	if err := r.notifier.NotifyExpired(ctx, session); err != nil {
		r.logger.Warn("⚠️ Не удалось уведомить пользователя %d об истечении платежа: %v", session.UserID, err)
	}
	r.publish(ctx, EventDepositExpired, session)
	return true
}

func (r *Reconciler) credit(ctx context.Context, session Session, amount int) (int64, error) {
	var lastErr error
	for attempt := 1; attempt <= r.cfg.CreditAttempts; attempt++ {
		balance, err := r.creditor.CreditDeposit(ctx, session.PaymentID, session.UserID, amount)
		if err == nil || errors.Is(err, ErrAlreadyCredited) {
			return balance, err
		}
		lastErr = err
		r.logger.Warn("⚠️ Попытка %d/%d зачисления %s не удалась: %v",
			attempt, r.cfg.CreditAttempts, session.PaymentID, err)

		if attempt < r.cfg.CreditAttempts && !r.wait(ctx, r.cfg.CreditBackoff*time.Duration(attempt)) {
			break
		}
	}
	return 0, lastErr
}

func (r *Reconciler) isOpen(paymentID string) bool {
	_, ok := r.store.Get(paymentID)
	return ok
}

func (r *Reconciler) closeSession(paymentID string) {
	r.store.Remove(paymentID)
	r.metrics.SessionsActive(r.store.Len())
}

func (r *Reconciler) publish(ctx context.Context, eventType EventType, session Session) {
	if err := r.publisher.Publish(ctx, NewEvent(eventType, session)); err != nil {
		r.logger.Warn("⚠️ Не удалось опубликовать событие %s для %s: %v", eventType, session.PaymentID, err)
	}
}

func sleepContext(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
