// internal/core/domain/payment/reconciler_test.go
package payment

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type reconcilerFixture struct {
	store      *SessionStore
	checker    *fakeChecker
	creditor   *fakeCreditor
	notifier   *fakeNotifier
	ledger     *fakeLedger
	publisher  *fakePublisher
	reconciler *Reconciler
}

func newReconcilerFixture(t *testing.T, checker *fakeChecker, maxChecks int) *reconcilerFixture {
	t.Helper()
	return newReconcilerFixtureWith(t, checker, maxChecks, newFakeLedger(), newFakeCreditor())
}

// newReconcilerFixtureWith собирает цикл сверки поверх существующих журнала и кредитора,
// как после перезапуска процесса
func newReconcilerFixtureWith(t *testing.T, checker *fakeChecker, maxChecks int, ledger *fakeLedger, creditor *fakeCreditor) *reconcilerFixture {
	t.Helper()

	f := &reconcilerFixture{
		store:     NewSessionStore(),
		checker:   checker,
		creditor:  creditor,
		notifier:  &fakeNotifier{},
		ledger:    ledger,
		publisher: &fakePublisher{},
	}

	r, err := NewReconciler(ReconcilerDependencies{
		Config: ReconcilerConfig{
			CheckInterval:    30 * time.Second,
			MaxChecks:        maxChecks,
			CreditAttempts:   3,
			CreditBackoff:    2 * time.Second,
			MaxSettledAmount: 189000,
		},
		Store:     f.store,
		Checker:   checker,
		Creditor:  f.creditor,
		Ledger:    f.ledger,
		Notifier:  f.notifier,
		Publisher: f.publisher,
		Logger:    testLogger,
	})
	require.NoError(t, err)
	f.reconciler = r.WithWait(noWait)
	return f
}

func (f *reconcilerFixture) insert(t *testing.T, paymentID string, userID int64, amount int) {
	t.Helper()
	require.NoError(t, f.store.Insert(Session{PaymentID: paymentID, UserID: userID, RequestedAmount: amount}))
	require.NoError(t, f.ledger.CreatePending(context.Background(), DepositRecord{
		PaymentID: paymentID, UserID: userID, RequestedAmount: amount,
	}))
}

func TestReconciler_CreditsOnceAfterPendingChecks(t *testing.T) {
	checker := &fakeChecker{
		statuses: []CheckStatus{CheckPending, CheckPending, CheckCompleted},
		amount:   500,
		found:    true,
	}
	f := newReconcilerFixture(t, checker, 30)
	f.insert(t, "abc123", 42, 500)

	f.reconciler.Track("abc123")
	f.reconciler.Wait()

	assert.Equal(t, 3, checker.Calls())
	assert.Equal(t, 1, f.creditor.Calls())
	assert.Equal(t, 500, f.creditor.credited["abc123"])

	require.Len(t, f.notifier.completed, 1)
	assert.Equal(t, CreditResult{PaymentID: "abc123", UserID: 42, Amount: 500, NewBalance: 500}, f.notifier.completed[0])

	_, ok := f.store.Get("abc123")
	assert.False(t, ok)
	assert.Equal(t, []EventType{EventDepositCompleted}, f.publisher.Types())
}

func TestReconciler_UsesSettledAmountFromReceipt(t *testing.T) {
	checker := &fakeChecker{statuses: []CheckStatus{CheckCompleted}, amount: 480, found: true}
	f := newReconcilerFixture(t, checker, 30)
	f.insert(t, "p1", 7, 500)

	f.reconciler.Track("p1")
	f.reconciler.Wait()

	assert.Equal(t, 480, f.creditor.credited["p1"])
}

func TestReconciler_FallsBackToRequestedAmount(t *testing.T) {
	checker := &fakeChecker{statuses: []CheckStatus{CheckCompleted}, found: false}
	f := newReconcilerFixture(t, checker, 30)
	f.insert(t, "p1", 7, 500)

	f.reconciler.Track("p1")
	f.reconciler.Wait()

	assert.Equal(t, 500, f.creditor.credited["p1"])
}

func TestReconciler_HandleCompletedIsIdempotent(t *testing.T) {
	checker := &fakeChecker{amount: 500, found: true}
	f := newReconcilerFixture(t, checker, 30)
	f.insert(t, "p1", 7, 500)

	var wins int32
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if f.reconciler.HandleCompleted(context.Background(), "p1") {
				atomic.AddInt32(&wins, 1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), wins)
	assert.Equal(t, 1, f.creditor.Calls())
	assert.Len(t, f.notifier.completed, 1)
	assert.False(t, f.reconciler.HandleCompleted(context.Background(), "p1"))
}

func TestReconciler_AlreadyCreditedIsNotNotified(t *testing.T) {
	checker := &fakeChecker{amount: 500, found: true}
	f := newReconcilerFixture(t, checker, 30)
	f.creditor.credited["p1"] = 500
	f.insert(t, "p1", 7, 500)

	assert.False(t, f.reconciler.HandleCompleted(context.Background(), "p1"))
	assert.Empty(t, f.notifier.completed)

	_, ok := f.store.Get("p1")
	assert.False(t, ok)
}

func TestReconciler_ExpiresAfterMaxChecks(t *testing.T) {
	checker := &fakeChecker{}
	f := newReconcilerFixture(t, checker, 3)
	f.insert(t, "p1", 7, 500)

	f.reconciler.Track("p1")
	f.reconciler.Wait()

	assert.Equal(t, 3, checker.Calls())
	assert.Zero(t, f.creditor.Calls())
	require.Len(t, f.notifier.expired, 1)
	assert.Equal(t, 3, f.notifier.expired[0].ChecksDone)
	assert.Equal(t, StatusExpired, f.ledger.Status("p1"))
	assert.Equal(t, []EventType{EventDepositExpired}, f.publisher.Types())
}

func TestReconciler_CheckErrorConsumesAttempt(t *testing.T) {
	checker := &fakeChecker{statuses: []CheckStatus{CheckError, CheckError}}
	f := newReconcilerFixture(t, checker, 2)
	f.insert(t, "p1", 7, 500)

	f.reconciler.Track("p1")
	f.reconciler.Wait()

	assert.Equal(t, 2, checker.Calls())
	assert.Len(t, f.notifier.expired, 1)
}

func TestReconciler_FailedPayment(t *testing.T) {
	checker := &fakeChecker{statuses: []CheckStatus{CheckPending, CheckFailed}}
	f := newReconcilerFixture(t, checker, 30)
	f.insert(t, "p1", 7, 500)

	f.reconciler.Track("p1")
	f.reconciler.Wait()

	assert.Zero(t, f.creditor.Calls())
	assert.Len(t, f.notifier.failed, 1)
	assert.Equal(t, StatusFailed, f.ledger.Status("p1"))

	_, ok := f.store.Get("p1")
	assert.False(t, ok)
}

func TestReconciler_RetriesCredit(t *testing.T) {
	checker := &fakeChecker{statuses: []CheckStatus{CheckCompleted}, amount: 500, found: true}
	f := newReconcilerFixture(t, checker, 30)
	f.creditor.failTimes = 2
	f.insert(t, "p1", 7, 500)

	f.reconciler.Track("p1")
	f.reconciler.Wait()

	assert.Equal(t, 3, f.creditor.Calls())
	assert.Len(t, f.notifier.completed, 1)
}

func TestReconciler_KeepsCreditingAfterAttemptsExhausted(t *testing.T) {
	checker := &fakeChecker{statuses: []CheckStatus{CheckCompleted}, amount: 500, found: true}
	f := newReconcilerFixture(t, checker, 30)
	f.creditor.failTimes = 7
	f.insert(t, "p1", 7, 500)

	f.reconciler.Track("p1")
	f.reconciler.Wait()

	assert.Equal(t, 1, checker.Calls())
	assert.Equal(t, 8, f.creditor.Calls())
	assert.Equal(t, 500, f.creditor.credited["p1"])
	require.Len(t, f.notifier.completed, 1)
	assert.Equal(t, []EventType{EventDepositCompleted}, f.publisher.Types())

	confirmed, ok := f.ledger.Confirmed("p1")
	require.True(t, ok)
	assert.Equal(t, 500, confirmed)

	_, ok = f.store.Get("p1")
	assert.False(t, ok)
}

func TestReconciler_FailedCreditLeavesSessionConfirmed(t *testing.T) {
	checker := &fakeChecker{statuses: []CheckStatus{CheckCompleted}, amount: 480, found: true}
	f := newReconcilerFixture(t, checker, 1)
	f.reconciler.WithWait(waitTimes(1))
	f.creditor.failTimes = 100
	f.insert(t, "p1", 7, 500)

	f.reconciler.Track("p1")
	f.reconciler.Wait()

	assert.Equal(t, 1, f.creditor.Calls())
	assert.Empty(t, f.notifier.completed)
	assert.Empty(t, f.notifier.expired)

	session, ok := f.store.Get("p1")
	require.True(t, ok)
	assert.Equal(t, StatusPending, session.Status)
	require.True(t, session.Confirmed())
	assert.Equal(t, 480, *session.ActualAmount)

	// Подтвержденную оплату нельзя закрыть как просроченную
	assert.False(t, f.reconciler.HandleExpired(context.Background(), "p1"))
	assert.Equal(t, StatusPending, f.ledger.Status("p1"))

	// Повторное зачисление берет зафиксированную сумму, а не новую из чека
	checker.amount = 999
	f.creditor.failTimes = 0
	assert.True(t, f.reconciler.HandleCompleted(context.Background(), "p1"))
	assert.Equal(t, 480, f.creditor.credited["p1"])
}

func TestReconciler_ImplausibleSettledAmountFallsBack(t *testing.T) {
	checker := &fakeChecker{statuses: []CheckStatus{CheckCompleted}, amount: 15102024500, found: true}
	f := newReconcilerFixture(t, checker, 30)
	f.insert(t, "p1", 7, 500)

	f.reconciler.Track("p1")
	f.reconciler.Wait()

	assert.Equal(t, 500, f.creditor.credited["p1"])
	require.Len(t, f.notifier.completed, 1)
	assert.Equal(t, 500, f.notifier.completed[0].Amount)
}

func TestReconciler_ResolveOverdue(t *testing.T) {
	checker := &fakeChecker{byID: map[string][]CheckStatus{
		"paid":     {CheckCompleted},
		"rejected": {CheckFailed},
		"silent":   {CheckPending},
		"broken":   {CheckError},
	}}
	f := newReconcilerFixture(t, checker, 30)
	f.insert(t, "paid", 1, 300)
	f.insert(t, "rejected", 2, 300)
	f.insert(t, "silent", 3, 300)
	f.insert(t, "broken", 4, 300)

	ctx := context.Background()
	for _, id := range []string{"paid", "rejected", "silent", "broken"} {
		f.reconciler.ResolveOverdue(ctx, id)
		assert.Equal(t, 1, checker.CallsFor(id), id)
	}
	f.reconciler.Wait()

	assert.Equal(t, 300, f.creditor.credited["paid"])
	assert.Equal(t, StatusFailed, f.ledger.Status("rejected"))
	assert.Equal(t, StatusExpired, f.ledger.Status("silent"))
	assert.Equal(t, StatusExpired, f.ledger.Status("broken"))
	assert.Len(t, f.notifier.completed, 1)
	assert.Len(t, f.notifier.failed, 1)
	assert.Len(t, f.notifier.expired, 2)
	assert.Zero(t, f.store.Len())
}

func TestReconciler_StopInterruptsPolling(t *testing.T) {
	checker := &fakeChecker{}
	f := newReconcilerFixture(t, checker, 30)
	f.reconciler.WithWait(sleepContext)
	f.insert(t, "p1", 7, 500)

	f.reconciler.Track("p1")

	done := make(chan struct{})
	go func() {
		f.reconciler.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("reconciler did not stop")
	}

	assert.Zero(t, checker.Calls())
	session, ok := f.store.Get("p1")
	require.True(t, ok)
	assert.Equal(t, StatusPending, session.Status)
}

func TestNewReconciler_RequiresDependencies(t *testing.T) {
	_, err := NewReconciler(ReconcilerDependencies{Config: ReconcilerConfig{MaxChecks: 1}})
	assert.Error(t, err)

	_, err = NewReconciler(ReconcilerDependencies{
		Config:   ReconcilerConfig{MaxChecks: 0},
		Store:    NewSessionStore(),
		Checker:  &fakeChecker{},
		Creditor: newFakeCreditor(),
	})
	assert.Error(t, err)
}
