// internal/core/domain/payment/fakes_test.go
package payment

import (
	"context"
	"errors"
	"sync"
	"time"

	"storefront-bot/pkg/logger"
)

var testLogger = logger.NewNop()

func noWait(ctx context.Context, _ time.Duration) bool {
	return ctx.Err() == nil
}

// waitTimes разрешает n ожиданий, после чего ведет себя как остановленный сервис
func waitTimes(n int) func(ctx context.Context, d time.Duration) bool {
	var mu sync.Mutex
	return func(ctx context.Context, _ time.Duration) bool {
		mu.Lock()
		defer mu.Unlock()
		if n <= 0 || ctx.Err() != nil {
			return false
		}
		n--
		return true
	}
}

type fakeChecker struct {
	mu       sync.Mutex
	statuses []CheckStatus
	byID     map[string][]CheckStatus
	idCalls  map[string]int
	calls    int
	amount   int
	found    bool
}

func (c *fakeChecker) CheckStatus(_ context.Context, paymentID string) CheckStatus {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	if list, ok := c.byID[paymentID]; ok {
		if c.idCalls == nil {
			c.idCalls = map[string]int{}
		}
		n := c.idCalls[paymentID]
		c.idCalls[paymentID]++
		if n < len(list) {
			return list[n]
		}
		return CheckPending
	}
	if c.calls > len(c.statuses) {
		return CheckPending
	}
	return c.statuses[c.calls-1]
}

func (c *fakeChecker) SettledAmount(_ context.Context, _ string) (int, bool) {
	return c.amount, c.found
}

func (c *fakeChecker) Calls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}

func (c *fakeChecker) CallsFor(paymentID string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.idCalls[paymentID]
}

type fakeCreditor struct {
	mu        sync.Mutex
	credited  map[string]int
	balances  map[int64]int64
	calls     int
	failTimes int
}

func newFakeCreditor() *fakeCreditor {
	return &fakeCreditor{credited: map[string]int{}, balances: map[int64]int64{}}
}

func (c *fakeCreditor) CreditDeposit(_ context.Context, paymentID string, userID int64, amount int) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	if c.failTimes > 0 {
		c.failTimes--
		return 0, errors.New("connection reset")
	}
	if _, ok := c.credited[paymentID]; ok {
		return 0, ErrAlreadyCredited
	}
	c.credited[paymentID] = amount
	c.balances[userID] += int64(amount)
	return c.balances[userID], nil
}

func (c *fakeCreditor) Credited(paymentID string) (int, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	amount, ok := c.credited[paymentID]
	return amount, ok
}

func (c *fakeCreditor) Calls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}

type fakeNotifier struct {
	mu        sync.Mutex
	completed []CreditResult
	failed    []Session
	expired   []Session
}

func (n *fakeNotifier) NotifyCompleted(_ context.Context, result CreditResult) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.completed = append(n.completed, result)
	return nil
}

func (n *fakeNotifier) NotifyFailed(_ context.Context, session Session) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.failed = append(n.failed, session)
	return nil
}

func (n *fakeNotifier) NotifyExpired(_ context.Context, session Session) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.expired = append(n.expired, session)
	return nil
}

type fakePublisher struct {
	mu     sync.Mutex
	events []Event
}

func (p *fakePublisher) Publish(_ context.Context, event Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *fakePublisher) Types() []EventType {
	p.mu.Lock()
	defer p.mu.Unlock()
	types := make([]EventType, 0, len(p.events))
	for _, e := range p.events {
		types = append(types, e.Type)
	}
	return types
}

type fakeLedger struct {
	mu      sync.Mutex
	records map[string]*DepositRecord
}

func newFakeLedger(records ...DepositRecord) *fakeLedger {
	l := &fakeLedger{records: map[string]*DepositRecord{}}
	for i := range records {
		rec := records[i]
		l.records[rec.PaymentID] = &rec
	}
	return l
}

func (l *fakeLedger) CreatePending(_ context.Context, rec DepositRecord) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.records[rec.PaymentID]; !ok {
		rec.Status = StatusPending
		l.records[rec.PaymentID] = &rec
	}
	return nil
}

func (l *fakeLedger) UpdateChecks(_ context.Context, paymentID string, checksDone int) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if rec, ok := l.records[paymentID]; ok {
		rec.ChecksDone = checksDone
	}
	return nil
}

func (l *fakeLedger) MarkConfirmed(_ context.Context, paymentID string, actualAmount int) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if rec, ok := l.records[paymentID]; ok && rec.Status == StatusPending {
		rec.ActualAmount = &actualAmount
	}
	return nil
}

func (l *fakeLedger) MarkFailed(_ context.Context, paymentID string) error {
	return l.setStatus(paymentID, StatusFailed)
}

func (l *fakeLedger) MarkExpired(_ context.Context, paymentID string) error {
	return l.setStatus(paymentID, StatusExpired)
}

func (l *fakeLedger) setStatus(paymentID string, status Status) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if rec, ok := l.records[paymentID]; ok && rec.Status == StatusPending {
		rec.Status = status
	}
	return nil
}

func (l *fakeLedger) Get(_ context.Context, paymentID string) (*DepositRecord, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	rec, ok := l.records[paymentID]
	if !ok {
		return nil, ErrSessionNotFound
	}
	copied := *rec
	return &copied, nil
}

func (l *fakeLedger) ListPending(_ context.Context) ([]DepositRecord, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []DepositRecord
	for _, rec := range l.records {
		if rec.Status == StatusPending {
			out = append(out, *rec)
		}
	}
	return out, nil
}

func (l *fakeLedger) Confirmed(paymentID string) (int, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if rec, ok := l.records[paymentID]; ok && rec.ActualAmount != nil {
		return *rec.ActualAmount, true
	}
	return 0, false
}

func (l *fakeLedger) Status(paymentID string) Status {
	l.mu.Lock()
	defer l.mu.Unlock()
	if rec, ok := l.records[paymentID]; ok {
		return rec.Status
	}
	return ""
}

type fakeGateway struct {
	mu      sync.Mutex
	payment *GatewayPayment
	err     error
	calls   int
}

func (g *fakeGateway) CreatePayment(_ context.Context, _ int) (*GatewayPayment, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls++
	if g.err != nil {
		return nil, g.err
	}
	return g.payment, nil
}

type fakeRedeem struct{ link string }

func (f fakeRedeem) ExtractRedeemLink(_ context.Context, receiptURL string) string {
	if f.link == "" {
		return receiptURL
	}
	return f.link
}

type fakeLimiter struct{ allow bool }

func (f fakeLimiter) Allow(context.Context, int64) (bool, error) { return f.allow, nil }

type fakeRenderer struct {
	markup string
	err    error
	urls   []string
}

func (r *fakeRenderer) Render(_ context.Context, url string) (string, error) {
	r.urls = append(r.urls, url)
	return r.markup, r.err
}
