// internal/core/domain/payment/types.go
package payment

import (
	"errors"
	"time"
)

// Status состояние платежной сессии
type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
	StatusExpired   Status = "expired"
	// StatusCrediting оплата подтверждена шлюзом, зачисление на баланс еще не завершено
	StatusCrediting Status = "crediting"
)

// CheckStatus результат одной проверки страницы чека.
// CheckError не является состоянием сессии, сессия остается pending.
type CheckStatus string

const (
	CheckPending   CheckStatus = "pending"
	CheckCompleted CheckStatus = "completed"
	CheckFailed    CheckStatus = "failed"
	CheckError     CheckStatus = "error"
)

var (
	// ErrMissingCredentials нет cookie sid или csrf_token для шлюза
	ErrMissingCredentials = errors.New("не заданы учетные данные платежного шлюза")
	// ErrGatewayRejected шлюз не принял запрос на депозит
	ErrGatewayRejected = errors.New("шлюз отклонил запрос на депозит")
	// ErrInvalidAmount сумма вне допустимого диапазона
	ErrInvalidAmount = errors.New("недопустимая сумма депозита")
	// ErrAmountNotNumber сумма не является целым числом
	ErrAmountNotNumber = errors.New("сумма должна быть целым числом")
	// ErrSessionExists сессия с таким payment_id уже существует или была завершена
	ErrSessionExists = errors.New("платежная сессия уже существует")
	// ErrSessionNotFound сессия не найдена
	ErrSessionNotFound = errors.New("платежная сессия не найдена")
	// ErrAlreadyCredited депозит уже был зачислен
	ErrAlreadyCredited = errors.New("депозит уже зачислен")
	// ErrRateLimited слишком много депозитов за короткое время
	ErrRateLimited = errors.New("слишком много запросов на пополнение")
)

// AmountError подробная ошибка проверки суммы
type AmountError struct {
	Amount int
	Min    int
	Max    int
}

func (e *AmountError) Error() string {
	if e.Amount < e.Min {
		return "сумма меньше минимальной"
	}
	return "сумма больше максимальной"
}

func (e *AmountError) Unwrap() error { return ErrInvalidAmount }

// TooSmall true если сумма меньше минимальной
func (e *AmountError) TooSmall() bool { return e.Amount < e.Min }

// Session - платежная сессия в памяти
type Session struct {
	PaymentID       string
	UserID          int64
	RequestedAmount int
	Status          Status
	CreatedAt       time.Time
	LastCheck       time.Time
	ChecksDone      int
	ActualAmount    *int
	ReceiptURL      string
	RedeemURL       string
}

// Confirmed true если шлюз уже подтвердил оплату и сумма зафиксирована
func (s Session) Confirmed() bool {
	return s.ActualAmount != nil
}

// Age возраст сессии на момент now
func (s Session) Age(now time.Time) time.Duration {
	return now.Sub(s.CreatedAt)
}

// GatewayPayment результат создания платежа на шлюзе
type GatewayPayment struct {
	PaymentID  string
	ReceiptURL string
}

// Deposit принятый к оплате депозит, возвращается фронтенду
type Deposit struct {
	PaymentID  string
	UserID     int64
	Amount     int
	ReceiptURL string
	RedeemURL  string
	CreatedAt  time.Time
	MaxChecks  int
	Timeout    time.Duration
}

// Snapshot ответ на запрос статуса платежа
type Snapshot struct {
	PaymentID    string
	Status       Status
	Found        bool
	ChecksDone   int
	MaxChecks    int
	Amount       int
	ActualAmount *int
	CreatedAt    time.Time
}

// CreditResult результат зачисления
type CreditResult struct {
	PaymentID  string
	UserID     int64
	Amount     int
	NewBalance int64
}

// DepositRecord запись депозита в долговременном хранилище
type DepositRecord struct {
	PaymentID       string
	UserID          int64
	RequestedAmount int
	ActualAmount    *int
	Status          Status
	ReceiptURL      string
	RedeemURL       string
	ChecksDone      int
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
