// internal/infrastructure/persistence/postgres/models/deposit.go
package models

import (
	"database/sql"
	"time"
)

// Статусы депозита в таблице deposits
const (
	DepositStatusPending   = "pending"
	DepositStatusCompleted = "completed"
	DepositStatusFailed    = "failed"
	DepositStatusExpired   = "expired"
)

// Deposit строка таблицы deposits
type Deposit struct {
	PaymentID       string        `db:"payment_id"`
	UserID          int64         `db:"user_id"`
	RequestedAmount int           `db:"requested_amount"`
	ActualAmount    sql.NullInt64 `db:"actual_amount"`
	Status          string        `db:"status"`
	ReceiptURL      string        `db:"receipt_url"`
	RedeemURL       string        `db:"redeem_url"`
	ChecksDone      int           `db:"checks_done"`
	CreatedAt       time.Time     `db:"created_at"`
	UpdatedAt       time.Time     `db:"updated_at"`
	SettledAt       sql.NullTime  `db:"settled_at"`
}
