// internal/infrastructure/persistence/postgres/repository/deposit/repository.go
package deposit

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"storefront-bot/internal/core/domain/payment"
	"storefront-bot/internal/infrastructure/cache/redis"
	"storefront-bot/internal/infrastructure/persistence/postgres/models"
	"storefront-bot/pkg/logger"

	"github.com/jmoiron/sqlx"
)

// DepositRepository журнал депозитов и атомарное зачисление на баланс
type DepositRepository interface {
	payment.DepositLedger
	payment.BalanceCreditor
}

type depositRepositoryImpl struct {
	db    *sqlx.DB
	cache *redis.Cache
}

// NewDepositRepository создает репозиторий депозитов; cache может быть nil
func NewDepositRepository(db *sqlx.DB, cache *redis.Cache) DepositRepository {
	return &depositRepositoryImpl{db: db, cache: cache}
}

const depositColumns = `payment_id, user_id, requested_amount, actual_amount, status,
	receipt_url, redeem_url, checks_done, created_at, updated_at, settled_at`

// CreatePending сохраняет новый депозит в статусе pending
func (r *depositRepositoryImpl) CreatePending(ctx context.Context, rec payment.DepositRecord) error {
	query := `
		INSERT INTO deposits (payment_id, user_id, requested_amount, status, receipt_url, redeem_url, created_at)
		VALUES ($1, $2, $3, 'pending', $4, $5, $6)
		ON CONFLICT (payment_id) DO NOTHING
	`
	_, err := r.db.ExecContext(ctx, query,
		rec.PaymentID, rec.UserID, rec.RequestedAmount, rec.ReceiptURL, rec.RedeemURL, rec.CreatedAt)
	if err != nil {
		return fmt.Errorf("ошибка сохранения депозита %s: %w", rec.PaymentID, err)
	}
	return nil
}

// UpdateChecks сохраняет число выполненных проверок
func (r *depositRepositoryImpl) UpdateChecks(ctx context.Context, paymentID string, checksDone int) error {
	query := `
		UPDATE deposits SET checks_done = $2, updated_at = NOW()
		WHERE payment_id = $1 AND status = 'pending'
	`
	if _, err := r.db.ExecContext(ctx, query, paymentID, checksDone); err != nil {
		return fmt.Errorf("ошибка обновления проверок депозита %s: %w", paymentID, err)
	}
	return nil
}

// MarkConfirmed фиксирует подтвержденную шлюзом сумму до зачисления.
// Такой депозит остается pending и при перезапуске зачисляется без повторной проверки.
func (r *depositRepositoryImpl) MarkConfirmed(ctx context.Context, paymentID string, actualAmount int) error {
	query := `
		UPDATE deposits SET actual_amount = $2, updated_at = NOW()
		WHERE payment_id = $1 AND status = 'pending'
	`
	if _, err := r.db.ExecContext(ctx, query, paymentID, actualAmount); err != nil {
		return fmt.Errorf("ошибка подтверждения депозита %s: %w", paymentID, err)
	}
	return nil
}

// MarkFailed переводит pending-депозит в failed
func (r *depositRepositoryImpl) MarkFailed(ctx context.Context, paymentID string) error {
	return r.finish(ctx, paymentID, models.DepositStatusFailed)
}

// MarkExpired переводит pending-депозит в expired
func (r *depositRepositoryImpl) MarkExpired(ctx context.Context, paymentID string) error {
	return r.finish(ctx, paymentID, models.DepositStatusExpired)
}

func (r *depositRepositoryImpl) finish(ctx context.Context, paymentID, status string) error {
	query := `
		UPDATE deposits SET status = $2, updated_at = NOW()
		WHERE payment_id = $1 AND status = 'pending'
	`
	if _, err := r.db.ExecContext(ctx, query, paymentID, status); err != nil {
		return fmt.Errorf("ошибка смены статуса депозита %s на %s: %w", paymentID, status, err)
	}
	return nil
}

// Get возвращает депозит по payment_id
func (r *depositRepositoryImpl) Get(ctx context.Context, paymentID string) (*payment.DepositRecord, error) {
	var row models.Deposit
	err := r.db.GetContext(ctx, &row, `SELECT `+depositColumns+` FROM deposits WHERE payment_id = $1`, paymentID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, payment.ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("ошибка получения депозита %s: %w", paymentID, err)
	}
	rec := toRecord(row)
	return &rec, nil
}

// ListPending возвращает все незавершенные депозиты
func (r *depositRepositoryImpl) ListPending(ctx context.Context) ([]payment.DepositRecord, error) {
	var rows []models.Deposit
	query := `SELECT ` + depositColumns + ` FROM deposits WHERE status = 'pending' ORDER BY created_at`
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("ошибка получения незавершенных депозитов: %w", err)
	}

	records := make([]payment.DepositRecord, 0, len(rows))
	for _, row := range rows {
		records = append(records, toRecord(row))
	}
	return records, nil
}

// CreditDeposit в одной транзакции переводит депозит в completed и увеличивает баланс.
// Если депозит уже не pending, возвращает payment.ErrAlreadyCredited.
func (r *depositRepositoryImpl) CreditDeposit(ctx context.Context, paymentID string, userID int64, amount int) (int64, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var credited string
	err = tx.QueryRowxContext(ctx, `
		INSERT INTO deposits (payment_id, user_id, requested_amount, actual_amount, status, settled_at)
		VALUES ($1, $2, $3, $3, 'completed', NOW())
		ON CONFLICT (payment_id) DO UPDATE SET
			status = 'completed',
			actual_amount = EXCLUDED.actual_amount,
			settled_at = NOW(),
			updated_at = NOW()
		WHERE deposits.status = 'pending'
		RETURNING payment_id
	`, paymentID, userID, amount).Scan(&credited)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, payment.ErrAlreadyCredited
	}
	if err != nil {
		return 0, fmt.Errorf("ошибка фиксации депозита %s: %w", paymentID, err)
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO users (telegram_id) VALUES ($1) ON CONFLICT (telegram_id) DO NOTHING`, userID); err != nil {
		return 0, fmt.Errorf("ошибка создания пользователя %d: %w", userID, err)
	}

	var balance int64
	err = tx.QueryRowxContext(ctx, `
		UPDATE users SET balance = balance + $1, updated_at = NOW()
		WHERE telegram_id = $2
		RETURNING balance
	`, amount, userID).Scan(&balance)
	if err != nil {
		return 0, fmt.Errorf("ошибка зачисления на баланс %d: %w", userID, err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}

	if r.cache != nil {
		if err := r.cache.DeleteUserByTelegramID(ctx, userID); err != nil {
			logger.Warn("⚠️ Не удалось сбросить кэш пользователя %d: %v", userID, err)
		}
	}

	return balance, nil
}

func toRecord(row models.Deposit) payment.DepositRecord {
	rec := payment.DepositRecord{
		PaymentID:       row.PaymentID,
		UserID:          row.UserID,
		RequestedAmount: row.RequestedAmount,
		Status:          payment.Status(row.Status),
		ReceiptURL:      row.ReceiptURL,
		RedeemURL:       row.RedeemURL,
		ChecksDone:      row.ChecksDone,
		CreatedAt:       row.CreatedAt,
		UpdatedAt:       row.UpdatedAt,
	}
	if row.ActualAmount.Valid {
		actual := int(row.ActualAmount.Int64)
		rec.ActualAmount = &actual
	}
	return rec
}
