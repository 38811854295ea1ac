// internal/infrastructure/persistence/postgres/repository/users/repository.go
package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"storefront-bot/internal/infrastructure/cache/redis"
	"storefront-bot/internal/infrastructure/persistence/postgres/models"
	"storefront-bot/pkg/logger"

	"github.com/jmoiron/sqlx"
)

// ErrUserNotFound пользователь не найден
var ErrUserNotFound = errors.New("пользователь не найден")

const userCacheTTL = 10 * time.Minute

// UserRepository интерфейс для работы с данными пользователей
type UserRepository interface {
	EnsureUser(ctx context.Context, user *models.User) (*models.User, error)
	FindByTelegramID(ctx context.Context, telegramID int64) (*models.User, error)
	GetBalance(ctx context.Context, telegramID int64) (int64, error)
}

// UserRepositoryImpl реализация репозитория пользователей
type UserRepositoryImpl struct {
	db    *sqlx.DB
	cache *redis.Cache
}

// NewUserRepository создает новый репозиторий пользователей; cache может быть nil
func NewUserRepository(db *sqlx.DB, cache *redis.Cache) *UserRepositoryImpl {
	return &UserRepositoryImpl{db: db, cache: cache}
}

// EnsureUser создает пользователя при первом обращении или обновляет его имя.
// Флаг блокировки всегда читается из БД.
func (r *UserRepositoryImpl) EnsureUser(ctx context.Context, user *models.User) (*models.User, error) {
	query := `
		INSERT INTO users (telegram_id, username, first_name, last_name)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (telegram_id) DO UPDATE SET
			username = EXCLUDED.username,
			first_name = EXCLUDED.first_name,
			last_name = EXCLUDED.last_name,
			updated_at = NOW()
		RETURNING id, telegram_id, username, first_name, last_name, balance, is_banned, created_at, updated_at
	`

	var saved models.User
	err := r.db.QueryRowxContext(ctx, query,
		user.TelegramID, user.Username, user.FirstName, user.LastName,
	).StructScan(&saved)
	if err != nil {
		return nil, fmt.Errorf("ошибка сохранения пользователя %d: %w", user.TelegramID, err)
	}

	r.cacheUser(ctx, &saved)
	return &saved, nil
}

// FindByTelegramID ищет пользователя сначала в кэше, затем в БД
func (r *UserRepositoryImpl) FindByTelegramID(ctx context.Context, telegramID int64) (*models.User, error) {
	if r.cache != nil {
		var cached models.User
		if err := r.cache.GetUserByTelegramID(ctx, telegramID, &cached); err == nil {
			return &cached, nil
		}
	}

	query := `
		SELECT id, telegram_id, username, first_name, last_name, balance, is_banned, created_at, updated_at
		FROM users
		WHERE telegram_id = $1
	`

	var user models.User
	if err := r.db.GetContext(ctx, &user, query, telegramID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("ошибка получения пользователя %d: %w", telegramID, err)
	}

	r.cacheUser(ctx, &user)
	return &user, nil
}

// GetBalance возвращает баланс пользователя; неизвестный пользователь имеет баланс 0
func (r *UserRepositoryImpl) GetBalance(ctx context.Context, telegramID int64) (int64, error) {
	user, err := r.FindByTelegramID(ctx, telegramID)
	if errors.Is(err, ErrUserNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return user.Balance, nil
}

func (r *UserRepositoryImpl) cacheUser(ctx context.Context, user *models.User) {
	if r.cache == nil {
		return
	}
	if err := r.cache.SetUserByTelegramID(ctx, user, user.TelegramID, userCacheTTL); err != nil {
		logger.Debug("Не удалось закэшировать пользователя %d: %v", user.TelegramID, err)
	}
}
