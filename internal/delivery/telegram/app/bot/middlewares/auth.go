// internal/delivery/telegram/app/bot/middlewares/auth.go
package middlewares

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"storefront-bot/internal/delivery/telegram"
	"storefront-bot/internal/delivery/telegram/app/bot/handlers"
	"storefront-bot/internal/infrastructure/persistence/postgres/models"
	"storefront-bot/pkg/logger"
)

var (
	// ErrNoSender в обновлении нет отправителя
	ErrNoSender = errors.New("не удалось получить информацию о пользователе")
	// ErrUserBanned пользователь заблокирован администратором
	ErrUserBanned = errors.New("пользователь заблокирован")
)

// UserEnsurer находит или создает пользователя
type UserEnsurer interface {
	EnsureUser(ctx context.Context, user *models.User) (*models.User, error)
}

// AuthMiddleware - middleware, которое регистрирует пользователя и собирает параметры хэндлера
type AuthMiddleware struct {
	users UserEnsurer
}

// NewAuthMiddleware создает новый middleware аутентификации
func NewAuthMiddleware(users UserEnsurer) *AuthMiddleware {
	return &AuthMiddleware{users: users}
}

// ProcessUpdate обрабатывает обновление и создает handlers.HandlerParams
func (m *AuthMiddleware) ProcessUpdate(ctx context.Context, update *telegram.Update) (handlers.HandlerParams, error) {
	params := handlers.HandlerParams{UpdateID: strconv.Itoa(update.UpdateID)}

	var from telegram.User
	switch {
	case update.Message != nil && update.Message.From != nil:
		from = *update.Message.From
		params.ChatID = update.Message.Chat.ID
		params.MessageID = update.Message.MessageID
		params.Text = update.Message.Text
	case update.CallbackQuery != nil:
		from = update.CallbackQuery.From
		params.Data = update.CallbackQuery.Data
		params.CallbackID = update.CallbackQuery.ID
		if update.CallbackQuery.Message != nil {
			params.ChatID = update.CallbackQuery.Message.Chat.ID
			params.MessageID = update.CallbackQuery.Message.MessageID
		} else {
			params.ChatID = from.ID
		}
	default:
		return params, ErrNoSender
	}

	if from.ID == 0 || from.IsBot {
		return params, ErrNoSender
	}

	user := &models.User{
		TelegramID: from.ID,
		Username:   from.Username,
		FirstName:  from.FirstName,
		LastName:   from.LastName,
	}

	if m.users == nil {
		params.User = user
		return params, nil
	}

	saved, err := m.users.EnsureUser(ctx, user)
	if err != nil {
		logger.Error("❌ ProcessUpdate: Ошибка получения пользователя %d: %v", from.ID, err)
		return params, fmt.Errorf("ошибка получения пользователя: %w", err)
	}
	params.User = saved

	if saved.IsBanned {
		logger.Warn("🚫 Заблокированный пользователь %d пытается воспользоваться ботом", from.ID)
		return params, ErrUserBanned
	}
	return params, nil
}
