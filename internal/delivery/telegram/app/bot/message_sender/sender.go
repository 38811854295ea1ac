// internal/delivery/telegram/app/bot/message_sender/sender.go
package message_sender

import (
	"context"
	"errors"
	"time"

	"storefront-bot/internal/delivery/telegram"
	"storefront-bot/pkg/logger"
)

// APICaller вызов метода Bot API
type APICaller interface {
	Call(ctx context.Context, method string, payload interface{}, out interface{}) error
}

// MessageSender интерфейс для отправки сообщений
type MessageSender interface {
	SendTextMessage(ctx context.Context, chatID int64, text string, keyboard interface{}) error
	EditMessageText(ctx context.Context, chatID, messageID int64, text string, keyboard interface{}) error
	AnswerCallback(ctx context.Context, callbackID, text string, showAlert bool) error
}

// MessageSenderImpl реализация MessageSender
type MessageSenderImpl struct {
	api         APICaller
	rateLimiter *RateLimiter
	enabled     bool
	parseMode   string
}

// NewMessageSender создает новый MessageSender
func NewMessageSender(api APICaller, interval time.Duration, enabled bool) *MessageSenderImpl {
	return &MessageSenderImpl{
		api:         api,
		rateLimiter: NewRateLimiter(interval),
		enabled:     enabled,
		parseMode:   "Markdown",
	}
}

// SendTextMessage отправляет текстовое сообщение
func (ms *MessageSenderImpl) SendTextMessage(ctx context.Context, chatID int64, text string, keyboard interface{}) error {
	request := map[string]interface{}{
		"chat_id":                  chatID,
		"text":                     text,
		"parse_mode":               ms.parseMode,
		"disable_web_page_preview": true,
	}
	if keyboard != nil {
		request["reply_markup"] = keyboard
	}
	return ms.send(ctx, "sendMessage", request)
}

// EditMessageText редактирует текст сообщения
func (ms *MessageSenderImpl) EditMessageText(ctx context.Context, chatID, messageID int64, text string, keyboard interface{}) error {
	request := map[string]interface{}{
		"chat_id":    chatID,
		"message_id": messageID,
		"text":       text,
		"parse_mode": ms.parseMode,
	}
	if keyboard != nil {
		request["reply_markup"] = keyboard
	}
	return ms.send(ctx, "editMessageText", request)
}

// AnswerCallback отвечает на callback запрос
func (ms *MessageSenderImpl) AnswerCallback(ctx context.Context, callbackID, text string, showAlert bool) error {
	request := map[string]interface{}{
		"callback_query_id": callbackID,
		"text":              text,
		"show_alert":        showAlert,
	}
	return ms.send(ctx, "answerCallbackQuery", request)
}

// send выполняет запрос с учетом rate limit; на 429 повторяет один раз после retry_after
func (ms *MessageSenderImpl) send(ctx context.Context, method string, request map[string]interface{}) error {
	if !ms.enabled {
		logger.Debug("⚠️ Telegram отключен, пропуск %s", method)
		return nil
	}

	if err := ms.rateLimiter.Wait(ctx); err != nil {
		return err
	}

	err := ms.api.Call(ctx, method, request, nil)

	var apiErr *telegram.APIError
	if errors.As(err, &apiErr) && apiErr.TooManyRequests() {
		retryAfter := time.Duration(apiErr.RetryAfter) * time.Second
		if retryAfter <= 0 {
			retryAfter = 5 * time.Second
		}
		logger.Warn("⚠️ Telegram API rate limit, ждем %v", retryAfter)

		timer := time.NewTimer(retryAfter)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}
		err = ms.api.Call(ctx, method, request, nil)
	}

	if err != nil {
		logger.Error("❌ Ошибка %s: %v", method, err)
	}
	return err
}
