// internal/delivery/telegram/app/bot/handlers/types.go
package handlers

import (
	"context"

	"storefront-bot/internal/infrastructure/persistence/postgres/models"
)

// HandlerType тип хэндлера
type HandlerType string

const (
	TypeCommand  HandlerType = "command"
	TypeCallback HandlerType = "callback"
	TypeMessage  HandlerType = "message"
)

// Handler интерфейс для всех хэндлеров
type Handler interface {
	Execute(ctx context.Context, params HandlerParams) (HandlerResult, error)
	GetName() string
	GetCommand() string // команда, callback или шаг диалога
	GetType() HandlerType
}

// HandlerParams базовые параметры для всех хэндлеров
type HandlerParams struct {
	User       *models.User
	ChatID     int64
	MessageID  int64
	Text       string // текст сообщения
	Data       string // данные callback
	CallbackID string
	UpdateID   string
	Step       string // текущий шаг диалога
}

// HandlerResult базовый результат хэндлера
type HandlerResult struct {
	Message  string      `json:"message"`
	Keyboard interface{} `json:"keyboard,omitempty"`
	// NextStep шаг диалога после ответа; пустой сбрасывает диалог
	NextStep string `json:"next_step,omitempty"`
	// Alert текст всплывающего ответа на callback
	Alert     string `json:"alert,omitempty"`
	ShowAlert bool   `json:"show_alert,omitempty"`
}
