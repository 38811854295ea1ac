// internal/delivery/telegram/app/bot/handlers/router/router.go
package router

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"storefront-bot/internal/delivery/telegram/app/bot/handlers"
	"storefront-bot/pkg/logger"
)

// ErrHandlerNotFound для команды нет хэндлера
var ErrHandlerNotFound = errors.New("хэндлер не найден")

type prefixRoute struct {
	prefix  string
	handler handlers.Handler
}

// routerImpl реализация Router
type routerImpl struct {
	handlers map[string]handlers.Handler // ключ: команда/callback/шаг
	prefixes []prefixRoute
}

// NewRouter создает новый роутер
func NewRouter() Router {
	return &routerImpl{
		handlers: make(map[string]handlers.Handler),
	}
}

// RegisterHandler регистрирует хэндлер (использует GetCommand())
func (r *routerImpl) RegisterHandler(handler handlers.Handler) {
	command := handler.GetCommand()

	// Для команд добавляем префикс /
	if handler.GetType() == handlers.TypeCommand && !strings.HasPrefix(command, "/") {
		command = "/" + command
	}

	r.handlers[command] = handler
	logger.Debug("Зарегистрирован хэндлер: %s для %s: %s",
		handler.GetName(), handler.GetType(), command)
}

// RegisterCallback регистрирует callback (без префикса /)
func (r *routerImpl) RegisterCallback(callback string, handler handlers.Handler) {
	callback = strings.TrimPrefix(callback, "/")
	r.handlers[callback] = handler
	logger.Debug("Зарегистрирован callback: %s → %s", callback, handler.GetName())
}

// RegisterPrefix регистрирует обработчик callback-ов вида <prefix><параметр>
func (r *routerImpl) RegisterPrefix(prefix string, handler handlers.Handler) {
	r.prefixes = append(r.prefixes, prefixRoute{prefix: prefix, handler: handler})
	// длинные префиксы проверяются первыми
	sort.SliceStable(r.prefixes, func(i, j int) bool {
		return len(r.prefixes[i].prefix) > len(r.prefixes[j].prefix)
	})
	logger.Debug("Зарегистрирован префикс: %s → %s", prefix, handler.GetName())
}

// Handle обрабатывает команду/callback/шаг диалога
func (r *routerImpl) Handle(ctx context.Context, command string, params handlers.HandlerParams) (handlers.HandlerResult, error) {
	command = normalizeCommand(command)

	if handler, exists := r.handlers[command]; exists {
		return r.executeHandler(ctx, handler, command, params)
	}

	for _, route := range r.prefixes {
		if strings.HasPrefix(command, route.prefix) && len(command) > len(route.prefix) {
			params.Data = command
			logger.Debug("Перенаправление по префиксу '%s' в %s", command, route.handler.GetName())
			return r.executeHandler(ctx, route.handler, command, params)
		}
	}

	return handlers.HandlerResult{}, fmt.Errorf("%w: '%s'", ErrHandlerNotFound, command)
}

// executeHandler выполняет обработчик
func (r *routerImpl) executeHandler(ctx context.Context, handler handlers.Handler, command string, params handlers.HandlerParams) (handlers.HandlerResult, error) {
	logger.Debug("Вызов хэндлера: %s для: %s", handler.GetName(), command)

	result, err := handler.Execute(ctx, params)
	if err != nil {
		logger.Error("Ошибка в хэндлере %s для %s: %v", handler.GetName(), command, err)
		return handlers.HandlerResult{}, err
	}
	return result, nil
}

// GetCommands возвращает список всех зарегистрированных ключей
func (r *routerImpl) GetCommands() []string {
	commands := make([]string, 0, len(r.handlers))
	for cmd := range r.handlers {
		commands = append(commands, cmd)
	}
	sort.Strings(commands)
	return commands
}

// normalizeCommand отрезает аргументы и @botname у команд
func normalizeCommand(command string) string {
	command = strings.TrimSpace(command)
	if !strings.HasPrefix(command, "/") {
		return command
	}
	if i := strings.IndexAny(command, " \n"); i >= 0 {
		command = command[:i]
	}
	if i := strings.Index(command, "@"); i >= 0 {
		command = command[:i]
	}
	return command
}

var _ Router = (*routerImpl)(nil)
