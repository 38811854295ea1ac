// internal/delivery/telegram/app/bot/handlers/router/interface.go
package router

import (
	"context"

	"storefront-bot/internal/delivery/telegram/app/bot/handlers"
)

// Router интерфейс маршрутизатора хэндлеров
type Router interface {
	RegisterHandler(handler handlers.Handler)
	RegisterCallback(callback string, handler handlers.Handler)
	// RegisterPrefix callback-и вида <prefix><параметр>
	RegisterPrefix(prefix string, handler handlers.Handler)
	Handle(ctx context.Context, command string, params handlers.HandlerParams) (handlers.HandlerResult, error)
	GetCommands() []string
}
