// internal/delivery/telegram/app/bot/handlers/router/router_test.go
package router

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront-bot/internal/delivery/telegram/app/bot/handlers"
)

type echoHandler struct {
	name    string
	command string
	kind    handlers.HandlerType
}

func (h echoHandler) Execute(_ context.Context, params handlers.HandlerParams) (handlers.HandlerResult, error) {
	return handlers.HandlerResult{Message: h.name + ":" + params.Data}, nil
}

func (h echoHandler) GetName() string               { return h.name }
func (h echoHandler) GetCommand() string            { return h.command }
func (h echoHandler) GetType() handlers.HandlerType { return h.kind }

func TestRouter_Handle(t *testing.T) {
	r := NewRouter()
	r.RegisterHandler(echoHandler{name: "start", command: "start", kind: handlers.TypeCommand})
	r.RegisterHandler(echoHandler{name: "amount", command: "await_amount", kind: handlers.TypeMessage})
	r.RegisterCallback("/profile", echoHandler{name: "profile"})
	r.RegisterPrefix("check_", echoHandler{name: "short"})
	r.RegisterPrefix("check_payment_", echoHandler{name: "check"})

	tests := []struct {
		command string
		want    string
	}{
		{command: "/start", want: "start:"},
		{command: "/start@storefront_bot", want: "start:"},
		{command: "/start ref_123", want: "start:"},
		{command: "await_amount", want: "amount:"},
		{command: "profile", want: "profile:"},
		{command: "check_payment_abc123", want: "check:check_payment_abc123"},
		{command: "check_other", want: "short:check_other"},
	}

	for _, tt := range tests {
		t.Run(tt.command, func(t *testing.T) {
			result, err := r.Handle(context.Background(), tt.command, handlers.HandlerParams{})
			require.NoError(t, err)
			assert.Equal(t, tt.want, result.Message)
		})
	}
}

func TestRouter_NotFound(t *testing.T) {
	r := NewRouter()
	r.RegisterPrefix("check_payment_", echoHandler{name: "check"})

	_, err := r.Handle(context.Background(), "/unknown", handlers.HandlerParams{})
	assert.ErrorIs(t, err, ErrHandlerNotFound)

	// Префикс без параметра не считается совпадением
	_, err = r.Handle(context.Background(), "check_payment_", handlers.HandlerParams{})
	assert.ErrorIs(t, err, ErrHandlerNotFound)
}

func TestRouter_GetCommands(t *testing.T) {
	r := NewRouter()
	r.RegisterHandler(echoHandler{name: "help", command: "/help", kind: handlers.TypeCommand})
	r.RegisterCallback("add_balance", echoHandler{name: "add"})

	assert.Equal(t, []string{"/help", "add_balance"}, r.GetCommands())
}
