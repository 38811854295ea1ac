// internal/delivery/telegram/app/bot/message_sender/sender_test.go
package message_sender

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront-bot/internal/delivery/telegram"
)

type fakeAPI struct {
	errs    []error
	methods []string
	last    map[string]interface{}
}

func (f *fakeAPI) Call(_ context.Context, method string, payload interface{}, _ interface{}) error {
	f.methods = append(f.methods, method)
	f.last, _ = payload.(map[string]interface{})
	if len(f.errs) == 0 {
		return nil
	}
	err := f.errs[0]
	f.errs = f.errs[1:]
	return err
}

func TestMessageSender_SendTextMessage(t *testing.T) {
	api := &fakeAPI{}
	sender := NewMessageSender(api, 0, true)

	keyboard := telegram.InlineKeyboardMarkup{}
	require.NoError(t, sender.SendTextMessage(context.Background(), 42, "привет", keyboard))

	assert.Equal(t, []string{"sendMessage"}, api.methods)
	assert.Equal(t, int64(42), api.last["chat_id"])
	assert.Equal(t, "Markdown", api.last["parse_mode"])
	assert.Equal(t, keyboard, api.last["reply_markup"])
}

func TestMessageSender_RetriesAfterTooManyRequests(t *testing.T) {
	api := &fakeAPI{errs: []error{&telegram.APIError{Method: "sendMessage", Code: 429, RetryAfter: 0}}}
	sender := NewMessageSender(api, 0, true)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// Отмененный контекст прерывает ожидание retry_after
	err := sender.AnswerCallback(ctx, "cb", "ok", false)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestMessageSender_ReturnsAPIError(t *testing.T) {
	apiErr := &telegram.APIError{Method: "sendMessage", Code: 403, Description: "Forbidden: bot was blocked by the user"}
	api := &fakeAPI{errs: []error{apiErr}}
	sender := NewMessageSender(api, 0, true)

	err := sender.SendTextMessage(context.Background(), 42, "привет", nil)
	var got *telegram.APIError
	require.True(t, errors.As(err, &got))
	assert.Equal(t, 403, got.Code)
	assert.Len(t, api.methods, 1)
}

func TestMessageSender_Disabled(t *testing.T) {
	api := &fakeAPI{}
	sender := NewMessageSender(api, 0, false)

	require.NoError(t, sender.SendTextMessage(context.Background(), 42, "привет", nil))
	assert.Empty(t, api.methods)
}
