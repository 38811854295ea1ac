// internal/delivery/telegram/app/http_client/polling.go
package http_client

import (
	"context"
	"net/http"
	"time"

	"storefront-bot/internal/delivery/telegram"
)

// PollingClient клиент для polling запросов с увеличенным таймаутом
type PollingClient struct {
	httpClient *http.Client
	baseURL    string
}

// NewPollingClient создает новый клиент для polling.
// Таймаут HTTP больше, чем long-polling таймаут Telegram.
func NewPollingClient(baseURL string, pollTimeout time.Duration) *PollingClient {
	return &PollingClient{
		httpClient: &http.Client{
			Timeout: pollTimeout + 5*time.Second,
		},
		baseURL: baseURL,
	}
}

// GetUpdates получает обновления начиная с offset
func (c *PollingClient) GetUpdates(ctx context.Context, offset int, timeout time.Duration) ([]telegram.Update, error) {
	payload := map[string]interface{}{
		"offset":          offset,
		"timeout":         int(timeout.Seconds()),
		"allowed_updates": []string{"message", "callback_query"},
	}

	var updates []telegram.Update
	if err := call(ctx, c.httpClient, c.baseURL, "getUpdates", payload, &updates); err != nil {
		return nil, err
	}
	return updates, nil
}
