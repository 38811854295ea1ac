// internal/infrastructure/transport/nats/client_test.go
package nats

import (
	"context"
	"encoding/json"
	"os"
	"testing"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront-bot/internal/core/domain/payment"
	"storefront-bot/pkg/logger"
)

func TestSubject(t *testing.T) {
	assert.Equal(t, "deposits.completed", Subject("deposits", payment.EventDepositCompleted))
	assert.Equal(t, "expired", Subject("", payment.EventDepositExpired))
}

// Требует запущенный NATS: TEST_NATS_URL=nats://localhost:4222
func TestClient_PublishesEvents(t *testing.T) {
	url := os.Getenv("TEST_NATS_URL")
	if url == "" {
		t.Skip("TEST_NATS_URL не задан")
	}

	client, err := New(Config{URL: url, Name: "test", MaxReconnects: 1, ReconnectWait: time.Second, SubjectPrefix: "test_deposits"}, logger.NewNop())
	require.NoError(t, err)
	defer client.Close()
	require.NoError(t, client.HealthCheck(context.Background()))

	sub, err := client.conn.SubscribeSync("test_deposits.>")
	require.NoError(t, err)
	defer sub.Unsubscribe()

	event := payment.NewEvent(payment.EventDepositCreated, payment.Session{PaymentID: "abc123", UserID: 42, RequestedAmount: 500})
	require.NoError(t, client.HandleEvent(context.Background(), event))

	msg, err := sub.NextMsg(2 * time.Second)
	require.NoError(t, err)
	assert.Equal(t, "test_deposits.created", msg.Subject)
	assert.Equal(t, event.ID, msg.Header.Get(nats.MsgIdHdr))

	var decoded payment.Event
	require.NoError(t, json.Unmarshal(msg.Data, &decoded))
	assert.Equal(t, "abc123", decoded.PaymentID)
}
