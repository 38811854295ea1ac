// internal/core/domain/payment/gateway_test.go
package payment

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestGateway(t *testing.T, baseURL, cookies string) *GatewayClient {
	t.Helper()
	client, err := NewGatewayClient(GatewayConfig{
		BaseURL:            baseURL,
		ReceiptURLTemplate: "https://payment.example/%s/receipt",
		Cookies:            cookies,
		PaymentType:        "28",
		Fee:                "1",
		UserAgent:          "test-agent",
	}, testLogger)
	require.NoError(t, err)
	return client
}

func TestGatewayClient_MissingCredentials(t *testing.T) {
	var hits int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
	}))
	defer server.Close()

	for _, cookies := range []string{"", "sid=abc", "csrf_token=tok"} {
		client := newTestGateway(t, server.URL, cookies)
		assert.False(t, client.HasCredentials())

		_, err := client.CreatePayment(context.Background(), 500)
		assert.ErrorIs(t, err, ErrMissingCredentials)
	}
	assert.Zero(t, atomic.LoadInt32(&hits))
}

func TestGatewayClient_CreatePaymentSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/deposit/pay/", r.URL.Path)
		assert.Equal(t, "XMLHttpRequest", r.Header.Get("X-Requested-With"))
		assert.Equal(t, "test-agent", r.Header.Get("User-Agent"))

		require.NoError(t, r.ParseForm())
		assert.Equal(t, "500", r.PostForm.Get("amount"))
		assert.Equal(t, "28", r.PostForm.Get("payment_type"))
		assert.Equal(t, "1", r.PostForm.Get("fee"))
		assert.Equal(t, "tok", r.PostForm.Get("csrf_token"))

		sid, err := r.Cookie("sid")
		require.NoError(t, err)
		assert.Equal(t, "session-1", sid.Value)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success":true,"redirect":"https://payment.example/abc123/"}`))
	}))
	defer server.Close()

	client := newTestGateway(t, server.URL, "sid=session-1; csrf_token=tok")
	require.True(t, client.HasCredentials())

	payment, err := client.CreatePayment(context.Background(), 500)
	require.NoError(t, err)
	assert.Equal(t, "abc123", payment.PaymentID)
	assert.Equal(t, "https://payment.example/abc123/receipt", payment.ReceiptURL)
}

func TestGatewayClient_CreatePaymentRejected(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{name: "non-200", status: http.StatusForbidden, body: `{"success":true,"redirect":"/x/abc"}`},
		{name: "invalid json", status: http.StatusOK, body: `<html>login</html>`},
		{name: "error field", status: http.StatusOK, body: `{"success":false,"error":"Недостаточно прав"}`},
		{name: "structured error", status: http.StatusOK, body: `{"success":true,"redirect":"/x/abc","error":{"code":1}}`},
		{name: "no redirect", status: http.StatusOK, body: `{"success":true}`},
		{name: "not successful", status: http.StatusOK, body: `{"success":false,"redirect":"/x/abc"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			client := newTestGateway(t, server.URL, "sid=s; csrf_token=t")
			payment, err := client.CreatePayment(context.Background(), 500)
			assert.ErrorIs(t, err, ErrGatewayRejected)
			assert.Nil(t, payment)
		})
	}
}

func TestNewGatewayClient_InvalidBaseURL(t *testing.T) {
	_, err := NewGatewayClient(GatewayConfig{BaseURL: "not a url"}, testLogger)
	assert.Error(t, err)
}

func TestLastPathSegment(t *testing.T) {
	assert.Equal(t, "abc123", lastPathSegment("https://payment.example/abc123"))
	assert.Equal(t, "abc123", lastPathSegment("https://payment.example/pay/abc123/"))
	assert.Equal(t, "abc123", lastPathSegment("/pay/abc123?from=site"))
	assert.Equal(t, "", lastPathSegment("/"))
}

func TestParseCookies(t *testing.T) {
	cookies := parseCookies(" sid=abc ; csrf_token=def;broken; =empty")
	require.Len(t, cookies, 2)
	assert.Equal(t, "sid", cookies[0].Name)
	assert.Equal(t, "abc", cookies[0].Value)
	assert.Equal(t, "csrf_token", cookies[1].Name)
	assert.Equal(t, "def", cookies[1].Value)
}
