// internal/delivery/http/server_test.go
package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront-bot/internal/core/domain/payment"
)

type stubDeposits map[string]payment.Snapshot

func (s stubDeposits) QueryStatus(_ context.Context, paymentID string) payment.Snapshot {
	if snap, ok := s[paymentID]; ok {
		return snap
	}
	return payment.Snapshot{PaymentID: paymentID}
}

func TestRouter_DepositStatus(t *testing.T) {
	actual := 480
	deposits := stubDeposits{
		"abc123": {
			PaymentID:    "abc123",
			Status:       payment.StatusCompleted,
			Found:        true,
			ChecksDone:   3,
			MaxChecks:    30,
			Amount:       500,
			ActualAmount: &actual,
			CreatedAt:    time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC),
		},
	}
	router := NewRouter(deposits, nil, nil)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/deposits/abc123", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var body snapshotResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "completed", body.Status)
	assert.Equal(t, 3, body.ChecksDone)
	require.NotNil(t, body.ActualAmount)
	assert.Equal(t, 480, *body.ActualAmount)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/deposits/missing", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error":"deposit not found"}`, rec.Body.String())
}

func TestRouter_Health(t *testing.T) {
	healthy := map[string]HealthCheck{
		"postgres": func(context.Context) error { return nil },
	}
	rec := httptest.NewRecorder()
	NewRouter(stubDeposits{}, nil, healthy).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok","checks":{"postgres":"ok"}}`, rec.Body.String())

	degraded := map[string]HealthCheck{
		"postgres": func(context.Context) error { return nil },
		"redis":    func(context.Context) error { return errors.New("connection refused") },
	}
	rec = httptest.NewRecorder()
	NewRouter(stubDeposits{}, nil, degraded).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.JSONEq(t, `{"status":"degraded","checks":{"postgres":"ok","redis":"connection refused"}}`, rec.Body.String())
}

func TestRouter_Metrics(t *testing.T) {
	metrics := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("storefront_up 1\n"))
	})
	rec := httptest.NewRecorder()
	NewRouter(stubDeposits{}, metrics, nil).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "storefront_up 1\n", rec.Body.String())
}
