// internal/infrastructure/metrics/metrics_test.go
package metrics

import (
	"database/sql"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront-bot/internal/core/domain/payment"

	_ "github.com/lib/pq"
)

func TestPaymentMetrics_Counters(t *testing.T) {
	m := NewPaymentMetrics()

	m.DepositStarted()
	m.DepositStarted()
	m.DepositRejected("rate_limited")
	m.CheckObserved(payment.CheckPending)
	m.CheckObserved(payment.CheckCompleted)
	m.DepositFinished(payment.StatusCompleted, 500)
	m.DepositFinished(payment.StatusExpired, 0)
	m.SessionsActive(3)
	m.CheckDuration(1500 * time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.started))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.rejected.WithLabelValues("rate_limited")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.checks.WithLabelValues("completed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.finished.WithLabelValues("expired")))
	assert.Equal(t, 500.0, testutil.ToFloat64(m.credited))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.activeSession))
}

func TestPaymentMetrics_Handler(t *testing.T) {
	m := NewPaymentMetrics()
	m.DepositStarted()

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	require.Equal(t, 200, rec.Code)
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "storefront_deposits_started_total 1")
}

func TestPaymentMetrics_RegisterDBStats(t *testing.T) {
	// sql.Open не подключается к серверу, статистика пула доступна сразу
	db, err := sql.Open("postgres", "postgres://localhost:1/none?sslmode=disable")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	m := NewPaymentMetrics()
	require.NoError(t, m.RegisterDBStats(db))
	assert.Error(t, m.RegisterDBStats(db), "повторная регистрация отклоняется")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	assert.Contains(t, rec.Body.String(), `go_sql_max_open_connections{db_name="storefront"}`)
}
