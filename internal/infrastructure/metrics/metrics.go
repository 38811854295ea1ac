// internal/infrastructure/metrics/metrics.go
package metrics

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"storefront-bot/internal/core/domain/payment"
)

const namespace = "storefront"

// PaymentMetrics метрики платежного ядра в Prometheus
type PaymentMetrics struct {
	registry *prometheus.Registry

	started       prometheus.Counter
	rejected      *prometheus.CounterVec
	checks        *prometheus.CounterVec
	finished      *prometheus.CounterVec
	credited      prometheus.Counter
	activeSession prometheus.Gauge
	checkDuration prometheus.Histogram
}

// NewPaymentMetrics регистрирует метрики в собственном реестре
func NewPaymentMetrics() *PaymentMetrics {
	m := &PaymentMetrics{
		registry: prometheus.NewRegistry(),
		started: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "deposits_started_total",
			Help:      "Депозиты, принятые шлюзом.",
		}),
		rejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "deposits_rejected_total",
			Help:      "Отклоненные попытки создать или зачислить депозит.",
		}, []string{"reason"}),
		checks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "deposit_checks_total",
			Help:      "Проверки страницы чека по результату.",
		}, []string{"status"}),
		finished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "deposits_finished_total",
			Help:      "Депозиты, достигшие терминального статуса.",
		}, []string{"status"}),
		credited: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "deposits_credited_amount_total",
			Help:      "Сумма зачислений.",
		}),
		activeSession: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "payment_sessions_active",
			Help:      "Активные платежные сессии в памяти.",
		}),
		checkDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "deposit_check_duration_seconds",
			Help:      "Длительность рендеринга страницы чека.",
			Buckets:   []float64{0.5, 1, 2, 3, 5, 8, 13, 21, 34},
		}),
	}

	m.registry.MustRegister(
		m.started, m.rejected, m.checks, m.finished, m.credited, m.activeSession, m.checkDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

func (m *PaymentMetrics) DepositStarted() { m.started.Inc() }

func (m *PaymentMetrics) DepositRejected(reason string) { m.rejected.WithLabelValues(reason).Inc() }

func (m *PaymentMetrics) CheckObserved(status payment.CheckStatus) {
	m.checks.WithLabelValues(string(status)).Inc()
}

func (m *PaymentMetrics) DepositFinished(status payment.Status, amount int) {
	m.finished.WithLabelValues(string(status)).Inc()
	if status == payment.StatusCompleted && amount > 0 {
		m.credited.Add(float64(amount))
	}
}

func (m *PaymentMetrics) SessionsActive(n int) { m.activeSession.Set(float64(n)) }

func (m *PaymentMetrics) CheckDuration(d time.Duration) { m.checkDuration.Observe(d.Seconds()) }

// RegisterDBStats добавляет метрики пула соединений PostgreSQL
func (m *PaymentMetrics) RegisterDBStats(db *sql.DB) error {
	return m.registry.Register(collectors.NewDBStatsCollector(db, "storefront"))
}

// Handler HTTP-обработчик /metrics
func (m *PaymentMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry реестр метрик (для тестов)
func (m *PaymentMetrics) Registry() *prometheus.Registry {
	return m.registry
}

var _ payment.Metrics = (*PaymentMetrics)(nil)
