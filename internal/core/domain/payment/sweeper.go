// internal/core/domain/payment/sweeper.go
package payment

import (
	"context"
	"time"

	"storefront-bot/pkg/logger"
)

// Sweeper периодически удаляет старые сессии.
// Страхует от сессий, чей цикл сверки не завершился.
type Sweeper struct {
	store    *SessionStore
	maxAge   time.Duration
	interval time.Duration
	metrics  Metrics
	logger   *logger.Logger
}

// NewSweeper создает очистку с заданными maxAge и интервалом
func NewSweeper(store *SessionStore, maxAge, interval time.Duration, metrics Metrics, log *logger.Logger) *Sweeper {
	if metrics == nil {
		metrics = nopMetrics{}
	}
	if log == nil {
		log = logger.GetLogger()
	}
	return &Sweeper{
		store:    store,
		maxAge:   maxAge,
		interval: interval,
		metrics:  metrics,
		logger:   log,
	}
}

// Run выполняет очистку раз в interval до отмены ctx
func (sw *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(sw.interval)
	defer ticker.Stop()

	sw.logger.Info("🧹 Очистка платежных сессий: каждые %v, старше %v", sw.interval, sw.maxAge)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			sw.SweepOnce()
		}
	}
}

// SweepOnce удаляет сессии старше maxAge
func (sw *Sweeper) SweepOnce() int {
	removed := sw.store.Sweep(sw.maxAge)
	if removed > 0 {
		sw.logger.Info("🧹 Удалено устаревших платежных сессий: %d", removed)
	}
	sw.metrics.SessionsActive(sw.store.Len())
	return removed
}
