// internal/core/domain/payment/factory.go
package payment

import (
	"fmt"
	"time"

	"storefront-bot/pkg/logger"
)

// Config конфигурация платежного ядра
type Config struct {
	Gateway        GatewayConfig
	MinAmount      int
	MaxAmount      int
	Timeout        time.Duration
	CheckInterval  time.Duration
	MaxChecks      int
	CreditAttempts int
	SessionMaxAge  time.Duration
	SweepInterval  time.Duration
}

// Dependencies зависимости для фабрики платежного ядра
type Dependencies struct {
	Config      *Config
	Renderer    PageRenderer
	Screenshots ScreenshotSource
	Creditor    BalanceCreditor
	Ledger      DepositLedger
	Notifier    Notifier
	Limiter     RateLimiter
	Publisher   EventPublisher
	Metrics     Metrics
	Logger      *logger.Logger
}

// Core собранное платежное ядро
type Core struct {
	Gateway    *GatewayClient
	Store      *SessionStore
	Poller     *StatusPoller
	QR         *QRExtractor
	Reconciler *Reconciler
	Service    *DepositService
	Sweeper    *Sweeper
}

// NewCore собирает платежное ядро из зависимостей
func NewCore(deps Dependencies) (*Core, error) {
	if deps.Config == nil {
		return nil, fmt.Errorf("конфигурация обязательна")
	}
	if deps.Renderer == nil {
		return nil, fmt.Errorf("PageRenderer обязателен")
	}
	if deps.Screenshots == nil {
		return nil, fmt.Errorf("ScreenshotSource обязателен")
	}
	if deps.Creditor == nil {
		return nil, fmt.Errorf("BalanceCreditor обязателен")
	}
	if deps.Logger == nil {
		deps.Logger = logger.GetLogger()
	}
	cfg := deps.Config

	gateway, err := NewGatewayClient(cfg.Gateway, deps.Logger)
	if err != nil {
		return nil, fmt.Errorf("ошибка создания клиента шлюза: %w", err)
	}

	store := NewSessionStore()
	poller := NewStatusPoller(deps.Renderer, gateway, deps.Logger)
	qr := NewQRExtractor(deps.Screenshots, deps.Logger)

	reconciler, err := NewReconciler(ReconcilerDependencies{
		Config: ReconcilerConfig{
			CheckInterval:    cfg.CheckInterval,
			MaxChecks:        cfg.MaxChecks,
			CreditAttempts:   cfg.CreditAttempts,
			CreditBackoff:    2 * time.Second,
			MaxSettledAmount: cfg.MaxAmount,
		},
		Store:     store,
		Checker:   poller,
		Creditor:  deps.Creditor,
		Ledger:    deps.Ledger,
		Notifier:  deps.Notifier,
		Publisher: deps.Publisher,
		Metrics:   deps.Metrics,
		Logger:    deps.Logger,
	})
	if err != nil {
		return nil, fmt.Errorf("ошибка создания цикла сверки: %w", err)
	}

	service, err := NewDepositService(ServiceDependencies{
		Config: ServiceConfig{
			MinAmount: cfg.MinAmount,
			MaxAmount: cfg.MaxAmount,
			Timeout:   cfg.Timeout,
			MaxChecks: cfg.MaxChecks,
		},
		Gateway:    gateway,
		QR:         qr,
		Store:      store,
		Reconciler: reconciler,
		Ledger:     deps.Ledger,
		Limiter:    deps.Limiter,
		Publisher:  deps.Publisher,
		Metrics:    deps.Metrics,
		Logger:     deps.Logger,
	})
	if err != nil {
		return nil, fmt.Errorf("ошибка создания сервиса депозитов: %w", err)
	}

	deps.Logger.Info("✅ Платежное ядро создано (сумма %d..%d, %d проверок x %v)",
		cfg.MinAmount, cfg.MaxAmount, cfg.MaxChecks, cfg.CheckInterval)

	return &Core{
		Gateway:    gateway,
		Store:      store,
		Poller:     poller,
		QR:         qr,
		Reconciler: reconciler,
		Service:    service,
		Sweeper:    NewSweeper(store, cfg.SessionMaxAge, cfg.SweepInterval, deps.Metrics, deps.Logger),
	}, nil
}
