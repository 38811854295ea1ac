// application/bootstrap/app.go
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"storefront-bot/internal/core/domain/payment"
	opshttp "storefront-bot/internal/delivery/http"
	"storefront-bot/internal/delivery/telegram/app/bot"
	"storefront-bot/internal/infrastructure/browser"
	"storefront-bot/internal/infrastructure/cache/redis"
	"storefront-bot/internal/infrastructure/config"
	"storefront-bot/internal/infrastructure/metrics"
	"storefront-bot/internal/infrastructure/persistence/postgres/database"
	"storefront-bot/internal/infrastructure/persistence/postgres/repository/deposit"
	"storefront-bot/internal/infrastructure/persistence/postgres/repository/users"
	events "storefront-bot/internal/infrastructure/transport/event_bus"
	"storefront-bot/internal/infrastructure/transport/nats"
	"storefront-bot/pkg/logger"
)

const dialogTTL = 15 * time.Minute

// Application - основное приложение
type Application struct {
	config  *config.Config
	version string
	logger  *logger.Logger

	mu          sync.Mutex
	initialized bool
	running     bool
	startTime   time.Time
	ctx         context.Context
	cancel      context.CancelFunc
	background  sync.WaitGroup

	database *database.DatabaseService
	redis    *redis.RedisService
	eventBus *events.EventBus
	nats     *nats.Client
	metrics  *metrics.PaymentMetrics
	core     *payment.Core
	bot      *bot.TelegramBot
	http     *opshttp.Server
}

// Initialize поднимает инфраструктуру и собирает платежное ядро
func (app *Application) Initialize() error {
	app.mu.Lock()
	defer app.mu.Unlock()

	if app.initialized {
		return nil
	}

	cfg := app.config
	app.logger.Info("🔧 Инициализация storefront-bot v%s", app.version)

	// 1. PostgreSQL обязателен: на нем баланс и журнал депозитов
	app.database = database.NewDatabaseService(cfg)
	if err := app.database.Start(); err != nil {
		return fmt.Errorf("запуск базы данных: %w", err)
	}
	if schema := app.database.SchemaVersion(); schema.Dirty {
		app.logger.Warn("⚠️ Схема БД v%d помечена как dirty, проверьте миграции", schema.Version)
	}

	// 2. Redis опционален
	var cache *redis.Cache
	var dialogs bot.DialogState
	var limiter payment.RateLimiter
	if cfg.Redis.Enabled {
		app.redis = redis.NewRedisService(cfg)
		if err := app.redis.Start(); err != nil {
			app.logger.Warn("⚠️ Redis недоступен, работаем без кэша: %v", err)
			app.redis = nil
		} else {
			cache = app.redis.Cache()
			dialogs = redis.NewDialogStore(app.redis.GetClient(), cfg.Redis.KeyPrefix, dialogTTL)
			limiter = redis.NewDepositRateLimiter(cache, cfg.Payment.RateLimit, cfg.Payment.RateLimitWindow)
		}
	}

	userRepo := users.NewUserRepository(app.database.GetDB(), cache)
	depositRepo := deposit.NewDepositRepository(app.database.GetDB(), cache)

	// 3. Шина событий и NATS
	app.eventBus = events.NewEventBus()
	app.eventBus.Subscribe(events.NewConsoleLoggerSubscriber())
	if cfg.NATS.Enabled {
		client, err := nats.New(nats.Config{
			URL:           cfg.NATS.URL,
			Name:          cfg.NATS.Name,
			MaxReconnects: cfg.NATS.MaxReconnects,
			ReconnectWait: cfg.NATS.ReconnectWait,
			SubjectPrefix: cfg.NATS.SubjectPrefix,
		}, app.logger)
		if err != nil {
			app.logger.Warn("⚠️ NATS недоступен, события остаются локальными: %v", err)
		} else {
			app.nats = client
			app.eventBus.Subscribe(client)
		}
	}

	app.metrics = metrics.NewPaymentMetrics()
	if err := app.metrics.RegisterDBStats(app.database.GetDB().DB); err != nil {
		app.logger.Warn("⚠️ Метрики пула PostgreSQL не зарегистрированы: %v", err)
	}

	// 4. Telegram: отправитель нужен ядру для уведомлений
	tgBot, err := bot.NewTelegramBot(bot.Config{
		Enabled:      cfg.Telegram.Enabled,
		Token:        cfg.Telegram.BotToken,
		BaseURL:      cfg.Telegram.BaseURL,
		PollTimeout:  time.Duration(cfg.Telegram.PollingTimeout) * time.Second,
		SendInterval: cfg.Telegram.RateLimit,
		SupportURL:   supportURL(cfg.Telegram.AdminUsername),
		DialogTTL:    dialogTTL,
	})
	if err != nil {
		return fmt.Errorf("создание Telegram бота: %w", err)
	}
	app.bot = tgBot

	// 5. Платежное ядро
	br := browser.New(browser.Config{
		ExecPath:      cfg.Browser.ExecPath,
		Headless:      cfg.Browser.Headless,
		WindowWidth:   cfg.Browser.WindowWidth,
		WindowHeight:  cfg.Browser.WindowHeight,
		RenderTimeout: cfg.Browser.RenderTimeout,
	}, app.logger)

	core, err := payment.NewCore(payment.Dependencies{
		Config: &payment.Config{
			Gateway: payment.GatewayConfig{
				BaseURL:            cfg.Gateway.BaseURL,
				ReceiptURLTemplate: cfg.Gateway.ReceiptURLTemplate,
				Cookies:            cfg.Gateway.Cookies,
				PaymentType:        cfg.Gateway.PaymentType,
				Fee:                cfg.Gateway.Fee,
				UserAgent:          cfg.Gateway.UserAgent,
				Timeout:            cfg.Gateway.Timeout,
			},
			MinAmount:      cfg.Payment.MinAmount,
			MaxAmount:      cfg.Payment.MaxAmount,
			Timeout:        cfg.Payment.Timeout,
			CheckInterval:  cfg.Payment.CheckInterval,
			MaxChecks:      cfg.Payment.MaxChecks,
			CreditAttempts: cfg.Payment.CreditAttempts,
			SessionMaxAge:  cfg.Payment.SessionMaxAge,
			SweepInterval:  cfg.Payment.SweepInterval,
		},
		Renderer:    browser.NewPageRenderer(br, cfg.Browser.StatusSettle),
		Screenshots: browser.NewScreenshotSource(br, cfg.Browser.QRSettleDelay),
		Creditor:    depositRepo,
		Ledger:      depositRepo,
		Notifier:    tgBot.Notifier(),
		Limiter:     limiter,
		Publisher:   app.eventBus,
		Metrics:     app.metrics,
		Logger:      app.logger,
	})
	if err != nil {
		return fmt.Errorf("сборка платежного ядра: %w", err)
	}
	app.core = core

	if !core.Gateway.HasCredentials() {
		app.logger.Warn("⚠️ GATEWAY_COOKIES не содержит sid и csrf_token: создание платежей будет отклоняться")
	}

	if err := tgBot.Mount(bot.Dependencies{
		Users:    userRepo,
		Balances: userRepo,
		Deposits: core.Service,
		Dialogs:  dialogs,
	}); err != nil {
		return fmt.Errorf("подключение хэндлеров: %w", err)
	}

	// 6. Служебный HTTP
	if cfg.HTTP.Enabled {
		app.http = opshttp.NewServer(cfg.HTTP.Addr, core.Service, app.metrics.Handler(), app.healthChecks(), app.logger)
	}

	app.initialized = true
	app.logger.Info("✅ Приложение инициализировано")
	return nil
}

func (app *Application) healthChecks() map[string]opshttp.HealthCheck {
	checks := map[string]opshttp.HealthCheck{
		"postgres": app.database.HealthCheck,
	}
	if app.redis != nil {
		checks["redis"] = app.redis.HealthCheck
	}
	if app.nats != nil {
		checks["nats"] = app.nats.HealthCheck
	}
	checks["event_bus"] = func(context.Context) error {
		if !app.eventBus.IsRunning() {
			return errors.New("event bus is stopped")
		}
		return nil
	}
	return checks
}

// Run запускает фоновые процессы: шину событий, сверку, очистку, HTTP и polling
func (app *Application) Run() error {
	app.mu.Lock()
	defer app.mu.Unlock()

	if app.running {
		return errors.New("приложение уже запущено")
	}
	if !app.initialized {
		return errors.New("приложение не инициализировано")
	}

	app.ctx, app.cancel = context.WithCancel(context.Background())
	app.eventBus.Start()

	resumed, err := app.core.Service.Resume(app.ctx)
	if err != nil {
		app.logger.Warn("⚠️ Не удалось возобновить незавершенные депозиты: %v", err)
	} else {
		app.logger.Info("🔁 Возобновлено депозитов: %d", resumed)
	}

	app.background.Add(1)
	go func() {
		defer app.background.Done()
		app.core.Sweeper.Run(app.ctx)
	}()

	if app.http != nil {
		app.http.Start()
	}

	if err := app.bot.StartPolling(app.ctx); err != nil {
		app.cancel()
		return fmt.Errorf("запуск polling: %w", err)
	}

	app.running = true
	app.startTime = time.Now()
	app.logger.Info("🚀 Приложение запущено")
	return nil
}

// IsRunning проверяет запущено ли приложение
func (app *Application) IsRunning() bool {
	app.mu.Lock()
	defer app.mu.Unlock()
	return app.running
}

// Stop выполняет остановку приложения в обратном порядке запуска
func (app *Application) Stop(ctx context.Context) error {
	app.mu.Lock()
	defer app.mu.Unlock()

	var errs []string
	if app.running {
		app.logger.Info("🛑 Останавливаем приложение...")

		app.bot.StopPolling()

		if app.http != nil {
			if err := app.http.Stop(ctx); err != nil {
				errs = append(errs, fmt.Sprintf("http: %v", err))
			}
		}

		app.cancel()
		app.core.Reconciler.Stop()
		app.core.Reconciler.Wait()
		app.background.Wait()
		app.eventBus.Stop()

		app.running = false
		app.logger.Info("✅ Приложение остановлено. Время работы: %v", time.Since(app.startTime))
	}

	if app.nats != nil {
		app.nats.Close()
	}
	if app.redis != nil {
		if err := app.redis.Stop(); err != nil {
			errs = append(errs, fmt.Sprintf("redis: %v", err))
		}
	}
	if app.database != nil {
		if err := app.database.Stop(); err != nil {
			errs = append(errs, fmt.Sprintf("postgres: %v", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("ошибки остановки: %s", strings.Join(errs, "; "))
	}
	return nil
}

func supportURL(adminUsername string) string {
	adminUsername = strings.TrimPrefix(strings.TrimSpace(adminUsername), "@")
	if adminUsername == "" {
		return ""
	}
	return "https://t.me/" + adminUsername
}
