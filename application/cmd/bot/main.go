// application/cmd/bot/main.go
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"storefront-bot/application/bootstrap"
	"storefront-bot/internal/infrastructure/config"
	"storefront-bot/pkg/logger"
)

var (
	version   = "1.0.0"
	buildTime = "неизвестно"
)

const shutdownTimeout = 30 * time.Second

func main() {
	var (
		env         string
		cfgPath     string
		logLevel    string
		showHelp    bool
		showVersion bool
	)

	flag.StringVar(&env, "env", "dev", "Окружение (dev/prod/test)")
	flag.StringVar(&cfgPath, "config", "", "Путь к файлу конфигурации (переопределяет env)")
	flag.StringVar(&logLevel, "log-level", "", "Уровень логирования: debug, info, warn, error (переопределяет .env)")
	flag.BoolVar(&showHelp, "help", false, "Показать справку")
	flag.BoolVar(&showVersion, "version", false, "Показать версию")
	flag.Parse()

	if showVersion {
		printVersion()
		return
	}
	if showHelp {
		printHelp()
		return
	}

	os.Setenv("APP_ENV", env)

	configFile := resolveConfigPath(cfgPath, env)
	cfg, err := config.LoadConfig(configFile)
	if err != nil {
		fmt.Printf("❌ Не удалось загрузить конфигурацию: %v\n", err)
		os.Exit(1)
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}

	if err := initLogger(cfg); err != nil {
		fmt.Printf("❌ Не удалось инициализировать логгер: %v\n", err)
		os.Exit(1)
	}
	defer logger.Close()

	logger.Info("🚀 Запуск storefront-bot v%s (сборка: %s)", version, buildTime)
	if configFile != "" {
		logger.Info("📁 Конфиг файл: %s", configFile)
	}
	logger.Info("📋 Конфигурация приложения:")
	for _, line := range cfg.PrintSummary() {
		logger.Info("   • %s", line)
	}

	app, err := bootstrap.NewAppBuilder().
		WithConfig(cfg).
		WithVersion(version).
		Build()
	if err != nil {
		logger.Error("❌ Не удалось собрать приложение: %v", err)
		os.Exit(1)
	}

	if err := app.Initialize(); err != nil {
		logger.Error("❌ Не удалось инициализировать приложение: %v", err)
		stop(app)
		os.Exit(1)
	}

	if err := app.Run(); err != nil {
		logger.Error("❌ Ошибка запуска приложения: %v", err)
		stop(app)
		os.Exit(1)
	}

	logger.Info("🛑 Нажмите Ctrl+C для остановки")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	sig := <-sigChan
	logger.Info("📶 Получен сигнал: %v", sig)

	stop(app)
}

func stop(app *bootstrap.Application) {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := app.Stop(ctx); err != nil {
		logger.Error("❌ Ошибка остановки приложения: %v", err)
	}
}

// resolveConfigPath выбирает .env: явный путь, configs/<env>/.env или ./.env.
// Пустая строка означает, что конфигурация берется только из окружения.
func resolveConfigPath(explicit, env string) string {
	if explicit != "" {
		return explicit
	}
	candidates := []string{filepath.Join("configs", env, ".env"), ".env"}
	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

func initLogger(cfg *config.Config) error {
	logPath := cfg.LogFile
	if logPath != "" {
		if err := os.MkdirAll(filepath.Dir(logPath), 0755); err != nil {
			fmt.Printf("⚠️ Не удалось создать директорию логов: %v. Переход на консольный...\n", err)
			logPath = ""
		}
	}

	debug := cfg.Environment != "prod"
	if err := logger.InitGlobal(logPath, cfg.LogLevel, debug); err != nil {
		fmt.Printf("⚠️ Файловый логгер недоступен: %v. Переход на консольный...\n", err)
		return logger.InitGlobal("", cfg.LogLevel, debug)
	}
	return nil
}

func printVersion() {
	fmt.Printf("storefront-bot v%s\n", version)
	fmt.Printf("Время сборки: %s\n", buildTime)
}

func printHelp() {
	fmt.Println("storefront-bot: Telegram витрина с пополнением баланса через платежный шлюз")
	fmt.Println()
	fmt.Println("Использование:")
	fmt.Println("  bot [флаги]")
	fmt.Println()
	fmt.Println("Флаги:")
	flag.PrintDefaults()
	fmt.Println()
	fmt.Println("Основные переменные окружения:")
	fmt.Println("  TG_API_KEY              токен Telegram бота")
	fmt.Println("  GATEWAY_COOKIES         cookie шлюза: \"sid=...; csrf_token=...\"")
	fmt.Println("  DB_HOST, DB_NAME        PostgreSQL")
	fmt.Println("  REDIS_ENABLED           кэш, шаги диалога и лимиты")
	fmt.Println("  NATS_ENABLED            публикация событий депозитов")
}
