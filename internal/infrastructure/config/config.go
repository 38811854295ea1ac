// internal/infrastructure/config/config.go
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// ============================================
// КОНФИГУРАЦИЯ БАЗЫ ДАННЫХ
// ============================================

// DatabaseConfig - конфигурация базы данных
type DatabaseConfig struct {
	// Основные параметры подключения
	Host     string `envconfig:"DB_HOST" default:"localhost" validate:"required"`
	Port     int    `envconfig:"DB_PORT" default:"5432" validate:"min=1,max=65535"`
	User     string `envconfig:"DB_USER" default:"postgres"`
	Password string `envconfig:"DB_PASSWORD"`
	Name     string `envconfig:"DB_NAME" default:"storefront" validate:"required"`
	SSLMode  string `envconfig:"DB_SSLMODE" default:"disable" validate:"oneof=disable require verify-ca verify-full"`

	// Настройки пула соединений
	MaxOpenConns    int           `envconfig:"DB_MAX_OPEN_CONNS" default:"10"`
	MaxIdleConns    int           `envconfig:"DB_MAX_IDLE_CONNS" default:"5"`
	MaxConnLifetime time.Duration `envconfig:"DB_MAX_CONN_LIFETIME" default:"30m"`
	MaxConnIdleTime time.Duration `envconfig:"DB_MAX_CONN_IDLE_TIME" default:"5m"`

	// Миграции встроены в бинарник
	EnableAutoMigrate bool `envconfig:"DB_ENABLE_AUTO_MIGRATE" default:"true"`

	// Повторные попытки подключения при старте (postgres может подниматься дольше бота)
	ConnectAttempts   int           `envconfig:"DB_CONNECT_ATTEMPTS" default:"5" validate:"min=1"`
	ConnectRetryDelay time.Duration `envconfig:"DB_CONNECT_RETRY_DELAY" default:"2s"`
}

// RedisConfig конфигурация Redis
type RedisConfig struct {
	Enabled  bool   `envconfig:"REDIS_ENABLED" default:"true"`
	Host     string `envconfig:"REDIS_HOST" default:"localhost"`
	Port     int    `envconfig:"REDIS_PORT" default:"6379"`
	Password string `envconfig:"REDIS_PASSWORD"`
	DB       int    `envconfig:"REDIS_DB" default:"0"`

	// Настройки пула соединений
	PoolSize     int           `envconfig:"REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"REDIS_MIN_IDLE_CONNS" default:"2"`
	MaxRetries   int           `envconfig:"REDIS_MAX_RETRIES" default:"3"`
	DialTimeout  time.Duration `envconfig:"REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"REDIS_READ_TIMEOUT" default:"3s"`
	WriteTimeout time.Duration `envconfig:"REDIS_WRITE_TIMEOUT" default:"3s"`

	// Префикс ключей и TTL кэша
	KeyPrefix  string        `envconfig:"REDIS_KEY_PREFIX" default:"storefront:"`
	DefaultTTL time.Duration `envconfig:"REDIS_DEFAULT_TTL" default:"10m"`
}

// NATSConfig конфигурация шины событий
type NATSConfig struct {
	Enabled       bool          `envconfig:"NATS_ENABLED" default:"false"`
	URL           string        `envconfig:"NATS_URL" default:"nats://localhost:4222"`
	Name          string        `envconfig:"NATS_CLIENT_NAME" default:"storefront-bot"`
	MaxReconnects int           `envconfig:"NATS_MAX_RECONNECTS" default:"10"`
	ReconnectWait time.Duration `envconfig:"NATS_RECONNECT_WAIT" default:"2s"`
	SubjectPrefix string        `envconfig:"NATS_SUBJECT_PREFIX" default:"deposits"`
}

// TelegramConfig конфигурация Telegram бота
type TelegramConfig struct {
	Enabled        bool          `envconfig:"TELEGRAM_ENABLED" default:"true"`
	BotToken       string        `envconfig:"TG_API_KEY"`
	BaseURL        string        `envconfig:"TG_BASE_URL" default:"https://api.telegram.org"`
	PollingTimeout int           `envconfig:"TG_POLLING_TIMEOUT" default:"30" validate:"min=1,max=50"`
	RateLimit      time.Duration `envconfig:"TG_RATE_LIMIT" default:"50ms"`
	AdminUsername  string        `envconfig:"TG_ADMIN_USERNAME"`
}

// HTTPConfig конфигурация служебного HTTP сервера
type HTTPConfig struct {
	Enabled bool   `envconfig:"HTTP_ENABLED" default:"true"`
	Addr    string `envconfig:"HTTP_ADDR" default:":8080"`
}

// ============================================
// ПЛАТЕЖНЫЙ ШЛЮЗ
// ============================================

// GatewayConfig параметры внешнего платежного шлюза
type GatewayConfig struct {
	// Cookie в формате "sid=...; csrf_token=..."
	Cookies            string        `envconfig:"GATEWAY_COOKIES"`
	BaseURL            string        `envconfig:"GATEWAY_BASE_URL" default:"https://steam-trader.com" validate:"required,url"`
	ReceiptURLTemplate string        `envconfig:"RECEIPT_URL_TEMPLATE" default:"https://payment.tome.ge/%s/receipt" validate:"required,contains=%s"`
	PaymentType        string        `envconfig:"GATEWAY_PAYMENT_TYPE" default:"28"`
	Fee                string        `envconfig:"GATEWAY_FEE" default:"1"`
	UserAgent          string        `envconfig:"GATEWAY_USER_AGENT" default:"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"`
	Timeout            time.Duration `envconfig:"GATEWAY_TIMEOUT" default:"30s"`
}

// BrowserConfig параметры headless-браузера
type BrowserConfig struct {
	ExecPath      string        `envconfig:"BROWSER_EXEC_PATH"`
	Headless      bool          `envconfig:"BROWSER_HEADLESS" default:"true"`
	WindowWidth   int           `envconfig:"BROWSER_WINDOW_WIDTH" default:"1280"`
	WindowHeight  int           `envconfig:"BROWSER_WINDOW_HEIGHT" default:"800"`
	QRSettleDelay time.Duration `envconfig:"BROWSER_QR_SETTLE_DELAY" default:"3s"`
	StatusSettle  time.Duration `envconfig:"BROWSER_STATUS_SETTLE_DELAY" default:"2s"`
	RenderTimeout time.Duration `envconfig:"BROWSER_RENDER_TIMEOUT" default:"45s"`
}

// PaymentConfig параметры сверки платежей
type PaymentConfig struct {
	MinAmount      int           `envconfig:"PAYMENT_MIN_AMOUNT" default:"1" validate:"min=1"`
	MaxAmount      int           `envconfig:"PAYMENT_MAX_AMOUNT" default:"189000" validate:"gtefield=MinAmount"`
	Timeout        time.Duration `envconfig:"PAYMENT_TIMEOUT" default:"15m"`
	CheckInterval  time.Duration `envconfig:"PAYMENT_CHECK_INTERVAL" default:"30s"`
	MaxChecks      int           `envconfig:"PAYMENT_MAX_CHECKS" default:"30" validate:"min=1"`
	SessionMaxAge  time.Duration `envconfig:"PAYMENT_SESSION_MAX_AGE" default:"30m"`
	SweepInterval  time.Duration `envconfig:"PAYMENT_SWEEP_INTERVAL" default:"1h"`
	CreditAttempts int           `envconfig:"PAYMENT_CREDIT_ATTEMPTS" default:"3" validate:"min=1"`
	// Не больше N депозитов на пользователя за окно
	RateLimit       int           `envconfig:"PAYMENT_RATE_LIMIT" default:"5"`
	RateLimitWindow time.Duration `envconfig:"PAYMENT_RATE_LIMIT_WINDOW" default:"10m"`
}

// ============================================
// ОСНОВНАЯ КОНФИГУРАЦИЯ ПРИЛОЖЕНИЯ
// ============================================

// Config - основная структура конфигурации
type Config struct {
	Environment string `envconfig:"APP_ENV" default:"dev" validate:"oneof=dev prod test"`
	Version     string `envconfig:"VERSION" default:"1.0.0"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info" validate:"oneof=debug info warn error DEBUG INFO WARN ERROR"`
	LogFile     string `envconfig:"LOG_FILE" default:"logs/storefront.log"`

	// Секции разбираются отдельно, чтобы имена переменных не получали префикс
	Database DatabaseConfig `ignored:"true"`
	Redis    RedisConfig    `ignored:"true"`
	NATS     NATSConfig     `ignored:"true"`
	Telegram TelegramConfig `ignored:"true"`
	HTTP     HTTPConfig     `ignored:"true"`
	Gateway  GatewayConfig  `ignored:"true"`
	Browser  BrowserConfig  `ignored:"true"`
	Payment  PaymentConfig  `ignored:"true"`
}

var validate = validator.New()

// LoadConfig загружает конфигурацию из .env файла и переменных окружения
func LoadConfig(path string) (*Config, error) {
	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Load(path); err != nil {
				return nil, fmt.Errorf("ошибка загрузки %s: %w", path, err)
			}
		}
	}

	cfg := &Config{}
	sections := []interface{}{
		cfg, &cfg.Database, &cfg.Redis, &cfg.NATS, &cfg.Telegram,
		&cfg.HTTP, &cfg.Gateway, &cfg.Browser, &cfg.Payment,
	}
	for _, section := range sections {
		if err := envconfig.Process("", section); err != nil {
			return nil, fmt.Errorf("ошибка разбора переменных окружения: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate проверяет конфигурацию
func (c *Config) Validate() error {
	var validationErrors []string

	if err := validate.Struct(c); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) {
			for _, fe := range fieldErrs {
				validationErrors = append(validationErrors,
					fmt.Sprintf("%s: нарушено правило %s=%s (значение %v)", fe.Namespace(), fe.Tag(), fe.Param(), fe.Value()))
			}
		} else {
			validationErrors = append(validationErrors, err.Error())
		}
	}

	if c.Telegram.Enabled && c.Telegram.BotToken == "" {
		validationErrors = append(validationErrors, "TG_API_KEY требуется когда Telegram включен")
	}

	if c.Payment.CheckInterval <= 0 {
		validationErrors = append(validationErrors, "PAYMENT_CHECK_INTERVAL должен быть положительным")
	}

	if len(validationErrors) > 0 {
		return fmt.Errorf("ошибки конфигурации: %s", strings.Join(validationErrors, "; "))
	}
	return nil
}

// GetPostgresDSN возвращает строку подключения к PostgreSQL
func (c *Config) GetPostgresDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Database.Host, c.Database.Port, c.Database.User,
		c.Database.Password, c.Database.Name, c.Database.SSLMode,
	)
}

// GetPostgresURL возвращает URL подключения для мигратора
func (c *Config) GetPostgresURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User, c.Database.Password, c.Database.Host,
		c.Database.Port, c.Database.Name, c.Database.SSLMode)
}

// GetRedisAddr возвращает адрес Redis
func (c *Config) GetRedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Redis.Host, c.Redis.Port)
}

// PrintSummary возвращает краткую сводку без секретов
func (c *Config) PrintSummary() []string {
	return []string{
		fmt.Sprintf("Окружение: %s", c.Environment),
		fmt.Sprintf("Уровень логирования: %s", c.LogLevel),
		fmt.Sprintf("Telegram включен: %v", c.Telegram.Enabled),
		fmt.Sprintf("PostgreSQL: %s:%d/%s", c.Database.Host, c.Database.Port, c.Database.Name),
		fmt.Sprintf("Redis: %v (%s)", c.Redis.Enabled, c.GetRedisAddr()),
		fmt.Sprintf("NATS: %v (%s)", c.NATS.Enabled, c.NATS.URL),
		fmt.Sprintf("Шлюз: %s, cookies заданы: %v", c.Gateway.BaseURL, c.Gateway.Cookies != ""),
		fmt.Sprintf("Сумма депозита: %d..%d", c.Payment.MinAmount, c.Payment.MaxAmount),
		fmt.Sprintf("Проверки: %d x %v (таймаут %v)", c.Payment.MaxChecks, c.Payment.CheckInterval, c.Payment.Timeout),
	}
}
