// application/bootstrap/builder.go
package bootstrap

import (
	"errors"

	"storefront-bot/internal/infrastructure/config"
	"storefront-bot/pkg/logger"
)

// AppBuilder строит приложение
type AppBuilder struct {
	config  *config.Config
	version string
	logger  *logger.Logger
}

// NewAppBuilder создает построитель приложения
func NewAppBuilder() *AppBuilder {
	return &AppBuilder{version: "dev"}
}

// WithConfig задает конфигурацию
func (b *AppBuilder) WithConfig(cfg *config.Config) *AppBuilder {
	b.config = cfg
	return b
}

// WithVersion задает версию сборки
func (b *AppBuilder) WithVersion(version string) *AppBuilder {
	if version != "" {
		b.version = version
	}
	return b
}

// WithLogger задает логгер; по умолчанию глобальный
func (b *AppBuilder) WithLogger(log *logger.Logger) *AppBuilder {
	b.logger = log
	return b
}

// Build собирает приложение. Подключения создаются в Initialize.
func (b *AppBuilder) Build() (*Application, error) {
	if b.config == nil {
		return nil, errors.New("конфигурация не задана")
	}
	if err := b.config.Validate(); err != nil {
		return nil, err
	}

	log := b.logger
	if log == nil {
		log = logger.GetLogger()
	}

	return &Application{
		config:  b.config,
		version: b.version,
		logger:  log,
	}, nil
}
