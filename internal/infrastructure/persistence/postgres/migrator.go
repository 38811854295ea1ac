// internal/infrastructure/persistence/postgres/migrator.go
package postgres

import (
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	"storefront-bot/internal/infrastructure/persistence/postgres/migrations"
	"storefront-bot/pkg/logger"
)

// Migrator применяет встроенные SQL-миграции через golang-migrate
type Migrator struct {
	databaseURL string
	logger      *logger.Logger
}

// MigrationStatus текущая версия схемы
type MigrationStatus struct {
	Version uint
	Dirty   bool
}

// NewMigrator создает новый мигратор
func NewMigrator(databaseURL string) *Migrator {
	return &Migrator{
		databaseURL: databaseURL,
		logger:      logger.GetLogger(),
	}
}

func (m *Migrator) open() (*migrate.Migrate, error) {
	src, err := iofs.New(migrations.FS, ".")
	if err != nil {
		return nil, fmt.Errorf("failed to open embedded migrations: %w", err)
	}
	mg, err := migrate.NewWithSourceInstance("iofs", src, m.databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to init migrate: %w", err)
	}
	return mg, nil
}

// Up применяет все новые миграции
func (m *Migrator) Up() (MigrationStatus, error) {
	mg, err := m.open()
	if err != nil {
		return MigrationStatus{}, err
	}
	defer mg.Close()

	if err := mg.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return MigrationStatus{}, fmt.Errorf("failed to apply migrations: %w", err)
	}

	version, dirty, err := mg.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return MigrationStatus{}, fmt.Errorf("failed to read migration version: %w", err)
	}

	status := MigrationStatus{Version: version, Dirty: dirty}
	m.logger.Info("✅ Database schema version: %d (dirty: %v)", status.Version, status.Dirty)
	return status, nil
}

// Down откатывает одну миграцию
func (m *Migrator) Down() error {
	mg, err := m.open()
	if err != nil {
		return err
	}
	defer mg.Close()

	if err := mg.Steps(-1); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to rollback migration: %w", err)
	}
	return nil
}
