// internal/infrastructure/persistence/postgres/database/service.go
package database

import (
	"context"
	"fmt"
	"sync"
	"time"

	"storefront-bot/internal/infrastructure/config"
	postgres_migrations "storefront-bot/internal/infrastructure/persistence/postgres"
	"storefront-bot/pkg/logger"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

// requiredTables без них бот не может ни показать баланс, ни зачислить депозит
var requiredTables = []string{"users", "deposits"}

// DatabaseService подключение к PostgreSQL, где лежат балансы и журнал депозитов
type DatabaseService struct {
	cfg         config.DatabaseConfig
	dsn         string
	migrateURL  string
	log         *logger.Logger
	mu          sync.RWMutex
	db          *sqlx.DB
	schema      postgres_migrations.MigrationStatus
	connectedAt time.Time
}

// NewDatabaseService создает сервис базы данных
func NewDatabaseService(cfg *config.Config) *DatabaseService {
	return &DatabaseService{
		cfg:        cfg.Database,
		dsn:        cfg.GetPostgresDSN(),
		migrateURL: cfg.GetPostgresURL(),
		log:        logger.GetLogger(),
	}
}

// Start подключается (с повторами), применяет миграции и проверяет схему
func (ds *DatabaseService) Start() error {
	ds.mu.Lock()
	defer ds.mu.Unlock()

	if ds.db != nil {
		return fmt.Errorf("database service already running")
	}

	ds.log.Info("📡 Подключение к PostgreSQL %s:%d/%s", ds.cfg.Host, ds.cfg.Port, ds.cfg.Name)

	db, err := ds.connect()
	if err != nil {
		return err
	}

	if ds.cfg.EnableAutoMigrate {
		status, err := postgres_migrations.NewMigrator(ds.migrateURL).Up()
		if err != nil {
			db.Close()
			return fmt.Errorf("database migrations failed: %w", err)
		}
		ds.schema = status
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := verifySchema(ctx, db); err != nil {
		db.Close()
		return err
	}

	var pending int
	if err := db.GetContext(ctx, &pending, `SELECT COUNT(*) FROM deposits WHERE status = 'pending'`); err != nil {
		ds.log.Warn("⚠️ Не удалось посчитать незавершенные депозиты: %v", err)
	}

	ds.db = db
	ds.connectedAt = time.Now()
	ds.log.Info("✅ PostgreSQL готов: пул %d/%d, схема v%d, незавершенных депозитов: %d",
		ds.cfg.MaxIdleConns, ds.cfg.MaxOpenConns, ds.schema.Version, pending)
	return nil
}

func (ds *DatabaseService) connect() (*sqlx.DB, error) {
	attempts := ds.cfg.ConnectAttempts
	if attempts <= 0 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		db, err := ds.open()
		if err == nil {
			return db, nil
		}
		lastErr = err

		if attempt < attempts {
			ds.log.Warn("⚠️ PostgreSQL недоступен (%d/%d): %v, повтор через %v",
				attempt, attempts, err, ds.cfg.ConnectRetryDelay)
			time.Sleep(ds.cfg.ConnectRetryDelay)
		}
	}
	return nil, fmt.Errorf("failed to connect to PostgreSQL after %d attempts: %w", attempts, lastErr)
}

func (ds *DatabaseService) open() (*sqlx.DB, error) {
	db, err := sqlx.Open("postgres", ds.dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	db.SetMaxOpenConns(ds.cfg.MaxOpenConns)
	db.SetMaxIdleConns(ds.cfg.MaxIdleConns)
	db.SetConnMaxLifetime(ds.cfg.MaxConnLifetime)
	db.SetConnMaxIdleTime(ds.cfg.MaxConnIdleTime)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return db, nil
}

func verifySchema(ctx context.Context, db *sqlx.DB) error {
	for _, table := range requiredTables {
		var exists bool
		if err := db.GetContext(ctx, &exists, `SELECT to_regclass($1) IS NOT NULL`, "public."+table); err != nil {
			return fmt.Errorf("failed to check table %s: %w", table, err)
		}
		if !exists {
			return fmt.Errorf("таблица %s отсутствует: включите DB_ENABLE_AUTO_MIGRATE или примените миграции", table)
		}
	}
	return nil
}

// Stop закрывает пул соединений
func (ds *DatabaseService) Stop() error {
	ds.mu.Lock()
	defer ds.mu.Unlock()

	if ds.db == nil {
		return nil
	}

	err := ds.db.Close()
	ds.db = nil
	if err != nil {
		return fmt.Errorf("failed to close database connection: %w", err)
	}

	ds.log.Info("✅ PostgreSQL отключен (время работы %v)", time.Since(ds.connectedAt).Round(time.Second))
	return nil
}

// GetDB возвращает пул соединений; nil до Start
func (ds *DatabaseService) GetDB() *sqlx.DB {
	ds.mu.RLock()
	defer ds.mu.RUnlock()
	return ds.db
}

// SchemaVersion версия схемы после миграций
func (ds *DatabaseService) SchemaVersion() postgres_migrations.MigrationStatus {
	ds.mu.RLock()
	defer ds.mu.RUnlock()
	return ds.schema
}

// HealthCheck проверяет соединение с базой
func (ds *DatabaseService) HealthCheck(ctx context.Context) error {
	db := ds.GetDB()
	if db == nil {
		return fmt.Errorf("database is not connected")
	}

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}
	return nil
}
