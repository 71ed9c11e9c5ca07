package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	coreport "github.com/amirhossein-jamali/bank-ledger/internal/domain/port/core"
	"github.com/amirhossein-jamali/bank-ledger/internal/infrastructure/adapter/database/migration"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Manager owns the database connection and everything built on it
type Manager struct {
	config            *Config
	db                *gorm.DB
	sqlDB             *sql.DB
	logger            coreport.Logger
	migrationMgr      *migration.MigrationManager
	connectionMonitor *ConnectionPoolMonitor
	timeProvider      coreport.TimeProvider
}

// NewManager creates a new database manager
func NewManager(config *Config, logger coreport.Logger, timeProvider coreport.TimeProvider) *Manager {
	return &Manager{
		config:       config,
		logger:       logger.With(map[string]any{"component": "database"}),
		timeProvider: timeProvider,
	}
}

// GormConfig returns the GORM settings shared by the application and its tests
func GormConfig(logger coreport.Logger, timeProvider coreport.TimeProvider, level string, slowThreshold time.Duration) *gorm.Config {
	return &gorm.Config{
		Logger: NewDatabaseLogger(logger, timeProvider, level, slowThreshold),
		NowFunc: func() time.Time {
			return timeProvider.Now()
		},
		// every write already runs inside an explicit unit of work
		SkipDefaultTransaction: true,
	}
}

// Connect opens the connection pool, retrying while the database is unreachable
func (m *Manager) Connect(ctx context.Context) (*gorm.DB, error) {
	if m.config.Driver != DriverPostgres {
		return nil, fmt.Errorf("unsupported database driver: %s", m.config.Driver)
	}

	m.logger.Info("Connecting to database", map[string]any{
		"driver": m.config.Driver,
		"host":   m.config.Host,
		"port":   m.config.Port,
		"name":   m.config.Database,
	})

	attempts := m.config.RetryAttempts + 1
	var err error
	var gormDB *gorm.DB

	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			m.logger.Warn("Retrying database connection", map[string]any{
				"attempt": attempt + 1,
				"of":      attempts,
				"delay":   m.config.RetryDelay.String(),
			})
			select {
			case <-m.timeProvider.After(m.config.RetryDelay):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		gormDB, err = gorm.Open(
			postgres.New(postgres.Config{DSN: m.config.DSN()}),
			GormConfig(m.logger, m.timeProvider, m.config.LogLevel, m.config.SlowThreshold),
		)
		if err == nil {
			break
		}

		m.logger.Error("Failed to connect to database", map[string]any{
			"error":   err.Error(),
			"attempt": attempt + 1,
		})
	}

	if err != nil {
		return nil, fmt.Errorf("failed to connect to database after %d attempts: %w", attempts, err)
	}

	sqlDB, err := gormDB.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database connection: %w", err)
	}

	sqlDB.SetMaxOpenConns(m.config.MaxOpenConns)
	sqlDB.SetMaxIdleConns(m.config.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(m.config.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(m.config.ConnMaxIdleTime)

	m.logger.Info("Successfully connected to database", map[string]any{
		"host":           m.config.Host,
		"name":           m.config.Database,
		"max_open_conns": m.config.MaxOpenConns,
		"max_idle_conns": m.config.MaxIdleConns,
		"isolation":      m.config.Isolation,
	})

	m.db = gormDB
	m.sqlDB = sqlDB
	m.migrationMgr = migration.NewMigrationManager(sqlDB, m.logger)
	m.connectionMonitor = NewConnectionPoolMonitor(sqlDB, m.logger)
	m.connectionMonitor.Start(30 * time.Second)

	return m.db, nil
}

// DB returns the GORM database instance
func (m *Manager) DB() *gorm.DB {
	return m.db
}

// Migrate applies pending schema migrations
func (m *Manager) Migrate() error {
	if m.migrationMgr == nil {
		return errors.New("database is not connected")
	}
	return m.migrationMgr.MigrateAll()
}

// Health pings the database and returns pool statistics
func (m *Manager) Health(ctx context.Context) HealthStatus {
	if m.sqlDB == nil {
		return HealthStatus{Error: "database is not connected"}
	}

	status := CheckHealth(ctx, m.sqlDB, m.timeProvider)
	if !status.Healthy {
		m.logger.Error("Database ping failed", map[string]any{
			"error": status.Error,
		})
	}
	return status
}

// PoolMetrics returns the last sampled pool statistics
func (m *Manager) PoolMetrics() ConnectionPoolMetrics {
	if m.connectionMonitor == nil {
		return ConnectionPoolMetrics{}
	}
	return m.connectionMonitor.GetMetrics()
}

// Close closes the database connection
func (m *Manager) Close() error {
	m.logger.Info("Closing database connection", nil)

	if m.connectionMonitor != nil {
		m.connectionMonitor.Stop()
	}
	if m.sqlDB == nil {
		return nil
	}
	return m.sqlDB.Close()
}

// WithTimeout returns a context bounded by the configured query timeout
func (m *Manager) WithTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return m.timeProvider.WithTimeout(ctx, m.config.QueryTimeout)
}

// CreateUnitOfWork creates a UnitOfWork using the configured isolation and retry policy
func (m *Manager) CreateUnitOfWork() (*UnitOfWork, error) {
	isolation, err := ParseIsolation(m.config.Isolation)
	if err != nil {
		return nil, err
	}
	return NewUnitOfWork(m.db, m.logger, m.timeProvider, UnitOfWorkOptions{
		Isolation: isolation,
		Retry:     m.config.Retry,
	}), nil
}
