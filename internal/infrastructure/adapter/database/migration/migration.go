package migration

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"

	coreport "github.com/amirhossein-jamali/bank-ledger/internal/domain/port/core"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed sql/*.sql
var migrationFiles embed.FS

// MigrationManager applies the versioned SQL migrations embedded in the binary
type MigrationManager struct {
	db     *sql.DB
	logger coreport.Logger
}

// NewMigrationManager creates a new migration manager
func NewMigrationManager(db *sql.DB, logger coreport.Logger) *MigrationManager {
	return &MigrationManager{
		db:     db,
		logger: logger,
	}
}

// Sources lists the embedded migration files
func Sources() ([]string, error) {
	entries, err := migrationFiles.ReadDir("sql")
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names, nil
}

func (m *MigrationManager) newMigrate() (*migrate.Migrate, error) {
	source, err := iofs.New(migrationFiles, "sql")
	if err != nil {
		return nil, fmt.Errorf("failed to open embedded migrations: %w", err)
	}

	driver, err := postgres.WithInstance(m.db, &postgres.Config{})
	if err != nil {
		return nil, fmt.Errorf("could not create postgres driver instance for migrations: %w", err)
	}

	mg, err := migrate.NewWithInstance("iofs", source, "postgres", driver)
	if err != nil {
		return nil, fmt.Errorf("could not create migrate instance: %w", err)
	}
	return mg, nil
}

// MigrateAll applies every pending up migration
func (m *MigrationManager) MigrateAll() error {
	m.logger.Info("Running database migrations", nil)

	mg, err := m.newMigrate()
	if err != nil {
		m.logger.Error("Failed to prepare migrations", map[string]any{"error": err.Error()})
		return err
	}

	err = mg.Up()
	switch {
	case errors.Is(err, migrate.ErrNoChange):
		m.logger.Info("No new migrations to apply", nil)
	case err != nil:
		m.logger.Error("Failed to apply migrations", map[string]any{"error": err.Error()})
		return fmt.Errorf("failed to apply migrations: %w", err)
	default:
		version, dirty, _ := mg.Version()
		m.logger.Info("Database migrations applied successfully", map[string]any{
			"version": version,
			"dirty":   dirty,
		})
	}

	return nil
}

// GetCurrentVersion returns the applied schema version, 0 when nothing has been applied
func (m *MigrationManager) GetCurrentVersion() (uint, bool, error) {
	mg, err := m.newMigrate()
	if err != nil {
		return 0, false, err
	}

	version, dirty, err := mg.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	return version, dirty, err
}
