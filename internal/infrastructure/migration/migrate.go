package migration

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"go.uber.org/zap"
)

// Migrator wraps golang-migrate with logging for the schema migration CLI.
type Migrator struct {
	core *migrate.Migrate
	log  *zap.Logger
}

// New creates a Migrator reading .sql migrations from migrationsPath.
func New(db *sql.DB, migrationsPath string, log *zap.Logger) (*Migrator, error) {
	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return nil, fmt.Errorf("create postgres migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance("file://"+migrationsPath, "postgres", driver)
	if err != nil {
		return nil, fmt.Errorf("create migrate instance: %w", err)
	}

	return &Migrator{core: m, log: log}, nil
}

// logAppliedVersion reports where the schema landed after a change.
func (m *Migrator) logAppliedVersion(msg string) error {
	version, dirty, err := m.core.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return fmt.Errorf("read migration version: %w", err)
	}
	m.log.Info(msg, zap.Uint("version", version), zap.Bool("dirty", dirty))
	return nil
}

// Up applies all pending migrations.
func (m *Migrator) Up() error {
	m.log.Info("Applying pending migrations")

	switch err := m.core.Up(); {
	case errors.Is(err, migrate.ErrNoChange):
		m.log.Info("Schema already up to date")
		return nil
	case err != nil:
		return fmt.Errorf("migration up failed: %w", err)
	}
	return m.logAppliedVersion("Migrations applied")
}

// Down rolls back every applied migration.
func (m *Migrator) Down() error {
	m.log.Info("Rolling back all migrations")

	switch err := m.core.Down(); {
	case errors.Is(err, migrate.ErrNoChange):
		m.log.Info("Nothing to roll back")
		return nil
	case err != nil:
		return fmt.Errorf("migration down failed: %w", err)
	}
	m.log.Info("All migrations rolled back")
	return nil
}

// Steps applies n migrations; negative n rolls back.
func (m *Migrator) Steps(n int) error {
	m.log.Info("Applying migration steps", zap.Int("steps", n))

	switch err := m.core.Steps(n); {
	case errors.Is(err, migrate.ErrNoChange):
		m.log.Info("Schema already up to date")
		return nil
	case err != nil:
		return fmt.Errorf("migration steps failed: %w", err)
	}
	return m.logAppliedVersion("Migration steps applied")
}

// GoTo migrates up or down to the given version.
func (m *Migrator) GoTo(version uint) error {
	m.log.Info("Migrating to version", zap.Uint("target_version", version))

	switch err := m.core.Migrate(version); {
	case errors.Is(err, migrate.ErrNoChange):
		m.log.Info("Already at target version")
		return nil
	case err != nil:
		return fmt.Errorf("migration to version %d failed: %w", version, err)
	}
	m.log.Info("Migrated to version", zap.Uint("version", version))
	return nil
}

// Version returns the current version and whether the schema is dirty.
// A database with no applied migrations reports version 0.
func (m *Migrator) Version() (uint, bool, error) {
	version, dirty, err := m.core.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("read migration version: %w", err)
	}
	return version, dirty, nil
}

// Force overwrites the recorded version without running migrations.
// Only for recovering a dirty schema.
func (m *Migrator) Force(version int) error {
	m.log.Warn("Forcing migration version", zap.Int("version", version))

	if err := m.core.Force(version); err != nil {
		return fmt.Errorf("force version %d: %w", version, err)
	}
	m.log.Info("Migration version forced", zap.Int("version", version))
	return nil
}

// Drop destroys every object in the database.
func (m *Migrator) Drop() error {
	m.log.Warn("Dropping database, all data will be lost")

	if err := m.core.Drop(); err != nil {
		return fmt.Errorf("drop database: %w", err)
	}
	m.log.Info("Database dropped")
	return nil
}

// Close releases the source and database handles.
func (m *Migrator) Close() error {
	sourceErr, dbErr := m.core.Close()
	if sourceErr != nil {
		return fmt.Errorf("close migration source: %w", sourceErr)
	}
	if dbErr != nil {
		return fmt.Errorf("close migration database handle: %w", dbErr)
	}
	return nil
}
