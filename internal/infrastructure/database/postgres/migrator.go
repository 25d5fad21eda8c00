// Package postgres owns the PostgreSQL connection pool and the schema
// migrations of the policies and policy_comparisons tables.
package postgres

import (
	"errors"
	"fmt"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres" // Postgres driver
	_ "github.com/golang-migrate/migrate/v4/source/file"       // File source driver

	"github.com/turtacn/PolicyInsight/internal/infrastructure/monitoring/logging"
)

// MigrationState is the schema version recorded by golang-migrate.
type MigrationState struct {
	Version uint
	Dirty   bool
}

// Migrator applies the SQL files under a migrations directory.
type Migrator struct {
	dbURL     string
	sourceURL string
	logger    logging.Logger
}

// NewMigrator creates a Migrator. path may be a bare directory or a
// "file://" URL.
func NewMigrator(dbURL, path string, logger logging.Logger) *Migrator {
	if !strings.Contains(path, "://") {
		path = "file://" + path
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Migrator{dbURL: dbURL, sourceURL: path, logger: logger}
}

func (m *Migrator) open() (*migrate.Migrate, error) {
	mg, err := migrate.New(m.sourceURL, m.dbURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create migrate instance: %w", err)
	}
	return mg, nil
}

// Up applies every pending migration. Nothing to apply is not an error.
func (m *Migrator) Up() error {
	mg, err := m.open()
	if err != nil {
		return err
	}
	defer mg.Close()

	if err := mg.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	m.logState(mg)
	return nil
}

// Down rolls back steps migrations.
func (m *Migrator) Down(steps int) error {
	if steps <= 0 {
		return fmt.Errorf("steps must be greater than 0, got %d", steps)
	}
	mg, err := m.open()
	if err != nil {
		return err
	}
	defer mg.Close()

	if err := mg.Steps(-steps); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			return fmt.Errorf("no migrations to roll back")
		}
		return fmt.Errorf("failed to rollback %d step(s): %w", steps, err)
	}
	m.logState(mg)
	return nil
}

// Status reports the applied version. An empty schema is version 0.
func (m *Migrator) Status() (MigrationState, error) {
	mg, err := m.open()
	if err != nil {
		return MigrationState{}, err
	}
	defer mg.Close()
	return readState(mg)
}

// Force records version without running anything, to clear a dirty state.
func (m *Migrator) Force(version int) error {
	mg, err := m.open()
	if err != nil {
		return err
	}
	defer mg.Close()

	if err := mg.Force(version); err != nil {
		return fmt.Errorf("failed to force version %d: %w", version, err)
	}
	m.logger.Warn("Forced migration version", logging.Int("version", version))
	return nil
}

func readState(mg *migrate.Migrate) (MigrationState, error) {
	version, dirty, err := mg.Version()
	if err != nil {
		if errors.Is(err, migrate.ErrNilVersion) {
			return MigrationState{}, nil
		}
		return MigrationState{}, fmt.Errorf("failed to get migration version: %w", err)
	}
	return MigrationState{Version: version, Dirty: dirty}, nil
}

func (m *Migrator) logState(mg *migrate.Migrate) {
	state, err := readState(mg)
	if err != nil {
		m.logger.Warn("Failed to get migration version", logging.Err(err))
		return
	}
	m.logger.Info("Database migrations completed",
		logging.Int64("version", int64(state.Version)),
		logging.Bool("dirty", state.Dirty),
	)
}

//Personal.AI order the ending
