// Package migration applies the SQL files under migrations/ with
// golang-migrate and scaffolds new numbered file pairs.
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

// Migrator wraps a golang-migrate instance bound to the postgres driver
type Migrator struct {
	migrate *migrate.Migrate
	logger  *zap.Logger
}

// Status is the schema version recorded in schema_migrations
type Status struct {
	Version uint
	Dirty   bool
	Pending int
}

// New creates a Migrator over an open connection. The schema_migrations
// table is created on first use.
func New(db *sql.DB, migrationsPath string, logger *zap.Logger) (*Migrator, error) {
	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return nil, fmt.Errorf("migration: postgres driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance(sourceURL(migrationsPath), "postgres", driver)
	if err != nil {
		return nil, fmt.Errorf("migration: open source %s: %w", migrationsPath, err)
	}
	return &Migrator{migrate: m, logger: logger.Named("migration")}, nil
}

// NewFromURL creates a Migrator from a postgres:// URL
func NewFromURL(databaseURL, migrationsPath string, logger *zap.Logger) (*Migrator, error) {
	m, err := migrate.New(sourceURL(migrationsPath), databaseURL)
	if err != nil {
		return nil, fmt.Errorf("migration: open %s: %w", migrationsPath, err)
	}
	return &Migrator{migrate: m, logger: logger.Named("migration")}, nil
}

func sourceURL(path string) string {
	return "file://" + path
}

// Up applies every pending migration. An up-to-date schema is not an error.
func (m *Migrator) Up() error {
	before, _, _ := m.Version()
	if err := ignoreNoChange(m.migrate.Up()); err != nil {
		return fmt.Errorf("migration: up: %w", err)
	}
	return m.logVersion("schema up to date", before)
}

// Down rolls back every migration
func (m *Migrator) Down() error {
	if err := ignoreNoChange(m.migrate.Down()); err != nil {
		return fmt.Errorf("migration: down: %w", err)
	}
	m.logger.Info("all migrations rolled back")
	return nil
}

// Steps applies n migrations, rolling back when n is negative
func (m *Migrator) Steps(n int) error {
	before, _, _ := m.Version()
	if err := ignoreNoChange(m.migrate.Steps(n)); err != nil {
		return fmt.Errorf("migration: steps %d: %w", n, err)
	}
	return m.logVersion("steps applied", before)
}

// GoTo migrates up or down to version
func (m *Migrator) GoTo(version uint) error {
	before, _, _ := m.Version()
	if err := ignoreNoChange(m.migrate.Migrate(version)); err != nil {
		return fmt.Errorf("migration: goto %d: %w", version, err)
	}
	return m.logVersion("version reached", before)
}

// Version returns the applied version; 0 means nothing has been applied.
func (m *Migrator) Version() (uint, bool, error) {
	version, dirty, err := m.migrate.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("migration: version: %w", err)
	}
	return version, dirty, nil
}

// Status reports the applied version and how many files in dir are newer
func (m *Migrator) Status(dir string) (Status, error) {
	version, dirty, err := m.Version()
	if err != nil {
		return Status{}, err
	}
	files, err := ListMigrations(dir)
	if err != nil {
		return Status{}, err
	}
	st := Status{Version: version, Dirty: dirty}
	for _, f := range files {
		if f.Version > version {
			st.Pending++
		}
	}
	return st, nil
}

// Force records version without running anything. It clears the dirty
// flag left by a failed migration.
func (m *Migrator) Force(version int) error {
	if err := m.migrate.Force(version); err != nil {
		return fmt.Errorf("migration: force %d: %w", version, err)
	}
	m.logger.Warn("version forced", zap.Int("version", version))
	return nil
}

// Drop removes every object in the database, schema_migrations included
func (m *Migrator) Drop() error {
	if err := m.migrate.Drop(); err != nil {
		return fmt.Errorf("migration: drop: %w", err)
	}
	m.logger.Warn("database dropped")
	return nil
}

// Close releases the source and database handles
func (m *Migrator) Close() error {
	sourceErr, dbErr := m.migrate.Close()
	return errors.Join(sourceErr, dbErr)
}

func (m *Migrator) logVersion(msg string, before uint) error {
	version, dirty, err := m.Version()
	if err != nil {
		return err
	}
	m.logger.Info(msg,
		zap.Uint("from", before),
		zap.Uint("to", version),
		zap.Bool("dirty", dirty),
	)
	return nil
}

func ignoreNoChange(err error) error {
	if errors.Is(err, migrate.ErrNoChange) {
		return nil
	}
	return err
}
