package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/sirupsen/logrus"
)

// DefaultMigrationsPath is the schema directory relative to the working directory.
const DefaultMigrationsPath = "migrations"

// SchemaStatus is the applied schema version. Version 0 means no migration has run.
type SchemaStatus struct {
	Version uint `json:"version"`
	Dirty   bool `json:"dirty"`
}

func (s SchemaStatus) String() string {
	if s.Dirty {
		return fmt.Sprintf("version %d (dirty)", s.Version)
	}
	return fmt.Sprintf("version %d", s.Version)
}

// MigrationRunner applies the protocols and recommendation_feedback schema.
type MigrationRunner struct {
	migrate *migrate.Migrate
	log     *logrus.Logger
}

// NewMigrationRunner opens the migration source directory against databaseURL.
func NewMigrationRunner(databaseURL, migrationsPath string, logger *logrus.Logger) (*MigrationRunner, error) {
	if migrationsPath == "" {
		migrationsPath = DefaultMigrationsPath
	}

	m, err := migrate.New("file://"+migrationsPath, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("opening migrations in %s: %w", migrationsPath, err)
	}
	return &MigrationRunner{migrate: m, log: logger}, nil
}

// Up applies every pending migration.
func (mr *MigrationRunner) Up(ctx context.Context) error {
	return mr.step(ctx, "up", mr.migrate.Up)
}

// Down reverts the most recent migration.
func (mr *MigrationRunner) Down(ctx context.Context) error {
	return mr.step(ctx, "down", func() error { return mr.migrate.Steps(-1) })
}

// step runs one schema change. A run with nothing to apply is not an error.
func (mr *MigrationRunner) step(ctx context.Context, direction string, apply func() error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	before, err := mr.Status()
	if err != nil {
		return err
	}
	entry := mr.log.WithFields(logrus.Fields{
		"direction": direction,
		"from":      before.Version,
	})

	err = apply()
	if errors.Is(err, migrate.ErrNoChange) {
		entry.Info("Schema already current")
		return nil
	}
	if err != nil {
		return fmt.Errorf("migrating %s from %s: %w", direction, before, err)
	}

	after, err := mr.Status()
	if err != nil {
		return err
	}
	entry.WithFields(logrus.Fields{
		"to":    after.Version,
		"dirty": after.Dirty,
	}).Info("Schema migrated")
	return nil
}

// Status reports the applied schema version.
func (mr *MigrationRunner) Status() (SchemaStatus, error) {
	version, dirty, err := mr.migrate.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return SchemaStatus{}, nil
	}
	if err != nil {
		return SchemaStatus{}, fmt.Errorf("reading schema version: %w", err)
	}
	return SchemaStatus{Version: version, Dirty: dirty}, nil
}

// Close releases the source and database handles.
func (mr *MigrationRunner) Close() error {
	srcErr, dbErr := mr.migrate.Close()
	return errors.Join(srcErr, dbErr)
}
