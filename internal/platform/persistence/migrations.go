package persistence

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres" // PostgreSQL driver
	"github.com/golang-migrate/migrate/v4/source"
	_ "github.com/golang-migrate/migrate/v4/source/file" // File source driver
)

// SchemaVersions lists the migration versions found under migrationsPath.
// Every version must ship a non-empty up script and a down script.
func SchemaVersions(migrationsPath string) ([]uint, error) {
	if migrationsPath == "" {
		return nil, errors.New("migrations path cannot be empty")
	}

	src, err := source.Open(fmt.Sprintf("file://%s", migrationsPath))
	if err != nil {
		return nil, fmt.Errorf("failed to open migrations source: %w", err)
	}
	defer src.Close()

	version, err := src.First()
	if err != nil {
		return nil, fmt.Errorf("no migrations found in %s: %w", migrationsPath, err)
	}

	var versions []uint
	for {
		if err := checkScripts(src, version); err != nil {
			return nil, err
		}
		versions = append(versions, version)

		next, err := src.Next(version)
		if errors.Is(err, os.ErrNotExist) {
			return versions, nil
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read migration after %d: %w", version, err)
		}
		version = next
	}
}

func checkScripts(src source.Driver, version uint) error {
	up, name, err := src.ReadUp(version)
	if err != nil {
		return fmt.Errorf("migration %d has no up script: %w", version, err)
	}
	body, err := io.ReadAll(up)
	up.Close()
	if err != nil {
		return fmt.Errorf("failed to read migration %d_%s: %w", version, name, err)
	}
	if len(body) == 0 {
		return fmt.Errorf("migration %d_%s has an empty up script", version, name)
	}

	down, _, err := src.ReadDown(version)
	if err != nil {
		return fmt.Errorf("migration %d_%s has no down script: %w", version, name, err)
	}
	return down.Close()
}

// RunMigrations applies the obligations and exchange_rates schema and logs the resulting version
func RunMigrations(logger *slog.Logger, databaseURL string, migrationsPath string) error {
	if databaseURL == "" {
		return errors.New("database URL cannot be empty")
	}
	versions, err := SchemaVersions(migrationsPath)
	if err != nil {
		return err
	}

	m, err := migrate.New(fmt.Sprintf("file://%s", migrationsPath), databaseURL)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}
	defer func() {
		if sourceErr, dbErr := m.Close(); sourceErr != nil || dbErr != nil {
			logger.Warn("Failed to close migrate instance", "source_error", sourceErr, "database_error", dbErr)
		}
	}()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}

	version, dirty, err := m.Version()
	if err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}
	if dirty {
		return fmt.Errorf("schema version %d is dirty", version)
	}
	logger.Info("Database schema up to date",
		"version", version,
		"latest_available", versions[len(versions)-1],
	)
	return nil
}
