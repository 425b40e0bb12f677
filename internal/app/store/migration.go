package store

import (
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"go.uber.org/zap"

	"github.com/aseptimu/bijective-shortener/internal/app/config"
	"github.com/aseptimu/bijective-shortener/internal/app/database"
)

//go:embed migrations/*.sql
var migrations embed.FS

// MigrateDB подключается к базе и применяет миграции, вшитые в бинарник.
// Отсутствие новых миграций ошибкой не считается.
func MigrateDB(ps string, logger *zap.SugaredLogger) error {
	db, err := database.NewDB("pgx", ps, database.PostgresPool, config.DBTimeout, logger)
	if err != nil {
		return err
	}
	defer db.Close()

	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("failed to create migrate driver: %w", err)
	}

	source, err := iofs.New(migrations, "migrations")
	if err != nil {
		return fmt.Errorf("failed to open migrations: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, "postgres", driver)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	logger.Infof("Migration executed successfully")
	return nil
}
