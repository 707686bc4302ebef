package postgres

import (
	"embed"
	"errors"
	"fmt"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	// Драйвер pgx/v5 для golang-migrate.
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Migrate применяет все ещё не применённые миграции схемы.
// Повторный вызов на актуальной схеме - не ошибка.
func Migrate(dbURL string) error {
	const op = "storage.postgres.Migrate"

	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	m, err := migrate.NewWithSourceInstance("iofs", src, migrateURL(dbURL))
	if err != nil {
		_ = src.Close()
		return fmt.Errorf("%s: %w", op, err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// migrateURL переводит postgres:// и postgresql:// в схему pgx5://,
// которую ожидает драйвер golang-migrate.
func migrateURL(dbURL string) string {
	for _, prefix := range []string{"postgres://", "postgresql://"} {
		if rest, ok := strings.CutPrefix(dbURL, prefix); ok {
			return "pgx5://" + rest
		}
	}

	return dbURL
}
