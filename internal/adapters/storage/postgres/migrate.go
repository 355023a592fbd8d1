package postgres

import (
	"context"
	"embed"
	"fmt"
	"io/fs"

	"pets-provider/internal/platform/logger"

	"github.com/jackc/pgx/v5"
	tern "github.com/jackc/tern/v2/migrate"
)

//go:embed migrations/*.sql
var migrations embed.FS

const versionTable = "schema_version"

// Migrate aplica las migraciones embebidas hasta la última versión.
// Usa una conexión directa (no el pool) porque es una acción única.
func Migrate(ctx context.Context, dsn string, log logger.Logger) error {
	conn, err := pgx.Connect(ctx, dsn)
	if err != nil {
		return fmt.Errorf("postgres: connect for migrations: %w", err)
	}
	defer conn.Close(ctx)

	m, err := tern.NewMigrator(ctx, conn, versionTable)
	if err != nil {
		return fmt.Errorf("constructing database migrator: %w", err)
	}

	subtree, err := fs.Sub(migrations, "migrations")
	if err != nil {
		return fmt.Errorf("retrieving database migrations subtree: %w", err)
	}
	if err := m.LoadMigrations(subtree); err != nil {
		return fmt.Errorf("loading database migrations: %w", err)
	}

	from, err := m.GetCurrentVersion(ctx)
	if err != nil {
		return fmt.Errorf("retrieving current database migration version: %w", err)
	}

	if err := m.Migrate(ctx); err != nil {
		return err
	}

	fields := map[string]any{"from": from, "to": len(m.Migrations)}
	if from == int32(len(m.Migrations)) {
		log.Info("database schema up to date", fields)
	} else {
		log.Info("migrated database schema", fields)
	}
	return nil
}
