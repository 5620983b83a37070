package migrations

import (
	"context"
	"embed"
	"fmt"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/migrate"
)

//go:embed sql/*.sql
var sqlFiles embed.FS

// Migrations holds every schema step. bun names each one after the Go file
// that registers it, so MustRegister is called from the numbered files.
var Migrations = migrate.NewMigrations()

// execFile returns a migration step running one embedded SQL file.
func execFile(file string) migrate.MigrationFunc {
	return func(ctx context.Context, db *bun.DB) error {
		body, err := sqlFiles.ReadFile("sql/" + file)
		if err != nil {
			return fmt.Errorf("read %s: %w", file, err)
		}
		_, err = db.ExecContext(ctx, string(body))
		return err
	}
}

func execSQL(query string) migrate.MigrationFunc {
	return func(ctx context.Context, db *bun.DB) error {
		_, err := db.ExecContext(ctx, query)
		return err
	}
}
