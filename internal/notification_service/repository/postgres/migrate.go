package postgres

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"sort"

	"github.com/ordernotify/golang_services/migrations"
)

// Migrate applies every *.up.sql file in order. The files are idempotent, so it runs on each startup.
func Migrate(ctx context.Context, db Querier, logger *slog.Logger) error {
	return applyMigrations(ctx, db, migrations.FS, logger)
}

func applyMigrations(ctx context.Context, db Querier, files fs.FS, logger *slog.Logger) error {
	names, err := fs.Glob(files, "*.up.sql")
	if err != nil {
		return fmt.Errorf("listing migrations: %w", err)
	}
	sort.Strings(names)

	for _, name := range names {
		body, err := fs.ReadFile(files, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}
		if _, err := db.Exec(ctx, string(body)); err != nil {
			return fmt.Errorf("applying migration %s: %w", name, err)
		}
		logger.DebugContext(ctx, "Applied migration", "file", name)
	}
	logger.InfoContext(ctx, "PostgreSQL schema up to date", "migrations", len(names))
	return nil
}
