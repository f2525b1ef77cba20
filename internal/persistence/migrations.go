package persistence

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

// DefaultMigrationsDir holds the per-store schema files.
const DefaultMigrationsDir = "migrations"

// Direction selects which half of the migration files is applied.
type Direction string

const (
	DirectionUp   Direction = "up"
	DirectionDown Direction = "down"
)

// RunMigrations applies the schema files in dir to one department store inside a
// single transaction. Up files run in name order after the store schema is created;
// down files run in reverse order so child tables are dropped first.
func RunMigrations(ctx context.Context, h StoreHandle, dir string, direction Direction, logger *zap.Logger) error {
	if h.DB() == nil {
		logger.Warn("no connection for store; skipping migrations", zap.String("store", h.Department().Store))
		return nil
	}
	if dir == "" {
		dir = DefaultMigrationsDir
	}

	filenames, err := migrationFiles(dir, direction)
	if err != nil {
		return err
	}

	tx, err := h.DB().Begin(ctx)
	if err != nil {
		return WrapStoreError(h, "migrate", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	schema := pgx.Identifier{h.Department().Store}.Sanitize()
	if direction == DirectionUp {
		if _, err := tx.Exec(ctx, "CREATE SCHEMA IF NOT EXISTS "+schema); err != nil {
			return WrapStoreError(h, "migrate", err)
		}
	}
	if _, err := tx.Exec(ctx, "SET LOCAL search_path TO "+schema); err != nil {
		return WrapStoreError(h, "migrate", err)
	}

	for _, name := range filenames {
		content, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return fmt.Errorf("read migration %s: %w", name, err)
		}

		logger.Info("applying migration",
			zap.String("store", h.Department().Store),
			zap.String("file", name))
		if _, err := tx.Exec(ctx, string(content)); err != nil {
			return WrapStoreError(h, "migrate "+name, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return WrapStoreError(h, "migrate", err)
	}
	logger.Info("migrations applied",
		zap.String("store", h.Department().Store),
		zap.String("direction", string(direction)),
		zap.Int("count", len(filenames)))
	return nil
}

func migrationFiles(dir string, direction Direction) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read migrations: %w", err)
	}

	suffix := "." + string(direction) + ".sql"
	filenames := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), suffix) {
			continue
		}
		filenames = append(filenames, entry.Name())
	}

	sort.Strings(filenames)
	if direction == DirectionDown {
		sort.Sort(sort.Reverse(sort.StringSlice(filenames)))
	}
	return filenames, nil
}
