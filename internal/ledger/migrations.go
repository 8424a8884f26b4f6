package ledger

import (
	"context"
	"fmt"
)

type migration struct {
	version string
	sql     string
}

// migrations is the ordered schema ladder. Append only; applied versions are
// recorded in schema_migrations and never rerun.
var migrations = []migration{
	{
		version: "0001_create_runs",
		sql: `CREATE TABLE IF NOT EXISTS runs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id TEXT NOT NULL UNIQUE,
			title TEXT,
			source_dir TEXT,
			output_path TEXT,
			status TEXT NOT NULL,
			stage TEXT,
			stage_current INTEGER NOT NULL DEFAULT 0,
			stage_total INTEGER NOT NULL DEFAULT 0,
			error_class TEXT,
			error_message TEXT,
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL,
			completed_at TEXT
		)`,
	},
	{
		version: "0002_runs_status_index",
		sql:     `CREATE INDEX IF NOT EXISTS idx_runs_status ON runs(status)`,
	},
	{
		version: "0003_runs_preview_path",
		sql:     `ALTER TABLE runs ADD COLUMN preview_path TEXT`,
	},
}

func (s *Store) applyMigrations(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin migration tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, "CREATE TABLE IF NOT EXISTS schema_migrations (version TEXT PRIMARY KEY)"); err != nil {
		return fmt.Errorf("ensure schema_migrations: %w", err)
	}

	for _, migration := range migrations {
		var count int
		row := tx.QueryRowContext(ctx, "SELECT COUNT(1) FROM schema_migrations WHERE version = ?", migration.version)
		if err := row.Scan(&count); err != nil {
			return fmt.Errorf("scan migration version: %w", err)
		}
		if count > 0 {
			continue
		}
		if _, err := tx.ExecContext(ctx, migration.sql); err != nil {
			return fmt.Errorf("apply migration %s: %w", migration.version, err)
		}
		if _, err := tx.ExecContext(ctx, "INSERT INTO schema_migrations (version) VALUES (?)", migration.version); err != nil {
			return fmt.Errorf("record migration %s: %w", migration.version, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit migrations: %w", err)
	}
	return nil
}
