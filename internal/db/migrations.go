package db

import (
	"context"
	"fmt"
	"time"
)

// migration is one applied-once schema step. Versions are monotonic; the
// store records the highest applied version in schema_migrations so it can
// upgrade itself across releases without losing data.
type migration struct {
	version     int64
	description string
	statements  []string
}

const createSchemaMigrationsTable = `
CREATE TABLE IF NOT EXISTS schema_migrations (
	version INTEGER PRIMARY KEY,
	description TEXT NOT NULL,
	applied_at TEXT NOT NULL
);`

func allMigrations() []migration {
	return []migration{
		{
			version:     1,
			description: "core tables",
			statements: []string{
				`CREATE TABLE IF NOT EXISTS providers (
					id INTEGER PRIMARY KEY AUTOINCREMENT,
					api_key_hash TEXT NOT NULL UNIQUE,
					api_key_prefix TEXT NOT NULL,
					display_name TEXT,
					base_url TEXT,
					is_active INTEGER DEFAULT 0,
					first_seen_at TEXT NOT NULL,
					last_seen_at TEXT NOT NULL
				);`,
				`CREATE TABLE IF NOT EXISTS message_usage (
					id INTEGER PRIMARY KEY AUTOINCREMENT,
					provider_id INTEGER NOT NULL,
					session_id TEXT NOT NULL,
					message_id TEXT NOT NULL,
					model TEXT NOT NULL,
					input_tokens INTEGER DEFAULT 0,
					output_tokens INTEGER DEFAULT 0,
					cache_read_tokens INTEGER DEFAULT 0,
					cache_creation_tokens INTEGER DEFAULT 0,
					cost_usd REAL DEFAULT 0,
					created_at TEXT NOT NULL,
					FOREIGN KEY (provider_id) REFERENCES providers(id)
				);`,
				`CREATE TABLE IF NOT EXISTS daily_stats (
					id INTEGER PRIMARY KEY AUTOINCREMENT,
					provider_id INTEGER NOT NULL,
					date TEXT NOT NULL,
					total_input_tokens INTEGER DEFAULT 0,
					total_output_tokens INTEGER DEFAULT 0,
					total_cache_read_tokens INTEGER DEFAULT 0,
					total_cache_creation_tokens INTEGER DEFAULT 0,
					total_cost_usd REAL DEFAULT 0,
					session_count INTEGER DEFAULT 0,
					message_count INTEGER DEFAULT 0,
					UNIQUE(provider_id, date),
					FOREIGN KEY (provider_id) REFERENCES providers(id)
				);`,
				`CREATE TABLE IF NOT EXISTS provider_switch_logs (
					id INTEGER PRIMARY KEY AUTOINCREMENT,
					provider_id INTEGER NOT NULL,
					switched_at TEXT NOT NULL,
					FOREIGN KEY (provider_id) REFERENCES providers(id)
				);`,
				`CREATE INDEX IF NOT EXISTS idx_message_usage_provider ON message_usage(provider_id);`,
				`CREATE INDEX IF NOT EXISTS idx_message_usage_created ON message_usage(created_at);`,
				`CREATE INDEX IF NOT EXISTS idx_daily_stats_date ON daily_stats(date);`,
				`CREATE INDEX IF NOT EXISTS idx_daily_stats_provider ON daily_stats(provider_id);`,
			},
		},
		{
			version:     2,
			description: "unique message identity per provider",
			statements: []string{
				`CREATE UNIQUE INDEX IF NOT EXISTS idx_message_usage_identity
					ON message_usage(provider_id, message_id);`,
			},
		},
		{
			version:     3,
			description: "persist rollup date on usage events",
			statements: []string{
				`ALTER TABLE message_usage ADD COLUMN usage_date TEXT;`,
				`UPDATE message_usage SET usage_date = date(created_at, 'localtime')
					WHERE usage_date IS NULL;`,
				`CREATE INDEX IF NOT EXISTS idx_message_usage_session_date
					ON message_usage(provider_id, session_id, usage_date);`,
			},
		},
	}
}

// migrate applies all pending migrations in version order.
func (db *DB) migrate() error {
	ctx := context.Background()

	if _, err := db.ExecContext(ctx, createSchemaMigrationsTable); err != nil {
		return fmt.Errorf("failed to create schema_migrations: %w", err)
	}

	var current int64
	row := db.QueryRowContext(ctx, "SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&current); err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}

	for _, m := range allMigrations() {
		if m.version <= current {
			continue
		}

		tx, err := db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("failed to begin migration %d: %w", m.version, err)
		}

		for _, stmt := range m.statements {
			if _, err := tx.ExecContext(ctx, stmt); err != nil {
				_ = tx.Rollback()
				return fmt.Errorf("migration %d (%s) failed: %w", m.version, m.description, err)
			}
		}

		_, err = tx.ExecContext(ctx,
			"INSERT INTO schema_migrations (version, description, applied_at) VALUES (?, ?, ?)",
			m.version, m.description, time.Now().Format(time.RFC3339),
		)
		if err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to record migration %d: %w", m.version, err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("failed to commit migration %d: %w", m.version, err)
		}
	}

	return nil
}

// SchemaVersion returns the highest applied migration version.
func (db *DB) SchemaVersion() (int64, error) {
	var version int64
	row := db.QueryRowContext(context.Background(),
		"SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&version); err != nil {
		return 0, fmt.Errorf("failed to read schema version: %w", err)
	}
	return version, nil
}
