package database

import (
	"database/sql"
	"fmt"
	"log"
	"time"
)

const migrationsTableName = "schema_migrations"

// InitHistorySchema создает таблицы истории прогонов
func InitHistorySchema(db *sql.DB) error {
	schema := `
		CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			username TEXT NOT NULL,
			input_file TEXT NOT NULL DEFAULT '',
			state TEXT NOT NULL,
			progress INTEGER NOT NULL DEFAULT 0,
			started_at TIMESTAMP NOT NULL,
			finished_at TIMESTAMP,
			total INTEGER NOT NULL DEFAULT 0,
			succeeded INTEGER NOT NULL DEFAULT 0,
			failed INTEGER NOT NULL DEFAULT 0,
			result_path TEXT NOT NULL DEFAULT '',
			error TEXT NOT NULL DEFAULT '',
			columns TEXT NOT NULL DEFAULT '[]'
		);

		CREATE TABLE IF NOT EXISTS run_rows (
			run_id TEXT NOT NULL,
			row_index INTEGER NOT NULL,
			cells TEXT NOT NULL,
			PRIMARY KEY (run_id, row_index),
			FOREIGN KEY (run_id) REFERENCES runs(id) ON DELETE CASCADE
		);

		CREATE TABLE IF NOT EXISTS run_errors (
			run_id TEXT NOT NULL,
			row_index INTEGER NOT NULL,
			manufacturer TEXT NOT NULL,
			article TEXT NOT NULL,
			PRIMARY KEY (run_id, row_index),
			FOREIGN KEY (run_id) REFERENCES runs(id) ON DELETE CASCADE
		);
	`

	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create history schema: %w", err)
	}
	return nil
}

// historyMigration именованная идемпотентная миграция
type historyMigration struct {
	name  string
	apply func(db *sql.DB) error
}

var historyMigrations = []historyMigration{
	{
		name: "runs_username_started_index",
		apply: func(db *sql.DB) error {
			_, err := db.Exec(`CREATE INDEX IF NOT EXISTS idx_runs_username_started ON runs(username, started_at DESC)`)
			return err
		},
	},
	{
		name: "runs_state_index",
		apply: func(db *sql.DB) error {
			_, err := db.Exec(`CREATE INDEX IF NOT EXISTS idx_runs_state ON runs(state)`)
			return err
		},
	},
}

// MigrateHistorySchema применяет еще не примененные миграции
func MigrateHistorySchema(db *sql.DB) error {
	for _, m := range historyMigrations {
		applied, err := isMigrationApplied(db, m.name)
		if err != nil {
			return err
		}
		if applied {
			continue
		}

		if err := m.apply(db); err != nil {
			return fmt.Errorf("migration %s failed: %w", m.name, err)
		}
		if err := markMigrationApplied(db, m.name); err != nil {
			return err
		}
		log.Printf("Applied history migration: %s", m.name)
	}
	return nil
}

// ensureMigrationTable создает таблицу schema_migrations при необходимости.
func ensureMigrationTable(db *sql.DB) error {
	query := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			name TEXT PRIMARY KEY,
			applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)
	`, migrationsTableName)

	if _, err := db.Exec(query); err != nil {
		return fmt.Errorf("failed to ensure schema_migrations table: %w", err)
	}
	return nil
}

// isMigrationApplied проверяет, была ли уже применена миграция.
func isMigrationApplied(db *sql.DB, name string) (bool, error) {
	if err := ensureMigrationTable(db); err != nil {
		return false, err
	}

	var appliedAt sql.NullTime
	query := fmt.Sprintf(`SELECT applied_at FROM %s WHERE name = ?`, migrationsTableName)
	err := db.QueryRow(query, name).Scan(&appliedAt)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check migration %s: %w", name, err)
	}
	return appliedAt.Valid, nil
}

// markMigrationApplied сохраняет информацию о примененной миграции.
func markMigrationApplied(db *sql.DB, name string) error {
	query := fmt.Sprintf(`INSERT OR REPLACE INTO %s(name, applied_at) VALUES(?, ?)`, migrationsTableName)
	if _, err := db.Exec(query, name, time.Now()); err != nil {
		return fmt.Errorf("failed to mark migration %s as applied: %w", name, err)
	}
	return nil
}
