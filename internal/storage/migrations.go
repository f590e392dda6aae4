package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
)

// ExpectedSchemaVersion is the latest schema version that the application expects.
const ExpectedSchemaVersion = 3

// Migration represents a database schema migration.
type Migration struct {
	Up          func(*sql.Tx) error
	Description string
	Version     int
}

var migrations = []Migration{
	{
		Version:     1,
		Description: "Initial schema: transactions and grouping rules",
		Up: func(tx *sql.Tx) error {
			queries := []string{
				`CREATE TABLE IF NOT EXISTS transactions (
					id TEXT PRIMARY KEY,
					hash TEXT UNIQUE NOT NULL,
					date DATETIME NOT NULL,
					vendor_name TEXT NOT NULL,
					entity_id TEXT,
					amount TEXT NOT NULL,
					created_at DATETIME DEFAULT CURRENT_TIMESTAMP
				)`,
				`CREATE INDEX idx_transactions_date ON transactions(date)`,
				`CREATE INDEX idx_transactions_vendor ON transactions(vendor_name)`,

				`CREATE TABLE IF NOT EXISTS group_rules (
					vendor_pattern TEXT PRIMARY KEY,
					entity_id TEXT NOT NULL,
					is_regex INTEGER DEFAULT 0,
					priority INTEGER DEFAULT 0,
					source TEXT NOT NULL,
					use_count INTEGER DEFAULT 0,
					last_updated DATETIME DEFAULT CURRENT_TIMESTAMP
				)`,
			}

			for _, query := range queries {
				if _, err := tx.Exec(query); err != nil {
					return fmt.Errorf("failed to execute query: %w", err)
				}
			}
			return nil
		},
	},
	{
		Version:     2,
		Description: "Vendor pattern cache",
		Up: func(tx *sql.Tx) error {
			_, err := tx.Exec(`
				CREATE TABLE IF NOT EXISTS vendor_patterns (
					entity_id TEXT PRIMARY KEY,
					pattern_type TEXT NOT NULL,
					frequency_days INTEGER DEFAULT 0,
					anchor_weekday INTEGER,
					anchor_day INTEGER,
					weekdays_only INTEGER DEFAULT 0,
					month_anchored INTEGER DEFAULT 0,
					timing_confidence REAL DEFAULT 0,
					consistency REAL DEFAULT 0,
					avg_amount REAL DEFAULT 0,
					median_amount REAL DEFAULT 0,
					variance_coefficient REAL DEFAULT 0,
					amount_class TEXT NOT NULL,
					amount_confidence REAL DEFAULT 0,
					recommendation TEXT NOT NULL,
					reasoning TEXT,
					transaction_count INTEGER DEFAULT 0,
					recent_count INTEGER DEFAULT 0,
					sign INTEGER DEFAULT 1,
					last_transaction DATETIME,
					analyzed_at DATETIME NOT NULL
				)
			`)
			return err
		},
	},
	{
		Version:     3,
		Description: "Forecast records with lock support",
		Up: func(tx *sql.Tx) error {
			queries := []string{
				`CREATE TABLE IF NOT EXISTS forecasts (
					id TEXT PRIMARY KEY,
					entity_id TEXT NOT NULL,
					date DATETIME NOT NULL,
					amount TEXT NOT NULL,
					pattern_type TEXT NOT NULL,
					method TEXT NOT NULL,
					confidence REAL DEFAULT 0,
					is_locked INTEGER DEFAULT 0,
					created_at DATETIME DEFAULT CURRENT_TIMESTAMP
				)`,
				`CREATE INDEX idx_forecasts_entity_date ON forecasts(entity_id, date)`,
				`CREATE INDEX idx_forecasts_unlocked ON forecasts(entity_id, is_locked)`,
			}

			for _, query := range queries {
				if _, err := tx.Exec(query); err != nil {
					return fmt.Errorf("failed to execute query: %w", err)
				}
			}
			return nil
		},
	},
}

// Migrate applies any pending schema migrations.
func (s *SQLiteStorage) Migrate(ctx context.Context) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	var currentVersion int
	if err := s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&currentVersion); err != nil {
		return fmt.Errorf("failed to get schema version: %w", err)
	}

	for _, migration := range migrations {
		if migration.Version <= currentVersion {
			continue
		}

		slog.Info("Applying migration",
			"version", migration.Version,
			"description", migration.Description)

		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("failed to begin migration transaction: %w", err)
		}

		if err := migration.Up(tx); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("migration %d failed: %w", migration.Version, err)
		}

		if _, err := tx.Exec(fmt.Sprintf("PRAGMA user_version = %d", migration.Version)); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to set schema version: %w", err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("failed to commit migration %d: %w", migration.Version, err)
		}
	}

	return nil
}
