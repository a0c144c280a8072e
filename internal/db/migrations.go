package db

import (
	"database/sql"
	"fmt"
)

// migrations is a list of SQL statements applied in order after schema
// creation. The index of the last applied migration is kept in
// PRAGMA user_version. Append new migrations at the end.
var migrations = []string{
	// Migration 1: the catalog lists items by status.
	`CREATE INDEX IF NOT EXISTS idx_items_status ON items(status)`,
	// Migration 2: item pages join the seller.
	`CREATE INDEX IF NOT EXISTS idx_items_user ON items(user_id)`,
}

// Migrate applies the migrations not yet recorded in the database.
func Migrate(db *sql.DB) error {
	var version int
	if err := db.QueryRow(`PRAGMA user_version`).Scan(&version); err != nil {
		return fmt.Errorf("reading schema version: %w", err)
	}

	for i := version; i < len(migrations); i++ {
		if _, err := db.Exec(migrations[i]); err != nil {
			return fmt.Errorf("running migration %d: %w", i+1, err)
		}
		// PRAGMA does not accept bound parameters.
		if _, err := db.Exec(fmt.Sprintf(`PRAGMA user_version = %d`, i+1)); err != nil {
			return fmt.Errorf("recording migration %d: %w", i+1, err)
		}
	}

	return nil
}

// Version returns the number of migrations applied.
func Version(db *sql.DB) (int, error) {
	var version int
	if err := db.QueryRow(`PRAGMA user_version`).Scan(&version); err != nil {
		return 0, fmt.Errorf("reading schema version: %w", err)
	}
	return version, nil
}
