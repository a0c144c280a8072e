// Package db opens the development backend's SQLite database.
package db

import (
	"database/sql"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"
)

// pragmas are applied to every pooled connection.
var pragmas = []struct{ name, value string }{
	{"busy_timeout", "5000"},
	{"foreign_keys", "1"},
	{"journal_mode", "WAL"},
	{"synchronous", "NORMAL"},
}

// DSN returns the connection string for path. File databases carry the
// pragmas as _pragma parameters so the driver sets them on each new
// connection.
func DSN(path string) string {
	if path == ":memory:" {
		return path
	}
	params := make([]string, 0, len(pragmas))
	for _, p := range pragmas {
		params = append(params, fmt.Sprintf("_pragma=%s(%s)", p.name, p.value))
	}
	return "file:" + path + "?" + strings.Join(params, "&")
}

// Open opens the SQLite database at path. ":memory:" opens a private
// in-memory database on a single connection.
func Open(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", DSN(path))
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if path == ":memory:" {
		// Every connection to ":memory:" is a separate database.
		db.SetMaxOpenConns(1)
		for _, p := range pragmas {
			stmt := fmt.Sprintf("PRAGMA %s=%s", p.name, p.value)
			if _, err := db.Exec(stmt); err != nil {
				db.Close()
				return nil, fmt.Errorf("setting pragma %q: %w", stmt, err)
			}
		}
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("opening database: %w", err)
	}
	return db, nil
}
