package db

import (
	"database/sql"
	"testing"
)

// NewTestDB creates a fresh in-memory SQLite database with the schema applied.
func NewTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := Open(":memory:")
	if err != nil {
		t.Fatalf("opening test database: %v", err)
	}

	if err := EnsureSchema(db); err != nil {
		db.Close()
		t.Fatalf("creating test database schema: %v", err)
	}

	t.Cleanup(func() { db.Close() })

	return db
}

// Fixture names the rows inserted by NewMarketTestDB.
type Fixture struct {
	SellerID   int64
	BuyerID    int64
	CategoryID int64
}

// NewMarketTestDB creates a test database holding a seller with no balance,
// a buyer with buyerBalance and one category, ready for listing items.
func NewMarketTestDB(t *testing.T, buyerBalance int64) (*sql.DB, Fixture) {
	t.Helper()
	db := NewTestDB(t)

	insert := func(query string, args ...any) int64 {
		res, err := db.Exec(query, args...)
		if err != nil {
			t.Fatalf("inserting fixture: %v", err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			t.Fatalf("fixture id: %v", err)
		}
		return id
	}

	return db, Fixture{
		SellerID:   insert(`INSERT INTO users (name, password_hash, balance) VALUES ('seller', 'hash', 0)`),
		BuyerID:    insert(`INSERT INTO users (name, password_hash, balance) VALUES ('buyer', 'hash', ?)`, buyerBalance),
		CategoryID: insert(`INSERT INTO categories (name) VALUES ('Home')`),
	}
}
