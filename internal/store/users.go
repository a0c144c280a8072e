package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/erazemk/trznica/internal/model"
)

// CreateUser creates a new user with an opening balance.
func CreateUser(ctx context.Context, db *sql.DB, name, passwordHash string, balance int64) (*model.User, error) {
	result, err := db.ExecContext(ctx,
		`INSERT INTO users (name, password_hash, balance) VALUES (?, ?, ?)`,
		name, passwordHash, balance,
	)
	if err != nil {
		return nil, fmt.Errorf("creating user: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting user id: %w", err)
	}

	return GetUser(ctx, db, id)
}

// GetUser returns a user by ID, or nil if there is none.
func GetUser(ctx context.Context, db *sql.DB, id int64) (*model.User, error) {
	u := &model.User{}
	err := db.QueryRowContext(ctx,
		`SELECT id, name, password_hash, balance, created_at FROM users WHERE id = ?`, id,
	).Scan(&u.ID, &u.Name, &u.PasswordHash, &u.Balance, &u.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting user: %w", err)
	}
	return u, nil
}

// AddBalance credits amount to a user's balance.
func AddBalance(ctx context.Context, db *sql.DB, id, amount int64) error {
	if amount < 0 {
		return fmt.Errorf("negative amount %d", amount)
	}
	result, err := db.ExecContext(ctx,
		`UPDATE users SET balance = balance + ? WHERE id = ?`, amount, id,
	)
	if err != nil {
		return fmt.Errorf("adding balance: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return ErrUserNotFound
	}
	return nil
}

// CountUsers returns the number of users.
func CountUsers(ctx context.Context, db *sql.DB) (int, error) {
	var n int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting users: %w", err)
	}
	return n, nil
}
