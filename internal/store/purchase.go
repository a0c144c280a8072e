package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/erazemk/trznica/internal/model"
)

// Purchase precondition failures.
var (
	ErrItemNotFound        = errors.New("item not found")
	ErrUserNotFound        = errors.New("user not found")
	ErrNotOnSale           = errors.New("item is not on sale")
	ErrOwnItem             = errors.New("failed to buy because of user owned item")
	ErrInsufficientBalance = errors.New("failed to buy because of lack of balances")
)

// PurchaseItem sells an on-sale item to buyerID in a single transaction:
// the item becomes sold out and its price moves from the buyer's balance to
// the seller's.
func PurchaseItem(ctx context.Context, db *sql.DB, itemID, buyerID int64) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	var buyerBalance int64
	err = tx.QueryRowContext(ctx, `SELECT balance FROM users WHERE id = ?`, buyerID).Scan(&buyerBalance)
	if err == sql.ErrNoRows {
		return ErrUserNotFound
	}
	if err != nil {
		return fmt.Errorf("getting buyer: %w", err)
	}

	var sellerID, price int64
	var status model.ItemStatus
	err = tx.QueryRowContext(ctx,
		`SELECT user_id, price, status FROM items WHERE id = ?`, itemID,
	).Scan(&sellerID, &price, &status)
	if err == sql.ErrNoRows {
		return ErrItemNotFound
	}
	if err != nil {
		return fmt.Errorf("getting item: %w", err)
	}

	if status != model.ItemStatusOnSale {
		return ErrNotOnSale
	}
	if sellerID == buyerID {
		return ErrOwnItem
	}
	if buyerBalance < price {
		return fmt.Errorf("%w: balance: %d, price: %d", ErrInsufficientBalance, buyerBalance, price)
	}

	// The status guard makes a concurrent second sale a no-op.
	result, err := tx.ExecContext(ctx,
		`UPDATE items SET status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ? AND status = ?`,
		model.ItemStatusSoldOut, itemID, model.ItemStatusOnSale,
	)
	if err != nil {
		return fmt.Errorf("marking item sold: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return ErrNotOnSale
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE users SET balance = balance - ? WHERE id = ?`, price, buyerID,
	); err != nil {
		return fmt.Errorf("debiting buyer: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE users SET balance = balance + ? WHERE id = ?`, price, sellerID,
	); err != nil {
		return fmt.Errorf("crediting seller: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing purchase: %w", err)
	}
	return nil
}

// IsPreconditionFailure reports whether err is one of the purchase
// precondition failures rather than a storage error.
func IsPreconditionFailure(err error) bool {
	for _, target := range []error{ErrItemNotFound, ErrUserNotFound, ErrNotOnSale, ErrOwnItem, ErrInsufficientBalance} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
