package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/erazemk/trznica/internal/model"
)

// NewItem holds the fields of an item to be listed.
type NewItem struct {
	Name        string
	CategoryID  int64
	UserID      int64
	Price       int64
	Description string
	Status      model.ItemStatus
	Image       []byte
	ImageMime   string
}

// CreateItem creates a new item.
func CreateItem(ctx context.Context, db *sql.DB, n NewItem) (*model.Item, error) {
	result, err := db.ExecContext(ctx,
		`INSERT INTO items (name, category_id, user_id, price, description, status, image, image_mime)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		n.Name, n.CategoryID, n.UserID, n.Price, n.Description, n.Status, n.Image, nullString(n.ImageMime),
	)
	if err != nil {
		return nil, fmt.Errorf("creating item: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting item id: %w", err)
	}

	return GetItem(ctx, db, id)
}

// GetItem returns an item with its category name, or nil if there is none.
func GetItem(ctx context.Context, db *sql.DB, id int64) (*model.Item, error) {
	item := &model.Item{}
	err := db.QueryRowContext(ctx,
		`SELECT i.id, i.name, i.category_id, c.name, i.user_id, i.price, i.description, i.status
		 FROM items i JOIN categories c ON c.id = i.category_id
		 WHERE i.id = ?`, id,
	).Scan(&item.ID, &item.Name, &item.CategoryID, &item.CategoryName, &item.UserID, &item.Price, &item.Description, &item.Status)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting item: %w", err)
	}
	return item, nil
}

// ListOnSaleItems returns the catalog projection of every item on sale,
// newest first.
func ListOnSaleItems(ctx context.Context, db *sql.DB) ([]model.CatalogItem, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT i.id, i.name, i.price, c.name
		 FROM items i JOIN categories c ON c.id = i.category_id
		 WHERE i.status = ? ORDER BY i.id DESC`, model.ItemStatusOnSale,
	)
	if err != nil {
		return nil, fmt.Errorf("listing items: %w", err)
	}
	defer rows.Close()

	items := []model.CatalogItem{}
	for rows.Next() {
		var item model.CatalogItem
		if err := rows.Scan(&item.ID, &item.Name, &item.Price, &item.CategoryName); err != nil {
			return nil, fmt.Errorf("scanning item: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// UpdateItemStatus sets an item's status.
func UpdateItemStatus(ctx context.Context, db *sql.DB, id int64, status model.ItemStatus) error {
	result, err := db.ExecContext(ctx,
		`UPDATE items SET status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		status, id,
	)
	if err != nil {
		return fmt.Errorf("updating item status: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return ErrItemNotFound
	}
	return nil
}

// SetItemImage sets an item's image data.
func SetItemImage(ctx context.Context, db *sql.DB, id int64, image []byte, mime string) error {
	_, err := db.ExecContext(ctx,
		`UPDATE items SET image = ?, image_mime = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		image, mime, id,
	)
	if err != nil {
		return fmt.Errorf("setting item image: %w", err)
	}
	return nil
}

// GetItemImage returns an item's image data and MIME type. Both are empty
// when the item does not exist or has no image.
func GetItemImage(ctx context.Context, db *sql.DB, id int64) ([]byte, string, error) {
	var image []byte
	var mime sql.NullString
	err := db.QueryRowContext(ctx,
		`SELECT image, image_mime FROM items WHERE id = ?`, id,
	).Scan(&image, &mime)
	if err == sql.ErrNoRows {
		return nil, "", nil
	}
	if err != nil {
		return nil, "", fmt.Errorf("getting item image: %w", err)
	}
	return image, mime.String, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
