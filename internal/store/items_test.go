package store

import (
	"context"
	"database/sql"
	"testing"

	"github.com/erazemk/trznica/internal/db"
	"github.com/erazemk/trznica/internal/model"
)

// fixture creates a seller, a buyer with the given balance and one category.
func fixture(t *testing.T, database *sql.DB, buyerBalance int64) (sellerID, buyerID, categoryID int64) {
	t.Helper()
	ctx := context.Background()

	seller, err := CreateUser(ctx, database, "seller", "hash", 0)
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	buyer, err := CreateUser(ctx, database, "buyer", "hash", buyerBalance)
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	category, err := CreateCategory(ctx, database, "Home")
	if err != nil {
		t.Fatalf("CreateCategory: %v", err)
	}
	return seller.ID, buyer.ID, category.ID
}

func TestCreateAndGetItem(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	sellerID, _, categoryID := fixture(t, database, 0)

	item, err := CreateItem(ctx, database, NewItem{
		Name:        "Mug",
		CategoryID:  categoryID,
		UserID:      sellerID,
		Price:       500,
		Description: "White mug",
		Status:      model.ItemStatusOnSale,
	})
	if err != nil {
		t.Fatalf("CreateItem: %v", err)
	}
	if item.CategoryName != "Home" {
		t.Errorf("expected category 'Home', got %q", item.CategoryName)
	}
	if item.Status != model.ItemStatusOnSale {
		t.Errorf("expected status OnSale, got %v", item.Status)
	}
	if item.UserID != sellerID || item.Price != 500 || item.Description != "White mug" {
		t.Errorf("unexpected item: %+v", item)
	}

	missing, err := GetItem(ctx, database, 999)
	if err != nil {
		t.Fatalf("GetItem: %v", err)
	}
	if missing != nil {
		t.Error("expected nil for missing item")
	}
}

func TestListOnSaleItems(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	sellerID, _, categoryID := fixture(t, database, 0)

	for _, n := range []NewItem{
		{Name: "A", Price: 1, Status: model.ItemStatusOnSale},
		{Name: "B", Price: 2, Status: model.ItemStatusSoldOut},
		{Name: "C", Price: 3, Status: model.ItemStatusInitial},
		{Name: "D", Price: 4, Status: model.ItemStatusOnSale},
	} {
		n.CategoryID, n.UserID = categoryID, sellerID
		if _, err := CreateItem(ctx, database, n); err != nil {
			t.Fatalf("CreateItem: %v", err)
		}
	}

	items, err := ListOnSaleItems(ctx, database)
	if err != nil {
		t.Fatalf("ListOnSaleItems: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 on-sale items, got %d", len(items))
	}
	if items[0].Name != "D" || items[1].Name != "A" {
		t.Errorf("expected newest first, got %q, %q", items[0].Name, items[1].Name)
	}
	if items[0].CategoryName != "Home" {
		t.Errorf("expected category 'Home', got %q", items[0].CategoryName)
	}
}

func TestListOnSaleItemsEmpty(t *testing.T) {
	database := db.NewTestDB(t)

	items, err := ListOnSaleItems(context.Background(), database)
	if err != nil {
		t.Fatalf("ListOnSaleItems: %v", err)
	}
	if items == nil || len(items) != 0 {
		t.Errorf("expected empty non-nil slice, got %#v", items)
	}
}

func TestItemImage(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	sellerID, _, categoryID := fixture(t, database, 0)

	item, _ := CreateItem(ctx, database, NewItem{Name: "Photo Item", CategoryID: categoryID, UserID: sellerID})

	data, mime, err := GetItemImage(ctx, database, item.ID)
	if err != nil {
		t.Fatalf("GetItemImage: %v", err)
	}
	if data != nil || mime != "" {
		t.Errorf("expected no image, got %d bytes of %q", len(data), mime)
	}

	SetItemImage(ctx, database, item.ID, []byte("fake image data"), "image/png")

	data, mime, err = GetItemImage(ctx, database, item.ID)
	if err != nil {
		t.Fatalf("GetItemImage: %v", err)
	}
	if string(data) != "fake image data" {
		t.Errorf("expected image data, got %q", string(data))
	}
	if mime != "image/png" {
		t.Errorf("expected mime 'image/png', got %q", mime)
	}
}

func TestUpdateItemStatus(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	sellerID, _, categoryID := fixture(t, database, 0)

	item, _ := CreateItem(ctx, database, NewItem{Name: "Lamp", CategoryID: categoryID, UserID: sellerID})
	if err := UpdateItemStatus(ctx, database, item.ID, model.ItemStatusOnSale); err != nil {
		t.Fatalf("UpdateItemStatus: %v", err)
	}

	got, _ := GetItem(ctx, database, item.ID)
	if got.Status != model.ItemStatusOnSale {
		t.Errorf("expected OnSale, got %v", got.Status)
	}

	if err := UpdateItemStatus(ctx, database, 999, model.ItemStatusOnSale); err != ErrItemNotFound {
		t.Errorf("expected ErrItemNotFound, got %v", err)
	}
}
