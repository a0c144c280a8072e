package model

import "fmt"

// ItemStatus is the sale state of an item, encoded as a small integer on the wire.
type ItemStatus int

// Item statuses.
const (
	ItemStatusInitial ItemStatus = iota
	ItemStatusOnSale
	ItemStatusSoldOut
)

func (s ItemStatus) String() string {
	switch s {
	case ItemStatusInitial:
		return "Initial"
	case ItemStatusOnSale:
		return "OnSale"
	case ItemStatusSoldOut:
		return "SoldOut"
	default:
		return fmt.Sprintf("ItemStatus(%d)", int(s))
	}
}

// Purchasable reports whether an item in this status may be bought.
func (s ItemStatus) Purchasable() bool {
	return s != ItemStatusSoldOut
}

// Item is the full read model of a marketplace listing.
type Item struct {
	ID           int64      `json:"id"`
	Name         string     `json:"name"`
	CategoryID   int64      `json:"category_id"`
	CategoryName string     `json:"category_name"`
	UserID       int64      `json:"user_id"`
	Price        int64      `json:"price"`
	Description  string     `json:"description"`
	Status       ItemStatus `json:"status"`
}

// CatalogItem is the reduced projection returned by the catalog listing.
type CatalogItem struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	Price        int64  `json:"price"`
	CategoryName string `json:"category_name"`
}

// Category groups items.
type Category struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}
