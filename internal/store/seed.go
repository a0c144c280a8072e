package store

import (
	"context"
	"database/sql"
	"fmt"
	"image/color"
	"log/slog"

	"github.com/erazemk/trznica/internal/imaging"
	"github.com/erazemk/trznica/internal/model"
)

// SeedImageSize is the edge length of generated item images.
const SeedImageSize = 640

// SeedResult identifies the accounts created by Seed.
type SeedResult struct {
	SellerID int64
	BuyerID  int64
}

type seedItem struct {
	name        string
	category    string
	price       int64
	description string
	status      model.ItemStatus
	color       color.RGBA
}

var seedItems = []seedItem{
	{"Mug", "Home", 500, "White ceramic mug, barely used.", model.ItemStatusOnSale, color.RGBA{0xee, 0xee, 0xee, 0xff}},
	{"Camera", "Electronics", 12000, "Mirrorless body with kit lens.", model.ItemStatusOnSale, color.RGBA{0x33, 0x33, 0x33, 0xff}},
	{"Denim jacket", "Fashion", 3800, "Size M.", model.ItemStatusOnSale, color.RGBA{0x3b, 0x5b, 0x92, 0xff}},
	{"Novel", "Books", 700, "Paperback, first edition.", model.ItemStatusSoldOut, color.RGBA{0xc9, 0x8b, 0x4a, 0xff}},
	{"Desk lamp", "Home", 2500, "Warm light, adjustable arm.", model.ItemStatusInitial, color.RGBA{0xf2, 0xc1, 0x4e, 0xff}},
}

// Seed fills an empty database with two accounts sharing passwordHash, a
// few categories, and items with generated images. The buyer starts with
// enough balance to buy every item. A database that already has users is
// left alone and a zero result is returned.
func Seed(ctx context.Context, db *sql.DB, passwordHash string) (SeedResult, error) {
	n, err := CountUsers(ctx, db)
	if err != nil {
		return SeedResult{}, err
	}
	if n > 0 {
		return SeedResult{}, nil
	}

	seller, err := CreateUser(ctx, db, "seller", passwordHash, 0)
	if err != nil {
		return SeedResult{}, err
	}
	var total int64
	for _, it := range seedItems {
		total += it.price
	}
	buyer, err := CreateUser(ctx, db, "buyer", passwordHash, total)
	if err != nil {
		return SeedResult{}, err
	}

	categories := make(map[string]int64)
	for _, it := range seedItems {
		if _, ok := categories[it.category]; ok {
			continue
		}
		c, err := CreateCategory(ctx, db, it.category)
		if err != nil {
			return SeedResult{}, err
		}
		categories[it.category] = c.ID
	}

	for _, it := range seedItems {
		img, err := imaging.Placeholder(SeedImageSize, SeedImageSize, it.color)
		if err != nil {
			return SeedResult{}, fmt.Errorf("generating image for %s: %w", it.name, err)
		}
		if _, err := CreateItem(ctx, db, NewItem{
			Name:        it.name,
			CategoryID:  categories[it.category],
			UserID:      seller.ID,
			Price:       it.price,
			Description: it.description,
			Status:      it.status,
			Image:       img,
			ImageMime:   "image/jpeg",
		}); err != nil {
			return SeedResult{}, err
		}
	}

	slog.Info("database seeded", "seller", seller.ID, "buyer", buyer.ID, "items", len(seedItems))
	return SeedResult{SellerID: seller.ID, BuyerID: buyer.ID}, nil
}
