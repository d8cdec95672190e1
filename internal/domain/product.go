package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Catalog categories.
const (
	CategorySaree      = "Saree"
	CategoryLehenga    = "Lehenga"
	CategoryThreePiece = "Three Piece"
	CategoryPartyDress = "Party Dress"
)

// Categories lists every category in display order.
var Categories = []string{CategorySaree, CategoryLehenga, CategoryThreePiece, CategoryPartyDress}

// IsCategory reports whether c is a known catalog category.
func IsCategory(c string) bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

type Product struct {
	ID            int64
	Name          string
	Description   string
	Price         decimal.Decimal
	OriginalPrice *decimal.Decimal
	ImageURL      string
	Category      string
	Stock         int
	IsNewArrival  bool
	CreatedAt     time.Time
}

// ProductFilter narrows a product listing. Zero values disable a filter.
type ProductFilter struct {
	Category    string
	Search      string
	NewArrivals bool
}
