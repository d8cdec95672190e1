package seed

import (
	"context"
	"fmt"
	"math/rand"

	"github.com/go-faker/faker/v4"
	"github.com/shopspring/decimal"

	"storefront/internal/domain"
)

type ProductWriter interface {
	Upsert(ctx context.Context, p domain.Product) (*domain.Product, error)
}

type productSeed struct {
	Name          string
	Description   string
	Price         string
	OriginalPrice string
	ImageURL      string
	Category      string
	IsNewArrival  bool
	Stock         int
}

var catalog = []productSeed{
	{"Velvet Zarkan Bridal Lehenga", "Heavy Vertical Embroidery & Diamond Border. Perfect for weddings.", "45000.00", "55000.00", "/images/lehenga_stock_1.jpg", domain.CategoryLehenga, true, 5},
	{"Net Zarkan Sequence Lehenga", "Pastel Floral Elegance with intricate detailing.", "32000.00", "", "/images/lehenga_stock_2.jpg", domain.CategoryLehenga, true, 8},
	{"Royal Red Bridal Lehenga", "Exquisite craftsmanship with golden thread work.", "38000.00", "", "/images/lehenga_stock_3.jpg", domain.CategoryLehenga, false, 10},
	{"Designer Floral Lehenga", "Modern design with traditional touch for wedding guests.", "28000.00", "", "/images/lehenga_stock_4.jpg", domain.CategoryLehenga, false, 12},
	{"Silk Embroidered Lehenga", "Rich silk fabric with heavy embroidery work.", "35000.00", "", "/images/lehenga_stock_5.jpg", domain.CategoryLehenga, false, 7},
	{"Banarasi Silk Saree", "Traditional red Banarasi saree with gold zari work.", "15000.00", "", "/images/saree_stock_1.jpg", domain.CategorySaree, false, 20},
	{"Kanjivaram Pure Silk", "Authentic Kanjivaram with temple border design.", "18500.00", "", "/images/saree_stock_2.jpg", domain.CategorySaree, false, 15},
	{"Chiffon Designer Saree", "Lightweight and elegant for evening parties.", "7500.00", "", "/images/saree_stock_3.jpg", domain.CategorySaree, false, 25},
	{"Cotton Handloom Saree", "Pure cotton comfort with traditional prints.", "3500.00", "", "/images/saree_stock_4.jpg", domain.CategorySaree, false, 30},
	{"Tussar Silk Saree", "Natural silk texture with artistic hand painting.", "12000.00", "", "/images/saree_stock_5.jpg", domain.CategorySaree, false, 18},
	{"Georgette Party Wear", "Elegant party wear saree with stone embellishments.", "8500.00", "", "/images/party_stock_1.jpg", domain.CategoryPartyDress, false, 15},
	{"Modern Fusion Gown", "A perfect blend of ethnic and contemporary styles.", "9500.00", "", "/images/party_stock_2.jpg", domain.CategoryPartyDress, false, 12},
	{"Embroidered Anarkali", "Stunning floor-length Anarkali with intricate sequins.", "11000.00", "", "/images/party_stock_3.jpg", domain.CategoryPartyDress, false, 10},
	{"Floral Organza Saree", "Trendy organza fabric with vibrant floral prints.", "6500.00", "", "https://purnimasareebd.com/wp-content/uploads/2025/05/saree-2.webp", domain.CategorySaree, false, 20},
	{"Net Sequined Saree", "Glimmering net saree for glamorous night events.", "8900.00", "", "https://purnimasareebd.com/wp-content/uploads/2025/05/party-dress.webp", domain.CategorySaree, false, 14},
}

// Catalog returns the demo catalog.
func Catalog() []domain.Product {
	out := make([]domain.Product, 0, len(catalog))
	for _, s := range catalog {
		p := domain.Product{
			Name:         s.Name,
			Description:  s.Description,
			Price:        decimal.RequireFromString(s.Price),
			ImageURL:     s.ImageURL,
			Category:     s.Category,
			Stock:        s.Stock,
			IsNewArrival: s.IsNewArrival,
		}
		if s.OriginalPrice != "" {
			op := decimal.RequireFromString(s.OriginalPrice)
			p.OriginalPrice = &op
		}
		out = append(out, p)
	}
	return out
}

// Apply upserts the demo catalog. Running it twice leaves one row per product.
func Apply(ctx context.Context, repo ProductWriter) (int, error) {
	return upsertAll(ctx, repo, Catalog())
}

// Fake returns n random products spread across the categories.
func Fake(n int, rnd *rand.Rand) []domain.Product {
	out := make([]domain.Product, 0, n)
	for i := 0; i < n; i++ {
		category := domain.Categories[rnd.Intn(len(domain.Categories))]
		price := decimal.NewFromInt(int64(rnd.Intn(40000) + 1000))
		p := domain.Product{
			Name:         fmt.Sprintf("%s %s %d", faker.Word(), category, rnd.Intn(100000)),
			Description:  faker.Sentence(),
			Price:        price,
			ImageURL:     fmt.Sprintf("/images/fake_%d.jpg", rnd.Intn(5)+1),
			Category:     category,
			Stock:        rnd.Intn(30),
			IsNewArrival: rnd.Intn(4) == 0,
		}
		if rnd.Intn(3) == 0 {
			op := price.Mul(decimal.RequireFromString("1.2")).Round(0)
			p.OriginalPrice = &op
		}
		out = append(out, p)
	}
	return out
}

// ApplyFake upserts n random products.
func ApplyFake(ctx context.Context, repo ProductWriter, n int, rnd *rand.Rand) (int, error) {
	return upsertAll(ctx, repo, Fake(n, rnd))
}

func upsertAll(ctx context.Context, repo ProductWriter, products []domain.Product) (int, error) {
	for i, p := range products {
		if _, err := repo.Upsert(ctx, p); err != nil {
			return i, fmt.Errorf("upsert product %q: %w", p.Name, err)
		}
	}
	return len(products), nil
}
