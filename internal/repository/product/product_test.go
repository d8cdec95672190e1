package product

import (
	"context"
	"os"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"storefront/internal/domain"
	"storefront/internal/migrate"
)

func TestPostgres_ListAndGet(t *testing.T) {
	ctx := context.Background()
	pool := testPool(ctx, t)
	defer pool.Close()

	if err := migrate.Apply(ctx, pool); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	resetTables(ctx, t, pool)

	var pid int64
	err := pool.QueryRow(ctx, `
		INSERT INTO products (name, description, price, image_url, category, stock, created_at)
		VALUES ('Banarasi Silk Saree', 'Red with zari', 15000.00, '/img/1.jpg', 'Saree', 20, NOW() - INTERVAL '1 day')
		RETURNING id
	`).Scan(&pid)
	if err != nil {
		t.Fatalf("insert product: %v", err)
	}
	if _, err := pool.Exec(ctx, `
		INSERT INTO products (name, description, price, original_price, image_url, category, stock, is_new_arrival)
		VALUES ('Velvet Bridal Lehenga', 'Heavy embroidery', 45000.00, 55000.00, '/img/2.jpg', 'Lehenga', 5, TRUE)
	`); err != nil {
		t.Fatalf("insert product: %v", err)
	}

	repo := NewPostgres(pool, nil)

	list, err := repo.List(ctx, domain.ProductFilter{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 2 || list[0].Name != "Velvet Bridal Lehenga" {
		t.Fatalf("expected newest first, got %+v", list)
	}
	if list[0].OriginalPrice == nil || !list[0].OriginalPrice.Equal(decimal.NewFromInt(55000)) {
		t.Fatalf("unexpected original price %+v", list[0].OriginalPrice)
	}

	sarees, err := repo.List(ctx, domain.ProductFilter{Category: "Saree"})
	if err != nil {
		t.Fatalf("List category: %v", err)
	}
	if len(sarees) != 1 || sarees[0].ID != pid {
		t.Fatalf("unexpected category result %+v", sarees)
	}

	found, err := repo.List(ctx, domain.ProductFilter{Search: "ZARI"})
	if err != nil {
		t.Fatalf("List search: %v", err)
	}
	if len(found) != 1 || found[0].ID != pid {
		t.Fatalf("unexpected search result %+v", found)
	}

	got, err := repo.GetByID(ctx, pid)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if !got.Price.Equal(decimal.NewFromInt(15000)) || got.OriginalPrice != nil {
		t.Fatalf("unexpected product %+v", got)
	}

	if _, err := repo.GetByID(ctx, pid+1000); err != domain.ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPostgres_Upsert(t *testing.T) {
	ctx := context.Background()
	pool := testPool(ctx, t)
	defer pool.Close()

	if err := migrate.Apply(ctx, pool); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	resetTables(ctx, t, pool)

	repo := NewPostgres(pool, nil)

	p, err := repo.Upsert(ctx, domain.Product{
		Name:        "Chiffon Designer Saree",
		Description: "Evening wear",
		Price:       decimal.RequireFromString("7500.00"),
		ImageURL:    "/img/3.jpg",
		Category:    "Saree",
		Stock:       25,
	})
	if err != nil {
		t.Fatalf("Upsert insert: %v", err)
	}
	if p.ID == 0 {
		t.Fatalf("expected ID set")
	}

	original := decimal.RequireFromString("8000")
	updated, err := repo.Upsert(ctx, domain.Product{
		Name:          "Chiffon Designer Saree",
		Description:   "new desc",
		Price:         decimal.RequireFromString("6999.50"),
		OriginalPrice: &original,
		ImageURL:      "/img/3.jpg",
		Category:      "Saree",
		Stock:         10,
	})
	if err != nil {
		t.Fatalf("Upsert update: %v", err)
	}
	if updated.ID != p.ID {
		t.Fatalf("expected same ID after update")
	}
	if updated.Description != "new desc" || updated.Price.StringFixed(2) != "6999.50" || updated.Stock != 10 {
		t.Fatalf("unexpected updated product %+v", updated)
	}
}

func testPool(ctx context.Context, t *testing.T) *pgxpool.Pool {
	t.Helper()
	dsn := os.Getenv("TEST_DB_DSN")
	if dsn == "" {
		t.Skip("TEST_DB_DSN not set")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		t.Fatalf("connect db: %v", err)
	}
	return pool
}

func resetTables(ctx context.Context, t *testing.T, pool *pgxpool.Pool) {
	t.Helper()
	if _, err := pool.Exec(ctx, `TRUNCATE order_items, orders, cart_items, reviews, products RESTART IDENTITY CASCADE`); err != nil {
		t.Fatalf("truncate tables: %v", err)
	}
}
