package cart

import (
	"context"
	"os"
	"sync"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"

	"storefront/internal/domain"
	"storefront/internal/migrate"
)

func TestPostgres_AddMergesByIdentityAndProduct(t *testing.T) {
	ctx := context.Background()
	pool := testPool(ctx, t)
	defer pool.Close()

	if err := migrate.Apply(ctx, pool); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	resetTables(ctx, t, pool)
	productID := insertProduct(ctx, t, pool)

	repo := NewPostgres(pool, nil)
	guest := domain.Identity{Kind: domain.IdentitySession, Value: "sess-1"}

	if _, err := repo.Add(ctx, guest, productID, 2); err != nil {
		t.Fatalf("Add: %v", err)
	}
	item, err := repo.Add(ctx, guest, productID, 3)
	if err != nil {
		t.Fatalf("Add again: %v", err)
	}
	if item.Quantity != 5 || item.SessionID == nil || item.UserID != nil {
		t.Fatalf("unexpected merged item %+v", item)
	}

	items, err := repo.ListByIdentity(ctx, guest)
	if err != nil {
		t.Fatalf("ListByIdentity: %v", err)
	}
	if len(items) != 1 || items[0].Quantity != 5 || items[0].Product == nil || items[0].Product.ID != productID {
		t.Fatalf("unexpected cart %+v", items)
	}

	other := domain.Identity{Kind: domain.IdentitySession, Value: "sess-2"}
	if _, err := repo.SetQuantity(ctx, other, item.ID, 1); err != domain.ErrNotFound {
		t.Fatalf("expected ErrNotFound for foreign item, got %v", err)
	}
	updated, err := repo.SetQuantity(ctx, guest, item.ID, 1)
	if err != nil {
		t.Fatalf("SetQuantity: %v", err)
	}
	if updated.Quantity != 1 {
		t.Fatalf("expected absolute quantity 1, got %d", updated.Quantity)
	}
}

func TestPostgres_ConcurrentAddsDoNotLoseUpdates(t *testing.T) {
	ctx := context.Background()
	pool := testPool(ctx, t)
	defer pool.Close()

	if err := migrate.Apply(ctx, pool); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	resetTables(ctx, t, pool)
	productID := insertProduct(ctx, t, pool)

	repo := NewPostgres(pool, nil)
	user := domain.Identity{Kind: domain.IdentityUser, Value: "user-1"}

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := repo.Add(ctx, user, productID, 1); err != nil {
				t.Errorf("Add: %v", err)
			}
		}()
	}
	wg.Wait()

	items, err := repo.ListByIdentity(ctx, user)
	if err != nil {
		t.Fatalf("ListByIdentity: %v", err)
	}
	if len(items) != 1 || items[0].Quantity != 10 {
		t.Fatalf("expected one row with quantity 10, got %+v", items)
	}
}

func TestPostgres_AdoptAndClear(t *testing.T) {
	ctx := context.Background()
	pool := testPool(ctx, t)
	defer pool.Close()

	if err := migrate.Apply(ctx, pool); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	resetTables(ctx, t, pool)
	productID := insertProduct(ctx, t, pool)

	repo := NewPostgres(pool, nil)
	guest := domain.Identity{Kind: domain.IdentitySession, Value: "sess-1"}
	user := domain.Identity{Kind: domain.IdentityUser, Value: "user-1"}

	if _, err := repo.Add(ctx, guest, productID, 2); err != nil {
		t.Fatalf("Add guest: %v", err)
	}
	if _, err := repo.Add(ctx, user, productID, 1); err != nil {
		t.Fatalf("Add user: %v", err)
	}

	moved, err := repo.Adopt(ctx, "sess-1", "user-1")
	if err != nil {
		t.Fatalf("Adopt: %v", err)
	}
	if moved != 1 {
		t.Fatalf("expected 1 moved row, got %d", moved)
	}
	items, err := repo.ListByIdentity(ctx, user)
	if err != nil {
		t.Fatalf("ListByIdentity: %v", err)
	}
	if len(items) != 1 || items[0].Quantity != 3 {
		t.Fatalf("unexpected user cart %+v", items)
	}

	if err := repo.Clear(ctx, user); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	items, err = repo.ListByIdentity(ctx, user)
	if err != nil {
		t.Fatalf("ListByIdentity: %v", err)
	}
	if len(items) != 0 {
		t.Fatalf("expected empty cart, got %+v", items)
	}

	removed, err := repo.Remove(ctx, user, 999)
	if err != nil || removed {
		t.Fatalf("expected no-op remove, got removed=%v err=%v", removed, err)
	}
}

func insertProduct(ctx context.Context, t *testing.T, pool *pgxpool.Pool) int64 {
	t.Helper()
	var id int64
	err := pool.QueryRow(ctx, `
		INSERT INTO products (name, description, price, image_url, category, stock)
		VALUES ('Kanjivaram Pure Silk', 'Temple border', 100.00, '/img/k.jpg', 'Saree', 15)
		RETURNING id
	`).Scan(&id)
	if err != nil {
		t.Fatalf("insert product: %v", err)
	}
	return id
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
