// Package store opens the configured database backend and hands out its repositories.
package store

import (
	"context"
	"fmt"
	"log"

	"storefront/internal/db"
	cartrepo "storefront/internal/repository/cart"
	orderrepo "storefront/internal/repository/order"
	productrepo "storefront/internal/repository/product"
	reviewrepo "storefront/internal/repository/review"
	"storefront/internal/repository/sqlite"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Backend bundles the repositories of one database.
type Backend struct {
	Products productrepo.Repository
	Reviews  reviewrepo.Repository
	Carts    cartrepo.Repository
	Orders   orderrepo.Repository

	ping  func(ctx context.Context) error
	close func()
}

// Open connects to driver/dsn. Postgres expects migrations to be applied by
// cmd/migrate; SQLite creates its schema on open.
func Open(ctx context.Context, driver, dsn string, logger *log.Logger) (*Backend, error) {
	switch driver {
	case DriverPostgres, "":
		pool, err := db.Connect(ctx, dsn)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		return &Backend{
			Products: productrepo.NewPostgres(pool, logger),
			Reviews:  reviewrepo.NewPostgres(pool, logger),
			Carts:    cartrepo.NewPostgres(pool, logger),
			Orders:   orderrepo.NewPostgres(pool, logger),
			ping:     pool.Ping,
			close:    pool.Close,
		}, nil
	case DriverSQLite:
		s, err := sqlite.Open(ctx, dsn, logger)
		if err != nil {
			return nil, fmt.Errorf("open sqlite: %w", err)
		}
		return &Backend{
			Products: s.Products(),
			Reviews:  s.Reviews(),
			Carts:    s.Carts(),
			Orders:   s.Orders(),
			ping:     s.Ping,
			close:    func() { _ = s.Close() },
		}, nil
	default:
		return nil, fmt.Errorf("unknown DB_DRIVER %q (want %s or %s)", driver, DriverPostgres, DriverSQLite)
	}
}

func (b *Backend) Ping(ctx context.Context) error {
	return b.ping(ctx)
}

func (b *Backend) Close() {
	b.close()
}
