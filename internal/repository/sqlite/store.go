// Package sqlite implements the storefront repositories on an embedded SQLite
// database. It backs local development and the end-to-end tests.
package sqlite

import (
	"context"
	_ "embed"
	"fmt"
	"io"
	"log"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"storefront/internal/db"
	"storefront/internal/repository/cart"
	"storefront/internal/repository/order"
	"storefront/internal/repository/product"
	"storefront/internal/repository/review"
)

//go:embed schema.sql
var schema string

// Store owns the database handle shared by the repositories.
type Store struct {
	db     *sqlx.DB
	logger *log.Logger
}

// Open connects to dsn and creates any missing tables.
func Open(ctx context.Context, dsn string, logger *log.Logger) (*Store, error) {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	conn, err := db.OpenSQLite(ctx, dsn)
	if err != nil {
		return nil, err
	}
	if _, err := conn.ExecContext(ctx, schema); err != nil {
		conn.Close()
		return nil, fmt.Errorf("apply sqlite schema: %w", err)
	}
	return &Store{db: conn, logger: logger}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Ping reports whether the database answers.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) Products() product.Repository {
	return &productRepo{db: s.db, logger: s.logger}
}

func (s *Store) Reviews() review.Repository {
	return &reviewRepo{db: s.db, logger: s.logger}
}

func (s *Store) Carts() cart.Repository {
	return &cartRepo{db: s.db, logger: s.logger}
}

func (s *Store) Orders() order.Repository {
	return &orderRepo{db: s.db, logger: s.logger}
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse timestamp %q: %w", s, err)
	}
	return t, nil
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func isForeignKeyViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "FOREIGN KEY constraint failed")
}
