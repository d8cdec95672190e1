package order

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"storefront/internal/domain"
)

type postgresRepo struct {
	pool   *pgxpool.Pool
	logger *log.Logger
}

func NewPostgres(pool *pgxpool.Pool, logger *log.Logger) Repository {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &postgresRepo{pool: pool, logger: logger}
}

const orderColumns = `id, user_id, session_id, guest_name, guest_email, guest_phone, address, total_amount::text, status, idempotency_key, created_at`

func (r *postgresRepo) Create(ctx context.Context, o domain.Order, lines []domain.OrderItem) (*domain.Order, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	status := o.Status
	if status == "" {
		status = domain.OrderStatusPending
	}
	out, err := scanOrder(tx.QueryRow(ctx, `
INSERT INTO orders (user_id, session_id, guest_name, guest_email, guest_phone, address, total_amount, status, idempotency_key)
VALUES ($1, $2, $3, $4, $5, $6, $7::text::numeric, $8, $9)
RETURNING `+orderColumns,
		o.UserID, o.SessionID, o.GuestName, o.GuestEmail, o.GuestPhone, o.Address, o.TotalAmount.String(), status, o.IdempotencyKey,
	))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, domain.ErrAlreadyExists
		}
		r.logger.Printf("order repo: insert header error=%v", err)
		return nil, err
	}

	for _, line := range lines {
		var stockLeft int
		err := tx.QueryRow(ctx, `
UPDATE products
SET stock = stock - $1
WHERE id = $2 AND stock >= $1
RETURNING stock
`, line.Quantity, line.ProductID).Scan(&stockLeft)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, r.stockError(ctx, tx, line.ProductID)
			}
			return nil, err
		}

		item := line
		item.OrderID = out.ID
		if err := tx.QueryRow(ctx, `
INSERT INTO order_items (order_id, product_id, quantity, price)
VALUES ($1, $2, $3, $4::text::numeric)
RETURNING id
`, out.ID, line.ProductID, line.Quantity, line.Price.String()).Scan(&item.ID); err != nil {
			r.logger.Printf("order repo: insert line order_id=%d product_id=%d error=%v", out.ID, line.ProductID, err)
			return nil, err
		}
		out.Items = append(out.Items, item)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	r.logger.Printf("order repo: created id=%d lines=%d total=%s", out.ID, len(out.Items), out.TotalAmount.StringFixed(2))
	return out, nil
}

func (r *postgresRepo) stockError(ctx context.Context, tx pgx.Tx, productID int64) error {
	var name string
	if err := tx.QueryRow(ctx, `SELECT name FROM products WHERE id = $1`, productID).Scan(&name); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrNotFound
		}
		return err
	}
	return fmt.Errorf("%w for %s", domain.ErrInsufficientStock, name)
}

func (r *postgresRepo) GetByID(ctx context.Context, id int64) (*domain.Order, error) {
	return r.fetch(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id)
}

func (r *postgresRepo) GetByIdempotencyKey(ctx context.Context, key string) (*domain.Order, error) {
	return r.fetch(ctx, `SELECT `+orderColumns+` FROM orders WHERE idempotency_key = $1`, key)
}

func (r *postgresRepo) fetch(ctx context.Context, q string, arg interface{}) (*domain.Order, error) {
	o, err := scanOrder(r.pool.QueryRow(ctx, q, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}

	rows, err := r.pool.Query(ctx, `
SELECT id, order_id, product_id, quantity, price::text
FROM order_items
WHERE order_id = $1
ORDER BY id ASC
`, o.ID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			item  domain.OrderItem
			price string
		)
		if err := rows.Scan(&item.ID, &item.OrderID, &item.ProductID, &item.Quantity, &price); err != nil {
			return nil, err
		}
		if item.Price, err = decimal.NewFromString(price); err != nil {
			return nil, fmt.Errorf("parse line price %q: %w", price, err)
		}
		o.Items = append(o.Items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return o, nil
}

func scanOrder(row pgx.Row) (*domain.Order, error) {
	var (
		o     domain.Order
		total string
	)
	if err := row.Scan(&o.ID, &o.UserID, &o.SessionID, &o.GuestName, &o.GuestEmail, &o.GuestPhone, &o.Address, &total, &o.Status, &o.IdempotencyKey, &o.CreatedAt); err != nil {
		return nil, err
	}
	d, err := decimal.NewFromString(total)
	if err != nil {
		return nil, fmt.Errorf("parse total %q: %w", total, err)
	}
	o.TotalAmount = d
	return &o, nil
}
