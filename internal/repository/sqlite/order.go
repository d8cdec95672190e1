package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"storefront/internal/domain"
)

type orderRow struct {
	ID             int64          `db:"id"`
	UserID         sql.NullString `db:"user_id"`
	SessionID      sql.NullString `db:"session_id"`
	GuestName      sql.NullString `db:"guest_name"`
	GuestEmail     sql.NullString `db:"guest_email"`
	GuestPhone     sql.NullString `db:"guest_phone"`
	Address        string         `db:"address"`
	TotalAmount    string         `db:"total_amount"`
	Status         string         `db:"status"`
	IdempotencyKey sql.NullString `db:"idempotency_key"`
	CreatedAt      string         `db:"created_at"`
}

func (r orderRow) toDomain() (*domain.Order, error) {
	total, err := decimal.NewFromString(r.TotalAmount)
	if err != nil {
		return nil, fmt.Errorf("parse total %q: %w", r.TotalAmount, err)
	}
	created, err := parseTime(r.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &domain.Order{
		ID:             r.ID,
		UserID:         nullString(r.UserID),
		SessionID:      nullString(r.SessionID),
		GuestName:      nullString(r.GuestName),
		GuestEmail:     nullString(r.GuestEmail),
		GuestPhone:     nullString(r.GuestPhone),
		Address:        r.Address,
		TotalAmount:    total,
		Status:         r.Status,
		IdempotencyKey: nullString(r.IdempotencyKey),
		CreatedAt:      created,
	}, nil
}

type orderItemRow struct {
	ID        int64  `db:"id"`
	OrderID   int64  `db:"order_id"`
	ProductID int64  `db:"product_id"`
	Quantity  int    `db:"quantity"`
	Price     string `db:"price"`
}

const orderColumns = `id, user_id, session_id, guest_name, guest_email, guest_phone, address, total_amount, status, idempotency_key, created_at`

type orderRepo struct {
	db     *sqlx.DB
	logger *log.Logger
}

func (r *orderRepo) Create(ctx context.Context, o domain.Order, lines []domain.OrderItem) (*domain.Order, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	status := o.Status
	if status == "" {
		status = domain.OrderStatusPending
	}
	var row orderRow
	err = tx.GetContext(ctx, &row, `
INSERT INTO orders (user_id, session_id, guest_name, guest_email, guest_phone, address, total_amount, status, idempotency_key)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
RETURNING `+orderColumns,
		o.UserID, o.SessionID, o.GuestName, o.GuestEmail, o.GuestPhone, o.Address, o.TotalAmount.String(), status, o.IdempotencyKey,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, domain.ErrAlreadyExists
		}
		r.logger.Printf("order repo: insert header error=%v", err)
		return nil, err
	}
	out, err := row.toDomain()
	if err != nil {
		return nil, err
	}

	for _, line := range lines {
		res, err := tx.ExecContext(ctx, `UPDATE products SET stock = stock - ? WHERE id = ? AND stock >= ?`,
			line.Quantity, line.ProductID, line.Quantity)
		if err != nil {
			return nil, err
		}
		if n, err := res.RowsAffected(); err != nil {
			return nil, err
		} else if n == 0 {
			return nil, stockError(ctx, tx, line.ProductID)
		}

		item := line
		item.OrderID = out.ID
		if err := tx.GetContext(ctx, &item.ID, `
INSERT INTO order_items (order_id, product_id, quantity, price)
VALUES (?, ?, ?, ?)
RETURNING id
`, out.ID, line.ProductID, line.Quantity, line.Price.String()); err != nil {
			return nil, err
		}
		out.Items = append(out.Items, item)
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	r.logger.Printf("order repo: created id=%d lines=%d total=%s", out.ID, len(out.Items), out.TotalAmount.StringFixed(2))
	return out, nil
}

func stockError(ctx context.Context, tx *sqlx.Tx, productID int64) error {
	var name string
	if err := tx.GetContext(ctx, &name, `SELECT name FROM products WHERE id = ?`, productID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrNotFound
		}
		return err
	}
	return fmt.Errorf("%w for %s", domain.ErrInsufficientStock, name)
}

func (r *orderRepo) GetByID(ctx context.Context, id int64) (*domain.Order, error) {
	return r.fetch(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = ?`, id)
}

func (r *orderRepo) GetByIdempotencyKey(ctx context.Context, key string) (*domain.Order, error) {
	return r.fetch(ctx, `SELECT `+orderColumns+` FROM orders WHERE idempotency_key = ?`, key)
}

func (r *orderRepo) fetch(ctx context.Context, q string, arg interface{}) (*domain.Order, error) {
	var row orderRow
	if err := r.db.GetContext(ctx, &row, q, arg); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	o, err := row.toDomain()
	if err != nil {
		return nil, err
	}

	var items []orderItemRow
	if err := r.db.SelectContext(ctx, &items, `
SELECT id, order_id, product_id, quantity, price
FROM order_items
WHERE order_id = ?
ORDER BY id ASC
`, o.ID); err != nil {
		return nil, err
	}
	for _, it := range items {
		price, err := decimal.NewFromString(it.Price)
		if err != nil {
			return nil, fmt.Errorf("parse line price %q: %w", it.Price, err)
		}
		o.Items = append(o.Items, domain.OrderItem{
			ID:        it.ID,
			OrderID:   it.OrderID,
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			Price:     price,
		})
	}
	return o, nil
}
