package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"log"

	"github.com/jmoiron/sqlx"

	"storefront/internal/domain"
	"storefront/internal/repository/cart"
)

type cartItemRow struct {
	ID        int64          `db:"id"`
	UserID    sql.NullString `db:"user_id"`
	SessionID sql.NullString `db:"session_id"`
	ProductID int64          `db:"product_id"`
	Quantity  int            `db:"quantity"`
	CreatedAt string         `db:"created_at"`
}

func (r cartItemRow) toDomain() (*domain.CartItem, error) {
	created, err := parseTime(r.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &domain.CartItem{
		ID:        r.ID,
		UserID:    nullString(r.UserID),
		SessionID: nullString(r.SessionID),
		ProductID: r.ProductID,
		Quantity:  r.Quantity,
		CreatedAt: created,
	}, nil
}

type cartJoinRow struct {
	cartItemRow
	Product productRow `db:"p"`
}

const cartItemColumns = `id, user_id, session_id, product_id, quantity, created_at`

type cartRepo struct {
	db     *sqlx.DB
	logger *log.Logger
}

func (r *cartRepo) ListByIdentity(ctx context.Context, id domain.Identity) ([]domain.CartItem, error) {
	col, err := cart.IdentityColumn(id.Kind)
	if err != nil {
		return nil, err
	}
	var rows []cartJoinRow
	err = r.db.SelectContext(ctx, &rows, `
SELECT ci.id, ci.user_id, ci.session_id, ci.product_id, ci.quantity, ci.created_at,
       p.id AS "p.id", p.name AS "p.name", p.description AS "p.description",
       p.price AS "p.price", p.original_price AS "p.original_price", p.image_url AS "p.image_url",
       p.category AS "p.category", p.stock AS "p.stock", p.is_new_arrival AS "p.is_new_arrival",
       p.created_at AS "p.created_at"
FROM cart_items ci
JOIN products p ON p.id = ci.product_id
WHERE ci.`+col+` = ?
ORDER BY ci.created_at ASC, ci.id ASC
`, id.Value)
	if err != nil {
		r.logger.Printf("cart repo: list %s error=%v", col, err)
		return nil, err
	}
	items := make([]domain.CartItem, 0, len(rows))
	for _, row := range rows {
		item, err := row.cartItemRow.toDomain()
		if err != nil {
			return nil, err
		}
		if item.Product, err = row.Product.toDomain(); err != nil {
			return nil, err
		}
		items = append(items, *item)
	}
	return items, nil
}

func (r *cartRepo) Add(ctx context.Context, id domain.Identity, productID int64, quantity int) (*domain.CartItem, error) {
	col, err := cart.IdentityColumn(id.Kind)
	if err != nil {
		return nil, err
	}
	var row cartItemRow
	err = r.db.GetContext(ctx, &row, `
INSERT INTO cart_items (user_id, session_id, product_id, quantity)
VALUES (?, ?, ?, ?)
ON CONFLICT (`+col+`, product_id) WHERE `+col+` IS NOT NULL
DO UPDATE SET quantity = cart_items.quantity + excluded.quantity
RETURNING `+cartItemColumns,
		id.UserID(), id.SessionID(), productID, quantity,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return nil, domain.ErrNotFound
		}
		r.logger.Printf("cart repo: add %s product_id=%d error=%v", col, productID, err)
		return nil, err
	}
	return row.toDomain()
}

func (r *cartRepo) SetQuantity(ctx context.Context, id domain.Identity, itemID int64, quantity int) (*domain.CartItem, error) {
	col, err := cart.IdentityColumn(id.Kind)
	if err != nil {
		return nil, err
	}
	var row cartItemRow
	err = r.db.GetContext(ctx, &row, `
UPDATE cart_items
SET quantity = ?
WHERE id = ? AND `+col+` = ?
RETURNING `+cartItemColumns,
		quantity, itemID, id.Value,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return row.toDomain()
}

func (r *cartRepo) Remove(ctx context.Context, id domain.Identity, itemID int64) (bool, error) {
	col, err := cart.IdentityColumn(id.Kind)
	if err != nil {
		return false, err
	}
	res, err := r.db.ExecContext(ctx, `DELETE FROM cart_items WHERE id = ? AND `+col+` = ?`, itemID, id.Value)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *cartRepo) Clear(ctx context.Context, id domain.Identity) error {
	col, err := cart.IdentityColumn(id.Kind)
	if err != nil {
		return err
	}
	if _, err := r.db.ExecContext(ctx, `DELETE FROM cart_items WHERE `+col+` = ?`, id.Value); err != nil {
		r.logger.Printf("cart repo: clear %s error=%v", col, err)
		return err
	}
	return nil
}

func (r *cartRepo) Adopt(ctx context.Context, sessionID, userID string) (int, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `
INSERT INTO cart_items (user_id, product_id, quantity)
SELECT ?, product_id, quantity
FROM cart_items
WHERE session_id = ?
ON CONFLICT (user_id, product_id) WHERE user_id IS NOT NULL
DO UPDATE SET quantity = cart_items.quantity + excluded.quantity
`, userID, sessionID); err != nil {
		return 0, err
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM cart_items WHERE session_id = ?`, sessionID)
	if err != nil {
		return 0, err
	}
	moved, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return int(moved), nil
}
