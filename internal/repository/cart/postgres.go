package cart

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

const itemColumns = `id, user_id, session_id, product_id, quantity, created_at`

func (r *postgresRepo) ListByIdentity(ctx context.Context, id domain.Identity) ([]domain.CartItem, error) {
	col, err := IdentityColumn(id.Kind)
	if err != nil {
		return nil, err
	}
	q := `
SELECT ci.id, ci.user_id, ci.session_id, ci.product_id, ci.quantity, ci.created_at,
       p.id, p.name, p.description, p.price::text, p.original_price::text, p.image_url, p.category, p.stock, p.is_new_arrival, p.created_at
FROM cart_items ci
JOIN products p ON p.id = ci.product_id
WHERE ci.` + col + ` = $1
ORDER BY ci.created_at ASC, ci.id ASC
`
	rows, err := r.pool.Query(ctx, q, id.Value)
	if err != nil {
		r.logger.Printf("cart repo: list %s error=%v", col, err)
		return nil, err
	}
	defer rows.Close()

	items := []domain.CartItem{}
	for rows.Next() {
		var (
			item     domain.CartItem
			p        domain.Product
			price    string
			original *string
		)
		if err := rows.Scan(
			&item.ID, &item.UserID, &item.SessionID, &item.ProductID, &item.Quantity, &item.CreatedAt,
			&p.ID, &p.Name, &p.Description, &price, &original, &p.ImageURL, &p.Category, &p.Stock, &p.IsNewArrival, &p.CreatedAt,
		); err != nil {
			return nil, err
		}
		if p.Price, err = decimal.NewFromString(price); err != nil {
			return nil, fmt.Errorf("parse price %q: %w", price, err)
		}
		if original != nil {
			od, err := decimal.NewFromString(*original)
			if err != nil {
				return nil, fmt.Errorf("parse original price %q: %w", *original, err)
			}
			p.OriginalPrice = &od
		}
		item.Product = &p
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

func (r *postgresRepo) Add(ctx context.Context, id domain.Identity, productID int64, quantity int) (*domain.CartItem, error) {
	col, err := IdentityColumn(id.Kind)
	if err != nil {
		return nil, err
	}
	q := `
INSERT INTO cart_items (user_id, session_id, product_id, quantity)
VALUES ($1, $2, $3, $4)
ON CONFLICT (` + col + `, product_id) WHERE ` + col + ` IS NOT NULL
DO UPDATE SET quantity = cart_items.quantity + EXCLUDED.quantity
RETURNING ` + itemColumns
	item, err := scanItem(r.pool.QueryRow(ctx, q, id.UserID(), id.SessionID(), productID, quantity))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return nil, domain.ErrNotFound
		}
		r.logger.Printf("cart repo: add %s product_id=%d error=%v", col, productID, err)
		return nil, err
	}
	r.logger.Printf("cart repo: add %s product_id=%d item_id=%d quantity=%d", col, productID, item.ID, item.Quantity)
	return item, nil
}

func (r *postgresRepo) SetQuantity(ctx context.Context, id domain.Identity, itemID int64, quantity int) (*domain.CartItem, error) {
	col, err := IdentityColumn(id.Kind)
	if err != nil {
		return nil, err
	}
	q := `
UPDATE cart_items
SET quantity = $1
WHERE id = $2 AND ` + col + ` = $3
RETURNING ` + itemColumns
	item, err := scanItem(r.pool.QueryRow(ctx, q, quantity, itemID, id.Value))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return item, nil
}

func (r *postgresRepo) Remove(ctx context.Context, id domain.Identity, itemID int64) (bool, error) {
	col, err := IdentityColumn(id.Kind)
	if err != nil {
		return false, err
	}
	cmd, err := r.pool.Exec(ctx, `DELETE FROM cart_items WHERE id = $1 AND `+col+` = $2`, itemID, id.Value)
	if err != nil {
		return false, err
	}
	return cmd.RowsAffected() > 0, nil
}

func (r *postgresRepo) Clear(ctx context.Context, id domain.Identity) error {
	col, err := IdentityColumn(id.Kind)
	if err != nil {
		return err
	}
	cmd, err := r.pool.Exec(ctx, `DELETE FROM cart_items WHERE `+col+` = $1`, id.Value)
	if err != nil {
		r.logger.Printf("cart repo: clear %s error=%v", col, err)
		return err
	}
	r.logger.Printf("cart repo: clear %s removed=%d", col, cmd.RowsAffected())
	return nil
}

func (r *postgresRepo) Adopt(ctx context.Context, sessionID, userID string) (int, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return 0, err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `
INSERT INTO cart_items (user_id, product_id, quantity)
SELECT $1, product_id, quantity
FROM cart_items
WHERE session_id = $2
ON CONFLICT (user_id, product_id) WHERE user_id IS NOT NULL
DO UPDATE SET quantity = cart_items.quantity + EXCLUDED.quantity
`, userID, sessionID); err != nil {
		return 0, err
	}
	cmd, err := tx.Exec(ctx, `DELETE FROM cart_items WHERE session_id = $1`, sessionID)
	if err != nil {
		return 0, err
	}
	if err := tx.Commit(ctx); err != nil {
		return 0, err
	}
	moved := int(cmd.RowsAffected())
	if moved > 0 {
		r.logger.Printf("cart repo: adopted %d session items into user cart", moved)
	}
	return moved, nil
}

func scanItem(row pgx.Row) (*domain.CartItem, error) {
	var item domain.CartItem
	if err := row.Scan(&item.ID, &item.UserID, &item.SessionID, &item.ProductID, &item.Quantity, &item.CreatedAt); err != nil {
		return nil, err
	}
	return &item, nil
}
