package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"storefront/internal/domain"
)

type productRow struct {
	ID            int64          `db:"id"`
	Name          string         `db:"name"`
	Description   string         `db:"description"`
	Price         string         `db:"price"`
	OriginalPrice sql.NullString `db:"original_price"`
	ImageURL      string         `db:"image_url"`
	Category      string         `db:"category"`
	Stock         int            `db:"stock"`
	IsNewArrival  bool           `db:"is_new_arrival"`
	CreatedAt     string         `db:"created_at"`
}

func (r productRow) toDomain() (*domain.Product, error) {
	price, err := decimal.NewFromString(r.Price)
	if err != nil {
		return nil, fmt.Errorf("parse price %q: %w", r.Price, err)
	}
	created, err := parseTime(r.CreatedAt)
	if err != nil {
		return nil, err
	}
	p := &domain.Product{
		ID:           r.ID,
		Name:         r.Name,
		Description:  r.Description,
		Price:        price,
		ImageURL:     r.ImageURL,
		Category:     r.Category,
		Stock:        r.Stock,
		IsNewArrival: r.IsNewArrival,
		CreatedAt:    created,
	}
	if r.OriginalPrice.Valid {
		od, err := decimal.NewFromString(r.OriginalPrice.String)
		if err != nil {
			return nil, fmt.Errorf("parse original price %q: %w", r.OriginalPrice.String, err)
		}
		p.OriginalPrice = &od
	}
	return p, nil
}

const productColumns = `id, name, description, price, original_price, image_url, category, stock, is_new_arrival, created_at`

type productRepo struct {
	db     *sqlx.DB
	logger *log.Logger
}

func (r *productRepo) List(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, error) {
	var (
		where []string
		args  []interface{}
	)
	if filter.Category != "" {
		where = append(where, "category = ?")
		args = append(args, filter.Category)
	}
	if s := strings.TrimSpace(filter.Search); s != "" {
		pattern := "%" + likeEscaper.Replace(s) + "%"
		where = append(where, `(name LIKE ? ESCAPE '\' OR description LIKE ? ESCAPE '\')`)
		args = append(args, pattern, pattern)
	}
	if filter.NewArrivals {
		where = append(where, "is_new_arrival = 1")
	}

	q := `SELECT ` + productColumns + ` FROM products`
	if len(where) > 0 {
		q += ` WHERE ` + strings.Join(where, " AND ")
	}
	q += ` ORDER BY created_at DESC, id DESC`

	var rows []productRow
	if err := r.db.SelectContext(ctx, &rows, q, args...); err != nil {
		r.logger.Printf("product repo: list category=%q search=%q error=%v", filter.Category, filter.Search, err)
		return nil, err
	}
	result := make([]domain.Product, 0, len(rows))
	for _, row := range rows {
		p, err := row.toDomain()
		if err != nil {
			return nil, err
		}
		result = append(result, *p)
	}
	return result, nil
}

func (r *productRepo) GetByID(ctx context.Context, id int64) (*domain.Product, error) {
	var row productRow
	if err := r.db.GetContext(ctx, &row, `SELECT `+productColumns+` FROM products WHERE id = ?`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return row.toDomain()
}

func (r *productRepo) Upsert(ctx context.Context, p domain.Product) (*domain.Product, error) {
	var original *string
	if p.OriginalPrice != nil {
		s := p.OriginalPrice.String()
		original = &s
	}
	var row productRow
	err := r.db.GetContext(ctx, &row, `
INSERT INTO products (name, description, price, original_price, image_url, category, stock, is_new_arrival)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (name, category) DO UPDATE SET
    description = excluded.description,
    price = excluded.price,
    original_price = excluded.original_price,
    image_url = excluded.image_url,
    stock = excluded.stock,
    is_new_arrival = excluded.is_new_arrival
RETURNING `+productColumns,
		p.Name, p.Description, p.Price.String(), original, p.ImageURL, p.Category, p.Stock, p.IsNewArrival,
	)
	if err != nil {
		r.logger.Printf("product repo: upsert name=%q category=%q error=%v", p.Name, p.Category, err)
		return nil, err
	}
	return row.toDomain()
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
