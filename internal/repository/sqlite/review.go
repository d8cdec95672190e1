package sqlite

import (
	"context"
	"database/sql"
	"log"

	"github.com/jmoiron/sqlx"

	"storefront/internal/domain"
)

type reviewRow struct {
	ID           int64          `db:"id"`
	ProductID    int64          `db:"product_id"`
	UserID       sql.NullString `db:"user_id"`
	ReviewerName string         `db:"reviewer_name"`
	Rating       int            `db:"rating"`
	Comment      string         `db:"comment"`
	ImageURL     sql.NullString `db:"image_url"`
	CreatedAt    string         `db:"created_at"`
}

func (r reviewRow) toDomain() (*domain.Review, error) {
	created, err := parseTime(r.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &domain.Review{
		ID:           r.ID,
		ProductID:    r.ProductID,
		UserID:       nullString(r.UserID),
		ReviewerName: r.ReviewerName,
		Rating:       r.Rating,
		Comment:      r.Comment,
		ImageURL:     nullString(r.ImageURL),
		CreatedAt:    created,
	}, nil
}

const reviewColumns = `id, product_id, user_id, reviewer_name, rating, comment, image_url, created_at`

type reviewRepo struct {
	db     *sqlx.DB
	logger *log.Logger
}

func (r *reviewRepo) ListByProduct(ctx context.Context, productID int64) ([]domain.Review, error) {
	var rows []reviewRow
	if err := r.db.SelectContext(ctx, &rows, `
SELECT `+reviewColumns+`
FROM reviews
WHERE product_id = ?
ORDER BY created_at DESC, id DESC
`, productID); err != nil {
		return nil, err
	}
	result := make([]domain.Review, 0, len(rows))
	for _, row := range rows {
		rv, err := row.toDomain()
		if err != nil {
			return nil, err
		}
		result = append(result, *rv)
	}
	return result, nil
}

func (r *reviewRepo) Create(ctx context.Context, in domain.Review) (*domain.Review, error) {
	var row reviewRow
	err := r.db.GetContext(ctx, &row, `
INSERT INTO reviews (product_id, user_id, reviewer_name, rating, comment, image_url)
VALUES (?, ?, ?, ?, ?, ?)
RETURNING `+reviewColumns,
		in.ProductID, in.UserID, in.ReviewerName, in.Rating, in.Comment, in.ImageURL,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return nil, domain.ErrNotFound
		}
		r.logger.Printf("review repo: create product_id=%d error=%v", in.ProductID, err)
		return nil, err
	}
	return row.toDomain()
}

func nullString(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}
