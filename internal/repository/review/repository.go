package review

import (
	"context"

	"storefront/internal/domain"
)

type Repository interface {
	ListByProduct(ctx context.Context, productID int64) ([]domain.Review, error)
	Create(ctx context.Context, r domain.Review) (*domain.Review, error)
}
