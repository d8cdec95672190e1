package order

import (
	"context"

	"storefront/internal/domain"
)

type Repository interface {
	// Create stores the header, its lines and the stock decrements in one transaction.
	Create(ctx context.Context, o domain.Order, lines []domain.OrderItem) (*domain.Order, error)
	GetByID(ctx context.Context, id int64) (*domain.Order, error)
	GetByIdempotencyKey(ctx context.Context, key string) (*domain.Order, error)
}
