package cart

import (
	"context"
	"fmt"

	"storefront/internal/domain"
)

// Repository stores cart rows keyed by identity and product.
type Repository interface {
	// ListByIdentity returns the identity's items joined with their products, oldest first.
	ListByIdentity(ctx context.Context, id domain.Identity) ([]domain.CartItem, error)
	// Add inserts the item or increments the quantity of the existing row in one statement.
	Add(ctx context.Context, id domain.Identity, productID int64, quantity int) (*domain.CartItem, error)
	SetQuantity(ctx context.Context, id domain.Identity, itemID int64, quantity int) (*domain.CartItem, error)
	// Remove reports whether a row was deleted.
	Remove(ctx context.Context, id domain.Identity, itemID int64) (bool, error)
	Clear(ctx context.Context, id domain.Identity) error
	// Adopt moves a session's items into the user's cart and returns how many rows moved.
	Adopt(ctx context.Context, sessionID, userID string) (int, error)
}

// IdentityColumn maps an identity kind to the cart_items column that stores it.
func IdentityColumn(kind domain.IdentityKind) (string, error) {
	switch kind {
	case domain.IdentityUser:
		return "user_id", nil
	case domain.IdentitySession:
		return "session_id", nil
	default:
		return "", fmt.Errorf("cart repo: unknown identity kind %q", kind)
	}
}
