package cart

import (
	"context"
	"errors"
	"io"
	"log"

	"storefront/internal/contract"
	"storefront/internal/domain"
	cartrepo "storefront/internal/repository/cart"
	"storefront/internal/validate"
)

type Service struct {
	repo      cartrepo.Repository
	products  productGetter
	validator *validate.Validator
	logger    *log.Logger
}

type productGetter interface {
	GetByID(ctx context.Context, id int64) (*domain.Product, error)
}

func New(repo cartrepo.Repository, products productGetter, v *validate.Validator, logger *log.Logger) *Service {
	if v == nil {
		v = validate.New()
	}
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Service{repo: repo, products: products, validator: v, logger: logger}
}

func (s *Service) List(ctx context.Context, id domain.Identity) ([]domain.CartItem, error) {
	return s.repo.ListByIdentity(ctx, id)
}

// Add puts quantity of a product into the cart, merging with an existing row.
func (s *Service) Add(ctx context.Context, id domain.Identity, in contract.AddCartItemInput) (*domain.CartItem, error) {
	if err := s.validator.Struct(in); err != nil {
		return nil, err
	}
	if _, err := s.products.GetByID(ctx, in.ProductID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.NewValidationError("productId", "product not found")
		}
		return nil, err
	}
	item, err := s.repo.Add(ctx, id, in.ProductID, in.Qty())
	if errors.Is(err, domain.ErrNotFound) {
		return nil, domain.NewValidationError("productId", "product not found")
	}
	return item, err
}

// Update sets an absolute quantity on one of the identity's items.
func (s *Service) Update(ctx context.Context, id domain.Identity, itemID int64, in contract.UpdateCartItemInput) (*domain.CartItem, error) {
	if err := s.validator.Struct(in); err != nil {
		return nil, err
	}
	return s.repo.SetQuantity(ctx, id, itemID, in.Quantity)
}

// Remove deletes the item if the identity owns it. Missing items are not an error.
func (s *Service) Remove(ctx context.Context, id domain.Identity, itemID int64) error {
	removed, err := s.repo.Remove(ctx, id, itemID)
	if err != nil {
		return err
	}
	if !removed {
		s.logger.Printf("cart: remove item_id=%d matched nothing", itemID)
	}
	return nil
}

// Adopt moves a guest session's items into the user's cart.
func (s *Service) Adopt(ctx context.Context, sessionID, userID string) (int, error) {
	if sessionID == "" || userID == "" {
		return 0, nil
	}
	moved, err := s.repo.Adopt(ctx, sessionID, userID)
	if err != nil {
		return 0, err
	}
	if moved > 0 {
		s.logger.Printf("cart: adopted %d guest items for user %s", moved, userID)
	}
	return moved, nil
}
