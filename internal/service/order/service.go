package order

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/shopspring/decimal"

	"storefront/internal/contract"
	"storefront/internal/domain"
	"storefront/internal/validate"
)

type orderRepo interface {
	Create(ctx context.Context, o domain.Order, lines []domain.OrderItem) (*domain.Order, error)
	GetByID(ctx context.Context, id int64) (*domain.Order, error)
	GetByIdempotencyKey(ctx context.Context, key string) (*domain.Order, error)
}

type cartStore interface {
	ListByIdentity(ctx context.Context, id domain.Identity) ([]domain.CartItem, error)
	Clear(ctx context.Context, id domain.Identity) error
}

// Shipping is the flat-fee rule applied at checkout: orders whose subtotal
// exceeds FreeThreshold ship free, others pay Fee.
type Shipping struct {
	Fee           decimal.Decimal
	FreeThreshold decimal.Decimal
}

// DefaultShipping charges 15 below a 100 subtotal.
var DefaultShipping = Shipping{Fee: decimal.NewFromInt(15), FreeThreshold: decimal.NewFromInt(100)}

// Quote returns the shipping charge and grand total for subtotal.
func (s Shipping) Quote(subtotal decimal.Decimal) (shipping, total decimal.Decimal) {
	if subtotal.GreaterThan(s.FreeThreshold) {
		return decimal.Zero, subtotal
	}
	return s.Fee, subtotal.Add(s.Fee)
}

type Service struct {
	orders    orderRepo
	carts     cartStore
	shipping  Shipping
	validator *validate.Validator
	logger    *log.Logger
}

func New(orders orderRepo, carts cartStore, shipping Shipping, v *validate.Validator, logger *log.Logger) *Service {
	if v == nil {
		v = validate.New()
	}
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Service{orders: orders, carts: carts, shipping: shipping, validator: v, logger: logger}
}

// Place turns the identity's cart into an order. The total is computed from
// current product prices; a client-sent total is only compared. A non-empty
// idempotencyKey that was already used by the same identity returns the
// earlier order without touching the cart.
func (s *Service) Place(ctx context.Context, id domain.Identity, in contract.CreateOrderInput, idempotencyKey string) (*domain.Order, error) {
	if err := s.validator.Struct(in); err != nil {
		return nil, err
	}
	idempotencyKey = strings.TrimSpace(idempotencyKey)
	if idempotencyKey != "" {
		if existing, err := s.replay(ctx, id, idempotencyKey); err == nil {
			return existing, nil
		} else if !errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
	}

	items, err := s.carts.ListByIdentity(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load cart: %w", err)
	}
	if len(items) == 0 {
		return nil, domain.ErrEmptyCart
	}

	subtotal := decimal.Zero
	lines := make([]domain.OrderItem, 0, len(items))
	for _, it := range items {
		if it.Product == nil {
			return nil, fmt.Errorf("cart item %d has no product", it.ID)
		}
		lines = append(lines, domain.OrderItem{
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			Price:     it.Product.Price,
		})
		subtotal = subtotal.Add(it.Product.Price.Mul(decimal.NewFromInt(int64(it.Quantity))))
	}
	_, total := s.shipping.Quote(subtotal)
	if in.TotalAmount != nil {
		if sent, err := decimal.NewFromString(in.TotalAmount.String()); err == nil && !sent.Equal(total) {
			s.logger.Printf("order: client total %s differs from computed %s", sent.StringFixed(2), total.StringFixed(2))
		}
	}

	o := domain.Order{
		UserID:      id.UserID(),
		SessionID:   id.SessionID(),
		GuestName:   trimmed(in.GuestName),
		GuestEmail:  trimmed(in.GuestEmail),
		GuestPhone:  trimmed(in.GuestPhone),
		Address:     strings.TrimSpace(in.Address),
		TotalAmount: total,
		Status:      domain.OrderStatusPending,
	}
	if idempotencyKey != "" {
		o.IdempotencyKey = &idempotencyKey
	}

	created, err := s.orders.Create(ctx, o, lines)
	if err != nil {
		if errors.Is(err, domain.ErrAlreadyExists) && idempotencyKey != "" {
			// A concurrent request with the same key committed first.
			return s.replay(ctx, id, idempotencyKey)
		}
		return nil, err
	}

	if err := s.carts.Clear(ctx, id); err != nil {
		s.logger.Printf("order: clear cart after order id=%d: %v", created.ID, err)
	}
	return created, nil
}

func (s *Service) replay(ctx context.Context, id domain.Identity, key string) (*domain.Order, error) {
	existing, err := s.orders.GetByIdempotencyKey(ctx, key)
	if err != nil {
		return nil, err
	}
	if !existing.OwnedBy(id) {
		return nil, domain.ErrAlreadyExists
	}
	s.logger.Printf("order: replay id=%d for idempotency key", existing.ID)
	return existing, nil
}

// Get returns the order with its lines when id placed it.
func (s *Service) Get(ctx context.Context, id domain.Identity, orderID int64) (*domain.Order, error) {
	o, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !o.OwnedBy(id) {
		return nil, domain.ErrNotFound
	}
	return o, nil
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
