package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Order statuses. Transitions are administrative and happen outside this service.
const (
	OrderStatusPending    = "pending"
	OrderStatusProcessing = "processing"
	OrderStatusShipped    = "shipped"
	OrderStatusDelivered  = "delivered"
)

type Order struct {
	ID             int64
	UserID         *string
	SessionID      *string
	GuestName      *string
	GuestEmail     *string
	GuestPhone     *string
	Address        string
	TotalAmount    decimal.Decimal
	Status         string
	IdempotencyKey *string
	CreatedAt      time.Time
	Items          []OrderItem
}

// OrderItem carries the unit price captured at checkout.
type OrderItem struct {
	ID        int64
	OrderID   int64
	ProductID int64
	Quantity  int
	Price     decimal.Decimal
}

// OwnedBy reports whether the identity placed the order.
func (o Order) OwnedBy(id Identity) bool {
	switch id.Kind {
	case IdentityUser:
		return o.UserID != nil && *o.UserID == id.Value
	case IdentitySession:
		return o.UserID == nil && o.SessionID != nil && *o.SessionID == id.Value
	}
	return false
}
