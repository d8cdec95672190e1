package contract

import (
	"time"

	"github.com/gosimple/slug"
	"github.com/shopspring/decimal"

	"storefront/internal/domain"
)

// Prices travel as fixed two-decimal strings.

type Product struct {
	ID            int64     `json:"id"`
	Name          string    `json:"name"`
	Slug          string    `json:"slug"`
	Description   string    `json:"description"`
	Price         string    `json:"price"`
	OriginalPrice *string   `json:"originalPrice"`
	ImageURL      string    `json:"imageUrl"`
	Category      string    `json:"category"`
	Stock         int       `json:"stock"`
	IsNewArrival  bool      `json:"isNewArrival"`
	CreatedAt     time.Time `json:"createdAt"`
}

type Review struct {
	ID           int64     `json:"id"`
	ProductID    int64     `json:"productId"`
	UserID       *string   `json:"userId"`
	ReviewerName string    `json:"reviewerName"`
	Rating       int       `json:"rating"`
	Comment      string    `json:"comment"`
	ImageURL     *string   `json:"imageUrl"`
	CreatedAt    time.Time `json:"createdAt"`
}

type CartItem struct {
	ID        int64     `json:"id"`
	UserID    *string   `json:"userId"`
	SessionID *string   `json:"sessionId"`
	ProductID int64     `json:"productId"`
	Quantity  int       `json:"quantity"`
	CreatedAt time.Time `json:"createdAt"`
	Product   *Product  `json:"product,omitempty"`
}

type OrderItem struct {
	ID        int64  `json:"id"`
	OrderID   int64  `json:"orderId"`
	ProductID int64  `json:"productId"`
	Quantity  int    `json:"quantity"`
	Price     string `json:"price"`
}

type Order struct {
	ID          int64       `json:"id"`
	UserID      *string     `json:"userId"`
	GuestName   *string     `json:"guestName"`
	GuestEmail  *string     `json:"guestEmail"`
	GuestPhone  *string     `json:"guestPhone"`
	Address     string      `json:"address"`
	TotalAmount string      `json:"totalAmount"`
	Status      string      `json:"status"`
	CreatedAt   time.Time   `json:"createdAt"`
	Items       []OrderItem `json:"items,omitempty"`
}

type AuthUser struct {
	ID    string `json:"id"`
	Email string `json:"email,omitempty"`
	Name  string `json:"name,omitempty"`
}

type ErrorResponse struct {
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

func Money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

func FromProduct(p domain.Product) Product {
	out := Product{
		ID:           p.ID,
		Name:         p.Name,
		Slug:         slug.Make(p.Name),
		Description:  p.Description,
		Price:        Money(p.Price),
		ImageURL:     p.ImageURL,
		Category:     p.Category,
		Stock:        p.Stock,
		IsNewArrival: p.IsNewArrival,
		CreatedAt:    p.CreatedAt,
	}
	if p.OriginalPrice != nil {
		s := Money(*p.OriginalPrice)
		out.OriginalPrice = &s
	}
	return out
}

func FromProducts(ps []domain.Product) []Product {
	out := make([]Product, 0, len(ps))
	for _, p := range ps {
		out = append(out, FromProduct(p))
	}
	return out
}

func FromReview(r domain.Review) Review {
	return Review{
		ID:           r.ID,
		ProductID:    r.ProductID,
		UserID:       r.UserID,
		ReviewerName: r.ReviewerName,
		Rating:       r.Rating,
		Comment:      r.Comment,
		ImageURL:     r.ImageURL,
		CreatedAt:    r.CreatedAt,
	}
}

func FromReviews(rs []domain.Review) []Review {
	out := make([]Review, 0, len(rs))
	for _, r := range rs {
		out = append(out, FromReview(r))
	}
	return out
}

func FromCartItem(ci domain.CartItem) CartItem {
	out := CartItem{
		ID:        ci.ID,
		UserID:    ci.UserID,
		SessionID: ci.SessionID,
		ProductID: ci.ProductID,
		Quantity:  ci.Quantity,
		CreatedAt: ci.CreatedAt,
	}
	if ci.Product != nil {
		p := FromProduct(*ci.Product)
		out.Product = &p
	}
	return out
}

func FromCartItems(items []domain.CartItem) []CartItem {
	out := make([]CartItem, 0, len(items))
	for _, ci := range items {
		out = append(out, FromCartItem(ci))
	}
	return out
}

func FromOrder(o domain.Order) Order {
	out := Order{
		ID:          o.ID,
		UserID:      o.UserID,
		GuestName:   o.GuestName,
		GuestEmail:  o.GuestEmail,
		GuestPhone:  o.GuestPhone,
		Address:     o.Address,
		TotalAmount: Money(o.TotalAmount),
		Status:      o.Status,
		CreatedAt:   o.CreatedAt,
	}
	for _, it := range o.Items {
		out.Items = append(out.Items, OrderItem{
			ID:        it.ID,
			OrderID:   it.OrderID,
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			Price:     Money(it.Price),
		})
	}
	return out
}
