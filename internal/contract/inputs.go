package contract

import "encoding/json"

type CreateReviewInput struct {
	ReviewerName string  `json:"reviewerName" validate:"required,max=120"`
	Rating       int     `json:"rating" validate:"min=1,max=5"`
	Comment      string  `json:"comment" validate:"required,max=4000"`
	ImageURL     *string `json:"imageUrl,omitempty" validate:"omitempty,url"`
}

// AddCartItemInput adds quantity (default 1) of a product to the caller's cart.
type AddCartItemInput struct {
	ProductID int64 `json:"productId" validate:"required,min=1"`
	Quantity  *int  `json:"quantity,omitempty" validate:"omitempty,min=1"`
}

// Qty returns the requested quantity, defaulting to 1.
func (in AddCartItemInput) Qty() int {
	if in.Quantity == nil {
		return 1
	}
	return *in.Quantity
}

type UpdateCartItemInput struct {
	Quantity int `json:"quantity" validate:"min=1"`
}

// CreateOrderInput is the checkout form. TotalAmount may be sent as a number
// or a string and is only compared against the computed total.
type CreateOrderInput struct {
	GuestName   *string      `json:"guestName,omitempty" validate:"omitempty,max=120"`
	GuestEmail  *string      `json:"guestEmail,omitempty" validate:"omitempty,email"`
	GuestPhone  *string      `json:"guestPhone,omitempty" validate:"omitempty,max=40"`
	Address     string       `json:"address" validate:"required,max=1000"`
	TotalAmount *json.Number `json:"totalAmount,omitempty" validate:"omitempty,numeric"`
}
