package dto

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mitea/boba-platform-api/internal/model"
)

type AddCartItemRequest struct {
	ProductID  uuid.UUID   `json:"productId" binding:"required"`
	SizeOption string      `json:"sizeOption" binding:"required,oneof=S M L"`
	SugarLevel int         `json:"sugarLevel" binding:"min=0,max=100"`
	IceOption  int         `json:"iceOption" binding:"min=0,max=100"`
	Toppings   []uuid.UUID `json:"toppings"`
	Quantity   int         `json:"quantity" binding:"required,min=1"`
}

type UpdateCartItemRequest struct {
	Quantity int `json:"quantity" binding:"required,min=1"`
}

type CartItemResponse struct {
	ID         uuid.UUID       `json:"id"`
	ProductID  uuid.UUID       `json:"productId"`
	SizeOption string          `json:"sizeOption"`
	SugarLevel int             `json:"sugarLevel"`
	IceOption  int             `json:"iceOption"`
	Toppings   []uuid.UUID     `json:"toppings,omitempty"`
	Quantity   int             `json:"quantity"`
	UnitPrice  decimal.Decimal `json:"unitPrice"`
}

type CartResponse struct {
	ID    uuid.UUID          `json:"id"`
	Items []CartItemResponse `json:"items"`
}

func ToCartResponse(cart *model.Cart) CartResponse {
	items := make([]CartItemResponse, 0, len(cart.Items))
	for _, it := range cart.Items {
		items = append(items, CartItemResponse{
			ID: it.ID, ProductID: it.ProductID,
			SizeOption: it.SizeOption, SugarLevel: it.SugarLevel, IceOption: it.IceOption,
			Toppings: it.Toppings, Quantity: it.Quantity, UnitPrice: it.UnitPrice,
		})
	}
	return CartResponse{ID: cart.ID, Items: items}
}

// MergeCartRequest carries the guest token issued before login so the
// server can fold the Redis-held guest cart into the account cart.
type MergeCartRequest struct {
	GuestToken string `json:"guestToken" binding:"required"`
}

type GuestCartResponse struct {
	Token string                `json:"token"`
	Items []model.GuestCartItem `json:"items"`
}
