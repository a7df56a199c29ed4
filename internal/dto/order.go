package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mitea/boba-platform-api/internal/model"
)

type CheckoutRequest struct {
	CustomerName    string `json:"customerName" binding:"required"`
	CustomerPhone   string `json:"customerPhone" binding:"required"`
	ShippingAddress string `json:"shippingAddress" binding:"required"`
	Note            string `json:"note"`
}

type UpdateOrderStatusRequest struct {
	Status model.OrderStatus `json:"status" binding:"required,oneof=finding_driver picking_up delivering delivered cancelled"`
	Note   string            `json:"note"`
}

type UpdatePaymentStatusRequest struct {
	PaymentStatus model.PaymentStatus `json:"paymentStatus" binding:"required,oneof=pending paid failed refunded"`
	Note          string              `json:"note"`
}

type CancelOrderRequest struct {
	Note string `json:"note"`
}

type ListOrdersParams struct {
	Page          int    `form:"page,default=1" binding:"min=1"`
	Limit         int    `form:"limit,default=20" binding:"min=1,max=100"`
	Status        string `form:"status" binding:"omitempty,oneof=finding_driver picking_up delivering delivered cancelled"`
	PaymentStatus string `form:"paymentStatus" binding:"omitempty,oneof=pending paid failed refunded"`
}

type OrderItemResponse struct {
	ID         uuid.UUID       `json:"id"`
	ProductID  uuid.UUID       `json:"productId"`
	SizeOption string          `json:"sizeOption"`
	SugarLevel int             `json:"sugarLevel"`
	IceOption  int             `json:"iceOption"`
	Toppings   []uuid.UUID     `json:"toppings,omitempty"`
	Quantity   int             `json:"quantity"`
	Price      decimal.Decimal `json:"price"`
}

type OrderResponse struct {
	ID              uuid.UUID           `json:"id"`
	UserID          uuid.UUID           `json:"userId"`
	CustomerName    string              `json:"customerName"`
	CustomerPhone   string              `json:"customerPhone"`
	ShippingAddress string              `json:"shippingAddress"`
	Note            string              `json:"note,omitempty"`
	Status          model.OrderStatus   `json:"status"`
	PaymentStatus   model.PaymentStatus `json:"paymentStatus"`
	TotalPrice      decimal.Decimal     `json:"totalPrice"`
	Items           []OrderItemResponse `json:"items"`
	CreatedAt       time.Time           `json:"createdAt"`
	UpdatedAt       time.Time           `json:"updatedAt"`
}

func ToOrderResponse(o *model.Order) OrderResponse {
	items := make([]OrderItemResponse, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, OrderItemResponse{
			ID: it.ID, ProductID: it.ProductID,
			SizeOption: it.SizeOption, SugarLevel: it.SugarLevel, IceOption: it.IceOption,
			Toppings: it.Toppings, Quantity: it.Quantity, Price: it.Price,
		})
	}
	return OrderResponse{
		ID: o.ID, UserID: o.UserID,
		CustomerName: o.CustomerName, CustomerPhone: o.CustomerPhone,
		ShippingAddress: o.ShippingAddress, Note: o.Note,
		Status: o.Status, PaymentStatus: o.PaymentStatus,
		TotalPrice: o.TotalPrice, Items: items,
		CreatedAt: o.CreatedAt, UpdatedAt: o.UpdatedAt,
	}
}

type StatusHistoryEntry struct {
	From      model.OrderStatus `json:"from"`
	To        model.OrderStatus `json:"to"`
	Note      string            `json:"note,omitempty"`
	CreatedAt time.Time         `json:"createdAt"`
}

func ToStatusHistory(entries []model.OrderStatusEntry) []StatusHistoryEntry {
	out := make([]StatusHistoryEntry, 0, len(entries))
	for _, e := range entries {
		out = append(out, StatusHistoryEntry{From: e.From, To: e.To, Note: e.Note, CreatedAt: e.CreatedAt})
	}
	return out
}
