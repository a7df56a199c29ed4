package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Role string

const (
	RoleUser    Role = "user"
	RoleManager Role = "manager"
	RoleAdmin   Role = "admin"
)

type UserStatus string

const (
	UserStatusActive   UserStatus = "active"
	UserStatusInactive UserStatus = "inactive"
)

type User struct {
	ID        uuid.UUID
	Email     string
	Password  string
	Name      string
	Phone     string
	Role      Role
	Status    UserStatus
	Verified  bool
	GoogleID  string
	StoreID   *uuid.UUID
	CreatedAt time.Time
	UpdatedAt time.Time
}

// CatalogStatus is the admin-controlled, system-wide availability flag.
// StoreStatus is the manager-controlled, per-store pause flag. They are
// independent: an item is visible to customers only when both are "available".
type CatalogStatus string

const (
	StatusAvailable   CatalogStatus = "available"
	StatusUnavailable CatalogStatus = "unavailable"
)

type Category struct {
	ID          uuid.UUID
	Name        string
	Description string
	Status      CatalogStatus
	StoreStatus CatalogStatus
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type Product struct {
	ID          uuid.UUID
	CategoryID  *uuid.UUID
	Name        string
	Description string
	ImageURL    string
	Price       decimal.Decimal
	Status      CatalogStatus
	StoreStatus CatalogStatus
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type Topping struct {
	ID          uuid.UUID
	Name        string
	ExtraPrice  decimal.Decimal
	Status      CatalogStatus
	StoreStatus CatalogStatus
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type Cart struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	Items     []CartItem
	CreatedAt time.Time
	UpdatedAt time.Time
}

type CartItem struct {
	ID         uuid.UUID
	CartID     uuid.UUID
	ProductID  uuid.UUID
	SizeOption string
	SugarLevel int
	IceOption  int
	Toppings   []uuid.UUID
	Quantity   int
	UnitPrice  decimal.Decimal
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// SameSelection reports whether two cart lines are the same drink
// configuration for merge purposes. Toppings are deliberately excluded:
// the login-time merge matches on (product, size, sugar, ice) only.
func (i CartItem) SameSelection(o GuestCartItem) bool {
	return i.ProductID == o.ProductID &&
		i.SizeOption == o.SizeOption &&
		i.SugarLevel == o.SugarLevel &&
		i.IceOption == o.IceOption
}

// GuestCartItem is a cart line held in Redis before the customer logs in.
type GuestCartItem struct {
	ProductID  uuid.UUID       `json:"productId"`
	SizeOption string          `json:"sizeOption"`
	SugarLevel int             `json:"sugarLevel"`
	IceOption  int             `json:"iceOption"`
	Toppings   []uuid.UUID     `json:"toppings,omitempty"`
	Quantity   int             `json:"quantity"`
	UnitPrice  decimal.Decimal `json:"unitPrice"`
}

type OrderStatus string

const (
	OrderStatusFindingDriver OrderStatus = "finding_driver"
	OrderStatusPickingUp     OrderStatus = "picking_up"
	OrderStatusDelivering    OrderStatus = "delivering"
	OrderStatusDelivered     OrderStatus = "delivered"
	OrderStatusCancelled     OrderStatus = "cancelled"
)

// orderTransitions is the single source of truth for the delivery pipeline:
// linear progression with no stage skips, cancellation allowed at any point
// before the order is delivered.
var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusFindingDriver: {OrderStatusPickingUp, OrderStatusCancelled},
	OrderStatusPickingUp:     {OrderStatusDelivering, OrderStatusCancelled},
	OrderStatusDelivering:    {OrderStatusDelivered, OrderStatusCancelled},
}

func CanTransition(from, to OrderStatus) bool {
	for _, next := range orderTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

func (s OrderStatus) Terminal() bool {
	return s == OrderStatusDelivered || s == OrderStatusCancelled
}

type PaymentStatus string

const (
	PaymentStatusPending  PaymentStatus = "pending"
	PaymentStatusPaid     PaymentStatus = "paid"
	PaymentStatusFailed   PaymentStatus = "failed"
	PaymentStatusRefunded PaymentStatus = "refunded"
)

var paymentTransitions = map[PaymentStatus][]PaymentStatus{
	PaymentStatusPending: {PaymentStatusPaid, PaymentStatusFailed},
	PaymentStatusPaid:    {PaymentStatusRefunded},
	PaymentStatusFailed:  {PaymentStatusPending},
}

func CanTransitionPayment(from, to PaymentStatus) bool {
	for _, next := range paymentTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

type Order struct {
	ID              uuid.UUID
	UserID          uuid.UUID
	CustomerName    string
	CustomerPhone   string
	ShippingAddress string
	Note            string
	Status          OrderStatus
	PaymentStatus   PaymentStatus
	TotalPrice      decimal.Decimal
	Items           []OrderItem
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

type OrderItem struct {
	ID         uuid.UUID
	OrderID    uuid.UUID
	ProductID  uuid.UUID
	SizeOption string
	SugarLevel int
	IceOption  int
	Toppings   []uuid.UUID
	Quantity   int
	Price      decimal.Decimal
}

// OrderStatusEntry is one row of the append-only status history.
type OrderStatusEntry struct {
	ID        uuid.UUID
	OrderID   uuid.UUID
	From      OrderStatus
	To        OrderStatus
	Note      string
	CreatedAt time.Time
}

type RequestEntity string

const (
	EntityProduct  RequestEntity = "product"
	EntityCategory RequestEntity = "category"
	EntityTopping  RequestEntity = "topping"
)

type RequestAction string

const (
	ActionCreate RequestAction = "create"
	ActionUpdate RequestAction = "update"
	ActionDelete RequestAction = "delete"
)

type RequestStatus string

const (
	RequestStatusPending   RequestStatus = "pending"
	RequestStatusApproved  RequestStatus = "approved"
	RequestStatusRejected  RequestStatus = "rejected"
	RequestStatusCancelled RequestStatus = "cancelled"
)

// ChangeRequest is a manager's proposed catalog change, held pending until
// an admin approves or rejects it. Approved/rejected/cancelled are terminal.
type ChangeRequest struct {
	ID          uuid.UUID
	StoreID     uuid.UUID
	ManagerID   uuid.UUID
	Entity      RequestEntity
	Action      RequestAction
	TargetID    *uuid.UUID
	Payload     map[string]any
	Original    map[string]any
	Reason      string
	Status      RequestStatus
	Tags        []string
	Attachments []string
	ReviewNote  string
	ReviewedBy  *uuid.UUID
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type OrderMessage struct {
	OrderID uuid.UUID `json:"order_id"`
	UserID  uuid.UUID `json:"user_id"`
}
