package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/shopspring/decimal"
	qrcode "github.com/skip2/go-qrcode"

	"github.com/mitea/boba-platform-api/internal/dto"
	"github.com/mitea/boba-platform-api/internal/model"
	"github.com/mitea/boba-platform-api/internal/repository"
	"github.com/mitea/boba-platform-api/internal/validation"
)

var (
	ErrEmptyCart               = errors.New("cart is empty")
	ErrOrderNotFound           = errors.New("order not found")
	ErrOrderAccessDenied       = errors.New("access denied")
	ErrInvalidStatusTransition = errors.New("invalid status transition")
)

type OrderService struct {
	orderRepo       repository.OrderRepository
	cartRepo        repository.CartRepository
	amqpCh          *amqp.Channel
	trackingBaseURL string
}

func NewOrderService(
	orderRepo repository.OrderRepository,
	cartRepo repository.CartRepository,
	amqpCh *amqp.Channel,
	trackingBaseURL string,
) *OrderService {
	return &OrderService{orderRepo: orderRepo, cartRepo: cartRepo, amqpCh: amqpCh, trackingBaseURL: trackingBaseURL}
}

// Checkout turns the account cart into an order. The order enters the
// pipeline at finding_driver with payment pending; the cart is cleared on
// success, which is what empties the storefront cart after checkout.
func (s *OrderService) Checkout(ctx context.Context, userID uuid.UUID, req dto.CheckoutRequest) (*model.Order, error) {
	if err := validation.Phone(req.CustomerPhone); err != nil {
		return nil, err
	}

	cart, err := s.cartRepo.GetOrCreateCart(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get cart: %w", err)
	}
	cartWithItems, err := s.cartRepo.GetCartWithItems(ctx, cart.ID)
	if err != nil {
		return nil, fmt.Errorf("get cart items: %w", err)
	}
	if cartWithItems == nil || len(cartWithItems.Items) == 0 {
		return nil, ErrEmptyCart
	}

	var total decimal.Decimal
	items := make([]model.OrderItem, 0, len(cartWithItems.Items))
	for _, ci := range cartWithItems.Items {
		total = total.Add(ci.UnitPrice.Mul(decimal.NewFromInt(int64(ci.Quantity))))
		items = append(items, model.OrderItem{
			ProductID:  ci.ProductID,
			SizeOption: ci.SizeOption,
			SugarLevel: ci.SugarLevel,
			IceOption:  ci.IceOption,
			Toppings:   ci.Toppings,
			Quantity:   ci.Quantity,
			Price:      ci.UnitPrice,
		})
	}

	order := &model.Order{
		UserID:          userID,
		CustomerName:    req.CustomerName,
		CustomerPhone:   req.CustomerPhone,
		ShippingAddress: req.ShippingAddress,
		Note:            req.Note,
		Status:          model.OrderStatusFindingDriver,
		PaymentStatus:   model.PaymentStatusPending,
		TotalPrice:      total,
		Items:           items,
	}
	if err := s.orderRepo.Create(ctx, order); err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}

	// Publish for async confirmation; delivery is at-least-once and the
	// worker dedupes.
	msg, _ := json.Marshal(model.OrderMessage{OrderID: order.ID, UserID: userID})
	if s.amqpCh != nil {
		_ = s.amqpCh.PublishWithContext(ctx, "", "orders", false, false, amqp.Publishing{
			ContentType:  "application/json",
			Body:         msg,
			DeliveryMode: amqp.Persistent,
		})
	}

	_ = s.cartRepo.ClearCart(ctx, cart.ID)
	return order, nil
}

func (s *OrderService) GetByID(ctx context.Context, orderID uuid.UUID) (*model.Order, error) {
	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("get order: %w", err)
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	return order, nil
}

// GetForUser is the customer-facing lookup: the order must belong to the
// requesting account.
func (s *OrderService) GetForUser(ctx context.Context, orderID, userID uuid.UUID) (*model.Order, error) {
	order, err := s.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.UserID != userID {
		return nil, ErrOrderAccessDenied
	}
	return order, nil
}

func (s *OrderService) ListByUserID(ctx context.Context, userID uuid.UUID) ([]model.Order, error) {
	return s.orderRepo.ListByUserID(ctx, userID)
}

func (s *OrderService) ListStoreOrders(ctx context.Context, params dto.ListOrdersParams) ([]model.Order, int, error) {
	offset := (params.Page - 1) * params.Limit
	return s.orderRepo.List(ctx, params.Limit, offset, params.Status, params.PaymentStatus)
}

// UpdateStatus advances the delivery pipeline. Transitions are validated
// against the model's transition table; stage skips and moves out of a
// terminal status come back as ErrInvalidStatusTransition.
func (s *OrderService) UpdateStatus(ctx context.Context, orderID uuid.UUID, to model.OrderStatus, note string) (*model.Order, error) {
	order, err := s.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !model.CanTransition(order.Status, to) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidStatusTransition, order.Status, to)
	}

	if err := s.orderRepo.UpdateStatus(ctx, orderID, order.Status, to, note); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// Lost the race against a concurrent transition.
			return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidStatusTransition, order.Status, to)
		}
		return nil, fmt.Errorf("update order status: %w", err)
	}
	order.Status = to
	return order, nil
}

func (s *OrderService) CancelOrder(ctx context.Context, orderID uuid.UUID, note string) (*model.Order, error) {
	return s.UpdateStatus(ctx, orderID, model.OrderStatusCancelled, note)
}

func (s *OrderService) UpdatePaymentStatus(ctx context.Context, orderID uuid.UUID, to model.PaymentStatus) (*model.Order, error) {
	order, err := s.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !model.CanTransitionPayment(order.PaymentStatus, to) {
		return nil, fmt.Errorf("%w: payment %s -> %s", ErrInvalidStatusTransition, order.PaymentStatus, to)
	}
	if err := s.orderRepo.UpdatePaymentStatus(ctx, orderID, to); err != nil {
		return nil, fmt.Errorf("update payment status: %w", err)
	}
	order.PaymentStatus = to
	return order, nil
}

func (s *OrderService) StatusHistory(ctx context.Context, orderID uuid.UUID) ([]model.OrderStatusEntry, error) {
	if _, err := s.GetByID(ctx, orderID); err != nil {
		return nil, err
	}
	return s.orderRepo.StatusHistory(ctx, orderID)
}

// TrackingQR renders a QR code pointing at the public tracking page for
// the order.
func (s *OrderService) TrackingQR(ctx context.Context, orderID uuid.UUID) ([]byte, error) {
	if _, err := s.GetByID(ctx, orderID); err != nil {
		return nil, err
	}
	png, err := qrcode.Encode(fmt.Sprintf("%s/%s", s.trackingBaseURL, orderID), qrcode.Medium, 256)
	if err != nil {
		return nil, fmt.Errorf("encode tracking qr: %w", err)
	}
	return png, nil
}
