package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mitea/boba-platform-api/internal/model"
)

type OrderRepository interface {
	Create(ctx context.Context, order *model.Order) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Order, error)
	List(ctx context.Context, limit, offset int, status, paymentStatus string) ([]model.Order, int, error)
	ListByUserID(ctx context.Context, userID uuid.UUID) ([]model.Order, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to model.OrderStatus, note string) error
	UpdatePaymentStatus(ctx context.Context, id uuid.UUID, status model.PaymentStatus) error
	StatusHistory(ctx context.Context, orderID uuid.UUID) ([]model.OrderStatusEntry, error)
	AppendHistory(ctx context.Context, entry *model.OrderStatusEntry) error
}

type pgOrderRepo struct{ pool *pgxpool.Pool }

func NewOrderRepository(pool *pgxpool.Pool) OrderRepository {
	return &pgOrderRepo{pool: pool}
}

// Create inserts the order and its line items in one transaction.
func (r *pgOrderRepo) Create(ctx context.Context, order *model.Order) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	order.ID = uuid.New()
	err = tx.QueryRow(ctx,
		`INSERT INTO orders (id, user_id, customer_name, customer_phone, shipping_address, note, status, payment_status, total_price, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW(), NOW()) RETURNING created_at, updated_at`,
		order.ID, order.UserID, order.CustomerName, order.CustomerPhone,
		order.ShippingAddress, order.Note, order.Status, order.PaymentStatus, order.TotalPrice,
	).Scan(&order.CreatedAt, &order.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}

	for i := range order.Items {
		order.Items[i].ID = uuid.New()
		order.Items[i].OrderID = order.ID
		toppings, err := json.Marshal(order.Items[i].Toppings)
		if err != nil {
			return fmt.Errorf("encode order item toppings: %w", err)
		}
		_, err = tx.Exec(ctx,
			`INSERT INTO order_items (id, order_id, product_id, size_option, sugar_level, ice_option, toppings, quantity, price)
			 VALUES ($1, $2, $3, $4, $5, $6, $7::jsonb, $8, $9)`,
			order.Items[i].ID, order.Items[i].OrderID, order.Items[i].ProductID,
			order.Items[i].SizeOption, order.Items[i].SugarLevel, order.Items[i].IceOption,
			toppings, order.Items[i].Quantity, order.Items[i].Price,
		)
		if err != nil {
			return fmt.Errorf("insert order item: %w", err)
		}
	}

	return tx.Commit(ctx)
}

func (r *pgOrderRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	order := &model.Order{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, user_id, customer_name, customer_phone, shipping_address, note, status, payment_status, total_price, created_at, updated_at
		 FROM orders WHERE id = $1`, id,
	).Scan(
		&order.ID, &order.UserID, &order.CustomerName, &order.CustomerPhone,
		&order.ShippingAddress, &order.Note, &order.Status, &order.PaymentStatus,
		&order.TotalPrice, &order.CreatedAt, &order.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get order: %w", err)
	}

	rows, err := r.pool.Query(ctx,
		`SELECT id, product_id, size_option, sugar_level, ice_option, toppings, quantity, price
		 FROM order_items WHERE order_id = $1`, id,
	)
	if err != nil {
		return nil, fmt.Errorf("get order items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var item model.OrderItem
		var toppings []byte
		if err := rows.Scan(
			&item.ID, &item.ProductID, &item.SizeOption, &item.SugarLevel,
			&item.IceOption, &toppings, &item.Quantity, &item.Price,
		); err != nil {
			return nil, fmt.Errorf("scan order item: %w", err)
		}
		if len(toppings) > 0 {
			if err := json.Unmarshal(toppings, &item.Toppings); err != nil {
				return nil, fmt.Errorf("decode order item toppings: %w", err)
			}
		}
		item.OrderID = order.ID
		order.Items = append(order.Items, item)
	}
	return order, nil
}

func (r *pgOrderRepo) List(ctx context.Context, limit, offset int, status, paymentStatus string) ([]model.Order, int, error) {
	where := `WHERE ($1 = '' OR status = $1) AND ($2 = '' OR payment_status = $2)`

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM orders `+where, status, paymentStatus).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count orders: %w", err)
	}

	rows, err := r.pool.Query(ctx,
		`SELECT id, user_id, customer_name, customer_phone, shipping_address, note, status, payment_status, total_price, created_at, updated_at
		 FROM orders `+where+` ORDER BY created_at DESC LIMIT $3 OFFSET $4`,
		status, paymentStatus, limit, offset,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	var orders []model.Order
	for rows.Next() {
		var o model.Order
		if err := rows.Scan(
			&o.ID, &o.UserID, &o.CustomerName, &o.CustomerPhone,
			&o.ShippingAddress, &o.Note, &o.Status, &o.PaymentStatus,
			&o.TotalPrice, &o.CreatedAt, &o.UpdatedAt,
		); err != nil {
			return nil, 0, fmt.Errorf("scan order: %w", err)
		}
		orders = append(orders, o)
	}
	return orders, total, nil
}

func (r *pgOrderRepo) ListByUserID(ctx context.Context, userID uuid.UUID) ([]model.Order, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, user_id, customer_name, customer_phone, shipping_address, note, status, payment_status, total_price, created_at, updated_at
		 FROM orders WHERE user_id = $1 ORDER BY created_at DESC`, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list user orders: %w", err)
	}
	defer rows.Close()

	var orders []model.Order
	for rows.Next() {
		var o model.Order
		if err := rows.Scan(
			&o.ID, &o.UserID, &o.CustomerName, &o.CustomerPhone,
			&o.ShippingAddress, &o.Note, &o.Status, &o.PaymentStatus,
			&o.TotalPrice, &o.CreatedAt, &o.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		orders = append(orders, o)
	}
	return orders, nil
}

// UpdateStatus moves the order and appends the history row in one
// transaction; the WHERE on the current status fences concurrent updates.
func (r *pgOrderRepo) UpdateStatus(ctx context.Context, id uuid.UUID, from, to model.OrderStatus, note string) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	ct, err := tx.Exec(ctx,
		`UPDATE orders SET status = $3, updated_at = NOW() WHERE id = $1 AND status = $2`,
		id, from, to,
	)
	if err != nil {
		return fmt.Errorf("update order status: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}

	_, err = tx.Exec(ctx,
		`INSERT INTO order_status_history (id, order_id, from_status, to_status, note, created_at)
		 VALUES ($1, $2, $3, $4, $5, NOW())`,
		uuid.New(), id, from, to, note,
	)
	if err != nil {
		return fmt.Errorf("append status history: %w", err)
	}

	return tx.Commit(ctx)
}

func (r *pgOrderRepo) UpdatePaymentStatus(ctx context.Context, id uuid.UUID, status model.PaymentStatus) error {
	ct, err := r.pool.Exec(ctx,
		`UPDATE orders SET payment_status = $2, updated_at = NOW() WHERE id = $1`, id, status)
	if err != nil {
		return fmt.Errorf("update payment status: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *pgOrderRepo) StatusHistory(ctx context.Context, orderID uuid.UUID) ([]model.OrderStatusEntry, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, order_id, from_status, to_status, note, created_at
		 FROM order_status_history WHERE order_id = $1 ORDER BY created_at`, orderID,
	)
	if err != nil {
		return nil, fmt.Errorf("get status history: %w", err)
	}
	defer rows.Close()

	var entries []model.OrderStatusEntry
	for rows.Next() {
		var e model.OrderStatusEntry
		if err := rows.Scan(&e.ID, &e.OrderID, &e.From, &e.To, &e.Note, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan history entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}

func (r *pgOrderRepo) AppendHistory(ctx context.Context, entry *model.OrderStatusEntry) error {
	entry.ID = uuid.New()
	err := r.pool.QueryRow(ctx,
		`INSERT INTO order_status_history (id, order_id, from_status, to_status, note, created_at)
		 VALUES ($1, $2, $3, $4, $5, NOW()) RETURNING created_at`,
		entry.ID, entry.OrderID, entry.From, entry.To, entry.Note,
	).Scan(&entry.CreatedAt)
	if err != nil {
		return fmt.Errorf("append history: %w", err)
	}
	return nil
}
