package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mitea/boba-platform-api/internal/model"
)

type ToppingRepository interface {
	Create(ctx context.Context, topping *model.Topping) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Topping, error)
	List(ctx context.Context, limit, offset int, search, status string) ([]model.Topping, int, error)
	Update(ctx context.Context, topping *model.Topping) error
	SetStoreStatus(ctx context.Context, id uuid.UUID, status model.CatalogStatus) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type pgToppingRepo struct{ pool *pgxpool.Pool }

func NewToppingRepository(pool *pgxpool.Pool) ToppingRepository {
	return &pgToppingRepo{pool: pool}
}

const toppingColumns = `id, name, extra_price, status, store_status, created_at, updated_at`

func (r *pgToppingRepo) Create(ctx context.Context, topping *model.Topping) error {
	topping.ID = uuid.New()
	query := `INSERT INTO toppings (id, name, extra_price, status, store_status, created_at, updated_at)
			  VALUES ($1, $2, $3, $4, $5, NOW(), NOW()) RETURNING created_at, updated_at`
	err := r.pool.QueryRow(ctx, query,
		topping.ID, topping.Name, topping.ExtraPrice, topping.Status, topping.StoreStatus,
	).Scan(&topping.CreatedAt, &topping.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create topping: %w", err)
	}
	return nil
}

func (r *pgToppingRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.Topping, error) {
	t := &model.Topping{}
	err := r.pool.QueryRow(ctx,
		`SELECT `+toppingColumns+` FROM toppings WHERE id = $1`, id,
	).Scan(&t.ID, &t.Name, &t.ExtraPrice, &t.Status, &t.StoreStatus, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get topping: %w", err)
	}
	return t, nil
}

func (r *pgToppingRepo) List(ctx context.Context, limit, offset int, search, status string) ([]model.Topping, int, error) {
	where := `WHERE ($1 = '' OR name ILIKE '%' || $1 || '%') AND ($2 = '' OR status = $2)`

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM toppings `+where, search, status).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count toppings: %w", err)
	}

	rows, err := r.pool.Query(ctx,
		`SELECT `+toppingColumns+` FROM toppings `+where+` ORDER BY created_at DESC LIMIT $3 OFFSET $4`,
		search, status, limit, offset,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("list toppings: %w", err)
	}
	defer rows.Close()

	var toppings []model.Topping
	for rows.Next() {
		var t model.Topping
		if err := rows.Scan(&t.ID, &t.Name, &t.ExtraPrice, &t.Status, &t.StoreStatus, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, 0, fmt.Errorf("scan topping: %w", err)
		}
		toppings = append(toppings, t)
	}
	return toppings, total, nil
}

func (r *pgToppingRepo) Update(ctx context.Context, topping *model.Topping) error {
	err := r.pool.QueryRow(ctx,
		`UPDATE toppings SET name=$2, extra_price=$3, updated_at=NOW() WHERE id=$1 RETURNING updated_at`,
		topping.ID, topping.Name, topping.ExtraPrice,
	).Scan(&topping.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return pgx.ErrNoRows
		}
		return fmt.Errorf("update topping: %w", err)
	}
	return nil
}

func (r *pgToppingRepo) SetStoreStatus(ctx context.Context, id uuid.UUID, status model.CatalogStatus) error {
	ct, err := r.pool.Exec(ctx,
		`UPDATE toppings SET store_status = $2, updated_at = NOW() WHERE id = $1`, id, status)
	if err != nil {
		return fmt.Errorf("set topping store status: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// Delete is a hard delete; toppings are the only catalog entity removed
// outright rather than soft-deleted.
func (r *pgToppingRepo) Delete(ctx context.Context, id uuid.UUID) error {
	ct, err := r.pool.Exec(ctx, `DELETE FROM toppings WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete topping: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
