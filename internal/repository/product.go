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

type ProductRepository interface {
	Create(ctx context.Context, product *model.Product) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Product, error)
	List(ctx context.Context, limit, offset int, search, status, sort, order string) ([]model.Product, int, error)
	Update(ctx context.Context, product *model.Product) error
	SetStatus(ctx context.Context, id uuid.UUID, status model.CatalogStatus) error
	SetStoreStatus(ctx context.Context, id uuid.UUID, status model.CatalogStatus) error
	DetachCategory(ctx context.Context, categoryID uuid.UUID) (int64, error)
}

type pgProductRepo struct{ pool *pgxpool.Pool }

func NewProductRepository(pool *pgxpool.Pool) ProductRepository {
	return &pgProductRepo{pool: pool}
}

const productColumns = `id, category_id, name, description, image_url, price, status, store_status, created_at, updated_at`

func (r *pgProductRepo) Create(ctx context.Context, product *model.Product) error {
	product.ID = uuid.New()
	query := `INSERT INTO products (id, category_id, name, description, image_url, price, status, store_status, created_at, updated_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW()) RETURNING created_at, updated_at`
	err := r.pool.QueryRow(ctx, query,
		product.ID, product.CategoryID, product.Name, product.Description,
		product.ImageURL, product.Price, product.Status, product.StoreStatus,
	).Scan(&product.CreatedAt, &product.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create product: %w", err)
	}
	return nil
}

func (r *pgProductRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	p := &model.Product{}
	err := r.pool.QueryRow(ctx,
		`SELECT `+productColumns+` FROM products WHERE id = $1`, id,
	).Scan(
		&p.ID, &p.CategoryID, &p.Name, &p.Description, &p.ImageURL,
		&p.Price, &p.Status, &p.StoreStatus, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get product: %w", err)
	}
	return p, nil
}

func (r *pgProductRepo) List(ctx context.Context, limit, offset int, search, status, sort, order string) ([]model.Product, int, error) {
	allowedSorts := map[string]bool{"name": true, "price": true, "created_at": true}
	if !allowedSorts[sort] {
		sort = "created_at"
	}
	if order != "asc" && order != "desc" {
		order = "desc"
	}

	where := `WHERE ($1 = '' OR name ILIKE '%' || $1 || '%' OR description ILIKE '%' || $1 || '%')
			  AND ($2 = '' OR status = $2)`

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM products `+where, search, status).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count products: %w", err)
	}

	query := fmt.Sprintf(`SELECT `+productColumns+` FROM products `+where+` ORDER BY %s %s LIMIT $3 OFFSET $4`, sort, order)
	rows, err := r.pool.Query(ctx, query, search, status, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	var products []model.Product
	for rows.Next() {
		var p model.Product
		if err := rows.Scan(
			&p.ID, &p.CategoryID, &p.Name, &p.Description, &p.ImageURL,
			&p.Price, &p.Status, &p.StoreStatus, &p.CreatedAt, &p.UpdatedAt,
		); err != nil {
			return nil, 0, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, p)
	}
	return products, total, nil
}

func (r *pgProductRepo) Update(ctx context.Context, product *model.Product) error {
	query := `UPDATE products SET category_id=$2, name=$3, description=$4, image_url=$5, price=$6, updated_at=NOW()
			  WHERE id=$1 RETURNING updated_at`
	err := r.pool.QueryRow(ctx, query,
		product.ID, product.CategoryID, product.Name, product.Description,
		product.ImageURL, product.Price,
	).Scan(&product.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return pgx.ErrNoRows
		}
		return fmt.Errorf("update product: %w", err)
	}
	return nil
}

func (r *pgProductRepo) SetStatus(ctx context.Context, id uuid.UUID, status model.CatalogStatus) error {
	ct, err := r.pool.Exec(ctx,
		`UPDATE products SET status = $2, updated_at = NOW() WHERE id = $1`, id, status)
	if err != nil {
		return fmt.Errorf("set product status: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *pgProductRepo) SetStoreStatus(ctx context.Context, id uuid.UUID, status model.CatalogStatus) error {
	ct, err := r.pool.Exec(ctx,
		`UPDATE products SET store_status = $2, updated_at = NOW() WHERE id = $1`, id, status)
	if err != nil {
		return fmt.Errorf("set product store status: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// DetachCategory clears the category reference on every product still
// pointing at it; run after a category is soft-deleted.
func (r *pgProductRepo) DetachCategory(ctx context.Context, categoryID uuid.UUID) (int64, error) {
	ct, err := r.pool.Exec(ctx,
		`UPDATE products SET category_id = NULL, updated_at = NOW() WHERE category_id = $1`, categoryID)
	if err != nil {
		return 0, fmt.Errorf("detach category: %w", err)
	}
	return ct.RowsAffected(), nil
}
