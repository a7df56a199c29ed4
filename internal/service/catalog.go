package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/redis/go-redis/v9"

	"github.com/mitea/boba-platform-api/internal/dto"
	"github.com/mitea/boba-platform-api/internal/model"
	"github.com/mitea/boba-platform-api/internal/repository"
)

var (
	ErrProductNotFound  = errors.New("product not found")
	ErrCategoryNotFound = errors.New("category not found")
	ErrToppingNotFound  = errors.New("topping not found")
)

const productCacheTTL = 60 * time.Second

// CatalogService owns products, categories and toppings. Admin mutations
// flip the system-wide status; manager mutations flip the per-store status
// on the same rows.
type CatalogService struct {
	productRepo  repository.ProductRepository
	categoryRepo repository.CategoryRepository
	toppingRepo  repository.ToppingRepository
	redisClient  *redis.Client
}

func NewCatalogService(
	productRepo repository.ProductRepository,
	categoryRepo repository.CategoryRepository,
	toppingRepo repository.ToppingRepository,
	redisClient *redis.Client,
) *CatalogService {
	return &CatalogService{
		productRepo: productRepo, categoryRepo: categoryRepo,
		toppingRepo: toppingRepo, redisClient: redisClient,
	}
}

// --- Products ---

func (s *CatalogService) CreateProduct(ctx context.Context, req dto.CreateProductRequest) (*dto.ProductResponse, error) {
	if req.CategoryID != nil {
		category, err := s.categoryRepo.GetByID(ctx, *req.CategoryID)
		if err != nil {
			return nil, fmt.Errorf("get category: %w", err)
		}
		if category == nil {
			return nil, ErrCategoryNotFound
		}
	}

	product := &model.Product{
		CategoryID:  req.CategoryID,
		Name:        req.Name,
		Description: req.Description,
		ImageURL:    req.ImageURL,
		Price:       req.Price,
		Status:      model.StatusAvailable,
		StoreStatus: model.StatusAvailable,
	}
	if err := s.productRepo.Create(ctx, product); err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}
	resp := dto.ToProductResponse(product)
	return &resp, nil
}

func (s *CatalogService) GetProduct(ctx context.Context, id uuid.UUID) (*dto.ProductResponse, error) {
	cacheKey := "product:" + id.String()

	if s.redisClient != nil {
		if cached, err := s.redisClient.Get(ctx, cacheKey).Result(); err == nil {
			var resp dto.ProductResponse
			if json.Unmarshal([]byte(cached), &resp) == nil {
				return &resp, nil
			}
		}
	}

	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get product: %w", err)
	}
	if product == nil {
		return nil, ErrProductNotFound
	}

	resp := dto.ToProductResponse(product)
	if s.redisClient != nil {
		if data, err := json.Marshal(resp); err == nil {
			s.redisClient.Set(ctx, cacheKey, data, productCacheTTL)
		}
	}
	return &resp, nil
}

func (s *CatalogService) ListProducts(ctx context.Context, params dto.ListParams) ([]dto.ProductResponse, int, error) {
	products, total, err := s.productRepo.List(ctx, params.Limit, params.Offset(), params.Search, params.Status, params.Sort, params.Order)
	if err != nil {
		return nil, 0, fmt.Errorf("list products: %w", err)
	}
	items := make([]dto.ProductResponse, 0, len(products))
	for i := range products {
		items = append(items, dto.ToProductResponse(&products[i]))
	}
	return items, total, nil
}

func (s *CatalogService) UpdateProduct(ctx context.Context, id uuid.UUID, req dto.UpdateProductRequest) (*dto.ProductResponse, error) {
	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get product: %w", err)
	}
	if product == nil {
		return nil, ErrProductNotFound
	}

	if req.Name != nil {
		product.Name = *req.Name
	}
	if req.Description != nil {
		product.Description = *req.Description
	}
	if req.ImageURL != nil {
		product.ImageURL = *req.ImageURL
	}
	if req.Price != nil {
		product.Price = *req.Price
	}
	if req.CategoryID != nil {
		category, err := s.categoryRepo.GetByID(ctx, *req.CategoryID)
		if err != nil {
			return nil, fmt.Errorf("get category: %w", err)
		}
		if category == nil {
			return nil, ErrCategoryNotFound
		}
		product.CategoryID = req.CategoryID
	}

	if err := s.productRepo.Update(ctx, product); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("update product: %w", err)
	}
	s.invalidateProductCache(ctx, id)
	resp := dto.ToProductResponse(product)
	return &resp, nil
}

// SoftDeleteProduct flips the system status; the row survives so orders and
// pending requests keep a valid reference.
func (s *CatalogService) SoftDeleteProduct(ctx context.Context, id uuid.UUID) error {
	if err := s.productRepo.SetStatus(ctx, id, model.StatusUnavailable); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrProductNotFound
		}
		return fmt.Errorf("soft delete product: %w", err)
	}
	s.invalidateProductCache(ctx, id)
	return nil
}

func (s *CatalogService) SetProductStoreStatus(ctx context.Context, id uuid.UUID, status model.CatalogStatus) error {
	if err := s.productRepo.SetStoreStatus(ctx, id, status); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrProductNotFound
		}
		return fmt.Errorf("set product store status: %w", err)
	}
	s.invalidateProductCache(ctx, id)
	return nil
}

func (s *CatalogService) invalidateProductCache(ctx context.Context, id uuid.UUID) {
	if s.redisClient != nil {
		s.redisClient.Del(ctx, "product:"+id.String())
	}
}

// --- Categories ---

func (s *CatalogService) CreateCategory(ctx context.Context, req dto.CreateCategoryRequest) (*dto.CategoryResponse, error) {
	category := &model.Category{
		Name:        req.Name,
		Description: req.Description,
		Status:      model.StatusAvailable,
		StoreStatus: model.StatusAvailable,
	}
	if err := s.categoryRepo.Create(ctx, category); err != nil {
		return nil, fmt.Errorf("create category: %w", err)
	}
	resp := dto.ToCategoryResponse(category)
	return &resp, nil
}

func (s *CatalogService) ListCategories(ctx context.Context, params dto.ListParams) ([]dto.CategoryResponse, int, error) {
	categories, total, err := s.categoryRepo.List(ctx, params.Limit, params.Offset(), params.Search, params.Status)
	if err != nil {
		return nil, 0, fmt.Errorf("list categories: %w", err)
	}
	items := make([]dto.CategoryResponse, 0, len(categories))
	for i := range categories {
		items = append(items, dto.ToCategoryResponse(&categories[i]))
	}
	return items, total, nil
}

func (s *CatalogService) UpdateCategory(ctx context.Context, id uuid.UUID, req dto.UpdateCategoryRequest) (*dto.CategoryResponse, error) {
	category, err := s.categoryRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get category: %w", err)
	}
	if category == nil {
		return nil, ErrCategoryNotFound
	}

	if req.Name != nil {
		category.Name = *req.Name
	}
	if req.Description != nil {
		category.Description = *req.Description
	}
	if err := s.categoryRepo.Update(ctx, category); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCategoryNotFound
		}
		return nil, fmt.Errorf("update category: %w", err)
	}
	resp := dto.ToCategoryResponse(category)
	return &resp, nil
}

func (s *CatalogService) SoftDeleteCategory(ctx context.Context, id uuid.UUID) error {
	if err := s.categoryRepo.SetStatus(ctx, id, model.StatusUnavailable); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrCategoryNotFound
		}
		return fmt.Errorf("soft delete category: %w", err)
	}
	return nil
}

func (s *CatalogService) SetCategoryStoreStatus(ctx context.Context, id uuid.UUID, status model.CatalogStatus) error {
	if err := s.categoryRepo.SetStoreStatus(ctx, id, status); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrCategoryNotFound
		}
		return fmt.Errorf("set category store status: %w", err)
	}
	return nil
}

// SyncCategoriesWithProducts is the admin consistency pass run after
// category edits: products still referencing a soft-deleted category are
// detached from it. Returns the number of products touched.
func (s *CatalogService) SyncCategoriesWithProducts(ctx context.Context) (int64, error) {
	deleted, err := s.categoryRepo.ListSoftDeleted(ctx)
	if err != nil {
		return 0, fmt.Errorf("list soft-deleted categories: %w", err)
	}

	var touched int64
	for _, c := range deleted {
		n, err := s.productRepo.DetachCategory(ctx, c.ID)
		if err != nil {
			return touched, fmt.Errorf("detach category %s: %w", c.ID, err)
		}
		touched += n
	}
	return touched, nil
}

// --- Toppings ---

func (s *CatalogService) CreateTopping(ctx context.Context, req dto.CreateToppingRequest) (*dto.ToppingResponse, error) {
	topping := &model.Topping{
		Name:        req.Name,
		ExtraPrice:  req.ExtraPrice,
		Status:      model.StatusAvailable,
		StoreStatus: model.StatusAvailable,
	}
	if err := s.toppingRepo.Create(ctx, topping); err != nil {
		return nil, fmt.Errorf("create topping: %w", err)
	}
	resp := dto.ToToppingResponse(topping)
	return &resp, nil
}

func (s *CatalogService) ListToppings(ctx context.Context, params dto.ListParams) ([]dto.ToppingResponse, int, error) {
	toppings, total, err := s.toppingRepo.List(ctx, params.Limit, params.Offset(), params.Search, params.Status)
	if err != nil {
		return nil, 0, fmt.Errorf("list toppings: %w", err)
	}
	items := make([]dto.ToppingResponse, 0, len(toppings))
	for i := range toppings {
		items = append(items, dto.ToToppingResponse(&toppings[i]))
	}
	return items, total, nil
}

func (s *CatalogService) UpdateTopping(ctx context.Context, id uuid.UUID, req dto.UpdateToppingRequest) (*dto.ToppingResponse, error) {
	topping, err := s.toppingRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get topping: %w", err)
	}
	if topping == nil {
		return nil, ErrToppingNotFound
	}

	if req.Name != nil {
		topping.Name = *req.Name
	}
	if req.ExtraPrice != nil {
		topping.ExtraPrice = *req.ExtraPrice
	}
	if err := s.toppingRepo.Update(ctx, topping); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrToppingNotFound
		}
		return nil, fmt.Errorf("update topping: %w", err)
	}
	resp := dto.ToToppingResponse(topping)
	return &resp, nil
}

func (s *CatalogService) DeleteTopping(ctx context.Context, id uuid.UUID) error {
	if err := s.toppingRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrToppingNotFound
		}
		return fmt.Errorf("delete topping: %w", err)
	}
	return nil
}

func (s *CatalogService) SetToppingStoreStatus(ctx context.Context, id uuid.UUID, status model.CatalogStatus) error {
	if err := s.toppingRepo.SetStoreStatus(ctx, id, status); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrToppingNotFound
		}
		return fmt.Errorf("set topping store status: %w", err)
	}
	return nil
}
