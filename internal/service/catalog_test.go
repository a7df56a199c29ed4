package service

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mitea/boba-platform-api/internal/dto"
	"github.com/mitea/boba-platform-api/internal/model"
)

type mockProductRepo struct {
	products map[uuid.UUID]*model.Product
}

func newMockProductRepo() *mockProductRepo {
	return &mockProductRepo{products: make(map[uuid.UUID]*model.Product)}
}

func (m *mockProductRepo) Create(_ context.Context, product *model.Product) error {
	product.ID = uuid.New()
	m.products[product.ID] = product
	return nil
}

func (m *mockProductRepo) GetByID(_ context.Context, id uuid.UUID) (*model.Product, error) {
	return m.products[id], nil
}

func (m *mockProductRepo) List(_ context.Context, limit, offset int, search, status, sort, order string) ([]model.Product, int, error) {
	var out []model.Product
	for _, p := range m.products {
		if status != "" && string(p.Status) != status {
			continue
		}
		out = append(out, *p)
	}
	return out, len(out), nil
}

func (m *mockProductRepo) Update(_ context.Context, product *model.Product) error {
	if _, ok := m.products[product.ID]; !ok {
		return pgx.ErrNoRows
	}
	m.products[product.ID] = product
	return nil
}

func (m *mockProductRepo) SetStatus(_ context.Context, id uuid.UUID, status model.CatalogStatus) error {
	p, ok := m.products[id]
	if !ok {
		return pgx.ErrNoRows
	}
	p.Status = status
	return nil
}

func (m *mockProductRepo) SetStoreStatus(_ context.Context, id uuid.UUID, status model.CatalogStatus) error {
	p, ok := m.products[id]
	if !ok {
		return pgx.ErrNoRows
	}
	p.StoreStatus = status
	return nil
}

func (m *mockProductRepo) DetachCategory(_ context.Context, categoryID uuid.UUID) (int64, error) {
	var n int64
	for _, p := range m.products {
		if p.CategoryID != nil && *p.CategoryID == categoryID {
			p.CategoryID = nil
			n++
		}
	}
	return n, nil
}

type mockCategoryRepo struct {
	categories map[uuid.UUID]*model.Category
}

func newMockCategoryRepo() *mockCategoryRepo {
	return &mockCategoryRepo{categories: make(map[uuid.UUID]*model.Category)}
}

func (m *mockCategoryRepo) Create(_ context.Context, category *model.Category) error {
	category.ID = uuid.New()
	m.categories[category.ID] = category
	return nil
}

func (m *mockCategoryRepo) GetByID(_ context.Context, id uuid.UUID) (*model.Category, error) {
	return m.categories[id], nil
}

func (m *mockCategoryRepo) List(_ context.Context, limit, offset int, search, status string) ([]model.Category, int, error) {
	var out []model.Category
	for _, c := range m.categories {
		out = append(out, *c)
	}
	return out, len(out), nil
}

func (m *mockCategoryRepo) ListSoftDeleted(_ context.Context) ([]model.Category, error) {
	var out []model.Category
	for _, c := range m.categories {
		if c.Status == model.StatusUnavailable {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (m *mockCategoryRepo) Update(_ context.Context, category *model.Category) error {
	if _, ok := m.categories[category.ID]; !ok {
		return pgx.ErrNoRows
	}
	m.categories[category.ID] = category
	return nil
}

func (m *mockCategoryRepo) SetStatus(_ context.Context, id uuid.UUID, status model.CatalogStatus) error {
	c, ok := m.categories[id]
	if !ok {
		return pgx.ErrNoRows
	}
	c.Status = status
	return nil
}

func (m *mockCategoryRepo) SetStoreStatus(_ context.Context, id uuid.UUID, status model.CatalogStatus) error {
	c, ok := m.categories[id]
	if !ok {
		return pgx.ErrNoRows
	}
	c.StoreStatus = status
	return nil
}

type mockToppingRepo struct {
	toppings map[uuid.UUID]*model.Topping
}

func newMockToppingRepo() *mockToppingRepo {
	return &mockToppingRepo{toppings: make(map[uuid.UUID]*model.Topping)}
}

func (m *mockToppingRepo) Create(_ context.Context, topping *model.Topping) error {
	topping.ID = uuid.New()
	m.toppings[topping.ID] = topping
	return nil
}

func (m *mockToppingRepo) GetByID(_ context.Context, id uuid.UUID) (*model.Topping, error) {
	return m.toppings[id], nil
}

func (m *mockToppingRepo) List(_ context.Context, limit, offset int, search, status string) ([]model.Topping, int, error) {
	var out []model.Topping
	for _, tp := range m.toppings {
		out = append(out, *tp)
	}
	return out, len(out), nil
}

func (m *mockToppingRepo) Update(_ context.Context, topping *model.Topping) error {
	if _, ok := m.toppings[topping.ID]; !ok {
		return pgx.ErrNoRows
	}
	m.toppings[topping.ID] = topping
	return nil
}

func (m *mockToppingRepo) SetStoreStatus(_ context.Context, id uuid.UUID, status model.CatalogStatus) error {
	tp, ok := m.toppings[id]
	if !ok {
		return pgx.ErrNoRows
	}
	tp.StoreStatus = status
	return nil
}

func (m *mockToppingRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := m.toppings[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(m.toppings, id)
	return nil
}

func newTestCatalogService(t *testing.T) (*CatalogService, *mockProductRepo, *mockCategoryRepo, *mockToppingRepo, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	productRepo := newMockProductRepo()
	categoryRepo := newMockCategoryRepo()
	toppingRepo := newMockToppingRepo()
	svc := NewCatalogService(productRepo, categoryRepo, toppingRepo, client)
	return svc, productRepo, categoryRepo, toppingRepo, mr
}

func TestCatalogService_CreateProduct(t *testing.T) {
	svc, _, categoryRepo, _, _ := newTestCatalogService(t)

	category := &model.Category{Name: "Trà sữa"}
	require.NoError(t, categoryRepo.Create(context.Background(), category))

	resp, err := svc.CreateProduct(context.Background(), dto.CreateProductRequest{
		Name: "Trà sữa truyền thống", Price: decimal.NewFromInt(45000), CategoryID: &category.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, model.StatusAvailable, resp.Status)
	assert.Equal(t, model.StatusAvailable, resp.StoreStatus)
}

func TestCatalogService_CreateProduct_UnknownCategory(t *testing.T) {
	svc, _, _, _, _ := newTestCatalogService(t)
	missing := uuid.New()

	_, err := svc.CreateProduct(context.Background(), dto.CreateProductRequest{
		Name: "Trà đào", Price: decimal.NewFromInt(39000), CategoryID: &missing,
	})
	assert.ErrorIs(t, err, ErrCategoryNotFound)
}

func TestCatalogService_UpdateProduct_Partial(t *testing.T) {
	svc, productRepo, _, _, _ := newTestCatalogService(t)
	pid := seedProduct(productRepo, 45000)
	productRepo.products[pid].Description = "original description"

	newPrice := decimal.NewFromInt(49000)
	resp, err := svc.UpdateProduct(context.Background(), pid, dto.UpdateProductRequest{Price: &newPrice})
	require.NoError(t, err)

	assert.True(t, resp.Price.Equal(newPrice))
	assert.Equal(t, "Trà sữa truyền thống", resp.Name, "untouched fields survive")
	assert.Equal(t, "original description", resp.Description)
}

func TestCatalogService_SoftDeleteProduct(t *testing.T) {
	svc, productRepo, _, _, _ := newTestCatalogService(t)
	pid := seedProduct(productRepo, 45000)

	require.NoError(t, svc.SoftDeleteProduct(context.Background(), pid))

	// The row survives; only the system status flips.
	assert.Equal(t, model.StatusUnavailable, productRepo.products[pid].Status)
	assert.Equal(t, model.StatusAvailable, productRepo.products[pid].StoreStatus)
}

func TestCatalogService_SoftDeleteProduct_NotFound(t *testing.T) {
	svc, _, _, _, _ := newTestCatalogService(t)
	err := svc.SoftDeleteProduct(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestCatalogService_GetProduct_Caches(t *testing.T) {
	svc, productRepo, _, _, mr := newTestCatalogService(t)
	pid := seedProduct(productRepo, 45000)

	_, err := svc.GetProduct(context.Background(), pid)
	require.NoError(t, err)
	assert.True(t, mr.Exists("product:"+pid.String()))

	// A mutation drops the cached copy.
	newPrice := decimal.NewFromInt(50000)
	_, err = svc.UpdateProduct(context.Background(), pid, dto.UpdateProductRequest{Price: &newPrice})
	require.NoError(t, err)
	assert.False(t, mr.Exists("product:"+pid.String()))
}

func TestCatalogService_SyncCategoriesWithProducts(t *testing.T) {
	svc, productRepo, categoryRepo, _, _ := newTestCatalogService(t)

	category := &model.Category{Name: "Ngừng bán", Status: model.StatusUnavailable}
	require.NoError(t, categoryRepo.Create(context.Background(), category))

	pid := seedProduct(productRepo, 45000)
	productRepo.products[pid].CategoryID = &category.ID
	otherPid := seedProduct(productRepo, 39000)

	touched, err := svc.SyncCategoriesWithProducts(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int64(1), touched)
	assert.Nil(t, productRepo.products[pid].CategoryID)
	assert.Nil(t, productRepo.products[otherPid].CategoryID)
}

func TestCatalogService_DeleteTopping_NotFound(t *testing.T) {
	svc, _, _, _, _ := newTestCatalogService(t)
	err := svc.DeleteTopping(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrToppingNotFound)
}

func TestCatalogService_SetToppingStoreStatus(t *testing.T) {
	svc, _, _, toppingRepo, _ := newTestCatalogService(t)

	topping := &model.Topping{Name: "Thạch dừa", Status: model.StatusAvailable, StoreStatus: model.StatusAvailable}
	require.NoError(t, toppingRepo.Create(context.Background(), topping))

	require.NoError(t, svc.SetToppingStoreStatus(context.Background(), topping.ID, model.StatusUnavailable))
	assert.Equal(t, model.StatusUnavailable, toppingRepo.toppings[topping.ID].StoreStatus)
	assert.Equal(t, model.StatusAvailable, toppingRepo.toppings[topping.ID].Status, "admin flag untouched")
}
