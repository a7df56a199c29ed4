package repository

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mitea/boba-platform-api/internal/model"
)

func TestUserRepo_CreateAndGetByEmail(t *testing.T) {
	cleanupTable(t, "order_status_history", "order_items", "orders", "cart_items", "carts", "change_requests", "users")

	repo := NewUserRepository(testPool)
	ctx := context.Background()

	user := &model.User{
		Email: "test@example.com", Password: "hashed",
		Name: "Lan", Role: model.RoleUser, Status: model.UserStatusActive,
	}
	require.NoError(t, repo.Create(ctx, user))
	assert.NotEqual(t, uuid.Nil, user.ID)

	found, err := repo.GetByEmail(ctx, "test@example.com")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, user.ID, found.ID)
	assert.False(t, found.Verified)

	require.NoError(t, repo.SetVerified(ctx, user.ID))
	found, _ = repo.GetByID(ctx, user.ID)
	assert.True(t, found.Verified)
}

func TestProductRepo_CRUDAndStatusFlags(t *testing.T) {
	cleanupTable(t, "order_status_history", "order_items", "orders", "cart_items", "carts", "products", "categories")

	repo := NewProductRepository(testPool)
	ctx := context.Background()

	product := &model.Product{
		Name: "Trà sữa truyền thống", Description: "Vị cổ điển",
		Price:  decimal.NewFromInt(45000),
		Status: model.StatusAvailable, StoreStatus: model.StatusAvailable,
	}
	require.NoError(t, repo.Create(ctx, product))
	assert.NotEqual(t, uuid.Nil, product.ID)

	found, err := repo.GetByID(ctx, product.ID)
	require.NoError(t, err)
	assert.Equal(t, "Trà sữa truyền thống", found.Name)

	product.Name = "Trà sữa olong"
	require.NoError(t, repo.Update(ctx, product))

	found, _ = repo.GetByID(ctx, product.ID)
	assert.Equal(t, "Trà sữa olong", found.Name)

	// Updating a row that does not exist must not report success.
	ghost := &model.Product{ID: uuid.New(), Name: "x", Price: decimal.NewFromInt(1)}
	assert.ErrorIs(t, repo.Update(ctx, ghost), pgx.ErrNoRows)

	// The two availability flags are independent columns on the same row.
	require.NoError(t, repo.SetStatus(ctx, product.ID, model.StatusUnavailable))
	require.NoError(t, repo.SetStoreStatus(ctx, product.ID, model.StatusAvailable))
	found, _ = repo.GetByID(ctx, product.ID)
	assert.Equal(t, model.StatusUnavailable, found.Status)
	assert.Equal(t, model.StatusAvailable, found.StoreStatus)
}

func TestCartRepo_UpsertSameSelection(t *testing.T) {
	cleanupTable(t, "order_status_history", "order_items", "orders", "cart_items", "carts", "products", "users")

	userRepo := NewUserRepository(testPool)
	productRepo := NewProductRepository(testPool)
	cartRepo := NewCartRepository(testPool)
	ctx := context.Background()

	user := &model.User{Email: "cart@example.com", Password: "h", Role: model.RoleUser, Status: model.UserStatusActive}
	require.NoError(t, userRepo.Create(ctx, user))

	product := &model.Product{
		Name: "Trà đào", Price: decimal.NewFromInt(39000),
		Status: model.StatusAvailable, StoreStatus: model.StatusAvailable,
	}
	require.NoError(t, productRepo.Create(ctx, product))

	cart, err := cartRepo.GetOrCreateCart(ctx, user.ID)
	require.NoError(t, err)

	line := model.CartItem{
		CartID: cart.ID, ProductID: product.ID,
		SizeOption: "M", SugarLevel: 50, IceOption: 100,
		Quantity: 2, UnitPrice: decimal.NewFromInt(39000),
	}
	require.NoError(t, cartRepo.AddItem(ctx, &line))

	// Same drink configuration again: quantities sum into one row.
	again := line
	again.Quantity = 3
	require.NoError(t, cartRepo.AddItem(ctx, &again))

	cartWithItems, err := cartRepo.GetCartWithItems(ctx, cart.ID)
	require.NoError(t, err)
	require.Len(t, cartWithItems.Items, 1)
	assert.Equal(t, 5, cartWithItems.Items[0].Quantity)
}

func TestOrderRepo_StatusGuard(t *testing.T) {
	cleanupTable(t, "order_status_history", "order_items", "orders", "cart_items", "carts", "products", "users")

	userRepo := NewUserRepository(testPool)
	orderRepo := NewOrderRepository(testPool)
	ctx := context.Background()

	user := &model.User{Email: "order@example.com", Password: "h", Role: model.RoleUser, Status: model.UserStatusActive}
	require.NoError(t, userRepo.Create(ctx, user))

	order := &model.Order{
		UserID: user.ID, CustomerName: "Lan", CustomerPhone: "0912345678",
		ShippingAddress: "12 Nguyễn Huệ",
		Status:          model.OrderStatusFindingDriver,
		PaymentStatus:   model.PaymentStatusPending,
		TotalPrice:      decimal.NewFromInt(45000),
		Items: []model.OrderItem{
			{ProductID: uuid.New(), SizeOption: "M", Quantity: 1, Price: decimal.NewFromInt(45000)},
		},
	}
	require.NoError(t, orderRepo.Create(ctx, order))
	assert.NotEqual(t, uuid.Nil, order.ID)

	found, err := orderRepo.GetByID(ctx, order.ID)
	require.NoError(t, err)
	require.Len(t, found.Items, 1)

	require.NoError(t, orderRepo.UpdateStatus(ctx, order.ID, model.OrderStatusFindingDriver, model.OrderStatusPickingUp, "tài xế đã nhận"))

	// A stale "from" loses the race and touches nothing.
	err = orderRepo.UpdateStatus(ctx, order.ID, model.OrderStatusFindingDriver, model.OrderStatusCancelled, "")
	assert.Error(t, err)

	found, _ = orderRepo.GetByID(ctx, order.ID)
	assert.Equal(t, model.OrderStatusPickingUp, found.Status)

	history, err := orderRepo.StatusHistory(ctx, order.ID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "tài xế đã nhận", history[0].Note)
}

func TestRequestRepo_StatusGuard(t *testing.T) {
	cleanupTable(t, "change_requests", "users")

	userRepo := NewUserRepository(testPool)
	requestRepo := NewRequestRepository(testPool)
	ctx := context.Background()

	manager := &model.User{Email: "mgr@example.com", Password: "h", Role: model.RoleManager, Status: model.UserStatusActive}
	require.NoError(t, userRepo.Create(ctx, manager))

	req := &model.ChangeRequest{
		StoreID: uuid.New(), ManagerID: manager.ID,
		Entity: model.EntityTopping, Action: model.ActionCreate,
		Payload: map[string]any{"name": "Trân châu đen", "extraPrice": "7000"},
		Reason:  `Yêu cầu thêm topping "Trân châu đen" vào cửa hàng`,
		Status:  model.RequestStatusPending,
		Tags:    []string{"menu"},
	}
	require.NoError(t, requestRepo.Create(ctx, req))

	admin := uuid.New()
	require.NoError(t, requestRepo.SetStatus(ctx, req.ID, model.RequestStatusPending, model.RequestStatusApproved, "ok", &admin))

	// Terminal requests cannot transition again.
	err := requestRepo.SetStatus(ctx, req.ID, model.RequestStatusPending, model.RequestStatusCancelled, "", nil)
	assert.Error(t, err)

	found, err := requestRepo.GetByID(ctx, req.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RequestStatusApproved, found.Status)
	assert.Equal(t, "Trân châu đen", found.Payload["name"])
}
