package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mitea/boba-platform-api/internal/model"
)

type mockCartRepo struct {
	carts map[uuid.UUID]*model.Cart
	items map[uuid.UUID]*model.CartItem
}

func newMockCartRepo() *mockCartRepo {
	return &mockCartRepo{carts: make(map[uuid.UUID]*model.Cart), items: make(map[uuid.UUID]*model.CartItem)}
}

func (m *mockCartRepo) GetOrCreateCart(_ context.Context, userID uuid.UUID) (*model.Cart, error) {
	for _, c := range m.carts {
		if c.UserID == userID {
			return c, nil
		}
	}
	cart := &model.Cart{ID: uuid.New(), UserID: userID}
	m.carts[cart.ID] = cart
	return cart, nil
}

func (m *mockCartRepo) GetCartWithItems(_ context.Context, cartID uuid.UUID) (*model.Cart, error) {
	cart, ok := m.carts[cartID]
	if !ok {
		return nil, nil
	}
	cart.Items = nil
	for _, item := range m.items {
		if item.CartID == cartID {
			cart.Items = append(cart.Items, *item)
		}
	}
	return cart, nil
}

func (m *mockCartRepo) AddItem(_ context.Context, item *model.CartItem) error {
	item.ID = uuid.New()
	cp := *item
	m.items[item.ID] = &cp
	return nil
}

func (m *mockCartRepo) UpdateItemQuantity(_ context.Context, itemID uuid.UUID, quantity int) error {
	if existing, ok := m.items[itemID]; ok {
		existing.Quantity = quantity
	}
	return nil
}

func (m *mockCartRepo) DeleteItem(_ context.Context, itemID uuid.UUID) error {
	delete(m.items, itemID)
	return nil
}

func (m *mockCartRepo) ClearCart(_ context.Context, cartID uuid.UUID) error {
	for id, item := range m.items {
		if item.CartID == cartID {
			delete(m.items, id)
		}
	}
	return nil
}

type mockGuestCartRepo struct {
	carts map[string][]model.GuestCartItem
}

func newMockGuestCartRepo() *mockGuestCartRepo {
	return &mockGuestCartRepo{carts: make(map[string][]model.GuestCartItem)}
}

func (m *mockGuestCartRepo) Get(_ context.Context, token string) ([]model.GuestCartItem, error) {
	return m.carts[token], nil
}

func (m *mockGuestCartRepo) Save(_ context.Context, token string, items []model.GuestCartItem) error {
	m.carts[token] = items
	return nil
}

func (m *mockGuestCartRepo) Delete(_ context.Context, token string) error {
	delete(m.carts, token)
	return nil
}

func seedProduct(repo *mockProductRepo, price int64) uuid.UUID {
	p := &model.Product{
		ID: uuid.New(), Name: "Trà sữa truyền thống",
		Price:  decimal.NewFromInt(price),
		Status: model.StatusAvailable, StoreStatus: model.StatusAvailable,
	}
	repo.products[p.ID] = p
	return p.ID
}

func newTestCartService() (*CartService, *mockCartRepo, *mockGuestCartRepo, *mockProductRepo, *mockToppingRepo) {
	cartRepo := newMockCartRepo()
	guestRepo := newMockGuestCartRepo()
	productRepo := newMockProductRepo()
	toppingRepo := newMockToppingRepo()
	svc := NewCartService(cartRepo, guestRepo, productRepo, toppingRepo)
	return svc, cartRepo, guestRepo, productRepo, toppingRepo
}

func TestCartService_AddItem_PricesLine(t *testing.T) {
	svc, cartRepo, _, productRepo, toppingRepo := newTestCartService()
	pid := seedProduct(productRepo, 45000)
	tid := uuid.New()
	toppingRepo.toppings[tid] = &model.Topping{
		ID: tid, Name: "Trân châu đen", ExtraPrice: decimal.NewFromInt(7000),
		Status: model.StatusAvailable, StoreStatus: model.StatusAvailable,
	}

	err := svc.AddItem(context.Background(), uuid.New(), model.CartItem{
		ProductID: pid, SizeOption: "M", SugarLevel: 50, IceOption: 100,
		Toppings: []uuid.UUID{tid}, Quantity: 2,
	})
	require.NoError(t, err)

	require.Len(t, cartRepo.items, 1)
	for _, item := range cartRepo.items {
		assert.True(t, item.UnitPrice.Equal(decimal.NewFromInt(52000)), "unit price %s", item.UnitPrice)
	}
}

func TestCartService_AddItem_ProductNotFound(t *testing.T) {
	svc, _, _, _, _ := newTestCartService()
	err := svc.AddItem(context.Background(), uuid.New(), model.CartItem{ProductID: uuid.New(), Quantity: 1})
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestCartService_AddItem_ProductUnavailable(t *testing.T) {
	svc, _, _, productRepo, _ := newTestCartService()
	pid := seedProduct(productRepo, 45000)
	productRepo.products[pid].StoreStatus = model.StatusUnavailable

	err := svc.AddItem(context.Background(), uuid.New(), model.CartItem{ProductID: pid, Quantity: 1})
	assert.ErrorIs(t, err, ErrProductUnavailable)
}

func TestCartService_AddItem_ToppingUnavailable(t *testing.T) {
	svc, _, _, productRepo, toppingRepo := newTestCartService()
	pid := seedProduct(productRepo, 45000)
	tid := uuid.New()
	toppingRepo.toppings[tid] = &model.Topping{
		ID: tid, Status: model.StatusUnavailable, StoreStatus: model.StatusAvailable,
	}

	err := svc.AddItem(context.Background(), uuid.New(), model.CartItem{
		ProductID: pid, Toppings: []uuid.UUID{tid}, Quantity: 1,
	})
	assert.ErrorIs(t, err, ErrToppingUnavailable)
}

func TestCartService_UpdateItem_NotOwned(t *testing.T) {
	svc, cartRepo, _, _, _ := newTestCartService()

	// Item lives in another user's cart.
	otherCart, _ := cartRepo.GetOrCreateCart(context.Background(), uuid.New())
	item := &model.CartItem{ID: uuid.New(), CartID: otherCart.ID, Quantity: 1}
	cartRepo.items[item.ID] = item

	err := svc.UpdateItem(context.Background(), uuid.New(), item.ID, 5)
	assert.ErrorIs(t, err, ErrCartItemNotFound)
}

func TestCartService_AddGuestItem_MergesSameSelection(t *testing.T) {
	svc, _, guestRepo, productRepo, _ := newTestCartService()
	pid := seedProduct(productRepo, 45000)

	line := model.GuestCartItem{ProductID: pid, SizeOption: "L", SugarLevel: 70, IceOption: 50, Quantity: 1}
	_, err := svc.AddGuestItem(context.Background(), "tok-1", line)
	require.NoError(t, err)
	items, err := svc.AddGuestItem(context.Background(), "tok-1", line)
	require.NoError(t, err)

	require.Len(t, items, 1)
	assert.Equal(t, 2, items[0].Quantity)
	assert.Len(t, guestRepo.carts["tok-1"], 1)
}

func TestCartService_MergeGuestCart(t *testing.T) {
	svc, _, guestRepo, productRepo, _ := newTestCartService()
	pid := seedProduct(productRepo, 45000)
	otherPid := seedProduct(productRepo, 39000)
	userID := uuid.New()

	// Backend cart already holds 2 of the same drink configuration.
	require.NoError(t, svc.AddItem(context.Background(), userID, model.CartItem{
		ProductID: pid, SizeOption: "M", SugarLevel: 50, IceOption: 100, Quantity: 2,
	}))

	guestRepo.carts["tok-1"] = []model.GuestCartItem{
		{ProductID: pid, SizeOption: "M", SugarLevel: 50, IceOption: 100, Quantity: 3, UnitPrice: decimal.NewFromInt(45000)},
		{ProductID: otherPid, SizeOption: "S", SugarLevel: 0, IceOption: 0, Quantity: 1, UnitPrice: decimal.NewFromInt(39000)},
	}

	cart, err := svc.MergeGuestCart(context.Background(), userID, "tok-1")
	require.NoError(t, err)

	require.Len(t, cart.Items, 2)
	quantities := map[uuid.UUID]int{}
	for _, it := range cart.Items {
		quantities[it.ProductID] = it.Quantity
	}
	assert.Equal(t, 5, quantities[pid], "matched line sums quantities")
	assert.Equal(t, 1, quantities[otherPid], "unmatched line is appended")

	// Guest copy is gone: a replayed merge reports the missing cart and
	// never double-counts.
	assert.Empty(t, guestRepo.carts["tok-1"])
	_, err = svc.MergeGuestCart(context.Background(), userID, "tok-1")
	assert.ErrorIs(t, err, ErrGuestCartNotFound)

	cart, err = svc.GetCart(context.Background(), userID)
	require.NoError(t, err)
	require.Len(t, cart.Items, 2)
	for _, it := range cart.Items {
		if it.ProductID == pid {
			assert.Equal(t, 5, it.Quantity)
		}
	}
}

func TestCartService_MergeGuestCart_MissingToken(t *testing.T) {
	svc, _, _, productRepo, _ := newTestCartService()
	pid := seedProduct(productRepo, 45000)
	userID := uuid.New()

	require.NoError(t, svc.AddItem(context.Background(), userID, model.CartItem{
		ProductID: pid, SizeOption: "M", Quantity: 1,
	}))

	// Unknown or expired tokens surface as a client error; the account
	// cart is untouched.
	_, err := svc.MergeGuestCart(context.Background(), userID, "no-such-token")
	assert.ErrorIs(t, err, ErrGuestCartNotFound)

	cart, err := svc.GetCart(context.Background(), userID)
	require.NoError(t, err)
	assert.Len(t, cart.Items, 1)
}

func TestCartService_ClearCart(t *testing.T) {
	svc, cartRepo, _, productRepo, _ := newTestCartService()
	pid := seedProduct(productRepo, 45000)
	userID := uuid.New()

	require.NoError(t, svc.AddItem(context.Background(), userID, model.CartItem{ProductID: pid, Quantity: 1}))
	require.NoError(t, svc.ClearCart(context.Background(), userID))
	assert.Empty(t, cartRepo.items)
}
