package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mitea/boba-platform-api/internal/model"
	"github.com/mitea/boba-platform-api/internal/repository"
)

var (
	ErrCartItemNotFound   = errors.New("cart item not found")
	ErrGuestCartNotFound  = errors.New("guest cart not found")
	ErrProductUnavailable = errors.New("product is unavailable")
	ErrToppingUnavailable = errors.New("topping is unavailable")
)

type CartService struct {
	cartRepo    repository.CartRepository
	guestRepo   repository.GuestCartRepository
	productRepo repository.ProductRepository
	toppingRepo repository.ToppingRepository
}

func NewCartService(
	cartRepo repository.CartRepository,
	guestRepo repository.GuestCartRepository,
	productRepo repository.ProductRepository,
	toppingRepo repository.ToppingRepository,
) *CartService {
	return &CartService{cartRepo: cartRepo, guestRepo: guestRepo, productRepo: productRepo, toppingRepo: toppingRepo}
}

func (s *CartService) GetCart(ctx context.Context, userID uuid.UUID) (*model.Cart, error) {
	cart, err := s.cartRepo.GetOrCreateCart(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get or create cart: %w", err)
	}
	return s.cartRepo.GetCartWithItems(ctx, cart.ID)
}

// unitPrice is the product price plus topping surcharges; it is computed
// server-side so the stored line price cannot be forged by the client.
func (s *CartService) unitPrice(ctx context.Context, productID uuid.UUID, toppings []uuid.UUID) (decimal.Decimal, error) {
	product, err := s.productRepo.GetByID(ctx, productID)
	if err != nil {
		return decimal.Zero, fmt.Errorf("get product: %w", err)
	}
	if product == nil {
		return decimal.Zero, ErrProductNotFound
	}
	if product.Status != model.StatusAvailable || product.StoreStatus != model.StatusAvailable {
		return decimal.Zero, ErrProductUnavailable
	}

	price := product.Price
	for _, tid := range toppings {
		topping, err := s.toppingRepo.GetByID(ctx, tid)
		if err != nil {
			return decimal.Zero, fmt.Errorf("get topping: %w", err)
		}
		if topping == nil || topping.Status != model.StatusAvailable || topping.StoreStatus != model.StatusAvailable {
			return decimal.Zero, ErrToppingUnavailable
		}
		price = price.Add(topping.ExtraPrice)
	}
	return price, nil
}

func (s *CartService) AddItem(ctx context.Context, userID uuid.UUID, item model.CartItem) error {
	price, err := s.unitPrice(ctx, item.ProductID, item.Toppings)
	if err != nil {
		return err
	}

	cart, err := s.cartRepo.GetOrCreateCart(ctx, userID)
	if err != nil {
		return fmt.Errorf("get or create cart: %w", err)
	}

	item.CartID = cart.ID
	item.UnitPrice = price
	return s.cartRepo.AddItem(ctx, &item)
}

func (s *CartService) UpdateItem(ctx context.Context, userID, itemID uuid.UUID, quantity int) error {
	if err := s.ensureOwnership(ctx, userID, itemID); err != nil {
		return err
	}
	return s.cartRepo.UpdateItemQuantity(ctx, itemID, quantity)
}

func (s *CartService) DeleteItem(ctx context.Context, userID, itemID uuid.UUID) error {
	if err := s.ensureOwnership(ctx, userID, itemID); err != nil {
		return err
	}
	return s.cartRepo.DeleteItem(ctx, itemID)
}

func (s *CartService) ensureOwnership(ctx context.Context, userID, itemID uuid.UUID) error {
	cart, err := s.GetCart(ctx, userID)
	if err != nil {
		return err
	}
	for _, it := range cart.Items {
		if it.ID == itemID {
			return nil
		}
	}
	return ErrCartItemNotFound
}

func (s *CartService) ClearCart(ctx context.Context, userID uuid.UUID) error {
	cart, err := s.cartRepo.GetOrCreateCart(ctx, userID)
	if err != nil {
		return fmt.Errorf("get or create cart: %w", err)
	}
	return s.cartRepo.ClearCart(ctx, cart.ID)
}

// --- Guest cart ---

func (s *CartService) GetGuestCart(ctx context.Context, token string) ([]model.GuestCartItem, error) {
	return s.guestRepo.Get(ctx, token)
}

func (s *CartService) AddGuestItem(ctx context.Context, token string, item model.GuestCartItem) ([]model.GuestCartItem, error) {
	price, err := s.unitPrice(ctx, item.ProductID, item.Toppings)
	if err != nil {
		return nil, err
	}
	item.UnitPrice = price

	items, err := s.guestRepo.Get(ctx, token)
	if err != nil {
		return nil, err
	}

	merged := false
	for i := range items {
		if sameGuestSelection(items[i], item) {
			items[i].Quantity += item.Quantity
			merged = true
			break
		}
	}
	if !merged {
		items = append(items, item)
	}

	if err := s.guestRepo.Save(ctx, token, items); err != nil {
		return nil, err
	}
	return items, nil
}

func (s *CartService) DeleteGuestCart(ctx context.Context, token string) error {
	return s.guestRepo.Delete(ctx, token)
}

func sameGuestSelection(a, b model.GuestCartItem) bool {
	return a.ProductID == b.ProductID &&
		a.SizeOption == b.SizeOption &&
		a.SugarLevel == b.SugarLevel &&
		a.IceOption == b.IceOption
}

// MergeGuestCart folds the guest cart into the account cart at login. For
// each guest item, a backend line with the same (product, size, sugar, ice)
// has its quantity summed; unmatched guest items are appended. The guest
// copy is deleted only after every write lands, so a replayed login finds
// no guest cart and gets ErrGuestCartNotFound instead of double-counting.
// An expired token reports the same way.
func (s *CartService) MergeGuestCart(ctx context.Context, userID uuid.UUID, guestToken string) (*model.Cart, error) {
	guestItems, err := s.guestRepo.Get(ctx, guestToken)
	if err != nil {
		return nil, fmt.Errorf("get guest cart: %w", err)
	}
	if len(guestItems) == 0 {
		return nil, ErrGuestCartNotFound
	}

	cart, err := s.cartRepo.GetOrCreateCart(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get or create cart: %w", err)
	}

	cartWithItems, err := s.cartRepo.GetCartWithItems(ctx, cart.ID)
	if err != nil {
		return nil, fmt.Errorf("get cart items: %w", err)
	}

	for _, gi := range guestItems {
		var match *model.CartItem
		for i := range cartWithItems.Items {
			if cartWithItems.Items[i].SameSelection(gi) {
				match = &cartWithItems.Items[i]
				break
			}
		}
		if match != nil {
			if err := s.cartRepo.UpdateItemQuantity(ctx, match.ID, match.Quantity+gi.Quantity); err != nil {
				return nil, fmt.Errorf("merge guest item: %w", err)
			}
			match.Quantity += gi.Quantity
			continue
		}
		item := model.CartItem{
			CartID:     cart.ID,
			ProductID:  gi.ProductID,
			SizeOption: gi.SizeOption,
			SugarLevel: gi.SugarLevel,
			IceOption:  gi.IceOption,
			Toppings:   gi.Toppings,
			Quantity:   gi.Quantity,
			UnitPrice:  gi.UnitPrice,
		}
		if err := s.cartRepo.AddItem(ctx, &item); err != nil {
			return nil, fmt.Errorf("append guest item: %w", err)
		}
		cartWithItems.Items = append(cartWithItems.Items, item)
	}

	if err := s.guestRepo.Delete(ctx, guestToken); err != nil {
		return nil, fmt.Errorf("clear guest cart: %w", err)
	}

	return s.cartRepo.GetCartWithItems(ctx, cart.ID)
}
