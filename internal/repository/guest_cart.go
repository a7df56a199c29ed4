package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mitea/boba-platform-api/internal/model"
)

// GuestCartRepository holds pre-login carts in Redis, keyed by the guest
// token the storefront issues. Entries expire on their own; a successful
// login-time merge deletes the entry explicitly.
type GuestCartRepository interface {
	Get(ctx context.Context, token string) ([]model.GuestCartItem, error)
	Save(ctx context.Context, token string, items []model.GuestCartItem) error
	Delete(ctx context.Context, token string) error
}

type redisGuestCartRepo struct {
	client *redis.Client
	ttl    time.Duration
}

func NewGuestCartRepository(client *redis.Client, ttl time.Duration) GuestCartRepository {
	return &redisGuestCartRepo{client: client, ttl: ttl}
}

func guestCartKey(token string) string { return "guest_cart:" + token }

func (r *redisGuestCartRepo) Get(ctx context.Context, token string) ([]model.GuestCartItem, error) {
	data, err := r.client.Get(ctx, guestCartKey(token)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("get guest cart: %w", err)
	}
	var items []model.GuestCartItem
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("decode guest cart: %w", err)
	}
	return items, nil
}

func (r *redisGuestCartRepo) Save(ctx context.Context, token string, items []model.GuestCartItem) error {
	data, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("encode guest cart: %w", err)
	}
	if err := r.client.Set(ctx, guestCartKey(token), data, r.ttl).Err(); err != nil {
		return fmt.Errorf("save guest cart: %w", err)
	}
	return nil
}

func (r *redisGuestCartRepo) Delete(ctx context.Context, token string) error {
	if err := r.client.Del(ctx, guestCartKey(token)).Err(); err != nil {
		return fmt.Errorf("delete guest cart: %w", err)
	}
	return nil
}
