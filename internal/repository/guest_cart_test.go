package repository

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mitea/boba-platform-api/internal/model"
)

func newGuestCartRepo(t *testing.T) (GuestCartRepository, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return NewGuestCartRepository(client, time.Hour), mr
}

func TestGuestCartRepo_RoundTrip(t *testing.T) {
	repo, _ := newGuestCartRepo(t)
	ctx := context.Background()

	items := []model.GuestCartItem{
		{ProductID: uuid.New(), SizeOption: "M", SugarLevel: 50, IceOption: 100, Quantity: 2, UnitPrice: decimal.NewFromInt(45000)},
	}
	require.NoError(t, repo.Save(ctx, "tok-1", items))

	got, err := repo.Get(ctx, "tok-1")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, items[0].ProductID, got[0].ProductID)
	assert.True(t, got[0].UnitPrice.Equal(items[0].UnitPrice))
}

func TestGuestCartRepo_MissingTokenIsEmpty(t *testing.T) {
	repo, _ := newGuestCartRepo(t)

	got, err := repo.Get(context.Background(), "no-such-token")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestGuestCartRepo_Expiry(t *testing.T) {
	repo, mr := newGuestCartRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, "tok-1", []model.GuestCartItem{{ProductID: uuid.New(), Quantity: 1}}))

	mr.FastForward(2 * time.Hour)

	got, err := repo.Get(ctx, "tok-1")
	require.NoError(t, err)
	assert.Nil(t, got, "abandoned guest carts expire")
}

func TestGuestCartRepo_Delete(t *testing.T) {
	repo, _ := newGuestCartRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, "tok-1", []model.GuestCartItem{{ProductID: uuid.New(), Quantity: 1}}))
	require.NoError(t, repo.Delete(ctx, "tok-1"))

	got, err := repo.Get(ctx, "tok-1")
	require.NoError(t, err)
	assert.Nil(t, got)
}
