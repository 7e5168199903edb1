package transactioncache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-petr/pet-account/internal/domain"
	"github.com/go-petr/pet-account/pkg/randompkg"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T, ttl time.Duration) (*Redis, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return New(client, ttl), mr
}

func randomTransaction() domain.Transaction {
	return domain.Transaction{
		ID:              randompkg.IntBetween(1, 1000),
		TransactionID:   domain.NewTransactionID(),
		AccountID:       randompkg.IntBetween(1, 1000),
		AccountNumber:   randompkg.AccountNumber(),
		Type:            domain.TransactionTypeUse,
		Result:          domain.TransactionResultSuccess,
		Amount:          randompkg.MoneyAmountBetween(10, 10_000),
		BalanceSnapshot: randompkg.MoneyAmountBetween(0, 10_000),
		TransactedAt:    time.Date(2024, time.May, 5, 10, 30, 0, 0, time.UTC),
	}
}

func TestSetGet(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	cache, mr := newTestCache(t, time.Hour)
	want := randomTransaction()

	_, ok, err := cache.Get(ctx, want.TransactionID)
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, cache.Set(ctx, want))
	require.Equal(t, time.Hour, mr.TTL(keyPrefix+want.TransactionID))

	got, ok, err := cache.Get(ctx, want.TransactionID)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, want, got)
}

func TestExpired(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	cache, mr := newTestCache(t, time.Minute)
	want := randomTransaction()

	require.NoError(t, cache.Set(ctx, want))

	mr.FastForward(2 * time.Minute)

	_, ok, err := cache.Get(ctx, want.TransactionID)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestCorruptEntry(t *testing.T) {
	t.Parallel()

	cache, mr := newTestCache(t, time.Hour)
	id := domain.NewTransactionID()

	require.NoError(t, mr.Set(keyPrefix+id, "not json"))

	_, ok, err := cache.Get(context.Background(), id)
	require.Error(t, err)
	require.False(t, ok)
}

func TestServerDown(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	cache, mr := newTestCache(t, time.Hour)
	mr.Close()

	_, ok, err := cache.Get(ctx, domain.NewTransactionID())
	require.Error(t, err)
	require.False(t, ok)

	require.Error(t, cache.Set(ctx, randomTransaction()))
}

func TestConnect(t *testing.T) {
	t.Parallel()

	mr := miniredis.RunT(t)

	addr := mr.Addr()

	client, err := Connect(context.Background(), addr)
	require.NoError(t, err)
	require.NoError(t, client.Close())

	mr.Close()

	_, err = Connect(context.Background(), addr)
	require.Error(t, err)
}

func TestNop(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	want := randomTransaction()

	var cache Nop

	require.NoError(t, cache.Set(ctx, want))

	_, ok, err := cache.Get(ctx, want.TransactionID)
	require.NoError(t, err)
	require.False(t, ok)
}
