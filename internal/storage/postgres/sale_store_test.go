package postgres

import (
	"context"
	"fmt"
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ArjunMal1311/meme-coin/internal/domain"
	"github.com/ArjunMal1311/meme-coin/internal/storage"
)

func testSale(tokenID string) *domain.Sale {
	return &domain.Sale{
		TokenID:   tokenID,
		Name:      "DAPP Token",
		Symbol:    "DAPP",
		Creator:   "creator-1",
		Sold:      new(uint256.Int),
		Raised:    new(uint256.Int),
		IsOpen:    true,
		CreatedAt: 1704067200000,
	}
}

func TestSaleStore_InsertAndGet(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewSaleStore(pool)
	ctx := context.Background()

	require.NoError(t, store.Insert(ctx, testSale("tok-1")))

	byID, err := store.GetByID(ctx, "tok-1")
	require.NoError(t, err)
	byIndex, err := store.GetByIndex(ctx, 0)
	require.NoError(t, err)

	// Both access paths observe the same record.
	assert.Equal(t, byID.TokenID, byIndex.TokenID)
	assert.Equal(t, "DAPP Token", byID.Name)
	assert.Equal(t, "DAPP", byID.Symbol)
	assert.True(t, byID.Sold.IsZero())
	assert.True(t, byID.Raised.IsZero())
	assert.True(t, byID.IsOpen)
}

func TestSaleStore_DuplicateKey(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewSaleStore(pool)
	ctx := context.Background()

	require.NoError(t, store.Insert(ctx, testSale("tok-1")))

	err := store.Insert(ctx, testSale("tok-1"))
	assert.ErrorIs(t, err, storage.ErrDuplicateKey)

	count, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestSaleStore_NotFound(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewSaleStore(pool)
	ctx := context.Background()

	_, err := store.GetByID(ctx, "nope")
	assert.ErrorIs(t, err, storage.ErrNotFound)

	_, err = store.GetByIndex(ctx, 0)
	assert.ErrorIs(t, err, storage.ErrNotFound)

	_, err = store.GetByIndex(ctx, -1)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestSaleStore_InsertionOrder(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewSaleStore(pool)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		require.NoError(t, store.Insert(ctx, testSale(fmt.Sprintf("tok-%d", i))))
	}

	count, err := store.Count(ctx)
	require.NoError(t, err)
	require.Equal(t, 5, count)

	for i := 0; i < 5; i++ {
		sale, err := store.GetByIndex(ctx, i)
		require.NoError(t, err)
		assert.Equal(t, fmt.Sprintf("tok-%d", i), sale.TokenID)
	}
}

func TestSaleStore_Update(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewSaleStore(pool)
	ctx := context.Background()

	require.NoError(t, store.Insert(ctx, testSale("tok-1")))

	amount := domain.Units(10_000)
	cost := domain.MustParseAmount("1")
	err := store.Update(ctx, "tok-1", func(s *domain.Sale) error {
		s.Sold.Add(s.Sold, amount)
		s.Raised.Add(s.Raised, cost)
		s.IsOpen = false
		return nil
	})
	require.NoError(t, err)

	got, err := store.GetByID(ctx, "tok-1")
	require.NoError(t, err)
	assert.True(t, got.Sold.Eq(amount), "sold = %s", got.Sold.Dec())
	assert.True(t, got.Raised.Eq(cost), "raised = %s", got.Raised.Dec())
	assert.False(t, got.IsOpen)
}

func TestSaleStore_UpdateAborted(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewSaleStore(pool)
	ctx := context.Background()

	require.NoError(t, store.Insert(ctx, testSale("tok-1")))

	boom := fmt.Errorf("mutator rejected")
	err := store.Update(ctx, "tok-1", func(s *domain.Sale) error {
		s.Sold.Add(s.Sold, domain.Units(1))
		return boom
	})
	assert.ErrorIs(t, err, boom)

	// No partial update is observable.
	got, err := store.GetByID(ctx, "tok-1")
	require.NoError(t, err)
	assert.True(t, got.Sold.IsZero())
	assert.True(t, got.IsOpen)
}

func TestSaleStore_UpdateUnknown(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewSaleStore(pool)
	ctx := context.Background()

	err := store.Update(ctx, "nope", func(s *domain.Sale) error { return nil })
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestSaleStore_LargeAmounts(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewSaleStore(pool)
	ctx := context.Background()

	// A full 1M-unit supply in 18-decimal base units survives the
	// NUMERIC round trip exactly.
	sale := testSale("tok-big")
	sale.Sold = domain.Units(1_000_000)
	sale.Raised = domain.MustParseAmount("123456789.123456789123456789")
	require.NoError(t, store.Insert(ctx, sale))

	got, err := store.GetByID(ctx, "tok-big")
	require.NoError(t, err)
	assert.True(t, got.Sold.Eq(sale.Sold), "sold = %s", got.Sold.Dec())
	assert.True(t, got.Raised.Eq(sale.Raised), "raised = %s", got.Raised.Dec())
}
