package clickhouse

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ArjunMal1311/meme-coin/internal/domain"
)

func TestPurchaseEventStore_InsertAndGet(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewPurchaseEventStore(conn)
	ctx := context.Background()

	record := &domain.PurchaseRecord{
		TokenID:   "tok-1",
		Buyer:     "buyer-1",
		Amount:    domain.Units(10_000),
		Cost:      domain.MustParseAmount("1"),
		NewSold:   domain.Units(10_000),
		NewRaised: domain.MustParseAmount("1"),
		Closed:    false,
		Timestamp: 1704067200000,
	}

	err := store.Insert(ctx, record)
	require.NoError(t, err)

	got, err := store.GetByTokenID(ctx, "tok-1")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "tok-1", got[0].TokenID)
	assert.Equal(t, "buyer-1", got[0].Buyer)
	assert.True(t, got[0].Amount.Eq(record.Amount), "amount mismatch")
	assert.True(t, got[0].Cost.Eq(record.Cost), "cost mismatch")
	assert.False(t, got[0].Closed)
	assert.Equal(t, int64(1704067200000), got[0].Timestamp)
}

func TestPurchaseEventStore_Ordering(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewPurchaseEventStore(conn)
	ctx := context.Background()

	// Insert out of timestamp order.
	for _, ts := range []int64{3000, 1000, 2000} {
		record := &domain.PurchaseRecord{
			TokenID:   "tok-1",
			Buyer:     "buyer-1",
			Amount:    domain.Units(1),
			Cost:      domain.MustParseAmount("0.0001"),
			NewSold:   domain.Units(1),
			NewRaised: domain.MustParseAmount("0.0001"),
			Timestamp: ts,
		}
		require.NoError(t, store.Insert(ctx, record))
	}

	got, err := store.GetByTokenID(ctx, "tok-1")
	require.NoError(t, err)
	require.Len(t, got, 3)
	for i := 1; i < len(got); i++ {
		assert.LessOrEqual(t, got[i-1].Timestamp, got[i].Timestamp)
	}
}

func TestPurchaseEventStore_EmptyToken(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewPurchaseEventStore(conn)
	ctx := context.Background()

	got, err := store.GetByTokenID(ctx, "unknown")
	require.NoError(t, err)
	assert.Empty(t, got)
}
