package postgres

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ArjunMal1311/meme-coin/internal/domain"
	"github.com/ArjunMal1311/meme-coin/internal/storage"
)

func TestTreasuryStore_AccrueAndWithdraw(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewTreasuryStore(pool)
	ctx := context.Background()

	bal, err := store.Balance(ctx)
	require.NoError(t, err)
	assert.True(t, bal.IsZero(), "fresh treasury should be empty")

	fee := domain.MustParseAmount("0.01")
	for i := 0; i < 3; i++ {
		require.NoError(t, store.Accrue(ctx, fee))
	}

	bal, err = store.Balance(ctx)
	require.NoError(t, err)
	assert.Equal(t, "0.03", domain.FormatAmount(bal))

	require.NoError(t, store.Withdraw(ctx, domain.MustParseAmount("0.02")))

	bal, err = store.Balance(ctx)
	require.NoError(t, err)
	assert.Equal(t, "0.01", domain.FormatAmount(bal))
}

func TestTreasuryStore_WithdrawInsufficient(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewTreasuryStore(pool)
	ctx := context.Background()

	require.NoError(t, store.Accrue(ctx, domain.MustParseAmount("0.01")))

	err := store.Withdraw(ctx, domain.MustParseAmount("0.02"))
	assert.ErrorIs(t, err, storage.ErrInsufficientFunds)

	// Balance unchanged after the failed withdrawal.
	bal, err := store.Balance(ctx)
	require.NoError(t, err)
	assert.Equal(t, "0.01", domain.FormatAmount(bal))
}
