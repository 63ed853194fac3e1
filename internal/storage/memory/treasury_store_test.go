package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/ArjunMal1311/meme-coin/internal/domain"
	"github.com/ArjunMal1311/meme-coin/internal/storage"
)

func TestTreasuryStore_AccrueAndWithdraw(t *testing.T) {
	store := NewTreasuryStore()
	ctx := context.Background()

	fee := domain.MustParseAmount("0.01")
	for i := 0; i < 3; i++ {
		if err := store.Accrue(ctx, fee); err != nil {
			t.Fatalf("Accrue failed: %v", err)
		}
	}

	bal, err := store.Balance(ctx)
	if err != nil {
		t.Fatalf("Balance failed: %v", err)
	}
	if domain.FormatAmount(bal) != "0.03" {
		t.Errorf("balance = %s, want 0.03", domain.FormatAmount(bal))
	}

	if err := store.Withdraw(ctx, domain.MustParseAmount("0.02")); err != nil {
		t.Fatalf("Withdraw failed: %v", err)
	}

	bal, _ = store.Balance(ctx)
	if domain.FormatAmount(bal) != "0.01" {
		t.Errorf("balance after withdraw = %s, want 0.01", domain.FormatAmount(bal))
	}
}

func TestTreasuryStore_WithdrawInsufficient(t *testing.T) {
	store := NewTreasuryStore()
	ctx := context.Background()

	if err := store.Accrue(ctx, domain.MustParseAmount("0.01")); err != nil {
		t.Fatalf("Accrue failed: %v", err)
	}

	err := store.Withdraw(ctx, domain.MustParseAmount("0.02"))
	if !errors.Is(err, storage.ErrInsufficientFunds) {
		t.Fatalf("expected ErrInsufficientFunds, got %v", err)
	}

	// Balance unchanged after the failed withdrawal.
	bal, _ := store.Balance(ctx)
	if domain.FormatAmount(bal) != "0.01" {
		t.Errorf("balance changed after failed withdraw: %s", domain.FormatAmount(bal))
	}
}
