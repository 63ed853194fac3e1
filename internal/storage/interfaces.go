package storage

import (
	"context"

	"github.com/holiman/uint256"

	"github.com/ArjunMal1311/meme-coin/internal/domain"
)

// SaleStore provides access to sale registry storage. Implementations
// must keep the insertion-ordered index and the identity-keyed lookup
// consistent: both paths always observe the same record set.
type SaleStore interface {
	// Insert registers a new sale, appending to the enumeration order
	// and the identity index in one step. Returns ErrDuplicateKey if
	// token_id exists.
	Insert(ctx context.Context, s *domain.Sale) error

	// GetByID retrieves a sale by token identity. Returns ErrNotFound
	// if not exists.
	GetByID(ctx context.Context, tokenID string) (*domain.Sale, error)

	// GetByIndex retrieves a sale by insertion order, zero-based.
	// Returns ErrNotFound for out-of-range indexes.
	GetByIndex(ctx context.Context, index int) (*domain.Sale, error)

	// Count returns the number of registered sales.
	Count(ctx context.Context) (int, error)

	// Update applies mutate to the sale as a single atomic step; no
	// partial update is observable. A mutate error aborts the update
	// with stored state unchanged.
	Update(ctx context.Context, tokenID string, mutate func(*domain.Sale) error) error
}

// TreasuryStore tracks the running balance of collected creation fees.
type TreasuryStore interface {
	// Accrue adds amount to the fee balance.
	Accrue(ctx context.Context, amount *uint256.Int) error

	// Withdraw subtracts amount from the fee balance. Returns
	// ErrInsufficientFunds if amount exceeds the balance; the balance
	// is unchanged on failure.
	Withdraw(ctx context.Context, amount *uint256.Int) error

	// Balance returns the current fee balance.
	Balance(ctx context.Context) (*uint256.Int, error)
}

// PurchaseEventStore provides access to purchase_events storage,
// the append-only analytics history of accepted purchases.
type PurchaseEventStore interface {
	// Insert appends one purchase record.
	Insert(ctx context.Context, r *domain.PurchaseRecord) error

	// GetByTokenID retrieves all records for a token, ordered by
	// timestamp ASC.
	GetByTokenID(ctx context.Context, tokenID string) ([]*domain.PurchaseRecord, error)
}
