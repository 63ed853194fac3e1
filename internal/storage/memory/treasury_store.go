package memory

import (
	"context"
	"sync"

	"github.com/holiman/uint256"

	"github.com/ArjunMal1311/meme-coin/internal/storage"
)

// TreasuryStore is an in-memory implementation of storage.TreasuryStore.
type TreasuryStore struct {
	mu      sync.RWMutex
	balance *uint256.Int
}

// NewTreasuryStore creates a new in-memory treasury store with a zero balance.
func NewTreasuryStore() *TreasuryStore {
	return &TreasuryStore{balance: new(uint256.Int)}
}

// Accrue adds amount to the fee balance.
func (s *TreasuryStore) Accrue(_ context.Context, amount *uint256.Int) error {
	if amount == nil {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	next, overflow := new(uint256.Int).AddOverflow(s.balance, amount)
	if overflow {
		return storage.ErrInvalidInput
	}
	s.balance = next
	return nil
}

// Withdraw subtracts amount from the fee balance. The balance is
// unchanged if amount exceeds it.
func (s *TreasuryStore) Withdraw(_ context.Context, amount *uint256.Int) error {
	if amount == nil {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.balance.Lt(amount) {
		return storage.ErrInsufficientFunds
	}
	s.balance = new(uint256.Int).Sub(s.balance, amount)
	return nil
}

// Balance returns the current fee balance.
func (s *TreasuryStore) Balance(_ context.Context) (*uint256.Int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return new(uint256.Int).Set(s.balance), nil
}

var _ storage.TreasuryStore = (*TreasuryStore)(nil)
