package postgres

import (
	"context"
	"fmt"

	"github.com/holiman/uint256"

	"github.com/ArjunMal1311/meme-coin/internal/storage"
)

// TreasuryStore implements storage.TreasuryStore using PostgreSQL.
// The balance lives in a single guarded row; withdrawal is a conditional
// UPDATE so the check and the debit are one statement.
type TreasuryStore struct {
	pool *Pool
}

// NewTreasuryStore creates a new TreasuryStore.
func NewTreasuryStore(pool *Pool) *TreasuryStore {
	return &TreasuryStore{pool: pool}
}

// Compile-time interface check.
var _ storage.TreasuryStore = (*TreasuryStore)(nil)

// Accrue adds amount to the fee balance.
func (s *TreasuryStore) Accrue(ctx context.Context, amount *uint256.Int) error {
	if amount == nil {
		return storage.ErrInvalidInput
	}

	_, err := s.pool.Exec(ctx, `
		UPDATE fee_treasury SET balance = balance + $1::numeric WHERE id = 1
	`, amount.Dec())
	if err != nil {
		return fmt.Errorf("accrue fees: %w", err)
	}
	return nil
}

// Withdraw subtracts amount from the fee balance. Returns
// ErrInsufficientFunds if amount exceeds the balance.
func (s *TreasuryStore) Withdraw(ctx context.Context, amount *uint256.Int) error {
	if amount == nil {
		return storage.ErrInvalidInput
	}

	tag, err := s.pool.Exec(ctx, `
		UPDATE fee_treasury SET balance = balance - $1::numeric
		WHERE id = 1 AND balance >= $1::numeric
	`, amount.Dec())
	if err != nil {
		return fmt.Errorf("withdraw fees: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrInsufficientFunds
	}
	return nil
}

// Balance returns the current fee balance.
func (s *TreasuryStore) Balance(ctx context.Context) (*uint256.Int, error) {
	var balance string
	err := s.pool.QueryRow(ctx, `SELECT balance::text FROM fee_treasury WHERE id = 1`).Scan(&balance)
	if err != nil {
		return nil, fmt.Errorf("get fee balance: %w", err)
	}
	return parseNumeric(balance)
}
