// Package ledger defines the fungible token-ledger boundary the factory
// depends on: fixed-supply minting, transfer, and balance lookup. The
// factory never touches balances directly; ledger operations either
// apply fully or leave balances unchanged.
package ledger

import (
	"context"
	"errors"

	"github.com/holiman/uint256"
)

// Ledger errors.
var (
	// ErrTokenExists is returned when minting an already-minted token.
	ErrTokenExists = errors.New("token already minted")

	// ErrUnknownToken is returned for operations on an unminted token.
	ErrUnknownToken = errors.New("unknown token")

	// ErrInsufficientBalance is returned when a transfer exceeds the
	// sender's balance. Balances are left unchanged.
	ErrInsufficientBalance = errors.New("insufficient balance")

	// ErrInvalidInput is returned when input validation fails.
	ErrInvalidInput = errors.New("invalid input")
)

// Ledger is the per-token balance ledger the factory delivers units from.
type Ledger interface {
	// MintFixedSupply creates the token's ledger and mints the entire
	// fixed supply to initialHolder. Exactly once per token.
	MintFixedSupply(ctx context.Context, tokenID string, totalSupply *uint256.Int, initialHolder string) error

	// Transfer moves amount base units between holders. Fails cleanly,
	// leaving both balances unchanged, if from holds less than amount.
	Transfer(ctx context.Context, tokenID, from, to string, amount *uint256.Int) error

	// BalanceOf returns the holder's balance, zero if never credited.
	BalanceOf(ctx context.Context, tokenID, holder string) (*uint256.Int, error)

	// TotalSupply returns the token's fixed total supply.
	TotalSupply(ctx context.Context, tokenID string) (*uint256.Int, error)
}
