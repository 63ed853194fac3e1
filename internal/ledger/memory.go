package ledger

import (
	"context"
	"sync"

	"github.com/holiman/uint256"
)

// MemoryLedger is an in-memory implementation of Ledger.
type MemoryLedger struct {
	mu       sync.RWMutex
	balances map[string]map[string]*uint256.Int // tokenID -> holder -> balance
	supplies map[string]*uint256.Int            // tokenID -> fixed total supply
}

// NewMemoryLedger creates a new in-memory ledger.
func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{
		balances: make(map[string]map[string]*uint256.Int),
		supplies: make(map[string]*uint256.Int),
	}
}

// MintFixedSupply creates the token and credits the entire supply to
// initialHolder. Returns ErrTokenExists if the token was minted before.
func (l *MemoryLedger) MintFixedSupply(_ context.Context, tokenID string, totalSupply *uint256.Int, initialHolder string) error {
	if tokenID == "" || initialHolder == "" || totalSupply == nil || totalSupply.IsZero() {
		return ErrInvalidInput
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if _, exists := l.supplies[tokenID]; exists {
		return ErrTokenExists
	}

	l.supplies[tokenID] = new(uint256.Int).Set(totalSupply)
	l.balances[tokenID] = map[string]*uint256.Int{
		initialHolder: new(uint256.Int).Set(totalSupply),
	}
	return nil
}

// Transfer moves amount from one holder to another. All-or-nothing.
func (l *MemoryLedger) Transfer(_ context.Context, tokenID, from, to string, amount *uint256.Int) error {
	if tokenID == "" || from == "" || to == "" || amount == nil || amount.IsZero() {
		return ErrInvalidInput
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	holders, exists := l.balances[tokenID]
	if !exists {
		return ErrUnknownToken
	}

	fromBal := holders[from]
	if fromBal == nil || fromBal.Lt(amount) {
		return ErrInsufficientBalance
	}

	toBal := holders[to]
	if toBal == nil {
		toBal = new(uint256.Int)
		holders[to] = toBal
	}

	fromBal.Sub(fromBal, amount)
	toBal.Add(toBal, amount)
	return nil
}

// BalanceOf returns the holder's balance, zero if never credited.
func (l *MemoryLedger) BalanceOf(_ context.Context, tokenID, holder string) (*uint256.Int, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	holders, exists := l.balances[tokenID]
	if !exists {
		return nil, ErrUnknownToken
	}

	bal := holders[holder]
	if bal == nil {
		return new(uint256.Int), nil
	}
	return new(uint256.Int).Set(bal), nil
}

// TotalSupply returns the token's fixed total supply.
func (l *MemoryLedger) TotalSupply(_ context.Context, tokenID string) (*uint256.Int, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	supply, exists := l.supplies[tokenID]
	if !exists {
		return nil, ErrUnknownToken
	}
	return new(uint256.Int).Set(supply), nil
}

var _ Ledger = (*MemoryLedger)(nil)
