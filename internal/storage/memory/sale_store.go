package memory

import (
	"context"
	"sync"

	"github.com/ArjunMal1311/meme-coin/internal/domain"
	"github.com/ArjunMal1311/meme-coin/internal/storage"
)

// SaleStore is an in-memory implementation of storage.SaleStore.
// The insertion-order slice and the identity map are mutated under one
// lock so the two access paths can never diverge.
type SaleStore struct {
	mu    sync.RWMutex
	order []string                // token IDs in insertion order
	byID  map[string]*domain.Sale // keyed by token_id
}

// NewSaleStore creates a new in-memory sale store.
func NewSaleStore() *SaleStore {
	return &SaleStore{
		byID: make(map[string]*domain.Sale),
	}
}

// Insert registers a new sale. Returns ErrDuplicateKey if token_id exists.
func (s *SaleStore) Insert(_ context.Context, sale *domain.Sale) error {
	if sale == nil || sale.TokenID == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byID[sale.TokenID]; exists {
		return storage.ErrDuplicateKey
	}

	s.byID[sale.TokenID] = sale.Clone()
	s.order = append(s.order, sale.TokenID)
	return nil
}

// GetByID retrieves a sale by token identity. Returns ErrNotFound if not exists.
func (s *SaleStore) GetByID(_ context.Context, tokenID string) (*domain.Sale, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sale, exists := s.byID[tokenID]
	if !exists {
		return nil, storage.ErrNotFound
	}
	return sale.Clone(), nil
}

// GetByIndex retrieves a sale by insertion order, zero-based.
func (s *SaleStore) GetByIndex(_ context.Context, index int) (*domain.Sale, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if index < 0 || index >= len(s.order) {
		return nil, storage.ErrNotFound
	}
	return s.byID[s.order[index]].Clone(), nil
}

// Count returns the number of registered sales.
func (s *SaleStore) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.order), nil
}

// Update applies mutate to the sale as a single atomic step. The mutator
// runs on a copy; stored state is replaced only if mutate succeeds.
func (s *SaleStore) Update(_ context.Context, tokenID string, mutate func(*domain.Sale) error) error {
	if mutate == nil {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sale, exists := s.byID[tokenID]
	if !exists {
		return storage.ErrNotFound
	}

	next := sale.Clone()
	if err := mutate(next); err != nil {
		return err
	}

	s.byID[tokenID] = next
	return nil
}

var _ storage.SaleStore = (*SaleStore)(nil)
