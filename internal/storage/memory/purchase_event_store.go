package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/ArjunMal1311/meme-coin/internal/domain"
	"github.com/ArjunMal1311/meme-coin/internal/storage"
)

// PurchaseEventStore is an in-memory implementation of
// storage.PurchaseEventStore.
type PurchaseEventStore struct {
	mu      sync.RWMutex
	byToken map[string][]*domain.PurchaseRecord
}

// NewPurchaseEventStore creates a new in-memory purchase event store.
func NewPurchaseEventStore() *PurchaseEventStore {
	return &PurchaseEventStore{
		byToken: make(map[string][]*domain.PurchaseRecord),
	}
}

// Insert appends one purchase record.
func (s *PurchaseEventStore) Insert(_ context.Context, r *domain.PurchaseRecord) error {
	if r == nil || r.TokenID == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.byToken[r.TokenID] = append(s.byToken[r.TokenID], r.Clone())
	return nil
}

// GetByTokenID retrieves all records for a token, ordered by timestamp ASC.
func (s *PurchaseEventStore) GetByTokenID(_ context.Context, tokenID string) ([]*domain.PurchaseRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	records := s.byToken[tokenID]
	result := make([]*domain.PurchaseRecord, 0, len(records))
	for _, r := range records {
		result = append(result, r.Clone())
	}

	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Timestamp < result[j].Timestamp
	})

	return result, nil
}

var _ storage.PurchaseEventStore = (*PurchaseEventStore)(nil)
