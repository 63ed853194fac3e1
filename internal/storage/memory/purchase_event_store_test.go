package memory

import (
	"context"
	"testing"

	"github.com/ArjunMal1311/meme-coin/internal/domain"
)

func newRecord(tokenID string, ts int64, units uint64) *domain.PurchaseRecord {
	return &domain.PurchaseRecord{
		TokenID:   tokenID,
		Buyer:     "buyer1",
		Amount:    domain.Units(units),
		Cost:      domain.MustParseAmount("0.1"),
		NewSold:   domain.Units(units),
		NewRaised: domain.MustParseAmount("0.1"),
		Timestamp: ts,
	}
}

func TestPurchaseEventStore_InsertAndGet(t *testing.T) {
	store := NewPurchaseEventStore()
	ctx := context.Background()

	// Insert out of timestamp order.
	for _, ts := range []int64{3000, 1000, 2000} {
		if err := store.Insert(ctx, newRecord("tok1", ts, 100)); err != nil {
			t.Fatalf("Insert failed: %v", err)
		}
	}
	if err := store.Insert(ctx, newRecord("tok2", 500, 50)); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	records, err := store.GetByTokenID(ctx, "tok1")
	if err != nil {
		t.Fatalf("GetByTokenID failed: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("got %d records, want 3", len(records))
	}
	for i := 1; i < len(records); i++ {
		if records[i].Timestamp < records[i-1].Timestamp {
			t.Errorf("records not ordered by timestamp: %d before %d", records[i-1].Timestamp, records[i].Timestamp)
		}
	}
}

func TestPurchaseEventStore_EmptyToken(t *testing.T) {
	store := NewPurchaseEventStore()
	ctx := context.Background()

	records, err := store.GetByTokenID(ctx, "unknown")
	if err != nil {
		t.Fatalf("GetByTokenID failed: %v", err)
	}
	if len(records) != 0 {
		t.Errorf("expected no records, got %d", len(records))
	}
}
