package analytics

import (
	"context"
	"errors"
	"testing"

	"github.com/ArjunMal1311/meme-coin/internal/domain"
	"github.com/ArjunMal1311/meme-coin/internal/storage/memory"
)

func insertPurchase(t *testing.T, store *memory.PurchaseEventStore, tokenID, buyer, amount, cost string, ts int64, closed bool) {
	t.Helper()

	err := store.Insert(context.Background(), &domain.PurchaseRecord{
		TokenID:   tokenID,
		Buyer:     buyer,
		Amount:    domain.MustParseAmount(amount),
		Cost:      domain.MustParseAmount(cost),
		NewSold:   domain.MustParseAmount(amount),
		NewRaised: domain.MustParseAmount(cost),
		Closed:    closed,
		Timestamp: ts,
	})
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}
}

func TestComputeSaleStats(t *testing.T) {
	store := memory.NewPurchaseEventStore()
	agg := NewAggregator(store)
	ctx := context.Background()

	insertPurchase(t, store, "tok", "alice", "100", "0.01", 1000, false)
	insertPurchase(t, store, "tok", "bob", "300", "0.03", 2000, false)
	insertPurchase(t, store, "tok", "alice", "200", "0.02", 3000, true)
	insertPurchase(t, store, "other", "carol", "999", "1", 500, false)

	stats, err := agg.ComputeSaleStats(ctx, "tok")
	if err != nil {
		t.Fatalf("ComputeSaleStats: %v", err)
	}

	if stats.Purchases != 3 {
		t.Fatalf("Purchases = %d, want 3", stats.Purchases)
	}
	if stats.UniqueBuyers != 2 {
		t.Fatalf("UniqueBuyers = %d, want 2", stats.UniqueBuyers)
	}
	if !stats.UnitsSold.Eq(domain.MustParseAmount("600")) {
		t.Fatalf("UnitsSold = %s, want 600", domain.FormatAmount(stats.UnitsSold))
	}
	if !stats.Raised.Eq(domain.MustParseAmount("0.06")) {
		t.Fatalf("Raised = %s, want 0.06", domain.FormatAmount(stats.Raised))
	}
	if !stats.AverageCost.Eq(domain.MustParseAmount("0.02")) {
		t.Fatalf("AverageCost = %s, want 0.02", domain.FormatAmount(stats.AverageCost))
	}
	if !stats.LargestBuy.Eq(domain.MustParseAmount("300")) {
		t.Fatalf("LargestBuy = %s, want 300", domain.FormatAmount(stats.LargestBuy))
	}
	if stats.FirstTimestamp != 1000 || stats.LastTimestamp != 3000 {
		t.Fatalf("timestamps = %d..%d, want 1000..3000", stats.FirstTimestamp, stats.LastTimestamp)
	}
	if !stats.Closed {
		t.Fatal("a record marking closure must surface in stats")
	}
}

func TestComputeSaleStatsEmpty(t *testing.T) {
	agg := NewAggregator(memory.NewPurchaseEventStore())

	_, err := agg.ComputeSaleStats(context.Background(), "tok")
	if !errors.Is(err, ErrNoPurchases) {
		t.Fatalf("err = %v, want ErrNoPurchases", err)
	}
}

func TestBuyerLeaderboard(t *testing.T) {
	store := memory.NewPurchaseEventStore()
	agg := NewAggregator(store)

	insertPurchase(t, store, "tok", "bob", "80", "0.01", 1000, false)
	insertPurchase(t, store, "tok", "alice", "150", "0.02", 2000, false)
	insertPurchase(t, store, "tok", "bob", "50", "0.01", 3000, false)
	insertPurchase(t, store, "tok", "carol", "150", "0.02", 4000, false)

	board, err := agg.BuyerLeaderboard(context.Background(), "tok")
	if err != nil {
		t.Fatalf("BuyerLeaderboard: %v", err)
	}

	if len(board) != 3 {
		t.Fatalf("rows = %d, want 3", len(board))
	}
	// alice and carol tie at 150; the tie breaks alphabetically.
	for i, buyer := range []string{"alice", "carol", "bob"} {
		if board[i].Buyer != buyer {
			t.Fatalf("row %d buyer = %s, want %s", i, board[i].Buyer, buyer)
		}
	}
	if !board[2].Units.Eq(domain.MustParseAmount("130")) {
		t.Fatalf("bob total = %s, want 130", domain.FormatAmount(board[2].Units))
	}
}
