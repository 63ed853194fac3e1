// Package analytics computes per-token sale statistics from the
// recorded purchase history.
package analytics

import (
	"context"
	"errors"
	"sort"

	"github.com/holiman/uint256"

	"github.com/ArjunMal1311/meme-coin/internal/domain"
	"github.com/ArjunMal1311/meme-coin/internal/storage"
)

// ErrNoPurchases is returned when a token has no recorded purchases.
var ErrNoPurchases = errors.New("no purchases recorded for token")

// SaleStats summarizes the purchase history of one token sale.
type SaleStats struct {
	TokenID        string
	Purchases      int
	UniqueBuyers   int
	UnitsSold      *uint256.Int
	Raised         *uint256.Int
	AverageCost    *uint256.Int // raised / purchases, truncated
	LargestBuy     *uint256.Int // max single-purchase unit amount
	FirstTimestamp int64
	LastTimestamp  int64
	Closed         bool
}

// Aggregator computes sale statistics from a purchase event store.
type Aggregator struct {
	purchases storage.PurchaseEventStore
}

// NewAggregator creates an analytics aggregator over the given history.
func NewAggregator(purchases storage.PurchaseEventStore) *Aggregator {
	return &Aggregator{purchases: purchases}
}

// ComputeSaleStats loads a token's purchase history and reduces it to
// summary statistics. Returns ErrNoPurchases when the history is empty.
func (a *Aggregator) ComputeSaleStats(ctx context.Context, tokenID string) (*SaleStats, error) {
	records, err := a.purchases.GetByTokenID(ctx, tokenID)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, ErrNoPurchases
	}
	return computeFromRecords(tokenID, records), nil
}

// computeFromRecords reduces an ordered purchase history. Records are
// expected in timestamp order, as the stores return them.
func computeFromRecords(tokenID string, records []*domain.PurchaseRecord) *SaleStats {
	stats := &SaleStats{
		TokenID:        tokenID,
		Purchases:      len(records),
		UnitsSold:      new(uint256.Int),
		Raised:         new(uint256.Int),
		AverageCost:    new(uint256.Int),
		LargestBuy:     new(uint256.Int),
		FirstTimestamp: records[0].Timestamp,
		LastTimestamp:  records[len(records)-1].Timestamp,
	}

	buyers := make(map[string]struct{})
	for _, r := range records {
		buyers[r.Buyer] = struct{}{}
		stats.UnitsSold.Add(stats.UnitsSold, r.Amount)
		stats.Raised.Add(stats.Raised, r.Cost)
		if r.Amount.Gt(stats.LargestBuy) {
			stats.LargestBuy.Set(r.Amount)
		}
		if r.Closed {
			stats.Closed = true
		}
	}
	stats.UniqueBuyers = len(buyers)
	stats.AverageCost.Div(stats.Raised, uint256.NewInt(uint64(len(records))))

	return stats
}

// BuyerLeaderboard returns each buyer's cumulative units for a token,
// largest holders first. Ties break by buyer address for deterministic
// output.
func (a *Aggregator) BuyerLeaderboard(ctx context.Context, tokenID string) ([]BuyerTotal, error) {
	records, err := a.purchases.GetByTokenID(ctx, tokenID)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, ErrNoPurchases
	}

	totals := make(map[string]*uint256.Int)
	for _, r := range records {
		if t, ok := totals[r.Buyer]; ok {
			t.Add(t, r.Amount)
		} else {
			totals[r.Buyer] = new(uint256.Int).Set(r.Amount)
		}
	}

	board := make([]BuyerTotal, 0, len(totals))
	for buyer, units := range totals {
		board = append(board, BuyerTotal{Buyer: buyer, Units: units})
	}
	sort.Slice(board, func(i, j int) bool {
		if !board[i].Units.Eq(board[j].Units) {
			return board[i].Units.Gt(board[j].Units)
		}
		return board[i].Buyer < board[j].Buyer
	})
	return board, nil
}

// BuyerTotal is one leaderboard row.
type BuyerTotal struct {
	Buyer string
	Units *uint256.Int
}
