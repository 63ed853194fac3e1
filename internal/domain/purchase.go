package domain

import "github.com/holiman/uint256"

// PurchaseRecord is one accepted purchase, persisted for analytics.
// Corresponds to purchase_events table in ClickHouse.
type PurchaseRecord struct {
	TokenID   string
	Buyer     string
	Amount    *uint256.Int // base units purchased
	Cost      *uint256.Int // payment accepted
	NewSold   *uint256.Int // cumulative sold after the purchase
	NewRaised *uint256.Int // cumulative raised after the purchase
	Closed    bool         // whether the purchase closed the sale
	Timestamp int64        // Unix timestamp in milliseconds
}

// Clone returns a deep copy of the record.
func (r *PurchaseRecord) Clone() *PurchaseRecord {
	if r == nil {
		return nil
	}
	c := *r
	c.Amount = new(uint256.Int).Set(r.Amount)
	c.Cost = new(uint256.Int).Set(r.Cost)
	c.NewSold = new(uint256.Int).Set(r.NewSold)
	c.NewRaised = new(uint256.Int).Set(r.NewRaised)
	return &c
}
