package domain

import "github.com/holiman/uint256"

// Event type constants.
const (
	EventTypeCreated   = "created"
	EventTypePurchased = "purchased"
)

// Event is implemented by all observable launchpad events.
type Event interface {
	EventType() string
}

// CreatedEvent is emitted after a sale is opened for a new token.
type CreatedEvent struct {
	TokenID   string
	Name      string
	Symbol    string
	Creator   string
	Timestamp int64 // Unix timestamp in milliseconds
}

// EventType implements Event.
func (e *CreatedEvent) EventType() string { return EventTypeCreated }

// PurchasedEvent is emitted after an accepted purchase, with the sale
// state as of the purchase commit.
type PurchasedEvent struct {
	TokenID   string
	Buyer     string
	Amount    *uint256.Int // base units purchased
	Cost      *uint256.Int // payment accepted (excludes refund)
	NewSold   *uint256.Int // cumulative sold after this purchase
	NewRaised *uint256.Int // cumulative raised after this purchase
	Closed    bool         // true if this purchase closed the sale
	Timestamp int64        // Unix timestamp in milliseconds
}

// EventType implements Event.
func (e *PurchasedEvent) EventType() string { return EventTypePurchased }
