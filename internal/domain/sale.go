package domain

import "github.com/holiman/uint256"

// Sale represents the primary-sale state for one launched token.
// Corresponds to the sales table in PostgreSQL.
type Sale struct {
	TokenID   string       // PRIMARY KEY, deterministic base58 hash
	Name      string       // descriptive name, immutable
	Symbol    string       // ticker symbol, immutable
	Creator   string       // account that opened the sale, immutable
	Sold      *uint256.Int // cumulative base units sold, monotone non-decreasing
	Raised    *uint256.Int // cumulative payment accepted, excludes refunded excess
	IsOpen    bool         // flips to false exactly once, when Sold reaches the sale cap
	CreatedAt int64        // Unix timestamp in milliseconds
}

// Clone returns a deep copy so callers cannot mutate stored state.
func (s *Sale) Clone() *Sale {
	if s == nil {
		return nil
	}
	c := *s
	c.Sold = new(uint256.Int).Set(s.Sold)
	c.Raised = new(uint256.Int).Set(s.Raised)
	return &c
}
