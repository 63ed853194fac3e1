package domain

import (
	"fmt"

	"github.com/holiman/uint256"
	"github.com/shopspring/decimal"
)

// Decimals is the fixed-point precision shared by token units and the
// payment currency. All Amounts are integers scaled by 10^Decimals.
const Decimals = 18

// UnitScale is 10^Decimals, the number of base units in one whole unit.
var UnitScale = new(uint256.Int).Exp(uint256.NewInt(10), uint256.NewInt(Decimals))

// Units converts a whole-unit count to base units.
func Units(whole uint64) *uint256.Int {
	return new(uint256.Int).Mul(uint256.NewInt(whole), UnitScale)
}

// ParseAmount converts a human-readable decimal string ("0.01") into base
// units. Rejects negative values and values with more than Decimals
// fractional digits.
func ParseAmount(s string) (*uint256.Int, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil, fmt.Errorf("parse amount %q: %w", s, err)
	}
	if d.IsNegative() {
		return nil, fmt.Errorf("parse amount %q: negative", s)
	}
	shifted := d.Shift(Decimals)
	if !shifted.IsInteger() {
		return nil, fmt.Errorf("parse amount %q: more than %d decimal places", s, Decimals)
	}
	u, err := uint256.FromDecimal(shifted.String())
	if err != nil {
		return nil, fmt.Errorf("parse amount %q: %w", s, err)
	}
	return u, nil
}

// MustParseAmount is ParseAmount for compile-time constants. Panics on error.
func MustParseAmount(s string) *uint256.Int {
	u, err := ParseAmount(s)
	if err != nil {
		panic(err)
	}
	return u
}

// FormatAmount renders base units as a human-readable decimal string.
func FormatAmount(u *uint256.Int) string {
	if u == nil {
		return "0"
	}
	return decimal.NewFromBigInt(u.ToBig(), -Decimals).String()
}

// AmountFloat renders base units as an approximate float64, for
// metrics and reporting only. Never used in pricing arithmetic.
func AmountFloat(u *uint256.Int) float64 {
	if u == nil {
		return 0
	}
	return decimal.NewFromBigInt(u.ToBig(), -Decimals).InexactFloat64()
}

// IsWholeUnits reports whether u is an exact multiple of UnitScale.
func IsWholeUnits(u *uint256.Int) bool {
	return new(uint256.Int).Mod(u, UnitScale).IsZero()
}

// WholeUnits returns u expressed in whole units, truncating any fraction.
func WholeUnits(u *uint256.Int) *uint256.Int {
	return new(uint256.Int).Div(u, UnitScale)
}
