// Package curve implements the bonding-curve pricing engine: a pure,
// deterministic mapping from cumulative units sold to unit price, in
// 18-decimal fixed-point integer arithmetic.
package curve

import (
	"errors"

	"github.com/holiman/uint256"

	"github.com/ArjunMal1311/meme-coin/internal/domain"
)

// Pricing errors.
var (
	// ErrOverflow is returned when a price or cost computation would
	// exceed 256 bits. Guarded, never wrapped around.
	ErrOverflow = errors.New("arithmetic overflow")

	// ErrOutOfDomain is returned when sold exceeds the curve's domain.
	ErrOutOfDomain = errors.New("sold exceeds curve domain")

	// ErrZeroAmount is returned when a cost is requested for zero units.
	ErrZeroAmount = errors.New("amount must be positive")

	// ErrFractionalAmount is returned when a cost is requested for an
	// amount that is not a whole-unit multiple. Whole-unit purchases keep
	// cost = price * units exact, with no truncation drift.
	ErrFractionalAmount = errors.New("amount is not a whole-unit multiple")
)

// StepCurve prices units on a stepped linear curve:
//
//	price(sold) = basePrice + stepPrice * floor(sold / stepSize)
//
// price is non-decreasing in sold, and cost(sold, amount) =
// price(sold) * wholeUnits(amount) is strictly increasing in amount.
type StepCurve struct {
	basePrice *uint256.Int // currency base units per whole token at sold = 0
	stepPrice *uint256.Int // price increment per completed step
	stepSize  *uint256.Int // token base units per price step
	maxSold   *uint256.Int // domain upper bound for sold
}

// NewStepCurve builds a curve from fixed-point parameters. basePrice and
// stepSize must be positive so that cost stays strictly increasing.
func NewStepCurve(basePrice, stepPrice, stepSize, maxSold *uint256.Int) (*StepCurve, error) {
	if basePrice == nil || basePrice.IsZero() {
		return nil, errors.New("step curve: base price must be positive")
	}
	if stepPrice == nil {
		return nil, errors.New("step curve: step price is required")
	}
	if stepSize == nil || stepSize.IsZero() {
		return nil, errors.New("step curve: step size must be positive")
	}
	if maxSold == nil {
		return nil, errors.New("step curve: max sold is required")
	}
	return &StepCurve{
		basePrice: new(uint256.Int).Set(basePrice),
		stepPrice: new(uint256.Int).Set(stepPrice),
		stepSize:  new(uint256.Int).Set(stepSize),
		maxSold:   new(uint256.Int).Set(maxSold),
	}, nil
}

// DefaultStepCurve returns the launchpad default: 0.0001 at sold=0,
// +0.0001 per 10,000 whole tokens sold.
func DefaultStepCurve(maxSold *uint256.Int) *StepCurve {
	c, err := NewStepCurve(
		domain.MustParseAmount("0.0001"),
		domain.MustParseAmount("0.0001"),
		domain.Units(10_000),
		maxSold,
	)
	if err != nil {
		panic(err) // static parameters, cannot fail
	}
	return c
}

// Price returns the current unit price (currency base units per whole
// token) at the given cumulative sold.
func (c *StepCurve) Price(sold *uint256.Int) (*uint256.Int, error) {
	if sold == nil || sold.Gt(c.maxSold) {
		return nil, ErrOutOfDomain
	}

	steps := new(uint256.Int).Div(sold, c.stepSize)
	inc, overflow := new(uint256.Int).MulOverflow(steps, c.stepPrice)
	if overflow {
		return nil, ErrOverflow
	}
	price, overflow := new(uint256.Int).AddOverflow(c.basePrice, inc)
	if overflow {
		return nil, ErrOverflow
	}
	return price, nil
}

// Cost returns the total payment required to purchase amount base units
// at the given cumulative sold. The whole purchase is charged the price
// at entry; amount must be a positive whole-unit multiple.
func (c *StepCurve) Cost(sold, amount *uint256.Int) (*uint256.Int, error) {
	if amount == nil || amount.IsZero() {
		return nil, ErrZeroAmount
	}
	if !domain.IsWholeUnits(amount) {
		return nil, ErrFractionalAmount
	}

	price, err := c.Price(sold)
	if err != nil {
		return nil, err
	}

	cost, overflow := new(uint256.Int).MulOverflow(price, domain.WholeUnits(amount))
	if overflow {
		return nil, ErrOverflow
	}
	return cost, nil
}

// StepSize returns the token base units per price step.
func (c *StepCurve) StepSize() *uint256.Int {
	return new(uint256.Int).Set(c.stepSize)
}

// MaxSold returns the curve's domain upper bound.
func (c *StepCurve) MaxSold() *uint256.Int {
	return new(uint256.Int).Set(c.maxSold)
}
