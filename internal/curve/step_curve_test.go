package curve

import (
	"errors"
	"testing"

	"github.com/holiman/uint256"

	"github.com/ArjunMal1311/meme-coin/internal/domain"
)

func testCurve(t *testing.T) *StepCurve {
	t.Helper()
	return DefaultStepCurve(domain.Units(1_000_000))
}

func TestStepCurve_Price_SamplePoints(t *testing.T) {
	c := testCurve(t)

	tests := []struct {
		sold string
		want string
	}{
		{"0", "0.0001"},
		{"9999", "0.0001"},
		{"10000", "0.0002"},
		{"19999", "0.0002"},
		{"20000", "0.0003"},
		{"1000000", "0.0101"},
	}

	for _, tt := range tests {
		sold, err := domain.ParseAmount(tt.sold)
		if err != nil {
			t.Fatalf("parse sold: %v", err)
		}
		got, err := c.Price(sold)
		if err != nil {
			t.Fatalf("Price(%s) failed: %v", tt.sold, err)
		}
		if domain.FormatAmount(got) != tt.want {
			t.Errorf("Price(%s) = %s, want %s", tt.sold, domain.FormatAmount(got), tt.want)
		}
	}
}

func TestStepCurve_Price_NonDecreasing(t *testing.T) {
	c := testCurve(t)

	prev := uint256.NewInt(0)
	for units := uint64(0); units <= 100_000; units += 2_500 {
		price, err := c.Price(domain.Units(units))
		if err != nil {
			t.Fatalf("Price(%d) failed: %v", units, err)
		}
		if price.Lt(prev) {
			t.Fatalf("price decreased at sold=%d: %s < %s", units, price.Dec(), prev.Dec())
		}
		prev = price
	}
}

func TestStepCurve_Cost(t *testing.T) {
	c := testCurve(t)

	// 10,000 units at sold=0: 10000 * 0.0001 = 1.0
	cost, err := c.Cost(uint256.NewInt(0), domain.Units(10_000))
	if err != nil {
		t.Fatalf("Cost failed: %v", err)
	}
	if domain.FormatAmount(cost) != "1" {
		t.Errorf("Cost(0, 10000) = %s, want 1", domain.FormatAmount(cost))
	}

	// Same amount one step later costs twice as much.
	cost2, err := c.Cost(domain.Units(10_000), domain.Units(10_000))
	if err != nil {
		t.Fatalf("Cost failed: %v", err)
	}
	if domain.FormatAmount(cost2) != "2" {
		t.Errorf("Cost(10000, 10000) = %s, want 2", domain.FormatAmount(cost2))
	}
}

func TestStepCurve_Cost_StrictlyIncreasingInAmount(t *testing.T) {
	c := testCurve(t)
	sold := domain.Units(5_000)

	prev := uint256.NewInt(0)
	for units := uint64(1); units <= 10; units++ {
		cost, err := c.Cost(sold, domain.Units(units))
		if err != nil {
			t.Fatalf("Cost(%d) failed: %v", units, err)
		}
		if !cost.Gt(prev) {
			t.Fatalf("cost not strictly increasing at amount=%d: %s <= %s", units, cost.Dec(), prev.Dec())
		}
		prev = cost
	}
}

func TestStepCurve_Cost_InvalidAmounts(t *testing.T) {
	c := testCurve(t)
	sold := uint256.NewInt(0)

	if _, err := c.Cost(sold, uint256.NewInt(0)); !errors.Is(err, ErrZeroAmount) {
		t.Errorf("expected ErrZeroAmount, got %v", err)
	}
	if _, err := c.Cost(sold, uint256.NewInt(123)); !errors.Is(err, ErrFractionalAmount) {
		t.Errorf("expected ErrFractionalAmount, got %v", err)
	}
}

func TestStepCurve_OutOfDomain(t *testing.T) {
	c := testCurve(t)

	over := new(uint256.Int).Add(domain.Units(1_000_000), uint256.NewInt(1))
	if _, err := c.Price(over); !errors.Is(err, ErrOutOfDomain) {
		t.Errorf("expected ErrOutOfDomain, got %v", err)
	}
}

func TestStepCurve_OverflowGuard(t *testing.T) {
	huge := new(uint256.Int).Sub(new(uint256.Int), uint256.NewInt(1)) // 2^256 - 1
	c, err := NewStepCurve(uint256.NewInt(1), huge, uint256.NewInt(1), huge)
	if err != nil {
		t.Fatalf("NewStepCurve failed: %v", err)
	}

	if _, err := c.Price(uint256.NewInt(2)); !errors.Is(err, ErrOverflow) {
		t.Errorf("expected ErrOverflow, got %v", err)
	}
}

func TestNewStepCurve_Validation(t *testing.T) {
	one := uint256.NewInt(1)
	if _, err := NewStepCurve(uint256.NewInt(0), one, one, one); err == nil {
		t.Error("expected error for zero base price")
	}
	if _, err := NewStepCurve(one, one, uint256.NewInt(0), one); err == nil {
		t.Error("expected error for zero step size")
	}
}
