package scoring

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestMapToGridPositionBoundaries(t *testing.T) {
	cases := []struct {
		value string
		want  int
	}{
		{"1.00", 1},
		{"1.66", 1},
		{"1.67", 2},
		{"2.33", 2},
		{"2.34", 3},
		{"3.00", 3},
	}

	for _, tc := range cases {
		value := decimal.RequireFromString(tc.value)
		got := MapToGridPosition(&value)
		if got == nil || *got != tc.want {
			t.Fatalf("value %s: expected position %d, got %v", tc.value, tc.want, got)
		}
	}
}

func TestMapToGridPositionNil(t *testing.T) {
	if got := MapToGridPosition(nil); got != nil {
		t.Fatalf("expected nil position for nil value, got %d", *got)
	}
}

func TestMapToGridPositionOutOfRange(t *testing.T) {
	zero := decimal.Zero
	if got := MapToGridPosition(&zero); got != nil {
		t.Fatalf("expected nil position for 0, got %d", *got)
	}
	high := decimal.RequireFromString("3.01")
	if got := MapToGridPosition(&high); got != nil {
		t.Fatalf("expected nil position for 3.01, got %d", *got)
	}
}

func TestCellTierTable(t *testing.T) {
	if tier := CellTier(1, 1); tier != TierLow {
		t.Fatalf("expected (1,1) low, got %s", tier)
	}
	if tier := CellTier(1, 2); tier != TierDeveloping {
		t.Fatalf("expected (1,2) developing, got %s", tier)
	}
	if tier := CellTier(2, 1); tier != TierDeveloping {
		t.Fatalf("expected (2,1) developing, got %s", tier)
	}
	if tier := CellTier(2, 2); tier != TierStrong {
		t.Fatalf("expected (2,2) strong, got %s", tier)
	}
	if tier := CellTier(3, 3); tier != TierTop {
		t.Fatalf("expected (3,3) top, got %s", tier)
	}
	if tier := CellTier(0, 4); tier != "" {
		t.Fatalf("expected empty tier for invalid cell, got %s", tier)
	}
}
