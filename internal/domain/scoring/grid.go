package scoring

import "github.com/shopspring/decimal"

// Tier names for the 3x3 grid cells.
const (
	TierLow        = "low"
	TierDeveloping = "developing"
	TierStrong     = "strong"
	TierTop        = "top"
)

var (
	gridMin    = decimal.NewFromInt(MinScore)
	gridMax    = decimal.NewFromInt(MaxScore)
	gridLowMax = decimal.RequireFromString("1.66")
	gridMidMax = decimal.RequireFromString("2.33")
)

// MapToGridPosition maps a 2-decimal composite value onto one of three
// ordinal positions. The intervals are closed: 1.66 still maps to 1 and
// 2.34 already maps to 3. Values outside [1.00, 3.00] (and nil) map to nil.
func MapToGridPosition(value *decimal.Decimal) *int {
	if value == nil {
		return nil
	}
	if value.LessThan(gridMin) || value.GreaterThan(gridMax) {
		return nil
	}
	pos := 3
	switch {
	case value.LessThanOrEqual(gridLowMax):
		pos = 1
	case value.LessThanOrEqual(gridMidMax):
		pos = 2
	}
	return &pos
}

var cellTiers = map[[2]int]string{
	{1, 1}: TierLow,
	{1, 2}: TierDeveloping,
	{2, 1}: TierDeveloping,
	{1, 3}: TierStrong,
	{2, 2}: TierStrong,
	{2, 3}: TierStrong,
	{3, 1}: TierStrong,
	{3, 2}: TierStrong,
	{3, 3}: TierTop,
}

// CellTier returns the tier for a (what, how) grid cell, or "" for invalid
// positions.
func CellTier(what, how int) string {
	return cellTiers[[2]int{what, how}]
}
