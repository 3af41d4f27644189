package scoring

import "fmt"

// InvalidRatingError reports a rating outside the 1-3 scale. Callers are
// expected to reject such input before it reaches the calculators, so this
// surfacing is a contract violation, not a user-facing validation message.
type InvalidRatingError struct {
	ItemID string
	Score  int
}

func (e *InvalidRatingError) Error() string {
	return fmt.Sprintf("item %s has invalid rating %d (allowed: 1-3)", e.ItemID, e.Score)
}
