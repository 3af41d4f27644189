package scoring

import "github.com/shopspring/decimal"

const (
	KindStandard = "standard"
	KindKAR      = "kar"
	KindSCF      = "scf"

	VetoNone           = "none"
	VetoSCF            = "scf"
	VetoKAR            = "kar"
	VetoCompetency     = "competency"
	VetoManualOverride = "manual_override"

	// CompetencyCount is the fixed cardinality of a competency set.
	CompetencyCount = 6

	MinScore = 1
	MaxScore = 3
)

// RatedItem is a single goal or competency carrying a 1-3 rating.
// Competency items have no kind and no weight.
type RatedItem struct {
	ID     string `json:"id"`
	Kind   string `json:"kind,omitempty"`
	Weight int    `json:"weight,omitempty"`
	Score  *int   `json:"score"`
}

// CompositeResult is the outcome of scoring one axis of a review.
// Value is nil while the underlying item set is incomplete.
type CompositeResult struct {
	Value        *decimal.Decimal `json:"value"`
	VetoActive   bool             `json:"vetoActive"`
	VetoReason   string           `json:"vetoReason"`
	VetoItemID   string           `json:"vetoItemId,omitempty"`
	GridPosition *int             `json:"gridPosition"`
	Calibrated   bool             `json:"calibrated,omitempty"`
}

// WeightSum returns the total goal weight of the set.
func WeightSum(items []RatedItem) int {
	sum := 0
	for _, item := range items {
		sum += item.Weight
	}
	return sum
}

// MissingScoreIDs lists the items that have no rating yet, in input order.
func MissingScoreIDs(items []RatedItem) []string {
	var out []string
	for _, item := range items {
		if item.Score == nil {
			out = append(out, item.ID)
		}
	}
	return out
}
