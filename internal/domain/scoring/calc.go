package scoring

import "github.com/shopspring/decimal"

var (
	hundred   = decimal.NewFromInt(100)
	vetoFloor = decimal.NewFromInt(MinScore)
)

// ComputeGoalScore turns a set of rated goals into the WHAT-axis composite.
// An incomplete set (any goal without a rating) yields a nil Value but still
// reports veto flags from the scored subset so the UI can warn early.
func ComputeGoalScore(items []RatedItem) (CompositeResult, error) {
	if err := validateScores(items); err != nil {
		return CompositeResult{}, err
	}

	result := CompositeResult{VetoReason: VetoNone}
	if len(items) == 0 {
		zero := decimal.Zero
		result.Value = &zero
		result.GridPosition = MapToGridPosition(result.Value)
		return result, nil
	}

	if veto := evaluateVeto(goalVetoRules, items); veto != nil {
		result.VetoActive = true
		result.VetoReason = veto.Reason
		result.VetoItemID = veto.ItemID
	}

	if len(MissingScoreIDs(items)) > 0 {
		return result, nil
	}

	if result.VetoActive {
		floor := vetoFloor
		result.Value = &floor
	} else {
		weighted := decimal.Zero
		for _, item := range items {
			weighted = weighted.Add(decimal.NewFromInt(int64(*item.Score * item.Weight)))
		}
		value := weighted.Div(hundred).Round(2)
		result.Value = &value
	}
	result.GridPosition = MapToGridPosition(result.Value)
	return result, nil
}

// ComputeCompetencyScore turns the six rated competencies into the HOW-axis
// composite. Any competency rated 1 vetoes the whole axis.
func ComputeCompetencyScore(items []RatedItem) (CompositeResult, error) {
	if err := validateScores(items); err != nil {
		return CompositeResult{}, err
	}

	result := CompositeResult{VetoReason: VetoNone}
	if len(items) == 0 {
		zero := decimal.Zero
		result.Value = &zero
		result.GridPosition = MapToGridPosition(result.Value)
		return result, nil
	}

	if veto := evaluateVeto(competencyVetoRules, items); veto != nil {
		result.VetoActive = true
		result.VetoReason = veto.Reason
		result.VetoItemID = veto.ItemID
	}

	if len(MissingScoreIDs(items)) > 0 {
		return result, nil
	}

	if result.VetoActive {
		floor := vetoFloor
		result.Value = &floor
	} else {
		sum := decimal.Zero
		for _, item := range items {
			sum = sum.Add(decimal.NewFromInt(int64(*item.Score)))
		}
		value := sum.Div(decimal.NewFromInt(int64(len(items)))).Round(2)
		result.Value = &value
	}
	result.GridPosition = MapToGridPosition(result.Value)
	return result, nil
}

func validateScores(items []RatedItem) error {
	for _, item := range items {
		if item.Score == nil {
			continue
		}
		if *item.Score < MinScore || *item.Score > MaxScore {
			return &InvalidRatingError{ItemID: item.ID, Score: *item.Score}
		}
	}
	return nil
}
