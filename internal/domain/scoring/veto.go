package scoring

// Veto identifies the rule and item that forced a composite to the minimum.
type Veto struct {
	Reason string
	ItemID string
}

// A vetoRule inspects the scored items and returns the veto it triggers, or
// nil. Rules are evaluated in fixed priority order and the first match wins.
type vetoRule func(items []RatedItem) *Veto

// scfRule fires on any SCF goal rated 1. It has absolute priority.
func scfRule(items []RatedItem) *Veto {
	for _, item := range items {
		if item.Kind == KindSCF && item.Score != nil && *item.Score == MinScore {
			return &Veto{Reason: VetoSCF, ItemID: item.ID}
		}
	}
	return nil
}

// karRule pairs KAR goals rated 1 against KAR goals rated 3, one-to-one in
// input order. The first KAR=1 left without a compensating KAR=3 is blamed.
func karRule(items []RatedItem) *Veto {
	var uncompensated []RatedItem
	available := 0
	for _, item := range items {
		if item.Kind != KindKAR || item.Score == nil {
			continue
		}
		switch *item.Score {
		case MinScore:
			uncompensated = append(uncompensated, item)
		case MaxScore:
			available++
		}
	}
	if len(uncompensated) > available {
		return &Veto{Reason: VetoKAR, ItemID: uncompensated[available].ID}
	}
	return nil
}

// competencyRule fires on any competency rated 1.
func competencyRule(items []RatedItem) *Veto {
	for _, item := range items {
		if item.Score != nil && *item.Score == MinScore {
			return &Veto{Reason: VetoCompetency, ItemID: item.ID}
		}
	}
	return nil
}

var (
	goalVetoRules       = []vetoRule{scfRule, karRule}
	competencyVetoRules = []vetoRule{competencyRule}
)

func evaluateVeto(rules []vetoRule, items []RatedItem) *Veto {
	for _, rule := range rules {
		if veto := rule(items); veto != nil {
			return veto
		}
	}
	return nil
}
