package scoring

import (
	"errors"
	"testing"
)

func score(v int) *int {
	return &v
}

func TestComputeGoalScoreWeightedAverage(t *testing.T) {
	items := []RatedItem{
		{ID: "g1", Kind: KindStandard, Weight: 50, Score: score(3)},
		{ID: "g2", Kind: KindStandard, Weight: 50, Score: score(2)},
	}

	result, err := ComputeGoalScore(items)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Value == nil || result.Value.String() != "2.5" {
		t.Fatalf("expected value 2.50, got %v", result.Value)
	}
	if result.VetoActive {
		t.Fatal("expected no veto")
	}
	if result.GridPosition == nil || *result.GridPosition != 2 {
		t.Fatalf("expected grid position 2, got %v", result.GridPosition)
	}
}

func TestComputeGoalScoreOrderIndependent(t *testing.T) {
	a := []RatedItem{
		{ID: "g1", Kind: KindStandard, Weight: 30, Score: score(3)},
		{ID: "g2", Kind: KindStandard, Weight: 20, Score: score(1)},
		{ID: "g3", Kind: KindStandard, Weight: 50, Score: score(2)},
	}
	b := []RatedItem{a[2], a[0], a[1]}

	first, err := ComputeGoalScore(a)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := ComputeGoalScore(b)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first.Value == nil || second.Value == nil || !first.Value.Equal(*second.Value) {
		t.Fatalf("expected identical values, got %v and %v", first.Value, second.Value)
	}
}

func TestComputeGoalScoreUnevenWeights(t *testing.T) {
	// 3*33 + 2*33 + 1*34 = 199 -> 1.99.
	items := []RatedItem{
		{ID: "g1", Kind: KindStandard, Weight: 33, Score: score(3)},
		{ID: "g2", Kind: KindStandard, Weight: 33, Score: score(2)},
		{ID: "g3", Kind: KindStandard, Weight: 34, Score: score(1)},
	}
	result, err := ComputeGoalScore(items)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Value.String() != "1.99" {
		t.Fatalf("expected 1.99, got %s", result.Value.String())
	}
}

func TestComputeGoalScoreSCFVeto(t *testing.T) {
	items := []RatedItem{
		{ID: "g1", Kind: KindSCF, Weight: 50, Score: score(1)},
		{ID: "g2", Kind: KindStandard, Weight: 50, Score: score(3)},
	}

	result, err := ComputeGoalScore(items)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.VetoActive || result.VetoReason != VetoSCF {
		t.Fatalf("expected scf veto, got %+v", result)
	}
	if result.VetoItemID != "g1" {
		t.Fatalf("expected veto item g1, got %s", result.VetoItemID)
	}
	if result.Value == nil || result.Value.String() != "1" {
		t.Fatalf("expected value 1.00, got %v", result.Value)
	}
	if result.GridPosition == nil || *result.GridPosition != 1 {
		t.Fatalf("expected grid position 1, got %v", result.GridPosition)
	}
}

func TestComputeGoalScoreSCFBeatsKAR(t *testing.T) {
	items := []RatedItem{
		{ID: "g1", Kind: KindKAR, Weight: 50, Score: score(1)},
		{ID: "g2", Kind: KindSCF, Weight: 50, Score: score(1)},
	}

	result, err := ComputeGoalScore(items)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.VetoReason != VetoSCF {
		t.Fatalf("expected scf to win priority, got %s", result.VetoReason)
	}
	if result.VetoItemID != "g2" {
		t.Fatalf("expected veto item g2, got %s", result.VetoItemID)
	}
}

func TestComputeGoalScoreKARCompensation(t *testing.T) {
	// One KAR=1 and one KAR=3: fully compensated, no veto.
	compensated := []RatedItem{
		{ID: "g1", Kind: KindKAR, Weight: 50, Score: score(1)},
		{ID: "g2", Kind: KindKAR, Weight: 50, Score: score(3)},
	}
	result, err := ComputeGoalScore(compensated)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.VetoActive {
		t.Fatalf("expected compensated kar, got veto %s", result.VetoReason)
	}
	if result.Value.String() != "2" {
		t.Fatalf("expected value 2.00, got %s", result.Value.String())
	}

	// Two KAR=1 against one KAR=3: exactly one stays uncompensated and the
	// second low item in input order is blamed.
	uncompensated := []RatedItem{
		{ID: "g1", Kind: KindKAR, Weight: 25, Score: score(1)},
		{ID: "g2", Kind: KindKAR, Weight: 25, Score: score(1)},
		{ID: "g3", Kind: KindKAR, Weight: 50, Score: score(3)},
	}
	result, err = ComputeGoalScore(uncompensated)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.VetoActive || result.VetoReason != VetoKAR {
		t.Fatalf("expected kar veto, got %+v", result)
	}
	if result.VetoItemID != "g2" {
		t.Fatalf("expected blame on g2, got %s", result.VetoItemID)
	}
	if result.Value.String() != "1" {
		t.Fatalf("expected value 1.00, got %s", result.Value.String())
	}
}

func TestComputeGoalScoreIncompleteSet(t *testing.T) {
	items := []RatedItem{
		{ID: "g1", Kind: KindStandard, Weight: 50, Score: score(2)},
		{ID: "g2", Kind: KindSCF, Weight: 50},
	}

	result, err := ComputeGoalScore(items)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Value != nil {
		t.Fatalf("expected nil value for incomplete set, got %v", result.Value)
	}
	if result.GridPosition != nil {
		t.Fatal("expected nil grid position for incomplete set")
	}
}

func TestComputeGoalScoreIncompleteSetStillWarnsVeto(t *testing.T) {
	items := []RatedItem{
		{ID: "g1", Kind: KindSCF, Weight: 50, Score: score(1)},
		{ID: "g2", Kind: KindStandard, Weight: 50},
	}

	result, err := ComputeGoalScore(items)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Value != nil {
		t.Fatal("expected nil value for incomplete set")
	}
	if !result.VetoActive || result.VetoReason != VetoSCF {
		t.Fatalf("expected scf warning on scored subset, got %+v", result)
	}
}

func TestComputeGoalScoreEmptyInput(t *testing.T) {
	result, err := ComputeGoalScore(nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Value == nil || !result.Value.IsZero() {
		t.Fatalf("expected value 0 for empty input, got %v", result.Value)
	}
	if result.VetoActive {
		t.Fatal("expected no veto for empty input")
	}
}

func TestComputeGoalScoreInvalidRating(t *testing.T) {
	items := []RatedItem{
		{ID: "g1", Kind: KindStandard, Weight: 100, Score: score(4)},
	}

	_, err := ComputeGoalScore(items)
	var invalid *InvalidRatingError
	if !errors.As(err, &invalid) {
		t.Fatalf("expected InvalidRatingError, got %v", err)
	}
	if invalid.ItemID != "g1" || invalid.Score != 4 {
		t.Fatalf("expected offending item g1/4, got %s/%d", invalid.ItemID, invalid.Score)
	}
}

func TestComputeCompetencyScoreAverage(t *testing.T) {
	items := make([]RatedItem, 0, CompetencyCount)
	for i := 0; i < CompetencyCount; i++ {
		items = append(items, RatedItem{ID: "c" + string(rune('1'+i)), Score: score(2)})
	}
	items[5].Score = score(3)

	result, err := ComputeCompetencyScore(items)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// (2*5 + 3) / 6 = 2.1666... -> 2.17 half-up.
	if result.Value.String() != "2.17" {
		t.Fatalf("expected 2.17, got %s", result.Value.String())
	}
	if result.GridPosition == nil || *result.GridPosition != 2 {
		t.Fatalf("expected grid position 2, got %v", result.GridPosition)
	}
}

func TestComputeCompetencyScoreVeto(t *testing.T) {
	items := make([]RatedItem, 0, CompetencyCount)
	for i := 0; i < CompetencyCount; i++ {
		items = append(items, RatedItem{ID: "c" + string(rune('1'+i)), Score: score(2)})
	}
	items[3].Score = score(1)

	result, err := ComputeCompetencyScore(items)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.VetoActive || result.VetoReason != VetoCompetency {
		t.Fatalf("expected competency veto, got %+v", result)
	}
	if result.VetoItemID != "c4" {
		t.Fatalf("expected veto item c4, got %s", result.VetoItemID)
	}
	if result.Value.String() != "1" {
		t.Fatalf("expected value 1.00, got %s", result.Value.String())
	}
}

func TestComputeCompetencyScoreIncomplete(t *testing.T) {
	items := []RatedItem{
		{ID: "c1", Score: score(2)},
		{ID: "c2"},
	}

	result, err := ComputeCompetencyScore(items)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Value != nil {
		t.Fatal("expected nil value for incomplete competency set")
	}
	if got := MissingScoreIDs(items); len(got) != 1 || got[0] != "c2" {
		t.Fatalf("expected missing id c2, got %v", got)
	}
}

func TestWeightSum(t *testing.T) {
	items := []RatedItem{
		{ID: "g1", Weight: 30},
		{ID: "g2", Weight: 30},
		{ID: "g3", Weight: 30},
	}
	if sum := WeightSum(items); sum != 90 {
		t.Fatalf("expected weight sum 90, got %d", sum)
	}
}
