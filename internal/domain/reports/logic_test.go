package reports

import (
	"math"
	"testing"

	"github.com/shopspring/decimal"

	"appraisal/internal/domain/review"
	"appraisal/internal/domain/scoring"
)

func placed(what, how string, whatGrid, howGrid int) review.ReviewRecord {
	w := decimal.RequireFromString(what)
	h := decimal.RequireFromString(how)
	return review.ReviewRecord{
		What: scoring.CompositeResult{Value: &w, GridPosition: &whatGrid},
		How:  scoring.CompositeResult{Value: &h, GridPosition: &howGrid},
	}
}

func TestBuildDistributionCountsCellsAndTiers(t *testing.T) {
	recs := []review.ReviewRecord{
		placed("2.50", "2.00", 3, 2),
		placed("2.50", "2.60", 3, 3),
		placed("1.20", "1.00", 1, 1),
		placed("2.00", "2.10", 2, 2),
		{}, // unsigned record with no composites
	}

	dist := BuildDistribution(2026, recs)

	if dist.Total != 5 || dist.Placed != 4 {
		t.Fatalf("total/placed = %d/%d", dist.Total, dist.Placed)
	}
	if len(dist.Cells) != 9 {
		t.Fatalf("cells = %d, want 9", len(dist.Cells))
	}
	if dist.TierCounts[scoring.TierTop] != 1 {
		t.Fatalf("top tier = %d", dist.TierCounts[scoring.TierTop])
	}
	if dist.TierCounts[scoring.TierLow] != 1 {
		t.Fatalf("low tier = %d", dist.TierCounts[scoring.TierLow])
	}
	if dist.TierCounts[scoring.TierStrong] != 2 {
		t.Fatalf("strong tier = %d", dist.TierCounts[scoring.TierStrong])
	}

	for _, cell := range dist.Cells {
		if cell.What == 3 && cell.How == 2 && cell.Count != 1 {
			t.Fatalf("cell (3,2) = %d", cell.Count)
		}
	}
}

func TestBuildDistributionStats(t *testing.T) {
	recs := []review.ReviewRecord{
		placed("2.00", "2.00", 2, 2),
		placed("3.00", "2.00", 3, 2),
	}

	dist := BuildDistribution(2026, recs)

	if dist.What.Count != 2 {
		t.Fatalf("what count = %d", dist.What.Count)
	}
	if math.Abs(dist.What.Mean-2.5) > 1e-9 {
		t.Fatalf("what mean = %f", dist.What.Mean)
	}
	if math.Abs(dist.How.StdDev) > 1e-9 {
		t.Fatalf("how stddev = %f", dist.How.StdDev)
	}
}

func TestBuildDistributionEmpty(t *testing.T) {
	dist := BuildDistribution(2026, nil)
	if dist.Total != 0 || dist.Placed != 0 {
		t.Fatalf("empty distribution: %+v", dist)
	}
	if dist.What.Count != 0 || dist.What.Mean != 0 {
		t.Fatalf("what stats = %+v", dist.What)
	}
}
