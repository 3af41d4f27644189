package reports

import (
	"github.com/montanaflynn/stats"

	"appraisal/internal/domain/review"
	"appraisal/internal/domain/scoring"
)

type GridCell struct {
	What  int    `json:"what"`
	How   int    `json:"how"`
	Tier  string `json:"tier"`
	Count int    `json:"count"`
}

type ScoreStats struct {
	Count  int     `json:"count"`
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	StdDev float64 `json:"stdDev"`
}

// Distribution summarizes a population of reviews over the 3x3 grid.
type Distribution struct {
	Year       int            `json:"year"`
	Total      int            `json:"total"`
	Placed     int            `json:"placed"`
	TierCounts map[string]int `json:"tierCounts"`
	Cells      []GridCell     `json:"cells"`
	What       ScoreStats     `json:"what"`
	How        ScoreStats     `json:"how"`
}

// BuildDistribution is pure so panel-facing numbers can be tested without a
// database. Reviews without both grid positions count toward Total but not
// Placed.
func BuildDistribution(year int, recs []review.ReviewRecord) Distribution {
	dist := Distribution{
		Year:       year,
		Total:      len(recs),
		TierCounts: map[string]int{},
	}

	cellCounts := map[[2]int]int{}
	var whatValues, howValues []float64

	for _, rec := range recs {
		if rec.What.Value != nil {
			whatValues = append(whatValues, rec.What.Value.InexactFloat64())
		}
		if rec.How.Value != nil {
			howValues = append(howValues, rec.How.Value.InexactFloat64())
		}
		if rec.What.GridPosition == nil || rec.How.GridPosition == nil {
			continue
		}
		dist.Placed++
		cellCounts[[2]int{*rec.What.GridPosition, *rec.How.GridPosition}]++
	}

	for what := 1; what <= 3; what++ {
		for how := 1; how <= 3; how++ {
			tier := scoring.CellTier(what, how)
			count := cellCounts[[2]int{what, how}]
			dist.Cells = append(dist.Cells, GridCell{What: what, How: how, Tier: tier, Count: count})
			dist.TierCounts[tier] += count
		}
	}

	dist.What = summarize(whatValues)
	dist.How = summarize(howValues)
	return dist
}

func summarize(values []float64) ScoreStats {
	if len(values) == 0 {
		return ScoreStats{}
	}
	mean, _ := stats.Mean(values)
	median, _ := stats.Median(values)
	stdDev, _ := stats.StandardDeviation(values)
	return ScoreStats{
		Count:  len(values),
		Mean:   mean,
		Median: median,
		StdDev: stdDev,
	}
}
