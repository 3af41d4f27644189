package review

import (
	"time"

	"appraisal/internal/domain/scoring"
)

// ReviewRecord is one stage of an employee's annual review. Records are
// unique per (employee, year, stage) and each carries its own signature
// lifecycle.
type ReviewRecord struct {
	ID         string `json:"id"`
	EmployeeID string `json:"employeeId"`
	Year       int    `json:"year"`
	Stage      string `json:"stage"`
	Status     string `json:"status"`

	// Header data seeded from the prior year's review when present.
	ManagerID string `json:"managerId"`
	JobTitle  string `json:"jobTitle"`
	TOVLevel  string `json:"tovLevel"`

	What scoring.CompositeResult `json:"what"`
	How  scoring.CompositeResult `json:"how"`

	EmployeeSignedBy string     `json:"employeeSignedBy,omitempty"`
	EmployeeSignedAt *time.Time `json:"employeeSignedAt,omitempty"`
	ManagerSignedBy  string     `json:"managerSignedBy,omitempty"`
	ManagerSignedAt  *time.Time `json:"managerSignedAt,omitempty"`

	RejectionFeedback string `json:"rejectionFeedback,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type Goal struct {
	ID       string `json:"id"`
	ReviewID string `json:"reviewId"`
	Title    string `json:"title"`
	Kind     string `json:"kind"`
	Weight   int    `json:"weight"`
	Score    *int   `json:"score"`
}

type Competency struct {
	ID       string `json:"id"`
	ReviewID string `json:"reviewId"`
	Name     string `json:"name"`
	Score    *int   `json:"score"`
}

func goalsToRated(goals []Goal) []scoring.RatedItem {
	items := make([]scoring.RatedItem, 0, len(goals))
	for _, g := range goals {
		items = append(items, scoring.RatedItem{ID: g.ID, Kind: g.Kind, Weight: g.Weight, Score: g.Score})
	}
	return items
}

func competenciesToRated(competencies []Competency) []scoring.RatedItem {
	items := make([]scoring.RatedItem, 0, len(competencies))
	for _, c := range competencies {
		items = append(items, scoring.RatedItem{ID: c.ID, Score: c.Score})
	}
	return items
}
