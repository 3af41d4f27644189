package calibration

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	SessionDraft      = "draft"
	SessionInProgress = "in_progress"
	SessionCompleted  = "completed"
)

// Session is an HR calibration round for one review year. Overrides can
// only be applied while the session is in progress.
type Session struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Year      int       `json:"year"`
	Status    string    `json:"status"`
	CreatedBy string    `json:"createdBy"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Adjustment is one entry in the append-only calibration ledger. Rows are
// inserted and never updated or deleted; the latest row per (review, field)
// is the authoritative override.
type Adjustment struct {
	ID         string           `json:"id"`
	SessionID  string           `json:"sessionId"`
	ReviewID   string           `json:"reviewId"`
	Field      string           `json:"field"`
	PriorValue *decimal.Decimal `json:"priorValue"`
	PriorGrid  *int             `json:"priorGrid"`
	NewValue   decimal.Decimal  `json:"newValue"`
	NewGrid    *int             `json:"newGrid"`
	Rationale  string           `json:"rationale"`
	AdjustedBy string           `json:"adjustedBy"`
	CreatedAt  time.Time        `json:"createdAt"`
}

func ValidSessionStatus(status string) bool {
	switch status {
	case SessionDraft, SessionInProgress, SessionCompleted:
		return true
	}
	return false
}
