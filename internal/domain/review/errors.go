package review

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNotFound         = errors.New("review not found")
	ErrStaleState       = errors.New("review status changed concurrently")
	ErrMissingRationale = errors.New("rationale is required")
	ErrStageLocked      = errors.New("review is not editable in its current status")
)

// InvalidTransitionError reports an event that is not legal from the current
// status, so callers can tell a shape failure from a guard failure.
type InvalidTransitionError struct {
	Stage string
	From  string
	Event string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("cannot %s a %s review in status %s", e.Event, e.Stage, e.From)
}

// InvalidWeightError reports a goal set whose weights do not sum to 100.
type InvalidWeightError struct {
	Sum int
}

func (e *InvalidWeightError) Error() string {
	return fmt.Sprintf("goal weights must sum to 100, got %d", e.Sum)
}

// IncompleteScoringError reports the axis and items blocking a submit.
type IncompleteScoringError struct {
	Field          string
	MissingItemIDs []string
}

func (e *IncompleteScoringError) Error() string {
	return fmt.Sprintf("%s axis incomplete, unscored items: %s", e.Field, strings.Join(e.MissingItemIDs, ", "))
}
