package calibration

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"

	"appraisal/internal/domain/review"
	"appraisal/internal/domain/scoring"
)

var (
	overrideMin = decimal.RequireFromString("1.00")
	overrideMax = decimal.RequireFromString("3.00")
)

// ReviewStore is the slice of the review store calibration needs.
type ReviewStore interface {
	GetReview(ctx context.Context, reviewID string) (review.ReviewRecord, error)
	SaveComposite(ctx context.Context, reviewID, field string, result scoring.CompositeResult) error
}

type Service struct {
	store   StoreAPI
	reviews ReviewStore
}

func NewService(store StoreAPI, reviews ReviewStore) *Service {
	return &Service{store: store, reviews: reviews}
}

func (s *Service) CreateSession(ctx context.Context, name string, year int, createdBy string) (Session, error) {
	session := Session{
		Name:      name,
		Year:      year,
		Status:    SessionDraft,
		CreatedBy: createdBy,
	}
	id, err := s.store.CreateSession(ctx, session)
	if err != nil {
		return Session{}, err
	}
	session.ID = id
	return session, nil
}

func (s *Service) GetSession(ctx context.Context, sessionID string) (Session, error) {
	return s.store.GetSession(ctx, sessionID)
}

func (s *Service) ListSessions(ctx context.Context, year int) ([]Session, error) {
	return s.store.ListSessions(ctx, year)
}

func (s *Service) StartSession(ctx context.Context, sessionID string) error {
	return s.store.UpdateSessionStatus(ctx, sessionID, SessionDraft, SessionInProgress)
}

func (s *Service) CompleteSession(ctx context.Context, sessionID string) error {
	return s.store.UpdateSessionStatus(ctx, sessionID, SessionInProgress, SessionCompleted)
}

func (s *Service) Adjustments(ctx context.Context, sessionID string) ([]Adjustment, error) {
	return s.store.ListAdjustments(ctx, sessionID)
}

func (s *Service) AdjustmentsForReview(ctx context.Context, reviewID string) ([]Adjustment, error) {
	return s.store.ListAdjustmentsForReview(ctx, reviewID)
}

// ApplyOverride replaces one composite with a calibrated value. The prior
// value is preserved as a ledger row before the review is updated, and the
// composite is flagged so later recomputes leave it alone.
func (s *Service) ApplyOverride(ctx context.Context, sessionID, reviewID, field string, value decimal.Decimal, rationale, actorID string) (Adjustment, error) {
	if strings.TrimSpace(rationale) == "" {
		return Adjustment{}, ErrMissingRationale
	}
	if field != review.FieldWhat && field != review.FieldHow {
		return Adjustment{}, ErrUnknownField
	}

	value = value.Round(2)
	if value.LessThan(overrideMin) || value.GreaterThan(overrideMax) {
		return Adjustment{}, ErrValueOutOfRange
	}

	session, err := s.store.GetSession(ctx, sessionID)
	if err != nil {
		return Adjustment{}, err
	}
	if session.Status != SessionInProgress {
		return Adjustment{}, ErrSessionNotActive
	}

	rec, err := s.reviews.GetReview(ctx, reviewID)
	if err != nil {
		return Adjustment{}, err
	}

	prior := rec.What
	if field == review.FieldHow {
		prior = rec.How
	}

	override := scoring.CompositeResult{
		Value:        &value,
		GridPosition: scoring.MapToGridPosition(&value),
		VetoReason:   scoring.VetoNone,
		Calibrated:   true,
	}
	// An override down to the floor keeps the veto semantics visible in the
	// record, attributed to the calibration decision rather than an item.
	if value.Equal(overrideMin) {
		override.VetoActive = true
		override.VetoReason = scoring.VetoManualOverride
	}

	adj := Adjustment{
		SessionID:  sessionID,
		ReviewID:   reviewID,
		Field:      field,
		PriorValue: prior.Value,
		PriorGrid:  prior.GridPosition,
		NewValue:   value,
		NewGrid:    override.GridPosition,
		Rationale:  rationale,
		AdjustedBy: actorID,
	}
	id, err := s.store.CreateAdjustment(ctx, adj)
	if err != nil {
		return Adjustment{}, err
	}
	adj.ID = id

	if err := s.reviews.SaveComposite(ctx, reviewID, field, override); err != nil {
		return Adjustment{}, err
	}
	return adj, nil
}
