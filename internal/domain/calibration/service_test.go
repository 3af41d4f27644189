package calibration

import (
	"context"
	"errors"
	"strconv"
	"testing"

	"github.com/shopspring/decimal"

	"appraisal/internal/domain/review"
	"appraisal/internal/domain/scoring"
)

type fakeStore struct {
	sessions    map[string]*Session
	adjustments []Adjustment
	nextID      int
}

func newFakeStore() *fakeStore {
	return &fakeStore{sessions: map[string]*Session{}}
}

func (f *fakeStore) id() string {
	f.nextID++
	return "cal-" + strconv.Itoa(f.nextID)
}

func (f *fakeStore) GetSession(_ context.Context, sessionID string) (Session, error) {
	session, ok := f.sessions[sessionID]
	if !ok {
		return Session{}, ErrSessionNotFound
	}
	return *session, nil
}

func (f *fakeStore) ListSessions(_ context.Context, year int) ([]Session, error) {
	var out []Session
	for _, session := range f.sessions {
		if year == 0 || session.Year == year {
			out = append(out, *session)
		}
	}
	return out, nil
}

func (f *fakeStore) CreateSession(_ context.Context, session Session) (string, error) {
	session.ID = f.id()
	f.sessions[session.ID] = &session
	return session.ID, nil
}

func (f *fakeStore) UpdateSessionStatus(_ context.Context, sessionID, expected, next string) error {
	session, ok := f.sessions[sessionID]
	if !ok || session.Status != expected {
		return ErrSessionNotActive
	}
	session.Status = next
	return nil
}

func (f *fakeStore) CreateAdjustment(_ context.Context, adj Adjustment) (string, error) {
	adj.ID = f.id()
	f.adjustments = append(f.adjustments, adj)
	return adj.ID, nil
}

func (f *fakeStore) ListAdjustments(_ context.Context, sessionID string) ([]Adjustment, error) {
	var out []Adjustment
	for _, adj := range f.adjustments {
		if adj.SessionID == sessionID {
			out = append(out, adj)
		}
	}
	return out, nil
}

func (f *fakeStore) ListAdjustmentsForReview(_ context.Context, reviewID string) ([]Adjustment, error) {
	var out []Adjustment
	for _, adj := range f.adjustments {
		if adj.ReviewID == reviewID {
			out = append(out, adj)
		}
	}
	return out, nil
}

type fakeReviews struct {
	records map[string]*review.ReviewRecord
}

func (f *fakeReviews) GetReview(_ context.Context, reviewID string) (review.ReviewRecord, error) {
	rec, ok := f.records[reviewID]
	if !ok {
		return review.ReviewRecord{}, review.ErrNotFound
	}
	return *rec, nil
}

func (f *fakeReviews) SaveComposite(_ context.Context, reviewID, field string, result scoring.CompositeResult) error {
	rec := f.records[reviewID]
	if field == review.FieldHow {
		rec.How = result
	} else {
		rec.What = result
	}
	return nil
}

func setup(t *testing.T, sessionStatus string) (*Service, *fakeStore, *fakeReviews, string) {
	t.Helper()
	store := newFakeStore()
	store.sessions["s-1"] = &Session{ID: "s-1", Name: "2026 end-year", Year: 2026, Status: sessionStatus}

	prior := decimal.RequireFromString("2.60")
	grid := 3
	reviews := &fakeReviews{records: map[string]*review.ReviewRecord{
		"r-1": {
			ID:     "r-1",
			Stage:  review.StageEndYear,
			Status: review.StatusSigned,
			What: scoring.CompositeResult{
				Value:        &prior,
				VetoReason:   scoring.VetoNone,
				GridPosition: &grid,
			},
		},
	}}
	return NewService(store, reviews), store, reviews, "s-1"
}

func TestApplyOverrideWritesLedgerAndComposite(t *testing.T) {
	svc, store, reviews, sessionID := setup(t, SessionInProgress)

	adj, err := svc.ApplyOverride(context.Background(), sessionID, "r-1", review.FieldWhat,
		decimal.RequireFromString("2.10"), "panel aligned with peer group", "hr-1")
	if err != nil {
		t.Fatal(err)
	}

	if adj.PriorValue == nil || adj.PriorValue.StringFixed(2) != "2.60" {
		t.Fatalf("prior value = %v", adj.PriorValue)
	}
	if adj.NewValue.StringFixed(2) != "2.10" {
		t.Fatalf("new value = %s", adj.NewValue)
	}
	if adj.NewGrid == nil || *adj.NewGrid != 2 {
		t.Fatalf("new grid = %v", adj.NewGrid)
	}
	if len(store.adjustments) != 1 {
		t.Fatalf("ledger rows = %d, want 1", len(store.adjustments))
	}

	rec := reviews.records["r-1"]
	if !rec.What.Calibrated {
		t.Fatal("composite must be flagged calibrated")
	}
	if rec.What.Value.StringFixed(2) != "2.10" {
		t.Fatalf("composite value = %s", rec.What.Value)
	}
	if rec.What.GridPosition == nil || *rec.What.GridPosition != 2 {
		t.Fatalf("composite grid = %v", rec.What.GridPosition)
	}
}

func TestApplyOverrideToFloorMarksManualVeto(t *testing.T) {
	svc, _, reviews, sessionID := setup(t, SessionInProgress)

	_, err := svc.ApplyOverride(context.Background(), sessionID, "r-1", review.FieldWhat,
		decimal.RequireFromString("1.00"), "serious conduct finding", "hr-1")
	if err != nil {
		t.Fatal(err)
	}

	rec := reviews.records["r-1"]
	if !rec.What.VetoActive || rec.What.VetoReason != scoring.VetoManualOverride {
		t.Fatalf("what = %+v", rec.What)
	}
}

func TestApplyOverrideRequiresActiveSession(t *testing.T) {
	svc, _, _, sessionID := setup(t, SessionCompleted)

	_, err := svc.ApplyOverride(context.Background(), sessionID, "r-1", review.FieldWhat,
		decimal.RequireFromString("2.00"), "late change", "hr-1")
	if !errors.Is(err, ErrSessionNotActive) {
		t.Fatalf("want ErrSessionNotActive, got %v", err)
	}
}

func TestApplyOverrideValidation(t *testing.T) {
	svc, _, _, sessionID := setup(t, SessionInProgress)

	_, err := svc.ApplyOverride(context.Background(), sessionID, "r-1", review.FieldWhat,
		decimal.RequireFromString("2.00"), "  ", "hr-1")
	if !errors.Is(err, ErrMissingRationale) {
		t.Fatalf("want ErrMissingRationale, got %v", err)
	}

	_, err = svc.ApplyOverride(context.Background(), sessionID, "r-1", review.FieldWhat,
		decimal.RequireFromString("3.01"), "too generous", "hr-1")
	if !errors.Is(err, ErrValueOutOfRange) {
		t.Fatalf("want ErrValueOutOfRange, got %v", err)
	}

	_, err = svc.ApplyOverride(context.Background(), sessionID, "r-1", "overall",
		decimal.RequireFromString("2.00"), "wrong axis", "hr-1")
	if !errors.Is(err, ErrUnknownField) {
		t.Fatalf("want ErrUnknownField, got %v", err)
	}
}

func TestSessionLifecycle(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store, &fakeReviews{records: map[string]*review.ReviewRecord{}})

	session, err := svc.CreateSession(context.Background(), "2026 calibration", 2026, "hr-1")
	if err != nil {
		t.Fatal(err)
	}
	if session.Status != SessionDraft {
		t.Fatalf("status = %s", session.Status)
	}

	if err := svc.StartSession(context.Background(), session.ID); err != nil {
		t.Fatal(err)
	}
	if err := svc.CompleteSession(context.Background(), session.ID); err != nil {
		t.Fatal(err)
	}

	// Completing twice means the expected status no longer matches.
	if err := svc.CompleteSession(context.Background(), session.ID); !errors.Is(err, ErrSessionNotActive) {
		t.Fatalf("want ErrSessionNotActive, got %v", err)
	}
}
