package review

import (
	"context"
	"errors"
	"strconv"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"appraisal/internal/domain/scoring"
)

// fakeStore is an in-memory StoreAPI for service tests. staleStatus, when
// set, is the status reads report while UpdateStatus keeps checking the real
// one, modelling a concurrent transition that landed between read and write.
type fakeStore struct {
	reviews      map[string]*ReviewRecord
	goals        map[string][]Goal
	competencies map[string][]Competency
	nextID       int

	staleStatus  string
	signatureErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		reviews:      map[string]*ReviewRecord{},
		goals:        map[string][]Goal{},
		competencies: map[string][]Competency{},
	}
}

func (f *fakeStore) id() string {
	f.nextID++
	return "id-" + strconv.Itoa(f.nextID)
}

func (f *fakeStore) GetReview(_ context.Context, reviewID string) (ReviewRecord, error) {
	rec, ok := f.reviews[reviewID]
	if !ok {
		return ReviewRecord{}, ErrNotFound
	}
	out := *rec
	if f.staleStatus != "" {
		out.Status = f.staleStatus
	}
	return out, nil
}

func (f *fakeStore) GetReviewByKey(_ context.Context, employeeID string, year int, stage string) (ReviewRecord, error) {
	for _, rec := range f.reviews {
		if rec.EmployeeID == employeeID && rec.Year == year && rec.Stage == stage {
			return *rec, nil
		}
	}
	return ReviewRecord{}, ErrNotFound
}

func (f *fakeStore) ListReviews(_ context.Context, employeeID, _ string, year int) ([]ReviewRecord, error) {
	var out []ReviewRecord
	for _, rec := range f.reviews {
		if employeeID != "" && rec.EmployeeID != employeeID {
			continue
		}
		if year > 0 && rec.Year != year {
			continue
		}
		out = append(out, *rec)
	}
	return out, nil
}

func (f *fakeStore) CreateReview(_ context.Context, rec ReviewRecord) (string, error) {
	rec.ID = f.id()
	f.reviews[rec.ID] = &rec
	return rec.ID, nil
}

func (f *fakeStore) ResetReview(_ context.Context, reviewID string) error {
	rec := f.reviews[reviewID]
	rec.Status = StatusDraft
	rec.EmployeeSignedBy, rec.EmployeeSignedAt = "", nil
	rec.ManagerSignedBy, rec.ManagerSignedAt = "", nil
	rec.RejectionFeedback = ""
	rec.What = scoring.CompositeResult{VetoReason: scoring.VetoNone}
	rec.How = scoring.CompositeResult{VetoReason: scoring.VetoNone}
	goals := f.goals[reviewID]
	for i := range goals {
		goals[i].Score = nil
	}
	competencies := f.competencies[reviewID]
	for i := range competencies {
		competencies[i].Score = nil
	}
	return nil
}

func (f *fakeStore) UpdateStatus(_ context.Context, reviewID, expected, next string) error {
	rec, ok := f.reviews[reviewID]
	if !ok || rec.Status != expected {
		return ErrStaleState
	}
	rec.Status = next
	return nil
}

func (f *fakeStore) SetSignature(_ context.Context, reviewID, party, actorID string, at time.Time) error {
	if f.signatureErr != nil {
		return f.signatureErr
	}
	rec := f.reviews[reviewID]
	if party == PartyManager {
		rec.ManagerSignedBy, rec.ManagerSignedAt = actorID, &at
	} else {
		rec.EmployeeSignedBy, rec.EmployeeSignedAt = actorID, &at
	}
	return nil
}

func (f *fakeStore) ClearSignature(_ context.Context, reviewID, party string) error {
	rec := f.reviews[reviewID]
	if party == PartyManager {
		rec.ManagerSignedBy, rec.ManagerSignedAt = "", nil
	} else {
		rec.EmployeeSignedBy, rec.EmployeeSignedAt = "", nil
	}
	return nil
}

func (f *fakeStore) SetRejectionFeedback(_ context.Context, reviewID, feedback string) error {
	f.reviews[reviewID].RejectionFeedback = feedback
	return nil
}

func (f *fakeStore) ListGoals(_ context.Context, reviewID string) ([]Goal, error) {
	return append([]Goal(nil), f.goals[reviewID]...), nil
}

func (f *fakeStore) CreateGoal(_ context.Context, reviewID, title, kind string, weight int) (string, error) {
	g := Goal{ID: f.id(), ReviewID: reviewID, Title: title, Kind: kind, Weight: weight}
	f.goals[reviewID] = append(f.goals[reviewID], g)
	return g.ID, nil
}

func (f *fakeStore) UpdateGoal(_ context.Context, reviewID, goalID, title, kind string, weight int) error {
	for i, g := range f.goals[reviewID] {
		if g.ID == goalID {
			f.goals[reviewID][i].Title = title
			f.goals[reviewID][i].Kind = kind
			f.goals[reviewID][i].Weight = weight
		}
	}
	return nil
}

func (f *fakeStore) DeleteGoal(_ context.Context, reviewID, goalID string) error {
	goals := f.goals[reviewID][:0]
	for _, g := range f.goals[reviewID] {
		if g.ID != goalID {
			goals = append(goals, g)
		}
	}
	f.goals[reviewID] = goals
	return nil
}

func (f *fakeStore) SetGoalScore(_ context.Context, reviewID, goalID string, score int) error {
	for i, g := range f.goals[reviewID] {
		if g.ID == goalID {
			s := score
			f.goals[reviewID][i].Score = &s
		}
	}
	return nil
}

func (f *fakeStore) CopyGoals(_ context.Context, fromReviewID, toReviewID string) error {
	for _, g := range f.goals[fromReviewID] {
		copied := Goal{ID: f.id(), ReviewID: toReviewID, Title: g.Title, Kind: g.Kind, Weight: g.Weight}
		f.goals[toReviewID] = append(f.goals[toReviewID], copied)
	}
	return nil
}

func (f *fakeStore) ListCompetencies(_ context.Context, reviewID string) ([]Competency, error) {
	return append([]Competency(nil), f.competencies[reviewID]...), nil
}

func (f *fakeStore) SetCompetencyScore(_ context.Context, reviewID, competencyID string, score int) error {
	for i, c := range f.competencies[reviewID] {
		if c.ID == competencyID {
			s := score
			f.competencies[reviewID][i].Score = &s
		}
	}
	return nil
}

func (f *fakeStore) SeedCompetencies(_ context.Context, reviewID string) error {
	if len(f.competencies[reviewID]) > 0 {
		return nil
	}
	for i := 0; i < scoring.CompetencyCount; i++ {
		c := Competency{ID: f.id(), ReviewID: reviewID, Name: "competency " + strconv.Itoa(i+1)}
		f.competencies[reviewID] = append(f.competencies[reviewID], c)
	}
	return nil
}

func (f *fakeStore) SaveComposite(_ context.Context, reviewID, field string, result scoring.CompositeResult) error {
	rec := f.reviews[reviewID]
	if field == FieldHow {
		rec.How = result
	} else {
		rec.What = result
	}
	return nil
}

func (f *fakeStore) HeaderForYear(_ context.Context, employeeID string, year int) (Header, bool, error) {
	for _, rec := range f.reviews {
		if rec.EmployeeID == employeeID && rec.Year == year {
			return Header{ManagerID: rec.ManagerID, JobTitle: rec.JobTitle, TOVLevel: rec.TOVLevel}, true, nil
		}
	}
	return Header{}, false, nil
}

func (f *fakeStore) EmployeeUserID(_ context.Context, _ string) (string, error)     { return "", nil }
func (f *fakeStore) EmployeeIDByUserID(_ context.Context, _ string) (string, error) { return "", nil }
func (f *fakeStore) ManagerUserID(_ context.Context, _ string) (string, error)      { return "", nil }
func (f *fakeStore) IsManagerOfEmployee(_ context.Context, _, _ string) (bool, error) {
	return false, nil
}

func setupReview(t *testing.T, store *fakeStore, stage, status string, weights []int) string {
	t.Helper()
	id, err := store.CreateReview(context.Background(), ReviewRecord{
		EmployeeID: "emp-1",
		Year:       2026,
		Stage:      stage,
		Status:     status,
	})
	if err != nil {
		t.Fatal(err)
	}
	for i, w := range weights {
		if _, err := store.CreateGoal(context.Background(), id, "goal "+strconv.Itoa(i+1), scoring.KindStandard, w); err != nil {
			t.Fatal(err)
		}
	}
	if err := store.SeedCompetencies(context.Background(), id); err != nil {
		t.Fatal(err)
	}
	return id
}

func scoreEverything(t *testing.T, store *fakeStore, reviewID string, goalScore, competencyScore int) {
	t.Helper()
	for _, g := range store.goals[reviewID] {
		if err := store.SetGoalScore(context.Background(), reviewID, g.ID, goalScore); err != nil {
			t.Fatal(err)
		}
	}
	for _, c := range store.competencies[reviewID] {
		if err := store.SetCompetencyScore(context.Background(), reviewID, c.ID, competencyScore); err != nil {
			t.Fatal(err)
		}
	}
}

func TestCreateGoalSettingSeedsHeaderFromPriorYear(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store)
	if _, err := store.CreateReview(context.Background(), ReviewRecord{
		EmployeeID: "emp-7",
		Year:       2025,
		Stage:      StageEndYear,
		Status:     StatusArchived,
		ManagerID:  "mgr-7",
		JobTitle:   "Senior Engineer",
		TOVLevel:   "T3",
	}); err != nil {
		t.Fatal(err)
	}

	rec, err := svc.CreateGoalSetting(context.Background(), "emp-7", 2026)
	if err != nil {
		t.Fatal(err)
	}
	if rec.Stage != StageGoalSetting || rec.Status != StatusDraft {
		t.Fatalf("got %s/%s, want draft goal_setting", rec.Stage, rec.Status)
	}
	if rec.ManagerID != "mgr-7" || rec.JobTitle != "Senior Engineer" || rec.TOVLevel != "T3" {
		t.Fatalf("prior-year header not carried over: %+v", rec)
	}
	if got := len(store.competencies[rec.ID]); got != scoring.CompetencyCount {
		t.Fatalf("competencies = %d, want %d", got, scoring.CompetencyCount)
	}
}

func TestCreateGoalSettingWithoutPriorYear(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store)

	rec, err := svc.CreateGoalSetting(context.Background(), "emp-8", 2026)
	if err != nil {
		t.Fatal(err)
	}
	if rec.ManagerID != "" || rec.JobTitle != "" || rec.TOVLevel != "" {
		t.Fatalf("expected empty header without a prior year, got %+v", rec)
	}
	if got := len(store.competencies[rec.ID]); got != scoring.CompetencyCount {
		t.Fatalf("competencies = %d, want %d", got, scoring.CompetencyCount)
	}
}

func TestSubmitRejectsBadWeights(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store)
	id := setupReview(t, store, StageGoalSetting, StatusDraft, []int{60, 39})

	_, err := svc.Submit(context.Background(), id)
	var weightErr *InvalidWeightError
	if !errors.As(err, &weightErr) {
		t.Fatalf("want InvalidWeightError, got %v", err)
	}
	if weightErr.Sum != 99 {
		t.Fatalf("Sum = %d, want 99", weightErr.Sum)
	}
}

func TestSubmitGoalSetting(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store)
	id := setupReview(t, store, StageGoalSetting, StatusDraft, []int{60, 40})

	rec, err := svc.Submit(context.Background(), id)
	if err != nil {
		t.Fatal(err)
	}
	if rec.Status != StatusPendingManagerSig {
		t.Fatalf("status = %s, want %s", rec.Status, StatusPendingManagerSig)
	}
}

func TestSubmitScoringStageRequiresCompleteScores(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store)
	id := setupReview(t, store, StageMidYear, StatusDraft, []int{60, 40})

	_, err := svc.Submit(context.Background(), id)
	var incompleteErr *IncompleteScoringError
	if !errors.As(err, &incompleteErr) {
		t.Fatalf("want IncompleteScoringError, got %v", err)
	}
	if incompleteErr.Field != FieldWhat {
		t.Fatalf("Field = %s, want %s", incompleteErr.Field, FieldWhat)
	}
	if len(incompleteErr.MissingItemIDs) != 2 {
		t.Fatalf("missing = %v", incompleteErr.MissingItemIDs)
	}
}

func TestSubmitScoringStagePersistsComposites(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store)
	id := setupReview(t, store, StageMidYear, StatusDraft, []int{60, 40})
	scoreEverything(t, store, id, 3, 2)

	rec, err := svc.Submit(context.Background(), id)
	if err != nil {
		t.Fatal(err)
	}
	if rec.Status != StatusPendingEmployeeSig {
		t.Fatalf("status = %s", rec.Status)
	}
	if rec.What.Value == nil || rec.What.Value.StringFixed(2) != "3.00" {
		t.Fatalf("what = %+v", rec.What)
	}
	if rec.How.Value == nil || rec.How.Value.StringFixed(2) != "2.00" {
		t.Fatalf("how = %+v", rec.How)
	}
	if rec.What.GridPosition == nil || *rec.What.GridPosition != 3 {
		t.Fatalf("what grid = %v", rec.What.GridPosition)
	}
	if rec.How.GridPosition == nil || *rec.How.GridPosition != 2 {
		t.Fatalf("how grid = %v", rec.How.GridPosition)
	}
}

func TestSignFromDraftIsIllegal(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store)
	id := setupReview(t, store, StageMidYear, StatusDraft, []int{100})

	_, err := svc.Sign(context.Background(), id, "user-1", PartyEmployee)
	var transitionErr *InvalidTransitionError
	if !errors.As(err, &transitionErr) {
		t.Fatalf("want InvalidTransitionError, got %v", err)
	}
}

func TestSignBothPartiesReachesSigned(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store)
	id := setupReview(t, store, StageMidYear, StatusPendingEmployeeSig, []int{100})

	rec, err := svc.Sign(context.Background(), id, "user-emp", PartyEmployee)
	if err != nil {
		t.Fatal(err)
	}
	if rec.Status != StatusPendingManagerSig {
		t.Fatalf("after employee sign: %s", rec.Status)
	}
	if rec.EmployeeSignedAt == nil || rec.EmployeeSignedBy != "user-emp" {
		t.Fatal("employee signature not recorded")
	}

	rec, err = svc.Sign(context.Background(), id, "user-mgr", PartyManager)
	if err != nil {
		t.Fatal(err)
	}
	if rec.Status != StatusSigned {
		t.Fatalf("after manager sign: %s", rec.Status)
	}
	if rec.ManagerSignedAt == nil || rec.ManagerSignedBy != "user-mgr" {
		t.Fatal("manager signature not recorded")
	}
}

func TestSignOnStaleStatusReturnsStaleState(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store)
	id := setupReview(t, store, StageMidYear, StatusEmployeeSigned, []int{100})

	// A concurrent sign already won: this caller still observes the pending
	// status, so its conditional update must lose.
	store.staleStatus = StatusPendingEmployeeSig

	_, err := svc.Sign(context.Background(), id, "user-late", PartyEmployee)
	if !errors.Is(err, ErrStaleState) {
		t.Fatalf("want ErrStaleState, got %v", err)
	}
	if store.reviews[id].Status != StatusEmployeeSigned {
		t.Fatalf("status = %s, want %s", store.reviews[id].Status, StatusEmployeeSigned)
	}
}

func TestSubmitOnStaleStatusReturnsStaleState(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store)
	id := setupReview(t, store, StageGoalSetting, StatusPendingManagerSig, []int{100})
	store.staleStatus = StatusDraft

	_, err := svc.Submit(context.Background(), id)
	if !errors.Is(err, ErrStaleState) {
		t.Fatalf("want ErrStaleState, got %v", err)
	}
	if store.reviews[id].Status != StatusPendingManagerSig {
		t.Fatalf("status = %s, want %s", store.reviews[id].Status, StatusPendingManagerSig)
	}
}

func TestSignatureWriteFailureKeepsPendingStatus(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store)
	id := setupReview(t, store, StageGoalSetting, StatusPendingManagerSig, []int{100})
	store.signatureErr = errors.New("signature write failed")

	_, err := svc.Sign(context.Background(), id, "user-mgr", PartyManager)
	if err == nil {
		t.Fatal("want error when the signature write fails")
	}
	rec := store.reviews[id]
	if rec.Status != StatusPendingManagerSig {
		t.Fatalf("status = %s, want %s", rec.Status, StatusPendingManagerSig)
	}
	if rec.ManagerSignedAt != nil || rec.ManagerSignedBy != "" {
		t.Fatal("no signature should be recorded")
	}
}

func TestRejectRequiresRationale(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store)
	id := setupReview(t, store, StageMidYear, StatusPendingManagerSig, []int{100})

	_, err := svc.Reject(context.Background(), id, PartyManager, "   ")
	if !errors.Is(err, ErrMissingRationale) {
		t.Fatalf("want ErrMissingRationale, got %v", err)
	}
}

func TestManagerRejectClearsEmployeeSignature(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store)
	id := setupReview(t, store, StageMidYear, StatusPendingEmployeeSig, []int{100})

	if _, err := svc.Sign(context.Background(), id, "user-emp", PartyEmployee); err != nil {
		t.Fatal(err)
	}

	rec, err := svc.Reject(context.Background(), id, PartyManager, "scores do not match the evidence")
	if err != nil {
		t.Fatal(err)
	}
	if rec.Status != StatusPendingEmployeeSig {
		t.Fatalf("status = %s, want %s", rec.Status, StatusPendingEmployeeSig)
	}
	if rec.EmployeeSignedAt != nil || rec.EmployeeSignedBy != "" {
		t.Fatal("employee signature should be cleared")
	}
	if rec.RejectionFeedback != "scores do not match the evidence" {
		t.Fatalf("feedback = %q", rec.RejectionFeedback)
	}
}

func TestAdvanceStageCopiesGoalsIntoNextDraft(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store)
	id := setupReview(t, store, StageGoalSetting, StatusSigned, []int{60, 40})

	next, err := svc.AdvanceStage(context.Background(), id)
	if err != nil {
		t.Fatal(err)
	}
	if next.Stage != StageMidYear || next.Status != StatusDraft {
		t.Fatalf("successor = %s/%s", next.Stage, next.Status)
	}

	goals, err := svc.Goals(context.Background(), next.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(goals) != 2 {
		t.Fatalf("copied goals = %d, want 2", len(goals))
	}
	for _, g := range goals {
		if g.Score != nil {
			t.Fatal("copied goals must start unscored")
		}
	}
}

func TestAdvanceStageArchivesEndYear(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store)
	id := setupReview(t, store, StageEndYear, StatusSigned, []int{100})

	rec, err := svc.AdvanceStage(context.Background(), id)
	if err != nil {
		t.Fatal(err)
	}
	if rec.Status != StatusArchived {
		t.Fatalf("status = %s, want %s", rec.Status, StatusArchived)
	}
}

func TestRateGoalGuardsAndRecomputes(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store)
	id := setupReview(t, store, StageMidYear, StatusDraft, []int{60, 40})
	goalID := store.goals[id][0].ID

	if _, err := svc.RateGoal(context.Background(), id, goalID, 4); err == nil {
		t.Fatal("scores above 3 must be rejected")
	}

	result, err := svc.RateGoal(context.Background(), id, goalID, 3)
	if err != nil {
		t.Fatal(err)
	}
	// One of two goals scored: composite stays open.
	if result.Value != nil {
		t.Fatalf("value = %v, want nil while scoring is incomplete", result.Value)
	}

	secondID := store.goals[id][1].ID
	result, err = svc.RateGoal(context.Background(), id, secondID, 2)
	if err != nil {
		t.Fatal(err)
	}
	if result.Value == nil || result.Value.StringFixed(2) != "2.60" {
		t.Fatalf("value = %v, want 2.60", result.Value)
	}
}

func TestRateGoalLockedOutsideDraft(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store)
	id := setupReview(t, store, StageMidYear, StatusPendingEmployeeSig, []int{100})
	goalID := store.goals[id][0].ID

	_, err := svc.RateGoal(context.Background(), id, goalID, 2)
	if !errors.Is(err, ErrStageLocked) {
		t.Fatalf("want ErrStageLocked, got %v", err)
	}
}

func TestRateGoalKeepsCalibratedComposite(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store)
	id := setupReview(t, store, StageMidYear, StatusDraft, []int{100})
	goalID := store.goals[id][0].ID

	override := decimal.RequireFromString("2.10")
	grid := 2
	store.reviews[id].What = scoring.CompositeResult{
		Value:        &override,
		VetoReason:   scoring.VetoManualOverride,
		GridPosition: &grid,
		Calibrated:   true,
	}

	result, err := svc.RateGoal(context.Background(), id, goalID, 1)
	if err != nil {
		t.Fatal(err)
	}
	if !result.Calibrated || result.Value.StringFixed(2) != "2.10" {
		t.Fatalf("calibrated composite was clobbered: %+v", result)
	}
	if store.reviews[id].What.Value.StringFixed(2) != "2.10" {
		t.Fatal("stored composite changed")
	}
}

func TestAddGoalLockedAfterGoalSetting(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store)
	id := setupReview(t, store, StageMidYear, StatusDraft, []int{100})

	_, err := svc.AddGoal(context.Background(), id, "late goal", scoring.KindStandard, 10)
	if !errors.Is(err, ErrStageLocked) {
		t.Fatalf("want ErrStageLocked, got %v", err)
	}
}
