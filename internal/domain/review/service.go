package review

import (
	"context"
	"errors"
	"strings"
	"time"

	"appraisal/internal/domain/scoring"
)

type Service struct {
	store StoreAPI
}

func NewService(store StoreAPI) *Service {
	return &Service{store: store}
}

func (s *Service) Get(ctx context.Context, reviewID string) (ReviewRecord, error) {
	return s.store.GetReview(ctx, reviewID)
}

func (s *Service) List(ctx context.Context, employeeID, managerID string, year int) ([]ReviewRecord, error) {
	return s.store.ListReviews(ctx, employeeID, managerID, year)
}

func (s *Service) EmployeeIDByUserID(ctx context.Context, userID string) (string, error) {
	return s.store.EmployeeIDByUserID(ctx, userID)
}

func (s *Service) EmployeeUserID(ctx context.Context, employeeID string) (string, error) {
	return s.store.EmployeeUserID(ctx, employeeID)
}

func (s *Service) ManagerUserID(ctx context.Context, employeeID string) (string, error) {
	return s.store.ManagerUserID(ctx, employeeID)
}

func (s *Service) IsManagerOfEmployee(ctx context.Context, employeeID, managerEmployeeID string) (bool, error) {
	return s.store.IsManagerOfEmployee(ctx, employeeID, managerEmployeeID)
}

// CreateGoalSetting opens the review year for an employee: a goal_setting
// record in draft, its header seeded from the previous year's end-year
// review when one exists, with the competency catalogue attached.
func (s *Service) CreateGoalSetting(ctx context.Context, employeeID string, year int) (ReviewRecord, error) {
	rec := ReviewRecord{
		EmployeeID: employeeID,
		Year:       year,
		Stage:      StageGoalSetting,
		Status:     StatusDraft,
	}

	header, ok, err := s.store.HeaderForYear(ctx, employeeID, year-1)
	if err != nil {
		return ReviewRecord{}, err
	}
	if ok {
		rec.ManagerID = header.ManagerID
		rec.JobTitle = header.JobTitle
		rec.TOVLevel = header.TOVLevel
	}

	id, err := s.store.CreateReview(ctx, rec)
	if err != nil {
		return ReviewRecord{}, err
	}
	rec.ID = id

	if err := s.store.SeedCompetencies(ctx, id); err != nil {
		return ReviewRecord{}, err
	}
	return rec, nil
}

// Submit moves a draft into its first signature request. Goal setting
// requires the weights to sum to exactly 100; scoring stages require both
// composites to be finalized.
func (s *Service) Submit(ctx context.Context, reviewID string) (ReviewRecord, error) {
	rec, err := s.store.GetReview(ctx, reviewID)
	if err != nil {
		return ReviewRecord{}, err
	}

	next, err := Next(rec.Stage, rec.Status, EventSubmit)
	if err != nil {
		return ReviewRecord{}, err
	}

	goals, err := s.store.ListGoals(ctx, reviewID)
	if err != nil {
		return ReviewRecord{}, err
	}
	items := goalsToRated(goals)

	if sum := scoring.WeightSum(items); sum != 100 {
		return ReviewRecord{}, &InvalidWeightError{Sum: sum}
	}

	if IsScoringStage(rec.Stage) {
		what, err := scoring.ComputeGoalScore(items)
		if err != nil {
			return ReviewRecord{}, err
		}
		if what.Value == nil {
			return ReviewRecord{}, &IncompleteScoringError{Field: FieldWhat, MissingItemIDs: scoring.MissingScoreIDs(items)}
		}

		competencies, err := s.store.ListCompetencies(ctx, reviewID)
		if err != nil {
			return ReviewRecord{}, err
		}
		compItems := competenciesToRated(competencies)
		how, err := scoring.ComputeCompetencyScore(compItems)
		if err != nil {
			return ReviewRecord{}, err
		}
		if how.Value == nil {
			return ReviewRecord{}, &IncompleteScoringError{Field: FieldHow, MissingItemIDs: scoring.MissingScoreIDs(compItems)}
		}

		if !rec.What.Calibrated {
			if err := s.store.SaveComposite(ctx, reviewID, FieldWhat, what); err != nil {
				return ReviewRecord{}, err
			}
			rec.What = what
		}
		if !rec.How.Calibrated {
			if err := s.store.SaveComposite(ctx, reviewID, FieldHow, how); err != nil {
				return ReviewRecord{}, err
			}
			rec.How = how
		}
	}

	if err := s.store.UpdateStatus(ctx, reviewID, rec.Status, next); err != nil {
		return ReviewRecord{}, err
	}
	rec.Status = next
	return rec, nil
}

// Sign records the party's signature with a UTC timestamp. When the
// counterpart has already signed, the record advances straight to signed;
// otherwise the counterpart's signature is requested immediately.
func (s *Service) Sign(ctx context.Context, reviewID, actorID, party string) (ReviewRecord, error) {
	rec, err := s.store.GetReview(ctx, reviewID)
	if err != nil {
		return ReviewRecord{}, err
	}

	signed, err := Next(rec.Stage, rec.Status, signEvent(party))
	if err != nil {
		return ReviewRecord{}, err
	}

	counterpartSigned := rec.ManagerSignedAt != nil
	if party == PartyManager {
		counterpartSigned = rec.EmployeeSignedAt != nil
	}

	target := signed
	if counterpartSigned {
		target = StatusSigned
	}

	// The signature row is written before the status flips, so a failure
	// between the two never leaves a signed status without its signature.
	now := time.Now().UTC()
	if err := s.store.SetSignature(ctx, reviewID, party, actorID, now); err != nil {
		return ReviewRecord{}, err
	}

	// Single conditional update guards against two concurrent signs both
	// observing the same pending status.
	if err := s.store.UpdateStatus(ctx, reviewID, rec.Status, target); err != nil {
		return ReviewRecord{}, err
	}
	if party == PartyManager {
		rec.ManagerSignedBy = actorID
		rec.ManagerSignedAt = &now
	} else {
		rec.EmployeeSignedBy = actorID
		rec.EmployeeSignedAt = &now
	}
	rec.Status = target

	if !counterpartSigned {
		pending, err := Next(rec.Stage, target, EventRequestCounterSign)
		if err != nil {
			return ReviewRecord{}, err
		}
		if err := s.store.UpdateStatus(ctx, reviewID, target, pending); err != nil {
			return ReviewRecord{}, err
		}
		rec.Status = pending
	}
	return rec, nil
}

// Reject declines a signature request with a mandatory rationale. The
// record walks one step backwards and the signature of the party who now has
// to re-sign is cleared.
func (s *Service) Reject(ctx context.Context, reviewID, party, rationale string) (ReviewRecord, error) {
	if strings.TrimSpace(rationale) == "" {
		return ReviewRecord{}, ErrMissingRationale
	}

	rec, err := s.store.GetReview(ctx, reviewID)
	if err != nil {
		return ReviewRecord{}, err
	}

	next, err := Next(rec.Stage, rec.Status, rejectEvent(party))
	if err != nil {
		return ReviewRecord{}, err
	}

	if err := s.store.UpdateStatus(ctx, reviewID, rec.Status, next); err != nil {
		return ReviewRecord{}, err
	}

	switch next {
	case StatusPendingEmployeeSig:
		if err := s.store.ClearSignature(ctx, reviewID, PartyEmployee); err != nil {
			return ReviewRecord{}, err
		}
		rec.EmployeeSignedBy = ""
		rec.EmployeeSignedAt = nil
	case StatusPendingManagerSig:
		if err := s.store.ClearSignature(ctx, reviewID, PartyManager); err != nil {
			return ReviewRecord{}, err
		}
		rec.ManagerSignedBy = ""
		rec.ManagerSignedAt = nil
	}

	if err := s.store.SetRejectionFeedback(ctx, reviewID, rationale); err != nil {
		return ReviewRecord{}, err
	}
	rec.Status = next
	rec.RejectionFeedback = rationale
	return rec, nil
}

// AdvanceStage is the HR-only operation that opens the next stage once the
// current one is fully signed. The end-year stage archives instead, closing
// the year.
func (s *Service) AdvanceStage(ctx context.Context, reviewID string) (ReviewRecord, error) {
	rec, err := s.store.GetReview(ctx, reviewID)
	if err != nil {
		return ReviewRecord{}, err
	}

	next, err := Next(rec.Stage, rec.Status, EventAdvanceStage)
	if err != nil {
		return ReviewRecord{}, err
	}

	if rec.Stage == StageEndYear {
		if err := s.store.UpdateStatus(ctx, reviewID, rec.Status, next); err != nil {
			return ReviewRecord{}, err
		}
		rec.Status = next
		return rec, nil
	}

	successor := ReviewRecord{
		EmployeeID: rec.EmployeeID,
		Year:       rec.Year,
		Stage:      NextStage(rec.Stage),
		Status:     StatusDraft,
		ManagerID:  rec.ManagerID,
		JobTitle:   rec.JobTitle,
		TOVLevel:   rec.TOVLevel,
	}

	existing, err := s.store.GetReviewByKey(ctx, rec.EmployeeID, rec.Year, successor.Stage)
	switch {
	case err == nil:
		// Successor already exists (e.g. a retried advance): reset it to a
		// clean draft instead of failing on the uniqueness constraint.
		successor.ID = existing.ID
		if err := s.store.ResetReview(ctx, existing.ID); err != nil {
			return ReviewRecord{}, err
		}
	case errors.Is(err, ErrNotFound):
		id, err := s.store.CreateReview(ctx, successor)
		if err != nil {
			return ReviewRecord{}, err
		}
		successor.ID = id
		if err := s.store.CopyGoals(ctx, rec.ID, id); err != nil {
			return ReviewRecord{}, err
		}
		if err := s.store.SeedCompetencies(ctx, id); err != nil {
			return ReviewRecord{}, err
		}
	default:
		return ReviewRecord{}, err
	}

	return successor, nil
}
