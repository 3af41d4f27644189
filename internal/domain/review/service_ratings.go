package review

import (
	"context"

	"appraisal/internal/domain/scoring"
)

func (s *Service) Goals(ctx context.Context, reviewID string) ([]Goal, error) {
	return s.store.ListGoals(ctx, reviewID)
}

func (s *Service) Competencies(ctx context.Context, reviewID string) ([]Competency, error) {
	return s.store.ListCompetencies(ctx, reviewID)
}

// AddGoal attaches a goal to a draft goal-setting review.
func (s *Service) AddGoal(ctx context.Context, reviewID, title, kind string, weight int) (string, error) {
	rec, err := s.store.GetReview(ctx, reviewID)
	if err != nil {
		return "", err
	}
	if rec.Stage != StageGoalSetting || rec.Status != StatusDraft {
		return "", ErrStageLocked
	}
	return s.store.CreateGoal(ctx, reviewID, title, kind, weight)
}

func (s *Service) UpdateGoal(ctx context.Context, reviewID, goalID, title, kind string, weight int) error {
	rec, err := s.store.GetReview(ctx, reviewID)
	if err != nil {
		return err
	}
	if rec.Stage != StageGoalSetting || rec.Status != StatusDraft {
		return ErrStageLocked
	}
	return s.store.UpdateGoal(ctx, reviewID, goalID, title, kind, weight)
}

func (s *Service) DeleteGoal(ctx context.Context, reviewID, goalID string) error {
	rec, err := s.store.GetReview(ctx, reviewID)
	if err != nil {
		return err
	}
	if rec.Stage != StageGoalSetting || rec.Status != StatusDraft {
		return ErrStageLocked
	}
	return s.store.DeleteGoal(ctx, reviewID, goalID)
}

// RateGoal writes a goal rating during a draft scoring stage and recomputes
// the WHAT composite. A calibrated composite is left untouched: the override
// stays authoritative until a new calibration adjustment replaces it.
func (s *Service) RateGoal(ctx context.Context, reviewID, goalID string, score int) (scoring.CompositeResult, error) {
	rec, err := s.store.GetReview(ctx, reviewID)
	if err != nil {
		return scoring.CompositeResult{}, err
	}
	if !IsScoringStage(rec.Stage) || rec.Status != StatusDraft {
		return scoring.CompositeResult{}, ErrStageLocked
	}
	if score < scoring.MinScore || score > scoring.MaxScore {
		return scoring.CompositeResult{}, &scoring.InvalidRatingError{ItemID: goalID, Score: score}
	}

	if err := s.store.SetGoalScore(ctx, reviewID, goalID, score); err != nil {
		return scoring.CompositeResult{}, err
	}

	goals, err := s.store.ListGoals(ctx, reviewID)
	if err != nil {
		return scoring.CompositeResult{}, err
	}
	result, err := scoring.ComputeGoalScore(goalsToRated(goals))
	if err != nil {
		return scoring.CompositeResult{}, err
	}

	if rec.What.Calibrated {
		return rec.What, nil
	}
	if err := s.store.SaveComposite(ctx, reviewID, FieldWhat, result); err != nil {
		return scoring.CompositeResult{}, err
	}
	return result, nil
}

// RateCompetency is the HOW-axis counterpart of RateGoal.
func (s *Service) RateCompetency(ctx context.Context, reviewID, competencyID string, score int) (scoring.CompositeResult, error) {
	rec, err := s.store.GetReview(ctx, reviewID)
	if err != nil {
		return scoring.CompositeResult{}, err
	}
	if !IsScoringStage(rec.Stage) || rec.Status != StatusDraft {
		return scoring.CompositeResult{}, ErrStageLocked
	}
	if score < scoring.MinScore || score > scoring.MaxScore {
		return scoring.CompositeResult{}, &scoring.InvalidRatingError{ItemID: competencyID, Score: score}
	}

	if err := s.store.SetCompetencyScore(ctx, reviewID, competencyID, score); err != nil {
		return scoring.CompositeResult{}, err
	}

	competencies, err := s.store.ListCompetencies(ctx, reviewID)
	if err != nil {
		return scoring.CompositeResult{}, err
	}
	result, err := scoring.ComputeCompetencyScore(competenciesToRated(competencies))
	if err != nil {
		return scoring.CompositeResult{}, err
	}

	if rec.How.Calibrated {
		return rec.How, nil
	}
	if err := s.store.SaveComposite(ctx, reviewID, FieldHow, result); err != nil {
		return scoring.CompositeResult{}, err
	}
	return result, nil
}
