package review

import (
	"context"
	"time"

	"appraisal/internal/domain/scoring"
)

type Header struct {
	ManagerID string
	JobTitle  string
	TOVLevel  string
}

type StoreAPI interface {
	GetReview(ctx context.Context, reviewID string) (ReviewRecord, error)
	GetReviewByKey(ctx context.Context, employeeID string, year int, stage string) (ReviewRecord, error)
	ListReviews(ctx context.Context, employeeID, managerID string, year int) ([]ReviewRecord, error)
	CreateReview(ctx context.Context, rec ReviewRecord) (string, error)
	ResetReview(ctx context.Context, reviewID string) error

	// UpdateStatus is a conditional single-row update; it returns
	// ErrStaleState when the row is no longer in the expected status.
	UpdateStatus(ctx context.Context, reviewID, expected, next string) error

	SetSignature(ctx context.Context, reviewID, party, actorID string, at time.Time) error
	ClearSignature(ctx context.Context, reviewID, party string) error
	SetRejectionFeedback(ctx context.Context, reviewID, feedback string) error

	ListGoals(ctx context.Context, reviewID string) ([]Goal, error)
	CreateGoal(ctx context.Context, reviewID, title, kind string, weight int) (string, error)
	UpdateGoal(ctx context.Context, reviewID, goalID, title, kind string, weight int) error
	DeleteGoal(ctx context.Context, reviewID, goalID string) error
	SetGoalScore(ctx context.Context, reviewID, goalID string, score int) error
	CopyGoals(ctx context.Context, fromReviewID, toReviewID string) error

	ListCompetencies(ctx context.Context, reviewID string) ([]Competency, error)
	SetCompetencyScore(ctx context.Context, reviewID, competencyID string, score int) error
	SeedCompetencies(ctx context.Context, reviewID string) error

	SaveComposite(ctx context.Context, reviewID, field string, result scoring.CompositeResult) error
	HeaderForYear(ctx context.Context, employeeID string, year int) (Header, bool, error)

	EmployeeUserID(ctx context.Context, employeeID string) (string, error)
	EmployeeIDByUserID(ctx context.Context, userID string) (string, error)
	ManagerUserID(ctx context.Context, employeeID string) (string, error)
	IsManagerOfEmployee(ctx context.Context, employeeID, managerEmployeeID string) (bool, error)
}
