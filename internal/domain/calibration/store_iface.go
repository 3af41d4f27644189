package calibration

import "context"

type StoreAPI interface {
	GetSession(ctx context.Context, sessionID string) (Session, error)
	ListSessions(ctx context.Context, year int) ([]Session, error)
	CreateSession(ctx context.Context, session Session) (string, error)

	// UpdateSessionStatus is conditional on the current status and returns
	// ErrSessionNotActive when the session has moved on concurrently.
	UpdateSessionStatus(ctx context.Context, sessionID, expected, next string) error

	CreateAdjustment(ctx context.Context, adj Adjustment) (string, error)
	ListAdjustments(ctx context.Context, sessionID string) ([]Adjustment, error)
	ListAdjustmentsForReview(ctx context.Context, reviewID string) ([]Adjustment, error)
}
