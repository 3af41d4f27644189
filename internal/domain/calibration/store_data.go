package calibration

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

func (s *Store) GetSession(ctx context.Context, sessionID string) (Session, error) {
	var session Session
	err := s.DB.QueryRow(ctx, `
    SELECT id, name, year, status, COALESCE(created_by::text, ''), created_at, updated_at
    FROM calibration_sessions
    WHERE id = $1
  `, sessionID).Scan(&session.ID, &session.Name, &session.Year, &session.Status, &session.CreatedBy, &session.CreatedAt, &session.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Session{}, ErrSessionNotFound
	}
	if err != nil {
		return Session{}, err
	}
	return session, nil
}

func (s *Store) ListSessions(ctx context.Context, year int) ([]Session, error) {
	query := `
    SELECT id, name, year, status, COALESCE(created_by::text, ''), created_at, updated_at
    FROM calibration_sessions`
	var args []any
	if year > 0 {
		query += ` WHERE year = $1`
		args = append(args, year)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Session
	for rows.Next() {
		var session Session
		if err := rows.Scan(&session.ID, &session.Name, &session.Year, &session.Status, &session.CreatedBy, &session.CreatedAt, &session.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, session)
	}
	return out, rows.Err()
}

func (s *Store) CreateSession(ctx context.Context, session Session) (string, error) {
	var id string
	err := s.DB.QueryRow(ctx, `
    INSERT INTO calibration_sessions (name, year, status, created_by)
    VALUES ($1,$2,$3,NULLIF($4,'')::uuid)
    RETURNING id
  `, session.Name, session.Year, session.Status, session.CreatedBy).Scan(&id)
	if err != nil {
		return "", err
	}
	return id, nil
}

func (s *Store) UpdateSessionStatus(ctx context.Context, sessionID, expected, next string) error {
	tag, err := s.DB.Exec(ctx, `
    UPDATE calibration_sessions SET status = $1, updated_at = now()
    WHERE id = $2 AND status = $3
  `, next, sessionID, expected)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrSessionNotActive
	}
	return nil
}

func (s *Store) CreateAdjustment(ctx context.Context, adj Adjustment) (string, error) {
	var prior *string
	if adj.PriorValue != nil {
		fixed := adj.PriorValue.StringFixed(2)
		prior = &fixed
	}
	var id string
	err := s.DB.QueryRow(ctx, `
    INSERT INTO calibration_adjustments
      (session_id, review_id, field, prior_value, prior_grid, new_value, new_grid, rationale, adjusted_by)
    VALUES ($1,$2,$3,$4::numeric,$5,$6::numeric,$7,$8,NULLIF($9,'')::uuid)
    RETURNING id
  `, adj.SessionID, adj.ReviewID, adj.Field, prior, adj.PriorGrid,
		adj.NewValue.StringFixed(2), adj.NewGrid, adj.Rationale, adj.AdjustedBy).Scan(&id)
	if err != nil {
		return "", err
	}
	return id, nil
}

func (s *Store) ListAdjustments(ctx context.Context, sessionID string) ([]Adjustment, error) {
	return s.listAdjustments(ctx, "session_id", sessionID)
}

func (s *Store) ListAdjustmentsForReview(ctx context.Context, reviewID string) ([]Adjustment, error) {
	return s.listAdjustments(ctx, "review_id", reviewID)
}

func (s *Store) listAdjustments(ctx context.Context, column, id string) ([]Adjustment, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, session_id, review_id, field,
           prior_value::text, prior_grid, new_value::text, new_grid,
           rationale, COALESCE(adjusted_by::text, ''), created_at
    FROM calibration_adjustments
    WHERE `+column+` = $1
    ORDER BY created_at
  `, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Adjustment
	for rows.Next() {
		var adj Adjustment
		var prior *string
		var next string
		if err := rows.Scan(&adj.ID, &adj.SessionID, &adj.ReviewID, &adj.Field,
			&prior, &adj.PriorGrid, &next, &adj.NewGrid,
			&adj.Rationale, &adj.AdjustedBy, &adj.CreatedAt); err != nil {
			return nil, err
		}
		if prior != nil {
			value, err := decimal.NewFromString(*prior)
			if err != nil {
				return nil, err
			}
			adj.PriorValue = &value
		}
		value, err := decimal.NewFromString(next)
		if err != nil {
			return nil, err
		}
		adj.NewValue = value
		out = append(out, adj)
	}
	return out, rows.Err()
}
