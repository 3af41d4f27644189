package reports

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"appraisal/internal/domain/review"
)

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

// SignedEndYearReviews loads the population a calibration panel or HR report
// works from: end-year records that completed both signatures.
func (s *Store) SignedEndYearReviews(ctx context.Context, year int) ([]review.ReviewRecord, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, employee_id, what_value::text, what_grid, how_value::text, how_grid
    FROM reviews
    WHERE year = $1 AND stage = $2 AND status IN ($3, $4)
  `, year, review.StageEndYear, review.StatusSigned, review.StatusArchived)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []review.ReviewRecord
	for rows.Next() {
		var rec review.ReviewRecord
		var whatValue, howValue *string
		if err := rows.Scan(&rec.ID, &rec.EmployeeID, &whatValue, &rec.What.GridPosition, &howValue, &rec.How.GridPosition); err != nil {
			return nil, err
		}
		if rec.What.Value, err = parseValue(whatValue); err != nil {
			return nil, err
		}
		if rec.How.Value, err = parseValue(howValue); err != nil {
			return nil, err
		}
		rec.Year = year
		rec.Stage = review.StageEndYear
		out = append(out, rec)
	}
	return out, rows.Err()
}

type CompletionRow struct {
	Stage  string `json:"stage"`
	Status string `json:"status"`
	Count  int    `json:"count"`
}

func (s *Store) CompletionByStage(ctx context.Context, year int) ([]CompletionRow, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT stage, status, COUNT(1)
    FROM reviews
    WHERE year = $1
    GROUP BY stage, status
    ORDER BY stage, status
  `, year)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []CompletionRow
	for rows.Next() {
		var row CompletionRow
		if err := rows.Scan(&row.Stage, &row.Status, &row.Count); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

type ReviewSummary struct {
	EmployeeName     string
	JobTitle         string
	TOVLevel         string
	Year             int
	Stage            string
	Status           string
	WhatValue        *string
	WhatGrid         *int
	HowValue         *string
	HowGrid          *int
	EmployeeSignedAt *time.Time
	ManagerSignedAt  *time.Time
}

func (s *Store) ReviewSummary(ctx context.Context, reviewID string) (ReviewSummary, error) {
	var summary ReviewSummary
	err := s.DB.QueryRow(ctx, `
    SELECT e.first_name || ' ' || e.last_name,
           r.job_title, r.tov_level, r.year, r.stage, r.status,
           r.what_value::text, r.what_grid, r.how_value::text, r.how_grid,
           r.employee_signed_at, r.manager_signed_at
    FROM reviews r
    JOIN employees e ON r.employee_id = e.id
    WHERE r.id = $1
  `, reviewID).Scan(
		&summary.EmployeeName, &summary.JobTitle, &summary.TOVLevel,
		&summary.Year, &summary.Stage, &summary.Status,
		&summary.WhatValue, &summary.WhatGrid, &summary.HowValue, &summary.HowGrid,
		&summary.EmployeeSignedAt, &summary.ManagerSignedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return ReviewSummary{}, review.ErrNotFound
	}
	if err != nil {
		return ReviewSummary{}, err
	}
	return summary, nil
}

func parseValue(raw *string) (*decimal.Decimal, error) {
	if raw == nil {
		return nil, nil
	}
	value, err := decimal.NewFromString(*raw)
	if err != nil {
		return nil, err
	}
	return &value, nil
}
