package review

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"appraisal/internal/domain/scoring"
)

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

// The six behaviour competencies every review is rated on.
var competencyCatalogue = []string{
	"Collaboration",
	"Communication",
	"Customer Focus",
	"Ownership",
	"Craftsmanship",
	"Adaptability",
}

const reviewColumns = `
    id, employee_id, year, stage, status,
    COALESCE(manager_id::text, ''), job_title, tov_level,
    what_value::text, what_veto, what_veto_reason, what_veto_item_id, what_grid, what_calibrated,
    how_value::text, how_veto, how_veto_reason, how_veto_item_id, how_grid, how_calibrated,
    COALESCE(employee_signed_by::text, ''), employee_signed_at,
    COALESCE(manager_signed_by::text, ''), manager_signed_at,
    rejection_feedback, created_at, updated_at`

func (s *Store) GetReview(ctx context.Context, reviewID string) (ReviewRecord, error) {
	row := s.DB.QueryRow(ctx, `
    SELECT `+reviewColumns+`
    FROM reviews
    WHERE id = $1
  `, reviewID)
	return scanReview(row)
}

func (s *Store) GetReviewByKey(ctx context.Context, employeeID string, year int, stage string) (ReviewRecord, error) {
	row := s.DB.QueryRow(ctx, `
    SELECT `+reviewColumns+`
    FROM reviews
    WHERE employee_id = $1 AND year = $2 AND stage = $3
  `, employeeID, year, stage)
	return scanReview(row)
}

func (s *Store) ListReviews(ctx context.Context, employeeID, managerID string, year int) ([]ReviewRecord, error) {
	query := `
    SELECT ` + reviewColumns + `
    FROM reviews
    WHERE 1=1`
	var args []any
	if employeeID != "" {
		args = append(args, employeeID)
		query += ` AND employee_id = $1`
	}
	if managerID != "" {
		args = append(args, managerID)
		query += ` AND employee_id IN (SELECT id FROM employees WHERE manager_id = $` + strconv.Itoa(len(args)) + `)`
	}
	if year > 0 {
		args = append(args, year)
		query += ` AND year = $` + strconv.Itoa(len(args))
	}
	query += ` ORDER BY year DESC, employee_id, stage`

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ReviewRecord
	for rows.Next() {
		rec, err := scanReview(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (s *Store) CreateReview(ctx context.Context, rec ReviewRecord) (string, error) {
	var id string
	err := s.DB.QueryRow(ctx, `
    INSERT INTO reviews (employee_id, year, stage, status, manager_id, job_title, tov_level)
    VALUES ($1,$2,$3,$4,NULLIF($5,'')::uuid,$6,$7)
    RETURNING id
  `, rec.EmployeeID, rec.Year, rec.Stage, rec.Status, rec.ManagerID, rec.JobTitle, rec.TOVLevel).Scan(&id)
	if err != nil {
		return "", err
	}
	return id, nil
}

// ResetReview returns an existing record to a clean draft: signatures,
// feedback and composites wiped, goal and competency scores cleared.
func (s *Store) ResetReview(ctx context.Context, reviewID string) error {
	if _, err := s.DB.Exec(ctx, `
    UPDATE reviews
    SET status = $1,
        employee_signed_by = NULL, employee_signed_at = NULL,
        manager_signed_by = NULL, manager_signed_at = NULL,
        rejection_feedback = '',
        what_value = NULL, what_veto = false, what_veto_reason = $2, what_veto_item_id = '', what_grid = NULL, what_calibrated = false,
        how_value = NULL, how_veto = false, how_veto_reason = $2, how_veto_item_id = '', how_grid = NULL, how_calibrated = false,
        updated_at = now()
    WHERE id = $3
  `, StatusDraft, scoring.VetoNone, reviewID); err != nil {
		return err
	}
	if _, err := s.DB.Exec(ctx, "UPDATE review_goals SET score = NULL WHERE review_id = $1", reviewID); err != nil {
		return err
	}
	_, err := s.DB.Exec(ctx, "UPDATE review_competencies SET score = NULL WHERE review_id = $1", reviewID)
	return err
}

func (s *Store) UpdateStatus(ctx context.Context, reviewID, expected, next string) error {
	tag, err := s.DB.Exec(ctx, `
    UPDATE reviews SET status = $1, updated_at = now()
    WHERE id = $2 AND status = $3
  `, next, reviewID, expected)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrStaleState
	}
	return nil
}

func (s *Store) SetSignature(ctx context.Context, reviewID, party, actorID string, at time.Time) error {
	column := "employee_signed"
	if party == PartyManager {
		column = "manager_signed"
	}
	_, err := s.DB.Exec(ctx, `
    UPDATE reviews SET `+column+`_by = $1, `+column+`_at = $2, updated_at = now()
    WHERE id = $3
  `, actorID, at, reviewID)
	return err
}

func (s *Store) ClearSignature(ctx context.Context, reviewID, party string) error {
	column := "employee_signed"
	if party == PartyManager {
		column = "manager_signed"
	}
	_, err := s.DB.Exec(ctx, `
    UPDATE reviews SET `+column+`_by = NULL, `+column+`_at = NULL, updated_at = now()
    WHERE id = $1
  `, reviewID)
	return err
}

func (s *Store) SetRejectionFeedback(ctx context.Context, reviewID, feedback string) error {
	_, err := s.DB.Exec(ctx, `
    UPDATE reviews SET rejection_feedback = $1, updated_at = now() WHERE id = $2
  `, feedback, reviewID)
	return err
}

func (s *Store) ListGoals(ctx context.Context, reviewID string) ([]Goal, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, review_id, title, kind, weight, score
    FROM review_goals
    WHERE review_id = $1
    ORDER BY position
  `, reviewID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Goal
	for rows.Next() {
		var g Goal
		if err := rows.Scan(&g.ID, &g.ReviewID, &g.Title, &g.Kind, &g.Weight, &g.Score); err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

func (s *Store) CreateGoal(ctx context.Context, reviewID, title, kind string, weight int) (string, error) {
	var id string
	err := s.DB.QueryRow(ctx, `
    INSERT INTO review_goals (review_id, title, kind, weight, position)
    VALUES ($1,$2,$3,$4, COALESCE((SELECT MAX(position)+1 FROM review_goals WHERE review_id = $1), 1))
    RETURNING id
  `, reviewID, title, kind, weight).Scan(&id)
	if err != nil {
		return "", err
	}
	return id, nil
}

func (s *Store) UpdateGoal(ctx context.Context, reviewID, goalID, title, kind string, weight int) error {
	_, err := s.DB.Exec(ctx, `
    UPDATE review_goals SET title = $1, kind = $2, weight = $3
    WHERE review_id = $4 AND id = $5
  `, title, kind, weight, reviewID, goalID)
	return err
}

func (s *Store) DeleteGoal(ctx context.Context, reviewID, goalID string) error {
	_, err := s.DB.Exec(ctx, "DELETE FROM review_goals WHERE review_id = $1 AND id = $2", reviewID, goalID)
	return err
}

func (s *Store) SetGoalScore(ctx context.Context, reviewID, goalID string, score int) error {
	_, err := s.DB.Exec(ctx, `
    UPDATE review_goals SET score = $1 WHERE review_id = $2 AND id = $3
  `, score, reviewID, goalID)
	return err
}

// CopyGoals carries the agreed goal plan into the next stage with scores
// reset, preserving the original ordering.
func (s *Store) CopyGoals(ctx context.Context, fromReviewID, toReviewID string) error {
	_, err := s.DB.Exec(ctx, `
    INSERT INTO review_goals (review_id, title, kind, weight, position)
    SELECT $1, title, kind, weight, position
    FROM review_goals
    WHERE review_id = $2
  `, toReviewID, fromReviewID)
	return err
}

func (s *Store) ListCompetencies(ctx context.Context, reviewID string) ([]Competency, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, review_id, name, score
    FROM review_competencies
    WHERE review_id = $1
    ORDER BY position
  `, reviewID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Competency
	for rows.Next() {
		var c Competency
		if err := rows.Scan(&c.ID, &c.ReviewID, &c.Name, &c.Score); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *Store) SetCompetencyScore(ctx context.Context, reviewID, competencyID string, score int) error {
	_, err := s.DB.Exec(ctx, `
    UPDATE review_competencies SET score = $1 WHERE review_id = $2 AND id = $3
  `, score, reviewID, competencyID)
	return err
}

func (s *Store) SeedCompetencies(ctx context.Context, reviewID string) error {
	for i, name := range competencyCatalogue {
		if _, err := s.DB.Exec(ctx, `
      INSERT INTO review_competencies (review_id, name, position)
      VALUES ($1,$2,$3)
      ON CONFLICT (review_id, name) DO NOTHING
    `, reviewID, name, i+1); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) SaveComposite(ctx context.Context, reviewID, field string, result scoring.CompositeResult) error {
	prefix := "what"
	if field == FieldHow {
		prefix = "how"
	}
	var value *string
	if result.Value != nil {
		fixed := result.Value.StringFixed(2)
		value = &fixed
	}
	_, err := s.DB.Exec(ctx, `
    UPDATE reviews SET
      `+prefix+`_value = $1::numeric,
      `+prefix+`_veto = $2,
      `+prefix+`_veto_reason = $3,
      `+prefix+`_veto_item_id = $4,
      `+prefix+`_grid = $5,
      `+prefix+`_calibrated = $6,
      updated_at = now()
    WHERE id = $7
  `, value, result.VetoActive, result.VetoReason, result.VetoItemID, result.GridPosition, result.Calibrated, reviewID)
	return err
}

func (s *Store) HeaderForYear(ctx context.Context, employeeID string, year int) (Header, bool, error) {
	var header Header
	err := s.DB.QueryRow(ctx, `
    SELECT COALESCE(manager_id::text, ''), job_title, tov_level
    FROM reviews
    WHERE employee_id = $1 AND year = $2
    ORDER BY CASE stage
      WHEN $3 THEN 1
      WHEN $4 THEN 2
      ELSE 3
    END
    LIMIT 1
  `, employeeID, year, StageEndYear, StageMidYear).Scan(&header.ManagerID, &header.JobTitle, &header.TOVLevel)
	if errors.Is(err, pgx.ErrNoRows) {
		return Header{}, false, nil
	}
	if err != nil {
		return Header{}, false, err
	}
	return header, true, nil
}

func (s *Store) EmployeeUserID(ctx context.Context, employeeID string) (string, error) {
	var userID string
	err := s.DB.QueryRow(ctx, "SELECT user_id FROM employees WHERE id = $1", employeeID).Scan(&userID)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", nil
	}
	return userID, err
}

func (s *Store) EmployeeIDByUserID(ctx context.Context, userID string) (string, error) {
	var employeeID string
	err := s.DB.QueryRow(ctx, "SELECT id FROM employees WHERE user_id = $1", userID).Scan(&employeeID)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", nil
	}
	return employeeID, err
}

func (s *Store) ManagerUserID(ctx context.Context, employeeID string) (string, error) {
	var userID string
	err := s.DB.QueryRow(ctx, `
    SELECT m.user_id
    FROM employees e
    JOIN employees m ON e.manager_id = m.id
    WHERE e.id = $1
  `, employeeID).Scan(&userID)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", nil
	}
	return userID, err
}

func (s *Store) IsManagerOfEmployee(ctx context.Context, employeeID, managerEmployeeID string) (bool, error) {
	var count int
	err := s.DB.QueryRow(ctx, `
    SELECT COUNT(1) FROM employees WHERE id = $1 AND manager_id = $2
  `, employeeID, managerEmployeeID).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func scanReview(row pgx.Row) (ReviewRecord, error) {
	var rec ReviewRecord
	var whatValue, howValue *string
	var whatGrid, howGrid *int
	err := row.Scan(
		&rec.ID, &rec.EmployeeID, &rec.Year, &rec.Stage, &rec.Status,
		&rec.ManagerID, &rec.JobTitle, &rec.TOVLevel,
		&whatValue, &rec.What.VetoActive, &rec.What.VetoReason, &rec.What.VetoItemID, &whatGrid, &rec.What.Calibrated,
		&howValue, &rec.How.VetoActive, &rec.How.VetoReason, &rec.How.VetoItemID, &howGrid, &rec.How.Calibrated,
		&rec.EmployeeSignedBy, &rec.EmployeeSignedAt,
		&rec.ManagerSignedBy, &rec.ManagerSignedAt,
		&rec.RejectionFeedback, &rec.CreatedAt, &rec.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return ReviewRecord{}, ErrNotFound
	}
	if err != nil {
		return ReviewRecord{}, err
	}
	rec.What.GridPosition = whatGrid
	rec.How.GridPosition = howGrid
	if whatValue != nil {
		value, err := decimal.NewFromString(*whatValue)
		if err != nil {
			return ReviewRecord{}, err
		}
		rec.What.Value = &value
	}
	if howValue != nil {
		value, err := decimal.NewFromString(*howValue)
		if err != nil {
			return ReviewRecord{}, err
		}
		rec.How.Value = &value
	}
	return rec, nil
}

