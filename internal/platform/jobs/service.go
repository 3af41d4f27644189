package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"appraisal/internal/domain/notifications"
	"appraisal/internal/domain/review"
	"appraisal/internal/platform/config"
	"appraisal/internal/platform/metrics"
)

const JobSignatureReminder = "signature_reminder"

type Service struct {
	DB        *pgxpool.Pool
	Cfg       config.Config
	Notify    *notifications.Service
	Collector *metrics.Collector
	queue     chan job
}

type job struct {
	Type string
	Run  func(context.Context) (any, error)
}

func New(db *pgxpool.Pool, cfg config.Config, notify *notifications.Service, collector *metrics.Collector) *Service {
	return &Service{
		DB:        db,
		Cfg:       cfg,
		Notify:    notify,
		Collector: collector,
		queue:     make(chan job, 128),
	}
}

func (s *Service) Start(ctx context.Context) {
	go s.worker(ctx)
	if s.Cfg.ReminderInterval > 0 {
		go s.scheduleReminders(ctx, s.Cfg.ReminderInterval)
	}
}

func (s *Service) Enqueue(jobType string, run func(context.Context) (any, error)) {
	select {
	case s.queue <- job{Type: jobType, Run: run}:
	default:
		slog.Warn("job queue full", "jobType", jobType)
	}
}

func (s *Service) RunNow(ctx context.Context, jobType string, run func(context.Context) (any, error)) (any, error) {
	return s.runJob(ctx, job{Type: jobType, Run: run})
}

func (s *Service) worker(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case j := <-s.queue:
			if _, err := s.runJob(ctx, j); err != nil {
				slog.Warn("job run failed", "jobType", j.Type, "err", err)
			}
		}
	}
}

func (s *Service) runJob(ctx context.Context, j job) (any, error) {
	runID := ""
	if err := s.DB.QueryRow(ctx, `
    INSERT INTO job_runs (job_type, status)
    VALUES ($1,$2)
    RETURNING id
  `, j.Type, "running").Scan(&runID); err != nil {
		slog.Warn("job run insert failed", "err", err)
	}

	details, err := j.Run(ctx)
	status := "completed"
	if err != nil {
		status = "failed"
	}
	detailsJSON, marshalErr := json.Marshal(details)
	if marshalErr != nil {
		slog.Warn("job details marshal failed", "err", marshalErr)
		detailsJSON = []byte("{}")
	}
	if runID != "" {
		if _, updErr := s.DB.Exec(ctx, `
      UPDATE job_runs
      SET status = $1, details_json = $2, completed_at = now()
      WHERE id = $3
    `, status, detailsJSON, runID); updErr != nil {
			slog.Warn("job run update failed", "err", updErr)
		}
	}
	return details, err
}

func (s *Service) scheduleReminders(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Enqueue(JobSignatureReminder, func(ctx context.Context) (any, error) {
				return s.RunSignatureReminders(ctx, time.Now())
			})
		}
	}
}

type pendingReview struct {
	reviewID   string
	employeeID string
	stage      string
	status     string
}

// RunSignatureReminders notifies the party whose signature has been pending
// longer than the configured age. Returns a per-status count for the job run
// details.
func (s *Service) RunSignatureReminders(ctx context.Context, now time.Time) (map[string]any, error) {
	cutoff := now.Add(-s.Cfg.ReminderPendingAge)
	rows, err := s.DB.Query(ctx, `
    SELECT id, employee_id, stage, status
    FROM reviews
    WHERE status IN ($1, $2) AND updated_at < $3
  `, review.StatusPendingEmployeeSig, review.StatusPendingManagerSig, cutoff)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var pending []pendingReview
	for rows.Next() {
		var p pendingReview
		if err := rows.Scan(&p.reviewID, &p.employeeID, &p.stage, &p.status); err != nil {
			return nil, err
		}
		pending = append(pending, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	reminded := map[string]any{"employee": 0, "manager": 0}
	for _, p := range pending {
		userID, party, err := s.pendingSigner(ctx, p)
		if err != nil {
			slog.Warn("reminder signer lookup failed", "reviewId", p.reviewID, "err", err)
			continue
		}
		if userID == "" {
			continue
		}

		title := "Review signature pending"
		body := fmt.Sprintf("A %s review is waiting for your signature.", p.stage)
		if err := s.Notify.Create(ctx, userID, notifications.TypeSignatureReminder, title, body); err != nil {
			slog.Warn("reminder notification failed", "reviewId", p.reviewID, "err", err)
			continue
		}
		if s.Collector != nil {
			s.Collector.IncReminder()
		}
		reminded[party] = reminded[party].(int) + 1
	}
	return reminded, nil
}

func (s *Service) pendingSigner(ctx context.Context, p pendingReview) (string, string, error) {
	if p.status == review.StatusPendingEmployeeSig {
		var userID string
		err := s.DB.QueryRow(ctx, "SELECT user_id FROM employees WHERE id = $1", p.employeeID).Scan(&userID)
		return userID, review.PartyEmployee, err
	}
	var userID string
	err := s.DB.QueryRow(ctx, `
    SELECT m.user_id
    FROM employees e
    JOIN employees m ON e.manager_id = m.id
    WHERE e.id = $1
  `, p.employeeID).Scan(&userID)
	return userID, review.PartyManager, err
}
