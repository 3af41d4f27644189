package server

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"appraisal/internal/domain/audit"
	"appraisal/internal/domain/auth"
	"appraisal/internal/domain/calibration"
	"appraisal/internal/domain/notifications"
	"appraisal/internal/domain/reports"
	"appraisal/internal/domain/review"
	"appraisal/internal/platform/config"
	cryptoutil "appraisal/internal/platform/crypto"
	"appraisal/internal/platform/db"
	"appraisal/internal/platform/email"
	"appraisal/internal/platform/jobs"
	"appraisal/internal/platform/metrics"
	audithandler "appraisal/internal/transport/http/handlers/audit"
	authhandler "appraisal/internal/transport/http/handlers/auth"
	calibrationhandler "appraisal/internal/transport/http/handlers/calibration"
	notificationshandler "appraisal/internal/transport/http/handlers/notifications"
	reportshandler "appraisal/internal/transport/http/handlers/reports"
	reviewshandler "appraisal/internal/transport/http/handlers/reviews"
	"appraisal/internal/transport/http/api"
	"appraisal/internal/transport/http/middleware"
)

type App struct {
	Config config.Config
	DB     *pgxpool.Pool
	Router http.Handler

	jobs *jobs.Service
}

// New wires the full application: pool, migrations, seed, domain services
// and the HTTP router. Close releases the pool.
func New(ctx context.Context, cfg config.Config) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	pool, err := db.Connect(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("db connect failed: %w", err)
	}

	if cfg.RunMigrations {
		if err := db.Migrate(ctx, pool, "migrations"); err != nil {
			pool.Close()
			return nil, fmt.Errorf("migrations failed: %w", err)
		}
	}
	if cfg.RunSeed {
		if err := db.Seed(ctx, pool, cfg); err != nil {
			pool.Close()
			return nil, fmt.Errorf("seed failed: %w", err)
		}
	}

	crypto, err := cryptoutil.New(cfg.DataEncryptionKey)
	if err != nil {
		pool.Close()
		return nil, err
	}

	collector := metrics.New()
	authService := auth.NewService(auth.NewStore(pool))
	mailer := email.New(email.Options{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		User:     cfg.SMTPUser,
		Password: cfg.SMTPPassword,
		UseTLS:   cfg.SMTPUseTLS,
	})
	notifyService := notifications.New(notifications.NewStore(pool), mailer)
	auditService := audit.New(pool)

	reviewStore := review.NewStore(pool)
	reviewService := review.NewService(reviewStore)
	calibrationService := calibration.NewService(calibration.NewStore(pool), reviewStore)
	reportsService := reports.NewService(reports.NewStore(pool), crypto)

	jobService := jobs.New(pool, cfg, notifyService, collector)
	idempotency := middleware.NewIdempotencyStore(pool)
	perms := auth.NewStore(pool)

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(middleware.SecureHeaders(cfg.Environment == "production"))
	router.Use(middleware.BodyLimit(cfg.MaxBodyBytes))
	router.Use(middleware.Auth(cfg.JWTSecret))
	router.Use(middleware.SensitiveMutationRateLimit(cfg.RateLimitPerMinute, time.Minute))
	if cfg.MetricsEnabled {
		router.Use(middleware.Metrics(collector))
	}

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	router.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := pool.Ping(ctx); err != nil {
			http.Error(w, "db not ready", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	router.Route("/api/v1", func(r chi.Router) {
		authhandler.NewHandler(authService, cfg.JWTSecret).RegisterRoutes(r)
		reviewshandler.NewHandler(reviewService, perms, notifyService, auditService, collector).RegisterRoutes(r)
		calibrationhandler.NewHandler(calibrationService, reviewService, perms, notifyService, auditService, collector, idempotency).RegisterRoutes(r)
		reportshandler.NewHandler(reportsService, perms).RegisterRoutes(r)
		notificationshandler.NewHandler(notifyService).RegisterRoutes(r)
		audithandler.NewHandler(auditService, perms).RegisterRoutes(r)

		r.With(middleware.RequirePermission(auth.PermSystemAdmin, perms)).Get("/admin/metrics", func(w http.ResponseWriter, req *http.Request) {
			api.Success(w, collector.Snapshot(), middleware.GetRequestID(req.Context()))
		})
		r.With(middleware.RequirePermission(auth.PermSystemAdmin, perms)).Post("/jobs/reminders/run", func(w http.ResponseWriter, req *http.Request) {
			details, err := jobService.RunNow(req.Context(), jobs.JobSignatureReminder, func(ctx context.Context) (any, error) {
				return jobService.RunSignatureReminders(ctx, time.Now().UTC())
			})
			if err != nil {
				api.Fail(w, http.StatusInternalServerError, "job_failed", "reminder run failed", middleware.GetRequestID(req.Context()))
				return
			}
			api.Success(w, details, middleware.GetRequestID(req.Context()))
		})
	})

	return &App{Config: cfg, DB: pool, Router: router, jobs: jobService}, nil
}

func (a *App) Close() {
	if a.DB != nil {
		a.DB.Close()
	}
}

// Run blocks serving HTTP until the listener fails.
func Run() {
	cfg := config.Load()

	ctx := context.Background()
	app, err := New(ctx, cfg)
	if err != nil {
		log.Fatalf("startup failed: %v", err)
	}
	defer app.Close()

	app.jobs.Start(ctx)

	slog.Info("appraisal server listening", "addr", cfg.Addr, "env", cfg.Environment)
	if err := http.ListenAndServe(cfg.Addr, app.Router); err != nil {
		log.Fatalf("server failed: %v", err)
	}
}
