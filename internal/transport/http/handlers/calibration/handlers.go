package calibrationhandler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"appraisal/internal/domain/audit"
	"appraisal/internal/domain/auth"
	"appraisal/internal/domain/calibration"
	"appraisal/internal/domain/notifications"
	"appraisal/internal/domain/review"
	"appraisal/internal/platform/metrics"
	"appraisal/internal/requestctx"
	"appraisal/internal/transport/http/api"
	"appraisal/internal/transport/http/middleware"
	"appraisal/internal/transport/http/shared"
)

type Handler struct {
	Service     *calibration.Service
	Reviews     *review.Service
	Perms       middleware.PermissionStore
	Notify      *notifications.Service
	Audit       *audit.Service
	Collector   *metrics.Collector
	Idempotency *middleware.IdempotencyStore
}

func NewHandler(service *calibration.Service, reviews *review.Service, perms middleware.PermissionStore, notify *notifications.Service, auditSvc *audit.Service, collector *metrics.Collector, idempotency *middleware.IdempotencyStore) *Handler {
	return &Handler{Service: service, Reviews: reviews, Perms: perms, Notify: notify, Audit: auditSvc, Collector: collector, Idempotency: idempotency}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/calibration", func(r chi.Router) {
		r.Use(middleware.RequirePermission(auth.PermCalibrationManage, h.Perms))
		r.Get("/sessions", h.handleListSessions)
		r.Post("/sessions", h.handleCreateSession)
		r.Get("/sessions/{sessionID}", h.handleGetSession)
		r.Post("/sessions/{sessionID}/start", h.handleStartSession)
		r.Post("/sessions/{sessionID}/complete", h.handleCompleteSession)
		r.Get("/sessions/{sessionID}/overrides", h.handleListOverrides)
		r.Post("/sessions/{sessionID}/overrides", h.handleApplyOverride)
		r.Get("/reviews/{reviewID}/adjustments", h.handleReviewAdjustments)
	})
}

func (h *Handler) handleListSessions(w http.ResponseWriter, r *http.Request) {
	year, ok := shared.ParseYear(r, "year")
	if !ok {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid year", middleware.GetRequestID(r.Context()))
		return
	}
	sessions, err := h.Service.ListSessions(r.Context(), year)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "session_list_failed", "failed to list sessions", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, sessions, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	var payload struct {
		Name string `json:"name" validate:"required"`
		Year int    `json:"year" validate:"required,min=2000,max=2200"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	v := shared.NewValidator()
	v.Struct(payload)
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	session, err := h.Service.CreateSession(r.Context(), payload.Name, payload.Year, user.UserID)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "session_create_failed", "failed to create session", middleware.GetRequestID(r.Context()))
		return
	}

	h.record(r, user.UserID, audit.ActionSessionChanged, session.ID, nil, session)
	api.Created(w, session, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleGetSession(w http.ResponseWriter, r *http.Request) {
	session, err := h.Service.GetSession(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		h.failCalibrationError(w, r, err)
		return
	}
	api.Success(w, session, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleStartSession(w http.ResponseWriter, r *http.Request) {
	h.changeSessionStatus(w, r, h.Service.StartSession, calibration.SessionInProgress)
}

func (h *Handler) handleCompleteSession(w http.ResponseWriter, r *http.Request) {
	h.changeSessionStatus(w, r, h.Service.CompleteSession, calibration.SessionCompleted)
}

func (h *Handler) handleListOverrides(w http.ResponseWriter, r *http.Request) {
	adjustments, err := h.Service.Adjustments(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		h.failCalibrationError(w, r, err)
		return
	}
	api.Success(w, adjustments, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleReviewAdjustments(w http.ResponseWriter, r *http.Request) {
	adjustments, err := h.Service.AdjustmentsForReview(r.Context(), chi.URLParam(r, "reviewID"))
	if err != nil {
		h.failCalibrationError(w, r, err)
		return
	}
	api.Success(w, adjustments, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleApplyOverride(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}
	sessionID := chi.URLParam(r, "sessionID")

	raw, err := io.ReadAll(io.LimitReader(r.Body, 64*1024))
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	r.Body = io.NopCloser(bytes.NewReader(raw))

	var payload struct {
		ReviewID  string `json:"reviewId" validate:"required,uuid4"`
		Field     string `json:"field" validate:"required,oneof=what how"`
		Value     string `json:"value" validate:"required"`
		Rationale string `json:"rationale" validate:"required"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	v := shared.NewValidator()
	v.Struct(payload)
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	value, err := decimal.NewFromString(payload.Value)
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "value must be a decimal number", middleware.GetRequestID(r.Context()))
		return
	}

	// The adjustment ledger is append only, so a retried request must not
	// write a second row.
	idempotencyKey := r.Header.Get("Idempotency-Key")
	requestHash := middleware.RequestHash(raw)
	if idempotencyKey != "" {
		stored, found, err := h.Idempotency.Check(r.Context(), user.UserID, "calibration.override", idempotencyKey, requestHash)
		if err != nil {
			if errors.Is(err, middleware.ErrIdempotencyConflict) {
				api.Fail(w, http.StatusConflict, "idempotency_conflict", "idempotency key was used with a different payload", middleware.GetRequestID(r.Context()))
				return
			}
			api.Fail(w, http.StatusInternalServerError, "idempotency_error", "idempotency check failed", middleware.GetRequestID(r.Context()))
			return
		}
		if found {
			api.Success(w, stored, middleware.GetRequestID(r.Context()))
			return
		}
	}

	adjustment, err := h.Service.ApplyOverride(r.Context(), sessionID, payload.ReviewID, payload.Field, value, payload.Rationale, user.UserID)
	if err != nil {
		h.failCalibrationError(w, r, err)
		return
	}

	if h.Collector != nil {
		h.Collector.IncCalibration()
	}
	h.record(r, user.UserID, audit.ActionCalibrationApplied, sessionID, nil, adjustment)

	if rec, lookupErr := h.Reviews.Get(r.Context(), payload.ReviewID); lookupErr == nil {
		if employeeUserID, lookupErr := h.Reviews.EmployeeUserID(r.Context(), rec.EmployeeID); lookupErr == nil && employeeUserID != "" {
			if err := h.Notify.Create(r.Context(), employeeUserID, notifications.TypeScoreCalibrated, "Score calibrated", "A calibration adjustment was applied to your review."); err != nil {
				slog.Warn("calibration notification failed", "err", err)
			}
		}
	}

	if idempotencyKey != "" {
		encoded, err := json.Marshal(adjustment)
		if err == nil {
			if err := h.Idempotency.Save(r.Context(), user.UserID, "calibration.override", idempotencyKey, requestHash, encoded); err != nil {
				slog.Warn("idempotency save failed", "err", err)
			}
		}
	}

	api.Created(w, adjustment, middleware.GetRequestID(r.Context()))
}

func (h *Handler) changeSessionStatus(w http.ResponseWriter, r *http.Request, change func(ctx context.Context, sessionID string) error, next string) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}
	sessionID := chi.URLParam(r, "sessionID")

	if err := change(r.Context(), sessionID); err != nil {
		h.failCalibrationError(w, r, err)
		return
	}

	h.record(r, user.UserID, audit.ActionSessionChanged, sessionID, nil, map[string]string{"status": next})
	api.Success(w, map[string]string{"status": next}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) record(r *http.Request, actorID, action, entityID string, before, after any) {
	if err := h.Audit.Record(r.Context(), actorID, action, audit.EntityCalibration, entityID, middleware.GetRequestID(r.Context()), requestctx.GetClientIP(r.Context()), before, after); err != nil {
		slog.Warn("audit record failed", "action", action, "err", err)
	}
}

func (h *Handler) failCalibrationError(w http.ResponseWriter, r *http.Request, err error) {
	requestID := middleware.GetRequestID(r.Context())
	switch {
	case errors.Is(err, calibration.ErrSessionNotFound):
		api.Fail(w, http.StatusNotFound, "not_found", "calibration session not found", requestID)
	case errors.Is(err, review.ErrNotFound):
		api.Fail(w, http.StatusNotFound, "not_found", "review not found", requestID)
	case errors.Is(err, calibration.ErrSessionNotActive):
		api.Fail(w, http.StatusConflict, "session_not_active", "calibration session is not accepting overrides", requestID)
	case errors.Is(err, calibration.ErrMissingRationale):
		api.Fail(w, http.StatusBadRequest, "missing_rationale", "a rationale is required", requestID)
	case errors.Is(err, calibration.ErrValueOutOfRange):
		api.Fail(w, http.StatusUnprocessableEntity, "value_out_of_range", "override value must be between 1.00 and 3.00", requestID)
	case errors.Is(err, calibration.ErrUnknownField):
		api.Fail(w, http.StatusBadRequest, "unknown_field", "field must be what or how", requestID)
	default:
		api.Fail(w, http.StatusInternalServerError, "calibration_failed", "calibration operation failed", requestID)
	}
}
