package reportshandler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"appraisal/internal/domain/auth"
	"appraisal/internal/domain/reports"
	"appraisal/internal/domain/review"
	"appraisal/internal/transport/http/api"
	"appraisal/internal/transport/http/middleware"
	"appraisal/internal/transport/http/shared"
)

type Handler struct {
	Service *reports.Service
	Perms   middleware.PermissionStore
}

func NewHandler(service *reports.Service, perms middleware.PermissionStore) *Handler {
	return &Handler{Service: service, Perms: perms}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/reports", func(r chi.Router) {
		r.With(middleware.RequirePermission(auth.PermReportsRead, h.Perms)).Get("/distribution", h.handleDistribution)
		r.With(middleware.RequirePermission(auth.PermReportsRead, h.Perms)).Get("/completion", h.handleCompletion)
		r.With(middleware.RequirePermission(auth.PermReportsRead, h.Perms)).Get("/reviews/{reviewID}/summary.pdf", h.handleReviewSummary)
	})
}

func (h *Handler) handleDistribution(w http.ResponseWriter, r *http.Request) {
	year, ok := shared.ParseYear(r, "year")
	if !ok || year == 0 {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "year query parameter is required", middleware.GetRequestID(r.Context()))
		return
	}

	distribution, err := h.Service.GridDistribution(r.Context(), year)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "report_failed", "failed to build distribution", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, distribution, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleCompletion(w http.ResponseWriter, r *http.Request) {
	year, ok := shared.ParseYear(r, "year")
	if !ok || year == 0 {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "year query parameter is required", middleware.GetRequestID(r.Context()))
		return
	}

	rows, err := h.Service.Completion(r.Context(), year)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "report_failed", "failed to build completion report", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, rows, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleReviewSummary(w http.ResponseWriter, r *http.Request) {
	reviewID := chi.URLParam(r, "reviewID")

	data, filename, err := h.Service.ReviewSummaryDocument(r.Context(), reviewID)
	if err != nil {
		if errors.Is(err, review.ErrNotFound) {
			api.Fail(w, http.StatusNotFound, "not_found", "review not found", middleware.GetRequestID(r.Context()))
			return
		}
		api.Fail(w, http.StatusInternalServerError, "report_failed", "failed to render review summary", middleware.GetRequestID(r.Context()))
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", "attachment; filename="+filename)
	if _, err := w.Write(data); err != nil {
		slog.Warn("review summary write failed", "err", err)
	}
}
