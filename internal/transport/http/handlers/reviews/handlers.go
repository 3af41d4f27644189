package reviewshandler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"appraisal/internal/domain/audit"
	"appraisal/internal/domain/auth"
	"appraisal/internal/domain/notifications"
	"appraisal/internal/domain/review"
	"appraisal/internal/platform/metrics"
	"appraisal/internal/requestctx"
	"appraisal/internal/transport/http/api"
	"appraisal/internal/transport/http/middleware"
	"appraisal/internal/transport/http/shared"
)

type Handler struct {
	Service   *review.Service
	Perms     middleware.PermissionStore
	Notify    *notifications.Service
	Audit     *audit.Service
	Collector *metrics.Collector
}

func NewHandler(service *review.Service, perms middleware.PermissionStore, notify *notifications.Service, auditSvc *audit.Service, collector *metrics.Collector) *Handler {
	return &Handler{Service: service, Perms: perms, Notify: notify, Audit: auditSvc, Collector: collector}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/reviews", func(r chi.Router) {
		r.With(middleware.RequirePermission(auth.PermReviewsRead, h.Perms)).Get("/", h.handleList)
		r.With(middleware.RequirePermission(auth.PermReviewsWrite, h.Perms)).Post("/", h.handleCreate)
		r.With(middleware.RequirePermission(auth.PermReviewsRead, h.Perms)).Get("/{reviewID}", h.handleGet)

		r.With(middleware.RequirePermission(auth.PermReviewsRead, h.Perms)).Get("/{reviewID}/goals", h.handleListGoals)
		r.With(middleware.RequirePermission(auth.PermReviewsWrite, h.Perms)).Post("/{reviewID}/goals", h.handleAddGoal)
		r.With(middleware.RequirePermission(auth.PermReviewsWrite, h.Perms)).Put("/{reviewID}/goals/{goalID}", h.handleUpdateGoal)
		r.With(middleware.RequirePermission(auth.PermReviewsWrite, h.Perms)).Delete("/{reviewID}/goals/{goalID}", h.handleDeleteGoal)
		r.With(middleware.RequirePermission(auth.PermReviewsWrite, h.Perms)).Put("/{reviewID}/goals/{goalID}/score", h.handleRateGoal)

		r.With(middleware.RequirePermission(auth.PermReviewsRead, h.Perms)).Get("/{reviewID}/competencies", h.handleListCompetencies)
		r.With(middleware.RequirePermission(auth.PermReviewsWrite, h.Perms)).Put("/{reviewID}/competencies/{competencyID}/score", h.handleRateCompetency)

		r.With(middleware.RequirePermission(auth.PermReviewsSign, h.Perms)).Post("/{reviewID}/submit", h.handleSubmit)
		r.With(middleware.RequirePermission(auth.PermReviewsSign, h.Perms)).Post("/{reviewID}/sign", h.handleSign)
		r.With(middleware.RequirePermission(auth.PermReviewsSign, h.Perms)).Post("/{reviewID}/reject", h.handleReject)
		r.With(middleware.RequirePermission(auth.PermReviewsAdvance, h.Perms)).Post("/{reviewID}/advance", h.handleAdvance)
	})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	year, ok := shared.ParseYear(r, "year")
	if !ok {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid year", middleware.GetRequestID(r.Context()))
		return
	}

	employeeID := ""
	managerEmployeeID := ""
	switch user.RoleName {
	case auth.RoleEmployee:
		employeeID = h.selfEmployeeID(r, user)
	case auth.RoleManager:
		managerEmployeeID = h.selfEmployeeID(r, user)
	}

	records, err := h.Service.List(r.Context(), employeeID, managerEmployeeID, year)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "review_list_failed", "failed to list reviews", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, records, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	var payload struct {
		EmployeeID string `json:"employeeId" validate:"required,uuid4"`
		Year       int    `json:"year" validate:"required,min=2000,max=2200"`
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

	// Opening a review year is a manager or HR action against a report,
	// never a self-service one.
	if user.RoleName == auth.RoleManager {
		managerEmployeeID := h.selfEmployeeID(r, user)
		manages, err := h.Service.IsManagerOfEmployee(r.Context(), payload.EmployeeID, managerEmployeeID)
		if err != nil || !manages {
			api.Fail(w, http.StatusForbidden, "forbidden", "not the employee's manager", middleware.GetRequestID(r.Context()))
			return
		}
	} else if user.RoleName == auth.RoleEmployee {
		api.Fail(w, http.StatusForbidden, "forbidden", "managers or hr open review years", middleware.GetRequestID(r.Context()))
		return
	}

	rec, err := h.Service.CreateGoalSetting(r.Context(), payload.EmployeeID, payload.Year)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "review_create_failed", "failed to create review", middleware.GetRequestID(r.Context()))
		return
	}

	h.record(r, user.UserID, audit.ActionReviewCreated, audit.EntityReview, rec.ID, nil, rec)
	if employeeUserID, err := h.Service.EmployeeUserID(r.Context(), rec.EmployeeID); err == nil && employeeUserID != "" {
		if err := h.Notify.Create(r.Context(), employeeUserID, notifications.TypeReviewCreated, "Review opened", "Your goal setting review has been opened."); err != nil {
			slog.Warn("review created notification failed", "err", err)
		}
	}

	api.Created(w, rec, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	_, rec, ok := h.loadAccessibleReview(w, r)
	if !ok {
		return
	}
	api.Success(w, rec, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleListGoals(w http.ResponseWriter, r *http.Request) {
	_, rec, ok := h.loadAccessibleReview(w, r)
	if !ok {
		return
	}
	goals, err := h.Service.Goals(r.Context(), rec.ID)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "goal_list_failed", "failed to list goals", middleware.GetRequestID(r.Context()))
		return
	}
	weightSum := 0
	for _, g := range goals {
		weightSum += g.Weight
	}
	api.Success(w, map[string]any{"goals": goals, "weightSum": weightSum}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleListCompetencies(w http.ResponseWriter, r *http.Request) {
	_, rec, ok := h.loadAccessibleReview(w, r)
	if !ok {
		return
	}
	competencies, err := h.Service.Competencies(r.Context(), rec.ID)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "competency_list_failed", "failed to list competencies", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, competencies, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleAddGoal(w http.ResponseWriter, r *http.Request) {
	user, rec, ok := h.loadAccessibleReview(w, r)
	if !ok {
		return
	}

	var payload struct {
		Title  string `json:"title" validate:"required"`
		Kind   string `json:"kind" validate:"required,oneof=standard kar scf"`
		Weight int    `json:"weight" validate:"required,min=1,max=100"`
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

	id, err := h.Service.AddGoal(r.Context(), rec.ID, payload.Title, payload.Kind, payload.Weight)
	if err != nil {
		h.failReviewError(w, r, err, "goal_create_failed", "failed to create goal")
		return
	}

	h.record(r, user.UserID, audit.ActionGoalChanged, audit.EntityGoal, id, nil, payload)
	api.Created(w, map[string]string{"id": id}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleUpdateGoal(w http.ResponseWriter, r *http.Request) {
	user, rec, ok := h.loadAccessibleReview(w, r)
	if !ok {
		return
	}
	goalID := chi.URLParam(r, "goalID")

	var payload struct {
		Title  string `json:"title" validate:"required"`
		Kind   string `json:"kind" validate:"required,oneof=standard kar scf"`
		Weight int    `json:"weight" validate:"required,min=1,max=100"`
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

	if err := h.Service.UpdateGoal(r.Context(), rec.ID, goalID, payload.Title, payload.Kind, payload.Weight); err != nil {
		h.failReviewError(w, r, err, "goal_update_failed", "failed to update goal")
		return
	}

	h.record(r, user.UserID, audit.ActionGoalChanged, audit.EntityGoal, goalID, nil, payload)
	api.Success(w, map[string]string{"id": goalID}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleDeleteGoal(w http.ResponseWriter, r *http.Request) {
	user, rec, ok := h.loadAccessibleReview(w, r)
	if !ok {
		return
	}
	goalID := chi.URLParam(r, "goalID")

	if err := h.Service.DeleteGoal(r.Context(), rec.ID, goalID); err != nil {
		h.failReviewError(w, r, err, "goal_delete_failed", "failed to delete goal")
		return
	}

	h.record(r, user.UserID, audit.ActionGoalChanged, audit.EntityGoal, goalID, map[string]string{"deleted": goalID}, nil)
	api.Success(w, map[string]string{"status": "deleted"}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleRateGoal(w http.ResponseWriter, r *http.Request) {
	user, rec, ok := h.loadAccessibleReview(w, r)
	if !ok {
		return
	}
	goalID := chi.URLParam(r, "goalID")

	var payload struct {
		Score int `json:"score" validate:"required,min=1,max=3"`
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

	composite, err := h.Service.RateGoal(r.Context(), rec.ID, goalID, payload.Score)
	if err != nil {
		h.failReviewError(w, r, err, "rating_failed", "failed to record rating")
		return
	}

	h.record(r, user.UserID, audit.ActionRatingWritten, audit.EntityGoal, goalID, nil, map[string]any{"score": payload.Score})
	api.Success(w, map[string]any{"what": composite}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleRateCompetency(w http.ResponseWriter, r *http.Request) {
	user, rec, ok := h.loadAccessibleReview(w, r)
	if !ok {
		return
	}
	competencyID := chi.URLParam(r, "competencyID")

	var payload struct {
		Score int `json:"score" validate:"required,min=1,max=3"`
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

	composite, err := h.Service.RateCompetency(r.Context(), rec.ID, competencyID, payload.Score)
	if err != nil {
		h.failReviewError(w, r, err, "rating_failed", "failed to record rating")
		return
	}

	h.record(r, user.UserID, audit.ActionRatingWritten, audit.EntityReview, rec.ID, nil, map[string]any{"competencyId": competencyID, "score": payload.Score})
	api.Success(w, map[string]any{"how": composite}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	user, rec, ok := h.loadAccessibleReview(w, r)
	if !ok {
		return
	}

	updated, err := h.Service.Submit(r.Context(), rec.ID)
	if err != nil {
		h.failReviewError(w, r, err, "review_submit_failed", "failed to submit review")
		return
	}

	h.record(r, user.UserID, audit.ActionReviewSubmitted, audit.EntityReview, rec.ID, map[string]string{"status": rec.Status}, map[string]string{"status": updated.Status})
	h.notifyPendingSigner(r, updated)
	api.Success(w, updated, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleSign(w http.ResponseWriter, r *http.Request) {
	user, rec, ok := h.loadAccessibleReview(w, r)
	if !ok {
		return
	}

	party, ok := h.signingParty(r, user, rec)
	if !ok {
		api.Fail(w, http.StatusForbidden, "forbidden", "only the employee or their manager can sign", middleware.GetRequestID(r.Context()))
		return
	}

	updated, err := h.Service.Sign(r.Context(), rec.ID, user.UserID, party)
	if err != nil {
		h.failReviewError(w, r, err, "review_sign_failed", "failed to sign review")
		return
	}

	if h.Collector != nil {
		h.Collector.IncSignature()
	}
	h.record(r, user.UserID, audit.ActionReviewSigned, audit.EntityReview, rec.ID, map[string]string{"status": rec.Status}, map[string]string{"status": updated.Status, "party": party})

	if updated.Status == review.StatusSigned || updated.Status == review.StatusArchived {
		h.notifyBothParties(r, updated, notifications.TypeReviewSigned, "Review signed", "The review has been signed by both parties.")
	} else {
		h.notifyPendingSigner(r, updated)
	}
	api.Success(w, updated, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleReject(w http.ResponseWriter, r *http.Request) {
	user, rec, ok := h.loadAccessibleReview(w, r)
	if !ok {
		return
	}

	party, ok := h.signingParty(r, user, rec)
	if !ok {
		api.Fail(w, http.StatusForbidden, "forbidden", "only the employee or their manager can reject", middleware.GetRequestID(r.Context()))
		return
	}

	var payload struct {
		Rationale string `json:"rationale" validate:"required"`
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

	updated, err := h.Service.Reject(r.Context(), rec.ID, party, payload.Rationale)
	if err != nil {
		h.failReviewError(w, r, err, "review_reject_failed", "failed to reject review")
		return
	}

	if h.Collector != nil {
		h.Collector.IncRejection()
	}
	h.record(r, user.UserID, audit.ActionReviewRejected, audit.EntityReview, rec.ID, map[string]string{"status": rec.Status}, map[string]string{"status": updated.Status, "party": party, "rationale": payload.Rationale})
	h.notifyCounterpart(r, updated, party, notifications.TypeReviewRejected, "Review rejected", "The review was sent back with feedback: "+payload.Rationale)
	api.Success(w, updated, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleAdvance(w http.ResponseWriter, r *http.Request) {
	user, rec, ok := h.loadAccessibleReview(w, r)
	if !ok {
		return
	}

	updated, err := h.Service.AdvanceStage(r.Context(), rec.ID)
	if err != nil {
		h.failReviewError(w, r, err, "review_advance_failed", "failed to advance review")
		return
	}

	h.record(r, user.UserID, audit.ActionReviewAdvanced, audit.EntityReview, rec.ID, map[string]string{"stage": rec.Stage, "status": rec.Status}, map[string]string{"stage": updated.Stage, "status": updated.Status})
	if employeeUserID, err := h.Service.EmployeeUserID(r.Context(), updated.EmployeeID); err == nil && employeeUserID != "" {
		if err := h.Notify.Create(r.Context(), employeeUserID, notifications.TypeStageAdvanced, "Review stage advanced", "Your review has moved to its next stage."); err != nil {
			slog.Warn("stage advanced notification failed", "err", err)
		}
	}
	api.Success(w, updated, middleware.GetRequestID(r.Context()))
}

// loadAccessibleReview fetches the review and enforces visibility: employees
// see their own records, managers their reports', HR and sysadmin everything.
func (h *Handler) loadAccessibleReview(w http.ResponseWriter, r *http.Request) (auth.UserContext, review.ReviewRecord, bool) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return auth.UserContext{}, review.ReviewRecord{}, false
	}

	reviewID := chi.URLParam(r, "reviewID")
	rec, err := h.Service.Get(r.Context(), reviewID)
	if err != nil {
		if errors.Is(err, review.ErrNotFound) {
			api.Fail(w, http.StatusNotFound, "not_found", "review not found", middleware.GetRequestID(r.Context()))
		} else {
			api.Fail(w, http.StatusInternalServerError, "review_load_failed", "failed to load review", middleware.GetRequestID(r.Context()))
		}
		return auth.UserContext{}, review.ReviewRecord{}, false
	}

	switch user.RoleName {
	case auth.RoleHR, auth.RoleSystemAdmin:
		return user, rec, true
	case auth.RoleEmployee:
		if h.selfEmployeeID(r, user) == rec.EmployeeID {
			return user, rec, true
		}
	case auth.RoleManager:
		selfID := h.selfEmployeeID(r, user)
		if selfID == rec.EmployeeID {
			return user, rec, true
		}
		manages, err := h.Service.IsManagerOfEmployee(r.Context(), rec.EmployeeID, selfID)
		if err == nil && manages {
			return user, rec, true
		}
	}

	api.Fail(w, http.StatusForbidden, "forbidden", "review belongs to another employee", middleware.GetRequestID(r.Context()))
	return auth.UserContext{}, review.ReviewRecord{}, false
}

func (h *Handler) signingParty(r *http.Request, user auth.UserContext, rec review.ReviewRecord) (string, bool) {
	selfID := h.selfEmployeeID(r, user)
	if selfID != "" && selfID == rec.EmployeeID {
		return review.PartyEmployee, true
	}
	if user.RoleName == auth.RoleManager || user.RoleName == auth.RoleHR {
		manages, err := h.Service.IsManagerOfEmployee(r.Context(), rec.EmployeeID, selfID)
		if err == nil && manages {
			return review.PartyManager, true
		}
		if user.RoleName == auth.RoleHR {
			// HR signs on the manager line when the manager is unavailable.
			return review.PartyManager, true
		}
	}
	return "", false
}

func (h *Handler) selfEmployeeID(r *http.Request, user auth.UserContext) string {
	id, err := h.Service.EmployeeIDByUserID(r.Context(), user.UserID)
	if err != nil {
		slog.Warn("employee lookup failed", "userId", user.UserID, "err", err)
		return ""
	}
	return id
}

func (h *Handler) notifyPendingSigner(r *http.Request, rec review.ReviewRecord) {
	var userID string
	var err error
	switch rec.Status {
	case review.StatusPendingEmployeeSig:
		userID, err = h.Service.EmployeeUserID(r.Context(), rec.EmployeeID)
	case review.StatusPendingManagerSig:
		userID, err = h.Service.ManagerUserID(r.Context(), rec.EmployeeID)
	default:
		return
	}
	if err != nil || userID == "" {
		return
	}
	if err := h.Notify.Create(r.Context(), userID, notifications.TypeSignatureRequested, "Signature requested", "A review is waiting for your signature."); err != nil {
		slog.Warn("signature request notification failed", "err", err)
	}
}

func (h *Handler) notifyBothParties(r *http.Request, rec review.ReviewRecord, ntype, title, body string) {
	if userID, err := h.Service.EmployeeUserID(r.Context(), rec.EmployeeID); err == nil && userID != "" {
		if err := h.Notify.Create(r.Context(), userID, ntype, title, body); err != nil {
			slog.Warn("review notification failed", "err", err)
		}
	}
	if userID, err := h.Service.ManagerUserID(r.Context(), rec.EmployeeID); err == nil && userID != "" {
		if err := h.Notify.Create(r.Context(), userID, ntype, title, body); err != nil {
			slog.Warn("review notification failed", "err", err)
		}
	}
}

func (h *Handler) notifyCounterpart(r *http.Request, rec review.ReviewRecord, party, ntype, title, body string) {
	var userID string
	var err error
	if party == review.PartyEmployee {
		userID, err = h.Service.ManagerUserID(r.Context(), rec.EmployeeID)
	} else {
		userID, err = h.Service.EmployeeUserID(r.Context(), rec.EmployeeID)
	}
	if err != nil || userID == "" {
		return
	}
	if err := h.Notify.Create(r.Context(), userID, ntype, title, body); err != nil {
		slog.Warn("review notification failed", "err", err)
	}
}

func (h *Handler) record(r *http.Request, actorID, action, entityType, entityID string, before, after any) {
	if err := h.Audit.Record(r.Context(), actorID, action, entityType, entityID, middleware.GetRequestID(r.Context()), requestctx.GetClientIP(r.Context()), before, after); err != nil {
		slog.Warn("audit record failed", "action", action, "err", err)
	}
}

// failReviewError maps domain failures onto the response taxonomy:
// validation problems carry field detail, state conflicts say to refresh,
// everything else is a plain 500.
func (h *Handler) failReviewError(w http.ResponseWriter, r *http.Request, err error, code, message string) {
	requestID := middleware.GetRequestID(r.Context())

	var weightErr *review.InvalidWeightError
	if errors.As(err, &weightErr) {
		api.FailWithDetails(w, http.StatusUnprocessableEntity, "invalid_weights", weightErr.Error(), map[string]any{"sum": weightErr.Sum}, requestID)
		return
	}
	var incompleteErr *review.IncompleteScoringError
	if errors.As(err, &incompleteErr) {
		api.FailWithDetails(w, http.StatusUnprocessableEntity, "incomplete_scores", incompleteErr.Error(), map[string]any{
			"field":   incompleteErr.Field,
			"itemIds": incompleteErr.MissingItemIDs,
		}, requestID)
		return
	}
	var transitionErr *review.InvalidTransitionError
	if errors.As(err, &transitionErr) {
		api.Fail(w, http.StatusConflict, "invalid_state", transitionErr.Error(), requestID)
		return
	}

	switch {
	case errors.Is(err, review.ErrNotFound):
		api.Fail(w, http.StatusNotFound, "not_found", "review not found", requestID)
	case errors.Is(err, review.ErrStaleState):
		api.Fail(w, http.StatusConflict, "stale_state", "review changed concurrently, refresh and retry", requestID)
	case errors.Is(err, review.ErrStageLocked):
		api.Fail(w, http.StatusConflict, "stage_locked", "review is not editable in its current status", requestID)
	case errors.Is(err, review.ErrMissingRationale):
		api.Fail(w, http.StatusBadRequest, "missing_rationale", "a rationale is required", requestID)
	default:
		api.Fail(w, http.StatusInternalServerError, code, message, requestID)
	}
}
