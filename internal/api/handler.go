// Package api provides HTTP handlers for the janitor admin API.
package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"rbac-janitor/internal/domain"
	"rbac-janitor/internal/middleware"
	"rbac-janitor/internal/service/crossaccount"
	"rbac-janitor/internal/service/reconcile"
)

// Handler exposes the janitor's job triggers and cross-account provisioning
// over HTTP. All endpoints are synchronous: the response carries the report
// of the run it triggered.
type Handler struct {
	tenants     domain.TenantRepository
	reconciler  *reconcile.Reconciler
	fleet       *reconcile.FleetReconciler
	sweeper     *crossaccount.Sweeper
	provisioner *crossaccount.Provisioner
	logger      *slog.Logger
}

// NewHandler creates a Handler with all required service dependencies.
func NewHandler(
	tenants domain.TenantRepository,
	reconciler *reconcile.Reconciler,
	fleet *reconcile.FleetReconciler,
	sweeper *crossaccount.Sweeper,
	provisioner *crossaccount.Provisioner,
	logger *slog.Logger,
) *Handler {
	return &Handler{
		tenants:     tenants,
		reconciler:  reconciler,
		fleet:       fleet,
		sweeper:     sweeper,
		provisioner: provisioner,
		logger:      logger.With("component", "api"),
	}
}

// Routes builds the router. Rate limiting is left to the caller so tests
// can exercise handlers without a limiter in the way.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)

	r.Get("/healthz", h.health)
	r.Route("/v1", func(r chi.Router) {
		r.Post("/jobs/principal-reconciliation", h.triggerReconciliation)
		r.Post("/jobs/cross-account-expiry", h.triggerExpirySweep)
		r.Post("/cross-account-principals", h.provisionCrossAccount)
	})
	return r
}

func (h *Handler) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// triggerReconciliation runs the principal reconciler. With ?tenant= it
// reconciles that single tenant; without, it runs the whole fleet.
func (h *Handler) triggerReconciliation(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if name := r.URL.Query().Get("tenant"); name != "" {
		tenant, err := h.tenants.GetByName(ctx, name)
		if err != nil {
			h.writeError(w, r, err)
			return
		}
		report, err := h.reconciler.Reconcile(ctx, tenant)
		if err != nil {
			h.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, report)
		return
	}

	report, err := h.fleet.ReconcileAll(ctx)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (h *Handler) triggerExpirySweep(w http.ResponseWriter, r *http.Request) {
	report, err := h.sweeper.SweepExpired(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

type provisionPayload struct {
	UserID string `json:"user_id"`
	Target string `json:"target"`
}

type principalResponse struct {
	ID           string `json:"id"`
	UserID       string `json:"user_id"`
	TenantID     string `json:"tenant_id"`
	CrossAccount bool   `json:"cross_account"`
}

func (h *Handler) provisionCrossAccount(w http.ResponseWriter, r *http.Request) {
	var payload provisionPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		h.writeError(w, r, domain.ErrValidation("invalid JSON body"))
		return
	}

	principal, err := h.provisioner.Provision(r.Context(), payload.UserID, payload.Target)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, principalResponse{
		ID:           principal.ID,
		UserID:       principal.UserID,
		TenantID:     principal.TenantID,
		CrossAccount: principal.CrossAccount,
	})
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := httpStatusFromDomainError(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error("request failed",
			"request_id", middleware.RequestIDFromContext(r.Context()),
			"path", r.URL.Path, "error", err)
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
