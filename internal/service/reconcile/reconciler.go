// Package reconcile implements the tenant-scoped principal reconciliation
// jobs: the single-tenant reconciler and the fleet orchestrator.
package reconcile

import (
	"context"
	"log/slog"

	"rbac-janitor/internal/domain"
)

// Report summarises one tenant's reconciliation run. Checked counts the
// non-cross-account principals submitted to the identity lookup; Removed
// lists the user ids whose records were deleted.
type Report struct {
	Checked int      `json:"checked"`
	Removed []string `json:"removed"`
}

// Reconciler removes a tenant's principal records that the external identity
// service no longer recognises. Cross-account principals are never checked
// or removed.
//
// Callers must not run two reconciliations for the same tenant concurrently;
// the batched read-then-delete assumes no concurrent writers to the tenant's
// principals.
type Reconciler struct {
	principals domain.PrincipalRepository
	lookup     domain.IdentityLookup
	audit      domain.AuditRepository
	mode       domain.AuthMode
	logger     *slog.Logger
}

// NewReconciler creates a Reconciler using the given auth mode for tenant
// identifier resolution.
func NewReconciler(
	principals domain.PrincipalRepository,
	lookup domain.IdentityLookup,
	audit domain.AuditRepository,
	mode domain.AuthMode,
	logger *slog.Logger,
) *Reconciler {
	return &Reconciler{
		principals: principals,
		lookup:     lookup,
		audit:      audit,
		mode:       mode,
		logger:     logger,
	}
}

// Reconcile lists the tenant's non-cross-account principals, issues one
// batched existence query, and deletes the principals the identity service
// did not confirm. On a non-success lookup status nothing is deleted and a
// LookupUnavailableError is returned; the batch is retried on the next run.
func (r *Reconciler) Reconcile(ctx context.Context, tenant *domain.Tenant) (Report, error) {
	externalID := tenant.ExternalID(r.mode)

	all, err := r.principals.ListByTenant(ctx, tenant.ID)
	if err != nil {
		return Report{}, err
	}

	var candidates []domain.Principal
	for _, p := range all {
		if p.CrossAccount {
			continue
		}
		candidates = append(candidates, p)
	}

	report := Report{Checked: len(candidates)}
	r.logger.Info("running clean up on principals",
		"tenant", externalID, "principals", len(all), "checked", len(candidates))
	if len(candidates) == 0 {
		return report, nil
	}

	userIDs := make([]string, len(candidates))
	for i, p := range candidates {
		userIDs[i] = p.UserID
	}

	result, err := r.lookup.QueryExisting(ctx, userIDs, tenant.Selector(r.mode))
	if err != nil {
		return report, err
	}
	if !result.OK() {
		// Deletion decisions come only from a confirmed batch response. The
		// batch stays untouched until the next scheduled run.
		r.logger.Warn("identity lookup unresolved, no change",
			"tenant", externalID, "status", result.Status.String(), "checked", len(candidates))
		return report, &domain.LookupUnavailableError{Tenant: externalID, Status: result.Status}
	}

	for _, p := range candidates {
		if result.Contains(p.UserID) {
			r.logger.Debug("user_id found, no change needed",
				"tenant", externalID, "user_id", p.UserID)
			continue
		}
		if err := r.principals.Delete(ctx, p.ID); err != nil {
			return report, err
		}
		report.Removed = append(report.Removed, p.UserID)
		r.logAudit(ctx, externalID, p.UserID)
		r.logger.Info("user_id not found, principal removed",
			"tenant", externalID, "user_id", p.UserID)
	}

	r.logger.Info("completed clean up of principals",
		"tenant", externalID, "checked", report.Checked, "removed", len(report.Removed))
	return report, nil
}

func (r *Reconciler) logAudit(ctx context.Context, tenant, userID string) {
	_ = r.audit.Insert(ctx, &domain.AuditEntry{
		Tenant:  tenant,
		Action:  domain.AuditActionRemovePrincipal,
		Subject: userID,
		Detail:  "not confirmed by identity service",
	})
}
