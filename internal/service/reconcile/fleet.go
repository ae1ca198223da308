package reconcile

import (
	"context"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	"rbac-janitor/internal/domain"
)

// FleetReport summarises a fleet-wide reconciliation run.
type FleetReport struct {
	Tenants int `json:"tenants"`
	Checked int `json:"checked"`
	Removed int `json:"removed"`
	Failed  int `json:"failed"`
}

// FleetReconciler runs the principal reconciler across every tenant in the
// store. Tenant failures are logged and isolated; one tenant's lookup outage
// never aborts the others.
type FleetReconciler struct {
	tenants     domain.TenantRepository
	reconciler  *Reconciler
	concurrency int
	logger      *slog.Logger
}

// NewFleetReconciler creates a FleetReconciler. concurrency bounds the
// number of tenants reconciled in parallel; values below 1 mean sequential.
// Tenant scopes are disjoint, so fan-out across tenants is safe.
func NewFleetReconciler(tenants domain.TenantRepository, reconciler *Reconciler, concurrency int, logger *slog.Logger) *FleetReconciler {
	if concurrency < 1 {
		concurrency = 1
	}
	return &FleetReconciler{
		tenants:     tenants,
		reconciler:  reconciler,
		concurrency: concurrency,
		logger:      logger,
	}
}

// ReconcileAll snapshots the tenant list and reconciles each tenant.
// Tenants added mid-run are picked up by the next run. The returned error is
// non-nil only when the tenant list itself cannot be loaded.
func (f *FleetReconciler) ReconcileAll(ctx context.Context) (FleetReport, error) {
	f.logger.Info("start principal clean up")

	// Snapshot before iterating so tenants created mid-run are not
	// reprocessed within the same unit of work.
	tenants, err := f.tenants.List(ctx)
	if err != nil {
		return FleetReport{}, err
	}

	report := FleetReport{Tenants: len(tenants)}
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(f.concurrency)

	for _, tenant := range tenants {
		tenant := tenant
		g.Go(func() error {
			tenantReport, err := f.reconciler.Reconcile(gctx, &tenant)

			mu.Lock()
			defer mu.Unlock()
			report.Checked += tenantReport.Checked
			report.Removed += len(tenantReport.Removed)
			if err != nil {
				report.Failed++
				f.logger.Error("principal clean up failed for tenant",
					"tenant", tenant.TenantName, "error", err)
			}
			// Never propagate: per-tenant failures must not stop the loop.
			return nil
		})
	}
	_ = g.Wait()

	f.logger.Info("completed principal clean up",
		"tenants", report.Tenants, "checked", report.Checked,
		"removed", report.Removed, "failed", report.Failed)
	return report, nil
}
