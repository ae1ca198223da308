// Package app wires the janitor's repositories, services, and jobs.
package app

import (
	"database/sql"
	"log/slog"

	"rbac-janitor/internal/api"
	"rbac-janitor/internal/config"
	"rbac-janitor/internal/db/repository"
	"rbac-janitor/internal/domain"
	"rbac-janitor/internal/identity"
	"rbac-janitor/internal/jobs"
	"rbac-janitor/internal/service/crossaccount"
	"rbac-janitor/internal/service/reconcile"
)

// Deps holds the external dependencies that main() must provide: database
// handles, config, and the logger. Lookup may be set to override the default
// HTTP identity client, which tests use to avoid a live identity service.
type Deps struct {
	Cfg     *config.Config
	WriteDB *sql.DB
	ReadDB  *sql.DB
	Lookup  domain.IdentityLookup
	Logger  *slog.Logger
}

// App holds the fully-wired application.
type App struct {
	Tenants     *repository.TenantRepo
	Principals  *repository.PrincipalRepo
	Requests    *repository.CrossAccountRequestRepo
	Audit       *repository.AuditRepo
	Reconciler  *reconcile.Reconciler
	Fleet       *reconcile.FleetReconciler
	Sweeper     *crossaccount.Sweeper
	Provisioner *crossaccount.Provisioner
	Handler     *api.Handler
	Scheduler   *jobs.Scheduler
}

// New wires all repositories and services from the provided deps.
func New(deps Deps) *App {
	cfg := deps.Cfg
	mode := cfg.AuthMode()

	tenants := repository.NewTenantRepo(deps.WriteDB)
	principals := repository.NewPrincipalRepo(deps.WriteDB)
	requests := repository.NewCrossAccountRequestRepo(deps.WriteDB)
	audit := repository.NewAuditRepo(deps.WriteDB)

	// Tenant resolution during jobs and API calls only reads, so it goes
	// through the read pool and stays clear of the single-writer connection.
	tenantsRead := repository.NewTenantRepo(deps.ReadDB)

	lookup := deps.Lookup
	if lookup == nil {
		lookup = identity.NewClient(cfg.Identity.BaseURL, cfg.Identity.Token, identity.Options{
			Timeout:        cfg.Identity.Timeout,
			RateLimitRPS:   cfg.Identity.RateLimitRPS,
			RateLimitBurst: cfg.Identity.RateLimitBurst,
		}, deps.Logger)
	}

	reconciler := reconcile.NewReconciler(principals, lookup, audit, mode,
		deps.Logger.With("component", "reconciler"))
	fleet := reconcile.NewFleetReconciler(tenantsRead, reconciler, cfg.FleetConcurrency,
		deps.Logger.With("component", "fleet"))
	sweeper := crossaccount.NewSweeper(requests, audit,
		deps.Logger.With("component", "sweeper"))
	provisioner := crossaccount.NewProvisioner(tenantsRead, principals, audit, mode,
		deps.Logger.With("component", "provisioner"))

	handler := api.NewHandler(tenantsRead, reconciler, fleet, sweeper, provisioner, deps.Logger)
	scheduler := jobs.NewScheduler(fleet, sweeper, deps.Logger.With("component", "scheduler"))

	return &App{
		Tenants:     tenants,
		Principals:  principals,
		Requests:    requests,
		Audit:       audit,
		Reconciler:  reconciler,
		Fleet:       fleet,
		Sweeper:     sweeper,
		Provisioner: provisioner,
		Handler:     handler,
		Scheduler:   scheduler,
	}
}
