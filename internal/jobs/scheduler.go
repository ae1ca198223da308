// Package jobs schedules the periodic janitor jobs.
package jobs

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/robfig/cron/v3"

	"rbac-janitor/internal/service/crossaccount"
	"rbac-janitor/internal/service/reconcile"
)

// Scheduler runs the fleet reconciliation and expiry sweep on cron
// schedules. Each firing is an independent unit of work over the store; job
// errors are logged and the schedule keeps running.
type Scheduler struct {
	cron    *cron.Cron
	fleet   *reconcile.FleetReconciler
	sweeper *crossaccount.Sweeper
	logger  *slog.Logger
}

// NewScheduler creates a Scheduler.
func NewScheduler(fleet *reconcile.FleetReconciler, sweeper *crossaccount.Sweeper, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		cron:    cron.New(),
		fleet:   fleet,
		sweeper: sweeper,
		logger:  logger,
	}
}

// Start registers the jobs under the given cron specs and starts the
// scheduler. An empty spec disables that job.
func (s *Scheduler) Start(reconcileSpec, expirySpec string) error {
	if reconcileSpec != "" {
		if _, err := s.cron.AddFunc(reconcileSpec, s.runReconcile); err != nil {
			return fmt.Errorf("invalid reconcile schedule %q: %w", reconcileSpec, err)
		}
		s.logger.Info("scheduled principal reconciliation", "schedule", reconcileSpec)
	}
	if expirySpec != "" {
		if _, err := s.cron.AddFunc(expirySpec, s.runExpiry); err != nil {
			return fmt.Errorf("invalid expiry schedule %q: %w", expirySpec, err)
		}
		s.logger.Info("scheduled cross-account expiry sweep", "schedule", expirySpec)
	}

	s.cron.Start()
	s.logger.Info("job scheduler started")
	return nil
}

// Stop gracefully stops the scheduler. Jobs already running complete.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("job scheduler stopped")
}

func (s *Scheduler) runReconcile() {
	if _, err := s.fleet.ReconcileAll(context.Background()); err != nil {
		s.logger.Error("scheduled principal reconciliation failed", "error", err)
	}
}

func (s *Scheduler) runExpiry() {
	if _, err := s.sweeper.SweepExpired(context.Background()); err != nil {
		s.logger.Error("scheduled expiry sweep failed", "error", err)
	}
}
