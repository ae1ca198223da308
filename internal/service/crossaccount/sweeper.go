// Package crossaccount implements the cross-account request expiry sweep and
// cross-account principal provisioning.
package crossaccount

import (
	"context"
	"log/slog"
	"time"

	"rbac-janitor/internal/domain"
)

// SweepReport summarises one expiry sweep. Checked counts the
// pending/approved requests examined; Expired lists the request ids that
// were transitioned.
type SweepReport struct {
	Checked int      `json:"checked"`
	Expired []string `json:"expired"`
}

// Sweeper marks pending and approved cross-account requests as expired once
// their end date has passed. Each transition is persisted immediately, so a
// failure partway through leaves already-updated rows expired and the rest
// to be completed by the next scheduled run.
type Sweeper struct {
	requests domain.CrossAccountRequestRepository
	audit    domain.AuditRepository
	logger   *slog.Logger
	now      func() time.Time
}

// NewSweeper creates a Sweeper.
func NewSweeper(requests domain.CrossAccountRequestRepository, audit domain.AuditRepository, logger *slog.Logger) *Sweeper {
	return &Sweeper{
		requests: requests,
		audit:    audit,
		logger:   logger,
		now:      time.Now,
	}
}

// SweepExpired scans pending and approved requests and expires those whose
// end date is strictly before now. Expired is terminal: rows already expired
// are never reconsidered because they fall outside the scanned status set.
func (s *Sweeper) SweepExpired(ctx context.Context) (SweepReport, error) {
	cars, err := s.requests.ListByStatuses(ctx, domain.ExpirableStatuses)
	if err != nil {
		return SweepReport{}, err
	}

	report := SweepReport{Checked: len(cars)}
	s.logger.Info("running expiry check on cross-account requests", "checked", len(cars))

	now := s.now().UTC()
	for _, car := range cars {
		s.logger.Debug("checking for expiration of cross-account request", "request", car.ID)
		if !car.Expired(now) {
			continue
		}
		if err := s.requests.SetStatus(ctx, car.ID, domain.StatusExpired); err != nil {
			// Partial progress stands; the next run picks up the remainder.
			return report, err
		}
		report.Expired = append(report.Expired, car.ID)
		s.logAudit(ctx, &car)
		s.logger.Info("expired cross-account request", "request", car.ID)
	}

	s.logger.Info("completed clean up of cross-account requests",
		"checked", report.Checked, "expired", len(report.Expired))
	return report, nil
}

func (s *Sweeper) logAudit(ctx context.Context, car *domain.CrossAccountRequest) {
	tenant := car.TargetOrg
	if tenant == "" {
		tenant = domain.TenantNameForAccount(car.TargetAccount)
	}
	_ = s.audit.Insert(ctx, &domain.AuditEntry{
		Tenant:  tenant,
		Action:  domain.AuditActionExpireRequest,
		Subject: car.ID,
		Detail:  "end date " + car.EndDate.UTC().Format(time.RFC3339) + " passed",
	})
}
