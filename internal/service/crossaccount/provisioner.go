package crossaccount

import (
	"context"
	"errors"
	"log/slog"

	"rbac-janitor/internal/domain"
)

// Provisioner idempotently creates the local principal that represents a
// cross-account grant in the target tenant.
type Provisioner struct {
	tenants    domain.TenantRepository
	principals domain.PrincipalRepository
	audit      domain.AuditRepository
	mode       domain.AuthMode
	logger     *slog.Logger
}

// NewProvisioner creates a Provisioner using the given auth mode for target
// tenant resolution.
func NewProvisioner(
	tenants domain.TenantRepository,
	principals domain.PrincipalRepository,
	audit domain.AuditRepository,
	mode domain.AuthMode,
	logger *slog.Logger,
) *Provisioner {
	return &Provisioner{
		tenants:    tenants,
		principals: principals,
		audit:      audit,
		mode:       mode,
		logger:     logger,
	}
}

// Provision creates (or returns) the cross-account principal named
// "{target}-{userID}" in the tenant addressed by target. target is an org id
// in org-id mode and an account number in account-name mode. It returns
// TenantNotFoundError when no tenant matches, since that indicates a
// configuration or data problem the caller must see.
func (p *Provisioner) Provision(ctx context.Context, userID, target string) (*domain.Principal, error) {
	req := domain.ProvisionRequest{UserID: userID, Target: target}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	name := domain.CrossPrincipalName(target, userID)

	tenant, err := p.resolveTenant(ctx, target)
	if err != nil {
		return nil, err
	}

	principal, err := p.principals.GetOrCreate(ctx, &domain.Principal{
		UserID:       name,
		CrossAccount: true,
		TenantID:     tenant.ID,
	})
	if err != nil {
		return nil, err
	}

	p.logAudit(ctx, tenant, name)
	p.logger.Info("provisioned cross-account principal",
		"tenant", tenant.ExternalID(p.mode), "principal", name)
	return principal, nil
}

func (p *Provisioner) resolveTenant(ctx context.Context, target string) (*domain.Tenant, error) {
	var (
		tenant     *domain.Tenant
		identifier string
		err        error
	)
	if p.mode == domain.AuthModeOrgID {
		identifier = target
		tenant, err = p.tenants.GetByOrgID(ctx, identifier)
	} else {
		identifier = domain.TenantNameForAccount(target)
		tenant, err = p.tenants.GetByName(ctx, identifier)
	}
	if err != nil {
		var notFound *domain.NotFoundError
		if errors.As(err, &notFound) {
			return nil, &domain.TenantNotFoundError{Identifier: identifier, Mode: p.mode}
		}
		return nil, err
	}
	return tenant, nil
}

func (p *Provisioner) logAudit(ctx context.Context, tenant *domain.Tenant, name string) {
	_ = p.audit.Insert(ctx, &domain.AuditEntry{
		Tenant:  tenant.ExternalID(p.mode),
		Action:  domain.AuditActionProvisionCross,
		Subject: name,
	})
}
