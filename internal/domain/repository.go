package domain

import "context"

// TenantRepository provides access to tenant records.
type TenantRepository interface {
	Create(ctx context.Context, t *Tenant) (*Tenant, error)
	List(ctx context.Context) ([]Tenant, error)
	GetByOrgID(ctx context.Context, orgID string) (*Tenant, error)
	GetByName(ctx context.Context, tenantName string) (*Tenant, error)
}

// PrincipalRepository provides access to principal records, scoped by tenant.
type PrincipalRepository interface {
	Create(ctx context.Context, p *Principal) (*Principal, error)
	ListByTenant(ctx context.Context, tenantID string) ([]Principal, error)
	GetByUserID(ctx context.Context, tenantID, userID string) (*Principal, error)
	// GetOrCreate returns the existing principal keyed by (tenant_id,
	// user_id), creating it when absent. Repeated calls with the same inputs
	// return the same row.
	GetOrCreate(ctx context.Context, p *Principal) (*Principal, error)
	Delete(ctx context.Context, id string) error
}

// CrossAccountRequestRepository provides access to cross-account requests.
type CrossAccountRequestRepository interface {
	Create(ctx context.Context, r *CrossAccountRequest) (*CrossAccountRequest, error)
	GetByID(ctx context.Context, id string) (*CrossAccountRequest, error)
	ListByStatuses(ctx context.Context, statuses []RequestStatus) ([]CrossAccountRequest, error)
	SetStatus(ctx context.Context, id string, status RequestStatus) error
}

// AuditRepository records janitor job actions.
type AuditRepository interface {
	Insert(ctx context.Context, e *AuditEntry) error
	ListRecent(ctx context.Context, limit int) ([]AuditEntry, error)
}
