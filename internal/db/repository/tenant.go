package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"rbac-janitor/internal/domain"
)

type TenantRepo struct {
	db *sql.DB
}

func NewTenantRepo(db *sql.DB) *TenantRepo {
	return &TenantRepo{db: db}
}

func (r *TenantRepo) Create(ctx context.Context, t *domain.Tenant) (*domain.Tenant, error) {
	created := *t
	if created.ID == "" {
		created.ID = uuid.NewString()
	}
	if created.TenantName == "" && created.AccountID != "" {
		created.TenantName = domain.TenantNameForAccount(created.AccountID)
	}
	created.CreatedAt = time.Now().UTC()

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO tenants (id, tenant_name, org_id, account_id, display_name, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		created.ID, created.TenantName, created.OrgID, created.AccountID,
		created.DisplayName, created.CreatedAt)
	if err != nil {
		return nil, mapDBError(err)
	}
	return &created, nil
}

func (r *TenantRepo) List(ctx context.Context) ([]domain.Tenant, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, tenant_name, org_id, account_id, display_name, created_at
		 FROM tenants ORDER BY tenant_name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tenants []domain.Tenant
	for rows.Next() {
		t, err := scanTenant(rows)
		if err != nil {
			return nil, err
		}
		tenants = append(tenants, *t)
	}
	return tenants, rows.Err()
}

func (r *TenantRepo) GetByOrgID(ctx context.Context, orgID string) (*domain.Tenant, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, tenant_name, org_id, account_id, display_name, created_at
		 FROM tenants WHERE org_id = ?`, orgID)
	t, err := scanTenant(row)
	if err != nil {
		return nil, mapDBError(err)
	}
	return t, nil
}

func (r *TenantRepo) GetByName(ctx context.Context, tenantName string) (*domain.Tenant, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, tenant_name, org_id, account_id, display_name, created_at
		 FROM tenants WHERE tenant_name = ?`, tenantName)
	t, err := scanTenant(row)
	if err != nil {
		return nil, mapDBError(err)
	}
	return t, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTenant(s rowScanner) (*domain.Tenant, error) {
	var t domain.Tenant
	if err := s.Scan(&t.ID, &t.TenantName, &t.OrgID, &t.AccountID, &t.DisplayName, &t.CreatedAt); err != nil {
		return nil, err
	}
	return &t, nil
}

var _ domain.TenantRepository = (*TenantRepo)(nil)
