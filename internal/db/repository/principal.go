package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"rbac-janitor/internal/domain"
)

type PrincipalRepo struct {
	db *sql.DB
}

func NewPrincipalRepo(db *sql.DB) *PrincipalRepo {
	return &PrincipalRepo{db: db}
}

func (r *PrincipalRepo) Create(ctx context.Context, p *domain.Principal) (*domain.Principal, error) {
	created := *p
	if created.ID == "" {
		created.ID = uuid.NewString()
	}
	created.CreatedAt = time.Now().UTC()

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO principals (id, user_id, cross_account, tenant_id, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		created.ID, created.UserID, boolToInt(created.CrossAccount),
		created.TenantID, created.CreatedAt)
	if err != nil {
		return nil, mapDBError(err)
	}
	return &created, nil
}

func (r *PrincipalRepo) ListByTenant(ctx context.Context, tenantID string) ([]domain.Principal, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, cross_account, tenant_id, created_at
		 FROM principals WHERE tenant_id = ? ORDER BY user_id`, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var principals []domain.Principal
	for rows.Next() {
		var p domain.Principal
		var cross int64
		if err := rows.Scan(&p.ID, &p.UserID, &cross, &p.TenantID, &p.CreatedAt); err != nil {
			return nil, err
		}
		p.CrossAccount = cross != 0
		principals = append(principals, p)
	}
	return principals, rows.Err()
}

func (r *PrincipalRepo) GetByUserID(ctx context.Context, tenantID, userID string) (*domain.Principal, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, cross_account, tenant_id, created_at
		 FROM principals WHERE tenant_id = ? AND user_id = ?`, tenantID, userID)

	var p domain.Principal
	var cross int64
	if err := row.Scan(&p.ID, &p.UserID, &cross, &p.TenantID, &p.CreatedAt); err != nil {
		return nil, mapDBError(err)
	}
	p.CrossAccount = cross != 0
	return &p, nil
}

// GetOrCreate returns the principal matching (tenant_id, user_id,
// cross_account), creating it when absent. The INSERT OR IGNORE plus
// re-read is race-free under the single-writer pool. An existing row whose
// cross_account flag differs is a ConflictError, never a match: returning
// a real user's principal as a cross-account grant (or the reverse) would
// hand it the wrong cleanup semantics.
func (r *PrincipalRepo) GetOrCreate(ctx context.Context, p *domain.Principal) (*domain.Principal, error) {
	_, err := r.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO principals (id, user_id, cross_account, tenant_id, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		uuid.NewString(), p.UserID, boolToInt(p.CrossAccount), p.TenantID, time.Now().UTC())
	if err != nil {
		return nil, mapDBError(err)
	}
	existing, err := r.GetByUserID(ctx, p.TenantID, p.UserID)
	if err != nil {
		return nil, err
	}
	if existing.CrossAccount != p.CrossAccount {
		return nil, domain.ErrConflict(
			"principal %q already exists with cross_account=%t", p.UserID, existing.CrossAccount)
	}
	return existing, nil
}

func (r *PrincipalRepo) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM principals WHERE id = ?`, id)
	return mapDBError(err)
}

var _ domain.PrincipalRepository = (*PrincipalRepo)(nil)
