package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/google/uuid"

	"rbac-janitor/internal/domain"
)

type CrossAccountRequestRepo struct {
	db *sql.DB
}

func NewCrossAccountRequestRepo(db *sql.DB) *CrossAccountRequestRepo {
	return &CrossAccountRequestRepo{db: db}
}

func (r *CrossAccountRequestRepo) Create(ctx context.Context, car *domain.CrossAccountRequest) (*domain.CrossAccountRequest, error) {
	created := *car
	if created.ID == "" {
		created.ID = uuid.NewString()
	}
	if created.Status == "" {
		created.Status = domain.StatusPending
	}
	created.CreatedAt = time.Now().UTC()

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO cross_account_requests
		 (id, user_id, target_account, target_org, status, start_date, end_date, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		created.ID, created.UserID, created.TargetAccount, created.TargetOrg,
		string(created.Status), created.StartDate.UTC(), created.EndDate.UTC(), created.CreatedAt)
	if err != nil {
		return nil, mapDBError(err)
	}
	return &created, nil
}

func (r *CrossAccountRequestRepo) GetByID(ctx context.Context, id string) (*domain.CrossAccountRequest, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, target_account, target_org, status, start_date, end_date, created_at
		 FROM cross_account_requests WHERE id = ?`, id)

	car, err := scanCrossAccountRequest(row)
	if err != nil {
		return nil, mapDBError(err)
	}
	return car, nil
}

func (r *CrossAccountRequestRepo) ListByStatuses(ctx context.Context, statuses []domain.RequestStatus) ([]domain.CrossAccountRequest, error) {
	if len(statuses) == 0 {
		return nil, nil
	}

	placeholders := strings.Repeat("?,", len(statuses))
	placeholders = placeholders[:len(placeholders)-1]
	args := make([]any, len(statuses))
	for i, s := range statuses {
		args[i] = string(s)
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, target_account, target_org, status, start_date, end_date, created_at
		 FROM cross_account_requests WHERE status IN (`+placeholders+`) ORDER BY end_date`,
		args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cars []domain.CrossAccountRequest
	for rows.Next() {
		car, err := scanCrossAccountRequest(rows)
		if err != nil {
			return nil, err
		}
		cars = append(cars, *car)
	}
	return cars, rows.Err()
}

func (r *CrossAccountRequestRepo) SetStatus(ctx context.Context, id string, status domain.RequestStatus) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE cross_account_requests SET status = ? WHERE id = ?`, string(status), id)
	if err != nil {
		return mapDBError(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNotFound("cross-account request %s not found", id)
	}
	return nil
}

func scanCrossAccountRequest(s rowScanner) (*domain.CrossAccountRequest, error) {
	var car domain.CrossAccountRequest
	var status string
	if err := s.Scan(&car.ID, &car.UserID, &car.TargetAccount, &car.TargetOrg,
		&status, &car.StartDate, &car.EndDate, &car.CreatedAt); err != nil {
		return nil, err
	}
	car.Status = domain.RequestStatus(status)
	return &car, nil
}

var _ domain.CrossAccountRequestRepository = (*CrossAccountRequestRepo)(nil)
