package crossaccount

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	internaldb "rbac-janitor/internal/db"
	"rbac-janitor/internal/db/repository"
	"rbac-janitor/internal/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func setupSweeper(t *testing.T) (*Sweeper, *repository.CrossAccountRequestRepo, *repository.AuditRepo) {
	t.Helper()
	writeDB, _ := internaldb.OpenTestSQLite(t)
	requests := repository.NewCrossAccountRequestRepo(writeDB)
	audit := repository.NewAuditRepo(writeDB)
	return NewSweeper(requests, audit, testLogger()), requests, audit
}

func makeRequest(t *testing.T, repo *repository.CrossAccountRequestRepo, status domain.RequestStatus, end time.Time) *domain.CrossAccountRequest {
	t.Helper()
	car, err := repo.Create(context.Background(), &domain.CrossAccountRequest{
		UserID:        "123456",
		TargetAccount: "789",
		TargetOrg:     "org-789",
		Status:        status,
		StartDate:     end.Add(-7 * 24 * time.Hour),
		EndDate:       end,
	})
	require.NoError(t, err)
	return car
}

func TestSweepExpired_MarksPastPendingAndApproved(t *testing.T) {
	sweeper, requests, _ := setupSweeper(t)
	ctx := context.Background()

	past := time.Now().UTC().Add(-time.Hour)
	future := time.Now().UTC().Add(time.Hour)

	expiredPending := makeRequest(t, requests, domain.StatusPending, past)
	expiredApproved := makeRequest(t, requests, domain.StatusApproved, past)
	liveApproved := makeRequest(t, requests, domain.StatusApproved, future)
	denied := makeRequest(t, requests, domain.StatusDenied, past)

	report, err := sweeper.SweepExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, report.Checked)
	assert.ElementsMatch(t, []string{expiredPending.ID, expiredApproved.ID}, report.Expired)

	for id, want := range map[string]domain.RequestStatus{
		expiredPending.ID:  domain.StatusExpired,
		expiredApproved.ID: domain.StatusExpired,
		liveApproved.ID:    domain.StatusApproved,
		denied.ID:          domain.StatusDenied,
	} {
		got, err := requests.GetByID(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, want, got.Status, "request %s", id)
	}
}

func TestSweepExpired_EndDateBoundaryIsStrict(t *testing.T) {
	sweeper, requests, _ := setupSweeper(t)

	boundary := time.Now().UTC().Add(time.Minute)
	car := makeRequest(t, requests, domain.StatusPending, boundary)
	sweeper.now = func() time.Time { return boundary }

	report, err := sweeper.SweepExpired(context.Background())
	require.NoError(t, err)
	assert.Empty(t, report.Expired)

	got, err := requests.GetByID(context.Background(), car.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, got.Status)
}

func TestSweepExpired_Idempotent(t *testing.T) {
	sweeper, requests, _ := setupSweeper(t)
	ctx := context.Background()

	makeRequest(t, requests, domain.StatusApproved, time.Now().UTC().Add(-time.Hour))

	first, err := sweeper.SweepExpired(ctx)
	require.NoError(t, err)
	assert.Len(t, first.Expired, 1)

	// Expired rows are terminal; a second sweep finds nothing to do.
	second, err := sweeper.SweepExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, second.Checked)
	assert.Empty(t, second.Expired)
}

func TestSweepExpired_Empty(t *testing.T) {
	sweeper, _, _ := setupSweeper(t)

	report, err := sweeper.SweepExpired(context.Background())
	require.NoError(t, err)
	assert.Equal(t, SweepReport{}, report)
}

func TestSweepExpired_AuditsTransitions(t *testing.T) {
	sweeper, requests, audit := setupSweeper(t)
	ctx := context.Background()

	car := makeRequest(t, requests, domain.StatusPending, time.Now().UTC().Add(-time.Hour))

	_, err := sweeper.SweepExpired(ctx)
	require.NoError(t, err)

	entries, err := audit.ListRecent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, domain.AuditActionExpireRequest, entries[0].Action)
	assert.Equal(t, car.ID, entries[0].Subject)
	assert.Equal(t, "org-789", entries[0].Tenant)
}
