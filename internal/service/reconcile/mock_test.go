package reconcile

import (
	"context"
	"sync/atomic"

	"rbac-janitor/internal/domain"
)

// mockLookup is a scriptable identity lookup double.
type mockLookup struct {
	queryFn func(ctx context.Context, userIDs []string, sel domain.TenantSelector) (domain.LookupResult, error)
	calls   atomic.Int32
}

func (m *mockLookup) QueryExisting(ctx context.Context, userIDs []string, sel domain.TenantSelector) (domain.LookupResult, error) {
	m.calls.Add(1)
	if m.queryFn != nil {
		return m.queryFn(ctx, userIDs, sel)
	}
	panic("unexpected call to mockLookup.QueryExisting")
}

// okLookup returns a success result confirming exactly the given user ids.
func okLookup(existing ...string) *mockLookup {
	return &mockLookup{
		queryFn: func(_ context.Context, _ []string, _ domain.TenantSelector) (domain.LookupResult, error) {
			set := make(map[string]struct{}, len(existing))
			for _, id := range existing {
				set[id] = struct{}{}
			}
			return domain.LookupResult{Status: domain.LookupStatusOK, Existing: set}, nil
		},
	}
}

// failedLookup returns the given non-success status for every query.
func failedLookup(status domain.LookupStatus) *mockLookup {
	return &mockLookup{
		queryFn: func(_ context.Context, _ []string, _ domain.TenantSelector) (domain.LookupResult, error) {
			return domain.LookupResult{Status: status}, nil
		},
	}
}
