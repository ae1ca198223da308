package domain

import "context"

// LookupStatus classifies the outcome of an identity service query. All
// non-OK statuses are handled uniformly by the reconciler (no deletions,
// batch retried on the next run); they are kept distinct for logging.
type LookupStatus int

const (
	LookupStatusOK LookupStatus = iota
	LookupStatusTimeout
	LookupStatusUnavailable
	LookupStatusUnexpected
)

func (s LookupStatus) String() string {
	switch s {
	case LookupStatusOK:
		return "ok"
	case LookupStatusTimeout:
		return "timeout"
	case LookupStatusUnavailable:
		return "unavailable"
	default:
		return "unexpected"
	}
}

// TenantSelector addresses a tenant at the identity service. Exactly one
// field is set, depending on the auth mode.
type TenantSelector struct {
	OrgID   string
	Account string
}

// LookupResult is the tagged outcome of an existence query. Existing is only
// meaningful when Status is LookupStatusOK; it contains the subset of the
// queried user ids the identity service still recognises.
type LookupResult struct {
	Status   LookupStatus
	Existing map[string]struct{}
}

// OK reports whether the query succeeded.
func (r LookupResult) OK() bool { return r.Status == LookupStatusOK }

// Contains reports whether the given user id was confirmed to exist.
func (r LookupResult) Contains(userID string) bool {
	_, ok := r.Existing[userID]
	return ok
}

// IdentityLookup is the port to the external, authoritative identity source.
// Implementations must respect the context deadline and report transport
// failures through the result status rather than panicking or blocking.
type IdentityLookup interface {
	QueryExisting(ctx context.Context, userIDs []string, sel TenantSelector) (LookupResult, error)
}
