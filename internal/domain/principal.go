package domain

import "time"

// Principal is a directory entry mapped to either a real external user or a
// synthetic cross-account grant. UserID is unique within a tenant.
type Principal struct {
	ID           string
	UserID       string
	CrossAccount bool
	TenantID     string
	CreatedAt    time.Time
}

// CrossPrincipalName builds the deterministic name for a cross-account
// principal from the target account/org identifier and the user id. The name
// is stable for a fixed (target, userID) pair, which is what makes
// provisioning idempotent.
func CrossPrincipalName(target, userID string) string {
	return target + "-" + userID
}

// ProvisionRequest holds parameters for provisioning a cross-account
// principal.
type ProvisionRequest struct {
	UserID string
	Target string // target org id or account number, per auth mode
}

// Validate checks that the request is well-formed.
func (r *ProvisionRequest) Validate() error {
	if r.UserID == "" {
		return ErrValidation("user_id is required")
	}
	if r.Target == "" {
		return ErrValidation("target is required")
	}
	return nil
}
