package domain

import "time"

// Audit actions recorded by the janitor jobs.
const (
	AuditActionRemovePrincipal = "REMOVE_PRINCIPAL"
	AuditActionExpireRequest   = "EXPIRE_REQUEST"
	AuditActionProvisionCross  = "PROVISION_CROSS_ACCOUNT"
)

// AuditEntry records a mutation performed by a janitor job, for operational
// triage. Writes are best-effort.
type AuditEntry struct {
	ID        int64
	Tenant    string // external tenant identifier at the time of the action
	Action    string
	Subject   string // user_id or request id the action applied to
	Detail    string
	CreatedAt time.Time
}
