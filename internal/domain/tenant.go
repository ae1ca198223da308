package domain

import (
	"strings"
	"time"
)

// AuthMode selects which external identifier addresses a tenant: the org id
// or the legacy account-derived tenant name. The mode is fixed for the whole
// process and passed explicitly to every component that resolves tenants.
type AuthMode int

const (
	// AuthModeOrgID addresses tenants by their org id.
	AuthModeOrgID AuthMode = iota
	// AuthModeAccountName addresses tenants by the legacy account-derived
	// tenant name (e.g. "acct10001").
	AuthModeAccountName
)

func (m AuthMode) String() string {
	if m == AuthModeOrgID {
		return "org_id"
	}
	return "account_name"
}

// TenantNamePrefix prefixes legacy account-derived tenant names.
const TenantNamePrefix = "acct"

// TenantNameForAccount derives the legacy tenant name from an account number.
func TenantNameForAccount(account string) string {
	return TenantNamePrefix + account
}

// AccountForTenantName recovers the account number from a legacy tenant name.
func AccountForTenantName(name string) string {
	return strings.TrimPrefix(name, TenantNamePrefix)
}

// Tenant is the isolation boundary that groups principals and cross-account
// requests. Reconciliation and expiry never cross tenant boundaries within a
// single unit of work.
type Tenant struct {
	ID          string
	TenantName  string // legacy account-derived name, unique
	OrgID       string // external org id, unique when present
	AccountID   string
	DisplayName string
	CreatedAt   time.Time
}

// ExternalID returns the tenant identifier used when talking to the identity
// service under the given auth mode.
func (t *Tenant) ExternalID(mode AuthMode) string {
	if mode == AuthModeOrgID {
		return t.OrgID
	}
	return t.TenantName
}

// Selector builds the identity-lookup tenant selector for the given auth
// mode. Exactly one of OrgID and Account is populated.
func (t *Tenant) Selector(mode AuthMode) TenantSelector {
	if mode == AuthModeOrgID {
		return TenantSelector{OrgID: t.OrgID}
	}
	account := t.AccountID
	if account == "" {
		account = AccountForTenantName(t.TenantName)
	}
	return TenantSelector{Account: account}
}
