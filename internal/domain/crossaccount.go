package domain

import "time"

// RequestStatus is the lifecycle state of a cross-account request.
type RequestStatus string

const (
	StatusPending   RequestStatus = "pending"
	StatusApproved  RequestStatus = "approved"
	StatusExpired   RequestStatus = "expired"
	StatusDenied    RequestStatus = "denied"
	StatusCancelled RequestStatus = "cancelled"
)

// ExpirableStatuses are the statuses eligible for the expiry sweep. Expired
// is terminal with respect to the sweeper; denied and cancelled are never
// touched.
var ExpirableStatuses = []RequestStatus{StatusPending, StatusApproved}

// CrossAccountRequest is a time-bounded grant of cross-tenant access.
type CrossAccountRequest struct {
	ID            string
	UserID        string
	TargetAccount string
	TargetOrg     string
	Status        RequestStatus
	StartDate     time.Time
	EndDate       time.Time
	CreatedAt     time.Time
}

// Expired reports whether the request's end date is strictly before now.
func (r *CrossAccountRequest) Expired(now time.Time) bool {
	return r.EndDate.Before(now)
}
