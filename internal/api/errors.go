package api

import (
	"errors"
	"net/http"

	"rbac-janitor/internal/domain"
)

// httpStatusFromDomainError maps domain errors to HTTP status codes.
func httpStatusFromDomainError(err error) int {
	var notFound *domain.NotFoundError
	var tenantNotFound *domain.TenantNotFoundError
	var validation *domain.ValidationError
	var conflict *domain.ConflictError
	var lookup *domain.LookupUnavailableError

	switch {
	case errors.As(err, &notFound):
		return http.StatusNotFound
	case errors.As(err, &tenantNotFound):
		return http.StatusNotFound
	case errors.As(err, &validation):
		return http.StatusBadRequest
	case errors.As(err, &conflict):
		return http.StatusConflict
	case errors.As(err, &lookup):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
