package errors

import (
	"net/http"

	"github.com/cockroachdb/errors"
)

// Sentinel errors used to classify failures across the service. Errors are
// attached to one of these marks via the builder's Mark method and checked
// with the Is* predicates; the HTTP layer maps marks to status codes.
var (
	ErrValidation       = errors.New("validation_error")
	ErrNotFound         = errors.New("not_found")
	ErrAlreadyExists    = errors.New("already_exists")
	ErrPermissionDenied = errors.New("permission_denied")
	ErrHTTPClient       = errors.New("http_client_error")
	ErrInternal         = errors.New("internal_error")
	ErrSystem           = errors.New("system_error")
)

// Is reports whether any error in err's chain matches target, including
// marks attached with Mark.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}

func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func IsAlreadyExists(err error) bool {
	return errors.Is(err, ErrAlreadyExists)
}

func IsPermissionDenied(err error) bool {
	return errors.Is(err, ErrPermissionDenied)
}

func IsHTTPClient(err error) bool {
	return errors.Is(err, ErrHTTPClient)
}

// HTTPStatusFromErr resolves the HTTP status code for a classified error.
func HTTPStatusFromErr(err error) int {
	switch {
	case IsValidation(err):
		return http.StatusBadRequest
	case IsNotFound(err):
		return http.StatusNotFound
	case IsAlreadyExists(err):
		return http.StatusConflict
	case IsPermissionDenied(err):
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}
