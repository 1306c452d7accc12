package domain

import "errors"

// Error taxonomy. Services wrap these so handlers can map any failure to a
// machine-readable kind without leaking store detail.
var (
	ErrNotFound        = errors.New("resource not found")
	ErrForbidden       = errors.New("forbidden")
	ErrConflict        = errors.New("conflict")
	ErrValidation      = errors.New("validation failure")
	ErrExternalService = errors.New("external service failure")
	ErrInternal        = errors.New("internal failure")
)

// Kind returns the machine-readable kind string for an error, or "internal"
// when the error does not belong to the taxonomy.
func Kind(err error) string {
	switch {
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrForbidden):
		return "forbidden"
	case errors.Is(err, ErrConflict):
		return "conflict"
	case errors.Is(err, ErrValidation):
		return "validation_failure"
	case errors.Is(err, ErrExternalService):
		return "external_service_failure"
	default:
		return "internal"
	}
}
