package domain

import "errors"

var (
	// Primary store errors
	ErrEntityNotFound   = errors.New("entity not found")
	ErrMissingReference = errors.New("missing reference")
	ErrInvalidAmount    = errors.New("amount must be positive")
	ErrInvalidPeriod    = errors.New("invalid period")
	ErrInvalidEnum      = errors.New("invalid enum value")
	ErrEntityInUse      = errors.New("entity is referenced by other entities")

	// Mapping store errors
	ErrMappingConflict = errors.New("mapping conflict")
	ErrMappingNotFound = errors.New("mapping not found")

	// External phase errors. None of these ever fail the primary operation.
	ErrExternalUnavailable = errors.New("external system unavailable")
	ErrExternalRejected    = errors.New("external system rejected the write")
	ErrReferenceUnresolved = errors.New("reference unresolved")
	ErrUnsupported         = errors.New("operation not supported by the external mirror")

	// ErrPreconditionViolation marks a programming error; it is never absorbed.
	ErrPreconditionViolation = errors.New("precondition violation")

	// Sync task errors
	ErrTaskNotFound = errors.New("sync task not found")

	// Authentication errors
	ErrUnauthorized = errors.New("unauthorized")
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token has expired")
)

// ErrorClass returns a short label for an external phase error, used in
// logs and metrics.
func ErrorClass(err error) string {
	switch {
	case err == nil:
		return "none"
	case errors.Is(err, ErrExternalUnavailable):
		return "external_unavailable"
	case errors.Is(err, ErrExternalRejected):
		return "external_rejected"
	case errors.Is(err, ErrReferenceUnresolved):
		return "reference_unresolved"
	case errors.Is(err, ErrMappingConflict):
		return "conflict"
	case errors.Is(err, ErrUnsupported):
		return "unsupported"
	default:
		return "unknown"
	}
}
