package unified

import (
	"errors"
	"fmt"
)

var (
	// Key validation errors
	ErrInvalidVertical   = errors.New("unified: invalid vertical")
	ErrInvalidObjectType = errors.New("unified: invalid object type")
	ErrInvalidProvider   = errors.New("unified: provider slug is required")

	// Unification errors
	ErrDesunifyUnsupported = errors.New("unified: provider cannot create this object type")
	ErrCyclicUnification   = errors.New("unified: nested unification depth exceeded")

	// Ingestion errors
	ErrMissingOriginID     = errors.New("unified: record has no remote id")
	ErrPersistenceConflict = errors.New("unified: concurrent writers raced on the same record key")

	// Provider fetch errors. Auth marks the connection for re-authentication;
	// Unavailable and RateLimited are retry-eligible on the next scheduled run.
	ErrProviderAuthFailed  = errors.New("unified: provider authentication failed")
	ErrProviderUnavailable = errors.New("unified: provider temporarily unavailable")
	ErrProviderRateLimited = errors.New("unified: provider rate limited")

	// Directory errors
	ErrTenantNotFound        = errors.New("unified: tenant not found")
	ErrLinkedAccountNotFound = errors.New("unified: linked account not found")
	ErrConnectionNotFound    = errors.New("unified: connection not found")
	ErrAttributeNotFound     = errors.New("unified: attribute not found")
	ErrRecordNotFound        = errors.New("unified: record not found")
)

// NotFoundError reports a registry lookup miss. It carries all three key
// components so misconfiguration is diagnosable from the error alone.
type NotFoundError struct {
	// Kind is what was looked up: "mapper" or "fetch service"
	Kind string
	Key  MapperKey
}

// Error implements the error interface
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("unified: no %s registered for vertical %q, object type %q, provider %q",
		e.Kind, e.Key.Vertical, e.Key.ObjectType, e.Key.Provider)
}

// IsRetryableFetchError returns true for fetch errors that are eligible for a
// retry on the next scheduled run.
func IsRetryableFetchError(err error) bool {
	return errors.Is(err, ErrProviderUnavailable) || errors.Is(err, ErrProviderRateLimited)
}
