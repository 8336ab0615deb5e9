package unified

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
)

// FetchResult is one page-less batch of raw provider payloads, in provider
// order. The order is preserved through unification and persistence.
type FetchResult struct {
	Data []json.RawMessage
}

// FetchService pulls provider-native records for one linked account. One
// implementation exists per (provider, object type); implementations live in
// infrastructure and own auth, paging and rate limiting.
//
// Errors must be distinguishable with errors.Is: ErrProviderAuthFailed marks
// the connection for re-authentication, ErrProviderUnavailable and
// ErrProviderRateLimited are retried on the next scheduled run.
type FetchService interface {
	// Fetch returns all records for the linked account. remoteFieldIDs, when
	// non-empty, narrows the provider query to the tenant's configured custom
	// fields so providers are not over-fetched.
	Fetch(ctx context.Context, linkedAccountID uuid.UUID, remoteFieldIDs []string) (*FetchResult, error)
}
