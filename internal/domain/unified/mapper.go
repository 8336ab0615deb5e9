package unified

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
)

// ---------------------------------------------------------------------------
// FieldMapping
// ---------------------------------------------------------------------------

// FieldMapping is a tenant-defined association between a local slug and a
// provider-specific field identifier, scoped to (provider, linked account,
// object key). Mappers apply it in both directions: unify reads the provider
// field into CustomFields()[Slug], desunify writes the slug's value back
// under RemoteFieldID.
type FieldMapping struct {
	Slug          string
	RemoteFieldID string
}

// RemoteFieldIDs returns the provider field ids of the given mappings, used
// to narrow provider fetches to the fields the tenant actually configured.
func RemoteFieldIDs(mappings []FieldMapping) []string {
	if len(mappings) == 0 {
		return nil
	}
	ids := make([]string, len(mappings))
	for i, m := range mappings {
		ids[i] = m.RemoteFieldID
	}
	return ids
}

// FieldMappingResolver returns the custom-field definitions a tenant has
// configured for (provider, linked account, object key). Absence of
// configured mappings is not an error: resolvers return an empty list.
type FieldMappingResolver interface {
	GetFieldMappings(ctx context.Context, provider string, linkedAccountID uuid.UUID, objectKey string) ([]FieldMapping, error)
}

// ---------------------------------------------------------------------------
// Mapper
// ---------------------------------------------------------------------------

// UnifyParams carries the inputs of one unify call.
type UnifyParams struct {
	// Sources are the verbatim provider payloads, one per entity. Order is
	// preserved in the output.
	Sources []json.RawMessage
	// ConnectionID scopes cross-reference resolution
	ConnectionID uuid.UUID
	// FieldMappings are the tenant's custom-field definitions; may be empty
	FieldMappings []FieldMapping
	// Nested unifies sub-objects (e.g. a ticket's tags) through the registry
	// so the per-provider sub-object mapper is reused
	Nested NestedUnifier
}

// DesunifyParams carries the inputs of one desunify call.
type DesunifyParams struct {
	// Source is the locally authored unified record to convert
	Source Record
	// FieldMappings place custom slugs into provider-specific keys
	FieldMappings []FieldMapping
}

// Mapper converts between one provider's native payloads and one unified
// object type. Implementations register themselves on construction and are
// only ever invoked through the dispatcher.
type Mapper interface {
	// Unify converts provider payloads into unified records, preserving input
	// order. A missing optional cross-reference drops the reference on that
	// element; it never fails the batch.
	Unify(ctx context.Context, p UnifyParams) ([]Record, error)

	// Desunify converts a unified record into the shape the provider's write
	// API expects. Returns ErrDesunifyUnsupported for object types the
	// provider cannot create.
	Desunify(ctx context.Context, p DesunifyParams) (map[string]any, error)
}

// NestedUnifyRequest asks the dispatcher to unify sub-objects of a record
// that is itself mid-unification.
type NestedUnifyRequest struct {
	Sources       []json.RawMessage
	Vertical      Vertical
	ObjectType    ObjectType
	Provider      string
	ConnectionID  uuid.UUID
	FieldMappings []FieldMapping
}

// NestedUnifier is the dispatcher capability handed to mappers. The
// implementation counts depth and fails with ErrCyclicUnification rather than
// recursing unbounded.
type NestedUnifier interface {
	Unify(ctx context.Context, req NestedUnifyRequest) ([]Record, error)
}

// RemoteIDResolver resolves a provider-native id into the local id of a
// previously synced record, keyed by (remote id, connection). The boolean is
// false when no local mapping exists yet; mappers then drop the reference.
type RemoteIDResolver interface {
	ResolveLocalID(ctx context.Context, remoteID string, connectionID uuid.UUID, objectType ObjectType) (uuid.UUID, bool, error)
}
