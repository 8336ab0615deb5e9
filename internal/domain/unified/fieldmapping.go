package unified

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// ---------------------------------------------------------------------------
// Attribute / Value (durable form of custom fields)
// ---------------------------------------------------------------------------

// Attribute is the durable definition of one tenant custom field: unique per
// (slug, source provider, linked account). It is shared by every entity of
// that tenant/provider carrying the slug.
type Attribute struct {
	ID              uuid.UUID
	Slug            string
	Source          string
	LinkedAccountID uuid.UUID
	ObjectKey       string
	RemoteFieldID   string
	CreatedAt       time.Time
}

// Entity is the anchor row linking attribute values to the unified record
// that owns them.
type Entity struct {
	ID              uuid.UUID
	ResourceOwnerID uuid.UUID
	CreatedAt       time.Time
}

// AttributeValue is one custom-field value: exclusively owned by its
// (attribute, entity) pair, at most one per pair.
type AttributeValue struct {
	ID          uuid.UUID
	AttributeID uuid.UUID
	EntityID    uuid.UUID
	Data        string
}

// ExtensionStore persists the Attribute/Value side table. Ingestion writes
// one Entity per persisted record carrying custom fields, then one Value per
// slug whose Attribute exists; unknown slugs produce no rows and no error.
type ExtensionStore interface {
	// FindAttribute returns the tenant's attribute for the slug,
	// ErrAttributeNotFound when the slug was never defined
	FindAttribute(ctx context.Context, slug, source string, linkedAccountID uuid.UUID) (*Attribute, error)
	// CreateEntity creates the anchor row for one record's custom values
	CreateEntity(ctx context.Context, resourceOwnerID uuid.UUID) (*Entity, error)
	// UpsertValue writes the value for (attribute, entity), replacing any
	// previous value for the pair
	UpsertValue(ctx context.Context, attributeID, entityID uuid.UUID, data string) error
}

// ---------------------------------------------------------------------------
// Raw payloads
// ---------------------------------------------------------------------------

// RawPayloadStore keeps the verbatim provider response 1:1 with the owning
// unified record, for audit/replay and re-unification. Only the latest fetch
// is kept.
type RawPayloadStore interface {
	// Upsert replaces the stored payload for the owning record
	Upsert(ctx context.Context, resourceOwnerID uuid.UUID, payload []byte) error
	// Get returns the stored payload, ErrRecordNotFound when absent
	Get(ctx context.Context, resourceOwnerID uuid.UUID) ([]byte, error)
}

// ---------------------------------------------------------------------------
// Record persistence
// ---------------------------------------------------------------------------

// RecordWriter upserts unified records of one object type, keyed by
// (remote id, connection). Implementations perform the partial core-field
// update and sub-entity reconciliation; they live in infrastructure.
type RecordWriter interface {
	// ObjectType returns the object type this writer persists
	ObjectType() ObjectType
	// Upsert creates or updates the record and its sub-entities, returning
	// the stable local id. Must be idempotent for identical input.
	Upsert(ctx context.Context, connectionID uuid.UUID, rec Record) (uuid.UUID, error)
}
