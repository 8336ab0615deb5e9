package unified

import "fmt"

// ---------------------------------------------------------------------------
// Vertical
// ---------------------------------------------------------------------------

// Vertical represents a product domain a provider belongs to.
type Vertical string

const (
	// VerticalCRM covers customer relationship management providers
	VerticalCRM Vertical = "crm"
	// VerticalTicketing covers ticketing / helpdesk providers
	VerticalTicketing Vertical = "ticketing"
	// VerticalAccounting covers accounting providers
	VerticalAccounting Vertical = "accounting"
)

// IsValid returns true if the vertical is valid
func (v Vertical) IsValid() bool {
	switch v {
	case VerticalCRM, VerticalTicketing, VerticalAccounting:
		return true
	default:
		return false
	}
}

// String returns the string representation of Vertical
func (v Vertical) String() string {
	return string(v)
}

// ---------------------------------------------------------------------------
// ObjectType
// ---------------------------------------------------------------------------

// ObjectType represents a unified business object kind within a vertical.
type ObjectType string

const (
	// ObjectTypeContact is a CRM contact
	ObjectTypeContact ObjectType = "contact"
	// ObjectTypeTicket is a ticketing ticket
	ObjectTypeTicket ObjectType = "ticket"
	// ObjectTypeTag is a ticketing tag
	ObjectTypeTag ObjectType = "tag"
	// ObjectTypeTeam is a ticketing team
	ObjectTypeTeam ObjectType = "team"
	// ObjectTypeUser is a provider-side user (agent, teammate, owner)
	ObjectTypeUser ObjectType = "user"
	// ObjectTypeTrackingCategory is an accounting tracking category
	ObjectTypeTrackingCategory ObjectType = "trackingcategory"
)

// IsValid returns true if the object type is valid
func (o ObjectType) IsValid() bool {
	switch o {
	case ObjectTypeContact, ObjectTypeTicket, ObjectTypeTag,
		ObjectTypeTeam, ObjectTypeUser, ObjectTypeTrackingCategory:
		return true
	default:
		return false
	}
}

// String returns the string representation of ObjectType
func (o ObjectType) String() string {
	return string(o)
}

// ---------------------------------------------------------------------------
// MapperKey
// ---------------------------------------------------------------------------

// MapperKey is the composite key under which mappers and fetch services are
// registered: one entry per (vertical, object type, provider) triple.
type MapperKey struct {
	Vertical   Vertical
	ObjectType ObjectType
	Provider   string
}

// Validate validates the key components
func (k MapperKey) Validate() error {
	if !k.Vertical.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidVertical, k.Vertical)
	}
	if !k.ObjectType.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidObjectType, k.ObjectType)
	}
	if k.Provider == "" {
		return ErrInvalidProvider
	}
	return nil
}

// String returns the canonical "vertical.object.provider" form of the key
func (k MapperKey) String() string {
	return fmt.Sprintf("%s.%s.%s", k.Vertical, k.ObjectType, k.Provider)
}

// ObjectKey returns the "vertical.object" scope string used when resolving
// tenant-defined field mappings (e.g. "crm.contact").
func ObjectKey(v Vertical, o ObjectType) string {
	return fmt.Sprintf("%s.%s", v, o)
}
