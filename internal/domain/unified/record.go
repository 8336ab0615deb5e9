package unified

import (
	"time"

	"github.com/google/uuid"
)

// ---------------------------------------------------------------------------
// Record
// ---------------------------------------------------------------------------

// Record is the canonical, provider-agnostic representation of one business
// entity. Concrete shapes (Contact, Ticket, ...) implement it; the ingestion
// layer dispatches on Type() and never inspects provider payloads.
type Record interface {
	// Type returns the unified object type of this record
	Type() ObjectType
	// OriginID returns the provider-native id of the entity, empty when the
	// record was authored locally and has not been pushed yet
	OriginID() string
	// CustomFields returns the slug -> value map populated from tenant-defined
	// field mappings; nil or empty when none are configured
	CustomFields() map[string]any
}

// ---------------------------------------------------------------------------
// CRM: Contact
// ---------------------------------------------------------------------------

// Contact is the unified CRM contact.
type Contact struct {
	// ID is the stable local id, uuid.Nil until persisted
	ID uuid.UUID
	// RemoteID is the provider-native id
	RemoteID  string
	FirstName string
	LastName  string
	// UserID is the local id of the owning CRM user, resolved from the
	// provider's owner reference; nil when no local mapping exists yet
	UserID         *uuid.UUID
	EmailAddresses []EmailAddress
	PhoneNumbers   []PhoneNumber
	Addresses      []Address
	FieldMappings  map[string]any
}

// EmailAddress is a contact email sub-entity. The address itself is the
// stable key used when reconciling lists across fetches.
type EmailAddress struct {
	Email string
	Type  string
}

// PhoneNumber is a contact phone sub-entity, keyed by the number.
type PhoneNumber struct {
	Number string
	Type   string
}

// Address is a contact postal address sub-entity. Providers supply no stable
// key for addresses, so lists are reconciled positionally.
type Address struct {
	Street1    string
	Street2    string
	City       string
	State      string
	PostalCode string
	Country    string
	Type       string
}

func (c *Contact) Type() ObjectType             { return ObjectTypeContact }
func (c *Contact) OriginID() string             { return c.RemoteID }
func (c *Contact) CustomFields() map[string]any { return c.FieldMappings }

// ---------------------------------------------------------------------------
// Ticketing: Ticket, Tag, Team, User
// ---------------------------------------------------------------------------

// Ticket is the unified ticketing ticket.
type Ticket struct {
	ID          uuid.UUID
	RemoteID    string
	Name        string
	Description string
	Status      string
	Priority    string
	DueDate     *time.Time
	// AssignedTo holds local user ids resolved from provider assignee ids;
	// unresolvable references are dropped, not errored
	AssignedTo    []uuid.UUID
	Tags          []Tag
	FieldMappings map[string]any
}

func (t *Ticket) Type() ObjectType             { return ObjectTypeTicket }
func (t *Ticket) OriginID() string             { return t.RemoteID }
func (t *Ticket) CustomFields() map[string]any { return t.FieldMappings }

// Tag is the unified ticketing tag. Tags nest inside tickets and are unified
// through the same registry as any top-level object.
type Tag struct {
	ID            uuid.UUID
	RemoteID      string
	Name          string
	FieldMappings map[string]any
}

func (t *Tag) Type() ObjectType             { return ObjectTypeTag }
func (t *Tag) OriginID() string             { return t.RemoteID }
func (t *Tag) CustomFields() map[string]any { return t.FieldMappings }

// Team is the unified ticketing team.
type Team struct {
	ID            uuid.UUID
	RemoteID      string
	Name          string
	Description   string
	FieldMappings map[string]any
}

func (t *Team) Type() ObjectType             { return ObjectTypeTeam }
func (t *Team) OriginID() string             { return t.RemoteID }
func (t *Team) CustomFields() map[string]any { return t.FieldMappings }

// User is the unified provider-side user (agent, teammate, record owner).
// Cross-references on other objects (ticket assignees, contact owners)
// resolve against previously synced users.
type User struct {
	ID            uuid.UUID
	RemoteID      string
	Name          string
	Email         string
	FieldMappings map[string]any
}

func (u *User) Type() ObjectType             { return ObjectTypeUser }
func (u *User) OriginID() string             { return u.RemoteID }
func (u *User) CustomFields() map[string]any { return u.FieldMappings }

// ---------------------------------------------------------------------------
// Accounting: TrackingCategory
// ---------------------------------------------------------------------------

// TrackingCategory is the unified accounting tracking category.
type TrackingCategory struct {
	ID            uuid.UUID
	RemoteID      string
	Name          string
	Status        string
	FieldMappings map[string]any
}

func (t *TrackingCategory) Type() ObjectType             { return ObjectTypeTrackingCategory }
func (t *TrackingCategory) OriginID() string             { return t.RemoteID }
func (t *TrackingCategory) CustomFields() map[string]any { return t.FieldMappings }
