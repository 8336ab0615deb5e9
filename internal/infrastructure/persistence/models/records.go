package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/unifyd/backend/internal/domain/unified"
)

// ---------------------------------------------------------------------------
// CRM: contacts and sub-entities
// ---------------------------------------------------------------------------

// ContactModel is the persistence model for the unified CRM contact. The
// (remote_id, connection_id) pair is the idempotency key for ingestion.
type ContactModel struct {
	ID           uuid.UUID  `gorm:"type:uuid;primary_key"`
	RemoteID     string     `gorm:"type:varchar(200);not null;uniqueIndex:idx_contact_remote_connection,priority:1"`
	ConnectionID uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_contact_remote_connection,priority:2"`
	FirstName    string     `gorm:"type:varchar(200)"`
	LastName     string     `gorm:"type:varchar(200)"`
	UserID       *uuid.UUID `gorm:"type:uuid;index"`
	CreatedAt    time.Time  `gorm:"not null"`
	UpdatedAt    time.Time  `gorm:"not null"`

	Emails    []ContactEmailModel   `gorm:"foreignKey:ContactID;constraint:OnDelete:CASCADE"`
	Phones    []ContactPhoneModel   `gorm:"foreignKey:ContactID;constraint:OnDelete:CASCADE"`
	Addresses []ContactAddressModel `gorm:"foreignKey:ContactID;constraint:OnDelete:CASCADE"`
}

// TableName returns the table name for GORM
func (ContactModel) TableName() string {
	return "crm_contacts"
}

// ContactEmailModel is one contact email sub-entity, keyed by the address
// within its contact.
type ContactEmailModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key"`
	ContactID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_contact_email,priority:1"`
	Email     string    `gorm:"type:varchar(320);not null;uniqueIndex:idx_contact_email,priority:2"`
	Type      string    `gorm:"type:varchar(50)"`
}

// TableName returns the table name for GORM
func (ContactEmailModel) TableName() string {
	return "crm_contact_emails"
}

// ContactPhoneModel is one contact phone sub-entity, keyed by the number
// within its contact.
type ContactPhoneModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key"`
	ContactID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_contact_phone,priority:1"`
	Number    string    `gorm:"type:varchar(50);not null;uniqueIndex:idx_contact_phone,priority:2"`
	Type      string    `gorm:"type:varchar(50)"`
}

// TableName returns the table name for GORM
func (ContactPhoneModel) TableName() string {
	return "crm_contact_phones"
}

// ContactAddressModel is one contact postal address sub-entity. Addresses have
// no provider-stable key, so Position records the provider order and lists are
// reconciled positionally.
type ContactAddressModel struct {
	ID         uuid.UUID `gorm:"type:uuid;primary_key"`
	ContactID  uuid.UUID `gorm:"type:uuid;not null;index"`
	Position   int       `gorm:"not null"`
	Street1    string    `gorm:"type:varchar(300)"`
	Street2    string    `gorm:"type:varchar(300)"`
	City       string    `gorm:"type:varchar(150)"`
	State      string    `gorm:"type:varchar(150)"`
	PostalCode string    `gorm:"type:varchar(30)"`
	Country    string    `gorm:"type:varchar(100)"`
	Type       string    `gorm:"type:varchar(50)"`
}

// TableName returns the table name for GORM
func (ContactAddressModel) TableName() string {
	return "crm_contact_addresses"
}

// ---------------------------------------------------------------------------
// Ticketing: tickets, tags, users
// ---------------------------------------------------------------------------

// TicketModel is the persistence model for the unified ticketing ticket.
type TicketModel struct {
	ID           uuid.UUID `gorm:"type:uuid;primary_key"`
	RemoteID     string    `gorm:"type:varchar(200);not null;uniqueIndex:idx_ticket_remote_connection,priority:1"`
	ConnectionID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_ticket_remote_connection,priority:2"`
	Name         string    `gorm:"type:varchar(500)"`
	Description  string    `gorm:"type:text"`
	Status       string    `gorm:"type:varchar(50);index"`
	Priority     string    `gorm:"type:varchar(50)"`
	DueDate      *time.Time
	CreatedAt    time.Time `gorm:"not null"`
	UpdatedAt    time.Time `gorm:"not null"`

	Tags      []TagModel            `gorm:"many2many:ticketing_ticket_tags"`
	Assignees []TicketAssigneeModel `gorm:"foreignKey:TicketID;constraint:OnDelete:CASCADE"`
}

// TableName returns the table name for GORM
func (TicketModel) TableName() string {
	return "ticketing_tickets"
}

// TagModel is the persistence model for the unified ticketing tag. Tags are
// shared across tickets of one connection.
type TagModel struct {
	ID           uuid.UUID `gorm:"type:uuid;primary_key"`
	RemoteID     string    `gorm:"type:varchar(200);not null;uniqueIndex:idx_tag_remote_connection,priority:1"`
	ConnectionID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_tag_remote_connection,priority:2"`
	Name         string    `gorm:"type:varchar(200)"`
	CreatedAt    time.Time `gorm:"not null"`
	UpdatedAt    time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (TagModel) TableName() string {
	return "ticketing_tags"
}

// TicketAssigneeModel links a ticket to a locally resolved user.
type TicketAssigneeModel struct {
	TicketID uuid.UUID `gorm:"type:uuid;primary_key"`
	UserID   uuid.UUID `gorm:"type:uuid;primary_key"`
}

// TableName returns the table name for GORM
func (TicketAssigneeModel) TableName() string {
	return "ticketing_ticket_assignees"
}

// ProviderUserModel is the persistence model for the unified provider-side
// user. Cross-references (ticket assignees, contact owners) resolve against
// these rows.
type ProviderUserModel struct {
	ID           uuid.UUID `gorm:"type:uuid;primary_key"`
	RemoteID     string    `gorm:"type:varchar(200);not null;uniqueIndex:idx_user_remote_connection,priority:1"`
	ConnectionID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_user_remote_connection,priority:2"`
	Name         string    `gorm:"type:varchar(300)"`
	Email        string    `gorm:"type:varchar(320);index"`
	CreatedAt    time.Time `gorm:"not null"`
	UpdatedAt    time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (ProviderUserModel) TableName() string {
	return "provider_users"
}

// ---------------------------------------------------------------------------
// Accounting: tracking categories
// ---------------------------------------------------------------------------

// TrackingCategoryModel is the persistence model for the unified accounting
// tracking category.
type TrackingCategoryModel struct {
	ID           uuid.UUID `gorm:"type:uuid;primary_key"`
	RemoteID     string    `gorm:"type:varchar(200);not null;uniqueIndex:idx_trackcat_remote_connection,priority:1"`
	ConnectionID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_trackcat_remote_connection,priority:2"`
	Name         string    `gorm:"type:varchar(300)"`
	Status       string    `gorm:"type:varchar(50)"`
	CreatedAt    time.Time `gorm:"not null"`
	UpdatedAt    time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (TrackingCategoryModel) TableName() string {
	return "accounting_tracking_categories"
}

// ToDomain converts the persistence model to a domain TrackingCategory
func (m *TrackingCategoryModel) ToDomain() *unified.TrackingCategory {
	return &unified.TrackingCategory{
		ID:       m.ID,
		RemoteID: m.RemoteID,
		Name:     m.Name,
		Status:   m.Status,
	}
}
