package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/unifyd/backend/internal/domain/unified"
)

// AttributeModel is the persistence model for a tenant custom-field
// definition, unique per (slug, source provider, linked account).
type AttributeModel struct {
	ID              uuid.UUID `gorm:"type:uuid;primary_key"`
	Slug            string    `gorm:"type:varchar(200);not null;uniqueIndex:idx_attribute_slug_source_account,priority:1"`
	Source          string    `gorm:"type:varchar(100);not null;uniqueIndex:idx_attribute_slug_source_account,priority:2"`
	LinkedAccountID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_attribute_slug_source_account,priority:3"`
	ObjectKey       string    `gorm:"type:varchar(100);not null;index"`
	RemoteFieldID   string    `gorm:"type:varchar(200);not null"`
	CreatedAt       time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (AttributeModel) TableName() string {
	return "attributes"
}

// ToDomain converts the persistence model to a domain Attribute
func (m *AttributeModel) ToDomain() *unified.Attribute {
	return &unified.Attribute{
		ID:              m.ID,
		Slug:            m.Slug,
		Source:          m.Source,
		LinkedAccountID: m.LinkedAccountID,
		ObjectKey:       m.ObjectKey,
		RemoteFieldID:   m.RemoteFieldID,
		CreatedAt:       m.CreatedAt,
	}
}

// FromDomain populates the persistence model from a domain Attribute
func (m *AttributeModel) FromDomain(a *unified.Attribute) {
	m.ID = a.ID
	m.Slug = a.Slug
	m.Source = a.Source
	m.LinkedAccountID = a.LinkedAccountID
	m.ObjectKey = a.ObjectKey
	m.RemoteFieldID = a.RemoteFieldID
	m.CreatedAt = a.CreatedAt
}

// EntityModel anchors attribute values to the unified record that owns them.
type EntityModel struct {
	ID              uuid.UUID `gorm:"type:uuid;primary_key"`
	ResourceOwnerID uuid.UUID `gorm:"type:uuid;not null;index"`
	CreatedAt       time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (EntityModel) TableName() string {
	return "entities"
}

// AttributeValueModel is one custom-field value, at most one per
// (attribute, entity) pair.
type AttributeValueModel struct {
	ID          uuid.UUID `gorm:"type:uuid;primary_key"`
	AttributeID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_value_attribute_entity,priority:1"`
	EntityID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_value_attribute_entity,priority:2"`
	Data        string    `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (AttributeValueModel) TableName() string {
	return "attribute_values"
}

// RemoteDataModel stores the latest verbatim provider payload 1:1 with the
// owning unified record.
type RemoteDataModel struct {
	ID              uuid.UUID `gorm:"type:uuid;primary_key"`
	ResourceOwnerID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex"`
	Payload         string    `gorm:"type:text;not null"`
	UpdatedAt       time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (RemoteDataModel) TableName() string {
	return "remote_data"
}
