package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/unifyd/backend/internal/domain/unified"
)

// TenantModel is the persistence model for the Tenant directory entity.
type TenantModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key"`
	Name      string    `gorm:"type:varchar(200);not null"`
	IsActive  bool      `gorm:"not null;default:true;index"`
	CreatedAt time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (TenantModel) TableName() string {
	return "tenants"
}

// ToDomain converts the persistence model to a domain Tenant
func (m *TenantModel) ToDomain() unified.Tenant {
	return unified.Tenant{
		ID:        m.ID,
		Name:      m.Name,
		IsActive:  m.IsActive,
		CreatedAt: m.CreatedAt,
	}
}

// FromDomain populates the persistence model from a domain Tenant
func (m *TenantModel) FromDomain(t unified.Tenant) {
	m.ID = t.ID
	m.Name = t.Name
	m.IsActive = t.IsActive
	m.CreatedAt = t.CreatedAt
}

// ProjectModel is the persistence model for the Project directory entity.
type ProjectModel struct {
	ID       uuid.UUID `gorm:"type:uuid;primary_key"`
	TenantID uuid.UUID `gorm:"type:uuid;not null;index"`
	Name     string    `gorm:"type:varchar(200);not null"`
}

// TableName returns the table name for GORM
func (ProjectModel) TableName() string {
	return "projects"
}

// ToDomain converts the persistence model to a domain Project
func (m *ProjectModel) ToDomain() unified.Project {
	return unified.Project{
		ID:       m.ID,
		TenantID: m.TenantID,
		Name:     m.Name,
	}
}

// FromDomain populates the persistence model from a domain Project
func (m *ProjectModel) FromDomain(p unified.Project) {
	m.ID = p.ID
	m.TenantID = p.TenantID
	m.Name = p.Name
}

// LinkedAccountModel is the persistence model for the LinkedAccount entity.
type LinkedAccountModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key"`
	ProjectID uuid.UUID `gorm:"type:uuid;not null;index"`
	Alias     string    `gorm:"type:varchar(200)"`
	CreatedAt time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (LinkedAccountModel) TableName() string {
	return "linked_accounts"
}

// ToDomain converts the persistence model to a domain LinkedAccount
func (m *LinkedAccountModel) ToDomain() unified.LinkedAccount {
	return unified.LinkedAccount{
		ID:        m.ID,
		ProjectID: m.ProjectID,
		Alias:     m.Alias,
		CreatedAt: m.CreatedAt,
	}
}

// FromDomain populates the persistence model from a domain LinkedAccount
func (m *LinkedAccountModel) FromDomain(a unified.LinkedAccount) {
	m.ID = a.ID
	m.ProjectID = a.ProjectID
	m.Alias = a.Alias
	m.CreatedAt = a.CreatedAt
}

// ConnectionModel is the persistence model for the Connection entity. One
// connection exists per (linked account, provider, vertical).
type ConnectionModel struct {
	ID                   uuid.UUID                `gorm:"type:uuid;primary_key"`
	LinkedAccountID      uuid.UUID                `gorm:"type:uuid;not null;uniqueIndex:idx_connection_account_provider,priority:1"`
	ProviderSlug         string                   `gorm:"type:varchar(100);not null;uniqueIndex:idx_connection_account_provider,priority:2"`
	Vertical             unified.Vertical         `gorm:"type:varchar(50);not null;uniqueIndex:idx_connection_account_provider,priority:3"`
	Status               unified.ConnectionStatus `gorm:"type:varchar(20);not null;default:'ACTIVE'"`
	LastSuccessfulSyncAt *time.Time
	CreatedAt            time.Time `gorm:"not null"`
	UpdatedAt            time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (ConnectionModel) TableName() string {
	return "connections"
}

// ToDomain converts the persistence model to a domain Connection
func (m *ConnectionModel) ToDomain() *unified.Connection {
	return &unified.Connection{
		ID:                   m.ID,
		LinkedAccountID:      m.LinkedAccountID,
		ProviderSlug:         m.ProviderSlug,
		Vertical:             m.Vertical,
		Status:               m.Status,
		LastSuccessfulSyncAt: m.LastSuccessfulSyncAt,
		CreatedAt:            m.CreatedAt,
		UpdatedAt:            m.UpdatedAt,
	}
}

// FromDomain populates the persistence model from a domain Connection
func (m *ConnectionModel) FromDomain(c *unified.Connection) {
	m.ID = c.ID
	m.LinkedAccountID = c.LinkedAccountID
	m.ProviderSlug = c.ProviderSlug
	m.Vertical = c.Vertical
	m.Status = c.Status
	m.LastSuccessfulSyncAt = c.LastSuccessfulSyncAt
	m.CreatedAt = c.CreatedAt
	m.UpdatedAt = c.UpdatedAt
}
