package unified

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ---------------------------------------------------------------------------
// ConnectionStatus
// ---------------------------------------------------------------------------

// ConnectionStatus represents the auth state of a connection
type ConnectionStatus string

const (
	// ConnectionStatusActive indicates the connection can sync
	ConnectionStatusActive ConnectionStatus = "ACTIVE"
	// ConnectionStatusNeedsReauth indicates the provider rejected the stored
	// credentials; sync skips the connection until it is re-authenticated
	ConnectionStatusNeedsReauth ConnectionStatus = "NEEDS_REAUTH"
	// ConnectionStatusRevoked indicates the tenant disconnected the provider;
	// synced rows are kept (soft disable, not cascading delete)
	ConnectionStatusRevoked ConnectionStatus = "REVOKED"
)

// IsValid returns true if the status is valid
func (s ConnectionStatus) IsValid() bool {
	switch s {
	case ConnectionStatusActive, ConnectionStatusNeedsReauth, ConnectionStatusRevoked:
		return true
	default:
		return false
	}
}

// String returns the string representation of ConnectionStatus
func (s ConnectionStatus) String() string {
	return string(s)
}

// ---------------------------------------------------------------------------
// Directory entities
// ---------------------------------------------------------------------------

// Tenant is the top-level account owning projects.
type Tenant struct {
	ID        uuid.UUID
	Name      string
	IsActive  bool
	CreatedAt time.Time
}

// Project groups a tenant's linked accounts.
type Project struct {
	ID       uuid.UUID
	TenantID uuid.UUID
	Name     string
}

// LinkedAccount is a tenant's end-customer identity under which connections
// exist; at most one connection per (provider, vertical) pair.
type LinkedAccount struct {
	ID        uuid.UUID
	ProjectID uuid.UUID
	Alias     string
	CreatedAt time.Time
}

// Connection is the authorized link between one linked account and one
// provider for one vertical. Every synced record references it for
// provenance.
type Connection struct {
	ID              uuid.UUID
	LinkedAccountID uuid.UUID
	ProviderSlug    string
	Vertical        Vertical
	Status          ConnectionStatus
	// LastSuccessfulSyncAt is updated only when a full fetch-unify-persist
	// cycle completes; a failed sync leaves it untouched
	LastSuccessfulSyncAt *time.Time
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

// NewConnection creates an active connection after a successful provider auth
func NewConnection(linkedAccountID uuid.UUID, providerSlug string, vertical Vertical) (*Connection, error) {
	if linkedAccountID == uuid.Nil {
		return nil, errors.New("unified: linked account id is required")
	}
	if providerSlug == "" {
		return nil, ErrInvalidProvider
	}
	if !vertical.IsValid() {
		return nil, ErrInvalidVertical
	}
	now := time.Now()
	return &Connection{
		ID:              uuid.New(),
		LinkedAccountID: linkedAccountID,
		ProviderSlug:    providerSlug,
		Vertical:        vertical,
		Status:          ConnectionStatusActive,
		CreatedAt:       now,
		UpdatedAt:       now,
	}, nil
}

// CanSync returns true if the connection is in a syncable state
func (c *Connection) CanSync() bool {
	return c.Status == ConnectionStatusActive
}

// MarkNeedsReauth records a provider auth failure
func (c *Connection) MarkNeedsReauth() {
	c.Status = ConnectionStatusNeedsReauth
	c.UpdatedAt = time.Now()
}

// Reactivate marks the connection active again after re-authentication
func (c *Connection) Reactivate() {
	c.Status = ConnectionStatusActive
	c.UpdatedAt = time.Now()
}

// Revoke soft-disables the connection
func (c *Connection) Revoke() {
	c.Status = ConnectionStatusRevoked
	c.UpdatedAt = time.Now()
}

// RecordSyncSuccess stamps the last successful sync time
func (c *Connection) RecordSyncSuccess(at time.Time) {
	c.LastSuccessfulSyncAt = &at
	c.UpdatedAt = at
}

// ---------------------------------------------------------------------------
// Repositories
// ---------------------------------------------------------------------------

// TenantRepository reads the tenant directory
type TenantRepository interface {
	// FindAllActive returns all tenants eligible for scheduled syncs
	FindAllActive(ctx context.Context) ([]Tenant, error)
	// FindByID returns one tenant, ErrTenantNotFound when missing
	FindByID(ctx context.Context, id uuid.UUID) (*Tenant, error)
}

// ProjectRepository reads a tenant's projects
type ProjectRepository interface {
	FindByTenant(ctx context.Context, tenantID uuid.UUID) ([]Project, error)
}

// LinkedAccountRepository reads a project's linked accounts
type LinkedAccountRepository interface {
	FindByProject(ctx context.Context, projectID uuid.UUID) ([]LinkedAccount, error)
	// FindByID returns one linked account, ErrLinkedAccountNotFound when missing
	FindByID(ctx context.Context, id uuid.UUID) (*LinkedAccount, error)
}

// ConnectionRepository reads and writes connections
type ConnectionRepository interface {
	// FindByID returns one connection, ErrConnectionNotFound when missing
	FindByID(ctx context.Context, id uuid.UUID) (*Connection, error)
	// FindForLinkedAccount returns the linked account's connection for one
	// (provider, vertical) pair, ErrConnectionNotFound when none exists
	FindForLinkedAccount(ctx context.Context, linkedAccountID uuid.UUID, providerSlug string, vertical Vertical) (*Connection, error)
	// FindByLinkedAccount returns all of the linked account's connections
	FindByLinkedAccount(ctx context.Context, linkedAccountID uuid.UUID) ([]Connection, error)
	// Save creates or updates a connection
	Save(ctx context.Context, conn *Connection) error
}
