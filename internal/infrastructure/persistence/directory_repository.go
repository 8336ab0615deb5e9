package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/unifyd/backend/internal/domain/unified"
	"github.com/unifyd/backend/internal/infrastructure/persistence/models"
)

// GormTenantRepository implements unified.TenantRepository using GORM
type GormTenantRepository struct {
	db *gorm.DB
}

// NewGormTenantRepository creates a new GormTenantRepository
func NewGormTenantRepository(db *gorm.DB) *GormTenantRepository {
	return &GormTenantRepository{db: db}
}

// FindAllActive returns all tenants eligible for scheduled syncs
func (r *GormTenantRepository) FindAllActive(ctx context.Context) ([]unified.Tenant, error) {
	var rows []models.TenantModel
	if err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	tenants := make([]unified.Tenant, len(rows))
	for i, row := range rows {
		tenants[i] = row.ToDomain()
	}
	return tenants, nil
}

// FindByID finds a tenant by its ID
func (r *GormTenantRepository) FindByID(ctx context.Context, id uuid.UUID) (*unified.Tenant, error) {
	var model models.TenantModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, unified.ErrTenantNotFound
		}
		return nil, err
	}
	tenant := model.ToDomain()
	return &tenant, nil
}

// GormProjectRepository implements unified.ProjectRepository using GORM
type GormProjectRepository struct {
	db *gorm.DB
}

// NewGormProjectRepository creates a new GormProjectRepository
func NewGormProjectRepository(db *gorm.DB) *GormProjectRepository {
	return &GormProjectRepository{db: db}
}

// FindByTenant returns the tenant's projects
func (r *GormProjectRepository) FindByTenant(ctx context.Context, tenantID uuid.UUID) ([]unified.Project, error) {
	var rows []models.ProjectModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	projects := make([]unified.Project, len(rows))
	for i, row := range rows {
		projects[i] = row.ToDomain()
	}
	return projects, nil
}

// GormLinkedAccountRepository implements unified.LinkedAccountRepository using GORM
type GormLinkedAccountRepository struct {
	db *gorm.DB
}

// NewGormLinkedAccountRepository creates a new GormLinkedAccountRepository
func NewGormLinkedAccountRepository(db *gorm.DB) *GormLinkedAccountRepository {
	return &GormLinkedAccountRepository{db: db}
}

// FindByProject returns the project's linked accounts
func (r *GormLinkedAccountRepository) FindByProject(ctx context.Context, projectID uuid.UUID) ([]unified.LinkedAccount, error) {
	var rows []models.LinkedAccountModel
	if err := r.db.WithContext(ctx).
		Where("project_id = ?", projectID).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	accounts := make([]unified.LinkedAccount, len(rows))
	for i, row := range rows {
		accounts[i] = row.ToDomain()
	}
	return accounts, nil
}

// FindByID finds a linked account by its ID
func (r *GormLinkedAccountRepository) FindByID(ctx context.Context, id uuid.UUID) (*unified.LinkedAccount, error) {
	var model models.LinkedAccountModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, unified.ErrLinkedAccountNotFound
		}
		return nil, err
	}
	account := model.ToDomain()
	return &account, nil
}

// GormConnectionRepository implements unified.ConnectionRepository using GORM
type GormConnectionRepository struct {
	db *gorm.DB
}

// NewGormConnectionRepository creates a new GormConnectionRepository
func NewGormConnectionRepository(db *gorm.DB) *GormConnectionRepository {
	return &GormConnectionRepository{db: db}
}

// FindByID finds a connection by its ID
func (r *GormConnectionRepository) FindByID(ctx context.Context, id uuid.UUID) (*unified.Connection, error) {
	var model models.ConnectionModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, unified.ErrConnectionNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindForLinkedAccount returns the linked account's connection for one
// (provider, vertical) pair
func (r *GormConnectionRepository) FindForLinkedAccount(ctx context.Context, linkedAccountID uuid.UUID, providerSlug string, vertical unified.Vertical) (*unified.Connection, error) {
	var model models.ConnectionModel
	if err := r.db.WithContext(ctx).
		Where("linked_account_id = ? AND provider_slug = ? AND vertical = ?", linkedAccountID, providerSlug, vertical).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, unified.ErrConnectionNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByLinkedAccount returns all of the linked account's connections
func (r *GormConnectionRepository) FindByLinkedAccount(ctx context.Context, linkedAccountID uuid.UUID) ([]unified.Connection, error) {
	var rows []models.ConnectionModel
	if err := r.db.WithContext(ctx).
		Where("linked_account_id = ?", linkedAccountID).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	connections := make([]unified.Connection, len(rows))
	for i, row := range rows {
		connections[i] = *row.ToDomain()
	}
	return connections, nil
}

// Save creates or updates a connection
func (r *GormConnectionRepository) Save(ctx context.Context, conn *unified.Connection) error {
	var model models.ConnectionModel
	model.FromDomain(conn)
	return r.db.WithContext(ctx).Save(&model).Error
}

var (
	_ unified.TenantRepository        = (*GormTenantRepository)(nil)
	_ unified.ProjectRepository       = (*GormProjectRepository)(nil)
	_ unified.LinkedAccountRepository = (*GormLinkedAccountRepository)(nil)
	_ unified.ConnectionRepository    = (*GormConnectionRepository)(nil)
)
