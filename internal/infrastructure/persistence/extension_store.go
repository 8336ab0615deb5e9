package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/unifyd/backend/internal/domain/unified"
	"github.com/unifyd/backend/internal/infrastructure/persistence/models"
)

// GormExtensionStore implements unified.ExtensionStore and
// unified.FieldMappingResolver on the attribute/value side tables. Both
// concerns read the same attribute rows, so they share one store.
type GormExtensionStore struct {
	db *gorm.DB
}

// NewGormExtensionStore creates a new GormExtensionStore
func NewGormExtensionStore(db *gorm.DB) *GormExtensionStore {
	return &GormExtensionStore{db: db}
}

// GetFieldMappings returns the tenant's custom-field definitions for
// (provider, linked account, object key). No configured mappings is an empty
// list, not an error.
func (s *GormExtensionStore) GetFieldMappings(ctx context.Context, provider string, linkedAccountID uuid.UUID, objectKey string) ([]unified.FieldMapping, error) {
	var rows []models.AttributeModel
	if err := s.db.WithContext(ctx).
		Where("source = ? AND linked_account_id = ? AND object_key = ?", provider, linkedAccountID, objectKey).
		Order("slug ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	mappings := make([]unified.FieldMapping, len(rows))
	for i, row := range rows {
		mappings[i] = unified.FieldMapping{
			Slug:          row.Slug,
			RemoteFieldID: row.RemoteFieldID,
		}
	}
	return mappings, nil
}

// FindAttribute returns the attribute for (slug, provider, linked account)
func (s *GormExtensionStore) FindAttribute(ctx context.Context, slug, source string, linkedAccountID uuid.UUID) (*unified.Attribute, error) {
	var model models.AttributeModel
	if err := s.db.WithContext(ctx).
		Where("slug = ? AND source = ? AND linked_account_id = ?", slug, source, linkedAccountID).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, unified.ErrAttributeNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// CreateAttribute stores a new custom-field definition
func (s *GormExtensionStore) CreateAttribute(ctx context.Context, attr *unified.Attribute) error {
	if attr.ID == uuid.Nil {
		attr.ID = uuid.New()
	}
	if attr.CreatedAt.IsZero() {
		attr.CreatedAt = time.Now()
	}
	var model models.AttributeModel
	model.FromDomain(attr)
	return s.db.WithContext(ctx).Create(&model).Error
}

// CreateEntity creates the anchor row for one record's custom values. An
// existing anchor for the owner is reused.
func (s *GormExtensionStore) CreateEntity(ctx context.Context, resourceOwnerID uuid.UUID) (*unified.Entity, error) {
	var existing models.EntityModel
	err := s.db.WithContext(ctx).
		Where("resource_owner_id = ?", resourceOwnerID).
		First(&existing).Error
	if err == nil {
		return &unified.Entity{ID: existing.ID, ResourceOwnerID: existing.ResourceOwnerID, CreatedAt: existing.CreatedAt}, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	model := models.EntityModel{
		ID:              uuid.New(),
		ResourceOwnerID: resourceOwnerID,
		CreatedAt:       time.Now(),
	}
	if err := s.db.WithContext(ctx).Create(&model).Error; err != nil {
		return nil, err
	}
	return &unified.Entity{ID: model.ID, ResourceOwnerID: model.ResourceOwnerID, CreatedAt: model.CreatedAt}, nil
}

// UpsertValue writes the value for (attribute, entity), replacing any
// previous value for the pair
func (s *GormExtensionStore) UpsertValue(ctx context.Context, attributeID, entityID uuid.UUID, data string) error {
	model := models.AttributeValueModel{
		ID:          uuid.New(),
		AttributeID: attributeID,
		EntityID:    entityID,
		Data:        data,
	}
	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "attribute_id"}, {Name: "entity_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"data"}),
		}).
		Create(&model).Error
}

// GormRawPayloadStore implements unified.RawPayloadStore on the remote_data
// table.
type GormRawPayloadStore struct {
	db *gorm.DB
}

// NewGormRawPayloadStore creates a new GormRawPayloadStore
func NewGormRawPayloadStore(db *gorm.DB) *GormRawPayloadStore {
	return &GormRawPayloadStore{db: db}
}

// Upsert replaces the stored payload for the owning record
func (s *GormRawPayloadStore) Upsert(ctx context.Context, resourceOwnerID uuid.UUID, payload []byte) error {
	model := models.RemoteDataModel{
		ID:              uuid.New(),
		ResourceOwnerID: resourceOwnerID,
		Payload:         string(payload),
		UpdatedAt:       time.Now(),
	}
	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "resource_owner_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"payload", "updated_at"}),
		}).
		Create(&model).Error
}

// Get returns the stored payload for the owning record
func (s *GormRawPayloadStore) Get(ctx context.Context, resourceOwnerID uuid.UUID) ([]byte, error) {
	var model models.RemoteDataModel
	if err := s.db.WithContext(ctx).
		Where("resource_owner_id = ?", resourceOwnerID).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, unified.ErrRecordNotFound
		}
		return nil, err
	}
	return []byte(model.Payload), nil
}

var (
	_ unified.ExtensionStore       = (*GormExtensionStore)(nil)
	_ unified.FieldMappingResolver = (*GormExtensionStore)(nil)
	_ unified.RawPayloadStore      = (*GormRawPayloadStore)(nil)
)
