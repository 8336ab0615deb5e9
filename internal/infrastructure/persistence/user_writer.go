package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/unifyd/backend/internal/domain/unified"
	"github.com/unifyd/backend/internal/infrastructure/persistence/models"
)

// GormUserWriter implements unified.RecordWriter for provider-side users.
// These rows are the resolution targets for ticket assignees and contact
// owners, so user syncs run before the objects that reference them.
type GormUserWriter struct {
	db *gorm.DB
}

// NewGormUserWriter creates a new GormUserWriter
func NewGormUserWriter(db *gorm.DB) *GormUserWriter {
	return &GormUserWriter{db: db}
}

// ObjectType implements unified.RecordWriter
func (w *GormUserWriter) ObjectType() unified.ObjectType {
	return unified.ObjectTypeUser
}

// Upsert implements unified.RecordWriter
func (w *GormUserWriter) Upsert(ctx context.Context, connectionID uuid.UUID, rec unified.Record) (uuid.UUID, error) {
	user, ok := rec.(*unified.User)
	if !ok {
		return uuid.Nil, fmt.Errorf("persistence: user writer got %T", rec)
	}

	var model models.ProviderUserModel
	err := w.db.WithContext(ctx).
		Where("remote_id = ? AND connection_id = ?", user.RemoteID, connectionID).
		First(&model).Error

	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		model = models.ProviderUserModel{
			ID:           uuid.New(),
			RemoteID:     user.RemoteID,
			ConnectionID: connectionID,
			Name:         user.Name,
			Email:        user.Email,
			CreatedAt:    time.Now(),
			UpdatedAt:    time.Now(),
		}
		if err := w.db.WithContext(ctx).Create(&model).Error; err != nil {
			return uuid.Nil, translateInsertRace(err)
		}
	case err != nil:
		return uuid.Nil, err
	default:
		updates := map[string]any{"updated_at": time.Now()}
		if user.Name != "" {
			updates["name"] = user.Name
		}
		if user.Email != "" {
			updates["email"] = user.Email
		}
		if err := w.db.WithContext(ctx).Model(&models.ProviderUserModel{}).
			Where("id = ?", model.ID).
			Updates(updates).Error; err != nil {
			return uuid.Nil, err
		}
	}
	return model.ID, nil
}

// GormTrackingCategoryWriter implements unified.RecordWriter for accounting
// tracking categories.
type GormTrackingCategoryWriter struct {
	db *gorm.DB
}

// NewGormTrackingCategoryWriter creates a new GormTrackingCategoryWriter
func NewGormTrackingCategoryWriter(db *gorm.DB) *GormTrackingCategoryWriter {
	return &GormTrackingCategoryWriter{db: db}
}

// ObjectType implements unified.RecordWriter
func (w *GormTrackingCategoryWriter) ObjectType() unified.ObjectType {
	return unified.ObjectTypeTrackingCategory
}

// Upsert implements unified.RecordWriter
func (w *GormTrackingCategoryWriter) Upsert(ctx context.Context, connectionID uuid.UUID, rec unified.Record) (uuid.UUID, error) {
	category, ok := rec.(*unified.TrackingCategory)
	if !ok {
		return uuid.Nil, fmt.Errorf("persistence: tracking category writer got %T", rec)
	}

	var model models.TrackingCategoryModel
	err := w.db.WithContext(ctx).
		Where("remote_id = ? AND connection_id = ?", category.RemoteID, connectionID).
		First(&model).Error

	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		model = models.TrackingCategoryModel{
			ID:           uuid.New(),
			RemoteID:     category.RemoteID,
			ConnectionID: connectionID,
			Name:         category.Name,
			Status:       category.Status,
			CreatedAt:    time.Now(),
			UpdatedAt:    time.Now(),
		}
		if err := w.db.WithContext(ctx).Create(&model).Error; err != nil {
			return uuid.Nil, translateInsertRace(err)
		}
	case err != nil:
		return uuid.Nil, err
	default:
		updates := map[string]any{"updated_at": time.Now()}
		if category.Name != "" {
			updates["name"] = category.Name
		}
		if category.Status != "" {
			updates["status"] = category.Status
		}
		if err := w.db.WithContext(ctx).Model(&models.TrackingCategoryModel{}).
			Where("id = ?", model.ID).
			Updates(updates).Error; err != nil {
			return uuid.Nil, err
		}
	}
	return model.ID, nil
}

var (
	_ unified.RecordWriter = (*GormUserWriter)(nil)
	_ unified.RecordWriter = (*GormTrackingCategoryWriter)(nil)
)
