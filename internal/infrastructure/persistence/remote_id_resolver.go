package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/unifyd/backend/internal/domain/unified"
	"github.com/unifyd/backend/internal/infrastructure/persistence/models"
)

// GormRemoteIDResolver implements unified.RemoteIDResolver across the unified
// record tables. A missing row is (Nil, false, nil), never an error: mappers
// drop unresolvable references.
type GormRemoteIDResolver struct {
	db *gorm.DB
}

// NewGormRemoteIDResolver creates a new GormRemoteIDResolver
func NewGormRemoteIDResolver(db *gorm.DB) *GormRemoteIDResolver {
	return &GormRemoteIDResolver{db: db}
}

// ResolveLocalID implements unified.RemoteIDResolver
func (r *GormRemoteIDResolver) ResolveLocalID(ctx context.Context, remoteID string, connectionID uuid.UUID, objectType unified.ObjectType) (uuid.UUID, bool, error) {
	model, err := modelFor(objectType)
	if err != nil {
		return uuid.Nil, false, err
	}

	var id uuid.UUID
	err = r.db.WithContext(ctx).
		Model(model).
		Select("id").
		Where("remote_id = ? AND connection_id = ?", remoteID, connectionID).
		Take(&id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return uuid.Nil, false, nil
	}
	if err != nil {
		return uuid.Nil, false, err
	}
	return id, true, nil
}

// modelFor maps an object type onto its record table
func modelFor(objectType unified.ObjectType) (any, error) {
	switch objectType {
	case unified.ObjectTypeContact:
		return &models.ContactModel{}, nil
	case unified.ObjectTypeTicket:
		return &models.TicketModel{}, nil
	case unified.ObjectTypeTag:
		return &models.TagModel{}, nil
	case unified.ObjectTypeUser:
		return &models.ProviderUserModel{}, nil
	case unified.ObjectTypeTrackingCategory:
		return &models.TrackingCategoryModel{}, nil
	default:
		return nil, fmt.Errorf("persistence: no record table for object type %q", objectType)
	}
}

var _ unified.RemoteIDResolver = (*GormRemoteIDResolver)(nil)
