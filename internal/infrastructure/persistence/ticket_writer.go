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

// GormTicketWriter implements unified.RecordWriter for ticketing tickets.
// Nested tags upsert into the shared tag table by their own remote id before
// the ticket's tag set is replaced.
type GormTicketWriter struct {
	db *gorm.DB
}

// NewGormTicketWriter creates a new GormTicketWriter
func NewGormTicketWriter(db *gorm.DB) *GormTicketWriter {
	return &GormTicketWriter{db: db}
}

// ObjectType implements unified.RecordWriter
func (w *GormTicketWriter) ObjectType() unified.ObjectType {
	return unified.ObjectTypeTicket
}

// Upsert implements unified.RecordWriter
func (w *GormTicketWriter) Upsert(ctx context.Context, connectionID uuid.UUID, rec unified.Record) (uuid.UUID, error) {
	ticket, ok := rec.(*unified.Ticket)
	if !ok {
		return uuid.Nil, fmt.Errorf("persistence: ticket writer got %T", rec)
	}

	var localID uuid.UUID
	err := w.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var model models.TicketModel
		err := tx.Where("remote_id = ? AND connection_id = ?", ticket.RemoteID, connectionID).
			First(&model).Error

		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			model = models.TicketModel{
				ID:           uuid.New(),
				RemoteID:     ticket.RemoteID,
				ConnectionID: connectionID,
				Name:         ticket.Name,
				Description:  ticket.Description,
				Status:       ticket.Status,
				Priority:     ticket.Priority,
				DueDate:      ticket.DueDate,
				CreatedAt:    time.Now(),
				UpdatedAt:    time.Now(),
			}
			if err := tx.Create(&model).Error; err != nil {
				return translateInsertRace(err)
			}
		case err != nil:
			return err
		default:
			updates := map[string]any{"updated_at": time.Now()}
			if ticket.Name != "" {
				updates["name"] = ticket.Name
			}
			if ticket.Description != "" {
				updates["description"] = ticket.Description
			}
			if ticket.Status != "" {
				updates["status"] = ticket.Status
			}
			if ticket.Priority != "" {
				updates["priority"] = ticket.Priority
			}
			if ticket.DueDate != nil {
				updates["due_date"] = *ticket.DueDate
			}
			if err := tx.Model(&models.TicketModel{}).
				Where("id = ?", model.ID).
				Updates(updates).Error; err != nil {
				return err
			}
		}
		localID = model.ID

		tagRows, err := upsertTags(tx, connectionID, ticket.Tags)
		if err != nil {
			return err
		}
		if err := tx.Model(&model).Association("Tags").Replace(tagRows); err != nil {
			return err
		}

		return w.replaceAssignees(tx, model.ID, ticket.AssignedTo)
	})
	if err != nil {
		return uuid.Nil, err
	}
	return localID, nil
}

// replaceAssignees makes the stored assignee set match the incoming one
func (w *GormTicketWriter) replaceAssignees(tx *gorm.DB, ticketID uuid.UUID, userIDs []uuid.UUID) error {
	if err := tx.Delete(&models.TicketAssigneeModel{}, "ticket_id = ?", ticketID).Error; err != nil {
		return err
	}
	for _, userID := range userIDs {
		row := models.TicketAssigneeModel{TicketID: ticketID, UserID: userID}
		if err := tx.Create(&row).Error; err != nil {
			return err
		}
	}
	return nil
}

// upsertTags creates or refreshes one tag row per nested tag, keyed by
// (remote id, connection). Shared by the ticket writer and the tag writer.
func upsertTags(tx *gorm.DB, connectionID uuid.UUID, tags []unified.Tag) ([]models.TagModel, error) {
	rows := make([]models.TagModel, 0, len(tags))
	for _, tag := range tags {
		if tag.RemoteID == "" {
			return nil, unified.ErrMissingOriginID
		}

		var model models.TagModel
		err := tx.Where("remote_id = ? AND connection_id = ?", tag.RemoteID, connectionID).
			First(&model).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			model = models.TagModel{
				ID:           uuid.New(),
				RemoteID:     tag.RemoteID,
				ConnectionID: connectionID,
				Name:         tag.Name,
				CreatedAt:    time.Now(),
				UpdatedAt:    time.Now(),
			}
			if err := tx.Create(&model).Error; err != nil {
				return nil, translateInsertRace(err)
			}
		case err != nil:
			return nil, err
		default:
			if tag.Name != "" && tag.Name != model.Name {
				if err := tx.Model(&models.TagModel{}).
					Where("id = ?", model.ID).
					Updates(map[string]any{"name": tag.Name, "updated_at": time.Now()}).Error; err != nil {
					return nil, err
				}
				model.Name = tag.Name
			}
		}
		rows = append(rows, model)
	}
	return rows, nil
}

// GormTagWriter implements unified.RecordWriter for standalone tag syncs.
type GormTagWriter struct {
	db *gorm.DB
}

// NewGormTagWriter creates a new GormTagWriter
func NewGormTagWriter(db *gorm.DB) *GormTagWriter {
	return &GormTagWriter{db: db}
}

// ObjectType implements unified.RecordWriter
func (w *GormTagWriter) ObjectType() unified.ObjectType {
	return unified.ObjectTypeTag
}

// Upsert implements unified.RecordWriter
func (w *GormTagWriter) Upsert(ctx context.Context, connectionID uuid.UUID, rec unified.Record) (uuid.UUID, error) {
	tag, ok := rec.(*unified.Tag)
	if !ok {
		return uuid.Nil, fmt.Errorf("persistence: tag writer got %T", rec)
	}

	var localID uuid.UUID
	err := w.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		rows, err := upsertTags(tx, connectionID, []unified.Tag{*tag})
		if err != nil {
			return err
		}
		localID = rows[0].ID
		return nil
	})
	if err != nil {
		return uuid.Nil, err
	}
	return localID, nil
}

var (
	_ unified.RecordWriter = (*GormTicketWriter)(nil)
	_ unified.RecordWriter = (*GormTagWriter)(nil)
)
