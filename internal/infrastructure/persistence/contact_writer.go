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

// GormContactWriter implements unified.RecordWriter for CRM contacts.
//
// Core fields update partially: empty incoming values leave the stored value
// alone. Email and phone lists reconcile by their stable key (the address or
// number), addresses reconcile positionally because providers give them no
// stable key.
type GormContactWriter struct {
	db *gorm.DB
}

// NewGormContactWriter creates a new GormContactWriter
func NewGormContactWriter(db *gorm.DB) *GormContactWriter {
	return &GormContactWriter{db: db}
}

// ObjectType implements unified.RecordWriter
func (w *GormContactWriter) ObjectType() unified.ObjectType {
	return unified.ObjectTypeContact
}

// Upsert implements unified.RecordWriter
func (w *GormContactWriter) Upsert(ctx context.Context, connectionID uuid.UUID, rec unified.Record) (uuid.UUID, error) {
	contact, ok := rec.(*unified.Contact)
	if !ok {
		return uuid.Nil, fmt.Errorf("persistence: contact writer got %T", rec)
	}

	var localID uuid.UUID
	err := w.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var model models.ContactModel
		err := tx.Where("remote_id = ? AND connection_id = ?", contact.RemoteID, connectionID).
			First(&model).Error

		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			model = models.ContactModel{
				ID:           uuid.New(),
				RemoteID:     contact.RemoteID,
				ConnectionID: connectionID,
				FirstName:    contact.FirstName,
				LastName:     contact.LastName,
				UserID:       contact.UserID,
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
			if contact.FirstName != "" {
				updates["first_name"] = contact.FirstName
			}
			if contact.LastName != "" {
				updates["last_name"] = contact.LastName
			}
			if contact.UserID != nil {
				updates["user_id"] = *contact.UserID
			}
			if err := tx.Model(&models.ContactModel{}).
				Where("id = ?", model.ID).
				Updates(updates).Error; err != nil {
				return err
			}
		}
		localID = model.ID

		if err := w.reconcileEmails(tx, model.ID, contact.EmailAddresses); err != nil {
			return err
		}
		if err := w.reconcilePhones(tx, model.ID, contact.PhoneNumbers); err != nil {
			return err
		}
		return w.reconcileAddresses(tx, model.ID, contact.Addresses)
	})
	if err != nil {
		return uuid.Nil, err
	}
	return localID, nil
}

// reconcileEmails makes the stored list match the incoming one, keyed by the
// address. A matching key updates in place so the row id is stable.
func (w *GormContactWriter) reconcileEmails(tx *gorm.DB, contactID uuid.UUID, incoming []unified.EmailAddress) error {
	var existing []models.ContactEmailModel
	if err := tx.Where("contact_id = ?", contactID).Find(&existing).Error; err != nil {
		return err
	}
	byKey := make(map[string]models.ContactEmailModel, len(existing))
	for _, row := range existing {
		byKey[row.Email] = row
	}

	seen := make(map[string]bool, len(incoming))
	for _, email := range incoming {
		seen[email.Email] = true
		if row, ok := byKey[email.Email]; ok {
			if row.Type != email.Type {
				if err := tx.Model(&models.ContactEmailModel{}).
					Where("id = ?", row.ID).
					Update("type", email.Type).Error; err != nil {
					return err
				}
			}
			continue
		}
		row := models.ContactEmailModel{
			ID:        uuid.New(),
			ContactID: contactID,
			Email:     email.Email,
			Type:      email.Type,
		}
		if err := tx.Create(&row).Error; err != nil {
			return err
		}
	}

	for key, row := range byKey {
		if !seen[key] {
			if err := tx.Delete(&models.ContactEmailModel{}, "id = ?", row.ID).Error; err != nil {
				return err
			}
		}
	}
	return nil
}

// reconcilePhones mirrors reconcileEmails with the number as key
func (w *GormContactWriter) reconcilePhones(tx *gorm.DB, contactID uuid.UUID, incoming []unified.PhoneNumber) error {
	var existing []models.ContactPhoneModel
	if err := tx.Where("contact_id = ?", contactID).Find(&existing).Error; err != nil {
		return err
	}
	byKey := make(map[string]models.ContactPhoneModel, len(existing))
	for _, row := range existing {
		byKey[row.Number] = row
	}

	seen := make(map[string]bool, len(incoming))
	for _, phone := range incoming {
		seen[phone.Number] = true
		if row, ok := byKey[phone.Number]; ok {
			if row.Type != phone.Type {
				if err := tx.Model(&models.ContactPhoneModel{}).
					Where("id = ?", row.ID).
					Update("type", phone.Type).Error; err != nil {
					return err
				}
			}
			continue
		}
		row := models.ContactPhoneModel{
			ID:        uuid.New(),
			ContactID: contactID,
			Number:    phone.Number,
			Type:      phone.Type,
		}
		if err := tx.Create(&row).Error; err != nil {
			return err
		}
	}

	for key, row := range byKey {
		if !seen[key] {
			if err := tx.Delete(&models.ContactPhoneModel{}, "id = ?", row.ID).Error; err != nil {
				return err
			}
		}
	}
	return nil
}

// reconcileAddresses matches rows by provider position: the row at position i
// updates in place, surplus rows are removed, new positions are created.
func (w *GormContactWriter) reconcileAddresses(tx *gorm.DB, contactID uuid.UUID, incoming []unified.Address) error {
	var existing []models.ContactAddressModel
	if err := tx.Where("contact_id = ?", contactID).
		Order("position ASC").
		Find(&existing).Error; err != nil {
		return err
	}

	for i, addr := range incoming {
		if i < len(existing) {
			if err := tx.Model(&models.ContactAddressModel{}).
				Where("id = ?", existing[i].ID).
				Updates(map[string]any{
					"street1":     addr.Street1,
					"street2":     addr.Street2,
					"city":        addr.City,
					"state":       addr.State,
					"postal_code": addr.PostalCode,
					"country":     addr.Country,
					"type":        addr.Type,
				}).Error; err != nil {
				return err
			}
			continue
		}
		row := models.ContactAddressModel{
			ID:         uuid.New(),
			ContactID:  contactID,
			Position:   i,
			Street1:    addr.Street1,
			Street2:    addr.Street2,
			City:       addr.City,
			State:      addr.State,
			PostalCode: addr.PostalCode,
			Country:    addr.Country,
			Type:       addr.Type,
		}
		if err := tx.Create(&row).Error; err != nil {
			return err
		}
	}

	for i := len(incoming); i < len(existing); i++ {
		if err := tx.Delete(&models.ContactAddressModel{}, "id = ?", existing[i].ID).Error; err != nil {
			return err
		}
	}
	return nil
}

var _ unified.RecordWriter = (*GormContactWriter)(nil)
