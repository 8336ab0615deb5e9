package persistence

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unifyd/backend/internal/domain/unified"
	"github.com/unifyd/backend/internal/infrastructure/persistence/models"
)

func TestGormContactWriter_Upsert(t *testing.T) {
	ctx := context.Background()

	t.Run("same remote id updates the same row", func(t *testing.T) {
		db := newTestDB(t)
		writer := NewGormContactWriter(db)
		connID := uuid.New()

		firstID, err := writer.Upsert(ctx, connID, &unified.Contact{
			RemoteID:  "42",
			FirstName: "Ada",
			EmailAddresses: []unified.EmailAddress{
				{Email: "ada@example.com", Type: "PERSONAL"},
			},
		})
		require.NoError(t, err)

		secondID, err := writer.Upsert(ctx, connID, &unified.Contact{
			RemoteID:  "42",
			FirstName: "Ada",
			LastName:  "Lovelace",
			EmailAddresses: []unified.EmailAddress{
				{Email: "ada@example.com", Type: "WORK"},
			},
		})
		require.NoError(t, err)
		assert.Equal(t, firstID, secondID)

		var count int64
		require.NoError(t, db.Model(&models.ContactModel{}).Count(&count).Error)
		assert.EqualValues(t, 1, count)

		var stored models.ContactModel
		require.NoError(t, db.First(&stored, "id = ?", firstID).Error)
		assert.Equal(t, "Ada", stored.FirstName)
		assert.Equal(t, "Lovelace", stored.LastName)

		// Same address updated in place, not duplicated
		var emails []models.ContactEmailModel
		require.NoError(t, db.Where("contact_id = ?", firstID).Find(&emails).Error)
		require.Len(t, emails, 1)
		assert.Equal(t, "WORK", emails[0].Type)
	})

	t.Run("same remote id on another connection is a separate row", func(t *testing.T) {
		db := newTestDB(t)
		writer := NewGormContactWriter(db)

		firstID, err := writer.Upsert(ctx, uuid.New(), &unified.Contact{RemoteID: "42", FirstName: "Ada"})
		require.NoError(t, err)
		secondID, err := writer.Upsert(ctx, uuid.New(), &unified.Contact{RemoteID: "42", FirstName: "Ada"})
		require.NoError(t, err)

		assert.NotEqual(t, firstID, secondID)
	})

	t.Run("empty incoming fields keep stored values", func(t *testing.T) {
		db := newTestDB(t)
		writer := NewGormContactWriter(db)
		connID := uuid.New()

		id, err := writer.Upsert(ctx, connID, &unified.Contact{
			RemoteID: "7", FirstName: "Grace", LastName: "Hopper",
		})
		require.NoError(t, err)

		_, err = writer.Upsert(ctx, connID, &unified.Contact{
			RemoteID: "7", FirstName: "Grace",
		})
		require.NoError(t, err)

		var stored models.ContactModel
		require.NoError(t, db.First(&stored, "id = ?", id).Error)
		assert.Equal(t, "Hopper", stored.LastName)
	})

	t.Run("email removed at the provider is removed locally", func(t *testing.T) {
		db := newTestDB(t)
		writer := NewGormContactWriter(db)
		connID := uuid.New()

		id, err := writer.Upsert(ctx, connID, &unified.Contact{
			RemoteID: "8",
			EmailAddresses: []unified.EmailAddress{
				{Email: "old@example.com", Type: "WORK"},
				{Email: "keep@example.com", Type: "PERSONAL"},
			},
		})
		require.NoError(t, err)

		_, err = writer.Upsert(ctx, connID, &unified.Contact{
			RemoteID: "8",
			EmailAddresses: []unified.EmailAddress{
				{Email: "keep@example.com", Type: "PERSONAL"},
			},
		})
		require.NoError(t, err)

		var emails []models.ContactEmailModel
		require.NoError(t, db.Where("contact_id = ?", id).Find(&emails).Error)
		require.Len(t, emails, 1)
		assert.Equal(t, "keep@example.com", emails[0].Email)
	})

	t.Run("addresses reconcile by position", func(t *testing.T) {
		db := newTestDB(t)
		writer := NewGormContactWriter(db)
		connID := uuid.New()

		id, err := writer.Upsert(ctx, connID, &unified.Contact{
			RemoteID: "9",
			Addresses: []unified.Address{
				{Street1: "1 Old Road", City: "London"},
				{Street1: "2 Spare Lane", City: "Leeds"},
			},
		})
		require.NoError(t, err)

		_, err = writer.Upsert(ctx, connID, &unified.Contact{
			RemoteID: "9",
			Addresses: []unified.Address{
				{Street1: "1 New Road", City: "London"},
			},
		})
		require.NoError(t, err)

		var addresses []models.ContactAddressModel
		require.NoError(t, db.Where("contact_id = ?", id).Order("position ASC").Find(&addresses).Error)
		require.Len(t, addresses, 1)
		assert.Equal(t, "1 New Road", addresses[0].Street1)
		assert.Equal(t, 0, addresses[0].Position)
	})

	t.Run("rejects non-contact records", func(t *testing.T) {
		writer := NewGormContactWriter(newTestDB(t))
		_, err := writer.Upsert(ctx, uuid.New(), &unified.Ticket{RemoteID: "x"})
		assert.Error(t, err)
	})
}

func TestGormRemoteIDResolver(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	connID := uuid.New()

	userWriter := NewGormUserWriter(db)
	localID, err := userWriter.Upsert(ctx, connID, &unified.User{
		RemoteID: "tea_1", Name: "Turanga Leela", Email: "leela@planet.express",
	})
	require.NoError(t, err)

	resolver := NewGormRemoteIDResolver(db)

	t.Run("resolves a synced user", func(t *testing.T) {
		got, found, err := resolver.ResolveLocalID(ctx, "tea_1", connID, unified.ObjectTypeUser)
		require.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, localID, got)
	})

	t.Run("unknown remote id is not found, not an error", func(t *testing.T) {
		_, found, err := resolver.ResolveLocalID(ctx, "tea_unknown", connID, unified.ObjectTypeUser)
		require.NoError(t, err)
		assert.False(t, found)
	})

	t.Run("other connection does not see the row", func(t *testing.T) {
		_, found, err := resolver.ResolveLocalID(ctx, "tea_1", uuid.New(), unified.ObjectTypeUser)
		require.NoError(t, err)
		assert.False(t, found)
	})

	t.Run("unsupported object type errors", func(t *testing.T) {
		_, _, err := resolver.ResolveLocalID(ctx, "x", connID, unified.ObjectTypeTeam)
		assert.Error(t, err)
	})
}
