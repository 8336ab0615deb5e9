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

func TestGormExtensionStore(t *testing.T) {
	ctx := context.Background()

	t.Run("field mappings are scoped to provider, account and object", func(t *testing.T) {
		db := newTestDB(t)
		store := NewGormExtensionStore(db)
		accountID := uuid.New()

		require.NoError(t, store.CreateAttribute(ctx, &unified.Attribute{
			Slug: "fav_color", Source: "hubspot", LinkedAccountID: accountID,
			ObjectKey: "crm.contact", RemoteFieldID: "favorite_color",
		}))
		require.NoError(t, store.CreateAttribute(ctx, &unified.Attribute{
			Slug: "severity", Source: "front", LinkedAccountID: accountID,
			ObjectKey: "ticketing.ticket", RemoteFieldID: "cf_sev",
		}))

		mappings, err := store.GetFieldMappings(ctx, "hubspot", accountID, "crm.contact")
		require.NoError(t, err)
		require.Len(t, mappings, 1)
		assert.Equal(t, unified.FieldMapping{Slug: "fav_color", RemoteFieldID: "favorite_color"}, mappings[0])

		// No mappings configured is an empty list, not an error
		mappings, err = store.GetFieldMappings(ctx, "hubspot", uuid.New(), "crm.contact")
		require.NoError(t, err)
		assert.Empty(t, mappings)
	})

	t.Run("unknown slug yields the sentinel", func(t *testing.T) {
		store := NewGormExtensionStore(newTestDB(t))

		_, err := store.FindAttribute(ctx, "never_defined", "hubspot", uuid.New())
		assert.ErrorIs(t, err, unified.ErrAttributeNotFound)
	})

	t.Run("entity anchor is reused per record", func(t *testing.T) {
		db := newTestDB(t)
		store := NewGormExtensionStore(db)
		ownerID := uuid.New()

		first, err := store.CreateEntity(ctx, ownerID)
		require.NoError(t, err)
		second, err := store.CreateEntity(ctx, ownerID)
		require.NoError(t, err)
		assert.Equal(t, first.ID, second.ID)

		var count int64
		require.NoError(t, db.Model(&models.EntityModel{}).Count(&count).Error)
		assert.EqualValues(t, 1, count)
	})

	t.Run("value upsert replaces per attribute-entity pair", func(t *testing.T) {
		db := newTestDB(t)
		store := NewGormExtensionStore(db)
		accountID := uuid.New()

		attr := &unified.Attribute{
			Slug: "tier", Source: "hubspot", LinkedAccountID: accountID,
			ObjectKey: "crm.contact", RemoteFieldID: "cf_tier",
		}
		require.NoError(t, store.CreateAttribute(ctx, attr))
		entity, err := store.CreateEntity(ctx, uuid.New())
		require.NoError(t, err)

		require.NoError(t, store.UpsertValue(ctx, attr.ID, entity.ID, "silver"))
		require.NoError(t, store.UpsertValue(ctx, attr.ID, entity.ID, "gold"))

		var values []models.AttributeValueModel
		require.NoError(t, db.Where("entity_id = ?", entity.ID).Find(&values).Error)
		require.Len(t, values, 1)
		assert.Equal(t, "gold", values[0].Data)
	})
}

func TestGormRawPayloadStore(t *testing.T) {
	ctx := context.Background()

	t.Run("only the latest payload is kept", func(t *testing.T) {
		db := newTestDB(t)
		store := NewGormRawPayloadStore(db)
		ownerID := uuid.New()

		require.NoError(t, store.Upsert(ctx, ownerID, []byte(`{"v":1}`)))
		require.NoError(t, store.Upsert(ctx, ownerID, []byte(`{"v":2}`)))

		payload, err := store.Get(ctx, ownerID)
		require.NoError(t, err)
		assert.JSONEq(t, `{"v":2}`, string(payload))

		var count int64
		require.NoError(t, db.Model(&models.RemoteDataModel{}).Count(&count).Error)
		assert.EqualValues(t, 1, count)
	})

	t.Run("missing payload yields the sentinel", func(t *testing.T) {
		store := NewGormRawPayloadStore(newTestDB(t))

		_, err := store.Get(ctx, uuid.New())
		assert.ErrorIs(t, err, unified.ErrRecordNotFound)
	})
}

func TestGormConnectionRepository(t *testing.T) {
	ctx := context.Background()

	t.Run("save and find by account, provider, vertical", func(t *testing.T) {
		db := newTestDB(t)
		repo := NewGormConnectionRepository(db)
		accountID := uuid.New()

		conn, err := unified.NewConnection(accountID, "front", unified.VerticalTicketing)
		require.NoError(t, err)
		require.NoError(t, repo.Save(ctx, conn))

		found, err := repo.FindForLinkedAccount(ctx, accountID, "front", unified.VerticalTicketing)
		require.NoError(t, err)
		assert.Equal(t, conn.ID, found.ID)
		assert.Equal(t, unified.ConnectionStatusActive, found.Status)

		_, err = repo.FindForLinkedAccount(ctx, accountID, "zendesk", unified.VerticalTicketing)
		assert.ErrorIs(t, err, unified.ErrConnectionNotFound)
	})

	t.Run("status update round-trips", func(t *testing.T) {
		db := newTestDB(t)
		repo := NewGormConnectionRepository(db)

		conn, err := unified.NewConnection(uuid.New(), "hubspot", unified.VerticalCRM)
		require.NoError(t, err)
		require.NoError(t, repo.Save(ctx, conn))

		conn.MarkNeedsReauth()
		require.NoError(t, repo.Save(ctx, conn))

		found, err := repo.FindByID(ctx, conn.ID)
		require.NoError(t, err)
		assert.Equal(t, unified.ConnectionStatusNeedsReauth, found.Status)
	})
}

func TestGormTenantRepository(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	repo := NewGormTenantRepository(db)

	active := models.TenantModel{ID: uuid.New(), Name: "acme", IsActive: true}
	dormant := models.TenantModel{ID: uuid.New(), Name: "globex", IsActive: false}
	require.NoError(t, db.Create(&active).Error)
	require.NoError(t, db.Create(&dormant).Error)

	tenants, err := repo.FindAllActive(ctx)
	require.NoError(t, err)
	require.Len(t, tenants, 1)
	assert.Equal(t, "acme", tenants[0].Name)

	_, err = repo.FindByID(ctx, uuid.New())
	assert.ErrorIs(t, err, unified.ErrTenantNotFound)
}
