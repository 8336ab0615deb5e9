package persistence

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/unifyd/backend/internal/infrastructure/persistence/models"
)

// newTestDB opens an isolated in-memory database with the full schema. The
// pool is pinned to one connection because each sqlite :memory: connection is
// its own database.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(
		&models.TenantModel{},
		&models.ProjectModel{},
		&models.LinkedAccountModel{},
		&models.ConnectionModel{},
		&models.ContactModel{},
		&models.ContactEmailModel{},
		&models.ContactPhoneModel{},
		&models.ContactAddressModel{},
		&models.TicketModel{},
		&models.TagModel{},
		&models.TicketAssigneeModel{},
		&models.ProviderUserModel{},
		&models.TrackingCategoryModel{},
		&models.AttributeModel{},
		&models.EntityModel{},
		&models.AttributeValueModel{},
		&models.RemoteDataModel{},
	))
	return db
}
