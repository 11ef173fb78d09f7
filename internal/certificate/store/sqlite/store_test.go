package sqlite

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"romportal/internal/certificate/models"
	"romportal/internal/certificate/service"
	"romportal/internal/certificate/store/storetest"
	"romportal/internal/platform/database"
)

type SQLiteStoreSuite struct {
	storetest.Suite
}

func TestSQLiteStoreSuite(t *testing.T) {
	s := new(SQLiteStoreSuite)
	s.NewRepo = func() service.Repository {
		db, err := database.OpenSQLite(":memory:", nil)
		require.NoError(t, err)
		sqlDB, err := db.DB()
		require.NoError(t, err)
		t.Cleanup(func() { _ = sqlDB.Close() })

		store := New(db)
		require.NoError(t, store.Migrate(context.Background()))
		return store
	}
	suite.Run(t, s)
}

func TestLockSerialBucketRequiresTransaction(t *testing.T) {
	db, err := database.OpenSQLite(":memory:", nil)
	require.NoError(t, err)
	store := New(db)
	require.NoError(t, store.Migrate(context.Background()))

	err = store.LockSerialBucket(context.Background(), models.SerialBucket{Type: models.TypeCompletion})
	require.Error(t, err)
}
