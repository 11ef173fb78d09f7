package user

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"romportal/internal/platform/database"
)

func TestSQLiteUserStoreSuite(t *testing.T) {
	suite.Run(t, &UserStoreSuite{newStore: func() Store {
		db, err := database.OpenSQLite(":memory:", nil)
		require.NoError(t, err)
		sqlDB, err := db.DB()
		require.NoError(t, err)
		t.Cleanup(func() { _ = sqlDB.Close() })

		store := NewSQLite(db)
		require.NoError(t, store.Migrate(context.Background()))
		return store
	}})
}
