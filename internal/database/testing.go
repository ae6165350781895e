package database

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/justsurfingit/hirepath/internal/config"
	"github.com/justsurfingit/hirepath/internal/logger"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// NewTestDB returns a migrated in-memory SQLite database private to the test.
func NewTestDB(t testing.TB) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := Connect(config.DatabaseSettings{Type: config.SqliteDBType, DSN: dsn}, logger.Discard())
	require.NoError(t, err, "failed to open test database")

	t.Cleanup(func() {
		_ = Close(db)
	})
	return db
}
