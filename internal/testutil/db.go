package testutil

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"go.uber.org/zap"

	"github.com/SergeyParamoshkin/blog/internal/database"
)

// NewDB returns a migrated in-memory sqlite database closed at test cleanup.
func NewDB(t testing.TB) *bun.DB {
	t.Helper()

	ctx := context.Background()
	db, err := database.Open(ctx, database.Config{
		Driver: database.DriverSQLite,
		DSN:    fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()),
	}, zap.NewNop().Sugar())
	require.NoError(t, err)

	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, database.Migrate(ctx, db, zap.NewNop().Sugar()))

	return db
}
