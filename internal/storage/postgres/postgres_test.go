package postgres_test

import (
	"context"
	"testing"

	"github.com/Totarae/linkgate/internal/database"
	"github.com/Totarae/linkgate/internal/migrations"
	"github.com/Totarae/linkgate/internal/storage"
	"github.com/Totarae/linkgate/internal/storage/postgres"
	"github.com/Totarae/linkgate/internal/storage/storetest"
	"github.com/Totarae/linkgate/internal/testutils"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestStore(t *testing.T) {
	dsn := testutils.PostgresDSN(t)
	logger := zap.NewNop()
	require.NoError(t, migrations.Up(dsn, logger))

	ctx := context.Background()
	db, err := database.NewDB(ctx, dsn, database.Options{MaxConns: 10}, logger)
	require.NoError(t, err)
	t.Cleanup(db.Close)

	storetest.Run(t, func(t *testing.T) storage.Store {
		_, err := db.Pool.Exec(ctx, `TRUNCATE links, click_events`)
		require.NoError(t, err)
		return postgres.New(db)
	})
}

func TestMigrations_Idempotent(t *testing.T) {
	dsn := testutils.PostgresDSN(t)
	logger := zap.NewNop()

	require.NoError(t, migrations.Up(dsn, logger))
	require.NoError(t, migrations.Up(dsn, logger))
	require.NoError(t, migrations.Down(dsn, logger))
	require.NoError(t, migrations.Up(dsn, logger))
}
