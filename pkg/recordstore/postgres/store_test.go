package postgres

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cuemby/vss/pkg/recordstore"
)

// TestStoreAgainstLiveDatabase exercises the Postgres driver against a
// real instance. It is skipped unless VSS_POSTGRES_TEST_DSN is set,
// mirroring how the teacher codebase separates fast unit tests from
// environment-dependent integration tests.
func TestStoreAgainstLiveDatabase(t *testing.T) {
	dsn := os.Getenv("VSS_POSTGRES_TEST_DSN")
	if dsn == "" {
		t.Skip("VSS_POSTGRES_TEST_DSN not set; skipping Postgres integration test")
	}

	store, err := Open(dsn, DefaultPoolConfig)
	require.NoError(t, err)
	defer store.Close()

	ctx := context.Background()
	_, err = store.db.ExecContext(ctx, Schema)
	require.NoError(t, err)

	user, storeID := "it-user", "it-store"
	_, err = store.db.ExecContext(ctx, `DELETE FROM vss_records WHERE user_token = $1 AND store_id = $2`, user, storeID)
	require.NoError(t, err)

	err = store.ExecuteBatch(ctx, user, storeID, []recordstore.Op{
		{Key: "k1", Value: []byte("v1"), Kind: recordstore.OpInsertIfAbsent},
	})
	require.NoError(t, err)

	rec, ok, err := store.Get(ctx, user, storeID, "k1")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, int64(1), rec.Version)

	err = store.ExecuteBatch(ctx, user, storeID, []recordstore.Op{
		{Key: "k1", Value: []byte("v2"), Kind: recordstore.OpInsertIfAbsent},
	})
	require.ErrorIs(t, err, recordstore.ErrConflict)
}
