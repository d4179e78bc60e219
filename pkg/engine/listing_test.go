package engine

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cuemby/vss/pkg/types"
)

// Scenario 5: listing snapshot correctness.
func TestListingSnapshotCorrectness(t *testing.T) {
	e := newTestEngine()
	ctx := context.Background()

	for i := 0; i < 1000; i++ {
		key := fmt.Sprintf("k%d", i)
		require.NoError(t, e.Put(ctx, PutRequest{
			UserToken:        "u1",
			StoreID:          "s",
			GlobalVersion:    int64p(int64(i)),
			TransactionItems: []types.KeyVersionValue{{Key: key, Version: 0, Value: []byte(key)}},
		}))
	}

	// overwrite k1 (global=1000) and k2 twice (global=1001,1002)
	require.NoError(t, e.Put(ctx, PutRequest{
		UserToken:        "u1",
		StoreID:          "s",
		GlobalVersion:    int64p(1000),
		TransactionItems: []types.KeyVersionValue{{Key: "k1", Version: 1, Value: []byte("k1-v2")}},
	}))
	require.NoError(t, e.Put(ctx, PutRequest{
		UserToken:        "u1",
		StoreID:          "s",
		GlobalVersion:    int64p(1001),
		TransactionItems: []types.KeyVersionValue{{Key: "k2", Version: 1, Value: []byte("k2-v2")}},
	}))
	require.NoError(t, e.Put(ctx, PutRequest{
		UserToken:        "u1",
		StoreID:          "s",
		GlobalVersion:    int64p(1002),
		TransactionItems: []types.KeyVersionValue{{Key: "k2", Version: 2, Value: []byte("k2-v3")}},
	}))

	seen := make(map[string]types.KeyVersion)
	var pageToken *string
	firstPage := true

	for {
		res, err := e.ListKeyVersions(ctx, ListRequest{UserToken: "u1", StoreID: "s", PageToken: pageToken})
		require.NoError(t, err)

		if firstPage {
			require.NotNil(t, res.GlobalVersion)
			assert.Equal(t, int64(1003), *res.GlobalVersion)
			firstPage = false
		} else {
			assert.Nil(t, res.GlobalVersion)
		}

		for _, kv := range res.KeyVersions {
			require.NotEqual(t, types.GlobalVersionKey, kv.Key)
			seen[kv.Key] = kv
		}

		if len(res.KeyVersions) == 0 {
			break
		}
		token := res.NextPageToken
		pageToken = &token
	}

	assert.Len(t, seen, 1000)
	assert.Equal(t, int64(2), seen["k1"].Version)
	assert.Equal(t, int64(3), seen["k2"].Version)
}

// P5: reserved key is never surfaced by listing.
func TestListKeyVersionsHidesReservedKey(t *testing.T) {
	e := newTestEngine()
	ctx := context.Background()

	require.NoError(t, e.Put(ctx, PutRequest{
		UserToken:        "u1",
		StoreID:          "s",
		GlobalVersion:    int64p(0),
		TransactionItems: []types.KeyVersionValue{{Key: "k1", Version: 0}},
	}))

	res, err := e.ListKeyVersions(ctx, ListRequest{UserToken: "u1", StoreID: "s"})
	require.NoError(t, err)
	for _, kv := range res.KeyVersions {
		assert.NotEqual(t, types.GlobalVersionKey, kv.Key)
	}
}

func TestListKeyVersionsPrefixFilter(t *testing.T) {
	e := newTestEngine()
	ctx := context.Background()

	for _, k := range []string{"a", "ax", "b", "c"} {
		require.NoError(t, e.Put(ctx, PutRequest{
			UserToken:        "u1",
			StoreID:          "s",
			TransactionItems: []types.KeyVersionValue{{Key: k, Version: 0}},
		}))
	}

	prefix := "a"
	res, err := e.ListKeyVersions(ctx, ListRequest{UserToken: "u1", StoreID: "s", KeyPrefix: &prefix})
	require.NoError(t, err)
	assert.Len(t, res.KeyVersions, 2)
}

func TestListKeyVersionsNeverUsedGlobalVersionReturnsZero(t *testing.T) {
	e := newTestEngine()
	ctx := context.Background()

	require.NoError(t, e.Put(ctx, PutRequest{
		UserToken:        "u1",
		StoreID:          "s",
		TransactionItems: []types.KeyVersionValue{{Key: "k1", Version: 0}},
	}))

	res, err := e.ListKeyVersions(ctx, ListRequest{UserToken: "u1", StoreID: "s"})
	require.NoError(t, err)
	require.NotNil(t, res.GlobalVersion)
	assert.Equal(t, int64(0), *res.GlobalVersion)
}

func TestListKeyVersionsEmptyPageEndsPagination(t *testing.T) {
	e := newTestEngine()
	ctx := context.Background()

	res, err := e.ListKeyVersions(ctx, ListRequest{UserToken: "u1", StoreID: "s"})
	require.NoError(t, err)
	assert.Empty(t, res.KeyVersions)
	assert.Empty(t, res.NextPageToken)
}
