package cache_test

import (
	"context"
	"testing"
	"time"

	"github.com/Totarae/linkgate/internal/cache"
	"github.com/Totarae/linkgate/internal/model"
	"github.com/Totarae/linkgate/internal/storage"
	"github.com/Totarae/linkgate/internal/storage/memory"
	"github.com/Totarae/linkgate/internal/storage/storetest"
	"github.com/Totarae/linkgate/internal/testutils"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newClient(t *testing.T) *redis.Client {
	t.Helper()
	client := redis.NewClient(&redis.Options{Addr: testutils.RedisAddr(t)})
	require.NoError(t, client.Ping(context.Background()).Err())
	return client
}

func TestStore_Suite(t *testing.T) {
	client := newClient(t)
	t.Cleanup(func() { _ = client.Close() })

	storetest.Run(t, func(t *testing.T) storage.Store {
		require.NoError(t, client.FlushDB(context.Background()).Err())
		// Close is not called here: the client is shared across subtests.
		return cache.New(memory.New(), client, time.Minute, zap.NewNop())
	})
}

func TestStore_ServesFromCacheAndInvalidates(t *testing.T) {
	ctx := context.Background()
	client := newClient(t)
	inner := memory.New()
	s := cache.New(inner, client, time.Minute, zap.NewNop())
	t.Cleanup(func() { _ = s.Close() })

	l := storetest.NewLink("u1", "hot", time.Now())
	l.Password = &model.Credential{Hash: []byte("h"), Salt: []byte("s")}
	ok, err := s.InsertLinkIfAbsent(ctx, l)
	require.NoError(t, err)
	require.True(t, ok)

	got, err := s.GetLinkByCode(ctx, "hot")
	require.NoError(t, err)
	assert.Equal(t, l.DestinationURL, got.DestinationURL)

	n, err := client.Exists(ctx, "linkgate:code:hot").Result()
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	// Served from Redis, credential included.
	got, err = s.GetLinkByCode(ctx, "hot")
	require.NoError(t, err)
	require.NotNil(t, got.Password)
	assert.Equal(t, []byte("h"), got.Password.Hash)
	assert.Equal(t, []byte("s"), got.Password.Salt)

	require.NoError(t, s.UpdateDestination(ctx, l.ID, "https://golang.org", "golang"))
	got, err = s.GetLinkByCode(ctx, "hot")
	require.NoError(t, err)
	assert.Equal(t, "https://golang.org", got.DestinationURL)

	require.NoError(t, s.SetActive(ctx, l.ID, false))
	got, err = s.GetLinkByCode(ctx, "hot")
	require.NoError(t, err)
	assert.False(t, got.Active)

	require.NoError(t, s.DeleteLink(ctx, l.ID))
	_, err = s.GetLinkByCode(ctx, "hot")
	assert.ErrorIs(t, err, model.ErrNotFound)

	require.NoError(t, s.Ping(ctx))
}
