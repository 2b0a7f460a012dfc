package redis

import (
	"context"
	"io"
	"log/slog"
	"strconv"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiebiao/bookshelf/internal/domain/book"
	"github.com/xiebiao/bookshelf/internal/infrastructure/config"
	"github.com/xiebiao/bookshelf/pkg/circuitbreaker"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

func newTestClient(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestNewClient(t *testing.T) {
	mr := miniredis.RunT(t)
	host := mr.Host()
	port, err := strconv.Atoi(mr.Port())
	require.NoError(t, err)

	client, err := NewClient(context.Background(), config.RedisConfig{Host: host, Port: port}, discard)
	require.NoError(t, err)
	defer client.Close()

	mr.Close()
	_, err = NewClient(context.Background(), config.RedisConfig{Host: host, Port: port, DialTimeout: 100 * time.Millisecond}, discard)
	assert.Error(t, err)
}

func TestBlacklist(t *testing.T) {
	mr, client := newTestClient(t)
	store := NewSessionStore(client)
	ctx := context.Background()

	revoked, err := store.IsInBlacklist(ctx, "token-a")
	require.NoError(t, err)
	assert.False(t, revoked)

	require.NoError(t, store.AddToBlacklist(ctx, "token-a", time.Minute))
	revoked, err = store.IsInBlacklist(ctx, "token-a")
	require.NoError(t, err)
	assert.True(t, revoked)
	assert.Equal(t, time.Minute, mr.TTL("blacklist:token-a"))

	mr.FastForward(2 * time.Minute)
	revoked, err = store.IsInBlacklist(ctx, "token-a")
	require.NoError(t, err)
	assert.False(t, revoked)

	require.NoError(t, store.AddToBlacklist(ctx, "token-b", 0))
	assert.False(t, mr.Exists("blacklist:token-b"))
}

func TestSession(t *testing.T) {
	mr, client := newTestClient(t)
	store := NewSessionStore(client)
	ctx := context.Background()

	require.NoError(t, store.SaveSession(ctx, "u1", map[string]interface{}{
		"email":    "reader@example.com",
		"nickname": "reader",
	}, time.Hour))
	assert.Equal(t, time.Hour, mr.TTL("session:u1"))

	assert.Equal(t, "reader", mr.HGet("session:u1", "nickname"))

	active, err := store.HasSession(ctx, "u1")
	require.NoError(t, err)
	assert.True(t, active)

	require.NoError(t, store.DeleteSession(ctx, "u1"))
	active, err = store.HasSession(ctx, "u1")
	require.NoError(t, err)
	assert.False(t, active)

	mr.Close()
	_, err = store.HasSession(ctx, "u1")
	assert.Error(t, err)
}

func TestBookCache(t *testing.T) {
	mr, client := newTestClient(t)
	cache := NewBookCache(client, 10*time.Minute, discard)
	ctx := context.Background()

	got, ok, err := cache.Get(ctx, "b1")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, got)

	b := &book.Book{ID: "b1", Title: "Dune", Author: "Herbert", Category: "SciFi", Price: 15, Rating: 4.5,
		PublishedDate: time.Date(1965, 8, 1, 0, 0, 0, 0, time.UTC)}
	require.NoError(t, cache.Set(ctx, b))
	assert.Equal(t, 10*time.Minute, mr.TTL("book:b1"))

	got, ok, err = cache.Get(ctx, "b1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "Dune", got.Title)
	assert.True(t, b.PublishedDate.Equal(got.PublishedDate))

	require.NoError(t, cache.Delete(ctx, "b1"))
	_, ok, err = cache.Get(ctx, "b1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestBookCacheDeleteBlocksStaleBackfill(t *testing.T) {
	mr, client := newTestClient(t)
	cache := NewBookCache(client, 10*time.Minute, discard)
	ctx := context.Background()

	// 读请求未命中后从数据库读到旧记录，回填前记录被删除
	_, ok, err := cache.Get(ctx, "b1")
	require.NoError(t, err)
	require.False(t, ok)
	stale := &book.Book{ID: "b1", Title: "Dune", Author: "Herbert", Category: "SciFi", Price: 15}

	require.NoError(t, cache.Delete(ctx, "b1"))
	assert.Equal(t, DefaultTombstoneTTL, mr.TTL("book:b1"))

	require.NoError(t, cache.Set(ctx, stale))
	_, ok, err = cache.Get(ctx, "b1")
	require.NoError(t, err)
	assert.False(t, ok, "删除后的旧记录不能被回填")
	assert.Equal(t, DefaultTombstoneTTL, mr.TTL("book:b1"))

	// 失效标记过期后恢复正常回填
	mr.FastForward(DefaultTombstoneTTL + time.Second)
	fresh := &book.Book{ID: "b1", Title: "Dune Messiah", Author: "Herbert", Category: "SciFi", Price: 18}
	require.NoError(t, cache.Set(ctx, fresh))
	got, ok, err := cache.Get(ctx, "b1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "Dune Messiah", got.Title)
}

func TestBookCacheDeleteOverwritesCachedEntry(t *testing.T) {
	mr, client := newTestClient(t)
	cache := NewBookCache(client, 10*time.Minute, discard)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, &book.Book{ID: "b1", Title: "Dune"}))
	require.NoError(t, cache.Delete(ctx, "b1"))
	assert.Equal(t, DefaultTombstoneTTL, mr.TTL("book:b1"))

	_, ok, err := cache.Get(ctx, "b1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestBookCacheMissDoesNotTrip(t *testing.T) {
	_, client := newTestClient(t)
	cache := NewBookCache(client, time.Minute, discard)

	for i := 0; i < 10; i++ {
		_, _, err := cache.Get(context.Background(), "missing")
		require.NoError(t, err)
	}
	assert.NoError(t, cache.Check(context.Background()))
}

func TestBookCacheTripsWhenRedisDown(t *testing.T) {
	mr, client := newTestClient(t)
	cache := NewBookCache(client, time.Minute, discard)
	mr.Close()

	for i := 0; i < 5; i++ {
		_, _, err := cache.Get(context.Background(), "b1")
		require.Error(t, err)
	}
	assert.ErrorIs(t, cache.Check(context.Background()), circuitbreaker.ErrOpenState)

	_, _, err := cache.Get(context.Background(), "b1")
	assert.ErrorIs(t, err, circuitbreaker.ErrOpenState)
}
