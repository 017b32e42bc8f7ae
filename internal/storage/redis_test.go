package storage

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisStore_PublishesNotifications(t *testing.T) {
	s, _ := newMiniredisStore(t)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, testEntry("n1", epoch), testDocument("n1")))
	require.NoError(t, s.Delete(ctx, "n1"))

	msgs, err := s.client.XRange(ctx, s.StreamKey(), "-", "+").Result()
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, "saved", msgs[0].Values["op"])
	assert.Equal(t, "n1", msgs[0].Values["id"])
	assert.Equal(t, "contract", msgs[0].Values["app"])
	assert.Equal(t, "deleted", msgs[1].Values["op"])
}

func TestRedisStore_KeysUsePrefix(t *testing.T) {
	s, mr := newMiniredisStore(t)
	require.NoError(t, s.Save(context.Background(), testEntry("k", epoch), testDocument("k")))

	assert.True(t, mr.Exists("test:rec:k"))
	assert.True(t, mr.Exists("test:index"))
	assert.True(t, mr.Exists("test:events"))
}

func TestRedisStore_ListSkipsDanglingIndex(t *testing.T) {
	s, _ := newMiniredisStore(t)
	ctx := context.Background()
	require.NoError(t, s.Save(ctx, testEntry("live", epoch), testDocument("live")))
	require.NoError(t, s.client.ZAdd(ctx, s.indexKey(), redisZ("ghost")).Err())

	entries, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "live", entries[0].ID)
}

func TestNewRedisStore_ConnectsByHostPort(t *testing.T) {
	_, mr := newMiniredisStore(t)
	port, err := strconv.Atoi(mr.Port())
	require.NoError(t, err)

	s, err := NewRedisStore(context.Background(), &RedisConfig{Host: mr.Host(), Port: port})
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.Save(context.Background(), testEntry("hp", epoch), testDocument("hp")))
	assert.True(t, mr.Exists(defaultRedisPrefix+"rec:hp"))
	assert.NoError(t, s.Close(), "Close should be idempotent")
}

func TestNewRedisStore_Unreachable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	_, err := NewRedisStore(ctx, &RedisConfig{Host: "127.0.0.1", Port: 1, MaxRetries: 1, DialTimeout: 100 * time.Millisecond})
	assert.Error(t, err)
}

func TestNormalizeRedisConfig(t *testing.T) {
	_, err := normalizeRedisConfig(nil)
	assert.Error(t, err)

	_, err = normalizeRedisConfig(&RedisConfig{Cluster: true})
	assert.Error(t, err, "cluster without nodes")

	_, err = normalizeRedisConfig(&RedisConfig{Host: "localhost"})
	assert.Error(t, err, "missing port")

	conf, err := normalizeRedisConfig(&RedisConfig{Host: "localhost", Port: 6379})
	require.NoError(t, err)
	assert.Equal(t, defaultRedisPoolSize, conf.PoolSize)
	assert.Equal(t, defaultRedisMaxRetries, conf.MaxRetries)
	assert.Equal(t, defaultRedisDialTimeout, conf.DialTimeout)
	assert.Equal(t, defaultRedisPrefix, conf.Prefix)
}
