package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	defaultRedisPoolSize    = 20
	defaultRedisMaxRetries  = 3
	defaultRedisDialTimeout = 5 * time.Second
	defaultRedisPrefix      = "rewind:"

	redisStreamMaxLen = 10000
)

// RedisConfig configures the Redis backend.
type RedisConfig struct {
	Host         string
	Port         int
	Password     string
	DB           int
	Cluster      bool
	ClusterNodes []string
	PoolSize     int
	MaxRetries   int
	DialTimeout  time.Duration
	Prefix       string
}

// RedisStore keeps each recording in a hash, indexes ids in a sorted set
// scored by creation time, and appends every save and delete to a stream
// so other processes can follow the archive.
type RedisStore struct {
	client redis.UniversalClient
	prefix string

	closeOnce sync.Once
	closeErr  error
}

// NewRedisStore connects to Redis and verifies the connection.
func NewRedisStore(ctx context.Context, cfg *RedisConfig) (*RedisStore, error) {
	conf, err := normalizeRedisConfig(cfg)
	if err != nil {
		return nil, err
	}

	client := newRedisClient(conf)
	s := &RedisStore{client: client, prefix: conf.Prefix}

	if err := s.pingWithRetry(ctx, conf.MaxRetries); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return s, nil
}

// NewRedisStoreFromClient wraps an existing client. Close closes the client.
func NewRedisStoreFromClient(client redis.UniversalClient, prefix string) *RedisStore {
	if prefix == "" {
		prefix = defaultRedisPrefix
	}
	return &RedisStore{client: client, prefix: prefix}
}

func (s *RedisStore) recordKey(id string) string { return s.prefix + "rec:" + id }
func (s *RedisStore) indexKey() string          { return s.prefix + "index" }

// StreamKey names the stream that receives archive notifications.
func (s *RedisStore) StreamKey() string { return s.prefix + "events" }

func (s *RedisStore) Save(ctx context.Context, entry Entry, data []byte) error {
	if entry.ID == "" {
		return fmt.Errorf("entry id is required")
	}
	meta, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("encoding entry: %w", err)
	}

	_, err = s.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, s.recordKey(entry.ID), "entry", meta, "data", data)
		pipe.ZAdd(ctx, s.indexKey(), redis.Z{Score: float64(entry.CreatedAt.UnixMilli()), Member: entry.ID})
		pipe.XAdd(ctx, s.notification("saved", entry))
		return nil
	})
	if err != nil {
		return fmt.Errorf("saving recording %s: %w", entry.ID, err)
	}
	return nil
}

func (s *RedisStore) notification(op string, entry Entry) *redis.XAddArgs {
	return &redis.XAddArgs{
		Stream: s.StreamKey(),
		MaxLen: redisStreamMaxLen,
		Values: map[string]interface{}{
			"op":     op,
			"id":     entry.ID,
			"app":    entry.AppName,
			"size":   entry.Size,
			"events": entry.Stats.TotalEvents,
		},
	}
}

func (s *RedisStore) Load(ctx context.Context, id string) (Entry, []byte, error) {
	values, err := s.client.HMGet(ctx, s.recordKey(id), "entry", "data").Result()
	if err != nil {
		return Entry{}, nil, fmt.Errorf("loading recording %s: %w", id, err)
	}
	if len(values) != 2 || values[0] == nil || values[1] == nil {
		return Entry{}, nil, ErrNotFound
	}

	meta, err := asString(values[0])
	if err != nil {
		return Entry{}, nil, err
	}
	data, err := asString(values[1])
	if err != nil {
		return Entry{}, nil, err
	}

	var entry Entry
	if err := json.Unmarshal([]byte(meta), &entry); err != nil {
		return Entry{}, nil, fmt.Errorf("decoding entry %s: %w", id, err)
	}
	return entry, []byte(data), nil
}

func (s *RedisStore) List(ctx context.Context) ([]Entry, error) {
	ids, err := s.client.ZRevRange(ctx, s.indexKey(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("listing recordings: %w", err)
	}
	if len(ids) == 0 {
		return []Entry{}, nil
	}

	cmds := make([]*redis.StringCmd, len(ids))
	_, err = s.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		for i, id := range ids {
			cmds[i] = pipe.HGet(ctx, s.recordKey(id), "entry")
		}
		return nil
	})
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("listing recordings: %w", err)
	}

	entries := make([]Entry, 0, len(ids))
	for i, cmd := range cmds {
		meta, err := cmd.Result()
		if errors.Is(err, redis.Nil) {
			// Index entry without a record; skip it.
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("listing recording %s: %w", ids[i], err)
		}
		var entry Entry
		if err := json.Unmarshal([]byte(meta), &entry); err != nil {
			return nil, fmt.Errorf("decoding entry %s: %w", ids[i], err)
		}
		entries = append(entries, entry)
	}
	sortEntries(entries)
	return entries, nil
}

func (s *RedisStore) Delete(ctx context.Context, id string) error {
	n, err := s.client.Del(ctx, s.recordKey(id)).Result()
	if err != nil {
		return fmt.Errorf("deleting recording %s: %w", id, err)
	}
	if err := s.client.ZRem(ctx, s.indexKey(), id).Err(); err != nil {
		return fmt.Errorf("deleting recording %s from index: %w", id, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	if err := s.client.XAdd(ctx, s.notification("deleted", Entry{ID: id})).Err(); err != nil {
		return fmt.Errorf("publishing delete of %s: %w", id, err)
	}
	return nil
}

// Close releases Redis resources. It is idempotent.
func (s *RedisStore) Close() error {
	s.closeOnce.Do(func() {
		s.closeErr = s.client.Close()
	})
	return s.closeErr
}

func (s *RedisStore) pingWithRetry(ctx context.Context, maxRetries int) error {
	attempts := maxRetries + 1
	if attempts < 1 {
		attempts = 1
	}

	backoff := 100 * time.Millisecond
	var lastErr error
	for i := 0; i < attempts; i++ {
		if err := s.client.Ping(ctx).Err(); err == nil {
			return nil
		} else {
			lastErr = err
		}

		if i == attempts-1 {
			break
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}

		backoff *= 2
	}

	if lastErr == nil {
		lastErr = errors.New("ping failed with unknown error")
	}
	return lastErr
}

func normalizeRedisConfig(cfg *RedisConfig) (*RedisConfig, error) {
	if cfg == nil {
		return nil, fmt.Errorf("redis config is required")
	}

	conf := *cfg
	if conf.PoolSize <= 0 {
		conf.PoolSize = defaultRedisPoolSize
	}
	if conf.MaxRetries <= 0 {
		conf.MaxRetries = defaultRedisMaxRetries
	}
	if conf.DialTimeout <= 0 {
		conf.DialTimeout = defaultRedisDialTimeout
	}
	if conf.Prefix == "" {
		conf.Prefix = defaultRedisPrefix
	}

	if conf.Cluster {
		if len(conf.ClusterNodes) == 0 {
			return nil, fmt.Errorf("cluster_nodes is required when cluster=true")
		}
	} else {
		if conf.Host == "" {
			return nil, fmt.Errorf("host is required when cluster=false")
		}
		if conf.Port <= 0 {
			return nil, fmt.Errorf("port must be positive when cluster=false, got %d", conf.Port)
		}
	}

	return &conf, nil
}

func newRedisClient(cfg *RedisConfig) redis.UniversalClient {
	if cfg.Cluster {
		return redis.NewClusterClient(&redis.ClusterOptions{
			Addrs:       cfg.ClusterNodes,
			Password:    cfg.Password,
			PoolSize:    cfg.PoolSize,
			MaxRetries:  cfg.MaxRetries,
			DialTimeout: cfg.DialTimeout,
		})
	}

	addr := cfg.Host + ":" + strconv.Itoa(cfg.Port)
	return redis.NewClient(&redis.Options{
		Addr:        addr,
		Password:    cfg.Password,
		DB:          cfg.DB,
		PoolSize:    cfg.PoolSize,
		MaxRetries:  cfg.MaxRetries,
		DialTimeout: cfg.DialTimeout,
	})
}

func asString(v interface{}) (string, error) {
	switch x := v.(type) {
	case string:
		return x, nil
	case []byte:
		return string(x), nil
	default:
		return "", fmt.Errorf("unexpected redis value type %T", v)
	}
}
