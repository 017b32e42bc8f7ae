// Package storage archives recording documents in memory, SQLite, Redis
// or S3.
package storage

import (
	"context"

	"github.com/redis/go-redis/v9"

	"github.com/SmitUplenchwar2687/Rewind/internal/config"
	internal "github.com/SmitUplenchwar2687/Rewind/internal/storage"
)

type (
	Store         = internal.Store
	Entry         = internal.Entry
	Archive       = internal.Archive
	ArchiveOption = internal.ArchiveOption
	MemoryStore   = internal.MemoryStore
	SQLiteStore   = internal.SQLiteStore
	RedisStore    = internal.RedisStore
	RedisConfig   = internal.RedisConfig
	S3Store       = internal.S3Store
	S3Config      = internal.S3Config
)

var (
	ErrNotFound      = internal.ErrNotFound
	ErrNotConfigured = internal.ErrNotConfigured
)

var (
	WithClock  = internal.WithClock
	WithLogger = internal.WithLogger
)

// NewArchive wraps store with encoding and validation.
func NewArchive(store Store, opts ...ArchiveOption) *Archive {
	return internal.NewArchive(store, opts...)
}

// Open builds the backend selected by cfg, or returns ErrNotConfigured.
func Open(ctx context.Context, cfg config.StorageConfig) (Store, error) {
	return internal.Open(ctx, cfg)
}

func NewMemoryStore() *MemoryStore { return internal.NewMemoryStore() }

func NewSQLiteStore(ctx context.Context, path string) (*SQLiteStore, error) {
	return internal.NewSQLiteStore(ctx, path)
}

func NewRedisStore(ctx context.Context, cfg *RedisConfig) (*RedisStore, error) {
	return internal.NewRedisStore(ctx, cfg)
}

// NewRedisStoreFromClient wraps an existing client. Close closes the client.
func NewRedisStoreFromClient(client redis.UniversalClient, prefix string) *RedisStore {
	return internal.NewRedisStoreFromClient(client, prefix)
}

func NewS3Store(ctx context.Context, cfg S3Config) (*S3Store, error) {
	return internal.NewS3Store(ctx, cfg)
}
