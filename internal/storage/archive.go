package storage

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/SmitUplenchwar2687/Rewind/internal/clock"
	"github.com/SmitUplenchwar2687/Rewind/internal/config"
	"github.com/SmitUplenchwar2687/Rewind/internal/recording"
)

// Archive stores recording documents in canonical form and re-imports
// them with full validation.
type Archive struct {
	store  Store
	clock  clock.Clock
	logger *slog.Logger
}

// ArchiveOption configures an Archive.
type ArchiveOption func(*Archive)

// WithClock sets the clock used for entry creation times.
func WithClock(c clock.Clock) ArchiveOption {
	return func(a *Archive) { a.clock = c }
}

func WithLogger(l *slog.Logger) ArchiveOption {
	return func(a *Archive) { a.logger = l }
}

func NewArchive(store Store, opts ...ArchiveOption) *Archive {
	a := &Archive{store: store, clock: clock.NewRealClock()}
	for _, opt := range opts {
		opt(a)
	}
	if a.logger == nil {
		a.logger = slog.Default()
	}
	return a
}

// Store returns the underlying backend.
func (a *Archive) Store() Store { return a.store }

// Push stores e under a new time-ordered id.
func (a *Archive) Push(ctx context.Context, e recording.Export) (Entry, error) {
	data, err := recording.Marshal(e)
	if err != nil {
		return Entry{}, fmt.Errorf("encoding recording: %w", err)
	}
	id, err := uuid.NewV7()
	if err != nil {
		return Entry{}, fmt.Errorf("generating id: %w", err)
	}

	entry := Entry{
		ID:        id.String(),
		AppName:   e.Config.AppName,
		CreatedAt: a.clock.Now().UTC(),
		Size:      len(data),
		Stats:     recording.ComputeStats(e.Events, e.Snapshots),
	}
	if err := a.store.Save(ctx, entry, data); err != nil {
		return Entry{}, err
	}
	a.logger.Info("recording archived", "id", entry.ID, "app", entry.AppName, "bytes", entry.Size)
	return entry, nil
}

// Pull loads and imports a recording. Warnings are those of a normal import.
func (a *Archive) Pull(ctx context.Context, id string, opts ...recording.DecodeOption) (recording.Export, Entry, recording.Warnings, error) {
	if err := checkID(id); err != nil {
		return recording.Export{}, Entry{}, nil, err
	}
	entry, data, err := a.store.Load(ctx, id)
	if err != nil {
		return recording.Export{}, Entry{}, nil, err
	}
	e, warnings, err := recording.Decode(data, opts...)
	if err != nil {
		return recording.Export{}, entry, warnings, fmt.Errorf("importing recording %s: %w", id, err)
	}
	return e, entry, warnings, nil
}

// PullRaw returns the stored canonical bytes unchanged.
func (a *Archive) PullRaw(ctx context.Context, id string) ([]byte, error) {
	if err := checkID(id); err != nil {
		return nil, err
	}
	_, data, err := a.store.Load(ctx, id)
	return data, err
}

func (a *Archive) List(ctx context.Context) ([]Entry, error) {
	return a.store.List(ctx)
}

func (a *Archive) Delete(ctx context.Context, id string) error {
	if err := checkID(id); err != nil {
		return err
	}
	if err := a.store.Delete(ctx, id); err != nil {
		return err
	}
	a.logger.Info("recording deleted", "id", id)
	return nil
}

// checkID rejects ids that Push could not have assigned.
func checkID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("invalid recording id %q: %w", id, err)
	}
	return nil
}

func (a *Archive) Close() error {
	return a.store.Close()
}

// Open builds the backend selected by cfg. It returns ErrNotConfigured when
// cfg selects no backend.
func Open(ctx context.Context, cfg config.StorageConfig) (Store, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	switch cfg.Backend {
	case config.BackendNone:
		return nil, ErrNotConfigured
	case config.BackendMemory:
		return NewMemoryStore(), nil
	case config.BackendRedis:
		r := cfg.Redis
		store, err := NewRedisStore(ctx, &RedisConfig{
			Host:         r.Host,
			Port:         r.Port,
			Password:     r.Password,
			DB:           r.DB,
			Cluster:      r.Cluster,
			ClusterNodes: append([]string(nil), r.ClusterNodes...),
			PoolSize:     r.PoolSize,
			MaxRetries:   r.MaxRetries,
			DialTimeout:  r.DialTimeout,
			Prefix:       r.Prefix,
		})
		if err != nil {
			return nil, err
		}
		return store, nil
	case config.BackendS3:
		s := cfg.S3
		store, err := NewS3Store(ctx, S3Config{
			Region:          s.Region,
			Endpoint:        s.Endpoint,
			AccessKeyID:     s.AccessKeyID,
			SecretAccessKey: s.SecretAccessKey,
			Bucket:          s.Bucket,
			Prefix:          s.Prefix,
		})
		if err != nil {
			return nil, err
		}
		return store, nil
	case config.BackendSQLite:
		store, err := NewSQLiteStore(ctx, cfg.SQLite.Path)
		if err != nil {
			return nil, err
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unsupported storage backend %q", cfg.Backend)
	}
}
