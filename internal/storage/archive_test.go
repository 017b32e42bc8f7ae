package storage

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SmitUplenchwar2687/Rewind/internal/clock"
	"github.com/SmitUplenchwar2687/Rewind/internal/config"
	"github.com/SmitUplenchwar2687/Rewind/internal/recording"
)

var quietLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

func sampleExport() recording.Export {
	click, _ := recording.NewEvent(100*time.Millisecond, recording.KindClick, recording.Pointer{X: 10, Y: 20, Button: recording.ButtonLeft})
	key, _ := recording.NewEvent(400*time.Millisecond, recording.KindKeyDown, recording.Key{Code: "Enter"})
	events := []recording.Event{click, key}
	snapshots := []recording.Snapshot{{
		Timestamp: 250 * time.Millisecond,
		Root:      &recording.Element{ID: "root", Type: "window"},
		Window:    recording.Window{Width: 800, Height: 600, ScaleFactor: 1},
	}}
	return recording.Export{
		Config:    recording.DefaultConfig("archive-test"),
		Events:    events,
		Snapshots: snapshots,
		Stats:     recording.ComputeStats(events, snapshots),
	}
}

func newTestArchive(t *testing.T) (*Archive, *clock.VirtualClock) {
	t.Helper()
	vc := clock.NewVirtualClock(epoch)
	return NewArchive(NewMemoryStore(), WithClock(vc), WithLogger(quietLogger)), vc
}

func TestArchive_PushPull(t *testing.T) {
	a, _ := newTestArchive(t)
	ctx := context.Background()
	want := sampleExport()

	entry, err := a.Push(ctx, want)
	require.NoError(t, err)

	id, err := uuid.Parse(entry.ID)
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(7), id.Version())
	assert.Equal(t, "archive-test", entry.AppName)
	assert.True(t, entry.CreatedAt.Equal(epoch))
	assert.Equal(t, want.Stats, entry.Stats)

	got, gotEntry, warnings, err := a.Pull(ctx, entry.ID)
	require.NoError(t, err)
	assert.Empty(t, warnings)
	assert.Equal(t, entry, gotEntry)
	assert.True(t, recording.Equal(want, got), "pulled document differs")
}

func TestArchive_StoresCanonicalBytes(t *testing.T) {
	a, _ := newTestArchive(t)
	ctx := context.Background()
	e := sampleExport()

	entry, err := a.Push(ctx, e)
	require.NoError(t, err)

	raw, err := a.PullRaw(ctx, entry.ID)
	require.NoError(t, err)
	want, err := recording.Marshal(e)
	require.NoError(t, err)
	assert.Equal(t, want, raw)
	assert.Equal(t, len(raw), entry.Size)
}

func TestArchive_ListNewestFirst(t *testing.T) {
	a, vc := newTestArchive(t)
	ctx := context.Background()

	first, err := a.Push(ctx, sampleExport())
	require.NoError(t, err)
	vc.Advance(time.Minute)
	second, err := a.Push(ctx, sampleExport())
	require.NoError(t, err)

	entries, err := a.List(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, second.ID, entries[0].ID)
	assert.Equal(t, first.ID, entries[1].ID)
}

func TestArchive_PullErrors(t *testing.T) {
	a, _ := newTestArchive(t)
	ctx := context.Background()

	_, _, _, err := a.Pull(ctx, "not-a-uuid")
	assert.ErrorContains(t, err, "invalid recording id")
	_, err = a.PullRaw(ctx, "not-a-uuid")
	assert.ErrorContains(t, err, "invalid recording id")
	assert.ErrorContains(t, a.Delete(ctx, "not-a-uuid"), "invalid recording id")

	_, err = a.PullRaw(ctx, uuid.NewString())
	assert.ErrorIs(t, err, ErrNotFound)

	_, _, _, err = a.Pull(ctx, uuid.NewString())
	assert.ErrorIs(t, err, ErrNotFound)

	// A stored document that fails validation surfaces as a ParseError.
	id := uuid.NewString()
	require.NoError(t, a.Store().Save(ctx, Entry{ID: id, CreatedAt: epoch}, []byte(`{"config":{}}`)))
	_, _, _, err = a.Pull(ctx, id)
	var pe *recording.ParseError
	assert.True(t, errors.As(err, &pe), "err = %v, want ParseError", err)
}

func TestArchive_PullReportsWarnings(t *testing.T) {
	a, _ := newTestArchive(t)
	ctx := context.Background()

	doc := `{"config":{"app_name":"x","capture":{"events":true,"mouse_moves":true,"snapshots":true}},` +
		`"events":[{"data":{"code":"B"},"kind":"key_down","timestamp":200},{"data":{"code":"A"},"kind":"key_down","timestamp":100}],` +
		`"snapshots":[],"stats":{"duration":200,"total_events":2,"total_snapshots":0}}`
	id := uuid.NewString()
	require.NoError(t, a.Store().Save(ctx, Entry{ID: id, CreatedAt: epoch}, []byte(doc)))

	got, _, warnings, err := a.Pull(ctx, id)
	require.NoError(t, err)
	require.NotEmpty(t, warnings)
	assert.Equal(t, 100*time.Nanosecond, got.Events[0].Timestamp)

	_, _, _, err = a.Pull(ctx, id, recording.Strict())
	assert.Error(t, err)
}

func TestArchive_Delete(t *testing.T) {
	a, _ := newTestArchive(t)
	ctx := context.Background()

	entry, err := a.Push(ctx, sampleExport())
	require.NoError(t, err)
	require.NoError(t, a.Delete(ctx, entry.ID))
	assert.ErrorIs(t, a.Delete(ctx, entry.ID), ErrNotFound)
	require.NoError(t, a.Close())
}

func TestOpen(t *testing.T) {
	ctx := context.Background()

	_, err := Open(ctx, config.StorageConfig{})
	assert.ErrorIs(t, err, ErrNotConfigured)

	_, err = Open(ctx, config.StorageConfig{Backend: "tape"})
	assert.Error(t, err)

	s, err := Open(ctx, config.StorageConfig{Backend: config.BackendMemory})
	require.NoError(t, err)
	assert.IsType(t, &MemoryStore{}, s)

	cfg := config.Default().Storage
	cfg.Backend = config.BackendSQLite
	cfg.SQLite.Path = filepath.Join(t.TempDir(), "nested", "rewind.db")
	s, err = Open(ctx, cfg)
	require.NoError(t, err)
	assert.IsType(t, &SQLiteStore{}, s)
	require.NoError(t, s.Close())
}

func TestOpen_Redis(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := config.Default().Storage
	cfg.Backend = config.BackendRedis
	cfg.Redis.Host = mr.Host()
	cfg.Redis.Port = mustPort(t, mr.Port())

	s, err := Open(context.Background(), cfg)
	require.NoError(t, err)
	defer s.Close()

	a := NewArchive(s, WithLogger(quietLogger))
	entry, err := a.Push(context.Background(), sampleExport())
	require.NoError(t, err)
	assert.True(t, mr.Exists(cfg.Redis.Prefix+"rec:"+entry.ID))
}

func TestOpen_S3RequiresBucket(t *testing.T) {
	cfg := config.Default().Storage
	cfg.Backend = config.BackendS3
	_, err := Open(context.Background(), cfg)
	assert.Error(t, err)
}

func mustPort(t *testing.T, s string) int {
	t.Helper()
	p, err := strconv.Atoi(s)
	require.NoError(t, err)
	return p
}
