package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/SmitUplenchwar2687/Rewind/pkg/config"
	"github.com/SmitUplenchwar2687/Rewind/pkg/recording"
)

func sampleExport(t *testing.T) recording.Export {
	t.Helper()
	ev, err := recording.NewEvent(10*time.Millisecond, recording.KindClick, recording.Pointer{Button: recording.ButtonLeft, Target: "ok"})
	if err != nil {
		t.Fatalf("NewEvent() error = %v", err)
	}
	events := []recording.Event{ev}
	return recording.Export{
		Config: recording.MinimalConfig("facade"),
		Events: events,
		Stats:  recording.ComputeStats(events, nil),
	}
}

func TestArchiveRoundTrip(t *testing.T) {
	ctx := context.Background()
	store, err := NewSQLiteStore(ctx, filepath.Join(t.TempDir(), "archive.db"))
	if err != nil {
		t.Fatalf("NewSQLiteStore() error = %v", err)
	}
	arch := NewArchive(store)
	defer arch.Close()

	e := sampleExport(t)
	entry, err := arch.Push(ctx, e)
	if err != nil {
		t.Fatalf("Push() error = %v", err)
	}
	got, _, _, err := arch.Pull(ctx, entry.ID)
	if err != nil {
		t.Fatalf("Pull() error = %v", err)
	}
	if !recording.Equal(got, e) {
		t.Error("pulled recording differs")
	}
	if err := arch.Delete(ctx, entry.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, _, _, err := arch.Pull(ctx, entry.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("Pull() after delete error = %v, want ErrNotFound", err)
	}
}

func TestOpenNotConfigured(t *testing.T) {
	if _, err := Open(context.Background(), config.Default().Storage); !errors.Is(err, ErrNotConfigured) {
		t.Errorf("Open() error = %v, want ErrNotConfigured", err)
	}
}
