// Package storage archives recording documents. Backends keep the canonical
// document bytes next to a small Entry that can be listed without loading
// the document itself.
package storage

import (
	"context"
	"errors"
	"slices"
	"strings"
	"time"

	"github.com/SmitUplenchwar2687/Rewind/internal/recording"
)

var (
	// ErrNotFound is returned when no recording has the requested id.
	ErrNotFound = errors.New("storage: recording not found")
	// ErrNotConfigured is returned by Open when no backend is selected.
	ErrNotConfigured = errors.New("storage: no archive backend configured")
)

// Entry describes an archived recording.
type Entry struct {
	ID        string          `json:"id"`
	AppName   string          `json:"app_name"`
	CreatedAt time.Time       `json:"created_at"`
	Size      int             `json:"size"`
	Stats     recording.Stats `json:"stats"`
}

// Store persists documents by entry id.
// Implementations must be safe for concurrent use.
type Store interface {
	// Save stores data under entry.ID, replacing any previous document.
	Save(ctx context.Context, entry Entry, data []byte) error

	// Load returns the entry and document bytes, or ErrNotFound.
	Load(ctx context.Context, id string) (Entry, []byte, error)

	// List returns all entries, newest first.
	List(ctx context.Context) ([]Entry, error)

	// Delete removes a recording, or returns ErrNotFound.
	Delete(ctx context.Context, id string) error

	Close() error
}

// sortEntries orders newest first; ids break ties so the order is stable.
func sortEntries(entries []Entry) {
	slices.SortFunc(entries, func(a, b Entry) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(b.ID, a.ID)
	})
}
