package storage

import (
	"context"
	"sync"
)

// MemoryStore keeps recordings in a map. Contents are lost when the process
// exits. Thread-safe for concurrent use.
type MemoryStore struct {
	mu    sync.RWMutex
	items map[string]memItem
}

type memItem struct {
	entry Entry
	data  []byte
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		items: make(map[string]memItem),
	}
}

func (s *MemoryStore) Save(_ context.Context, entry Entry, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	item := memItem{
		entry: entry,
		data:  make([]byte, len(data)),
	}
	copy(item.data, data)
	s.items[entry.ID] = item
	return nil
}

func (s *MemoryStore) Load(_ context.Context, id string) (Entry, []byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	item, ok := s.items[id]
	if !ok {
		return Entry{}, nil, ErrNotFound
	}
	// Return a copy to prevent mutation.
	data := make([]byte, len(item.data))
	copy(data, item.data)
	return item.entry, data, nil
}

func (s *MemoryStore) List(_ context.Context) ([]Entry, error) {
	s.mu.RLock()
	entries := make([]Entry, 0, len(s.items))
	for _, item := range s.items {
		entries = append(entries, item.entry)
	}
	s.mu.RUnlock()

	sortEntries(entries)
	return entries, nil
}

func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.items[id]; !ok {
		return ErrNotFound
	}
	delete(s.items, id)
	return nil
}

func (s *MemoryStore) Close() error { return nil }

// Len returns the number of stored recordings.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}
