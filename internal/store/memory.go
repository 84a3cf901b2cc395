package store

import (
	"fmt"
	"sort"
	"sync"

	"ideaforge/internal/core"
)

// MemoryStore is an in-memory drop-in for Store, used when no data directory
// is writable and in tests.
type MemoryStore struct {
	mu       sync.Mutex
	ideas    map[string]core.VideoIdea
	deleted  map[string]bool
	consumed map[string]bool
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		ideas:    make(map[string]core.VideoIdea),
		deleted:  make(map[string]bool),
		consumed: make(map[string]bool),
	}
}

// SaveIdea stores a generated idea.
func (m *MemoryStore) SaveIdea(idea core.VideoIdea) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ideas[idea.ID] = idea
	delete(m.deleted, idea.ID)
	return nil
}

// ListIdeas returns all non-deleted ideas, newest first.
func (m *MemoryStore) ListIdeas() ([]core.VideoIdea, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var ideas []core.VideoIdea
	for id, idea := range m.ideas {
		if !m.deleted[id] {
			ideas = append(ideas, idea)
		}
	}
	sort.SliceStable(ideas, func(i, j int) bool {
		return ideas[i].GeneratedAt.After(ideas[j].GeneratedAt)
	})
	return ideas, nil
}

// DeleteIdea soft-deletes an idea.
func (m *MemoryStore) DeleteIdea(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.ideas[id]; !ok {
		return fmt.Errorf("idea %s not found", id)
	}
	m.deleted[id] = true
	return nil
}

// RestoreIdea clears the deleted flag on an idea.
func (m *MemoryStore) RestoreIdea(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.ideas[id]; !ok {
		return fmt.Errorf("idea %s not found", id)
	}
	delete(m.deleted, id)
	return nil
}

// Prune hard-deletes the oldest ideas beyond max.
func (m *MemoryStore) Prune(max int) error {
	live, err := m.ListIdeas()
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for i := max; i < len(live); i++ {
		delete(m.ideas, live[i].ID)
		delete(m.deleted, live[i].ID)
	}
	return nil
}

// MarkConsumed records a methodology key as used.
func (m *MemoryStore) MarkConsumed(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.consumed[key] = true
	return nil
}

// UnmarkConsumed releases a methodology key.
func (m *MemoryStore) UnmarkConsumed(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.consumed, key)
	return nil
}

// ConsumedKeys returns a copy of the used-key set.
func (m *MemoryStore) ConsumedKeys() (map[string]bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	keys := make(map[string]bool, len(m.consumed))
	for k := range m.consumed {
		keys[k] = true
	}
	return keys, nil
}
