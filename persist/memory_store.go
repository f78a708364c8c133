// (c) 2019-2020, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package persist

import (
	"context"
	"sync"
)

// MemoryStore is an in-memory Store for tests, mirroring
// bus.MemorySink's never-fail shape; unlike MemorySink it keeps only the
// latest saved checkpoint.
type MemoryStore struct {
	mu     sync.Mutex
	saved  Checkpoint
	hasAny bool
	closed bool
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Save overwrites the store's single checkpoint. Real Store
// implementations keep only the latest checkpoint too (spec.md §6
// describes a single keyed cursor/state record, not a history).
func (m *MemoryStore) Save(_ context.Context, cp Checkpoint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saved = cp
	m.hasAny = true
	return nil
}

// Load returns the last-saved Checkpoint, or ErrNotFound if Save has
// never been called.
func (m *MemoryStore) Load(_ context.Context) (Checkpoint, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.hasAny {
		return Checkpoint{}, ErrNotFound
	}
	return m.saved, nil
}

// Close marks the store closed.
func (m *MemoryStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// Closed reports whether Close has been called.
func (m *MemoryStore) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

var _ Store = (*MemoryStore)(nil)
