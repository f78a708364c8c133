// (c) 2019-2020, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package bus

import (
	"context"
	"sync"
)

// Emission is one (key, payload) pair recorded by MemorySink.
type Emission struct {
	Key     []byte
	Payload []byte
}

// MemorySink is an in-memory Sink for tests: it records every Emit call
// in order and never fails.
type MemorySink struct {
	mu        sync.Mutex
	emissions []Emission
	closed    bool
}

// NewMemorySink returns an empty MemorySink.
func NewMemorySink() *MemorySink {
	return &MemorySink{}
}

// Emit records (key, payload).
func (m *MemorySink) Emit(_ context.Context, key, payload []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.emissions = append(m.emissions, Emission{Key: key, Payload: payload})
	return nil
}

// Close marks the sink closed. Further Emit calls still succeed;
// Closed() reports the call happened.
func (m *MemorySink) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// Emissions returns a copy of every emission recorded so far, in order.
func (m *MemorySink) Emissions() []Emission {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Emission, len(m.emissions))
	copy(out, m.emissions)
	return out
}

// Closed reports whether Close has been called.
func (m *MemorySink) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}
