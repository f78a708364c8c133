// (c) 2019-2020, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package bus defines the downstream message-bus contract (spec.md §6)
// and its implementations: a franz-go-backed Kafka sink for production
// and an in-memory sink for tests.
package bus

import "context"

// Sink accepts a serialized CanonicalGraphUpdated keyed by root_id for
// partition locality. Emit must not return until the message is durably
// accepted by the bus (or definitively failed); the event loop treats a
// returned error as atlaserr.ErrEmissionError.
type Sink interface {
	Emit(ctx context.Context, key, payload []byte) error
	Close() error
}
