// (c) 2019-2020, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package persist defines the cursor/snapshot persistence contract
// (spec.md §6) and a PostgreSQL-backed implementation. Both the cursor
// record and the GraphState snapshot are written atomically so that a
// crash between them can never leave one ahead of the other.
package persist

import (
	"context"
	"errors"

	"github.com/defi-wonderland/atlas/graph"
)

// ErrNotFound is returned by Load when no checkpoint has ever been
// written; callers should start from source genesis with an empty
// GraphState.
var ErrNotFound = errors.New("persist: no checkpoint found")

// Checkpoint is the atomically-persisted pair spec.md §6 requires: the
// cursor to resume the Source from, and the GraphState to resume
// computation from.
type Checkpoint struct {
	Cursor      string
	BlockNumber uint64
	State       []byte // graph.State.Snapshot() output
}

// Store persists and loads Checkpoints. Save must update both the
// cursor record and the state snapshot in a single transaction
// (spec.md §6's crash-consistency requirement); Load returns
// ErrNotFound when no checkpoint has ever been saved.
type Store interface {
	Save(ctx context.Context, cp Checkpoint) error
	Load(ctx context.Context) (Checkpoint, error)
	Close() error
}

// CheckpointFromState builds a Checkpoint ready to Save.
func CheckpointFromState(cursor string, blockNumber uint64, state *graph.State) Checkpoint {
	return Checkpoint{Cursor: cursor, BlockNumber: blockNumber, State: state.Snapshot()}
}

// RestoreState decodes cp.State back into a *graph.State, the inverse
// of CheckpointFromState (spec.md §8 property 10).
func RestoreState(cp Checkpoint) (*graph.State, error) {
	return graph.Restore(cp.State)
}
