// (c) 2019-2020, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package chainevents defines the contract Atlas consumes from the
// blockchain-backed event source (spec.md §6): an ordered stream of
// BlockFrame values, each carrying zero or more topology events. The
// Source implementation itself (a live Substreams client) is explicitly
// out of scope; only the consumed interface and its wire-level event
// shapes live here.
package chainevents

import (
	"context"

	"github.com/defi-wonderland/atlas/graph"
)

// BlockFrame is one unit of work from the Source: a block number and
// timestamp, the cursor to persist once the block is fully processed,
// and the block's topology events in their declared order.
type BlockFrame struct {
	BlockNumber    uint64
	BlockTimestamp uint64
	Cursor         string
	Events         []graph.Event
}

// Source produces an ordered stream of BlockFrame values. Next returns
// io.EOF once the configured end block (if any) has been reached; the
// event loop treats io.EOF and atlaserr.ErrSourceTerminated alike as a
// clean termination, and any other error as atlaserr.ErrSourceError.
//
// The Source is permitted to replay from any cursor: callers that need
// to resume seek via Seek before the first call to Next.
type Source interface {
	// Seek positions the Source to resume from cursor. An empty cursor
	// means start from genesis.
	Seek(ctx context.Context, cursor string) error
	// Next blocks until the next BlockFrame is available, ctx is
	// cancelled, or the stream ends (io.EOF).
	Next(ctx context.Context) (BlockFrame, error)
	// Close releases the Source's underlying connection.
	Close() error
}
