// (c) 2019-2020, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package fetchcursor implements the minimum-pending-block cursor
// persistence policy used by the IPFS pre-fetch cache to guarantee
// restart correctness under cross-block parallelism (spec.md §4.5).
package fetchcursor

import (
	"container/heap"
	"fmt"
	"sync"
)

// Advance is a (block, cursor) pair returned by CompleteOne when the
// persisted cursor is safe to move forward to.
type Advance struct {
	Block  uint64
	Cursor string
}

type entry struct {
	cursor  string
	pending int
}

// minHeap is a min-heap of in-flight block numbers, backing fast
// minimum-key access for PendingFetches.
type minHeap []uint64

func (h minHeap) Len() int            { return len(h) }
func (h minHeap) Less(i, j int) bool  { return h[i] < h[j] }
func (h minHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *minHeap) Push(x interface{}) { *h = append(*h, x.(uint64)) }
func (h *minHeap) Pop() interface{} {
	old := *h
	n := len(old)
	v := old[n-1]
	*h = old[:n-1]
	return v
}

// PendingFetches tracks, per in-flight block, how many IPFS fetches are
// still outstanding. It is the sole coordination point for deciding when
// the persisted cursor may advance: the invariant it maintains is that
// once the cursor has advanced to a block, every earlier block has zero
// pending fetches (spec.md §4.5). All operations are serialized under a
// single lock.
type PendingFetches struct {
	lock   sync.Mutex
	blocks map[uint64]*entry
	order  minHeap
}

// NewPendingFetches returns an empty PendingFetches.
func NewPendingFetches() *PendingFetches {
	return &PendingFetches{
		blocks: make(map[uint64]*entry),
	}
}

// AddBlock registers block with its fetch cursor and fetch count. A
// count of zero is not inserted: a block with nothing pending can never
// be the blocker for a later advance and is simply never tracked.
func (p *PendingFetches) AddBlock(block uint64, cursor string, count int) {
	p.lock.Lock()
	defer p.lock.Unlock()

	if count == 0 {
		return
	}
	if _, exists := p.blocks[block]; exists {
		return
	}
	p.blocks[block] = &entry{cursor: cursor, pending: count}
	heap.Push(&p.order, block)
}

// CompleteOne marks one fetch for block as complete. If block's pending
// count reaches zero and block is the current minimum in-flight block,
// CompleteOne removes it and every
// subsequent already-zero block contiguous with it, returning the
// (block, cursor) of the latest block removed. Otherwise it returns
// (Advance{}, false).
//
// CompleteOne panics if block was never registered or has already
// reached zero pending fetches — both are programming defects in the
// caller (the IPFS cache sink), not recoverable runtime conditions.
func (p *PendingFetches) CompleteOne(block uint64) (Advance, bool) {
	p.lock.Lock()
	defer p.lock.Unlock()

	e, ok := p.blocks[block]
	if !ok {
		panic(fmt.Sprintf("fetchcursor: CompleteOne called for unregistered block %d", block))
	}
	if e.pending <= 0 {
		panic(fmt.Sprintf("fetchcursor: CompleteOne called for block %d with no pending fetches", block))
	}
	e.pending--

	if p.order.Len() == 0 || p.order[0] != block || e.pending != 0 {
		return Advance{}, false
	}

	var last Advance
	advanced := false
	for p.order.Len() > 0 {
		head := p.order[0]
		headEntry := p.blocks[head]
		if headEntry.pending != 0 {
			break
		}
		heap.Pop(&p.order)
		delete(p.blocks, head)
		last = Advance{Block: head, Cursor: headEntry.cursor}
		advanced = true
	}
	return last, advanced
}

// Len reports the number of blocks currently tracked as in-flight.
func (p *PendingFetches) Len() int {
	p.lock.Lock()
	defer p.lock.Unlock()
	return len(p.blocks)
}
