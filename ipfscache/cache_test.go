// (c) 2019-2020, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package ipfscache

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/ipfs/go-cid"
	"github.com/multiformats/go-multihash"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"github.com/defi-wonderland/atlas/atlaslog"
	"github.com/defi-wonderland/atlas/fetchcursor"
	"github.com/defi-wonderland/atlas/metrics"
)

func testCid(t *testing.T, b byte) cid.Cid {
	t.Helper()
	mh, err := multihash.Sum([]byte{b}, multihash.SHA2_256, -1)
	require.NoError(t, err)
	return cid.NewCidV1(cid.Raw, mh)
}

// fakeGateway returns a fixed outcome per CID, blocking until released so
// tests can control completion order deterministically.
type fakeGateway struct {
	mu      sync.Mutex
	release map[string]chan struct{}
	fail    map[string]bool
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{release: make(map[string]chan struct{}), fail: make(map[string]bool)}
}

func (g *fakeGateway) gate(c cid.Cid) chan struct{} {
	g.mu.Lock()
	defer g.mu.Unlock()
	ch, ok := g.release[c.KeyString()]
	if !ok {
		ch = make(chan struct{})
		g.release[c.KeyString()] = ch
	}
	return ch
}

func (g *fakeGateway) setFail(c cid.Cid) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.fail[c.KeyString()] = true
}

func (g *fakeGateway) Release(c cid.Cid) {
	close(g.gate(c))
}

func (g *fakeGateway) Fetch(ctx context.Context, c cid.Cid) ([]byte, error) {
	select {
	case <-g.gate(c):
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	g.mu.Lock()
	fail := g.fail[c.KeyString()]
	g.mu.Unlock()
	if fail {
		return nil, errors.New("gateway: not found")
	}
	return []byte{0x01}, nil
}

func newTestCache(t *testing.T, gw Gateway, onAdvance func(fetchcursor.Advance)) *Cache {
	t.Helper()
	reg := prometheus.NewRegistry()
	met := metrics.New(reg)
	return New(gw, 4, atlaslog.NewNop(), met, onAdvance)
}

func TestPreFetchBlockAdvancesOnlyWhenFullyDrained(t *testing.T) {
	gw := newFakeGateway()
	var mu sync.Mutex
	var advances []fetchcursor.Advance

	c := newTestCache(t, gw, func(a fetchcursor.Advance) {
		mu.Lock()
		defer mu.Unlock()
		advances = append(advances, a)
	})

	c1, c2 := testCid(t, 1), testCid(t, 2)
	ctx := context.Background()
	c.PreFetchBlock(ctx, 100, "cursor-100", []cid.Cid{c1, c2})

	gw.Release(c1)
	time.Sleep(20 * time.Millisecond)
	mu.Lock()
	require.Empty(t, advances)
	mu.Unlock()

	gw.Release(c2)
	time.Sleep(20 * time.Millisecond)
	mu.Lock()
	require.Len(t, advances, 1)
	require.Equal(t, uint64(100), advances[0].Block)
	require.Equal(t, "cursor-100", advances[0].Cursor)
	mu.Unlock()
}

func TestPreFetchBlockRecordsErroredEntryButStillDrains(t *testing.T) {
	gw := newFakeGateway()
	done := make(chan fetchcursor.Advance, 1)
	c := newTestCache(t, gw, func(a fetchcursor.Advance) { done <- a })

	bad := testCid(t, 9)
	gw.setFail(bad)

	ctx := context.Background()
	c.PreFetchBlock(ctx, 200, "cursor-200", []cid.Cid{bad})
	gw.Release(bad)

	select {
	case adv := <-done:
		require.Equal(t, uint64(200), adv.Block)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for advance")
	}

	entry, ok := c.Get(bad)
	require.True(t, ok)
	require.True(t, entry.Errored)
	require.Empty(t, entry.Content)
}

func TestPreFetchBlockWithZeroURIsNeverBlocksAdvance(t *testing.T) {
	gw := newFakeGateway()
	c := newTestCache(t, gw, func(fetchcursor.Advance) {
		t.Fatal("onAdvance should not be called for a zero-fetch block")
	})
	c.PreFetchBlock(context.Background(), 300, "cursor-300", nil)
	require.Equal(t, 0, c.PendingLen())
}
