// (c) 2019-2020, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package ipfscache implements the IPFS pre-fetch sink (spec.md §5):
// bounded-concurrency content fetches coordinated through
// fetchcursor.PendingFetches so that cursor advances are only ever
// reported once every fetch for every earlier block has drained.
// Grounded on the teacher's golang.org/x/sync dependency (the pack's
// own semaphore-bounded worker idiom) for the "capacity 20" requirement,
// and on github.com/ipfs/go-cid for content addressing, with a plain
// net/http gateway client standing in for the full IPFS node stack the
// teacher never carries either.
package ipfscache

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"

	"github.com/ipfs/go-cid"
	"golang.org/x/sync/semaphore"

	"github.com/defi-wonderland/atlas/atlaslog"
	"github.com/defi-wonderland/atlas/fetchcursor"
	"github.com/defi-wonderland/atlas/internal/atlaserr"
	"github.com/defi-wonderland/atlas/metrics"
)

// DefaultCapacity is spec.md §5's default fetch concurrency bound.
const DefaultCapacity = 20

// Entry is one fetched (or errored) piece of IPFS content, keyed by its
// CID in Cache.entries.
type Entry struct {
	Content []byte
	Errored bool
}

// Gateway fetches the bytes addressed by c from an IPFS gateway. The
// production implementation is an HTTPGateway; tests substitute a fake.
type Gateway interface {
	Fetch(ctx context.Context, c cid.Cid) ([]byte, error)
}

// HTTPGateway fetches content from a single IPFS HTTP gateway
// (e.g. https://ipfs.io/ipfs/<cid>), inheriting its per-request timeout
// from the supplied *http.Client (spec.md §5: "IPFS fetches inherit a
// per-request timeout from the gateway client configuration").
type HTTPGateway struct {
	BaseURL string
	Client  *http.Client
}

// Fetch issues a GET against BaseURL/<cid> and returns the response
// body, or an error wrapping atlaserr.ErrIPFSFetchError on a non-200
// status, network failure, or timeout.
func (g *HTTPGateway) Fetch(ctx context.Context, c cid.Cid) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.BaseURL+"/"+c.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: building request: %w", atlaserr.ErrIPFSFetchError, err)
	}

	resp, err := g.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", atlaserr.ErrIPFSFetchError, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: gateway returned status %d", atlaserr.ErrIPFSFetchError, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading body: %w", atlaserr.ErrIPFSFetchError, err)
	}
	return body, nil
}

// Cache is the IPFS pre-fetch sink: it owns a fetchcursor.PendingFetches
// cursor tracker and a bounded pool of concurrent fetch tasks, spawning
// one goroutine per requested CID and draining PendingFetches as each
// completes, independent of which block or CID finishes first (spec.md
// §5's "fetches may complete in any order across blocks").
type Cache struct {
	gateway Gateway
	sem     *semaphore.Weighted
	log     atlaslog.Logger
	met     *metrics.Metrics

	mu      sync.Mutex
	entries map[string]Entry

	pending *fetchcursor.PendingFetches

	// onAdvance is invoked (outside the cache's own lock) whenever
	// PendingFetches reports the persisted cursor may move forward.
	onAdvance func(fetchcursor.Advance)
}

// New returns a Cache bounded to capacity concurrent in-flight fetches,
// calling onAdvance whenever the persisted cursor may safely move
// forward (spec.md §4.5).
func New(gateway Gateway, capacity int64, log atlaslog.Logger, met *metrics.Metrics, onAdvance func(fetchcursor.Advance)) *Cache {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Cache{
		gateway:   gateway,
		sem:       semaphore.NewWeighted(capacity),
		log:       log,
		met:       met,
		entries:   make(map[string]Entry),
		pending:   fetchcursor.NewPendingFetches(),
		onAdvance: onAdvance,
	}
}

// PreFetchBlock registers block (with its cursor) against len(uris)
// pending fetches and spawns one bounded goroutine per CID. A block with
// zero CIDs is never registered with PendingFetches, matching spec.md
// §4.5's AddBlock contract.
func (c *Cache) PreFetchBlock(ctx context.Context, block uint64, cursor string, uris []cid.Cid) {
	c.pending.AddBlock(block, cursor, len(uris))
	if len(uris) > 0 {
		c.met.PendingFetchGauge.Add(float64(len(uris)))
	}

	for _, u := range uris {
		u := u
		go c.fetchOne(ctx, block, u)
	}
}

// fetchOne acquires a semaphore slot, fetches u, records the result
// (content or errored=true), and always calls complete_one for block
// regardless of outcome (spec.md §5: "timed-out fetches ... complete_one
// is still called to drain the pending count").
func (c *Cache) fetchOne(ctx context.Context, block uint64, u cid.Cid) {
	if err := c.sem.Acquire(ctx, 1); err != nil {
		c.record(u, Entry{Errored: true})
		c.drain(block)
		return
	}
	defer c.sem.Release(1)

	content, err := c.gateway.Fetch(ctx, u)
	if err != nil {
		c.log.Warn("ipfscache: fetch %s failed: %s", u, err)
		c.met.FetchErrors.Inc()
		c.record(u, Entry{Errored: true})
	} else {
		c.record(u, Entry{Content: content})
	}
	c.drain(block)
}

func (c *Cache) record(u cid.Cid, e Entry) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[u.KeyString()] = e
}

func (c *Cache) drain(block uint64) {
	c.met.PendingFetchGauge.Dec()
	if adv, ok := c.pending.CompleteOne(block); ok {
		c.log.Info("ipfscache: cursor may advance to block %d", adv.Block)
		c.onAdvance(adv)
	}
}

// Get returns the cached entry for u, if any fetch has completed for it.
func (c *Cache) Get(u cid.Cid) (Entry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[u.KeyString()]
	return e, ok
}

// PendingLen reports the number of blocks still awaiting at least one
// fetch completion, for health/diagnostic reporting.
func (c *Cache) PendingLen() int {
	return c.pending.Len()
}
