// (c) 2019-2020, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package reach

import (
	"github.com/defi-wonderland/atlas/graph"
	"github.com/defi-wonderland/atlas/ids"
	"github.com/defi-wonderland/atlas/metrics"
)

// Variant labels used against metrics.Metrics.CacheHits/CacheMisses,
// matching the "variant" label spec.md §2's component table and the
// metrics package's CounterVec expect.
const (
	VariantExplicitOnly = "explicit_only"
	VariantFull         = "full"
)

// Processor computes and caches transitive graphs for spaces, and
// invalidates dependent cache entries as GraphState mutates (spec.md
// §4.3). Processor holds the cache and reverse-dependency index; it
// borrows a read-only *graph.State during every GetExplicitOnly/GetFull
// call; HandleEvent works from the event alone.
type Processor struct {
	cache *cache
	met   *metrics.Metrics
}

// NewProcessor returns an empty Processor with no metrics recording.
func NewProcessor() *Processor {
	return &Processor{cache: newCache()}
}

// NewProcessorWithMetrics returns an empty Processor that records a
// cache hit/miss, by variant, on every GetExplicitOnly/GetFull call.
func NewProcessorWithMetrics(met *metrics.Metrics) *Processor {
	return &Processor{cache: newCache(), met: met}
}

// GetExplicitOnly returns the cached explicit-only transitive graph for
// space, computing and storing it on a cache miss.
func (p *Processor) GetExplicitOnly(space ids.SpaceID, state *graph.State) *TransitiveGraph {
	if g, ok := p.cache.explicitOnly[space]; ok {
		p.recordHit(VariantExplicitOnly)
		return g
	}
	p.recordMiss(VariantExplicitOnly)
	g := bfs(space, state, false)
	p.cache.store(space, false, g)
	return g
}

// GetFull returns the cached full (explicit + topic) transitive graph for
// space, computing and storing it on a cache miss.
func (p *Processor) GetFull(space ids.SpaceID, state *graph.State) *TransitiveGraph {
	if g, ok := p.cache.full[space]; ok {
		p.recordHit(VariantFull)
		return g
	}
	p.recordMiss(VariantFull)
	g := bfs(space, state, true)
	p.cache.store(space, true, g)
	return g
}

func (p *Processor) recordHit(variant string) {
	if p.met == nil {
		return
	}
	p.met.CacheHits.WithLabelValues(variant).Inc()
}

func (p *Processor) recordMiss(variant string) {
	if p.met == nil {
		return
	}
	p.met.CacheMisses.WithLabelValues(variant).Inc()
}

// HandleEvent invalidates every cached graph an event may have changed
// the shape of.
//
//   - SpaceCreated never invalidates anything: a brand-new isolated space
//     cannot appear in any existing cached graph.
//   - TrustExtended from s invalidates s's own cached graphs (both
//     variants) and those of every space whose cached graph depended on
//     s, per the reverse-dependency index.
//
// A Subtopic extension only changes full-variant traversals, but spec.md
// explicitly permits the simpler "invalidate both variants" policy so
// long as the reverse-dep set is recomputed correctly on the next miss —
// that's the policy implemented here (spec.md Open Question (a)).
func (p *Processor) HandleEvent(ev graph.Event) {
	if ev.Kind != graph.EventTrustExtended {
		return
	}
	p.cache.invalidate(ev.Source)
}
