// (c) 2019-2020, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package reach

import "github.com/defi-wonderland/atlas/ids"

// cache holds the two BFS variants plus the reverse-dependency index used
// to invalidate them. It deliberately uses plain maps rather than a
// bounded/evicting cache (e.g. an LRU): spec.md's correctness proof for
// invalidation requires every cached graph that references a space to be
// found and dropped when that space's source edges change, which an
// eviction policy would silently defeat. See DESIGN.md.
type cache struct {
	explicitOnly map[ids.SpaceID]*TransitiveGraph
	full         map[ids.SpaceID]*TransitiveGraph

	// reverseDeps[x] is the set of spaces whose cached graph (either
	// variant) contains x. Invalidating x's own cache entries requires
	// walking reverseDeps[x] and dropping each of those entries too.
	reverseDeps map[ids.SpaceID]map[ids.SpaceID]struct{}
}

func newCache() *cache {
	return &cache{
		explicitOnly: make(map[ids.SpaceID]*TransitiveGraph),
		full:         make(map[ids.SpaceID]*TransitiveGraph),
		reverseDeps:  make(map[ids.SpaceID]map[ids.SpaceID]struct{}),
	}
}

// store records a freshly computed graph for root and updates the
// reverse-dependency index for every node that now appears in it.
func (c *cache) store(root ids.SpaceID, full bool, g *TransitiveGraph) {
	if full {
		c.full[root] = g
	} else {
		c.explicitOnly[root] = g
	}
	for member := range g.Flat {
		deps, ok := c.reverseDeps[member]
		if !ok {
			deps = make(map[ids.SpaceID]struct{})
			c.reverseDeps[member] = deps
		}
		deps[root] = struct{}{}
	}
}

// invalidate drops every cached graph (both variants) keyed by any space
// in the direct-dependent set of changed, and removes their reverse-dep
// backreferences. It intentionally does not recurse transitively through
// reverseDeps: a dependent's own cache is fully rebuilt and re-registered
// on its next miss, which recomputes the correct (possibly now stale)
// reverse-dep entries for it. Recursing further would be wasted work and
// risks infinite loops on the reverse-dependency cycles topic edges can
// introduce (spec.md Design Note "Cache graph -> reverse-dep backlinks").
func (c *cache) invalidate(changed ids.SpaceID) {
	dependents := c.reverseDeps[changed]
	toInvalidate := make([]ids.SpaceID, 0, len(dependents)+1)
	toInvalidate = append(toInvalidate, changed)
	for dep := range dependents {
		toInvalidate = append(toInvalidate, dep)
	}

	for _, root := range toInvalidate {
		c.dropAndUnlink(root)
	}
}

func (c *cache) dropAndUnlink(root ids.SpaceID) {
	for _, g := range []*TransitiveGraph{c.explicitOnly[root], c.full[root]} {
		if g == nil {
			continue
		}
		for member := range g.Flat {
			if deps, ok := c.reverseDeps[member]; ok {
				delete(deps, root)
				if len(deps) == 0 {
					delete(c.reverseDeps, member)
				}
			}
		}
	}
	delete(c.explicitOnly, root)
	delete(c.full, root)
}
