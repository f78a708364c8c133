// (c) 2019-2020, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package reach implements the transitive-reachability engine: a
// dependency-tracked BFS cache producing, per space, a tree and flat
// membership set reachable via explicit edges alone or via explicit plus
// topic edges (spec.md §4.3).
package reach

import (
	"github.com/defi-wonderland/atlas/graph"
	"github.com/defi-wonderland/atlas/ids"
)

// TransitiveGraph is the BFS output for one space: a tree rooted at that
// space plus the flat set of every space appearing in the tree.
type TransitiveGraph struct {
	Tree *graph.TreeNode
	Flat map[ids.SpaceID]struct{}
}

// FlatSlice returns Flat as a sorted slice, for deterministic output in
// tests and logs.
func (g *TransitiveGraph) FlatSlice() []ids.SpaceID {
	out := make([]ids.SpaceID, 0, len(g.Flat))
	for id := range g.Flat {
		out = append(out, id)
	}
	return ids.SortSpaceIDs(out)
}
