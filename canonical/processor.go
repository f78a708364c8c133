// (c) 2019-2020, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package canonical implements the two-phase canonical-graph computation
// rooted at a single configured space (spec.md §4.4): explicit-edge-only
// membership, followed by topic-edge subtree attachment, followed by
// structural-hash change detection.
package canonical

import (
	"github.com/defi-wonderland/atlas/graph"
	"github.com/defi-wonderland/atlas/ids"
	"github.com/defi-wonderland/atlas/reach"
)

// Graph is the output of a successful Compute: the canonical tree rooted
// at Root, plus its flat membership set.
type Graph struct {
	Root ids.SpaceID
	Tree *graph.TreeNode
	Flat map[ids.SpaceID]struct{}
}

// FlatSlice returns Flat as a sorted slice.
func (g *Graph) FlatSlice() []ids.SpaceID {
	out := make([]ids.SpaceID, 0, len(g.Flat))
	for id := range g.Flat {
		out = append(out, id)
	}
	return ids.SortSpaceIDs(out)
}

// Processor computes the canonical graph for a fixed root, tracking only
// the hash of the last tree it emitted. It borrows a *graph.State and a
// *reach.Processor on every call; it owns neither.
type Processor struct {
	root     ids.SpaceID
	lastHash uint64
	hasHash  bool
}

// NewProcessor returns a Processor for root with no prior emission.
func NewProcessor(root ids.SpaceID) *Processor {
	return &Processor{root: root}
}

// Root returns the configured canonical root.
func (p *Processor) Root() ids.SpaceID {
	return p.root
}

// AffectsCanonical reports whether ev can possibly change the canonical
// graph, given the current canonical flat set (spec.md §4.4).
//
//   - SpaceCreated never affects the canonical graph: a brand-new space is
//     isolated until some TrustExtended points to it, which is itself
//     evaluated when it arrives.
//   - TrustExtended affects the canonical graph iff its source is already
//     a canonical member; extensions from non-canonical sources cannot
//     alter canonicality by construction.
func AffectsCanonical(ev graph.Event, canonicalFlat map[ids.SpaceID]struct{}) bool {
	if ev.Kind != graph.EventTrustExtended {
		return false
	}
	_, ok := canonicalFlat[ev.Source]
	return ok
}

// Compute runs the two-phase algorithm and returns the new canonical
// graph and true iff its structural hash differs from the last one
// returned (or no graph has ever been returned). On a no-change result it
// returns (nil, false); last_hash is left untouched so a subsequent
// identical call is still a no-op (spec.md testable property 8).
func (p *Processor) Compute(state *graph.State, tp *reach.Processor) (*Graph, bool) {
	// Phase 1: canonical membership via explicit edges only.
	rootTransitive := tp.GetExplicitOnly(p.root, state)
	canonicalSet := make(map[ids.SpaceID]struct{}, len(rootTransitive.Flat))
	for id := range rootTransitive.Flat {
		canonicalSet[id] = struct{}{}
	}
	tree := rootTransitive.Tree.Clone()

	// Phase 2: topic-edge subtree attachment.
	attachTopicSubtrees(tree, state, tp, canonicalSet)

	newHash := graph.StructuralHash(tree)
	if p.hasHash && newHash == p.lastHash {
		return nil, false
	}
	p.lastHash = newHash
	p.hasHash = true

	return &Graph{Root: p.root, Tree: tree, Flat: canonicalSet}, true
}

// topicAttachment is a (source, topic) pair collected from the Phase 1
// tree before any Phase 2 attachment happens.
type topicAttachment struct {
	source  *graph.TreeNode
	topicID ids.TopicID
}

// attachTopicSubtrees implements Phase 2 (spec.md §4.4): it first collects
// every (source, topic_id) pair present in the Phase 1 tree, then attaches
// filtered subtrees for each. Collection happens strictly before any
// mutation so that attached subtrees are never themselves re-scanned for
// further topic edges — get_full(m) is the sole authority on an attached
// subtree's shape, per spec.md's Phase 2 termination note.
func attachTopicSubtrees(tree *graph.TreeNode, state *graph.State, tp *reach.Processor, canonicalSet map[ids.SpaceID]struct{}) {
	var attachments []topicAttachment
	var collect func(n *graph.TreeNode)
	collect = func(n *graph.TreeNode) {
		for _, topicID := range state.GetTopicChildren(n.SpaceID) {
			attachments = append(attachments, topicAttachment{source: n, topicID: topicID})
		}
		for _, c := range n.Children {
			collect(c)
		}
	}
	collect(tree)

	for _, a := range attachments {
		for _, member := range state.GetTopicMembers(a.topicID) {
			if member == a.source.SpaceID {
				continue
			}
			if _, ok := canonicalSet[member]; !ok {
				continue
			}
			memberTransitive := tp.GetFull(member, state)
			filtered := memberTransitive.Tree.Filter(canonicalSet)
			filtered.EdgeType = graph.EdgeTopic
			t := a.topicID
			filtered.TopicID = &t
			a.source.AddChild(filtered)
		}
	}
}
