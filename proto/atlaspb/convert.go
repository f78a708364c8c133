// (c) 2019-2020, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package atlaspb

import (
	"github.com/defi-wonderland/atlas/graph"
	"github.com/defi-wonderland/atlas/ids"
)

// FromTreeNode converts an in-memory graph.TreeNode into its wire
// representation. graph.EdgeType's enumeration order (Unspecified, Root,
// Verified, Related, Topic) matches EdgeType's wire values exactly, so
// the conversion is a direct cast.
func FromTreeNode(n *graph.TreeNode) *CanonicalTreeNode {
	if n == nil {
		return nil
	}
	out := &CanonicalTreeNode{
		SpaceID:  n.SpaceID.Bytes(),
		EdgeType: EdgeType(n.EdgeType),
	}
	if n.TopicID != nil {
		out.TopicID = n.TopicID.Bytes()
	}
	for _, c := range n.Children {
		out.Children = append(out.Children, FromTreeNode(c))
	}
	return out
}

// FromCanonicalGraph builds the full wire message for a canonical.Graph
// emission (spec.md §6), given the sequence number and source metadata
// the engine loop tracks alongside it.
func FromCanonicalGraph(root ids.SpaceID, tree *graph.TreeNode, flat []ids.SpaceID, seq uint64, meta BlockchainMetadata) *CanonicalGraphUpdated {
	spaceIDs := make([][]byte, len(flat))
	for i, id := range flat {
		spaceIDs[i] = id.Bytes()
	}
	return &CanonicalGraphUpdated{
		RootID:            root.Bytes(),
		Tree:              FromTreeNode(tree),
		CanonicalSpaceIDs: spaceIDs,
		SequenceNumber:    seq,
		Meta:              &meta,
	}
}
