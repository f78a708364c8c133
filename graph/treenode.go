// (c) 2019-2020, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package graph

import "github.com/defi-wonderland/atlas/ids"

// EdgeType records how a TreeNode's parent reached it.
type EdgeType uint8

const (
	EdgeUnspecified EdgeType = iota
	EdgeRoot
	EdgeVerified
	EdgeRelated
	EdgeTopic
)

// String implements fmt.Stringer for log lines.
func (e EdgeType) String() string {
	switch e {
	case EdgeRoot:
		return "root"
	case EdgeVerified:
		return "verified"
	case EdgeRelated:
		return "related"
	case EdgeTopic:
		return "topic"
	default:
		return "unspecified"
	}
}

// TreeNode is one node of a canonical or transitive tree: a space reached
// by an inbound edge of a given type, optionally carrying the topic that
// edge was attached through, with an ordered list of children.
//
// Children are held in insertion order (BFS discovery order) but the
// structural hash is order-insensitive over siblings: see StructuralHash.
type TreeNode struct {
	SpaceID  ids.SpaceID
	EdgeType EdgeType
	TopicID  *ids.TopicID
	Children []*TreeNode
}

// NewRoot builds the root node of a tree.
func NewRoot(space ids.SpaceID) *TreeNode {
	return &TreeNode{SpaceID: space, EdgeType: EdgeRoot}
}

// NewExplicit builds a node reached via an explicit (Verified or Related)
// edge. kind must be EdgeVerified or EdgeRelated.
func NewExplicit(space ids.SpaceID, kind EdgeType) *TreeNode {
	return &TreeNode{SpaceID: space, EdgeType: kind}
}

// NewTopic builds a node reached via a topic-edge expansion.
func NewTopic(space ids.SpaceID, topic ids.TopicID) *TreeNode {
	return &TreeNode{SpaceID: space, EdgeType: EdgeTopic, TopicID: &topic}
}

// AddChild appends child to n's child list, preserving discovery order.
func (n *TreeNode) AddChild(child *TreeNode) {
	n.Children = append(n.Children, child)
}

// Clone deep-copies a TreeNode and all of its descendants.
func (n *TreeNode) Clone() *TreeNode {
	if n == nil {
		return nil
	}
	out := &TreeNode{
		SpaceID:  n.SpaceID,
		EdgeType: n.EdgeType,
	}
	if n.TopicID != nil {
		t := *n.TopicID
		out.TopicID = &t
	}
	if len(n.Children) > 0 {
		out.Children = make([]*TreeNode, len(n.Children))
		for i, c := range n.Children {
			out.Children[i] = c.Clone()
		}
	}
	return out
}

// Filter returns a deep copy of n with every descendant whose SpaceID is
// not in keep dropped, along with that descendant's whole subtree. n
// itself is always kept regardless of membership in keep — the caller
// (canonical.Processor, Phase 2) is responsible for re-tagging the
// returned root's EdgeType/TopicID to record how the subtree was reached.
func (n *TreeNode) Filter(keep map[ids.SpaceID]struct{}) *TreeNode {
	if n == nil {
		return nil
	}
	out := &TreeNode{
		SpaceID:  n.SpaceID,
		EdgeType: n.EdgeType,
	}
	if n.TopicID != nil {
		t := *n.TopicID
		out.TopicID = &t
	}
	for _, c := range n.Children {
		if _, ok := keep[c.SpaceID]; !ok {
			continue
		}
		out.Children = append(out.Children, c.Filter(keep))
	}
	return out
}

// Flat collects every SpaceID appearing in the tree rooted at n into set.
func (n *TreeNode) Flat(set map[ids.SpaceID]struct{}) {
	if n == nil {
		return
	}
	set[n.SpaceID] = struct{}{}
	for _, c := range n.Children {
		c.Flat(set)
	}
}
