// (c) 2019-2020, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package graph

import (
	"encoding/binary"
	"hash/fnv"
)

// StructuralHash computes an order-insensitive (over siblings) recursive
// hash of a tree: hash(tree) == hash(tree') iff the two trees are
// structurally equivalent (same parent -> {(child_id, edge_type, topic_id)}
// multisets at every level), per spec.md §4.1 and §8 property 6.
//
// Per-node content is hashed with fnv-1a (a deterministic, well-distributed
// non-cryptographic hash, in the spirit of the teacher's utils/hashing
// helpers). Children are combined with a wrapping sum, which is
// commutative and therefore insensitive to BFS/map iteration order.
func StructuralHash(n *TreeNode) uint64 {
	if n == nil {
		return 0
	}
	var childMix uint64
	for _, c := range n.Children {
		childMix += StructuralHash(c)
	}
	return nodeHash(n, childMix)
}

func nodeHash(n *TreeNode, childMix uint64) uint64 {
	h := fnv.New64a()
	h.Write(n.SpaceID[:])
	h.Write([]byte{byte(n.EdgeType)})
	if n.TopicID != nil {
		h.Write([]byte{1})
		h.Write(n.TopicID[:])
	} else {
		h.Write([]byte{0})
	}
	var mixBytes [8]byte
	binary.LittleEndian.PutUint64(mixBytes[:], childMix)
	h.Write(mixBytes[:])
	return h.Sum64()
}
