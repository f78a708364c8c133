// (c) 2019-2020, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package atlaspb

import (
	"testing"

	"github.com/defi-wonderland/atlas/graph"
	"github.com/defi-wonderland/atlas/ids"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/encoding/protowire"
)

func sid(b byte) ids.SpaceID {
	var id ids.SpaceID
	id[0] = b
	return id
}

func topic(b byte) ids.TopicID {
	var t ids.TopicID
	t[0] = b
	return t
}

func TestCanonicalGraphUpdatedRoundTrip(t *testing.T) {
	root := sid(0x01)
	a := sid(0x02)
	b := sid(0x03)
	tp := topic(0xF0)

	tree := graph.NewRoot(root)
	child := graph.NewExplicit(a, graph.EdgeVerified)
	tree.AddChild(child)
	topicChild := graph.NewTopic(b, tp)
	child.AddChild(topicChild)

	msg := FromCanonicalGraph(root, tree, []ids.SpaceID{root, a, b}, 7, BlockchainMetadata{
		BlockNumber:    42,
		BlockTimestamp: 1690000000,
		Cursor:         "cursor-abc",
	})

	encoded := msg.Marshal()
	decoded, err := Unmarshal(encoded)
	require.NoError(t, err)
	require.Equal(t, encoded, decoded.Marshal())

	require.Equal(t, root.Bytes(), decoded.RootID)
	require.Equal(t, uint64(7), decoded.SequenceNumber)
	require.Equal(t, uint64(42), decoded.Meta.BlockNumber)
	require.Equal(t, "cursor-abc", decoded.Meta.Cursor)
	require.Len(t, decoded.CanonicalSpaceIDs, 3)

	require.Equal(t, root.Bytes(), decoded.Tree.SpaceID)
	require.Equal(t, EdgeTypeRoot, decoded.Tree.EdgeType)
	require.Empty(t, decoded.Tree.TopicID)
	require.Len(t, decoded.Tree.Children, 1)

	decodedChild := decoded.Tree.Children[0]
	require.Equal(t, a.Bytes(), decodedChild.SpaceID)
	require.Equal(t, EdgeTypeVerified, decodedChild.EdgeType)
	require.Len(t, decodedChild.Children, 1)

	decodedTopicChild := decodedChild.Children[0]
	require.Equal(t, b.Bytes(), decodedTopicChild.SpaceID)
	require.Equal(t, EdgeTypeTopic, decodedTopicChild.EdgeType)
	require.Equal(t, tp.Bytes(), decodedTopicChild.TopicID)
}

func TestCanonicalTreeNodeTopicIDEmptyUnlessTopicEdge(t *testing.T) {
	root := sid(0x01)
	tree := graph.NewRoot(root)

	wire := FromTreeNode(tree)
	encoded := wire.Marshal()
	decoded, err := UnmarshalCanonicalTreeNode(encoded)
	require.NoError(t, err)
	require.Equal(t, EdgeTypeRoot, decoded.EdgeType)
	require.Empty(t, decoded.TopicID)
}

func TestUnmarshalSkipsUnknownFields(t *testing.T) {
	meta := &BlockchainMetadata{BlockNumber: 1, BlockTimestamp: 2, Cursor: "c"}
	encoded := meta.Marshal()

	// Append an unknown varint field (field number 99) and confirm it's
	// tolerated rather than rejected, matching protobuf forward
	// compatibility semantics.
	extra := append([]byte(nil), encoded...)
	extra = protowire.AppendTag(extra, 99, protowire.VarintType)
	extra = protowire.AppendVarint(extra, 12345)

	decoded, err := UnmarshalBlockchainMetadata(extra)
	require.NoError(t, err)
	require.Equal(t, meta, decoded)
}
