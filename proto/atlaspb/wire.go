// (c) 2019-2020, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package atlaspb implements the bit-exact wire encoding of
// CanonicalGraphUpdated (spec.md §6) by hand, field-by-field, against
// google.golang.org/protobuf/encoding/protowire's low-level primitives
// rather than through generated message code: there is no .proto source
// in this module to run protoc against, and protowire is the same
// primitive layer protoc-gen-go itself compiles down to.
package atlaspb

import (
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"
)

// EdgeType mirrors graph.EdgeType's wire encoding (spec.md §6): a 32-bit
// varint enum with UNSPECIFIED=0, ROOT=1, VERIFIED=2, RELATED=3, TOPIC=4.
type EdgeType int32

const (
	EdgeTypeUnspecified EdgeType = 0
	EdgeTypeRoot        EdgeType = 1
	EdgeTypeVerified    EdgeType = 2
	EdgeTypeRelated     EdgeType = 3
	EdgeTypeTopic       EdgeType = 4
)

// CanonicalTreeNode is the wire message for one node of an emitted
// canonical tree.
type CanonicalTreeNode struct {
	SpaceID  []byte
	EdgeType EdgeType
	// TopicID is empty unless EdgeType is EdgeTypeTopic, in which case it
	// is exactly 16 bytes.
	TopicID  []byte
	Children []*CanonicalTreeNode
}

// BlockchainMetadata carries the source cursor for the emitted block.
type BlockchainMetadata struct {
	BlockNumber    uint64
	BlockTimestamp uint64
	Cursor         string
}

// CanonicalGraphUpdated is the top-level message delivered to the Sink,
// keyed on RootID.
type CanonicalGraphUpdated struct {
	RootID            []byte
	Tree              *CanonicalTreeNode
	CanonicalSpaceIDs [][]byte
	SequenceNumber    uint64
	Meta              *BlockchainMetadata
}

const (
	fieldGraphRootID         = 1
	fieldGraphTree           = 2
	fieldGraphCanonicalIDs   = 3
	fieldGraphSequenceNumber = 4
	fieldGraphMeta           = 5

	fieldNodeSpaceID  = 1
	fieldNodeEdgeType = 2
	fieldNodeTopicID  = 3
	fieldNodeChildren = 4

	fieldMetaBlockNumber    = 1
	fieldMetaBlockTimestamp = 2
	fieldMetaCursor         = 3
)

// Marshal encodes n in protobuf wire format.
func (n *CanonicalTreeNode) Marshal() []byte {
	var b []byte
	b = protowire.AppendTag(b, fieldNodeSpaceID, protowire.BytesType)
	b = protowire.AppendBytes(b, n.SpaceID)

	b = protowire.AppendTag(b, fieldNodeEdgeType, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(n.EdgeType))

	b = protowire.AppendTag(b, fieldNodeTopicID, protowire.BytesType)
	b = protowire.AppendBytes(b, n.TopicID)

	for _, c := range n.Children {
		b = protowire.AppendTag(b, fieldNodeChildren, protowire.BytesType)
		b = protowire.AppendBytes(b, c.Marshal())
	}
	return b
}

// UnmarshalCanonicalTreeNode decodes a CanonicalTreeNode from b.
func UnmarshalCanonicalTreeNode(b []byte) (*CanonicalTreeNode, error) {
	n := &CanonicalTreeNode{}
	for len(b) > 0 {
		num, typ, fieldLen := protowire.ConsumeTag(b)
		if fieldLen < 0 {
			return nil, fmt.Errorf("atlaspb: invalid tag in CanonicalTreeNode: %w", protowire.ParseError(fieldLen))
		}
		b = b[fieldLen:]

		switch num {
		case fieldNodeSpaceID:
			v, n2 := protowire.ConsumeBytes(b)
			if n2 < 0 {
				return nil, fmt.Errorf("atlaspb: invalid space_id bytes: %w", protowire.ParseError(n2))
			}
			n.SpaceID = append([]byte(nil), v...)
			b = b[n2:]
		case fieldNodeEdgeType:
			v, n2 := protowire.ConsumeVarint(b)
			if n2 < 0 {
				return nil, fmt.Errorf("atlaspb: invalid edge_type varint: %w", protowire.ParseError(n2))
			}
			n.EdgeType = EdgeType(v)
			b = b[n2:]
		case fieldNodeTopicID:
			v, n2 := protowire.ConsumeBytes(b)
			if n2 < 0 {
				return nil, fmt.Errorf("atlaspb: invalid topic_id bytes: %w", protowire.ParseError(n2))
			}
			n.TopicID = append([]byte(nil), v...)
			b = b[n2:]
		case fieldNodeChildren:
			v, n2 := protowire.ConsumeBytes(b)
			if n2 < 0 {
				return nil, fmt.Errorf("atlaspb: invalid children entry: %w", protowire.ParseError(n2))
			}
			child, err := UnmarshalCanonicalTreeNode(v)
			if err != nil {
				return nil, err
			}
			n.Children = append(n.Children, child)
			b = b[n2:]
		default:
			fieldLen := protowire.ConsumeFieldValue(num, typ, b)
			if fieldLen < 0 {
				return nil, fmt.Errorf("atlaspb: invalid unknown field %d: %w", num, protowire.ParseError(fieldLen))
			}
			b = b[fieldLen:]
		}
	}
	return n, nil
}

// Marshal encodes m in protobuf wire format.
func (m *BlockchainMetadata) Marshal() []byte {
	var b []byte
	b = protowire.AppendTag(b, fieldMetaBlockNumber, protowire.VarintType)
	b = protowire.AppendVarint(b, m.BlockNumber)

	b = protowire.AppendTag(b, fieldMetaBlockTimestamp, protowire.VarintType)
	b = protowire.AppendVarint(b, m.BlockTimestamp)

	b = protowire.AppendTag(b, fieldMetaCursor, protowire.BytesType)
	b = protowire.AppendString(b, m.Cursor)
	return b
}

// UnmarshalBlockchainMetadata decodes a BlockchainMetadata from b.
func UnmarshalBlockchainMetadata(b []byte) (*BlockchainMetadata, error) {
	m := &BlockchainMetadata{}
	for len(b) > 0 {
		num, typ, fieldLen := protowire.ConsumeTag(b)
		if fieldLen < 0 {
			return nil, fmt.Errorf("atlaspb: invalid tag in BlockchainMetadata: %w", protowire.ParseError(fieldLen))
		}
		b = b[fieldLen:]

		switch num {
		case fieldMetaBlockNumber:
			v, n2 := protowire.ConsumeVarint(b)
			if n2 < 0 {
				return nil, fmt.Errorf("atlaspb: invalid block_number varint: %w", protowire.ParseError(n2))
			}
			m.BlockNumber = v
			b = b[n2:]
		case fieldMetaBlockTimestamp:
			v, n2 := protowire.ConsumeVarint(b)
			if n2 < 0 {
				return nil, fmt.Errorf("atlaspb: invalid block_timestamp varint: %w", protowire.ParseError(n2))
			}
			m.BlockTimestamp = v
			b = b[n2:]
		case fieldMetaCursor:
			v, n2 := protowire.ConsumeString(b)
			if n2 < 0 {
				return nil, fmt.Errorf("atlaspb: invalid cursor string: %w", protowire.ParseError(n2))
			}
			m.Cursor = v
			b = b[n2:]
		default:
			fieldLen := protowire.ConsumeFieldValue(num, typ, b)
			if fieldLen < 0 {
				return nil, fmt.Errorf("atlaspb: invalid unknown field %d: %w", num, protowire.ParseError(fieldLen))
			}
			b = b[fieldLen:]
		}
	}
	return m, nil
}

// Marshal encodes g in protobuf wire format.
func (g *CanonicalGraphUpdated) Marshal() []byte {
	var b []byte
	b = protowire.AppendTag(b, fieldGraphRootID, protowire.BytesType)
	b = protowire.AppendBytes(b, g.RootID)

	if g.Tree != nil {
		b = protowire.AppendTag(b, fieldGraphTree, protowire.BytesType)
		b = protowire.AppendBytes(b, g.Tree.Marshal())
	}

	for _, id := range g.CanonicalSpaceIDs {
		b = protowire.AppendTag(b, fieldGraphCanonicalIDs, protowire.BytesType)
		b = protowire.AppendBytes(b, id)
	}

	b = protowire.AppendTag(b, fieldGraphSequenceNumber, protowire.VarintType)
	b = protowire.AppendVarint(b, g.SequenceNumber)

	if g.Meta != nil {
		b = protowire.AppendTag(b, fieldGraphMeta, protowire.BytesType)
		b = protowire.AppendBytes(b, g.Meta.Marshal())
	}
	return b
}

// Unmarshal decodes a CanonicalGraphUpdated from b.
func Unmarshal(b []byte) (*CanonicalGraphUpdated, error) {
	g := &CanonicalGraphUpdated{}
	for len(b) > 0 {
		num, typ, fieldLen := protowire.ConsumeTag(b)
		if fieldLen < 0 {
			return nil, fmt.Errorf("atlaspb: invalid tag in CanonicalGraphUpdated: %w", protowire.ParseError(fieldLen))
		}
		b = b[fieldLen:]

		switch num {
		case fieldGraphRootID:
			v, n2 := protowire.ConsumeBytes(b)
			if n2 < 0 {
				return nil, fmt.Errorf("atlaspb: invalid root_id bytes: %w", protowire.ParseError(n2))
			}
			g.RootID = append([]byte(nil), v...)
			b = b[n2:]
		case fieldGraphTree:
			v, n2 := protowire.ConsumeBytes(b)
			if n2 < 0 {
				return nil, fmt.Errorf("atlaspb: invalid tree bytes: %w", protowire.ParseError(n2))
			}
			tree, err := UnmarshalCanonicalTreeNode(v)
			if err != nil {
				return nil, err
			}
			g.Tree = tree
			b = b[n2:]
		case fieldGraphCanonicalIDs:
			v, n2 := protowire.ConsumeBytes(b)
			if n2 < 0 {
				return nil, fmt.Errorf("atlaspb: invalid canonical_space_ids entry: %w", protowire.ParseError(n2))
			}
			g.CanonicalSpaceIDs = append(g.CanonicalSpaceIDs, append([]byte(nil), v...))
			b = b[n2:]
		case fieldGraphSequenceNumber:
			v, n2 := protowire.ConsumeVarint(b)
			if n2 < 0 {
				return nil, fmt.Errorf("atlaspb: invalid sequence_number varint: %w", protowire.ParseError(n2))
			}
			g.SequenceNumber = v
			b = b[n2:]
		case fieldGraphMeta:
			v, n2 := protowire.ConsumeBytes(b)
			if n2 < 0 {
				return nil, fmt.Errorf("atlaspb: invalid meta bytes: %w", protowire.ParseError(n2))
			}
			meta, err := UnmarshalBlockchainMetadata(v)
			if err != nil {
				return nil, err
			}
			g.Meta = meta
			b = b[n2:]
		default:
			fieldLen := protowire.ConsumeFieldValue(num, typ, b)
			if fieldLen < 0 {
				return nil, fmt.Errorf("atlaspb: invalid unknown field %d: %w", num, protowire.ParseError(fieldLen))
			}
			b = b[fieldLen:]
		}
	}
	return g, nil
}
