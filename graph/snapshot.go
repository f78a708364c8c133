// (c) 2019-2020, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package graph

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/defi-wonderland/atlas/ids"
)

// Snapshot deterministically serializes the state so that persisting and
// reloading it yields byte-identical state (spec.md §8 property 10). Maps
// are flattened through sorted iteration so two snapshots of logically
// equal states always produce the same bytes, regardless of Go map
// iteration order.
func (s *State) Snapshot() []byte {
	var buf bytes.Buffer

	spaces := make([]ids.SpaceID, 0, len(s.spaces))
	for sp := range s.spaces {
		spaces = append(spaces, sp)
	}
	spaces = ids.SortSpaceIDs(spaces)

	writeUint32(&buf, uint32(len(spaces)))
	for _, sp := range spaces {
		buf.Write(sp[:])
		topic := s.spaceTopics[sp]
		buf.Write(topic[:])

		edges := s.GetExplicitChildren(sp)
		writeUint32(&buf, uint32(len(edges)))
		for _, e := range edges {
			buf.Write(e.Target[:])
			buf.WriteByte(byte(e.Kind))
		}

		topics := s.GetTopicChildren(sp)
		writeUint32(&buf, uint32(len(topics)))
		for _, t := range topics {
			buf.Write(t[:])
		}
	}
	return buf.Bytes()
}

// Restore rebuilds a State from bytes produced by Snapshot.
func Restore(data []byte) (*State, error) {
	r := bytes.NewReader(data)
	s := New()

	numSpaces, err := readUint32(r)
	if err != nil {
		return nil, fmt.Errorf("graph: restore spaces count: %w", err)
	}
	for i := uint32(0); i < numSpaces; i++ {
		var space ids.SpaceID
		var topic ids.TopicID
		if _, err := r.Read(space[:]); err != nil {
			return nil, fmt.Errorf("graph: restore space id: %w", err)
		}
		if _, err := r.Read(topic[:]); err != nil {
			return nil, fmt.Errorf("graph: restore topic id: %w", err)
		}
		if err := s.Apply(NewSpaceCreated(space, topic, SpaceTypeUnspecified)); err != nil {
			return nil, fmt.Errorf("graph: restore space %s: %w", space, err)
		}

		numEdges, err := readUint32(r)
		if err != nil {
			return nil, fmt.Errorf("graph: restore edge count: %w", err)
		}
		for j := uint32(0); j < numEdges; j++ {
			var target ids.SpaceID
			if _, err := r.Read(target[:]); err != nil {
				return nil, fmt.Errorf("graph: restore edge target: %w", err)
			}
			kindByte, err := r.ReadByte()
			if err != nil {
				return nil, fmt.Errorf("graph: restore edge kind: %w", err)
			}
			var ext TrustExtension
			switch EdgeType(kindByte) {
			case EdgeVerified:
				ext = VerifiedExtension(target)
			case EdgeRelated:
				ext = RelatedExtension(target)
			default:
				return nil, fmt.Errorf("graph: restore: unknown explicit edge kind %d", kindByte)
			}
			s.Apply(NewTrustExtended(space, ext))
		}

		numTopics, err := readUint32(r)
		if err != nil {
			return nil, fmt.Errorf("graph: restore topic-edge count: %w", err)
		}
		for j := uint32(0); j < numTopics; j++ {
			var topicID ids.TopicID
			if _, err := r.Read(topicID[:]); err != nil {
				return nil, fmt.Errorf("graph: restore topic edge: %w", err)
			}
			s.Apply(NewTrustExtended(space, SubtopicExtension(topicID)))
		}
	}
	return s, nil
}

func writeUint32(buf *bytes.Buffer, v uint32) {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], v)
	buf.Write(b[:])
}

func readUint32(r *bytes.Reader) (uint32, error) {
	var b [4]byte
	if _, err := r.Read(b[:]); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(b[:]), nil
}
