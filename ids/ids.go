// (c) 2019-2020, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package ids defines the fixed-size opaque identifiers Atlas passes
// between the event source, the graph state, and the wire protocol.
package ids

import (
	"bytes"
	"encoding/hex"
	"errors"
	"sort"
)

// SpaceIDLen and TopicIDLen are both 16 bytes per the wire contract.
const (
	SpaceIDLen   = 16
	TopicIDLen   = 16
	ShortAddrLen = 20
	LongAddrLen  = 32
)

// ErrInvalidLen is returned when decoding a hex string of the wrong length.
var ErrInvalidLen = errors.New("ids: invalid encoded length")

// SpaceID uniquely identifies a space (a node in the canonical graph).
type SpaceID [SpaceIDLen]byte

// TopicID uniquely identifies a topic that spaces announce and reference.
type TopicID [TopicIDLen]byte

// EmptySpaceID is the zero-value SpaceID, used as a sentinel "no id" value.
var EmptySpaceID = SpaceID{}

// EmptyTopicID is the zero-value TopicID.
var EmptyTopicID = TopicID{}

// SpaceIDFromHex decodes a 32-character hex string into a SpaceID.
func SpaceIDFromHex(s string) (SpaceID, error) {
	var id SpaceID
	b, err := hex.DecodeString(s)
	if err != nil {
		return id, err
	}
	if len(b) != SpaceIDLen {
		return id, ErrInvalidLen
	}
	copy(id[:], b)
	return id, nil
}

// TopicIDFromHex decodes a 32-character hex string into a TopicID.
func TopicIDFromHex(s string) (TopicID, error) {
	var id TopicID
	b, err := hex.DecodeString(s)
	if err != nil {
		return id, err
	}
	if len(b) != TopicIDLen {
		return id, ErrInvalidLen
	}
	copy(id[:], b)
	return id, nil
}

// String hex-encodes the id for logging and error messages.
func (id SpaceID) String() string { return hex.EncodeToString(id[:]) }

// String hex-encodes the id for logging and error messages.
func (id TopicID) String() string { return hex.EncodeToString(id[:]) }

// Bytes returns the id's underlying bytes as a slice.
func (id SpaceID) Bytes() []byte { return id[:] }

// Bytes returns the id's underlying bytes as a slice.
func (id TopicID) Bytes() []byte { return id[:] }

// Less orders two SpaceIDs by byte value, giving the deterministic
// iteration order the BFS contract (spec §4.3) requires.
func (id SpaceID) Less(other SpaceID) bool {
	return bytes.Compare(id[:], other[:]) < 0
}

// Less orders two TopicIDs by byte value.
func (id TopicID) Less(other TopicID) bool {
	return bytes.Compare(id[:], other[:]) < 0
}

// SortSpaceIDs returns a deterministically sorted copy of ids.
func SortSpaceIDs(in []SpaceID) []SpaceID {
	out := make([]SpaceID, len(in))
	copy(out, in)
	sort.Slice(out, func(i, j int) bool { return out[i].Less(out[j]) })
	return out
}
