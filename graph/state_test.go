// (c) 2019-2020, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package graph

import (
	"testing"

	"github.com/defi-wonderland/atlas/ids"
	"github.com/stretchr/testify/require"
)

func topic(b byte) ids.TopicID {
	var t ids.TopicID
	t[0] = b
	return t
}

func TestApplySpaceCreatedIsIdempotent(t *testing.T) {
	s := New()
	ev := NewSpaceCreated(sid(0x01), topic(0xF0), SpaceTypePersonal)

	require.NoError(t, s.Apply(ev))
	require.NoError(t, s.Apply(ev))

	require.True(t, s.HasSpace(sid(0x01)))
	members := s.GetTopicMembers(topic(0xF0))
	require.Equal(t, []ids.SpaceID{sid(0x01)}, members)
}

func TestApplySpaceCreatedConflictingTopicFails(t *testing.T) {
	s := New()
	require.NoError(t, s.Apply(NewSpaceCreated(sid(0x01), topic(0xF0), SpaceTypePersonal)))
	err := s.Apply(NewSpaceCreated(sid(0x01), topic(0xF1), SpaceTypePersonal))
	require.ErrorIs(t, err, ErrAlreadyExists)
}

func TestTrustExtendedVerifiedAndRelated(t *testing.T) {
	s := New()
	require.NoError(t, s.Apply(NewSpaceCreated(sid(0x01), topic(0xF0), SpaceTypePersonal)))
	require.NoError(t, s.Apply(NewSpaceCreated(sid(0x02), topic(0xF0), SpaceTypePersonal)))
	require.NoError(t, s.Apply(NewSpaceCreated(sid(0x03), topic(0xF0), SpaceTypePersonal)))

	require.NoError(t, s.Apply(NewTrustExtended(sid(0x01), VerifiedExtension(sid(0x02)))))
	require.NoError(t, s.Apply(NewTrustExtended(sid(0x01), RelatedExtension(sid(0x03)))))

	edges := s.GetExplicitChildren(sid(0x01))
	require.Len(t, edges, 2)
	require.Equal(t, sid(0x02), edges[0].Target)
	require.Equal(t, EdgeVerified, edges[0].Kind)
	require.Equal(t, sid(0x03), edges[1].Target)
	require.Equal(t, EdgeRelated, edges[1].Kind)
}

func TestDuplicateExplicitEdgeIsNoOp(t *testing.T) {
	s := New()
	require.NoError(t, s.Apply(NewSpaceCreated(sid(0x01), topic(0xF0), SpaceTypePersonal)))
	require.NoError(t, s.Apply(NewSpaceCreated(sid(0x02), topic(0xF0), SpaceTypePersonal)))

	ev := NewTrustExtended(sid(0x01), VerifiedExtension(sid(0x02)))
	require.NoError(t, s.Apply(ev))
	require.NoError(t, s.Apply(ev))

	require.Len(t, s.GetExplicitChildren(sid(0x01)), 1)
}

func TestSubtopicEdgeTracksReverseIndex(t *testing.T) {
	s := New()
	require.NoError(t, s.Apply(NewSpaceCreated(sid(0x01), topic(0xF0), SpaceTypePersonal)))

	require.NoError(t, s.Apply(NewTrustExtended(sid(0x01), SubtopicExtension(topic(0xF1)))))

	require.Equal(t, []ids.TopicID{topic(0xF1)}, s.GetTopicChildren(sid(0x01)))
	require.Equal(t, []ids.SpaceID{sid(0x01)}, s.TopicEdgeSources(topic(0xF1)))
}

func TestDanglingEdgesAreSilentlyKept(t *testing.T) {
	s := New()
	require.NoError(t, s.Apply(NewSpaceCreated(sid(0x01), topic(0xF0), SpaceTypePersonal)))
	require.NoError(t, s.Apply(NewTrustExtended(sid(0x01), VerifiedExtension(sid(0x99)))))

	edges := s.GetExplicitChildren(sid(0x01))
	require.Len(t, edges, 1)
	require.Equal(t, sid(0x99), edges[0].Target)
	require.False(t, s.HasSpace(sid(0x99)))
}

func TestGetTopicMembersSortedDeterministically(t *testing.T) {
	s := New()
	require.NoError(t, s.Apply(NewSpaceCreated(sid(0x03), topic(0xF0), SpaceTypePersonal)))
	require.NoError(t, s.Apply(NewSpaceCreated(sid(0x01), topic(0xF0), SpaceTypePersonal)))
	require.NoError(t, s.Apply(NewSpaceCreated(sid(0x02), topic(0xF0), SpaceTypePersonal)))

	require.Equal(t, []ids.SpaceID{sid(0x01), sid(0x02), sid(0x03)}, s.GetTopicMembers(topic(0xF0)))
}
