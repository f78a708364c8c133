// (c) 2019-2020, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package graph

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func buildFixtureState(t *testing.T) *State {
	t.Helper()
	s := New()
	require.NoError(t, s.Apply(NewSpaceCreated(sid(0x01), topic(0xF0), SpaceTypePersonal)))
	require.NoError(t, s.Apply(NewSpaceCreated(sid(0x02), topic(0xF0), SpaceTypePersonal)))
	require.NoError(t, s.Apply(NewSpaceCreated(sid(0x03), topic(0xF1), SpaceTypeDAO)))
	require.NoError(t, s.Apply(NewTrustExtended(sid(0x01), VerifiedExtension(sid(0x02)))))
	require.NoError(t, s.Apply(NewTrustExtended(sid(0x02), RelatedExtension(sid(0x03)))))
	require.NoError(t, s.Apply(NewTrustExtended(sid(0x01), SubtopicExtension(topic(0xF1)))))
	return s
}

func TestSnapshotRestoreRoundTrip(t *testing.T) {
	s := buildFixtureState(t)
	snap := s.Snapshot()

	restored, err := Restore(snap)
	require.NoError(t, err)

	require.Equal(t, snap, restored.Snapshot())
}

func TestSnapshotIsDeterministicAcrossInsertionOrder(t *testing.T) {
	a := New()
	require.NoError(t, a.Apply(NewSpaceCreated(sid(0x01), topic(0xF0), SpaceTypePersonal)))
	require.NoError(t, a.Apply(NewSpaceCreated(sid(0x02), topic(0xF0), SpaceTypePersonal)))

	b := New()
	require.NoError(t, b.Apply(NewSpaceCreated(sid(0x02), topic(0xF0), SpaceTypePersonal)))
	require.NoError(t, b.Apply(NewSpaceCreated(sid(0x01), topic(0xF0), SpaceTypePersonal)))

	require.Equal(t, a.Snapshot(), b.Snapshot())
}
