// (c) 2019-2020, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package canonical

import (
	"testing"

	"github.com/defi-wonderland/atlas/graph"
	"github.com/defi-wonderland/atlas/ids"
	"github.com/defi-wonderland/atlas/reach"
	"github.com/stretchr/testify/require"
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

var (
	root = sid(0x01)
	a    = sid(0x02)
	b    = sid(0x03)
	c    = sid(0x04)
	tt   = topic(0xF0)
)

// buildS1 builds the S1 "linear chain" fixture from spec.md §8.
func buildS1(t *testing.T) *graph.State {
	t.Helper()
	s := graph.New()
	require.NoError(t, s.Apply(graph.NewSpaceCreated(root, tt, graph.SpaceTypePersonal)))
	require.NoError(t, s.Apply(graph.NewSpaceCreated(a, tt, graph.SpaceTypePersonal)))
	require.NoError(t, s.Apply(graph.NewSpaceCreated(b, tt, graph.SpaceTypePersonal)))
	require.NoError(t, s.Apply(graph.NewTrustExtended(root, graph.VerifiedExtension(a))))
	require.NoError(t, s.Apply(graph.NewTrustExtended(a, graph.VerifiedExtension(b))))
	return s
}

func TestComputeS1LinearChain(t *testing.T) {
	s := buildS1(t)
	tp := reach.NewProcessor()
	p := NewProcessor(root)

	g, changed := p.Compute(s, tp)
	require.True(t, changed)
	require.ElementsMatch(t, []ids.SpaceID{root, a, b}, g.FlatSlice())
	require.Equal(t, graph.EdgeRoot, g.Tree.EdgeType)
	require.Len(t, g.Tree.Children, 1)
	require.Equal(t, a, g.Tree.Children[0].SpaceID)
}

func TestComputeS2NonCanonicalIslandUnaffected(t *testing.T) {
	s := buildS1(t)
	tp := reach.NewProcessor()
	p := NewProcessor(root)

	_, changed := p.Compute(s, tp)
	require.True(t, changed)

	require.NoError(t, s.Apply(graph.NewSpaceCreated(c, tt, graph.SpaceTypePersonal)))
	ev := graph.NewTrustExtended(c, graph.VerifiedExtension(a))
	require.NoError(t, s.Apply(ev))

	canonicalFlat := map[ids.SpaceID]struct{}{root: {}, a: {}, b: {}}
	require.False(t, AffectsCanonical(ev, canonicalFlat))

	tp.HandleEvent(ev)
	g, changed := p.Compute(s, tp)
	require.False(t, changed)
	require.Nil(t, g)
}

func TestComputeS3TopicEdgeAttachment(t *testing.T) {
	s := buildS1(t)
	tp := reach.NewProcessor()
	p := NewProcessor(root)

	_, changed := p.Compute(s, tp)
	require.True(t, changed)

	require.NoError(t, s.Apply(graph.NewSpaceCreated(c, tt, graph.SpaceTypePersonal)))
	subtopicEv := graph.NewTrustExtended(root, graph.SubtopicExtension(tt))
	require.NoError(t, s.Apply(subtopicEv))
	tp.HandleEvent(subtopicEv)

	g, changed := p.Compute(s, tp)
	require.True(t, changed)
	require.ElementsMatch(t, []ids.SpaceID{root, a, b}, g.FlatSlice())

	// root should now additionally have topic-edge children for A and B
	// (C is excluded: not canonical), alongside its original explicit
	// child A.
	var topicChildren int
	for _, child := range g.Tree.Children {
		if child.EdgeType == graph.EdgeTopic {
			topicChildren++
		}
	}
	require.Equal(t, 2, topicChildren)
}

func TestComputeS4RedundantReplayProducesNoSecondEmission(t *testing.T) {
	s := graph.New()
	tp := reach.NewProcessor()
	p := NewProcessor(root)

	events := []graph.Event{
		graph.NewSpaceCreated(root, tt, graph.SpaceTypePersonal),
		graph.NewSpaceCreated(a, tt, graph.SpaceTypePersonal),
		graph.NewSpaceCreated(b, tt, graph.SpaceTypePersonal),
		graph.NewTrustExtended(root, graph.VerifiedExtension(a)),
		graph.NewTrustExtended(a, graph.VerifiedExtension(b)),
	}

	emissions := 0
	for _, ev := range events {
		require.NoError(t, s.Apply(ev))
		tp.HandleEvent(ev)
		if _, changed := p.Compute(s, tp); changed {
			emissions++
		}
	}
	require.Equal(t, 5, emissions)

	for _, ev := range events {
		require.NoError(t, s.Apply(ev))
		tp.HandleEvent(ev)
		if _, changed := p.Compute(s, tp); changed {
			emissions++
		}
	}
	require.Equal(t, 5, emissions)
}

func TestComputeS6ShortPathShapeChange(t *testing.T) {
	s := graph.New()
	require.NoError(t, s.Apply(graph.NewSpaceCreated(root, tt, graph.SpaceTypePersonal)))
	require.NoError(t, s.Apply(graph.NewSpaceCreated(a, tt, graph.SpaceTypePersonal)))
	require.NoError(t, s.Apply(graph.NewSpaceCreated(b, tt, graph.SpaceTypePersonal)))
	require.NoError(t, s.Apply(graph.NewSpaceCreated(c, tt, graph.SpaceTypePersonal)))
	require.NoError(t, s.Apply(graph.NewTrustExtended(root, graph.VerifiedExtension(a))))
	require.NoError(t, s.Apply(graph.NewTrustExtended(a, graph.VerifiedExtension(b))))
	require.NoError(t, s.Apply(graph.NewTrustExtended(b, graph.VerifiedExtension(c))))

	tp := reach.NewProcessor()
	p := NewProcessor(root)

	g1, changed := p.Compute(s, tp)
	require.True(t, changed)
	require.ElementsMatch(t, []ids.SpaceID{root, a, b, c}, g1.FlatSlice())

	ev := graph.NewTrustExtended(root, graph.VerifiedExtension(c))
	require.NoError(t, s.Apply(ev))
	tp.HandleEvent(ev)

	g2, changed := p.Compute(s, tp)
	require.True(t, changed)
	require.ElementsMatch(t, []ids.SpaceID{root, a, b, c}, g2.FlatSlice())

	// C is now reachable directly from root (shortest path), so it must
	// appear as a direct child of the root rather than nested under B.
	var foundDirect bool
	for _, child := range g2.Tree.Children {
		if child.SpaceID == c {
			foundDirect = true
		}
	}
	require.True(t, foundDirect)
}

func TestComputeSecondCallWithNoChangesReturnsFalse(t *testing.T) {
	s := buildS1(t)
	tp := reach.NewProcessor()
	p := NewProcessor(root)

	_, changed := p.Compute(s, tp)
	require.True(t, changed)

	_, changed = p.Compute(s, tp)
	require.False(t, changed)
}

func TestAffectsCanonicalSpaceCreatedAlwaysFalse(t *testing.T) {
	ev := graph.NewSpaceCreated(root, tt, graph.SpaceTypePersonal)
	require.False(t, AffectsCanonical(ev, map[ids.SpaceID]struct{}{root: {}}))
}

func TestSingleSpaceGraphBoundary(t *testing.T) {
	s := graph.New()
	require.NoError(t, s.Apply(graph.NewSpaceCreated(root, tt, graph.SpaceTypePersonal)))

	tp := reach.NewProcessor()
	p := NewProcessor(root)

	g, changed := p.Compute(s, tp)
	require.True(t, changed)
	require.Equal(t, map[ids.SpaceID]struct{}{root: {}}, g.Flat)
	require.Equal(t, graph.EdgeRoot, g.Tree.EdgeType)
	require.Empty(t, g.Tree.Children)
}
