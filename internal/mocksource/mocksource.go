// (c) 2019-2020, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package mocksource implements the deterministic fixed topology spec.md
// §9's Design Notes call for as a first-class test seam: 11 canonical
// spaces, 7 non-canonical spaces, 14 explicit edges, and 5 topic edges,
// delivered as three chainevents.BlockFrame values so integration tests
// can drive the full engine loop without a live Substreams endpoint.
package mocksource

import (
	"context"
	"io"
	"sync"

	"github.com/defi-wonderland/atlas/chainevents"
	"github.com/defi-wonderland/atlas/graph"
	"github.com/defi-wonderland/atlas/ids"
	"github.com/defi-wonderland/atlas/internal/atlaserr"
)

// Canonical space IDs, reachable from Root via explicit edges only.
var (
	Root = sid(0x01)
	A    = sid(0x02)
	B    = sid(0x03)
	C    = sid(0x04)
	D    = sid(0x05)
	E    = sid(0x06)
	F    = sid(0x07)
	G    = sid(0x08)
	H    = sid(0x09)
	I    = sid(0x0A)
	J    = sid(0x0B)
)

// Non-canonical space IDs: never reachable from Root via explicit edges.
var (
	K = sid(0x0C)
	L = sid(0x0D)
	M = sid(0x0E)
	N = sid(0x0F)
	O = sid(0x10)
	P = sid(0x11)
	Q = sid(0x12)
)

// Topic IDs exercised by the fixture's 5 Subtopic edges.
var (
	TopicF0 = topic(0xF0) // announced by B (canonical) and K (non-canonical)
	TopicF1 = topic(0xF1) // announced by E and G (both canonical)
	TopicF2 = topic(0xF2) // announced by I (canonical)
	TopicF3 = topic(0xF3) // announced by M and N (both non-canonical)
	TopicF4 = topic(0xF4) // announced by nobody
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

// CanonicalSpaceIDs returns the 11 space IDs a correctly-running engine
// must report as canonical members once the fixture's first two blocks
// have been applied.
func CanonicalSpaceIDs() []ids.SpaceID {
	return []ids.SpaceID{Root, A, B, C, D, E, F, G, H, I, J}
}

// NonCanonicalSpaceIDs returns the 7 space IDs that must never appear in
// the canonical flat set, however many events are applied.
func NonCanonicalSpaceIDs() []ids.SpaceID {
	return []ids.SpaceID{K, L, M, N, O, P, Q}
}

// blocks builds the fixture's three BlockFrame values: space creation,
// explicit edges, then topic edges. Splitting across blocks exercises
// the engine's per-block persistence boundary the way a live chain would.
func blocks() []chainevents.BlockFrame {
	sc := func(space ids.SpaceID, t ids.TopicID, st graph.SpaceType) graph.Event {
		return graph.NewSpaceCreated(space, t, st)
	}
	te := func(source ids.SpaceID, ext graph.TrustExtension) graph.Event {
		return graph.NewTrustExtended(source, ext)
	}

	spaceEvents := []graph.Event{
		sc(Root, topic(0xA1), graph.SpaceTypePersonal),
		sc(A, topic(0xA2), graph.SpaceTypePersonal),
		sc(B, TopicF0, graph.SpaceTypePersonal),
		sc(C, topic(0xA4), graph.SpaceTypePersonal),
		sc(D, topic(0xA5), graph.SpaceTypePersonal),
		sc(E, TopicF1, graph.SpaceTypePersonal),
		sc(F, topic(0xA7), graph.SpaceTypePersonal),
		sc(G, TopicF1, graph.SpaceTypePersonal),
		sc(H, topic(0xA9), graph.SpaceTypePersonal),
		sc(I, TopicF2, graph.SpaceTypePersonal),
		sc(J, topic(0xAB), graph.SpaceTypePersonal),
		sc(K, TopicF0, graph.SpaceTypeDAO),
		sc(L, topic(0xAD), graph.SpaceTypeDAO),
		sc(M, TopicF3, graph.SpaceTypeDAO),
		sc(N, TopicF3, graph.SpaceTypeDAO),
		sc(O, topic(0xB0), graph.SpaceTypeDAO),
		sc(P, topic(0xB1), graph.SpaceTypeDAO),
		sc(Q, topic(0xB2), graph.SpaceTypeDAO),
	}

	explicitEvents := []graph.Event{
		te(Root, graph.VerifiedExtension(A)),
		te(Root, graph.VerifiedExtension(B)),
		te(A, graph.VerifiedExtension(C)),
		te(A, graph.RelatedExtension(D)),
		te(B, graph.VerifiedExtension(E)),
		te(B, graph.RelatedExtension(F)),
		te(C, graph.VerifiedExtension(G)),
		te(D, graph.RelatedExtension(H)),
		te(E, graph.VerifiedExtension(I)),
		te(F, graph.RelatedExtension(J)),
		te(K, graph.VerifiedExtension(L)),
		te(O, graph.RelatedExtension(P)),
		te(K, graph.VerifiedExtension(A)),
		te(Q, graph.RelatedExtension(O)),
	}

	topicEvents := []graph.Event{
		te(Root, graph.SubtopicExtension(TopicF0)),
		te(B, graph.SubtopicExtension(TopicF1)),
		te(H, graph.SubtopicExtension(TopicF2)),
		te(A, graph.SubtopicExtension(TopicF3)),
		te(J, graph.SubtopicExtension(TopicF4)),
	}

	return []chainevents.BlockFrame{
		{BlockNumber: 100, BlockTimestamp: 1_700_000_000, Cursor: "block-100", Events: spaceEvents},
		{BlockNumber: 101, BlockTimestamp: 1_700_000_012, Cursor: "block-101", Events: explicitEvents},
		{BlockNumber: 102, BlockTimestamp: 1_700_000_024, Cursor: "block-102", Events: topicEvents},
	}
}

// Source is a chainevents.Source replaying the fixed fixture topology,
// safe for sequential use by a single engine loop (spec.md §5's
// single-writer scheduling model; Source itself needs no internal
// locking beyond what guards its own cursor).
type Source struct {
	mu     sync.Mutex
	frames []chainevents.BlockFrame
	next   int
}

// New returns a Source positioned at genesis (the fixture's first block).
func New() *Source {
	return &Source{frames: blocks()}
}

// Seek positions the Source to resume just after cursor, or at genesis
// if cursor is empty. Seeking to an unknown cursor is a test-fixture
// misuse and panics rather than silently resuming from the wrong place.
func (s *Source) Seek(_ context.Context, cursor string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if cursor == "" {
		s.next = 0
		return nil
	}
	for i, f := range s.frames {
		if f.Cursor == cursor {
			s.next = i + 1
			return nil
		}
	}
	panic("mocksource: Seek to unknown cursor " + cursor)
}

// Next returns the next BlockFrame, or atlaserr.ErrSourceTerminated once
// the fixture is exhausted.
func (s *Source) Next(ctx context.Context) (chainevents.BlockFrame, error) {
	select {
	case <-ctx.Done():
		return chainevents.BlockFrame{}, ctx.Err()
	default:
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.next >= len(s.frames) {
		return chainevents.BlockFrame{}, atlaserr.ErrSourceTerminated
	}
	f := s.frames[s.next]
	s.next++
	return f, nil
}

// Close is a no-op; the fixture owns no external resource.
func (s *Source) Close() error {
	return nil
}

var _ chainevents.Source = (*Source)(nil)
var _ io.Closer = (*Source)(nil)
