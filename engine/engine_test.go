// (c) 2019-2020, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package engine

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"github.com/defi-wonderland/atlas/atlaslog"
	"github.com/defi-wonderland/atlas/bus"
	"github.com/defi-wonderland/atlas/internal/mocksource"
	"github.com/defi-wonderland/atlas/metrics"
	"github.com/defi-wonderland/atlas/persist"
	"github.com/defi-wonderland/atlas/proto/atlaspb"
)

func newTestEngine(t *testing.T) (*Engine, *bus.MemorySink, *persist.MemoryStore) {
	t.Helper()
	source := mocksource.New()
	sink := bus.NewMemorySink()
	store := persist.NewMemoryStore()
	reg := prometheus.NewRegistry()
	met := metrics.New(reg)

	e, err := New(context.Background(), source, sink, store, atlaslog.NewNop(), met, mocksource.Root)
	require.NoError(t, err)
	return e, sink, store
}

// TestRunFinalEmissionMatchesFixtureCanonicalSet drives the full
// mocksource fixture through Run and checks the final emitted canonical
// graph matches the fixture's documented 11 canonical spaces (spec.md §9).
func TestRunFinalEmissionMatchesFixtureCanonicalSet(t *testing.T) {
	e, sink, store := newTestEngine(t)

	err := e.Run(context.Background())
	require.NoError(t, err) // ErrSourceTerminated is treated as clean shutdown

	emissions := sink.Emissions()
	require.NotEmpty(t, emissions)

	last := emissions[len(emissions)-1]
	msg, err := atlaspb.Unmarshal(last.Payload)
	require.NoError(t, err)

	require.Len(t, msg.CanonicalSpaceIDs, len(mocksource.CanonicalSpaceIDs()))
	var got []string
	for _, b := range msg.CanonicalSpaceIDs {
		got = append(got, string(b))
	}
	var want []string
	for _, id := range mocksource.CanonicalSpaceIDs() {
		want = append(want, string(id.Bytes()))
	}
	require.ElementsMatch(t, want, got)

	cp, err := store.Load(context.Background())
	require.NoError(t, err)
	require.Equal(t, uint64(102), cp.BlockNumber)
	require.Equal(t, "block-102", cp.Cursor)
}

// TestRunSequenceNumbersAreMonotonic checks spec.md §5's sequence number
// contract: starts at zero, increments once per emission.
func TestRunSequenceNumbersAreMonotonic(t *testing.T) {
	e, sink, _ := newTestEngine(t)

	require.NoError(t, e.Run(context.Background()))

	emissions := sink.Emissions()
	require.True(t, len(emissions) >= 2)

	for i, em := range emissions {
		msg, err := atlaspb.Unmarshal(em.Payload)
		require.NoError(t, err)
		require.Equal(t, uint64(i), msg.SequenceNumber)
	}
}

// TestRunNonCanonicalSpacesNeverAppear checks the 7 non-canonical
// fixture spaces never leak into any emitted flat set.
func TestRunNonCanonicalSpacesNeverAppear(t *testing.T) {
	e, sink, _ := newTestEngine(t)
	require.NoError(t, e.Run(context.Background()))

	nonCanonical := make(map[string]struct{})
	for _, id := range mocksource.NonCanonicalSpaceIDs() {
		nonCanonical[string(id.Bytes())] = struct{}{}
	}

	for _, em := range sink.Emissions() {
		msg, err := atlaspb.Unmarshal(em.Payload)
		require.NoError(t, err)
		for _, b := range msg.CanonicalSpaceIDs {
			_, bad := nonCanonical[string(b)]
			require.False(t, bad, "non-canonical space leaked into emission")
		}
	}
}

// TestRunAllEmissionsKeyedByRoot checks every emission's bus key is the
// configured root (spec.md §6: "key is the 16-byte root_id").
func TestRunAllEmissionsKeyedByRoot(t *testing.T) {
	e, sink, _ := newTestEngine(t)
	require.NoError(t, e.Run(context.Background()))

	for _, em := range sink.Emissions() {
		require.Equal(t, mocksource.Root.Bytes(), em.Key)
	}
}

func TestHealthBeforeAndAfterRun(t *testing.T) {
	e, _, _ := newTestEngine(t)
	require.NoError(t, e.Health())
	require.NoError(t, e.Run(context.Background()))
	require.NoError(t, e.Health())
}
