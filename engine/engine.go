// (c) 2019-2020, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package engine implements the Sink runtime (spec.md §2 component #7):
// the single-writer loop that drains the chainevents.Source in block
// order, applies each block's events to graph.State, invalidates the
// reach.Processor cache, gates and recomputes the canonical graph, and
// emits/persists on change. Grounded on the teacher's
// snow/engine/snowman/transitive.go consensus-engine-loop shape: a small
// driver struct holding long-lived collaborators by reference, a single
// blocking Run loop, and Health()/Close() lifecycle methods consumed by
// an orchestrator.
package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/defi-wonderland/atlas/atlaslog"
	"github.com/defi-wonderland/atlas/bus"
	"github.com/defi-wonderland/atlas/canonical"
	"github.com/defi-wonderland/atlas/chainevents"
	"github.com/defi-wonderland/atlas/graph"
	"github.com/defi-wonderland/atlas/ids"
	"github.com/defi-wonderland/atlas/internal/atlaserr"
	"github.com/defi-wonderland/atlas/metrics"
	"github.com/defi-wonderland/atlas/persist"
	"github.com/defi-wonderland/atlas/proto/atlaspb"
	"github.com/defi-wonderland/atlas/reach"
)

// defaultRetryBound is the bounded duration spec.md §7 requires
// PersistenceError/EmissionError retries to give up after: "retry with
// exponential backoff up to a bounded duration; if still failing, exit
// non-zero". Tests override Engine.persistRetryBound/emitRetryBound
// directly to keep failure-path assertions fast.
const defaultRetryBound = 2 * time.Minute

// Engine drives the event loop described in spec.md §2's data-flow row:
//
//	Source -> decode -> GraphState.apply -> invalidate(cache) ->
//	if affects_canonical(): CanonicalProcessor.compute ->
//	if changed: serialize
//
// with persist and emit reordered relative to that row's literal
// sequencing to satisfy spec.md §5's stronger, explicit ordering
// guarantee: "the cursor and graph-state snapshot for a block must be
// durable before the corresponding CanonicalGraphUpdated is delivered."
// processBlock therefore buffers every emission a block's events
// produce and only hands them to the Sink once that block's checkpoint
// has been durably saved.
//
// Engine is single-writer: Run must not be called concurrently with
// itself, matching spec.md §5's scheduling model.
type Engine struct {
	source chainevents.Source
	sink   bus.Sink
	store  persist.Store
	log    atlaslog.Logger
	met    *metrics.Metrics

	state   *graph.State
	reach   *reach.Processor
	canon   *canonical.Processor
	seq     uint64
	healthy bool

	// canonicalFlat is the engine's own view of the last-computed
	// canonical flat set, threaded into AffectsCanonical on every
	// TrustExtended event. canonical.Processor deliberately owns only
	// its root and last-emitted hash (spec.md §3 Ownership); the flat
	// set used for the affects_canonical gate is the caller's to keep.
	canonicalFlat map[ids.SpaceID]struct{}

	// persistRetryBound and emitRetryBound cap the exponential-backoff
	// retry spec.md §7 requires for PersistenceError/EmissionError.
	persistRetryBound time.Duration
	emitRetryBound    time.Duration
}

// New constructs an Engine rooted at root, resuming from store's last
// checkpoint if one exists or starting from an empty GraphState at
// source genesis otherwise, per spec.md §6's persistence contract.
func New(ctx context.Context, source chainevents.Source, sink bus.Sink, store persist.Store, log atlaslog.Logger, met *metrics.Metrics, root ids.SpaceID) (*Engine, error) {
	e := &Engine{
		source:            source,
		sink:              sink,
		store:             store,
		log:               log,
		met:               met,
		reach:             reach.NewProcessorWithMetrics(met),
		canon:             canonical.NewProcessor(root),
		canonicalFlat:     map[ids.SpaceID]struct{}{root: {}},
		persistRetryBound: defaultRetryBound,
		emitRetryBound:    defaultRetryBound,
	}

	cp, err := store.Load(ctx)
	switch {
	case err == nil:
		state, err := persist.RestoreState(cp)
		if err != nil {
			return nil, fmt.Errorf("engine: restoring graph state: %w", err)
		}
		e.state = state
		if err := source.Seek(ctx, cp.Cursor); err != nil {
			return nil, fmt.Errorf("engine: seeking source to %q: %w", cp.Cursor, err)
		}
		// Re-derive the explicit-only canonical flat set from the
		// restored state so AffectsCanonical's gate is correct from the
		// first post-restart event onward, without re-emitting: the
		// canonical.Processor's own last-hash baseline is intentionally
		// left unset (spec.md §6 persists only GraphState), so the next
		// structural change still triggers a fresh emission.
		e.canonicalFlat = e.reach.GetExplicitOnly(root, e.state).Flat
		log.Info("engine: resumed from block %d (cursor %q)", cp.BlockNumber, cp.Cursor)
	case errors.Is(err, persist.ErrNotFound):
		e.state = graph.New()
		log.Info("engine: no checkpoint found, starting from source genesis")
	default:
		return nil, fmt.Errorf("engine: loading checkpoint: %w", err)
	}

	e.healthy = true
	return e, nil
}

// Health reports whether the engine's last iteration completed without a
// fatal error, consumed by the orchestrator's liveness probe (spec.md
// SPEC_FULL.md §4.5, grounded on snow/networking/timeout/manager.go's
// outstanding-request health tracking).
func (e *Engine) Health() error {
	if !e.healthy {
		return errors.New("engine: unhealthy")
	}
	return nil
}

// Close releases the Source, Sink, and Store, aggregating any errors
// with atlaserr.Errs so every resource is still given a chance to close
// even if an earlier one fails.
func (e *Engine) Close() error {
	var errs atlaserr.Errs
	errs.Add(e.source.Close())
	errs.Add(e.sink.Close())
	errs.Add(e.store.Close())
	return errs.Err
}

// Run blocks, processing blocks from the Source one at a time until ctx
// is cancelled or the Source terminates (io.EOF / atlaserr.ErrSourceTerminated),
// which Run treats as a clean shutdown rather than an error.
func (e *Engine) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		frame, err := e.source.Next(ctx)
		if err != nil {
			if errors.Is(err, atlaserr.ErrSourceTerminated) || errors.Is(err, io.EOF) {
				e.log.Info("engine: source terminated, exiting cleanly")
				return nil
			}
			e.healthy = false
			return fmt.Errorf("%w: %w", atlaserr.ErrSourceError, err)
		}

		if err := e.processBlock(ctx, frame); err != nil {
			e.healthy = false
			return err
		}
	}
}

// processBlock applies one block's events in order, recomputing the
// canonical graph as needed, then persists the block's checkpoint, and
// only once that persist has durably succeeded does it hand the block's
// buffered canonical-graph changes to the Sink in the order they were
// computed. This ordering is spec.md §5's persist-before-emit guarantee:
// a crash after Save but before every buffered Emit call drops the
// pending re-emission on restart rather than duplicating it, which
// downstream keyed consumers must tolerate but duplicating would not be
// safe for.
func (e *Engine) processBlock(ctx context.Context, frame chainevents.BlockFrame) error {
	var pending []*canonical.Graph

	for _, ev := range frame.Events {
		// GraphState.apply is specified as a total, non-failing function
		// (spec.md §7): any error here is a programming defect, not a
		// recoverable condition.
		if err := e.state.Apply(ev); err != nil {
			e.log.Error("engine: GraphState.Apply rejected event: %s", err)
			panic(fmt.Sprintf("engine: GraphState.Apply: %s", err))
		}
		e.met.EventsApplied.WithLabelValues(ev.Kind.String()).Inc()

		e.reach.HandleEvent(ev)

		if canonical.AffectsCanonical(ev, e.canonicalFlat) {
			if g, changed := e.canon.Compute(e.state, e.reach); changed {
				e.canonicalFlat = g.Flat
				pending = append(pending, g)
			}
		}
	}

	e.met.BlocksProcessed.Inc()

	cp := persist.CheckpointFromState(frame.Cursor, frame.BlockNumber, e.state)
	if err := e.persistCheckpoint(ctx, cp); err != nil {
		return err
	}

	for _, g := range pending {
		if err := e.emit(ctx, g, frame); err != nil {
			return err
		}
	}
	return nil
}

// persistCheckpoint saves cp, retrying with exponential backoff up to
// persistRetryBound before giving up (spec.md §7's PersistenceError row).
func (e *Engine) persistCheckpoint(ctx context.Context, cp persist.Checkpoint) error {
	err := e.retryBounded(ctx, e.persistRetryBound, func() error {
		return e.store.Save(ctx, cp)
	})
	if err != nil {
		return fmt.Errorf("%w: %w", atlaserr.ErrPersistenceError, err)
	}
	return nil
}

// emit serializes g into a CanonicalGraphUpdated keyed by root_id,
// stamps it with the next sequence number, and hands it to the Sink,
// retrying with exponential backoff up to emitRetryBound before giving
// up (spec.md §7's EmissionError row: the block is already persisted by
// the time emit runs, so a permanent failure here still exits non-zero
// and relies on downstream consumers tolerating the skipped re-emit).
func (e *Engine) emit(ctx context.Context, g *canonical.Graph, frame chainevents.BlockFrame) error {
	meta := atlaspb.BlockchainMetadata{
		BlockNumber:    frame.BlockNumber,
		BlockTimestamp: frame.BlockTimestamp,
		Cursor:         frame.Cursor,
	}
	msg := atlaspb.FromCanonicalGraph(g.Root, g.Tree, g.FlatSlice(), e.seq, meta)
	payload := msg.Marshal()

	err := e.retryBounded(ctx, e.emitRetryBound, func() error {
		return e.sink.Emit(ctx, g.Root.Bytes(), payload)
	})
	if err != nil {
		return fmt.Errorf("%w: %w", atlaserr.ErrEmissionError, err)
	}
	e.seq++
	e.met.Emissions.Inc()
	e.log.Info("engine: emitted canonical graph update seq=%d root=%x |flat|=%d", e.seq-1, g.Root.Bytes(), len(g.Flat))
	return nil
}

// retryBounded runs op with an exponential backoff, starting from the
// library default initial interval, and gives up once bound has elapsed
// since the first attempt or ctx is cancelled — spec.md §7's "retry with
// exponential backoff up to a bounded duration" for both the
// PersistenceError and EmissionError rows.
func (e *Engine) retryBounded(ctx context.Context, bound time.Duration, op func() error) error {
	b := backoff.NewExponentialBackOff()
	b.MaxElapsedTime = bound
	return backoff.Retry(op, backoff.WithContext(b, ctx))
}
