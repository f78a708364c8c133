// (c) 2019-2020, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package atlaserr defines the sentinel error kinds the event loop and
// its collaborators return (spec.md §7), plus a small error aggregator
// for cleanup paths that must attempt every close/release step
// regardless of earlier failures.
package atlaserr

import (
	"errors"
	"fmt"
)

// Sentinel error kinds. Callers use errors.Is against these, never
// string comparison.
var (
	// ErrSourceTerminated signals the Source reached its configured end
	// block. The event loop logs and exits zero.
	ErrSourceTerminated = errors.New("atlas: source terminated")
	// ErrSourceError wraps a network or decode failure from the Source.
	// The event loop logs and exits non-zero; the orchestrator restarts
	// from the persisted cursor.
	ErrSourceError = errors.New("atlas: source error")
	// ErrDecodeError signals a malformed event payload. Fatal: skipping it
	// would corrupt ordering.
	ErrDecodeError = errors.New("atlas: decode error")
	// ErrPersistenceError wraps a transaction failure. Retried with
	// exponential backoff up to a bounded duration before becoming fatal.
	ErrPersistenceError = errors.New("atlas: persistence error")
	// ErrEmissionError wraps a Sink send/flush failure. Retried; if the
	// block was already persisted, a permanent emission failure still
	// exits non-zero (the restart will skip re-emission, which downstream
	// consumers must tolerate).
	ErrEmissionError = errors.New("atlas: emission error")
	// ErrIPFSFetchError signals a gateway timeout or 404. Non-fatal: the
	// cache entry is written with errored=true and no content.
	ErrIPFSFetchError = errors.New("atlas: ipfs fetch error")
)

// Errs aggregates multiple errors from a sequence of steps that must all
// be attempted (e.g. releasing several resources on shutdown), in the
// idiom of the teacher's utils/wrappers.Errs: callers call Add after
// every step and check Err once at the end.
type Errs struct {
	Err error
}

// Add records every non-nil err into the aggregate: the first becomes
// Err, and each later one is appended to Err's message while the first
// stays wrapped, so errors.Is still matches the first error.
func (e *Errs) Add(errs ...error) {
	for _, err := range errs {
		if err == nil {
			continue
		}
		if e.Err == nil {
			e.Err = err
			continue
		}
		e.Err = fmt.Errorf("%w; %s", e.Err, err)
	}
}
