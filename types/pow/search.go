// Copyright (c) 2014 Project Bitmark
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package pow

import "github.com/dbkeys/bitmark/types/wire"

// SubmitOutcome reports what happened to a candidate solution handed to a
// SolverSession.
type SubmitOutcome int

const (
	// SubmitAccepted means the candidate was connected as the new tip.
	SubmitAccepted SubmitOutcome = iota
	// SubmitRejected means the candidate failed validation.
	SubmitRejected
	// SubmitStale means the candidate's parent is no longer the tip; the
	// search should move on to a fresh template rather than retry.
	SubmitStale
)

// SolverSession is the contract both search drivers poll against, so
// neither classical.go nor the equihash-backed driver needs to close over
// the supervisor's locks directly. A session wraps one in-flight block
// template: the driver calls IsCancelled between batches of work to decide
// whether to keep searching, and OnSolution once it has a header that
// clears the target, to hand it over for submission. Both drivers return
// after that call whatever the outcome.
type SolverSession interface {
	// IsCancelled reports whether the search should stop: a new tip
	// arrived, the worker is being torn down, or the template is stale.
	IsCancelled() bool

	// OnSolution hands a solved header to the caller for submission and
	// reports the outcome.
	OnSolution(header *wire.BlockHeader) SubmitOutcome

	// RefreshTimeBits is polled at the same periodic-check boundary as
	// IsCancelled, giving the session a chance to bring header's
	// timestamp (and, on networks where difficulty can move within a
	// single template's lifetime, its bits) up to date in place. It
	// mutates header directly and reports whether it changed anything,
	// so the driver knows whether its own derived buffers need patching
	// too — the search continues under the same template and nonce
	// state either way.
	RefreshTimeBits(header *wire.BlockHeader) bool
}
