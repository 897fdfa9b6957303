// Copyright (c) 2014 Project Bitmark
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package mining

import "github.com/pkg/errors"

// ErrStaleWork is returned by CheckWork when the template's prevHash no
// longer matches the chain tip: the solution was found against a parent
// that has since been superseded, and must be discarded rather than
// submitted.
var ErrStaleWork = errors.New("mining: solution is stale, tip has advanced")

// ErrFatalTemplate wraps a dry ConnectBlock failure during template
// construction — a builder bug rather than a normal rejection path, since
// every transaction appended to the template has already individually
// passed CheckInputs.
var ErrFatalTemplate = errors.New("mining: dry connect-block failed against assembled template")

// ErrInterrupted names a worker stopped by cooperative shutdown
// mid-search. The worker loop in this package returns no error, so nothing
// here returns it.
var ErrInterrupted = errors.New("mining: worker interrupted")

// ErrInvalidProofOfWork is returned by CheckWork when the submitted
// header's re-derived proof-of-work hash does not satisfy its own target —
// a search-driver or midstate-patching bug, since the driver itself is
// supposed to have already checked this before calling OnSolution.
var ErrInvalidProofOfWork = errors.New("mining: submitted header fails its own proof-of-work target")

// skipReason records why a candidate transaction was left out of a
// template — logged at debug level, never surfaced as a build failure,
// per spec.md §7's Skippable error kind.
type skipReason string

const (
	skipOversize        skipReason = "would exceed block max size"
	skipSigOps          skipReason = "would exceed max block sig-ops"
	skipBelowRelayFee   skipReason = "fee-per-kb below relay minimum past min size floor"
	skipInputsUnavailable skipReason = "inputs no longer available against mutated view"
	skipP2SHSigOps      skipReason = "would exceed max block P2SH sig-ops"
	skipCheckInputs     skipReason = "validator rejected CheckInputs"
)

// anomalyMissingInput is logged (never returned) when a mempool
// transaction references an input absent from both the UTXO view and the
// mempool itself — spec.md §7's Anomaly kind, which should not occur given
// mempool invariants.
const anomalyMissingInput = "mempool transaction references input absent from both view and mempool"
