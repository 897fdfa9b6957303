// Copyright (c) 2014 Project Bitmark
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package mining assembles block templates from pooled transactions and
// drives the proof-of-work search over them.
package mining

import (
	"github.com/dbkeys/bitmark/blockchain"
	"github.com/dbkeys/bitmark/mempool"
	"github.com/dbkeys/bitmark/types/chainhash"
	"github.com/dbkeys/bitmark/types/wire"
)

// Chain is the subset of chain state the template builder and the
// supervisor both need; it re-exports blockchain.Chain so callers outside
// this module don't have to import blockchain just to satisfy this
// package's constructors.
type Chain = blockchain.Chain

// UTXOView re-exports blockchain.UTXOView for the same reason.
type UTXOView = blockchain.UTXOView

// TxSource re-exports mempool.TxSource for the same reason.
type TxSource = mempool.TxSource

// ViewProvider opens a fresh, disposable UTXO snapshot for one template
// build. The generator calls this once per NewBlockTemplate and discards
// the view when the build finishes.
type ViewProvider interface {
	NewUTXOView() (UTXOView, error)
}

// ScriptVerifyFlags selects which script-validation rules CheckInputs
// enforces; this module only ever asks for the P2SH flag, matching
// spec.md §6's checkInputs(tx, view, flags=P2SH).
type ScriptVerifyFlags uint32

// ScriptVerifyP2SH is the only script flag the template builder's
// dry-run input check asks the validator to enforce.
const ScriptVerifyP2SH ScriptVerifyFlags = 1 << 0

// Validator is the out-of-scope block/chain validator, consulted by the
// template builder to skip unfundable candidates before they're appended
// and, once a solution is found, to connect and submit the finished block.
type Validator interface {
	// CheckInputs reports whether tx's inputs, as resolved against view,
	// pass script-flag-limited checks — not full script execution.
	CheckInputs(tx *wire.MsgTx, view UTXOView, flags ScriptVerifyFlags) error

	// UpdateCoins applies tx's effects (spending its inputs, creating its
	// outputs) to view as of height.
	UpdateCoins(tx *wire.MsgTx, view UTXOView, height int32, txHash chainhash.Hash) error

	// ConnectBlock validates block against view. When dryRun is true
	// (template-build time) no persistent state changes; when false
	// (post-solve submission) it is the real connect.
	ConnectBlock(block *wire.MsgBlock, view UTXOView, dryRun bool) error

	// ProcessBlock submits a fully solved block for acceptance and relay.
	ProcessBlock(block *wire.MsgBlock) error
}

// Wallet is the out-of-scope key-reservation service the coinbase output
// pays to.
type Wallet interface {
	// ReserveKey returns a scriptPubKey to pay the coinbase to, reserved
	// until KeepKey or ReturnKey is called.
	ReserveKey() ([]byte, error)

	// KeepKey commits the most recently reserved key as spent, called
	// once a block built against it is accepted.
	KeepKey() error

	// ReturnKey releases the most recently reserved key back to the pool
	// without committing it, called when a template build fails outright.
	ReturnKey() error

	// ClearRequestCount zeroes the wallet's outstanding-request counter
	// for blockHash, mirroring mapRequestCount[hash] = 0 in CheckWork.
	ClearRequestCount(blockHash chainhash.Hash)
}

// Peers is the out-of-scope peer-to-peer layer, consulted only to decide
// whether mining stale work in isolation should be avoided.
type Peers interface {
	// IsEmpty reports whether the node currently has zero connected peers.
	IsEmpty() bool
}
