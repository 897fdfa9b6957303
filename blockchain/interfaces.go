// Copyright (c) 2014 Project Bitmark
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package blockchain defines the narrow views of chain state the block
// template builder depends on — a disposable UTXO snapshot and the chain
// itself — without pulling in validation, reorg handling, or storage.
package blockchain

import (
	"github.com/dbkeys/bitmark/types/chainhash"
	"github.com/dbkeys/bitmark/types/wire"
)

// UTXOEntry is the subset of a spendable output's metadata the priority and
// fee calculations need.
type UTXOEntry interface {
	Amount() int64
	BlockHeight() int32
	IsCoinBase() bool

	// PkScript returns the spending conditions attached to the output,
	// needed to recognize a pay-to-script-hash output and resolve its
	// sig-op cost against the redeem script pushed by the spending input.
	PkScript() []byte
}

// UTXOView is a disposable, as-of-now snapshot of unspent outputs. The
// template builder fetches one entry at a time for each input of each
// mempool transaction it considers; callers own the view's lifetime and
// discard it once a template is built.
type UTXOView interface {
	// LookupEntry returns the unspent output an outpoint refers to, or nil
	// if it is unknown — already spent, or never existed.
	LookupEntry(outpoint wire.OutPoint) UTXOEntry
}

// Chain is the template builder's view of chain state: the tip it must
// extend, difficulty and timestamp rules, super-majority version signaling,
// and algorithm-activation lookback (the SSF rule).
type Chain interface {
	// BestHeight returns the height of the current best chain tip.
	BestHeight() int32

	// BestHash returns the hash of the current best chain tip.
	BestHash() *chainhash.Hash

	// CalcNextRequiredDifficulty returns the nBits value a block built on
	// top of the current tip at newBlockTime must satisfy, for the given
	// algorithm lane.
	CalcNextRequiredDifficulty(newBlockTime int64, algo uint8) (uint32, error)

	// UpdateBlockTime advances header.Timestamp to be monotone with
	// respect to the tip's median time past, clamped to the current wall
	// clock. Calling it twice in succession with no other state change is
	// a no-op after the first call.
	UpdateBlockTime(header *wire.BlockHeader) error

	// GetBlockValue returns the block subsidy plus fees due at height.
	GetBlockValue(height int32, fees int64) int64

	// IsSuperMajority reports whether at least need of the last total
	// blocks (inclusive of the tip) signal version or higher.
	IsSuperMajority(version int32, need, total int) (bool, error)

	// PriorAlgoHeader returns the closest strict ancestor of hash whose
	// header is tagged with algo's lane, walking back through prevBlock
	// links as far as necessary. ok is false if no such ancestor exists
	// (the search reached genesis without a match) — the template builder
	// uses that to drive the SSF lookback of spec.md §4.2 step 7.
	PriorAlgoHeader(hash chainhash.Hash, algo uint8) (header *wire.BlockHeader, ok bool, err error)
}
