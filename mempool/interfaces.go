// Copyright (c) 2014 Project Bitmark
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package mempool defines the narrow view the block template builder needs
// of the node's transaction pool, without depending on the pool's own
// acceptance, eviction, or relay policy.
package mempool

import (
	"time"

	"github.com/dbkeys/bitmark/types/chainhash"
	"github.com/dbkeys/bitmark/types/wire"
)

// TxDesc describes a pooled transaction and the bookkeeping the template
// builder needs to order it: what it pays, when it was accepted, and the
// priority it had at that time (before any fee-for-priority recalculation
// against the current chain height).
type TxDesc struct {
	Tx               *wire.MsgTx
	Added            time.Time
	Height           int32
	Fee              int64
	FeePerKB         int64
	StartingPriority float64
}

// TxSource is the template builder's view of the mempool: every candidate
// transaction currently eligible for inclusion, plus a lookup by hash for
// resolving a transaction's own unconfirmed parents.
type TxSource interface {
	// MiningDescs returns every transaction the pool currently considers
	// eligible for a block template, in no particular order.
	MiningDescs() []*TxDesc

	// HaveTransaction reports whether a transaction is currently pooled.
	HaveTransaction(hash *chainhash.Hash) bool

	// UpdatedCounter returns a value that increases every time the pool's
	// contents change (accept, evict, or reorg-driven reinsertion). The
	// supervisor snapshots it at template-build time and compares it on
	// later periodic checks to detect mempool drift.
	UpdatedCounter() uint64
}
