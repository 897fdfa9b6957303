// Copyright (c) 2014 Project Bitmark
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package mining

import (
	"github.com/dbkeys/bitmark/types/chainhash"
	"github.com/dbkeys/bitmark/types/wire"
	"github.com/pkg/errors"
)

// extraNonceState tracks the per-template counter embedded in the
// coinbase's scriptSig: it restarts at 1 whenever the tip it extends
// changes and otherwise only ever increases, giving every header built on
// the same parent a distinct coinbase transaction (and so a distinct
// merkle root) to search under.
type extraNonceState struct {
	seen    bool
	value   uint64
	lastTip chainhash.Hash
}

// next advances the counter for a template extending tip: if tip differs
// from the last call's tip (or this is the first call ever) the counter
// resets to 1, otherwise it increments. The seen flag, rather than the
// zero hash, marks "no prior call" so a genesis tip (whose prevHash really
// is the zero hash) doesn't get mistaken for a repeat.
func (s *extraNonceState) next(tip chainhash.Hash) uint64 {
	if !s.seen || s.lastTip != tip {
		s.value = 1
		s.lastTip = tip
		s.seen = true
	} else {
		s.value++
	}
	return s.value
}

// UpdateExtraNonce rewrites a template's coinbase scriptSig to embed the
// next extra-nonce value and recomputes the block's merkle root to match,
// the step the supervisor takes between exhausting one classical nonce
// range and starting the next, per spec.md §4.3.2.
func UpdateExtraNonce(msgBlock *wire.MsgBlock, nextBlockHeight int32, extraNonce uint64) error {
	coinbaseScript, err := standardCoinbaseScript(nextBlockHeight, extraNonce)
	if err != nil {
		return errors.Wrap(err, "update extra nonce")
	}
	if len(msgBlock.Transactions) == 0 {
		return errors.New("update extra nonce: template has no coinbase transaction")
	}

	msgBlock.Transactions[0].TxIn[0].SignatureScript = coinbaseScript
	msgBlock.Header.MerkleRoot = wire.CalcMerkleRoot(msgBlock.Transactions, false)
	return nil
}
