// Copyright (c) 2014 Project Bitmark
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockchain

import "github.com/dbkeys/bitmark/types/wire"

// MinHighPriority is the priority value the source's AllowFree uses as the
// cutoff for a transaction being eligible for free (fee-exempt) relay and
// inclusion, ported verbatim: roughly one bitmark-day of coin-age per
// 250-byte unit.
const MinHighPriority = 57600000.0 // COIN * 144 / 250

// CalcPriority computes a transaction's priority given its serialized size
// and the sum, over every input, of (amount spent * confirmations at the
// current height). Confirmations below zero (an input from a transaction
// not yet confirmed at all) contribute nothing. A priority recalculated
// this way against the current tip height is what lets the source's
// CreateNewBlock re-sort the priority queue mid-build as new heights make
// previously-low-priority transactions newly eligible.
//
// The division is against the modified size from calculateModifiedSize, not
// the raw serialized size, so that padding a transaction with a larger
// scriptSig doesn't buy it a cheaper priority.
func CalcPriority(tx *wire.MsgTx, serializedSize int64, inputValueAge float64) float64 {
	modifiedSize := calculateModifiedSize(tx, serializedSize)
	if modifiedSize <= 0 {
		return 0
	}
	return inputValueAge / float64(modifiedSize)
}

// calculateModifiedSize discounts serializedSize by each input's "already
// paid for" signature overhead: the source's CalculateModifiedSize lets
// every input subtract 41 + min(110, len(scriptSig)) bytes from the running
// size, guarded per-input so no single subtraction can drive it negative.
// Without this discount, padding an input's scriptSig inflates
// serializedSize and cheapens a transaction's apparent priority for free.
func calculateModifiedSize(tx *wire.MsgTx, serializedSize int64) int64 {
	modifiedSize := serializedSize
	for _, txIn := range tx.TxIn {
		offset := int64(41)
		if sigLen := int64(len(txIn.SignatureScript)); sigLen < 110 {
			offset += sigLen
		} else {
			offset += 110
		}
		if modifiedSize > offset {
			modifiedSize -= offset
		}
	}
	return modifiedSize
}

// InputValueAge sums amount*confirmations across a transaction's inputs,
// given the chain height the priority should be evaluated at and a lookup
// from outpoint to the UTXO entry it spends.
func InputValueAge(tx *wire.MsgTx, view UTXOView, nextBlockHeight int32) float64 {
	var total float64
	for _, txIn := range tx.TxIn {
		entry := view.LookupEntry(txIn.PreviousOutPoint)
		if entry == nil {
			continue
		}
		originHeight := entry.BlockHeight()
		confirmations := nextBlockHeight - originHeight
		if confirmations < 0 {
			confirmations = 0
		}
		total += float64(entry.Amount()) * float64(confirmations)
	}
	return total
}
