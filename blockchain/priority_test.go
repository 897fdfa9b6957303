// Copyright (c) 2014 Project Bitmark
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockchain

import (
	"testing"

	"github.com/dbkeys/bitmark/types/wire"
	"github.com/stretchr/testify/require"
)

func TestCalcPriorityDiscountsModifiedSizeNotRawSize(t *testing.T) {
	tx := wire.NewMsgTx(wire.TxVersion)
	tx.AddTxIn(&wire.TxIn{SignatureScript: make([]byte, 107)})

	// offset = 41 + min(110, 107) = 148, so a 1000-byte transaction gets
	// divided against a modified size of 852, not the raw 1000.
	require.Equal(t, int64(852), calculateModifiedSize(tx, 1000))
	require.InDelta(t, 1000.0/852.0, CalcPriority(tx, 1000, 1000), 1e-9)
}

func TestCalcPriorityModifiedSizeFloorsAtZeroPerInput(t *testing.T) {
	tx := wire.NewMsgTx(wire.TxVersion)
	tx.AddTxIn(&wire.TxIn{SignatureScript: make([]byte, 200)})

	// offset = 41 + min(110, 200) = 151, which exceeds the tiny serialized
	// size passed in; the per-input guard leaves it unchanged instead of
	// going negative.
	require.Equal(t, int64(100), calculateModifiedSize(tx, 100))
}

func TestCalcPriorityPaddingScriptSigDoesNotCheapenPriority(t *testing.T) {
	small := wire.NewMsgTx(wire.TxVersion)
	small.AddTxIn(&wire.TxIn{SignatureScript: make([]byte, 10)})

	padded := wire.NewMsgTx(wire.TxVersion)
	padded.AddTxIn(&wire.TxIn{SignatureScript: make([]byte, 500)})

	smallPriority := CalcPriority(small, 300, 1000)
	paddedPriority := CalcPriority(padded, 790, 1000) // bigger scriptSig, larger total size

	require.LessOrEqual(t, paddedPriority, smallPriority)
}
