// Copyright (c) 2014 Project Bitmark
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package mining

import (
	"testing"

	"github.com/dbkeys/bitmark/types/chainhash"
	"github.com/dbkeys/bitmark/types/wire"
	"github.com/stretchr/testify/require"
)

func blockWithCoinbase(t *testing.T, prevBlock chainhash.Hash) *wire.MsgBlock {
	t.Helper()
	script, err := standardCoinbaseScript(101, 0)
	require.NoError(t, err)
	coinbase := createCoinbaseTx(script, []byte{0x51}, 101, 0)

	block := &wire.MsgBlock{}
	require.NoError(t, block.AddTransaction(coinbase))
	block.Header.PrevBlock = prevBlock
	return block
}

// TestExtraNonceSequenceAcrossTipChange exercises spec scenario S4: three
// calls against one prevHash, then two more after it changes, should yield
// 1, 2, 3, 1, 2.
func TestExtraNonceSequenceAcrossTipChange(t *testing.T) {
	var s extraNonceState
	tipA := chainhash.HashH([]byte("tip-a"))
	tipB := chainhash.HashH([]byte("tip-b"))

	var got []uint64
	for i := 0; i < 3; i++ {
		got = append(got, s.next(tipA))
	}
	for i := 0; i < 2; i++ {
		got = append(got, s.next(tipB))
	}

	require.Equal(t, []uint64{1, 2, 3, 1, 2}, got)
}

func TestExtraNonceResetsOnFirstCall(t *testing.T) {
	var s extraNonceState
	require.Equal(t, uint64(1), s.next(chainhash.Hash{}))
}

func TestExtraNonceStableUnderRepeatedZeroTip(t *testing.T) {
	// The zero hash is a legitimate prevHash (genesis), so repeated calls
	// against it must still increment rather than being mistaken for "no
	// prior call yet".
	var s extraNonceState
	require.Equal(t, uint64(1), s.next(chainhash.Hash{}))
	require.Equal(t, uint64(2), s.next(chainhash.Hash{}))
}

func TestUpdateExtraNonceRewritesCoinbaseAndMerkleRoot(t *testing.T) {
	tip := chainhash.HashH([]byte("tip"))
	block := blockWithCoinbase(t, tip)
	originalRoot := wire.CalcMerkleRoot(block.Transactions, false)
	block.Header.MerkleRoot = originalRoot

	require.NoError(t, UpdateExtraNonce(block, 101, 7))

	script := block.Transactions[0].TxIn[0].SignatureScript
	require.LessOrEqual(t, len(script), MaxCoinbaseScriptSigLen)
	require.NotEqual(t, originalRoot, block.Header.MerkleRoot)
	require.Equal(t, wire.CalcMerkleRoot(block.Transactions, false), block.Header.MerkleRoot)
}

func TestUpdateExtraNonceRejectsBlockWithoutCoinbase(t *testing.T) {
	block := &wire.MsgBlock{}
	err := UpdateExtraNonce(block, 101, 1)
	require.Error(t, err)
}
