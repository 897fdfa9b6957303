// Copyright (c) 2014 Project Bitmark
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package mining

import (
	"encoding/binary"

	"github.com/dbkeys/bitmark/types/txscript"
	"github.com/dbkeys/bitmark/types/wire"
	"github.com/pkg/errors"
)

// MaxCoinbaseScriptSigLen is the hard cap on a coinbase's scriptSig length,
// consensus rule BIP34 and this engine's extra-nonce scheme both rely on:
// the extra-nonce bytes must always fit regardless of block height.
const MaxCoinbaseScriptSigLen = 100

// standardCoinbaseScript builds a scriptSig encoding the block height (the
// BIP34 commitment), the current extra-nonce value, and the CoinbaseFlags
// software tag, the three pieces a coinbase transaction carries.
func standardCoinbaseScript(nextBlockHeight int32, extraNonce uint64) ([]byte, error) {
	builder := txscript.NewScriptBuilder()
	builder.AddInt64(int64(nextBlockHeight))
	builder.AddInt64(int64(extraNonce))
	builder.AddData(CoinbaseFlags)

	script, err := builder.Script()
	if err != nil {
		return nil, errors.Wrap(err, "build coinbase scriptSig")
	}
	if len(script) > MaxCoinbaseScriptSigLen {
		return nil, errors.Errorf("coinbase scriptSig length %d exceeds maximum %d", len(script), MaxCoinbaseScriptSigLen)
	}
	return script, nil
}

// createCoinbaseTx builds the coinbase transaction for a new template: one
// input with no previous output, carrying coinbaseScript, and one output
// paying the full subsidy plus fees to payToAddress.
func createCoinbaseTx(coinbaseScript, payToAddress []byte, nextBlockHeight int32, totalOutput int64) *wire.MsgTx {
	tx := wire.NewMsgTx(wire.TxVersion)

	tx.AddTxIn(&wire.TxIn{
		PreviousOutPoint: wire.OutPoint{Index: wire.MaxPrevOutIndex},
		SignatureScript:  coinbaseScript,
		Sequence:         wire.MaxTxInSequenceNum,
	})
	tx.AddTxOut(&wire.TxOut{
		Value:    totalOutput,
		PkScript: payToAddress,
	})
	return tx
}

// extraNonceLE little-endian-encodes an extra-nonce value for embedding in
// a scriptSig via raw data push rather than minimal-encoded script number,
// used when the caller wants the full 8 bytes represented regardless of
// leading zero bytes (AddInt64 would otherwise minimally encode small
// values). Nothing in this package calls it: UpdateExtraNonce embeds the
// value through standardCoinbaseScript's minimal AddInt64 encoding.
func extraNonceLE(extraNonce uint64) []byte {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], extraNonce)
	return buf[:]
}
