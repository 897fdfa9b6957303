// Copyright (c) 2013-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package txscript

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGetSigOpCountCountsCheckSigAndMultisig(t *testing.T) {
	require.Equal(t, 1, GetSigOpCount([]byte{OP_CHECKSIG}))
	require.Equal(t, 1, GetSigOpCount([]byte{OP_CHECKSIGVERIFY}))

	// OP_2 OP_CHECKMULTISIG counts as 2, the small-number literal
	// immediately preceding the opcode.
	require.Equal(t, 2, GetSigOpCount([]byte{op1 + 1, OP_CHECKMULTISIG}))

	// With no preceding small-number literal, the conservative cap applies.
	require.Equal(t, maxPubKeysPerMultisig, GetSigOpCount([]byte{OP_CHECKMULTISIG}))
}

func TestGetSigOpCountStopsOnTruncatedPushdata(t *testing.T) {
	require.Equal(t, 0, GetSigOpCount([]byte{0x4c, 0x05, 0x01}))
}

func p2shScript(hash [20]byte) []byte {
	out := make([]byte, 0, 23)
	out = append(out, opHash160, 0x14)
	out = append(out, hash[:]...)
	out = append(out, opEqual)
	return out
}

func pushData(data []byte) []byte {
	return append([]byte{byte(len(data))}, data...)
}

func TestGetP2SHSigOpCountResolvesRedeemScript(t *testing.T) {
	redeem := []byte{op1 + 1, OP_CHECKMULTISIG} // 2-of-N multisig, 2 sig-ops
	sigScript := append(pushData([]byte{0x30, 0x01}), pushData(redeem)...)

	var hash [20]byte
	require.Equal(t, 2, GetP2SHSigOpCount(p2shScript(hash), sigScript))
}

func TestGetP2SHSigOpCountIgnoresNonP2SHOutput(t *testing.T) {
	sigScript := pushData([]byte{OP_CHECKSIG})
	require.Equal(t, 0, GetP2SHSigOpCount([]byte{OP_CHECKSIG}, sigScript))
}

func TestGetP2SHSigOpCountIgnoresMalformedSigScript(t *testing.T) {
	var hash [20]byte
	require.Equal(t, 0, GetP2SHSigOpCount(p2shScript(hash), []byte{0x4c, 0x05, 0x01}))
}
