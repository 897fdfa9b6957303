// Copyright (c) 2013-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package pow

import (
	"testing"

	"github.com/dbkeys/bitmark/types/chainhash"
	"github.com/stretchr/testify/require"
)

func TestCompactToBigRoundTrip(t *testing.T) {
	cases := []uint32{0x1d00ffff, 0x1effffff, 0x207fffff, 0x03000000}
	for _, compact := range cases {
		n := CompactToBig(compact)
		got := BigToCompact(n)
		require.Equal(t, compact, got, "compact %08x should round-trip", compact)
	}
}

func TestCompactToBigNegative(t *testing.T) {
	n := CompactToBig(0x01800001)
	require.Equal(t, -1, n.Sign())
}

func TestHashToBigReversesBytes(t *testing.T) {
	var h chainhash.Hash
	h[0] = 0x01
	h[31] = 0xff

	n := HashToBig(&h)
	require.Equal(t, byte(0xff), n.Bytes()[0])
}
