// Copyright (c) 2014 Project Bitmark
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package pow

import (
	"testing"

	"github.com/dbkeys/bitmark/types/wire"
	"github.com/stretchr/testify/require"
)

func TestFormatHashBuffersIsDeterministic(t *testing.T) {
	header := &wire.BlockHeader{
		Version:   4,
		Timestamp: 1600000000,
		Bits:      0x1d00ffff,
		Nonce:     42,
	}

	a := FormatHashBuffers(header)
	b := FormatHashBuffers(header)
	require.Equal(t, a, b)
}

func TestFormatHashBuffersChangesWithNonce(t *testing.T) {
	header := &wire.BlockHeader{Version: 4, Bits: 0x1d00ffff, Nonce: 1}
	a := FormatHashBuffers(header)

	header.Nonce = 2
	b := FormatHashBuffers(header)

	require.NotEqual(t, a.Data, b.Data)
}

func TestSha256dFromBuffersMatchesGetPoWHash(t *testing.T) {
	header := &wire.BlockHeader{Version: 4, Bits: 0x1d00ffff, Nonce: 99}

	buffers := FormatHashBuffers(header)
	viaBuffers := sha256dFromBuffers(&buffers)
	viaDirect := GetPoWHash(header, SHA256D)

	require.Equal(t, viaDirect, viaBuffers, "the midstate shortcut must agree with a direct double-SHA256 of the serialized header")
}
