// Copyright (c) 2014 Project Bitmark
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package pow

import (
	"bytes"

	"github.com/dbkeys/bitmark/types/chainhash"
	"github.com/dbkeys/bitmark/types/wire"
	"golang.org/x/crypto/scrypt"
)

const (
	scryptN = 1024
	scryptR = 1
	scryptP = 1
)

// GetPoWHash computes the proof-of-work hash of the header under the given
// algorithm: double-SHA256 for SHA256D, Scrypt for the legacy-compatible
// Scrypt algorithm, and double-SHA256 over the full Equihash-tailed header
// (nonce256 + solution) for Equihash — the same identity hash Equihash-family
// chains compare against the target once a solution is embedded.
func GetPoWHash(h *wire.BlockHeader, algo Algorithm) chainhash.Hash {
	switch algo {
	case Equihash:
		return h.BlockHash()
	case Scrypt:
		var buf bytes.Buffer
		_ = h.SerializeClassical(&buf)
		digest, err := scrypt.Key(buf.Bytes(), buf.Bytes(), scryptN, scryptR, scryptP, chainhash.HashSize)
		if err != nil {
			// scrypt.Key only errors on invalid N/r/p parameters, which are
			// fixed constants above; this path is unreachable in practice.
			return chainhash.Hash{}
		}
		var out chainhash.Hash
		copy(out[:], digest)
		return out
	default:
		var buf bytes.Buffer
		_ = h.SerializeClassical(&buf)
		return chainhash.DoubleHashH(buf.Bytes())
	}
}
