// Copyright (c) 2014 Project Bitmark
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package pow

import (
	"encoding/binary"
	"math/big"

	"github.com/dbkeys/bitmark/types/chainhash"
	"github.com/dbkeys/bitmark/types/wire"
)

// MaxClassicalNonce is the nonce value at which the classical search driver
// gives up on the current extra-nonce/time combination and reports domain
// exhaustion, mirroring the source's nNonce >= 0xffff0000 check in
// BitmarkMiner.
const MaxClassicalNonce = 0xffff0000

// classicalCheckMask controls how often the inner loop calls back into the
// session between hash attempts: every 256 nonces, matching the source's
// (nNonce & 0xff) == 0 boundary.
const classicalCheckMask = 0xff

// SearchClassical repeatedly increments the header's nonce, recomputing its
// proof-of-work hash on every attempt, and reports success once a hash at
// or below target is found.
//
// For the SHA256D algorithm the inner loop takes the source's midstate
// shortcut: FormatHashBuffers is run once up front, and each attempt only
// patches the nonce word and reruns the compression primitive over the
// header's final 64-byte block rather than rehashing from scratch. Scrypt
// has no equivalent midstate — it is memory-hard precisely so that no
// partial precomputation helps — so versions the legacy clause forces onto
// Scrypt fall back to hashing the full serialized header every attempt.
//
// session.IsCancelled is polled every classicalCheckMask+1 attempts, the
// same boundary the source checks thread-priority and shutdown requests at
// — and the same boundary at which session.RefreshTimeBits gets a chance
// to bring the header's timestamp (and, on test networks, its bits) up to
// date in place, mirroring the source's nBlockTime/nBlockBits aliases into
// pdata rather than tearing down the search to rebuild a fresh template.
func SearchClassical(header *wire.BlockHeader, target *big.Int, session SolverSession) (found bool, err error) {
	algo := AlgoFromVersion(header.Version)

	if algo == Scrypt {
		return searchClassicalScrypt(header, target, session)
	}
	return searchClassicalSHA256D(header, target, session)
}

func searchClassicalSHA256D(header *wire.BlockHeader, target *big.Int, session SolverSession) (bool, error) {
	buffers := FormatHashBuffers(header)

	for nonce := header.Nonce; nonce < MaxClassicalNonce; nonce++ {
		header.Nonce = nonce

		if nonce&classicalCheckMask == 0 {
			if session.IsCancelled() {
				return false, nil
			}
			if session.RefreshTimeBits(header) {
				binary.LittleEndian.PutUint32(buffers.Data[NTimeOffset:NTimeOffset+4], byteReverse32(uint32(header.Timestamp)))
				binary.LittleEndian.PutUint32(buffers.Data[NBitsOffset:NBitsOffset+4], byteReverse32(header.Bits))
				target = CompactToBig(header.Bits)
			}
		}

		binary.LittleEndian.PutUint32(buffers.Data[NNonceOffset:NNonceOffset+4], byteReverse32(nonce))

		hash := sha256dFromBuffers(&buffers)
		if HashToBig(&hash).Cmp(target) <= 0 {
			return session.OnSolution(header) == SubmitAccepted, nil
		}
	}
	return false, nil
}

func searchClassicalScrypt(header *wire.BlockHeader, target *big.Int, session SolverSession) (bool, error) {
	for nonce := header.Nonce; nonce < MaxClassicalNonce; nonce++ {
		header.Nonce = nonce

		if nonce&classicalCheckMask == 0 {
			if session.IsCancelled() {
				return false, nil
			}
			if session.RefreshTimeBits(header) {
				target = CompactToBig(header.Bits)
			}
		}

		hash := GetPoWHash(header, Scrypt)
		if HashToBig(&hash).Cmp(target) <= 0 {
			return session.OnSolution(header) == SubmitAccepted, nil
		}
	}
	return false, nil
}

// sha256dFromBuffers finishes the two-pass SHA-256 starting from the
// precomputed midstate, following the source's ScanHash_CryptoPP shape:
// compress the header's second 64-byte block onto the midstate, pack that
// result into the hash1 scratch buffer, then run the second SHA-256 pass
// over hash1 from the standard initialization vector.
func sha256dFromBuffers(buffers *HashBuffers) chainhash.Hash {
	var second [32]byte
	sha256Transform(&second, buffers.Data[64:128], bytesToState(buffers.Midstate))

	copy(buffers.Hash1[0:32], second[:])

	var final [32]byte
	sha256Transform(&final, buffers.Hash1[:64], sha256InitState)

	var out chainhash.Hash
	copy(out[:], final[:])
	return out
}

func bytesToState(b [32]byte) [8]uint32 {
	var state [8]uint32
	for i := range state {
		state[i] = binary.BigEndian.Uint32(b[i*4:])
	}
	return state
}

func byteReverse32(v uint32) uint32 {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	b[0], b[1], b[2], b[3] = b[3], b[2], b[1], b[0]
	return binary.LittleEndian.Uint32(b[:])
}
