// Copyright (c) 2014 Project Bitmark
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package pow

import (
	"encoding/binary"

	"github.com/dbkeys/bitmark/types/wire"
)

// sha256InitState is the standard SHA-256 initialization vector, ported
// verbatim from the source's pSHA256InitState.
var sha256InitState = [8]uint32{
	0x6a09e667, 0xbb67ae85, 0x3c6ef372, 0xa54ff53a,
	0x510e527f, 0x9b05688c, 0x1f83d9ab, 0x5be0cd19,
}

// HashBuffers holds the three fixed-size buffers the classical search
// driver hashes against on every nonce attempt: a precomputed midstate that
// lets the inner loop finish only the header's second 64-byte block, the
// padded byte-reversed header itself, and the pre-padded buffer for the
// second SHA-256 pass.
//
// No library in the surrounding stack exposes the raw 64-byte SHA-256
// compression function needed to compute a midstate — crypto/sha256 and
// sha256-simd alike only expose whole-message hashing — so the compression
// primitive is reproduced here directly from the source's SHA256Transform,
// byte-for-byte, rather than pulled from a dependency that doesn't offer it.
type HashBuffers struct {
	Midstate [32]byte
	Data     [128]byte
	Hash1    [64]byte
}

// formatHashBlocks pads buf (len bytes of real content, the remainder
// already zeroed) with the SHA-256 padding convention: append 0x80, then a
// big-endian bit-length in the trailing 4 bytes of the final 64-byte block.
func formatHashBlocks(buf []byte, length int) {
	blocks := 1 + (length+8)/64
	pend := blocks * 64
	buf[length] = 0x80
	bits := uint32(length * 8)
	buf[pend-1] = byte(bits)
	buf[pend-2] = byte(bits >> 8)
	buf[pend-3] = byte(bits >> 16)
	buf[pend-4] = byte(bits >> 24)
}

// byteReverseWords reverses the byte order of every 4-byte word in buf in
// place, matching the source's ByteReverse sweep over the whole scratch
// buffer before hashing.
func byteReverseWords(buf []byte) {
	for i := 0; i+4 <= len(buf); i += 4 {
		buf[i], buf[i+1], buf[i+2], buf[i+3] = buf[i+3], buf[i+2], buf[i+1], buf[i]
	}
}

// sha256Transform computes one 64-byte block of SHA-256 compression over
// input, seeded with init, and writes the resulting state into out.
func sha256Transform(out *[32]byte, input []byte, init [8]uint32) {
	var w [64]uint32
	for i := 0; i < 16; i++ {
		w[i] = binary.BigEndian.Uint32(input[i*4:])
	}
	for i := 16; i < 64; i++ {
		s0 := rotr32(w[i-15], 7) ^ rotr32(w[i-15], 18) ^ (w[i-15] >> 3)
		s1 := rotr32(w[i-2], 17) ^ rotr32(w[i-2], 19) ^ (w[i-2] >> 10)
		w[i] = w[i-16] + s0 + w[i-7] + s1
	}

	a, b, c, d, e, f, g, h := init[0], init[1], init[2], init[3], init[4], init[5], init[6], init[7]
	for i := 0; i < 64; i++ {
		s1 := rotr32(e, 6) ^ rotr32(e, 11) ^ rotr32(e, 25)
		ch := (e & f) ^ (^e & g)
		temp1 := h + s1 + ch + sha256RoundK[i] + w[i]
		s0 := rotr32(a, 2) ^ rotr32(a, 13) ^ rotr32(a, 22)
		maj := (a & b) ^ (a & c) ^ (b & c)
		temp2 := s0 + maj

		h, g, f, e = g, f, e, d+temp1
		d, c, b, a = c, b, a, temp1+temp2
	}

	state := [8]uint32{
		init[0] + a, init[1] + b, init[2] + c, init[3] + d,
		init[4] + e, init[5] + f, init[6] + g, init[7] + h,
	}
	for i, s := range state {
		binary.BigEndian.PutUint32(out[i*4:], s)
	}
}

func rotr32(x uint32, n uint) uint32 {
	return (x >> n) | (x << (32 - n))
}

var sha256RoundK = [64]uint32{
	0x428a2f98, 0x71374491, 0xb5c0fbcf, 0xe9b5dba5, 0x3956c25b, 0x59f111f1, 0x923f82a4, 0xab1c5ed5,
	0xd807aa98, 0x12835b01, 0x243185be, 0x550c7dc3, 0x72be5d74, 0x80deb1fe, 0x9bdc06a7, 0xc19bf174,
	0xe49b69c1, 0xefbe4786, 0x0fc19dc6, 0x240ca1cc, 0x2de92c6f, 0x4a7484aa, 0x5cb0a9dc, 0x76f988da,
	0x983e5152, 0xa831c66d, 0xb00327c8, 0xbf597fc7, 0xc6e00bf3, 0xd5a79147, 0x06ca6351, 0x14292967,
	0x27b70a85, 0x2e1b2138, 0x4d2c6dfc, 0x53380d13, 0x650a7354, 0x766a0abb, 0x81c2c92e, 0x92722c85,
	0xa2bfe8a1, 0xa81a664b, 0xc24b8b70, 0xc76c51a3, 0xd192e819, 0xd6990624, 0xf40e3585, 0x106aa070,
	0x19a4c116, 0x1e376c08, 0x2748774c, 0x34b0bcb5, 0x391c0cb3, 0x4ed8aa4a, 0x5b9cca4f, 0x682e6ff3,
	0x748f82ee, 0x78a5636f, 0x84c87814, 0x8cc70208, 0x90befffa, 0xa4506ceb, 0xbef9a3f7, 0xc67178f2,
}

// FormatHashBuffers lays out the midstate/data/hash1 buffers for the
// classical search driver from the given block header, following the
// source's FormatHashBuffers byte-for-byte: the scratch buffer is built in
// host order then byte-reversed as a whole before the midstate precompute
// and buffer copies.
func FormatHashBuffers(h *wire.BlockHeader) HashBuffers {
	var scratch [80 + 64 + 64]byte // block (padded to 128) + hash1 (padded to 64) + padding slack

	// unnamed2 block: nVersion, hashPrevBlock, hashMerkleRoot, nTime, nBits, nNonce (80 bytes).
	binary.LittleEndian.PutUint32(scratch[0:4], uint32(h.Version))
	copy(scratch[4:36], h.PrevBlock[:])
	copy(scratch[36:68], h.MerkleRoot[:])
	binary.LittleEndian.PutUint32(scratch[68:72], uint32(h.Timestamp))
	binary.LittleEndian.PutUint32(scratch[72:76], h.Bits)
	binary.LittleEndian.PutUint32(scratch[76:80], h.Nonce)

	block := scratch[0:128]
	formatHashBlocks(block, 80)

	hash1 := scratch[128 : 128+64]
	formatHashBlocks(hash1, 32)

	byteReverseWords(scratch[:])

	var buffers HashBuffers
	sha256Transform(&buffers.Midstate, block[:64], sha256InitState)
	copy(buffers.Data[:], block)
	copy(buffers.Hash1[:], hash1)
	return buffers
}

// NTimeOffset, NBitsOffset and NNonceOffset are the byte offsets into
// HashBuffers.Data at which the time, bits and nonce words alias, letting
// the classical search driver rewrite them in place without reformatting the buffer, per
// spec.md §4.3.
const (
	NTimeOffset  = 64 + 4
	NBitsOffset  = 64 + 8
	NNonceOffset = 64 + 12
)
