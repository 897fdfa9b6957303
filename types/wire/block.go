// Copyright (c) 2013-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import (
	"bytes"
	"encoding/binary"
	"io"

	"github.com/dbkeys/bitmark/types/chainhash"
)

// MaxBlockHeaderPayload is the number of bytes in the classical (non
// Equihash) serialization of a block header: version, prev block hash,
// merkle root, timestamp, bits and the 32-bit nonce.
const MaxBlockHeaderPayload = 4 + chainhash.HashSize + chainhash.HashSize + 4 + 4 + 4

// BlockHeader defines information about a block and is used in both blocks
// and headers-only messages.
//
// For classical (SHA256D/Scrypt) algorithms Nonce is the 32-bit proof-of-work
// counter and Nonce256/Solution are unused. For Equihash, Nonce is unused and
// Nonce256/Solution carry the 256-bit nonce and the variable-length solution
// blob in its place.
type BlockHeader struct {
	Version    int32
	PrevBlock  chainhash.Hash
	MerkleRoot chainhash.Hash
	Timestamp  int64
	Bits       uint32
	Nonce      uint32
	Nonce256   [32]byte
	Solution   []byte
}

// SerializeClassical writes the 80-byte classical header layout used by the
// hash buffer preparer (C3) and the classical search driver (C4.1).
func (h *BlockHeader) SerializeClassical(w io.Writer) error {
	var buf [MaxBlockHeaderPayload]byte
	binary.LittleEndian.PutUint32(buf[0:4], uint32(h.Version))
	copy(buf[4:36], h.PrevBlock[:])
	copy(buf[36:68], h.MerkleRoot[:])
	binary.LittleEndian.PutUint32(buf[68:72], uint32(h.Timestamp))
	binary.LittleEndian.PutUint32(buf[72:76], h.Bits)
	binary.LittleEndian.PutUint32(buf[76:80], h.Nonce)
	_, err := w.Write(buf[:])
	return err
}

// SerializeForEquihash writes version..bits (excluding the 256-bit nonce and
// the variable-length solution), the portion the Equihash driver absorbs
// into its Blake2b state before cloning and absorbing the nonce.
func (h *BlockHeader) SerializeForEquihash(w io.Writer) error {
	var buf [4 + chainhash.HashSize*2 + 4 + 4]byte
	binary.LittleEndian.PutUint32(buf[0:4], uint32(h.Version))
	copy(buf[4:36], h.PrevBlock[:])
	copy(buf[36:68], h.MerkleRoot[:])
	binary.LittleEndian.PutUint32(buf[68:72], uint32(h.Timestamp))
	binary.LittleEndian.PutUint32(buf[72:76], h.Bits)
	_, err := w.Write(buf[:])
	return err
}

// BlockHash computes the block's identity hash: the double-SHA256 of its
// full serialized header, including the Equihash nonce/solution tail when
// present.
func (h *BlockHeader) BlockHash() chainhash.Hash {
	var buf bytes.Buffer
	_ = h.SerializeForEquihash(&buf)
	if len(h.Solution) > 0 || h.Nonce256 != [32]byte{} {
		buf.Write(h.Nonce256[:])
		_ = WriteVarBytes(&buf, h.Solution)
	} else {
		var nb [4]byte
		binary.LittleEndian.PutUint32(nb[:], h.Nonce)
		buf.Write(nb[:])
	}
	return chainhash.DoubleHashH(buf.Bytes())
}

// MsgBlock implements the bitcoin block message.
type MsgBlock struct {
	Header       BlockHeader
	Transactions []*MsgTx
}

// AddTransaction adds a transaction to the message.
func (m *MsgBlock) AddTransaction(tx *MsgTx) error {
	m.Transactions = append(m.Transactions, tx)
	return nil
}

// SerializeSize returns the number of bytes it would take to serialize the
// block, header plus varint tx count plus transactions, per spec.md §6's
// persisted/wire-state description.
func (m *MsgBlock) SerializeSize() int {
	n := MaxBlockHeaderPayload
	if len(m.Header.Solution) > 0 {
		n = len(m.Header.Nonce256) + VarIntSerializeSize(uint64(len(m.Header.Solution))) + len(m.Header.Solution) +
			4 + chainhash.HashSize*2 + 4 + 4
	}
	n += VarIntSerializeSize(uint64(len(m.Transactions)))
	for _, tx := range m.Transactions {
		n += tx.SerializeSize()
	}
	return n
}

// CalcMerkleRoot computes the merkle root of the given transaction list,
// optionally over the witness ids instead of the transaction ids.
func CalcMerkleRoot(txns []*MsgTx, witness bool) chainhash.Hash {
	if len(txns) == 0 {
		return chainhash.Hash{}
	}

	leaves := make([]chainhash.Hash, len(txns))
	for i, tx := range txns {
		if witness && i == 0 {
			// The coinbase's witness leaf is the zero hash; this package
			// builds no witness commitment.
			leaves[i] = chainhash.Hash{}
			continue
		}
		leaves[i] = tx.TxHash()
	}

	for len(leaves) > 1 {
		if len(leaves)%2 != 0 {
			leaves = append(leaves, leaves[len(leaves)-1])
		}
		next := make([]chainhash.Hash, len(leaves)/2)
		for i := 0; i < len(next); i++ {
			var concat [chainhash.HashSize * 2]byte
			copy(concat[:chainhash.HashSize], leaves[2*i][:])
			copy(concat[chainhash.HashSize:], leaves[2*i+1][:])
			next[i] = chainhash.DoubleHashH(concat[:])
		}
		leaves = next
	}
	return leaves[0]
}
