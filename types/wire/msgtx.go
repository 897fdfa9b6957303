// Copyright (c) 2013-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package wire implements the minimal block/transaction wire types the
// template builder and proof-of-work search engine need: enough to compute
// sizes, hashes and a merkle root, without reproducing the out-of-scope
// script interpreter or the full peer wire protocol.
package wire

import (
	"bytes"
	"encoding/binary"
	"io"

	"github.com/dbkeys/bitmark/types/chainhash"
)

// TxVersion is the default transaction version.
const TxVersion = 1

// MaxPrevOutIndex is the index used in the coinbase input's previous
// outpoint to signal "no real input".
const MaxPrevOutIndex uint32 = 0xffffffff

// MaxTxInSequenceNum is the default, final sequence number for a transaction
// input.
const MaxTxInSequenceNum uint32 = 0xffffffff

// OutPoint defines a bitcoin data type that is used to track previous
// transaction outputs.
type OutPoint struct {
	Hash  chainhash.Hash
	Index uint32
}

// NewOutPoint returns a new bitcoin transaction outpoint point with the
// provided hash and index.
func NewOutPoint(hash *chainhash.Hash, index uint32) *OutPoint {
	return &OutPoint{Hash: *hash, Index: index}
}

// TxIn defines a bitcoin transaction input.
type TxIn struct {
	PreviousOutPoint OutPoint
	SignatureScript  []byte
	Witness          [][]byte
	Sequence         uint32
}

// SerializeSize returns the number of bytes it would take to serialize the
// transaction input.
func (t *TxIn) SerializeSize() int {
	return 32 + 4 + VarIntSerializeSize(uint64(len(t.SignatureScript))) +
		len(t.SignatureScript) + 4
}

// TxOut defines a bitcoin transaction output.
type TxOut struct {
	Value    int64
	PkScript []byte
}

// SerializeSize returns the number of bytes it would take to serialize the
// transaction output.
func (t *TxOut) SerializeSize() int {
	return 8 + VarIntSerializeSize(uint64(len(t.PkScript))) + len(t.PkScript)
}

// MsgTx implements the bitcoin transaction message.
type MsgTx struct {
	Version  int32
	TxIn     []*TxIn
	TxOut    []*TxOut
	LockTime uint32
}

// NewMsgTx returns a new bitcoin transaction message that conforms to the
// given protocol version.
func NewMsgTx(version int32) *MsgTx {
	return &MsgTx{Version: version}
}

// AddTxIn adds a transaction input to the message.
func (m *MsgTx) AddTxIn(ti *TxIn) {
	m.TxIn = append(m.TxIn, ti)
}

// AddTxOut adds a transaction output to the message.
func (m *MsgTx) AddTxOut(to *TxOut) {
	m.TxOut = append(m.TxOut, to)
}

// IsCoinBase determines whether the transaction is a coinbase transaction: a
// single input referencing a null previous outpoint.
func (m *MsgTx) IsCoinBase() bool {
	if len(m.TxIn) != 1 {
		return false
	}
	prevOut := &m.TxIn[0].PreviousOutPoint
	return prevOut.Index == MaxPrevOutIndex && prevOut.Hash == chainhash.Hash{}
}

// HasWitness reports whether any input of the transaction carries witness
// data.
func (m *MsgTx) HasWitness() bool {
	for _, in := range m.TxIn {
		if len(in.Witness) > 0 {
			return true
		}
	}
	return false
}

// Serialize encodes the transaction to w in the canonical wire format.
func (m *MsgTx) Serialize(w io.Writer) error {
	var b4 [4]byte
	binary.LittleEndian.PutUint32(b4[:], uint32(m.Version))
	if _, err := w.Write(b4[:]); err != nil {
		return err
	}

	if err := WriteVarInt(w, uint64(len(m.TxIn))); err != nil {
		return err
	}
	for _, ti := range m.TxIn {
		if _, err := w.Write(ti.PreviousOutPoint.Hash[:]); err != nil {
			return err
		}
		binary.LittleEndian.PutUint32(b4[:], ti.PreviousOutPoint.Index)
		if _, err := w.Write(b4[:]); err != nil {
			return err
		}
		if err := WriteVarBytes(w, ti.SignatureScript); err != nil {
			return err
		}
		binary.LittleEndian.PutUint32(b4[:], ti.Sequence)
		if _, err := w.Write(b4[:]); err != nil {
			return err
		}
	}

	if err := WriteVarInt(w, uint64(len(m.TxOut))); err != nil {
		return err
	}
	for _, to := range m.TxOut {
		var b8 [8]byte
		binary.LittleEndian.PutUint64(b8[:], uint64(to.Value))
		if _, err := w.Write(b8[:]); err != nil {
			return err
		}
		if err := WriteVarBytes(w, to.PkScript); err != nil {
			return err
		}
	}

	binary.LittleEndian.PutUint32(b4[:], m.LockTime)
	_, err := w.Write(b4[:])
	return err
}

// SerializeSize returns the number of bytes it would take to serialize the
// transaction.
func (m *MsgTx) SerializeSize() int {
	n := 4 + VarIntSerializeSize(uint64(len(m.TxIn))) + VarIntSerializeSize(uint64(len(m.TxOut))) + 4
	for _, ti := range m.TxIn {
		n += ti.SerializeSize()
	}
	for _, to := range m.TxOut {
		n += to.SerializeSize()
	}
	return n
}

// TxHash computes the identity hash of the transaction: the double-SHA256 of
// its canonical serialization.
func (m *MsgTx) TxHash() chainhash.Hash {
	var buf bytes.Buffer
	buf.Grow(m.SerializeSize())
	_ = m.Serialize(&buf)
	return chainhash.DoubleHashH(buf.Bytes())
}

// Copy returns a deep copy of the transaction.
func (m *MsgTx) Copy() *MsgTx {
	out := &MsgTx{Version: m.Version, LockTime: m.LockTime}
	for _, ti := range m.TxIn {
		nti := &TxIn{
			PreviousOutPoint: ti.PreviousOutPoint,
			SignatureScript:  append([]byte(nil), ti.SignatureScript...),
			Sequence:         ti.Sequence,
		}
		for _, w := range ti.Witness {
			nti.Witness = append(nti.Witness, append([]byte(nil), w...))
		}
		out.TxIn = append(out.TxIn, nti)
	}
	for _, to := range m.TxOut {
		out.TxOut = append(out.TxOut, &TxOut{
			Value:    to.Value,
			PkScript: append([]byte(nil), to.PkScript...),
		})
	}
	return out
}
