// Copyright (c) 2014 Project Bitmark
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package mining

import (
	"testing"
	"time"

	"github.com/dbkeys/bitmark/types/chainhash"
	"github.com/dbkeys/bitmark/types/pow"
	"github.com/dbkeys/bitmark/types/wire"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

type fakeChain struct {
	height int32
	hash   chainhash.Hash
}

func (c *fakeChain) BestHeight() int32        { return c.height }
func (c *fakeChain) BestHash() *chainhash.Hash { return &c.hash }
func (c *fakeChain) CalcNextRequiredDifficulty(int64, uint8) (uint32, error) { return 0x1d00ffff, nil }
func (c *fakeChain) UpdateBlockTime(h *wire.BlockHeader) error                { return nil }
func (c *fakeChain) GetBlockValue(int32, int64) int64                        { return 0 }
func (c *fakeChain) IsSuperMajority(int32, int, int) (bool, error)            { return false, nil }
func (c *fakeChain) PriorAlgoHeader(chainhash.Hash, uint8) (*wire.BlockHeader, bool, error) {
	return nil, false, nil
}

type fakeValidator struct {
	processed []*wire.MsgBlock
	rejectErr error
}

func (v *fakeValidator) CheckInputs(*wire.MsgTx, UTXOView, ScriptVerifyFlags) error { return nil }
func (v *fakeValidator) UpdateCoins(*wire.MsgTx, UTXOView, int32, chainhash.Hash) error {
	return nil
}
func (v *fakeValidator) ConnectBlock(*wire.MsgBlock, UTXOView, bool) error { return nil }
func (v *fakeValidator) ProcessBlock(block *wire.MsgBlock) error {
	if v.rejectErr != nil {
		return v.rejectErr
	}
	v.processed = append(v.processed, block)
	return nil
}

type fakeWallet struct {
	kept    bool
	cleared []chainhash.Hash
}

func (w *fakeWallet) ReserveKey() ([]byte, error) { return []byte{0x51}, nil }
func (w *fakeWallet) KeepKey() error              { w.kept = true; return nil }
func (w *fakeWallet) ReturnKey() error            { return nil }
func (w *fakeWallet) ClearRequestCount(h chainhash.Hash) {
	w.cleared = append(w.cleared, h)
}

func newSupervisorForCheckWork(chainHash chainhash.Hash) (*Supervisor, *fakeValidator, *fakeWallet) {
	validator := &fakeValidator{}
	wallet := &fakeWallet{}
	sv := &Supervisor{
		Generator: &BlkTmplGenerator{
			Chain:     &fakeChain{hash: chainHash},
			Validator: validator,
			Logger:    zerolog.Nop(),
		},
		Wallet: wallet,
		Logger: zerolog.Nop(),
	}
	return sv, validator, wallet
}

// TestCheckWorkRejectsStaleSubmission exercises spec scenario S5: a
// solution whose template's prevHash no longer matches the tip is
// discarded as stale and never reaches the validator.
func TestCheckWorkRejectsStaleSubmission(t *testing.T) {
	tipAtSubmit := chainhash.HashH([]byte("tip-1"))
	sv, validator, wallet := newSupervisorForCheckWork(tipAtSubmit)

	block := &wire.MsgBlock{}
	block.Header.PrevBlock = chainhash.HashH([]byte("tip-0")) // stale parent
	block.Header.Bits = 0x227fffff                            // target larger than any 256-bit hash: PoW check must pass before staleness is even checked

	outcome, err := sv.checkWork(block)

	require.ErrorIs(t, err, ErrStaleWork)
	require.Equal(t, 0, len(validator.processed))
	require.False(t, wallet.kept)
	require.Equal(t, pow.SubmitStale, outcome)
}

func TestCheckWorkAcceptsFreshSubmission(t *testing.T) {
	tip := chainhash.HashH([]byte("tip"))
	sv, validator, wallet := newSupervisorForCheckWork(tip)

	block := &wire.MsgBlock{}
	block.Header.PrevBlock = tip
	block.Header.Bits = 0x227fffff

	outcome, err := sv.checkWork(block)

	require.NoError(t, err)
	require.Equal(t, 1, len(validator.processed))
	require.True(t, wallet.kept)
	require.Equal(t, 1, len(wallet.cleared))
	require.Equal(t, pow.SubmitAccepted, outcome)
}

func TestCheckWorkReportsValidatorRejection(t *testing.T) {
	tip := chainhash.HashH([]byte("tip"))
	sv, validator, wallet := newSupervisorForCheckWork(tip)
	validator.rejectErr = errors.New("validator rejected block")

	block := &wire.MsgBlock{}
	block.Header.PrevBlock = tip
	block.Header.Bits = 0x227fffff

	_, err := sv.checkWork(block)
	require.Error(t, err)
	require.True(t, wallet.kept)
}

// TestCheckWorkRejectsInvalidProofOfWork exercises the hash re-verification
// CheckWork runs before it even looks at staleness: a header whose target
// accepts nothing (Bits left at its zero value) is rejected outright, even
// though its PrevBlock correctly extends the tip.
func TestCheckWorkRejectsInvalidProofOfWork(t *testing.T) {
	tip := chainhash.HashH([]byte("tip"))
	sv, validator, wallet := newSupervisorForCheckWork(tip)

	block := &wire.MsgBlock{}
	block.Header.PrevBlock = tip

	outcome, err := sv.checkWork(block)

	require.ErrorIs(t, err, ErrInvalidProofOfWork)
	require.Equal(t, pow.SubmitRejected, outcome)
	require.Equal(t, 0, len(validator.processed))
	require.False(t, wallet.kept)
}

// TestHashRateMeterReportsWindowRate exercises spec.md §8 invariant 9:
// folding H hashes into exactly one 4-second window reports H/4 within the
// documented tolerance.
func TestHashRateMeterReportsWindowRate(t *testing.T) {
	start := time.Unix(0, 0)
	meter := &HashRateMeter{
		windowLength: 4 * time.Second,
		windowStart:  start,
	}

	clock := start
	meter.now = func() time.Time { return clock }

	meter.AddHashes(1000)
	require.Equal(t, float64(0), meter.Rate())

	clock = start.Add(4 * time.Second)
	meter.AddHashes(0)

	rate := meter.Rate()
	require.InDelta(t, 250.0, rate, 1.0)
}

func TestHashRateMeterStartsAtZero(t *testing.T) {
	meter := NewHashRateMeter()
	require.Equal(t, float64(0), meter.Rate())
}
