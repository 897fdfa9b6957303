// Copyright (c) 2014 Project Bitmark
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package mining

import (
	"runtime"
	"sync"
	"time"

	"github.com/dbkeys/bitmark/types/chainhash"
	"github.com/dbkeys/bitmark/types/pow"
	"github.com/dbkeys/bitmark/types/wire"
	"github.com/rs/zerolog"
)

// mempoolDriftTimeout is how long a worker tolerates a stale mempool
// snapshot before abandoning the current template, per spec.md §4.5 step 7.
const mempoolDriftTimeout = 60 * time.Second

// timeRefreshInterval bounds how long a worker searches under a stale
// header timestamp before workerSession.RefreshTimeBits brings it forward
// in place, the Go analogue of the source's "update nTime every few
// seconds" comment ahead of its nBlockTime/nBlockBits pdata aliases. This
// does not interrupt the search or touch the template, coinbase, or
// extra-nonce — only the header fields the search drivers already know how
// to patch into their own midstate buffers.
const timeRefreshInterval = 5 * time.Second

// meterBatchHashes approximates how many hash attempts occur between two
// consecutive calls into a session's IsCancelled, matching the classical
// driver's check cadence (classicalCheckMask+1 attempts). Equihash calls
// IsCancelled far less often in practice; metering it at the same nominal
// batch size only means its contribution to the rate is a coarse estimate.
const meterBatchHashes = 256

// HashRateMeter accumulates hash-attempt counts into a sliding window and
// reports the most recently closed window's rate, the process-wide
// dHashesPerSec of spec.md §8 invariant 9.
type HashRateMeter struct {
	mu           sync.Mutex
	windowLength time.Duration
	windowStart  time.Time
	windowCount  int64
	rate         float64
	now          func() time.Time
}

// NewHashRateMeter returns a meter with the 4-second window spec.md §8
// invariant 9 measures against.
func NewHashRateMeter() *HashRateMeter {
	return &HashRateMeter{
		windowLength: 4 * time.Second,
		windowStart:  time.Now(),
		now:          time.Now,
	}
}

// AddHashes folds n more attempts into the current window, closing and
// reporting it once windowLength has elapsed.
func (m *HashRateMeter) AddHashes(n int64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.windowCount += n
	elapsed := m.now().Sub(m.windowStart)
	if elapsed >= m.windowLength {
		m.rate = float64(m.windowCount) / elapsed.Seconds()
		m.windowCount = 0
		m.windowStart = m.now()
	}
}

// Rate returns the hash rate measured over the most recently closed
// window; zero until the first window closes.
func (m *HashRateMeter) Rate() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.rate
}

// Supervisor launches and stops worker goroutines, meters their aggregate
// hash rate, and hands each one a fresh template whenever its search is
// cancelled — by the caller, by a tip change, by mempool drift, or by
// nonce domain exhaustion. A stale header timestamp does not cancel the
// search at all; it is corrected in place by workerSession.RefreshTimeBits.
type Supervisor struct {
	Generator *BlkTmplGenerator
	Wallet    Wallet
	Peers     Peers

	// Regtest selects the regression-test worker behavior: no peer
	// busy-wait, and each worker terminates after producing one block.
	Regtest bool

	// EquihashParams is consulted only when Generator.Algo is pow.Equihash.
	EquihashParams pow.EquihashParams

	Meter  *HashRateMeter
	Logger zerolog.Logger

	mu      sync.Mutex
	running bool
	quit    chan struct{}
	wg      sync.WaitGroup

	extraMu    sync.Mutex
	extraNonce extraNonceState
}

// Generate starts or restarts the worker pool: any previously running group
// is interrupted and joined before a new one is created, matching the
// source's Generate(fGenerate, threads) semantics. threads < 0 selects
// hardware concurrency, or 1 under Regtest; generate == false or threads ==
// 0 leaves no workers running.
func (sv *Supervisor) Generate(generate bool, threads int) {
	sv.mu.Lock()
	defer sv.mu.Unlock()

	if sv.running {
		close(sv.quit)
		sv.wg.Wait()
		sv.running = false
	}

	if !generate || threads == 0 {
		return
	}
	if threads < 0 {
		if sv.Regtest {
			threads = 1
		} else {
			threads = runtime.NumCPU()
		}
	}

	if sv.Meter == nil {
		sv.Meter = NewHashRateMeter()
	}

	sv.quit = make(chan struct{})
	sv.running = true
	for id := 0; id < threads; id++ {
		sv.wg.Add(1)
		go sv.runWorker(id, sv.quit)
	}
}

// Stop interrupts and joins any running worker group; it is a no-op if
// none is running.
func (sv *Supervisor) Stop() {
	sv.mu.Lock()
	defer sv.mu.Unlock()
	if sv.running {
		close(sv.quit)
		sv.wg.Wait()
		sv.running = false
	}
}

func (sv *Supervisor) nextExtraNonce(tip chainhash.Hash) uint64 {
	sv.extraMu.Lock()
	defer sv.extraMu.Unlock()
	return sv.extraNonce.next(tip)
}

// runWorker is one worker's per-template loop, spec.md §4.5's numbered
// procedure: busy-wait for peers, request a template, advance the
// extra-nonce, run the appropriate search driver under a session that
// performs the periodic checks, and loop.
func (sv *Supervisor) runWorker(id int, quit chan struct{}) {
	defer sv.wg.Done()

	producedOneBlock := false
	for {
		select {
		case <-quit:
			return
		default:
		}

		if !sv.Regtest {
			for sv.Peers.IsEmpty() {
				select {
				case <-quit:
					return
				case <-time.After(time.Second):
				}
			}
		} else if producedOneBlock {
			return
		}

		tipHash := *sv.Generator.Chain.BestHash()
		mempoolCounter := sv.Generator.TxSource.UpdatedCounter()

		scriptPubKey, err := sv.Wallet.ReserveKey()
		if err != nil {
			sv.Logger.Error().Err(err).Int("worker", id).Msg("reserve coinbase key")
			return
		}

		template, err := sv.Generator.NewBlockTemplate(scriptPubKey)
		if err != nil {
			_ = sv.Wallet.ReturnKey()
			sv.Logger.Error().Err(err).Int("worker", id).Msg("build block template")
			return
		}

		extra := sv.nextExtraNonce(tipHash)
		if err := UpdateExtraNonce(template.Block, template.Height, extra); err != nil {
			_ = sv.Wallet.ReturnKey()
			sv.Logger.Error().Err(err).Int("worker", id).Msg("advance extra nonce")
			return
		}

		target := pow.CompactToBig(template.Block.Header.Bits)
		session := &workerSession{
			supervisor:            sv,
			block:                 template.Block,
			quit:                  quit,
			started:               time.Now(),
			tipAtStart:            tipHash,
			mempoolCounterAtStart: mempoolCounter,
		}

		var found bool
		if sv.Generator.Algo == pow.Equihash {
			found, err = pow.SearchEquihash(sv.EquihashParams, &template.Block.Header, target, session)
		} else {
			found, err = pow.SearchClassical(&template.Block.Header, target, session)
		}
		if err != nil {
			sv.Logger.Error().Err(err).Int("worker", id).Msg("search driver")
		}

		if found {
			producedOneBlock = true
		} else {
			_ = sv.Wallet.ReturnKey()
		}
	}
}

// workerSession implements pow.SolverSession for one in-flight template: it
// polls the shared quit channel, the peer set, the chain tip, and the
// mempool's update counter, and submits any qualifying header through
// checkWork.
type workerSession struct {
	supervisor            *Supervisor
	block                 *wire.MsgBlock
	quit                  <-chan struct{}
	started               time.Time
	tipAtStart            chainhash.Hash
	mempoolCounterAtStart uint64

	lastTimeRefresh time.Time
}

func (s *workerSession) IsCancelled() bool {
	s.supervisor.Meter.AddHashes(meterBatchHashes)

	select {
	case <-s.quit:
		return true
	default:
	}

	if !s.supervisor.Regtest && s.supervisor.Peers.IsEmpty() {
		return true
	}
	if *s.supervisor.Generator.Chain.BestHash() != s.tipAtStart {
		return true
	}
	if s.supervisor.Generator.TxSource.UpdatedCounter() != s.mempoolCounterAtStart &&
		time.Since(s.started) > mempoolDriftTimeout {
		return true
	}
	return false
}

// RefreshTimeBits advances header.Timestamp via the same Chain method the
// template builder itself uses, at most once per timeRefreshInterval, and
// on Regtest — the one network in this tree where difficulty can move
// within a template's own lifetime — also recomputes Bits against the new
// timestamp. Both fields are mutated directly on header; the search
// drivers are responsible for propagating the change into whatever derived
// state (midstate buffers, digest state) they keep alongside it.
func (s *workerSession) RefreshTimeBits(header *wire.BlockHeader) bool {
	if time.Since(s.lastTimeRefresh) < timeRefreshInterval {
		return false
	}
	s.lastTimeRefresh = time.Now()

	prevTime, prevBits := header.Timestamp, header.Bits
	if err := s.supervisor.Generator.Chain.UpdateBlockTime(header); err != nil {
		return false
	}

	if s.supervisor.Regtest {
		if bits, err := s.supervisor.Generator.Chain.CalcNextRequiredDifficulty(header.Timestamp, uint8(s.supervisor.Generator.Algo)); err == nil {
			header.Bits = bits
		}
	}

	return header.Timestamp != prevTime || header.Bits != prevBits
}

func (s *workerSession) OnSolution(header *wire.BlockHeader) pow.SubmitOutcome {
	outcome, err := s.supervisor.checkWork(s.block)
	if err != nil {
		s.supervisor.Logger.Debug().Err(err).Msg("submit solved block")
	}
	return outcome
}

// checkWork is CheckWork from spec.md §4.5 and §7's Stale/Rejected error
// kinds: independently re-derive the submitted header's proof-of-work hash
// and reject it outright if it doesn't satisfy its own target — mirroring
// miner.cpp's CheckWork, which runs this check before looking at staleness
// at all — then reject a solution whose template no longer extends the
// current tip, and only then commit the reserved wallet key, clear its
// request counter, and hand the block to the validator for acceptance and
// relay.
func (sv *Supervisor) checkWork(block *wire.MsgBlock) (pow.SubmitOutcome, error) {
	submissionAlgo := pow.AlgoFromVersionForSubmission(block.Header.Version)
	hash := pow.GetPoWHash(&block.Header, submissionAlgo)
	target := pow.CompactToBig(block.Header.Bits)
	if pow.HashToBig(&hash).Cmp(target) > 0 {
		return pow.SubmitRejected, ErrInvalidProofOfWork
	}

	tip := sv.Generator.Chain.BestHash()
	if block.Header.PrevBlock != *tip {
		return pow.SubmitStale, ErrStaleWork
	}

	if err := sv.Wallet.KeepKey(); err != nil {
		return pow.SubmitRejected, err
	}

	blockHash := block.Header.BlockHash()
	sv.Wallet.ClearRequestCount(blockHash)

	if err := sv.Generator.Validator.ProcessBlock(block); err != nil {
		return pow.SubmitRejected, err
	}
	return pow.SubmitAccepted, nil
}
