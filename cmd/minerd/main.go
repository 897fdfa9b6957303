// Copyright (c) 2014 Project Bitmark
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Command minerd wires a template generator and a proof-of-work search
// supervisor together around whatever chain, mempool, wallet and peer-set
// implementation is supplied, and runs them until interrupted.
//
// bitmark-go ships no real implementation of those four collaborators —
// they belong to the embedding node — so minerd always runs against a
// minimal in-process chain good for nothing but exercising the search
// loop end to end: an always-empty mempool, a fixed easy target, and a
// wallet that always hands out the same anyone-can-spend script. Without
// --regtest it logs a warning and runs against that chain anyway.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dbkeys/bitmark/blockchain"
	"github.com/dbkeys/bitmark/config"
	"github.com/dbkeys/bitmark/log"
	"github.com/dbkeys/bitmark/mempool"
	"github.com/dbkeys/bitmark/mining"
	"github.com/dbkeys/bitmark/types/chainhash"
	"github.com/dbkeys/bitmark/types/wire"
)

func main() {
	cfg, _, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	logCfg := log.DefaultConfig()
	logCfg.Dir = cfg.LogDir
	logCfg.FileLoggingEnabled = true
	root := log.New("minerd", cfg.DebugLevel, logCfg)

	if !cfg.Regtest {
		root.Warn().Msg("running without --regtest against the bundled demo chain; " +
			"a real deployment supplies its own chain, mempool, wallet and peer set")
	}

	chain := newDemoChain()
	generator := &mining.BlkTmplGenerator{
		Policy:    cfg.Policy,
		Chain:     chain,
		TxSource:  newDemoTxSource(),
		Views:     newDemoViewProvider(),
		Validator: chain,
		Algo:      cfg.Algo,
		Logger:    root.With().Str("subsystem", "template").Logger(),
	}

	supervisor := &mining.Supervisor{
		Generator:      generator,
		Wallet:         newDemoWallet(),
		Peers:          demoPeers{},
		Regtest:        cfg.Regtest,
		EquihashParams: cfg.EquihashParams,
		Logger:         root.With().Str("subsystem", "supervisor").Logger(),
	}

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt, syscall.SIGTERM)

	root.Info().Int("workers", cfg.NumWorkers).Str("algo", cfg.Algo.String()).Msg("starting search workers")
	supervisor.Generate(true, cfg.NumWorkers)

	<-sigs
	root.Info().Msg("shutting down")
	supervisor.Stop()
}

// demoChain is the minimal single-writer in-memory Chain/Validator this
// binary falls back to when no real node wires its own. It accepts every
// block it's handed — there is no consensus checking here, only enough
// bookkeeping to let the supervisor keep extending a tip.
type demoChain struct {
	mu     sync.Mutex
	height int32
	tip    chainhash.Hash
}

// demoEasyBits is bitcoin regtest's proof-of-work limit, chosen so the
// demo chain's blocks solve in a handful of attempts.
const demoEasyBits = 0x207fffff

func newDemoChain() *demoChain {
	return &demoChain{tip: chainhash.HashH([]byte("minerd-demo-genesis"))}
}

func (c *demoChain) BestHeight() int32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.height
}

func (c *demoChain) BestHash() *chainhash.Hash {
	c.mu.Lock()
	defer c.mu.Unlock()
	h := c.tip
	return &h
}

func (c *demoChain) CalcNextRequiredDifficulty(int64, uint8) (uint32, error) {
	return demoEasyBits, nil
}

func (c *demoChain) UpdateBlockTime(header *wire.BlockHeader) error {
	return nil
}

func (c *demoChain) GetBlockValue(height int32, fees int64) int64 {
	return 5000000000 + fees
}

func (c *demoChain) IsSuperMajority(int32, int, int) (bool, error) {
	return false, nil
}

func (c *demoChain) PriorAlgoHeader(chainhash.Hash, uint8) (*wire.BlockHeader, bool, error) {
	return nil, false, nil
}

func (c *demoChain) CheckInputs(*wire.MsgTx, mining.UTXOView, mining.ScriptVerifyFlags) error {
	return nil
}

func (c *demoChain) UpdateCoins(*wire.MsgTx, mining.UTXOView, int32, chainhash.Hash) error {
	return nil
}

func (c *demoChain) ConnectBlock(*wire.MsgBlock, mining.UTXOView, bool) error {
	return nil
}

func (c *demoChain) ProcessBlock(block *wire.MsgBlock) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.height++
	c.tip = block.Header.BlockHash()
	return nil
}

// demoView is the always-empty UTXO snapshot handed out for the demo
// chain's permanently empty mempool.
type demoView struct{}

func (demoView) LookupEntry(wire.OutPoint) blockchain.UTXOEntry { return nil }

type demoViewProvider struct{}

func newDemoViewProvider() *demoViewProvider { return &demoViewProvider{} }

func (p *demoViewProvider) NewUTXOView() (mining.UTXOView, error) { return demoView{}, nil }

type demoTxSource struct{}

func newDemoTxSource() *demoTxSource { return &demoTxSource{} }

func (demoTxSource) MiningDescs() []*mempool.TxDesc       { return nil }
func (demoTxSource) HaveTransaction(*chainhash.Hash) bool { return false }
func (demoTxSource) UpdatedCounter() uint64               { return 0 }

type demoWallet struct{}

func newDemoWallet() *demoWallet { return &demoWallet{} }

func (demoWallet) ReserveKey() ([]byte, error) { return []byte{0x51}, nil } // OP_TRUE
func (demoWallet) KeepKey() error              { return nil }
func (demoWallet) ReturnKey() error            { return nil }
func (demoWallet) ClearRequestCount(chainhash.Hash) {}

type demoPeers struct{}

func (demoPeers) IsEmpty() bool { return true }
