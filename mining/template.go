// Copyright (c) 2014 Project Bitmark
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package mining

import (
	"container/heap"

	"github.com/dbkeys/bitmark/blockchain"
	"github.com/dbkeys/bitmark/types/chainhash"
	"github.com/dbkeys/bitmark/types/pow"
	"github.com/dbkeys/bitmark/types/txscript"
	"github.com/dbkeys/bitmark/types/wire"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// CurrentBlockVersion is the base header version this generator writes,
// before the algorithm tag and SSF bit are packed into it.
const CurrentBlockVersion int32 = 4

// ssfSuperMajorityNeed and ssfSuperMajorityTotal are the threshold and
// window IsSuperMajority checks before the SSF lookback runs at all,
// matching spec.md §4.2 step 7's "version=4, 75/100".
const (
	ssfSuperMajorityNeed  = 75
	ssfSuperMajorityTotal = 100
)

type buildMode int

const (
	modePriority buildMode = iota
	modeFee
)

// BlockTemplate is a complete candidate block plus the builder's
// bookkeeping about it: per-transaction fees (index 0, the coinbase,
// holds the negated aggregate of the rest) and per-transaction sig-op
// counts (legacy plus any pay-to-script-hash redeem-script cost), both
// index-aligned with Block.Transactions.
type BlockTemplate struct {
	Block       *wire.MsgBlock
	Fees        []int64
	SigOpCounts []int64
	Height      int32
}

// BlkTmplGenerator assembles block templates from a mempool snapshot
// against a fixed policy, chain view, and validator. One generator is
// shared by every worker; NewBlockTemplate is safe to call concurrently
// as long as the supplied collaborators are.
type BlkTmplGenerator struct {
	Policy    Policy
	Chain     Chain
	TxSource  TxSource
	Views     ViewProvider
	Validator Validator
	Algo      pow.Algorithm

	// ForkHeight and SSFLookback parameterize the SSF decision of
	// spec.md §4.2 step 7: nForkHeight and nSSF.
	ForkHeight  int32
	SSFLookback int32

	Logger zerolog.Logger
}

// NewBlockTemplate runs the full procedure of spec.md §4.2: snapshot chain
// and mempool, build the ancestor-aware priority queue (C1), walk it under
// the active ordering with a possible mode switch, fill in header fields
// including the SSF decision, and — unless Policy.SkipDryRun is set —
// dry-run ConnectBlock against the assembled result.
func (g *BlkTmplGenerator) NewBlockTemplate(payToAddress []byte) (*BlockTemplate, error) {
	tipHash := g.Chain.BestHash()
	tipHeight := g.Chain.BestHeight()
	nextBlockHeight := tipHeight + 1

	view, err := g.Views.NewUTXOView()
	if err != nil {
		return nil, errors.Wrap(err, "open utxo view")
	}

	msgBlock := &wire.MsgBlock{}

	coinbaseScript, err := standardCoinbaseScript(nextBlockHeight, 0)
	if err != nil {
		return nil, errors.Wrap(err, "build placeholder coinbase scriptSig")
	}
	coinbaseTx := createCoinbaseTx(coinbaseScript, payToAddress, nextBlockHeight, 0)
	_ = msgBlock.AddTransaction(coinbaseTx)

	pq, deps, err := g.buildPriorityQueue(view, nextBlockHeight)
	if err != nil {
		return nil, err
	}

	mode := modePriority
	if g.Policy.BlockPrioritySize == 0 {
		mode = modeFee
		pq.SetLessFunc(txPQByFee)
	}

	blockSize := int64(msgBlock.SerializeSize())
	blockSigOps := int64(countTxSigOps(coinbaseTx))
	fees := []int64{0}
	sigOpCounts := []int64{blockSigOps}
	var totalFees int64

	for pq.Len() > 0 {
		top := heap.Pop(pq).(*txPrioItem)
		tx := top.tx
		size := int64(tx.SerializeSize())

		if blockSize+size >= g.Policy.BlockMaxSize {
			g.logSkip(top, skipOversize)
			continue
		}

		txSigOps := int64(countTxSigOps(tx))
		if blockSigOps+txSigOps >= MaxBlockSigOps {
			g.logSkip(top, skipSigOps)
			continue
		}

		if mode == modeFee && top.feePerKB < MinRelayTxFee && blockSize >= g.Policy.BlockMinSize {
			g.logSkip(top, skipBelowRelayFee)
			continue
		}

		if !inputsStillAvailable(tx, view) {
			g.logSkip(top, skipInputsUnavailable)
			continue
		}

		txSigOps += int64(countP2SHSigOps(tx, view))
		if blockSigOps+txSigOps >= MaxBlockSigOps {
			g.logSkip(top, skipP2SHSigOps)
			continue
		}

		if err := g.Validator.CheckInputs(tx, view, ScriptVerifyP2SH); err != nil {
			g.logSkip(top, skipCheckInputs)
			continue
		}

		txHash := tx.TxHash()
		if err := g.Validator.UpdateCoins(tx, view, nextBlockHeight, txHash); err != nil {
			g.logSkip(top, skipInputsUnavailable)
			continue
		}

		_ = msgBlock.AddTransaction(tx)
		fees = append(fees, top.fee)
		sigOpCounts = append(sigOpCounts, txSigOps)
		blockSize += size
		blockSigOps += txSigOps
		totalFees += top.fee

		if g.Policy.PrintPriority {
			g.Logger.Debug().Msgf("priority %.1f feeperkb %.1f txid %s", top.priority, float64(top.feePerKB), txHash.String())
		}

		for _, waiting := range deps.resolve(txHash) {
			delete(waiting.dependsOn, txHash)
			if len(waiting.dependsOn) == 0 {
				heap.Push(pq, waiting.item)
			}
		}

		if mode == modePriority {
			if blockSize >= g.Policy.BlockPrioritySize || top.priority < blockchain.MinHighPriority {
				mode = modeFee
				pq.SetLessFunc(txPQByFee)
			}
		}
	}
	fees[0] = -totalFees

	ssf, err := g.decideSSF(tipHeight, *tipHash)
	if err != nil {
		return nil, errors.Wrap(err, "decide SSF flag")
	}

	msgBlock.Header = wire.BlockHeader{
		Version:    pow.SetSSF(pow.SetAlgo(CurrentBlockVersion, g.Algo), ssf),
		PrevBlock:  *tipHash,
		MerkleRoot: wire.CalcMerkleRoot(msgBlock.Transactions, false),
	}

	if err := g.Chain.UpdateBlockTime(&msgBlock.Header); err != nil {
		return nil, errors.Wrap(err, "update block time")
	}
	bits, err := g.Chain.CalcNextRequiredDifficulty(msgBlock.Header.Timestamp, uint8(g.Algo))
	if err != nil {
		return nil, errors.Wrap(err, "calc next required difficulty")
	}
	msgBlock.Header.Bits = bits

	subsidy := g.Chain.GetBlockValue(nextBlockHeight, totalFees)
	msgBlock.Transactions[0].TxOut[0].Value = subsidy

	if !g.Policy.SkipDryRun {
		if err := g.Validator.ConnectBlock(msgBlock, view, true); err != nil {
			return nil, errors.Wrap(ErrFatalTemplate, err.Error())
		}
	}

	return &BlockTemplate{
		Block:       msgBlock,
		Fees:        fees,
		SigOpCounts: sigOpCounts,
		Height:      nextBlockHeight,
	}, nil
}

// buildPriorityQueue runs the construction pass of spec.md §4.1: walk every
// candidate once, resolving each input against the UTXO view or, failing
// that, the mempool itself, then either push the transaction straight onto
// the live heap (no unmet ancestors) or file it as an orphan waiting on
// them.
func (g *BlkTmplGenerator) buildPriorityQueue(view UTXOView, nextBlockHeight int32) (*txPriorityQueue, *dependers, error) {
	descs := g.TxSource.MiningDescs()

	sourceTxns := make(map[chainhash.Hash]*wire.MsgTx, len(descs))
	for _, desc := range descs {
		sourceTxns[desc.Tx.TxHash()] = desc.Tx
	}

	pq := newTxPriorityQueue(len(descs))
	deps := newDependers()

	for _, desc := range descs {
		tx := desc.Tx
		if tx.IsCoinBase() {
			continue
		}

		unmet := make(map[chainhash.Hash]struct{})
		var inputValueAge float64
		missingInput := false

		for _, txIn := range tx.TxIn {
			if entry := view.LookupEntry(txIn.PreviousOutPoint); entry != nil {
				confirmations := nextBlockHeight - entry.BlockHeight()
				if confirmations < 0 {
					confirmations = 0
				}
				inputValueAge += float64(entry.Amount()) * float64(confirmations)
				continue
			}

			parentHash := txIn.PreviousOutPoint.Hash
			if parentTx, ok := sourceTxns[parentHash]; ok {
				unmet[parentHash] = struct{}{}
				if idx := txIn.PreviousOutPoint.Index; int(idx) < len(parentTx.TxOut) {
					inputValueAge += float64(parentTx.TxOut[idx].Value)
				}
				continue
			}

			g.Logger.Debug().Str("anomaly", anomalyMissingInput).Stringer("tx", txHashPtr(tx)).Send()
			missingInput = true
			break
		}
		if missingInput {
			continue
		}

		size := int64(tx.SerializeSize())
		priority := blockchain.CalcPriority(tx, size, inputValueAge)
		item := &txPrioItem{
			tx:        tx,
			fee:       desc.Fee,
			feePerKB:  desc.FeePerKB,
			priority:  priority,
			dependsOn: unmet,
		}

		if len(unmet) == 0 {
			heap.Push(pq, item)
			continue
		}

		o := &orphan{item: item, dependsOn: unmet}
		for parent := range unmet {
			deps.add(parent, o)
		}
	}

	return pq, deps, nil
}

// decideSSF implements spec.md §4.2 step 7 exactly: only on fork-active
// tips, walk back at most SSFLookback same-algorithm ancestors; set the
// flag if the oldest one in that window carries the marker, if one carries
// it earlier the flag stays clear, and if no same-algorithm ancestor
// exists at all the flag is set.
func (g *BlkTmplGenerator) decideSSF(tipHeight int32, tipHash chainhash.Hash) (bool, error) {
	if tipHeight < g.ForkHeight-1 {
		return false, nil
	}

	superMajority, err := g.Chain.IsSuperMajority(CurrentBlockVersion, ssfSuperMajorityNeed, ssfSuperMajorityTotal)
	if err != nil {
		return false, err
	}
	if !superMajority {
		return false, nil
	}

	cursor := tipHash
	for step := int32(0); step < g.SSFLookback; step++ {
		header, ok, err := g.Chain.PriorAlgoHeader(cursor, uint8(g.Algo))
		if err != nil {
			return false, err
		}
		if !ok {
			return true, nil
		}
		if pow.HasSSF(header.Version) {
			return step == g.SSFLookback-1, nil
		}
		cursor = header.BlockHash()
	}
	return false, nil
}

// inputsStillAvailable re-checks every input of tx against view, which may
// have been mutated by transactions appended earlier in this same build
// pass.
func inputsStillAvailable(tx *wire.MsgTx, view UTXOView) bool {
	for _, txIn := range tx.TxIn {
		if view.LookupEntry(txIn.PreviousOutPoint) == nil {
			return false
		}
	}
	return true
}

// countTxSigOps sums the legacy sig-op count of every scriptSig and
// scriptPubKey belonging to tx.
func countTxSigOps(tx *wire.MsgTx) int {
	total := 0
	for _, txIn := range tx.TxIn {
		total += txscript.GetSigOpCount(txIn.SignatureScript)
	}
	for _, txOut := range tx.TxOut {
		total += txscript.GetSigOpCount(txOut.PkScript)
	}
	return total
}

// countP2SHSigOps sums the sig-op cost tx's inputs add by spending
// pay-to-script-hash outputs, resolving each input's previous output
// against view. An input whose previous output has already left the view
// contributes nothing here; inputsStillAvailable has already rejected that
// case by the time this runs.
func countP2SHSigOps(tx *wire.MsgTx, view UTXOView) int {
	total := 0
	for _, txIn := range tx.TxIn {
		entry := view.LookupEntry(txIn.PreviousOutPoint)
		if entry == nil {
			continue
		}
		total += txscript.GetP2SHSigOpCount(entry.PkScript(), txIn.SignatureScript)
	}
	return total
}

func (g *BlkTmplGenerator) logSkip(item *txPrioItem, reason skipReason) {
	g.Logger.Debug().
		Str("reason", string(reason)).
		Stringer("tx", txHashPtr(item.tx)).
		Msg("skipped candidate transaction")
}

func txHashPtr(tx *wire.MsgTx) *chainhash.Hash {
	h := tx.TxHash()
	return &h
}
