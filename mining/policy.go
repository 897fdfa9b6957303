// Copyright (c) 2014 Project Bitmark
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package mining

// MaxBlockSize is the hard consensus ceiling on serialized block size.
const MaxBlockSize = 1000000

// MaxBlockSigOps is the hard consensus ceiling on legacy sig-op count per
// block.
const MaxBlockSigOps = MaxBlockSize / 50

// DefaultBlockMaxSize, DefaultBlockPrioritySize and DefaultBlockMinSize are
// the template builder's out-of-the-box policy knobs.
const (
	DefaultBlockMaxSize      = 750000
	DefaultBlockPrioritySize = 50000
	DefaultBlockMinSize      = 0
)

// CoinbaseFlags is appended to every coinbase scriptSig after the
// height/extra-nonce push, identifying the software that produced the
// block — purely informational, not consensus-enforced.
var CoinbaseFlags = []byte("/bitmark-go/")

// MinRelayTxFee is the fee-per-kB floor a transaction must clear to be
// included once the template has moved past BlockMinSize in fee-dominant
// mode.
const MinRelayTxFee = 1000

// Policy bundles the per-template configuration knobs spec.md §4.2 and §6
// name: size/priority/min-size budgets, the diagnostic and dry-run debug
// toggles.
type Policy struct {
	// BlockMaxSize is clamped to [1000, MaxBlockSize-1000] at assignment
	// time by NewPolicy; ignoring the clamp by constructing a Policy
	// literal directly is a caller bug, not a runtime-checked condition.
	BlockMaxSize int64

	// BlockPrioritySize is clamped to BlockMaxSize.
	BlockPrioritySize int64

	// BlockMinSize is clamped to BlockMaxSize.
	BlockMinSize int64

	// PrintPriority, when set, logs a per-transaction diagnostic line
	// during template assembly: "priority %.1f feeperkb %.1f txid %s".
	PrintPriority bool

	// SkipDryRun disables the dry ConnectBlock pass at the end of
	// NewBlockTemplate, per spec.md §9's suggestion that the check be
	// optional behind a debug flag when performance matters.
	SkipDryRun bool
}

// NewPolicy clamps the three size knobs into their documented ranges and
// returns a ready-to-use Policy.
func NewPolicy(blockMaxSize, blockPrioritySize, blockMinSize int64, printPriority, skipDryRun bool) Policy {
	if blockMaxSize < 1000 {
		blockMaxSize = 1000
	} else if blockMaxSize > MaxBlockSize-1000 {
		blockMaxSize = MaxBlockSize - 1000
	}

	if blockPrioritySize > blockMaxSize {
		blockPrioritySize = blockMaxSize
	}
	if blockMinSize > blockMaxSize {
		blockMinSize = blockMaxSize
	}

	return Policy{
		BlockMaxSize:      blockMaxSize,
		BlockPrioritySize: blockPrioritySize,
		BlockMinSize:      blockMinSize,
		PrintPriority:     printPriority,
		SkipDryRun:        skipDryRun,
	}
}
