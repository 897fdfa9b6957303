// Copyright (c) 2014 Project Bitmark
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package pow

import (
	"bytes"
	"math/big"

	"github.com/dbkeys/bitmark/types/pow/equihash"
	"github.com/dbkeys/bitmark/types/wire"
	"github.com/pkg/errors"
)

// EquihashParams selects the (N, K) pair the search driver seeds its
// Blake2b state with; it is a thin rename of equihash.Params so callers of
// this package don't need to import the solver package directly just to
// invoke SearchEquihash.
type EquihashParams = equihash.Params

// SearchEquihash runs the Equihash(n,k) solver against header, embedding
// each raw solution it finds before checking it against target and handing
// any qualifying header to session.
//
// Unlike the classical driver, which mutates one header in place across
// billions of attempts, Equihash pays its search cost per outer iteration:
// every pass absorbs a new 256-bit nonce into a freshly cloned digest
// state and runs the full solver against it, so cancellation here is
// polled both between outer iterations and by the solver itself at its own
// checkpoints. session.RefreshTimeBits is polled at the same per-outer-
// iteration boundary; when it changes the header, the base digest state is
// reseeded from the updated serialization before the next nonce is
// absorbed, rather than tearing down the search and rebuilding a template.
func SearchEquihash(params EquihashParams, header *wire.BlockHeader, target *big.Int, session SolverSession) (bool, error) {
	base, err := equihash.NewState(params)
	if err != nil {
		return false, errors.Wrap(err, "seed equihash state")
	}

	var headerBuf bytes.Buffer
	if err := header.SerializeForEquihash(&headerBuf); err != nil {
		return false, errors.Wrap(err, "serialize header for equihash")
	}
	if err := equihash.AbsorbHeader(base, headerBuf.Bytes()); err != nil {
		return false, errors.Wrap(err, "absorb header")
	}

	for {
		if session.IsCancelled() {
			return false, nil
		}

		if session.RefreshTimeBits(header) {
			target = CompactToBig(header.Bits)

			headerBuf.Reset()
			if err := header.SerializeForEquihash(&headerBuf); err != nil {
				return false, errors.Wrap(err, "serialize header for equihash")
			}
			base, err = equihash.NewState(params)
			if err != nil {
				return false, errors.Wrap(err, "reseed equihash state")
			}
			if err := equihash.AbsorbHeader(base, headerBuf.Bytes()); err != nil {
				return false, errors.Wrap(err, "absorb header")
			}
		}

		current := equihash.CloneState(base)
		if err := equihash.AbsorbNonce(current, header.Nonce256); err != nil {
			return false, errors.Wrap(err, "absorb nonce")
		}

		solutions, err := equihash.Solve(params, current, session.IsCancelled)
		if err != nil {
			return false, errors.Wrap(err, "solve")
		}

		for _, indices := range solutions {
			header.Solution = equihash.GetMinimalFromIndices(indices, equihash.DIGITBITS)

			hash := GetPoWHash(header, Equihash)
			if HashToBig(&hash).Cmp(target) <= 0 {
				return session.OnSolution(header) == SubmitAccepted, nil
			}
		}

		if session.IsCancelled() {
			return false, nil
		}
		incrementNonce256(&header.Nonce256)
	}
}

// incrementNonce256 adds one to nonce, treated as a little-endian 256-bit
// integer, matching the source's nNonce++ on a Base blob.
func incrementNonce256(nonce *[32]byte) {
	for i := range nonce {
		nonce[i]++
		if nonce[i] != 0 {
			return
		}
	}
}
