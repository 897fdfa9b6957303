// Copyright (c) 2014 Project Bitmark
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package equihash

import (
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/blake2b"
)

// toyParams keeps the search space small enough to be exercised directly in
// a unit test; production templates use much larger (n, k).
var toyParams = Params{N: 36, K: 3}

func seededState(t *testing.T, header string, nonce byte) blake2b.XOF {
	t.Helper()
	state, err := NewState(toyParams)
	require.NoError(t, err)
	require.NoError(t, AbsorbHeader(state, []byte(header)))
	var n [32]byte
	n[0] = nonce
	require.NoError(t, AbsorbNonce(state, n))
	return state
}

func TestSolveProducesValidSolutions(t *testing.T) {
	state := seededState(t, "toy-header-bytes", 7)

	solutions, err := Solve(toyParams, state, nil)
	require.NoError(t, err)
	require.NotEmpty(t, solutions, "toy parameters should yield at least one solution")

	for _, sol := range solutions {
		require.Len(t, sol, toyParams.SolutionWords())

		checkState := seededState(t, "toy-header-bytes", 7)
		valid, err := IsValidSolution(toyParams, checkState, sol)
		require.NoError(t, err)
		require.True(t, valid, "every solution the solver emits must independently validate")
	}
}

func TestIsValidSolutionRejectsTamperedIndices(t *testing.T) {
	state := seededState(t, "toy-header-bytes", 7)
	solutions, err := Solve(toyParams, state, nil)
	require.NoError(t, err)
	require.NotEmpty(t, solutions)

	tampered := append([]uint32{}, solutions[0]...)
	tampered[0]++

	checkState := seededState(t, "toy-header-bytes", 7)
	valid, err := IsValidSolution(toyParams, checkState, tampered)
	require.NoError(t, err)
	require.False(t, valid)
}

func TestSolveHonorsCancellation(t *testing.T) {
	state := seededState(t, "toy-header-bytes", 7)

	calls := 0
	cancelled := func() bool {
		calls++
		return true
	}

	solutions, err := Solve(toyParams, state, cancelled)
	require.NoError(t, err)
	require.Nil(t, solutions)
	require.Equal(t, 1, calls)
}

func TestMinimalEncodingRoundTrips(t *testing.T) {
	indices := []uint32{1, 2, 3, 4, 5, 6, 7, 8}
	minimal := GetMinimalFromIndices(indices, DIGITBITS)
	got := GetIndicesFromMinimal(minimal, DIGITBITS)
	require.Equal(t, indices, got)
}

func TestDifferentNoncesYieldDifferentSolutions(t *testing.T) {
	stateA := seededState(t, "toy-header-bytes", 1)
	solA, err := Solve(toyParams, stateA, nil)
	require.NoError(t, err)

	stateB := seededState(t, "toy-header-bytes", 2)
	solB, err := Solve(toyParams, stateB, nil)
	require.NoError(t, err)

	require.NotEmpty(t, solA)
	require.NotEmpty(t, solB)
	require.NotEqual(t, solA, solB)
}
