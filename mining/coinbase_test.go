// Copyright (c) 2014 Project Bitmark
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package mining

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestStandardCoinbaseScriptAppendsCoinbaseFlags confirms the software
// identification tag rides along in every coinbase scriptSig, after the
// height/extra-nonce pushes, and that the script still clears the length
// cap with it included.
func TestStandardCoinbaseScriptAppendsCoinbaseFlags(t *testing.T) {
	script, err := standardCoinbaseScript(101, 7)
	require.NoError(t, err)
	require.LessOrEqual(t, len(script), MaxCoinbaseScriptSigLen)
	require.True(t, bytes.Contains(script, CoinbaseFlags))
}
