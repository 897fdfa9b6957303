// Copyright (c) 2014 Project Bitmark
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/dbkeys/bitmark/types/pow"
	"github.com/stretchr/testify/require"
)

func withArgs(t *testing.T, args ...string) {
	t.Helper()
	old := os.Args
	os.Args = append([]string{"minerd"}, args...)
	t.Cleanup(func() { os.Args = old })
}

func TestLoadConfigDefaults(t *testing.T) {
	dir := t.TempDir()
	withArgs(t, "--datadir="+dir, "--logdir="+filepath.Join(dir, "logs"))

	cfg, remaining, err := LoadConfig()
	require.NoError(t, err)
	require.Empty(t, remaining)

	require.Equal(t, pow.SHA256D, cfg.Algo)
	require.Equal(t, int64(750000), cfg.Policy.BlockMaxSize)
	require.False(t, cfg.Regtest)
}

func TestLoadConfigFlagsOverrideDefaults(t *testing.T) {
	dir := t.TempDir()
	withArgs(t, "--datadir="+dir, "--logdir="+filepath.Join(dir, "logs"),
		"--miningalgo=equihash", "--equihashn=96", "--equihashk=5",
		"--blockmaxsize=500", "--regtest")

	cfg, _, err := LoadConfig()
	require.NoError(t, err)

	require.Equal(t, pow.Equihash, cfg.Algo)
	require.Equal(t, uint32(96), cfg.EquihashParams.N)
	require.Equal(t, uint32(5), cfg.EquihashParams.K)
	require.True(t, cfg.Regtest)
	// Below mining.NewPolicy's 1000-byte floor, clamped up.
	require.Equal(t, int64(1000), cfg.Policy.BlockMaxSize)
}

func TestLoadConfigRejectsUnknownAlgo(t *testing.T) {
	dir := t.TempDir()
	withArgs(t, "--datadir="+dir, "--logdir="+filepath.Join(dir, "logs"), "--miningalgo=sha3")

	_, _, err := LoadConfig()
	require.Error(t, err)
}

func TestLoadConfigRejectsBadDebugLevel(t *testing.T) {
	dir := t.TempDir()
	withArgs(t, "--datadir="+dir, "--logdir="+filepath.Join(dir, "logs"), "--debuglevel=noisy")

	_, _, err := LoadConfig()
	require.Error(t, err)
}

func TestLoadConfigLoadsFileUnderFlagPrecedence(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "minerd.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("blockmaxsize: 200000\nblockprioritysize: 10000\n"), 0600))

	withArgs(t, "--configfile="+configPath,
		"--datadir="+dir, "--logdir="+filepath.Join(dir, "logs"),
		"--blockprioritysize=20000")

	cfg, _, err := LoadConfig()
	require.NoError(t, err)

	require.Equal(t, int64(200000), cfg.Policy.BlockMaxSize)
	require.Equal(t, int64(20000), cfg.Policy.BlockPrioritySize)
}

func TestCleanAndExpandPathExpandsHome(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	got := cleanAndExpandPath(filepath.Join("~", "minerd-data"))
	require.Equal(t, filepath.Join(home, "minerd-data"), got)
}

func TestParseAlgo(t *testing.T) {
	algo, err := parseAlgo("Scrypt")
	require.NoError(t, err)
	require.Equal(t, pow.Scrypt, algo)

	_, err = parseAlgo("sha512")
	require.Error(t, err)
}
