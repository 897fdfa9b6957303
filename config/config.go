// Copyright (c) 2014 Project Bitmark
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package config loads the miner's settings from defaults, an optional
// YAML file, and command-line flags, in that order of increasing
// precedence.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dbkeys/bitmark/mining"
	"github.com/dbkeys/bitmark/types/pow"
	"github.com/jessevdk/go-flags"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

const (
	defaultConfigFilename = "minerd.yaml"
	defaultDataDirname    = "data"
	defaultLogDirname     = "logs"
	defaultDebugLevel     = "info"
	defaultMiningAlgo     = "sha256d"
	defaultNumWorkers     = -1
	defaultEquihashN      = 200
	defaultEquihashK      = 9
)

var defaultHomeDir = appDataDir("minerd")

// Config bundles every setting the miner needs: the template-building
// policy, the algorithm and thread count the search drivers run with, and
// the ambient data/log/debug options every bitmark-go binary shares.
type Config struct {
	ConfigFile  string `short:"C" long:"configfile" description:"Path to configuration file" yaml:"-"`
	ShowVersion bool   `short:"V" long:"version" description:"Display version information and exit" yaml:"-"`

	DataDir    string `long:"datadir" description:"Directory to store data" yaml:"datadir"`
	LogDir     string `long:"logdir" description:"Directory to log output" yaml:"logdir"`
	DebugLevel string `long:"debuglevel" description:"Logging level {trace, debug, info, warn, error, critical}" yaml:"debuglevel"`

	Regtest    bool `long:"regtest" description:"Use the regression test network: mine only against a local, peerless chain and stop each worker after one block" yaml:"regtest"`
	NumWorkers int  `long:"numworkers" description:"Number of search worker goroutines to run; -1 selects hardware concurrency (or 1 under regtest)" yaml:"numworkers"`

	MiningAlgo string `long:"miningalgo" description:"Proof-of-work algorithm to mine: sha256d, scrypt, or equihash" yaml:"miningalgo"`
	EquihashN  uint32 `long:"equihashn" description:"Equihash N parameter, used only when miningalgo=equihash" yaml:"equihashn"`
	EquihashK  uint32 `long:"equihashk" description:"Equihash K parameter, used only when miningalgo=equihash" yaml:"equihashk"`

	BlockMaxSize      int64 `long:"blockmaxsize" description:"Maximum block size in bytes to be used when creating a block template" yaml:"blockmaxsize"`
	BlockPrioritySize int64 `long:"blockprioritysize" description:"Size in bytes for high-priority/low-fee transactions when creating a block template" yaml:"blockprioritysize"`
	BlockMinSize      int64 `long:"blockminsize" description:"Minimum block size in bytes to be used when creating a block template" yaml:"blockminsize"`
	PrintPriority     bool  `long:"printpriority" description:"Log the priority and fee-per-kb of each transaction considered for a block template" yaml:"printpriority"`
	SkipDryRun        bool  `long:"skipdryrun" description:"Skip the dry connect-block pass at the end of template assembly" yaml:"skipdryrun"`
}

// Resolved bundles the pieces of a loaded Config that the rest of the
// program actually consumes: a clamped template policy and a parsed
// algorithm/Equihash-parameter pair, rather than the raw string/int knobs
// LoadConfig accepts.
type Resolved struct {
	Config

	Policy         mining.Policy
	Algo           pow.Algorithm
	EquihashParams pow.EquihashParams
}

func defaultConfig() Config {
	return Config{
		ConfigFile: filepath.Join(defaultHomeDir, defaultConfigFilename),
		DataDir:    filepath.Join(defaultHomeDir, defaultDataDirname),
		LogDir:     filepath.Join(defaultHomeDir, defaultLogDirname),
		DebugLevel: defaultDebugLevel,

		NumWorkers: defaultNumWorkers,

		MiningAlgo: defaultMiningAlgo,
		EquihashN:  defaultEquihashN,
		EquihashK:  defaultEquihashK,

		BlockMaxSize:      mining.DefaultBlockMaxSize,
		BlockPrioritySize: mining.DefaultBlockPrioritySize,
		BlockMinSize:      mining.DefaultBlockMinSize,
	}
}

// newParser wraps cfg in a go-flags parser configured the way every
// bitmark-go binary's CLI is: long options plus the -C and -V short forms,
// defaults already present in cfg rather than in struct tags.
func newParser(cfg *Config, options flags.Options) *flags.Parser {
	return flags.NewParser(cfg, options)
}

// LoadConfig resolves settings in four steps: start from defaults,
// pre-parse the command line to discover an alternate config file, load
// that file over the defaults, then do a final command-line parse so
// flags win over anything the file set.
func LoadConfig() (*Resolved, []string, error) {
	cfg := defaultConfig()

	preCfg := cfg
	preParser := newParser(&preCfg, flags.HelpFlag)
	_, err := preParser.Parse()
	if err != nil {
		if e, ok := err.(*flags.Error); ok && e.Type == flags.ErrHelp {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(0)
		}
	}

	if preCfg.ShowVersion {
		fmt.Println("minerd")
		os.Exit(0)
	}

	if fileExists(preCfg.ConfigFile) {
		if err := loadConfigFile(preCfg.ConfigFile, &cfg); err != nil {
			return nil, nil, errors.Wrap(err, "parse config file")
		}
	}

	parser := newParser(&cfg, flags.Default)
	remaining, err := parser.Parse()
	if err != nil {
		return nil, nil, err
	}

	cfg.DataDir = cleanAndExpandPath(cfg.DataDir)
	cfg.LogDir = cleanAndExpandPath(cfg.LogDir)
	if !validLogLevel(cfg.DebugLevel) {
		return nil, nil, errors.Errorf("the specified debug level %q is invalid", cfg.DebugLevel)
	}

	algo, err := parseAlgo(cfg.MiningAlgo)
	if err != nil {
		return nil, nil, err
	}

	for _, dir := range []string{cfg.DataDir, cfg.LogDir} {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return nil, nil, errors.Wrapf(err, "create directory %s", dir)
		}
	}

	resolved := &Resolved{
		Config: cfg,
		Policy: mining.NewPolicy(cfg.BlockMaxSize, cfg.BlockPrioritySize, cfg.BlockMinSize,
			cfg.PrintPriority, cfg.SkipDryRun),
		Algo:           algo,
		EquihashParams: pow.EquihashParams{N: cfg.EquihashN, K: cfg.EquihashK},
	}
	return resolved, remaining, nil
}

func loadConfigFile(path string, cfg *Config) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	return dec.Decode(cfg)
}

func fileExists(name string) bool {
	_, err := os.Stat(name)
	return err == nil
}

func validLogLevel(level string) bool {
	switch level {
	case "trace", "debug", "info", "warn", "error", "critical":
		return true
	}
	return false
}

func parseAlgo(name string) (pow.Algorithm, error) {
	switch strings.ToLower(name) {
	case "sha256d", "":
		return pow.SHA256D, nil
	case "scrypt":
		return pow.Scrypt, nil
	case "equihash":
		return pow.Equihash, nil
	default:
		return 0, errors.Errorf("unknown mining algorithm %q", name)
	}
}

// cleanAndExpandPath expands a leading ~ and any environment variables in
// path, then cleans the result.
func cleanAndExpandPath(path string) string {
	if strings.HasPrefix(path, "~") {
		home, err := os.UserHomeDir()
		if err == nil {
			path = filepath.Join(home, strings.TrimPrefix(path, "~"))
		}
	}
	return filepath.Clean(os.ExpandEnv(path))
}

// appDataDir returns the default per-user application data directory for
// appName: $APPDATA/appName when APPDATA is set, otherwise ~/.appName (or
// .appName when no home directory is known). No XDG or macOS Application
// Support lookup is made.
func appDataDir(appName string) string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return "." + appName
	}
	switch {
	case os.Getenv("APPDATA") != "":
		return filepath.Join(os.Getenv("APPDATA"), appName)
	default:
		return filepath.Join(home, "."+appName)
	}
}
