// Copyright (C) 2019-2025 Algorand, Inc.
// This file is part of go-algojig
//
// go-algojig is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version.
//
// go-algojig is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with go-algojig.  If not, see <https://www.gnu.org/licenses/>.

package config

import (
	"encoding/json"
	"io"
	"os"
	"path/filepath"
)

// ConfigFilename is the name of the config file, in a directory, that holds the harness configuration.
const ConfigFilename = "config.json"

// EngineBinaryEnvVar names the environment variable that overrides the engine binary location.
const EngineBinaryEnvVar = "ALGOJIG_ENGINE"

// TrackerDBFilename is the engine's account tracker database, relative to WorkDir.
const TrackerDBFilename = "jig_ledger.sqlite3.tracker.sqlite"

// BlockDBFilename is the engine's block database, relative to WorkDir.
const BlockDBFilename = "jig_ledger.sqlite3.block.sqlite"

// TransactionsFilename is the serialized transaction group consumed by the engine's eval command, relative to WorkDir.
const TransactionsFilename = "stxns"

// Local holds the per-harness configuration settings.
type Local struct {
	// Version tracks the current version of the defaults so we can migrate old -> new
	Version uint32

	// EngineBinary is the path of the evaluation engine executable. When empty,
	// the ALGOJIG_ENGINE environment variable is consulted, then algojig_<machine>
	// is searched for on the PATH and next to the running executable.
	EngineBinary string

	// WorkDir is the directory holding the files shared with the engine.
	// The stock engine only ever reads /tmp/jig; harnesses that run in parallel
	// need engines built for distinct directories.
	WorkDir string

	// BlockTimestamp is the timestamp used for evaluation rounds when the caller does not supply one.
	BlockTimestamp int64

	// CreatorBalance is the native balance of the default creator account created with every ledger.
	CreatorBalance uint64

	// LogLevel is the verbosity of the harness logger ("debug", "info", "warn", ...).
	LogLevel string
}

var defaultLocal = Local{
	Version:        1,
	EngineBinary:   "",
	WorkDir:        "/tmp/jig",
	BlockTimestamp: 1000,
	CreatorBalance: 100_000_000,
	LogLevel:       "warn",
}

// GetDefaultLocal returns a copy of the current defaultLocal config
func GetDefaultLocal() Local {
	return defaultLocal
}

// LoadConfigFromDisk returns a Local config structure based on merging the defaults
// with settings loaded from the config file from the custom dir.  If the custom file
// cannot be loaded, the default config is returned (with the error from loading the
// custom file).
func LoadConfigFromDisk(custom string) (c Local, err error) {
	return mergeConfigFromFile(filepath.Join(custom, ConfigFilename), defaultLocal)
}

func mergeConfigFromFile(configpath string, source Local) (Local, error) {
	f, err := os.Open(configpath)
	if err != nil {
		return source, err
	}
	defer f.Close()

	err = loadConfig(f, &source)
	return source, err
}

func loadConfig(reader io.Reader, config *Local) error {
	dec := json.NewDecoder(reader)
	return dec.Decode(config)
}

// SaveToFile saves the config to a specific filename
func (cfg Local) SaveToFile(filename string) error {
	data, err := json.MarshalIndent(cfg, "", "\t")
	if err != nil {
		return err
	}
	return os.WriteFile(filename, data, 0644)
}

// TrackerDBPath returns the location of the engine's tracker database.
func (cfg Local) TrackerDBPath() string {
	return filepath.Join(cfg.WorkDir, TrackerDBFilename)
}

// BlockDBPath returns the location of the engine's block database.
func (cfg Local) BlockDBPath() string {
	return filepath.Join(cfg.WorkDir, BlockDBFilename)
}

// TransactionsPath returns the location of the serialized transaction group.
func (cfg Local) TransactionsPath() string {
	return filepath.Join(cfg.WorkDir, TransactionsFilename)
}

// LockPath returns the location of the lock file guarding WorkDir. The lock
// lives beside WorkDir because the engine's init command recreates WorkDir.
func (cfg Local) LockPath() string {
	return filepath.Clean(cfg.WorkDir) + ".lock"
}
