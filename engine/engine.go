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

// Package engine runs the evaluation engine subprocess and decodes what it
// prints.
//
// The engine is a go-algorand ledger wrapped in a small CLI with the
// subcommands init, eval, read and compile. It works on sqlite files in a
// fixed work directory; the harness writes the ledger image there between
// init and eval.
package engine

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/algorand/go-algorand-sdk/v2/encoding/msgpack"
	"github.com/algorand/go-algorand-sdk/v2/types"

	"github.com/algorand/go-algojig/config"
	"github.com/algorand/go-algojig/logging"
	"github.com/algorand/go-algojig/util"
)

// Subcommands understood by the engine binary.
const (
	CommandInit    = "init"
	CommandEval    = "eval"
	CommandRead    = "read"
	CommandCompile = "compile"
)

// ErrBinaryNotFound is returned by MakeEngine when no engine binary can be
// located.
var ErrBinaryNotFound = errors.New("engine binary not found")

// machineNames maps GOARCH to the names engine builds are published under.
var machineNames = map[string][]string{
	"amd64": {"x86_64"},
	"arm64": {"arm64", "aarch64"},
	"386":   {"i386", "i686"},
}

// BinaryNames lists the file names the engine binary may have on this machine.
func BinaryNames() []string {
	machines, ok := machineNames[runtime.GOARCH]
	if !ok {
		machines = []string{runtime.GOARCH}
	}
	names := make([]string, len(machines))
	for i, m := range machines {
		names[i] = "algojig_" + m
	}
	return names
}

// FindBinary locates the engine: cfg.EngineBinary, then $ALGOJIG_ENGINE, then
// a machine-specific algojig_<machine> on PATH or next to the running
// executable.
func FindBinary(cfg config.Local) (string, error) {
	for _, explicit := range []string{cfg.EngineBinary, os.Getenv(config.EngineBinaryEnvVar)} {
		if explicit == "" {
			continue
		}
		if _, err := os.Stat(explicit); err != nil {
			return "", fmt.Errorf("%w: %v", ErrBinaryNotFound, err)
		}
		return explicit, nil
	}

	var dirs []string
	if exe, err := os.Executable(); err == nil {
		dirs = append(dirs, filepath.Dir(exe))
	}
	for _, name := range BinaryNames() {
		if path, err := exec.LookPath(name); err == nil {
			return path, nil
		}
		for _, dir := range dirs {
			path := filepath.Join(dir, name)
			if st, err := os.Stat(path); err == nil && !st.IsDir() {
				return path, nil
			}
		}
	}
	return "", fmt.Errorf("%w: set %s or put one of %v on PATH", ErrBinaryNotFound, config.EngineBinaryEnvVar, BinaryNames())
}

// Engine invokes one engine binary. Each call is an independent subprocess;
// all continuity lives in the files of the work directory.
type Engine struct {
	binary string
	cfg    config.Local
	log    logging.Logger
}

// MakeEngine locates the engine binary for cfg.
func MakeEngine(cfg config.Local, log logging.Logger) (*Engine, error) {
	if log == nil {
		log = logging.Base()
	}
	binary, err := FindBinary(cfg)
	if err != nil {
		return nil, err
	}
	return &Engine{binary: binary, cfg: cfg, log: log.With("engine", binary)}, nil
}

// Binary is the path of the engine executable.
func (e *Engine) Binary() string {
	return e.binary
}

// run executes one subcommand and returns its stdout. A non-zero exit is an
// *EngineError carrying stderr.
func (e *Engine) run(stdin io.Reader, command string, args ...string) ([]byte, error) {
	start := time.Now()
	out, err := util.ExecAndCaptureOutput(stdin, e.binary, append([]string{command}, args...)...)
	engineMicros.AddMicrosecondsSince(start, map[string]string{"command": command})
	if err != nil {
		engineInvocations.Inc(map[string]string{"command": command, "result": "error"})
		return nil, fmt.Errorf("running engine %s: %w", command, err)
	}
	if out.ExitCode != 0 {
		engineInvocations.Inc(map[string]string{"command": command, "result": "error"})
		e.log.WithFields(logging.Fields{"command": command, "exit_code": out.ExitCode}).Infof("engine failed after %v", time.Since(start))
		return nil, &EngineError{Command: command, Stderr: string(out.Stderr), ExitCode: out.ExitCode}
	}
	engineInvocations.Inc(map[string]string{"command": command, "result": "ok"})
	e.log.With("command", command).Debugf("engine returned %d bytes in %v", len(out.Stdout), time.Since(start))
	return out.Stdout, nil
}

// Init recreates the engine's databases with an empty ledger whose next
// block has the given timestamp.
func (e *Engine) Init(timestamp int64) error {
	_, err := e.run(nil, CommandInit, strconv.FormatInt(timestamp, 10))
	return err
}

// Eval evaluates the transactions in the stxns file against the databases
// and returns the raw result stream, see DecodeResult.
func (e *Engine) Eval() ([]byte, error) {
	return e.run(nil, CommandEval)
}

// Read returns whatever the engine's read subcommand prints.
func (e *Engine) Read() ([]byte, error) {
	return e.run(nil, CommandRead)
}

// Compile assembles TEAL source. The engine prints the bytecode in base64 on
// the first line and a JSON source map on the second.
func (e *Engine) Compile(src []byte) (bytecode []byte, sourceMap []byte, err error) {
	out, err := e.run(bytes.NewReader(src), CommandCompile, "-")
	if err != nil {
		return nil, nil, err
	}
	return ParseCompileOutput(out)
}

// ParseCompileOutput splits compile output into bytecode and source map.
func ParseCompileOutput(out []byte) (bytecode []byte, sourceMap []byte, err error) {
	program, sm, found := bytes.Cut(out, []byte("\n"))
	if !found {
		return nil, nil, fmt.Errorf("compile output has no source map line")
	}
	bytecode, err = base64.StdEncoding.DecodeString(strings.TrimSpace(string(program)))
	if err != nil {
		return nil, nil, fmt.Errorf("compile output bytecode: %w", err)
	}
	return bytecode, bytes.TrimSpace(sm), nil
}

// WriteTransactions stores the group as concatenated msgpack objects in the
// file eval reads.
func (e *Engine) WriteTransactions(stxns []types.SignedTxn) error {
	return WriteTransactionsFile(e.cfg.TransactionsPath(), stxns)
}

// WriteTransactionsFile writes stxns to filename as concatenated msgpack
// objects.
func WriteTransactionsFile(filename string, stxns []types.SignedTxn) error {
	var buf bytes.Buffer
	for i := range stxns {
		buf.Write(msgpack.Encode(&stxns[i]))
	}
	return os.WriteFile(filename, buf.Bytes(), 0600)
}
