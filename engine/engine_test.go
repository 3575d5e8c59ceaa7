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

package engine

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/algorand/go-algorand-sdk/v2/encoding/msgpack"
	"github.com/algorand/go-algorand-sdk/v2/types"
	"github.com/algorand/msgp/msgp"
	"github.com/stretchr/testify/require"

	"github.com/algorand/go-algojig/config"
	"github.com/algorand/go-algojig/logging"
	"github.com/algorand/go-algojig/test/partitiontest"
)

const fakeEngineScript = `#!/bin/sh
dir=$(dirname "$0")
echo "$@" >> "$dir/calls"
case "$1" in
init) exit 0 ;;
eval)
	if [ -f "$dir/eval.err" ]; then cat "$dir/eval.err" >&2; exit 3; fi
	cat "$dir/eval.out" ;;
compile)
	cat > "$dir/compile.in"
	printf 'BoEBQw==\n{"version":3,"sources":[""],"names":[],"mappings":"AAAA;AACA"}' ;;
read) printf 'accounts' ;;
*) echo "expected 'init' or 'eval' subcommands"; exit 1 ;;
esac
`

// fakeEngine installs a shell script standing in for the engine and returns
// a config pointing at it.
func fakeEngine(t *testing.T) (config.Local, string) {
	dir := t.TempDir()
	binary := filepath.Join(dir, "algojig_fake")
	require.NoError(t, os.WriteFile(binary, []byte(fakeEngineScript), 0755))

	cfg := config.GetDefaultLocal()
	cfg.EngineBinary = binary
	cfg.WorkDir = filepath.Join(dir, "jig")
	require.NoError(t, os.MkdirAll(cfg.WorkDir, 0700))
	return cfg, dir
}

func TestEngineCommands(t *testing.T) {
	partitiontest.PartitionTest(t)

	cfg, dir := fakeEngine(t)
	e, err := MakeEngine(cfg, logging.TestingLog(t))
	require.NoError(t, err)
	require.Equal(t, cfg.EngineBinary, e.Binary())

	initsBefore := Invocations(CommandInit, "ok")
	require.NoError(t, e.Init(1234))
	require.Equal(t, initsBefore+1, Invocations(CommandInit, "ok"))

	stream := resultStream(t, 3)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "eval.out"), stream, 0644))
	out, err := e.Eval()
	require.NoError(t, err)
	require.Equal(t, stream, out)

	bytecode, sm, err := e.Compile([]byte("#pragma version 6\nint 1\nreturn"))
	require.NoError(t, err)
	require.Equal(t, []byte{0x06, 0x81, 0x01, 0x43}, bytecode)
	require.Contains(t, string(sm), `"mappings":"AAAA;AACA"`)
	src, err := os.ReadFile(filepath.Join(dir, "compile.in"))
	require.NoError(t, err)
	require.Equal(t, "#pragma version 6\nint 1\nreturn", string(src))

	out, err = e.Read()
	require.NoError(t, err)
	require.Equal(t, "accounts", string(out))

	calls, err := os.ReadFile(filepath.Join(dir, "calls"))
	require.NoError(t, err)
	require.Equal(t, "init 1234\neval\ncompile -\nread\n", string(calls))
}

func TestEngineFailure(t *testing.T) {
	partitiontest.PartitionTest(t)

	cfg, dir := fakeEngine(t)
	e, err := MakeEngine(cfg, logging.TestingLog(t))
	require.NoError(t, err)

	stderr := "transaction ABC: overspend (account X, data {...}, tried to spend {1000000000})"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "eval.err"), []byte(stderr), 0644))

	errorsBefore := Invocations(CommandEval, "error")
	_, err = e.Eval()
	var engineErr *EngineError
	require.True(t, errors.As(err, &engineErr))
	require.Equal(t, CommandEval, engineErr.Command)
	require.Equal(t, 3, engineErr.ExitCode)
	require.Equal(t, stderr, engineErr.Stderr)
	require.Contains(t, err.Error(), "overspend")
	require.Equal(t, errorsBefore+1, Invocations(CommandEval, "error"))
}

func TestEngineErrorMessage(t *testing.T) {
	partitiontest.PartitionTest(t)
	t.Parallel()

	err := &EngineError{Command: "eval", ExitCode: 1, Stderr: "  boom\n"}
	require.Equal(t, "engine eval exited with status 1: boom", err.Error())

	err = &EngineError{Command: "init", ExitCode: 2}
	require.Equal(t, "engine init exited with status 2", err.Error())
}

func TestFindBinary(t *testing.T) {
	partitiontest.PartitionTest(t)

	cfg, _ := fakeEngine(t)

	t.Setenv(config.EngineBinaryEnvVar, "")
	path, err := FindBinary(cfg)
	require.NoError(t, err)
	require.Equal(t, cfg.EngineBinary, path)

	// the environment is consulted when the config names no binary
	env := cfg.EngineBinary
	cfg.EngineBinary = ""
	t.Setenv(config.EngineBinaryEnvVar, env)
	path, err = FindBinary(cfg)
	require.NoError(t, err)
	require.Equal(t, env, path)

	t.Setenv(config.EngineBinaryEnvVar, filepath.Join(t.TempDir(), "missing"))
	_, err = FindBinary(cfg)
	require.ErrorIs(t, err, ErrBinaryNotFound)

	// machine-specific name on PATH
	t.Setenv(config.EngineBinaryEnvVar, "")
	bin := t.TempDir()
	name := BinaryNames()[0]
	require.NoError(t, os.WriteFile(filepath.Join(bin, name), []byte(fakeEngineScript), 0755))
	t.Setenv("PATH", bin)
	path, err = FindBinary(cfg)
	require.NoError(t, err)
	require.Equal(t, filepath.Join(bin, name), path)

	t.Setenv("PATH", t.TempDir())
	_, err = MakeEngine(cfg, nil)
	require.ErrorIs(t, err, ErrBinaryNotFound)
}

func TestBinaryNames(t *testing.T) {
	partitiontest.PartitionTest(t)
	t.Parallel()

	names := BinaryNames()
	require.NotEmpty(t, names)
	for _, n := range names {
		require.True(t, strings.HasPrefix(n, "algojig_"), n)
	}
}

func TestParseCompileOutput(t *testing.T) {
	partitiontest.PartitionTest(t)
	t.Parallel()

	bytecode, sm, err := ParseCompileOutput([]byte("BoEBQw==\n{\"version\":3}\n"))
	require.NoError(t, err)
	require.Equal(t, []byte{0x06, 0x81, 0x01, 0x43}, bytecode)
	require.Equal(t, `{"version":3}`, string(sm))

	_, _, err = ParseCompileOutput([]byte("BoEBQw=="))
	require.Error(t, err)

	_, _, err = ParseCompileOutput([]byte("not base64!\n{}"))
	require.Error(t, err)
}

func TestWriteTransactions(t *testing.T) {
	partitiontest.PartitionTest(t)

	cfg, _ := fakeEngine(t)
	e, err := MakeEngine(cfg, logging.TestingLog(t))
	require.NoError(t, err)

	sender := types.Address{1}
	receiver := types.Address{2}
	stxns := []types.SignedTxn{
		{Txn: types.Transaction{
			Type:             types.PaymentTx,
			Header:           types.Header{Sender: sender, Fee: 1000, FirstValid: 1, LastValid: 1000},
			PaymentTxnFields: types.PaymentTxnFields{Receiver: receiver, Amount: 200_000},
		}},
		{Txn: types.Transaction{
			Type:             types.PaymentTx,
			Header:           types.Header{Sender: receiver, Fee: 1000, FirstValid: 1, LastValid: 1000},
			PaymentTxnFields: types.PaymentTxnFields{Receiver: sender, Amount: 1},
		}},
	}
	require.NoError(t, e.WriteTransactions(stxns))

	raw, err := os.ReadFile(cfg.TransactionsPath())
	require.NoError(t, err)
	sections, err := splitSections(raw)
	require.NoError(t, err)
	require.Len(t, sections, 2)

	for i, section := range sections {
		var back types.SignedTxn
		require.NoError(t, msgpack.Decode(section, &back))
		require.Equal(t, stxns[i], back)
	}
	require.True(t, bytes.HasPrefix(raw, msgpack.Encode(&stxns[0])))
}

func TestSplitSectionsTruncated(t *testing.T) {
	partitiontest.PartitionTest(t)
	t.Parallel()

	stream := resultStream(t, 3)
	_, err := splitSections(stream[:len(stream)-1])
	require.ErrorIs(t, err, msgp.ErrShortBytes)
}
