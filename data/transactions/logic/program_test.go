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

package logic

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/algorand/go-algojig/test/partitiontest"
)

const approvalTeal = "#pragma version 6\nint 1\nreturn"

// fixedCompiler returns canned assembler output.
type fixedCompiler struct {
	bytecode  []byte
	sourceMap []byte
	err       error
	seen      []byte
}

func (c *fixedCompiler) Compile(src []byte) ([]byte, []byte, error) {
	c.seen = src
	return c.bytecode, c.sourceMap, c.err
}

func approvalCompiler(t *testing.T) *fixedCompiler {
	// 06: version, 81 01: pushint 1, 43: return
	sm, err := json.Marshal(GetSourceMap([]string{"approval.teal"}, map[int]int{0: 0, 1: 1, 3: 2}))
	require.NoError(t, err)
	return &fixedCompiler{bytecode: []byte{0x06, 0x81, 0x01, 0x43}, sourceMap: sm}
}

func TestTealProgramLookup(t *testing.T) {
	partitiontest.PartitionTest(t)
	t.Parallel()

	compiler := approvalCompiler(t)
	p, err := CompileTeal(compiler, "approval.teal", []byte(approvalTeal))
	require.NoError(t, err)
	require.Equal(t, []byte(approvalTeal), compiler.seen)
	require.Equal(t, []byte{0x06, 0x81, 0x01, 0x43}, p.Bytecode())

	loc := p.Lookup(1)
	require.Equal(t, SourceLocation{Filename: "approval.teal", LineNo: 2, Line: "int 1", PC: 1}, loc)

	// the immediate of pushint belongs to the same instruction
	require.Equal(t, 2, p.Lookup(2).LineNo)
	require.Equal(t, "return", p.Lookup(3).Line)
	require.Equal(t, 1, p.Lookup(0).LineNo)
}

func TestTealProgramUnmappedPC(t *testing.T) {
	partitiontest.PartitionTest(t)
	t.Parallel()

	sm, err := json.Marshal(GetSourceMap([]string{"a.teal"}, map[int]int{5: 1}))
	require.NoError(t, err)
	p, err := MakeTealProgram("a.teal", approvalTeal, []byte{0x06}, sm)
	require.NoError(t, err)

	loc := p.Lookup(2)
	require.Zero(t, loc.LineNo)
	require.Empty(t, loc.Line)
	require.Equal(t, 2, loc.PC)
}

func TestCompileTealDefaultsAndErrors(t *testing.T) {
	partitiontest.PartitionTest(t)
	t.Parallel()

	p, err := CompileTeal(approvalCompiler(t), "", []byte(approvalTeal))
	require.NoError(t, err)
	require.Equal(t, "input.teal", p.Filename)

	_, err = CompileTeal(&fixedCompiler{err: errors.New("1: unknown opcode")}, "bad.teal", []byte("intt 1"))
	require.ErrorContains(t, err, "bad.teal")
	require.ErrorContains(t, err, "unknown opcode")

	_, err = CompileTeal(&fixedCompiler{sourceMap: []byte("{")}, "bad.teal", nil)
	require.Error(t, err)
}

func TestTealProgramAddress(t *testing.T) {
	partitiontest.PartitionTest(t)
	t.Parallel()

	sm, err := json.Marshal(GetSourceMap([]string{"a.teal"}, map[int]int{0: 0, 1: 1}))
	require.NoError(t, err)
	p, err := MakeTealProgram("a.teal", "#pragma version 6\nint 1", []byte{0x06, 0x81, 0x01}, sm)
	require.NoError(t, err)
	require.Equal(t, "ZG2RRCHBZ4K2QKP3NGMYVF2MVG7YW2TSNJPVFVLEGX7KGQ46QVPJGOFTK4", p.Address().String())
}

func TestTealishChainResolvesLineTwo(t *testing.T) {
	partitiontest.PartitionTest(t)
	t.Parallel()

	teal, err := CompileTeal(approvalCompiler(t), "approval.teal", []byte(approvalTeal))
	require.NoError(t, err)

	tealish := "#pragma version 6\nexit(1)\n"
	p := MakeTealishProgram("approval.tl", tealish, teal, map[int]int{0: 1, 1: 2, 2: 2})
	require.Equal(t, teal.Bytecode(), p.Bytecode())

	loc := p.Lookup(1)
	require.Equal(t, "approval.tl", loc.Filename)
	require.Equal(t, 2, loc.LineNo)
	require.Equal(t, "exit(1)", loc.Line)
	require.NotNil(t, loc.Lower)
	require.Equal(t, 2, loc.Lower.LineNo)
	require.Equal(t, "int 1", loc.Lower.Line)
	require.Equal(t, "approval.tl:2: exit(1) (approval.teal:2: int 1)", loc.String())

	// a TEAL line the map does not cover keeps the lower location only
	partial := MakeTealishProgram("approval.tl", tealish, teal, map[int]int{0: 1})
	loc = partial.Lookup(3)
	require.Zero(t, loc.LineNo)
	require.Equal(t, 3, loc.Lower.LineNo)
}

func TestLoadTealishProgram(t *testing.T) {
	partitiontest.PartitionTest(t)
	t.Parallel()

	dir := t.TempDir()
	build := filepath.Join(dir, "build")
	require.NoError(t, os.Mkdir(build, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "approval.tl"), []byte("#pragma version 6\nexit(1)\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(build, "approval.teal"), []byte(approvalTeal), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(build, "approval.map.json"), []byte(`{"0": 1, "1": 2, "2": 2}`), 0644))

	p, err := LoadTealishProgram(approvalCompiler(t), filepath.Join(dir, "approval.tl"), build)
	require.NoError(t, err)
	require.Equal(t, "exit(1)", p.Lookup(3).Line)
	require.Equal(t, "return", p.Lookup(3).Lower.Line)

	_, err = ParseTealishLineMap([]byte(`[1, 2]`))
	require.Error(t, err)
}
