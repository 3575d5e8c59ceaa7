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
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/algorand/go-algorand-sdk/v2/crypto"
	"github.com/algorand/go-algorand-sdk/v2/types"
)

// SourceLocation is a resolved position in a program's source. Lower holds
// the location in the program this one was compiled to, if any.
type SourceLocation struct {
	Filename string
	// LineNo is 1-based; 0 means the pc could not be resolved.
	LineNo int
	Line   string
	PC     int
	Lower  *SourceLocation
}

func (loc SourceLocation) String() string {
	s := fmt.Sprintf("%s:%d: %s", loc.Filename, loc.LineNo, loc.Line)
	if loc.Lower != nil {
		s += " (" + loc.Lower.String() + ")"
	}
	return s
}

// Program is a compiled program that can map bytecode offsets back to
// source lines.
type Program interface {
	Bytecode() []byte
	Lookup(pc int) SourceLocation
}

// Compiler assembles TEAL source into bytecode and its JSON source map.
type Compiler interface {
	Compile(src []byte) (bytecode []byte, sourceMap []byte, err error)
}

// TealProgram is assembled TEAL together with its pc to line table.
type TealProgram struct {
	Filename string
	Source   string

	bytecode []byte
	lines    []string
	table    PCLineTable
}

// MakeTealProgram wraps already assembled TEAL. sourceMap is the JSON
// source map produced by the assembler.
func MakeTealProgram(filename string, src string, bytecode []byte, sourceMap []byte) (*TealProgram, error) {
	sm, err := ParseSourceMap(sourceMap)
	if err != nil {
		return nil, err
	}
	table, err := DecodeSourceMap(sm)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	return &TealProgram{
		Filename: filename,
		Source:   src,
		bytecode: bytecode,
		lines:    strings.Split(src, "\n"),
		table:    table,
	}, nil
}

// CompileTeal assembles src with compiler. An empty filename is reported
// as "input.teal".
func CompileTeal(compiler Compiler, filename string, src []byte) (*TealProgram, error) {
	if filename == "" {
		filename = "input.teal"
	}
	bytecode, sourceMap, err := compiler.Compile(src)
	if err != nil {
		return nil, fmt.Errorf("compiling %s: %w", filename, err)
	}
	return MakeTealProgram(filename, string(src), bytecode, sourceMap)
}

// CompileTealFile reads and assembles a .teal file.
func CompileTealFile(compiler Compiler, filename string) (*TealProgram, error) {
	src, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	return CompileTeal(compiler, filename, src)
}

// Bytecode returns the assembled program.
func (p *TealProgram) Bytecode() []byte {
	return p.bytecode
}

// Address returns the logic-sig address of the program.
func (p *TealProgram) Address() types.Address {
	return crypto.AddressFromProgram(p.bytecode)
}

// Lookup resolves pc to a TEAL line. A pc between mapped offsets resolves
// to the preceding instruction.
func (p *TealProgram) Lookup(pc int) SourceLocation {
	loc := SourceLocation{Filename: p.Filename, PC: pc}
	line, ok := p.table.LineForPC(pc)
	if !ok || line < 0 || line >= len(p.lines) {
		return loc
	}
	loc.LineNo = line + 1
	loc.Line = strings.TrimSpace(p.lines[line])
	return loc
}

// TealishProgram is a Tealish source compiled to TEAL. Its line map takes
// a 0-based TEAL line to the 1-based Tealish line that produced it.
type TealishProgram struct {
	Filename string
	Source   string
	Teal     *TealProgram

	lines   []string
	lineMap map[int]int
}

// MakeTealishProgram wraps the artifacts of a Tealish compilation.
func MakeTealishProgram(filename string, src string, teal *TealProgram, lineMap map[int]int) *TealishProgram {
	return &TealishProgram{
		Filename: filename,
		Source:   src,
		Teal:     teal,
		lines:    strings.Split(src, "\n"),
		lineMap:  lineMap,
	}
}

// ParseTealishLineMap decodes the JSON line map written next to the
// generated TEAL, an object keyed by 0-based TEAL line.
func ParseTealishLineMap(data []byte) (map[int]int, error) {
	var m map[int]int
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("cannot parse tealish line map: %w", err)
	}
	return m, nil
}

// LoadTealishProgram loads name.tl, compiles the generated name.teal with
// compiler and reads the line map from name.map.json, all in buildDir for
// the generated files.
func LoadTealishProgram(compiler Compiler, filename string, buildDir string) (*TealishProgram, error) {
	src, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	base := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	teal, err := CompileTealFile(compiler, filepath.Join(buildDir, base+".teal"))
	if err != nil {
		return nil, err
	}
	rawMap, err := os.ReadFile(filepath.Join(buildDir, base+".map.json"))
	if err != nil {
		return nil, err
	}
	lineMap, err := ParseTealishLineMap(rawMap)
	if err != nil {
		return nil, err
	}
	return MakeTealishProgram(filename, string(src), teal, lineMap), nil
}

// Bytecode returns the bytecode of the generated TEAL.
func (p *TealishProgram) Bytecode() []byte {
	return p.Teal.Bytecode()
}

// Lookup resolves pc through the TEAL program to a Tealish line. The TEAL
// location is kept in Lower.
func (p *TealishProgram) Lookup(pc int) SourceLocation {
	lower := p.Teal.Lookup(pc)
	loc := SourceLocation{Filename: p.Filename, PC: pc, Lower: &lower}
	if lower.LineNo == 0 {
		return loc
	}
	line, ok := p.lineMap[lower.LineNo-1]
	if !ok || line < 1 || line > len(p.lines) {
		return loc
	}
	loc.LineNo = line
	loc.Line = strings.TrimSpace(p.lines[line-1])
	return loc
}
