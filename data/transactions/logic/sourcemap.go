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
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	sdklogic "github.com/algorand/go-algorand-sdk/v2/logic"
)

// sourceMapVersion is currently 3.
// Refer to the full specs of sourcemap here: https://sourcemaps.info/spec.html
const sourceMapVersion = 3
const b64table string = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789+/"

// SourceMap contains details from the source to assembly process.
// Currently contains the map between TEAL source line to
// the assembled bytecode position.
type SourceMap struct {
	Version    int      `json:"version"`
	File       string   `json:"file,omitempty"`
	SourceRoot string   `json:"sourceRoot,omitempty"`
	Sources    []string `json:"sources"`
	Names      []string `json:"names"`
	// Mapping field is deprecated. Use `Mappings` field instead.
	Mapping  string `json:"mapping,omitempty"`
	Mappings string `json:"mappings"`
}

// GetSourceMap returns a struct containing details about
// the assembled file and encoded mappings to the source file.
// offsetToLine maps a bytecode offset to a 0-based source line.
func GetSourceMap(sourceNames []string, offsetToLine map[int]int) SourceMap {
	maxPC := 0
	for pc := range offsetToLine {
		if pc > maxPC {
			maxPC = pc
		}
	}

	// Array where index is the PC and value is the line for `mappings` field.
	prevSourceLine := 0
	pcToLine := make([]string, maxPC+1)
	for pc := range pcToLine {
		if line, ok := offsetToLine[pc]; ok {
			pcToLine[pc] = MakeSourceMapLine(0, 0, line-prevSourceLine, 0)
			prevSourceLine = line
		}
	}

	return SourceMap{
		Version:  sourceMapVersion,
		Sources:  sourceNames,
		Names:    []string{}, // TEAL code does not generate any names.
		Mappings: strings.Join(pcToLine, ";"),
	}
}

// ParseSourceMap decodes the JSON form of a source map.
func ParseSourceMap(data []byte) (SourceMap, error) {
	var sm SourceMap
	if err := json.Unmarshal(data, &sm); err != nil {
		return SourceMap{}, fmt.Errorf("cannot parse source map: %w", err)
	}
	if sm.Version != sourceMapVersion {
		return SourceMap{}, fmt.Errorf("unsupported source map version %d", sm.Version)
	}
	if sm.Mappings == "" {
		sm.Mappings = sm.Mapping
	}
	return sm, nil
}

// intToVLQ writes out value to bytes.Buffer
func intToVLQ(v int, buf *bytes.Buffer) {
	v <<= 1
	if v < 0 {
		v = -v
		v |= 1
	}
	for v >= 32 {
		buf.WriteByte(b64table[32|(v&31)])
		v >>= 5
	}
	buf.WriteByte(b64table[v])
}

// MakeSourceMapLine creates source map mapping's line entry
func MakeSourceMapLine(tcol, sindex, sline, scol int) string {
	buf := bytes.NewBuffer(nil)
	intToVLQ(tcol, buf)
	intToVLQ(sindex, buf)
	intToVLQ(sline, buf)
	intToVLQ(scol, buf)
	return buf.String()
}

// PCLineTable maps bytecode offsets to 0-based source lines.
type PCLineTable struct {
	pcs   []int
	lines []int
}

// DecodeSourceMap builds the pc to line table of a source map. Each
// semicolon separated segment of the mappings describes one bytecode offset;
// offsets with an empty segment belong to the preceding instruction and are
// left out of the table.
func DecodeSourceMap(sm SourceMap) (PCLineTable, error) {
	var table PCLineTable
	if sm.Mappings == "" {
		return table, nil
	}
	segments := strings.Split(sm.Mappings, ";")
	for pc, segment := range segments {
		// a segment may carry several comma separated entries for one offset
		first, _, _ := strings.Cut(segment, ",")
		if strings.Trim(first, b64table) != "" {
			return PCLineTable{}, fmt.Errorf("pc %d: invalid base64 VLQ segment %q", pc, segment)
		}
		segments[pc] = first
	}

	decoded, err := sdklogic.DecodeSourceMap(map[string]interface{}{
		"version":  sm.Version,
		"sources":  sm.Sources,
		"names":    sm.Names,
		"mappings": strings.Join(segments, ";"),
	})
	if err != nil {
		return PCLineTable{}, err
	}
	for pc, segment := range segments {
		if segment == "" {
			continue
		}
		line, ok := decoded.GetLineForPc(pc)
		if !ok {
			continue
		}
		table.pcs = append(table.pcs, pc)
		table.lines = append(table.lines, line)
	}
	return table, nil
}

// Len returns the number of mapped offsets.
func (t PCLineTable) Len() int {
	return len(t.pcs)
}

// LineForPC returns the source line of the instruction at or before pc.
// The boolean is false when pc precedes every mapped offset.
func (t PCLineTable) LineForPC(pc int) (int, bool) {
	i := sort.SearchInts(t.pcs, pc+1) - 1
	if i < 0 {
		return 0, false
	}
	return t.lines[i], true
}

// OffsetToLine returns the table in the form GetSourceMap consumes.
func (t PCLineTable) OffsetToLine() map[int]int {
	out := make(map[int]int, len(t.pcs))
	for i, pc := range t.pcs {
		out[pc] = t.lines[i]
	}
	return out
}
