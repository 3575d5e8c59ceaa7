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

package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/algorand/go-algojig/data/transactions/logic"
)

var lookupBuildDir string

func init() {
	lookupCmd.Flags().StringVarP(&lookupBuildDir, "build-dir", "b", "", "Directory of the TEAL and line map generated from a .tl source (default: build/ next to it)")
}

var lookupCmd = &cobra.Command{
	Use:   "lookup program pc...",
	Short: "Resolve program counters to source lines",
	Long:  "Resolve program counters to source lines. A .tl program is resolved through its generated TEAL to the Tealish line; anything else is assembled as TEAL.",
	Args:  cobra.MinimumNArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		pcs, err := parsePCs(args[1:])
		if err != nil {
			reportErrorf("%v", err)
		}
		p, err := loadProgram(makeEngine(), args[0], lookupBuildDir)
		if err != nil {
			reportErrorf("%v", err)
		}
		for _, pc := range pcs {
			printLocation(os.Stdout, p.Lookup(pc), 0)
		}
	},
}

func parsePCs(args []string) ([]int, error) {
	pcs := make([]int, 0, len(args))
	for _, arg := range args {
		pc, err := strconv.Atoi(arg)
		if err != nil || pc < 0 {
			return nil, fmt.Errorf("invalid pc %q", arg)
		}
		pcs = append(pcs, pc)
	}
	return pcs, nil
}

// loadProgram opens a .tl program through the TEAL generated in buildDir,
// or build/ next to it when buildDir is empty. Any other file is TEAL.
func loadProgram(compiler logic.Compiler, filename string, buildDir string) (logic.Program, error) {
	if filepath.Ext(filename) != ".tl" {
		return logic.CompileTealFile(compiler, filename)
	}
	if buildDir == "" {
		buildDir = filepath.Join(filepath.Dir(filename), "build")
	}
	return logic.LoadTealishProgram(compiler, filename, buildDir)
}

func printLocation(w io.Writer, loc logic.SourceLocation, depth int) {
	indent := strings.Repeat("  ", depth)
	if loc.LineNo == 0 {
		fmt.Fprintf(w, "%spc=%d: %s %s\n", indent, loc.PC, loc.Filename, color.YellowString("has no line for this pc"))
	} else {
		fmt.Fprintf(w, "%spc=%d: %s:%s: %s\n", indent, loc.PC, loc.Filename, color.CyanString("L%d", loc.LineNo), loc.Line)
	}
	if loc.Lower != nil {
		printLocation(w, *loc.Lower, depth+1)
	}
}
