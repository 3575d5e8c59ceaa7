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
	"encoding/base64"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/algorand/go-algojig/data/transactions/logic"
	"github.com/algorand/go-algojig/engine"
)

var (
	compileOutFile   string
	compileSourceMap bool
)

func init() {
	compileCmd.Flags().StringVarP(&compileOutFile, "outfile", "o", "", "Write the bytecode to this file")
	compileCmd.Flags().BoolVarP(&compileSourceMap, "map", "m", false, "Print the source map")
}

var compileCmd = &cobra.Command{
	Use:   "compile [file|-]",
	Short: "Assemble a TEAL program with the engine",
	Long:  "Assemble a TEAL program with the engine and print its bytecode in base64 and its logic signature address. Reads stdin when the file is - or omitted.",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if err := runCompile(os.Stdout, makeEngine(), os.Stdin, args); err != nil {
			reportErrorf("%v", err)
		}
	},
}

func makeEngine() *engine.Engine {
	e, err := engine.MakeEngine(loadConfig(), log)
	if err != nil {
		reportErrorf("%v", err)
	}
	return e
}

func runCompile(w io.Writer, compiler logic.Compiler, stdin io.Reader, args []string) error {
	p, err := compileProgram(compiler, stdin, args)
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "%s: %s\n", p.Filename, base64.StdEncoding.EncodeToString(p.Bytecode()))
	fmt.Fprintf(w, "address: %s\n", p.Address())
	if compileSourceMap {
		_, sm, err := compiler.Compile([]byte(p.Source))
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%s\n", sm)
	}
	if compileOutFile != "" {
		if err := os.WriteFile(compileOutFile, p.Bytecode(), 0644); err != nil {
			return fmt.Errorf("unable to write %s: %w", compileOutFile, err)
		}
	}
	return nil
}

func compileProgram(compiler logic.Compiler, stdin io.Reader, args []string) (*logic.TealProgram, error) {
	if len(args) == 0 || args[0] == "-" {
		src, err := io.ReadAll(stdin)
		if err != nil {
			return nil, err
		}
		return logic.CompileTeal(compiler, "", src)
	}
	return logic.CompileTealFile(compiler, args[0])
}
