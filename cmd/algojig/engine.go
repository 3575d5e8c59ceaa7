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
	"github.com/spf13/cobra"

	"github.com/algorand/go-algojig/engine"
)

var engineCmd = &cobra.Command{
	Use:   "engine",
	Short: "Show which engine binary would be used",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		binary, err := engine.FindBinary(loadConfig())
		if err != nil {
			reportWarnf("%v", err)
			reportErrorf("Looked for %v", engine.BinaryNames())
		}
		reportInfof("%s", binary)
	},
}
