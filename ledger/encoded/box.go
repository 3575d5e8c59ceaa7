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

package encoded

import (
	"github.com/algorand/avm-abi/apps"

	"github.com/algorand/go-algojig/data/basics"
)

// BoxKey is the kvstore key of box name under app: "bx:" followed by the
// big-endian app id and the name.
func BoxKey(app basics.AppIndex, name string) string {
	return apps.MakeBoxKey(uint64(app), name)
}

// SplitBoxKey extracts the app id and box name from a kvstore key.
func SplitBoxKey(key string) (basics.AppIndex, string, error) {
	app, name, err := apps.SplitBoxKey(key)
	if err != nil {
		return 0, "", err
	}
	return basics.AppIndex(app), name, nil
}

// BoxSize is what a box contributes to its app account's TotalBoxBytes.
func BoxSize(name string, value []byte) uint64 {
	return uint64(len(name)) + uint64(len(value))
}
