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

import "github.com/algorand/go-algojig/util/metrics"

var engineInvocations = metrics.MakeCounter(metrics.EngineInvocationsTotal, "command", "result")
var engineMicros = metrics.MakeCounter(metrics.EngineMicrosTotal, "command")

// Invocations reports how many times command ended with result ("ok" or
// "error") in this process.
func Invocations(command, result string) uint64 {
	return engineInvocations.GetUint64ValueForLabels(map[string]string{"command": command, "result": result})
}
