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

package ledger

import "github.com/algorand/go-algojig/util/metrics"

var ledgerEvals = metrics.MakeCounter(metrics.LedgerEvalsTotal, "result")

// eval results counted by ledgerEvals
const (
	evalResultOK           = "ok"
	evalResultRejected     = "rejected"
	evalResultEngineFailed = "engine_error"
	evalResultFailed       = "error"
)
