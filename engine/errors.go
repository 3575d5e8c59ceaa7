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
	"fmt"
	"strings"
)

// EngineError is a non-zero exit of the engine. Stderr is the engine's own
// description of the failure.
type EngineError struct {
	Command  string
	Stderr   string
	ExitCode int
}

func (err *EngineError) Error() string {
	msg := strings.TrimSpace(err.Stderr)
	if msg == "" {
		return fmt.Sprintf("engine %s exited with status %d", err.Command, err.ExitCode)
	}
	return fmt.Sprintf("engine %s exited with status %d: %s", err.Command, err.ExitCode, msg)
}
