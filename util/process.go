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

package util

import (
	"bytes"
	"errors"
	"io"
	"os/exec"
)

// ProcessOutput is what a finished subprocess left behind.
type ProcessOutput struct {
	Stdout   []byte
	Stderr   []byte
	ExitCode int
}

// ExecAndCaptureOutput runs the specified command and args and captures
// stdout and stderr. A non-zero exit status is reported through ExitCode,
// not through the returned error, which is reserved for failures to start
// or wait on the process.
func ExecAndCaptureOutput(stdin io.Reader, command string, args ...string) (ProcessOutput, error) {
	var stdout, stderr bytes.Buffer

	subcmd := exec.Command(command, args...)
	subcmd.Stdin = stdin
	subcmd.Stdout = &stdout
	subcmd.Stderr = &stderr

	err := subcmd.Run()
	out := ProcessOutput{
		Stdout: stdout.Bytes(),
		Stderr: stderr.Bytes(),
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		out.ExitCode = exitErr.ExitCode()
		return out, nil
	}
	return out, err
}
