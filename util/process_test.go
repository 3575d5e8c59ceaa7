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
	"os/exec"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/algorand/go-algojig/test/partitiontest"
)

func requireShell(t *testing.T) string {
	sh, err := exec.LookPath("sh")
	if err != nil {
		t.Skip("no shell available")
	}
	return sh
}

func TestExecAndCaptureOutput(t *testing.T) {
	partitiontest.PartitionTest(t)
	t.Parallel()
	sh := requireShell(t)

	out, err := ExecAndCaptureOutput(nil, sh, "-c", "printf 'out'; printf 'err' >&2")
	require.NoError(t, err)
	require.Equal(t, "out", string(out.Stdout))
	require.Equal(t, "err", string(out.Stderr))
	require.Zero(t, out.ExitCode)
}

func TestExecAndCaptureOutputExitCode(t *testing.T) {
	partitiontest.PartitionTest(t)
	t.Parallel()
	sh := requireShell(t)

	out, err := ExecAndCaptureOutput(nil, sh, "-c", "echo failed >&2; exit 3")
	require.NoError(t, err)
	require.Equal(t, 3, out.ExitCode)
	require.Equal(t, "failed\n", string(out.Stderr))
}

func TestExecAndCaptureOutputStdin(t *testing.T) {
	partitiontest.PartitionTest(t)
	t.Parallel()
	sh := requireShell(t)

	out, err := ExecAndCaptureOutput(strings.NewReader("int 1\n"), sh, "-c", "cat")
	require.NoError(t, err)
	require.Equal(t, "int 1\n", string(out.Stdout))
}

func TestExecAndCaptureOutputMissingBinary(t *testing.T) {
	partitiontest.PartitionTest(t)
	t.Parallel()

	_, err := ExecAndCaptureOutput(nil, "/nonexistent/algojig_engine")
	require.Error(t, err)
}
