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

import (
	"testing"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/algorand/go-algojig/data/basics"
	"github.com/algorand/go-algojig/test/partitiontest"
)

func TestCreatableIndexEmpty(t *testing.T) {
	partitiontest.PartitionTest(t)
	t.Parallel()

	ci := makeCreatableIndex()
	require.Equal(t, basics.CreatableIndex(1), ci.next())
	require.Zero(t, ci.txnCounter())
	require.Empty(t, ci.sorted(basics.AssetCreatable))
}

func TestCreatableIndexRemove(t *testing.T) {
	partitiontest.PartitionTest(t)
	t.Parallel()

	ci := makeCreatableIndex()
	for _, id := range []basics.CreatableIndex{3, 10, 7} {
		_, err := ci.allocate(id, basics.AppCreatable)
		require.NoError(t, err)
	}
	require.Equal(t, uint64(11), ci.txnCounter())

	ci.remove(10)
	require.Equal(t, basics.CreatableIndex(8), ci.next())
	ci.remove(3)
	require.Equal(t, basics.CreatableIndex(8), ci.next())
	ci.remove(7)
	require.Equal(t, basics.CreatableIndex(1), ci.next())
	require.Zero(t, ci.txnCounter())
}

// TestCreatableIndexAllocation checks that allocation over a mix of explicit
// and implicit ids of both types never hands out an id twice, and that
// implicit ids are always above every id in use.
func TestCreatableIndexAllocation(t *testing.T) {
	partitiontest.PartitionTest(t)

	rapid.Check(t, func(t1 *rapid.T) {
		ci := makeCreatableIndex()
		seen := make(map[basics.CreatableIndex]basics.CreatableType)

		steps := rapid.IntRange(1, 64).Draw(t1, "steps")
		for i := 0; i < steps; i++ {
			explicit := basics.CreatableIndex(rapid.Uint64Range(0, 100).Draw(t1, "id"))
			ctype := basics.CreatableType(rapid.IntRange(0, 1).Draw(t1, "ctype"))

			var highest basics.CreatableIndex
			for id := range seen {
				highest = max(highest, id)
			}

			got, err := ci.allocate(explicit, ctype)
			if prev, ok := seen[explicit]; ok && explicit != 0 {
				var exists CreatableExistsError
				require.ErrorAs(t1, err, &exists)
				require.Equal(t1, prev, exists.Type)
				continue
			}
			require.NoError(t1, err)
			if explicit == 0 {
				require.Equal(t1, highest+1, got)
			} else {
				require.Equal(t1, explicit, got)
			}
			_, dup := seen[got]
			require.False(t1, dup, "id %d allocated twice", got)
			seen[got] = ctype
		}

		var highest basics.CreatableIndex
		for id := range seen {
			highest = max(highest, id)
		}
		require.Equal(t1, uint64(highest)+1, ci.txnCounter())
		require.Equal(t1, len(seen), len(ci.sorted(basics.AssetCreatable))+len(ci.sorted(basics.AppCreatable)))
	})
}
