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
	"maps"
	"slices"

	"github.com/algorand/go-algojig/data/basics"
)

// creatableIndex tracks every asset and app id known to the ledger. Assets
// and apps share one id space, as they do in the engine, so a single index
// serves both and hands out ids for either.
type creatableIndex struct {
	kinds map[basics.CreatableIndex]basics.CreatableType
	max   basics.CreatableIndex
}

func makeCreatableIndex() creatableIndex {
	return creatableIndex{kinds: make(map[basics.CreatableIndex]basics.CreatableType)}
}

// next is the id the next creation without an explicit id receives:
// one more than the largest id in use.
func (ci *creatableIndex) next() basics.CreatableIndex {
	return ci.max + 1
}

// txnCounter is the value of the block header transaction counter that makes
// the engine allocate ids above every id in use.
func (ci *creatableIndex) txnCounter() uint64 {
	if len(ci.kinds) == 0 {
		return 0
	}
	return uint64(ci.max) + 1
}

func (ci *creatableIndex) lookup(cidx basics.CreatableIndex) (basics.CreatableType, bool) {
	ctype, ok := ci.kinds[cidx]
	return ctype, ok
}

// allocate records a new creatable. Id 0 picks the next free id.
func (ci *creatableIndex) allocate(cidx basics.CreatableIndex, ctype basics.CreatableType) (basics.CreatableIndex, error) {
	if cidx == 0 {
		cidx = ci.next()
	}
	if existing, ok := ci.kinds[cidx]; ok {
		return 0, CreatableExistsError{Index: cidx, Type: existing}
	}
	ci.kinds[cidx] = ctype
	if cidx > ci.max {
		ci.max = cidx
	}
	return cidx, nil
}

func (ci *creatableIndex) remove(cidx basics.CreatableIndex) {
	delete(ci.kinds, cidx)
	if cidx != ci.max {
		return
	}
	ci.max = 0
	for id := range ci.kinds {
		ci.max = max(ci.max, id)
	}
}

// sorted returns the ids of the given type in ascending order.
func (ci *creatableIndex) sorted(ctype basics.CreatableType) []basics.CreatableIndex {
	ids := slices.Sorted(maps.Keys(ci.kinds))
	return slices.DeleteFunc(ids, func(id basics.CreatableIndex) bool { return ci.kinds[id] != ctype })
}
