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

package basics

import (
	"encoding/hex"
	"fmt"
	"maps"
	"slices"
)

// TealType is an enum of the types in a TEAL program: Bytes and Uint. The
// numeric values are the ones stored on disk and reported by the engine.
type TealType uint64

const (
	// TealBytesType represents the type of byte slice in a TEAL program
	TealBytesType TealType = 1

	// TealUintType represents the type of uint in a TEAL program
	TealUintType TealType = 2
)

func (tt TealType) String() string {
	switch tt {
	case TealBytesType:
		return "b"
	case TealUintType:
		return "u"
	}
	return "?"
}

// TealValue contains type information and a value, representing a value in a
// TEAL program
type TealValue struct {
	_struct struct{} `codec:",omitempty,omitemptyarray"`

	Type TealType `codec:"tt"`

	// A string instead of []byte so that TealValue copies by value
	Bytes string `codec:"tb,allocbound=-"`
	Uint  uint64 `codec:"ui"`
}

// TealUint returns a TealValue holding a uint.
func TealUint(v uint64) TealValue {
	return TealValue{Type: TealUintType, Uint: v}
}

// TealBytes returns a TealValue holding a byte slice.
func TealBytes(b []byte) TealValue {
	return TealValue{Type: TealBytesType, Bytes: string(b)}
}

// TealString returns a TealValue holding the bytes of s.
func TealString(s string) TealValue {
	return TealValue{Type: TealBytesType, Bytes: s}
}

// String renders bytes in hex and uints in decimal.
func (tv TealValue) String() string {
	if tv.Type == TealBytesType {
		return "0x" + hex.EncodeToString([]byte(tv.Bytes))
	}
	return fmt.Sprintf("%d", tv.Uint)
}

// TealKeyValue represents a key/value store for use in an application's
// LocalState or GlobalState
//
//msgp:allocbound TealKeyValue 4096
type TealKeyValue map[string]TealValue

// Clone returns a copy of a TealKeyValue that may be modified without
// affecting the original
func (tk TealKeyValue) Clone() TealKeyValue {
	if tk == nil {
		return nil
	}
	return maps.Clone(tk)
}

// SortedKeys returns the keys in byte order.
func (tk TealKeyValue) SortedKeys() []string {
	return slices.Sorted(maps.Keys(tk))
}

// StateSchema sets maximums on the number of each type that may be stored
type StateSchema struct {
	_struct struct{} `codec:",omitempty,omitemptyarray"`

	NumUint      uint64 `codec:"nui"`
	NumByteSlice uint64 `codec:"nbs"`
}

// StateSchemas is a thin wrapper around the LocalStateSchema and the
// GlobalStateSchema, since they are often needed together
type StateSchemas struct {
	_struct struct{} `codec:",omitempty,omitemptyarray"`

	LocalStateSchema  StateSchema `codec:"lsch"`
	GlobalStateSchema StateSchema `codec:"gsch"`
}
