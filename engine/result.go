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
	"errors"
	"fmt"

	"github.com/algorand/go-algorand-sdk/v2/types"
	"github.com/algorand/msgp/msgp"

	"github.com/algorand/go-algojig/data/basics"
	"github.com/algorand/go-algojig/protocol"
)

// ErrEmptyResult is returned by DecodeResult for an empty stream.
var ErrEmptyResult = errors.New("engine result is empty")

// Result is a decoded eval stream: the produced block, the post-eval data of
// every account the group touched, and every box in the ledger keyed by its
// kvstore key. Boxes is nil when the engine did not report boxes at all.
type Result struct {
	Block    types.Block
	Accounts map[types.Address]basics.AccountData
	Boxes    map[string][]byte

	// BlockBytes is the block section as the engine encoded it.
	BlockBytes []byte
}

// splitSections cuts a stream of concatenated msgpack objects into one slice
// per object.
func splitSections(b []byte) ([][]byte, error) {
	var sections [][]byte
	for len(b) > 0 {
		rest, err := msgp.Skip(b)
		if err != nil {
			return nil, fmt.Errorf("result section %d: %w", len(sections), err)
		}
		sections = append(sections, b[:len(b)-len(rest)])
		b = rest
	}
	return sections, nil
}

// DecodeResult decodes the stream eval prints: a block, then an account map,
// then a box map. Older engines stop after the block or after the accounts;
// missing accounts decode as an empty map and missing boxes as nil.
func DecodeResult(b []byte) (*Result, error) {
	sections, err := splitSections(b)
	if err != nil {
		return nil, err
	}
	if len(sections) == 0 {
		return nil, ErrEmptyResult
	}

	res := &Result{
		Accounts:   make(map[types.Address]basics.AccountData),
		BlockBytes: sections[0],
	}
	if err = protocol.DecodeLenient(sections[0], &res.Block); err != nil {
		return nil, fmt.Errorf("result block: %w", err)
	}

	if len(sections) > 1 {
		var accounts map[string]basics.AccountData
		if err = protocol.DecodeLenient(sections[1], &accounts); err != nil {
			return nil, fmt.Errorf("result accounts: %w", err)
		}
		for raw, ad := range accounts {
			var addr types.Address
			if len(raw) != len(addr) {
				return nil, fmt.Errorf("result accounts: key of %d bytes is not an address", len(raw))
			}
			copy(addr[:], raw)
			res.Accounts[addr] = ad
		}
	}

	if len(sections) > 2 {
		var boxes map[string][]byte
		if err = protocol.DecodeLenient(sections[2], &boxes); err != nil {
			return nil, fmt.Errorf("result boxes: %w", err)
		}
		res.Boxes = make(map[string][]byte, len(boxes))
		for k, v := range boxes {
			if v == nil {
				v = []byte{}
			}
			res.Boxes[k] = v
		}
	}
	return res, nil
}
