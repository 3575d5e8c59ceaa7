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

package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/algorand/go-codec/codec"

	"github.com/algorand/go-algojig/protocol"
)

// txnCounterRound is the block whose header the engine reads its transaction
// counter from. New asset and app ids are allocated above that counter.
const txnCounterRound = 1

// txnCounterField is the header field holding the transaction counter.
const txnCounterField = "tc"

// ErrNoEntry is returned when the blocks table has no row for Round.
type ErrNoEntry struct {
	Round uint64
}

func (err ErrNoEntry) Error() string {
	return fmt.Sprintf("block %d not found in the block database", err.Round)
}

func blockGetHdr(ctx context.Context, tx *sql.Tx, rnd uint64) (map[string]codec.Raw, error) {
	var buf []byte
	err := tx.QueryRowContext(ctx, "SELECT hdrdata FROM blocks WHERE rnd=?", rnd).Scan(&buf)
	if err != nil {
		if err == sql.ErrNoRows {
			err = ErrNoEntry{Round: rnd}
		}
		return nil, err
	}

	// Only tc is touched. Every other field is carried over byte for byte
	// so header fields this package does not know about survive.
	hdr := make(map[string]codec.Raw)
	if err = protocol.DecodeLenient(buf, &hdr); err != nil {
		return nil, fmt.Errorf("block %d header: %w", rnd, err)
	}
	return hdr, nil
}

// SetTxnCounter rewrites the transaction counter in the header of round 1.
func SetTxnCounter(ctx context.Context, tx *sql.Tx, tc uint64) error {
	hdr, err := blockGetHdr(ctx, tx, txnCounterRound)
	if err != nil {
		return err
	}
	hdr[txnCounterField] = codec.Raw(protocol.EncodeReflect(tc))

	_, err = tx.ExecContext(ctx, "UPDATE blocks SET hdrdata = ? WHERE rnd = ?", protocol.EncodeReflect(hdr), txnCounterRound)
	return err
}

// TxnCounter reads the transaction counter from the header of round 1. A
// header without one holds 0.
func TxnCounter(ctx context.Context, tx *sql.Tx) (uint64, error) {
	hdr, err := blockGetHdr(ctx, tx, txnCounterRound)
	if err != nil {
		return 0, err
	}
	raw, ok := hdr[txnCounterField]
	if !ok {
		return 0, nil
	}
	var tc uint64
	err = protocol.DecodeReflect(raw, &tc)
	return tc, err
}
