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

// Package store writes the harness's ledger image into the sqlite databases
// the evaluation engine reads on eval, and reads it back.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/algorand/go-algorand-sdk/v2/types"
	"golang.org/x/sync/errgroup"

	"github.com/algorand/go-algojig/config"
	"github.com/algorand/go-algojig/data/basics"
	"github.com/algorand/go-algojig/ledger/encoded"
	"github.com/algorand/go-algojig/logging"
	"github.com/algorand/go-algojig/util/db"
)

// AccountRecord is an accountbase row together with the resources rows that
// refer to it.
type AccountRecord struct {
	Address   types.Address
	Data      encoded.BaseAccountData
	Resources []ResourceRecord
}

// ResourceRecord is a resources row.
type ResourceRecord struct {
	Index basics.CreatableIndex
	Data  encoded.ResourcesData
}

// Type is the kind of creatable the row describes.
func (r ResourceRecord) Type() basics.CreatableType {
	if r.Data.IsApp() {
		return basics.AppCreatable
	}
	return basics.AssetCreatable
}

// CreatableRecord is an assetcreators row.
type CreatableRecord struct {
	Index   basics.CreatableIndex
	Type    basics.CreatableType
	Creator types.Address
}

// KVRecord is a kvstore row.
type KVRecord struct {
	Key   string
	Value []byte
}

// Snapshot is the complete set of rows the harness owns in the engine's
// databases. Accounts are written in slice order, which fixes their rowids.
type Snapshot struct {
	Accounts   []AccountRecord
	Creatables []CreatableRecord
	KVs        []KVRecord
	TxnCounter uint64
}

// Write stores snap into the tracker and block databases named by cfg. Both
// files must already have been created by engine init. The two databases are
// independent and are written concurrently.
func Write(ctx context.Context, cfg config.Local, snap *Snapshot, log logging.Logger) error {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return withDB(cfg.TrackerDBPath(), false, log, func(dbs db.Accessor) error {
			return dbs.AtomicContext(gctx, "writeTracker", func(tx *sql.Tx) error {
				return writeTracker(gctx, tx, snap)
			})
		})
	})
	g.Go(func() error {
		return withDB(cfg.BlockDBPath(), false, log, func(dbs db.Accessor) error {
			return dbs.AtomicContext(gctx, "writeTxnCounter", func(tx *sql.Tx) error {
				return SetTxnCounter(gctx, tx, snap.TxnCounter)
			})
		})
	})
	return g.Wait()
}

// Read loads the rows the harness owns back from the databases named by cfg.
func Read(ctx context.Context, cfg config.Local, log logging.Logger) (*Snapshot, error) {
	snap := new(Snapshot)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return withDB(cfg.TrackerDBPath(), true, log, func(dbs db.Accessor) error {
			return dbs.AtomicContext(gctx, "readTracker", func(tx *sql.Tx) (err error) {
				snap.Accounts, snap.Creatables, snap.KVs, err = readTracker(gctx, tx)
				return
			})
		})
	})
	g.Go(func() error {
		return withDB(cfg.BlockDBPath(), true, log, func(dbs db.Accessor) error {
			return dbs.AtomicContext(gctx, "readTxnCounter", func(tx *sql.Tx) (err error) {
				snap.TxnCounter, err = TxnCounter(gctx, tx)
				return
			})
		})
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return snap, nil
}

func withDB(filename string, readOnly bool, log logging.Logger, fn func(db.Accessor) error) error {
	dbs, err := db.MakeAccessor(filename, readOnly, false, log)
	if err != nil {
		return fmt.Errorf("opening %s: %w", filename, err)
	}
	defer dbs.Close()
	return fn(dbs)
}

// writeTracker inserts every row of snap. The tables are expected to hold
// only what engine init put there.
func writeTracker(ctx context.Context, tx *sql.Tx, snap *Snapshot) error {
	start := time.Now()
	w, err := MakeAccountsSQLWriter(ctx, tx)
	if err != nil {
		return err
	}
	defer w.Close()

	for _, acct := range snap.Accounts {
		rowid, err := w.InsertAccount(acct.Address, acct.Data)
		if err != nil {
			return fmt.Errorf("account %s: %w", acct.Address, err)
		}
		for _, res := range acct.Resources {
			if err := w.InsertResource(rowid, res.Index, res.Type(), res.Data); err != nil {
				return err
			}
		}
	}
	for _, c := range snap.Creatables {
		if err := w.InsertCreatable(c.Index, c.Type, c.Creator); err != nil {
			return fmt.Errorf("creatable %d: %w", c.Index, err)
		}
	}
	for _, kv := range snap.KVs {
		if err := w.UpsertKvPair(kv.Key, kv.Value); err != nil {
			return err
		}
	}
	ledgerWriteMicros.AddMicrosecondsSince(start, nil)
	return nil
}

func readTracker(ctx context.Context, tx *sql.Tx) ([]AccountRecord, []CreatableRecord, []KVRecord, error) {
	accounts, err := readAccounts(ctx, tx)
	if err != nil {
		return nil, nil, nil, err
	}
	creatables, err := readCreatables(ctx, tx)
	if err != nil {
		return nil, nil, nil, err
	}
	kvs, err := readKvPairs(ctx, tx)
	if err != nil {
		return nil, nil, nil, err
	}
	return accounts, creatables, kvs, nil
}
