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

	"github.com/algorand/go-algorand-sdk/v2/types"

	"github.com/algorand/go-algojig/data/basics"
	"github.com/algorand/go-algojig/ledger/encoded"
	"github.com/algorand/go-algojig/protocol"
)

type accountsSQLWriter struct {
	insertStmt, insertResourceStmt, upsertKvPairStmt, insertCreatableIdxStmt *sql.Stmt
	resourcesCreatableType                                                 bool
}

// MakeAccountsSQLWriter prepares the statements that fill the tracker tables.
// The resources insert carries a ctype column only when the engine's schema
// has one.
func MakeAccountsSQLWriter(ctx context.Context, tx *sql.Tx) (w *accountsSQLWriter, err error) {
	w = new(accountsSQLWriter)

	w.resourcesCreatableType, err = resourcesHaveCreatableType(ctx, tx)
	if err != nil {
		return
	}

	w.insertStmt, err = tx.PrepareContext(ctx, "INSERT INTO accountbase (address, data) VALUES (?, ?)")
	if err != nil {
		return
	}

	if w.resourcesCreatableType {
		w.insertResourceStmt, err = tx.PrepareContext(ctx, "INSERT INTO resources(addrid, aidx, data, ctype) VALUES(?, ?, ?, ?)")
	} else {
		w.insertResourceStmt, err = tx.PrepareContext(ctx, "INSERT INTO resources(addrid, aidx, data) VALUES(?, ?, ?)")
	}
	if err != nil {
		return
	}

	w.upsertKvPairStmt, err = tx.PrepareContext(ctx, "INSERT INTO kvstore (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value=excluded.value")
	if err != nil {
		return
	}

	w.insertCreatableIdxStmt, err = tx.PrepareContext(ctx, "INSERT INTO assetcreators (asset, creator, ctype) VALUES (?, ?, ?)")
	if err != nil {
		return
	}
	return
}

// Close closes the prepared statements.
func (w *accountsSQLWriter) Close() {
	for _, stmt := range []**sql.Stmt{
		&w.insertStmt,
		&w.insertResourceStmt,
		&w.upsertKvPairStmt,
		&w.insertCreatableIdxStmt,
	} {
		if (*stmt) != nil {
			(*stmt).Close()
			*stmt = nil
		}
	}
}

// InsertAccount stores an account record and returns its rowid, which the
// resources table refers to as addrid.
func (w *accountsSQLWriter) InsertAccount(addr types.Address, data encoded.BaseAccountData) (rowid int64, err error) {
	result, err := w.insertStmt.Exec(addr[:], protocol.EncodeReflect(&data))
	if err != nil {
		return
	}
	rowid, err = result.LastInsertId()
	return
}

// InsertResource stores the (account, creatable) record.
func (w *accountsSQLWriter) InsertResource(addrid int64, aidx basics.CreatableIndex, ctype basics.CreatableType, data encoded.ResourcesData) error {
	var err error
	if w.resourcesCreatableType {
		_, err = w.insertResourceStmt.Exec(addrid, aidx, protocol.EncodeReflect(&data), ctype)
	} else {
		_, err = w.insertResourceStmt.Exec(addrid, aidx, protocol.EncodeReflect(&data))
	}
	if err != nil {
		return fmt.Errorf("resource %d of addrid %d: %w", aidx, addrid, err)
	}
	return nil
}

// UpsertKvPair stores a kvstore entry, replacing an existing value.
func (w *accountsSQLWriter) UpsertKvPair(key string, value []byte) error {
	// Keys contain 0-bytes. Cast to []byte so sqlite stores a blob and not
	// a string truncated at the first 0.
	if value == nil {
		value = []byte{}
	}
	_, err := w.upsertKvPairStmt.Exec([]byte(key), value)
	return err
}

// InsertCreatable records the creator of an asset or app.
func (w *accountsSQLWriter) InsertCreatable(cidx basics.CreatableIndex, ctype basics.CreatableType, creator types.Address) error {
	_, err := w.insertCreatableIdxStmt.Exec(cidx, creator[:], ctype)
	return err
}

// readAccounts loads accountbase and resources in rowid order.
func readAccounts(ctx context.Context, tx *sql.Tx) ([]AccountRecord, error) {
	rows, err := tx.QueryContext(ctx, "SELECT rowid, address, data FROM accountbase ORDER BY rowid")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var accounts []AccountRecord
	byRowID := make(map[int64]int)
	for rows.Next() {
		var rowid int64
		var addrbuf, buf []byte
		if err = rows.Scan(&rowid, &addrbuf, &buf); err != nil {
			return nil, err
		}
		var rec AccountRecord
		if len(addrbuf) != len(rec.Address) {
			return nil, fmt.Errorf("account rowid %d: address of %d bytes", rowid, len(addrbuf))
		}
		copy(rec.Address[:], addrbuf)
		if err = protocol.DecodeLenient(buf, &rec.Data); err != nil {
			return nil, fmt.Errorf("account %s: %w", rec.Address, err)
		}
		byRowID[rowid] = len(accounts)
		accounts = append(accounts, rec)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}

	resRows, err := tx.QueryContext(ctx, "SELECT addrid, aidx, data FROM resources ORDER BY addrid, aidx")
	if err != nil {
		return nil, err
	}
	defer resRows.Close()
	for resRows.Next() {
		var addrid int64
		var aidx uint64
		var buf []byte
		if err = resRows.Scan(&addrid, &aidx, &buf); err != nil {
			return nil, err
		}
		i, ok := byRowID[addrid]
		if !ok {
			return nil, fmt.Errorf("resource %d refers to unknown addrid %d", aidx, addrid)
		}
		res := ResourceRecord{Index: basics.CreatableIndex(aidx)}
		if err = protocol.DecodeLenient(buf, &res.Data); err != nil {
			return nil, fmt.Errorf("resource %d of %s: %w", aidx, accounts[i].Address, err)
		}
		accounts[i].Resources = append(accounts[i].Resources, res)
	}
	return accounts, resRows.Err()
}

func readCreatables(ctx context.Context, tx *sql.Tx) ([]CreatableRecord, error) {
	rows, err := tx.QueryContext(ctx, "SELECT asset, creator, ctype FROM assetcreators ORDER BY asset")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []CreatableRecord
	for rows.Next() {
		var cidx, ctype uint64
		var buf []byte
		if err = rows.Scan(&cidx, &buf, &ctype); err != nil {
			return nil, err
		}
		rec := CreatableRecord{Index: basics.CreatableIndex(cidx), Type: basics.CreatableType(ctype)}
		copy(rec.Creator[:], buf)
		res = append(res, rec)
	}
	return res, rows.Err()
}

func readKvPairs(ctx context.Context, tx *sql.Tx) ([]KVRecord, error) {
	rows, err := tx.QueryContext(ctx, "SELECT key, value FROM kvstore ORDER BY key")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []KVRecord
	for rows.Next() {
		var key, value []byte
		if err = rows.Scan(&key, &value); err != nil {
			return nil, err
		}
		if value == nil {
			value = []byte{}
		}
		res = append(res, KVRecord{Key: string(key), Value: value})
	}
	return res, rows.Err()
}
