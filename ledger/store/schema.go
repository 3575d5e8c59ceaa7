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
)

// trackerSchema is the subset of the engine's account tracker tables the
// harness writes to. The engine creates them itself on init; the harness only
// creates them when standing in for the engine in tests.
var trackerSchema = []string{
	`CREATE TABLE IF NOT EXISTS acctrounds (
		id string primary key,
		rnd integer)`,
	`CREATE TABLE IF NOT EXISTS accountbase (
		address blob primary key,
		data blob)`,
	`CREATE TABLE IF NOT EXISTS assetcreators (
		asset integer primary key,
		creator blob)`,
	`CREATE TABLE IF NOT EXISTS resources (
		addrid INTEGER NOT NULL,
		aidx INTEGER NOT NULL,
		data BLOB NOT NULL,
		PRIMARY KEY (addrid, aidx) ) WITHOUT ROWID`,
	`CREATE TABLE IF NOT EXISTS kvstore (
		key blob primary key,
		value blob)`,
}

var creatablesMigration = []string{
	`ALTER TABLE assetcreators ADD COLUMN ctype INTEGER DEFAULT 0`,
}

// resourcesCreatableTypeMigration is only present in newer engine builds.
var resourcesCreatableTypeMigration = []string{
	`ALTER TABLE resources ADD COLUMN ctype INTEGER NOT NULL DEFAULT -1`,
}

var blockSchema = []string{
	`CREATE TABLE IF NOT EXISTS blocks (
		rnd integer primary key,
		proto text,
		hdrdata blob,
		blkdata blob,
		certdata blob)`,
}

func execAll(ctx context.Context, tx *sql.Tx, stmts []string) error {
	for _, stmt := range stmts {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

// CreateTrackerSchema creates the account tracker tables in the layout of
// the newest engine build, resources.ctype included.
func CreateTrackerSchema(ctx context.Context, tx *sql.Tx) error {
	for _, stmts := range [][]string{trackerSchema, creatablesMigration, resourcesCreatableTypeMigration} {
		if err := execAll(ctx, tx, stmts); err != nil {
			return fmt.Errorf("tracker schema: %w", err)
		}
	}
	_, err := tx.ExecContext(ctx, "INSERT OR REPLACE INTO acctrounds(id, rnd) VALUES('acctbase', 0)")
	return err
}

// CreateBlockSchema creates the blocks table and stores hdr as the header of
// rounds 0 and 1, the way engine init leaves it.
func CreateBlockSchema(ctx context.Context, tx *sql.Tx, proto string, hdr []byte) error {
	if err := execAll(ctx, tx, blockSchema); err != nil {
		return fmt.Errorf("block schema: %w", err)
	}
	for rnd := 0; rnd <= 1; rnd++ {
		_, err := tx.ExecContext(ctx, "INSERT INTO blocks (rnd, proto, hdrdata, blkdata, certdata) VALUES (?, ?, ?, ?, ?)",
			rnd, proto, hdr, []byte{0x80}, []byte{0x80})
		if err != nil {
			return err
		}
	}
	return nil
}

// resourcesHaveCreatableType tells whether the engine build that created the
// tracker database keeps a ctype column on resources.
func resourcesHaveCreatableType(ctx context.Context, e *sql.Tx) (bool, error) {
	var present int
	err := e.QueryRowContext(ctx, "SELECT 1 FROM pragma_table_info('resources') WHERE name='ctype'").Scan(&present)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return present == 1, nil
}
