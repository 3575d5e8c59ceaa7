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
	"os"

	"github.com/algorand/go-algojig/config"
	"github.com/algorand/go-algojig/logging"
	"github.com/algorand/go-algojig/protocol"
	"github.com/algorand/go-algojig/util/db"
)

// TestProto is the consensus version name CreateDatabases stores on blocks.
const TestProto = "future"

// CreateDatabases lays out empty tracker and block databases the way engine
// init does, for a block timestamp ts. Tests use it in place of the engine.
func CreateDatabases(ctx context.Context, cfg config.Local, ts int64, log logging.Logger) error {
	if err := os.RemoveAll(cfg.WorkDir); err != nil {
		return err
	}
	if err := os.MkdirAll(cfg.WorkDir, 0700); err != nil {
		return err
	}
	err := withDB(cfg.TrackerDBPath(), false, log, func(dbs db.Accessor) error {
		return dbs.AtomicContext(ctx, "createTracker", func(tx *sql.Tx) error {
			return CreateTrackerSchema(ctx, tx)
		})
	})
	if err != nil {
		return err
	}
	hdr := protocol.EncodeReflect(map[string]interface{}{
		"proto": TestProto,
		"rnd":   uint64(1),
		"ts":    ts,
	})
	return withDB(cfg.BlockDBPath(), false, log, func(dbs db.Accessor) error {
		return dbs.AtomicContext(ctx, "createBlocks", func(tx *sql.Tx) error {
			return CreateBlockSchema(ctx, tx, TestProto, hdr)
		})
	})
}
