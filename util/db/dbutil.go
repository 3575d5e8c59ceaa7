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

// Package db defines database utility functions.
//
// These functions work on the sqlite databases shared with the evaluation
// engine. Other databases may not work with functions in this package.
package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/mattn/go-sqlite3"

	"github.com/algorand/go-algojig/logging"
)

// busy is the time to wait for a sqlite lock from another process, in ms.
// The engine opens the same files once the harness is done with them, so
// contention only shows up when a previous engine run is still exiting.
const busy = 1000

// maxTxRetries bounds how many times a transaction is retried on SQLITE_BUSY
// or SQLITE_LOCKED before giving up.
const maxTxRetries = 100

// An Accessor manages a sqlite database handle.
type Accessor struct {
	Handle   *sql.DB
	readOnly bool
	log      logging.Logger
}

// MakeAccessor opens the database at dbfilename. An in-memory accessor is
// private to the handle and is used by tests.
func MakeAccessor(dbfilename string, readOnly bool, inMemory bool, log logging.Logger) (Accessor, error) {
	if log == nil {
		log = logging.Base()
	}
	db := Accessor{readOnly: readOnly, log: log}

	var err error
	db.Handle, err = sql.Open("sqlite3", URI(dbfilename, readOnly, inMemory))
	if err != nil {
		return db, err
	}
	if inMemory {
		// every pooled connection to ":memory:" would otherwise see its own database
		db.Handle.SetMaxOpenConns(1)
	}
	return db, db.Handle.Ping()
}

// Close closes the connection.
func (db *Accessor) Close() {
	if db.Handle != nil {
		db.Handle.Close()
		db.Handle = nil
	}
}

// Atomic executes a piece of code with respect to the database atomically.
func (db Accessor) Atomic(fnDescription string, fn idemFn) error {
	return db.AtomicContext(context.Background(), fnDescription, fn)
}

// AtomicContext is Atomic with a caller supplied context for acquiring the
// connection and beginning the transaction.
func (db Accessor) AtomicContext(ctx context.Context, fnDescription string, fn idemFn) (err error) {
	descr := "w"
	if db.readOnly {
		descr = "r"
	}

	start := time.Now()
	defer func() {
		delta := time.Since(start)
		if delta > time.Second {
			db.log.With("description", fnDescription).Warnf("dbatomic(%v): tx took %v", descr, delta)
		} else if delta > time.Millisecond {
			db.log.With("description", fnDescription).Debugf("dbatomic(%v): tx took %v", descr, delta)
		}
	}()

	// the sql library drops panics raised inside an active transaction
	guardedFn := func(tx *sql.Tx) (err error) {
		defer func() {
			if r := recover(); r != nil {
				var ok bool
				err, ok = r.(error)
				if !ok {
					err = fmt.Errorf("%v", r)
				}
			}
		}()
		return fn(tx)
	}

	conn, err := db.Handle.Conn(ctx)
	if err != nil {
		return err
	}
	defer conn.Close()

	for i := 0; ; i++ {
		if i >= maxTxRetries {
			db.log.With("description", fnDescription).Errorf("dbatomic(%v): %d retries (last err: %v)", descr, i, err)
			return err
		}
		if i > 0 {
			db.log.With("description", fnDescription).Warnf("dbatomic(%v): retry %d (last err: %v)", descr, i, err)
		}

		var tx *sql.Tx
		tx, err = conn.BeginTx(ctx, &sql.TxOptions{ReadOnly: db.readOnly})
		if dbretry(err) {
			continue
		} else if err != nil {
			return err
		}

		err = guardedFn(tx)
		if err != nil {
			tx.Rollback()
			if dbretry(err) {
				continue
			}
			return err
		}

		err = tx.Commit()
		if err == nil || !dbretry(err) {
			return err
		}
	}
}

// URI returns the sqlite URI given a db filename as an input.
func URI(filename string, readOnly bool, memory bool) string {
	if memory {
		return fmt.Sprintf("file:%s?mode=memory&_busy_timeout=%d", filename, busy)
	}
	uri := fmt.Sprintf("file:%s?_busy_timeout=%d&_synchronous=full", filename, busy)
	if readOnly {
		uri += "&mode=ro"
	} else {
		uri += "&_txlock=immediate"
	}
	return uri
}

// dbretry returns true if the error might be temporary
func dbretry(obj error) bool {
	err, ok := obj.(sqlite3.Error)
	return ok && (err.Code == sqlite3.ErrLocked || err.Code == sqlite3.ErrBusy)
}

type idemFn func(tx *sql.Tx) error
