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
	"path/filepath"
	"testing"

	"github.com/algorand/go-algorand-sdk/v2/types"
	"github.com/stretchr/testify/require"

	"github.com/algorand/go-algojig/config"
	"github.com/algorand/go-algojig/data/basics"
	"github.com/algorand/go-algojig/ledger/encoded"
	"github.com/algorand/go-algojig/logging"
	"github.com/algorand/go-algojig/protocol"
	"github.com/algorand/go-algojig/test/partitiontest"
	"github.com/algorand/go-algojig/util/db"
)

func testConfig(t *testing.T) config.Local {
	cfg := config.GetDefaultLocal()
	cfg.WorkDir = filepath.Join(t.TempDir(), "jig")
	return cfg
}

func testSnapshot() *Snapshot {
	creator := types.Address{1}
	holder := types.Address{2}
	app := basics.AppIndex(9)

	holding := encoded.MakeResourcesData()
	holding.SetAssetHolding(basics.AssetHolding{Amount: 3})

	owned := encoded.MakeResourcesData()
	owned.SetAssetHolding(basics.AssetHolding{Amount: 97})
	owned.SetAssetParams(basics.AssetParams{Total: 100, UnitName: "T", Manager: creator}, true)

	appParams := encoded.MakeResourcesData()
	appParams.SetAppParams(basics.AppParams{
		ApprovalProgram:   []byte{0x06, 0x81, 0x01},
		ClearStateProgram: []byte{0x06, 0x81, 0x01},
		GlobalState:       basics.TealKeyValue{"counter": basics.TealUint(4)},
	}, false)

	return &Snapshot{
		Accounts: []AccountRecord{
			{
				Address:   creator,
				Data:      encoded.BaseAccountData{MicroAlgos: 100_000_000, TotalAssets: 1, TotalAppParams: 1},
				Resources: []ResourceRecord{{Index: 8, Data: owned}, {Index: 9, Data: appParams}},
			},
			{
				Address:   holder,
				Data:      encoded.BaseAccountData{MicroAlgos: 1_000_000, TotalAssets: 1},
				Resources: []ResourceRecord{{Index: 8, Data: holding}},
			},
			{
				Address: app.Address(),
				Data:    encoded.BaseAccountData{MicroAlgos: 200_000, TotalBoxes: 1, TotalBoxBytes: 7},
			},
		},
		Creatables: []CreatableRecord{
			{Index: 8, Type: basics.AssetCreatable, Creator: creator},
			{Index: 9, Type: basics.AppCreatable, Creator: creator},
		},
		KVs: []KVRecord{
			{Key: encoded.BoxKey(app, "box"), Value: []byte("four")},
		},
		TxnCounter: 10,
	}
}

func TestWriteReadRoundTrip(t *testing.T) {
	partitiontest.PartitionTest(t)

	ctx := context.Background()
	cfg := testConfig(t)
	log := logging.TestingLog(t)
	require.NoError(t, CreateDatabases(ctx, cfg, 1000, log))

	snap := testSnapshot()
	require.NoError(t, Write(ctx, cfg, snap, log))

	back, err := Read(ctx, cfg, log)
	require.NoError(t, err)
	require.Equal(t, snap, back)
	require.Positive(t, ledgerWriteMicros.GetUint64ValueForLabels(nil))
}

func TestWriteRequiresInit(t *testing.T) {
	partitiontest.PartitionTest(t)

	cfg := testConfig(t)
	err := Write(context.Background(), cfg, testSnapshot(), logging.TestingLog(t))
	require.Error(t, err)
}

func TestTxnCounterKeepsOtherHeaderFields(t *testing.T) {
	partitiontest.PartitionTest(t)

	ctx := context.Background()
	cfg := testConfig(t)
	log := logging.TestingLog(t)
	require.NoError(t, CreateDatabases(ctx, cfg, 1234, log))
	require.NoError(t, Write(ctx, cfg, &Snapshot{TxnCounter: 77}, log))

	dbs, err := db.MakeAccessor(cfg.BlockDBPath(), true, false, log)
	require.NoError(t, err)
	defer dbs.Close()

	var buf []byte
	require.NoError(t, dbs.Handle.QueryRow("SELECT hdrdata FROM blocks WHERE rnd=1").Scan(&buf))
	var hdr map[string]interface{}
	require.NoError(t, protocol.DecodeReflect(buf, &hdr))
	require.Equal(t, uint64(77), hdr["tc"])
	require.Equal(t, uint64(1234), hdr["ts"])
	require.Equal(t, TestProto, hdr["proto"])

	// round 0 is left alone
	require.NoError(t, dbs.Handle.QueryRow("SELECT hdrdata FROM blocks WHERE rnd=0").Scan(&buf))
	hdr = nil
	require.NoError(t, protocol.DecodeReflect(buf, &hdr))
	require.NotContains(t, hdr, "tc")
}

func TestTxnCounterMissingBlock(t *testing.T) {
	partitiontest.PartitionTest(t)

	dbs, err := db.MakeAccessor(t.Name(), false, true, logging.TestingLog(t))
	require.NoError(t, err)
	defer dbs.Close()

	ctx := context.Background()
	err = dbs.Atomic("missing", func(tx *sql.Tx) error {
		require.NoError(t, execAll(ctx, tx, blockSchema))
		return SetTxnCounter(ctx, tx, 5)
	})
	var noEntry ErrNoEntry
	require.ErrorAs(t, err, &noEntry)
	require.Equal(t, uint64(1), noEntry.Round)
	require.Contains(t, err.Error(), "block 1")
}

func TestResourcesCreatableTypeColumn(t *testing.T) {
	partitiontest.PartitionTest(t)

	ctx := context.Background()
	snap := testSnapshot()

	for _, legacy := range []bool{false, true} {
		dbs, err := db.MakeAccessor(t.Name(), false, true, logging.TestingLog(t))
		require.NoError(t, err)

		err = dbs.Atomic("ctype", func(tx *sql.Tx) error {
			if legacy {
				require.NoError(t, execAll(ctx, tx, trackerSchema))
				require.NoError(t, execAll(ctx, tx, creatablesMigration))
			} else {
				require.NoError(t, CreateTrackerSchema(ctx, tx))
			}
			has, err := resourcesHaveCreatableType(ctx, tx)
			require.NoError(t, err)
			require.Equal(t, !legacy, has)

			if err := writeTracker(ctx, tx, snap); err != nil {
				return err
			}

			var n int
			require.NoError(t, tx.QueryRow("SELECT COUNT(*) FROM resources").Scan(&n))
			require.Equal(t, 3, n)
			if !legacy {
				var ctype int
				require.NoError(t, tx.QueryRow("SELECT ctype FROM resources WHERE aidx = 9").Scan(&ctype))
				require.Equal(t, int(basics.AppCreatable), ctype)
				require.NoError(t, tx.QueryRow("SELECT ctype FROM resources WHERE aidx = 8 AND addrid = 2").Scan(&ctype))
				require.Equal(t, int(basics.AssetCreatable), ctype)
			}
			return nil
		})
		require.NoError(t, err)
		dbs.Close()
	}
}

func TestUpsertKvPairBinaryKey(t *testing.T) {
	partitiontest.PartitionTest(t)

	dbs, err := db.MakeAccessor(t.Name(), false, true, logging.TestingLog(t))
	require.NoError(t, err)
	defer dbs.Close()

	ctx := context.Background()
	key := encoded.BoxKey(1, "\x00name")
	err = dbs.Atomic("kv", func(tx *sql.Tx) error {
		require.NoError(t, CreateTrackerSchema(ctx, tx))
		w, err := MakeAccountsSQLWriter(ctx, tx)
		require.NoError(t, err)
		defer w.Close()

		require.NoError(t, w.UpsertKvPair(key, []byte("one")))
		require.NoError(t, w.UpsertKvPair(key, []byte("two")))
		require.NoError(t, w.UpsertKvPair(encoded.BoxKey(1, "empty"), nil))

		kvs, err := readKvPairs(ctx, tx)
		require.NoError(t, err)
		require.Equal(t, []KVRecord{
			{Key: key, Value: []byte("two")},
			{Key: encoded.BoxKey(1, "empty"), Value: []byte{}},
		}, kvs)
		return nil
	})
	require.NoError(t, err)
}

func TestResourceRecordType(t *testing.T) {
	partitiontest.PartitionTest(t)
	t.Parallel()

	optin := encoded.MakeResourcesData()
	optin.SetAppLocalState(basics.AppLocalState{})
	require.Equal(t, basics.AppCreatable, ResourceRecord{Data: optin}.Type())

	optin = encoded.MakeResourcesData()
	optin.SetAssetHolding(basics.AssetHolding{})
	require.Equal(t, basics.AssetCreatable, ResourceRecord{Data: optin}.Type())
}
