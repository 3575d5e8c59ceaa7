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

package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/algorand/go-algorand-sdk/v2/types"
	"github.com/fatih/color"
	"github.com/stretchr/testify/require"

	"github.com/algorand/go-algojig/data/basics"
	"github.com/algorand/go-algojig/ledger/encoded"
	"github.com/algorand/go-algojig/ledger/store"
	"github.com/algorand/go-algojig/test/partitiontest"
)

func TestPrintSnapshot(t *testing.T) {
	partitiontest.PartitionTest(t)
	color.NoColor = true

	app := basics.AppIndex(5)
	asset := encoded.MakeResourcesData()
	asset.SetAssetHolding(basics.AssetHolding{Amount: 7})
	asset.SetAssetParams(basics.AssetParams{Total: 10, UnitName: "TEST"}, true)
	params := encoded.MakeResourcesData()
	params.SetAppParams(basics.AppParams{
		ApprovalProgram: []byte{0x06, 0x81, 0x01},
		GlobalState:     basics.TealKeyValue{"owner": basics.TealBytes([]byte{0xab}), "count": basics.TealUint(2)},
	}, false)

	creator := types.Address{1}
	snap := &store.Snapshot{
		Accounts: []store.AccountRecord{{
			Address:   creator,
			Data:      encoded.BaseAccountData{MicroAlgos: 1_000, TotalAssets: 1, TotalAppParams: 1, AuthAddr: types.Address{2}},
			Resources: []store.ResourceRecord{{Index: 4, Data: asset}, {Index: 5, Data: params}, {Index: 9, Data: encoded.MakeResourcesData()}},
		}, {
			Address: types.Address{3},
		}},
		Creatables: []store.CreatableRecord{
			{Index: 4, Type: basics.AssetCreatable, Creator: creator},
			{Index: 5, Type: basics.AppCreatable, Creator: creator},
		},
		KVs:        []store.KVRecord{{Key: encoded.BoxKey(app, "b"), Value: []byte("xyz")}, {Key: "junk", Value: nil}},
		TxnCounter: 6,
	}

	var buf bytes.Buffer
	printSnapshot(&buf, snap)
	out := buf.String()

	require.Contains(t, out, "txn counter: 6\n")
	require.Contains(t, out, "#1 "+creator.String())
	require.Contains(t, out, "microalgos: 1000  assets: 1  apps: 1  opted in: 0")
	require.Contains(t, out, "auth: "+types.Address{2}.String())
	require.Contains(t, out, "asset 4 flags=2 amount=7 frozen=false total=10 unit=\"TEST\"")
	require.Contains(t, out, "app 5 flags=3 global=2 approval=3B\n    global \"count\" u 2\n    global \"owner\" b 0xab\n")
	require.Contains(t, out, "resource 9 flags=1 (empty)")
	require.Contains(t, out, "#2 "+types.Address{3}.String()+"\n  (empty)\n")
	require.Contains(t, out, "asset 4 created by "+creator.String())
	require.Contains(t, out, "app 5 created by "+creator.String())
	require.Contains(t, out, "box 5 \"b\": eHl6")
	require.Contains(t, out, "kv \"junk\": ")
}

func TestLoadConfig(t *testing.T) {
	partitiontest.PartitionTest(t)

	defer func(dir string) { configDir = dir }(configDir)

	configDir = ""
	require.Equal(t, "/tmp/jig", loadConfig().WorkDir)

	configDir = t.TempDir()
	require.Equal(t, "/tmp/jig", loadConfig().WorkDir)

	workDir := filepath.Join(configDir, "jig")
	require.NoError(t, os.WriteFile(filepath.Join(configDir, "config.json"), []byte(`{"WorkDir":"`+workDir+`"}`), 0644))
	require.Equal(t, workDir, loadConfig().WorkDir)
}
