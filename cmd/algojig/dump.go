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
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/algorand/go-algojig/data/basics"
	"github.com/algorand/go-algojig/ledger/encoded"
	"github.com/algorand/go-algojig/ledger/store"
)

var dumpOutFile string

func init() {
	dumpCmd.Flags().StringVarP(&dumpOutFile, "output", "o", "", "Specify an outfile for the dump ( i.e. ledger.dump.txt )")
}

var dumpCmd = &cobra.Command{
	Use:   "dump",
	Short: "Dump the ledger the harness last wrote for the engine",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadConfig()
		snap, err := store.Read(context.Background(), cfg, log)
		if err != nil {
			reportErrorf("Unable to read the ledger in %s: %v", cfg.WorkDir, err)
		}

		outFile := os.Stdout
		if dumpOutFile != "" {
			outFile, err = os.OpenFile(dumpOutFile, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0644)
			if err != nil {
				reportErrorf("Unable to create file '%s' : %v", dumpOutFile, err)
			}
			defer outFile.Close()
		}
		printSnapshot(outFile, snap)
	},
}

func printSnapshot(w io.Writer, snap *store.Snapshot) {
	fmt.Fprintf(w, "txn counter: %d\n", snap.TxnCounter)
	for i, rec := range snap.Accounts {
		fmt.Fprintf(w, "%s %s\n", color.GreenString("#%d", i+1), rec.Address)
		if rec.Data.IsEmpty() && len(rec.Resources) == 0 {
			fmt.Fprintln(w, "  (empty)")
			continue
		}
		fmt.Fprintf(w, "  microalgos: %d  assets: %d  apps: %d  opted in: %d\n",
			rec.Data.MicroAlgos, rec.Data.TotalAssets, rec.Data.TotalAppParams, rec.Data.TotalAppLocalStates)
		if !rec.Data.AuthAddr.IsZero() {
			fmt.Fprintf(w, "  auth: %s\n", rec.Data.AuthAddr)
		}
		if rec.Data.TotalBoxes > 0 {
			fmt.Fprintf(w, "  boxes: %d (%d bytes)\n", rec.Data.TotalBoxes, rec.Data.TotalBoxBytes)
		}
		for _, r := range rec.Resources {
			printResource(w, r)
		}
	}
	for _, c := range snap.Creatables {
		kind := "asset"
		if c.Type == basics.AppCreatable {
			kind = "app"
		}
		fmt.Fprintf(w, "%s %d created by %s\n", kind, c.Index, c.Creator)
	}
	for _, kv := range snap.KVs {
		app, name, err := encoded.SplitBoxKey(kv.Key)
		if err != nil {
			fmt.Fprintf(w, "kv %q: %s\n", kv.Key, base64.StdEncoding.EncodeToString(kv.Value))
			continue
		}
		fmt.Fprintf(w, "box %d %q: %s\n", app, name, base64.StdEncoding.EncodeToString(kv.Value))
	}
}

func printResource(w io.Writer, r store.ResourceRecord) {
	rd := r.Data
	if rd.IsEmpty() {
		fmt.Fprintf(w, "  resource %d flags=%d (empty)\n", r.Index, rd.ResourceFlags)
		return
	}
	if r.Type() == basics.AppCreatable {
		fmt.Fprintf(w, "  app %d flags=%d", r.Index, rd.ResourceFlags)
		if rd.IsHolding() {
			fmt.Fprintf(w, " local=%d", len(rd.KeyValue))
		}
		if rd.IsOwning() {
			fmt.Fprintf(w, " global=%d approval=%dB", len(rd.GlobalState), len(rd.ApprovalProgram))
		}
		fmt.Fprintln(w)
		printState(w, "local", rd.KeyValue)
		printState(w, "global", rd.GlobalState)
		return
	}
	fmt.Fprintf(w, "  asset %d flags=%d", r.Index, rd.ResourceFlags)
	if rd.IsHolding() {
		fmt.Fprintf(w, " amount=%d frozen=%v", rd.Amount, rd.Frozen)
	}
	if rd.IsOwning() {
		fmt.Fprintf(w, " total=%d unit=%q", rd.Total, rd.UnitName)
	}
	fmt.Fprintln(w)
}

func printState(w io.Writer, scope string, kv basics.TealKeyValue) {
	for _, k := range kv.SortedKeys() {
		tv := kv[k]
		fmt.Fprintf(w, "    %s %q %s %s\n", scope, k, tv.Type, tv)
	}
}
